package billing

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseLocaleDecimal reads a number typed by a person using either a decimal
// comma or a decimal point ("12,50", "12.5", " 7 ks"). The first comma is
// treated as the decimal separator and the longest numeric prefix is parsed;
// anything unparseable, infinite or NaN becomes 0.
func ParseLocaleDecimal(s string) float64 {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || !finite(f) {
		return 0
	}
	return f
}

// LocaleDecimal is a price as entered on a delivery note. It keeps the raw
// text so "12,50" round-trips unchanged; Float gives the parsed value.
type LocaleDecimal string

// Float returns the parsed value, 0 when the text is not a number.
func (d LocaleDecimal) Float() float64 { return ParseLocaleDecimal(string(d)) }

// UnmarshalJSON accepts a JSON string or a JSON number.
func (d *LocaleDecimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = LocaleDecimal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = LocaleDecimal(n.String())
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
