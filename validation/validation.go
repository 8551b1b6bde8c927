package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/diewo77/go-faktury/internal/billing"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Error lets services return violations as an error; handlers unwrap them with errors.As.
func (v Violations) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Err returns v as an error, or nil when there are no violations.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// Finite records "invalid" for NaN or an infinite value.
func Finite(field string, val float64, v Violations) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		v[field] = "invalid"
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v[field] = "out_of_range"
	}
}

// BankAccount checks a domestic account string including its checksum.
func BankAccount(field, value string, v Violations) {
	if !billing.ValidateAccount(strings.TrimSpace(value)) {
		v[field] = "invalid_bank_account"
	}
}

// OneOf records "invalid_choice" unless value is one of allowed.
func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_choice"
}

// Date parses a YYYY-MM-DD value; empty input yields fallback.
func Date(field, value string, fallback time.Time, v Violations) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		v[field] = "invalid_date"
		return fallback
	}
	return d
}

// Indexed names a field of a repeated element, e.g. items[2].description.
func Indexed(list string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, i, field)
}
