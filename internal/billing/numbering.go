package billing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// trailingDigits splits a document number at the point where its final run of
// digits begins. The lazy prefix guarantees the digit group is the longest one.
var trailingDigits = regexp.MustCompile(`^(.*?)(\d+)$`)

// NextNumber derives the next document number from the numbers already issued.
//
// The existing number with the highest numeric suffix provides the template:
// its prefix is kept and its suffix width is preserved with zero padding, so
// "F2025-009" is followed by "F2025-010". Numbers without trailing digits are
// ignored. When several numbers share the maximum value, the last one in
// iteration order wins. Without any usable number the result is
// "{fallbackYear}-001".
func NextNumber(existing []string, fallbackYear int) string {
	prefix := fmt.Sprintf("%d-", fallbackYear)
	width := 3
	var max uint64
	found := false

	for _, number := range existing {
		m := trailingDigits.FindStringSubmatch(number)
		if m == nil {
			continue
		}
		n, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil || n == math.MaxUint64 {
			// no successor fits in 64 bits
			continue
		}
		if !found || n >= max {
			max = n
			prefix = m[1]
			width = len(m[2])
			found = true
		}
	}

	return fmt.Sprintf("%s%0*d", prefix, width, max+1)
}

// VariableSymbol strips every non-digit character from a document number,
// producing the numeric payment reference used by Czech bank transfers.
func VariableSymbol(documentNumber string) string {
	out := make([]byte, 0, len(documentNumber))
	for i := 0; i < len(documentNumber); i++ {
		if c := documentNumber[i]; c >= '0' && c <= '9' {
			out = append(out, c)
		}
	}
	return string(out)
}
