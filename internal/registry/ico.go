package registry

import "strings"

// NormalizeICO trims ico and left-pads it with zeros to eight digits. The
// second result is false when ico is not made of 1 to 8 digits.
func NormalizeICO(ico string) (string, bool) {
	ico = strings.TrimSpace(ico)
	if ico == "" || len(ico) > 8 {
		return "", false
	}
	for i := 0; i < len(ico); i++ {
		if ico[i] < '0' || ico[i] > '9' {
			return "", false
		}
	}
	return strings.Repeat("0", 8-len(ico)) + ico, true
}

// ValidateICO checks the mod 11 check digit of a Czech company ID (IČO).
func ValidateICO(ico string) bool {
	n, ok := NormalizeICO(ico)
	if !ok {
		return false
	}
	sum := 0
	for i := 0; i < 7; i++ {
		sum += int(n[i]-'0') * (8 - i)
	}
	var check int
	switch r := sum % 11; r {
	case 0:
		check = 1
	case 1:
		check = 0
	default:
		check = 11 - r
	}
	return int(n[7]-'0') == check
}
