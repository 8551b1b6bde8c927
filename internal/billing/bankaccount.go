package billing

import (
	"fmt"
	"regexp"
	"strings"
)

// Czech country code as used in IBANs, and its ISO 13616 numeric form with
// the "00" check-digit placeholder appended (C=12, Z=35).
const (
	countryCode        = "CZ"
	countryCodeNumeric = "123500"
)

var (
	accountShape   = regexp.MustCompile(`^(\d{1,6}-)?\d{2,10}/\d{4}$`)
	accountWeights = [...]int{6, 3, 7, 9, 10, 5, 8, 4, 2, 1}
)

// Account is a domestic Czech bank account split into its parts.
type Account struct {
	Prefix   string
	Number   string
	BankCode string
}

// String formats the account back into "[prefix-]number/bankCode".
func (a Account) String() string {
	if a.Prefix != "" {
		return a.Prefix + "-" + a.Number + "/" + a.BankCode
	}
	return a.Number + "/" + a.BankCode
}

// BBAN is the 20 digit bank code + prefix + number concatenation.
func (a Account) BBAN() string {
	return leftPad(a.BankCode, 4) + leftPad(a.Prefix, 6) + leftPad(a.Number, 10)
}

// ParseAccount splits "[prefix-]number/bankCode" into its parts. It checks
// structure only: every part must be made of digits and fit its width.
func ParseAccount(s string) (Account, bool) {
	s = strings.TrimSpace(s)
	main, bank, ok := strings.Cut(s, "/")
	if !ok || main == "" || bank == "" {
		return Account{}, false
	}
	var acc Account
	if prefix, number, hasPrefix := strings.Cut(main, "-"); hasPrefix {
		acc.Prefix, acc.Number = prefix, number
	} else {
		acc.Number = main
	}
	acc.BankCode = bank
	if !digitsUpTo(acc.Prefix, 6) || acc.Number == "" || !digitsUpTo(acc.Number, 10) || !digitsUpTo(acc.BankCode, 4) {
		return Account{}, false
	}
	return acc, true
}

// ValidateAccount reports whether s is an acceptable domestic account string.
// Blank input and a lone "/" mean "not provided yet" and are accepted.
func ValidateAccount(s string) bool {
	if s == "" || s == "/" {
		return true
	}
	if !accountShape.MatchString(s) {
		return false
	}
	acc, ok := ParseAccount(s)
	if !ok {
		return false
	}
	return mod11(acc.Prefix) && mod11(acc.Number)
}

// mod11 runs the weighted checksum with the weights aligned to the rightmost
// digit. An empty part passes.
func mod11(part string) bool {
	if len(part) > len(accountWeights) {
		return false
	}
	offset := len(accountWeights) - len(part)
	sum := 0
	for i := 0; i < len(part); i++ {
		sum += int(part[i]-'0') * accountWeights[offset+i]
	}
	return sum%11 == 0
}

// ToIBAN converts a domestic account string to a Czech IBAN. The account is
// only parsed, not checksum-validated; unparseable input yields "".
func ToIBAN(s string) string {
	acc, ok := ParseAccount(s)
	if !ok {
		return ""
	}
	bban := acc.BBAN()
	check := 98 - mod97(bban+countryCodeNumeric)
	return fmt.Sprintf("%s%02d%s", countryCode, check, bban)
}

// ValidIBAN verifies an IBAN of any country with the ISO 7064 MOD 97-10 rule.
func ValidIBAN(iban string) bool {
	iban = strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	if len(iban) < 5 {
		return false
	}
	var b strings.Builder
	for _, r := range iban[4:] + iban[:4] {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			fmt.Fprintf(&b, "%d", r-'A'+10)
		default:
			return false
		}
	}
	return mod97(b.String()) == 1
}

// mod97 reduces a decimal digit string modulo 97 one digit at a time.
func mod97(digits string) int {
	rem := 0
	for i := 0; i < len(digits); i++ {
		rem = (rem*10 + int(digits[i]-'0')) % 97
	}
	return rem
}

func digitsUpTo(s string, n int) bool {
	if len(s) > n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
