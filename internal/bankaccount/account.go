// Package bankaccount parses and normalizes Serbian bank account numbers.
//
// A canonical account has 18 digits: a 3-digit bank code, a 13-digit account
// segment and 2 control digits. Shorter inputs (7 to 17 digits) are expanded
// by left-padding the middle segment with zeros. Control digits are taken as
// given; no checksum is recomputed.
package bankaccount

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	bankLen    = 3
	numberLen  = 13
	controlLen = 2

	// DigitsLen is the length of the canonical digit form.
	DigitsLen = bankLen + numberLen + controlLen
	// MinDigits is the shortest accepted stripped input.
	MinDigits = 7
)

// ErrInvalidFormat is returned for input that cannot be normalized.
var ErrInvalidFormat = errors.New("bankaccount: invalid format")

// Account is a normalized bank account.
type Account struct {
	bank    string
	number  string
	control string
}

// Parse normalizes input into an Account. Dashes and whitespace are ignored.
func Parse(input string) (Account, error) {
	if strings.TrimSpace(input) == "" {
		return Account{}, fmt.Errorf("%w: empty input", ErrInvalidFormat)
	}
	digits := strip(input)
	for _, r := range digits {
		if r < '0' || r > '9' {
			return Account{}, fmt.Errorf("%w: unexpected character %q", ErrInvalidFormat, r)
		}
	}

	n := len(digits)
	switch {
	case n == DigitsLen:
		return Account{
			bank:    digits[:bankLen],
			number:  digits[bankLen : bankLen+numberLen],
			control: digits[bankLen+numberLen:],
		}, nil
	case n >= MinDigits && n < DigitsLen:
		middle := digits[bankLen : n-controlLen]
		return Account{
			bank:    digits[:bankLen],
			number:  strings.Repeat("0", numberLen-len(middle)) + middle,
			control: digits[n-controlLen:],
		}, nil
	default:
		return Account{}, fmt.Errorf("%w: %d digits, want %d to %d", ErrInvalidFormat, n, MinDigits, DigitsLen)
	}
}

// MustParse is Parse for constants and tests; it panics on error.
func MustParse(input string) Account {
	acc, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return acc
}

// IsValid reports whether input parses.
func IsValid(input string) bool {
	_, err := Parse(input)
	return err == nil
}

// Bank returns the 3-digit bank code.
func (a Account) Bank() string { return a.bank }

// Number returns the zero-padded 13-digit account segment.
func (a Account) Number() string { return a.number }

// Control returns the 2 control digits.
func (a Account) Control() string { return a.control }

// IsZero reports whether a is the zero Account.
func (a Account) IsZero() bool { return a.bank == "" }

// Display returns the dash-delimited form BBB-AAAAAAAAAAAAA-CC.
func (a Account) Display() string {
	if a.IsZero() {
		return ""
	}
	return a.bank + "-" + a.number + "-" + a.control
}

// Digits returns the 18-digit form without separators.
func (a Account) Digits() string {
	return a.bank + a.number + a.control
}

func (a Account) String() string { return a.Display() }

// MarshalText encodes the account in display form.
func (a Account) MarshalText() ([]byte, error) {
	return []byte(a.Display()), nil
}

// UnmarshalText accepts any format Parse accepts.
func (a *Account) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func strip(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
