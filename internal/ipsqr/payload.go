// Package ipsqr builds NBS IPS QR payment payloads.
package ipsqr

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/vladan-gibisoft/MC73/internal/bankaccount"
	billing "github.com/vladan-gibisoft/MC73/internal/billing/domain"
)

// Fixed values mandated by the IPS QR standard for a printed payment order.
const (
	IdentificationCode = "PR"
	Version            = "01"
	CharacterSet       = "1"
	// ServiceCode is the payment code used for communal payments by citizens.
	ServiceCode = "189"
	Currency    = "RSD"

	// MaxRecipientLen caps the N field, in characters.
	MaxRecipientLen = 70

	lineBreak = "\r\n"
)

// Payload is the key/value content of an IPS QR code.
type Payload struct {
	IdentificationCode string `json:"K"`
	Version            string `json:"V"`
	CharacterSet       string `json:"C"`
	Account            string `json:"R"`
	Recipient          string `json:"N"`
	Amount             string `json:"I"`
	Payer              string `json:"P,omitempty"`
	ServiceCode        string `json:"SF"`
	Purpose            string `json:"S,omitempty"`
	Reference          string `json:"RO,omitempty"`
}

// Context carries the billing data a payload is built from.
type Context struct {
	BankAccount      string
	RecipientName    string
	RecipientAddress string
	RecipientCity    string
	Amount           decimal.Decimal
	Reference        billing.ReferenceNumber
	Purpose          string
	PayerName        string
	PayerAddress     string
	PayerCity        string
}

// Build assembles the payload. The only failure is an unparsable bank account.
func Build(c Context) (Payload, error) {
	account, err := bankaccount.Parse(c.BankAccount)
	if err != nil {
		return Payload{}, err
	}
	return BuildForAccount(account, c), nil
}

// BuildForAccount is Build with an already parsed account.
func BuildForAccount(account bankaccount.Account, c Context) Payload {
	return Payload{
		IdentificationCode: IdentificationCode,
		Version:            Version,
		CharacterSet:       CharacterSet,
		Account:            account.Digits(),
		Recipient:          truncate(clean(c.RecipientName)+lineBreak+clean(c.RecipientAddress), MaxRecipientLen),
		Amount:             FormatAmount(c.Amount),
		Payer:              clean(c.PayerName) + lineBreak + clean(c.PayerAddress) + lineBreak + clean(c.PayerCity),
		ServiceCode:        ServiceCode,
		Purpose:            clean(c.Purpose),
		Reference:          c.Reference.Compact(),
	}
}

// FormatAmount renders an amount as the I field: currency, then the value
// with two fraction digits and a comma separator.
func FormatAmount(amount decimal.Decimal) string {
	return Currency + strings.Replace(amount.StringFixed(2), ".", ",", 1)
}

// WithoutPayer returns a copy of p with the optional payer field removed.
func (p Payload) WithoutPayer() Payload {
	p.Payer = ""
	return p
}

// Text renders the pipe-delimited form encoded into the QR symbol.
func (p Payload) Text() string {
	fields := []struct {
		key   string
		value string
	}{
		{"K", p.IdentificationCode},
		{"V", p.Version},
		{"C", p.CharacterSet},
		{"R", p.Account},
		{"N", p.Recipient},
		{"I", p.Amount},
		{"P", p.Payer},
		{"SF", p.ServiceCode},
		{"S", p.Purpose},
		{"RO", p.Reference},
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		parts = append(parts, f.key+":"+f.value)
	}
	return strings.Join(parts, "|")
}

// clean composes decomposed diacritics so length limits count letters, and
// drops the field delimiter.
func clean(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "|", " ")
	return norm.NFC.String(s)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
