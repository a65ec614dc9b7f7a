package layout

import (
	"github.com/shopspring/decimal"

	"github.com/vladan-gibisoft/MC73/internal/bankaccount"
	billing "github.com/vladan-gibisoft/MC73/internal/billing/domain"
)

// Slip is everything printed on one uplatnica.
type Slip struct {
	Apartment billing.Apartment
	Building  billing.Building
	Period    billing.Period
	Account   bankaccount.Account
	Amount    decimal.Decimal
	Reference billing.ReferenceNumber
}

// NewSlip resolves the amount and reference for one apartment.
func NewSlip(a billing.Apartment, b billing.Building, p billing.Period, account bankaccount.Account) Slip {
	return Slip{
		Apartment: a,
		Building:  b,
		Period:    p,
		Account:   account,
		Amount:    a.AmountDue(b),
		Reference: billing.NewReferenceNumber(a.Number, p.Month),
	}
}
