package billing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Building is the single building slips are issued for.
type Building struct {
	Address        string
	City           string
	BankAccount    string
	DefaultAmount  decimal.Decimal
	RecipientName  string
	PaymentPurpose string
}

// Validate checks building invariants.
func (b Building) Validate() error {
	if strings.TrimSpace(b.Address) == "" {
		return errors.New("building: empty address")
	}
	if strings.TrimSpace(b.City) == "" {
		return errors.New("building: empty city")
	}
	if strings.TrimSpace(b.BankAccount) == "" {
		return errors.New("building: empty bank account")
	}
	if !b.DefaultAmount.IsPositive() {
		return fmt.Errorf("building: default amount %s: %w", b.DefaultAmount.StringFixed(2), ErrInvalidAmount)
	}
	return nil
}
