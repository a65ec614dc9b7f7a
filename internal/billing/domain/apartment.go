package billing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinApartmentNumber = 1
	MaxApartmentNumber = 99
)

// Apartment is one billed unit of the building.
type Apartment struct {
	Number         int
	OwnerName      string
	Floor          int
	OverrideAmount *decimal.Decimal
}

// Validate checks apartment invariants.
func (a Apartment) Validate() error {
	if a.Number < MinApartmentNumber || a.Number > MaxApartmentNumber {
		return fmt.Errorf("%w: number %d out of range", ErrInvalidApartment, a.Number)
	}
	if strings.TrimSpace(a.OwnerName) == "" {
		return fmt.Errorf("%w: apartment %d has no owner", ErrInvalidApartment, a.Number)
	}
	if a.OverrideAmount != nil && a.OverrideAmount.IsNegative() {
		return fmt.Errorf("%w: apartment %d override %s", ErrInvalidAmount, a.Number, a.OverrideAmount.String())
	}
	return nil
}

// AmountDue resolves the amount billed to the apartment. A present,
// non-zero override wins over the building default.
func (a Apartment) AmountDue(b Building) decimal.Decimal {
	if a.OverrideAmount != nil && !a.OverrideAmount.IsZero() {
		return *a.OverrideAmount
	}
	return b.DefaultAmount
}

// SortApartments returns a copy of apartments ordered by number.
func SortApartments(apartments []Apartment) []Apartment {
	sorted := make([]Apartment, len(apartments))
	copy(sorted, apartments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})
	return sorted
}
