package billing

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinYear = 2020
	// MaxYearsAhead bounds how far into the future a period may be.
	MaxYearsAhead = 5

	// ReferenceDelimiter separates the apartment and month segments.
	ReferenceDelimiter = "/"
)

// Period is a billing month.
type Period struct {
	Month int
	Year  int
}

// Validate checks the period against now.
func (p Period) Validate(now time.Time) error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	if p.Year < MinYear || p.Year > now.Year()+MaxYearsAhead {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// String returns YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Filename returns the download name of the slip document for the period.
func (p Period) Filename() string {
	return p.basename() + ".pdf"
}

// SheetFilename is the download name of the billing summary spreadsheet.
func (p Period) SheetFilename() string {
	return p.basename() + ".xlsx"
}

func (p Period) basename() string {
	return fmt.Sprintf("uplatnice_%d_%02d", p.Year, p.Month)
}

// ReferenceNumber is the payment-matching code printed on a slip.
type ReferenceNumber string

// NewReferenceNumber builds the zero-padded reference for an apartment and month.
func NewReferenceNumber(apartmentNumber, month int) ReferenceNumber {
	return ReferenceNumber(fmt.Sprintf("%02d%s%02d", apartmentNumber, ReferenceDelimiter, month))
}

func (r ReferenceNumber) String() string { return string(r) }

// Compact strips the delimiter, as required inside the QR payload.
func (r ReferenceNumber) Compact() string {
	return strings.ReplaceAll(string(r), ReferenceDelimiter, "")
}
