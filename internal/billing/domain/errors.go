package billing

import "errors"

var (
	// ErrEmptyInput is returned when a generation request has no apartments.
	ErrEmptyInput = errors.New("billing: no apartments")
	// ErrApartmentNotFound is returned when an apartment number is unknown.
	ErrApartmentNotFound = errors.New("billing: apartment not found")
	// ErrBuildingNotFound is returned when the building record is missing.
	ErrBuildingNotFound = errors.New("billing: building not found")
	// ErrInvalidPeriod is returned for a month or year out of range.
	ErrInvalidPeriod = errors.New("billing: invalid period")
	// ErrInvalidApartment is returned for an apartment failing validation.
	ErrInvalidApartment = errors.New("billing: invalid apartment")
	// ErrInvalidAmount is returned for a non-positive amount.
	ErrInvalidAmount = errors.New("billing: invalid amount")
)
