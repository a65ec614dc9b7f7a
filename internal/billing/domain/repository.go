package billing

import "context"

// Repository reads the building and its apartments.
type Repository interface {
	Building(ctx context.Context) (*Building, error)
	ListApartments(ctx context.Context) ([]Apartment, error)
	Apartment(ctx context.Context, number int) (*Apartment, error)
}
