package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	billing "github.com/vladan-gibisoft/MC73/internal/billing/domain"
)

const (
	defaultBuildingsTable  = "buildings"
	defaultApartmentsTable = "apartments"
	defaultBuildingID      = 1
)

// DBTX is the subset of *sql.DB and *sql.Tx the repository uses.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository reads one building and its apartments from Postgres.
type Repository struct {
	db              DBTX
	buildingID      int64
	buildingsTable  string
	apartmentsTable string
}

var _ billing.Repository = (*Repository)(nil)

// Option configures the repository.
type Option func(*Repository)

// WithBuildingID selects which building row is served.
func WithBuildingID(id int64) Option {
	return func(r *Repository) {
		if id > 0 {
			r.buildingID = id
		}
	}
}

// WithTables overrides the default table names.
func WithTables(buildings, apartments string) Option {
	return func(r *Repository) {
		if buildings != "" {
			r.buildingsTable = buildings
		}
		if apartments != "" {
			r.apartmentsTable = apartments
		}
	}
}

// NewRepository constructs a repository.
func NewRepository(db DBTX, opts ...Option) *Repository {
	r := &Repository{
		db:              db,
		buildingID:      defaultBuildingID,
		buildingsTable:  defaultBuildingsTable,
		apartmentsTable: defaultApartmentsTable,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Building loads the configured building.
func (r *Repository) Building(ctx context.Context) (*billing.Building, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("billing repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT address, city, bank_account, default_amount, recipient_name, payment_purpose
FROM %s
WHERE id = $1
LIMIT 1`, r.buildingsTable)

	var (
		b                      billing.Building
		recipientName, purpose sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, query, r.buildingID).Scan(
		&b.Address,
		&b.City,
		&b.BankAccount,
		&b.DefaultAmount,
		&recipientName,
		&purpose,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", billing.ErrBuildingNotFound, r.buildingID)
		}
		return nil, fmt.Errorf("billing repo: building: %w", err)
	}
	b.RecipientName = recipientName.String
	b.PaymentPurpose = purpose.String
	return &b, nil
}

// ListApartments returns every apartment of the building ordered by number.
func (r *Repository) ListApartments(ctx context.Context) ([]billing.Apartment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("billing repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT number, owner_name, floor, override_amount
FROM %s
WHERE building_id = $1
ORDER BY number`, r.apartmentsTable)

	rows, err := r.db.QueryContext(ctx, query, r.buildingID)
	if err != nil {
		return nil, fmt.Errorf("billing repo: apartments: %w", err)
	}
	defer rows.Close()

	var out []billing.Apartment
	for rows.Next() {
		a, err := scanApartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("billing repo: apartments: %w", err)
	}
	return out, nil
}

// Apartment loads one apartment by number.
func (r *Repository) Apartment(ctx context.Context, number int) (*billing.Apartment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("billing repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT number, owner_name, floor, override_amount
FROM %s
WHERE building_id = $1 AND number = $2
LIMIT 1`, r.apartmentsTable)

	a, err := scanApartment(r.db.QueryRowContext(ctx, query, r.buildingID, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", billing.ErrApartmentNotFound, number)
		}
		return nil, err
	}
	return &a, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApartment(s scanner) (billing.Apartment, error) {
	var (
		a        billing.Apartment
		override decimal.NullDecimal
	)
	if err := s.Scan(&a.Number, &a.OwnerName, &a.Floor, &override); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, err
		}
		return a, fmt.Errorf("billing repo: scan apartment: %w", err)
	}
	if override.Valid {
		amount := override.Decimal
		a.OverrideAmount = &amount
	}
	return a, nil
}
