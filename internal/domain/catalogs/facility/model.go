// Package facility provides the cold-storage facility catalog.
// A facility owns the receipts and deliveries scoped to it; the ledger
// reads it for existence checks and the per-bag storage rate.
package facility

import (
	"context"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/entity"
	"coldledger/internal/core/types"
)

// Facility represents a cold-storage warehouse.
type Facility struct {
	entity.Catalog

	// Address is the physical address.
	Address string `db:"address" json:"address"`

	// ContactNumber reaches the facility office.
	ContactNumber string `db:"contact_number" json:"contactNumber,omitempty"`

	// Capacity is the total bag capacity, zero when unknown.
	Capacity int64 `db:"capacity" json:"capacity,omitempty"`

	// CostPerBag is the storage rate charged per bag per season.
	CostPerBag types.Money `db:"cost_per_bag" json:"costPerBag"`

	// BagSizes lists the bag size names the facility accepts.
	BagSizes []string `db:"bag_sizes" json:"bagSizes,omitempty"`
}

// New creates a new Facility with required fields.
func New(code, name, address string) *Facility {
	return &Facility{
		Catalog: entity.NewCatalog(code, name),
		Address: address,
	}
}

// Validate implements entity.Validatable.
func (f *Facility) Validate(ctx context.Context) error {
	if err := f.Catalog.Validate(ctx); err != nil {
		return err
	}

	if f.Address == "" {
		return apperror.NewValidation("address is required").
			WithDetail("field", "address")
	}

	if f.Capacity < 0 {
		return apperror.NewValidation("capacity cannot be negative").
			WithDetail("field", "capacity")
	}

	if f.CostPerBag.IsNegative() {
		return apperror.NewValidation("cost per bag cannot be negative").
			WithDetail("field", "costPerBag")
	}

	return nil
}
