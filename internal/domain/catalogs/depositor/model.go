// Package depositor provides the depositor (farmer) directory.
// The ledger treats it as a read-only lookup: a referenced depositor
// must exist before a voucher is accepted for them.
package depositor

import (
	"context"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/entity"
	"coldledger/internal/core/id"
)

// Depositor represents a farmer storing produce at one or more facilities.
type Depositor struct {
	entity.Catalog

	// MobileNumber is the farmer's contact number.
	MobileNumber string `db:"mobile_number" json:"mobileNumber"`

	// Address is the farmer's address.
	Address string `db:"address" json:"address,omitempty"`

	// FacilityIDs lists the facilities the depositor is registered with.
	FacilityIDs []id.ID `db:"-" json:"facilityIds,omitempty"`
}

// New creates a new Depositor.
func New(code, name, mobileNumber string) *Depositor {
	return &Depositor{
		Catalog:      entity.NewCatalog(code, name),
		MobileNumber: mobileNumber,
	}
}

// Validate implements entity.Validatable.
func (d *Depositor) Validate(ctx context.Context) error {
	if err := d.Catalog.Validate(ctx); err != nil {
		return err
	}

	if d.MobileNumber == "" {
		return apperror.NewValidation("mobile number is required").
			WithDetail("field", "mobileNumber")
	}

	return nil
}

// RegisteredAt reports whether the depositor is registered with the facility.
func (d *Depositor) RegisteredAt(facilityID id.ID) bool {
	for _, fid := range d.FacilityIDs {
		if fid == facilityID {
			return true
		}
	}
	return false
}
