package facility

import (
	"context"

	"coldledger/internal/core/id"
)

// Repository defines the interface for Facility persistence.
type Repository interface {
	Create(ctx context.Context, f *Facility) error
	GetByID(ctx context.Context, facilityID id.ID) (*Facility, error)
	Update(ctx context.Context, f *Facility) error
	List(ctx context.Context) ([]*Facility, error)

	// Exists is the cheap lookup the ledger uses before accepting a
	// voucher for a facility.
	Exists(ctx context.Context, facilityID id.ID) (bool, error)
}
