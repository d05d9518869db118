package depositor

import (
	"context"

	"coldledger/internal/core/id"
)

// Repository defines the interface for Depositor persistence.
type Repository interface {
	Create(ctx context.Context, d *Depositor) error
	GetByID(ctx context.Context, depositorID id.ID) (*Depositor, error)
	Update(ctx context.Context, d *Depositor) error
	ListByFacility(ctx context.Context, facilityID id.ID) ([]*Depositor, error)

	// Register links a depositor to a facility.
	Register(ctx context.Context, depositorID, facilityID id.ID) error

	// Exists checks that the depositor is registered with the facility.
	Exists(ctx context.Context, depositorID, facilityID id.ID) (bool, error)
}
