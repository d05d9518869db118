package receipt

import (
	"context"
	"time"

	"coldledger/internal/core/id"
	"coldledger/internal/domain"
	"coldledger/internal/domain/stock"
)

// Repository defines operations for receipt vouchers.
//
// DecrementLine is the optimistic-concurrency primitive of the whole
// ledger: the update is conditional on the line still holding at least
// the requested quantity, so a concurrent drain makes it match zero
// rows instead of going negative.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Receipt) error
	GetByID(ctx context.Context, docID id.ID) (*Receipt, error)
	Update(ctx context.Context, doc *Receipt) error
	Delete(ctx context.Context, docID id.ID) error

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Receipt, error)

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]stock.Line, error)
	ReplaceLines(ctx context.Context, docID id.ID, lines []stock.Line) error

	// DecrementLine subtracts qty from the matching (variety, size)
	// line when current_quantity >= qty. Returns false without error
	// when no row matched the predicate.
	DecrementLine(ctx context.Context, docID id.ID, variety stock.Variety, size stock.BagSize, qty int64) (bool, error)

	// IncrementLine adds qty back to the matching line (delivery
	// reversal). Returns false when the line no longer exists.
	IncrementLine(ctx context.Context, docID id.ID, variety stock.Variety, size stock.BagSize, qty int64) (bool, error)

	// SetFulfilled writes the cached fulfillment flag.
	SetFulfilled(ctx context.Context, docID id.ID, fulfilled bool) error

	// TotalCurrentStock sums current quantities across every line of
	// every receipt in the facility, optionally excluding one receipt.
	TotalCurrentStock(ctx context.Context, facilityID id.ID, exclude *id.ID) (int64, error)

	// List operations
	List(ctx context.Context, facilityID id.ID, filter ListFilter) (domain.ListResult[*Receipt], error)
}

// ListFilter for filtering receipts.
type ListFilter struct {
	domain.ListFilter

	DepositorID *id.ID
	Variety     *stock.Variety
	Fulfilled   *bool
	DateFrom    *time.Time
	DateTo      *time.Time
}
