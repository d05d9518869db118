package delivery

import (
	"context"
	"time"

	"coldledger/internal/core/id"
	"coldledger/internal/domain"
	"coldledger/internal/domain/documents/receipt"
	"coldledger/internal/domain/stock"
)

// Repository defines operations for delivery vouchers.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Delivery) error
	GetByID(ctx context.Context, docID id.ID) (*Delivery, error)
	Update(ctx context.Context, doc *Delivery) error
	Delete(ctx context.Context, docID id.ID) error

	// Locking
	GetForUpdate(ctx context.Context, docID id.ID) (*Delivery, error)

	// Item operations
	GetItems(ctx context.Context, docID id.ID) ([]Item, error)
	ReplaceItems(ctx context.Context, docID id.ID, items []Item) error

	// List operations
	List(ctx context.Context, facilityID id.ID, filter ListFilter) (domain.ListResult[*Delivery], error)
}

// ListFilter for filtering deliveries.
type ListFilter struct {
	domain.ListFilter

	DepositorID     *id.ID
	SourceReceiptID *id.ID
	DateFrom        *time.Time
	DateTo          *time.Time
}

// ReceiptLedger is the slice of the receipt repository the delivery
// service mutates. Decrements and increments run inside the delivery's
// own transaction; the receipt repository satisfies this directly.
type ReceiptLedger interface {
	GetForUpdate(ctx context.Context, docID id.ID) (*receipt.Receipt, error)
	GetLines(ctx context.Context, docID id.ID) ([]stock.Line, error)
	DecrementLine(ctx context.Context, docID id.ID, variety stock.Variety, size stock.BagSize, qty int64) (bool, error)
	IncrementLine(ctx context.Context, docID id.ID, variety stock.Variety, size stock.BagSize, qty int64) (bool, error)
	SetFulfilled(ctx context.Context, docID id.ID, fulfilled bool) error
}
