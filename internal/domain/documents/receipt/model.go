// Package receipt provides the incoming-stock voucher: the Receipt
// document that places a depositor's produce into a facility.
package receipt

import (
	"context"
	"time"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/entity"
	"coldledger/internal/core/id"
	"coldledger/internal/domain/stock"
)

// Receipt represents an incoming order. Its stock lines are the
// quantities deliveries later draw down.
type Receipt struct {
	entity.Voucher

	// Fulfilled is a write-time snapshot: set when every stock line
	// reaches zero, reset when a delivery reversal restores stock.
	// Never recomputed on read.
	Fulfilled bool `db:"fulfilled" json:"fulfilled"`

	// StockSnapshot is the total current facility stock frozen at
	// creation (other receipts' current plus this receipt's total).
	// Recomputed on every edit. Audit figure only, never an invariant.
	StockSnapshot int64 `db:"stock_snapshot" json:"stockSnapshotAtCreation"`

	// Location pins the produce inside the facility.
	Location stock.Location `json:"location"`

	// Table part: stock lines, normalized at the boundary.
	Lines []stock.Line `db:"-" json:"stockLines"`
}

// New creates a receipt voucher. Lines must already be normalized;
// current quantities start equal to initial.
func New(facilityID, depositorID id.ID, lines []stock.Line, loc stock.Location) *Receipt {
	for i := range lines {
		lines[i].Current = lines[i].Initial
	}
	return &Receipt{
		Voucher:  entity.NewVoucher(entity.KindReceipt, facilityID, depositorID),
		Location: loc,
		Lines:    lines,
	}
}

// Validate implements entity.Validatable.
func (r *Receipt) Validate(ctx context.Context) error {
	if err := r.Voucher.Validate(ctx); err != nil {
		return err
	}

	if r.Kind != entity.KindReceipt {
		return apperror.NewValidation("voucher kind must be RECEIPT").
			WithDetail("field", "voucherKind")
	}

	if err := r.Location.Validate(); err != nil {
		return err
	}

	if len(r.Lines) == 0 {
		return apperror.NewValidation("at least one stock line is required").
			WithDetail("field", "stockLines")
	}

	for _, line := range r.Lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// TotalCurrent sums current quantities across the receipt's lines.
func (r *Receipt) TotalCurrent() int64 {
	return stock.TotalCurrent(r.Lines)
}

// EditInput carries the updatable fields of a receipt.
// Nil pointers leave the corresponding field untouched.
type EditInput struct {
	Remarks   *string
	Date      *time.Time
	Fulfilled *bool
	Location  *stock.Location

	// Lines replaces the whole table part when non-nil.
	Lines []stock.Line
}
