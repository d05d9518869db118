// Package delivery provides the outgoing-stock voucher: the Delivery
// document that draws produce down from source receipts.
package delivery

import (
	"context"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/entity"
	"coldledger/internal/core/id"
	"coldledger/internal/domain/stock"
)

// Item is one delivery line: the exact quantity removed from one
// (variety, size) stock line of one source receipt. The source link
// and quantity are what make the delivery reversible.
type Item struct {
	SourceReceiptID id.ID         `db:"source_receipt_id" json:"sourceReceiptId"`
	Variety         stock.Variety `db:"variety" json:"variety"`
	Size            stock.BagSize `db:"bag_size" json:"size"`
	QuantityRemoved int64         `db:"quantity_removed" json:"quantityRemoved"`
}

// Validate checks the item invariants.
func (it Item) Validate() error {
	if id.IsNil(it.SourceReceiptID) {
		return apperror.NewValidation("source receipt is required").
			WithDetail("field", "sourceReceiptId")
	}
	if it.Variety == "" {
		return apperror.NewValidation("variety is required").
			WithDetail("field", "variety")
	}
	if it.Size == "" {
		return apperror.NewValidation("bag size is required").
			WithDetail("field", "size")
	}
	if it.QuantityRemoved <= 0 {
		return apperror.NewValidation("quantity removed must be positive").
			WithDetail("variety", string(it.Variety)).
			WithDetail("size", string(it.Size)).
			WithDetail("quantity", it.QuantityRemoved)
	}
	return nil
}

// Delivery represents an outgoing order referencing one or more receipts.
type Delivery struct {
	entity.Voucher

	// Table part: removals applied to source receipts.
	Items []Item `db:"-" json:"lineItems"`
}

// New creates a delivery voucher.
func New(facilityID, depositorID id.ID) *Delivery {
	return &Delivery{
		Voucher: entity.NewVoucher(entity.KindDelivery, facilityID, depositorID),
		Items:   make([]Item, 0),
	}
}

// Validate implements entity.Validatable.
func (d *Delivery) Validate(ctx context.Context) error {
	if err := d.Voucher.Validate(ctx); err != nil {
		return err
	}

	if d.Kind != entity.KindDelivery {
		return apperror.NewValidation("voucher kind must be DELIVERY").
			WithDetail("field", "voucherKind")
	}

	if len(d.Items) == 0 {
		return apperror.NewValidation("at least one line item is required").
			WithDetail("field", "lineItems")
	}

	for _, it := range d.Items {
		if err := it.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// TotalRemoved sums removed quantities across items.
func (d *Delivery) TotalRemoved() int64 {
	var total int64
	for _, it := range d.Items {
		total += it.QuantityRemoved
	}
	return total
}
