package entity

import (
	"context"
	"time"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/id"
)

// VoucherKind distinguishes the two ledger voucher sequences.
// RECEIPT and DELIVERY numbers are independent, both scoped per facility.
type VoucherKind string

const (
	KindReceipt  VoucherKind = "RECEIPT"
	KindDelivery VoucherKind = "DELIVERY"
)

// Valid reports whether the kind is one of the known voucher kinds.
func (k VoucherKind) Valid() bool {
	return k == KindReceipt || k == KindDelivery
}

// Voucher is the base type for ledger documents (receipts and deliveries).
type Voucher struct {
	BaseVoucher

	// FacilityID is the owning cold-storage facility.
	FacilityID id.ID `db:"facility_id" json:"facilityId"`

	// DepositorID is the farmer whose produce the voucher concerns.
	DepositorID id.ID `db:"depositor_id" json:"depositorId"`

	// Kind is RECEIPT or DELIVERY.
	Kind VoucherKind `db:"voucher_kind" json:"voucherKind"`

	// Number is the facility-scoped monotonic voucher number.
	// Assigned by the sequencer inside the creating transaction.
	Number int64 `db:"voucher_number" json:"voucherNumber"`

	// Date is the business date: submission date for receipts,
	// extraction date for deliveries.
	Date time.Time `db:"date" json:"date"`

	// Remarks is an optional operator comment.
	Remarks string `db:"remarks" json:"remarks,omitempty"`
}

// NewVoucher creates a new Voucher scoped to a facility and depositor.
func NewVoucher(kind VoucherKind, facilityID, depositorID id.ID) Voucher {
	return Voucher{
		BaseVoucher: NewBaseVoucher(),
		FacilityID:  facilityID,
		DepositorID: depositorID,
		Kind:        kind,
		Date:        time.Now().UTC(),
	}
}

// Validate implements Validatable.
func (v *Voucher) Validate(ctx context.Context) error {
	if id.IsNil(v.FacilityID) {
		return apperror.NewValidation("facility is required").
			WithDetail("field", "facilityId")
	}

	if id.IsNil(v.DepositorID) {
		return apperror.NewValidation("depositor is required").
			WithDetail("field", "depositorId")
	}

	if !v.Kind.Valid() {
		return apperror.NewValidation("invalid voucher kind").
			WithDetail("field", "voucherKind").
			WithDetail("value", string(v.Kind))
	}

	if v.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// OwnedBy reports whether the voucher belongs to the given facility.
// Cross-facility access to another facility's vouchers must fail.
func (v *Voucher) OwnedBy(facilityID id.ID) bool {
	return v.FacilityID == facilityID
}
