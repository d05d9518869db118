// Package sequence defines the voucher numbering contract.
//
// Numbers are monotonic per (facility, voucher kind). An implementation
// MUST issue the number on the same transaction that inserts the voucher
// using it; two concurrent creations otherwise race to the same "next"
// value before either commits. The postgres implementation keeps a
// counter row per scope and bumps it with an upsert-returning statement,
// so uniqueness follows from row-level locking instead of a document count.
package sequence

import (
	"context"

	"coldledger/internal/core/entity"
	"coldledger/internal/core/id"
)

// Sequencer issues the next voucher number for a facility-scoped sequence.
type Sequencer interface {
	// Next returns count+1 for the (facility, kind) sequence and
	// advances it. Must be called inside the transaction that will
	// persist the voucher carrying the number.
	Next(ctx context.Context, facilityID id.ID, kind entity.VoucherKind) (int64, error)
}
