package postgres

import (
	"context"
	"fmt"

	"coldledger/internal/core/entity"
	"coldledger/internal/core/id"
	"coldledger/internal/core/sequence"
)

// Compile-time check that VoucherSequencer implements sequence.Sequencer.
var _ sequence.Sequencer = (*VoucherSequencer)(nil)

// VoucherSequencer issues voucher numbers from a counter row per
// (facility, voucher kind). The upsert takes a row lock, so two
// transactions bumping the same scope serialize on the row and can
// never both commit the same number.
type VoucherSequencer struct {
	txManager *TxManager
}

// NewVoucherSequencer creates a new voucher sequencer.
func NewVoucherSequencer(txManager *TxManager) *VoucherSequencer {
	return &VoucherSequencer{txManager: txManager}
}

const nextNumberSQL = `
	INSERT INTO voucher_sequences (facility_id, voucher_kind, current_val)
	VALUES ($1, $2, 1)
	ON CONFLICT (facility_id, voucher_kind)
	DO UPDATE SET current_val = voucher_sequences.current_val + 1
	RETURNING current_val
`

// Next implements sequence.Sequencer. It refuses to run outside a
// transaction: the number must commit or abort together with the
// voucher that carries it.
func (s *VoucherSequencer) Next(ctx context.Context, facilityID id.ID, kind entity.VoucherKind) (int64, error) {
	if s.txManager.GetTx(ctx) == nil {
		return 0, fmt.Errorf("voucher number issuance requires transaction context")
	}
	return NextOn(ctx, s.txManager.GetQuerier(ctx), facilityID, kind)
}

// NextOn bumps the sequence on the given querier and returns the new value.
func NextOn(ctx context.Context, q Querier, facilityID id.ID, kind entity.VoucherKind) (int64, error) {
	var number int64
	err := q.QueryRow(ctx, nextNumberSQL, facilityID, string(kind)).Scan(&number)
	if err != nil {
		return 0, fmt.Errorf("next voucher number: %w", err)
	}
	return number, nil
}
