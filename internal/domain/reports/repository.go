package reports

import (
	"context"

	"coldledger/internal/core/id"
	"coldledger/internal/domain"
	"coldledger/internal/domain/stock"
)

// Repository runs the grouped aggregation queries. Reads may run
// outside any transaction: the summaries are reporting views and must
// never gate a write decision.
type Repository interface {
	// ReceiptAggregates groups receipt lines in scope by (variety, size),
	// summing initial and current quantities.
	ReceiptAggregates(ctx context.Context, scope Scope) ([]ReceiptAggRow, error)

	// DeliveryAggregates groups delivery items in scope by (variety, size),
	// summing removed quantities.
	DeliveryAggregates(ctx context.Context, scope Scope) ([]DeliveryAggRow, error)

	// CurrentTotalStock sums current quantities across every receipt
	// line of the facility.
	CurrentTotalStock(ctx context.Context, facilityID id.ID) (int64, error)

	// TopDepositors ranks the facility's depositors by current bag count.
	TopDepositors(ctx context.Context, facilityID id.ID, limit int) ([]DepositorRank, error)

	// DayBook pages through all vouchers in scope, newest first.
	// Receipts and deliveries interleave in one stream; a depositor
	// scope narrows it to that depositor's vouchers.
	DayBook(ctx context.Context, scope Scope, filter domain.ListFilter) (domain.ListResult[DayBookEntry], error)

	// VarietiesAvailable lists distinct varieties with non-zero current
	// stock for the depositor at the facility.
	VarietiesAvailable(ctx context.Context, facilityID, depositorID id.ID) ([]stock.Variety, error)
}
