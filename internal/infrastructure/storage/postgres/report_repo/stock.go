// Package report_repo provides the PostgreSQL implementation of the
// stock aggregation queries.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"coldledger/internal/core/id"
	"coldledger/internal/domain"
	"coldledger/internal/domain/reports"
	"coldledger/internal/domain/stock"
	"coldledger/internal/infrastructure/storage/postgres"
)

// Compile-time check that StockReportRepo implements reports.Repository.
var _ reports.Repository = (*StockReportRepo)(nil)

// StockReportRepo implements reports.Repository. Every view is
// recomputed from the voucher tables on each call; nothing here is
// materialized or cached.
type StockReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockReportRepo creates a new stock report repository.
func NewStockReportRepo(txManager *postgres.TxManager) *StockReportRepo {
	return &StockReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ReceiptAggregates groups receipt lines in scope by (variety, size).
func (r *StockReportRepo) ReceiptAggregates(ctx context.Context, scope reports.Scope) ([]reports.ReceiptAggRow, error) {
	q := r.builder.
		Select(
			"l.variety",
			"l.bag_size",
			"SUM(l.initial_quantity) AS initial_quantity",
			"SUM(l.current_quantity) AS current_quantity",
		).
		From("receipt_lines l").
		Join("receipts r ON r.id = l.receipt_id").
		Where(squirrel.Eq{"r.facility_id": scope.FacilityID}).
		GroupBy("l.variety", "l.bag_size")

	if scope.DepositorID != nil {
		q = q.Where(squirrel.Eq{"r.depositor_id": *scope.DepositorID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.ReceiptAggRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("receipt aggregates: %w", err)
	}
	return rows, nil
}

// DeliveryAggregates groups delivery items in scope by (variety, size).
func (r *StockReportRepo) DeliveryAggregates(ctx context.Context, scope reports.Scope) ([]reports.DeliveryAggRow, error) {
	q := r.builder.
		Select(
			"l.variety",
			"l.bag_size",
			"SUM(l.quantity_removed) AS quantity_removed",
		).
		From("delivery_lines l").
		Join("deliveries d ON d.id = l.delivery_id").
		Where(squirrel.Eq{"d.facility_id": scope.FacilityID}).
		GroupBy("l.variety", "l.bag_size")

	if scope.DepositorID != nil {
		q = q.Where(squirrel.Eq{"d.depositor_id": *scope.DepositorID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.DeliveryAggRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("delivery aggregates: %w", err)
	}
	return rows, nil
}

// CurrentTotalStock sums current quantities across the facility.
func (r *StockReportRepo) CurrentTotalStock(ctx context.Context, facilityID id.ID) (int64, error) {
	sql := `
		SELECT COALESCE(SUM(l.current_quantity), 0)
		FROM receipt_lines l
		JOIN receipts r ON r.id = l.receipt_id
		WHERE r.facility_id = $1
	`

	var total int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, facilityID).Scan(&total); err != nil {
		return 0, fmt.Errorf("current total stock: %w", err)
	}
	return total, nil
}

// TopDepositors ranks depositors by current bag count.
func (r *StockReportRepo) TopDepositors(ctx context.Context, facilityID id.ID, limit int) ([]reports.DepositorRank, error) {
	sql := `
		SELECT r.depositor_id,
			   d.name,
			   SUM(l.current_quantity) AS current_bags
		FROM receipt_lines l
		JOIN receipts r ON r.id = l.receipt_id
		JOIN depositors d ON d.id = r.depositor_id
		WHERE r.facility_id = $1
		GROUP BY r.depositor_id, d.name
		HAVING SUM(l.current_quantity) > 0
		ORDER BY current_bags DESC
		LIMIT $2
	`

	var rows []reports.DepositorRank
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, facilityID, limit); err != nil {
		return nil, fmt.Errorf("top depositors: %w", err)
	}
	return rows, nil
}

// DayBook pages through all vouchers in scope, newest first. Receipts
// and deliveries interleave in one stream; bag totals come from
// current quantities for receipts and removed quantities for
// deliveries. The $2 depositor scope is NULL for a facility-wide view.
func (r *StockReportRepo) DayBook(ctx context.Context, scope reports.Scope, filter domain.ListFilter) (domain.ListResult[reports.DayBookEntry], error) {
	result := domain.ListResult[reports.DayBookEntry]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	const unionSQL = `
		SELECT r.id AS voucher_id, r.voucher_kind, r.voucher_number,
			   r.depositor_id, d.name AS depositor_name, r.date,
			   COALESCE((SELECT SUM(l.current_quantity) FROM receipt_lines l WHERE l.receipt_id = r.id), 0) AS total_bags
		FROM receipts r
		JOIN depositors d ON d.id = r.depositor_id
		WHERE r.facility_id = $1 AND ($2::uuid IS NULL OR r.depositor_id = $2)
		UNION ALL
		SELECT dv.id, dv.voucher_kind, dv.voucher_number,
			   dv.depositor_id, d.name, dv.date,
			   COALESCE((SELECT SUM(l.quantity_removed) FROM delivery_lines l WHERE l.delivery_id = dv.id), 0)
		FROM deliveries dv
		JOIN depositors d ON d.id = dv.depositor_id
		WHERE dv.facility_id = $1 AND ($2::uuid IS NULL OR dv.depositor_id = $2)
	`

	querier := r.txManager.GetQuerier(ctx)

	countSQL := "SELECT COUNT(*) FROM (" + unionSQL + ") sub"
	if err := querier.QueryRow(ctx, countSQL, scope.FacilityID, scope.DepositorID).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("day book count: %w", err)
	}

	pageSQL := unionSQL + " ORDER BY date DESC, voucher_number DESC LIMIT $3 OFFSET $4"
	if err := pgxscan.Select(ctx, querier, &result.Items, pageSQL, scope.FacilityID, scope.DepositorID, filter.Limit, filter.Offset); err != nil {
		return result, fmt.Errorf("day book: %w", err)
	}
	return result, nil
}

// VarietiesAvailable lists distinct varieties with remaining stock for
// the depositor at the facility.
func (r *StockReportRepo) VarietiesAvailable(ctx context.Context, facilityID, depositorID id.ID) ([]stock.Variety, error) {
	sql := `
		SELECT DISTINCT l.variety
		FROM receipt_lines l
		JOIN receipts r ON r.id = l.receipt_id
		WHERE r.facility_id = $1 AND r.depositor_id = $2 AND l.current_quantity > 0
		ORDER BY l.variety
	`

	var varieties []stock.Variety
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &varieties, sql, facilityID, depositorID); err != nil {
		return nil, fmt.Errorf("varieties available: %w", err)
	}
	return varieties, nil
}
