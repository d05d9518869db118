// Package document_repo provides PostgreSQL implementations for the
// receipt and delivery voucher repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/id"
	"coldledger/internal/domain"
	"coldledger/internal/domain/documents/receipt"
	"coldledger/internal/domain/stock"
	"coldledger/internal/infrastructure/storage/postgres"
)

const (
	receiptsTable     = "receipts"
	receiptLinesTable = "receipt_lines"
)

// Location columns are aliased into the nested struct path scany expects.
var receiptCols = []string{
	"id", "version", "created_at", "updated_at", "created_by", "updated_by",
	"facility_id", "depositor_id", "voucher_kind", "voucher_number", "date", "remarks",
	"fulfilled", "stock_snapshot",
	`loc_floor AS "location.floor"`,
	`loc_row AS "location.row"`,
	`loc_chamber AS "location.chamber"`,
}

var receiptLineCols = []string{"receipt_id", "variety", "bag_size", "initial_quantity", "current_quantity"}

// Compile-time check that ReceiptRepo implements receipt.Repository.
var _ receipt.Repository = (*ReceiptRepo)(nil)

// ReceiptRepo implements receipt.Repository.
type ReceiptRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
}

// NewReceiptRepo creates a new receipt repository.
func NewReceiptRepo(txManager *postgres.TxManager) *ReceiptRepo {
	return &ReceiptRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
	}
}

func (r *ReceiptRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ReceiptRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(receiptCols...).From(receiptsTable)
}

// Create inserts a new receipt (without lines; see ReplaceLines).
func (r *ReceiptRepo) Create(ctx context.Context, doc *receipt.Receipt) error {
	q := r.builder().
		Insert(receiptsTable).
		Columns(
			"id", "version", "created_at", "updated_at", "created_by", "updated_by",
			"facility_id", "depositor_id", "voucher_kind", "voucher_number", "date", "remarks",
			"fulfilled", "stock_snapshot", "loc_floor", "loc_row", "loc_chamber",
		).
		Values(
			doc.ID, doc.Version, doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
			doc.FacilityID, doc.DepositorID, doc.Kind, doc.Number, doc.Date, doc.Remarks,
			doc.Fulfilled, doc.StockSnapshot,
			doc.Location.Floor, doc.Location.Row, doc.Location.Chamber,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

// GetByID retrieves a receipt with lines.
func (r *ReceiptRepo) GetByID(ctx context.Context, docID id.ID) (*receipt.Receipt, error) {
	return r.get(ctx, docID, false)
}

// GetForUpdate retrieves a receipt with lines, taking a row lock.
func (r *ReceiptRepo) GetForUpdate(ctx context.Context, docID id.ID) (*receipt.Receipt, error) {
	return r.get(ctx, docID, true)
}

func (r *ReceiptRepo) get(ctx context.Context, docID id.ID, forUpdate bool) (*receipt.Receipt, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": docID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc receipt.Receipt
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("receipt", docID.String())
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}

	lines, err := r.GetLines(ctx, docID)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines

	return &doc, nil
}

// Update updates a receipt with optimistic locking.
func (r *ReceiptRepo) Update(ctx context.Context, doc *receipt.Receipt) error {
	q := r.builder().
		Update(receiptsTable).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("updated_by", doc.UpdatedBy).
		Set("date", doc.Date).
		Set("remarks", doc.Remarks).
		Set("fulfilled", doc.Fulfilled).
		Set("stock_snapshot", doc.StockSnapshot).
		Set("loc_floor", doc.Location.Floor).
		Set("loc_row", doc.Location.Row).
		Set("loc_chamber", doc.Location.Chamber).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": doc.ID}).
		Where(squirrel.Eq{"version": doc.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update receipt: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("receipt", doc.ID.String())
	}
	return nil
}

// Delete removes a receipt; its lines cascade.
func (r *ReceiptRepo) Delete(ctx context.Context, docID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, "DELETE FROM "+receiptsTable+" WHERE id = $1", docID)
	if err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("receipt", docID.String())
	}
	return nil
}

// GetLines retrieves the receipt's stock lines.
func (r *ReceiptRepo) GetLines(ctx context.Context, docID id.ID) ([]stock.Line, error) {
	q := r.builder().
		Select("variety", "bag_size", "initial_quantity", "current_quantity").
		From(receiptLinesTable).
		Where(squirrel.Eq{"receipt_id": docID}).
		OrderBy("variety", "bag_size")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []stock.Line
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}

// ReplaceLines rewrites the receipt's stock lines (delete + COPY).
func (r *ReceiptRepo) ReplaceLines(ctx context.Context, docID id.ID, lines []stock.Line) error {
	querier := r.txManager.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, "DELETE FROM "+receiptLinesTable+" WHERE receipt_id = $1", docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []any{docID, l.Variety, l.Size, l.Initial, l.Current})
	}

	if _, err := r.inserter.CopyFromSlice(ctx, receiptLinesTable, receiptLineCols, rows); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}
	return nil
}

// DecrementLine conditionally subtracts from a stock line. The
// predicate re-checks the quantity at write time: a concurrent drain
// makes the update match zero rows instead of going negative.
func (r *ReceiptRepo) DecrementLine(ctx context.Context, docID id.ID, variety stock.Variety, size stock.BagSize, qty int64) (bool, error) {
	sql := `
		UPDATE ` + receiptLinesTable + `
		SET current_quantity = current_quantity - $4
		WHERE receipt_id = $1 AND variety = $2 AND bag_size = $3
		  AND current_quantity >= $4
	`

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, docID, variety, size, qty)
	if err != nil {
		return false, fmt.Errorf("decrement line: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// IncrementLine adds reversed quantity back onto a stock line.
func (r *ReceiptRepo) IncrementLine(ctx context.Context, docID id.ID, variety stock.Variety, size stock.BagSize, qty int64) (bool, error) {
	sql := `
		UPDATE ` + receiptLinesTable + `
		SET current_quantity = current_quantity + $4
		WHERE receipt_id = $1 AND variety = $2 AND bag_size = $3
	`

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, docID, variety, size, qty)
	if err != nil {
		return false, fmt.Errorf("increment line: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// SetFulfilled writes the cached fulfillment flag.
func (r *ReceiptRepo) SetFulfilled(ctx context.Context, docID id.ID, fulfilled bool) error {
	sql := "UPDATE " + receiptsTable + " SET fulfilled = $2, updated_at = NOW() WHERE id = $1"

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, docID, fulfilled)
	if err != nil {
		return fmt.Errorf("set fulfilled: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("receipt", docID.String())
	}
	return nil
}

// TotalCurrentStock sums current quantities across the facility's
// receipt lines, optionally excluding one receipt.
func (r *ReceiptRepo) TotalCurrentStock(ctx context.Context, facilityID id.ID, exclude *id.ID) (int64, error) {
	q := r.builder().
		Select("COALESCE(SUM(l.current_quantity), 0)").
		From(receiptLinesTable + " l").
		Join(receiptsTable + " r ON r.id = l.receipt_id").
		Where(squirrel.Eq{"r.facility_id": facilityID})

	if exclude != nil {
		q = q.Where(squirrel.NotEq{"r.id": *exclude})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var total int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("total current stock: %w", err)
	}
	return total, nil
}

// List retrieves the facility's receipts with filtering and lines attached.
func (r *ReceiptRepo) List(ctx context.Context, facilityID id.ID, filter receipt.ListFilter) (domain.ListResult[*receipt.Receipt], error) {
	result := domain.ListResult[*receipt.Receipt]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().Where(squirrel.Eq{"facility_id": facilityID})

	if filter.DepositorID != nil {
		q = q.Where(squirrel.Eq{"depositor_id": *filter.DepositorID})
	}
	if filter.Fulfilled != nil {
		q = q.Where(squirrel.Eq{"fulfilled": *filter.Fulfilled})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	if filter.Variety != nil {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+receiptLinesTable+" l WHERE l.receipt_id = "+receiptsTable+".id AND l.variety = ?)",
			*filter.Variety,
		))
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := "date DESC, voucher_number DESC"
	if filter.OrderBy != "" {
		orderBy = parseOrderBy(filter.OrderBy)
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list receipts: %w", err)
	}

	if err := r.attachLines(ctx, result.Items); err != nil {
		return result, err
	}
	return result, nil
}

// attachLines loads lines for all listed receipts in one query.
func (r *ReceiptRepo) attachLines(ctx context.Context, docs []*receipt.Receipt) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]id.ID, 0, len(docs))
	byID := make(map[id.ID]*receipt.Receipt, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
		byID[d.ID] = d
	}

	q := r.builder().
		Select(receiptLineCols...).
		From(receiptLinesTable).
		Where(squirrel.Eq{"receipt_id": ids}).
		OrderBy("variety", "bag_size")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	type lineRow struct {
		ReceiptID id.ID         `db:"receipt_id"`
		Variety   stock.Variety `db:"variety"`
		Size      stock.BagSize `db:"bag_size"`
		Initial   int64         `db:"initial_quantity"`
		Current   int64         `db:"current_quantity"`
	}

	var rows []lineRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return fmt.Errorf("attach lines: %w", err)
	}

	for _, row := range rows {
		doc := byID[row.ReceiptID]
		doc.Lines = append(doc.Lines, stock.Line{
			Variety: row.Variety,
			Size:    row.Size,
			Initial: row.Initial,
			Current: row.Current,
		})
	}
	return nil
}
