package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/id"
	"coldledger/internal/domain"
	"coldledger/internal/domain/documents/delivery"
	"coldledger/internal/infrastructure/storage/postgres"
)

const (
	deliveriesTable    = "deliveries"
	deliveryLinesTable = "delivery_lines"
)

var deliveryCols = []string{
	"id", "version", "created_at", "updated_at", "created_by", "updated_by",
	"facility_id", "depositor_id", "voucher_kind", "voucher_number", "date", "remarks",
}

var deliveryLineCols = []string{"delivery_id", "source_receipt_id", "variety", "bag_size", "quantity_removed"}

// Compile-time check that DeliveryRepo implements delivery.Repository.
var _ delivery.Repository = (*DeliveryRepo)(nil)

// DeliveryRepo implements delivery.Repository.
type DeliveryRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
}

// NewDeliveryRepo creates a new delivery repository.
func NewDeliveryRepo(txManager *postgres.TxManager) *DeliveryRepo {
	return &DeliveryRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
	}
}

func (r *DeliveryRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *DeliveryRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(deliveryCols...).From(deliveriesTable)
}

// Create inserts a new delivery (without items; see ReplaceItems).
func (r *DeliveryRepo) Create(ctx context.Context, doc *delivery.Delivery) error {
	q := r.builder().
		Insert(deliveriesTable).
		Columns(deliveryCols...).
		Values(
			doc.ID, doc.Version, doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
			doc.FacilityID, doc.DepositorID, doc.Kind, doc.Number, doc.Date, doc.Remarks,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// GetByID retrieves a delivery with items.
func (r *DeliveryRepo) GetByID(ctx context.Context, docID id.ID) (*delivery.Delivery, error) {
	return r.get(ctx, docID, false)
}

// GetForUpdate retrieves a delivery with items, taking a row lock.
func (r *DeliveryRepo) GetForUpdate(ctx context.Context, docID id.ID) (*delivery.Delivery, error) {
	return r.get(ctx, docID, true)
}

func (r *DeliveryRepo) get(ctx context.Context, docID id.ID, forUpdate bool) (*delivery.Delivery, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": docID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc delivery.Delivery
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("delivery", docID.String())
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}

	items, err := r.GetItems(ctx, docID)
	if err != nil {
		return nil, err
	}
	doc.Items = items

	return &doc, nil
}

// Update updates a delivery with optimistic locking.
func (r *DeliveryRepo) Update(ctx context.Context, doc *delivery.Delivery) error {
	q := r.builder().
		Update(deliveriesTable).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("updated_by", doc.UpdatedBy).
		Set("date", doc.Date).
		Set("remarks", doc.Remarks).
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
		return fmt.Errorf("update delivery: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("delivery", doc.ID.String())
	}
	return nil
}

// Delete removes a delivery; its items cascade.
func (r *DeliveryRepo) Delete(ctx context.Context, docID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, "DELETE FROM "+deliveriesTable+" WHERE id = $1", docID)
	if err != nil {
		return fmt.Errorf("delete delivery: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("delivery", docID.String())
	}
	return nil
}

// GetItems retrieves the delivery's line items.
func (r *DeliveryRepo) GetItems(ctx context.Context, docID id.ID) ([]delivery.Item, error) {
	q := r.builder().
		Select("source_receipt_id", "variety", "bag_size", "quantity_removed").
		From(deliveryLinesTable).
		Where(squirrel.Eq{"delivery_id": docID}).
		OrderBy("variety", "bag_size")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []delivery.Item
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return items, nil
}

// ReplaceItems rewrites the delivery's line items (delete + COPY).
func (r *DeliveryRepo) ReplaceItems(ctx context.Context, docID id.ID, items []delivery.Item) error {
	querier := r.txManager.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, "DELETE FROM "+deliveryLinesTable+" WHERE delivery_id = $1", docID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{docID, it.SourceReceiptID, it.Variety, it.Size, it.QuantityRemoved})
	}

	if _, err := r.inserter.CopyFromSlice(ctx, deliveryLinesTable, deliveryLineCols, rows); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

// List retrieves the facility's deliveries with filtering and items attached.
func (r *DeliveryRepo) List(ctx context.Context, facilityID id.ID, filter delivery.ListFilter) (domain.ListResult[*delivery.Delivery], error) {
	result := domain.ListResult[*delivery.Delivery]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().Where(squirrel.Eq{"facility_id": facilityID})

	if filter.DepositorID != nil {
		q = q.Where(squirrel.Eq{"depositor_id": *filter.DepositorID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	if filter.SourceReceiptID != nil {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+deliveryLinesTable+" l WHERE l.delivery_id = "+deliveriesTable+".id AND l.source_receipt_id = ?)",
			*filter.SourceReceiptID,
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
		return result, fmt.Errorf("list deliveries: %w", err)
	}

	if err := r.attachItems(ctx, result.Items); err != nil {
		return result, err
	}
	return result, nil
}

// attachItems loads items for all listed deliveries in one query.
func (r *DeliveryRepo) attachItems(ctx context.Context, docs []*delivery.Delivery) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]id.ID, 0, len(docs))
	byID := make(map[id.ID]*delivery.Delivery, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
		byID[d.ID] = d
	}

	q := r.builder().
		Select(deliveryLineCols...).
		From(deliveryLinesTable).
		Where(squirrel.Eq{"delivery_id": ids}).
		OrderBy("variety", "bag_size")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	type itemRow struct {
		DeliveryID id.ID `db:"delivery_id"`
		delivery.Item
	}

	var rows []itemRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return fmt.Errorf("attach items: %w", err)
	}

	for _, row := range rows {
		doc := byID[row.DeliveryID]
		doc.Items = append(doc.Items, row.Item)
	}
	return nil
}
