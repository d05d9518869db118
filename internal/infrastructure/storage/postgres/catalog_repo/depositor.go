package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/id"
	"coldledger/internal/domain/catalogs/depositor"
	"coldledger/internal/infrastructure/storage/postgres"
)

const (
	depositorsTable    = "depositors"
	registrationsTable = "depositor_facilities"
)

var depositorCols = []string{
	"id", "version", "code", "name", "is_active",
	"mobile_number", "address",
}

// Compile-time check that DepositorRepo implements depositor.Repository.
var _ depositor.Repository = (*DepositorRepo)(nil)

// DepositorRepo implements depositor.Repository. Facility registrations
// live in a join table; the ledger's existence check resolves against it.
type DepositorRepo struct {
	txManager *postgres.TxManager
}

// NewDepositorRepo creates a new depositor repository.
func NewDepositorRepo(txManager *postgres.TxManager) *DepositorRepo {
	return &DepositorRepo{txManager: txManager}
}

func (r *DepositorRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new depositor and any initial facility registrations.
func (r *DepositorRepo) Create(ctx context.Context, d *depositor.Depositor) error {
	q := r.builder().
		Insert(depositorsTable).
		Columns(depositorCols...).
		Values(
			d.ID, d.Version, d.Code, d.Name, d.IsActive,
			d.MobileNumber, d.Address,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert depositor: %w", err)
	}

	for _, fid := range d.FacilityIDs {
		if err := r.Register(ctx, d.ID, fid); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a depositor with their facility registrations.
func (r *DepositorRepo) GetByID(ctx context.Context, depositorID id.ID) (*depositor.Depositor, error) {
	q := r.builder().
		Select(depositorCols...).
		From(depositorsTable).
		Where(squirrel.Eq{"id": depositorID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d depositor.Depositor
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("depositor", depositorID.String())
		}
		return nil, fmt.Errorf("get depositor: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &d.FacilityIDs,
		"SELECT facility_id FROM "+registrationsTable+" WHERE depositor_id = $1", depositorID); err != nil {
		return nil, fmt.Errorf("get registrations: %w", err)
	}
	return &d, nil
}

// Update updates a depositor with optimistic locking.
func (r *DepositorRepo) Update(ctx context.Context, d *depositor.Depositor) error {
	q := r.builder().
		Update(depositorsTable).
		Set("code", d.Code).
		Set("name", d.Name).
		Set("is_active", d.IsActive).
		Set("mobile_number", d.MobileNumber).
		Set("address", d.Address).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": d.ID}).
		Where(squirrel.Eq{"version": d.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update depositor: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("depositor", d.ID.String())
	}
	return nil
}

// ListByFacility returns depositors registered with the facility.
func (r *DepositorRepo) ListByFacility(ctx context.Context, facilityID id.ID) ([]*depositor.Depositor, error) {
	q := r.builder().
		Select(
			"d.id", "d.version", "d.code", "d.name", "d.is_active",
			"d.mobile_number", "d.address",
		).
		From(depositorsTable + " d").
		Join(registrationsTable + " r ON r.depositor_id = d.id").
		Where(squirrel.Eq{"r.facility_id": facilityID}).
		OrderBy("d.name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*depositor.Depositor
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list depositors: %w", err)
	}
	return items, nil
}

// Register links a depositor to a facility. Idempotent.
func (r *DepositorRepo) Register(ctx context.Context, depositorID, facilityID id.ID) error {
	sql := `
		INSERT INTO ` + registrationsTable + ` (depositor_id, facility_id)
		VALUES ($1, $2)
		ON CONFLICT (depositor_id, facility_id) DO NOTHING
	`

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, depositorID, facilityID); err != nil {
		return fmt.Errorf("register depositor: %w", err)
	}
	return nil
}

// Exists checks that the depositor is registered with the facility.
func (r *DepositorRepo) Exists(ctx context.Context, depositorID, facilityID id.ID) (bool, error) {
	sql := "SELECT EXISTS(SELECT 1 FROM " + registrationsTable + " WHERE depositor_id = $1 AND facility_id = $2)"

	var exists bool
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, depositorID, facilityID).Scan(&exists); err != nil {
		return false, fmt.Errorf("depositor exists: %w", err)
	}
	return exists, nil
}
