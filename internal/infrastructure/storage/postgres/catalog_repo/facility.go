// Package catalog_repo provides PostgreSQL implementations for the
// facility and depositor catalogs.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/id"
	"coldledger/internal/domain/catalogs/facility"
	"coldledger/internal/infrastructure/storage/postgres"
)

const facilitiesTable = "facilities"

var facilityCols = []string{
	"id", "version", "code", "name", "is_active",
	"address", "contact_number", "capacity", "cost_per_bag", "bag_sizes",
}

// Compile-time check that FacilityRepo implements facility.Repository.
var _ facility.Repository = (*FacilityRepo)(nil)

// FacilityRepo implements facility.Repository.
type FacilityRepo struct {
	txManager *postgres.TxManager
}

// NewFacilityRepo creates a new facility repository.
func NewFacilityRepo(txManager *postgres.TxManager) *FacilityRepo {
	return &FacilityRepo{txManager: txManager}
}

func (r *FacilityRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new facility.
func (r *FacilityRepo) Create(ctx context.Context, f *facility.Facility) error {
	q := r.builder().
		Insert(facilitiesTable).
		Columns(facilityCols...).
		Values(
			f.ID, f.Version, f.Code, f.Name, f.IsActive,
			f.Address, f.ContactNumber, f.Capacity, f.CostPerBag, f.BagSizes,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert facility: %w", err)
	}
	return nil
}

// GetByID retrieves a facility by ID.
func (r *FacilityRepo) GetByID(ctx context.Context, facilityID id.ID) (*facility.Facility, error) {
	q := r.builder().
		Select(facilityCols...).
		From(facilitiesTable).
		Where(squirrel.Eq{"id": facilityID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var f facility.Facility
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &f, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("facility", facilityID.String())
		}
		return nil, fmt.Errorf("get facility: %w", err)
	}
	return &f, nil
}

// Update updates a facility with optimistic locking.
func (r *FacilityRepo) Update(ctx context.Context, f *facility.Facility) error {
	q := r.builder().
		Update(facilitiesTable).
		Set("code", f.Code).
		Set("name", f.Name).
		Set("is_active", f.IsActive).
		Set("address", f.Address).
		Set("contact_number", f.ContactNumber).
		Set("capacity", f.Capacity).
		Set("cost_per_bag", f.CostPerBag).
		Set("bag_sizes", f.BagSizes).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": f.ID}).
		Where(squirrel.Eq{"version": f.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update facility: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("facility", f.ID.String())
	}
	return nil
}

// List returns all facilities ordered by name.
func (r *FacilityRepo) List(ctx context.Context) ([]*facility.Facility, error) {
	q := r.builder().
		Select(facilityCols...).
		From(facilitiesTable).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*facility.Facility
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	return items, nil
}

// Exists checks whether a facility exists.
func (r *FacilityRepo) Exists(ctx context.Context, facilityID id.ID) (bool, error) {
	sql := "SELECT EXISTS(SELECT 1 FROM " + facilitiesTable + " WHERE id = $1)"

	var exists bool
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, facilityID).Scan(&exists); err != nil {
		return false, fmt.Errorf("facility exists: %w", err)
	}
	return exists, nil
}
