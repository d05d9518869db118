package reports

import (
	"context"
	"fmt"

	"coldledger/internal/core/id"
	"coldledger/internal/core/types"
	"coldledger/internal/domain"
	"coldledger/internal/domain/catalogs/facility"
	"coldledger/internal/domain/stock"
)

// FacilityDirectory resolves facility records for rate lookups.
// Satisfied by the facility catalog service.
type FacilityDirectory interface {
	GetByID(ctx context.Context, facilityID id.ID) (*facility.Facility, error)
}

// Service provides the aggregated reporting views.
type Service struct {
	repo       Repository
	facilities FacilityDirectory
}

// NewService creates a new reports service.
func NewService(repo Repository, facilities FacilityDirectory) *Service {
	return &Service{repo: repo, facilities: facilities}
}

// Summarize reconstructs the (variety, size) stock position for the
// facility, or for one depositor when depositorID is non-nil.
func (s *Service) Summarize(ctx context.Context, facilityID id.ID, depositorID *id.ID) ([]VarietySummary, error) {
	scope := Scope{FacilityID: facilityID, DepositorID: depositorID}

	receipts, err := s.repo.ReceiptAggregates(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("receipt aggregates: %w", err)
	}
	deliveries, err := s.repo.DeliveryAggregates(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("delivery aggregates: %w", err)
	}

	return Merge(receipts, deliveries), nil
}

// CurrentTotalStock sums current stock across the whole facility.
func (s *Service) CurrentTotalStock(ctx context.Context, facilityID id.ID) (int64, error) {
	return s.repo.CurrentTotalStock(ctx, facilityID)
}

// FacilitySummary builds the dashboard view: the variety breakdown,
// the total current bag count and the storage charges accrued against
// it at the facility's per-bag rate.
func (s *Service) FacilitySummary(ctx context.Context, facilityID id.ID) (*FacilitySummary, error) {
	fac, err := s.facilities.GetByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	varieties, err := s.Summarize(ctx, facilityID, nil)
	if err != nil {
		return nil, err
	}

	total := TotalCurrent(varieties)

	return &FacilitySummary{
		FacilityID:       facilityID,
		TotalCurrentBags: total,
		StorageCharges:   types.MoneyFromBags(fac.CostPerBag, total),
		Varieties:        varieties,
	}, nil
}

// TopDepositors ranks depositors by current bag count.
func (s *Service) TopDepositors(ctx context.Context, facilityID id.ID, limit int) ([]DepositorRank, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.TopDepositors(ctx, facilityID, limit)
}

// DayBook pages through the facility's vouchers, newest first; with a
// depositor set, only that depositor's vouchers.
func (s *Service) DayBook(ctx context.Context, facilityID id.ID, depositorID *id.ID, filter domain.ListFilter) (domain.ListResult[DayBookEntry], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.DayBook(ctx, Scope{FacilityID: facilityID, DepositorID: depositorID}, filter)
}

// VarietiesAvailable lists varieties the depositor still holds stock of.
func (s *Service) VarietiesAvailable(ctx context.Context, facilityID, depositorID id.ID) ([]stock.Variety, error) {
	return s.repo.VarietiesAvailable(ctx, facilityID, depositorID)
}
