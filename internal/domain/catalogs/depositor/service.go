package depositor

import (
	"context"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/id"
	"coldledger/pkg/logger"
)

// Service provides business logic for the Depositor catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Depositor service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new depositor.
func (s *Service) Create(ctx context.Context, d *Depositor) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return err
	}

	logger.Info(ctx, "depositor created", "id", d.ID, "name", d.Name)
	return nil
}

// GetByID retrieves a depositor.
func (s *Service) GetByID(ctx context.Context, depositorID id.ID) (*Depositor, error) {
	return s.repo.GetByID(ctx, depositorID)
}

// Update validates and persists depositor changes.
func (s *Service) Update(ctx context.Context, d *Depositor) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, d)
}

// ListByFacility returns depositors registered with the facility.
func (s *Service) ListByFacility(ctx context.Context, facilityID id.ID) ([]*Depositor, error) {
	return s.repo.ListByFacility(ctx, facilityID)
}

// Register links the depositor to a facility. Registering twice is a no-op.
func (s *Service) Register(ctx context.Context, depositorID, facilityID id.ID) error {
	ok, err := s.repo.Exists(ctx, depositorID, facilityID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := s.repo.Register(ctx, depositorID, facilityID); err != nil {
		return err
	}
	logger.Info(ctx, "depositor registered", "depositor_id", depositorID, "facility_id", facilityID)
	return nil
}

// MustExist fails with NotFoundError when the depositor is not
// registered with the facility.
func (s *Service) MustExist(ctx context.Context, depositorID, facilityID id.ID) error {
	ok, err := s.repo.Exists(ctx, depositorID, facilityID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewNotFound("depositor", depositorID.String())
	}
	return nil
}
