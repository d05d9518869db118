package facility

import (
	"context"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/id"
	"coldledger/pkg/logger"
)

// Service provides business logic for the Facility catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Facility service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new facility.
func (s *Service) Create(ctx context.Context, f *Facility) error {
	if err := f.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return err
	}

	logger.Info(ctx, "facility created", "id", f.ID, "name", f.Name)
	return nil
}

// GetByID retrieves a facility.
func (s *Service) GetByID(ctx context.Context, facilityID id.ID) (*Facility, error) {
	return s.repo.GetByID(ctx, facilityID)
}

// Update validates and persists facility changes.
func (s *Service) Update(ctx context.Context, f *Facility) error {
	if err := f.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, f)
}

// List returns all facilities.
func (s *Service) List(ctx context.Context) ([]*Facility, error) {
	return s.repo.List(ctx)
}

// MustExist fails with NotFoundError when the facility is absent.
func (s *Service) MustExist(ctx context.Context, facilityID id.ID) error {
	ok, err := s.repo.Exists(ctx, facilityID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewNotFound("facility", facilityID.String())
	}
	return nil
}
