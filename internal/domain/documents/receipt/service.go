package receipt

import (
	"context"
	"fmt"
	"time"

	"coldledger/internal/core/apperror"
	appctx "coldledger/internal/core/context"
	"coldledger/internal/core/entity"
	"coldledger/internal/core/id"
	"coldledger/internal/core/sequence"
	"coldledger/internal/core/tx"
	"coldledger/internal/domain"
	"coldledger/internal/domain/audit"
	"coldledger/internal/domain/stock"
	"coldledger/pkg/logger"
)

// DepositorDirectory validates depositor references.
// Satisfied by the depositor catalog service.
type DepositorDirectory interface {
	MustExist(ctx context.Context, depositorID, facilityID id.ID) error
}

// Service provides business operations for receipt vouchers.
type Service struct {
	repo       Repository
	depositors DepositorDirectory
	sequencer  sequence.Sequencer
	txManager  tx.Manager
	auditor    audit.Recorder
}

// NewService creates a new receipt service.
func NewService(
	repo Repository,
	depositors DepositorDirectory,
	sequencer sequence.Sequencer,
	txManager tx.Manager,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:       repo,
		depositors: depositors,
		sequencer:  sequencer,
		txManager:  txManager,
		auditor:    auditor,
	}
}

// CreateInput carries the fields of a new receipt.
type CreateInput struct {
	DepositorID id.ID
	Lines       []stock.Line
	Location    stock.Location
	Date        time.Time
	Remarks     string
}

// Create records an incoming order for the facility.
//
// The stock snapshot, the voucher number and the insert all happen in
// one transaction so the snapshot reflects the stock level the number
// was issued against.
func (s *Service) Create(ctx context.Context, facilityID id.ID, in CreateInput) (*Receipt, error) {
	if err := s.depositors.MustExist(ctx, in.DepositorID, facilityID); err != nil {
		return nil, err
	}

	lines, err := stock.NormalizeLines(in.Lines)
	if err != nil {
		return nil, err
	}

	doc := New(facilityID, in.DepositorID, lines, in.Location)
	doc.Remarks = in.Remarks
	doc.CreatedBy = actor(ctx)
	doc.UpdatedBy = doc.CreatedBy
	if !in.Date.IsZero() {
		doc.Date = in.Date
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
		base, err := s.repo.TotalCurrentStock(ctx, facilityID, nil)
		if err != nil {
			return fmt.Errorf("total current stock: %w", err)
		}
		doc.StockSnapshot = base + doc.TotalCurrent()

		number, err := s.sequencer.Next(ctx, facilityID, entity.KindReceipt)
		if err != nil {
			return fmt.Errorf("next voucher number: %w", err)
		}
		doc.Number = number

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}
		if err := s.repo.ReplaceLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.NewEntry("receipt", doc.ID, audit.ActionCreate, doc.CreatedBy, doc))

	logger.Info(ctx, "receipt created",
		"id", doc.ID,
		"number", doc.Number,
		"depositor_id", doc.DepositorID,
		"total_bags", doc.TotalCurrent())

	return doc, nil
}

// GetByID retrieves a receipt with lines, scoped to the caller's facility.
func (s *Service) GetByID(ctx context.Context, facilityID, docID id.ID) (*Receipt, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !doc.OwnedBy(facilityID) {
		return nil, apperror.NewForbidden("receipt belongs to another facility")
	}
	return doc, nil
}

// Edit updates a receipt's remarks, date, fulfilled flag, location or
// stock lines, and recomputes the stock snapshot against the moving
// baseline. The receipt being edited is excluded from the baseline sum
// so its own stock is not counted twice.
func (s *Service) Edit(ctx context.Context, facilityID, docID id.ID, in EditInput) (*Receipt, error) {
	var doc *Receipt

	err := s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if !doc.OwnedBy(facilityID) {
			return apperror.NewForbidden("receipt belongs to another facility")
		}

		if in.Remarks != nil {
			doc.Remarks = *in.Remarks
		}
		if in.Date != nil {
			doc.Date = *in.Date
		}
		if in.Location != nil {
			doc.Location = *in.Location
		}

		linesReplaced := in.Lines != nil
		if linesReplaced {
			lines, err := stock.NormalizeLines(in.Lines)
			if err != nil {
				return err
			}
			doc.Lines = lines
		}

		if err := doc.Validate(ctx); err != nil {
			return err
		}

		// Quantity edits move the fulfillment state; an explicit flag
		// in the request wins over the recomputed value.
		if linesReplaced {
			doc.Fulfilled = doc.FullyDrawnDown()
		}
		if in.Fulfilled != nil {
			doc.Fulfilled = *in.Fulfilled
		}

		base, err := s.repo.TotalCurrentStock(ctx, facilityID, &docID)
		if err != nil {
			return fmt.Errorf("total current stock: %w", err)
		}
		doc.StockSnapshot = base + doc.TotalCurrent()

		doc.UpdatedBy = actor(ctx)

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update receipt: %w", err)
		}
		if linesReplaced {
			if err := s.repo.ReplaceLines(ctx, doc.ID, doc.Lines); err != nil {
				return fmt.Errorf("save lines: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.NewEntry("receipt", doc.ID, audit.ActionUpdate, doc.UpdatedBy, doc))

	logger.Info(ctx, "receipt updated", "id", doc.ID, "number", doc.Number)
	return doc, nil
}

// Delete removes a receipt. Administrative action: deliveries that
// reference the receipt are left as recorded, their decrements are not
// reversed and their source links now point at a removed voucher.
func (s *Service) Delete(ctx context.Context, facilityID, docID id.ID) error {
	if !appctx.IsAdmin(ctx) {
		return apperror.NewForbidden("receipt deletion requires administrator rights")
	}

	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if !doc.OwnedBy(facilityID) {
		return apperror.NewForbidden("receipt belongs to another facility")
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, docID)
	})
	if err != nil {
		return err
	}

	s.record(ctx, audit.NewEntry("receipt", docID, audit.ActionDelete, actor(ctx), doc))

	logger.Info(ctx, "receipt deleted", "id", docID, "number", doc.Number)
	return nil
}

// List retrieves the facility's receipts with filtering.
func (s *Service) List(ctx context.Context, facilityID id.ID, filter ListFilter) (domain.ListResult[*Receipt], error) {
	return s.repo.List(ctx, facilityID, filter)
}

func (s *Service) record(ctx context.Context, entry audit.Entry) {
	if err := s.auditor.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "audit record failed", "entity_id", entry.EntityID, "error", err)
	}
}

func actor(ctx context.Context) string {
	if ident := appctx.GetIdentity(ctx); ident != nil {
		return ident.Subject
	}
	return ""
}
