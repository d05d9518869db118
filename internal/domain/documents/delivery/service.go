package delivery

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

// Service provides business operations for delivery vouchers.
//
// Every write path runs in one serializable transaction spanning the
// stock reads, the sufficiency checks, the conditional decrements, the
// fulfillment flag writes, the voucher number issuance and the document
// write. A failure anywhere aborts the whole thing: no partial
// decrement, no orphaned delivery.
type Service struct {
	repo       Repository
	receipts   ReceiptLedger
	depositors DepositorDirectory
	sequencer  sequence.Sequencer
	txManager  tx.Manager
	auditor    audit.Recorder
}

// NewService creates a new delivery service.
func NewService(
	repo Repository,
	receipts ReceiptLedger,
	depositors DepositorDirectory,
	sequencer sequence.Sequencer,
	txManager tx.Manager,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:       repo,
		receipts:   receipts,
		depositors: depositors,
		sequencer:  sequencer,
		txManager:  txManager,
		auditor:    auditor,
	}
}

// LineRequest asks for a removal from one stock line of one receipt.
// Variety and size arrive raw and are canonicalized before matching.
type LineRequest struct {
	ReceiptID id.ID
	Variety   string
	Size      string
	Quantity  int64
}

// CreateInput carries the fields of a new delivery.
type CreateInput struct {
	DepositorID id.ID
	Lines       []LineRequest
	Date        time.Time
	Remarks     string
}

// Create records an outgoing order, decrementing the source receipts.
func (s *Service) Create(ctx context.Context, facilityID id.ID, in CreateInput) (*Delivery, error) {
	if err := s.depositors.MustExist(ctx, in.DepositorID, facilityID); err != nil {
		return nil, err
	}

	items, err := normalizeRequests(in.Lines)
	if err != nil {
		return nil, err
	}

	doc := New(facilityID, in.DepositorID)
	doc.Items = items
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
		if err := s.applyItems(ctx, facilityID, doc.Items); err != nil {
			return err
		}

		number, err := s.sequencer.Next(ctx, facilityID, entity.KindDelivery)
		if err != nil {
			return fmt.Errorf("next voucher number: %w", err)
		}
		doc.Number = number

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create delivery: %w", err)
		}
		if err := s.repo.ReplaceItems(ctx, doc.ID, doc.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.NewEntry("delivery", doc.ID, audit.ActionCreate, doc.CreatedBy, doc))

	logger.Info(ctx, "delivery created",
		"id", doc.ID,
		"number", doc.Number,
		"depositor_id", doc.DepositorID,
		"total_removed", doc.TotalRemoved())

	return doc, nil
}

// GetByID retrieves a delivery with items, scoped to the caller's facility.
func (s *Service) GetByID(ctx context.Context, facilityID, docID id.ID) (*Delivery, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !doc.OwnedBy(facilityID) {
		return nil, apperror.NewForbidden("delivery belongs to another facility")
	}
	return doc, nil
}

// Edit replaces the delivery's items and optionally its remarks: the
// old decrements are reversed and the new ones applied inside one
// transaction, so no intermediate stock level is ever observable.
func (s *Service) Edit(ctx context.Context, facilityID, docID id.ID, lines []LineRequest, remarks *string) (*Delivery, error) {
	items, err := normalizeRequests(lines)
	if err != nil {
		return nil, err
	}

	var doc *Delivery

	err = s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if !doc.OwnedBy(facilityID) {
			return apperror.NewForbidden("delivery belongs to another facility")
		}

		if err := s.reverseItems(ctx, doc.Items); err != nil {
			return err
		}
		if err := s.applyItems(ctx, facilityID, items); err != nil {
			return err
		}

		doc.Items = items
		if remarks != nil {
			doc.Remarks = *remarks
		}
		doc.UpdatedBy = actor(ctx)

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update delivery: %w", err)
		}
		if err := s.repo.ReplaceItems(ctx, doc.ID, doc.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.NewEntry("delivery", doc.ID, audit.ActionUpdate, doc.UpdatedBy, doc))

	logger.Info(ctx, "delivery updated", "id", doc.ID, "number", doc.Number)
	return doc, nil
}

// Delete reverses the delivery's decrements back onto the source
// receipts and removes the document. A receipt whose stock becomes
// non-zero again gets its fulfilled flag reset explicitly here; the
// flag is never re-derived on read.
func (s *Service) Delete(ctx context.Context, facilityID, docID id.ID) error {
	var doc *Delivery

	err := s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if !doc.OwnedBy(facilityID) {
			return apperror.NewForbidden("delivery belongs to another facility")
		}

		if err := s.reverseItems(ctx, doc.Items); err != nil {
			return err
		}

		return s.repo.Delete(ctx, docID)
	})
	if err != nil {
		return err
	}

	s.record(ctx, audit.NewEntry("delivery", docID, audit.ActionDelete, actor(ctx), doc))

	logger.Info(ctx, "delivery deleted", "id", docID, "number", doc.Number)
	return nil
}

// List retrieves the facility's deliveries with filtering.
func (s *Service) List(ctx context.Context, facilityID id.ID, filter ListFilter) (domain.ListResult[*Delivery], error) {
	return s.repo.List(ctx, facilityID, filter)
}

// applyItems checks sufficiency and decrements every source line, then
// refreshes the fulfillment flag of each touched receipt. Must run
// inside the caller's transaction.
func (s *Service) applyItems(ctx context.Context, facilityID id.ID, items []Item) error {
	touched := make(map[id.ID]struct{}, len(items))

	for _, it := range items {
		rec, err := s.receipts.GetForUpdate(ctx, it.SourceReceiptID)
		if err != nil {
			return err
		}
		if !rec.OwnedBy(facilityID) {
			return apperror.NewForbidden("source receipt belongs to another facility")
		}

		available := int64(0)
		for _, l := range rec.Lines {
			if l.Variety == it.Variety && l.Size == it.Size {
				available = l.Current
				break
			}
		}
		if it.QuantityRemoved > available {
			return apperror.NewInsufficientStock(
				string(it.Variety), string(it.Size),
				it.QuantityRemoved, available)
		}

		// The decrement re-checks the quantity at write time. A zero
		// match here means another transaction drained the line between
		// our read and this write.
		ok, err := s.receipts.DecrementLine(ctx, it.SourceReceiptID, it.Variety, it.Size, it.QuantityRemoved)
		if err != nil {
			return fmt.Errorf("decrement stock line: %w", err)
		}
		if !ok {
			return apperror.NewConcurrentModification("receipt", it.SourceReceiptID.String())
		}

		touched[it.SourceReceiptID] = struct{}{}
	}

	return s.refreshFulfillment(ctx, touched)
}

// reverseItems adds previously removed quantities back onto the source
// lines and refreshes the fulfillment flags. Must run inside the
// caller's transaction.
func (s *Service) reverseItems(ctx context.Context, items []Item) error {
	touched := make(map[id.ID]struct{}, len(items))

	for _, it := range items {
		ok, err := s.receipts.IncrementLine(ctx, it.SourceReceiptID, it.Variety, it.Size, it.QuantityRemoved)
		if err != nil {
			return fmt.Errorf("restore stock line: %w", err)
		}
		if !ok {
			// The source receipt was administratively removed; there is
			// nothing to restore the stock onto.
			return apperror.NewNotFound("receipt stock line",
				fmt.Sprintf("%s %s/%s", it.SourceReceiptID, it.Variety, it.Size))
		}
		touched[it.SourceReceiptID] = struct{}{}
	}

	return s.refreshFulfillment(ctx, touched)
}

// refreshFulfillment re-reads each touched receipt's lines and writes
// the fulfilled flag where the stored value went stale.
func (s *Service) refreshFulfillment(ctx context.Context, receiptIDs map[id.ID]struct{}) error {
	for rid := range receiptIDs {
		lines, err := s.receipts.GetLines(ctx, rid)
		if err != nil {
			return fmt.Errorf("reread lines: %w", err)
		}
		fulfilled := len(lines) > 0 && stock.TotalCurrent(lines) == 0
		if err := s.receipts.SetFulfilled(ctx, rid, fulfilled); err != nil {
			return fmt.Errorf("set fulfilled: %w", err)
		}
	}
	return nil
}

func normalizeRequests(lines []LineRequest) ([]Item, error) {
	items := make([]Item, 0, len(lines))
	for _, req := range lines {
		variety, err := stock.NewVariety(req.Variety)
		if err != nil {
			return nil, err
		}
		size, err := stock.NewBagSize(req.Size)
		if err != nil {
			return nil, err
		}
		it := Item{
			SourceReceiptID: req.ReceiptID,
			Variety:         variety,
			Size:            size,
			QuantityRemoved: req.Quantity,
		}
		if err := it.Validate(); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
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
