package delivery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/entity"
	"coldledger/internal/core/id"
	"coldledger/internal/domain"
	"coldledger/internal/domain/audit"
	"coldledger/internal/domain/documents/receipt"
	"coldledger/internal/domain/stock"
)

// --- In-memory fakes ---
//
// The fake transaction manager snapshots both stores before running fn
// and restores them when fn fails, so the tests observe the same
// all-or-nothing behavior the database transaction gives the real
// repositories.

type fakeReceiptStore struct {
	receipts map[id.ID]*receipt.Receipt
}

func newFakeReceiptStore() *fakeReceiptStore {
	return &fakeReceiptStore{receipts: make(map[id.ID]*receipt.Receipt)}
}

func (s *fakeReceiptStore) put(r *receipt.Receipt) {
	s.receipts[r.ID] = r
}

func (s *fakeReceiptStore) GetForUpdate(ctx context.Context, docID id.ID) (*receipt.Receipt, error) {
	r, ok := s.receipts[docID]
	if !ok {
		return nil, apperror.NewNotFound("receipt", docID.String())
	}
	cp := *r
	cp.Lines = append([]stock.Line(nil), r.Lines...)
	return &cp, nil
}

func (s *fakeReceiptStore) GetLines(ctx context.Context, docID id.ID) ([]stock.Line, error) {
	r, ok := s.receipts[docID]
	if !ok {
		return nil, apperror.NewNotFound("receipt", docID.String())
	}
	return append([]stock.Line(nil), r.Lines...), nil
}

func (s *fakeReceiptStore) DecrementLine(ctx context.Context, docID id.ID, variety stock.Variety, size stock.BagSize, qty int64) (bool, error) {
	r, ok := s.receipts[docID]
	if !ok {
		return false, nil
	}
	for i := range r.Lines {
		l := &r.Lines[i]
		if l.Variety == variety && l.Size == size && l.Current >= qty {
			l.Current -= qty
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeReceiptStore) IncrementLine(ctx context.Context, docID id.ID, variety stock.Variety, size stock.BagSize, qty int64) (bool, error) {
	r, ok := s.receipts[docID]
	if !ok {
		return false, nil
	}
	for i := range r.Lines {
		l := &r.Lines[i]
		if l.Variety == variety && l.Size == size {
			l.Current += qty
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeReceiptStore) SetFulfilled(ctx context.Context, docID id.ID, fulfilled bool) error {
	r, ok := s.receipts[docID]
	if !ok {
		return apperror.NewNotFound("receipt", docID.String())
	}
	r.Fulfilled = fulfilled
	return nil
}

func (s *fakeReceiptStore) clone() map[id.ID]*receipt.Receipt {
	out := make(map[id.ID]*receipt.Receipt, len(s.receipts))
	for k, v := range s.receipts {
		cp := *v
		cp.Lines = append([]stock.Line(nil), v.Lines...)
		out[k] = &cp
	}
	return out
}

type fakeDeliveryRepo struct {
	deliveries map[id.ID]*Delivery
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{deliveries: make(map[id.ID]*Delivery)}
}

func (r *fakeDeliveryRepo) Create(ctx context.Context, doc *Delivery) error {
	cp := *doc
	r.deliveries[doc.ID] = &cp
	return nil
}

func (r *fakeDeliveryRepo) GetByID(ctx context.Context, docID id.ID) (*Delivery, error) {
	d, ok := r.deliveries[docID]
	if !ok {
		return nil, apperror.NewNotFound("delivery", docID.String())
	}
	cp := *d
	cp.Items = append([]Item(nil), d.Items...)
	return &cp, nil
}

func (r *fakeDeliveryRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Delivery, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeDeliveryRepo) Update(ctx context.Context, doc *Delivery) error {
	if _, ok := r.deliveries[doc.ID]; !ok {
		return apperror.NewNotFound("delivery", doc.ID.String())
	}
	cp := *doc
	r.deliveries[doc.ID] = &cp
	return nil
}

func (r *fakeDeliveryRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(r.deliveries, docID)
	return nil
}

func (r *fakeDeliveryRepo) GetItems(ctx context.Context, docID id.ID) ([]Item, error) {
	d, err := r.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	return d.Items, nil
}

func (r *fakeDeliveryRepo) ReplaceItems(ctx context.Context, docID id.ID, items []Item) error {
	d, ok := r.deliveries[docID]
	if !ok {
		return apperror.NewNotFound("delivery", docID.String())
	}
	d.Items = append([]Item(nil), items...)
	return nil
}

func (r *fakeDeliveryRepo) List(ctx context.Context, facilityID id.ID, filter ListFilter) (domain.ListResult[*Delivery], error) {
	var items []*Delivery
	for _, d := range r.deliveries {
		if d.FacilityID == facilityID {
			items = append(items, d)
		}
	}
	return domain.ListResult[*Delivery]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeDeliveryRepo) clone() map[id.ID]*Delivery {
	out := make(map[id.ID]*Delivery, len(r.deliveries))
	for k, v := range r.deliveries {
		cp := *v
		cp.Items = append([]Item(nil), v.Items...)
		out[k] = &cp
	}
	return out
}

type fakeSequencer struct {
	counters map[string]int64
}

func newFakeSequencer() *fakeSequencer {
	return &fakeSequencer{counters: make(map[string]int64)}
}

func (s *fakeSequencer) Next(ctx context.Context, facilityID id.ID, kind entity.VoucherKind) (int64, error) {
	key := facilityID.String() + "/" + string(kind)
	s.counters[key]++
	return s.counters[key], nil
}

func (s *fakeSequencer) clone() map[string]int64 {
	out := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out
}

type fakeDirectory struct {
	registered map[id.ID]bool
}

func (d *fakeDirectory) MustExist(ctx context.Context, depositorID, facilityID id.ID) error {
	if !d.registered[depositorID] {
		return apperror.NewNotFound("depositor", depositorID.String())
	}
	return nil
}

type fakeTx struct {
	receipts   *fakeReceiptStore
	deliveries *fakeDeliveryRepo
	sequencer  *fakeSequencer
}

func (t *fakeTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.RunSerializable(ctx, fn)
}

func (t *fakeTx) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	rSnap := t.receipts.clone()
	dSnap := t.deliveries.clone()
	sSnap := t.sequencer.clone()
	if err := fn(ctx); err != nil {
		t.receipts.receipts = rSnap
		t.deliveries.deliveries = dSnap
		t.sequencer.counters = sSnap
		return err
	}
	return nil
}

// --- Fixture ---

type fixture struct {
	svc       *Service
	receipts  *fakeReceiptStore
	repo      *fakeDeliveryRepo
	facility  id.ID
	depositor id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	receipts := newFakeReceiptStore()
	repo := newFakeDeliveryRepo()
	seq := newFakeSequencer()
	facility := id.New()
	depositor := id.New()

	txm := &fakeTx{receipts: receipts, deliveries: repo, sequencer: seq}
	dir := &fakeDirectory{registered: map[id.ID]bool{depositor: true}}

	svc := NewService(repo, receipts, dir, seq, txm, audit.Nop{})

	return &fixture{
		svc:       svc,
		receipts:  receipts,
		repo:      repo,
		facility:  facility,
		depositor: depositor,
	}
}

func (f *fixture) addReceipt(t *testing.T, lines ...stock.Line) *receipt.Receipt {
	t.Helper()
	loc := stock.Location{Floor: "1", Row: "A", Chamber: "C2"}
	r := receipt.New(f.facility, f.depositor, lines, loc)
	f.receipts.put(r)
	return r
}

func (f *fixture) currentOf(t *testing.T, receiptID id.ID, variety stock.Variety, size stock.BagSize) int64 {
	t.Helper()
	lines, err := f.receipts.GetLines(context.Background(), receiptID)
	require.NoError(t, err)
	for _, l := range lines {
		if l.Variety == variety && l.Size == size {
			return l.Current
		}
	}
	t.Fatalf("line %s/%s not found on receipt %s", variety, size, receiptID)
	return 0
}

// --- Tests ---

func TestCreate_DecrementsSourceReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})

	d1, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines: []LineRequest{
			{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 40},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), d1.Number)
	assert.Equal(t, entity.KindDelivery, d1.Kind)
	require.Len(t, d1.Items, 1)
	assert.Equal(t, r1.ID, d1.Items[0].SourceReceiptID)
	assert.Equal(t, int64(40), d1.Items[0].QuantityRemoved)

	assert.Equal(t, int64(60), f.currentOf(t, r1.ID, "Pukhraj", "Goli"))
	assert.False(t, f.receipts.receipts[r1.ID].Fulfilled)
}

func TestCreate_FullDrainSetsFulfilled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})

	_, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 40}},
	})
	require.NoError(t, err)

	d2, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 60}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), d2.Number)
	assert.Equal(t, int64(0), f.currentOf(t, r1.ID, "Pukhraj", "Goli"))
	assert.True(t, f.receipts.receipts[r1.ID].Fulfilled)
}

func TestDelete_ReversesDecrementsAndResetsFulfilled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})

	_, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 40}},
	})
	require.NoError(t, err)

	d2, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 60}},
	})
	require.NoError(t, err)
	require.True(t, f.receipts.receipts[r1.ID].Fulfilled)

	err = f.svc.Delete(ctx, f.facility, d2.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(60), f.currentOf(t, r1.ID, "Pukhraj", "Goli"))
	assert.False(t, f.receipts.receipts[r1.ID].Fulfilled)

	_, err = f.svc.GetByID(ctx, f.facility, d2.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_InsufficientStockLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 60})

	_, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 70}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, int64(70), appErr.Details["requested"])
	assert.Equal(t, int64(60), appErr.Details["available"])

	assert.Equal(t, int64(60), f.currentOf(t, r1.ID, "Pukhraj", "Goli"))
	assert.Empty(t, f.repo.deliveries)
}

func TestCreate_MultiLineFailureRollsBackEarlierDecrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})
	r2 := f.addReceipt(t, stock.Line{Variety: "Kufri-jyoti", Size: "Cut-tok", Initial: 10})

	_, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines: []LineRequest{
			{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 50},
			{ReceiptID: r2.ID, Variety: "Kufri-jyoti", Size: "Cut-tok", Quantity: 25},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// The first decrement must not be observable after the abort.
	assert.Equal(t, int64(100), f.currentOf(t, r1.ID, "Pukhraj", "Goli"))
	assert.Equal(t, int64(10), f.currentOf(t, r2.ID, "Kufri-jyoti", "Cut-tok"))
	assert.Empty(t, f.repo.deliveries)
}

func TestEdit_ReversesOldAndAppliesNew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})

	d1, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 40}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(60), f.currentOf(t, r1.ID, "Pukhraj", "Goli"))

	// 40 goes back, 70 comes off: net stock 30, no double debit.
	edited, err := f.svc.Edit(ctx, f.facility, d1.ID, []LineRequest{
		{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 70},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(30), f.currentOf(t, r1.ID, "Pukhraj", "Goli"))
	require.Len(t, edited.Items, 1)
	assert.Equal(t, int64(70), edited.Items[0].QuantityRemoved)
	assert.Equal(t, d1.Number, edited.Number)
}

func TestEdit_NewItemsInsufficientRestoresOriginalState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})

	d1, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 40}},
	})
	require.NoError(t, err)

	// Reversal frees 40, but 150 still exceeds the line total.
	_, err = f.svc.Edit(ctx, f.facility, d1.ID, []LineRequest{
		{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 150},
	}, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	assert.Equal(t, int64(60), f.currentOf(t, r1.ID, "Pukhraj", "Goli"))

	stored, err := f.svc.GetByID(ctx, f.facility, d1.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, int64(40), stored.Items[0].QuantityRemoved)
}

func TestCreate_CrossFacilityReceiptForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := receipt.New(id.New(), f.depositor,
		[]stock.Line{{Variety: "Pukhraj", Size: "Goli", Initial: 100, Current: 100}},
		stock.Location{Floor: "1", Row: "A", Chamber: "C1"})
	f.receipts.put(other)

	_, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: other.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 10}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	assert.Equal(t, int64(100), f.currentOf(t, other.ID, "Pukhraj", "Goli"))
}

func TestCreate_UnknownDepositorRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})

	_, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: id.New(),
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 10}},
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_NormalizesVarietyAndSize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Kufri-jyoti", Size: "Number-12", Initial: 50})

	// Raw casing and internal whitespace must still match the stored line.
	d, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "  KUFRI jyoti ", Size: "number   12", Quantity: 20}},
	})
	require.NoError(t, err)

	assert.Equal(t, stock.Variety("Kufri-jyoti"), d.Items[0].Variety)
	assert.Equal(t, stock.BagSize("Number-12"), d.Items[0].Size)
	assert.Equal(t, int64(30), f.currentOf(t, r1.ID, "Kufri-jyoti", "Number-12"))
}

func TestCreate_ZeroQuantityRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})

	_, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 0}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestDelete_CrossFacilityForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})

	d1, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 40}},
	})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, id.New(), d1.ID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	assert.Equal(t, int64(60), f.currentOf(t, r1.ID, "Pukhraj", "Goli"))
}

func TestVoucherNumbers_PerFacilitySequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})

	var numbers []int64
	for i := 0; i < 3; i++ {
		d, err := f.svc.Create(ctx, f.facility, CreateInput{
			DepositorID: f.depositor,
			Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 10}},
		})
		require.NoError(t, err)
		numbers = append(numbers, d.Number)
	}

	assert.Equal(t, []int64{1, 2, 3}, numbers)
}

func TestConservation_AcrossCreateEditDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})
	r2 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 50})

	d1, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines: []LineRequest{
			{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 30},
			{ReceiptID: r2.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 20},
		},
	})
	require.NoError(t, err)

	_, err = f.svc.Edit(ctx, f.facility, d1.ID, []LineRequest{
		{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 45},
	}, nil)
	require.NoError(t, err)

	// initial - removed == current, per (variety, size), at every step.
	conserved := func() {
		var initial, current, removed int64
		for _, rid := range []id.ID{r1.ID, r2.ID} {
			lines, err := f.receipts.GetLines(ctx, rid)
			require.NoError(t, err)
			for _, l := range lines {
				initial += l.Initial
				current += l.Current
			}
		}
		for _, d := range f.repo.deliveries {
			for _, it := range d.Items {
				removed += it.QuantityRemoved
			}
		}
		assert.Equal(t, initial-removed, current)
	}

	conserved()

	require.NoError(t, f.svc.Delete(ctx, f.facility, d1.ID))
	conserved()

	assert.Equal(t, int64(100), f.currentOf(t, r1.ID, "Pukhraj", "Goli"))
	assert.Equal(t, int64(50), f.currentOf(t, r2.ID, "Pukhraj", "Goli"))
}

func TestEdit_UpdatesRemarks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})

	d1, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 40}},
		Remarks:     "pickup friday",
	})
	require.NoError(t, err)

	remarks := "pickup moved to monday"
	edited, err := f.svc.Edit(ctx, f.facility, d1.ID, []LineRequest{
		{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 40},
	}, &remarks)
	require.NoError(t, err)
	assert.Equal(t, remarks, edited.Remarks)

	// Nil remarks leaves the stored text alone.
	edited, err = f.svc.Edit(ctx, f.facility, d1.ID, []LineRequest{
		{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 30},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, remarks, edited.Remarks)
}

func TestDelete_DanglingSourceReceiptFailsTyped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.addReceipt(t, stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100})

	d1, err := f.svc.Create(ctx, f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []LineRequest{{ReceiptID: r1.ID, Variety: "Pukhraj", Size: "Goli", Quantity: 40}},
	})
	require.NoError(t, err)

	// An administrator removed the source receipt; the delivery stays
	// on record as history with a dangling source link.
	delete(f.receipts.receipts, r1.ID)

	err = f.svc.Delete(ctx, f.facility, d1.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	stored, err := f.svc.GetByID(ctx, f.facility, d1.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, int64(40), stored.Items[0].QuantityRemoved)
}
