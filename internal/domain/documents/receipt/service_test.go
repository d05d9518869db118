package receipt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldledger/internal/core/apperror"
	appctx "coldledger/internal/core/context"
	"coldledger/internal/core/entity"
	"coldledger/internal/core/id"
	"coldledger/internal/domain"
	"coldledger/internal/domain/audit"
	"coldledger/internal/domain/stock"
)

// --- In-memory fakes ---

type fakeRepo struct {
	receipts map[id.ID]*Receipt
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{receipts: make(map[id.ID]*Receipt)}
}

func (r *fakeRepo) Create(ctx context.Context, doc *Receipt) error {
	cp := *doc
	r.receipts[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*Receipt, error) {
	d, ok := r.receipts[docID]
	if !ok {
		return nil, apperror.NewNotFound("receipt", docID.String())
	}
	cp := *d
	cp.Lines = append([]stock.Line(nil), d.Lines...)
	return &cp, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Receipt, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) Update(ctx context.Context, doc *Receipt) error {
	if _, ok := r.receipts[doc.ID]; !ok {
		return apperror.NewNotFound("receipt", doc.ID.String())
	}
	cp := *doc
	r.receipts[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, docID id.ID) error {
	if _, ok := r.receipts[docID]; !ok {
		return apperror.NewNotFound("receipt", docID.String())
	}
	delete(r.receipts, docID)
	return nil
}

func (r *fakeRepo) GetLines(ctx context.Context, docID id.ID) ([]stock.Line, error) {
	d, ok := r.receipts[docID]
	if !ok {
		return nil, apperror.NewNotFound("receipt", docID.String())
	}
	return append([]stock.Line(nil), d.Lines...), nil
}

func (r *fakeRepo) ReplaceLines(ctx context.Context, docID id.ID, lines []stock.Line) error {
	d, ok := r.receipts[docID]
	if !ok {
		return apperror.NewNotFound("receipt", docID.String())
	}
	d.Lines = append([]stock.Line(nil), lines...)
	return nil
}

func (r *fakeRepo) DecrementLine(ctx context.Context, docID id.ID, variety stock.Variety, size stock.BagSize, qty int64) (bool, error) {
	d, ok := r.receipts[docID]
	if !ok {
		return false, nil
	}
	for i := range d.Lines {
		l := &d.Lines[i]
		if l.Variety == variety && l.Size == size && l.Current >= qty {
			l.Current -= qty
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) IncrementLine(ctx context.Context, docID id.ID, variety stock.Variety, size stock.BagSize, qty int64) (bool, error) {
	d, ok := r.receipts[docID]
	if !ok {
		return false, nil
	}
	for i := range d.Lines {
		l := &d.Lines[i]
		if l.Variety == variety && l.Size == size {
			l.Current += qty
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) SetFulfilled(ctx context.Context, docID id.ID, fulfilled bool) error {
	d, ok := r.receipts[docID]
	if !ok {
		return apperror.NewNotFound("receipt", docID.String())
	}
	d.Fulfilled = fulfilled
	return nil
}

func (r *fakeRepo) TotalCurrentStock(ctx context.Context, facilityID id.ID, exclude *id.ID) (int64, error) {
	var total int64
	for _, d := range r.receipts {
		if d.FacilityID != facilityID {
			continue
		}
		if exclude != nil && d.ID == *exclude {
			continue
		}
		total += stock.TotalCurrent(d.Lines)
	}
	return total, nil
}

func (r *fakeRepo) List(ctx context.Context, facilityID id.ID, filter ListFilter) (domain.ListResult[*Receipt], error) {
	var items []*Receipt
	for _, d := range r.receipts {
		if d.FacilityID == facilityID {
			items = append(items, d)
		}
	}
	return domain.ListResult[*Receipt]{Items: items, TotalCount: int64(len(items))}, nil
}

type fakeSequencer struct {
	counters map[string]int64
}

func (s *fakeSequencer) Next(ctx context.Context, facilityID id.ID, kind entity.VoucherKind) (int64, error) {
	if s.counters == nil {
		s.counters = make(map[string]int64)
	}
	key := facilityID.String() + "/" + string(kind)
	s.counters[key]++
	return s.counters[key], nil
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

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- Fixture ---

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	facility  id.ID
	depositor id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeRepo()
	facility := id.New()
	depositor := id.New()
	dir := &fakeDirectory{registered: map[id.ID]bool{depositor: true}}

	svc := NewService(repo, dir, &fakeSequencer{}, passthroughTx{}, audit.Nop{})

	return &fixture{svc: svc, repo: repo, facility: facility, depositor: depositor}
}

func (f *fixture) createInput(lines ...stock.Line) CreateInput {
	return CreateInput{
		DepositorID: f.depositor,
		Lines:       lines,
		Location:    stock.Location{Floor: "2", Row: "B", Chamber: "C4"},
	}
}

// --- Tests ---

func TestCreate_AssignsNumberAndSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.svc.Create(ctx, f.facility, f.createInput(
		stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100},
	))
	require.NoError(t, err)

	assert.Equal(t, int64(1), r1.Number)
	assert.Equal(t, entity.KindReceipt, r1.Kind)
	assert.Equal(t, int64(100), r1.StockSnapshot)
	assert.False(t, r1.Fulfilled)

	require.Len(t, r1.Lines, 1)
	assert.Equal(t, int64(100), r1.Lines[0].Current, "current starts equal to initial")

	// Second receipt sees the first one's stock in its snapshot.
	r2, err := f.svc.Create(ctx, f.facility, f.createInput(
		stock.Line{Variety: "Kufri-jyoti", Size: "Cut-tok", Initial: 50},
	))
	require.NoError(t, err)

	assert.Equal(t, int64(2), r2.Number)
	assert.Equal(t, int64(150), r2.StockSnapshot)
}

func TestCreate_NormalizesLineNames(t *testing.T) {
	f := newFixture(t)

	r, err := f.svc.Create(context.Background(), f.facility, f.createInput(
		stock.Line{Variety: "  kufri   JYOTI ", Size: "cut tok", Initial: 10},
	))
	require.NoError(t, err)

	assert.Equal(t, stock.Variety("Kufri-jyoti"), r.Lines[0].Variety)
	assert.Equal(t, stock.BagSize("Cut-tok"), r.Lines[0].Size)
}

func TestCreate_DropsEmptyLines(t *testing.T) {
	f := newFixture(t)

	r, err := f.svc.Create(context.Background(), f.facility, f.createInput(
		stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 40},
		stock.Line{Variety: "Pukhraj", Size: "Ration", Initial: 0},
	))
	require.NoError(t, err)

	require.Len(t, r.Lines, 1)
	assert.Equal(t, stock.BagSize("Goli"), r.Lines[0].Size)
}

func TestCreate_AllZeroLinesRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.facility, f.createInput(
		stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 0},
	))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, f.repo.receipts)
}

func TestCreate_NegativeQuantityRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.facility, f.createInput(
		stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: -5},
	))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreate_UnknownDepositorRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.facility, CreateInput{
		DepositorID: id.New(),
		Lines:       []stock.Line{{Variety: "Pukhraj", Size: "Goli", Initial: 10}},
		Location:    stock.Location{Floor: "1", Row: "A", Chamber: "C1"},
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_MissingLocationRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.facility, CreateInput{
		DepositorID: f.depositor,
		Lines:       []stock.Line{{Variety: "Pukhraj", Size: "Goli", Initial: 10}},
		Location:    stock.Location{Floor: "1"},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestEdit_RecomputesSnapshotExcludingSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.svc.Create(ctx, f.facility, f.createInput(
		stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100},
	))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.facility, f.createInput(
		stock.Line{Variety: "Kufri-jyoti", Size: "Goli", Initial: 30},
	))
	require.NoError(t, err)

	edited, err := f.svc.Edit(ctx, f.facility, r1.ID, EditInput{
		Lines: []stock.Line{{Variety: "Pukhraj", Size: "Goli", Initial: 80, Current: 80}},
	})
	require.NoError(t, err)

	// Other receipts contribute 30; this one now holds 80. The edited
	// receipt's own previous stock must not leak into the baseline.
	assert.Equal(t, int64(110), edited.StockSnapshot)
	assert.Equal(t, int64(80), edited.Lines[0].Current)
}

func TestEdit_LineReplacementRefreshesFulfilled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.svc.Create(ctx, f.facility, f.createInput(
		stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100},
	))
	require.NoError(t, err)

	edited, err := f.svc.Edit(ctx, f.facility, r1.ID, EditInput{
		Lines: []stock.Line{{Variety: "Pukhraj", Size: "Goli", Initial: 100, Current: 0}},
	})
	require.NoError(t, err)
	assert.True(t, edited.Fulfilled)

	// An explicit flag in the request wins over the recomputed value.
	fulfilled := false
	edited, err = f.svc.Edit(ctx, f.facility, r1.ID, EditInput{
		Fulfilled: &fulfilled,
	})
	require.NoError(t, err)
	assert.False(t, edited.Fulfilled)
}

func TestEdit_CurrentAboveInitialRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.svc.Create(ctx, f.facility, f.createInput(
		stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100},
	))
	require.NoError(t, err)

	_, err = f.svc.Edit(ctx, f.facility, r1.ID, EditInput{
		Lines: []stock.Line{{Variety: "Pukhraj", Size: "Goli", Initial: 50, Current: 60}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestEdit_CrossFacilityForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.svc.Create(ctx, f.facility, f.createInput(
		stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100},
	))
	require.NoError(t, err)

	remarks := "moved"
	_, err = f.svc.Edit(ctx, id.New(), r1.ID, EditInput{Remarks: &remarks})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestDelete_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.svc.Create(ctx, f.facility, f.createInput(
		stock.Line{Variety: "Pukhraj", Size: "Goli", Initial: 100},
	))
	require.NoError(t, err)

	err = f.svc.Delete(ctx, f.facility, r1.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	adminCtx := appctx.WithIdentity(ctx, &appctx.Identity{
		FacilityID: f.facility,
		Subject:    "admin",
		Admin:      true,
	})
	require.NoError(t, f.svc.Delete(adminCtx, f.facility, r1.ID))

	_, err = f.svc.GetByID(ctx, f.facility, r1.ID)
	assert.True(t, apperror.IsNotFound(err))
}
