package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"sitebooks/internal/models"
)

type fakeStore struct {
	txns      map[int]models.CardTransaction
	dists     map[int][]models.Distribution
	templates []models.CostCodeTemplate
}

func (f *fakeStore) Transaction(_ context.Context, id int) (models.CardTransaction, error) {
	t, ok := f.txns[id]
	if !ok {
		return models.CardTransaction{}, sql.ErrNoRows
	}
	return t, nil
}

func (f *fakeStore) Distributions(_ context.Context, id int) ([]models.Distribution, error) {
	return f.dists[id], nil
}

func (f *fakeStore) Templates(_ context.Context, _ int) ([]models.CostCodeTemplate, error) {
	return f.templates, nil
}

func (f *fakeStore) MarkPosted(_ context.Context, id int, journalID int64) (bool, error) {
	t := f.txns[id]
	if t.JournalEntryID.Valid {
		return false, nil
	}
	t.JournalEntryID = sql.NullInt64{Int64: journalID, Valid: true}
	f.txns[id] = t
	return true, nil
}

type fakePoster struct {
	rejects map[int64]string // keyed by vendor id for test addressing
	nextID  int64
	calls   int
}

func (f *fakePoster) PostEntry(_ context.Context, entry JournalEntry) (int64, error) {
	f.calls++
	if msg, ok := f.rejects[entry.VendorID]; ok {
		return 0, fmt.Errorf("%s", msg)
	}
	f.nextID++
	return f.nextID, nil
}

func codedTxn(id int, vendorID int64) models.CardTransaction {
	return models.CardTransaction{
		ID:              id,
		CompanyID:       1,
		TransactionDate: "2025-04-01",
		Amount:          decimal.RequireFromString("55.00"),
		TransactionKind: models.KindCharge,
		Description:     "test merchant",
		VendorID:        sql.NullInt64{Int64: vendorID, Valid: true},
		ChartAccountID:  sql.NullInt64{Int64: 1, Valid: true},
	}
}

func newFixture() (*fakeStore, *fakePoster, *Orchestrator) {
	store := &fakeStore{
		txns:  make(map[int]models.CardTransaction),
		dists: make(map[int][]models.Distribution),
		templates: []models.CostCodeTemplate{
			{ID: 1, CompanyID: 1, Code: "4510", AttachmentRequired: sql.NullBool{Bool: false, Valid: true}},
		},
	}
	poster := &fakePoster{rejects: make(map[int64]string)}
	return store, poster, NewOrchestrator(store, poster)
}

func TestPostBatchPartialFailure(t *testing.T) {
	store, poster, orch := newFixture()

	for i := 1; i <= 3; i++ {
		store.txns[i] = codedTxn(i, int64(i))
	}
	alreadyPosted := codedTxn(4, 4)
	alreadyPosted.JournalEntryID = sql.NullInt64{Int64: 900, Valid: true}
	store.txns[4] = alreadyPosted

	poster.rejects[2] = "missing required field: vendor tax id"

	result := orch.PostBatch(context.Background(), 1, []int{1, 2, 3, 4})

	if len(result.Results) != 4 {
		t.Fatalf("every input id must be accounted for, got %d outcomes", len(result.Results))
	}
	if poster.calls != 3 {
		t.Fatalf("already-posted id must not reach the ledger, got %d attempts", poster.calls)
	}
	if result.PostedCount() != 2 {
		t.Fatalf("PostedCount = %d, want 2", result.PostedCount())
	}
	if result.FailedCount() != 2 {
		t.Fatalf("FailedCount = %d, want 2", result.FailedCount())
	}

	byID := make(map[int]PostOutcome)
	for _, o := range result.Results {
		byID[o.TransactionID] = o
	}
	if byID[2].Posted || byID[2].Error != "missing required field: vendor tax id" {
		t.Fatalf("outcome for rejected txn = %+v", byID[2])
	}
	if byID[4].Posted || byID[4].JournalEntryID != 0 {
		t.Fatalf("already-posted id must appear only as a failure, got %+v", byID[4])
	}
	if !byID[1].Posted || byID[1].JournalEntryID == 0 {
		t.Fatalf("outcome for posted txn = %+v", byID[1])
	}
}

func TestPostBatchIdempotent(t *testing.T) {
	store, _, orch := newFixture()
	store.txns[1] = codedTxn(1, 1)
	store.txns[2] = codedTxn(2, 2)

	first := orch.PostBatch(context.Background(), 1, []int{1, 2})
	if first.PostedCount() != 2 {
		t.Fatalf("first call PostedCount = %d, want 2", first.PostedCount())
	}

	second := orch.PostBatch(context.Background(), 1, []int{1, 2})
	if second.PostedCount() != 0 {
		t.Fatalf("second call must post nothing, got %d", second.PostedCount())
	}
	for _, o := range second.Results {
		if o.Error != "transaction is already posted" {
			t.Fatalf("expected already-posted error, got %+v", o)
		}
	}
}

func TestPostBatchUncodedAndMissing(t *testing.T) {
	store, poster, orch := newFixture()

	uncoded := codedTxn(1, 1)
	uncoded.VendorID = sql.NullInt64{}
	store.txns[1] = uncoded

	result := orch.PostBatch(context.Background(), 1, []int{1, 99})

	if poster.calls != 0 {
		t.Fatalf("nothing eligible, ledger must not be called, got %d", poster.calls)
	}
	byID := make(map[int]PostOutcome)
	for _, o := range result.Results {
		byID[o.TransactionID] = o
	}
	if byID[1].Error != "transaction is not fully coded" {
		t.Fatalf("outcome for uncoded txn = %+v", byID[1])
	}
	if byID[99].Error != "transaction not found" {
		t.Fatalf("outcome for missing txn = %+v", byID[99])
	}
}

func TestPostBatchSplitTransaction(t *testing.T) {
	store, _, orch := newFixture()

	txn := codedTxn(1, 1)
	txn.ChartAccountID = sql.NullInt64{}
	txn.Amount = decimal.RequireFromString("-100.00")
	store.txns[1] = txn
	store.dists[1] = []models.Distribution{
		{ID: 1, TransactionID: 1, JobID: sql.NullInt64{Int64: 10, Valid: true}, CostCodeID: sql.NullInt64{Int64: 1, Valid: true}, Amount: decimal.RequireFromString("60.00")},
		{ID: 2, TransactionID: 1, JobID: sql.NullInt64{Int64: 11, Valid: true}, CostCodeID: sql.NullInt64{Int64: 1, Valid: true}, Amount: decimal.RequireFromString("40.00")},
	}

	result := orch.PostBatch(context.Background(), 1, []int{1})
	if result.PostedCount() != 1 {
		t.Fatalf("split transaction should post, got %+v", result.Results)
	}
}
