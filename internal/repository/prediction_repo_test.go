package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	pgvector "github.com/pgvector/pgvector-go"

	"farm-credit/internal/domain"
)

func TestMemoryPredictionRepositoryListRecent(t *testing.T) {
	repo := NewMemoryPredictionRepository(3)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2"} {
		if err := repo.Create(ctx, domain.PredictionRecord{ID: id, Mode: domain.ModeInteractive}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	batch := []domain.PredictionRecord{
		{ID: "b1", Mode: domain.ModeBatch, BatchID: "batch"},
		{ID: "b2", Mode: domain.ModeBatch, BatchID: "batch"},
	}
	if err := repo.CreateBatch(ctx, batch); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	got, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected capacity to cap records at 3, got %d", len(got))
	}
	want := []string{"b2", "b1", "p2"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}

	limited, err := repo.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "b2" {
		t.Fatalf("unexpected limited list: %+v", limited)
	}
}

type fakeRows struct {
	records []domain.PredictionRecord
	idx     int
	err     error
	closed  bool
}

func (f *fakeRows) Next() bool {
	if f.idx >= len(f.records) {
		return false
	}
	f.idx++
	return true
}

func (f *fakeRows) Scan(dest ...interface{}) error {
	r := f.records[f.idx-1]
	*dest[0].(*string) = r.ID
	*dest[1].(*string) = r.Mode
	*dest[2].(*string) = r.BatchID
	*dest[3].(*pgvector.Vector) = r.Features
	*dest[4].(*float64) = r.RawScore
	*dest[5].(*float64) = r.Score
	*dest[6].(*string) = r.Category
	*dest[7].(*time.Time) = r.CreatedAt
	return nil
}

func (f *fakeRows) Err() error { return f.err }
func (f *fakeRows) Close()     { f.closed = true }

func TestScanPredictions(t *testing.T) {
	now := time.Now().UTC()
	rows := &fakeRows{records: []domain.PredictionRecord{{
		ID:        "p1",
		Mode:      domain.ModeBatch,
		BatchID:   "b1",
		Features:  pgvector.NewVector([]float32{1, 2, 3}),
		RawScore:  598.5,
		Score:     598,
		Category:  domain.CategoryFair,
		CreatedAt: now,
	}}}

	got, err := scanPredictions(rows)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" || got[0].Score != 598 || got[0].BatchID != "b1" {
		t.Fatalf("unexpected records: %+v", got)
	}
	if len(got[0].Features.Slice()) != 3 {
		t.Fatalf("expected feature vector to be scanned")
	}

	rows = &fakeRows{err: errors.New("conn reset")}
	if _, err := scanPredictions(rows); err == nil {
		t.Fatalf("expected rows error to propagate")
	}
}

func TestPredictionArgsNullBatchID(t *testing.T) {
	args := predictionArgs(domain.PredictionRecord{ID: "p1", Mode: domain.ModeInteractive})
	if len(args) != 8 {
		t.Fatalf("expected 8 args, got %d", len(args))
	}
	if args[2] != nil {
		t.Fatalf("expected nil batch id for interactive predictions, got %v", args[2])
	}
}
