package repository

import (
	"context"
	"sync"

	"farm-credit/internal/domain"
)

// MemoryPredictionRepository guarda el historial en memoria cuando no hay DATABASE_URL.
// Conserva como máximo capacity registros, descartando los más antiguos.
type MemoryPredictionRepository struct {
	mu       sync.Mutex
	capacity int
	records  []domain.PredictionRecord
}

func NewMemoryPredictionRepository(capacity int) *MemoryPredictionRepository {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryPredictionRepository{capacity: capacity}
}

func (r *MemoryPredictionRepository) Create(_ context.Context, record domain.PredictionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.append(record)
	return nil
}

func (r *MemoryPredictionRepository) CreateBatch(_ context.Context, records []domain.PredictionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range records {
		r.append(record)
	}
	return nil
}

func (r *MemoryPredictionRepository) ListRecent(_ context.Context, limit int) ([]domain.PredictionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	if limit > len(r.records) {
		limit = len(r.records)
	}
	out := make([]domain.PredictionRecord, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

func (r *MemoryPredictionRepository) append(record domain.PredictionRecord) {
	r.records = append(r.records, record)
	if over := len(r.records) - r.capacity; over > 0 {
		r.records = append(r.records[:0:0], r.records[over:]...)
	}
}
