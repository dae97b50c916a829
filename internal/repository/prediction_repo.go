package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"farm-credit/internal/domain"
)

// PredictionRepository persiste el historial de auditoría de predicciones.
type PredictionRepository interface {
	Create(ctx context.Context, record domain.PredictionRecord) error
	CreateBatch(ctx context.Context, records []domain.PredictionRecord) error
	ListRecent(ctx context.Context, limit int) ([]domain.PredictionRecord, error)
}

type PgPredictionRepository struct {
	pool *pgxpool.Pool
}

func NewPgPredictionRepository(pool *pgxpool.Pool) *PgPredictionRepository {
	return &PgPredictionRepository{pool: pool}
}

const insertPredictionQuery = `
	INSERT INTO predictions (id, mode, batch_id, features, raw_score, score, category, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func (r *PgPredictionRepository) Create(ctx context.Context, record domain.PredictionRecord) error {
	_, err := r.pool.Exec(ctx, insertPredictionQuery, predictionArgs(record)...)
	return err
}

// CreateBatch inserta todas las filas de una carga en un único round-trip.
func (r *PgPredictionRepository) CreateBatch(ctx context.Context, records []domain.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(insertPredictionQuery, predictionArgs(record)...)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgPredictionRepository) ListRecent(ctx context.Context, limit int) ([]domain.PredictionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, mode, COALESCE(batch_id::text, ''), features, raw_score, score, category, created_at
		FROM predictions
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPredictions(rows)
}

func predictionArgs(record domain.PredictionRecord) []interface{} {
	var batchID interface{}
	if record.BatchID != "" {
		batchID = record.BatchID
	}
	return []interface{}{
		record.ID,
		record.Mode,
		batchID,
		record.Features,
		record.RawScore,
		record.Score,
		record.Category,
		record.CreatedAt,
	}
}

func scanPredictions(rows pgxRows) ([]domain.PredictionRecord, error) {
	var records []domain.PredictionRecord
	for rows.Next() {
		var p domain.PredictionRecord
		if err := rows.Scan(
			&p.ID,
			&p.Mode,
			&p.BatchID,
			&p.Features,
			&p.RawScore,
			&p.Score,
			&p.Category,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
