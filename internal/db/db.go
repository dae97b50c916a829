package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"farm-credit/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// El historial de auditoría es de baja escritura: pocas conexiones alcanzan.
	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

// El vector de features tiene una dimensión por columna del modelo cargado.
const schemaTemplate = `
	CREATE EXTENSION IF NOT EXISTS vector;
	CREATE TABLE IF NOT EXISTS predictions (
		id          UUID PRIMARY KEY,
		mode        TEXT NOT NULL,
		batch_id    UUID,
		features    vector(%d) NOT NULL,
		raw_score   DOUBLE PRECISION NOT NULL,
		score       DOUBLE PRECISION NOT NULL,
		category    TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS predictions_created_at_idx ON predictions (created_at DESC);
	CREATE INDEX IF NOT EXISTS predictions_batch_id_idx ON predictions (batch_id);
`

// EnsureSchema crea la tabla de predicciones si no existe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, featureDimensions int) error {
	if featureDimensions <= 0 {
		return fmt.Errorf("invalid feature dimensions %d", featureDimensions)
	}
	_, err := pool.Exec(ctx, SchemaSQL(featureDimensions))
	return err
}

// SchemaSQL devuelve el DDL del historial para un vector de featureDimensions.
func SchemaSQL(featureDimensions int) string {
	return fmt.Sprintf(schemaTemplate, featureDimensions)
}
