package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"farm-credit/internal/domain"
	"farm-credit/internal/ml"
	"farm-credit/internal/repository"
)

// PredictionService coordina el pipeline recolectar -> validar -> predecir -> categorizar.
// Los artefactos son de solo lectura; el servicio no guarda estado entre requests
// salvo el historial de auditoría.
type PredictionService struct {
	logger    *zap.Logger
	artifacts *ml.Artifacts
	history   repository.PredictionRepository
	now       func() time.Time
}

// BatchResult es la salida de una carga batch: la tabla original anotada.
type BatchResult struct {
	BatchID string                    `json:"batch_id"`
	Results []domain.PredictionResult `json:"results"`
	Output  *Table                    `json:"-"`
}

func NewPredictionService(logger *zap.Logger, artifacts *ml.Artifacts, history repository.PredictionRepository) *PredictionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionService{
		logger:    logger,
		artifacts: artifacts,
		history:   history,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// TrainedColumns expone las columnas del modelo en orden de entrenamiento.
func (s *PredictionService) TrainedColumns() []string {
	return s.artifacts.Model.TrainedColumns()
}

// Artifacts devuelve los artefactos cargados (solo lectura).
func (s *PredictionService) Artifacts() *ml.Artifacts {
	return s.artifacts
}

// PredictInteractive arma el registro del formulario y lo puntúa.
func (s *PredictionService) PredictInteractive(ctx context.Context, input InteractiveInput) (domain.PredictionResult, error) {
	record, err := CollectInteractive(input, s.artifacts)
	if err != nil {
		return domain.PredictionResult{}, err
	}
	return s.PredictRecord(ctx, record)
}

// PredictRecord valida el registro contra las columnas del modelo, lo reordena
// al orden de entrenamiento y devuelve el score redondeado con su categoría.
func (s *PredictionService) PredictRecord(ctx context.Context, record domain.FeatureRecord) (domain.PredictionResult, error) {
	columns := s.artifacts.Model.TrainedColumns()
	if err := ValidateColumns(record.Columns(), columns); err != nil {
		return domain.PredictionResult{}, err
	}

	row := ProjectRecord(record, columns)
	scores, err := s.artifacts.Model.Predict([][]float64{row})
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("predict: %w", err)
	}
	if len(scores) != 1 {
		return domain.PredictionResult{}, fmt.Errorf("predict: expected 1 score, got %d", len(scores))
	}

	result := NewPredictionResult(uuid.NewString(), scores[0])
	s.audit(ctx, []domain.PredictionRecord{s.newRecord(result, domain.ModeInteractive, "", row)})
	s.logger.Info("interactive prediction",
		zap.String("id", result.ID),
		zap.Float64("score", result.Score),
		zap.String("category", result.Category),
	)
	return result, nil
}

// CheckBatch valida sólo el conjunto de columnas de la tabla.
func (s *PredictionService) CheckBatch(table *Table) error {
	if table == nil {
		return ErrEmptyTable
	}
	return ValidateColumns(table.Header, s.artifacts.Model.TrainedColumns())
}

// PredictBatch puntúa todas las filas y devuelve una copia de la tabla con
// Predicted_Credit_Score y Creditworthiness_Category agregadas al final.
// Los valores se usan tal cual: no hay rangos, vocabularios ni defaults.
func (s *PredictionService) PredictBatch(ctx context.Context, table *Table) (*BatchResult, error) {
	if err := s.CheckBatch(table); err != nil {
		return nil, err
	}
	columns := s.artifacts.Model.TrainedColumns()
	matrix, err := table.FeatureMatrix(columns)
	if err != nil {
		return nil, err
	}

	scores, err := s.artifacts.Model.Predict(matrix)
	if err != nil {
		return nil, fmt.Errorf("predict batch: %w", err)
	}
	if len(scores) != len(matrix) {
		return nil, fmt.Errorf("predict batch: expected %d scores, got %d", len(matrix), len(scores))
	}

	batchID := uuid.NewString()
	results := make([]domain.PredictionResult, len(scores))
	records := make([]domain.PredictionRecord, len(scores))
	for i, score := range scores {
		results[i] = NewPredictionResult(uuid.NewString(), score)
		records[i] = s.newRecord(results[i], domain.ModeBatch, batchID, matrix[i])
	}

	output, err := table.Annotate(results)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, records)
	s.logger.Info("batch prediction", zap.String("batch_id", batchID), zap.Int("rows", len(results)))

	return &BatchResult{BatchID: batchID, Results: results, Output: output}, nil
}

// Recent lista las últimas predicciones registradas.
func (s *PredictionService) Recent(ctx context.Context, limit int) ([]domain.PredictionRecord, error) {
	if s.history == nil {
		return nil, errors.New("prediction history not configured")
	}
	return s.history.ListRecent(ctx, limit)
}

func (s *PredictionService) newRecord(result domain.PredictionResult, mode, batchID string, row []float64) domain.PredictionRecord {
	vec := make([]float32, len(row))
	for i, v := range row {
		vec[i] = float32(v)
	}
	return domain.PredictionRecord{
		ID:        result.ID,
		Mode:      mode,
		BatchID:   batchID,
		Features:  pgvector.NewVector(vec),
		RawScore:  result.RawScore,
		Score:     result.Score,
		Category:  result.Category,
		CreatedAt: s.now(),
	}
}

// audit registra el historial; un fallo se loguea y nunca bloquea la respuesta.
func (s *PredictionService) audit(ctx context.Context, records []domain.PredictionRecord) {
	if s.history == nil || len(records) == 0 {
		return
	}
	var err error
	if len(records) == 1 {
		err = s.history.Create(ctx, records[0])
	} else {
		err = s.history.CreateBatch(ctx, records)
	}
	if err != nil {
		s.logger.Warn("prediction audit failed", zap.Int("records", len(records)), zap.Error(err))
	}
}
