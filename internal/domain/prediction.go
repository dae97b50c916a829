package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// Categorías de solvencia derivadas del score.
const (
	CategoryPoor = "Poor"
	CategoryFair = "Fair"
	CategoryGood = "Good"
)

// Modos de predicción registrados en el historial.
const (
	ModeInteractive = "interactive"
	ModeBatch       = "batch"
)

// FeatureRecord mapea nombre de feature a su valor numérico ya codificado.
type FeatureRecord map[string]float64

// Columns devuelve los nombres de columna del registro (sin orden definido).
func (r FeatureRecord) Columns() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	return out
}

// PredictionResult es el par (score redondeado, categoría) de una predicción.
type PredictionResult struct {
	ID       string  `json:"id"`
	RawScore float64 `json:"raw_score"`
	Score    float64 `json:"score"`
	Category string  `json:"category"`
}

// PredictionRecord es la entrada del historial de auditoría.
type PredictionRecord struct {
	ID        string          `json:"id"`
	Mode      string          `json:"mode"`
	BatchID   string          `json:"batch_id,omitempty"`
	Features  pgvector.Vector `json:"-"`
	RawScore  float64         `json:"raw_score"`
	Score     float64         `json:"score"`
	Category  string          `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
}
