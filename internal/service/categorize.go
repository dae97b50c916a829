package service

import (
	"math"
	"strconv"

	"farm-credit/internal/domain"
)

// Umbrales fijos de categoría.
const (
	fairThreshold = 564
	goodThreshold = 650
)

// Categorize clasifica un score: Poor (< 564), Fair (564..649.x) o Good (>= 650).
// Los umbrales no son configurables y no se valida el rango del score.
func Categorize(score float64) string {
	switch {
	case score < fairThreshold:
		return domain.CategoryPoor
	case score < goodThreshold:
		return domain.CategoryFair
	default:
		return domain.CategoryGood
	}
}

// RoundScore redondea al entero más cercano, con empates al par. El resultado
// queda en float64: un score float32 puede superar el rango de int.
func RoundScore(score float64) float64 {
	return math.RoundToEven(score)
}

// FormatScore escribe un score redondeado sin decimales ni notación exponencial.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 0, 64)
}

// NewPredictionResult redondea el score y categoriza el valor redondeado.
func NewPredictionResult(id string, raw float64) domain.PredictionResult {
	rounded := RoundScore(raw)
	return domain.PredictionResult{
		ID:       id,
		RawScore: raw,
		Score:    rounded,
		Category: Categorize(rounded),
	}
}
