package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farm-credit/internal/domain"
	"farm-credit/internal/service"
)

// PredictionHandler expone la API JSON de predicción.
type PredictionHandler struct {
	logger      *zap.Logger
	predictions *service.PredictionService
}

func NewPredictionHandler(logger *zap.Logger, predictions *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{logger: logger, predictions: predictions}
}

// Predict maneja POST /api/predict. Los campos omitidos toman su valor por defecto.
func (h *PredictionHandler) Predict(c *gin.Context) {
	input := service.DefaultInteractiveInput()
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid predict request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.predictions.PredictInteractive(c.Request.Context(), input)
	if err != nil {
		status, body := predictionError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("predict failed", zap.Error(err))
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{"prediction": result})
}

// PredictBatch maneja POST /api/predict/batch con un CSV en el campo "file".
func (h *PredictionHandler) PredictBatch(c *gin.Context) {
	table, err := readUploadedTable(c)
	if err != nil {
		status, body := predictionError(err)
		c.JSON(status, body)
		return
	}

	res, err := h.predictions.PredictBatch(c.Request.Context(), table)
	if err != nil {
		status, body := predictionError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("batch predict failed", zap.Error(err))
		}
		var mismatch *service.SchemaMismatchError
		var malformed *service.MalformedValueError
		if errors.As(err, &mismatch) || errors.As(err, &malformed) {
			body["preview"] = table.Preview(previewRows)
		}
		c.JSON(status, body)
		return
	}

	c.Header("X-Batch-Id", res.BatchID)
	if err := writeCSVAttachment(c, domain.BatchOutputFilename, res.Output); err != nil {
		h.logger.Warn("write batch csv failed", zap.String("batch_id", res.BatchID), zap.Error(err))
	}
}

// Schema maneja GET /api/schema.
func (h *PredictionHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"trained_columns": h.predictions.TrainedColumns(),
		"defaults":        domain.DefaultValues(),
		"vocabularies": gin.H{
			domain.FeatureEducation:            domain.EducationLevels,
			domain.FeaturePrimaryCrop:          domain.PrimaryCrops,
			domain.FeatureCreditworthiness:     domain.CreditworthinessLevels,
			domain.FeatureMobileMoneyFrequency: domain.MobileMoneyFrequencies,
			domain.FeatureGender:               domain.Genders,
		},
		"ranges": gin.H{
			domain.FeatureHouseholdSize:       []int{domain.HouseholdSizeMin, domain.HouseholdSizeMax},
			domain.FeatureMobileMoneyActivity: []int{domain.MobileMoneyActivityMin, domain.MobileMoneyActivityMax},
		},
		"output_columns": []string{domain.ColumnPredictedScore, domain.ColumnCategory},
	})
}

// ListPredictions maneja GET /api/predictions (requiere token de operador).
func (h *PredictionHandler) ListPredictions(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	h.logger.Info("list predictions", zap.String("operator", CurrentOperator(c)), zap.Int("limit", limit))
	records, err := h.predictions.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list predictions failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list predictions"})
		return
	}
	if records == nil {
		records = []domain.PredictionRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"predictions": records})
}

// Health maneja GET /healthz.
func (h *PredictionHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
