package http

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farm-credit/internal/domain"
	"farm-credit/internal/service"
)

// PageHandler sirve las páginas HTML del formulario y de la carga batch.
type PageHandler struct {
	logger      *zap.Logger
	predictions *service.PredictionService
}

func NewPageHandler(logger *zap.Logger, predictions *service.PredictionService) *PageHandler {
	return &PageHandler{logger: logger, predictions: predictions}
}

type selectField struct {
	Name     string
	Options  []string
	Selected string
}

type flagField struct {
	Name    string
	Checked bool
}

type numericField struct {
	Name  string
	Label string
	Value string
}

type formView struct {
	Input            service.InteractiveInput
	HouseholdSizeMin int
	HouseholdSizeMax int
	ActivityMin      int
	ActivityMax      int
	Selects          []selectField
	Flags            []flagField
	Genders          []string
	Numeric          []numericField
	Result           *domain.PredictionResult
	Errors           []string
	Missing          []string
	Extra            []string
}

type batchView struct {
	Filename       string
	ScoreColumn    string
	CategoryColumn string
	Columns        []string
	Errors         []string
	Missing        []string
	Extra          []string
	Preview        *service.Table
	Result         *batchResultView
}

// batchResultView es el resumen de un batch puntuado: las primeras filas
// anotadas y el CSV completo como enlace de descarga.
type batchResultView struct {
	BatchID  string
	Rows     int
	Preview  *service.Table
	Download template.URL
}

// Form maneja GET /.
func (h *PageHandler) Form(c *gin.Context) {
	c.HTML(http.StatusOK, "form.html", newFormView(service.DefaultInteractiveInput()))
}

// SubmitForm maneja POST /: predice y vuelve a mostrar el formulario con los valores enviados.
func (h *PageHandler) SubmitForm(c *gin.Context) {
	input, errs := parseFormInput(c)
	view := newFormView(input)
	if len(errs) > 0 {
		view.Errors = errs
		c.HTML(http.StatusBadRequest, "form.html", view)
		return
	}

	result, err := h.predictions.PredictInteractive(c.Request.Context(), input)
	if err != nil {
		status, _ := predictionError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("interactive prediction failed", zap.Error(err))
			view.Errors = []string{"prediction failed"}
		} else {
			view.Errors = []string{err.Error()}
		}
		var mismatch *service.SchemaMismatchError
		if errors.As(err, &mismatch) {
			view.Errors = []string{"The input does not match the features the model was trained on."}
			view.Missing, view.Extra = mismatch.Missing, mismatch.Extra
		}
		c.HTML(status, "form.html", view)
		return
	}

	view.Result = &result
	c.HTML(http.StatusOK, "form.html", view)
}

// BatchForm maneja GET /batch.
func (h *PageHandler) BatchForm(c *gin.Context) {
	c.HTML(http.StatusOK, "batch.html", h.newBatchView())
}

// SubmitBatch maneja POST /batch: muestra las primeras filas anotadas con un
// enlace al CSV completo, o la página con el error.
func (h *PageHandler) SubmitBatch(c *gin.Context) {
	table, err := readUploadedTable(c)
	if err == nil {
		var res *service.BatchResult
		res, err = h.predictions.PredictBatch(c.Request.Context(), table)
		if err == nil {
			var download template.URL
			download, err = csvDataURL(res.Output)
			if err == nil {
				view := h.newBatchView()
				view.Result = &batchResultView{
					BatchID:  res.BatchID,
					Rows:     len(res.Results),
					Preview:  res.Output.Preview(previewRows),
					Download: download,
				}
				c.HTML(http.StatusOK, "batch.html", view)
				return
			}
		}
	}

	status, _ := predictionError(err)
	view := h.newBatchView()
	view.Errors = []string{err.Error()}
	if status == http.StatusInternalServerError {
		h.logger.Error("batch prediction failed", zap.Error(err))
		view.Errors = []string{"prediction failed"}
	}
	var mismatch *service.SchemaMismatchError
	if errors.As(err, &mismatch) {
		view.Errors = []string{"The uploaded columns do not match the features the model was trained on."}
		view.Missing, view.Extra = mismatch.Missing, mismatch.Extra
	}
	if table != nil {
		view.Preview = table.Preview(previewRows)
	}
	c.HTML(status, "batch.html", view)
}

// RejectBatch es el rechazo por rate limit de POST /batch: la misma página
// con el error en línea.
func (h *PageHandler) RejectBatch(c *gin.Context, retryAfter time.Duration) {
	view := h.newBatchView()
	view.Errors = []string{fmt.Sprintf("Too many uploads. Try again in %d seconds.", retryAfterSeconds(retryAfter))}
	c.HTML(http.StatusTooManyRequests, "batch.html", view)
}

func (h *PageHandler) newBatchView() batchView {
	return batchView{
		Filename:       domain.BatchOutputFilename,
		ScoreColumn:    domain.ColumnPredictedScore,
		CategoryColumn: domain.ColumnCategory,
		Columns:        h.predictions.TrainedColumns(),
	}
}

func newFormView(input service.InteractiveInput) formView {
	view := formView{
		Input:            input,
		HouseholdSizeMin: domain.HouseholdSizeMin,
		HouseholdSizeMax: domain.HouseholdSizeMax,
		ActivityMin:      domain.MobileMoneyActivityMin,
		ActivityMax:      domain.MobileMoneyActivityMax,
		Selects: []selectField{
			{Name: domain.FeatureEducation, Options: domain.EducationLevels, Selected: input.Education},
			{Name: domain.FeaturePrimaryCrop, Options: domain.PrimaryCrops, Selected: input.PrimaryCrop},
			{Name: domain.FeatureCreditworthiness, Options: domain.CreditworthinessLevels, Selected: input.Creditworthiness},
			{Name: domain.FeatureMobileMoneyFrequency, Options: domain.MobileMoneyFrequencies, Selected: input.MobileMoneyFrequency},
		},
		Genders: domain.Genders,
	}
	for _, f := range formFlags(&input) {
		view.Flags = append(view.Flags, flagField{Name: f.name, Checked: *f.value})
	}
	for _, name := range domain.NumericFeatures() {
		value, ok := input.Numeric[name]
		if !ok {
			value = domain.DefaultValue(name)
		}
		view.Numeric = append(view.Numeric, numericField{
			Name:  name,
			Label: domain.FeatureLabel(name),
			Value: strconv.FormatFloat(value, 'f', -1, 64),
		})
	}
	return view
}

type formFlag struct {
	name  string
	value *bool
}

func formFlags(input *service.InteractiveInput) []formFlag {
	return []formFlag{
		{name: domain.FeatureHasLandTitle, value: &input.HasLandTitle},
		{name: domain.FeatureHasWeatherInsurance, value: &input.HasWeatherInsurance},
		{name: domain.FeatureSmartphoneOwner, value: &input.SmartphoneOwner},
		{name: domain.FeatureCooperativeMember, value: &input.CooperativeMember},
		{name: domain.FeatureHasPriorLoan, value: &input.HasPriorLoan},
		{name: domain.FeatureHasOffFarmIncome, value: &input.HasOffFarmIncome},
	}
}

// parseFormInput lee el formulario enviado. Los checkboxes ausentes son false;
// los demás campos ausentes conservan su valor por defecto.
func parseFormInput(c *gin.Context) (service.InteractiveInput, []string) {
	input := service.DefaultInteractiveInput()
	var errs []string

	ints := []struct {
		name  string
		value *int
	}{
		{name: domain.FeatureHouseholdSize, value: &input.HouseholdSize},
		{name: domain.FeatureMobileMoneyActivity, value: &input.MobileMoneyActivity},
	}
	for _, field := range ints {
		raw, ok := c.GetPostForm(field.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a whole number", domain.FeatureLabel(field.name)))
			continue
		}
		*field.value = n
	}

	labels := []struct {
		name  string
		value *string
	}{
		{name: domain.FeatureEducation, value: &input.Education},
		{name: domain.FeaturePrimaryCrop, value: &input.PrimaryCrop},
		{name: domain.FeatureCreditworthiness, value: &input.Creditworthiness},
		{name: domain.FeatureMobileMoneyFrequency, value: &input.MobileMoneyFrequency},
		{name: domain.FeatureGender, value: &input.Gender},
	}
	for _, field := range labels {
		if raw, ok := c.GetPostForm(field.name); ok {
			*field.value = raw
		}
	}

	for _, f := range formFlags(&input) {
		*f.value = c.PostForm(f.name) != ""
	}

	for _, name := range domain.NumericFeatures() {
		raw, ok := c.GetPostForm(name)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a number", domain.FeatureLabel(name)))
			continue
		}
		input.Numeric[name] = v
	}
	return input, errs
}

// csvDataURL codifica la tabla como data URL para el enlace de descarga.
func csvDataURL(table *service.Table) (template.URL, error) {
	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		return "", err
	}
	return template.URL("data:text/csv;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}
