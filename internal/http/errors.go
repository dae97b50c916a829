package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"farm-credit/internal/service"
)

var errMissingFile = errors.New("missing csv file")

// previewRows es la cantidad de filas que acompaña a un error de carga batch.
const previewRows = 5

// predictionError traduce un error del pipeline a status HTTP y cuerpo JSON.
func predictionError(err error) (int, gin.H) {
	var mismatch *service.SchemaMismatchError
	var malformed *service.MalformedValueError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &mismatch):
		return http.StatusUnprocessableEntity, gin.H{
			"error":   "schema mismatch",
			"missing": mismatch.Missing,
			"extra":   mismatch.Extra,
		}
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity, gin.H{
			"error":  malformed.Error(),
			"row":    malformed.Row,
			"column": malformed.Column,
			"value":  malformed.Value,
		}
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)}
	case errors.Is(err, service.ErrOutOfRange),
		errors.Is(err, service.ErrEmptyTable),
		errors.Is(err, service.ErrMalformedTable),
		errors.Is(err, errMissingFile):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": "prediction failed"}
	}
}

// readUploadedTable lee el CSV del campo multipart "file".
func readUploadedTable(c *gin.Context) (*service.Table, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errMissingFile
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return service.ParseTable(f)
}

// writeCSVAttachment envía la tabla anotada como descarga.
func writeCSVAttachment(c *gin.Context, filename string, table *service.Table) error {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	return table.WriteCSV(c.Writer)
}
