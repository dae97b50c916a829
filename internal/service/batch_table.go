package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"farm-credit/internal/domain"
)

var (
	ErrEmptyTable     = errors.New("empty table")
	ErrMalformedTable = errors.New("malformed table")
	ErrMalformedValue = errors.New("malformed numeric value")
)

// MalformedValueError identifica la celda no numérica que llegó al predictor.
// Row es 1-based sobre las filas de datos (sin contar el header).
type MalformedValueError struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("malformed numeric value %q in column %q at row %d", e.Value, e.Column, e.Row)
}

func (e *MalformedValueError) Is(target error) bool {
	return target == ErrMalformedValue
}

// Marcadores que se leen como valor faltante, igual que un lector CSV de pandas.
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

// Table es una tabla CSV cargada en memoria; las celdas conservan su texto original.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// ParseTable lee un CSV con header. Filas con distinto número de campos o
// headers repetidos son un error.
func ParseTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	seen := make(map[string]struct{}, len(header))
	for _, h := range header {
		if _, dup := seen[h]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformedTable, h)
		}
		seen[h] = struct{}{}
	}
	return &Table{Header: header, Rows: records[1:]}, nil
}

// Preview devuelve las primeras n filas de la tabla.
func (t *Table) Preview(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Header: t.Header, Rows: t.Rows[:n]}
}

// FeatureMatrix proyecta cada fila a las columnas del modelo, en ese orden.
// Las celdas vacías o marcadas como NA se convierten en NaN.
func (t *Table) FeatureMatrix(columns []string) ([][]float64, error) {
	index := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		index[h] = i
	}

	matrix := make([][]float64, len(t.Rows))
	for r, row := range t.Rows {
		values := make([]float64, len(columns))
		for c, col := range columns {
			idx, ok := index[col]
			if !ok {
				return nil, &SchemaMismatchError{Missing: []string{col}, Extra: []string{}}
			}
			v, err := parseCell(row[idx])
			if err != nil {
				return nil, &MalformedValueError{Row: r + 1, Column: col, Value: row[idx]}
			}
			values[c] = v
		}
		matrix[r] = values
	}
	return matrix, nil
}

func parseCell(raw string) (float64, error) {
	cell := strings.TrimSpace(raw)
	if _, missing := missingMarkers[cell]; missing {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// Annotate devuelve una copia de la tabla con las columnas de score y categoría al final.
func (t *Table) Annotate(results []domain.PredictionResult) (*Table, error) {
	if len(results) != len(t.Rows) {
		return nil, fmt.Errorf("annotate: %d results for %d rows", len(results), len(t.Rows))
	}
	header := make([]string, 0, len(t.Header)+2)
	header = append(header, t.Header...)
	header = append(header, domain.ColumnPredictedScore, domain.ColumnCategory)

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]string, 0, len(row)+2)
		out = append(out, row...)
		out = append(out, FormatScore(results[i].Score), results[i].Category)
		rows[i] = out
	}
	return &Table{Header: header, Rows: rows}, nil
}

// WriteCSV serializa la tabla como CSV UTF-8 sin índice.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}
