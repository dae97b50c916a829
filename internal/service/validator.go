package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"farm-credit/internal/domain"
)

// ErrSchemaMismatch indica que las columnas de entrada no coinciden con las del modelo.
var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaMismatchError detalla las columnas faltantes y sobrantes, ordenadas.
type SchemaMismatchError struct {
	Missing []string `json:"missing"`
	Extra   []string `json:"extra"`
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: missing features [%s], extra features [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Extra, ", "))
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// ValidateColumns compara los conjuntos de columnas. Devuelve nil si son iguales
// y un *SchemaMismatchError con missing = model - input y extra = input - model si no.
func ValidateColumns(inputColumns, modelColumns []string) error {
	input := toSet(inputColumns)
	model := toSet(modelColumns)

	missing := difference(model, input)
	extra := difference(input, model)
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	return &SchemaMismatchError{Missing: missing, Extra: extra}
}

// ProjectRecord ordena los valores del registro según las columnas del modelo.
// El registro debe haber pasado ValidateColumns.
func ProjectRecord(record domain.FeatureRecord, modelColumns []string) []float64 {
	row := make([]float64, len(modelColumns))
	for i, col := range modelColumns {
		row[i] = record[col]
	}
	return row
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func difference(a, b map[string]struct{}) []string {
	out := make([]string, 0)
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
