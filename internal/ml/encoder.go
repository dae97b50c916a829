package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnknownLabel indica que la etiqueta no pertenece al vocabulario del encoder.
var ErrUnknownLabel = errors.New("unknown label")

// Encoder traduce etiquetas categóricas a los códigos enteros con que se entrenó el modelo.
type Encoder interface {
	Encode(label string) (int, error)
}

// LabelEncoder es un vocabulario fijo: el código de una etiqueta es su posición en classes.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// NewLabelEncoder construye un encoder inmutable a partir de sus clases.
func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, errors.New("encoder has no classes")
	}
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		index[c] = i
	}
	return &LabelEncoder{
		classes: append([]string(nil), classes...),
		index:   index,
	}, nil
}

// Encode devuelve el código asignado a label o ErrUnknownLabel.
func (e *LabelEncoder) Encode(label string) (int, error) {
	code, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return code, nil
}

// Classes devuelve una copia del vocabulario en orden de código.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

type encoderFile struct {
	Classes []string `json:"classes"`
}

// LoadLabelEncoder lee un encoder serializado como {"classes": [...]}.
func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file encoderFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("decode encoder %s: %w", path, err)
	}
	for i, c := range file.Classes {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("encoder %s: empty class at %d", path, i)
		}
	}
	enc, err := NewLabelEncoder(file.Classes)
	if err != nil {
		return nil, fmt.Errorf("encoder %s: %w", path, err)
	}
	return enc, nil
}
