package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Objetivos de regresión con link identidad: el margen es la predicción.
var identityObjectives = map[string]bool{
	"reg:squarederror":     true,
	"reg:linear":           true,
	"reg:absoluteerror":    true,
	"reg:pseudohubererror": true,
}

// Booster evalúa un ensamble de árboles exportado con el formato JSON de XGBoost.
// Es inmutable una vez cargado y seguro para uso concurrente.
type Booster struct {
	featureNames []string
	baseScore    float32
	trees        []regTree
}

type regTree struct {
	left        []int
	right       []int
	splitIndex  []int
	splitCond   []float32
	defaultLeft []bool
}

type boosterFile struct {
	Learner struct {
		FeatureNames      []string `json:"feature_names"`
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumFeature string `json:"num_feature"`
		} `json:"learner_model_param"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Trees []treeFile `json:"trees"`
			} `json:"model"`
		} `json:"gradient_booster"`
	} `json:"learner"`
}

type treeFile struct {
	LeftChildren    []int     `json:"left_children"`
	RightChildren   []int     `json:"right_children"`
	SplitIndices    []int     `json:"split_indices"`
	SplitConditions []float64 `json:"split_conditions"`
	DefaultLeft     flagList  `json:"default_left"`
}

// flagList acepta default_left como booleanos o como 0/1 según la versión del exportador.
type flagList []bool

func (f *flagList) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]bool, len(raw))
	for i, v := range raw {
		switch t := v.(type) {
		case bool:
			out[i] = t
		case float64:
			out[i] = t != 0
		default:
			return fmt.Errorf("default_left[%d]: unexpected %T", i, v)
		}
	}
	*f = out
	return nil
}

// LoadBooster lee un modelo XGBoost guardado con save_model en formato JSON.
func LoadBooster(path string) (*Booster, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := ParseBooster(payload)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return b, nil
}

// ParseBooster decodifica y valida el JSON de un modelo XGBoost.
func ParseBooster(payload []byte) (*Booster, error) {
	var file boosterFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	learner := file.Learner

	if name := learner.GradientBooster.Name; name != "" && name != "gbtree" {
		return nil, fmt.Errorf("unsupported booster %q", name)
	}
	objective := learner.Objective.Name
	if objective != "" && !identityObjectives[objective] {
		return nil, fmt.Errorf("unsupported objective %q", objective)
	}
	if len(learner.FeatureNames) == 0 {
		return nil, errors.New("model has no feature names")
	}
	seen := make(map[string]struct{}, len(learner.FeatureNames))
	for _, name := range learner.FeatureNames {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate feature name %q", name)
		}
		seen[name] = struct{}{}
	}

	base, err := parseBaseScore(learner.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, err
	}

	trees := make([]regTree, 0, len(learner.GradientBooster.Model.Trees))
	for i, tf := range learner.GradientBooster.Model.Trees {
		tree, err := buildTree(tf, len(learner.FeatureNames))
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees = append(trees, tree)
	}

	return &Booster{
		featureNames: append([]string(nil), learner.FeatureNames...),
		baseScore:    base,
		trees:        trees,
	}, nil
}

// parseBaseScore admite "5E-1" y la forma con corchetes "[5E-1]" de versiones recientes.
func parseBaseScore(raw string) (float32, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	if raw == "" {
		return 0, errors.New("model has no base_score")
	}
	if strings.Contains(raw, ",") {
		return 0, fmt.Errorf("multi-target base_score %q not supported", raw)
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("parse base_score %q: %w", raw, err)
	}
	return float32(v), nil
}

func buildTree(tf treeFile, numFeatures int) (regTree, error) {
	n := len(tf.LeftChildren)
	if n == 0 {
		return regTree{}, errors.New("empty tree")
	}
	if len(tf.RightChildren) != n || len(tf.SplitIndices) != n || len(tf.SplitConditions) != n || len(tf.DefaultLeft) != n {
		return regTree{}, errors.New("node arrays size mismatch")
	}
	tree := regTree{
		left:        tf.LeftChildren,
		right:       tf.RightChildren,
		splitIndex:  tf.SplitIndices,
		splitCond:   make([]float32, n),
		defaultLeft: tf.DefaultLeft,
	}
	for i := 0; i < n; i++ {
		tree.splitCond[i] = float32(tf.SplitConditions[i])
		l, r := tf.LeftChildren[i], tf.RightChildren[i]
		if l == -1 && r == -1 {
			continue
		}
		if l == -1 || r == -1 {
			return regTree{}, fmt.Errorf("node %d: half leaf", i)
		}
		// Los hijos siempre tienen índice mayor que el padre: garantiza que el recorrido termina.
		if l <= i || r <= i || l >= n || r >= n {
			return regTree{}, fmt.Errorf("node %d: invalid children %d/%d", i, l, r)
		}
		if idx := tf.SplitIndices[i]; idx < 0 || idx >= numFeatures {
			return regTree{}, fmt.Errorf("node %d: feature index %d out of range", i, idx)
		}
	}
	return tree, nil
}

// TrainedColumns devuelve una copia de feature_names en orden de entrenamiento.
func (b *Booster) TrainedColumns() []string {
	return append([]string(nil), b.featureNames...)
}

// Predict devuelve base_score más la suma de hojas de cada árbol, en float32 como XGBoost.
// NaN representa un valor faltante y sigue la rama default_left.
func (b *Booster) Predict(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(b.featureNames) {
			return nil, fmt.Errorf("row %d: expected %d features, got %d", i, len(b.featureNames), len(row))
		}
		var sum float32
		for t := range b.trees {
			sum += b.trees[t].leafValue(row)
		}
		out[i] = float64(b.baseScore + sum)
	}
	return out, nil
}

func (t *regTree) leafValue(row []float64) float32 {
	idx := 0
	for t.left[idx] != -1 {
		v := row[t.splitIndex[idx]]
		switch {
		case math.IsNaN(v):
			if t.defaultLeft[idx] {
				idx = t.left[idx]
			} else {
				idx = t.right[idx]
			}
		case float32(v) < t.splitCond[idx]:
			idx = t.left[idx]
		default:
			idx = t.right[idx]
		}
	}
	return t.splitCond[idx]
}
