package ml

import (
	"fmt"
	"os"
	"path/filepath"
)

// Nombres fijos de los artefactos, resueltos relativos al directorio de la aplicación.
const (
	ModelFile                   = "xgboost_credit_score_model.json"
	EducationEncoderFile        = "education_category_encoder.json"
	PrimaryCropEncoderFile      = "primary_crop_encoder.json"
	MobileMoneyEncoderFile      = "mobile_money_usage_frequency_encoder.json"
	CreditworthinessEncoderFile = "creditworthiness_category_encoder.json"
)

// Artifacts agrupa el modelo y los cuatro encoders cargados al inicio del proceso.
// Se comparten en modo solo lectura durante toda la vida del proceso.
type Artifacts struct {
	Model            Model
	Education        Encoder
	PrimaryCrop      Encoder
	MobileMoney      Encoder
	Creditworthiness Encoder
}

// ArtifactDir devuelve el directorio del ejecutable en curso.
func ArtifactDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// LoadArtifacts carga el modelo y los encoders desde dir, siempre en el mismo
// orden. Cualquier fallo es fatal para el llamador: no existe modo degradado
// sin artefactos.
func LoadArtifacts(dir string) (*Artifacts, error) {
	model, err := LoadBooster(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	artifacts := &Artifacts{Model: model}
	encoders := []struct {
		file string
		dst  *Encoder
	}{
		{file: EducationEncoderFile, dst: &artifacts.Education},
		{file: PrimaryCropEncoderFile, dst: &artifacts.PrimaryCrop},
		{file: MobileMoneyEncoderFile, dst: &artifacts.MobileMoney},
		{file: CreditworthinessEncoderFile, dst: &artifacts.Creditworthiness},
	}
	for _, e := range encoders {
		enc, err := LoadLabelEncoder(filepath.Join(dir, e.file))
		if err != nil {
			return nil, fmt.Errorf("load encoder %s: %w", e.file, err)
		}
		*e.dst = enc
	}
	return artifacts, nil
}
