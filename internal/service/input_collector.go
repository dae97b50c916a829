package service

import (
	"errors"
	"fmt"

	"farm-credit/internal/domain"
	"farm-credit/internal/ml"
)

// ErrOutOfRange indica un valor de slider fuera de su dominio.
var ErrOutOfRange = errors.New("value out of range")

// InteractiveInput son los campos del formulario interactivo, con etiquetas sin codificar.
type InteractiveInput struct {
	HouseholdSize        int                `json:"household_size"`
	MobileMoneyActivity  int                `json:"mobile_money_activity_score_1_10"`
	Education            string             `json:"education_category"`
	PrimaryCrop          string             `json:"primary_crop"`
	Creditworthiness     string             `json:"creditworthiness_category"`
	MobileMoneyFrequency string             `json:"mobile_money_usage_frequency"`
	HasLandTitle         bool               `json:"has_land_title"`
	HasWeatherInsurance  bool               `json:"has_weather_insurance"`
	SmartphoneOwner      bool               `json:"smartphone_owner"`
	CooperativeMember    bool               `json:"cooperative_member"`
	HasPriorLoan         bool               `json:"has_prior_loan"`
	HasOffFarmIncome     bool               `json:"has_off_farm_income"`
	Gender               string             `json:"gender"`
	Numeric              map[string]float64 `json:"numeric"`
}

// DefaultInteractiveInput devuelve el formulario con sus valores iniciales.
func DefaultInteractiveInput() InteractiveInput {
	numeric := make(map[string]float64)
	for _, f := range domain.NumericFeatures() {
		numeric[f] = domain.DefaultValue(f)
	}
	return InteractiveInput{
		HouseholdSize:        domain.HouseholdSizeDefault,
		MobileMoneyActivity:  domain.MobileMoneyActivityDefault,
		Education:            domain.EducationLevels[0],
		PrimaryCrop:          domain.PrimaryCrops[0],
		Creditworthiness:     domain.CreditworthinessLevels[domain.DefaultCreditworthinessIndex],
		MobileMoneyFrequency: domain.MobileMoneyFrequencies[0],
		SmartphoneOwner:      true,
		Gender:               domain.Genders[0],
		Numeric:              numeric,
	}
}

// CollectInteractive arma el FeatureRecord de una fila a partir del formulario.
// Las etiquetas categóricas desconocidas se codifican como -1; sólo los sliders
// fuera de rango producen error.
func CollectInteractive(input InteractiveInput, artifacts *ml.Artifacts) (domain.FeatureRecord, error) {
	if input.HouseholdSize < domain.HouseholdSizeMin || input.HouseholdSize > domain.HouseholdSizeMax {
		return nil, fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrOutOfRange,
			domain.FeatureHouseholdSize, domain.HouseholdSizeMin, domain.HouseholdSizeMax, input.HouseholdSize)
	}
	if input.MobileMoneyActivity < domain.MobileMoneyActivityMin || input.MobileMoneyActivity > domain.MobileMoneyActivityMax {
		return nil, fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrOutOfRange,
			domain.FeatureMobileMoneyActivity, domain.MobileMoneyActivityMin, domain.MobileMoneyActivityMax, input.MobileMoneyActivity)
	}

	var edu, crop, money, credit ml.Encoder
	if artifacts != nil {
		edu, crop, money, credit = artifacts.Education, artifacts.PrimaryCrop, artifacts.MobileMoney, artifacts.Creditworthiness
	}

	record := domain.FeatureRecord{
		domain.FeatureHouseholdSize:        float64(input.HouseholdSize),
		domain.FeatureMobileMoneyActivity:  float64(input.MobileMoneyActivity),
		domain.FeatureEducation:            float64(SafeEncode(edu, input.Education)),
		domain.FeaturePrimaryCrop:          float64(SafeEncode(crop, input.PrimaryCrop)),
		domain.FeatureCreditworthiness:     float64(SafeEncode(credit, input.Creditworthiness)),
		domain.FeatureMobileMoneyFrequency: float64(SafeEncode(money, input.MobileMoneyFrequency)),
		domain.FeatureHasLandTitle:         boolToFloat(input.HasLandTitle),
		domain.FeatureHasWeatherInsurance:  boolToFloat(input.HasWeatherInsurance),
		domain.FeatureSmartphoneOwner:      boolToFloat(input.SmartphoneOwner),
		domain.FeatureCooperativeMember:    boolToFloat(input.CooperativeMember),
		domain.FeatureHasPriorLoan:         boolToFloat(input.HasPriorLoan),
		domain.FeatureHasOffFarmIncome:     boolToFloat(input.HasOffFarmIncome),
		// Reducción binaria heredada del dataset de entrenamiento: Male=1, cualquier otro valor=0.
		domain.FeatureGender: boolToFloat(input.Gender == "Male"),
	}

	for _, f := range domain.NumericFeatures() {
		if v, ok := input.Numeric[f]; ok {
			record[f] = v
			continue
		}
		record[f] = domain.DefaultValue(f)
	}
	// Claves numéricas adicionales pasan tal cual: el validador las reporta como extra.
	for k, v := range input.Numeric {
		if _, ok := record[k]; !ok {
			record[k] = v
		}
	}
	return record, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
