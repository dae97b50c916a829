package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Nombres de features que el formulario interactivo completa de forma explícita.
const (
	FeatureHouseholdSize         = "household_size"
	FeatureMobileMoneyActivity   = "mobile_money_activity_score_1_10"
	FeatureEducation             = "education_category"
	FeaturePrimaryCrop           = "primary_crop"
	FeatureCreditworthiness      = "creditworthiness_category"
	FeatureMobileMoneyFrequency  = "mobile_money_usage_frequency"
	FeatureHasLandTitle          = "has_land_title"
	FeatureHasWeatherInsurance   = "has_weather_insurance"
	FeatureSmartphoneOwner       = "smartphone_owner"
	FeatureCooperativeMember     = "cooperative_member"
	FeatureHasPriorLoan          = "has_prior_loan"
	FeatureHasOffFarmIncome      = "has_off_farm_income"
	FeatureGender                = "gender"
	FeatureMonthlyMobileSpend    = "monthly_mobile_spend_naira"
	FeaturePostHarvestLoss       = "post_harvest_loss_perc"
	FeatureDistanceToMarket      = "distance_to_market_km"
	FeatureDistanceToBank        = "distance_to_bank_km"
	FeaturePercentageUnprocessed = "percentage_sold_unprocessed"
	FeaturePercentageConsumed    = "percentage_consumed"
	FeatureIncomePerCapita       = "income_per_capita_ngn"
	FeatureAnnualFarmRevenue     = "annual_farm_revenue_ngn"
	FeatureAnnualFarmYield       = "annual_farm_yield_tons_per_ha"
	FeatureFarmSize              = "farm_size_ha"
	FeatureFarmingExperience     = "farming_experience_years"
	FeatureAge                   = "age"
	FeatureCoopRepaymentRate     = "cooperative_repayment_rate_percent"
	FeaturePriorLoanRepayment    = "prior_loan_repayment_rate"
)

// Columnas de salida que el modo batch agrega al final de la tabla.
const (
	ColumnPredictedScore = "Predicted_Credit_Score"
	ColumnCategory       = "Creditworthiness_Category"
)

// BatchOutputFilename es el nombre sugerido para la descarga batch.
const BatchOutputFilename = "credit_score_predictions.csv"

// Feature list en el orden en que se recolecta. El orden de entrenamiento
// lo define el modelo cargado, no esta lista.
var allFeatures = []string{
	FeatureMonthlyMobileSpend, FeaturePostHarvestLoss, FeatureDistanceToMarket, FeatureDistanceToBank,
	FeaturePercentageUnprocessed, FeaturePercentageConsumed, FeatureIncomePerCapita, FeatureAnnualFarmRevenue,
	FeatureAnnualFarmYield, FeatureFarmSize, FeatureFarmingExperience, FeatureAge, FeatureEducation,
	FeaturePrimaryCrop, FeatureMobileMoneyFrequency, FeatureCreditworthiness, FeatureMobileMoneyActivity,
	FeatureCoopRepaymentRate, FeaturePriorLoanRepayment, FeatureHasOffFarmIncome, FeatureGender,
	FeatureHasLandTitle, FeatureHasWeatherInsurance, FeatureSmartphoneOwner, FeatureCooperativeMember, FeatureHasPriorLoan,
	FeatureHouseholdSize,
}

// Valores por defecto para inputs numéricos. Son constantes heredadas del
// dataset de entrenamiento: se replican tal cual.
var defaultValues = map[string]float64{
	FeaturePostHarvestLoss:       5,
	FeatureDistanceToMarket:      0.5,
	FeatureDistanceToBank:        1,
	FeaturePercentageUnprocessed: 0,
	FeaturePercentageConsumed:    0,
	FeatureIncomePerCapita:       2769,
	FeatureAnnualFarmRevenue:     36000,
	FeatureAnnualFarmYield:       0.45,
	FeatureMobileMoneyFrequency:  2,
	FeatureCreditworthiness:      2,
	FeatureCoopRepaymentRate:     0,
	FeaturePriorLoanRepayment:    0,
	FeatureHouseholdSize:         1,
	FeatureMonthlyMobileSpend:    100,
	FeatureAge:                   16,
	FeatureFarmSize:              0.1,
	FeatureFarmingExperience:     1,
}

// Vocabularios de los selects del formulario.
var (
	EducationLevels = []string{
		"No Formal Education", "Primary Incomplete", "Primary Complete",
		"Secondary Incomplete", "Secondary Complete", "OND/NCE",
		"HND/BSc", "Masters/PhD",
	}
	PrimaryCrops           = []string{"Maize", "Cassava", "Yam", "Rice"}
	CreditworthinessLevels = []string{"Very Poor", "Poor", "Fair", "Good", "Very Good", "Excellent"}
	MobileMoneyFrequencies = []string{"Never", "Rarely", "Monthly", "Weekly", "Daily"}
	Genders                = []string{"Male", "Female"}
)

// DefaultCreditworthinessIndex apunta a "Fair" dentro de CreditworthinessLevels.
const DefaultCreditworthinessIndex = 2

// Rangos de los sliders del formulario.
const (
	HouseholdSizeMin, HouseholdSizeMax             = 1, 14
	HouseholdSizeDefault                           = 1
	MobileMoneyActivityMin, MobileMoneyActivityMax = 1, 10
	MobileMoneyActivityDefault                     = 5
)

// AllFeatures devuelve una copia de la lista fija de features.
func AllFeatures() []string {
	return append([]string(nil), allFeatures...)
}

// DefaultValue devuelve el valor por defecto de una feature numérica, o 0.0.
func DefaultValue(feature string) float64 {
	return defaultValues[feature]
}

// DefaultValues devuelve una copia de la tabla de valores por defecto.
func DefaultValues() map[string]float64 {
	out := make(map[string]float64, len(defaultValues))
	for k, v := range defaultValues {
		out[k] = v
	}
	return out
}

// explicitFeatures son las que el formulario completa con sliders, selects,
// checkboxes o el radio de género.
var explicitFeatures = map[string]struct{}{
	FeatureHouseholdSize:        {},
	FeatureMobileMoneyActivity:  {},
	FeatureEducation:            {},
	FeaturePrimaryCrop:          {},
	FeatureCreditworthiness:     {},
	FeatureMobileMoneyFrequency: {},
	FeatureHasLandTitle:         {},
	FeatureHasWeatherInsurance:  {},
	FeatureSmartphoneOwner:      {},
	FeatureCooperativeMember:    {},
	FeatureHasPriorLoan:         {},
	FeatureHasOffFarmIncome:     {},
	FeatureGender:               {},
}

// NumericFeatures devuelve, en orden de recolección, las features que se piden
// como input numérico libre.
func NumericFeatures() []string {
	out := make([]string, 0, len(allFeatures)-len(explicitFeatures))
	for _, f := range allFeatures {
		if _, ok := explicitFeatures[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

// FeatureLabel convierte el nombre de la feature en una etiqueta legible,
// p.ej. "distance_to_bank_km" -> "Distance To Bank Km".
func FeatureLabel(feature string) string {
	// Un Caser tiene estado: no se comparte entre goroutines.
	return cases.Title(language.English).String(strings.ReplaceAll(feature, "_", " "))
}
