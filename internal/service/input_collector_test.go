package service

import (
	"errors"
	"testing"

	"farm-credit/internal/domain"
	"farm-credit/internal/ml"
)

func loadTestArtifacts(t *testing.T) *ml.Artifacts {
	t.Helper()
	artifacts, err := ml.LoadArtifacts("../ml/testdata")
	if err != nil {
		t.Fatalf("load artifacts: %v", err)
	}
	return artifacts
}

func TestCollectInteractiveDefaults(t *testing.T) {
	record, err := CollectInteractive(DefaultInteractiveInput(), loadTestArtifacts(t))
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if len(record) != len(domain.AllFeatures()) {
		t.Fatalf("expected %d features, got %d", len(domain.AllFeatures()), len(record))
	}
	if err := ValidateColumns(record.Columns(), domain.AllFeatures()); err != nil {
		t.Fatalf("expected record to carry every feature: %v", err)
	}

	want := map[string]float64{
		domain.FeatureHouseholdSize:        1,
		domain.FeatureMobileMoneyActivity:  5,
		domain.FeatureEducation:            2,
		domain.FeaturePrimaryCrop:          1,
		domain.FeatureCreditworthiness:     1,
		domain.FeatureMobileMoneyFrequency: 2,
		domain.FeatureSmartphoneOwner:      1,
		domain.FeatureHasLandTitle:         0,
		domain.FeatureGender:               1,
		domain.FeatureAge:                  domain.DefaultValue(domain.FeatureAge),
	}
	for f, v := range want {
		if record[f] != v {
			t.Fatalf("%s: expected %v, got %v", f, v, record[f])
		}
	}
}

func TestCollectInteractiveUnknownLabelsAndGender(t *testing.T) {
	input := DefaultInteractiveInput()
	input.PrimaryCrop = "Sorghum"
	input.Gender = "Female"
	input.Numeric = map[string]float64{domain.FeatureAge: 42}

	record, err := CollectInteractive(input, loadTestArtifacts(t))
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if record[domain.FeaturePrimaryCrop] != UnknownCategoryCode {
		t.Fatalf("expected unknown crop to encode as -1, got %v", record[domain.FeaturePrimaryCrop])
	}
	if record[domain.FeatureGender] != 0 {
		t.Fatalf("expected Female=0, got %v", record[domain.FeatureGender])
	}
	if record[domain.FeatureAge] != 42 {
		t.Fatalf("expected age override, got %v", record[domain.FeatureAge])
	}
	for _, f := range domain.NumericFeatures() {
		if f == domain.FeatureAge {
			continue
		}
		if record[f] != domain.DefaultValue(f) {
			t.Fatalf("%s: expected default %v, got %v", f, domain.DefaultValue(f), record[f])
		}
	}
}

func TestCollectInteractiveSliderRange(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*InteractiveInput)
	}{
		{name: "household zero", mutate: func(in *InteractiveInput) { in.HouseholdSize = 0 }},
		{name: "household fifteen", mutate: func(in *InteractiveInput) { in.HouseholdSize = 15 }},
		{name: "activity zero", mutate: func(in *InteractiveInput) { in.MobileMoneyActivity = 0 }},
		{name: "activity eleven", mutate: func(in *InteractiveInput) { in.MobileMoneyActivity = 11 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := DefaultInteractiveInput()
			tc.mutate(&input)
			if _, err := CollectInteractive(input, nil); !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("expected ErrOutOfRange, got %v", err)
			}
		})
	}

	input := DefaultInteractiveInput()
	input.HouseholdSize = domain.HouseholdSizeMax
	input.MobileMoneyActivity = domain.MobileMoneyActivityMax
	if _, err := CollectInteractive(input, nil); err != nil {
		t.Fatalf("expected upper bounds to be accepted, got %v", err)
	}
}

func TestCollectInteractiveWithoutEncoders(t *testing.T) {
	record, err := CollectInteractive(DefaultInteractiveInput(), nil)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if record[domain.FeatureEducation] != UnknownCategoryCode {
		t.Fatalf("expected -1 without encoders, got %v", record[domain.FeatureEducation])
	}
}

func TestCollectInteractiveExtraNumericKeyIsReported(t *testing.T) {
	input := DefaultInteractiveInput()
	input.Numeric["soil_ph"] = 6.5

	record, err := CollectInteractive(input, nil)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	err = ValidateColumns(record.Columns(), domain.AllFeatures())
	var mismatch *SchemaMismatchError
	if !errors.As(err, &mismatch) || len(mismatch.Extra) != 1 || mismatch.Extra[0] != "soil_ph" {
		t.Fatalf("expected soil_ph reported as extra, got %v", err)
	}
}
