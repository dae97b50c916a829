package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"farm-credit/internal/domain"
	"farm-credit/internal/service"
)

var (
	promptFlag = &cli.BoolFlag{
		Name:  "prompt",
		Usage: "Ask for every field on stdin (Enter keeps the default)",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the prediction as JSON",
	}
)

func flagName(feature string) string {
	return strings.ReplaceAll(feature, "_", "-")
}

// boolFeatures son las features binarias del formulario, en orden de presentación.
var boolFeatures = []string{
	domain.FeatureHasLandTitle,
	domain.FeatureHasWeatherInsurance,
	domain.FeatureSmartphoneOwner,
	domain.FeatureCooperativeMember,
	domain.FeatureHasPriorLoan,
	domain.FeatureHasOffFarmIncome,
}

func predictFlags() []cli.Flag {
	defaults := service.DefaultInteractiveInput()
	flags := []cli.Flag{
		promptFlag,
		jsonFlag,
		&cli.IntFlag{Name: flagName(domain.FeatureHouseholdSize), Value: defaults.HouseholdSize,
			Usage: fmt.Sprintf("Household size (%d-%d)", domain.HouseholdSizeMin, domain.HouseholdSizeMax)},
		&cli.IntFlag{Name: flagName(domain.FeatureMobileMoneyActivity), Value: defaults.MobileMoneyActivity,
			Usage: fmt.Sprintf("Mobile money activity score (%d-%d)", domain.MobileMoneyActivityMin, domain.MobileMoneyActivityMax)},
		&cli.StringFlag{Name: flagName(domain.FeatureEducation), Value: defaults.Education,
			Usage: strings.Join(domain.EducationLevels, " | ")},
		&cli.StringFlag{Name: flagName(domain.FeaturePrimaryCrop), Value: defaults.PrimaryCrop,
			Usage: strings.Join(domain.PrimaryCrops, " | ")},
		&cli.StringFlag{Name: flagName(domain.FeatureCreditworthiness), Value: defaults.Creditworthiness,
			Usage: strings.Join(domain.CreditworthinessLevels, " | ")},
		&cli.StringFlag{Name: flagName(domain.FeatureMobileMoneyFrequency), Value: defaults.MobileMoneyFrequency,
			Usage: strings.Join(domain.MobileMoneyFrequencies, " | ")},
		&cli.StringFlag{Name: flagName(domain.FeatureGender), Value: defaults.Gender,
			Usage: strings.Join(domain.Genders, " | ")},
	}
	for _, f := range boolFeatures {
		flags = append(flags, &cli.BoolFlag{
			Name:  flagName(f),
			Value: f == domain.FeatureSmartphoneOwner,
			Usage: domain.FeatureLabel(f),
		})
	}
	for _, f := range domain.NumericFeatures() {
		flags = append(flags, &cli.FloatFlag{
			Name:  flagName(f),
			Value: domain.DefaultValue(f),
			Usage: domain.FeatureLabel(f),
		})
	}
	return flags
}

func predictCmd(logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Score a single farmer",
		UsageText: `farmcredit predict --age 34 --primary-crop Cassava --has-land-title
   farmcredit predict --prompt`,
		Flags: predictFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newPredictionService(logger)
			if err != nil {
				return err
			}

			var input service.InteractiveInput
			if cmd.Bool(promptFlag.Name) {
				input, err = promptInput(bufio.NewReader(os.Stdin), os.Stdout)
				if err != nil {
					return err
				}
			} else {
				input = inputFromFlags(cmd)
			}

			result, err := svc.PredictInteractive(ctx, input)
			if err != nil {
				return err
			}

			if cmd.Bool(jsonFlag.Name) {
				return json.NewEncoder(os.Stdout).Encode(result)
			}
			fmt.Printf("Predicted Credit Score: %s\n", service.FormatScore(result.Score))
			fmt.Printf("Creditworthiness Category: %s\n", result.Category)
			return nil
		},
	}
}

func inputFromFlags(cmd *cli.Command) service.InteractiveInput {
	input := service.InteractiveInput{
		HouseholdSize:        cmd.Int(flagName(domain.FeatureHouseholdSize)),
		MobileMoneyActivity:  cmd.Int(flagName(domain.FeatureMobileMoneyActivity)),
		Education:            cmd.String(flagName(domain.FeatureEducation)),
		PrimaryCrop:          cmd.String(flagName(domain.FeaturePrimaryCrop)),
		Creditworthiness:     cmd.String(flagName(domain.FeatureCreditworthiness)),
		MobileMoneyFrequency: cmd.String(flagName(domain.FeatureMobileMoneyFrequency)),
		Gender:               cmd.String(flagName(domain.FeatureGender)),
		Numeric:              make(map[string]float64),
	}
	flags := boolTargets(&input)
	for _, f := range boolFeatures {
		*flags[f] = cmd.Bool(flagName(f))
	}
	for _, f := range domain.NumericFeatures() {
		input.Numeric[f] = cmd.Float(flagName(f))
	}
	return input
}

func boolTargets(input *service.InteractiveInput) map[string]*bool {
	return map[string]*bool{
		domain.FeatureHasLandTitle:        &input.HasLandTitle,
		domain.FeatureHasWeatherInsurance: &input.HasWeatherInsurance,
		domain.FeatureSmartphoneOwner:     &input.SmartphoneOwner,
		domain.FeatureCooperativeMember:   &input.CooperativeMember,
		domain.FeatureHasPriorLoan:        &input.HasPriorLoan,
		domain.FeatureHasOffFarmIncome:    &input.HasOffFarmIncome,
	}
}
