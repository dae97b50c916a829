package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"farm-credit/internal/domain"
	"farm-credit/internal/service"
)

var (
	inputFlag = &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "CSV file with one farmer per row and the model features as header",
		Required: true,
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Where to write the annotated CSV",
		Value:   domain.BatchOutputFilename,
	}
)

func batchCmd(logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Score every row of a CSV file",
		UsageText: "farmcredit batch --input farmers.csv --output " + domain.BatchOutputFilename,
		Flags:     []cli.Flag{inputFlag, outputFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newPredictionService(logger)
			if err != nil {
				return err
			}
			return runBatch(ctx, svc, cmd.String(inputFlag.Name), cmd.String(outputFlag.Name))
		},
	}
}

func runBatch(ctx context.Context, svc *service.PredictionService, inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	table, err := service.ParseTable(in)
	if err != nil {
		return err
	}

	res, err := svc.PredictBatch(ctx, table)
	if err != nil {
		var mismatch *service.SchemaMismatchError
		if errors.As(err, &mismatch) {
			preview, _ := json.MarshalIndent(table.Preview(5), "", "  ")
			fmt.Fprintf(os.Stderr, "missing features: %v\nextra features: %v\npreview:\n%s\n", mismatch.Missing, mismatch.Extra, preview)
		}
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := res.Output.WriteCSV(out); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	counts := map[string]int{}
	for _, r := range res.Results {
		counts[r.Category]++
	}
	fmt.Printf("Scored %d rows -> %s (Good: %d, Fair: %d, Poor: %d)\n", len(res.Results), outputPath,
		counts[domain.CategoryGood], counts[domain.CategoryFair], counts[domain.CategoryPoor])
	return nil
}
