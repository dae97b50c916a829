package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"farm-credit/internal/domain"
	"farm-credit/internal/service"
)

var passwordFlag = &cli.StringFlag{
	Name:     "password",
	Usage:    "Operator password to hash",
	Required: true,
}

func schemaCmd(logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the trained columns and the form defaults as JSON",
		Action: func(_ context.Context, _ *cli.Command) error {
			svc, err := newPredictionService(logger)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"trained_columns": svc.TrainedColumns(),
				"defaults":        domain.DefaultValues(),
				"output_columns":  []string{domain.ColumnPredictedScore, domain.ColumnCategory},
			})
		},
	}
}

func hashPasswordCmd() *cli.Command {
	return &cli.Command{
		Name:  "hash-password",
		Usage: "Print a bcrypt hash for OPERATOR_PASSWORD_HASH",
		Flags: []cli.Flag{passwordFlag},
		Action: func(_ context.Context, cmd *cli.Command) error {
			hash, err := service.HashPassword(cmd.String(passwordFlag.Name))
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}
