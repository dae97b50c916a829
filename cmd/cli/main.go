package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"farm-credit/internal/config"
	"farm-credit/internal/logging"
	"farm-credit/internal/ml"
	"farm-credit/internal/service"
)

const name = "farmcredit"

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// La salida del CLI es para humanos; los logs sólo van al archivo si está configurado.
	logger := zap.NewNop()
	if cfg.LogFile != "" {
		fileLogger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, MaxSizeMB: cfg.LogMaxSizeMB})
		if err != nil {
			log.Fatal(err)
		}
		logger = fileLogger
	}
	defer logger.Sync()

	app := &cli.Command{
		Name:  name,
		Usage: "Predict farmer credit scores from the trained model artifacts",
		Commands: []*cli.Command{
			predictCmd(logger),
			batchCmd(logger),
			schemaCmd(logger),
			hashPasswordCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(1)
	}
}

// newPredictionService carga los artefactos junto al ejecutable. El CLI no guarda historial.
func newPredictionService(logger *zap.Logger) (*service.PredictionService, error) {
	dir, err := ml.ArtifactDir()
	if err != nil {
		return nil, err
	}
	artifacts, err := ml.LoadArtifacts(dir)
	if err != nil {
		return nil, fmt.Errorf("load artifacts from %s: %w", dir, err)
	}
	return service.NewPredictionService(logger, artifacts, nil), nil
}
