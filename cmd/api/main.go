package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"farm-credit/internal/config"
	"farm-credit/internal/db"
	apihttp "farm-credit/internal/http"
	"farm-credit/internal/logging"
	"farm-credit/internal/ml"
	"farm-credit/internal/repository"
	"farm-credit/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, MaxSizeMB: cfg.LogMaxSizeMB})
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Sin artefactos no hay modo degradado: el proceso no arranca.
	artifactDir, err := ml.ArtifactDir()
	if err != nil {
		logger.Fatal("resolve artifact dir", zap.Error(err))
	}
	artifacts, err := ml.LoadArtifacts(artifactDir)
	if err != nil {
		logger.Fatal("load model artifacts", zap.String("dir", artifactDir), zap.Error(err))
	}
	logger.Info("model artifacts loaded",
		zap.String("dir", artifactDir),
		zap.Int("features", len(artifacts.Model.TrainedColumns())),
	)

	var history repository.PredictionRepository = repository.NewMemoryPredictionRepository(0)
	if cfg.DatabaseURL != "" {
		pool, err := openAuditPool(ctx, cfg, len(artifacts.Model.TrainedColumns()))
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		history = repository.NewPgPredictionRepository(pool)
	} else {
		logger.Warn("database url not configured, prediction history kept in memory")
	}

	uploadLimiter := service.NewUploadRateLimiter(cfg.BatchUploadWindow(), cfg.BatchUploadLimit)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			uploadLimiter = service.NewRedisUploadRateLimiter(redisClient, cfg.BatchUploadWindow(), cfg.BatchUploadLimit)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTAccessTTL())
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}
	authSvc := service.NewAuthService(cfg.OperatorPasswordHash, jwtSvc)
	predictionSvc := service.NewPredictionService(logger, artifacts, history)

	router := apihttp.NewRouter(
		logger,
		apihttp.NewPageHandler(logger, predictionSvc),
		apihttp.NewPredictionHandler(logger, predictionSvc),
		apihttp.NewAuthHandler(logger, authSvc),
		jwtSvc,
		apihttp.NewUploadGuard(logger, uploadLimiter, cfg.MaxUploadBytes()),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

// openAuditPool conecta a Postgres y crea la tabla de historial.
func openAuditPool(ctx context.Context, cfg *config.Config, dims int) (*pgxpool.Pool, error) {
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ctxInit, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.Ping(ctxInit, pool); err != nil {
		pool.Close()
		return nil, err
	}
	if err := db.EnsureSchema(ctxInit, pool, dims); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
