package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
// Las rutas de los artefactos del modelo no son configurables: se resuelven
// junto al ejecutable (ver ml.ArtifactDir).
type Config struct {
	HTTPPort     string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile      string `env:"LOG_FILE"`
	LogMaxSizeMB int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	DatabaseURL  string `env:"DATABASE_URL"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"60"`
	OperatorPasswordHash string `env:"OPERATOR_PASSWORD_HASH"`

	BatchUploadLimit         int   `env:"BATCH_UPLOAD_LIMIT" envDefault:"20"`
	BatchUploadWindowMinutes int   `env:"BATCH_UPLOAD_WINDOW_MINUTES" envDefault:"10"`
	MaxUploadMB              int64 `env:"MAX_UPLOAD_MB" envDefault:"10"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BatchUploadWindow devuelve la ventana del rate limit de cargas batch.
func (c *Config) BatchUploadWindow() time.Duration {
	return time.Duration(c.BatchUploadWindowMinutes) * time.Minute
}

// JWTAccessTTL devuelve la duración de los access tokens de operador.
func (c *Config) JWTAccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

// MaxUploadBytes limita el tamaño del multipart de cargas batch.
func (c *Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return c.MaxUploadMB << 20
}
