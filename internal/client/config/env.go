package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrijs2005/docarchive/internal/client/models"
)

// envConfig mirrors Config for DOCARCHIVE_* variables. Pointer fields stay
// nil when the variable is unset, so only present variables override.
type envConfig struct {
	APIBaseURL        *string        `env:"API_BASE_URL"`
	HTTPTimeout       *time.Duration `env:"HTTP_TIMEOUT"`
	RequestsPerSecond *float64       `env:"REQUESTS_PER_SECOND"`
	RequestBurst      *int           `env:"REQUEST_BURST"`
	MetadataBackend   *string        `env:"METADATA_BACKEND"`
	SQLitePath        *string        `env:"SQLITE_PATH"`
	PostgresDSN       *string        `env:"POSTGRES_DSN"`
	ImageBackend      *string        `env:"IMAGE_BACKEND"`
	ImageDir          *string        `env:"IMAGE_DIR"`
	S3Bucket          *string        `env:"S3_BUCKET"`
	S3Region          *string        `env:"S3_REGION"`
	S3BaseEndpoint    *string        `env:"S3_BASE_ENDPOINT"`
	S3User            *string        `env:"S3_USER"`
	S3Password        *string        `env:"S3_PASSWORD"`
	S3Prefix          *string        `env:"S3_PREFIX"`
	MinImageSize      *int           `env:"MIN_IMAGE_SIZE"`
	DetailConcurrency *int           `env:"DETAIL_CONCURRENCY"`
	LogLevel          *string        `env:"LOG_LEVEL"`
	LogFormat         *string        `env:"LOG_FORMAT"`
	StartMode         *string        `env:"START_MODE"`
}

const envPrefix = "DOCARCHIVE_"

// parseEnv overlays cfg with DOCARCHIVE_* environment variables.
func parseEnv(cfg *Config) error {
	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	override(&cfg.APIBaseURL, ec.APIBaseURL)
	override(&cfg.HTTPTimeout, ec.HTTPTimeout)
	override(&cfg.RequestsPerSecond, ec.RequestsPerSecond)
	override(&cfg.RequestBurst, ec.RequestBurst)
	override(&cfg.MetadataBackend, ec.MetadataBackend)
	override(&cfg.SQLitePath, ec.SQLitePath)
	override(&cfg.PostgresDSN, ec.PostgresDSN)
	override(&cfg.ImageBackend, ec.ImageBackend)
	override(&cfg.ImageDir, ec.ImageDir)
	override(&cfg.S3Bucket, ec.S3Bucket)
	override(&cfg.S3Region, ec.S3Region)
	override(&cfg.S3BaseEndpoint, ec.S3BaseEndpoint)
	override(&cfg.S3User, ec.S3User)
	override(&cfg.S3Password, ec.S3Password)
	override(&cfg.S3Prefix, ec.S3Prefix)
	override(&cfg.MinImageSize, ec.MinImageSize)
	override(&cfg.DetailConcurrency, ec.DetailConcurrency)
	override(&cfg.LogLevel, ec.LogLevel)
	override(&cfg.LogFormat, ec.LogFormat)
	if ec.StartMode != nil {
		cfg.StartMode = models.Mode(*ec.StartMode)
	}

	return nil
}

func override[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
