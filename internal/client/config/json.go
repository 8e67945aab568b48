package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/docarchive/internal/client/models"
	"github.com/dmitrijs2005/docarchive/internal/flagx"
	"github.com/dmitrijs2005/docarchive/internal/timex"
)

// JsonConfig is the DTO for the JSON config file. Fields left out of the
// file (zero values) do not override earlier layers.
type JsonConfig struct {
	APIBaseURL        string         `json:"api_base_url"`
	HTTPTimeout       timex.Duration `json:"http_timeout"`
	RequestsPerSecond float64        `json:"requests_per_second"`
	RequestBurst      int            `json:"request_burst"`
	MetadataBackend   string         `json:"metadata_backend"`
	SQLitePath        string         `json:"sqlite_path"`
	PostgresDSN       string         `json:"postgres_dsn"`
	ImageBackend      string         `json:"image_backend"`
	ImageDir          string         `json:"image_dir"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	S3User            string         `json:"s3_user"`
	S3Password        string         `json:"s3_password"`
	S3Prefix          string         `json:"s3_prefix"`
	MinImageSize      int            `json:"min_image_size"`
	DetailConcurrency int            `json:"detail_concurrency"`
	LogLevel          string         `json:"log_level"`
	LogFormat         string         `json:"log_format"`
	StartMode         string         `json:"start_mode"`
}

// parseJson overlays cfg with the file named by -c / -config, if any.
func parseJson(cfg *Config) error {
	path := flagx.ConfigPath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	if jc.HTTPTimeout.Duration > 0 {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
	if jc.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = jc.RequestsPerSecond
	}
	if jc.RequestBurst > 0 {
		cfg.RequestBurst = jc.RequestBurst
	}
	setString(&cfg.MetadataBackend, jc.MetadataBackend)
	setString(&cfg.SQLitePath, jc.SQLitePath)
	setString(&cfg.PostgresDSN, jc.PostgresDSN)
	setString(&cfg.ImageBackend, jc.ImageBackend)
	setString(&cfg.ImageDir, jc.ImageDir)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3User, jc.S3User)
	setString(&cfg.S3Password, jc.S3Password)
	setString(&cfg.S3Prefix, jc.S3Prefix)
	if jc.MinImageSize > 0 {
		cfg.MinImageSize = jc.MinImageSize
	}
	if jc.DetailConcurrency > 0 {
		cfg.DetailConcurrency = jc.DetailConcurrency
	}
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.StartMode != "" {
		cfg.StartMode = models.Mode(jc.StartMode)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
