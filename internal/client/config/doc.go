// Package config loads runtime configuration for the docarchive client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config (see parseJson).
//  3. DOCARCHIVE_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override everything else.
//
// Supported flags
//
//	-u string    base URL of the document API
//	-t int       HTTP timeout (seconds)
//	-r float     outbound requests per second (0 disables limiting)
//	-m string    metadata backend: sqlite, postgres, memory
//	-f string    SQLite database file
//	-d string    PostgreSQL DSN (metadata backend "postgres")
//	-b string    image backend: sqlite, s3, fs, memory
//	-dir string  image directory (image backend "fs")
//	-w int       detail fetch concurrency (1 = sequential)
//	-l string    log level: debug, info, warn, error
//	-mode string start navigation mode: flat, grouped
//
// # JSON schema
//
// Durations use timex.Duration, so "30s" and integer nanoseconds both work:
//
//	{
//	  "api_base_url": "http://127.0.0.1:5042",
//	  "http_timeout": "30s",
//	  "metadata_backend": "sqlite",
//	  "image_backend": "s3",
//	  "s3_bucket": "docarchive"
//	}
//
// Primary API
//
//   - type Config                    : all client settings
//   - func LoadConfig() (*Config, error): defaults, JSON, env, flags, Validate
//   - func (*Config) LoadDefaults()  : sets defaults
//   - func (*Config) Validate() error: rejects unknown backends and bad numbers
package config
