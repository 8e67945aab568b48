package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/docarchive/internal/client/models"
	"github.com/dmitrijs2005/docarchive/internal/flagx"
)

var flagNames = []string{"-u", "-t", "-r", "-m", "-f", "-d", "-b", "-dir", "-w", "-l", "-mode"}

// parseFlags populates Config fields from os.Args. Only the flags listed in
// flagNames are considered, so -c/-config and unknown arguments pass through.
func parseFlags(cfg *Config) error {
	return parseArgs(cfg, os.Args[1:])
}

func parseArgs(cfg *Config, argv []string) error {
	args := flagx.FilterArgs(argv, flagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "base URL of the document API")
	timeout := fs.Int("t", int(cfg.HTTPTimeout.Seconds()), "HTTP timeout (in seconds)")
	fs.Float64Var(&cfg.RequestsPerSecond, "r", cfg.RequestsPerSecond, "outbound requests per second")
	fs.StringVar(&cfg.MetadataBackend, "m", cfg.MetadataBackend, "metadata backend")
	fs.StringVar(&cfg.SQLitePath, "f", cfg.SQLitePath, "SQLite database file")
	fs.StringVar(&cfg.PostgresDSN, "d", cfg.PostgresDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.ImageBackend, "b", cfg.ImageBackend, "image backend")
	fs.StringVar(&cfg.ImageDir, "dir", cfg.ImageDir, "image directory")
	fs.IntVar(&cfg.DetailConcurrency, "w", cfg.DetailConcurrency, "detail fetch concurrency")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	mode := fs.String("mode", string(cfg.StartMode), "start navigation mode")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.HTTPTimeout = time.Duration(*timeout) * time.Second
	cfg.StartMode = models.Mode(*mode)
	return nil
}
