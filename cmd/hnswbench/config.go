package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/hupe1980/hnswgo"
)

// envPrefix prefixes every environment variable read by the command.
const envPrefix = "HNSWBENCH"

// Config validation errors
var (
	ErrInvalidCount       = errors.New("count must be positive")
	ErrInvalidDim         = errors.New("dim must be positive")
	ErrInvalidQueries     = errors.New("queries must be positive")
	ErrInvalidK           = errors.New("k must be positive and at most count")
	ErrInvalidEFSearch    = errors.New("ef_search values must be positive")
	ErrInvalidDataset     = errors.New("dataset must be uniform, gaussian, unit or clustered")
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
	ErrInvalidLogFormat   = errors.New("log_format must be 'json' or 'text'")
	ErrInvalidLogLevel    = errors.New("log_level must be debug, info, warn, or error")
)

// Config holds the benchmark parameters. Values come from HNSWBENCH_*
// environment variables (optionally loaded from a .env file) and are
// overridden by command line flags.
type Config struct {
	Count          int     `envconfig:"COUNT" default:"10000"`
	Dim            int     `envconfig:"DIM" default:"32"`
	Queries        int     `envconfig:"QUERIES" default:"100"`
	K              int     `envconfig:"K" default:"10"`
	M              int     `envconfig:"M" default:"16"`
	EFConstruction int     `envconfig:"EF_CONSTRUCTION" default:"200"`
	EFSearch       []int   `envconfig:"EF_SEARCH" default:"10,20,50,100,200"`
	Metric         string  `envconfig:"METRIC" default:"l2"`
	Dataset        string  `envconfig:"DATASET" default:"uniform"`
	Clusters       int     `envconfig:"CLUSTERS" default:"16"`
	Seed           int64   `envconfig:"SEED" default:"42"`
	Concurrency    int     `envconfig:"CONCURRENCY" default:"1"`
	RateLimit      float64 `envconfig:"RATE_LIMIT" default:"0"`
	MemoryLimit    int64   `envconfig:"MEMORY_LIMIT" default:"0"`
	MetricsAddr    string  `envconfig:"METRICS_ADDR"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string  `envconfig:"LOG_FORMAT" default:"text"`
}

// LoadConfig reads .env from the working directory if present and then
// processes the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}

// ValidateConfig validates the configuration and returns an error if invalid
func ValidateConfig(cfg *Config) error {
	if cfg.Count <= 0 {
		return ErrInvalidCount
	}
	if cfg.Dim <= 0 {
		return ErrInvalidDim
	}
	if cfg.Queries <= 0 {
		return ErrInvalidQueries
	}
	if cfg.K <= 0 || cfg.K > cfg.Count {
		return ErrInvalidK
	}
	if len(cfg.EFSearch) == 0 {
		return ErrInvalidEFSearch
	}
	for _, ef := range cfg.EFSearch {
		if ef <= 0 {
			return ErrInvalidEFSearch
		}
	}
	switch cfg.Dataset {
	case "uniform", "gaussian", "unit", "clustered":
	default:
		return ErrInvalidDataset
	}
	if cfg.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if _, err := hnswgo.ParseMetric(cfg.Metric); err != nil {
		return err
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return ErrInvalidLogFormat
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, ErrInvalidLogLevel
	}
}
