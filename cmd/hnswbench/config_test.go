package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.Count)
	assert.Equal(t, 32, cfg.Dim)
	assert.Equal(t, 10, cfg.K)
	assert.Equal(t, []int{10, 20, 50, 100, 200}, cfg.EFSearch)
	assert.Equal(t, "l2", cfg.Metric)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "text", cfg.LogFormat)
	require.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HNSWBENCH_COUNT", "500")
	t.Setenv("HNSWBENCH_EF_SEARCH", "16,64")
	t.Setenv("HNSWBENCH_METRIC", "cosine")
	t.Setenv("HNSWBENCH_RATE_LIMIT", "250.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Count)
	assert.Equal(t, []int{16, 64}, cfg.EFSearch)
	assert.Equal(t, "cosine", cfg.Metric)
	assert.InDelta(t, 250.5, cfg.RateLimit, 1e-9)
}

func TestLoadConfigInvalidEnv(t *testing.T) {
	t.Setenv("HNSWBENCH_COUNT", "many")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"count", func(c *Config) { c.Count = 0 }, ErrInvalidCount},
		{"dim", func(c *Config) { c.Dim = -1 }, ErrInvalidDim},
		{"queries", func(c *Config) { c.Queries = 0 }, ErrInvalidQueries},
		{"k zero", func(c *Config) { c.K = 0 }, ErrInvalidK},
		{"k above count", func(c *Config) { c.K = c.Count + 1 }, ErrInvalidK},
		{"ef empty", func(c *Config) { c.EFSearch = nil }, ErrInvalidEFSearch},
		{"ef zero", func(c *Config) { c.EFSearch = []int{10, 0} }, ErrInvalidEFSearch},
		{"dataset", func(c *Config) { c.Dataset = "sift" }, ErrInvalidDataset},
		{"concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidLogFormat},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorIs(t, ValidateConfig(cfg), tt.wantErr)
		})
	}

	t.Run("metric", func(t *testing.T) {
		cfg := valid()
		cfg.Metric = "hamming"
		assert.Error(t, ValidateConfig(cfg))
	})
}
