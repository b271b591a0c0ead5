package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/hnswgo"
)

// BuildReport describes index construction.
type BuildReport struct {
	Points      int     `json:"points"`
	Dimension   int     `json:"dimension"`
	Metric      string  `json:"metric"`
	Dataset     string  `json:"dataset"`
	Seconds     float64 `json:"seconds"`
	InsertsPerS float64 `json:"inserts_per_second"`
	MemoryBytes int64   `json:"memory_bytes"`
	MaxLevel    int     `json:"max_level"`
}

// buildIndex creates an index from cfg and inserts data into it.
func buildIndex(ctx context.Context, cfg *Config, data [][]float32, opts ...hnswgo.Option) (*hnswgo.Index, BuildReport, error) {
	metric, err := hnswgo.ParseMetric(cfg.Metric)
	if err != nil {
		return nil, BuildReport{}, err
	}

	opts = append([]hnswgo.Option{
		hnswgo.WithCapacity(cfg.Count),
		hnswgo.WithM(cfg.M),
		hnswgo.WithEFConstruction(cfg.EFConstruction),
		hnswgo.WithMetric(metric),
		hnswgo.WithSeed(cfg.Seed),
		hnswgo.WithMemoryLimit(cfg.MemoryLimit),
		hnswgo.WithSearchConcurrency(cfg.Concurrency),
		hnswgo.WithSearchRateLimit(cfg.RateLimit),
	}, opts...)

	idx, err := hnswgo.New(cfg.Dim, opts...)
	if err != nil {
		return nil, BuildReport{}, err
	}

	start := time.Now()
	res := idx.BatchInsert(ctx, data)
	elapsed := time.Since(start)

	if n := res.Failed(); n > 0 {
		for i, err := range res.Errors {
			if err != nil {
				_ = idx.Close()
				return nil, BuildReport{}, fmt.Errorf("%d of %d inserts failed, first at %d: %w", n, len(data), i, err)
			}
		}
	}

	_, maxLevel, _ := idx.EntryPoint()

	return idx, BuildReport{
		Points:      idx.Len(),
		Dimension:   cfg.Dim,
		Metric:      metric.String(),
		Dataset:     cfg.Dataset,
		Seconds:     elapsed.Seconds(),
		InsertsPerS: rate(len(data), elapsed),
		MemoryBytes: idx.MemoryUsage(),
		MaxLevel:    maxLevel,
	}, nil
}

func rate(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds()
}
