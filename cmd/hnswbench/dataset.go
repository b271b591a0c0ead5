package main

import (
	"github.com/hupe1980/hnswgo"
	"github.com/hupe1980/hnswgo/distance"
	"github.com/hupe1980/hnswgo/testutil"
)

// generate returns the points and queries of the configured dataset. Queries
// are drawn from the same distribution as the points.
func generate(cfg *Config) (data, queries [][]float32) {
	rng := testutil.NewRNG(cfg.Seed)

	draw := func(n int) [][]float32 {
		switch cfg.Dataset {
		case "gaussian":
			return rng.GaussianVectors(n, cfg.Dim)
		case "unit":
			return rng.UnitVectors(n, cfg.Dim)
		case "clustered":
			return rng.ClusteredVectors(n, cfg.Dim, max(cfg.Clusters, 1), 0.1)
		default:
			return rng.UniformVectors(n, cfg.Dim)
		}
	}

	return draw(cfg.Count), draw(cfg.Queries)
}

// groundTruth returns the exact top-k ids of every query under metric.
func groundTruth(data, queries [][]float32, k int, metric hnswgo.Metric) ([][]uint32, error) {
	fn, err := distance.Provider(metric)
	if err != nil {
		return nil, err
	}

	if metric.NeedsNormalization() {
		data = normalizeAll(data)
		queries = normalizeAll(queries)
	}

	truth := make([][]uint32, len(queries))
	for i, q := range queries {
		truth[i] = testutil.IDs(testutil.ExactTopK(q, data, k, fn))
	}
	return truth, nil
}

func normalizeAll(vs [][]float32) [][]float32 {
	out := make([][]float32, len(vs))
	for i, v := range vs {
		out[i] = distance.NormalizeL2Copy(v)
	}
	return out
}
