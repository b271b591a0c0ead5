// Package hnswgo provides an in-memory approximate nearest neighbor index
// built on Hierarchical Navigable Small World graphs.
//
// The index is append-only: points receive dense uint32 ids in insertion
// order and live in an arena preallocated for the configured capacity.
//
// # Quick Start
//
//	idx, err := hnswgo.New(128,
//	    hnswgo.WithCapacity(100_000),
//	    hnswgo.WithMetric(hnswgo.MetricCosine),
//	    hnswgo.WithEFSearch(64),
//	)
//	if err != nil {
//	    return err
//	}
//	defer idx.Close()
//
//	id, _ := idx.Insert(ctx, vector)
//	results, _ := idx.Search(ctx, query, 10)
//	for _, r := range results {
//	    fmt.Println(r.ID, r.Distance)
//	}
//
// # Metrics
//
//   - MetricL2: squared Euclidean distance (no square root)
//   - MetricDot: 1 - dot product
//   - MetricCosine: 1 - dot product of L2-normalized vectors; points and
//     queries are normalized internally
//
// # Concurrency
//
// Insert is serialized; searches run concurrently with each other.
// BatchSearch fans queries out under the limits set by WithSearchConcurrency
// and WithSearchRateLimit.
//
// # Observability
//
// Operations are reported to a MetricsCollector (see the metrics/prometheus
// package for a Prometheus implementation) and logged through a Logger.
package hnswgo
