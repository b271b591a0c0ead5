package hnswgo

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hnswgo/internal/hnsw"
	"github.com/hupe1980/hnswgo/internal/resource"
)

// SearchResult is a neighbor of a query: the point id and its distance.
type SearchResult = hnsw.SearchResult

// Stats describes the shape of the graph.
type Stats = hnsw.Stats

// LevelStats describes one layer of the graph.
type LevelStats = hnsw.LevelStats

// Index is an append-only approximate nearest neighbor index.
// It is safe for concurrent use.
type Index struct {
	graph   *hnsw.HNSW
	rc      *resource.Controller
	metrics MetricsCollector
	logger  *Logger
}

// New creates an index for vectors of the given dimension.
func New(dimension int, optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:      o.memoryLimit,
		MaxConcurrentSearches: int64(o.searchConcurrency),
		SearchesPerSecond:     o.searchRate,
	})

	g, err := hnsw.New(func(ho *hnsw.Options) {
		ho.Dimension = dimension
		ho.Capacity = o.capacity
		ho.M = o.m
		ho.MaxM0 = o.maxM0
		ho.EFConstruction = o.efConstruction
		ho.EFSearch = o.efSearch
		ho.DistanceType = o.metric
		ho.RandomSeed = o.seed
		ho.Heuristic = o.heuristic
		ho.KeepPrunedConnections = o.keepPrunedConnections
		ho.Resources = rc
	})
	err = translateError(err)
	o.logger.LogCreate(context.Background(), dimension, o.capacity, o.metric, err)
	if err != nil {
		return nil, err
	}

	return &Index{
		graph:   g,
		rc:      rc,
		metrics: o.metricsCollector,
		logger:  o.logger.WithDimension(dimension),
	}, nil
}

// Insert adds v to the index and returns its id.
func (idx *Index) Insert(ctx context.Context, v []float32) (uint32, error) {
	start := time.Now()
	id, err := idx.graph.Insert(ctx, v)
	err = translateError(err)
	idx.metrics.RecordInsert(time.Since(start), err)
	idx.logger.LogInsert(ctx, id, len(v), err)
	return id, err
}

// BatchInsertResult reports the outcome of every item of a batch insert.
// IDs[i] is valid only when Errors[i] is nil.
type BatchInsertResult struct {
	IDs    []uint32
	Errors []error
}

// Failed returns the number of items that were not inserted.
func (r BatchInsertResult) Failed() int {
	n := 0
	for _, err := range r.Errors {
		if err != nil {
			n++
		}
	}
	return n
}

// BatchInsert inserts vectors in order. A failing item does not stop the
// batch; once ctx is done the remaining items fail with its error.
func (idx *Index) BatchInsert(ctx context.Context, vectors [][]float32) BatchInsertResult {
	start := time.Now()
	result := BatchInsertResult{
		IDs:    make([]uint32, len(vectors)),
		Errors: make([]error, len(vectors)),
	}

	for i, v := range vectors {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(vectors); j++ {
				result.Errors[j] = err
			}
			break
		}
		id, err := idx.graph.Insert(ctx, v)
		result.IDs[i] = id
		result.Errors[i] = translateError(err)
	}

	failed := result.Failed()
	idx.metrics.RecordBatchInsert(len(vectors), failed, time.Since(start))
	idx.logger.LogBatchInsert(ctx, len(vectors), failed)
	return result
}

// Search returns the k approximate nearest neighbors of q, nearest first.
func (idx *Index) Search(ctx context.Context, q []float32, k int) ([]SearchResult, error) {
	start := time.Now()
	results, err := idx.graph.Search(ctx, q, k)
	err = translateError(err)
	idx.metrics.RecordSearch(k, time.Since(start), err)
	idx.logger.LogSearch(ctx, k, len(results), err)
	return results, err
}

// SearchWithEF is like Search with a per-call candidate list size.
func (idx *Index) SearchWithEF(ctx context.Context, q []float32, k, ef int) ([]SearchResult, error) {
	start := time.Now()
	results, err := idx.graph.SearchWithEF(ctx, q, k, ef)
	err = translateError(err)
	idx.metrics.RecordSearch(k, time.Since(start), err)
	idx.logger.LogSearch(ctx, k, len(results), err)
	return results, err
}

// BatchSearch runs Search for every query and returns the results in query
// order. Queries run in parallel up to the configured search concurrency and
// rate. The first error cancels the remaining queries.
func (idx *Index) BatchSearch(ctx context.Context, queries [][]float32, k int) ([][]SearchResult, error) {
	start := time.Now()
	results := make([][]SearchResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.rc.MaxConcurrentSearches())

	for i, q := range queries {
		g.Go(func() error {
			if !idx.rc.TryAcquireSearch() {
				if err := idx.rc.AcquireSearch(gctx); err != nil {
					return err
				}
			}
			defer idx.rc.ReleaseSearch()

			res, err := idx.graph.Search(gctx, q, k)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	err := translateError(g.Wait())
	idx.metrics.RecordBatchSearch(len(queries), k, time.Since(start), err)
	idx.logger.LogBatchSearch(ctx, len(queries), k, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SetEFSearch sets the candidate list size used by Search.
func (idx *Index) SetEFSearch(ef int) error {
	return translateError(idx.graph.SetEFSearch(ef))
}

// EFSearch returns the candidate list size used by Search.
func (idx *Index) EFSearch() int { return idx.graph.EFSearch() }

// Len returns the number of points in the index.
func (idx *Index) Len() int { return idx.graph.Len() }

// Cap returns the maximum number of points.
func (idx *Index) Cap() int { return idx.graph.Cap() }

// Dimension returns the vector dimension.
func (idx *Index) Dimension() int { return idx.graph.Dimension() }

// Metric returns the distance metric.
func (idx *Index) Metric() Metric { return idx.graph.Metric() }

// EntryPoint returns the entry node and top layer of the graph. ok is false
// while the index is empty.
func (idx *Index) EntryPoint() (id uint32, level int, ok bool) {
	return idx.graph.EntryPoint()
}

// Level returns the top layer of id, or -1 for unknown ids.
func (idx *Index) Level(id uint32) int { return idx.graph.Level(id) }

// Neighbors returns a copy of the neighbor list of id at the given layer.
func (idx *Index) Neighbors(id uint32, layer int) []uint32 {
	return idx.graph.Neighbors(id, layer)
}

// Vector returns a copy of the stored point id.
func (idx *Index) Vector(id uint32) ([]float32, bool) { return idx.graph.Vector(id) }

// Stats returns statistics about the graph.
func (idx *Index) Stats() Stats { return idx.graph.Stats() }

// Validate checks the structural invariants of the graph.
func (idx *Index) Validate() error { return idx.graph.Validate() }

// MemoryUsage returns the bytes reserved by the index.
func (idx *Index) MemoryUsage() int64 { return idx.rc.MemoryUsage() }

// Close releases the index memory reservation. The index rejects further
// operations.
func (idx *Index) Close() error {
	return idx.graph.Close()
}
