package hnswgo

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/hupe1980/hnswgo/distance"
	"github.com/hupe1980/hnswgo/eval"
	"github.com/hupe1980/hnswgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, dim int, opts ...Option) *Index {
	t.Helper()
	idx, err := New(dim, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestNew(t *testing.T) {
	t.Run("requires capacity", func(t *testing.T) {
		_, err := New(8)
		require.ErrorIs(t, err, ErrInvalidCapacity)
	})

	t.Run("invalid dimension", func(t *testing.T) {
		_, err := New(0, WithCapacity(10))
		var dimErr *ErrInvalidDimension
		require.ErrorAs(t, err, &dimErr)
		assert.Equal(t, 0, dimErr.Dimension)
		assert.NotNil(t, dimErr.Unwrap())
	})

	t.Run("unknown metric", func(t *testing.T) {
		_, err := New(8, WithCapacity(10), WithMetric(Metric(99)))
		require.ErrorIs(t, err, ErrUnknownMetric)
	})

	t.Run("memory limit", func(t *testing.T) {
		_, err := New(8, WithCapacity(1000), WithMemoryLimit(1024))
		require.ErrorIs(t, err, ErrMemoryLimitExceeded)
	})

	t.Run("options", func(t *testing.T) {
		idx := newTestIndex(t, 8,
			WithCapacity(50),
			WithM(4),
			WithMaxM0(6),
			WithEFConstruction(32),
			WithEFSearch(20),
			WithMetric(MetricCosine),
			WithSeed(7),
			WithHeuristic(false),
			WithKeepPrunedConnections(true),
		)
		assert.Equal(t, 8, idx.Dimension())
		assert.Equal(t, 50, idx.Cap())
		assert.Equal(t, 20, idx.EFSearch())
		assert.Equal(t, MetricCosine, idx.Metric())

		stats := idx.Stats()
		assert.Equal(t, "4", stats.Parameters["M"])
		assert.Equal(t, "6", stats.Parameters["M0"])
		assert.Equal(t, "32", stats.Parameters["EFConstruction"])
		assert.Equal(t, "false", stats.Options["Heuristic"])
		assert.Equal(t, "true", stats.Options["KeepPrunedConnections"])
	})
}

func TestInsertAndSearch(t *testing.T) {
	idx := newTestIndex(t, 3, WithCapacity(4))

	_, err := idx.Search(t.Context(), []float32{1, 2, 3}, 1)
	require.ErrorIs(t, err, ErrEmptyIndex)

	id, err := idx.Insert(t.Context(), []float32{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), id)

	res, err := idx.Search(t.Context(), []float32{1, 2, 3}, 1)
	require.NoError(t, err)
	require.Equal(t, []SearchResult{{ID: 0, Distance: 0}}, res)

	_, err = idx.Search(t.Context(), []float32{1, 2, 3}, 0)
	require.ErrorIs(t, err, ErrInvalidK)

	_, err = idx.Search(t.Context(), []float32{1, 2, 3}, 2)
	require.ErrorIs(t, err, ErrInsufficientVectors)

	_, err = idx.Insert(t.Context(), []float32{1, 2})
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
	assert.Equal(t, 1, idx.Len())

	_, err = idx.SearchWithEF(t.Context(), []float32{1, 2, 3}, 1, -1)
	require.ErrorIs(t, err, ErrInvalidEF)
	require.ErrorIs(t, idx.SetEFSearch(0), ErrInvalidEF)
}

func TestCapacity(t *testing.T) {
	idx := newTestIndex(t, 2, WithCapacity(2))

	res := idx.BatchInsert(t.Context(), [][]float32{{0, 0}, {1, 1}, {2, 2}})
	assert.Equal(t, []uint32{0, 1, 0}, res.IDs)
	require.NoError(t, res.Errors[0])
	require.NoError(t, res.Errors[1])
	require.ErrorIs(t, res.Errors[2], ErrCapacityExceeded)
	assert.Equal(t, 1, res.Failed())
	assert.Equal(t, 2, idx.Len())
}

func TestBatchInsertCanceled(t *testing.T) {
	idx := newTestIndex(t, 2, WithCapacity(4))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	res := idx.BatchInsert(ctx, [][]float32{{0, 0}, {1, 1}})
	assert.Equal(t, 2, res.Failed())
	require.ErrorIs(t, res.Errors[1], context.Canceled)
	assert.Equal(t, 0, idx.Len())
}

func TestBatchSearch(t *testing.T) {
	const (
		n   = 1000
		dim = 32
		k   = 10
	)

	rng := testutil.NewRNG(42)
	data := rng.UniformVectors(n, dim)
	queries := rng.UniformVectors(100, dim)

	idx := newTestIndex(t, dim,
		WithCapacity(n),
		WithM(16),
		WithEFConstruction(200),
		WithSeed(42),
		WithEFSearch(50),
		WithSearchConcurrency(4),
	)
	res := idx.BatchInsert(t.Context(), data)
	require.Zero(t, res.Failed())

	got, err := idx.BatchSearch(t.Context(), queries, k)
	require.NoError(t, err)
	require.Len(t, got, len(queries))

	truth := make([][]uint32, len(queries))
	tested := make([][]uint32, len(queries))
	for i, q := range queries {
		truth[i] = testutil.IDs(testutil.ExactTopK(q, data, k, distance.SquaredL2))
		require.Len(t, got[i], k)
		for _, r := range got[i] {
			tested[i] = append(tested[i], r.ID)
		}

		// Batch and single searches agree.
		single, err := idx.Search(t.Context(), q, k)
		require.NoError(t, err)
		assert.Equal(t, single, got[i])
	}

	recall, err := eval.Recall(truth, tested)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, recall, 0.9)
}

func TestBatchSearchError(t *testing.T) {
	idx := newTestIndex(t, 2, WithCapacity(4), WithSearchConcurrency(2))
	idx.BatchInsert(t.Context(), [][]float32{{0, 0}, {1, 1}})

	_, err := idx.BatchSearch(t.Context(), [][]float32{{0, 0}, {1, 1, 1}}, 1)
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
}

func TestBatchSearchRateLimited(t *testing.T) {
	idx := newTestIndex(t, 2, WithCapacity(4), WithSearchRateLimit(1000), WithSearchConcurrency(2))
	idx.BatchInsert(t.Context(), [][]float32{{0, 0}, {1, 1}, {2, 2}})

	got, err := idx.BatchSearch(t.Context(), [][]float32{{0, 0}, {2, 2}, {1, 1}}, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got[0][0].ID)
	assert.Equal(t, uint32(2), got[1][0].ID)
	assert.Equal(t, uint32(1), got[2][0].ID)
}

func TestBatchSearchContended(t *testing.T) {
	// One slot: queries that find it taken wait for it.
	idx := newTestIndex(t, 2, WithCapacity(4), WithSearchConcurrency(1), WithSearchRateLimit(200))
	idx.BatchInsert(t.Context(), [][]float32{{0, 0}, {1, 1}, {2, 2}})

	queries := make([][]float32, 12)
	for i := range queries {
		queries[i] = []float32{float32(i % 3), float32(i % 3)}
	}

	got, err := idx.BatchSearch(t.Context(), queries, 1)
	require.NoError(t, err)
	require.Len(t, got, len(queries))
	for i, res := range got {
		assert.Equal(t, uint32(i%3), res[0].ID)
	}
}

func TestAccessors(t *testing.T) {
	idx := newTestIndex(t, 2, WithCapacity(8))

	_, _, ok := idx.EntryPoint()
	assert.False(t, ok)

	idx.BatchInsert(t.Context(), [][]float32{{0, 0}, {1, 0}, {0, 1}})

	ep, top, ok := idx.EntryPoint()
	require.True(t, ok)
	assert.Equal(t, top, idx.Level(ep))
	assert.Equal(t, -1, idx.Level(7))
	assert.Len(t, idx.Neighbors(0, 0), 2)

	v, ok := idx.Vector(1)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0}, v)

	require.NoError(t, idx.Validate())
	assert.Positive(t, idx.MemoryUsage())
}

func TestClose(t *testing.T) {
	idx, err := New(2, WithCapacity(8))
	require.NoError(t, err)
	require.NoError(t, idx.Close())
	assert.Equal(t, int64(0), idx.MemoryUsage())

	_, err = idx.Insert(t.Context(), []float32{0, 0})
	require.ErrorIs(t, err, ErrClosed)
}

func TestObservability(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := &BasicMetricsCollector{}

	idx := newTestIndex(t, 2,
		WithCapacity(4),
		WithLogger(logger),
		WithMetricsCollector(metrics),
	)

	_, err := idx.Insert(t.Context(), []float32{0, 0})
	require.NoError(t, err)
	_, err = idx.Insert(t.Context(), []float32{0})
	require.Error(t, err)
	_, err = idx.Search(t.Context(), []float32{0, 0}, 1)
	require.NoError(t, err)
	idx.BatchInsert(t.Context(), [][]float32{{1, 1}})
	_, err = idx.BatchSearch(t.Context(), [][]float32{{1, 1}}, 1)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.InsertCount)
	assert.Equal(t, int64(1), stats.InsertErrors)
	assert.Equal(t, int64(1), stats.SearchCount)
	assert.Equal(t, int64(1), stats.BatchInsertCount)
	assert.Equal(t, int64(1), stats.BatchSearchCount)
	assert.Equal(t, int64(1), stats.BatchSearchItems)

	out := buf.String()
	assert.Contains(t, out, "index created")
	assert.Contains(t, out, "insert completed")
	assert.Contains(t, out, "insert failed")
	assert.Contains(t, out, "search completed")
	assert.Contains(t, out, "batch search completed")
}

func TestNilObservers(t *testing.T) {
	idx := newTestIndex(t, 2, WithCapacity(2), WithLogger(nil), WithMetricsCollector(nil))
	_, err := idx.Insert(t.Context(), []float32{0, 0})
	require.NoError(t, err)
}
