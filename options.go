package hnswgo

import (
	"log/slog"

	"github.com/hupe1980/hnswgo/distance"
	"github.com/hupe1980/hnswgo/internal/hnsw"
)

// Metric selects the distance function of an index.
type Metric = distance.Metric

const (
	// MetricL2 is squared Euclidean distance.
	MetricL2 = distance.MetricL2
	// MetricDot is 1 minus the dot product.
	MetricDot = distance.MetricDot
	// MetricCosine is 1 minus the dot product of normalized vectors.
	MetricCosine = distance.MetricCosine
)

// ParseMetric resolves a metric name such as "l2", "ip" or "cosine".
func ParseMetric(s string) (Metric, error) {
	return distance.ParseMetric(s)
}

type options struct {
	capacity              int
	m                     int
	maxM0                 int
	efConstruction        int
	efSearch              int
	metric                Metric
	seed                  int64
	heuristic             bool
	keepPrunedConnections bool
	metricsCollector      MetricsCollector
	logger                *Logger
	memoryLimit           int64
	searchConcurrency     int
	searchRate            float64
}

// Option configures an Index.
type Option func(*options)

// WithCapacity sets the maximum number of points. Required.
//
// The point arena and the layer-0 adjacency lists are allocated up front for
// this many points.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithM sets the maximum number of connections per node on upper layers.
// Values below 2 are raised to 2.
func WithM(m int) Option {
	return func(o *options) {
		o.m = m
	}
}

// WithMaxM0 sets the maximum number of connections per node on layer 0.
// Defaults to 2*M.
func WithMaxM0(m int) Option {
	return func(o *options) {
		o.maxM0 = m
	}
}

// WithEFConstruction sets the candidate list size used while inserting.
func WithEFConstruction(ef int) Option {
	return func(o *options) {
		o.efConstruction = ef
	}
}

// WithEFSearch sets the initial candidate list size used while searching.
// Searches always use at least k.
func WithEFSearch(ef int) Option {
	return func(o *options) {
		o.efSearch = ef
	}
}

// WithMetric sets the distance metric. Defaults to MetricL2.
func WithMetric(m Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithSeed seeds the level generator. Two indexes built from the same seed
// and the same insertion sequence are identical.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithHeuristic toggles diversity-aware neighbor selection. When disabled the
// M nearest candidates are linked.
func WithHeuristic(enabled bool) Option {
	return func(o *options) {
		o.heuristic = enabled
	}
}

// WithKeepPrunedConnections fills heuristic selections up to M with the
// nearest rejected candidates.
func WithKeepPrunedConnections(enabled bool) Option {
	return func(o *options) {
		o.keepPrunedConnections = enabled
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hnswgo.BasicMetricsCollector{}
//	idx, _ := hnswgo.New(128, hnswgo.WithCapacity(1000), hnswgo.WithMetricsCollector(metrics))
//	// ... perform operations ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := hnswgo.NewJSONLogger(slog.LevelInfo)
//	idx, _ := hnswgo.New(128, hnswgo.WithCapacity(1000), hnswgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMemoryLimit caps the bytes the point arena and adjacency lists may
// reserve. New fails when the base allocation does not fit; Insert fails
// when a node's upper layers do not fit. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithSearchConcurrency bounds the number of queries BatchSearch runs at
// once. Defaults to 1.
func WithSearchConcurrency(n int) Option {
	return func(o *options) {
		o.searchConcurrency = n
	}
}

// WithSearchRateLimit throttles BatchSearch to qps queries per second.
// 0 means unlimited.
func WithSearchRateLimit(qps float64) Option {
	return func(o *options) {
		o.searchRate = qps
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		m:                hnsw.DefaultM,
		efConstruction:   hnsw.DefaultEFConstruction,
		efSearch:         hnsw.DefaultEFSearch,
		metric:           MetricL2,
		seed:             hnsw.DefaultRandomSeed,
		heuristic:        true,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
