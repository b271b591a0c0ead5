// Package prometheus exports index operation metrics to Prometheus.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/hnswgo"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

var _ hnswgo.MetricsCollector = (*Collector)(nil)

// Collector implements hnswgo.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency  *prometheus.HistogramVec
	operations *prometheus.CounterVec
	items      *prometheus.CounterVec
	failed     *prometheus.CounterVec
	k          prometheus.Histogram
}

// New creates a Collector and registers its metrics with reg. A nil reg
// registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of index operations",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"op", "status"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total index operations",
		}, []string{"op", "status"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Items submitted in batch operations",
		}, []string{"op"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_failed_total",
			Help:      "Items that failed in batch operations",
		}, []string{"op"}),
		k: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_k",
			Help:      "Requested neighbor count per search",
			Buckets:   []float64{1, 5, 10, 20, 50, 100, 500},
		}),
	}

	for _, col := range []prometheus.Collector{c.opLatency, c.operations, c.items, c.failed, c.k} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics if registration fails.
func MustNew(reg prometheus.Registerer, namespace string) *Collector {
	c, err := New(reg, namespace)
	if err != nil {
		panic(err)
	}
	return c
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}

func (c *Collector) observe(op string, d time.Duration, s string) {
	c.opLatency.WithLabelValues(op, s).Observe(d.Seconds())
	c.operations.WithLabelValues(op, s).Inc()
}

// RecordInsert implements hnswgo.MetricsCollector.
func (c *Collector) RecordInsert(d time.Duration, err error) {
	c.observe("insert", d, status(err))
}

// RecordBatchInsert implements hnswgo.MetricsCollector.
func (c *Collector) RecordBatchInsert(count, failed int, d time.Duration) {
	s := statusSuccess
	if failed > 0 {
		s = statusError
	}
	c.observe("batch_insert", d, s)
	c.items.WithLabelValues("batch_insert").Add(float64(count))
	c.failed.WithLabelValues("batch_insert").Add(float64(failed))
}

// RecordSearch implements hnswgo.MetricsCollector.
func (c *Collector) RecordSearch(k int, d time.Duration, err error) {
	c.observe("search", d, status(err))
	c.k.Observe(float64(k))
}

// RecordBatchSearch implements hnswgo.MetricsCollector.
func (c *Collector) RecordBatchSearch(queries, k int, d time.Duration, err error) {
	c.observe("batch_search", d, status(err))
	c.items.WithLabelValues("batch_search").Add(float64(queries))
	c.k.Observe(float64(k))
}
