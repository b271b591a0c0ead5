package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/hnswgo"
	"github.com/hupe1980/hnswgo/eval"
	hnswprom "github.com/hupe1980/hnswgo/metrics/prometheus"
)

// Report is the outcome of a benchmark run.
type Report struct {
	Build BuildReport `json:"build"`
	K     int         `json:"k"`
	Runs  []RunReport `json:"runs"`
}

// RunReport holds the search measurements for one ef value.
type RunReport struct {
	EF           int     `json:"ef"`
	Recall       float64 `json:"recall"`
	RecallStdDev float64 `json:"recall_stddev"`
	QPS          float64 `json:"qps"`
	P50Micros    float64 `json:"p50_us,omitempty"`
	P95Micros    float64 `json:"p95_us,omitempty"`
	P99Micros    float64 `json:"p99_us,omitempty"`
}

func newRunCmd(cfg *Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build an index and sweep ef_search",
		Long: `Build an index over a synthetic dataset, then run every query for each
ef_search value and report recall@k against exact search with latency
percentiles (sequential mode) or throughput (parallel mode).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := runBenchmark(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func runBenchmark(ctx context.Context, cfg *Config, logOut io.Writer) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cfg, logOut)

	reg := prometheus.NewRegistry()
	collector, err := hnswprom.New(reg, "hnswbench")
	if err != nil {
		return nil, err
	}

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	data, queries := generate(cfg)

	idx, build, err := buildIndex(ctx, cfg, data,
		hnswgo.WithLogger(logger),
		hnswgo.WithMetricsCollector(collector),
	)
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	truth, err := groundTruth(data, queries, cfg.K, idx.Metric())
	if err != nil {
		return nil, err
	}

	report := &Report{Build: build, K: cfg.K}
	for _, ef := range cfg.EFSearch {
		run, err := measure(ctx, idx, queries, truth, cfg.K, ef, cfg.Concurrency)
		if err != nil {
			return nil, fmt.Errorf("ef %d: %w", ef, err)
		}
		logger.InfoContext(ctx, "ef sweep step", "ef", ef, "recall", run.Recall, "qps", run.QPS)
		report.Runs = append(report.Runs, run)
	}

	return report, nil
}

// measure runs all queries at one ef. With concurrency 1 every query is timed
// on its own; otherwise the batch is timed as a whole.
func measure(ctx context.Context, idx *hnswgo.Index, queries [][]float32, truth [][]uint32, k, ef, concurrency int) (RunReport, error) {
	run := RunReport{EF: ef}
	tested := make([][]uint32, len(queries))

	var elapsed time.Duration
	if concurrency <= 1 {
		latencies := make([]float64, len(queries))
		for i, q := range queries {
			start := time.Now()
			res, err := idx.SearchWithEF(ctx, q, k, ef)
			d := time.Since(start)
			if err != nil {
				return run, fmt.Errorf("query %d: %w", i, err)
			}
			elapsed += d
			latencies[i] = float64(d.Microseconds())
			tested[i] = ids(res)
		}
		slices.Sort(latencies)
		run.P50Micros = stat.Quantile(0.50, stat.Empirical, latencies, nil)
		run.P95Micros = stat.Quantile(0.95, stat.Empirical, latencies, nil)
		run.P99Micros = stat.Quantile(0.99, stat.Empirical, latencies, nil)
	} else {
		if err := idx.SetEFSearch(ef); err != nil {
			return run, err
		}
		start := time.Now()
		results, err := idx.BatchSearch(ctx, queries, k)
		elapsed = time.Since(start)
		if err != nil {
			return run, err
		}
		for i, res := range results {
			tested[i] = ids(res)
		}
	}
	run.QPS = rate(len(queries), elapsed)

	recall, err := eval.RecallAtK(truth, tested, k)
	if err != nil {
		return run, err
	}
	perQuery, err := eval.PerQuery(truth, tested)
	if err != nil {
		return run, err
	}
	run.Recall = recall
	_, run.RecallStdDev = stat.MeanStdDev(perQuery, nil)

	return run, nil
}

func ids(results []hnswgo.SearchResult) []uint32 {
	out := make([]uint32, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *hnswgo.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()

	return srv
}

func printReport(w io.Writer, r *Report) error {
	b := r.Build
	if _, err := fmt.Fprintf(w, "built %d x %d %s (%s) in %.2fs, %.0f inserts/s, %d bytes, max level %d\n\n",
		b.Points, b.Dimension, b.Metric, b.Dataset, b.Seconds, b.InsertsPerS, b.MemoryBytes, b.MaxLevel); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "EF\tRECALL@%d\tSTDDEV\tQPS\tP50(us)\tP95(us)\tP99(us)\n", r.K)
	for _, run := range r.Runs {
		fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%.0f\t%.0f\t%.0f\t%.0f\n",
			run.EF, run.Recall, run.RecallStdDev, run.QPS, run.P50Micros, run.P95Micros, run.P99Micros)
	}
	return tw.Flush()
}
