package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/hnswgo"
)

var version = "dev"

func newRootCmd(cfg *Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hnswbench",
		Short: "Benchmark HNSW build and search on synthetic data",
		Long: `hnswbench inserts a synthetic dataset into an HNSW index and measures
build throughput, query latency and recall@k against exact search.

Defaults come from HNSWBENCH_* environment variables (a .env file in the
working directory is loaded first); flags override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return ValidateConfig(cfg)
		},
	}

	f := rootCmd.PersistentFlags()
	f.IntVarP(&cfg.Count, "count", "n", cfg.Count, "number of points to insert")
	f.IntVarP(&cfg.Dim, "dim", "d", cfg.Dim, "vector dimension")
	f.IntVarP(&cfg.Queries, "queries", "q", cfg.Queries, "number of queries")
	f.IntVarP(&cfg.K, "k", "k", cfg.K, "neighbors per query")
	f.IntVarP(&cfg.M, "m", "m", cfg.M, "max connections per node on upper layers")
	f.IntVar(&cfg.EFConstruction, "ef-construction", cfg.EFConstruction, "candidate list size while inserting")
	f.IntSliceVar(&cfg.EFSearch, "ef-search", cfg.EFSearch, "candidate list sizes to sweep while searching")
	f.StringVar(&cfg.Metric, "metric", cfg.Metric, "distance metric (l2, dot, cosine)")
	f.StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "synthetic dataset (uniform, gaussian, unit, clustered)")
	f.IntVar(&cfg.Clusters, "clusters", cfg.Clusters, "cluster count for the clustered dataset")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for data and level generation")
	f.IntVarP(&cfg.Concurrency, "concurrency", "c", cfg.Concurrency, "parallel queries (1 measures per-query latency)")
	f.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "max queries per second for parallel search (0 = unlimited)")
	f.Int64Var(&cfg.MemoryLimit, "memory-limit", cfg.MemoryLimit, "index memory budget in bytes (0 = unlimited)")
	f.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text, json)")

	rootCmd.AddCommand(newRunCmd(cfg), newLevelsCmd(cfg), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hnswbench version %s\n", version)
		},
	}
}

func newLogger(cfg *Config, w io.Writer) *hnswgo.Logger {
	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return hnswgo.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return hnswgo.NewLogger(slog.NewTextHandler(w, opts))
}
