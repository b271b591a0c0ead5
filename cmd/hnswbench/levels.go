package main

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/hnswgo"
)

func newLevelsCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Build an index and print its layer distribution",
		Long: `Build an index over a synthetic dataset and print, per layer, the node
count, the connection count and the ratio of nodes to the layer below.
The expected ratio for a level multiplier of 1/ln(M) is 1/M.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, _ := generate(cfg)
			idx, _, err := buildIndex(cmd.Context(), cfg, data,
				hnswgo.WithLogger(newLogger(cfg, cmd.ErrOrStderr())))
			if err != nil {
				return err
			}
			defer idx.Close()

			if err := idx.Validate(); err != nil {
				return fmt.Errorf("graph validation: %w", err)
			}

			stats := idx.Stats()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "M=%s M0=%s mL=%s expected ratio=%.4f\n\n",
				stats.Parameters["M"], stats.Parameters["M0"], stats.Parameters["ML"], 1/float64(max(cfg.M, 2)))

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "LEVEL\tNODES\tCONNECTIONS\tAVG DEGREE\tRATIO")
			for i, ls := range stats.Levels {
				ratio := math.NaN()
				if i > 0 && stats.Levels[i-1].Nodes > 0 {
					ratio = float64(ls.Nodes) / float64(stats.Levels[i-1].Nodes)
				}
				fmt.Fprintf(tw, "%d\t%d\t%d\t%.2f\t%.4f\n", ls.Level, ls.Nodes, ls.Connections, ls.AvgConnections, ratio)
			}
			return tw.Flush()
		},
	}
}
