package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valkyraycho/surfrank/config"
	"github.com/valkyraycho/surfrank/linkgraph/loader"
	"github.com/valkyraycho/surfrank/pagerank"
	"github.com/valkyraycho/surfrank/ranking"
	"github.com/valkyraycho/surfrank/seed"
	"github.com/valkyraycho/surfrank/topic"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Compute base, trust and topic rankings",
	RunE:  runRank,
}

func init() {
	flags := rankCmd.Flags()
	flags.Float64("beta", 0.85, "damping factor in (0, 1)")
	flags.Float64("epsilon", 1e-6, "L1 convergence threshold")
	flags.Int("max-iterations", 100, "iteration cap per solve")
	flags.Int("workers", 1, "workers scattering rank along edges")
	flags.String("backend", string(pagerank.AdjacencyBackend), "solver backend (adjacency or matrix)")
	flags.Int("seeds-threshold", 100, "graphs below this size use the small seed ratio")
	flags.Float64("seeds-small-ratio", 0.1, "trust seed ratio for small graphs")
	flags.Float64("seeds-large-ratio", 0.01, "trust seed ratio for large graphs")
	flags.String("topics", "", "topic file, one \"<topic>\\t<node>\" record per line")
	flags.Int("topic-workers", 1, "topic rankings computed concurrently")
	flags.Int("top", 10, "nodes listed per ranking (0 lists all)")

	rootCmd.AddCommand(rankCmd)
}

// rankFlagKeys maps viper keys to the rank flags that set them.
var rankFlagKeys = map[string]string{
	"beta":              "beta",
	"epsilon":           "epsilon",
	"max_iterations":    "max-iterations",
	"workers":           "workers",
	"backend":           "backend",
	"seeds.threshold":   "seeds-threshold",
	"seeds.small_ratio": "seeds-small-ratio",
	"seeds.large_ratio": "seeds-large-ratio",
	"topics.file":       "topics",
	"topics.workers":    "topic-workers",
	"top":               "top",
}

func runRank(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Log.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	driver, err := ranking.NewDriver(cfg.Ranking(logger))
	if err != nil {
		return err
	}

	g, err := loader.LoadFile(cfg.Edges, cfg.Nodes, loader.WithDelimiter(cfg.Delimiter))
	if err != nil {
		return err
	}
	logger.Info("loaded graph", zap.String("path", cfg.Edges), zap.Int("nodes", g.NodeCount()), zap.Int("edges", g.EdgeCount()))

	var partitioner topic.Partitioner
	if cfg.Topics.File != "" {
		if partitioner, err = topic.LoadFile(cfg.Topics.File); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := driver.Run(ctx, g, partitioner)
	if err != nil {
		return err
	}
	return printReport(cmd.OutOrStdout(), rep, cfg.Top)
}

func printReport(out io.Writer, rep *ranking.Report, top int) error {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "run\t%s\n", rep.RunID)

	if err := printRanking(w, "base", rep.Base, nil, top); err != nil {
		return err
	}
	if err := printRanking(w, "trust", rep.Trust, rep.Seeds, top); err != nil {
		return err
	}
	for _, t := range rep.Topics {
		if err := printRanking(w, "topic "+t.Topic, t.Result, t.Seeds, top); err != nil {
			return err
		}
	}
	return w.Flush()
}

func printRanking(w io.Writer, name string, res *pagerank.Result, seeds []int, top int) error {
	if top == 0 || top > len(res.Ranks) {
		top = len(res.Ranks)
	}
	best, err := seed.TopK(res.Ranks, top)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s\tconverged=%t\titerations=%d\tdelta=%.3g\n", name, res.Converged, res.Iterations, res.Delta)
	if seeds != nil {
		fmt.Fprintf(w, "seeds\t%v\n", seeds)
	}
	for i, v := range best {
		fmt.Fprintf(w, "%d\tnode %d\t%.6f\n", i+1, v, res.Ranks[v])
	}
	return nil
}
