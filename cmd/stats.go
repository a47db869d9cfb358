package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/valkyraycho/surfrank/config"
	"github.com/valkyraycho/surfrank/linkgraph/loader"
	"github.com/valkyraycho/surfrank/linkgraph/store/memory"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the structure of an edge list",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	g, err := loader.LoadFile(cfg.Edges, cfg.Nodes, loader.WithDelimiter(cfg.Delimiter))
	if err != nil {
		return err
	}
	st := g.Stats()

	dg, err := memory.ToGonum(g)
	if err != nil {
		return err
	}
	sccs := topo.TarjanSCC(dg)
	var cyclic int
	for _, c := range sccs {
		if len(c) > 1 {
			cyclic++
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "nodes\t%d\n", st.Nodes)
	fmt.Fprintf(w, "edges\t%d\n", st.Edges)
	fmt.Fprintf(w, "dangling\t%d\n", st.Dangling)
	fmt.Fprintf(w, "self loops\t%d\n", st.SelfLoops)
	fmt.Fprintf(w, "strongly connected components\t%d\n", len(sccs))
	fmt.Fprintf(w, "cyclic components\t%d\n", cyclic)
	return w.Flush()
}
