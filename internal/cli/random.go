package cli

import (
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsa-lab/tsaview/pkg/graph"
	tsaio "github.com/tsa-lab/tsaview/pkg/io"
)

// randomOpts holds the flags of the random command.
type randomOpts struct {
	nodes  int
	edges  int
	count  int
	seed   uint64
	output string
	format string
}

// randomCommand creates the random command, which writes random graphs for
// trying the renderer and server without real data.
func (c *CLI) randomCommand() *cobra.Command {
	var opts randomOpts

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Generate random graph documents",
		Long: `Random writes graphs over n nodes with m distinct edges drawn from every
ordered pair, self-loops included. Sizes left at zero are chosen at random.
With --count above one the output is a system, ranked in generation order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRandom(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.nodes, "nodes", "n", 0, "number of nodes (0 picks 3 to 9)")
	cmd.Flags().IntVarP(&opts.edges, "edges", "m", 0, "number of edges (0 picks at random)")
	cmd.Flags().IntVarP(&opts.count, "count", "c", 1, "number of graphs")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (default random)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.format, "format", "", "json or yaml (default from the output extension)")

	return cmd
}

func (c *CLI) runRandom(cmd *cobra.Command, opts randomOpts) error {
	if err := graph.ValidateRandomSize(opts.nodes, opts.edges); err != nil {
		return err
	}
	seed := opts.seed
	if !cmd.Flags().Changed("seed") {
		seed = rand.Uint64()
	}
	docs := randomSystem(rand.New(rand.NewPCG(seed, seed)), opts)

	format := tsaio.Format(opts.format)
	if format == "" {
		format = tsaio.DetectFormat(opts.output)
	}

	w := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	var err error
	if len(docs) == 1 {
		err = tsaio.WriteDocument(docs[0], w, format)
	} else {
		err = tsaio.WriteSystem(docs, w, format)
	}
	if err != nil {
		return err
	}
	if opts.output != "" {
		p := newPrinter(cmd.OutOrStdout())
		p.success("Wrote %d random graph(s) (seed %d)", len(docs), seed)
		p.file(opts.output)
	}
	return nil
}

func randomSystem(rng *rand.Rand, opts randomOpts) []graph.Document {
	docs := make([]graph.Document, max(opts.count, 1))
	for i := range docs {
		docs[i] = graph.RandomDocument(rng, opts.nodes, opts.edges)
		docs[i].Rank = i
	}
	return docs
}
