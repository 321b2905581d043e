package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tsa-lab/tsaview/pkg/errors"
	tsaio "github.com/tsa-lab/tsaview/pkg/io"
	"github.com/tsa-lab/tsaview/pkg/render/graphview"
	"github.com/tsa-lab/tsaview/pkg/render/overlay"
)

// inspectOpts holds the flags of the inspect command.
type inspectOpts struct {
	index     int
	selection string
	summary   bool
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Browse a graph's nodes and edges and preview selections",
		Long: `Inspect loads one graph and opens a terminal browser over its nodes and
edges. Clicking an element selects it as the drawing would and shows which
edges the selection raises, dims and pins.

With --summary the selection given by --select is applied and printed
without starting the browser.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeGraphFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, err := c.loadInspectView(ctx, args[0], opts)
			if err != nil {
				return err
			}
			if opts.summary {
				return printSelection(cmd.OutOrStdout(), v)
			}
			_, err = tea.NewProgram(NewInspectModel(ctx, v), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().IntVarP(&opts.index, "graph", "g", 0, "index of the graph in a system file")
	cmd.Flags().StringVarP(&opts.selection, "select", "s", "", "initial selection: node:<id> or edge:<from>-<to>")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print the selection summary and exit")

	return cmd
}

func (c *CLI) loadInspectView(ctx context.Context, path string, opts inspectOpts) (*graphview.View, error) {
	docs, err := tsaio.ImportSystem(path)
	if err != nil {
		return nil, err
	}
	if opts.index < 0 || opts.index >= len(docs) {
		return nil, errors.New(errors.ErrCodeNotFound, "graph %d out of range [0, %d)", opts.index, len(docs))
	}

	cfg := c.Config.Render
	var viewOpts []graphview.ViewOption
	if cfg.Color != "" {
		viewOpts = append(viewOpts, graphview.WithColor(cfg.Color))
	}
	v := graphview.NewView("graph-"+strconv.Itoa(opts.index), cfg.Width, cfg.Height, viewOpts...)
	v.Renderer.Logger = loggerFromContext(ctx)
	if err := v.Load(ctx, docs[opts.index]); err != nil {
		return nil, err
	}

	sel, err := overlay.ParseSelection(opts.selection)
	if err != nil {
		return nil, err
	}
	if err := v.Select(ctx, sel); err != nil {
		return nil, err
	}
	return v, nil
}

// printSelection writes the selection summary as plain lines.
func printSelection(w io.Writer, v *graphview.View) error {
	sel := v.Overlay.Selection()
	sum := v.Overlay.Summary()
	_, err := fmt.Fprintf(w, "state: %s\nselection: %s\nraised: %v\ndimmed: %v\npinned: %v\n",
		sel.State, sel, sum.Raised, sum.Dimmed, sum.Pinned)
	return err
}
