package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tsa-lab/tsaview/pkg/errors"
	tsaio "github.com/tsa-lab/tsaview/pkg/io"
	"github.com/tsa-lab/tsaview/pkg/store"
)

// storeCommand creates the store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the configured graph store",
	}

	cmd.AddCommand(c.storeInfoCommand())
	cmd.AddCommand(c.storeImportCommand())

	return cmd
}

// storeInfoCommand creates the "store info" subcommand.
func (c *CLI) storeInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured store and its size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx, "")
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			n, err := st.Count(ctx)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			p.keyValue("backend", c.Config.Store.Backend)
			p.keyValue("id", st.ID())
			p.keyValue("graphs", strconv.Itoa(n))
			return nil
		},
	}
}

// storeImportCommand creates the "store import" subcommand, which appends
// the graphs of system files to the configured store.
func (c *CLI) storeImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "import [file...]",
		Short:             "Import system files into the configured store",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeGraphFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx, "")
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			w, ok := st.(store.Writer)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "store %s is read-only", st.ID())
			}

			total := 0
			for _, path := range args {
				docs, err := tsaio.ImportSystem(path)
				if err != nil {
					return err
				}
				spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Importing %d graph(s) from %s", len(docs), path))
				spinner.Start()
				if err := w.Insert(ctx, docs); err != nil {
					spinner.StopWithError(fmt.Sprintf("Import of %s failed", path))
					return err
				}
				spinner.StopWithSuccess(fmt.Sprintf("Imported %d graph(s) from %s", len(docs), path))
				total += len(docs)
			}
			newPrinter(cmd.OutOrStdout()).detail("%d graph(s) added to %s", total, st.ID())
			return nil
		},
	}
}
