package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsa-lab/tsaview/internal/server"
)

// serveOpts holds the flags of the serve command. Unset flags fall back to
// the configuration.
type serveOpts struct {
	addr    string
	origins string
	animate bool
	noCache bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [system-file]",
		Short: "Serve a graph store over HTTP and WebSocket",
		Long: `Serve exposes a system of ranked graphs to web clients: graphs by index,
random graphs, occurrence matrices, server-rendered SVG and live WebSocket
sessions that apply selections.

The system comes from the file argument, or from the configured store
(a system file or a MongoDB collection).`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeGraphFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runServe(cmd, path, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.origins, "origins", "", "allowed CORS origins, comma-separated (default from config)")
	cmd.Flags().BoolVar(&opts.animate, "animate", false, "send animation transitions to WebSocket clients")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, path string, opts serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	st, err := c.newStore(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	n, err := st.Count(ctx)
	if err != nil {
		return err
	}
	logger.Info("Store ready", "id", st.ID(), "graphs", n)

	artifacts, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer artifacts.Close()

	srvOpts := c.serverOptions()
	flags := cmd.Flags()
	if flags.Changed("addr") {
		srvOpts.Addr = opts.addr
	}
	if flags.Changed("origins") {
		srvOpts.AllowedOrigins = strings.Split(opts.origins, ",")
	}
	if flags.Changed("animate") {
		srvOpts.Animate = opts.animate
	}

	newPrinter(cmd.OutOrStdout()).info("Serving %s on %s", StyleHighlight.Render(st.ID()), StyleLink.Render(srvOpts.Addr))
	return server.New(st, artifacts, logger.WithPrefix("server"), srvOpts).Run(ctx)
}

// serverOptions maps the configuration onto server options.
func (c *CLI) serverOptions() server.Options {
	cfg := c.Config
	return server.Options{
		Addr:            cfg.Server.Addr,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Width:           cfg.Render.Width,
		Height:          cfg.Render.Height,
		Color:           cfg.Render.Color,
		Animate:         cfg.Render.Animate,
		CacheTTL:        cfg.Cache.TTL,
	}
}
