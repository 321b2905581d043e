package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tsa-lab/tsaview/internal/config"
	"github.com/tsa-lab/tsaview/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the configuration is loaded from --config (or
// the default path), the log level is taken from it unless main already
// raised it for --verbose, and the log-backed observability hooks are
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "tsaview draws ranked hypergraph models as interactive graphs",
		Long: `tsaview renders the graphs of a TSA system, directed graphs whose edges
may start from a set of nodes, as node-link diagrams with selection
highlighting. It renders files in batch, serves a store over HTTP and
WebSocket, and inspects a graph's selections in the terminal.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.randomCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg

	if c.Logger.GetLevel() > log.DebugLevel {
		if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
			c.Logger.SetLevel(level)
		}
	}
	switch cfg.Log.Formatter {
	case "json":
		c.Logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		c.Logger.SetFormatter(log.LogfmtFormatter)
	}
	c.Logger.Debug("config loaded", "path", path)

	registerHooks(c.Logger)
	return nil
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Get()
			p := newPrinter(cmd.OutOrStdout())
			p.keyValue("version", info.Version)
			p.keyValue("commit", info.Commit)
			p.keyValue("built", info.Date)
			if info.GoVersion != "" {
				p.keyValue("go", info.GoVersion)
			}
			return nil
		},
	}
}
