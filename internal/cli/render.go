package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tsa-lab/tsaview/internal/config"
	"github.com/tsa-lab/tsaview/pkg/buildinfo"
	"github.com/tsa-lab/tsaview/pkg/cache"
	"github.com/tsa-lab/tsaview/pkg/graph"
	tsaio "github.com/tsa-lab/tsaview/pkg/io"
	"github.com/tsa-lab/tsaview/pkg/render/graphview"
	"github.com/tsa-lab/tsaview/pkg/render/nodelink"
	"github.com/tsa-lab/tsaview/pkg/render/overlay"
	"github.com/tsa-lab/tsaview/pkg/render/scene"
	"github.com/tsa-lab/tsaview/pkg/render/sink"
)

const (
	typeView     = "view"     // retained scene with selection highlighting
	typeNodeLink = "nodelink" // Graphviz neato drawing
	defaultScale = 2.0        // PNG resolution factor
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file (single artifact), directory, or "-" for stdout
	vizType     string   // "view" or "nodelink"
	formats     []string // "svg", "json", "pdf", "png", "dot"
	width       float64  // surface width in pixels
	height      float64  // surface height in pixels
	color       string   // pinned accent color; empty rotates the palette
	selection   string   // "node:3", "edge:0-3" or empty
	animate     bool     // SMIL animation in SVG, transitions in JSON
	interactive bool     // hover CSS and click script in SVG
	detailed    bool     // node parameters in nodelink labels
	scale       float64  // PNG scale factor
	concurrency int      // parallel renders
	noCache     bool     // bypass the artifact cache

	out io.Writer // status lines and "-" output; nil is stdout
}

// renderCommand creates the render command for drawing graph files.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{vizType: typeView, scale: defaultScale}

	cmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Render graph documents or systems to SVG, JSON, PDF, PNG or DOT",
		Long: `Render draws every graph of every input file. A system file (a list of
graphs) produces one artifact per graph, suffixed with the graph's index.

Renders run in parallel and are cached by graph content and options.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeGraphFiles,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			opts.applyConfig(cmd, c.Config.Render)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if err := validateType(opts.vizType); err != nil {
				return err
			}
			if _, err := overlay.ParseSelection(opts.selection); err != nil {
				return err
			}
			opts.out = cmd.OutOrStdout()
			return c.runRender(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single artifact), directory, or - for stdout")
	cmd.Flags().StringVarP(&opts.vizType, "type", "t", opts.vizType, "visualization type: view, nodelink")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, pdf, png, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "surface width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "surface height (default from config)")
	cmd.Flags().StringVar(&opts.color, "color", "", "accent color (default rotates the palette)")
	cmd.Flags().StringVarP(&opts.selection, "select", "s", "", "selection to highlight: node:<id> or edge:<from>-<to>")
	cmd.Flags().BoolVar(&opts.animate, "animate", false, "animate the entering scene (SVG) or include transitions (JSON)")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "add hover styling and a click script to SVG")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node parameters (nodelink)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().IntVarP(&opts.concurrency, "jobs", "j", 0, "parallel renders (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the artifact cache")

	return cmd
}

// applyConfig fills every option the user left unset from the config.
func (o *renderOpts) applyConfig(cmd *cobra.Command, cfg config.RenderConfig) {
	flags := cmd.Flags()
	if !flags.Changed("width") {
		o.width = cfg.Width
	}
	if !flags.Changed("height") {
		o.height = cfg.Height
	}
	if !flags.Changed("color") {
		o.color = cfg.Color
	}
	if !flags.Changed("animate") {
		o.animate = cfg.Animate
	}
	if !flags.Changed("jobs") {
		o.concurrency = cfg.Concurrency
	}
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"svg": true, "json": true, "pdf": true, "png": true, "dot": true}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'json', 'pdf', 'png' or 'dot')", f)
		}
	}
	return nil
}

func validateType(t string) error {
	if t != typeView && t != typeNodeLink {
		return fmt.Errorf("invalid type: %s (must be 'view' or 'nodelink')", t)
	}
	return nil
}

// renderJob is one artifact: one graph in one format.
type renderJob struct {
	doc    graph.Document
	id     string // surface id, also the output file stem
	input  string
	format string
	path   string
}

// runRender loads every input, plans one job per graph and format, and
// renders the jobs in parallel.
func (c *CLI) runRender(ctx context.Context, inputs []string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	var jobs []renderJob
	for _, input := range inputs {
		docs, err := tsaio.ImportSystem(input)
		if err != nil {
			return err
		}
		logger.Infof("Loaded %s: %d graph(s)", input, len(docs))
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		for i, doc := range docs {
			id := stem
			if len(docs) > 1 {
				id = stem + "_" + strconv.Itoa(i)
			}
			for _, format := range opts.formats {
				jobs = append(jobs, renderJob{doc: doc, id: id, input: input, format: format})
			}
		}
	}
	if err := planOutputs(jobs, opts.output); err != nil {
		return err
	}

	artifacts, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer artifacts.Close()
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Get().CacheScope())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.concurrency, 1))
	written := make([]bool, len(jobs))
	for i, job := range jobs {
		g.Go(func() error {
			data, err := renderCached(ctx, artifacts, keyer, job, opts)
			if stderrors.Is(err, errSkipFormat) {
				logger.Debugf("Skipping %s/%s (unsupported combination)", opts.vizType, job.format)
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s (%s): %w", job.input, job.id, err)
			}
			if err := writeOutput(opts.out, job.path, data); err != nil {
				return err
			}
			written[i] = true
			logger.Debugf("Generated %s: %d bytes", job.path, len(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	count := 0
	for _, ok := range written {
		if ok {
			count++
		}
	}
	prog.done("rendered", "artifacts", count, "jobs", len(jobs))
	if opts.output != "-" {
		p := newPrinter(opts.out)
		for i, job := range jobs {
			if written[i] {
				p.file(job.path)
			}
		}
	}
	return nil
}

// planOutputs assigns an output path to every job. With one job, output
// names the file itself; otherwise output is a directory. Without output,
// artifacts go next to their input.
func planOutputs(jobs []renderJob, output string) error {
	if output == "-" && len(jobs) > 1 {
		return fmt.Errorf("cannot write %d artifacts to stdout", len(jobs))
	}
	for i := range jobs {
		j := &jobs[i]
		switch {
		case output == "-":
			j.path = "-"
		case output != "" && len(jobs) == 1 && filepath.Ext(output) != "":
			j.path = output
		case output != "":
			j.path = filepath.Join(output, j.id+"."+j.format)
		default:
			j.path = filepath.Join(filepath.Dir(j.input), j.id+"."+j.format)
		}
	}
	return nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		if stdout == nil {
			stdout = os.Stdout
		}
		_, err := stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// renderCached renders a job through the artifact cache. Every job draws
// on a fresh view, so equal inputs give equal bytes.
func renderCached(ctx context.Context, c cache.Cache, keyer cache.Keyer, job renderJob, opts *renderOpts) ([]byte, error) {
	hash, err := cache.HashJSON(job.doc)
	if err != nil {
		return nil, err
	}
	key := keyer.ArtifactKey(hash, cache.ArtifactKeyOpts{
		Format:      job.format,
		Renderer:    opts.vizType,
		Width:       opts.width,
		Height:      opts.height,
		Selection:   opts.selection,
		Color:       opts.color,
		Animated:    opts.animate,
		Scale:       opts.scale,
		Interactive: opts.interactive,
		Detailed:    opts.detailed,
		ID:          job.id,
	})
	return cache.GetOrCreate(ctx, c, key, cache.ArtifactTTL, func() ([]byte, error) {
		return renderDocument(ctx, job.doc, job.id, job.format, opts)
	})
}

// errSkipFormat is a sentinel error indicating an unsupported format/visualization combination.
var errSkipFormat = stderrors.New("skip unsupported format")

// renderDocument draws one graph in one format.
func renderDocument(ctx context.Context, doc graph.Document, id, format string, opts *renderOpts) ([]byte, error) {
	if format == "dot" || opts.vizType == typeNodeLink {
		return renderNodeLink(ctx, doc, format, opts)
	}
	return renderView(ctx, doc, id, format, opts)
}

// renderView draws the graph on a fresh view, applies the selection and
// serializes the surface.
func renderView(ctx context.Context, doc graph.Document, id, format string, opts *renderOpts) ([]byte, error) {
	var viewOpts []graphview.ViewOption
	if opts.animate {
		viewOpts = append(viewOpts, graphview.WithAnimator(scene.Timed{}))
	}
	if opts.color != "" {
		viewOpts = append(viewOpts, graphview.WithColor(opts.color))
	}
	v := graphview.NewView(id, opts.width, opts.height, viewOpts...)
	v.Renderer.Logger = loggerFromContext(ctx)
	if err := v.Load(ctx, doc); err != nil {
		return nil, err
	}
	sel, err := overlay.ParseSelection(opts.selection)
	if err != nil {
		return nil, err
	}
	if err := v.Select(ctx, sel); err != nil {
		return nil, err
	}

	var svgOpts []sink.SVGOption
	if opts.interactive {
		svgOpts = append(svgOpts, sink.WithInteraction())
	}
	if opts.animate {
		svgOpts = append(svgOpts, sink.WithAnimation())
	}

	switch format {
	case "svg":
		return sink.RenderSVG(v.Surface, svgOpts...), nil
	case "json":
		jsonOpts := []sink.JSONOption{sink.WithJSONSelection(sel.String())}
		if opts.animate {
			jsonOpts = append(jsonOpts, sink.WithJSONTransitions())
		}
		return sink.RenderJSON(v.Surface, jsonOpts...)
	case "pdf":
		return sink.RenderPDF(v.Surface, svgOpts...)
	case "png":
		return sink.RenderPNG(v.Surface, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.scale))
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// renderNodeLink draws the expanded graph with Graphviz. JSON is not
// supported (returns errSkipFormat).
func renderNodeLink(ctx context.Context, doc graph.Document, format string, opts *renderOpts) ([]byte, error) {
	x, err := graph.PreprocessDocument(doc)
	if err != nil {
		return nil, err
	}
	dot := nodelink.ToDOT(x, nodelink.Options{Color: opts.color, Detailed: opts.detailed})

	switch format {
	case "dot":
		return []byte(dot), nil
	case "svg":
		return nodelink.RenderSVG(ctx, dot)
	case "pdf":
		return nodelink.RenderPDF(ctx, dot)
	case "png":
		return nodelink.RenderPNG(ctx, dot, opts.scale)
	case "json":
		return nil, errSkipFormat
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}
