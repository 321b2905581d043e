package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/tsa-lab/tsaview/pkg/geom"
	"github.com/tsa-lab/tsaview/pkg/graph"
	"github.com/tsa-lab/tsaview/pkg/render"
	"github.com/tsa-lab/tsaview/pkg/render/graphview"
	"github.com/tsa-lab/tsaview/pkg/scale"
)

// DefaultSize is the drawing size in inches when Options.Size is zero.
const DefaultSize = 6.0

// Options configures node-link diagram rendering.
type Options struct {
	// Size is the side of the square the layout is stretched to, in inches.
	Size float64

	// Color fills regular nodes. Empty means the first palette color.
	Color string

	// Weight scales edge weights before they become pen widths. Nil is the
	// identity.
	Weight scale.Func

	// Detailed adds node parameters to the labels.
	Detailed bool
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Color == "" {
		o.Color = graphview.Category10[0]
	}
	if o.Weight == nil {
		o.Weight = scale.Identity
	}
	return o
}

// ToDOT converts an expanded graph to Graphviz DOT source. Positions are
// pinned to the graph's layout, so the result is meant for neato.
//
// Complex nodes are drawn small and grey, and the edges of a hyperedge path
// dashed, mirroring the interactive view.
func ToDOT(x graph.Expanded, opts Options) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=0.4, fontsize=10];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for i, n := range x.Nodes {
		attrs := fmtNodeAttrs(n, opts)
		if i < len(x.Layout) {
			p := x.Layout[i]
			// The layout spans [-1, 1] with y down; Graphviz y grows upward.
			px, py := (p.X+1)/2*opts.Size, (1-p.Y)/2*opts.Size
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtInches(px), fmtInches(py)))
		}
		fmt.Fprintf(&buf, "  \"%d\" [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range x.Edges {
		fmt.Fprintf(&buf, "  \"%d\" -> \"%d\" [%s];\n", e.From, e.To, strings.Join(fmtEdgeAttrs(e, opts), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := strconv.Itoa(n.ID)
	if n.IsComplex() {
		label = ""
	}
	if !detailed || len(n.Parameters) == 0 {
		return label
	}
	parts := make([]string, 0, len(n.Parameters))
	for _, p := range n.Parameters {
		parts = append(parts, fmt.Sprintf("%s: %s", p.ParamType, geom.Num(p.Val)))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtNodeAttrs(n graph.Node, opts Options) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
		fmt.Sprintf("tooltip=%q", n.Title()),
	}
	if n.IsComplex() {
		return append(attrs, "width=0.2", "fillcolor="+graphview.ComplexFill, "color="+graphview.ComplexFill)
	}
	return append(attrs, fmt.Sprintf("fillcolor=%q", opts.Color), "fontcolor=white")
}

func fmtEdgeAttrs(e graph.Edge, opts Options) []string {
	attrs := []string{
		fmt.Sprintf("color=%q", graphview.InteractionColor(e.Interaction)),
		"penwidth=" + geom.Num(opts.Weight(e.Weight())/2),
		fmt.Sprintf("tooltip=%q", e.Title()),
	}
	if e.IsComplex() {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

func fmtInches(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz's neato engine.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, factor float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, factor)
}
