// Package nodelink renders expanded TSA graphs as static Graphviz diagrams.
//
// # Overview
//
// This package is the non-interactive counterpart of the graph view: the
// same nodes, edges and unit layout, handed to Graphviz's neato engine with
// every node position pinned. It suits batch output where no animation or
// selection is needed.
//
// # Usage
//
// Convert an expanded graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(x, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Styling
//
// Regular nodes are filled with [Options.Color], complex nodes are small and
// light grey, and hyperedge path edges are dashed. Edge colors follow the
// interaction palette and pen widths the edge weights.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
