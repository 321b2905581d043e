// Package render provides graph rendering for tsaview.
//
// # Overview
//
// Rendering is split into small packages:
//
//   - [scene]: the retained, keyed element tree a render reconciles
//   - [graphview]: the renderer, palette and interactive [graphview.View]
//   - [overlay]: node and edge selection highlighting
//   - [sink]: SVG, JSON, PDF and PNG output of a scene
//   - [nodelink]: static Graphviz diagrams of an expanded graph
//
// This package itself holds the format conversion shared by the sinks.
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg).
//
//	svg := sink.RenderSVG(view.Surface)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [scene]: github.com/tsa-lab/tsaview/pkg/render/scene
// [graphview]: github.com/tsa-lab/tsaview/pkg/render/graphview
// [graphview.View]: github.com/tsa-lab/tsaview/pkg/render/graphview#View
// [overlay]: github.com/tsa-lab/tsaview/pkg/render/overlay
// [sink]: github.com/tsa-lab/tsaview/pkg/render/sink
// [nodelink]: github.com/tsa-lab/tsaview/pkg/render/nodelink
package render
