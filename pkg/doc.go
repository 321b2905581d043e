// Package pkg provides the core libraries for tsaview, a renderer for the
// ranked hypergraph models produced by a TSA search.
//
// # Overview
//
// A TSA system is a list of graphs ranked by score. Each graph is a directed
// graph whose edges may start from a set of nodes (a hyperedge). tsaview
// expands hyperedges through synthetic complex nodes, lays the result out and
// draws it as a node-link diagram with selection highlighting.
//
// # Architecture
//
//	graph document (JSON or YAML)
//	         ↓
//	    [io] package (decode documents and systems)
//	         ↓
//	    [graph] package (validate, expand hyperedges, lay out)
//	         ↓
//	    [render] packages (scene, view, overlay, sinks)
//	         ↓
//	    SVG/JSON/PDF/PNG/DOT output
//
// Across a system, [graph.OccurrenceMatrix] counts how often each edge
// appears among the top graphs; a view draws that matrix as a prevalence
// graph.
//
// # Quick Start
//
//	docs, _ := io.ImportSystem("system.json")
//
//	v := graphview.NewView("g", 800, 600)
//	_ = v.Load(ctx, docs[0])
//	_ = v.Select(ctx, overlay.Selection{State: overlay.NodeSelected, Node: 2})
//
//	svg := sink.RenderSVG(v.Surface, sink.WithInteraction())
//
// # Supporting Packages
//
//   - [store]: graph stores over a system file or MongoDB
//   - [cache]: artifact caches on disk or in Redis
//   - [errors]: coded errors shared by the CLI and server
//   - [observability]: render, cache and server hooks
//   - [geom] and [scale]: small numeric helpers for layout and stroke widths
//   - [buildinfo]: version information set at link time
//
// [graph.OccurrenceMatrix]: https://pkg.go.dev/github.com/tsa-lab/tsaview/pkg/graph#OccurrenceMatrix
// [store]: https://pkg.go.dev/github.com/tsa-lab/tsaview/pkg/store
// [cache]: https://pkg.go.dev/github.com/tsa-lab/tsaview/pkg/cache
// [errors]: https://pkg.go.dev/github.com/tsa-lab/tsaview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/tsa-lab/tsaview/pkg/observability
// [geom]: https://pkg.go.dev/github.com/tsa-lab/tsaview/pkg/geom
// [scale]: https://pkg.go.dev/github.com/tsa-lab/tsaview/pkg/scale
// [buildinfo]: https://pkg.go.dev/github.com/tsa-lab/tsaview/pkg/buildinfo
//
// [io]: https://pkg.go.dev/github.com/tsa-lab/tsaview/pkg/io
// [graph]: https://pkg.go.dev/github.com/tsa-lab/tsaview/pkg/graph
// [render]: https://pkg.go.dev/github.com/tsa-lab/tsaview/pkg/render
package pkg
