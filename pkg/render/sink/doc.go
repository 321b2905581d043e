// Package sink serializes a rendered [scene.Surface].
//
// # Overview
//
// A sink turns the retained scene into an output format:
//
//   - SVG: standalone document with the arrowhead marker, one group per layer
//   - JSON: scene snapshot for web clients
//   - PDF and PNG: SVG converted with rsvg-convert
//
// # SVG Output
//
// [RenderSVG] writes the final state by default. [WithAnimation] writes each
// element in its starting state with SMIL <animate> and <set> children
// replaying the transitions a [scene.Timed] animator recorded; attributes a
// highlight overrides are not animated. [WithInteraction] adds hover CSS and
// a click script.
//
//	svg := sink.RenderSVG(view.Surface, sink.WithInteraction())
//
// # JSON Output
//
// [Snapshot] builds the JSON form and [RenderJSON] encodes it. The server
// embeds snapshots in its WebSocket replies.
package sink
