// Package scene is the retained model of a drawn graph: keyed visual
// elements grouped into layers on a surface.
//
// # Elements and keys
//
// Every [Element] is bound to one datum (a node or an edge) through a stable
// [Key]. Node elements are keyed by node id and edge elements by their
// (from, to) pair, so the same edge keeps the same element across renders.
// An edge is drawn twice: once as the visible edge and once as a wide,
// hidden-until-hovered hit target (the "hover"). The two share a datum but
// not a key.
//
// # Layers
//
// A [Surface] holds five layers in draw order:
//
//	edges, self-edges, edge-hovers, self-edge-hovers, nodes
//
// Each [Layer] is an ordered keyed map. [Layer.Join] computes the three-way
// diff between the keys currently held and the keys of a new data set:
// entering keys, updated elements and exiting elements.
//
// # Ownership
//
// The renderer writes Geometry and Style. The selection overlay writes only
// Highlight. [Element.Attrs] merges the two into the attribute set a sink
// draws.
//
// # Animation
//
// An [Animator] decides how an element moves from its previous [State] to
// its new one. [Instant] applies changes immediately and removes exiting
// elements at once; [Timed] records [Transition] steps with the fixed
// durations of the live view and keeps exiting elements until the next
// render sweeps them.
package scene
