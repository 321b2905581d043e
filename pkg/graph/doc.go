// Package graph provides the data model for interaction graphs and the
// layout preprocessor that turns a raw graph document into something that
// can be drawn.
//
// # Documents
//
// Graph documents use a node-link JSON format. An edge's "from" is either a
// single node id or an array of ids; the array form is a hyperedge (a
// "complex"), a multi-party interaction feeding one target:
//
//	{
//	  "nodes": [{"id": 0}, {"id": 1}, {"id": 2}],
//	  "edges": [
//	    {"from": 0, "to": 1, "interaction": 2},
//	    {"from": [0, 1], "to": 2, "interaction": 1}
//	  ]
//	}
//
// # Preprocessing
//
// [Preprocess] expands hyperedges into ordinary directed edges through one
// synthetic node per hyperedge and places every node on the unit circle:
//
//	exp, err := graph.Preprocess(doc.Nodes, doc.Edges)
//	// exp.Nodes: real nodes then synthetic ones
//	// exp.Edges: member→synthetic path edges, synthetic→target edges
//	// exp.Layout: one unit-circle point per node
//
// The synthetic edges carry provenance tags (Complex, ComplexTo,
// Interactome) so the selection overlay can reconstruct which expanded edges
// belong to the same hyperedge.
//
// Preprocess validates the whole input first and returns a single
// aggregate error from pkg/errors; it never returns a partial expansion.
//
// # Matrices
//
// [OccurrenceMatrix] counts how often each edge appears across the top
// ranked documents of a system, and [PrevalenceGraph] turns such a matrix
// back into a weighted graph whose edges carry Occurrences.
package graph
