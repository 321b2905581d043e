// Package io reads and writes graph documents and systems on disk.
//
// # Formats
//
// Documents are stored as JSON or YAML. The format is chosen from the file
// extension: ".yaml" and ".yml" select YAML, everything else is read as
// JSON. Both carry the same fields:
//
//	nodes:
//	  - id: 0
//	  - id: 1
//	  - id: 2
//	edges:
//	  - from: [0, 1]
//	    to: 2
//	    interaction: 1
//
// # Systems
//
// A system is an ordered list of ranked documents, the output of a topology
// search. [ImportSystem] accepts either a list of documents or a single
// document, which becomes a one-graph system.
//
// # Export
//
// [Export] writes one document in the format named by the path. Export only
// writes what it is given: a raw [graph.Document], never an expanded graph.
// Synthetic nodes are an artifact of drawing and are rebuilt on import by
// [graph.Preprocess].
package io
