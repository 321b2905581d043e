// Package store serves the graph documents of a system.
//
// A system is an ordered list of graph documents, usually the ranked output
// of one analysis run. Index 0 is the best-ranked graph. The server reads
// single graphs by index and builds occurrence matrices from the top n.
//
// Two backends implement [Store]: [Memory], loaded from a system file, and
// [Mongo], a MongoDB collection of documents ordered by their rank field.
package store

import (
	"context"

	"github.com/tsa-lab/tsaview/pkg/errors"
	"github.com/tsa-lab/tsaview/pkg/graph"
)

// Store is a read-only, ordered collection of graph documents.
type Store interface {
	// Count returns the number of graphs.
	Count(ctx context.Context) (int, error)

	// Graph returns the graph at index i. An index out of range is a
	// NOT_FOUND error.
	Graph(ctx context.Context, i int) (graph.Document, error)

	// Top returns the first n graphs, or all of them when n is negative or
	// exceeds Count.
	Top(ctx context.Context, n int) ([]graph.Document, error)

	// ID names the store for display. It is stable across writes.
	ID() string

	// Version names the store's current contents. It changes whenever
	// graphs are added or removed, so it is safe to use in cache keys.
	Version(ctx context.Context) (string, error)

	Close(ctx context.Context) error
}

// Writer is implemented by stores that accept new graphs.
type Writer interface {
	Insert(ctx context.Context, docs []graph.Document) error
}

func notFound(i, count int) error {
	return errors.New(errors.ErrCodeNotFound, "graph %d out of range [0, %d)", i, count)
}
