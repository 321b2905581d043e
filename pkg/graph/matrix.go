package graph

import (
	"fmt"

	"github.com/tsa-lab/tsaview/pkg/errors"
)

// Matrix is a square occurrence matrix: m[from][to] counts how many graphs
// contain the edge from→to. Row and column indices are node ids.
type Matrix [][]float64

// Size returns the number of rows.
func (m Matrix) Size() int { return len(m) }

// Validate checks that m is square with non-negative entries.
func (m Matrix) Validate() error {
	v := errors.NewValidator(errors.ErrCodeInvalidInput, "matrix")
	for i, row := range m {
		if len(row) != len(m) {
			v.Add(fmt.Sprintf("row %d", i), "has %d columns, want %d", len(row), len(m))
		}
		for j, c := range row {
			if c < 0 {
				v.Add(fmt.Sprintf("[%d][%d]", i, j), "negative count %g", c)
			}
		}
	}
	return v.Err()
}

// Max returns the largest entry, or 0 for an empty matrix.
func (m Matrix) Max() float64 {
	var most float64
	for _, row := range m {
		for _, c := range row {
			most = max(most, c)
		}
	}
	return most
}

// OccurrenceMatrix counts, for every ordered pair of node ids, how many of
// the first topx documents contain an edge between them. A negative topx,
// or one beyond the number of documents, counts all of them.
//
// Only input node ids are counted. A hyperedge contributes one edge from each
// member to its target, because synthetic complex ids are local to a single
// document. A pair is counted once per document. The matrix is sized to the
// largest node id.
func OccurrenceMatrix(docs []Document, topx int) (Matrix, error) {
	if topx < 0 || topx > len(docs) {
		topx = len(docs)
	}

	size := 0
	for i, doc := range docs[:topx] {
		if _, err := PreprocessDocument(doc); err != nil {
			return nil, fmt.Errorf("graph %d: %w", i, err)
		}
		for _, n := range doc.Nodes {
			size = max(size, n.ID+1)
		}
	}

	mat := make(Matrix, size)
	for i := range mat {
		mat[i] = make([]float64, size)
	}
	for _, doc := range docs[:topx] {
		seen := make(map[[2]int]bool)
		for _, e := range doc.Edges {
			for _, from := range e.From {
				pair := [2]int{from, e.To}
				if seen[pair] {
					continue
				}
				seen[pair] = true
				mat[from][e.To]++
			}
		}
	}
	return mat, nil
}

// PrevalenceGraph turns an occurrence matrix back into a graph document: one
// node per row and one edge per positive cell, carrying the count as
// Occurrences.
func PrevalenceGraph(m Matrix) (Document, error) {
	if err := m.Validate(); err != nil {
		return Document{}, err
	}
	doc := Document{Nodes: make([]Node, len(m))}
	for i := range m {
		doc.Nodes[i] = Node{ID: i, Parameters: []Parameter{}}
	}
	for from, row := range m {
		for to, c := range row {
			if c <= 0 {
				continue
			}
			occ := c
			doc.Edges = append(doc.Edges, RawEdge{
				From:        Source{from},
				To:          to,
				Occurrences: &occ,
			})
		}
	}
	return doc, nil
}

// Occurrences lists the occurrence count of every edge that has one.
func Occurrences(edges []Edge) []float64 {
	var out []float64
	for _, e := range edges {
		if e.Occurrences != nil {
			out = append(out, *e.Occurrences)
		}
	}
	return out
}
