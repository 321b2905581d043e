package graph

import (
	"math/rand/v2"

	"github.com/tsa-lab/tsaview/pkg/errors"
)

// Bounds applied when a random graph's size is left to chance.
const (
	minRandomNodes = 3
	maxRandomNodes = 10
	minRandomEdges = 2
)

// Upper bounds accepted by [ValidateRandomSize].
const (
	MaxRandomNodes = 1000
	MaxRandomEdges = 10000
)

// ValidateRandomSize rejects requested random graph sizes above
// [MaxRandomNodes] nodes or [MaxRandomEdges] edges. Non-positive sizes are
// valid and mean "pick at random".
func ValidateRandomSize(n, m int) error {
	v := errors.NewValidator(errors.ErrCodeInvalidInput, "random graph")
	if n > MaxRandomNodes {
		v.Add("nodes", "%d exceeds the limit of %d", n, MaxRandomNodes)
	}
	if m > MaxRandomEdges {
		v.Add("edges", "%d exceeds the limit of %d", m, MaxRandomEdges)
	}
	return v.Err()
}

// RandomDocument builds a random graph document over n nodes with m edges
// drawn without replacement from every ordered pair, self-loops included.
// A non-positive n picks max(rand·10, 3) nodes; a non-positive m picks
// max(rand·pairs, 2) edges. m is capped at the number of available pairs.
// Callers taking sizes from untrusted input check them with
// [ValidateRandomSize] first.
func RandomDocument(rng *rand.Rand, n, m int) Document {
	if n <= 0 {
		n = max(int(rng.Float64()*maxRandomNodes), minRandomNodes)
	}
	total := n * n
	if m <= 0 {
		m = max(int(rng.Float64()*float64(total)), minRandomEdges)
	}
	m = min(m, total)

	doc := Document{Rank: 0, Dist: 10, Nodes: make([]Node, n)}
	for i := range n {
		doc.Nodes[i] = Node{ID: i, Parameters: []Parameter{}}
	}
	for _, k := range samplePairs(rng, total, m) {
		doc.Edges = append(doc.Edges, RawEdge{
			From:       Source{k / n},
			To:         k % n,
			Parameters: []Parameter{},
		})
	}
	for _, pt := range CircularLayout(n) {
		doc.Layout = append(doc.Layout, [2]float64{pt.X, pt.Y})
	}
	return doc
}

// samplePairs draws m distinct indices from [0, total). Pair index k stands
// for the edge k/n → k%n. Dense draws shuffle the full range; sparse draws
// reject repeats so memory stays proportional to m.
func samplePairs(rng *rand.Rand, total, m int) []int {
	if 2*m >= total {
		all := rng.Perm(total)
		return all[:m]
	}
	seen := make(map[int]bool, m)
	out := make([]int, 0, m)
	for len(out) < m {
		k := rng.IntN(total)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
