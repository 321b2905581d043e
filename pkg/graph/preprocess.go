package graph

import (
	"fmt"
	"slices"

	"github.com/tsa-lab/tsaview/pkg/errors"
	"github.com/tsa-lab/tsaview/pkg/geom"
)

// Expanded is a graph ready to draw: hyperedges replaced by synthetic nodes
// and path edges, and one unit-circle layout point per node.
type Expanded struct {
	Nodes  []Node
	Edges  []Edge
	Layout []geom.Point
}

// NodeIndex returns the position of the node with the given id, or -1.
func (x Expanded) NodeIndex(id int) int {
	return slices.IndexFunc(x.Nodes, func(n Node) bool { return n.ID == id })
}

// Edge returns the expanded edge with the given endpoints.
func (x Expanded) Edge(from, to int) (Edge, bool) {
	for _, e := range x.Edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// Hyperedges returns the number of synthetic nodes in x.
func (x Expanded) Hyperedges() int {
	n := 0
	for _, node := range x.Nodes {
		if node.IsComplex() {
			n++
		}
	}
	return n
}

// CircularLayout places n nodes evenly on the unit circle in list order.
func CircularLayout(n int) []geom.Point {
	return geom.Circle(n)
}

// Preprocess expands a raw graph into a drawable one.
//
// Edges with a single source pass through. Each hyperedge (a source set of
// two or more ids) gets a synthetic node with id maxIdx, where maxIdx starts
// at the largest input id plus one and grows by one per hyperedge. The
// hyperedge becomes one path edge per member into the synthetic node, tagged
// with Complex and ComplexTo, followed by one edge from the synthetic node to
// the original target carrying the original parameters and tagged with
// Interactome.
//
// The whole input is validated before anything is built. Every problem is
// reported in one [errors.ValidationError] with code INVALID_GRAPH.
func Preprocess(nodes []Node, edges []RawEdge) (Expanded, error) {
	if err := validateRaw(nodes, edges); err != nil {
		return Expanded{}, err
	}

	maxIdx := 0
	for _, n := range nodes {
		maxIdx = max(maxIdx, n.ID)
	}
	maxIdx++

	outNodes := slices.Clone(nodes)
	outEdges := make([]Edge, 0, len(edges))
	for _, re := range edges {
		if id, ok := re.From.Single(); ok {
			outEdges = append(outEdges, Edge{
				From:        id,
				To:          re.To,
				Interaction: re.Interaction,
				Occurrences: re.Occurrences,
				Parameters:  re.Parameters,
			})
			continue
		}

		syn := maxIdx
		maxIdx++
		members := slices.Clone([]int(re.From))
		outNodes = append(outNodes, Node{ID: syn, Complex: members, Parameters: []Parameter{}})

		for _, m := range members {
			outEdges = append(outEdges, Edge{
				From:        m,
				To:          syn,
				Interaction: re.Interaction,
				Complex:     members,
				ComplexTo:   intPtr(re.To),
			})
		}
		outEdges = append(outEdges, Edge{
			From:        syn,
			To:          re.To,
			Interaction: re.Interaction,
			Occurrences: re.Occurrences,
			Parameters:  re.Parameters,
			Interactome: members,
		})
	}

	if err := checkExpandedKeys(outEdges); err != nil {
		return Expanded{}, err
	}

	return Expanded{
		Nodes:  outNodes,
		Edges:  outEdges,
		Layout: CircularLayout(len(outNodes)),
	}, nil
}

// PreprocessDocument is Preprocess over a document's nodes and edges. Any
// stored layout in the document is ignored; the circle is recomputed.
func PreprocessDocument(doc Document) (Expanded, error) {
	return Preprocess(doc.Nodes, doc.Edges)
}

func validateRaw(nodes []Node, edges []RawEdge) error {
	v := errors.NewValidator(errors.ErrCodeInvalidGraph, "graph")
	if len(nodes) == 0 {
		v.Add("nodes", "must not be empty")
	}

	known := make(map[int]bool, len(nodes))
	for i, n := range nodes {
		if known[n.ID] {
			v.Add(fmt.Sprintf("nodes[%d].id", i), "duplicate node id %d", n.ID)
		}
		if n.ID < 0 {
			v.Add(fmt.Sprintf("nodes[%d].id", i), "negative node id %d", n.ID)
		}
		known[n.ID] = true
	}

	for i, e := range edges {
		field := fmt.Sprintf("edges[%d]", i)
		if len(e.From) == 0 {
			v.Add(field+".from", "must name at least one node")
		}
		seen := make(map[int]bool, len(e.From))
		for _, m := range e.From {
			if !known[m] {
				v.Add(field+".from", "unknown node %d", m)
			}
			if seen[m] {
				v.Add(field+".from", "node %d listed twice", m)
			}
			seen[m] = true
		}
		if !known[e.To] {
			v.Add(field+".to", "unknown node %d", e.To)
		}
	}
	return v.Err()
}

func checkExpandedKeys(edges []Edge) error {
	v := errors.NewValidator(errors.ErrCodeInvalidGraph, "graph")
	seen := make(map[EdgeKey]bool, len(edges))
	for _, e := range edges {
		k := e.Key()
		if seen[k] {
			v.Add("edges", "duplicate edge %s", k)
		}
		seen[k] = true
	}
	return v.Err()
}

// Validate checks that an already expanded graph is drawable: nodes are
// non-empty and unique, every edge endpoint exists, edge keys are unique and
// the layout has one point per node.
func Validate(nodes []Node, edges []Edge, layout []geom.Point) error {
	v := errors.NewValidator(errors.ErrCodeInvalidGraph, "graph")
	if len(nodes) == 0 {
		v.Add("nodes", "must not be empty")
	}
	if len(layout) != len(nodes) {
		v.Add("layout", "has %d points for %d nodes", len(layout), len(nodes))
	}

	known := make(map[int]bool, len(nodes))
	for i, n := range nodes {
		if known[n.ID] {
			v.Add(fmt.Sprintf("nodes[%d].id", i), "duplicate node id %d", n.ID)
		}
		known[n.ID] = true
	}

	seen := make(map[EdgeKey]bool, len(edges))
	for i, e := range edges {
		field := fmt.Sprintf("edges[%d]", i)
		if !known[e.From] {
			v.Add(field+".from", "unknown node %d", e.From)
		}
		if !known[e.To] {
			v.Add(field+".to", "unknown node %d", e.To)
		}
		if seen[e.Key()] {
			v.Add(field, "duplicate edge %s", e.Key())
		}
		seen[e.Key()] = true
	}
	return v.Err()
}
