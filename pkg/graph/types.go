package graph

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tsa-lab/tsaview/pkg/geom"
)

// =============================================================================
// Node
// =============================================================================

// Parameter is an inspectable attribute of a node or edge.
type Parameter struct {
	ParamType string    `json:"paramType" yaml:"paramType" bson:"paramType"`
	Val       float64   `json:"val" yaml:"val" bson:"val"`
	Bounds    []float64 `json:"bounds,omitempty" yaml:"bounds,omitempty" bson:"bounds,omitempty"`
}

// Node is a graph vertex. Synthetic nodes created by [Preprocess] carry the
// member ids of the hyperedge they stand for in Complex.
type Node struct {
	ID         int         `json:"id" yaml:"id" bson:"id"`
	Complex    []int       `json:"complex,omitempty" yaml:"complex,omitempty" bson:"complex,omitempty"`
	Parameters []Parameter `json:"parameters" yaml:"parameters" bson:"parameters"`
}

// IsComplex reports whether n is a synthetic hyperedge node.
func (n Node) IsComplex() bool { return n.Complex != nil }

// Title is the tooltip text for n.
func (n Node) Title() string {
	if n.IsComplex() {
		return "Complex " + formatSet(n.Complex)
	}
	return "Node " + strconv.Itoa(n.ID)
}

// =============================================================================
// Source - single id or hyperedge member set
// =============================================================================

// Source is the "from" side of a raw edge: one node id, or the member set of
// a hyperedge. It encodes as a bare integer when it holds exactly one id.
type Source []int

// Single returns the id and true when s names exactly one node.
func (s Source) Single() (int, bool) {
	if len(s) == 1 {
		return s[0], true
	}
	return 0, false
}

// IsHyperedge reports whether s is a member set of two or more ids.
func (s Source) IsHyperedge() bool { return len(s) >= 2 }

// MarshalJSON implements json.Marshaler.
func (s Source) MarshalJSON() ([]byte, error) {
	if id, ok := s.Single(); ok {
		return json.Marshal(id)
	}
	return json.Marshal([]int(s))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Source) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		*s = Source{id}
		return nil
	}
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("from must be a node id or an array of node ids: %w", err)
	}
	*s = Source(ids)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Source) MarshalYAML() (any, error) {
	if id, ok := s.Single(); ok {
		return id, nil
	}
	return []int(s), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Source) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var id int
		if err := value.Decode(&id); err != nil {
			return err
		}
		*s = Source{id}
	case yaml.SequenceNode:
		var ids []int
		if err := value.Decode(&ids); err != nil {
			return err
		}
		*s = Source(ids)
	default:
		return fmt.Errorf("line %d: from must be a node id or a list of node ids", value.Line)
	}
	return nil
}

// =============================================================================
// Edges
// =============================================================================

// RawEdge is an edge as it appears in a graph document, before hyperedges
// are expanded.
type RawEdge struct {
	From        Source      `json:"from" yaml:"from" bson:"from"`
	To          int         `json:"to" yaml:"to" bson:"to"`
	Interaction *int        `json:"interaction,omitempty" yaml:"interaction,omitempty" bson:"interaction,omitempty"`
	Occurrences *float64    `json:"occurrences,omitempty" yaml:"occurrences,omitempty" bson:"occurrences,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty" bson:"parameters,omitempty"`
}

// EdgeKey identifies an edge by its endpoints.
type EdgeKey struct {
	From, To int
}

func (k EdgeKey) String() string { return fmt.Sprintf("(%d, %d)", k.From, k.To) }

// Edge is a renderable directed edge. The provenance tags are set only on
// edges synthesized from a hyperedge:
//   - Complex and ComplexTo on member→synthetic path edges
//   - Interactome on the synthetic→target edge
type Edge struct {
	From        int         `json:"from"`
	To          int         `json:"to"`
	Interaction *int        `json:"interaction,omitempty"`
	Occurrences *float64    `json:"occurrences,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty"`
	Complex     []int       `json:"complex,omitempty"`
	ComplexTo   *int        `json:"complexTo,omitempty"`
	Interactome []int       `json:"interactome,omitempty"`
}

// Key returns the edge's endpoints.
func (e Edge) Key() EdgeKey { return EdgeKey{From: e.From, To: e.To} }

// IsSelf reports whether e is a self-loop.
func (e Edge) IsSelf() bool { return e.From == e.To }

// IsComplex reports whether e is a synthetic path edge into a complex node.
func (e Edge) IsComplex() bool { return e.Complex != nil }

// IsInteractome reports whether e leaves a complex node toward the
// hyperedge's original target.
func (e Edge) IsInteractome() bool { return e.Interactome != nil }

// Weight is the value fed to the edge-weight scale.
func (e Edge) Weight() float64 {
	if e.Occurrences != nil && *e.Occurrences != 0 {
		return *e.Occurrences
	}
	return geom.DefaultWeight
}

// Title is the tooltip text for e. Interactome edges name the member set
// rather than the synthetic node.
func (e Edge) Title() string {
	from := strconv.Itoa(e.From)
	if e.IsInteractome() {
		from = formatSet(e.Interactome)
	}
	return fmt.Sprintf("Edge = (%s, %d)", from, e.To)
}

// =============================================================================
// Document
// =============================================================================

// Document is a graph as served by the data service: one ranked model of a
// system.
type Document struct {
	Nodes  []Node       `json:"nodes" yaml:"nodes" bson:"nodes"`
	Edges  []RawEdge    `json:"edges" yaml:"edges" bson:"edges"`
	Layout [][2]float64 `json:"layout,omitempty" yaml:"layout,omitempty" bson:"layout,omitempty"`
	Rank   int          `json:"rank" yaml:"rank" bson:"rank"`
	Dist   float64      `json:"dist,omitempty" yaml:"dist,omitempty" bson:"dist,omitempty"`
}

// =============================================================================
// Helpers
// =============================================================================

// SameMembers reports whether a and b hold the same ids, ignoring order.
func SameMembers(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := slices.Clone(a), slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}

// Index maps node id to position in nodes.
func Index(nodes []Node) map[int]int {
	idx := make(map[int]int, len(nodes))
	for i, n := range nodes {
		idx[n.ID] = i
	}
	return idx
}

func formatSet(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func intPtr(v int) *int { return &v }
