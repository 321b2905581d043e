// Package overlay implements selection highlighting on a rendered scene.
//
// An [Overlay] holds at most one selection, a node or an edge, and restyles
// the surface to show it. It writes only element highlights and never
// touches geometry, data or base style, so a render and a selection can be
// applied in either order. Selecting anything first reverts the previous
// selection completely; highlights never stack.
//
// Selecting a synthetic edge (one produced from a hyperedge) highlights the
// whole reconstructed path: every member→complex edge plus the
// complex→target edge. Tags that do not reconstruct a complete path are an
// INCONSISTENT_PROVENANCE error, and the previous selection stays in place.
package overlay

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tsa-lab/tsaview/pkg/errors"
	"github.com/tsa-lab/tsaview/pkg/graph"
	"github.com/tsa-lab/tsaview/pkg/render/scene"
)

const (
	// SelectedStrokeWidth outlines the selected node.
	SelectedStrokeWidth = 5.0

	// DimOpacity is the opacity of edges off the selection.
	DimOpacity = 0.1

	// RaisedOpacity is the opacity of edges on the selection.
	RaisedOpacity = 1.0
)

// State is the overlay's selection state.
type State uint8

const (
	Idle State = iota
	NodeSelected
	EdgeSelected
)

func (s State) String() string {
	switch s {
	case NodeSelected:
		return "node"
	case EdgeSelected:
		return "edge"
	default:
		return "idle"
	}
}

// Selection is what is currently selected.
type Selection struct {
	State State
	Node  int           // valid in NodeSelected
	Edge  graph.EdgeKey // valid in EdgeSelected
}

// String formats s as "none", "node:3" or "edge:0-3".
func (s Selection) String() string {
	switch s.State {
	case NodeSelected:
		return "node:" + strconv.Itoa(s.Node)
	case EdgeSelected:
		return fmt.Sprintf("edge:%d-%d", s.Edge.From, s.Edge.To)
	default:
		return "none"
	}
}

// ParseSelection parses the format produced by Selection.String.
func ParseSelection(s string) (Selection, error) {
	if s == "" || s == "none" {
		return Selection{}, nil
	}
	kind, val, ok := strings.Cut(s, ":")
	if !ok {
		return Selection{}, errors.New(errors.ErrCodeInvalidInput, "selection %q: want node:<id> or edge:<from>-<to>", s)
	}
	switch kind {
	case "node":
		id, err := strconv.Atoi(val)
		if err != nil {
			return Selection{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "selection %q", s)
		}
		return Selection{State: NodeSelected, Node: id}, nil
	case "edge":
		a, b, ok := strings.Cut(val, "-")
		from, errA := strconv.Atoi(a)
		to, errB := strconv.Atoi(b)
		if !ok || errA != nil || errB != nil {
			return Selection{}, errors.New(errors.ErrCodeInvalidInput, "selection %q: want edge:<from>-<to>", s)
		}
		return Selection{State: EdgeSelected, Edge: graph.EdgeKey{From: from, To: to}}, nil
	}
	return Selection{}, errors.New(errors.ErrCodeInvalidInput, "selection %q: unknown kind %q", s, kind)
}

// Overlay owns the selection of one surface.
//
// An Overlay is not safe for concurrent use.
type Overlay struct {
	surface *scene.Surface
	sel     Selection
}

// New returns an idle overlay for s.
func New(s *scene.Surface) *Overlay {
	return &Overlay{surface: s}
}

// Selection returns the current selection.
func (o *Overlay) Selection() Selection { return o.sel }

// Apply selects whatever sel names, or clears for Idle.
func (o *Overlay) Apply(sel Selection) error {
	switch sel.State {
	case NodeSelected:
		return o.SelectNode(sel.Node)
	case EdgeSelected:
		return o.SelectEdge(sel.Edge.From, sel.Edge.To)
	default:
		o.Clear()
		return nil
	}
}

// Clear removes every highlight and returns to Idle.
func (o *Overlay) Clear() {
	o.surface.ClearHighlights()
	o.sel = Selection{}
}

// SelectNode outlines node id in the current accent, raises every edge that
// points at it (directly or as the target of a hyperedge path), pins those
// edges' hovers and dims every other edge.
func (o *Overlay) SelectNode(id int) error {
	node, ok := o.surface.Find(scene.NodeKey(id))
	if !ok || node.Exiting {
		return errors.New(errors.ErrCodeNotFound, "node %d is not rendered", id)
	}

	o.Clear()
	node.Highlight = scene.Highlight{Stroke: o.surface.Accent, StrokeWidth: SelectedStrokeWidth}
	o.emphasize(func(e graph.Edge) bool {
		return e.To == id || (e.ComplexTo != nil && *e.ComplexTo == id)
	})
	o.sel = Selection{State: NodeSelected, Node: id}
	return nil
}

// SelectEdge pins the hover of edge from→to. For a synthetic edge the whole
// hyperedge path is raised and pinned and every other edge dimmed.
func (o *Overlay) SelectEdge(from, to int) error {
	el, ok := o.findEdge(from, to)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "edge (%d, %d) is not rendered", from, to)
	}
	e := *el.Edge

	if !e.IsComplex() && !e.IsInteractome() {
		o.Clear()
		o.pin(e.Key())
		o.sel = Selection{State: EdgeSelected, Edge: e.Key()}
		return nil
	}

	path, err := o.reconstruct(e)
	if err != nil {
		return err
	}
	o.Clear()
	onPath := make(map[graph.EdgeKey]bool, len(path))
	for _, k := range path {
		onPath[k] = true
	}
	o.emphasize(func(e graph.Edge) bool { return onPath[e.Key()] })
	o.sel = Selection{State: EdgeSelected, Edge: e.Key()}
	return nil
}

// Reapply restores the current selection after a render. A selection whose
// node or edge is gone is cleared. Other failures clear too and are returned.
func (o *Overlay) Reapply() error {
	sel := o.sel
	if sel.State == Idle {
		o.Clear()
		return nil
	}
	err := o.Apply(sel)
	if err == nil {
		return nil
	}
	o.Clear()
	if errors.Is(err, errors.ErrCodeNotFound) {
		return nil
	}
	return err
}

// Path returns the expanded edges of the hyperedge that e belongs to, in
// draw order: member→complex edges then the complex→target edge.
func (o *Overlay) Path(from, to int) ([]graph.EdgeKey, error) {
	el, ok := o.findEdge(from, to)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "edge (%d, %d) is not rendered", from, to)
	}
	if !el.Edge.IsComplex() && !el.Edge.IsInteractome() {
		return []graph.EdgeKey{el.Edge.Key()}, nil
	}
	return o.reconstruct(*el.Edge)
}

// reconstruct walks the provenance tags of a synthetic edge.
func (o *Overlay) reconstruct(e graph.Edge) ([]graph.EdgeKey, error) {
	var members []int
	var syn, target int
	switch {
	case e.IsInteractome():
		members, syn, target = e.Interactome, e.From, e.To
	case e.ComplexTo != nil:
		members, syn, target = e.Complex, e.To, *e.ComplexTo
	default:
		return nil, errors.New(errors.ErrCodeInconsistentProvenance,
			"edge %s is tagged complex but has no target", e.Key())
	}

	var path []graph.EdgeKey
	seen := make(map[int]bool, len(members))
	var last *graph.EdgeKey
	for _, c := range o.liveEdges() {
		ce := c.Edge
		switch {
		case ce.IsComplex() && ce.To == syn && ce.ComplexTo != nil && *ce.ComplexTo == target &&
			graph.SameMembers(ce.Complex, members):
			path = append(path, ce.Key())
			seen[ce.From] = true
		case ce.IsInteractome() && ce.From == syn && ce.To == target && graph.SameMembers(ce.Interactome, members):
			k := ce.Key()
			last = &k
		}
	}

	var missing []string
	for _, m := range members {
		if !seen[m] {
			missing = append(missing, fmt.Sprintf("(%d, %d)", m, syn))
		}
	}
	if last == nil {
		missing = append(missing, fmt.Sprintf("(%d, %d)", syn, target))
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeInconsistentProvenance,
			"edge %s: hyperedge %v -> %d is missing %s", e.Key(), members, target, strings.Join(missing, ", "))
	}
	return append(path, *last), nil
}

// emphasize raises and pins the edges matching keep and dims all others.
func (o *Overlay) emphasize(keep func(graph.Edge) bool) {
	for _, el := range o.liveEdges() {
		if keep(*el.Edge) {
			el.Highlight.Opacity = ptr(RaisedOpacity)
			o.pin(el.Edge.Key())
		} else {
			el.Highlight.Opacity = ptr(DimOpacity)
		}
	}
}

func (o *Overlay) pin(k graph.EdgeKey) {
	kind := scene.KindEdgeHover
	if k.From == k.To {
		kind = scene.KindSelfEdgeHover
	}
	if h, ok := o.surface.Find(scene.Key{Kind: kind, From: k.From, To: k.To}); ok && !h.Exiting {
		h.Highlight.Pinned = true
	}
}

func (o *Overlay) findEdge(from, to int) (*scene.Element, bool) {
	kind := scene.KindEdge
	if from == to {
		kind = scene.KindSelfEdge
	}
	el, ok := o.surface.Find(scene.Key{Kind: kind, From: from, To: to})
	if !ok || el.Exiting || el.Edge == nil {
		return nil, false
	}
	return el, true
}

func (o *Overlay) liveEdges() []*scene.Element {
	out := slices.Clone(o.surface.Layer(scene.KindEdge).Live())
	return append(out, o.surface.Layer(scene.KindSelfEdge).Live()...)
}

func ptr(v float64) *float64 { return &v }

// =============================================================================
// Inspection
// =============================================================================

// Summary lists the edges the current highlight raises, dims and pins.
type Summary struct {
	Raised []graph.EdgeKey
	Dimmed []graph.EdgeKey
	Pinned []graph.EdgeKey
}

// Summary reports the highlight state of every live edge.
func (o *Overlay) Summary() Summary {
	var s Summary
	for _, el := range o.liveEdges() {
		if op := el.Highlight.Opacity; op != nil {
			if *op == DimOpacity {
				s.Dimmed = append(s.Dimmed, el.Edge.Key())
			} else {
				s.Raised = append(s.Raised, el.Edge.Key())
			}
		}
	}
	for _, kind := range []scene.Kind{scene.KindEdgeHover, scene.KindSelfEdgeHover} {
		for _, h := range o.surface.Layer(kind).Live() {
			if h.Highlight.Pinned {
				s.Pinned = append(s.Pinned, graph.EdgeKey{From: h.Key.From, To: h.Key.To})
			}
		}
	}
	return s
}
