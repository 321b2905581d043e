package scene

import (
	"fmt"

	"github.com/tsa-lab/tsaview/pkg/geom"
	"github.com/tsa-lab/tsaview/pkg/graph"
)

// Kind says which layer an element belongs to.
type Kind uint8

const (
	KindNode Kind = iota
	KindEdge
	KindSelfEdge
	KindEdgeHover
	KindSelfEdgeHover
)

var kindNames = [...]string{
	KindNode:          "nodes",
	KindEdge:          "edges",
	KindSelfEdge:      "self-edges",
	KindEdgeHover:     "edge-hovers",
	KindSelfEdgeHover: "self-edge-hovers",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsEdge reports whether k is one of the visible edge kinds.
func (k Kind) IsEdge() bool { return k == KindEdge || k == KindSelfEdge }

// IsHover reports whether k is one of the hover kinds.
func (k Kind) IsHover() bool { return k == KindEdgeHover || k == KindSelfEdgeHover }

// Key identifies an element. Node keys carry the node id in both From and To.
type Key struct {
	Kind     Kind
	From, To int
}

// NodeKey returns the key of the node element for id.
func NodeKey(id int) Key { return Key{Kind: KindNode, From: id, To: id} }

// EdgeKey returns the key of the edge (or hover) element for e.
func EdgeKey(kind Kind, e graph.Edge) Key { return Key{Kind: kind, From: e.From, To: e.To} }

func (k Key) String() string {
	if k.Kind == KindNode {
		return fmt.Sprintf("%s/%d", k.Kind, k.From)
	}
	return fmt.Sprintf("%s/%d-%d", k.Kind, k.From, k.To)
}

// Shape is the SVG element used to draw an element.
type Shape string

const (
	ShapeCircle Shape = "circle"
	ShapeLine   Shape = "line"
	ShapePath   Shape = "path"
)

// Geometry holds the positional attributes. Only the fields used by the
// element's shape are meaningful.
type Geometry struct {
	CX, CY, R      float64
	X1, Y1, X2, Y2 float64
	D              string
	Transform      string
}

// Style holds the presentation attributes written by the renderer.
type Style struct {
	Fill          string
	FillOpacity   float64
	Stroke        string
	StrokeWidth   float64
	StrokeOpacity float64
	Opacity       float64
	Linecap       string
	MarkerEnd     string
}

// State is everything about an element an animator can move between.
type State struct {
	Geometry Geometry
	Style    Style
}

// Highlight is the selection overlay's override layer. The zero value means
// no override.
type Highlight struct {
	Opacity     *float64 // replaces Style.Opacity
	Stroke      string   // replaces Style.Stroke
	StrokeWidth float64  // replaces Style.StrokeWidth when > 0
	Pinned      bool     // hover shown as if under the pointer
}

// IsZero reports whether h overrides nothing.
func (h Highlight) IsZero() bool {
	return h.Opacity == nil && h.Stroke == "" && h.StrokeWidth == 0 && !h.Pinned
}

// HoverOpacity is the stroke opacity of a hover under the pointer or pinned.
const HoverOpacity = 0.5

// Element is one drawn shape bound to a node or an edge.
type Element struct {
	Key       Key
	Shape     Shape
	Class     string
	Title     string
	Node      *graph.Node
	Edge      *graph.Edge
	Geometry  Geometry
	Style     Style
	Highlight Highlight

	// Exiting is set once the element's datum left the data set. Exiting
	// elements are drawn until they are swept.
	Exiting bool

	// Transitions animate the element into its current State. They are
	// replaced on every render.
	Transitions []Transition
}

// State returns the element's current geometry and style.
func (e *Element) State() State { return State{Geometry: e.Geometry, Style: e.Style} }

// SetState replaces the element's geometry and style.
func (e *Element) SetState(s State) {
	e.Geometry = s.Geometry
	e.Style = s.Style
}

// Effective returns the style with the highlight overrides applied.
func (e *Element) Effective() Style {
	s := e.Style
	h := e.Highlight
	if h.Opacity != nil {
		s.Opacity = *h.Opacity
	}
	if h.Stroke != "" {
		s.Stroke = h.Stroke
	}
	if h.StrokeWidth > 0 {
		s.StrokeWidth = h.StrokeWidth
	}
	if h.Pinned {
		s.StrokeOpacity = HoverOpacity
	}
	return s
}

// Attr is one rendered attribute.
type Attr struct {
	Name, Value string
}

// Attrs returns the element's drawn attributes, highlight included, in a
// stable order.
func (e *Element) Attrs() []Attr {
	return State{Geometry: e.Geometry, Style: e.Effective()}.Attrs(e.Shape)
}

// Overridden reports whether the highlight replaces the named attribute.
func (e *Element) Overridden(name string) bool {
	h := e.Highlight
	switch name {
	case "opacity":
		return h.Opacity != nil
	case "stroke":
		return h.Stroke != ""
	case "stroke-width":
		return h.StrokeWidth > 0
	case "stroke-opacity":
		return h.Pinned
	}
	return false
}

// Attrs lists the attributes of s for the given shape.
func (s State) Attrs(shape Shape) []Attr {
	g, st := s.Geometry, s.Style
	var out []Attr
	add := func(name, value string) { out = append(out, Attr{Name: name, Value: value}) }

	switch shape {
	case ShapeCircle:
		add("cx", geom.Num(g.CX))
		add("cy", geom.Num(g.CY))
		add("r", geom.Num(g.R))
	case ShapeLine:
		add("x1", geom.Num(g.X1))
		add("y1", geom.Num(g.Y1))
		add("x2", geom.Num(g.X2))
		add("y2", geom.Num(g.Y2))
	case ShapePath:
		add("d", g.D)
		if g.Transform != "" {
			add("transform", g.Transform)
		}
	}

	if st.Fill != "" {
		add("fill", st.Fill)
	}
	if shape == ShapeCircle {
		add("fill-opacity", geom.Num(st.FillOpacity))
	}
	if st.Stroke != "" {
		add("stroke", st.Stroke)
		add("stroke-width", geom.Num(st.StrokeWidth))
	}
	if shape != ShapeCircle {
		add("stroke-opacity", geom.Num(st.StrokeOpacity))
	}
	add("opacity", geom.Num(st.Opacity))
	if st.Linecap != "" {
		add("stroke-linecap", st.Linecap)
	}
	if st.MarkerEnd != "" {
		add("marker-end", st.MarkerEnd)
	}
	return out
}

// Attr returns the value of the named attribute of e, highlight included.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs() {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
