package scene

import "github.com/tsa-lab/tsaview/pkg/geom"

// DrawOrder lists the layer kinds from back to front.
var DrawOrder = []Kind{KindEdge, KindSelfEdge, KindEdgeHover, KindSelfEdgeHover, KindNode}

// Surface is a drawing area holding one layer per element kind.
//
// A surface is not safe for concurrent use. Each view owns its own.
type Surface struct {
	ID     string
	Width  float64
	Height float64

	// Accent is the current rotating palette color, set by the renderer on
	// every render and used by the overlay for selection feedback.
	Accent string

	layers map[Kind]*Layer
}

// NewSurface returns an empty surface of the given size.
func NewSurface(id string, width, height float64) *Surface {
	s := &Surface{ID: id, Width: width, Height: height, layers: make(map[Kind]*Layer, len(DrawOrder))}
	for _, k := range DrawOrder {
		s.layers[k] = NewLayer(k)
	}
	return s
}

// Layer returns the layer for kind.
func (s *Surface) Layer(kind Kind) *Layer { return s.layers[kind] }

// Layers returns the layers in draw order.
func (s *Surface) Layers() []*Layer {
	out := make([]*Layer, len(DrawOrder))
	for i, k := range DrawOrder {
		out[i] = s.layers[k]
	}
	return out
}

// Find returns the element for k.
func (s *Surface) Find(k Key) (*Element, bool) {
	l, ok := s.layers[k.Kind]
	if !ok {
		return nil, false
	}
	return l.Get(k)
}

// Resize changes the surface size. Elements keep their geometry until the
// next render.
func (s *Surface) Resize(width, height float64) {
	s.Width, s.Height = width, height
}

// Center is the middle of the surface, where elements enter from and exit to.
func (s *Surface) Center() geom.Point {
	return geom.Point{X: s.Width / 2, Y: s.Height / 2}
}

// Len counts elements across all layers, exiting ones included.
func (s *Surface) Len() int {
	n := 0
	for _, l := range s.layers {
		n += l.Len()
	}
	return n
}

// Sweep removes exiting elements from every layer.
func (s *Surface) Sweep() int {
	n := 0
	for _, l := range s.layers {
		n += l.Sweep()
	}
	return n
}

// Each calls fn for every element in draw order.
func (s *Surface) Each(fn func(*Element)) {
	for _, l := range s.Layers() {
		for _, e := range l.Elements() {
			fn(e)
		}
	}
}

// ClearHighlights resets every element's highlight.
func (s *Surface) ClearHighlights() {
	s.Each(func(e *Element) { e.Highlight = Highlight{} })
}
