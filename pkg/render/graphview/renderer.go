package graphview

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/tsa-lab/tsaview/pkg/geom"
	"github.com/tsa-lab/tsaview/pkg/graph"
	"github.com/tsa-lab/tsaview/pkg/observability"
	"github.com/tsa-lab/tsaview/pkg/render/scene"
	"github.com/tsa-lab/tsaview/pkg/scale"
)

const (
	// HoverWidth is the stroke width of the hover hit target.
	HoverWidth = 15.0

	// ComplexEdgeOpacity de-emphasizes synthetic path edges.
	ComplexEdgeOpacity = 0.5

	// enterStrokeWidth is the stroke a new self-loop starts from.
	enterStrokeWidth = 4.0

	arrowMarker = "url(#" + ArrowMarkerID + ")"
)

// ArrowMarkerID is the id of the arrowhead marker definition sinks emit.
const ArrowMarkerID = "arrow-head"

// Renderer reconciles a surface against a graph. Each call to Render runs
// the same keyed diff: there is no separate first draw.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	Animator scene.Animator
	Palette  *Palette
	Logger   *log.Logger
}

// NewRenderer returns a renderer with the given animator, a fresh palette
// and a discarding logger.
func NewRenderer(a scene.Animator) *Renderer {
	if a == nil {
		a = scene.Instant{}
	}
	return &Renderer{
		Animator: a,
		Palette:  NewPalette(),
		Logger:   log.New(io.Discard),
	}
}

// frame is everything a render pass derives once from its inputs.
type frame struct {
	surface *scene.Surface
	index   map[int]int
	layout  []geom.Point
	radius  float64
	weight  scale.Func
	accent  string
	stats   *observability.RenderStats
}

func (f *frame) center(id int) geom.Point { return f.layout[f.index[id]] }

func (f *frame) strokeWidth(e graph.Edge) float64 {
	return geom.StrokeWidth(f.weight(e.Weight()), f.surface.Width, f.surface.Height)
}

// Render draws nodes and edges at pixel positions layout onto s.
//
// The batch is validated before anything on the surface changes; on error s
// is left exactly as it was. weight scales edge weights before they become
// stroke widths and may be nil for the identity.
func (r *Renderer) Render(s *scene.Surface, nodes []graph.Node, edges []graph.Edge, layout []geom.Point, radius float64, weight scale.Func) (observability.RenderStats, error) {
	stats := observability.RenderStats{Surface: s.ID}
	if err := graph.Validate(nodes, edges, layout); err != nil {
		return stats, err
	}
	if weight == nil {
		weight = scale.Identity
	}

	stats.Swept = s.Sweep()
	f := &frame{
		surface: s,
		index:   graph.Index(nodes),
		layout:  layout,
		radius:  radius,
		weight:  weight,
		accent:  r.Palette.Next(),
		stats:   &stats,
	}
	s.Accent = f.accent

	var lines, loops []graph.Edge
	for _, e := range edges {
		if e.IsSelf() {
			loops = append(loops, e)
		} else {
			lines = append(lines, e)
		}
	}

	r.drawLineEdges(f, lines)
	r.drawSelfEdges(f, loops)
	r.drawEdgeHovers(f, lines)
	r.drawSelfEdgeHovers(f, loops)
	r.drawNodes(f, nodes)

	r.logger().Debug("rendered", "surface", s.ID, "accent", f.accent,
		"enter", stats.Entered, "update", stats.Updated, "exit", stats.Exited, "swept", stats.Swept)
	return stats, nil
}

// RenderPadded projects an expanded graph's unit layout onto s and renders
// it with the node radius derived from the surface size.
func (r *Renderer) RenderPadded(s *scene.Surface, x graph.Expanded, weight scale.Func) (observability.RenderStats, error) {
	padded := geom.Pad(x.Layout, s.Width, s.Height)
	return r.Render(s, x.Nodes, x.Edges, padded, geom.NodeRadius(s.Width, s.Height), weight)
}

func (r *Renderer) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard)
	}
	return r.Logger
}

// =============================================================================
// Join
// =============================================================================

// layerJoin describes how one layer is reconciled. final is an element's
// state for a datum and enter the collapsed state a new element grows from.
// via, if set, gives the intermediate state of a two-phase move.
type layerJoin[T any] struct {
	kind  scene.Kind
	key   func(T) scene.Key
	shape scene.Shape
	class func(T) string
	title func(T) string
	bind  func(*scene.Element, T)
	final func(T) scene.State
	enter func(T) scene.State
	via   func(T) *scene.State

	// exit returns the state an exiting element vanishes to, or nil to
	// remove the element at once.
	exit func(*scene.Element) *scene.State
}

func runJoin[T any](r *Renderer, f *frame, j layerJoin[T], data []T) {
	layer := f.surface.Layer(j.kind)
	keys := make([]scene.Key, len(data))
	byKey := make(map[scene.Key]T, len(data))
	for i, d := range data {
		keys[i] = j.key(d)
		byKey[keys[i]] = d
	}
	diff := layer.Join(keys)

	for _, el := range diff.Exit {
		f.stats.Exited++
		target := j.exit(el)
		if target == nil || !r.Animator.Retain() {
			layer.Remove(el.Key)
			continue
		}
		from := el.State()
		el.SetState(*target)
		el.Exiting = true
		el.Highlight = scene.Highlight{}
		r.Animator.Animate(el, scene.Motion{Phase: scene.PhaseExit, From: from})
	}

	for _, k := range diff.Enter {
		f.stats.Entered++
		d := byKey[k]
		el := &scene.Element{Key: k, Shape: j.shape}
		layer.Insert(el)
		update(r, j, el, d, j.enter(d), scene.PhaseEnter)
	}

	for _, el := range diff.Update {
		f.stats.Updated++
		update(r, j, el, byKey[el.Key], el.State(), scene.PhaseUpdate)
	}
}

func update[T any](r *Renderer, j layerJoin[T], el *scene.Element, d T, from scene.State, phase scene.Phase) {
	el.Exiting = false
	el.Class = j.class(d)
	el.Title = j.title(d)
	j.bind(el, d)
	el.SetState(j.final(d))

	m := scene.Motion{Phase: phase, From: from}
	if j.via != nil {
		m.Via = j.via(d)
	}
	r.Animator.Animate(el, m)
}

// =============================================================================
// Layers
// =============================================================================

func edgeClass(e graph.Edge) string {
	if e.IsComplex() {
		return "edge complex"
	}
	return "edge"
}

func hoverClass(graph.Edge) string { return "edge-hover" }

func edgeTitle(e graph.Edge) string { return e.Title() }

func bindEdge(el *scene.Element, e graph.Edge) {
	ec := e
	el.Edge = &ec
	el.Node = nil
}

func edgeOpacity(e graph.Edge) float64 {
	if e.IsComplex() {
		return ComplexEdgeOpacity
	}
	return 1
}

func lineGeometry(a, b geom.Point) scene.Geometry {
	return scene.Geometry{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y}
}

func (r *Renderer) drawLineEdges(f *frame, edges []graph.Edge) {
	c := f.surface.Center()
	trimmed := func(e graph.Edge) (geom.Point, geom.Point) {
		sw := f.strokeWidth(e)
		return geom.TrimLine(f.center(e.From), f.center(e.To), f.radius, geom.ArrowGap(sw))
	}
	style := func(e graph.Edge, opacity float64) scene.Style {
		return scene.Style{
			Stroke:        InteractionColor(e.Interaction),
			StrokeWidth:   f.strokeWidth(e),
			StrokeOpacity: 1,
			Opacity:       opacity,
			MarkerEnd:     arrowMarker,
		}
	}

	runJoin(r, f, layerJoin[graph.Edge]{
		kind:  scene.KindEdge,
		key:   func(e graph.Edge) scene.Key { return scene.EdgeKey(scene.KindEdge, e) },
		shape: scene.ShapeLine,
		class: edgeClass,
		title: edgeTitle,
		bind:  bindEdge,
		final: func(e graph.Edge) scene.State {
			start, end := trimmed(e)
			return scene.State{Geometry: lineGeometry(start, end), Style: style(e, edgeOpacity(e))}
		},
		enter: func(e graph.Edge) scene.State {
			return scene.State{Geometry: lineGeometry(c, c), Style: style(e, 0)}
		},
		via: func(e graph.Edge) *scene.State {
			start, _ := trimmed(e)
			return &scene.State{Geometry: lineGeometry(start, start), Style: style(e, 0)}
		},
		exit: func(el *scene.Element) *scene.State {
			st := el.Style
			st.StrokeOpacity = 0
			st.MarkerEnd = ""
			return &scene.State{Geometry: lineGeometry(c, c), Style: st}
		},
	}, edges)
}

func (r *Renderer) loopGeometry(f *frame, e graph.Edge) scene.Geometry {
	center := f.center(e.From)
	arc := geom.SelfLoop(center, f.radius, f.strokeWidth(e))
	rot := geom.LoopRotation(f.index[e.From], len(f.layout))
	return scene.Geometry{D: arc.Path(), Transform: geom.Rotate(rot, center)}
}

func (r *Renderer) drawSelfEdges(f *frame, edges []graph.Edge) {
	style := func(e graph.Edge, opacity, width float64) scene.Style {
		return scene.Style{
			Fill:          "transparent",
			Stroke:        InteractionColor(e.Interaction),
			StrokeWidth:   width,
			StrokeOpacity: 1,
			Opacity:       opacity,
			Linecap:       "round",
			MarkerEnd:     arrowMarker,
		}
	}

	runJoin(r, f, layerJoin[graph.Edge]{
		kind:  scene.KindSelfEdge,
		key:   func(e graph.Edge) scene.Key { return scene.EdgeKey(scene.KindSelfEdge, e) },
		shape: scene.ShapePath,
		class: edgeClass,
		title: edgeTitle,
		bind:  bindEdge,
		final: func(e graph.Edge) scene.State {
			return scene.State{Geometry: r.loopGeometry(f, e), Style: style(e, edgeOpacity(e), f.strokeWidth(e))}
		},
		enter: func(e graph.Edge) scene.State {
			return scene.State{Geometry: r.loopGeometry(f, e), Style: style(e, 0, enterStrokeWidth)}
		},
		via: func(e graph.Edge) *scene.State {
			return &scene.State{Geometry: r.loopGeometry(f, e), Style: style(e, 0, f.strokeWidth(e))}
		},
		exit: func(el *scene.Element) *scene.State {
			st := el.Style
			st.Opacity = 0
			return &scene.State{Geometry: el.Geometry, Style: st}
		},
	}, edges)
}

func (r *Renderer) hoverStyle(f *frame, width float64, fill string) scene.Style {
	return scene.Style{
		Fill:          fill,
		Stroke:        f.accent,
		StrokeWidth:   width,
		StrokeOpacity: 0,
		Opacity:       1,
	}
}

func removeNow(*scene.Element) *scene.State { return nil }

func (r *Renderer) drawEdgeHovers(f *frame, edges []graph.Edge) {
	c := f.surface.Center()
	runJoin(r, f, layerJoin[graph.Edge]{
		kind:  scene.KindEdgeHover,
		key:   func(e graph.Edge) scene.Key { return scene.EdgeKey(scene.KindEdgeHover, e) },
		shape: scene.ShapeLine,
		class: hoverClass,
		title: edgeTitle,
		bind:  bindEdge,
		final: func(e graph.Edge) scene.State {
			sw := f.strokeWidth(e)
			start, end := geom.TrimLine(f.center(e.From), f.center(e.To), f.radius, geom.ArrowGap(sw))
			return scene.State{Geometry: lineGeometry(start, end), Style: r.hoverStyle(f, HoverWidth, "")}
		},
		enter: func(graph.Edge) scene.State {
			return scene.State{Geometry: lineGeometry(c, c), Style: r.hoverStyle(f, 0, "")}
		},
		via: func(e graph.Edge) *scene.State {
			src := f.center(e.From)
			return &scene.State{Geometry: lineGeometry(src, src), Style: r.hoverStyle(f, 0, "")}
		},
		exit: removeNow,
	}, edges)
}

func (r *Renderer) drawSelfEdgeHovers(f *frame, edges []graph.Edge) {
	runJoin(r, f, layerJoin[graph.Edge]{
		kind:  scene.KindSelfEdgeHover,
		key:   func(e graph.Edge) scene.Key { return scene.EdgeKey(scene.KindSelfEdgeHover, e) },
		shape: scene.ShapePath,
		class: hoverClass,
		title: edgeTitle,
		bind:  bindEdge,
		final: func(e graph.Edge) scene.State {
			return scene.State{Geometry: r.loopGeometry(f, e), Style: r.hoverStyle(f, HoverWidth, "transparent")}
		},
		enter: func(e graph.Edge) scene.State {
			return scene.State{Geometry: r.loopGeometry(f, e), Style: r.hoverStyle(f, 0, "transparent")}
		},
		exit: removeNow,
	}, edges)
}

func (r *Renderer) drawNodes(f *frame, nodes []graph.Node) {
	c := f.surface.Center()
	radius := func(n graph.Node) float64 {
		if n.IsComplex() {
			return f.radius / 2
		}
		return f.radius
	}
	fill := func(n graph.Node) string {
		if n.IsComplex() {
			return ComplexFill
		}
		return f.accent
	}

	runJoin(r, f, layerJoin[graph.Node]{
		kind:  scene.KindNode,
		key:   func(n graph.Node) scene.Key { return scene.NodeKey(n.ID) },
		shape: scene.ShapeCircle,
		class: func(n graph.Node) string {
			if n.IsComplex() {
				return "node complex"
			}
			return "node"
		},
		title: func(n graph.Node) string { return n.Title() },
		bind: func(el *scene.Element, n graph.Node) {
			nc := n
			el.Node = &nc
			el.Edge = nil
		},
		final: func(n graph.Node) scene.State {
			p := f.center(n.ID)
			return scene.State{
				Geometry: scene.Geometry{CX: p.X, CY: p.Y, R: radius(n)},
				Style:    scene.Style{Fill: fill(n), FillOpacity: 1, Opacity: 1},
			}
		},
		enter: func(n graph.Node) scene.State {
			return scene.State{
				Geometry: scene.Geometry{CX: c.X, CY: c.Y, R: radius(n)},
				Style:    scene.Style{Fill: InitialColor, FillOpacity: 0, Opacity: 1},
			}
		},
		exit: func(el *scene.Element) *scene.State {
			st := el.Style
			st.FillOpacity = 0
			g := el.Geometry
			g.CX, g.CY = c.X, c.Y
			return &scene.State{Geometry: g, Style: st}
		},
	}, nodes)
}
