package graphview

import (
	"context"
	"time"

	"github.com/tsa-lab/tsaview/pkg/errors"
	"github.com/tsa-lab/tsaview/pkg/graph"
	"github.com/tsa-lab/tsaview/pkg/observability"
	"github.com/tsa-lab/tsaview/pkg/render/overlay"
	"github.com/tsa-lab/tsaview/pkg/render/scene"
	"github.com/tsa-lab/tsaview/pkg/scale"
)

// View hosts one interactive graph: a surface, the renderer that draws on
// it, the overlay that highlights it and the click handlers wired to it.
// It keeps the last loaded graph so it can redraw after a resize without
// reloading.
//
// A View is not safe for concurrent use; give each session its own.
type View struct {
	Surface  *scene.Surface
	Renderer *Renderer
	Overlay  *overlay.Overlay

	graph  graph.Expanded
	weight scale.Func
	loaded bool

	onNode func(graph.Node)
	onEdge func(graph.Edge)
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithAnimator sets the renderer's animator. The default is scene.Instant.
func WithAnimator(a scene.Animator) ViewOption {
	return func(v *View) { v.Renderer.Animator = a }
}

// WithColor pins the accent to one color instead of rotating the palette.
func WithColor(color string) ViewOption {
	return func(v *View) { v.Renderer.Palette = NewPaletteOf([]string{color}) }
}

// WithRenderer replaces the renderer, for example to share a logger.
func WithRenderer(r *Renderer) ViewOption {
	return func(v *View) { v.Renderer = r }
}

// NewView returns an empty view of the given size. By default a node click
// selects the node and an edge click selects the edge.
func NewView(id string, width, height float64, opts ...ViewOption) *View {
	s := scene.NewSurface(id, width, height)
	v := &View{
		Surface:  s,
		Renderer: NewRenderer(scene.Instant{}),
		Overlay:  overlay.New(s),
	}
	v.onNode = func(n graph.Node) { _ = v.Overlay.SelectNode(n.ID) }
	v.onEdge = func(e graph.Edge) { _ = v.Overlay.SelectEdge(e.From, e.To) }
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Graph returns the last successfully drawn graph.
func (v *View) Graph() (graph.Expanded, bool) { return v.graph, v.loaded }

// Load preprocesses doc and draws it.
func (v *View) Load(ctx context.Context, doc graph.Document) error {
	start := time.Now()
	x, err := graph.PreprocessDocument(doc)
	observability.Render().OnPreprocess(ctx, len(doc.Nodes), len(doc.Edges), time.Since(start), err)
	if err != nil {
		return err
	}
	return v.Draw(ctx, x, nil)
}

// LoadPrevalence draws the prevalence graph of an occurrence matrix with
// edge widths scaled by occurrence.
func (v *View) LoadPrevalence(ctx context.Context, m graph.Matrix) error {
	doc, err := graph.PrevalenceGraph(m)
	if err != nil {
		return err
	}
	x, err := graph.PreprocessDocument(doc)
	if err != nil {
		return err
	}
	weight := scale.Prevalence(graph.Occurrences(x.Edges), scale.DefaultMaxWidth).Func()
	return v.Draw(ctx, x, weight)
}

// Draw renders an already expanded graph and keeps it for Redraw. On error
// the surface and the kept graph are unchanged.
func (v *View) Draw(ctx context.Context, x graph.Expanded, weight scale.Func) error {
	if err := v.render(ctx, x, weight); err != nil {
		return err
	}
	v.graph, v.weight, v.loaded = x, weight, true
	return v.Overlay.Reapply()
}

// Redraw renders the last graph again at the current surface size.
func (v *View) Redraw(ctx context.Context) error {
	if !v.loaded {
		return errors.New(errors.ErrCodeNotFound, "no graph loaded")
	}
	if err := v.render(ctx, v.graph, v.weight); err != nil {
		return err
	}
	return v.Overlay.Reapply()
}

// Resize changes the surface size and redraws. The unit layout is reused
// and only re-projected.
func (v *View) Resize(ctx context.Context, width, height float64) error {
	if width <= 0 || height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "size %gx%g must be positive", width, height)
	}
	v.Surface.Resize(width, height)
	if !v.loaded {
		return nil
	}
	return v.Redraw(ctx)
}

func (v *View) render(ctx context.Context, x graph.Expanded, weight scale.Func) error {
	start := time.Now()
	stats, err := v.Renderer.RenderPadded(v.Surface, x, weight)
	observability.Render().OnRender(ctx, stats, time.Since(start), err)
	return err
}

// OnNodeClick replaces the node click handler.
func (v *View) OnNodeClick(f func(graph.Node)) { v.onNode = f }

// OnEdgeClick replaces the edge click handler.
func (v *View) OnEdgeClick(f func(graph.Edge)) { v.onEdge = f }

// Click dispatches a click on the element with key k to the registered
// handler. Hovers dispatch as their edge.
func (v *View) Click(ctx context.Context, k scene.Key) error {
	el, ok := v.Surface.Find(k)
	if !ok || el.Exiting {
		return errors.New(errors.ErrCodeNotFound, "no element %s", k)
	}
	switch {
	case el.Node != nil:
		if v.onNode != nil {
			v.onNode(*el.Node)
		}
	case el.Edge != nil:
		if v.onEdge != nil {
			v.onEdge(*el.Edge)
		}
	}
	observability.Render().OnSelect(ctx, v.Overlay.Selection().String(), nil)
	return nil
}

// ClickBackground clears the selection.
func (v *View) ClickBackground(ctx context.Context) {
	v.Overlay.Clear()
	observability.Render().OnSelect(ctx, v.Overlay.Selection().String(), nil)
}

// Select applies a selection directly and reports the outcome to the
// render hooks.
func (v *View) Select(ctx context.Context, sel overlay.Selection) error {
	err := v.Overlay.Apply(sel)
	observability.Render().OnSelect(ctx, sel.String(), err)
	return err
}
