package graphview

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/tsa-lab/tsaview/pkg/errors"
	"github.com/tsa-lab/tsaview/pkg/geom"
	"github.com/tsa-lab/tsaview/pkg/graph"
	"github.com/tsa-lab/tsaview/pkg/render/scene"
)

func hyperDoc() graph.Document {
	one := 1
	return graph.Document{
		Nodes: []graph.Node{{ID: 0}, {ID: 1}, {ID: 2}},
		Edges: []graph.RawEdge{
			{From: graph.Source{0, 1}, To: 2, Interaction: &one},
			{From: graph.Source{0}, To: 1},
			{From: graph.Source{2}, To: 2},
		},
	}
}

func expand(t *testing.T, doc graph.Document) graph.Expanded {
	t.Helper()
	x, err := graph.PreprocessDocument(doc)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	return x
}

func snapshot(s *scene.Surface) map[scene.Key][]scene.Attr {
	out := map[scene.Key][]scene.Attr{}
	s.Each(func(e *scene.Element) { out[e.Key] = e.Attrs() })
	return out
}

func TestRenderLayers(t *testing.T) {
	s := scene.NewSurface("g", 800, 600)
	r := NewRenderer(scene.Instant{})
	stats, err := r.RenderPadded(s, expand(t, hyperDoc()), nil)
	if err != nil {
		t.Fatal(err)
	}

	want := map[scene.Kind]int{
		scene.KindEdge:          4,
		scene.KindSelfEdge:      1,
		scene.KindEdgeHover:     4,
		scene.KindSelfEdgeHover: 1,
		scene.KindNode:          4,
	}
	for kind, n := range want {
		if got := s.Layer(kind).Len(); got != n {
			t.Errorf("%s: %d elements, want %d", kind, got, n)
		}
	}
	if stats.Entered != 14 || stats.Updated != 0 || stats.Exited != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if s.Accent != Category10[0] {
		t.Errorf("accent = %s, want first palette color", s.Accent)
	}
}

func TestRenderLineGeometry(t *testing.T) {
	s := scene.NewSurface("g", 800, 600)
	r := NewRenderer(nil)
	x := expand(t, hyperDoc())
	if _, err := r.RenderPadded(s, x, nil); err != nil {
		t.Fatal(err)
	}

	padded := geom.Pad(x.Layout, 800, 600)
	radius := geom.NodeRadius(800, 600)
	el, ok := s.Find(scene.Key{Kind: scene.KindEdge, From: 0, To: 1})
	if !ok {
		t.Fatal("edge (0, 1) not drawn")
	}
	start := geom.Point{X: el.Geometry.X1, Y: el.Geometry.Y1}
	end := geom.Point{X: el.Geometry.X2, Y: el.Geometry.Y2}
	if d := padded[0].Dist(start); math.Abs(d-radius) > 1e-9 {
		t.Errorf("start is %g from source, want %g", d, radius)
	}
	sw := geom.StrokeWidth(geom.DefaultWeight, 800, 600)
	if d := padded[1].Dist(end); math.Abs(d-(radius+geom.ArrowGap(sw))) > 1e-9 {
		t.Errorf("end is %g from target", d)
	}
	if el.Style.StrokeWidth != sw || el.Style.Stroke != DefaultEdgeColor {
		t.Errorf("style = %+v", el.Style)
	}
	if v, _ := el.Attr("marker-end"); v != "url(#arrow-head)" {
		t.Errorf("marker-end = %q", v)
	}
	if el.Title != "Edge = (0, 1)" {
		t.Errorf("title = %q", el.Title)
	}

	hover, _ := s.Find(scene.Key{Kind: scene.KindEdgeHover, From: 0, To: 1})
	if hover.Geometry != el.Geometry || hover.Style.StrokeWidth != HoverWidth || hover.Style.StrokeOpacity != 0 {
		t.Errorf("hover = %+v", hover)
	}
}

func TestRenderSelfLoop(t *testing.T) {
	s := scene.NewSurface("g", 800, 600)
	r := NewRenderer(nil)
	x := expand(t, hyperDoc())
	if _, err := r.RenderPadded(s, x, nil); err != nil {
		t.Fatal(err)
	}
	loop, ok := s.Find(scene.Key{Kind: scene.KindSelfEdge, From: 2, To: 2})
	if !ok {
		t.Fatal("self-loop not drawn")
	}
	padded := geom.Pad(x.Layout, 800, 600)
	sw := geom.StrokeWidth(geom.DefaultWeight, 800, 600)
	wantD := geom.SelfLoop(padded[2], geom.NodeRadius(800, 600), sw).Path()
	if loop.Geometry.D != wantD {
		t.Errorf("d = %q, want %q", loop.Geometry.D, wantD)
	}
	// node 2 of 4: 180 degrees
	if !strings.HasPrefix(loop.Geometry.Transform, "rotate(180 ") {
		t.Errorf("transform = %q", loop.Geometry.Transform)
	}
	if loop.Style.Linecap != "round" || loop.Style.Fill != "transparent" {
		t.Errorf("style = %+v", loop.Style)
	}
}

func TestRenderComplexStyling(t *testing.T) {
	s := scene.NewSurface("g", 800, 600)
	r := NewRenderer(nil)
	if _, err := r.RenderPadded(s, expand(t, hyperDoc()), nil); err != nil {
		t.Fatal(err)
	}
	radius := geom.NodeRadius(800, 600)

	syn, _ := s.Find(scene.NodeKey(3))
	if syn.Geometry.R != radius/2 || syn.Style.Fill != ComplexFill || syn.Class != "node complex" {
		t.Errorf("complex node = %+v", syn)
	}
	if syn.Title != "Complex {0, 1}" {
		t.Errorf("complex title = %q", syn.Title)
	}
	plain, _ := s.Find(scene.NodeKey(0))
	if plain.Geometry.R != radius || plain.Style.Fill != s.Accent {
		t.Errorf("node = %+v", plain)
	}

	path, _ := s.Find(scene.Key{Kind: scene.KindEdge, From: 0, To: 3})
	if path.Style.Opacity != ComplexEdgeOpacity || path.Style.Stroke != "green" {
		t.Errorf("path edge style = %+v", path.Style)
	}
	inter, _ := s.Find(scene.Key{Kind: scene.KindEdge, From: 3, To: 2})
	if inter.Style.Opacity != 1 || inter.Title != "Edge = ({0, 1}, 2)" {
		t.Errorf("interactome edge = %+v", inter)
	}
}

func TestRenderIdempotent(t *testing.T) {
	s := scene.NewSurface("g", 640, 480)
	r := NewRenderer(nil)
	r.Palette = NewPaletteOf([]string{"teal"})
	x := expand(t, hyperDoc())

	if _, err := r.RenderPadded(s, x, nil); err != nil {
		t.Fatal(err)
	}
	first := snapshot(s)
	stats, err := r.RenderPadded(s, x, nil)
	if err != nil {
		t.Fatal(err)
	}
	second := snapshot(s)

	if stats.Entered != 0 || stats.Exited != 0 || stats.Updated != 14 {
		t.Errorf("second render stats = %+v", stats)
	}
	if len(first) != len(second) {
		t.Fatalf("element count changed: %d -> %d", len(first), len(second))
	}
	for k, attrs := range first {
		got := second[k]
		if len(got) != len(attrs) {
			t.Errorf("%s: attrs changed", k)
			continue
		}
		for i := range attrs {
			if got[i] != attrs[i] {
				t.Errorf("%s: %s = %s, was %s", k, got[i].Name, got[i].Value, attrs[i].Value)
			}
		}
	}
	s.Each(func(e *scene.Element) {
		if e.Exiting {
			t.Errorf("%s left exiting", e.Key)
		}
	})
}

func TestRenderExitInstant(t *testing.T) {
	s := scene.NewSurface("g", 800, 600)
	r := NewRenderer(scene.Instant{})
	if _, err := r.RenderPadded(s, expand(t, hyperDoc()), nil); err != nil {
		t.Fatal(err)
	}

	small := graph.Document{Nodes: []graph.Node{{ID: 0}, {ID: 1}}, Edges: []graph.RawEdge{{From: graph.Source{0}, To: 1}}}
	stats, err := r.RenderPadded(s, expand(t, small), nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Exited != 10 || stats.Updated != 4 {
		t.Errorf("stats = %+v", stats)
	}
	if s.Len() != 4 {
		t.Errorf("surface holds %d elements, want 4", s.Len())
	}
}

func TestRenderExitTimedIsSweptNextRender(t *testing.T) {
	s := scene.NewSurface("g", 800, 600)
	r := NewRenderer(scene.Timed{})
	if _, err := r.RenderPadded(s, expand(t, hyperDoc()), nil); err != nil {
		t.Fatal(err)
	}
	node, _ := s.Find(scene.NodeKey(0))
	if len(node.Transitions) == 0 {
		t.Fatal("timed render should record transitions")
	}

	small := graph.Document{Nodes: []graph.Node{{ID: 0}, {ID: 1}}, Edges: []graph.RawEdge{{From: graph.Source{0}, To: 1}}}
	x := expand(t, small)
	if _, err := r.RenderPadded(s, x, nil); err != nil {
		t.Fatal(err)
	}

	gone, ok := s.Find(scene.NodeKey(2))
	if !ok || !gone.Exiting {
		t.Fatal("exiting node should stay until the next render")
	}
	if gone.Geometry.CX != 400 || gone.Geometry.CY != 300 || gone.Style.FillOpacity != 0 {
		t.Errorf("exiting node should collapse to the center: %+v", gone)
	}
	if _, ok := s.Find(scene.Key{Kind: scene.KindEdgeHover, From: 0, To: 3}); ok {
		t.Error("hovers are removed at once")
	}

	stats, err := r.RenderPadded(s, x, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Swept == 0 {
		t.Error("third render should sweep exiting elements")
	}
	s.Each(func(e *scene.Element) {
		if e.Exiting {
			t.Errorf("%s still exiting", e.Key)
		}
	})
}

func TestRenderValidationLeavesSurfaceUntouched(t *testing.T) {
	s := scene.NewSurface("g", 800, 600)
	r := NewRenderer(nil)
	x := expand(t, hyperDoc())
	if _, err := r.RenderPadded(s, x, nil); err != nil {
		t.Fatal(err)
	}
	before := snapshot(s)
	accent := s.Accent

	bad := x
	bad.Layout = x.Layout[:2]
	_, err := r.RenderPadded(s, bad, nil)
	if !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Fatalf("err = %v, want INVALID_GRAPH", err)
	}
	if s.Accent != accent {
		t.Error("failed render advanced the accent")
	}
	after := snapshot(s)
	if len(after) != len(before) {
		t.Fatalf("element count changed on failed render")
	}
	for k, attrs := range before {
		for i := range attrs {
			if after[k][i] != attrs[i] {
				t.Errorf("%s changed on failed render", k)
			}
		}
	}

	empty := graph.Expanded{}
	if _, err := r.RenderPadded(s, empty, nil); err == nil {
		t.Error("empty graph should fail")
	}
}

func TestRenderWeightScale(t *testing.T) {
	s := scene.NewSurface("g", 1000, 500)
	r := NewRenderer(nil)
	occ := 3.0
	x := expand(t, graph.Document{
		Nodes: []graph.Node{{ID: 0}, {ID: 1}},
		Edges: []graph.RawEdge{{From: graph.Source{0}, To: 1, Occurrences: &occ}},
	})
	double := func(v float64) float64 { return 2 * v }
	if _, err := r.RenderPadded(s, x, double); err != nil {
		t.Fatal(err)
	}
	el, _ := s.Find(scene.Key{Kind: scene.KindEdge, From: 0, To: 1})
	if math.Abs(el.Style.StrokeWidth-6) > 1e-9 {
		t.Errorf("stroke width = %g, want 6", el.Style.StrokeWidth)
	}
}

func TestPalette(t *testing.T) {
	p := NewPalette()
	if p.Current() != InitialColor {
		t.Errorf("initial = %s", p.Current())
	}
	for i := range Category10 {
		if got := p.Next(); got != Category10[i] {
			t.Errorf("Next #%d = %s", i, got)
		}
	}
	if got := p.Next(); got != Category10[0] {
		t.Errorf("palette should wrap, got %s", got)
	}
	if got := NewPaletteOf(nil).Next(); got != InitialColor {
		t.Errorf("empty palette = %s", got)
	}
}

func TestInteractionColor(t *testing.T) {
	tests := []struct {
		in   *int
		want string
	}{
		{nil, "black"},
		{intp(0), "red"},
		{intp(3), "yellow"},
		{intp(6), "red"},
		{intp(-1), "grey"},
	}
	for _, tt := range tests {
		if got := InteractionColor(tt.in); got != tt.want {
			t.Errorf("InteractionColor(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestViewLoadResize(t *testing.T) {
	ctx := context.Background()
	v := NewView("g", 800, 600)
	if err := v.Redraw(ctx); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Redraw before Load: err = %v", err)
	}
	if err := v.Load(ctx, hyperDoc()); err != nil {
		t.Fatal(err)
	}
	if err := v.Resize(ctx, 400, 400); err != nil {
		t.Fatal(err)
	}
	node, _ := v.Surface.Find(scene.NodeKey(0))
	if node.Geometry.R != geom.NodeRadius(400, 400) {
		t.Errorf("radius after resize = %g", node.Geometry.R)
	}
	if err := v.Resize(ctx, 0, 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero size: err = %v", err)
	}

	if err := v.Load(ctx, graph.Document{}); err == nil {
		t.Error("empty document should fail")
	}
	if x, ok := v.Graph(); !ok || len(x.Nodes) != 4 {
		t.Error("failed load should keep the previous graph")
	}
}

func TestViewClick(t *testing.T) {
	ctx := context.Background()
	v := NewView("g", 800, 600)
	if err := v.Load(ctx, hyperDoc()); err != nil {
		t.Fatal(err)
	}

	if err := v.Click(ctx, scene.NodeKey(1)); err != nil {
		t.Fatal(err)
	}
	if sel := v.Overlay.Selection(); sel.String() != "node:1" {
		t.Errorf("selection = %s", sel)
	}

	var clicked graph.Edge
	v.OnEdgeClick(func(e graph.Edge) { clicked = e })
	if err := v.Click(ctx, scene.Key{Kind: scene.KindEdgeHover, From: 0, To: 1}); err != nil {
		t.Fatal(err)
	}
	if clicked.Key() != (graph.EdgeKey{From: 0, To: 1}) {
		t.Errorf("edge handler got %v", clicked.Key())
	}

	if err := v.Click(ctx, scene.NodeKey(42)); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown element: err = %v", err)
	}

	v.ClickBackground(ctx)
	if v.Overlay.Selection().String() != "none" {
		t.Error("background click should clear")
	}
}

func TestViewPrevalence(t *testing.T) {
	v := NewView("p", 500, 500, WithColor("purple"))
	if err := v.LoadPrevalence(context.Background(), graph.Matrix{{0, 4}, {1, 0}}); err != nil {
		t.Fatal(err)
	}
	heavy, _ := v.Surface.Find(scene.Key{Kind: scene.KindEdge, From: 0, To: 1})
	light, _ := v.Surface.Find(scene.Key{Kind: scene.KindEdge, From: 1, To: 0})
	if math.Abs(heavy.Style.StrokeWidth-10) > 1e-9 || math.Abs(light.Style.StrokeWidth-1) > 1e-9 {
		t.Errorf("widths = %g, %g; want 10, 1", heavy.Style.StrokeWidth, light.Style.StrokeWidth)
	}
	if v.Surface.Accent != "purple" {
		t.Errorf("accent = %s", v.Surface.Accent)
	}
}

func intp(v int) *int { return &v }
