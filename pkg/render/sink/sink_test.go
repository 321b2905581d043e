package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/tsa-lab/tsaview/pkg/graph"
	"github.com/tsa-lab/tsaview/pkg/render/graphview"
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

var smallDoc = graph.Document{
	Nodes: []graph.Node{{ID: 0}, {ID: 1}},
	Edges: []graph.RawEdge{{From: graph.Source{0}, To: 1}},
}

func view(t *testing.T, opts ...graphview.ViewOption) *graphview.View {
	t.Helper()
	v := graphview.NewView("g", 800, 600, opts...)
	if err := v.Load(context.Background(), hyperDoc()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return v
}

func TestRenderSVG(t *testing.T) {
	v := view(t)
	svg := string(RenderSVG(v.Surface))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" id="g" viewBox="0 0 800 600"`,
		`<marker id="arrow-head" orient="auto" refX="0.1" refY="2" markerWidth="4" markerHeight="4">`,
		`<path d="M 0 0 V 4 L 4 2 Z" fill="black"/>`,
		`<title>Complex {0, 1}</title>`,
		`<title>Edge = ({0, 1}, 2)</title>`,
		`marker-end="url(#arrow-head)"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("missing %s", want)
		}
	}
	if strings.Contains(svg, "<animate") || strings.Contains(svg, "<script") {
		t.Error("static SVG should have no animation or script")
	}

	last := -1
	for _, name := range []string{"edges", "self-edges", "edge-hovers", "self-edge-hovers", "nodes"} {
		i := strings.Index(svg, `<g class="`+name+`">`)
		if i <= last {
			t.Errorf("layer %s out of draw order", name)
		}
		last = i
	}
}

func TestRenderSVGEscapesID(t *testing.T) {
	v := graphview.NewView(`R&D "final"`, 800, 600)
	if err := v.Load(context.Background(), smallDoc); err != nil {
		t.Fatal(err)
	}
	svg := RenderSVG(v.Surface)

	if !bytes.Contains(svg, []byte(`id="R&amp;D &#34;final&#34;"`)) {
		t.Errorf("id not escaped: %s", svg[:min(len(svg), 120)])
	}
	dec := xml.NewDecoder(bytes.NewReader(svg))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v", err)
		}
	}
}

func TestRenderSVGInteraction(t *testing.T) {
	v := view(t)
	if err := v.Overlay.SelectEdge(0, 1); err != nil {
		t.Fatal(err)
	}
	svg := string(RenderSVG(v.Surface, WithInteraction()))
	if !strings.Contains(svg, "tsaview:click") {
		t.Error("missing click script")
	}
	if !strings.Contains(svg, `data-key="edge-hovers/0-1" class="edge-hover pinned"`) {
		t.Error("pinned hover should carry the pinned class")
	}
}

func TestRenderSVGExiting(t *testing.T) {
	v := view(t, graphview.WithAnimator(scene.Timed{}))
	if err := v.Load(context.Background(), smallDoc); err != nil {
		t.Fatal(err)
	}

	static := string(RenderSVG(v.Surface))
	if strings.Contains(static, `data-key="nodes/2"`) {
		t.Error("static SVG should omit exiting elements")
	}
	animated := string(RenderSVG(v.Surface, WithAnimation()))
	if !strings.Contains(animated, `data-key="nodes/2" class="node exiting"`) {
		t.Error("animated SVG should keep exiting elements")
	}
	if !strings.Contains(animated, `<animate attributeName="fill-opacity" from="1" to="0"`) {
		t.Error("exiting node should fade out")
	}
}

func TestRenderSVGAnimationStartsFromEnterState(t *testing.T) {
	v := view(t, graphview.WithAnimator(scene.Timed{}))
	svg := string(RenderSVG(v.Surface, WithAnimation()))
	if !strings.Contains(svg, `data-key="nodes/0" class="node" cx="400" cy="300"`) {
		t.Error("entering node should start at the surface center")
	}
	if !strings.Contains(svg, `<animate attributeName="cx" from="400"`) {
		t.Error("missing cx animation")
	}
}

func TestRenderElementSkipsOverriddenTransitions(t *testing.T) {
	op := 0.1
	e := &scene.Element{
		Key:   scene.Key{Kind: scene.KindEdge, From: 0, To: 1},
		Shape: scene.ShapeLine,
		Class: "edge",
		Style: scene.Style{Stroke: "black", StrokeWidth: 2, StrokeOpacity: 1, Opacity: 1},
		Highlight: scene.Highlight{
			Opacity: &op,
		},
		Transitions: []scene.Transition{
			{Attr: "opacity", From: "0", To: "1", Dur: time.Second},
			{Attr: "stroke-width", From: "4", To: "2", Dur: time.Second},
		},
	}

	var buf bytes.Buffer
	r := svgRenderer{animate: true}
	r.renderElement(&buf, e)
	out := buf.String()

	if strings.Contains(out, `attributeName="opacity"`) {
		t.Error("highlighted opacity should not be animated")
	}
	if !strings.Contains(out, `opacity="0.1"`) {
		t.Error("highlighted opacity should be drawn as is")
	}
	if !strings.Contains(out, `stroke-width="4"`) || !strings.Contains(out, `<animate attributeName="stroke-width" from="4" to="2" begin="0ms" dur="1000ms" fill="freeze"/>`) {
		t.Errorf("stroke-width should start at 4 and animate: %s", out)
	}
}

func TestRenderTransitionSet(t *testing.T) {
	var buf bytes.Buffer
	renderTransition(&buf, scene.Transition{Attr: "transform", To: "rotate(90 1 2)", Begin: 175 * time.Millisecond})
	want := `<set attributeName="transform" to="rotate(90 1 2)" begin="175ms" fill="freeze"/>`
	if buf.String() != want {
		t.Errorf("got %s, want %s", buf.String(), want)
	}
}

func TestRenderJSON(t *testing.T) {
	v := view(t)
	if err := v.Overlay.SelectNode(2); err != nil {
		t.Fatal(err)
	}
	data, err := RenderJSON(v.Surface, WithJSONSelection(v.Overlay.Selection().String()))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out Scene
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Width != 800 || out.Height != 600 || out.Accent != v.Surface.Accent {
		t.Errorf("header = %+v", out)
	}
	if out.Selection != "node:2" {
		t.Errorf("Selection = %q", out.Selection)
	}
	if len(out.Layers) != 5 || out.Layers[4].Name != "nodes" {
		t.Fatalf("layers = %+v", out.Layers)
	}

	var selected *Element
	for i, e := range out.Layers[4].Elements {
		if e.Key == "nodes/2" {
			selected = &out.Layers[4].Elements[i]
		}
	}
	if selected == nil {
		t.Fatal("node 2 missing")
	}
	if selected.Attrs["stroke-width"] != "5" || selected.Node == nil || selected.Node.ID != 2 {
		t.Errorf("node 2 = %+v", selected)
	}
	for _, e := range out.Layers[0].Elements {
		if e.Edge == nil {
			t.Errorf("%s has no edge datum", e.Key)
		}
		if len(e.Transitions) != 0 {
			t.Errorf("%s: transitions without WithJSONTransitions", e.Key)
		}
	}
}

func TestSnapshotTransitions(t *testing.T) {
	v := view(t, graphview.WithAnimator(scene.Timed{}))
	if err := v.Load(context.Background(), smallDoc); err != nil {
		t.Fatal(err)
	}

	plain := Snapshot(v.Surface)
	full := Snapshot(v.Surface, WithJSONTransitions())
	count := func(s Scene) (n int) {
		for _, l := range s.Layers {
			n += len(l.Elements)
		}
		return n
	}
	if count(plain) != 4 {
		t.Errorf("plain snapshot has %d elements, want 4", count(plain))
	}
	if count(full) <= count(plain) {
		t.Error("WithJSONTransitions should keep exiting elements")
	}
}
