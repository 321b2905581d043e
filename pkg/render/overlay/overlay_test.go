package overlay_test

import (
	"context"
	"slices"
	"testing"

	"github.com/tsa-lab/tsaview/pkg/errors"
	"github.com/tsa-lab/tsaview/pkg/geom"
	"github.com/tsa-lab/tsaview/pkg/graph"
	"github.com/tsa-lab/tsaview/pkg/render/graphview"
	"github.com/tsa-lab/tsaview/pkg/render/overlay"
	"github.com/tsa-lab/tsaview/pkg/render/scene"
)

// hyperDoc expands to (0,3) (1,3) (3,2) (0,1) (2,2) with node 3 the complex
// of {0, 1}.
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

func loaded(t *testing.T) *graphview.View {
	t.Helper()
	v := graphview.NewView("g", 800, 600)
	if err := v.Load(context.Background(), hyperDoc()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return v
}

func keys(pairs ...[2]int) []graph.EdgeKey {
	out := make([]graph.EdgeKey, len(pairs))
	for i, p := range pairs {
		out[i] = graph.EdgeKey{From: p[0], To: p[1]}
	}
	return out
}

func sameSet(got, want []graph.EdgeKey) bool {
	if len(got) != len(want) {
		return false
	}
	for _, k := range want {
		if !slices.Contains(got, k) {
			return false
		}
	}
	return true
}

func TestSelectEdgeHighlightsHyperedgePath(t *testing.T) {
	path := keys([2]int{0, 3}, [2]int{1, 3}, [2]int{3, 2})
	rest := keys([2]int{0, 1}, [2]int{2, 2})

	for _, picked := range path {
		t.Run(picked.String(), func(t *testing.T) {
			v := loaded(t)
			if err := v.Overlay.SelectEdge(picked.From, picked.To); err != nil {
				t.Fatal(err)
			}
			sum := v.Overlay.Summary()
			if !sameSet(sum.Raised, path) {
				t.Errorf("raised = %v, want %v", sum.Raised, path)
			}
			if !sameSet(sum.Dimmed, rest) {
				t.Errorf("dimmed = %v, want %v", sum.Dimmed, rest)
			}
			if !sameSet(sum.Pinned, path) {
				t.Errorf("pinned = %v, want %v", sum.Pinned, path)
			}

			dim, _ := v.Surface.Find(scene.Key{Kind: scene.KindEdge, From: 0, To: 1})
			if op, _ := dim.Attr("opacity"); op != "0.1" {
				t.Errorf("dimmed opacity = %s", op)
			}
			hover, _ := v.Surface.Find(scene.Key{Kind: scene.KindEdgeHover, From: 3, To: 2})
			if op, _ := hover.Attr("stroke-opacity"); op != "0.5" {
				t.Errorf("pinned hover stroke-opacity = %s", op)
			}
			if got := v.Overlay.Selection(); got.State != overlay.EdgeSelected || got.Edge != picked {
				t.Errorf("selection = %s", got)
			}
		})
	}
}

func TestPath(t *testing.T) {
	v := loaded(t)
	got, err := v.Overlay.Path(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if last := got[len(got)-1]; last != (graph.EdgeKey{From: 3, To: 2}) {
		t.Errorf("path should end at the complex->target edge, got %v", got)
	}
	if got, _ := v.Overlay.Path(0, 1); !slices.Equal(got, keys([2]int{0, 1})) {
		t.Errorf("plain edge path = %v", got)
	}
}

func TestSelectNode(t *testing.T) {
	v := loaded(t)
	if err := v.Overlay.SelectNode(2); err != nil {
		t.Fatal(err)
	}
	node, _ := v.Surface.Find(scene.NodeKey(2))
	eff := node.Effective()
	if eff.StrokeWidth != overlay.SelectedStrokeWidth || eff.Stroke != v.Surface.Accent {
		t.Errorf("selected node style = %+v", eff)
	}

	sum := v.Overlay.Summary()
	in := keys([2]int{0, 3}, [2]int{1, 3}, [2]int{3, 2}, [2]int{2, 2})
	if !sameSet(sum.Raised, in) {
		t.Errorf("raised = %v, want %v", sum.Raised, in)
	}
	if !sameSet(sum.Dimmed, keys([2]int{0, 1})) {
		t.Errorf("dimmed = %v", sum.Dimmed)
	}
	if !sameSet(sum.Pinned, in) {
		t.Errorf("pinned = %v", sum.Pinned)
	}
}

func TestSelectionsAreExclusive(t *testing.T) {
	v := loaded(t)
	if err := v.Overlay.SelectNode(2); err != nil {
		t.Fatal(err)
	}
	if err := v.Overlay.SelectEdge(0, 1); err != nil {
		t.Fatal(err)
	}
	node, _ := v.Surface.Find(scene.NodeKey(2))
	if !node.Highlight.IsZero() {
		t.Error("node outline survived an edge selection")
	}
	sum := v.Overlay.Summary()
	if len(sum.Raised) != 0 || len(sum.Dimmed) != 0 {
		t.Errorf("plain edge should not raise or dim: %+v", sum)
	}
	if !slices.Equal(sum.Pinned, keys([2]int{0, 1})) {
		t.Errorf("pinned = %v", sum.Pinned)
	}

	if err := v.Overlay.SelectNode(1); err != nil {
		t.Fatal(err)
	}
	hover, _ := v.Surface.Find(scene.Key{Kind: scene.KindEdgeHover, From: 0, To: 1})
	if !hover.Highlight.Pinned {
		t.Error("edge into node 1 should be pinned")
	}
	if got := v.Overlay.Selection().String(); got != "node:1" {
		t.Errorf("selection = %s", got)
	}
}

func TestClear(t *testing.T) {
	v := loaded(t)
	if err := v.Overlay.SelectEdge(3, 2); err != nil {
		t.Fatal(err)
	}
	v.Overlay.Clear()
	v.Surface.Each(func(e *scene.Element) {
		if !e.Highlight.IsZero() {
			t.Errorf("%s still highlighted", e.Key)
		}
	})
	if v.Overlay.Selection().State != overlay.Idle {
		t.Error("Clear should return to idle")
	}
}

func TestSelectMissing(t *testing.T) {
	v := loaded(t)
	if err := v.Overlay.SelectNode(0); err != nil {
		t.Fatal(err)
	}
	if err := v.Overlay.SelectNode(99); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("SelectNode(99): err = %v", err)
	}
	if err := v.Overlay.SelectEdge(2, 0); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("SelectEdge(2, 0): err = %v", err)
	}
	if got := v.Overlay.Selection().String(); got != "node:0" {
		t.Errorf("failed selection replaced %s", got)
	}
}

func TestInconsistentProvenance(t *testing.T) {
	one := 1
	two := 2
	nodes := []graph.Node{{ID: 0}, {ID: 1}, {ID: 2}, {ID: 3, Complex: []int{0, 1}}}
	// (1, 3) is missing.
	edges := []graph.Edge{
		{From: 0, To: 3, Interaction: &one, Complex: []int{0, 1}, ComplexTo: &two},
		{From: 3, To: 2, Interaction: &one, Interactome: []int{0, 1}},
	}
	s := scene.NewSurface("g", 800, 600)
	r := graphview.NewRenderer(nil)
	layout := geom.Pad(geom.Circle(len(nodes)), 800, 600)
	if _, err := r.Render(s, nodes, edges, layout, geom.NodeRadius(800, 600), nil); err != nil {
		t.Fatal(err)
	}

	o := overlay.New(s)
	if err := o.SelectNode(2); err != nil {
		t.Fatal(err)
	}
	for _, k := range keys([2]int{0, 3}, [2]int{3, 2}) {
		err := o.SelectEdge(k.From, k.To)
		if !errors.Is(err, errors.ErrCodeInconsistentProvenance) {
			t.Errorf("SelectEdge%s: err = %v, want INCONSISTENT_PROVENANCE", k, err)
		}
	}
	if got := o.Selection().String(); got != "node:2" {
		t.Errorf("selection = %s, want node:2 kept", got)
	}
	node, _ := s.Find(scene.NodeKey(2))
	if node.Highlight.StrokeWidth != overlay.SelectedStrokeWidth {
		t.Error("previous node highlight was reverted")
	}
}

func TestReapply(t *testing.T) {
	ctx := context.Background()
	v := loaded(t)
	if err := v.Overlay.SelectEdge(3, 2); err != nil {
		t.Fatal(err)
	}
	if err := v.Resize(ctx, 500, 500); err != nil {
		t.Fatal(err)
	}
	if sum := v.Overlay.Summary(); len(sum.Raised) != 3 {
		t.Errorf("selection lost on redraw: %+v", sum)
	}

	if err := v.Overlay.SelectNode(2); err != nil {
		t.Fatal(err)
	}
	small := graph.Document{
		Nodes: []graph.Node{{ID: 0}, {ID: 1}},
		Edges: []graph.RawEdge{{From: graph.Source{0}, To: 1}},
	}
	if err := v.Load(ctx, small); err != nil {
		t.Fatal(err)
	}
	if v.Overlay.Selection().State != overlay.Idle {
		t.Errorf("selection of a removed node should clear, got %s", v.Overlay.Selection())
	}
	v.Surface.Each(func(e *scene.Element) {
		if !e.Highlight.IsZero() {
			t.Errorf("%s still highlighted", e.Key)
		}
	})
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in      string
		want    overlay.Selection
		wantErr bool
	}{
		{in: "", want: overlay.Selection{}},
		{in: "none", want: overlay.Selection{}},
		{in: "node:3", want: overlay.Selection{State: overlay.NodeSelected, Node: 3}},
		{in: "edge:0-3", want: overlay.Selection{State: overlay.EdgeSelected, Edge: graph.EdgeKey{From: 0, To: 3}}},
		{in: "node", wantErr: true},
		{in: "node:x", wantErr: true},
		{in: "edge:1", wantErr: true},
		{in: "face:1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := overlay.ParseSelection(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("err = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if tt.in != "" && got.String() != tt.in {
				t.Errorf("String() = %s", got.String())
			}
		})
	}
}
