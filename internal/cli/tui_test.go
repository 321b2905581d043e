package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tsa-lab/tsaview/pkg/render/graphview"
	"github.com/tsa-lab/tsaview/pkg/render/overlay"
	"github.com/tsa-lab/tsaview/pkg/render/scene"
)

func loadedView(t *testing.T) *graphview.View {
	t.Helper()
	v := graphview.NewView("g", 800, 600)
	if err := v.Load(context.Background(), hyperDoc()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return v
}

func press(m InspectModel, keys ...tea.KeyMsg) (InspectModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(InspectModel)
	}
	return m, cmd
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

func TestNewInspectModel(t *testing.T) {
	m := NewInspectModel(context.Background(), loadedView(t))

	// Four nodes, the complex included, then the four expanded edges.
	if len(m.Items) != 8 {
		t.Fatalf("len(Items) = %d, want 8", len(m.Items))
	}
	for i := 0; i < 4; i++ {
		if m.Items[i].key != scene.NodeKey(i) {
			t.Errorf("item %d key = %v, want node %d", i, m.Items[i].key, i)
		}
	}
	for _, it := range m.Items[4:] {
		if it.key.Kind != scene.KindEdge {
			t.Errorf("item %q kind = %v", it.label, it.key.Kind)
		}
	}
}

func TestInspectModelNavigation(t *testing.T) {
	m := NewInspectModel(context.Background(), loadedView(t))
	m.Height = 3

	m, _ = press(m, keyUp)
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first item: %d", m.Cursor)
	}
	m, _ = press(m, keyDown, keyDown, keyDown, keyDown)
	if m.Cursor != 4 || m.Offset != 2 {
		t.Errorf("cursor, offset = %d, %d; want 4, 2", m.Cursor, m.Offset)
	}
	for range 10 {
		m, _ = press(m, keyDown)
	}
	if m.Cursor != len(m.Items)-1 {
		t.Errorf("cursor = %d, want last item", m.Cursor)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	if got := next.(InspectModel).Height; got != 28 {
		t.Errorf("Height = %d, want 28", got)
	}
}

func TestInspectModelClick(t *testing.T) {
	v := loadedView(t)
	m := NewInspectModel(context.Background(), v)

	m, _ = press(m, keyDown, keyDown, keyEnter)
	sel := v.Overlay.Selection()
	if sel.State != overlay.NodeSelected || sel.Node != 2 {
		t.Fatalf("selection = %s, want node:2", sel)
	}
	if m.Err != nil {
		t.Errorf("Err = %v", m.Err)
	}
	out := m.View()
	for _, want := range []string{"Inspect g", "node:2", "(3, 2)", "[3/8]"} {
		if !strings.Contains(out, want) {
			t.Errorf("view lacks %q", want)
		}
	}

	m, _ = press(m, keyEsc)
	if v.Overlay.Selection().State != overlay.Idle {
		t.Errorf("esc left selection %s", v.Overlay.Selection())
	}

	if _, cmd := press(m, keyQuit); cmd == nil {
		t.Error("q should quit")
	}
}

func TestPrintSelection(t *testing.T) {
	v := loadedView(t)
	if err := v.Select(context.Background(), overlay.Selection{State: overlay.NodeSelected, Node: 2}); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := printSelection(&buf, v); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"state: node\n", "selection: node:2\n", "(3, 2)", "pinned: "} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q lacks %q", out, want)
		}
	}
}
