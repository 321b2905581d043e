package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tsa-lab/tsaview/pkg/graph"
	"github.com/tsa-lab/tsaview/pkg/render/graphview"
	"github.com/tsa-lab/tsaview/pkg/render/overlay"
	"github.com/tsa-lab/tsaview/pkg/render/scene"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listActiveStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// InspectModel - Interactive selection browser
// =============================================================================

// inspectItem is one clickable element of the view.
type inspectItem struct {
	label string
	key   scene.Key
}

// InspectModel is the bubbletea model for browsing a graph's selections.
// Enter clicks the element under the cursor, exactly as a click on the
// drawing would, and esc clicks the background.
type InspectModel struct {
	ctx    context.Context
	view   *graphview.View
	Items  []inspectItem
	Cursor int
	Height int
	Offset int
	Err    error
}

// NewInspectModel lists the nodes, then the edges, of the view's graph.
func NewInspectModel(ctx context.Context, v *graphview.View) InspectModel {
	x, _ := v.Graph()
	items := make([]inspectItem, 0, len(x.Nodes)+len(x.Edges))
	for _, n := range x.Nodes {
		items = append(items, inspectItem{label: n.Title(), key: scene.NodeKey(n.ID)})
	}
	for _, e := range x.Edges {
		kind := scene.KindEdge
		if e.IsSelf() {
			kind = scene.KindSelfEdge
		}
		items = append(items, inspectItem{label: edgeLabel(e), key: scene.EdgeKey(kind, e)})
	}
	return InspectModel{ctx: ctx, view: v, Items: items, Height: 15}
}

func edgeLabel(e graph.Edge) string {
	label := fmt.Sprintf("%d → %d", e.From, e.To)
	switch {
	case e.IsComplex():
		label += "  (into complex)"
	case e.IsInteractome():
		label += "  (" + e.Title() + ")"
	}
	return label
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			if len(m.Items) > 0 {
				m.Err = m.view.Click(m.ctx, m.Items[m.Cursor].key)
			}
		case "esc":
			m.view.ClickBackground(m.ctx)
			m.Err = nil
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Inspect " + m.view.Surface.ID))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ click  esc clear  q quit"))
	b.WriteString("\n\n")

	active := activeKeys(m.view.Overlay.Selection())
	end := min(m.Offset+m.Height, len(m.Items))
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := cursor + it.label
		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case active[it.key]:
			b.WriteString(listActiveStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Items))))
	b.WriteString("\n\n")

	b.WriteString(renderSelection(m.view.Overlay))
	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.Err.Error()))
	}
	return b.String()
}

// activeKeys returns the list keys of the current selection.
func activeKeys(sel overlay.Selection) map[scene.Key]bool {
	switch sel.State {
	case overlay.NodeSelected:
		return map[scene.Key]bool{scene.NodeKey(sel.Node): true}
	case overlay.EdgeSelected:
		kind := scene.KindEdge
		if sel.Edge.From == sel.Edge.To {
			kind = scene.KindSelfEdge
		}
		return map[scene.Key]bool{{Kind: kind, From: sel.Edge.From, To: sel.Edge.To}: true}
	}
	return nil
}

// renderSelection shows the selection state and the edges it raises, dims
// and pins.
func renderSelection(o *overlay.Overlay) string {
	sel := o.Selection()
	sum := o.Summary()

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("State", "Selection", "Raised", "Dimmed", "Pinned").
		Row(sel.State.String(), sel.String(), formatKeys(sum.Raised), formatKeys(sum.Dimmed), formatKeys(sum.Pinned)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

func formatKeys(keys []graph.EdgeKey) string {
	if len(keys) == 0 {
		return "—"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, "\n")
}
