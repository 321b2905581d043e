package graphview

// Category10 is the rotating palette used for nodes and hover strokes.
var Category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// InteractionColors colors edges by interaction type.
var InteractionColors = []string{"red", "green", "blue", "yellow", "black", "grey"}

const (
	// InitialColor is the accent before the first render.
	InitialColor = "teal"

	// DefaultEdgeColor strokes edges with no interaction type.
	DefaultEdgeColor = "black"

	// ComplexFill fills synthetic hyperedge nodes.
	ComplexFill = "lightgrey"
)

// Palette is a rotating color pointer. Every render advances it, so
// successive graphs are told apart by color.
type Palette struct {
	colors  []string
	pos     int
	current string
}

// NewPalette returns a palette over Category10 starting at InitialColor.
func NewPalette() *Palette {
	return NewPaletteOf(Category10)
}

// NewPaletteOf returns a palette over colors starting at InitialColor.
func NewPaletteOf(colors []string) *Palette {
	return &Palette{colors: colors, current: InitialColor}
}

// Current returns the color chosen by the last Next.
func (p *Palette) Current() string { return p.current }

// Next advances to the next color, wrapping at the end, and returns it.
func (p *Palette) Next() string {
	if len(p.colors) == 0 {
		return p.current
	}
	p.current = p.colors[p.pos]
	p.pos = (p.pos + 1) % len(p.colors)
	return p.current
}

// InteractionColor returns the stroke color for an interaction type.
func InteractionColor(interaction *int) string {
	if interaction == nil {
		return DefaultEdgeColor
	}
	n := len(InteractionColors)
	return InteractionColors[((*interaction%n)+n)%n]
}
