// Package geom holds the pure geometry behind graph rendering: the unit
// circle layout, projection into pixel space, edge trimming for arrowheads
// and self-loop arcs.
//
// Every function here is a pure function of its arguments so it can be
// tested without a scene or a sink.
package geom

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// MarkerSide is the side length of the arrow-head marker in stroke units.
	MarkerSide = 4.0

	// DefaultWeight is the edge weight used when an edge carries no occurrences.
	DefaultWeight = 4.0

	// strokeNormalizer divides the scaled weight before multiplying by the
	// viewport's smaller side.
	strokeNormalizer = 500.0

	// radiusFraction of min(width, height) gives the node radius.
	radiusFraction = 0.05

	// padRadii is the number of node radii kept clear around the layout.
	padRadii = 3

	// loopAngle is the angle (radians) at which a self-loop leaves the node.
	loopAngle = 0.5

	// loopGapFraction shrinks the arrow gap on self-loops, whose arrow
	// approaches the node at a shallow angle.
	loopGapFraction = 10.0 / 16.0
)

// Point is a 2D coordinate.
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Circle places n points evenly on the unit circle: point i sits at angle
// 2πi/n. It returns nil for n <= 0.
func Circle(n int) []Point {
	if n <= 0 {
		return nil
	}
	step := 2 * math.Pi / float64(n)
	pts := make([]Point, n)
	for i := range pts {
		theta := step * float64(i)
		pts[i] = Point{X: math.Cos(theta), Y: math.Sin(theta)}
	}
	return pts
}

// NodeRadius is 5% of the viewport's smaller side, floored to whole pixels.
func NodeRadius(width, height float64) float64 {
	return math.Floor(math.Min(width, height) * radiusFraction)
}

// Pad projects unit-circle coordinates into a width×height viewport: the
// layout is centered and scaled into a square inset by three node radii.
func Pad(layout []Point, width, height float64) []Point {
	whalf, hhalf := width/2, height/2
	side := math.Min(whalf, hhalf)
	pad := NodeRadius(width, height) * padRadii
	span := side - pad

	out := make([]Point, len(layout))
	for i, p := range layout {
		out[i] = Point{X: p.X*span + whalf, Y: p.Y*span + hhalf}
	}
	return out
}

// StrokeWidth returns the edge thickness for a scaled weight. Thickness is
// relative to the viewport's smaller side so drawings keep their proportions
// across sizes.
func StrokeWidth(scaled, width, height float64) float64 {
	return scaled / strokeNormalizer * math.Min(width, height)
}

// ArrowGap is the room reserved at the end of an edge for its arrowhead.
func ArrowGap(strokeWidth float64) float64 {
	return strokeWidth * MarkerSide
}

// TrimLine shortens the segment a→b so it starts on the boundary of the
// source node (radius from a) and ends radius+gap before b, leaving room for
// the arrowhead to touch the target boundary. Coincident endpoints yield a
// degenerate segment at a.
func TrimLine(a, b Point, radius, gap float64) (Point, Point) {
	dx, dy := b.X-a.X, b.Y-a.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return a, a
	}
	startRatio := radius / dist
	endRatio := (radius + gap) / dist

	start := Point{X: a.X + dx*startRatio, Y: a.Y + dy*startRatio}
	end := Point{X: a.X + dx - dx*endRatio, Y: a.Y + dy - dy*endRatio}
	return start, end
}

// Arc is an SVG elliptical arc leaving and re-entering a node.
type Arc struct {
	Start, End Point
	RX, RY     float64
	LargeArc   bool
	Sweep      bool
}

// Path returns the SVG path data for the arc.
func (a Arc) Path() string {
	return fmt.Sprintf("M%s %s A%s %s, 0,%d, %d, %s %s",
		Num(a.Start.X), Num(a.Start.Y),
		Num(a.RX), Num(a.RY),
		flag(a.LargeArc), flag(a.Sweep),
		Num(a.End.X), Num(a.End.Y))
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SelfLoop builds the arc for a self-edge on the node at center. The loop
// leaves the boundary below the horizontal axis and re-enters above it,
// pulled out by a gap sized for the arrowhead.
func SelfLoop(center Point, radius, strokeWidth float64) Arc {
	gap := ArrowGap(strokeWidth) * loopGapFraction
	cos, sin := math.Cos(loopAngle), math.Sin(loopAngle)
	return Arc{
		Start:    Point{X: center.X + radius*cos, Y: center.Y + radius*sin},
		End:      Point{X: center.X + radius*cos + gap, Y: center.Y - radius*sin - gap},
		RX:       radius,
		RY:       radius,
		LargeArc: true,
		Sweep:    false,
	}
}

// LoopRotation returns the rotation in degrees applied to the self-loop of
// the node at index, so loops on different nodes point different ways.
func LoopRotation(index, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(index) * (360 / float64(total))
}

// Rotate returns the SVG transform rotating by deg degrees around c.
func Rotate(deg float64, c Point) string {
	return fmt.Sprintf("rotate(%s %s %s)", Num(deg), Num(c.X), Num(c.Y))
}

// Num formats a coordinate compactly for SVG output.
func Num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
