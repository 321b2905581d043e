package scene

import "time"

// Phase is the part of the three-way diff an element is animated for.
type Phase uint8

const (
	PhaseEnter Phase = iota
	PhaseUpdate
	PhaseExit
)

func (p Phase) String() string {
	switch p {
	case PhaseEnter:
		return "enter"
	case PhaseUpdate:
		return "update"
	case PhaseExit:
		return "exit"
	}
	return "unknown"
}

// Motion describes how an element reaches its current State.
type Motion struct {
	Phase Phase
	From  State

	// Via, when set, is an intermediate state: the element fades to Via's
	// style, jumps to Via's geometry, then grows into its final state. Edges
	// use it so they never slide across unrelated nodes.
	Via *State
}

// Animator turns a Motion into the element's Transitions.
type Animator interface {
	Animate(e *Element, m Motion)

	// Retain reports whether exiting elements stay on the surface, to be
	// swept by the next render, instead of being removed at once.
	Retain() bool
}

// Transition is one animation step of one attribute. A zero Dur sets the
// attribute at Begin without interpolation.
type Transition struct {
	Attr  string        `json:"attr"`
	From  string        `json:"from,omitempty"`
	To    string        `json:"to"`
	Begin time.Duration `json:"begin"`
	Dur   time.Duration `json:"dur"`
}

// Instant applies every change immediately. It is the animator for tests
// and static output.
type Instant struct{}

// Animate implements Animator.
func (Instant) Animate(e *Element, _ Motion) { e.Transitions = nil }

// Retain implements Animator.
func (Instant) Retain() bool { return false }

// DefaultDuration is the base duration of a full appear or disappear.
const DefaultDuration = 700 * time.Millisecond

// Timed records transitions with the live view's timing: Base for nodes and
// exits, and for edges a quarter of Base to fade, then half of Base to grow
// after a delay of half of Base.
type Timed struct {
	Base time.Duration // zero means DefaultDuration
}

func (t Timed) base() time.Duration {
	if t.Base <= 0 {
		return DefaultDuration
	}
	return t.Base
}

// EdgeDuration is how long an edge takes to grow into place.
func (t Timed) EdgeDuration() time.Duration { return t.base() / 2 }

// EdgeDelay is when an edge starts growing.
func (t Timed) EdgeDelay() time.Duration { return t.base() / 2 }

// Fade is how long an edge takes to vanish before it moves.
func (t Timed) Fade() time.Duration { return t.base() / 4 }

// Animate implements Animator.
func (t Timed) Animate(e *Element, m Motion) {
	to := e.State()
	if m.Via == nil {
		e.Transitions = diff(e.Shape, m.From, to, 0, t.base(), nil)
		return
	}

	via := *m.Via
	var steps []Transition
	steps = append(steps, diff(e.Shape, m.From, via, 0, t.Fade(), isStyleAttr)...)
	steps = append(steps, diff(e.Shape, m.From, via, t.Fade(), 0, isGeometryAttr)...)
	steps = append(steps, diff(e.Shape, via, to, t.EdgeDelay(), t.EdgeDuration(), nil)...)
	e.Transitions = steps
}

// Retain implements Animator.
func (Timed) Retain() bool { return true }

var geometryAttrs = map[string]bool{
	"cx": true, "cy": true, "r": true,
	"x1": true, "y1": true, "x2": true, "y2": true,
	"d": true, "transform": true,
}

// discreteAttrs cannot be interpolated and are always set.
var discreteAttrs = map[string]bool{
	"transform": true, "marker-end": true, "stroke-linecap": true,
}

func isGeometryAttr(name string) bool { return geometryAttrs[name] }

func isStyleAttr(name string) bool { return !geometryAttrs[name] }

func diff(shape Shape, from, to State, begin, dur time.Duration, keep func(string) bool) []Transition {
	prev := make(map[string]string)
	for _, a := range from.Attrs(shape) {
		prev[a.Name] = a.Value
	}

	var out []Transition
	for _, a := range to.Attrs(shape) {
		if keep != nil && !keep(a.Name) {
			continue
		}
		old, ok := prev[a.Name]
		if ok && old == a.Value {
			continue
		}
		tr := Transition{Attr: a.Name, To: a.Value, Begin: begin, Dur: dur}
		if ok && !discreteAttrs[a.Name] {
			tr.From = old
		} else {
			tr.Dur = 0
		}
		out = append(out, tr)
	}
	return out
}
