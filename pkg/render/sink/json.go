package sink

import (
	"encoding/json"

	"github.com/tsa-lab/tsaview/pkg/graph"
	"github.com/tsa-lab/tsaview/pkg/render/scene"
)

// JSONOption configures JSON rendering via [RenderJSON] and [Snapshot].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	selection   string
	transitions bool
	exiting     bool
}

// WithJSONSelection records the overlay selection ("none", "node:3",
// "edge:0-3") in the snapshot.
func WithJSONSelection(sel string) JSONOption {
	return func(r *jsonRenderer) { r.selection = sel }
}

// WithJSONTransitions includes each element's recorded transitions and keeps
// exiting elements, so a client can play the animation itself.
func WithJSONTransitions() JSONOption {
	return func(r *jsonRenderer) { r.transitions = true; r.exiting = true }
}

// Scene is the JSON form of a surface.
type Scene struct {
	ID        string  `json:"id"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Accent    string  `json:"accent"`
	Selection string  `json:"selection,omitempty"`
	Layers    []Layer `json:"layers"`
}

// Layer is one draw layer of a [Scene].
type Layer struct {
	Name     string    `json:"name"`
	Elements []Element `json:"elements"`
}

// Element is one drawn shape of a [Scene]. Attrs hold the effective values,
// highlights applied.
type Element struct {
	Key         string             `json:"key"`
	Shape       scene.Shape        `json:"shape"`
	Class       string             `json:"class"`
	Title       string             `json:"title,omitempty"`
	Attrs       map[string]string  `json:"attrs"`
	Pinned      bool               `json:"pinned,omitempty"`
	Exiting     bool               `json:"exiting,omitempty"`
	Node        *graph.Node        `json:"node,omitempty"`
	Edge        *graph.Edge        `json:"edge,omitempty"`
	Transitions []scene.Transition `json:"transitions,omitempty"`
}

// Snapshot converts a surface to its JSON form without encoding it.
func Snapshot(s *scene.Surface, opts ...JSONOption) Scene {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := Scene{
		ID:        s.ID,
		Width:     s.Width,
		Height:    s.Height,
		Accent:    s.Accent,
		Selection: r.selection,
	}
	for _, l := range s.Layers() {
		jl := Layer{Name: l.Name(), Elements: make([]Element, 0, l.Len())}
		for _, e := range l.Elements() {
			if e.Exiting && !r.exiting {
				continue
			}
			jl.Elements = append(jl.Elements, buildElement(e, r.transitions))
		}
		out.Layers = append(out.Layers, jl)
	}
	return out
}

func buildElement(e *scene.Element, transitions bool) Element {
	attrs := e.Attrs()
	je := Element{
		Key:     e.Key.String(),
		Shape:   e.Shape,
		Class:   e.Class,
		Title:   e.Title,
		Attrs:   make(map[string]string, len(attrs)),
		Pinned:  e.Highlight.Pinned,
		Exiting: e.Exiting,
		Node:    e.Node,
		Edge:    e.Edge,
	}
	for _, a := range attrs {
		je.Attrs[a.Name] = a.Value
	}
	if transitions {
		je.Transitions = e.Transitions
	}
	return je
}

// RenderJSON encodes a [Snapshot] of the surface as indented JSON.
func RenderJSON(s *scene.Surface, opts ...JSONOption) ([]byte, error) {
	return json.MarshalIndent(Snapshot(s, opts...), "", "  ")
}
