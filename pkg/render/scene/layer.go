package scene

import "slices"

// Layer is an ordered keyed set of elements of one kind. Elements keep the
// order in which they were inserted; entering elements are appended.
type Layer struct {
	kind  Kind
	order []Key
	elems map[Key]*Element
}

// NewLayer returns an empty layer for kind.
func NewLayer(kind Kind) *Layer {
	return &Layer{kind: kind, elems: make(map[Key]*Element)}
}

// Kind returns the kind of element held by the layer.
func (l *Layer) Kind() Kind { return l.kind }

// Name is the layer's group name, also used as the SVG group id.
func (l *Layer) Name() string { return l.kind.String() }

// Get returns the element for k.
func (l *Layer) Get(k Key) (*Element, bool) {
	e, ok := l.elems[k]
	return e, ok
}

// Len returns the number of elements, exiting ones included.
func (l *Layer) Len() int { return len(l.order) }

// Elements returns every element in draw order, exiting ones included.
func (l *Layer) Elements() []*Element {
	out := make([]*Element, len(l.order))
	for i, k := range l.order {
		out[i] = l.elems[k]
	}
	return out
}

// Live returns the elements that are not exiting, in draw order.
func (l *Layer) Live() []*Element {
	out := make([]*Element, 0, len(l.order))
	for _, k := range l.order {
		if e := l.elems[k]; !e.Exiting {
			out = append(out, e)
		}
	}
	return out
}

// Insert appends e, replacing any element with the same key in place.
func (l *Layer) Insert(e *Element) {
	if _, ok := l.elems[e.Key]; !ok {
		l.order = append(l.order, e.Key)
	}
	l.elems[e.Key] = e
}

// Remove deletes the element for k.
func (l *Layer) Remove(k Key) {
	if _, ok := l.elems[k]; !ok {
		return
	}
	delete(l.elems, k)
	l.order = slices.DeleteFunc(l.order, func(o Key) bool { return o == k })
}

// Sweep removes every exiting element and returns how many were removed.
func (l *Layer) Sweep() int {
	n := 0
	l.order = slices.DeleteFunc(l.order, func(k Key) bool {
		if l.elems[k].Exiting {
			delete(l.elems, k)
			n++
			return true
		}
		return false
	})
	return n
}

// Join is the three-way diff between a layer and a new key set.
type Join struct {
	Enter  []Key      // keys with no element yet, in data order
	Update []*Element // elements whose key is still present, in data order
	Exit   []*Element // live elements whose key is gone, in draw order
}

// Join diffs the layer's live elements against keys. An exiting element
// whose key comes back is reported as an update and revived by the caller.
// Join does not modify the layer.
func (l *Layer) Join(keys []Key) Join {
	var j Join
	want := make(map[Key]bool, len(keys))
	for _, k := range keys {
		want[k] = true
		if e, ok := l.elems[k]; ok {
			j.Update = append(j.Update, e)
		} else {
			j.Enter = append(j.Enter, k)
		}
	}
	for _, k := range l.order {
		if e := l.elems[k]; !want[k] && !e.Exiting {
			j.Exit = append(j.Exit, e)
		}
	}
	return j
}
