package dom

import (
	"sort"
	"strconv"
)

// NotFocusable is the focus-order value that excludes an element from
// sequential keyboard navigation.
const NotFocusable = -1

type listener struct {
	id      int
	fn      func(*Event)
	capture bool
}

// Element is an in-memory host element.
//
// Elements are not safe for concurrent use; like the browser DOM they belong
// to a single event loop.
type Element struct {
	tag       string
	attrs     map[string]string
	parent    *Element
	children  []*Element
	listeners map[string][]listener
	nextID    int
}

var _ Host = (*Element)(nil)

// NewElement creates a detached element.
func NewElement(tag string) *Element {
	return &Element{
		tag:       tag,
		attrs:     make(map[string]string),
		listeners: make(map[string][]listener),
	}
}

// Tag returns the element's tag name.
func (el *Element) Tag() string { return el.tag }

// Parent returns the parent element, or nil.
func (el *Element) Parent() *Element { return el.parent }

// Children returns the child elements.
func (el *Element) Children() []*Element { return el.children }

// Append attaches child as the last child of el.
func (el *Element) Append(child *Element) {
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = el
	el.children = append(el.children, child)
}

// Remove detaches child from el.
func (el *Element) Remove(child *Element) {
	for i, c := range el.children {
		if c == child {
			el.children = append(el.children[:i], el.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Attribute returns the attribute value and whether it is present.
func (el *Element) Attribute(name string) (string, bool) {
	v, ok := el.attrs[name]
	return v, ok
}

// HasAttribute reports whether the attribute is present.
func (el *Element) HasAttribute(name string) bool {
	_, ok := el.attrs[name]
	return ok
}

// SetAttribute sets an attribute.
func (el *Element) SetAttribute(name, value string) {
	el.attrs[name] = value
}

// RemoveAttribute removes an attribute. Removing an absent attribute is a
// no-op.
func (el *Element) RemoveAttribute(name string) {
	delete(el.attrs, name)
}

// Attributes returns a copy of all attributes.
func (el *Element) Attributes() map[string]string {
	out := make(map[string]string, len(el.attrs))
	for k, v := range el.attrs {
		out[k] = v
	}
	return out
}

// AttributeNames returns the attribute names in sorted order.
func (el *Element) AttributeNames() []string {
	names := make([]string, 0, len(el.attrs))
	for k := range el.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// TabIndex reflects the tabindex attribute. Elements without a parsable
// tabindex are not focusable.
func (el *Element) TabIndex() int {
	v, ok := el.attrs["tabindex"]
	if !ok {
		return NotFocusable
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return NotFocusable
	}
	return i
}

// SetTabIndex writes the tabindex attribute.
func (el *Element) SetTabIndex(i int) {
	el.attrs["tabindex"] = strconv.Itoa(i)
}

// AddEventListener registers fn for events of typ.
func (el *Element) AddEventListener(typ string, fn func(*Event), capture bool) func() {
	el.nextID++
	id := el.nextID
	el.listeners[typ] = append(el.listeners[typ], listener{id: id, fn: fn, capture: capture})

	return func() {
		ls := el.listeners[typ]
		for i, l := range ls {
			if l.id == id {
				el.listeners[typ] = append(ls[:i], ls[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of listeners registered for typ.
func (el *Element) ListenerCount(typ string) int {
	return len(el.listeners[typ])
}

// Dispatch sends ev through the capture, target and bubble phases along the
// path from the root to el. It returns false if the default was prevented.
func (el *Element) Dispatch(ev *Event) bool {
	ev.target = el
	ev.stopped = false
	ev.stoppedImmediate = false

	var path []*Element
	for n := el.parent; n != nil; n = n.parent {
		path = append(path, n)
	}

	// Capture: root down to the parent.
	for i := len(path) - 1; i >= 0 && !ev.stopped; i-- {
		path[i].invoke(ev, PhaseCapturing)
	}

	// At target: capture listeners first, then non-capture.
	if !ev.stopped {
		el.invoke(ev, PhaseAtTarget)
	}

	if ev.Bubbles {
		for _, n := range path {
			if ev.stopped {
				break
			}
			n.invoke(ev, PhaseBubbling)
		}
	}

	ev.phase = PhaseNone
	ev.currentTarget = nil
	return !ev.defaultPrevented
}

func (el *Element) invoke(ev *Event, phase Phase) {
	ev.phase = phase
	ev.currentTarget = el

	ls := make([]listener, len(el.listeners[ev.Type]))
	copy(ls, el.listeners[ev.Type])

	run := func(capture bool) {
		for _, l := range ls {
			if ev.stoppedImmediate {
				return
			}
			if l.capture != capture {
				continue
			}
			l.fn(ev)
		}
	}

	switch phase {
	case PhaseCapturing:
		run(true)
	case PhaseBubbling:
		run(false)
	case PhaseAtTarget:
		run(true)
		run(false)
	}
}
