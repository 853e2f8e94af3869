// Package dom models the host side of a component: attribute primitives,
// the keyboard focus-order value, and event listeners with capture and
// bubble phases.
//
// Host is the contract the component core consumes. Element is an in-memory
// implementation used for server-side rendering and tests; a browser binding
// would implement Host over the real DOM.
package dom

// Phase is the phase of event dispatch.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseCapturing
	PhaseAtTarget
	PhaseBubbling
)

// Event is a dispatched DOM-like event.
type Event struct {
	Type    string
	Bubbles bool

	target        *Element
	currentTarget *Element
	phase         Phase

	stopped          bool
	stoppedImmediate bool
	defaultPrevented bool
}

// NewEvent creates a bubbling event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ, Bubbles: true}
}

// Target returns the element the event was dispatched on.
func (e *Event) Target() *Element { return e.target }

// CurrentTarget returns the element whose listener is running.
func (e *Event) CurrentTarget() *Element { return e.currentTarget }

// Phase returns the current dispatch phase.
func (e *Event) Phase() Phase { return e.phase }

// StopPropagation prevents the event from reaching further elements.
// Listeners on the current element still run.
func (e *Event) StopPropagation() { e.stopped = true }

// StopImmediatePropagation also skips the remaining listeners on the current
// element.
func (e *Event) StopImmediatePropagation() {
	e.stopped = true
	e.stoppedImmediate = true
}

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool { return e.stopped }

// PreventDefault cancels the default action.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Host is the set of primitives a component instance needs from the element
// it is attached to.
type Host interface {
	// Attribute returns the attribute value and whether it is present.
	Attribute(name string) (string, bool)
	SetAttribute(name, value string)
	RemoveAttribute(name string)

	// TabIndex is the sequential focus-order value; -1 excludes the element.
	TabIndex() int
	SetTabIndex(i int)

	// AddEventListener registers fn for events of typ. When capture is true
	// fn runs during the capture phase. The returned func removes it.
	AddEventListener(typ string, fn func(*Event), capture bool) (remove func())
}
