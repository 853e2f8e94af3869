package plcmp

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/a-h/templ"
	"github.com/pthm/plcmp/lib/schema"
)

// ObserverFunc is invoked synchronously after a property change has been
// stored and reflected. Arguments are (new, old) in that order.
type ObserverFunc func(inst *Instance, newValue, oldValue any) error

// ChangeFunc is the per-instance change notification invoked after every
// accepted write, once the gate has been re-evaluated.
type ChangeFunc func(inst *Instance, name string, oldValue, newValue any)

// ActivateFunc handles an activation event that was allowed through the
// interaction gate.
type ActivateFunc func(ctx context.Context, inst *Instance) error

// TemplateFunc renders the content placed inside the host element.
type TemplateFunc func(inst *Instance) templ.Component

// DefaultActivationEvents are the event types suppressed while gated.
var DefaultActivationEvents = []string{"click"}

var tagPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)+$`)

// Type is the definition of a component type: its tag, property schema,
// observer bindings and hooks.
//
// A Type is configured with its builder methods and then frozen by
// Registry.Define. Leaf widgets usually build their Type once:
//
//	var ButtonType = plcmp.NewType("pl-button").
//	    Props(
//	        plcmp.String("label"),
//	        plcmp.Bool("disabled").Reflected().ObservedBy("disabledObserver"),
//	    ).
//	    Observe("disabledObserver", onDisabled).
//	    Focusable()
type Type struct {
	tag        string
	descs      []schema.Descriptor
	observers  map[string]ObserverFunc
	onChange   []ChangeFunc
	onActivate ActivateFunc
	template   TemplateFunc
	focusable  bool
	activation []string

	freeze sync.Once
	err    error
	schema *schema.Schema
}

// NewType starts the definition of a component type. The tag must be a
// lowercase custom-element name containing a hyphen.
func NewType(tag string) *Type {
	return &Type{
		tag:        tag,
		observers:  make(map[string]ObserverFunc),
		activation: DefaultActivationEvents,
	}
}

// Props appends property descriptors.
func (t *Type) Props(descs ...Descriptor) *Type {
	t.mustBeOpen()
	t.descs = append(t.descs, descs...)
	return t
}

// Observe binds an observer name used by descriptors to a handler.
func (t *Type) Observe(observer string, fn ObserverFunc) *Type {
	t.mustBeOpen()
	t.observers[observer] = fn
	return t
}

// OnChange registers a change notification hook.
func (t *Type) OnChange(fn ChangeFunc) *Type {
	t.mustBeOpen()
	t.onChange = append(t.onChange, fn)
	return t
}

// OnActivate sets the handler run for activation events that pass the gate.
func (t *Type) OnActivate(fn ActivateFunc) *Type {
	t.mustBeOpen()
	t.onActivate = fn
	return t
}

// Template sets the content renderer.
func (t *Type) Template(fn TemplateFunc) *Type {
	t.mustBeOpen()
	t.template = fn
	return t
}

// Focusable makes instances join the focus order on mount when the host is
// not focusable yet.
func (t *Type) Focusable() *Type {
	t.mustBeOpen()
	t.focusable = true
	return t
}

// ActivationEvents replaces the event types suppressed while gated.
func (t *Type) ActivationEvents(types ...string) *Type {
	t.mustBeOpen()
	t.activation = types
	return t
}

// Tag returns the component's tag name.
func (t *Type) Tag() string {
	return t.tag
}

// Schema returns the frozen schema, or nil before definition.
func (t *Type) Schema() *schema.Schema {
	return t.schema
}

// Defined reports whether the type has been frozen by a registry.
func (t *Type) Defined() bool {
	return t.schema != nil
}

// Gated reports whether instances carry an interaction gate, which is the
// case when the type declares a boolean disabled or loading property.
func (t *Type) Gated() bool {
	if t.schema == nil {
		return false
	}
	for _, name := range []string{PropDisabled, PropLoading} {
		if d, err := t.schema.Lookup(name); err == nil && d.Kind == schema.Bool {
			return true
		}
	}
	return false
}

func (t *Type) mustBeOpen() {
	if t.schema != nil {
		panic(fmt.Sprintf("plcmp: type %q modified after definition", t.tag))
	}
}

// define freezes the type exactly once: the schema is built and every
// observer name is resolved to its bound handler.
func (t *Type) define() error {
	t.freeze.Do(func() {
		if !tagPattern.MatchString(t.tag) {
			t.err = fmt.Errorf("plcmp: invalid tag %q", t.tag)
			return
		}

		s, err := schema.New(t.descs...)
		if err != nil {
			t.err = fmt.Errorf("plcmp: %s: %w", t.tag, err)
			return
		}

		for _, d := range s.Descriptors() {
			if d.Observer == "" {
				continue
			}
			if t.observers[d.Observer] == nil {
				t.err = fmt.Errorf("%w: %s.%s (property %q)", ErrUnboundObserver, t.tag, d.Observer, d.Name)
				return
			}
		}

		t.schema = s
	})
	return t.err
}
