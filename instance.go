package plcmp

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pthm/plcmp/lib/dom"
	"github.com/pthm/plcmp/lib/schema"
)

// ErrDetached is returned by writes on an instance that has been detached.
var ErrDetached = errors.New("plcmp: instance detached")

// Instance is a live component attached to a host element.
//
// All state changes go through Set. A write is validated and coerced first;
// if it is accepted the value is stored, reflected to the mirrored
// attribute, passed to the observer and, for disabled and loading, fed to
// the interaction gate, in that order and without interruption. A rejected
// write leaves the instance unchanged.
//
// Instances are not safe for concurrent use.
type Instance struct {
	id       string
	typ      *Type
	reg      *Registry
	host     Host
	values   map[string]any
	mirrored map[string]string
	gate     Gate
	unlisten []func()
	detached bool
}

func mount(reg *Registry, t *Type, host Host, seed Snapshot) (*Instance, error) {
	if !t.Defined() {
		return nil, fmt.Errorf("%w: %q", ErrNotDefined, t.tag)
	}

	inst := &Instance{
		id:       uuid.NewString(),
		typ:      t,
		reg:      reg,
		host:     host,
		values:   make(map[string]any, t.schema.Len()),
		mirrored: make(map[string]string),
	}

	saved := saveHost(host, t)

	if t.focusable && host.TabIndex() == dom.NotFocusable {
		host.SetTabIndex(0)
	}

	if t.Gated() {
		for _, typ := range t.activation {
			inst.unlisten = append(inst.unlisten, host.AddEventListener(typ, inst.gate.intercept, true))
		}
	}

	cleared := make(map[string]bool, len(seed.Cleared))
	for _, name := range seed.Cleared {
		cleared[name] = true
	}

	for _, d := range t.schema.Descriptors() {
		v, err := inst.initialValue(d, seed.Attrs, cleared[d.Name])
		if err == nil {
			err = inst.commit(d, d.Zero(), v, false)
		}
		if err != nil {
			// A failed mount leaves the host as it found it.
			inst.Detach()
			saved.restore(host)
			return nil, err
		}
	}

	return inst, nil
}

// initialValue resolves the seed for d: a cleared flag first, then the seed
// map, then an attribute already on the host, then the declared default.
func (inst *Instance) initialValue(d Descriptor, seed map[string]string, cleared bool) (any, error) {
	if cleared && d.Kind == schema.Bool {
		return false, nil
	}
	raw, ok := seed[d.Name]
	v, found := seedValue(d, raw, ok)
	if !found {
		raw, ok = inst.host.Attribute(d.Name)
		v, found = seedValue(d, raw, ok)
	}
	if !found {
		return d.Initial(), nil
	}
	return d.Coerce(v)
}

// ID returns the instance's unique identifier.
func (inst *Instance) ID() string { return inst.id }

// Type returns the component type.
func (inst *Instance) Type() *Type { return inst.typ }

// Tag returns the component's tag name.
func (inst *Instance) Tag() string { return inst.typ.tag }

// Host returns the host element.
func (inst *Instance) Host() Host { return inst.host }

// Logger returns the registry's logger tagged with the instance, for use in
// observers and hooks.
func (inst *Instance) Logger() *slog.Logger {
	l := slog.Default()
	if inst.reg != nil && inst.reg.Logger != nil {
		l = inst.reg.Logger
	}
	return l.With("tag", inst.typ.tag, "id", inst.id)
}

// Set writes a property. It fails with ErrUnknownProperty or ErrTypeMismatch
// before anything is mutated, and with ErrObserverFailure after the value has
// been stored and reflected.
func (inst *Instance) Set(name string, value any) error {
	if inst.detached {
		return ErrDetached
	}

	d, v, err := inst.typ.schema.Coerce(name, value)
	if err != nil {
		return fmt.Errorf("%s: %w", inst.typ.tag, err)
	}

	old := inst.values[name]
	if old == v {
		return nil
	}
	return inst.commit(d, old, v, true)
}

// commit runs the write sequence: store, reflect, observe, gate, notify.
func (inst *Instance) commit(d Descriptor, old, v any, notify bool) error {
	inst.values[d.Name] = v

	if d.Reflect {
		reflectAttribute(inst.host, inst.mirrored, d, v)
	}

	obsErr := inst.dispatch(d, old, v)

	// The gate tracks stored values even when the observer failed.
	if d.Name == PropDisabled || d.Name == PropLoading {
		if inst.typ.Gated() {
			inst.gate.update(inst.host, inst.Bool(PropDisabled), inst.Bool(PropLoading))
		}
	}

	if obsErr != nil {
		return obsErr
	}

	if notify {
		for _, fn := range inst.typ.onChange {
			fn(inst, d.Name, old, v)
		}
	}
	return nil
}

// Get returns the current value of a property.
func (inst *Instance) Get(name string) (any, error) {
	if _, err := inst.typ.schema.Lookup(name); err != nil {
		return nil, fmt.Errorf("%s: %w", inst.typ.tag, err)
	}
	return inst.values[name], nil
}

// Bool returns a boolean property, or false if it is not a declared boolean.
func (inst *Instance) Bool(name string) bool {
	b, _ := inst.values[name].(bool)
	return b
}

// String returns a string property, or "" if it is not a declared string.
func (inst *Instance) String(name string) string {
	s, _ := inst.values[name].(string)
	return s
}

// Values returns a copy of all property values.
func (inst *Instance) Values() map[string]any {
	out := make(map[string]any, len(inst.values))
	for k, v := range inst.values {
		out[k] = v
	}
	return out
}

// SetAttribute is the inbound attribute path. Declared properties are
// normalised into Set (booleans by presence); any other attribute is
// written straight to the host.
func (inst *Instance) SetAttribute(name, value string) error {
	d, err := inst.typ.schema.Lookup(name)
	if err != nil {
		if inst.detached {
			return ErrDetached
		}
		inst.host.SetAttribute(name, value)
		return nil
	}
	v, _ := seedValue(d, value, true)
	return inst.Set(name, v)
}

// RemoveAttribute is the inbound removal path; declared properties are set
// to false or the empty string.
func (inst *Instance) RemoveAttribute(name string) error {
	d, err := inst.typ.schema.Lookup(name)
	if err != nil {
		if inst.detached {
			return ErrDetached
		}
		inst.host.RemoveAttribute(name)
		return nil
	}
	return inst.Set(name, d.Zero())
}

// Attribute reads an attribute from the host.
func (inst *Instance) Attribute(name string) (string, bool) {
	return inst.host.Attribute(name)
}

// MirroredAttributes returns a copy of the reflected attribute shadow.
func (inst *Instance) MirroredAttributes() map[string]string {
	out := make(map[string]string, len(inst.mirrored))
	for k, v := range inst.mirrored {
		out[k] = v
	}
	return out
}

// TabIndex returns the host's focus order value.
func (inst *Instance) TabIndex() int {
	return inst.host.TabIndex()
}

// GateState returns the interaction state.
func (inst *Instance) GateState() GateState {
	return inst.gate.State()
}

// Gated reports whether activation is suppressed.
func (inst *Instance) Gated() bool {
	return inst.gate.Gated()
}

// Snapshot returns the markup-equivalent seed of every property, suitable
// for mounting an equal instance later with Registry.Restore. Strings are
// kept whenever they are non-empty or differ from their default; false
// booleans with a true default are listed in Cleared.
func (inst *Instance) Snapshot() Snapshot {
	snap := Snapshot{Tag: inst.typ.tag, Attrs: make(map[string]string, len(inst.values))}
	for _, d := range inst.typ.schema.Descriptors() {
		switch v := inst.values[d.Name].(type) {
		case bool:
			if v {
				snap.Attrs[d.Name] = ""
			} else if d.Initial() == true {
				snap.Cleared = append(snap.Cleared, d.Name)
			}
		case string:
			if v != "" || d.Initial() != "" {
				snap.Attrs[d.Name] = v
			}
		}
	}
	return snap
}

// Token returns the signed snapshot, or "" when the instance is not bound
// to a registry.
func (inst *Instance) Token() (string, error) {
	if inst.reg == nil {
		return "", nil
	}
	return inst.reg.encoder.Encode(inst.Snapshot())
}

// Detach removes the instance's listeners from the host. Further writes
// fail with ErrDetached.
func (inst *Instance) Detach() {
	if inst.detached {
		return
	}
	for _, remove := range inst.unlisten {
		remove()
	}
	inst.unlisten = nil
	inst.detached = true
}

// Detached reports whether Detach has been called.
func (inst *Instance) Detached() bool {
	return inst.detached
}

// hostState is the part of a host a mount may change. Hosts that can list
// their attributes are recorded in full; others are recorded for the
// declared properties, the focus order and the observers' aria attributes.
type hostState struct {
	attrs    map[string]string
	names    []string
	tabIndex int
}

var observedHostAttributes = []string{"aria-disabled", "aria-busy"}

func saveHost(host Host, t *Type) hostState {
	s := hostState{attrs: make(map[string]string), tabIndex: host.TabIndex()}
	if l, ok := host.(attributeLister); ok {
		s.attrs = l.Attributes()
		return s
	}
	s.names = append(s.names, observedHostAttributes...)
	for _, d := range t.schema.Descriptors() {
		s.names = append(s.names, d.Name)
	}
	for _, name := range s.names {
		if v, ok := host.Attribute(name); ok {
			s.attrs[name] = v
		}
	}
	return s
}

func (s hostState) restore(host Host) {
	if l, ok := host.(attributeLister); ok {
		for name := range l.Attributes() {
			if _, keep := s.attrs[name]; !keep {
				host.RemoveAttribute(name)
			}
		}
	} else {
		for _, name := range s.names {
			if _, keep := s.attrs[name]; !keep {
				host.RemoveAttribute(name)
			}
		}
		if host.TabIndex() != s.tabIndex {
			host.SetTabIndex(s.tabIndex)
		}
	}
	for name, v := range s.attrs {
		if cur, ok := host.Attribute(name); !ok || cur != v {
			host.SetAttribute(name, v)
		}
	}
}
