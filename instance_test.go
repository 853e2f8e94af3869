package plcmp

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/pthm/plcmp/lib/dom"
)

type observation struct {
	newValue any
	oldValue any
}

func quietRegistry() *Registry {
	reg := NewRegistry([]byte("test-key"))
	reg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return reg
}

func newTestRegistry(t *testing.T, types ...*Type) *Registry {
	t.Helper()
	reg := quietRegistry()
	if err := reg.Define(types...); err != nil {
		t.Fatalf("Define() error = %v", err)
	}
	return reg
}

// buttonType declares the same properties as pl-button and records every
// disabledObserver call.
func buttonType(calls *[]observation) *Type {
	return NewType("test-button").
		Props(
			String("label"),
			Bool("disabled").Reflected().ObservedBy("disabledObserver"),
			String("variant").Reflected().WithDefault("secondary"),
			Bool("hidden").Reflected(),
			Bool("negative").Reflected(),
			Bool("loading").Reflected().ObservedBy("disabledObserver"),
		).
		Observe("disabledObserver", func(inst *Instance, newValue, oldValue any) error {
			if calls != nil {
				*calls = append(*calls, observation{newValue, oldValue})
			}
			return nil
		}).
		Focusable()
}

func mountButton(t *testing.T, seed map[string]string) *TestInstance {
	t.Helper()
	reg := newTestRegistry(t, buttonType(nil))
	ti, err := TestMount(reg, "test-button", seed)
	if err != nil {
		t.Fatalf("TestMount() error = %v", err)
	}
	return ti
}

func TestMount_Defaults(t *testing.T) {
	var calls []observation
	reg := newTestRegistry(t, buttonType(&calls))
	ti, err := TestMount(reg, "test-button", nil)
	if err != nil {
		t.Fatalf("TestMount() error = %v", err)
	}

	if got := ti.String("variant"); got != "secondary" {
		t.Errorf("variant = %q, want secondary", got)
	}
	if v, ok := ti.Element.Attribute("variant"); !ok || v != "secondary" {
		t.Errorf("variant attribute = %q (present=%v), want secondary", v, ok)
	}
	if ti.Element.HasAttribute("disabled") {
		t.Error("disabled attribute should be absent")
	}
	if ti.Element.HasAttribute("label") {
		t.Error("label is not reflected")
	}
	if got := ti.TabIndex(); got != 0 {
		t.Errorf("TabIndex() = %d, want 0 for a focusable type", got)
	}
	if ti.GateState() != Interactive {
		t.Errorf("GateState() = %v, want interactive", ti.GateState())
	}
	if ti.ID() == "" {
		t.Error("ID() should not be empty")
	}

	// Each observed property is applied once on mount.
	if len(calls) != 2 {
		t.Fatalf("observer calls on mount = %d, want 2", len(calls))
	}
	for _, c := range calls {
		if c.newValue != false || c.oldValue != false {
			t.Errorf("mount observation = %+v, want (false, false)", c)
		}
	}
}

func TestMount_FocusableKeepsExistingTabIndex(t *testing.T) {
	reg := newTestRegistry(t, buttonType(nil))
	host := dom.NewElement("test-button")
	host.SetTabIndex(3)

	inst, err := reg.Mount("test-button", host, nil)
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if got := inst.TabIndex(); got != 3 {
		t.Errorf("TabIndex() = %d, want 3", got)
	}
}

func TestMount_SeedsFromHostAttributes(t *testing.T) {
	reg := newTestRegistry(t, buttonType(nil))
	host := dom.NewElement("test-button")
	host.SetAttribute("disabled", "disabled")
	host.SetAttribute("variant", "ghost")

	inst, err := reg.Mount("test-button", host, map[string]string{"variant": "link"})
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	if !inst.Bool("disabled") {
		t.Error("disabled should be seeded from the host attribute")
	}
	if v, _ := host.Attribute("disabled"); v != "" {
		t.Errorf("disabled attribute = %q, want empty value", v)
	}
	if got := inst.String("variant"); got != "link" {
		t.Errorf("variant = %q, want seed map to win", got)
	}
	if got := inst.TabIndex(); got != -1 {
		t.Errorf("TabIndex() = %d, want -1 while disabled", got)
	}
	if got := inst.gate.SavedTabIndex(); got != 0 {
		t.Errorf("SavedTabIndex() = %d, want 0", got)
	}
}

func TestMount_NotDefined(t *testing.T) {
	reg := quietRegistry()
	_, err := mount(reg, buttonType(nil), dom.NewElement("test-button"), Snapshot{})
	if !errors.Is(err, ErrNotDefined) {
		t.Errorf("mount() error = %v, want ErrNotDefined", err)
	}
}

func TestSet_BooleanReflection(t *testing.T) {
	for _, name := range []string{"disabled", "hidden", "negative", "loading"} {
		t.Run(name, func(t *testing.T) {
			ti := mountButton(t, nil)

			if err := ti.Set(name, true); err != nil {
				t.Fatalf("Set(true) error = %v", err)
			}
			if v, ok := ti.Element.Attribute(name); !ok || v != "" {
				t.Errorf("attribute = %q (present=%v), want present and empty", v, ok)
			}

			if err := ti.Set(name, false); err != nil {
				t.Fatalf("Set(false) error = %v", err)
			}
			if ti.Element.HasAttribute(name) {
				t.Error("attribute should be absent after Set(false)")
			}

			// Round trip through the inbound attribute path.
			if err := ti.SetAttribute(name, ""); err != nil {
				t.Fatalf("SetAttribute() error = %v", err)
			}
			if !ti.Bool(name) {
				t.Error("property should be true after SetAttribute")
			}
			if !ti.Element.HasAttribute(name) {
				t.Error("attribute should be present after SetAttribute")
			}

			if err := ti.RemoveAttribute(name); err != nil {
				t.Fatalf("RemoveAttribute() error = %v", err)
			}
			if ti.Bool(name) {
				t.Error("property should be false after RemoveAttribute")
			}
			if ti.Element.HasAttribute(name) {
				t.Error("attribute should be absent after RemoveAttribute")
			}
		})
	}
}

func TestSet_StringReflection(t *testing.T) {
	ti := mountButton(t, nil)

	if err := ti.Set("variant", "primary"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, _ := ti.Element.Attribute("variant"); v != "primary" {
		t.Errorf("variant attribute = %q, want primary", v)
	}

	if err := ti.Set("variant", ""); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ti.Element.HasAttribute("variant") {
		t.Error("empty string should remove the attribute")
	}
	if _, ok := ti.MirroredAttributes()["variant"]; ok {
		t.Error("empty string should leave the mirror")
	}

	if err := ti.Set("label", "Save"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ti.Element.HasAttribute("label") {
		t.Error("label is not reflected")
	}
	if ti.String("label") != "Save" {
		t.Errorf("label = %q, want Save", ti.String("label"))
	}
}

func TestSet_UnrecognizedVariantIsAccepted(t *testing.T) {
	ti := mountButton(t, nil)
	if err := ti.Set("variant", "sparkly"); err != nil {
		t.Fatalf("Set() error = %v, want nil", err)
	}
	if ti.GateState() != Interactive {
		t.Error("instance should stay interactive")
	}
}

func TestSet_CoercesScalars(t *testing.T) {
	ti := mountButton(t, nil)

	if err := ti.Set("disabled", "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !ti.Bool("disabled") {
		t.Error(`Set("disabled", "true") should store true`)
	}
	if err := ti.Set("label", 42); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := ti.String("label"); got != "42" {
		t.Errorf("label = %q, want 42", got)
	}
}

func TestSet_UnknownProperty(t *testing.T) {
	ti := mountButton(t, map[string]string{"variant": "primary"})
	before := ti.Values()
	attrs := ti.Element.Attributes()

	err := ti.Set("colour", "red")
	if !IsUnknownProperty(err) {
		t.Fatalf("Set() error = %v, want ErrUnknownProperty", err)
	}

	after := ti.Values()
	for k, v := range before {
		if after[k] != v {
			t.Errorf("%s changed from %v to %v", k, v, after[k])
		}
	}
	if len(after) != len(before) {
		t.Errorf("values = %v, want %v", after, before)
	}
	if len(ti.Element.Attributes()) != len(attrs) {
		t.Errorf("attributes changed: %v", ti.Element.Attributes())
	}

	if _, err := ti.Get("colour"); !IsUnknownProperty(err) {
		t.Errorf("Get() error = %v, want ErrUnknownProperty", err)
	}
}

func TestSet_TypeMismatch(t *testing.T) {
	ti := mountButton(t, nil)

	err := ti.Set("disabled", struct{ On bool }{true})
	if !IsTypeMismatch(err) {
		t.Fatalf("Set() error = %v, want ErrTypeMismatch", err)
	}
	if ti.Bool("disabled") || ti.Element.HasAttribute("disabled") {
		t.Error("rejected write must not mutate state")
	}

	err = ti.Set("label", []string{"a"})
	if !IsTypeMismatch(err) {
		t.Fatalf("Set() error = %v, want ErrTypeMismatch", err)
	}
}

func TestSet_ObserverOrderingAndChangeDetection(t *testing.T) {
	var calls []observation
	reg := newTestRegistry(t, buttonType(&calls))
	ti, _ := TestMount(reg, "test-button", nil)
	calls = nil

	_ = ti.Set("disabled", true)
	_ = ti.Set("disabled", true)
	_ = ti.Set("disabled", false)
	_ = ti.Set("variant", "ghost")

	want := []observation{{true, false}, {false, true}}
	if len(calls) != len(want) {
		t.Fatalf("observer calls = %+v, want %+v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, calls[i], want[i])
		}
	}
}

func TestSet_ObserverRunsAfterReflection(t *testing.T) {
	var sawAttribute bool
	typ := NewType("test-observed").
		Props(Bool("disabled").Reflected().ObservedBy("check")).
		Observe("check", func(inst *Instance, newValue, oldValue any) error {
			_, sawAttribute = inst.Attribute("disabled")
			return nil
		})
	reg := newTestRegistry(t, typ)
	ti, _ := TestMount(reg, "test-observed", nil)

	_ = ti.Set("disabled", true)
	if !sawAttribute {
		t.Error("observer should see the reflected attribute")
	}
}

func TestSet_ObserverFailure(t *testing.T) {
	boom := errors.New("boom")
	changes := 0
	typ := NewType("test-failing").
		Props(Bool("disabled").Reflected().ObservedBy("fail")).
		Observe("fail", func(inst *Instance, newValue, oldValue any) error {
			if newValue == true {
				return boom
			}
			return nil
		}).
		OnChange(func(*Instance, string, any, any) { changes++ })
	reg := newTestRegistry(t, typ)
	ti, err := TestMount(reg, "test-failing", nil)
	if err != nil {
		t.Fatalf("TestMount() error = %v", err)
	}

	err = ti.Set("disabled", true)
	if !IsObserverFailure(err) {
		t.Fatalf("Set() error = %v, want ErrObserverFailure", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Set() error = %v, want it to wrap the observer error", err)
	}

	// The write was committed before the observer ran.
	if !ti.Bool("disabled") || !ti.Element.HasAttribute("disabled") {
		t.Error("value should be stored and reflected despite the observer failure")
	}
	if !ti.Gated() {
		t.Error("gate should follow the stored value")
	}
	if changes != 0 {
		t.Errorf("change hook ran %d times, want 0", changes)
	}
}

func TestSet_ObserverPanicPropagates(t *testing.T) {
	typ := NewType("test-panicking").
		Props(String("label").ObservedBy("explode")).
		Observe("explode", func(inst *Instance, newValue, oldValue any) error {
			if newValue == "boom" {
				panic("observer bug")
			}
			return nil
		})
	reg := newTestRegistry(t, typ)
	ti, _ := TestMount(reg, "test-panicking", nil)

	defer func() {
		if recover() == nil {
			t.Error("panic should propagate to the caller")
		}
	}()
	_ = ti.Set("label", "boom")
}

func TestOnChange(t *testing.T) {
	type change struct {
		name     string
		old, new any
	}
	var changes []change
	typ := NewType("test-change").
		Props(String("label"), Bool("disabled")).
		OnChange(func(inst *Instance, name string, oldValue, newValue any) {
			changes = append(changes, change{name, oldValue, newValue})
		})
	reg := newTestRegistry(t, typ)
	ti, _ := TestMount(reg, "test-change", nil)

	if len(changes) != 0 {
		t.Fatalf("mount should not notify, got %+v", changes)
	}

	_ = ti.Set("label", "Go")
	_ = ti.Set("disabled", true)

	want := []change{{"label", "", "Go"}, {"disabled", false, true}}
	if len(changes) != len(want) {
		t.Fatalf("changes = %+v, want %+v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d = %+v, want %+v", i, changes[i], want[i])
		}
	}
}

func TestSetAttribute_Undeclared(t *testing.T) {
	ti := mountButton(t, nil)

	if err := ti.SetAttribute("title", "Save the file"); err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}
	if v, _ := ti.Element.Attribute("title"); v != "Save the file" {
		t.Errorf("title = %q, want pass-through", v)
	}
	if err := ti.RemoveAttribute("title"); err != nil {
		t.Fatalf("RemoveAttribute() error = %v", err)
	}
	if ti.Element.HasAttribute("title") {
		t.Error("title should be removed")
	}
}

func TestSetAttribute_StringValue(t *testing.T) {
	ti := mountButton(t, nil)
	if err := ti.SetAttribute("variant", "link"); err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}
	if ti.String("variant") != "link" {
		t.Errorf("variant = %q, want link", ti.String("variant"))
	}
	if err := ti.RemoveAttribute("variant"); err != nil {
		t.Fatalf("RemoveAttribute() error = %v", err)
	}
	if ti.String("variant") != "" {
		t.Errorf("variant = %q, want empty", ti.String("variant"))
	}
}

func TestDetach(t *testing.T) {
	ti := mountButton(t, nil)
	if ti.Element.ListenerCount("click") != 1 {
		t.Fatalf("ListenerCount(click) = %d, want 1", ti.Element.ListenerCount("click"))
	}

	ti.Detach()
	ti.Detach()

	if !ti.Detached() {
		t.Error("Detached() should be true")
	}
	if ti.Element.ListenerCount("click") != 0 {
		t.Error("Detach should remove the capture listener")
	}
	if err := ti.Set("disabled", true); !errors.Is(err, ErrDetached) {
		t.Errorf("Set() after Detach error = %v, want ErrDetached", err)
	}
	if err := ti.SetAttribute("title", "x"); !errors.Is(err, ErrDetached) {
		t.Errorf("SetAttribute() after Detach error = %v, want ErrDetached", err)
	}
}

func TestSnapshot(t *testing.T) {
	ti := mountButton(t, map[string]string{"label": "Save", "disabled": ""})
	snap := ti.Snapshot()

	if snap.Tag != "test-button" {
		t.Errorf("Tag = %q", snap.Tag)
	}
	want := map[string]string{"label": "Save", "disabled": "", "variant": "secondary"}
	if len(snap.Attrs) != len(want) {
		t.Fatalf("Attrs = %v, want %v", snap.Attrs, want)
	}
	for k, v := range want {
		if got, ok := snap.Attrs[k]; !ok || got != v {
			t.Errorf("Attrs[%q] = %q (present=%v), want %q", k, got, ok, v)
		}
	}

	token, err := ti.Token()
	if err != nil || token == "" {
		t.Fatalf("Token() = %q, %v", token, err)
	}
}

func TestSnapshot_RestoresValuesThatDifferFromDefaults(t *testing.T) {
	typ := NewType("test-panel").Props(
		String("variant").Reflected().WithDefault("secondary"),
		Bool("open").Reflected().WithDefault(true),
		String("label"),
	)
	reg := newTestRegistry(t, typ)
	ti, err := TestMount(reg, "test-panel", nil)
	if err != nil {
		t.Fatalf("TestMount() error = %v", err)
	}
	if ti.String("variant") != "secondary" || !ti.Bool("open") {
		t.Fatalf("defaults = %v", ti.Values())
	}

	if err := ti.Set("variant", ""); err != nil {
		t.Fatalf("Set(variant) error = %v", err)
	}
	if err := ti.Set("open", false); err != nil {
		t.Fatalf("Set(open) error = %v", err)
	}

	token, err := ti.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	snap, err := reg.Encoder().Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v, ok := snap.Attrs["variant"]; !ok || v != "" {
		t.Errorf("Attrs[variant] = %q (present=%v), want empty entry", v, ok)
	}
	if _, ok := snap.Attrs["label"]; ok {
		t.Error("label equal to its empty default should be omitted")
	}
	if len(snap.Cleared) != 1 || snap.Cleared[0] != "open" {
		t.Errorf("Cleared = %v, want [open]", snap.Cleared)
	}

	host := dom.NewElement("test-panel")
	restored, err := reg.Restore(snap, host)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored.String("variant") != "" {
		t.Errorf("variant = %q, want empty", restored.String("variant"))
	}
	if restored.Bool("open") || host.HasAttribute("open") {
		t.Error("open should stay cleared after a round trip")
	}
}

func TestSnapshot_DefaultTrueFlagStaysSet(t *testing.T) {
	typ := NewType("test-panel").Props(Bool("open").Reflected().WithDefault(true))
	reg := newTestRegistry(t, typ)
	ti, err := TestMount(reg, "test-panel", nil)
	if err != nil {
		t.Fatalf("TestMount() error = %v", err)
	}

	snap := ti.Snapshot()
	if len(snap.Cleared) != 0 {
		t.Errorf("Cleared = %v, want none", snap.Cleared)
	}
	restored, err := reg.Restore(snap, dom.NewElement("test-panel"))
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !restored.Bool("open") {
		t.Error("open should be true")
	}
}

func TestMount_FailureRestoresHost(t *testing.T) {
	typ := NewType("test-fragile").
		Props(
			Bool("disabled").Reflected().ObservedBy("aria"),
			String("label").Reflected().ObservedBy("fail"),
		).
		Observe("aria", func(inst *Instance, newValue, oldValue any) error {
			inst.Host().SetAttribute("aria-disabled", "true")
			return nil
		}).
		Observe("fail", func(inst *Instance, newValue, oldValue any) error {
			return errors.New("no label")
		}).
		Focusable()
	reg := newTestRegistry(t, typ)

	host := dom.NewElement("test-fragile")
	host.SetAttribute("title", "kept")
	host.SetAttribute("label", "stale")
	before := host.Attributes()

	_, err := reg.Mount("test-fragile", host, map[string]string{"disabled": "", "label": "Go"})
	if !IsObserverFailure(err) {
		t.Fatalf("Mount() error = %v, want ErrObserverFailure", err)
	}

	after := host.Attributes()
	if len(after) != len(before) {
		t.Fatalf("host attributes = %v, want %v", after, before)
	}
	for k, v := range before {
		if after[k] != v {
			t.Errorf("attribute %q = %q, want %q", k, after[k], v)
		}
	}
	if host.TabIndex() != dom.NotFocusable {
		t.Errorf("TabIndex() = %d, want %d", host.TabIndex(), dom.NotFocusable)
	}
}

func TestRender(t *testing.T) {
	ti := mountButton(t, map[string]string{"variant": "primary", "disabled": ""})
	html, err := ti.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}

	for _, want := range []string{
		"<test-button",
		" disabled",
		`tabindex="-1"`,
		`variant="primary"`,
		`data-pl-id="` + ti.ID() + `"`,
		"data-pl-state=",
		"</test-button>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML() = %s, missing %q", html, want)
		}
	}
	if strings.Contains(html, "hx-post") {
		t.Error("types without an activation handler should not be wired")
	}
}

func TestUngatedType(t *testing.T) {
	typ := NewType("test-label").Props(String("text").Reflected())
	reg := newTestRegistry(t, typ)
	ti, _ := TestMount(reg, "test-label", nil)

	if typ.Gated() {
		t.Error("type without disabled/loading should not be gated")
	}
	if ti.Element.ListenerCount("click") != 0 {
		t.Error("ungated types should not register capture listeners")
	}
	if ti.TabIndex() != -1 {
		t.Error("non-focusable types should leave the tab index alone")
	}
	if !ti.Activate() {
		t.Error("clicks should propagate")
	}
}
