package plcmp

import (
	"testing"

	"github.com/pthm/plcmp/lib/dom"
)

func TestGateState_String(t *testing.T) {
	tests := []struct {
		state  GateState
		expect string
	}{
		{Interactive, "interactive"},
		{Disabled, "disabled"},
		{Loading, "loading"},
		{GateState(9), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expect {
			t.Errorf("GateState(%d).String() = %q, want %q", tt.state, got, tt.expect)
		}
	}
}

func TestGate_Update(t *testing.T) {
	host := dom.NewElement("x-gate")
	host.SetTabIndex(2)
	var g Gate

	if !g.update(host, true, false) {
		t.Fatal("entering the gated state should report a transition")
	}
	if host.TabIndex() != -1 || g.SavedTabIndex() != 2 || g.State() != Disabled {
		t.Fatalf("after disable: tabindex=%d saved=%d state=%v", host.TabIndex(), g.SavedTabIndex(), g.State())
	}

	if g.update(host, true, true) {
		t.Error("a second cause should not report a transition")
	}
	if g.State() != Disabled {
		t.Errorf("State() = %v, want disabled to win", g.State())
	}

	if g.update(host, false, true) {
		t.Error("clearing one cause should not report a transition")
	}
	if g.State() != Loading || host.TabIndex() != -1 {
		t.Errorf("State() = %v tabindex=%d, want loading and -1", g.State(), host.TabIndex())
	}

	if !g.update(host, false, false) {
		t.Error("leaving the gated state should report a transition")
	}
	if host.TabIndex() != 2 || g.Gated() {
		t.Errorf("tabindex = %d gated=%v, want 2 and false", host.TabIndex(), g.Gated())
	}
}

func TestGate_Intercept(t *testing.T) {
	var g Gate
	ev := dom.NewEvent("click")
	g.intercept(ev)
	if ev.PropagationStopped() {
		t.Error("ungated intercept should not stop propagation")
	}

	g.gated = true
	ev = dom.NewEvent("click")
	g.intercept(ev)
	if !ev.PropagationStopped() {
		t.Error("gated intercept should stop propagation")
	}
	if ev.DefaultPrevented() {
		t.Error("gated intercept should not prevent the default action")
	}
}

func TestInstance_DisabledRestoresTabIndex(t *testing.T) {
	ti := mountButton(t, nil)
	if ti.TabIndex() != 0 {
		t.Fatalf("TabIndex() = %d, want 0", ti.TabIndex())
	}

	_ = ti.Set("disabled", true)
	if ti.TabIndex() != -1 {
		t.Errorf("TabIndex() = %d, want -1 while disabled", ti.TabIndex())
	}
	if v, _ := ti.Element.Attribute("tabindex"); v != "-1" {
		t.Errorf("tabindex attribute = %q, want -1", v)
	}

	_ = ti.Set("disabled", false)
	if ti.TabIndex() != 0 {
		t.Errorf("TabIndex() = %d, want 0 after re-enable", ti.TabIndex())
	}
}

func TestInstance_TwoCauseGate(t *testing.T) {
	ti := mountButton(t, nil)

	_ = ti.Set("disabled", true)
	_ = ti.Set("loading", true)
	_ = ti.Set("disabled", false)

	if !ti.Gated() || ti.GateState() != Loading {
		t.Fatalf("GateState() = %v, want loading", ti.GateState())
	}
	if ti.TabIndex() != -1 {
		t.Errorf("TabIndex() = %d, want -1 while loading", ti.TabIndex())
	}
	if ti.Activate() {
		t.Error("click should be suppressed while loading")
	}

	_ = ti.Set("loading", false)
	if ti.Gated() {
		t.Error("instance should be interactive")
	}
	if ti.TabIndex() != 0 {
		t.Errorf("TabIndex() = %d, want 0", ti.TabIndex())
	}
}

func TestInstance_GatedTogglesKeepSavedTabIndex(t *testing.T) {
	ti := mountButton(t, nil)
	ti.Element.SetTabIndex(4)

	steps := []struct {
		name  string
		value bool
	}{
		{"disabled", true},
		{"loading", true},
		{"loading", false},
		{"loading", true},
		{"disabled", false},
	}
	for _, s := range steps {
		if err := ti.Set(s.name, s.value); err != nil {
			t.Fatalf("Set(%s, %v) error = %v", s.name, s.value, err)
		}
		if ti.TabIndex() != -1 {
			t.Fatalf("after Set(%s, %v): TabIndex() = %d, want -1", s.name, s.value, ti.TabIndex())
		}
	}

	_ = ti.Set("loading", false)
	if ti.TabIndex() != 4 {
		t.Errorf("TabIndex() = %d, want the value saved before the first cause", ti.TabIndex())
	}
}

func TestInstance_ActivationSuppression(t *testing.T) {
	tests := []struct {
		name     string
		seed     map[string]string
		expected bool
	}{
		{"interactive", nil, true},
		{"disabled", map[string]string{"disabled": ""}, false},
		{"loading", map[string]string{"loading": ""}, false},
		{"disabled and loading", map[string]string{"disabled": "", "loading": ""}, false},
		{"hidden only", map[string]string{"hidden": ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ti := mountButton(t, tt.seed)
			ev := dom.NewEvent("click")
			if got := ti.ActivateWith(ev); got != tt.expected {
				t.Errorf("ActivateWith() = %v, want %v", got, tt.expected)
			}
			if ev.DefaultPrevented() {
				t.Error("the gate should never prevent the default action")
			}
		})
	}
}

func TestInstance_OnlyActivationEventsAreGated(t *testing.T) {
	ti := mountButton(t, map[string]string{"disabled": ""})
	if !ti.ActivateWith(dom.NewEvent("focus")) {
		t.Error("non-activation events should propagate while gated")
	}
}

func TestInstance_CustomActivationEvents(t *testing.T) {
	typ := NewType("test-toggle").
		Props(Bool("disabled").Reflected()).
		ActivationEvents("click", "keydown")
	reg := newTestRegistry(t, typ)
	ti, _ := TestMount(reg, "test-toggle", map[string]string{"disabled": ""})

	for _, evType := range []string{"click", "keydown"} {
		if ti.ActivateWith(dom.NewEvent(evType)) {
			t.Errorf("%s should be suppressed", evType)
		}
	}
}

func TestInstance_BubbleOnHostStillRuns(t *testing.T) {
	ti := mountButton(t, map[string]string{"disabled": ""})

	// Propagation stops after the target's own listeners.
	ran := false
	ti.Element.AddEventListener("click", func(*dom.Event) { ran = true }, false)
	if ti.Activate() {
		t.Error("click should not reach the parent")
	}
	if !ran {
		t.Error("listeners on the host itself still run at the target")
	}
}
