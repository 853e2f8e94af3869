package plcmp

import "github.com/pthm/plcmp/lib/dom"

// Property names that drive the interaction gate.
const (
	PropDisabled = "disabled"
	PropLoading  = "loading"
)

// GateState is the interaction state of an instance.
type GateState int

const (
	// Interactive instances receive activation events and keep their focus
	// order.
	Interactive GateState = iota
	// Disabled instances are gated because disabled is true.
	Disabled
	// Loading instances are gated because loading is true and disabled is
	// false.
	Loading
)

func (s GateState) String() string {
	switch s {
	case Interactive:
		return "interactive"
	case Disabled:
		return "disabled"
	case Loading:
		return "loading"
	default:
		return "unknown"
	}
}

// Gate suppresses activation and removes the host from the focus order
// while disabled or loading is set.
//
// The transition into the gated state saves the focus order once per gated
// episode; a second cause arriving while already gated does not overwrite
// it. Leaving requires both causes to be cleared.
type Gate struct {
	disabled      bool
	loading       bool
	gated         bool
	savedTabIndex int
}

// State returns the gate state. Disabled wins when both causes are set.
func (g *Gate) State() GateState {
	switch {
	case g.disabled:
		return Disabled
	case g.loading:
		return Loading
	default:
		return Interactive
	}
}

// Gated reports whether activation is currently suppressed.
func (g *Gate) Gated() bool {
	return g.gated
}

// SavedTabIndex returns the focus order captured on entering the gated
// state. It is meaningful only while gated.
func (g *Gate) SavedTabIndex() int {
	return g.savedTabIndex
}

// update applies new cause values and performs the focus-order side effects
// of any transition. It reports whether the gated state changed.
func (g *Gate) update(host Host, disabled, loading bool) bool {
	g.disabled = disabled
	g.loading = loading

	want := disabled || loading
	switch {
	case want && !g.gated:
		g.savedTabIndex = host.TabIndex()
		host.SetTabIndex(dom.NotFocusable)
		g.gated = true
		return true
	case !want && g.gated:
		host.SetTabIndex(g.savedTabIndex)
		g.gated = false
		return true
	default:
		return false
	}
}

// intercept is the capture-phase listener. It only stops propagation; the
// default action is left alone.
func (g *Gate) intercept(ev *Event) {
	if g.gated {
		ev.StopPropagation()
	}
}
