package plcmp

import (
	"encoding/json"

	"github.com/a-h/templ"
)

// Route actions served by the registry handler.
const (
	ActionSet      = "set"
	ActionActivate = "activate"
)

// WireAttrs builds the htmx attributes that post an activation of this
// instance back to the registry handler. The response replaces the host
// element.
//
// Returns nil when the instance is not bound to a registry.
func (inst *Instance) WireAttrs() templ.Attributes {
	if inst.reg == nil {
		return nil
	}
	token, err := inst.Token()
	if err != nil {
		return nil
	}

	trigger := "click"
	if len(inst.typ.activation) > 0 {
		trigger = inst.typ.activation[0]
	}

	vals, _ := json.Marshal(map[string]string{"s": token})
	return templ.Attributes{
		"hx-post":    inst.ActionURL(ActionActivate),
		"hx-vals":    string(vals),
		"hx-swap":    "outerHTML",
		"hx-trigger": trigger,
	}
}

// ActionURL returns the handler path of an action for this instance's type.
func (inst *Instance) ActionURL(action string) string {
	path := DefaultPrefix + inst.typ.tag
	if inst.reg != nil {
		path = inst.reg.Prefix() + inst.typ.tag
	}
	if action != "" {
		path += "/" + action
	}
	return path
}
