package plcmp

import (
	"context"
	"io"
	"sort"
	"strconv"

	"github.com/a-h/templ"
)

// attributeLister is implemented by hosts that can enumerate their
// attributes, such as *dom.Element.
type attributeLister interface {
	Attributes() map[string]string
}

// Attrs returns the attributes the host element renders with: every host
// attribute when the host can list them (otherwise the mirrored properties
// and the focus order), the instance id and, when the instance is bound to
// a registry, its state token.
func (inst *Instance) Attrs() templ.Attributes {
	attrs := templ.Attributes{}
	if l, ok := inst.host.(attributeLister); ok {
		for k, v := range l.Attributes() {
			attrs[k] = v
		}
	} else {
		for k, v := range inst.mirrored {
			attrs[k] = v
		}
		attrs["tabindex"] = strconv.Itoa(inst.host.TabIndex())
	}
	attrs["data-pl-id"] = inst.id

	if inst.reg != nil {
		if token, err := inst.Token(); err == nil {
			attrs["data-pl-state"] = token
		}
	}
	return attrs
}

// Render returns a templ component writing the host element, its attributes
// and the type's template content.
//
//	@inst.Render()
func (inst *Instance) Render() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		attrs := inst.Attrs()
		if inst.typ.onActivate != nil && !inst.Gated() {
			for k, v := range inst.WireAttrs() {
				attrs[k] = v
			}
		}

		if _, err := io.WriteString(w, "<"+inst.typ.tag); err != nil {
			return err
		}
		if err := writeAttrs(w, attrs); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		if inst.typ.template != nil {
			if err := inst.typ.template(inst).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</"+inst.typ.tag+">")
		return err
	})
}

// writeAttrs writes attributes in sorted order. Empty strings and true
// booleans render as bare attribute names.
func writeAttrs(w io.Writer, attrs templ.Attributes) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var s string
		switch v := attrs[k].(type) {
		case string:
			if v == "" {
				s = " " + templ.EscapeString(k)
			} else {
				s = " " + templ.EscapeString(k) + `="` + templ.EscapeString(v) + `"`
			}
		case bool:
			if !v {
				continue
			}
			s = " " + templ.EscapeString(k)
		default:
			continue
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}
