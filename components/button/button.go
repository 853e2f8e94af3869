// Package button implements pl-button, a focusable action button with
// label, variant, negative, hidden, disabled and loading states.
package button

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/pthm/plcmp"
)

//go:generate go run github.com/pthm/plcmp/cmd/plcmp generate .

// Tag is the element name of the button.
const Tag = "pl-button"

// Variant is a visual style of the button.
type Variant string

const (
	VariantPrimary   Variant = "primary"
	VariantSecondary Variant = "secondary"
	VariantGhost     Variant = "ghost"
	VariantLink      Variant = "link"
)

// Valid reports whether v is one of the recognised variants.
func (v Variant) Valid() bool {
	switch v {
	case VariantPrimary, VariantSecondary, VariantGhost, VariantLink:
		return true
	default:
		return false
	}
}

// Props declares the button's properties.
//
//plcmp:props Button
type Props struct {
	Label    string `pl:"label"`
	Disabled bool   `pl:"disabled,reflect,observer=disabledObserver"`
	Variant  string `pl:"variant,reflect,default=secondary,observer=variantObserver"`
	Hidden   bool   `pl:"hidden,reflect"`
	Negative bool   `pl:"negative,reflect"`
	Loading  bool   `pl:"loading,reflect,observer=disabledObserver"`
}

// Type is the pl-button component type. Register it once per registry.
var Type = plcmp.NewType(Tag).
	Props(Props{}.Descriptors()...).
	Observe("disabledObserver", disabledObserver).
	Observe("variantObserver", variantObserver).
	Template(template).
	Focusable()

// Button is a mounted pl-button.
type Button struct {
	*plcmp.Instance
}

// Register defines pl-button in reg.
func Register(reg *plcmp.Registry) error {
	return reg.Define(Type)
}

// Mount mounts a button on host. Attributes in seed, and declared
// attributes already on host, seed the initial values.
func Mount(reg *plcmp.Registry, host plcmp.Host, seed map[string]string) (*Button, error) {
	inst, err := reg.Mount(Tag, host, seed)
	if err != nil {
		return nil, err
	}
	return &Button{Instance: inst}, nil
}

// Wrap returns the button view of an instance mounted from Type.
func Wrap(inst *plcmp.Instance) (*Button, bool) {
	if inst == nil || inst.Type() != Type {
		return nil, false
	}
	return &Button{Instance: inst}, true
}

// Variant returns the effective variant. Unrecognised values render as
// secondary.
func (b *Button) Variant() Variant {
	return normalizeVariant(b.Instance.String("variant"))
}

func normalizeVariant(s string) Variant {
	if v := Variant(s); v.Valid() {
		return v
	}
	return VariantSecondary
}

// disabledObserver keeps the accessibility state in line with disabled and
// loading. The focus order and click suppression are handled by the gate.
func disabledObserver(inst *plcmp.Instance, newValue, oldValue any) error {
	host := inst.Host()
	if inst.Bool(plcmp.PropDisabled) || inst.Bool(plcmp.PropLoading) {
		host.SetAttribute("aria-disabled", "true")
	} else {
		host.RemoveAttribute("aria-disabled")
	}
	if inst.Bool(plcmp.PropLoading) {
		host.SetAttribute("aria-busy", "true")
	} else {
		host.RemoveAttribute("aria-busy")
	}
	return nil
}

func variantObserver(inst *plcmp.Instance, newValue, oldValue any) error {
	s, _ := newValue.(string)
	if s != "" && !Variant(s).Valid() {
		inst.Logger().Debug("unrecognised button variant", "variant", s, "fallback", VariantSecondary)
	}
	return nil
}

// Slots holds optional content placed before and after the label. The
// default slot is the templ children of the render call.
type Slots struct {
	Prefix templ.Component
	Suffix templ.Component
}

type slotsKey struct{}

// WithSlots attaches prefix and suffix content for the next button render.
//
//	ctx = button.WithSlots(ctx, button.Slots{Prefix: icon("save")})
func WithSlots(ctx context.Context, s Slots) context.Context {
	return context.WithValue(ctx, slotsKey{}, s)
}

func slotsFrom(ctx context.Context) Slots {
	s, _ := ctx.Value(slotsKey{}).(Slots)
	return s
}

// template renders the prefix slot, the label, the default slot and the
// suffix slot.
func template(inst *plcmp.Instance) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		slots := slotsFrom(ctx)

		if err := renderSlot(ctx, w, "prefix", slots.Prefix); err != nil {
			return err
		}
		if label := inst.String("label"); label != "" {
			if _, err := io.WriteString(w, templ.EscapeString(label)); err != nil {
				return err
			}
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		return renderSlot(ctx, w, "suffix", slots.Suffix)
	})
}

func renderSlot(ctx context.Context, w io.Writer, name string, c templ.Component) error {
	if c == nil {
		return nil
	}
	if _, err := io.WriteString(w, `<span slot="`+name+`">`); err != nil {
		return err
	}
	if err := c.Render(ctx, w); err != nil {
		return err
	}
	_, err := io.WriteString(w, `</span>`)
	return err
}
