package schema

import (
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

// Kind is the declared value type of a property.
type Kind int

const (
	// Bool properties are presence flags.
	Bool Kind = iota + 1
	// String properties carry arbitrary text.
	String
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "boolean"
	case String:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalYAML renders the kind by name.
func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// Descriptor declares one property of a component type.
//
// Descriptors are values; the builder methods return modified copies so a
// declaration reads as a single expression:
//
//	schema.StringProp("variant").Reflected().WithDefault("secondary")
type Descriptor struct {
	Name     string `yaml:"name" validate:"required,attrname"`
	Kind     Kind   `yaml:"kind" validate:"oneof=1 2"`
	Default  any    `yaml:"default,omitempty"`
	Reflect  bool   `yaml:"reflect"`
	Observer string `yaml:"observer,omitempty"`
}

// BoolProp starts a boolean descriptor.
func BoolProp(name string) Descriptor {
	return Descriptor{Name: name, Kind: Bool}
}

// StringProp starts a string descriptor.
func StringProp(name string) Descriptor {
	return Descriptor{Name: name, Kind: String}
}

// Reflected marks the property as mirrored to the attribute of the same name.
func (d Descriptor) Reflected() Descriptor {
	d.Reflect = true
	return d
}

// WithDefault sets the value assigned before any explicit write.
func (d Descriptor) WithDefault(v any) Descriptor {
	d.Default = v
	return d
}

// ObservedBy names the observer invoked on every change of the property.
func (d Descriptor) ObservedBy(observer string) Descriptor {
	d.Observer = observer
	return d
}

// Zero returns the zero value of the descriptor's kind.
func (d Descriptor) Zero() any {
	if d.Kind == Bool {
		return false
	}
	return ""
}

// Initial returns the coerced default, or the zero value when none is set.
func (d Descriptor) Initial() any {
	if d.Default == nil {
		return d.Zero()
	}
	v, err := d.Coerce(d.Default)
	if err != nil {
		return d.Zero()
	}
	return v
}

// Coerce normalises v to the descriptor's kind. Values that cannot be
// represented fail with ErrTypeMismatch.
func (d Descriptor) Coerce(v any) (any, error) {
	v = underlying(v)
	switch d.Kind {
	case Bool:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q wants %s, got %T", ErrTypeMismatch, d.Name, d.Kind, v)
		}
		return b, nil
	case String:
		if !isScalar(v) {
			return nil, fmt.Errorf("%w: %q wants %s, got %T", ErrTypeMismatch, d.Name, d.Kind, v)
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q wants %s, got %T", ErrTypeMismatch, d.Name, d.Kind, v)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q has unknown kind %s", ErrTypeMismatch, d.Name, d.Kind)
	}
}

// underlying unwraps named basic types (type Variant string) so cast sees
// the plain kind.
func underlying(v any) any {
	if v == nil {
		return nil
	}
	if _, ok := v.(fmt.Stringer); ok {
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return v
	}
}

// isScalar rejects composite values that cast would otherwise stringify.
func isScalar(v any) bool {
	if v == nil {
		return true
	}
	if _, ok := v.(fmt.Stringer); ok {
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice:
		// []byte
		return reflect.TypeOf(v).Elem().Kind() == reflect.Uint8
	default:
		return false
	}
}
