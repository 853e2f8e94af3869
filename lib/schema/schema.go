// Package schema declares the typed properties of a component type.
//
// A Schema is built once, at type-definition time, from a list of
// descriptors and is immutable afterwards. Lookups and coercion have no side
// effects beyond returning a validated value or an error.
package schema

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors for schema operations.
var (
	ErrUnknownProperty   = errors.New("schema: unknown property")
	ErrTypeMismatch      = errors.New("schema: type mismatch")
	ErrDuplicateProperty = errors.New("schema: duplicate property")
	ErrInvalidDescriptor = errors.New("schema: invalid descriptor")
)

var attrName = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func descriptorValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("attrname", func(fl validator.FieldLevel) bool {
			return attrName.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Schema is the immutable set of descriptors of one component type.
type Schema struct {
	descs []Descriptor
	index map[string]int
}

// New validates descriptors and builds a schema. Descriptor names must be
// unique lowercase attribute names; defaults must coerce to the kind.
func New(descs ...Descriptor) (*Schema, error) {
	s := &Schema{
		descs: make([]Descriptor, 0, len(descs)),
		index: make(map[string]int, len(descs)),
	}

	v := descriptorValidator()
	for _, d := range descs {
		if err := v.Struct(d); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidDescriptor, d.Name, err)
		}
		if _, exists := s.index[d.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProperty, d.Name)
		}
		if d.Default != nil {
			if _, err := d.Coerce(d.Default); err != nil {
				return nil, fmt.Errorf("%w: default: %w", ErrInvalidDescriptor, err)
			}
		}
		s.index[d.Name] = len(s.descs)
		s.descs = append(s.descs, d)
	}

	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(descs ...Descriptor) *Schema {
	s, err := New(descs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the descriptor for name.
func (s *Schema) Lookup(name string) (Descriptor, error) {
	i, ok := s.index[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return s.descs[i], nil
}

// Has reports whether name is declared.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Descriptors returns the descriptors in declaration order.
func (s *Schema) Descriptors() []Descriptor {
	out := make([]Descriptor, len(s.descs))
	copy(out, s.descs)
	return out
}

// Len returns the number of declared properties.
func (s *Schema) Len() int {
	return len(s.descs)
}

// Coerce looks up name and coerces v to its kind.
func (s *Schema) Coerce(name string, v any) (Descriptor, any, error) {
	d, err := s.Lookup(name)
	if err != nil {
		return Descriptor{}, nil, err
	}
	cv, err := d.Coerce(v)
	if err != nil {
		return Descriptor{}, nil, err
	}
	return d, cv, nil
}

// MarshalYAML renders the schema as its descriptor list.
func (s *Schema) MarshalYAML() (any, error) {
	return s.descs, nil
}
