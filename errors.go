package plcmp

import (
	"errors"

	"github.com/pthm/plcmp/lib/encoding"
	"github.com/pthm/plcmp/lib/schema"
)

// Sentinel errors for component operations.
var (
	// ErrUnknownProperty is returned when a read or write names a property
	// the component type does not declare. Nothing is mutated.
	ErrUnknownProperty = schema.ErrUnknownProperty

	// ErrTypeMismatch is returned when a value cannot be coerced to the
	// declared kind. Nothing is mutated.
	ErrTypeMismatch = schema.ErrTypeMismatch

	// ErrObserverFailure wraps an error returned by an observer. The write
	// that triggered it has already been stored and reflected.
	ErrObserverFailure = errors.New("plcmp: observer failed")

	ErrDuplicateType   = errors.New("plcmp: component type already defined")
	ErrUnknownType     = errors.New("plcmp: unknown component type")
	ErrNotDefined      = errors.New("plcmp: component type not defined")
	ErrUnboundObserver = errors.New("plcmp: observer not bound")

	ErrInvalidFormat    = encoding.ErrInvalidFormat
	ErrSignatureInvalid = encoding.ErrSignatureInvalid
)

// IsUnknownProperty checks if err is an unknown-property error.
func IsUnknownProperty(err error) bool {
	return errors.Is(err, ErrUnknownProperty)
}

// IsTypeMismatch checks if err is a type-mismatch error.
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsObserverFailure checks if err came from an observer.
func IsObserverFailure(err error) bool {
	return errors.Is(err, ErrObserverFailure)
}

// IsUnknownType checks if err is an unknown-type error.
func IsUnknownType(err error) bool {
	return errors.Is(err, ErrUnknownType)
}

// IsTokenError checks if err is a state token format or signature error.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) || errors.Is(err, ErrSignatureInvalid)
}

// IsRejected checks if err rejected a write before any mutation.
func IsRejected(err error) bool {
	return IsUnknownProperty(err) || IsTypeMismatch(err)
}
