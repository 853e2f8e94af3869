package plcmp

import (
	"github.com/pthm/plcmp/lib/dom"
	"github.com/pthm/plcmp/lib/encoding"
	"github.com/pthm/plcmp/lib/schema"
)

// Encoder is an alias for encoding.Encoder for convenience.
type Encoder = encoding.Encoder

// Snapshot is an alias for encoding.Snapshot.
type Snapshot = encoding.Snapshot

// NewEncoder creates a new state token encoder with the given key.
func NewEncoder(key []byte) (*Encoder, error) {
	return encoding.NewEncoder(key)
}

// Host is the element a component instance is attached to.
type Host = dom.Host

// Event is a host event.
type Event = dom.Event

// Descriptor is an alias for schema.Descriptor.
type Descriptor = schema.Descriptor

// Bool declares a boolean (presence-flag) property.
func Bool(name string) Descriptor { return schema.BoolProp(name) }

// String declares a string property.
func String(name string) Descriptor { return schema.StringProp(name) }
