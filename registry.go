package plcmp

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// DefaultPrefix is the URL prefix the registry handler is mounted under.
const DefaultPrefix = "/_pl/"

// Registry holds component types keyed by tag and serves their HTTP routes.
//
// Types are registered explicitly, exactly once per tag:
//
//	reg := plcmp.NewRegistry(key)
//	reg.MustDefine(button.Type)
//	http.Handle("/_pl/", reg.Handler())
type Registry struct {
	mu      sync.RWMutex
	types   map[string]*Type
	encoder *Encoder
	prefix  string

	// Logger receives definition and request error logs.
	Logger *slog.Logger

	// OnError is called when a request fails.
	// Customize this to handle errors appropriately for your application.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// NewRegistry creates a new registry with the given state token key.
func NewRegistry(key []byte) *Registry {
	enc, err := NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("plcmp: failed to create encoder: %v", err))
	}

	reg := &Registry{
		types:   make(map[string]*Type),
		encoder: enc,
		prefix:  DefaultPrefix,
		Logger:  slog.Default(),
	}
	reg.OnError = reg.defaultOnError

	return reg
}

// Encoder returns the registry's state token encoder.
func (reg *Registry) Encoder() *Encoder {
	return reg.encoder
}

// Prefix returns the URL prefix of the registry's routes.
func (reg *Registry) Prefix() string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.prefix
}

// SetPrefix changes the URL prefix. A trailing slash is added if missing.
func (reg *Registry) SetPrefix(prefix string) {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	reg.mu.Lock()
	reg.prefix = prefix
	reg.mu.Unlock()
}

// Define registers component types. Each type is frozen on its first
// definition; a tag already present in the registry is rejected with
// ErrDuplicateType. Types are checked before any is added, so a failed call
// registers nothing.
func (reg *Registry) Define(types ...*Type) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	seen := make(map[string]bool, len(types))
	for _, t := range types {
		if t == nil {
			return fmt.Errorf("plcmp: nil component type")
		}
		if _, exists := reg.types[t.tag]; exists || seen[t.tag] {
			return fmt.Errorf("%w: %q", ErrDuplicateType, t.tag)
		}
		seen[t.tag] = true
		if err := t.define(); err != nil {
			return err
		}
	}

	for _, t := range types {
		reg.types[t.tag] = t
		reg.Logger.Debug("component defined",
			"tag", t.tag,
			"properties", t.schema.Len(),
			"gated", t.Gated(),
		)
	}
	return nil
}

// MustDefine is like Define but panics on error.
func (reg *Registry) MustDefine(types ...*Type) {
	if err := reg.Define(types...); err != nil {
		panic(err)
	}
}

// Lookup returns the type registered under tag.
func (reg *Registry) Lookup(tag string) (*Type, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	t, ok := reg.types[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}
	return t, nil
}

// Tags returns the registered tags in sorted order.
func (reg *Registry) Tags() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	tags := make([]string, 0, len(reg.types))
	for tag := range reg.types {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Descriptor returns the descriptor of property name on the type tag.
func (reg *Registry) Descriptor(tag, name string) (Descriptor, error) {
	t, err := reg.Lookup(tag)
	if err != nil {
		return Descriptor{}, err
	}
	d, err := t.schema.Lookup(name)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", tag, err)
	}
	return d, nil
}

// Mount creates a live instance of tag attached to host. Markup attributes
// in seed, and declared attributes already on the host, are read once to
// seed initial values.
func (reg *Registry) Mount(tag string, host Host, seed map[string]string) (*Instance, error) {
	t, err := reg.Lookup(tag)
	if err != nil {
		return nil, err
	}
	return mount(reg, t, host, Snapshot{Tag: tag, Attrs: seed})
}

// Restore mounts the instance captured by snap on host. The snapshot's tag
// selects the type.
func (reg *Registry) Restore(snap Snapshot, host Host) (*Instance, error) {
	t, err := reg.Lookup(snap.Tag)
	if err != nil {
		return nil, err
	}
	return mount(reg, t, host, snap)
}

var (
	defaultMu  sync.RWMutex
	defaultReg *Registry
)

// Default returns the process-wide registry, creating it with a random key
// on first use.
func Default() *Registry {
	defaultMu.RLock()
	reg := defaultReg
	defaultMu.RUnlock()
	if reg != nil {
		return reg
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReg == nil {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("plcmp: failed to generate random key: %v", err))
		}
		defaultReg = NewRegistry(key)
	}
	return defaultReg
}

// SetDefault replaces the process-wide registry.
func SetDefault(reg *Registry) {
	defaultMu.Lock()
	defaultReg = reg
	defaultMu.Unlock()
}

// Define registers types with the process-wide registry.
func Define(types ...*Type) error {
	return Default().Define(types...)
}
