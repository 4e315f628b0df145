// Package registry holds the set of attribute keys that denote links.
//
// Link kinds are mutually exclusive: a text run may carry at most one of the
// registered keys. The registry is immutable once built and never empty;
// an empty key list falls back to DefaultKeys so the rest of the engine is
// never silently disabled.
package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/linkguard/internal/document"
)

// DefaultKeys are the link kinds registered when none are configured.
var DefaultKeys = []string{"linkHref", "anchorHref", "emailHref", "documentHref"}

// ErrUnknownKey indicates a command was mapped to a key that is not registered.
var ErrUnknownKey = errors.New("attribute key is not a registered link kind")

// Registry is an ordered, duplicate-free set of link attribute keys.
type Registry struct {
	keys []string
	set  map[string]struct{}
}

// New registers keys in order, dropping empty and duplicate entries.
// With nothing left, DefaultKeys are used.
func New(keys ...string) *Registry {
	r := &Registry{set: make(map[string]struct{})}
	r.register(keys)
	if len(r.keys) == 0 {
		r.register(DefaultKeys)
	}
	return r
}

func (r *Registry) register(keys []string) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := r.set[k]; dup {
			continue
		}
		r.set[k] = struct{}{}
		r.keys = append(r.keys, k)
	}
}

// Keys returns a copy of the registered keys in registration order.
func (r *Registry) Keys() []string {
	return slices.Clone(r.keys)
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	return len(r.keys)
}

// Has reports whether key is a registered link kind.
func (r *Registry) Has(key string) bool {
	_, ok := r.set[key]
	return ok
}

// First returns the first registered key.
func (r *Registry) First() string {
	return r.keys[0]
}

// HasAny reports whether attrs carry any registered key.
func (r *Registry) HasAny(attrs document.Attributes) bool {
	for k := range attrs {
		if r.Has(k) {
			return true
		}
	}
	return false
}

// Linked returns the registered keys present in attrs, in registry order.
func (r *Registry) Linked(attrs document.Attributes) []string {
	var out []string
	for _, k := range r.keys {
		if attrs.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Link returns the first registered key present in attrs and its value.
func (r *Registry) Link(attrs document.Attributes) (key, value string, ok bool) {
	for _, k := range r.keys {
		if v, found := attrs.Get(k); found {
			return k, v, true
		}
	}
	return "", "", false
}

// Commands maps link-creating command names to the key each one manages.
type Commands map[string]string

// NewCommands validates mapping against the registry.
func NewCommands(r *Registry, mapping map[string]string) (Commands, error) {
	out := make(Commands, len(mapping))
	for cmd, key := range mapping {
		if !r.Has(key) {
			return nil, fmt.Errorf("command %q: %w: %q", cmd, ErrUnknownKey, key)
		}
		out[cmd] = key
	}
	return out, nil
}

// Resolve returns the key managed by command.
func (c Commands) Resolve(command string) (string, bool) {
	key, ok := c[command]
	return key, ok
}

// Names returns the command names in sorted order.
func (c Commands) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
