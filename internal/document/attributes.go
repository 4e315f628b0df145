package document

import (
	"maps"
	"slices"
	"strings"
)

// Attributes maps attribute keys to values. Values are opaque strings
// compared by equality.
type Attributes map[string]string

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Get returns the value for key.
func (a Attributes) Get(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

// Clone returns a copy. A nil receiver yields an empty, non-nil map.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	maps.Copy(out, a)
	return out
}

// Equal reports whether both maps hold the same keys and values.
func (a Attributes) Equal(other Attributes) bool {
	return maps.Equal(a, other)
}

// Keys returns the keys in sorted order.
func (a Attributes) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

// String renders the attributes as {k=v, ...} in key order.
func (a Attributes) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range a.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(a[k])
	}
	sb.WriteByte('}')
	return sb.String()
}
