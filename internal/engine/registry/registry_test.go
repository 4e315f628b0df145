package registry

import (
	"errors"
	"slices"
	"testing"

	"github.com/dshills/linkguard/internal/document"
)

func TestNewFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want []string
	}{
		{"nil", nil, DefaultKeys},
		{"only empty", []string{"", ""}, DefaultKeys},
		{"configured", []string{"linkA", "linkB"}, []string{"linkA", "linkB"}},
		{"duplicates", []string{"linkA", "linkA", "", "linkB"}, []string{"linkA", "linkB"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.keys...)
			if got := r.Keys(); !slices.Equal(got, tt.want) {
				t.Errorf("Keys() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeysIsACopy(t *testing.T) {
	r := New("linkA")
	keys := r.Keys()
	keys[0] = "mutated"
	if r.First() != "linkA" {
		t.Error("Keys must not expose internal state")
	}
}

func TestLinkedAndLink(t *testing.T) {
	r := New("linkA", "linkB", "linkC")
	attrs := document.Attributes{"linkC": "z", "bold": "1", "linkA": "x"}

	if got := r.Linked(attrs); !slices.Equal(got, []string{"linkA", "linkC"}) {
		t.Errorf("Linked = %v", got)
	}
	if k, v, ok := r.Link(attrs); !ok || k != "linkA" || v != "x" {
		t.Errorf("Link = %q %q %v", k, v, ok)
	}
	if !r.HasAny(attrs) {
		t.Error("HasAny should be true")
	}
	if r.HasAny(document.Attributes{"bold": "1"}) {
		t.Error("HasAny should ignore unregistered keys")
	}
	if _, _, ok := r.Link(nil); ok {
		t.Error("Link on nil attributes should fail")
	}
}

func TestCommands(t *testing.T) {
	r := New("linkA", "linkB")

	c, err := NewCommands(r, map[string]string{"link": "linkA", "anchor": "linkB"})
	if err != nil {
		t.Fatalf("NewCommands: %v", err)
	}
	if key, ok := c.Resolve("anchor"); !ok || key != "linkB" {
		t.Errorf("Resolve(anchor) = %q, %v", key, ok)
	}
	if _, ok := c.Resolve("bold"); ok {
		t.Error("unmapped command should not resolve")
	}
	if got := c.Names(); !slices.Equal(got, []string{"anchor", "link"}) {
		t.Errorf("Names = %v", got)
	}

	if _, err := NewCommands(r, map[string]string{"link": "nope"}); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
}
