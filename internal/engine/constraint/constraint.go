// Package constraint blocks attribute writes that would nest links.
//
// The Checker is advisory-preventive: the host consults it before accepting
// an attribute write, so new nesting is refused at the source. It cannot see
// nesting created through paths that bypass validation; the consistency pass
// covers those.
package constraint

import (
	"github.com/dshills/linkguard/internal/document"
	"github.com/dshills/linkguard/internal/engine/registry"
)

// AttributeSource resolves node attributes.
type AttributeSource interface {
	Attributes(id document.NodeID) document.Attributes
}

// Checker decides whether a link attribute may be applied to a node.
type Checker struct {
	reg *registry.Registry
}

// New creates a checker for the registered link kinds.
func New(reg *registry.Registry) *Checker {
	return &Checker{reg: reg}
}

// MayApply reports whether key may be written on node.
//
// Keys that are not link kinds are always allowed. A link key is refused when
// the node itself or any of its ancestors already carries any link kind.
// The walk is O(depth) and does not allocate.
func (c *Checker) MayApply(src AttributeSource, node document.NodeID, key string, ancestors []document.NodeID) bool {
	if !c.reg.Has(key) {
		return true
	}
	if c.reg.HasAny(src.Attributes(node)) {
		return false
	}
	for _, id := range ancestors {
		if c.reg.HasAny(src.Attributes(id)) {
			return false
		}
	}
	return true
}

// Validator adapts the checker to the host's validation hook.
func (c *Checker) Validator(src AttributeSource) document.Validator {
	return func(node document.NodeID, key string, ancestors []document.NodeID) bool {
		return c.MayApply(src, node, key, ancestors)
	}
}
