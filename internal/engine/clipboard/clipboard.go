// Package clipboard keeps pasted content from fusing with the link it is
// pasted into.
package clipboard

import (
	"fmt"
	"log/slog"

	"github.com/dshills/linkguard/internal/document"
	"github.com/dshills/linkguard/internal/engine/registry"
)

// Scheduler defers work until the current transaction closes.
type Scheduler interface {
	Schedule(fn func())
}

// Stats counts sanitizer activity.
type Stats struct {
	Sanitized int // pastes into a link
	Warnings  int // pastes whose content carried links
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithScheduler sets where warnings are deferred to.
func WithScheduler(s Scheduler) Option {
	return func(c *Sanitizer) {
		c.sched = s
	}
}

// WithWarning sets the function scheduled when pasted content carried links.
func WithWarning(fn func()) Option {
	return func(c *Sanitizer) {
		c.warning = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Sanitizer) {
		if l != nil {
			c.logger = l
		}
	}
}

// Sanitizer rewrites pasted content inside the paste transaction.
type Sanitizer struct {
	reg     *registry.Registry
	sched   Scheduler
	warning func()
	logger  *slog.Logger
	stats   Stats
}

// New creates a sanitizer for the registered link kinds.
func New(reg *registry.Registry, opts ...Option) *Sanitizer {
	c := &Sanitizer{reg: reg, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats returns a copy of the counters.
func (c *Sanitizer) Stats() Stats {
	return c.stats
}

// Hook adapts the sanitizer to the host's paste hook.
func (c *Sanitizer) Hook() document.PasteHook {
	return c.SanitizeInsertion
}

// SanitizeInsertion runs after slice was inserted at offset at. When the
// character left of the insertion carries a link, the link is kept on both
// sides of the slice and every link kind is stripped from the slice itself.
// A warning is scheduled if the slice carried links of its own.
func (c *Sanitizer) SanitizeInsertion(m document.Mutator, at document.Offset, slice document.Fragment) {
	n := slice.Len()
	if n == 0 || at == 0 {
		return
	}
	end := at + n
	if end > m.Len() {
		panic(fmt.Sprintf("clipboard: inserted slice [%d:%d) exceeds document length %d", at, end, m.Len()))
	}

	key, value, ok := c.reg.Link(m.AttributesAt(at))
	if !ok {
		return
	}

	left, _ := m.AttributeRun(at-1, key)
	before := document.NewRange(left.Start, at)
	after := document.NewRange(end, end)
	if run, ok := m.RunAt(end); ok && run.Attrs[key] == value {
		right, _ := m.AttributeRun(end, key)
		after.End = right.End
	}

	inserted := document.NewRange(at, end)
	for _, k := range c.reg.Keys() {
		mustMutate(m.RemoveAttribute(inserted, k))
	}
	for _, r := range []document.Range{before, after} {
		if !r.IsEmpty() {
			mustMutate(m.SetAttribute(r, key, value))
		}
	}
	c.stats.Sanitized++
	c.logger.Debug("sanitized paste into link",
		"key", key,
		"before", before.String(),
		"after", after.String(),
	)

	if c.carriesLinks(slice) && c.warning != nil && c.sched != nil {
		c.sched.Schedule(c.warning)
		c.stats.Warnings++
	}
}

func (c *Sanitizer) carriesLinks(slice document.Fragment) bool {
	for _, s := range slice {
		if c.reg.HasAny(s.Attributes) {
			return true
		}
	}
	return false
}

func mustMutate(err error) {
	if err != nil {
		panic(fmt.Sprintf("clipboard: host rejected mutation: %v", err))
	}
}
