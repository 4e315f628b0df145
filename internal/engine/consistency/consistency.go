// Package consistency restores link exclusivity after a transaction commits.
//
// The pass inspects the change records of a transaction, looks at every text
// run the records touched, and corrects two conditions:
//
//   - A run carrying more than one link kind keeps only the kind written by
//     the triggering record (or the first registered kind for inserts).
//   - A run whose link differs from a link on one of its ancestor elements is
//     nested; all link kinds are stripped from the run and a warning is owed.
//
// Sibling runs occupy disjoint character ranges, so adjacent links of
// different kinds are never a conflict.
//
// Warnings are never delivered from inside the pass. They are scheduled on
// the host's post-transaction queue. The host re-runs the pass until it
// reports no correction.
package consistency

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

// Stats counts pass activity.
type Stats struct {
	Runs        int // times Run was called
	Corrections int // runs that changed the document
	Stripped    int // text runs that lost their link to nesting
	Resolved    int // text runs that held several link kinds
	Warnings    int // warnings scheduled
}

// Option configures a Pass.
type Option func(*Pass)

// WithScheduler sets where warnings are deferred to.
func WithScheduler(s Scheduler) Option {
	return func(p *Pass) {
		p.sched = s
	}
}

// WithWarning sets the function scheduled when nesting was stripped.
func WithWarning(fn func()) Option {
	return func(p *Pass) {
		p.warning = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pass) {
		if l != nil {
			p.logger = l
		}
	}
}

// Pass is the post-commit correction routine.
type Pass struct {
	reg     *registry.Registry
	sched   Scheduler
	warning func()
	logger  *slog.Logger
	stats   Stats
}

// New creates a pass for the registered link kinds.
func New(reg *registry.Registry, opts ...Option) *Pass {
	p := &Pass{reg: reg, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stats returns a copy of the counters.
func (p *Pass) Stats() Stats {
	return p.stats
}

// Listener adapts the pass to the host's commit hook.
func (p *Pass) Listener() document.CommitListener {
	return p.Run
}

// Run corrects the runs touched by records and reports whether it changed
// anything. Running it again over the same records after a correction
// returns false.
func (p *Pass) Run(records []document.ChangeRecord, m document.Mutator) bool {
	p.stats.Runs++
	changed := false
	warn := false

	// Latest write wins when a run ends up with several link kinds.
	for i := len(records) - 1; i >= 0; i-- {
		r, trigger, ok := p.affected(records[i], m.Len())
		if !ok {
			continue
		}
		for _, run := range m.RunsIn(r) {
			linked := p.reg.Linked(run.Attrs)
			if len(linked) == 0 {
				continue
			}

			if len(linked) > 1 {
				keep := linked[0]
				for _, k := range linked {
					if k == trigger {
						keep = k
					}
				}
				for _, k := range linked {
					if k != keep {
						mustMutate(m.RemoveAttribute(run.Range, k))
					}
				}
				p.logger.Debug("resolved overlapping link kinds", "range", run.Range.String(), "kept", keep)
				p.stats.Resolved++
				changed = true
				linked = []string{keep}
			}

			if p.nested(m, run, linked[0]) {
				for _, k := range linked {
					mustMutate(m.RemoveAttribute(run.Range, k))
				}
				p.logger.Debug("stripped nested link", "range", run.Range.String(), "key", linked[0])
				p.stats.Stripped++
				changed = true
				warn = true
			}
		}
	}

	if changed {
		p.stats.Corrections++
	}
	if warn && p.warning != nil && p.sched != nil {
		p.sched.Schedule(p.warning)
		p.stats.Warnings++
	}
	return changed
}

// affected returns the range a record touched and the link key it wrote.
// Records for unrelated attributes are skipped.
func (p *Pass) affected(rec document.ChangeRecord, length document.Offset) (document.Range, string, bool) {
	if !rec.Range.IsValid() {
		panic(fmt.Sprintf("consistency: malformed change record %v", rec))
	}
	r := rec.Range
	if r.End > length {
		r.End = length
	}
	switch rec.Kind {
	case document.ChangeInsert:
		return r, "", !r.IsEmpty()
	case document.ChangeAttribute:
		if !p.reg.Has(rec.Key) {
			return document.Range{}, "", false
		}
		return r, rec.Key, !r.IsEmpty()
	default:
		return document.Range{}, "", false
	}
}

// nested reports whether an ancestor of run carries a link other than
// (key, value of key on run).
func (p *Pass) nested(m document.Reader, run document.Run, key string) bool {
	value := run.Attrs[key]
	for _, anc := range m.Ancestors(run.ID) {
		attrs := m.Attributes(anc)
		if attrs == nil {
			panic(fmt.Sprintf("consistency: broken ancestor chain at node %d", anc))
		}
		for _, k := range p.reg.Linked(attrs) {
			if k != key || attrs[k] != value {
				return true
			}
		}
	}
	return false
}

// mustMutate fails fast on host contract breaches. The pass only writes
// ranges it read from the host in the same transaction.
func mustMutate(err error) {
	if err != nil {
		panic(fmt.Sprintf("consistency: host rejected correction: %v", err))
	}
}
