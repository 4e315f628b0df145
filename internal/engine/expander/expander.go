// Package expander selects a whole link when the user places the caret in it.
package expander

import (
	"log/slog"

	"github.com/dshills/linkguard/internal/document"
	"github.com/dshills/linkguard/internal/engine/registry"
)

// Option configures an Expander.
type Option func(*Expander)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Expander) {
		if l != nil {
			e.logger = l
		}
	}
}

// Expander listens for selection changes on one document.
type Expander struct {
	reg      *registry.Registry
	doc      document.Transactor
	logger   *slog.Logger
	expanded int
}

// New creates an expander for doc.
func New(reg *registry.Registry, doc document.Transactor, opts ...Option) *Expander {
	e := &Expander{reg: reg, doc: doc, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Listener adapts the expander to the host's selection notifications.
func (e *Expander) Listener() document.SelectionListener {
	return e.OnSelectionChange
}

// Expanded returns how many selections were expanded.
func (e *Expander) Expanded() int {
	return e.expanded
}

// OnSelectionChange expands a user-placed caret carrying a link to the
// link's full range. Selections written by the engine or the host are
// ignored, which also keeps the expander from reacting to its own writes.
func (e *Expander) OnSelectionChange(change document.SelectionChange) {
	if change.Origin != document.OriginUser || !change.Selection.IsEmpty() {
		return
	}

	at := change.Selection.Head
	key, _, ok := e.reg.Link(e.doc.AttributesAt(at))
	if !ok {
		return
	}
	probe := at - 1
	if at == 0 {
		probe = 0
	}
	r, ok := e.doc.AttributeRun(probe, key)
	if !ok || r.IsEmpty() {
		return
	}

	_, err := e.doc.Change("expand selection", func(m document.Mutator) error {
		return m.SetSelection(document.NewRangeSelection(r), document.OriginEngine)
	})
	if err != nil {
		e.logger.Error("expand selection failed", "range", r.String(), "error", err)
		return
	}
	e.expanded++
	e.logger.Debug("expanded selection to link", "key", key, "range", r.String())
}
