package engine

import (
	"fmt"
	"log/slog"

	"github.com/dshills/linkguard/internal/config"
	"github.com/dshills/linkguard/internal/dispatcher"
	"github.com/dshills/linkguard/internal/document"
	"github.com/dshills/linkguard/internal/engine/clipboard"
	"github.com/dshills/linkguard/internal/engine/consistency"
	"github.com/dshills/linkguard/internal/engine/constraint"
	"github.com/dshills/linkguard/internal/engine/expander"
	"github.com/dshills/linkguard/internal/engine/intercept"
	"github.com/dshills/linkguard/internal/engine/registry"
)

// Engine holds the link-nesting rules built from one configuration and
// attaches them to documents. Like the documents it serves, it is single
// threaded.
type Engine struct {
	reg      *registry.Registry
	commands registry.Commands
	checker  *constraint.Checker

	merge     bool
	show      bool
	message   string
	maxPasses int

	logger *slog.Logger
	warner Warner

	warnings    int
	attachments []*Attachment
}

// New creates an engine from cfg. A nil cfg uses config.Default.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	e := &Engine{
		merge:     cfg.Links.MergeOverlapping,
		show:      cfg.Warnings.Show,
		message:   cfg.Warnings.Message,
		maxPasses: cfg.Links.MaxPasses,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.reg = registry.New(cfg.Links.AttributeKeys...)
	cmds, err := registry.NewCommands(e.reg, cfg.ResolveCommands(e.reg.Keys(), e.logger))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	e.commands = cmds
	e.checker = constraint.New(e.reg)

	e.logger.Debug("link engine ready",
		"keys", e.reg.Keys(),
		"commands", cmds.Names(),
		"merge", e.merge,
		"warnings", e.show,
	)
	return e, nil
}

// Registry returns the link kinds.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// Commands returns the resolved command to key mapping.
func (e *Engine) Commands() registry.Commands {
	return e.commands
}

// Checker returns the constraint checker.
func (e *Engine) Checker() *constraint.Checker {
	return e.checker
}

// DocumentOptions returns the document options matching the configuration.
func (e *Engine) DocumentOptions() []document.Option {
	opts := []document.Option{document.WithLogger(e.logger)}
	if e.maxPasses > 0 {
		opts = append(opts, document.WithMaxPasses(e.maxPasses))
	}
	return opts
}

// warn delivers the nesting warning, or logs it when warnings are hidden or
// no warner is set.
func (e *Engine) warn() {
	e.warnings++
	if e.show && e.warner != nil {
		e.warner.Warn(e.message)
		return
	}
	e.logger.Warn("link nesting blocked", "message", e.message)
}

// Attachment is the engine wired into one document and, optionally, one
// dispatcher.
type Attachment struct {
	doc          *document.Document
	pass         *consistency.Pass
	sanitizer    *clipboard.Sanitizer
	expander     *expander.Expander
	interceptors []*intercept.Interceptor
}

// Attach registers the validator, the post-commit pass, the paste hook and
// the selection listener on doc. When d is not nil it is bound to doc and
// gets one interceptor per link command.
func (e *Engine) Attach(doc *document.Document, d *dispatcher.Dispatcher) *Attachment {
	a := &Attachment{doc: doc}

	doc.AddValidator(e.checker.Validator(doc))

	a.pass = consistency.New(e.reg,
		consistency.WithScheduler(doc.Tasks()),
		consistency.WithWarning(e.warn),
		consistency.WithLogger(e.logger),
	)
	doc.OnCommit(a.pass.Listener())

	a.sanitizer = clipboard.New(e.reg,
		clipboard.WithScheduler(doc.Tasks()),
		clipboard.WithWarning(e.warn),
		clipboard.WithLogger(e.logger),
	)
	doc.OnPaste(a.sanitizer.Hook())

	a.expander = expander.New(e.reg, doc, expander.WithLogger(e.logger))
	doc.OnSelectionChange(a.expander.Listener())

	if d != nil {
		d.SetDocument(doc)
		for _, name := range e.commands.Names() {
			key, _ := e.commands.Resolve(name)
			i := intercept.New(name, key, e.reg,
				intercept.WithWarning(e.warn),
				intercept.WithMergeOverlapping(e.merge),
				intercept.WithLogger(e.logger),
			)
			d.Hooks().RegisterPre(i)
			a.interceptors = append(a.interceptors, i)
		}
	}

	e.attachments = append(e.attachments, a)
	return a
}

// Document returns the attached document.
func (a *Attachment) Document() *document.Document {
	return a.doc
}

// Check runs the consistency pass over the whole document and settles it.
// It repairs documents loaded from outside, whose nesting no transaction
// ever saw.
func (a *Attachment) Check() (*document.Transaction, error) {
	return a.doc.Change("check", func(m document.Mutator) error {
		if n := m.Len(); n > 0 {
			a.pass.Run([]document.ChangeRecord{document.NewInsertRecord(0, n)}, m)
		}
		return nil
	})
}

// Stats aggregates activity across attachments.
type Stats struct {
	Warnings  int
	Pass      consistency.Stats
	Clipboard clipboard.Stats
	Intercept intercept.Stats
	Expanded  int
}

// Stats returns the aggregated counters.
func (e *Engine) Stats() Stats {
	s := Stats{Warnings: e.warnings}
	for _, a := range e.attachments {
		p := a.pass.Stats()
		s.Pass.Runs += p.Runs
		s.Pass.Corrections += p.Corrections
		s.Pass.Stripped += p.Stripped
		s.Pass.Resolved += p.Resolved
		s.Pass.Warnings += p.Warnings

		c := a.sanitizer.Stats()
		s.Clipboard.Sanitized += c.Sanitized
		s.Clipboard.Warnings += c.Warnings

		for _, i := range a.interceptors {
			is := i.Stats()
			s.Intercept.Passed += is.Passed
			s.Intercept.Rejected += is.Rejected
			s.Intercept.Replaced += is.Replaced
		}
		s.Expanded += a.expander.Expanded()
	}
	return s
}
