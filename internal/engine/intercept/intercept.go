// Package intercept applies link policy to link-creating commands before
// their handlers run.
//
// One Interceptor is registered as a pre-dispatch hook per link command. It
// classifies the selection and either lets the command through, rejects it
// with a warning, or rewrites the overlapped links in place and reports the
// command as executed.
package intercept

import (
	"fmt"
	"log/slog"

	"github.com/dshills/linkguard/internal/dispatcher/execctx"
	"github.com/dshills/linkguard/internal/dispatcher/handler"
	"github.com/dshills/linkguard/internal/dispatcher/hook"
	"github.com/dshills/linkguard/internal/document"
	"github.com/dshills/linkguard/internal/engine/registry"
)

// Rejection messages left on the execution context.
const (
	MsgInsideLink  = "selection is inside an existing link"
	MsgOverlapping = "selection overlaps an existing link"
	MsgReplaced    = "replaced overlapping link"
)

// Stats counts interceptor decisions.
type Stats struct {
	Passed   int
	Rejected int
	Replaced int
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithWarning sets the function called when a command is rejected.
func WithWarning(fn func()) Option {
	return func(i *Interceptor) {
		i.warn = fn
	}
}

// WithMergeOverlapping controls whether overlapping selections are rewritten
// (true, the default) or rejected.
func WithMergeOverlapping(merge bool) Option {
	return func(i *Interceptor) {
		i.merge = merge
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interceptor) {
		if l != nil {
			i.logger = l
		}
	}
}

// Interceptor is the pre-dispatch hook for one link command.
type Interceptor struct {
	command string
	key     string
	reg     *registry.Registry
	merge   bool
	warn    func()
	logger  *slog.Logger
	stats   Stats
}

var _ hook.PreDispatchHook = (*Interceptor)(nil)

// New creates an interceptor for command, which writes key.
func New(command, key string, reg *registry.Registry, opts ...Option) *Interceptor {
	i := &Interceptor{
		command: command,
		key:     key,
		reg:     reg,
		merge:   true,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Name implements hook.Hook.
func (i *Interceptor) Name() string { return "link-intercept:" + i.command }

// Priority implements hook.Hook.
func (i *Interceptor) Priority() int { return hook.PriorityLink }

// Command returns the intercepted command. It scopes the hook, so the
// dispatcher only runs the interceptor for that command.
func (i *Interceptor) Command() string { return i.command }

// Key returns the attribute key the command writes.
func (i *Interceptor) Key() string { return i.key }

// Stats returns a copy of the counters.
func (i *Interceptor) Stats() Stats { return i.stats }

// PreDispatch implements hook.PreDispatchHook.
func (i *Interceptor) PreDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext) bool {
	if ctx.Doc == nil {
		return true
	}

	sel := ctx.Selection()
	class, existing := Classify(ctx.Doc, i.reg, sel)
	i.logger.Debug("link command classified",
		"command", cmd.Name,
		"selection", sel.String(),
		"class", class.String(),
	)

	switch class {
	case Inside:
		if existing == i.key {
			i.stats.Passed++
			return true
		}
		return i.reject(ctx, MsgInsideLink)
	case Overlapping:
		if !i.merge {
			return i.reject(ctx, MsgOverlapping)
		}
		return i.replace(cmd, ctx, sel.Range())
	default:
		i.stats.Passed++
		return true
	}
}

func (i *Interceptor) reject(ctx *execctx.ExecutionContext, reason string) bool {
	i.stats.Rejected++
	ctx.Reject(reason)
	if i.warn != nil {
		i.warn()
	}
	return false
}

// replace strips every link kind from the valid parts of r and writes the
// command's key and auxiliary attributes there, in one transaction.
func (i *Interceptor) replace(cmd *handler.Command, ctx *execctx.ExecutionContext, r document.Range) bool {
	ranges := ctx.Doc.ValidRanges(r, i.key)
	if len(ranges) == 0 {
		return i.reject(ctx, MsgInsideLink)
	}

	aux := cmd.Auxiliary()
	_, err := ctx.Doc.Change(cmd.Name, func(m document.Mutator) error {
		for _, vr := range ranges {
			for _, k := range i.reg.Keys() {
				if err := m.RemoveAttribute(vr, k); err != nil {
					return err
				}
			}
			if err := m.SetAttribute(vr, i.key, cmd.Value); err != nil {
				return err
			}
			for _, k := range aux.Keys() {
				if err := m.SetAttribute(vr, k, aux[k]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		i.logger.Error("link replace failed", "command", cmd.Name, "error", err)
		ctx.Reject(fmt.Sprintf("link replace failed: %v", err))
		return false
	}

	i.stats.Replaced++
	ctx.MarkHandled(MsgReplaced)
	ctx.NotifyExecuted()
	return false
}
