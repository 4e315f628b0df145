// Package execctx provides the execution context for command handlers.
package execctx

import (
	"log/slog"

	"github.com/dshills/linkguard/internal/document"
)

// ExecutionContext carries the document a command runs against and the
// dispatch state hooks use to short-circuit a command.
type ExecutionContext struct {
	// Doc is the document the command mutates.
	Doc document.Transactor

	// Logger receives handler diagnostics. Never nil after New.
	Logger *slog.Logger

	// Data holds arbitrary hook and handler data.
	Data map[string]any

	handled bool
	message string
	notify  func()
}

// New creates an execution context for doc.
func New(doc document.Transactor) *ExecutionContext {
	return &ExecutionContext{
		Doc:    doc,
		Logger: slog.Default(),
		Data:   make(map[string]any),
	}
}

// WithLogger sets the logger.
func (ctx *ExecutionContext) WithLogger(l *slog.Logger) *ExecutionContext {
	if l != nil {
		ctx.Logger = l
	}
	return ctx
}

// Selection returns the document selection.
func (ctx *ExecutionContext) Selection() document.Selection {
	if ctx.Doc == nil {
		return document.Selection{}
	}
	return ctx.Doc.Selection()
}

// HasSelection returns true if the selection is not collapsed.
func (ctx *ExecutionContext) HasSelection() bool {
	return !ctx.Selection().IsEmpty()
}

// MarkHandled records that a pre-dispatch hook performed the command itself.
// The dispatcher then reports success with message instead of cancellation.
func (ctx *ExecutionContext) MarkHandled(message string) {
	ctx.handled = true
	ctx.message = message
}

// Reject records why a pre-dispatch hook stopped the command.
func (ctx *ExecutionContext) Reject(reason string) {
	ctx.handled = false
	ctx.message = reason
}

// Handled reports whether a hook performed the command, and the message the
// hook left for the result.
func (ctx *ExecutionContext) Handled() (bool, string) {
	return ctx.handled, ctx.message
}

// SetNotifier installs the execute-completion signal for the current command.
func (ctx *ExecutionContext) SetNotifier(fn func()) {
	ctx.notify = fn
}

// NotifyExecuted fires the execute-completion signal, if any.
func (ctx *ExecutionContext) NotifyExecuted() {
	if ctx.notify != nil {
		ctx.notify()
	}
}

// SetData stores a value in the context.
func (ctx *ExecutionContext) SetData(key string, value any) {
	if ctx.Data == nil {
		ctx.Data = make(map[string]any)
	}
	ctx.Data[key] = value
}

// GetData retrieves a value from the context.
func (ctx *ExecutionContext) GetData(key string) (any, bool) {
	if ctx.Data == nil {
		return nil, false
	}
	v, ok := ctx.Data[key]
	return v, ok
}

// GetDataString retrieves a string value from the context.
func (ctx *ExecutionContext) GetDataString(key string) string {
	if v, ok := ctx.GetData(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Validate checks that the context can run a command.
func (ctx *ExecutionContext) Validate() error {
	if ctx.Doc == nil {
		return ErrMissingDocument
	}
	return nil
}
