// Package handler provides the handler interface and types for command dispatch.
package handler

import (
	"fmt"
	"reflect"

	"github.com/dshills/linkguard/internal/dispatcher/execctx"
	"github.com/dshills/linkguard/internal/document"
)

// Command is a named document command with its value and options.
type Command struct {
	// Name identifies the command, e.g. "link".
	Name string

	// Value is the attribute value the command writes.
	Value string

	// Options are extra command arguments. Non-function entries are
	// written as auxiliary attributes next to the command's attribute.
	Options map[string]any
}

// Auxiliary returns the non-function options rendered as attributes.
func (c Command) Auxiliary() document.Attributes {
	out := make(document.Attributes, len(c.Options))
	for k, v := range c.Options {
		if v == nil || isFunc(v) {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

func isFunc(v any) bool {
	return reflect.ValueOf(v).Kind() == reflect.Func
}

// Handler processes a specific command or set of commands.
type Handler interface {
	// Handle executes the command and returns a result.
	Handle(cmd Command, ctx *execctx.ExecutionContext) Result

	// CanHandle returns true if this handler can process the command.
	CanHandle(name string) bool

	// Priority returns the handler priority (higher = checked first).
	Priority() int
}

// HandlerFunc is a function adapter for the Handler interface.
type HandlerFunc struct {
	fn   func(cmd Command, ctx *execctx.ExecutionContext) Result
	prio int
}

// NewHandlerFunc creates a HandlerFunc from a function.
func NewHandlerFunc(fn func(cmd Command, ctx *execctx.ExecutionContext) Result) *HandlerFunc {
	return &HandlerFunc{fn: fn}
}

// NewHandlerFuncWithPriority creates a HandlerFunc with a specified priority.
func NewHandlerFuncWithPriority(fn func(cmd Command, ctx *execctx.ExecutionContext) Result, priority int) *HandlerFunc {
	return &HandlerFunc{fn: fn, prio: priority}
}

// Handle implements Handler.Handle.
func (f *HandlerFunc) Handle(cmd Command, ctx *execctx.ExecutionContext) Result {
	if f.fn == nil {
		return Errorf("handler function is nil")
	}
	return f.fn(cmd, ctx)
}

// CanHandle implements Handler.CanHandle.
// HandlerFunc always returns true; caller must ensure correct routing.
func (f *HandlerFunc) CanHandle(name string) bool {
	return true
}

// Priority implements Handler.Priority.
func (f *HandlerFunc) Priority() int {
	return f.prio
}

// SimpleHandler wraps a function with an explicit command name.
type SimpleHandler struct {
	// CommandName is the name of the command this handler processes.
	CommandName string

	// Fn is the handler function.
	Fn func(cmd Command, ctx *execctx.ExecutionContext) Result

	// Prio is the handler priority.
	Prio int
}

// Handle implements Handler.Handle.
func (h *SimpleHandler) Handle(cmd Command, ctx *execctx.ExecutionContext) Result {
	if h.Fn == nil {
		return Errorf("handler function is nil")
	}
	return h.Fn(cmd, ctx)
}

// CanHandle implements Handler.CanHandle.
func (h *SimpleHandler) CanHandle(name string) bool {
	return name == h.CommandName
}

// Priority implements Handler.Priority.
func (h *SimpleHandler) Priority() int {
	return h.Prio
}
