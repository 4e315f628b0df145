package handler

import (
	"fmt"

	"github.com/dshills/linkguard/internal/dispatcher/execctx"
	"github.com/dshills/linkguard/internal/document"
)

// AttributeHandler implements a link command that writes one attribute key.
//
// With a caret inside a run carrying the key, the whole run takes the new
// value. With any other caret, the value is inserted as text carrying the key.
// With a selection, the key is replaced over the selection.
type AttributeHandler struct {
	command string
	key     string
}

// NewAttributeHandler creates a handler for command writing key.
func NewAttributeHandler(command, key string) *AttributeHandler {
	return &AttributeHandler{command: command, key: key}
}

// Key returns the attribute key the handler writes.
func (h *AttributeHandler) Key() string { return h.key }

// CanHandle implements Handler.
func (h *AttributeHandler) CanHandle(name string) bool { return name == h.command }

// Priority implements Handler.
func (h *AttributeHandler) Priority() int { return 0 }

// Handle implements Handler.
func (h *AttributeHandler) Handle(cmd Command, ctx *execctx.ExecutionContext) Result {
	if err := ctx.Validate(); err != nil {
		return Error(err)
	}
	if cmd.Value == "" {
		return NoOpWithMessage("empty attribute value")
	}

	sel := ctx.Selection()
	aux := cmd.Auxiliary()
	tx, err := ctx.Doc.Change(cmd.Name, func(m document.Mutator) error {
		if sel.IsEmpty() {
			return h.applyAtCaret(m, sel.Head, cmd.Value, aux)
		}
		return h.replace(m, sel.Range(), cmd.Value, aux)
	})
	if err != nil {
		return Error(fmt.Errorf("%s: %w", cmd.Name, err))
	}
	if len(tx.Records) == 0 {
		return NoOp()
	}
	return Committed(tx)
}

func (h *AttributeHandler) applyAtCaret(m document.Mutator, at document.Offset, value string, aux document.Attributes) error {
	probe := at - 1
	if at == 0 {
		probe = 0
	}
	if r, ok := m.AttributeRun(probe, h.key); ok {
		return h.replace(m, r, value, aux)
	}

	attrs := aux.Clone()
	attrs[h.key] = value
	return m.InsertFragment(at, document.Fragment{{Text: value, Attributes: attrs}})
}

// replace removes the key before setting it so the validator sees the run
// without its previous value.
func (h *AttributeHandler) replace(m document.Mutator, r document.Range, value string, aux document.Attributes) error {
	if err := m.RemoveAttribute(r, h.key); err != nil {
		return err
	}
	if err := m.SetAttribute(r, h.key, value); err != nil {
		return err
	}
	for _, k := range aux.Keys() {
		if err := m.SetAttribute(r, k, aux[k]); err != nil {
			return err
		}
	}
	return nil
}
