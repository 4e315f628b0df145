package handler_test

import (
	"testing"

	"github.com/dshills/linkguard/internal/dispatcher/execctx"
	"github.com/dshills/linkguard/internal/dispatcher/handler"
	"github.com/dshills/linkguard/internal/document"
)

func TestHandlerFunc(t *testing.T) {
	called := false
	fn := handler.NewHandlerFunc(func(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
		called = true
		return handler.Success()
	})

	result := fn.Handle(handler.Command{Name: "test"}, execctx.New(document.New()))

	if !called {
		t.Error("expected handler func to be called")
	}
	if result.Status != handler.StatusOK {
		t.Errorf("expected StatusOK, got %v", result.Status)
	}
	if !fn.CanHandle("anything") {
		t.Error("expected CanHandle to return true")
	}
}

func TestHandlerFuncNil(t *testing.T) {
	fn := &handler.HandlerFunc{}
	result := fn.Handle(handler.Command{Name: "test"}, execctx.New(document.New()))

	if result.Status != handler.StatusError {
		t.Errorf("expected StatusError for nil func, got %v", result.Status)
	}
}

func TestHandlerFuncWithPriority(t *testing.T) {
	fn := handler.NewHandlerFuncWithPriority(func(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
		return handler.Success()
	}, 100)

	if fn.Priority() != 100 {
		t.Errorf("expected priority 100, got %d", fn.Priority())
	}
}

func TestSimpleHandler(t *testing.T) {
	h := &handler.SimpleHandler{
		CommandName: "link",
		Fn: func(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
			return handler.SuccessWithMessage(cmd.Value)
		},
		Prio: 50,
	}

	if !h.CanHandle("link") {
		t.Error("expected CanHandle(link) to be true")
	}
	if h.CanHandle("anchor") {
		t.Error("expected CanHandle(anchor) to be false")
	}
	if got := h.Handle(handler.Command{Name: "link", Value: "x"}, execctx.New(document.New())); got.Message != "x" {
		t.Errorf("expected message x, got %q", got.Message)
	}
}

func TestCommandAuxiliary(t *testing.T) {
	cmd := handler.Command{
		Name:  "link",
		Value: "x",
		Options: map[string]any{
			"target":   "_blank",
			"download": true,
			"callback": func() {},
			"nothing":  nil,
		},
	}

	aux := cmd.Auxiliary()
	if len(aux) != 2 {
		t.Fatalf("expected 2 auxiliary attributes, got %v", aux)
	}
	if aux["target"] != "_blank" || aux["download"] != "true" {
		t.Errorf("unexpected auxiliary attributes %v", aux)
	}
}
