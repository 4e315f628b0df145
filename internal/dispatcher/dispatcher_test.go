package dispatcher_test

import (
	"errors"
	"testing"

	"github.com/dshills/linkguard/internal/dispatcher"
	"github.com/dshills/linkguard/internal/dispatcher/execctx"
	"github.com/dshills/linkguard/internal/dispatcher/handler"
	"github.com/dshills/linkguard/internal/dispatcher/hook"
	"github.com/dshills/linkguard/internal/document"
)

func newDispatcher(config dispatcher.Config) *dispatcher.Dispatcher {
	return dispatcher.New(config, dispatcher.WithDocument(document.New()))
}

func succeed(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
	return handler.Success()
}

func TestNewWithDefaults(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	if d.Registry() == nil {
		t.Error("expected non-nil registry")
	}
	if d.Hooks() == nil {
		t.Error("expected non-nil hook manager")
	}
	if d.Metrics() != nil {
		t.Error("expected nil metrics by default")
	}
	if !d.Config().RecoverFromPanic {
		t.Error("expected panic recovery by default")
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name string
		d    *dispatcher.Dispatcher
		cmd  handler.Command
		err  error
	}{
		{"no handler", newDispatcher(dispatcher.DefaultConfig()), handler.Command{Name: "unknown"}, dispatcher.ErrNoHandler},
		{"empty name", newDispatcher(dispatcher.DefaultConfig()), handler.Command{}, dispatcher.ErrInvalidCommand},
		{"no document", dispatcher.NewWithDefaults(), handler.Command{Name: "link"}, execctx.ErrMissingDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.d.Execute(tt.cmd)
			if result.Status != handler.StatusError {
				t.Fatalf("expected StatusError, got %v", result.Status)
			}
			if !errors.Is(result.Error, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, result.Error)
			}
		})
	}
}

func TestRegisterHandler(t *testing.T) {
	d := newDispatcher(dispatcher.DefaultConfig())

	var got handler.Command
	d.RegisterHandlerFunc("link", func(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
		got = cmd
		return handler.Success()
	})

	result := d.Execute(handler.Command{Name: "link", Value: "x"})
	if result.Status != handler.StatusOK {
		t.Errorf("expected StatusOK, got %v", result.Status)
	}
	if got.Value != "x" {
		t.Errorf("handler saw %+v", got)
	}

	d.UnregisterHandler("link")
	if result := d.Execute(handler.Command{Name: "link"}); result.Status != handler.StatusError {
		t.Errorf("expected StatusError after unregister, got %v", result.Status)
	}
}

func TestPreDispatchHookCancel(t *testing.T) {
	d := newDispatcher(dispatcher.DefaultConfig())

	handlerCalled := false
	d.RegisterHandlerFunc("link", func(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
		handlerCalled = true
		return handler.Success()
	})
	executed := 0
	d.OnExecuted("link", func(handler.Command) { executed++ })
	d.Hooks().RegisterPre(hook.NewPreDispatchFunc("reject", 100, func(cmd *handler.Command, ctx *execctx.ExecutionContext) bool {
		ctx.Reject("nested link")
		return false
	}))

	result := d.Execute(handler.Command{Name: "link", Value: "x"})

	if result.Status != handler.StatusCancelled {
		t.Errorf("expected StatusCancelled, got %v", result.Status)
	}
	if result.Message != "nested link" {
		t.Errorf("expected rejection message, got %q", result.Message)
	}
	if handlerCalled {
		t.Error("handler should not be called when hook cancels")
	}
	if executed != 0 {
		t.Error("listeners should not fire for a cancelled command")
	}
}

func TestPreDispatchHookHandled(t *testing.T) {
	d := newDispatcher(dispatcher.DefaultConfig())

	handlerCalled := false
	d.RegisterHandlerFunc("link", func(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
		handlerCalled = true
		return handler.Success()
	})
	executed := 0
	d.OnExecuted("link", func(handler.Command) { executed++ })
	d.Hooks().RegisterPre(hook.NewPreDispatchFunc("replace", 100, func(cmd *handler.Command, ctx *execctx.ExecutionContext) bool {
		ctx.MarkHandled("replaced")
		ctx.NotifyExecuted()
		return false
	}))

	result := d.Execute(handler.Command{Name: "link", Value: "x"})

	if result.Status != handler.StatusOK || result.Message != "replaced" {
		t.Errorf("expected OK with message, got %v %q", result.Status, result.Message)
	}
	if handlerCalled {
		t.Error("handler should not run for a handled command")
	}
	if executed != 1 {
		t.Errorf("expected exactly 1 completion signal, got %d", executed)
	}
}

func TestPostDispatchHookSeesResult(t *testing.T) {
	d := newDispatcher(dispatcher.DefaultConfig())
	d.RegisterHandlerFunc("link", succeed)

	var seen []handler.ResultStatus
	d.Hooks().RegisterPost(hook.NewPostDispatchFunc("observer", 100, func(cmd *handler.Command, ctx *execctx.ExecutionContext, result *handler.Result) {
		seen = append(seen, result.Status)
	}))
	d.Hooks().RegisterPre(hook.NewPreDispatchFunc("gate", 100, func(cmd *handler.Command, ctx *execctx.ExecutionContext) bool {
		return cmd.Value != "blocked"
	}))

	d.Execute(handler.Command{Name: "link", Value: "x"})
	d.Execute(handler.Command{Name: "link", Value: "blocked"})

	if len(seen) != 2 || seen[0] != handler.StatusOK || seen[1] != handler.StatusCancelled {
		t.Errorf("unexpected post-dispatch statuses %v", seen)
	}
}

func TestOnExecuted(t *testing.T) {
	d := newDispatcher(dispatcher.DefaultConfig())
	d.RegisterHandlerFunc("link", succeed)
	d.RegisterHandlerFunc("anchor", func(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
		return handler.NoOp()
	})

	var got []string
	d.OnExecuted("link", func(cmd handler.Command) { got = append(got, cmd.Name+"="+cmd.Value) })
	d.OnExecuted("anchor", func(cmd handler.Command) { got = append(got, cmd.Name) })
	d.OnExecuted("link", nil)

	d.Execute(handler.Command{Name: "link", Value: "x"})
	d.Execute(handler.Command{Name: "anchor", Value: "y"})

	if len(got) != 1 || got[0] != "link=x" {
		t.Errorf("expected only the successful command to notify, got %v", got)
	}
}

func TestPanicRecovery(t *testing.T) {
	d := newDispatcher(dispatcher.DefaultConfig().WithMetrics())
	d.RegisterHandlerFunc("boom", func(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
		panic("test panic")
	})

	result := d.Execute(handler.Command{Name: "boom"})

	if result.Status != handler.StatusError {
		t.Errorf("expected StatusError after panic, got %v", result.Status)
	}
	if !errors.Is(result.Error, dispatcher.ErrPanic) {
		t.Errorf("expected ErrPanic, got %v", result.Error)
	}
	if d.Metrics().TotalPanics() != 1 {
		t.Errorf("expected 1 recorded panic, got %d", d.Metrics().TotalPanics())
	}
}

func TestNoPanicRecovery(t *testing.T) {
	d := newDispatcher(dispatcher.DefaultConfig().WithPanicRecovery(false))
	d.RegisterHandlerFunc("boom", func(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
		panic("test panic")
	})

	defer func() {
		if recover() == nil {
			t.Error("expected panic to propagate")
		}
	}()
	d.Execute(handler.Command{Name: "boom"})
}

func TestMetricsRecording(t *testing.T) {
	d := newDispatcher(dispatcher.DefaultConfig().WithMetrics())
	d.RegisterHandlerFunc("link", succeed)
	d.RegisterHandlerFunc("fail", func(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
		return handler.Errorf("failed")
	})
	d.Hooks().RegisterPre(hook.NewPreDispatchFunc("gate", 100, func(cmd *handler.Command, ctx *execctx.ExecutionContext) bool {
		return cmd.Value != "blocked"
	}))

	d.Execute(handler.Command{Name: "link"})
	d.Execute(handler.Command{Name: "link"})
	d.Execute(handler.Command{Name: "link", Value: "blocked"})
	d.Execute(handler.Command{Name: "fail"})

	metrics := d.Metrics()
	if metrics.TotalDispatches() != 4 {
		t.Errorf("expected 4 total dispatches, got %d", metrics.TotalDispatches())
	}
	if metrics.TotalErrors() != 1 {
		t.Errorf("expected 1 error, got %d", metrics.TotalErrors())
	}
	if metrics.TotalCancelled() != 1 {
		t.Errorf("expected 1 cancellation, got %d", metrics.TotalCancelled())
	}

	stats := metrics.CommandStats("link")
	if stats == nil || stats.DispatchCount != 3 {
		t.Fatalf("unexpected link stats %+v", stats)
	}
	if metrics.CommandStats("missing") != nil {
		t.Error("expected nil stats for an unknown command")
	}
	if snap := metrics.Snapshot(); snap.CommandCount != 2 || snap.TotalCancelled != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestAttributeHandlerThroughDispatcher(t *testing.T) {
	tree := document.NewTree("root")
	p, _ := tree.AddElement(document.Root, "paragraph", nil)
	tree.AddText(p, "hello world", nil)
	doc := document.New(document.WithTree(tree))
	if err := doc.Select(document.NewSelection(0, 5), document.OriginUser); err != nil {
		t.Fatalf("Select: %v", err)
	}

	d := dispatcher.NewWithDefaults(dispatcher.WithDocument(doc))
	d.RegisterHandler("link", handler.NewAttributeHandler("link", "linkHref"))

	result := d.Execute(handler.Command{Name: "link", Value: "https://example.com"})
	if !result.IsOK() {
		t.Fatalf("expected OK, got %v (%v)", result.Status, result.Error)
	}
	run, _ := doc.RunAt(0)
	if run.Attrs["linkHref"] != "https://example.com" || run.Text != "hello" {
		t.Errorf("unexpected run %+v", run)
	}
}
