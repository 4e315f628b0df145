package execctx

import (
	"errors"
	"testing"

	"github.com/dshills/linkguard/internal/document"
)

func TestExecutionContextValidate(t *testing.T) {
	if err := New(nil).Validate(); !errors.Is(err, ErrMissingDocument) {
		t.Errorf("expected ErrMissingDocument, got %v", err)
	}
	if err := New(document.New()).Validate(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestExecutionContextHandled(t *testing.T) {
	ctx := New(document.New())
	if handled, _ := ctx.Handled(); handled {
		t.Fatal("new context should not be handled")
	}
	ctx.MarkHandled("replaced")
	if handled, msg := ctx.Handled(); !handled || msg != "replaced" {
		t.Errorf("Handled() = %v, %q", handled, msg)
	}
}

func TestExecutionContextNotify(t *testing.T) {
	ctx := New(document.New())
	ctx.NotifyExecuted()

	var fired int
	ctx.SetNotifier(func() { fired++ })
	ctx.NotifyExecuted()
	if fired != 1 {
		t.Errorf("expected 1 notification, got %d", fired)
	}
}

func TestExecutionContextData(t *testing.T) {
	ctx := &ExecutionContext{}
	ctx.SetData("key", "value")
	ctx.SetData("n", 3)
	if got := ctx.GetDataString("key"); got != "value" {
		t.Errorf("GetDataString(key) = %q", got)
	}
	if got := ctx.GetDataString("n"); got != "" {
		t.Errorf("non-string data should read as empty, got %q", got)
	}
	if _, ok := ctx.GetData("missing"); ok {
		t.Error("missing key should not be found")
	}
}

func TestExecutionContextReject(t *testing.T) {
	ctx := New(document.New())
	ctx.Reject("nested link")
	if handled, msg := ctx.Handled(); handled || msg != "nested link" {
		t.Errorf("Handled() = %v, %q", handled, msg)
	}
}
