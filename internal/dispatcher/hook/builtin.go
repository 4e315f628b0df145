package hook

import (
	"time"

	"github.com/dshills/linkguard/internal/dispatcher/execctx"
	"github.com/dshills/linkguard/internal/dispatcher/handler"
)

// Standard hook priorities.
const (
	PriorityAudit = 1000 // Runs first (pre) / last (post)
	PriorityLink  = 800  // Link interception before the handler runs
)

// Logger is the interface for logging hooks. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// AuditHook logs all dispatched commands for debugging and audit trails.
type AuditHook struct {
	logger Logger
}

// NewAuditHook creates an audit hook with the given logger.
func NewAuditHook(logger Logger) *AuditHook {
	return &AuditHook{logger: logger}
}

// Name implements Hook.
func (h *AuditHook) Name() string { return "audit" }

// Priority implements Hook.
func (h *AuditHook) Priority() int { return PriorityAudit }

// PreDispatch logs the command being dispatched.
func (h *AuditHook) PreDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext) bool {
	if h.logger != nil {
		h.logger.Debug("dispatch start",
			"command", cmd.Name,
			"value", cmd.Value,
			"selection", ctx.Selection().String(),
		)
	}
	return true
}

// PostDispatch logs the dispatch result.
func (h *AuditHook) PostDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext, result *handler.Result) {
	if h.logger == nil {
		return
	}

	switch result.Status {
	case handler.StatusError:
		h.logger.Error("dispatch failed",
			"command", cmd.Name,
			"error", result.Error,
		)
	case handler.StatusCancelled:
		h.logger.Info("dispatch cancelled",
			"command", cmd.Name,
			"message", result.Message,
		)
	default:
		h.logger.Debug("dispatch complete",
			"command", cmd.Name,
			"status", result.Status.String(),
			"message", result.Message,
		)
	}
}

// TimingHook measures command execution time.
// Start times are stored on the ExecutionContext so cancelled dispatches
// leave nothing behind.
type TimingHook struct {
	callback func(command string, duration time.Duration)
}

// timingStartKey is the context data key for timing start time.
const timingStartKey = "_timing_start"

// NewTimingHook creates a timing hook.
func NewTimingHook(callback func(command string, duration time.Duration)) *TimingHook {
	return &TimingHook{
		callback: callback,
	}
}

// Name implements Hook.
func (h *TimingHook) Name() string { return "timing" }

// Priority implements Hook.
func (h *TimingHook) Priority() int { return PriorityAudit }

// PreDispatch records the start time on the context.
func (h *TimingHook) PreDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext) bool {
	ctx.SetData(timingStartKey, time.Now())
	return true
}

// PostDispatch calculates and reports the duration.
func (h *TimingHook) PostDispatch(cmd *handler.Command, ctx *execctx.ExecutionContext, result *handler.Result) {
	startVal, ok := ctx.GetData(timingStartKey)
	if !ok {
		return
	}

	start, ok := startVal.(time.Time)
	if ok && h.callback != nil {
		h.callback(cmd.Name, time.Since(start))
	}
}
