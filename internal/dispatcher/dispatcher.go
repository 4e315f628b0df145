// Package dispatcher routes commands to handlers and coordinates execution.
package dispatcher

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/dshills/linkguard/internal/dispatcher/execctx"
	"github.com/dshills/linkguard/internal/dispatcher/handler"
	"github.com/dshills/linkguard/internal/dispatcher/hook"
	"github.com/dshills/linkguard/internal/document"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger handed to handlers and used for panics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDocument sets the document commands run against.
func WithDocument(doc document.Transactor) Option {
	return func(d *Dispatcher) {
		d.doc = doc
	}
}

// Dispatcher routes commands to handlers and coordinates execution.
type Dispatcher struct {
	mu sync.RWMutex

	registry *Registry
	hooks    *hook.Manager
	doc      document.Transactor
	logger   *slog.Logger

	config  Config
	metrics *Metrics

	// command name -> execute-completion listeners
	executed map[string][]func(handler.Command)
}

// New creates a new dispatcher with the given configuration.
func New(config Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		hooks:    hook.NewManager(),
		logger:   slog.Default(),
		config:   config,
		executed: make(map[string][]func(handler.Command)),
	}
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewWithDefaults creates a new dispatcher with default configuration.
func NewWithDefaults(opts ...Option) *Dispatcher {
	return New(DefaultConfig(), opts...)
}

// SetDocument sets the document commands run against.
func (d *Dispatcher) SetDocument(doc document.Transactor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc = doc
}

// Document returns the document commands run against.
func (d *Dispatcher) Document() document.Transactor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doc
}

// Execute runs a command: pre-dispatch hooks, the handler, post-dispatch
// hooks, then the command's execute-completion listeners.
//
// A pre-dispatch hook that stops the command skips the handler. The result
// is StatusOK when the hook marked the context handled, StatusCancelled
// otherwise. Listeners of a handled command are fired by the hook itself.
func (d *Dispatcher) Execute(cmd handler.Command) handler.Result {
	startTime := time.Now()

	if strings.TrimSpace(cmd.Name) == "" {
		return handler.Error(ErrInvalidCommand)
	}

	ctx := d.buildContext()
	if err := ctx.Validate(); err != nil {
		return handler.Error(err)
	}
	ctx.SetNotifier(func() { d.NotifyExecuted(cmd) })

	var result handler.Result
	ran := false
	if d.hooks.RunPreDispatch(&cmd, ctx) {
		result = d.run(cmd, ctx)
		ran = true
	} else if handled, msg := ctx.Handled(); handled {
		result = handler.SuccessWithMessage(msg)
	} else {
		if msg == "" {
			msg = "cancelled by hook"
		}
		result = handler.CancelledWithMessage(msg)
	}

	d.hooks.RunPostDispatch(&cmd, ctx, &result)

	if ran && result.IsOK() {
		d.NotifyExecuted(cmd)
	}

	if d.metrics != nil {
		d.metrics.RecordDispatch(cmd.Name, time.Since(startTime), result.Status)
	}
	return result
}

// run finds and executes the handler for cmd.
func (d *Dispatcher) run(cmd handler.Command, ctx *execctx.ExecutionContext) handler.Result {
	h := d.registry.Get(cmd.Name)
	if h == nil {
		return handler.Error(fmt.Errorf("%w: %s", ErrNoHandler, cmd.Name))
	}
	if d.config.RecoverFromPanic {
		return d.executeWithRecovery(h, cmd, ctx)
	}
	return h.Handle(cmd, ctx)
}

// executeWithRecovery executes a handler with panic recovery.
func (d *Dispatcher) executeWithRecovery(h handler.Handler, cmd handler.Command, ctx *execctx.ExecutionContext) (result handler.Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic",
				"command", cmd.Name,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			result = handler.Error(fmt.Errorf("%w for %s: %v", ErrPanic, cmd.Name, r))

			if d.metrics != nil {
				d.metrics.RecordPanic(cmd.Name)
			}
		}
	}()

	return h.Handle(cmd, ctx)
}

// buildContext builds an execution context from current state.
func (d *Dispatcher) buildContext() *execctx.ExecutionContext {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return execctx.New(d.doc).WithLogger(d.logger)
}

// OnExecuted registers fn to run after every successful execution of the
// named command.
func (d *Dispatcher) OnExecuted(name string, fn func(handler.Command)) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.executed[name] = append(d.executed[name], fn)
}

// NotifyExecuted fires the execute-completion listeners of cmd.Name.
func (d *Dispatcher) NotifyExecuted(cmd handler.Command) {
	d.mu.RLock()
	listeners := make([]func(handler.Command), len(d.executed[cmd.Name]))
	copy(listeners, d.executed[cmd.Name])
	d.mu.RUnlock()

	for _, fn := range listeners {
		fn(cmd)
	}
}

// RegisterHandler registers a handler for an exact command name.
func (d *Dispatcher) RegisterHandler(name string, h handler.Handler) {
	d.registry.Register(name, h)
}

// RegisterHandlerFunc registers a handler function for a command name.
func (d *Dispatcher) RegisterHandlerFunc(name string, fn func(handler.Command, *execctx.ExecutionContext) handler.Result) {
	d.registry.Register(name, handler.NewHandlerFunc(fn))
}

// UnregisterHandler removes the handlers for a command name.
func (d *Dispatcher) UnregisterHandler(name string) {
	d.registry.Unregister(name)
}

// Hooks returns the hook manager.
func (d *Dispatcher) Hooks() *hook.Manager {
	return d.hooks
}

// Registry returns the handler registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Metrics returns the metrics collector (may be nil if disabled).
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}
