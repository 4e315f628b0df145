package engine

import "log/slog"

// Warner shows the nesting warning to the user. Calls are fire-and-forget.
type Warner interface {
	Warn(message string)
}

// WarnerFunc adapts a function to Warner.
type WarnerFunc func(message string)

// Warn calls f.
func (f WarnerFunc) Warn(message string) { f(message) }

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLogger sets the logger handed to every component.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWarner sets the user-facing warning sink.
func WithWarner(w Warner) Option {
	return func(e *Engine) {
		e.warner = w
	}
}
