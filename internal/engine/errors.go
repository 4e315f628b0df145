package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.New("invalid engine configuration")
)
