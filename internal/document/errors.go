package document

import "errors"

// Errors returned by document operations.
var (
	// ErrOffsetOutOfRange indicates an offset is outside the document.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrRangeInvalid indicates an invalid range (e.g., end < start).
	ErrRangeInvalid = errors.New("invalid range")

	// ErrNodeNotFound indicates a node ID that is not in the tree.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNotElement indicates an element operation on a text run.
	ErrNotElement = errors.New("node is not an element")

	// ErrTransactionActive indicates Change was called while another
	// transaction is still open.
	ErrTransactionActive = errors.New("transaction already active")

	// ErrTransactionClosed indicates use of a writer after its transaction
	// has been committed or rolled back.
	ErrTransactionClosed = errors.New("transaction closed")

	// ErrNoFixedPoint indicates the commit listeners kept correcting the
	// document past the iteration limit.
	ErrNoFixedPoint = errors.New("commit listeners did not reach a fixed point")
)
