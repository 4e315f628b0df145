package document

import "fmt"

// Origin tags who caused a selection change.
type Origin uint8

const (
	// OriginHost is a programmatic change made by the host itself.
	OriginHost Origin = iota

	// OriginUser is a change driven by user input (click, arrow keys).
	OriginUser

	// OriginEngine is a change written by the link engine. Listeners in the
	// engine ignore these to avoid re-triggering themselves.
	OriginEngine
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginHost:
		return "host"
	case OriginUser:
		return "user"
	case OriginEngine:
		return "engine"
	default:
		return "unknown"
	}
}

// Selection represents a range of selected text.
// Anchor is where the selection started; Head is the current caret position.
// When Anchor == Head, this represents a caret with no selection.
type Selection struct {
	Anchor Offset // Where selection started
	Head   Offset // Current caret position
}

// NewSelection creates a selection from anchor to head.
func NewSelection(anchor, head Offset) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// NewCaret creates a collapsed selection at offset.
func NewCaret(offset Offset) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// NewRangeSelection creates a forward selection covering the given range.
func NewRangeSelection(r Range) Selection {
	return Selection{Anchor: r.Start, Head: r.End}
}

// IsEmpty returns true if the selection has no extent (a caret).
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Range returns the selection as a range (always Start <= End).
func (s Selection) Range() Range {
	if s.Anchor <= s.Head {
		return Range{Start: s.Anchor, End: s.Head}
	}
	return Range{Start: s.Head, End: s.Anchor}
}

// Start returns the lower bound of the selection.
func (s Selection) Start() Offset {
	return min(s.Anchor, s.Head)
}

// End returns the upper bound of the selection.
func (s Selection) End() Offset {
	return max(s.Anchor, s.Head)
}

// String returns a string representation of the selection.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Caret(%d)", s.Head)
	}
	return fmt.Sprintf("Selection(%d->%d)", s.Anchor, s.Head)
}

// SelectionChange is delivered to selection listeners after a transaction
// that moved the selection has closed.
type SelectionChange struct {
	Selection Selection
	Origin    Origin
}
