package document

import "fmt"

// ChangeKind categorizes a ChangeRecord.
type ChangeKind uint8

const (
	// ChangeInsert indicates content was inserted over Range.
	ChangeInsert ChangeKind = iota

	// ChangeAttribute indicates Key was set or removed over Range.
	ChangeAttribute
)

// String returns a human-readable representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeInsert:
		return "insert"
	case ChangeAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// ChangeRecord describes one mutation inside a transaction. Records are
// transient: they live for the duration of one commit.
type ChangeRecord struct {
	// Kind is insert or attribute.
	Kind ChangeKind

	// Range is the affected range after the mutation.
	// For inserts it is [position, position+length).
	Range Range

	// Key is the attribute key for attribute records.
	Key string
}

// NewInsertRecord creates a record for an insertion of length at position.
func NewInsertRecord(position, length Offset) ChangeRecord {
	return ChangeRecord{Kind: ChangeInsert, Range: Range{Start: position, End: position + length}}
}

// NewAttributeRecord creates a record for an attribute write over r.
func NewAttributeRecord(key string, r Range) ChangeRecord {
	return ChangeRecord{Kind: ChangeAttribute, Range: r, Key: key}
}

// String returns a human-readable representation of the record.
func (c ChangeRecord) String() string {
	switch c.Kind {
	case ChangeInsert:
		return fmt.Sprintf("Insert %d at %d", c.Range.Len(), c.Range.Start)
	case ChangeAttribute:
		return fmt.Sprintf("Attribute %q over %v", c.Key, c.Range)
	default:
		return "Unknown change"
	}
}
