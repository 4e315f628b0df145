package document

// Reader provides read-only access to a document model.
type Reader interface {
	// Len returns the number of characters in the document.
	Len() Offset

	// Text returns the concatenated text of all runs.
	Text() string

	// Node returns a copy of the node with the given ID.
	Node(id NodeID) (Node, bool)

	// Attributes returns the attributes of a node. The map must not be modified.
	Attributes(id NodeID) Attributes

	// Parent returns the parent of a node or NoNode.
	Parent(id NodeID) NodeID

	// Ancestors returns the path from the node's parent to the root.
	Ancestors(id NodeID) []NodeID

	// Runs returns all text runs in document order.
	Runs() []Run

	// RunsIn returns the runs overlapping r.
	RunsIn(r Range) []Run

	// RunAt returns the run holding the character at offset.
	RunAt(offset Offset) (Run, bool)

	// AttributesAt returns the attributes a caret at offset carries.
	AttributesAt(offset Offset) Attributes

	// AttributeRun returns the maximal contiguous range around the character
	// at offset that carries key with the same value.
	AttributeRun(offset Offset, key string) (Range, bool)

	// ValidRanges returns the parts of r where key may be set once any
	// conflicting attribute on the text itself is removed.
	ValidRanges(r Range, key string) []Range

	// Selection returns the current selection.
	Selection() Selection
}

// Mutator is a mutation context: read access plus the writes a transaction
// may perform. Every write appends a ChangeRecord.
type Mutator interface {
	Reader

	// SetAttribute sets key to value on every run in r.
	SetAttribute(r Range, key, value string) error

	// RemoveAttribute removes key from every run in r.
	RemoveAttribute(r Range, key string) error

	// SetNodeAttribute sets key on a single node.
	SetNodeAttribute(id NodeID, key, value string) error

	// RemoveNodeAttribute removes key from a single node.
	RemoveNodeAttribute(id NodeID, key string) error

	// InsertText inserts text at offset. The new run inherits the caret
	// attributes at offset.
	InsertText(at Offset, text string) error

	// InsertFragment inserts a fragment at offset, keeping its attributes.
	InsertFragment(at Offset, f Fragment) error

	// SetSelection replaces the selection.
	SetSelection(sel Selection, origin Origin) error

	// Records returns the change records written so far.
	Records() []ChangeRecord
}

// Transactor is a Reader that can open mutation contexts.
type Transactor interface {
	Reader

	// Change runs fn inside a new transaction.
	Change(name string, fn func(m Mutator) error) (*Transaction, error)
}

// Validator is consulted before an attribute write is accepted on node.
// ancestors is the path from the node's parent to the root.
type Validator func(node NodeID, key string, ancestors []NodeID) bool

// CommitListener inspects the records of a committed transaction and may
// correct the document through m. It returns true when it made a correction.
type CommitListener func(records []ChangeRecord, m Mutator) bool

// PasteHook runs inside the paste transaction after slice was inserted at at.
type PasteHook func(m Mutator, at Offset, slice Fragment)

// SelectionListener receives selection changes after their transaction closes.
type SelectionListener func(change SelectionChange)
