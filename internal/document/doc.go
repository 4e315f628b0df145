// Package document is the reference host model for the link engine.
//
// A Document is an arena-indexed tree of nodes. Elements hold ordered
// children and attributes; text runs hold a string plus attributes. Every
// node stores the index of its parent, so ancestor walks are path-to-root
// traversals over the node table rather than pointer chasing.
//
// # Positions
//
// Positions are character (rune) offsets over the concatenation of all text
// runs in document order. Elements have zero width; an element's span is the
// union of its descendant runs.
//
// # Transactions
//
// All mutation happens inside Change:
//
//	tx, err := doc.Change("bold", func(m document.Mutator) error {
//	    return m.SetAttribute(document.NewRange(0, 5), "bold", "true")
//	})
//
// The writer records one ChangeRecord per mutation. After fn returns the
// post-commit listeners run over the records until none of them reports a
// correction, then the task queue is flushed and the pending selection
// change, if any, is delivered. Only one transaction can be open at a time.
//
// # Hooks
//
//   - Validator: consulted for every attribute write on every affected node.
//   - CommitListener: runs after commit until a fixed point is reached.
//   - PasteHook: runs inside the paste transaction after the fragment lands.
//   - SelectionListener: receives selection changes with their Origin.
package document
