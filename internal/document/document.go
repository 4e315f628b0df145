package document

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/linkguard/internal/tasks"
)

// DefaultMaxPasses bounds how many times the commit listeners run for one
// transaction before ErrNoFixedPoint is returned.
const DefaultMaxPasses = 16

// Transaction summarizes a committed transaction.
type Transaction struct {
	ID      uuid.UUID
	Name    string
	Records []ChangeRecord

	// Passes is how many times the commit listeners ran.
	Passes int

	// Corrections is how many of those passes corrected the document.
	Corrections int
}

// Option configures a Document.
type Option func(*Document)

// WithTree sets the initial tree.
func WithTree(t *Tree) Option {
	return func(d *Document) {
		if t != nil {
			d.tree = t
		}
	}
}

// WithMaxPasses sets the fixed-point iteration limit.
func WithMaxPasses(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.maxPasses = n
		}
	}
}

// WithTaskQueue sets the post-transaction task queue.
func WithTaskQueue(q *tasks.Queue) Option {
	return func(d *Document) {
		if q != nil {
			d.tasks = q
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// Document is the reference host: a tree, a selection, and the transaction
// machinery the link engine plugs into. It is single threaded; callers must
// not share a Document across goroutines without their own locking.
type Document struct {
	view

	tree      *Tree
	selection Selection

	validators         []Validator
	commitListeners    []CommitListener
	pasteHooks         []PasteHook
	selectionListeners []SelectionListener

	tasks     *tasks.Queue
	logger    *slog.Logger
	maxPasses int

	active *Writer
}

// New creates a document with the given options.
func New(opts ...Option) *Document {
	d := &Document{
		tree:      NewTree("root"),
		maxPasses: DefaultMaxPasses,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.tasks == nil {
		d.tasks = tasks.New(tasks.WithPanicHandler(func(v any, stack []byte) {
			d.logger.Error("deferred task panicked", "panic", v, "stack", string(stack))
		}))
	}
	d.view = view{doc: d}
	return d
}

// Tree returns the underlying tree.
func (d *Document) Tree() *Tree {
	return d.tree
}

// Tasks returns the post-transaction task queue.
func (d *Document) Tasks() *tasks.Queue {
	return d.tasks
}

// InTransaction reports whether a transaction is open.
func (d *Document) InTransaction() bool {
	return d.active != nil
}

// AddValidator registers an attribute validator.
func (d *Document) AddValidator(v Validator) {
	d.validators = append(d.validators, v)
}

// OnCommit registers a commit listener.
func (d *Document) OnCommit(l CommitListener) {
	d.commitListeners = append(d.commitListeners, l)
}

// OnPaste registers a paste hook.
func (d *Document) OnPaste(h PasteHook) {
	d.pasteHooks = append(d.pasteHooks, h)
}

// OnSelectionChange registers a selection listener.
func (d *Document) OnSelectionChange(l SelectionListener) {
	d.selectionListeners = append(d.selectionListeners, l)
}

// Change runs fn inside a new transaction.
//
// When fn returns an error the tree and selection are restored and the error
// is returned. Otherwise the commit listeners run until none of them corrects
// the document, the tree is normalized, the task queue is flushed, and a
// pending selection change is delivered.
func (d *Document) Change(name string, fn func(m Mutator) error) (*Transaction, error) {
	if d.active != nil {
		return nil, ErrTransactionActive
	}

	tx := &Transaction{ID: uuid.New(), Name: name}
	before := d.tree.clone()
	selBefore := d.selection
	w := &Writer{view: view{doc: d}, tx: tx}
	d.active = w

	err := fn(w)
	if err == nil {
		err = d.settle(w)
	}
	w.closed = true
	d.active = nil
	if err != nil {
		d.tree = before
		d.selection = selBefore
		d.tasks.Discard()
		return nil, err
	}

	d.tree.normalize()
	tx.Records = w.records
	d.logger.Debug("transaction committed",
		"id", tx.ID.String(),
		"name", name,
		"records", len(tx.Records),
		"passes", tx.Passes,
	)

	d.tasks.Flush()
	if w.selectionMoved {
		change := SelectionChange{Selection: d.selection, Origin: w.origin}
		for _, l := range d.selectionListeners {
			l(change)
		}
	}
	return tx, nil
}

// settle runs the commit listeners until a pass makes no correction.
func (d *Document) settle(w *Writer) error {
	if len(d.commitListeners) == 0 {
		return nil
	}
	for w.tx.Passes < d.maxPasses {
		records := slices.Clone(w.records)
		changed := false
		for _, l := range d.commitListeners {
			if l(records, w) {
				changed = true
			}
		}
		w.tx.Passes++
		if !changed {
			return nil
		}
		w.tx.Corrections++
	}
	return fmt.Errorf("%w after %d passes", ErrNoFixedPoint, d.maxPasses)
}

// Paste inserts slice at offset in one transaction and runs the paste hooks
// inside it.
func (d *Document) Paste(at Offset, slice Fragment) (*Transaction, error) {
	return d.Change("paste", func(m Mutator) error {
		if err := m.InsertFragment(at, slice); err != nil {
			return err
		}
		for _, h := range d.pasteHooks {
			h(m, at, slice)
		}
		return nil
	})
}

// Select replaces the selection in its own transaction.
func (d *Document) Select(sel Selection, origin Origin) error {
	_, err := d.Change("select", func(m Mutator) error {
		return m.SetSelection(sel, origin)
	})
	return err
}

// Spans returns the document as merged spans.
func (d *Document) Spans() []Span {
	return d.tree.Spans()
}

// view implements Reader over a document's current tree.
type view struct {
	doc *Document
}

func (v view) Len() Offset                     { return v.doc.tree.Len() }
func (v view) Text() string                    { return v.doc.tree.Text() }
func (v view) Node(id NodeID) (Node, bool)     { return v.doc.tree.Node(id) }
func (v view) Attributes(id NodeID) Attributes { return v.doc.tree.Attributes(id) }
func (v view) Parent(id NodeID) NodeID         { return v.doc.tree.Parent(id) }
func (v view) Ancestors(id NodeID) []NodeID    { return v.doc.tree.Ancestors(id) }
func (v view) Runs() []Run                     { return v.doc.tree.Runs() }
func (v view) RunsIn(r Range) []Run            { return v.doc.tree.RunsIn(r) }
func (v view) RunAt(offset Offset) (Run, bool) { return v.doc.tree.RunAt(offset) }
func (v view) Selection() Selection            { return v.doc.selection }

// AttributesAt returns the attributes of the character left of the caret,
// or of the first character when the caret is at 0.
func (v view) AttributesAt(offset Offset) Attributes {
	at := offset - 1
	if offset == 0 {
		at = 0
	}
	if run, ok := v.doc.tree.RunAt(at); ok {
		return run.Attrs.Clone()
	}
	return Attributes{}
}

// AttributeRun returns the maximal range of adjacent runs sharing the value
// of key found on the character at offset.
func (v view) AttributeRun(offset Offset, key string) (Range, bool) {
	runs := v.doc.tree.Runs()
	idx := slices.IndexFunc(runs, func(r Run) bool { return r.Range.Contains(offset) })
	if idx < 0 {
		return Range{}, false
	}
	value, ok := runs[idx].Attrs.Get(key)
	if !ok {
		return Range{}, false
	}
	same := func(r Run) bool {
		got, ok := r.Attrs.Get(key)
		return ok && got == value
	}
	lo, hi := idx, idx
	for lo > 0 && same(runs[lo-1]) {
		lo--
	}
	for hi < len(runs)-1 && same(runs[hi+1]) {
		hi++
	}
	return Range{Start: runs[lo].Range.Start, End: runs[hi].Range.End}, true
}

// ValidRanges returns the text inside r whose element context accepts key.
// Validators are asked on behalf of the nearest element so attributes on the
// text itself do not count.
func (v view) ValidRanges(r Range, key string) []Range {
	var ranges []Range
	for _, run := range v.doc.tree.RunsIn(r) {
		ancestors := v.doc.tree.Ancestors(run.ID)
		if len(ancestors) > 0 && !v.doc.accepts(ancestors[0], key, ancestors[1:]) {
			continue
		}
		ranges = append(ranges, run.Range.Intersect(r))
	}
	return MergeRanges(ranges)
}

func (d *Document) accepts(node NodeID, key string, ancestors []NodeID) bool {
	for _, v := range d.validators {
		if !v(node, key, ancestors) {
			return false
		}
	}
	return true
}
