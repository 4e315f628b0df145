package document

import (
	"fmt"
	"slices"
	"unicode/utf8"
)

// Writer is the mutation context handed to Change callbacks.
// It is only valid until its transaction closes.
type Writer struct {
	view

	tx      *Transaction
	records []ChangeRecord
	closed  bool

	selectionMoved bool
	origin         Origin
}

// Records returns a copy of the change records written so far.
func (w *Writer) Records() []ChangeRecord {
	return slices.Clone(w.records)
}

// TransactionName returns the name the transaction was opened with.
func (w *Writer) TransactionName() string {
	return w.tx.Name
}

func (w *Writer) check() error {
	if w.closed {
		return ErrTransactionClosed
	}
	return nil
}

func (w *Writer) checkRange(r Range) error {
	if !r.IsValid() || r.End > w.doc.tree.Len() {
		return fmt.Errorf("%w: %v", ErrRangeInvalid, r)
	}
	return nil
}

// SetAttribute sets key to value on every run in r. Runs are split at the
// range boundaries. Runs that already hold the value are left alone and runs
// the validators reject are skipped.
func (w *Writer) SetAttribute(r Range, key, value string) error {
	if err := w.check(); err != nil {
		return err
	}
	if err := w.checkRange(r); err != nil {
		return err
	}
	if r.IsEmpty() {
		return nil
	}

	t := w.doc.tree
	t.splitAt(r.Start)
	t.splitAt(r.End)

	changed := false
	for _, run := range t.RunsIn(r) {
		if got, ok := run.Attrs.Get(key); ok && got == value {
			continue
		}
		if !w.doc.accepts(run.ID, key, t.Ancestors(run.ID)) {
			w.doc.logger.Debug("attribute rejected", "node", run.ID, "key", key, "range", run.Range.String())
			continue
		}
		t.get(run.ID).Attrs[key] = value
		changed = true
	}
	if changed {
		w.records = append(w.records, NewAttributeRecord(key, r))
	}
	return nil
}

// RemoveAttribute removes key from every run in r.
func (w *Writer) RemoveAttribute(r Range, key string) error {
	if err := w.check(); err != nil {
		return err
	}
	if err := w.checkRange(r); err != nil {
		return err
	}
	if r.IsEmpty() {
		return nil
	}

	t := w.doc.tree
	t.splitAt(r.Start)
	t.splitAt(r.End)

	changed := false
	for _, run := range t.RunsIn(r) {
		if !run.Attrs.Has(key) {
			continue
		}
		delete(t.get(run.ID).Attrs, key)
		changed = true
	}
	if changed {
		w.records = append(w.records, NewAttributeRecord(key, r))
	}
	return nil
}

// SetNodeAttribute sets key on one node, subject to the validators.
func (w *Writer) SetNodeAttribute(id NodeID, key, value string) error {
	if err := w.check(); err != nil {
		return err
	}
	t := w.doc.tree
	n := t.get(id)
	if n == nil {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	if got, ok := n.Attrs.Get(key); ok && got == value {
		return nil
	}
	if !w.doc.accepts(id, key, t.Ancestors(id)) {
		return nil
	}
	n.Attrs[key] = value
	w.recordNode(id, key)
	return nil
}

// RemoveNodeAttribute removes key from one node.
func (w *Writer) RemoveNodeAttribute(id NodeID, key string) error {
	if err := w.check(); err != nil {
		return err
	}
	n := w.doc.tree.get(id)
	if n == nil {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	if !n.Attrs.Has(key) {
		return nil
	}
	delete(n.Attrs, key)
	w.recordNode(id, key)
	return nil
}

func (w *Writer) recordNode(id NodeID, key string) {
	if span, ok := w.doc.tree.Span(id); ok {
		w.records = append(w.records, NewAttributeRecord(key, span))
	}
}

// InsertText inserts text at offset carrying the caret attributes there.
func (w *Writer) InsertText(at Offset, text string) error {
	return w.InsertFragment(at, Fragment{{Text: text, Attributes: w.AttributesAt(at)}})
}

// InsertFragment inserts the fragment's spans at offset in order.
func (w *Writer) InsertFragment(at Offset, f Fragment) error {
	if err := w.check(); err != nil {
		return err
	}
	if at < 0 || at > w.doc.tree.Len() {
		return fmt.Errorf("%w: %d", ErrOffsetOutOfRange, at)
	}
	pos := at
	for _, span := range f {
		if span.Text == "" {
			continue
		}
		w.doc.tree.insertRun(pos, span.Text, span.Attributes)
		pos += Offset(utf8.RuneCountInString(span.Text))
	}
	if pos > at {
		w.shiftRecords(at, pos-at)
		w.records = append(w.records, NewInsertRecord(at, pos-at))
		w.shiftSelection(at, pos-at)
	}
	return nil
}

// shiftRecords keeps earlier records on the text they describe after n
// characters are inserted at offset at.
func (w *Writer) shiftRecords(at, n Offset) {
	for i := range w.records {
		r := &w.records[i].Range
		switch {
		case r.Start >= at:
			r.Start += n
			r.End += n
		case r.End > at:
			r.End += n
		}
	}
}

// shiftSelection keeps the selection on the same text after an insert.
func (w *Writer) shiftSelection(at, n Offset) {
	sel := w.doc.selection
	if sel.Anchor >= at {
		sel.Anchor += n
	}
	if sel.Head >= at {
		sel.Head += n
	}
	w.doc.selection = sel
}

// SetSelection replaces the selection. The change is delivered to selection
// listeners once the transaction closes.
func (w *Writer) SetSelection(sel Selection, origin Origin) error {
	if err := w.check(); err != nil {
		return err
	}
	if err := w.checkRange(sel.Range()); err != nil {
		return err
	}
	w.doc.selection = sel
	w.selectionMoved = true
	w.origin = origin
	return nil
}
