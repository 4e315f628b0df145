package document

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// NodeID indexes a node in the tree's node table.
type NodeID int32

const (
	// NoNode is the parent of the root.
	NoNode NodeID = -1

	// Root is the ID of the root element of every tree.
	Root NodeID = 0
)

// Kind distinguishes elements from text runs.
type Kind uint8

const (
	// KindElement is a node with ordered children.
	KindElement Kind = iota

	// KindText is a leaf node holding text.
	KindText
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindText {
		return "text"
	}
	return "element"
}

// Node is one entry of the node table.
type Node struct {
	ID       NodeID
	Kind     Kind
	Name     string // element name; empty for text
	Text     string // text runs only
	Attrs    Attributes
	Parent   NodeID
	Children []NodeID

	detached bool
}

// IsText reports whether the node is a text run.
func (n *Node) IsText() bool {
	return n.Kind == KindText
}

// Run is a text run together with its position in the document.
// Attrs aliases the node's attributes and must not be modified.
type Run struct {
	ID    NodeID
	Range Range
	Text  string
	Attrs Attributes
}

// Tree is an arena of nodes. Node IDs are stable for the life of the tree;
// merged or emptied runs are detached rather than reclaimed.
type Tree struct {
	nodes []Node
}

// NewTree creates a tree holding only a root element with the given name.
func NewTree(rootName string) *Tree {
	return &Tree{
		nodes: []Node{{ID: Root, Kind: KindElement, Name: rootName, Attrs: Attributes{}, Parent: NoNode}},
	}
}

// AddElement appends an element as the last child of parent.
func (t *Tree) AddElement(parent NodeID, name string, attrs Attributes) (NodeID, error) {
	return t.add(parent, Node{Kind: KindElement, Name: name, Attrs: attrs.Clone()})
}

// AddText appends a text run as the last child of parent.
func (t *Tree) AddText(parent NodeID, text string, attrs Attributes) (NodeID, error) {
	return t.add(parent, Node{Kind: KindText, Text: text, Attrs: attrs.Clone()})
}

func (t *Tree) add(parent NodeID, n Node) (NodeID, error) {
	p := t.get(parent)
	if p == nil {
		return NoNode, fmt.Errorf("%w: %d", ErrNodeNotFound, parent)
	}
	if p.Kind != KindElement {
		return NoNode, fmt.Errorf("%w: %d", ErrNotElement, parent)
	}
	n.ID = NodeID(len(t.nodes))
	n.Parent = parent
	t.nodes = append(t.nodes, n)
	p = t.get(parent) // append may have moved the table
	p.Children = append(p.Children, n.ID)
	return n.ID, nil
}

func (t *Tree) get(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) || t.nodes[id].detached {
		return nil
	}
	return &t.nodes[id]
}

// Node returns a copy of the node with the given ID.
func (t *Tree) Node(id NodeID) (Node, bool) {
	n := t.get(id)
	if n == nil {
		return Node{}, false
	}
	return *n, true
}

// Attributes returns the attributes of a node, or nil for an unknown ID.
// The map must not be modified.
func (t *Tree) Attributes(id NodeID) Attributes {
	if n := t.get(id); n != nil {
		return n.Attrs
	}
	return nil
}

// Parent returns the parent of a node, or NoNode for the root and unknown IDs.
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.get(id); n != nil {
		return n.Parent
	}
	return NoNode
}

// Ancestors returns the path from the node's parent up to the root,
// nearest first.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var path []NodeID
	for p := t.Parent(id); p != NoNode; p = t.Parent(p) {
		path = append(path, p)
	}
	return path
}

// IsAncestor reports whether anc is a strict ancestor of id.
func (t *Tree) IsAncestor(anc, id NodeID) bool {
	for p := t.Parent(id); p != NoNode; p = t.Parent(p) {
		if p == anc {
			return true
		}
	}
	return false
}

// walk visits text runs in document order.
func (t *Tree) walk(fn func(n *Node, start Offset) bool) {
	var pos Offset
	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		n := t.get(id)
		if n == nil {
			return true
		}
		if n.Kind == KindText {
			l := Offset(utf8.RuneCountInString(n.Text))
			if l == 0 {
				return true
			}
			if !fn(n, pos) {
				return false
			}
			pos += l
			return true
		}
		for _, c := range n.Children {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	visit(Root)
}

// Runs returns every non-empty text run in document order.
func (t *Tree) Runs() []Run {
	var runs []Run
	t.walk(func(n *Node, start Offset) bool {
		l := Offset(utf8.RuneCountInString(n.Text))
		runs = append(runs, Run{ID: n.ID, Range: Range{Start: start, End: start + l}, Text: n.Text, Attrs: n.Attrs})
		return true
	})
	return runs
}

// RunsIn returns the runs that overlap r.
func (t *Tree) RunsIn(r Range) []Run {
	var out []Run
	for _, run := range t.Runs() {
		if run.Range.Overlaps(r) {
			out = append(out, run)
		}
	}
	return out
}

// RunAt returns the run holding the character at offset.
func (t *Tree) RunAt(offset Offset) (Run, bool) {
	for _, run := range t.Runs() {
		if run.Range.Contains(offset) {
			return run, true
		}
	}
	return Run{}, false
}

// Len returns the number of characters in the document.
func (t *Tree) Len() Offset {
	var n Offset
	t.walk(func(node *Node, _ Offset) bool {
		n += Offset(utf8.RuneCountInString(node.Text))
		return true
	})
	return n
}

// Text returns the concatenated text of all runs.
func (t *Tree) Text() string {
	var sb strings.Builder
	t.walk(func(n *Node, _ Offset) bool {
		sb.WriteString(n.Text)
		return true
	})
	return sb.String()
}

// Span returns the range covered by a node. Elements without text yield
// false.
func (t *Tree) Span(id NodeID) (Range, bool) {
	var span Range
	found := false
	for _, run := range t.Runs() {
		if run.ID != id && !t.IsAncestor(id, run.ID) {
			continue
		}
		if !found {
			span = run.Range
			found = true
			continue
		}
		span = span.Union(run.Range)
	}
	return span, found
}

// Spans returns the document text as runs with adjacent equal attributes
// merged, regardless of element boundaries.
func (t *Tree) Spans() []Span {
	var out []Span
	for _, run := range t.Runs() {
		if n := len(out); n > 0 && out[n-1].Attributes.Equal(run.Attrs) {
			out[n-1].Text += run.Text
			continue
		}
		out = append(out, Span{Text: run.Text, Attributes: run.Attrs.Clone()})
	}
	return out
}

// clone returns a deep copy of the tree.
func (t *Tree) clone() *Tree {
	nodes := make([]Node, len(t.nodes))
	for i, n := range t.nodes {
		n.Attrs = n.Attrs.Clone()
		n.Children = slices.Clone(n.Children)
		nodes[i] = n
	}
	return &Tree{nodes: nodes}
}

// splitAt ensures a run boundary at offset.
func (t *Tree) splitAt(offset Offset) {
	run, ok := t.RunAt(offset)
	if !ok || run.Range.Start == offset {
		return
	}
	runes := []rune(run.Text)
	k := offset - run.Range.Start
	node := t.get(run.ID)
	node.Text = string(runes[:k])
	t.insertAfter(run.ID, Node{Kind: KindText, Text: string(runes[k:]), Attrs: node.Attrs.Clone()})
}

// insertAfter places n right after sibling in the sibling's parent.
func (t *Tree) insertAfter(sibling NodeID, n Node) NodeID {
	return t.insertAt(t.get(sibling).Parent, sibling, 1, n)
}

// insertBefore places n right before sibling in the sibling's parent.
func (t *Tree) insertBefore(sibling NodeID, n Node) NodeID {
	return t.insertAt(t.get(sibling).Parent, sibling, 0, n)
}

func (t *Tree) insertAt(parent, sibling NodeID, shift int, n Node) NodeID {
	n.ID = NodeID(len(t.nodes))
	n.Parent = parent
	t.nodes = append(t.nodes, n)
	p := t.get(parent)
	i := slices.Index(p.Children, sibling) + shift
	p.Children = slices.Insert(p.Children, i, n.ID)
	return n.ID
}

// insertRun inserts text at offset as a new run. The run lands next to the
// run ending at offset when there is one, so insertion follows the left
// neighbour into its element.
func (t *Tree) insertRun(offset Offset, text string, attrs Attributes) NodeID {
	t.splitAt(offset)
	n := Node{Kind: KindText, Text: text, Attrs: attrs.Clone()}

	runs := t.Runs()
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i].Range.End == offset {
			return t.insertAfter(runs[i].ID, n)
		}
	}
	for _, run := range runs {
		if run.Range.Start == offset {
			return t.insertBefore(run.ID, n)
		}
	}

	// Empty document: descend into the last element chain.
	parent := Root
	for {
		p := t.get(parent)
		next := NoNode
		for i := len(p.Children) - 1; i >= 0; i-- {
			if c := t.get(p.Children[i]); c != nil && c.Kind == KindElement {
				next = c.ID
				break
			}
		}
		if next == NoNode {
			break
		}
		parent = next
	}
	id, _ := t.add(parent, n)
	return id
}

// normalize merges adjacent sibling runs with equal attributes and detaches
// empty runs.
func (t *Tree) normalize() {
	for i := range t.nodes {
		p := &t.nodes[i]
		if p.detached || p.Kind != KindElement {
			continue
		}
		kept := p.Children[:0]
		for _, id := range p.Children {
			c := t.get(id)
			if c == nil {
				continue
			}
			if c.Kind == KindText && c.Text == "" {
				c.detached = true
				continue
			}
			if n := len(kept); n > 0 && c.Kind == KindText {
				prev := t.get(kept[n-1])
				if prev.Kind == KindText && prev.Attrs.Equal(c.Attrs) {
					prev.Text += c.Text
					c.detached = true
					continue
				}
			}
			kept = append(kept, id)
		}
		p.Children = kept
	}
}
