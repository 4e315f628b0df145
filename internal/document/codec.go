package document

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Span is a piece of text with its attributes.
type Span struct {
	Text       string     `yaml:"text"`
	Attributes Attributes `yaml:"attributes,omitempty"`
}

// Fragment is a flat sequence of spans, the shape of pasted content.
type Fragment []Span

// Len returns the fragment length in characters.
func (f Fragment) Len() Offset {
	var n Offset
	for _, s := range f {
		n += Offset(utf8.RuneCountInString(s.Text))
	}
	return n
}

// nodeYAML is the serialized form of a node. A node with Text set is a run.
type nodeYAML struct {
	Name       string     `yaml:"name,omitempty"`
	Text       *string    `yaml:"text,omitempty"`
	Attributes Attributes `yaml:"attributes,omitempty"`
	Children   []nodeYAML `yaml:"children,omitempty"`
}

type selectionYAML struct {
	Anchor Offset `yaml:"anchor"`
	Head   Offset `yaml:"head"`
}

type documentYAML struct {
	Root      nodeYAML       `yaml:"root"`
	Selection *selectionYAML `yaml:"selection,omitempty"`
}

// Decode reads a YAML document. Options are applied to the new Document.
func Decode(r io.Reader, opts ...Option) (*Document, error) {
	var raw documentYAML
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return New(opts...), nil
		}
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	if raw.Root.Text != nil {
		return nil, fmt.Errorf("decoding document: root must be an element")
	}
	name := raw.Root.Name
	if name == "" {
		name = "root"
	}
	t := NewTree(name)
	for k, v := range raw.Root.Attributes {
		t.nodes[Root].Attrs[k] = v
	}
	for _, c := range raw.Root.Children {
		if err := decodeNode(t, Root, c); err != nil {
			return nil, err
		}
	}

	d := New(append([]Option{WithTree(t)}, opts...)...)
	if raw.Selection != nil {
		sel := NewSelection(raw.Selection.Anchor, raw.Selection.Head)
		if !sel.Range().IsValid() || sel.End() > t.Len() {
			return nil, fmt.Errorf("decoding document: %w: selection %v", ErrRangeInvalid, sel)
		}
		d.selection = sel
	}
	return d, nil
}

func decodeNode(t *Tree, parent NodeID, n nodeYAML) error {
	if n.Text != nil {
		if len(n.Children) > 0 {
			return fmt.Errorf("decoding document: text run %q has children", *n.Text)
		}
		_, err := t.AddText(parent, *n.Text, n.Attributes)
		return err
	}
	id, err := t.AddElement(parent, n.Name, n.Attributes)
	if err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := decodeNode(t, id, c); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes the document as YAML.
func Encode(w io.Writer, d *Document) error {
	raw := documentYAML{Root: encodeNode(d.tree, Root)}
	if sel := d.selection; sel != (Selection{}) {
		raw.Selection = &selectionYAML{Anchor: sel.Anchor, Head: sel.Head}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return enc.Close()
}

func encodeNode(t *Tree, id NodeID) nodeYAML {
	n := t.get(id)
	out := nodeYAML{Name: n.Name}
	if len(n.Attrs) > 0 {
		out.Attributes = n.Attrs.Clone()
	}
	if n.Kind == KindText {
		text := n.Text
		out.Text = &text
		return out
	}
	for _, c := range n.Children {
		if t.get(c) != nil {
			out.Children = append(out.Children, encodeNode(t, c))
		}
	}
	return out
}

// DecodeFragment reads a YAML list of spans.
func DecodeFragment(r io.Reader) (Fragment, error) {
	var f Fragment
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding fragment: %w", err)
	}
	for i := range f {
		if f[i].Attributes == nil {
			f[i].Attributes = Attributes{}
		}
	}
	return f, nil
}
