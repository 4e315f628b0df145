package constraint

import (
	"testing"

	"github.com/dshills/linkguard/internal/document"
	"github.com/dshills/linkguard/internal/engine/registry"
)

type fixture struct {
	tree  *document.Tree
	para  document.NodeID
	box   document.NodeID
	hello document.NodeID
	plain document.NodeID
	boxed document.NodeID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	var f fixture
	var err error
	f.tree = document.NewTree("root")
	if f.para, err = f.tree.AddElement(document.Root, "paragraph", nil); err != nil {
		t.Fatal(err)
	}
	if f.hello, err = f.tree.AddText(f.para, "hello", document.Attributes{"linkA": "x"}); err != nil {
		t.Fatal(err)
	}
	if f.plain, err = f.tree.AddText(f.para, " plain ", nil); err != nil {
		t.Fatal(err)
	}
	if f.box, err = f.tree.AddElement(f.para, "box", document.Attributes{"linkC": "z"}); err != nil {
		t.Fatal(err)
	}
	if f.boxed, err = f.tree.AddText(f.box, "inside", nil); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestMayApply(t *testing.T) {
	f := newFixture(t)
	c := New(registry.New("linkA", "linkB", "linkC"))

	tests := []struct {
		name string
		node document.NodeID
		key  string
		want bool
	}{
		{"unregistered key on linked run", f.hello, "bold", true},
		{"different link on linked run", f.hello, "linkB", false},
		{"same link on linked run", f.hello, "linkA", false},
		{"link on plain run", f.plain, "linkB", true},
		{"link under linked element", f.boxed, "linkA", false},
		{"unregistered key under linked element", f.boxed, "italic", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.MayApply(f.tree, tt.node, tt.key, f.tree.Ancestors(tt.node))
			if got != tt.want {
				t.Errorf("MayApply = %v, want %v", got, tt.want)
			}
		})
	}
}

// A link applied over part of an existing link is refused.
func TestMayApplyLinkInsideLink(t *testing.T) {
	d := document.New()
	if _, err := d.Change("seed", func(m document.Mutator) error {
		return m.InsertFragment(0, document.Fragment{{Text: "hello", Attributes: document.Attributes{"linkA": "x"}}})
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c := New(registry.New("linkA", "linkB"))
	run, _ := d.RunAt(1)

	if c.MayApply(d, run.ID, "linkB", d.Ancestors(run.ID)) {
		t.Error("expected linkB over \"ell\" to be refused")
	}
}

func TestValidatorBlocksWrites(t *testing.T) {
	f := newFixture(t)
	d := document.New(document.WithTree(f.tree))
	c := New(registry.New("linkA", "linkB", "linkC"))
	d.AddValidator(c.Validator(d))

	if _, err := d.Change("link", func(m document.Mutator) error {
		return m.SetAttribute(document.NewRange(0, d.Len()), "linkB", "y")
	}); err != nil {
		t.Fatalf("Change: %v", err)
	}

	for _, run := range d.Runs() {
		got, has := run.Attrs.Get("linkB")
		switch run.Text {
		case " plain ":
			if got != "y" {
				t.Errorf("plain run should be linked, got %v", run.Attrs)
			}
		default:
			if has {
				t.Errorf("run %q should have been refused, got %v", run.Text, run.Attrs)
			}
		}
	}
}
