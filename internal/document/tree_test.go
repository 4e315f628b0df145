package document

import (
	"errors"
	"testing"
)

func buildTree(t *testing.T) (*Tree, NodeID, NodeID) {
	t.Helper()
	tree := NewTree("root")
	p, err := tree.AddElement(Root, "paragraph", nil)
	if err != nil {
		t.Fatalf("AddElement: %v", err)
	}
	if _, err := tree.AddText(p, "hello", Attributes{"linkHref": "x"}); err != nil {
		t.Fatalf("AddText: %v", err)
	}
	if _, err := tree.AddText(p, " ", nil); err != nil {
		t.Fatalf("AddText: %v", err)
	}
	box, err := tree.AddElement(p, "box", Attributes{"anchorHref": "y"})
	if err != nil {
		t.Fatalf("AddElement: %v", err)
	}
	world, err := tree.AddText(box, "wörld", nil)
	if err != nil {
		t.Fatalf("AddText: %v", err)
	}
	return tree, box, world
}

func TestTreeRuns(t *testing.T) {
	tree, _, _ := buildTree(t)

	if got := tree.Text(); got != "hello wörld" {
		t.Errorf("expected text %q, got %q", "hello wörld", got)
	}
	if got := tree.Len(); got != 11 {
		t.Errorf("expected length 11, got %d", got)
	}

	runs := tree.Runs()
	want := []Range{{0, 5}, {5, 6}, {6, 11}}
	if len(runs) != len(want) {
		t.Fatalf("expected %d runs, got %d", len(want), len(runs))
	}
	for i, r := range runs {
		if r.Range != want[i] {
			t.Errorf("run %d: expected %v, got %v", i, want[i], r.Range)
		}
	}

	if run, ok := tree.RunAt(7); !ok || run.Text != "wörld" {
		t.Errorf("RunAt(7) = %+v, %v", run, ok)
	}
	if _, ok := tree.RunAt(11); ok {
		t.Error("RunAt(len) should not find a run")
	}
	if got := len(tree.RunsIn(NewRange(4, 7))); got != 3 {
		t.Errorf("expected 3 runs in [4:7), got %d", got)
	}
}

func TestTreeAncestors(t *testing.T) {
	tree, box, world := buildTree(t)

	anc := tree.Ancestors(world)
	if len(anc) != 3 || anc[0] != box || anc[2] != Root {
		t.Errorf("unexpected ancestors %v", anc)
	}
	if !tree.IsAncestor(box, world) {
		t.Error("box should be an ancestor of its text")
	}
	if tree.IsAncestor(world, box) {
		t.Error("text cannot be an ancestor")
	}
	if tree.Parent(Root) != NoNode {
		t.Error("root should have no parent")
	}
	if span, ok := tree.Span(box); !ok || span != NewRange(6, 11) {
		t.Errorf("Span(box) = %v, %v", span, ok)
	}
}

func TestTreeAddErrors(t *testing.T) {
	tree, _, world := buildTree(t)

	if _, err := tree.AddText(world, "x", nil); !errors.Is(err, ErrNotElement) {
		t.Errorf("expected ErrNotElement, got %v", err)
	}
	if _, err := tree.AddElement(99, "p", nil); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestTreeSplitAndNormalize(t *testing.T) {
	tree, _, _ := buildTree(t)

	tree.splitAt(2)
	tree.splitAt(8)
	if got := len(tree.Runs()); got != 5 {
		t.Fatalf("expected 5 runs after splitting, got %d", got)
	}
	if got := tree.Text(); got != "hello wörld" {
		t.Errorf("split changed the text: %q", got)
	}

	tree.normalize()
	if got := len(tree.Runs()); got != 3 {
		t.Errorf("expected 3 runs after normalize, got %d", got)
	}
}

func TestTreeInsertRun(t *testing.T) {
	tree, box, _ := buildTree(t)

	id := tree.insertRun(8, "XY", Attributes{"bold": "true"})
	if got := tree.Text(); got != "hello wöXYrld" {
		t.Errorf("unexpected text %q", got)
	}
	if tree.Parent(id) != box {
		t.Errorf("inserted run should land inside the box element")
	}

	empty := NewTree("root")
	p, _ := empty.AddElement(Root, "paragraph", nil)
	id = empty.insertRun(0, "abc", nil)
	if empty.Parent(id) != p {
		t.Errorf("insert into empty tree should land in the deepest element")
	}
}

func TestTreeSpans(t *testing.T) {
	tree := NewTree("root")
	p, _ := tree.AddElement(Root, "paragraph", nil)
	tree.AddText(p, "ab", Attributes{"k": "v"})
	q, _ := tree.AddElement(Root, "paragraph", nil)
	tree.AddText(q, "cd", Attributes{"k": "v"})
	tree.AddText(q, "ef", nil)

	spans := tree.Spans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %v", len(spans), spans)
	}
	if spans[0].Text != "abcd" || spans[1].Text != "ef" {
		t.Errorf("unexpected spans %v", spans)
	}
}

func TestRangeOperations(t *testing.T) {
	r := NewRange(2, 6)

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"contains start", r.Contains(2), true},
		{"excludes end", r.Contains(6), false},
		{"overlaps", r.Overlaps(NewRange(5, 9)), true},
		{"touching is not overlap", r.Overlaps(NewRange(6, 9)), false},
		{"contains range", r.ContainsRange(NewRange(3, 6)), true},
		{"invalid", NewRange(3, 1).IsValid(), false},
		{"negative", NewRange(-1, 1).IsValid(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if got := r.Intersect(NewRange(4, 10)); got != NewRange(4, 6) {
		t.Errorf("Intersect = %v", got)
	}
	merged := MergeRanges([]Range{{0, 2}, {2, 4}, {5, 5}, {6, 8}})
	if len(merged) != 2 || merged[0] != NewRange(0, 4) || merged[1] != NewRange(6, 8) {
		t.Errorf("MergeRanges = %v", merged)
	}
}
