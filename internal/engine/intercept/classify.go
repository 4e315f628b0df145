package intercept

import (
	"github.com/dshills/linkguard/internal/document"
	"github.com/dshills/linkguard/internal/engine/registry"
)

// Class is how a selection relates to existing links.
type Class uint8

const (
	// Collapsed is a caret.
	Collapsed Class = iota
	// Disjoint touches no link.
	Disjoint
	// Inside lies entirely within one existing link.
	Inside
	// Overlapping touches a link but is not inside a single one.
	Overlapping
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case Collapsed:
		return "collapsed"
	case Disjoint:
		return "disjoint"
	case Inside:
		return "inside"
	case Overlapping:
		return "overlapping"
	default:
		return "unknown"
	}
}

// Classify returns the class of sel and, for Inside, the link key that
// encloses it.
//
// A run's link is its own link attribute, or failing that the nearest
// ancestor element's. The selection is Inside when every run it covers has
// the same link key and value.
func Classify(r document.Reader, reg *registry.Registry, sel document.Selection) (Class, string) {
	if sel.IsEmpty() {
		return Collapsed, ""
	}

	var (
		first    link
		linked   int
		runs     = r.RunsIn(sel.Range())
		mismatch bool
	)
	for _, run := range runs {
		l, ok := linkOf(r, reg, run)
		if !ok {
			continue
		}
		linked++
		if linked == 1 {
			first = l
		}
		if l != first {
			mismatch = true
		}
	}

	switch {
	case linked == 0:
		return Disjoint, ""
	case linked == len(runs) && !mismatch:
		return Inside, first.key
	default:
		return Overlapping, ""
	}
}

type link struct {
	key, value string
}

func linkOf(r document.Reader, reg *registry.Registry, run document.Run) (link, bool) {
	if k, v, ok := reg.Link(run.Attrs); ok {
		return link{k, v}, true
	}
	for _, anc := range r.Ancestors(run.ID) {
		if k, v, ok := reg.Link(r.Attributes(anc)); ok {
			return link{k, v}, true
		}
	}
	return link{}, false
}
