// Package engine keeps link attributes from nesting inside one another.
//
// An Engine is built from a config.Config and attached to a document and,
// optionally, a command dispatcher. Attaching wires the sub-packages into the
// host's extension points:
//
//   - constraint: an attribute validator refusing link writes under links
//   - consistency: a post-commit pass stripping nesting that slipped through
//   - clipboard: a paste hook splitting the enclosing link around pasted text
//   - expander: a selection listener growing a caret to the link under it
//   - intercept: a pre-dispatch hook per link command
//
// Warnings are delivered through a Warner. Inside transactions they are
// queued on the document's task queue and delivered after it closes.
//
// Basic usage:
//
//	eng, err := engine.New(cfg, engine.WithWarner(engine.WarnerFunc(showModal)))
//	if err != nil {
//	    return err
//	}
//	doc := document.New(eng.DocumentOptions()...)
//	att := eng.Attach(doc, dispatcher.NewWithDefaults())
//	if _, err := att.Check(); err != nil {
//	    return err
//	}
package engine
