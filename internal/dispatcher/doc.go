// Package dispatcher routes document commands to handlers and coordinates
// execution.
//
// # Command Execution
//
// When a command is executed:
//
//  1. An ExecutionContext is built around the dispatcher's document
//  2. Pre-dispatch hooks run in priority order (any may stop the command)
//  3. The registered handler runs (with optional panic recovery)
//  4. Post-dispatch hooks run
//  5. Execute-completion listeners registered with OnExecuted run
//  6. Metrics are recorded (if enabled)
//
// A pre-dispatch hook may perform a command's effect itself, for example to
// rewrite an overlapping link in place. It then marks the context handled
// and fires the completion listeners through ctx.NotifyExecuted, so
// listeners observe the command as if the handler had run.
//
// # Handlers
//
//	d := dispatcher.NewWithDefaults(dispatcher.WithDocument(doc))
//	d.RegisterHandler("link", handler.NewAttributeHandler("link", "linkHref"))
//	result := d.Execute(handler.Command{Name: "link", Value: "https://example.com"})
//
// # Thread Safety
//
// Registration is safe for concurrent use. Commands are expected to run on
// one goroutine because document transactions never overlap.
package dispatcher
