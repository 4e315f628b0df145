// Package hook provides extensible pre/post dispatch hooks for the dispatcher.
//
// Hooks intercept command dispatch for logging, timing and link policy.
// They are ordered by priority.
//
// # Hook Types
//
//   - PreDispatchHook: Called before a command is dispatched. Can stop the command.
//   - PostDispatchHook: Called after dispatch completes. Can inspect/modify results.
//
// A pre-dispatch hook that stops a command either cancels it or, after
// performing the command's effect itself, marks the execution context
// handled. The dispatcher reports the first as StatusCancelled and the
// second as StatusOK.
//
// # Priority System
//
//   - Pre-hooks: Higher priority runs first.
//   - Post-hooks: Lower priority runs first, higher runs last (to see final results).
//
// # Hook Manager
//
//	manager := hook.NewManager()
//	manager.Register(hook.NewAuditHook(slog.Default()))
//
//	if manager.RunPreDispatch(&cmd, ctx) {
//	    // Dispatch command...
//	}
//	manager.RunPostDispatch(&cmd, ctx, &result)
//
// # Thread Safety
//
// The Manager uses read-write locks to protect registration. Hooks run on
// the dispatching goroutine.
package hook
