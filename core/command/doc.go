// Package command provides a small typed command dispatcher.
//
// Commands are plain structs. A handler is registered per command type and
// the command name is derived from the Go type name, so callers dispatch
// values and never deal with string routing:
//
//	type ExternalLogout struct{}
//
//	d := command.NewDispatcher(command.WithLogger(log))
//	d.Register(command.NewHandlerFunc(func(ctx context.Context, _ ExternalLogout) error {
//	    return manager.OnExternalLogout(ctx)
//	}))
//
//	if err := d.Dispatch(ctx, ExternalLogout{}); err != nil {
//	    // handler error, missing handler, or recovered panic
//	}
//
// Dispatch is synchronous. The identity adapter relies on this: provider
// events are dispatched from one goroutine and therefore reach the session
// manager in the order the provider emitted them.
//
// Middleware wraps every handler; LoggingMiddleware is included.
package command
