// Package identity connects an external identity provider to the session
// manager.
//
// A Provider emits callbacks (init, login, logout, error, close) on its
// Events channel. The Adapter consumes them from one goroutine and turns each
// into a typed command (ExternalLogin, ExternalLogout, ExternalError,
// ExternalClosed) dispatched through a command.Dispatcher:
//
//	d := command.NewDispatcher()
//	manager.RegisterCommands(d)
//
//	adapter := identity.NewAdapter(provider, d, identity.WithAdapterLogger(log))
//	go adapter.Run(ctx)
//
//	// Await readiness instead of polling the provider.
//	if _, err := adapter.Ready().Await(ctx); err != nil {
//	    return err
//	}
//
// MemoryProvider is an in-process provider for tests and the shell. OAuth
// backed providers live in integration/identity/oauth.
package identity
