// Package session implements the educator session lifecycle.
//
// A Manager owns two stores: a volatile scope for sessions that end with the
// process and a persistent scope for remembered sessions, analytics and
// per-user preferences. It turns access codes and external identity
// callbacks into sessions and answers permission and tool queries for the
// active session.
//
// Basic usage:
//
//	m := session.NewManager(profile.DefaultRegistry(),
//	    session.WithPersistentStore(store),
//	    session.WithPublisher(bus),
//	    session.WithLogger(log),
//	)
//	m.CleanupExpiredSessions(ctx)
//
//	res, err := m.LoginWithCode(ctx, "valencia_eso_2025", true)
//	if errors.Is(err, session.ErrInvalidCredential) {
//	    fmt.Println(res.Message)
//	}
//
//	if m.HasCapability(ctx, "create_curriculum") {
//	    tools := m.AvailableTools(ctx)
//	}
//
// External login is split in two: BeginExternalLogin opens the provider and
// returns StatusPending; the identity adapter later delivers the outcome as
// commands registered with RegisterCommands.
//
// Reads prefer the volatile scope. Unreadable stored data is deleted and
// treated as absent, and an expired session is logged out on the next read.
// Every method is safe for concurrent use; all state transitions run under
// a single mutex.
//
// Watcher adds the expiry warning and the activity-driven extension.
package session
