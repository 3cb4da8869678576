// Package kvstore provides the key-value storage abstraction behind session
// state, analytics and preferences.
//
// A Store holds opaque byte values under string keys. The session manager
// uses two of them: a Volatile scope that lives as long as the process (or
// the interactive shell), and a Persistent scope that survives restarts.
//
// Two implementations live here:
//
//	mem := kvstore.NewMemory()
//	file, err := kvstore.OpenFile("/var/lib/hubauth/state.json")
//
// Network backends (Redis, Postgres, Mongo, S3) live under integration/ and
// satisfy the same interface.
//
// Get returns ErrNotFound for missing keys. Delete of a missing key is not an
// error. Keys returns the keys that start with a prefix in ascending order.
package kvstore
