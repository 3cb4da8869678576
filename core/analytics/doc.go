// Package analytics keeps a bounded log of session events.
//
// The log lives in a kvstore.Store under kvstore.AnalyticsKey as one JSON
// array, capped at Config.Capacity entries (200 by default). Recording reads,
// appends, trims the oldest entries and writes back. Within one process the
// Log serializes writers; processes sharing a backend overwrite each other.
//
//	log := analytics.New(store, analytics.DefaultConfig())
//	_ = log.Record(ctx, analytics.Entry{Event: "login_success", Actor: "ESO Educator"})
//	stats := log.Stats(ctx)
package analytics
