// Package health runs dependency checks and reports their outcome.
//
// A check is a named func(context.Context) error. Readiness runs every check,
// logs failures and returns ErrNotReady joined with each failure:
//
//	results, err := health.Readiness(ctx, logger,
//		health.Check{Name: "redis", Fn: redis.Healthcheck(client)},
//		health.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//	)
//
// Handler exposes the same checks over HTTP, answering "READY" or 503.
package health
