package commands

import (
	"context"
	"time"

	"github.com/aprenmaker/hubauth/core/health"
)

// DoctorCmd checks that the registry and both stores are usable.
type DoctorCmd struct{}

func (c *DoctorCmd) Run(ctx context.Context, g *Globals) error {
	app, err := newApp(ctx, g)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.doctor(ctx)
}

func (a *App) doctor(ctx context.Context) error {
	results, err := health.Readiness(ctx, a.Log, a.checks...)
	for _, r := range results {
		if r.OK() {
			a.printf("%-16s ok (%s)\n", r.Name, r.Elapsed.Round(time.Microsecond))
			continue
		}
		a.printf("%-16s FAIL %v\n", r.Name, r.Err)
	}
	return err
}
