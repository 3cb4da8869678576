package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprenmaker/hubauth/core/health"
)

func ok(context.Context) error { return nil }

func TestReadiness(t *testing.T) {
	t.Parallel()

	t.Run("all pass", func(t *testing.T) {
		t.Parallel()
		results, err := health.Readiness(context.Background(), nil,
			health.Check{Name: "a", Fn: ok},
			health.Check{Name: "b", Fn: ok},
		)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.True(t, results[0].OK())
		assert.Equal(t, "b", results[1].Name)
	})

	t.Run("failure does not stop later checks", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		called := false
		results, err := health.Readiness(context.Background(), nil,
			health.Check{Name: "db", Fn: func(context.Context) error { return boom }},
			health.Check{Name: "cache", Fn: func(context.Context) error { called = true; return nil }},
		)
		require.ErrorIs(t, err, health.ErrNotReady)
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "db: boom")
		assert.True(t, called)
		assert.False(t, results[0].OK())
		assert.True(t, results[1].OK())
	})
}

func TestHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		checks []health.Check
		code   int
		body   string
	}{
		{"liveness", nil, http.StatusOK, "ALIVE"},
		{"ready", []health.Check{{Name: "a", Fn: ok}}, http.StatusOK, "READY"},
		{"not ready", []health.Check{{Name: "a", Fn: func(context.Context) error { return errors.New("down") }}},
			http.StatusServiceUnavailable, "NOT READY\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			health.Handler(nil, tt.checks...).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}
