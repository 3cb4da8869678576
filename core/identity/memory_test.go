package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprenmaker/hubauth/core/identity"
)

func TestMemoryProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p := identity.NewMemoryProvider("google", 8)
	assert.ErrorIs(t, p.Open(ctx), identity.ErrNotReady)

	p.Init()
	evt := <-p.Events()
	assert.Equal(t, identity.EventInit, evt.Kind)
	assert.Nil(t, evt.Identity)

	p.OnOpen(identity.Identity{ID: "7", Email: "teo@uni.edu"})
	require.NoError(t, p.Open(ctx))
	assert.Equal(t, 1, p.Opened())

	evt = <-p.Events()
	assert.Equal(t, identity.EventLogin, evt.Kind)
	require.NotNil(t, evt.Identity)
	assert.Equal(t, "google", evt.Identity.Provider)

	user, ok := p.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "7", user.ID)

	p.SetUser(&identity.Identity{ID: "8"})
	user, _ = p.CurrentUser()
	assert.Equal(t, "8", user.ID)

	require.NoError(t, p.Logout(ctx))
	evt = <-p.Events()
	assert.Equal(t, identity.EventLogout, evt.Kind)
	_, ok = p.CurrentUser()
	assert.False(t, ok)

	p.Close()
	p.Close()
	assert.ErrorIs(t, p.Open(ctx), identity.ErrClosed)
	_, open := <-p.Events()
	assert.False(t, open)
}
