// Package kvstoretest holds the behaviour every kvstore.Store must share.
package kvstoretest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprenmaker/hubauth/core/kvstore"
)

// Run exercises s against the kvstore.Store contract. s must start empty.
func Run(t *testing.T, s kvstore.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, s.Set(ctx, "user-a", []byte("1")))
	require.NoError(t, s.Set(ctx, "user-b", []byte("2")))
	require.NoError(t, s.Set(ctx, "curriculum-x", []byte("3")))

	v, err := s.Get(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, s.Set(ctx, "user-a", []byte("11")))
	v, err = s.Get(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("11"), v, "set overwrites")

	keys, err := s.Keys(ctx, "user-")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-a", "user-b"}, keys)

	require.NoError(t, s.Delete(ctx, "user-a"))
	require.NoError(t, s.Delete(ctx, "user-a"), "deleting a missing key is fine")

	n, err := kvstore.DeletePrefix(ctx, s, "curriculum-")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := s.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-b"}, all)
}
