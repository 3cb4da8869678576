package kvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprenmaker/hubauth/core/kvstore"
	"github.com/aprenmaker/hubauth/core/kvstore/kvstoretest"
)

func TestMemory(t *testing.T) {
	t.Parallel()
	kvstoretest.Run(t, kvstore.NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := kvstore.NewMemory()

	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[0] = 'y'
	again, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
	assert.Equal(t, 1, m.Len())
}

func TestFile(t *testing.T) {
	t.Parallel()
	f, err := kvstore.OpenFile(filepath.Join(t.TempDir(), "state", "kv.json"))
	require.NoError(t, err)
	kvstoretest.Run(t, f)
}

func TestFile_SurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.json")

	f, err := kvstore.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, kvstore.SessionKey, []byte(`{"token":"x"}`)))

	reopened, err := kvstore.OpenFile(path)
	require.NoError(t, err)
	v, err := reopened.Get(ctx, kvstore.SessionKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"x"}`, string(v))
	assert.Equal(t, path, reopened.Path())
}

func TestFile_SharedBetweenHandles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.json")

	a, err := kvstore.OpenFile(path)
	require.NoError(t, err)
	b, err := kvstore.OpenFile(path)
	require.NoError(t, err)

	require.NoError(t, a.Set(ctx, "user-preferences-gh-1", []byte("1")))
	require.NoError(t, b.Set(ctx, "curriculum-progress", []byte("2")))

	v, err := a.Get(ctx, "curriculum-progress")
	require.NoError(t, err)
	assert.Equal(t, "2", string(v), "writes from another handle are visible")

	require.NoError(t, a.Delete(ctx, "curriculum-progress"))
	require.NoError(t, b.Set(ctx, kvstore.SessionKey, []byte("3")))

	reopened, err := kvstore.OpenFile(path)
	require.NoError(t, err)
	keys, err := reopened.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{kvstore.SessionKey, "user-preferences-gh-1"}, keys)
}

func TestFile_CorruptDocument(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "kv.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := kvstore.OpenFile(path)
	assert.Error(t, err)
}

func TestScope_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "volatile", kvstore.Volatile.String())
	assert.Equal(t, "persistent", kvstore.Persistent.String())
	assert.Equal(t, "unknown", kvstore.Scope(9).String())
}
