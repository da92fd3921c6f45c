package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/studiowebux/s1dash/internal/store"
	"github.com/stretchr/testify/require"
)

func TestBackendFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want store.Backend
	}{
		{"https://s1.kognise.dev/", store.BackendS1},
		{"http://localhost:8080", store.BackendS1},
		{"redis://localhost:6379/0", store.BackendRedis},
		{"rediss://cache.example.com", store.BackendRedis},
		{"sqlite:///tmp/kv.db", store.BackendSQLite},
		{"file:///tmp/kv.db", store.BackendSQLite},
		{"mem://demo", store.BackendMemory},
	}

	for _, tt := range tests {
		got, err := store.BackendFor(tt.url)
		require.NoError(t, err, tt.url)
		require.Equal(t, tt.want, got, tt.url)
	}

	_, err := store.BackendFor("ftp://example.com")
	require.Error(t, err)
}

func TestDispatcher_UnsupportedSchemeIsConnectionError(t *testing.T) {
	t.Parallel()

	d := store.NewDispatcher(store.S1Options{}, "")
	_, err := d.Open(context.Background(), "token", "gopher://example.com")

	var connErr *store.ConnectionError
	require.ErrorAs(t, err, &connErr)
}

func TestDispatcher_DisabledBackend(t *testing.T) {
	t.Parallel()

	d := &store.Dispatcher{}
	_, err := d.Open(context.Background(), "token", "mem://x")

	var connErr *store.ConnectionError
	require.ErrorAs(t, err, &connErr)
}

func TestNotFoundError_MatchesSentinel(t *testing.T) {
	t.Parallel()

	err := error(&store.NotFoundError{Key: "a"})
	require.True(t, errors.Is(err, store.ErrNotFound))
	require.True(t, store.IsNotFound(err))
	require.False(t, store.IsNotFound(&store.StoreError{Op: "read", Err: errors.New("boom")}))
}

func TestClose_IgnoresClientsWithoutResources(t *testing.T) {
	t.Parallel()

	client, err := store.NewMemoryOpener().Open(context.Background(), "t", "mem://close")
	require.NoError(t, err)
	require.NoError(t, store.Close(client))
}
