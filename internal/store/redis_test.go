package store_test

import (
	"context"
	"testing"

	"github.com/studiowebux/s1dash/internal/store"
	"github.com/stretchr/testify/require"
)

func TestRedisOptions(t *testing.T) {
	t.Parallel()

	opts, err := store.RedisOptions("hunter2", "redis://localhost:6379/3")
	require.NoError(t, err)
	require.Equal(t, "localhost:6379", opts.Addr)
	require.Equal(t, 3, opts.DB)
	require.Equal(t, "hunter2", opts.Password)
	require.Empty(t, opts.Username)

	opts, err = store.RedisOptions("app:s3cret", "redis://localhost:6379")
	require.NoError(t, err)
	require.Equal(t, "app", opts.Username)
	require.Equal(t, "s3cret", opts.Password)
}

func TestRedisOptions_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := store.RedisOptions("", "http://localhost")
	require.Error(t, err)
}

func TestRedisOpener_UnreachableIsConnectionError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&store.RedisOpener{}).Open(ctx, "", "redis://127.0.0.1:1/0")
	var connErr *store.ConnectionError
	require.ErrorAs(t, err, &connErr)
}
