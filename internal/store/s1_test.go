package store_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/studiowebux/s1dash/internal/store"
	"github.com/stretchr/testify/require"
)

// fakeS1 is a minimal S1 server backed by a map
type fakeS1 struct {
	mu     sync.Mutex
	token  string
	values map[string]string
}

func (f *fakeS1) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		http.Error(w, "bad token", http.StatusUnauthorized)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/api/v1/keys" {
		keys := []string{}
		for k := range f.values {
			keys = append(keys, k)
		}
		json.NewEncoder(w).Encode(keys)
		return
	}

	key, ok := strings.CutPrefix(r.URL.Path, "/api/v1/data/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		value, ok := f.values[key]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		io.WriteString(w, value)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.values[key] = string(body)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		delete(f.values, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func newFakeS1(t *testing.T, values map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(&fakeS1{token: "secret", values: values})
	t.Cleanup(srv.Close)
	return srv
}

func TestS1Client_CRUD(t *testing.T) {
	t.Parallel()

	srv := newFakeS1(t, map[string]string{"a": `{"n":1}`})
	ctx := context.Background()

	client, err := store.NewS1Opener(store.S1Options{}).Open(ctx, "secret", srv.URL)
	require.NoError(t, err)

	keys, err := client.ListKeys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, keys)

	raw, err := client.ReadRaw(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, `{"n":1}`, raw)

	require.NoError(t, client.WriteRaw(ctx, "b", "hello"))
	raw, err = client.ReadRaw(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, "hello", raw)

	require.NoError(t, client.DeleteKey(ctx, "a"))
	_, err = client.ReadRaw(ctx, "a")
	require.True(t, store.IsNotFound(err), "expected not found, got %v", err)

	require.NoError(t, store.Close(client))
}

func TestS1Client_BaseURLWithPath(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.Handle("/prefix/", http.StripPrefix("/prefix", &fakeS1{token: "secret", values: map[string]string{"x": "1"}}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := store.NewS1Opener(store.S1Options{}).Open(context.Background(), "secret", srv.URL+"/prefix")
	require.NoError(t, err)

	keys, err := client.ListKeys(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, keys)
}

func TestS1Client_RejectedToken(t *testing.T) {
	t.Parallel()

	srv := newFakeS1(t, map[string]string{})
	client, err := store.NewS1Opener(store.S1Options{}).Open(context.Background(), "wrong", srv.URL)
	require.NoError(t, err)

	_, err = client.ListKeys(context.Background())
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	require.ErrorIs(t, err, store.ErrUnauthorized)
}

func TestS1Opener_Validation(t *testing.T) {
	t.Parallel()

	opener := store.NewS1Opener(store.S1Options{})

	_, err := opener.Open(context.Background(), "", "https://s1.kognise.dev/")
	var connErr *store.ConnectionError
	require.ErrorAs(t, err, &connErr)

	_, err = opener.Open(context.Background(), "token", "https://")
	require.ErrorAs(t, err, &connErr)
}

func TestS1Client_ServerErrorIsStoreError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database on fire", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client, err := store.NewS1Opener(store.S1Options{}).Open(context.Background(), "t", srv.URL)
	require.NoError(t, err)

	err = client.WriteRaw(context.Background(), "k", "v")
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	require.Equal(t, "write", storeErr.Op)
	require.Contains(t, err.Error(), "database on fire")
}
