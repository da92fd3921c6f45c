package registry_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/studiowebux/s1dash/internal/registry"
	"github.com/studiowebux/s1dash/internal/types"
	"github.com/stretchr/testify/require"
)

func conn(name string) types.Connection {
	return types.Connection{Name: name, Credential: "tok-" + name}
}

func TestRegistry_AddKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	store := &registry.MemoryStore{}
	reg := registry.New(store)

	a, err := reg.Add(conn("a"))
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)

	b, err := reg.Add(conn("b"))
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	list := reg.List()
	require.Len(t, list, 2)
	require.Equal(t, "a", list[0].Name)
	require.Equal(t, "b", list[1].Name)

	require.Equal(t, 2, store.Saves)
	require.Equal(t, list, store.Connections)
}

func TestRegistry_ReplaceKeepsIndexAndID(t *testing.T) {
	t.Parallel()

	reg := registry.New(&registry.MemoryStore{})
	_, err := reg.Add(conn("a"))
	require.NoError(t, err)
	b, err := reg.Add(conn("b"))
	require.NoError(t, err)
	_, err = reg.Add(conn("c"))
	require.NoError(t, err)

	updated, err := reg.Replace(b.ID, types.Connection{Name: "b2", Credential: "new"})
	require.NoError(t, err)
	require.Equal(t, b.ID, updated.ID)

	list := reg.List()
	require.Equal(t, []string{"a", "b2", "c"}, []string{list[0].Name, list[1].Name, list[2].Name})
	require.Equal(t, "new", list[1].Credential)
}

func TestRegistry_ForgetAndNotFound(t *testing.T) {
	t.Parallel()

	reg := registry.New(&registry.MemoryStore{})
	a, err := reg.Add(conn("a"))
	require.NoError(t, err)

	require.NoError(t, reg.Forget(a.ID))
	require.Empty(t, reg.List())

	err = reg.Forget(a.ID)
	require.ErrorIs(t, err, registry.ErrConnectionNotFound)

	_, err = reg.Replace(a.ID, conn("x"))
	require.ErrorIs(t, err, registry.ErrConnectionNotFound)
}

func TestRegistry_MutateFailureChangesNothing(t *testing.T) {
	t.Parallel()

	store := &registry.MemoryStore{}
	reg := registry.New(store)
	_, err := reg.Add(conn("a"))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = reg.Mutate(func(list []types.Connection) ([]types.Connection, error) {
		list[0].Name = "mutated"
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, "a", reg.List()[0].Name)
	require.Equal(t, 1, store.Saves)
}

func TestRegistry_ListIsACopy(t *testing.T) {
	t.Parallel()

	reg := registry.New(&registry.MemoryStore{})
	_, err := reg.Add(conn("a"))
	require.NoError(t, err)

	list := reg.List()
	list[0].Name = "changed"
	require.Equal(t, "a", reg.List()[0].Name)
}

func TestRegistry_AddValidates(t *testing.T) {
	t.Parallel()

	reg := registry.New(&registry.MemoryStore{})

	_, err := reg.Add(types.Connection{Credential: "x"})
	require.ErrorIs(t, err, types.ErrNameRequired)

	_, err = reg.Add(types.Connection{Name: "x"})
	require.ErrorIs(t, err, types.ErrCredentialRequired)
}

func TestRegistry_Remember(t *testing.T) {
	t.Parallel()

	store := &registry.MemoryStore{}
	reg := registry.New(store)

	// Unsaved
	c, err := reg.Remember(types.ConnectionForm{Name: "tmp", Credential: "t"}, "")
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	require.Empty(t, reg.List())

	// Saved
	saved, err := reg.Remember(types.ConnectionForm{Name: "keep", Credential: "t", Save: true}, "")
	require.NoError(t, err)
	require.Len(t, reg.List(), 1)

	// Connect & update, save toggle ignored
	updated, err := reg.Remember(types.ConnectionForm{Name: "keep2", Credential: "t2"}, saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.ID, updated.ID)

	list := reg.List()
	require.Len(t, list, 1)
	require.Equal(t, "keep2", list[0].Name)
	require.Equal(t, "t2", list[0].Credential)
}

func TestRegistry_Find(t *testing.T) {
	t.Parallel()

	reg := registry.New(&registry.MemoryStore{})
	a, err := reg.Add(conn("alpha"))
	require.NoError(t, err)

	got, ok := reg.Find("alpha")
	require.True(t, ok)
	require.Equal(t, a.ID, got.ID)

	got, ok = reg.Find(a.ID)
	require.True(t, ok)
	require.Equal(t, "alpha", got.Name)

	_, ok = reg.Find("missing")
	require.False(t, ok)
}

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := &registry.FileStore{Path: filepath.Join(t.TempDir(), "connections.json")}
	require.Empty(t, store.Load())

	reg := registry.New(store)
	_, err := reg.Add(types.Connection{Name: "a", Credential: "tok", BaseURL: "redis://localhost:6379"})
	require.NoError(t, err)

	reloaded := registry.New(store).List()
	require.Len(t, reloaded, 1)
	require.Equal(t, "a", reloaded[0].Name)
	require.Equal(t, "redis://localhost:6379", reloaded[0].BaseURL)
}

func TestFileStore_ReadsTokenAndBaseURLFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "connections.json")
	blob := `[{"id":"0.123","name":"prod","token":"secret","baseUrl":"https://s1.kognise.dev/"}]`
	require.NoError(t, os.WriteFile(path, []byte(blob), 0600))

	list := (&registry.FileStore{Path: path}).Load()
	require.Len(t, list, 1)
	require.Equal(t, "0.123", list[0].ID)
	require.Equal(t, "secret", list[0].Credential)
}

func TestFileStore_CorruptFileLoadsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "connections.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	list := (&registry.FileStore{Path: path}).Load()
	require.NotNil(t, list)
	require.Empty(t, list)
}
