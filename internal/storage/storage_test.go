package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	_, ok := m.Get("balance")
	assert.False(t, ok)

	m.Set("balance", "42")
	v, ok := m.Get("balance")
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	require.NoError(t, m.Save(context.Background()))
	require.NoError(t, m.Save(context.Background()))
	assert.Equal(t, 2, m.Saves())
}

func TestFile_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wallets", "ethereum.json")

	f, err := OpenFile(path)
	require.NoError(t, err)
	_, ok := f.Get("balance")
	assert.False(t, ok)

	f.Set("balance", "1000")
	require.NoError(t, f.Save(context.Background()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	v, ok := reopened.Get("balance")
	assert.True(t, ok)
	assert.Equal(t, "1000", v)
	assert.Equal(t, path, reopened.Path())

	matches, err := filepath.Glob(path + ".tmp-*")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFile_SetWithoutSaveNotPersisted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	f, err := OpenFile(path)
	require.NoError(t, err)
	f.Set("balance", "5")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFile_Corrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := OpenFile(path)
	require.ErrorIs(t, err, ErrStorage)
}

func TestFile_SaveCanceled(t *testing.T) {
	t.Parallel()

	f, err := OpenFile(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, f.Save(ctx), context.Canceled)
}

func TestBadger_Namespaces(t *testing.T) {
	t.Parallel()

	db, err := OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	coin, err := db.Namespace("ethereum@ethereum")
	require.NoError(t, err)
	token, err := db.Namespace("tether@ethereum")
	require.NoError(t, err)

	coin.Set("balance", "3000000000000000000")
	token.Set("balance", "2000000")
	require.NoError(t, coin.Save(context.Background()))
	require.NoError(t, token.Save(context.Background()))

	reloaded, err := db.Namespace("ethereum@ethereum")
	require.NoError(t, err)
	v, ok := reloaded.Get("balance")
	assert.True(t, ok)
	assert.Equal(t, "3000000000000000000", v)

	other, err := db.Namespace("tether@ethereum")
	require.NoError(t, err)
	v, _ = other.Get("balance")
	assert.Equal(t, "2000000", v)

	empty, err := db.Namespace("ethereum")
	require.NoError(t, err)
	_, ok = empty.Get("balance")
	assert.False(t, ok)
}

func TestBadger_OnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db, err := OpenBadger(dir)
	require.NoError(t, err)

	ns, err := db.Namespace("polygon@polygon")
	require.NoError(t, err)
	ns.Set("balance", "7")
	require.NoError(t, ns.Save(context.Background()))
	require.NoError(t, db.Close())

	db, err = OpenBadger(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ns, err = db.Namespace("polygon@polygon")
	require.NoError(t, err)
	v, ok := ns.Get("balance")
	assert.True(t, ok)
	assert.Equal(t, "7", v)
}

func TestStoreInterface(t *testing.T) {
	t.Parallel()

	var _ Store = NewMemory()
	var _ Store = (*File)(nil)
	var _ Store = (*Badger)(nil)
}
