package catalog

import (
	"context"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_MissingFile(t *testing.T) {
	b := NewFileBackend(newMemFs(t), dataPath)

	_, err := b.Read(context.Background())
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestFileBackend_WriteReplacesWholeFile(t *testing.T) {
	ctx := context.Background()
	fsys := newMemFs(t)
	b := NewFileBackend(fsys, dataPath)

	require.NoError(t, b.Write(ctx, []byte("a much longer first snapshot")))
	require.NoError(t, b.Write(ctx, []byte("short")))

	got, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("short"), got)

	entries, err := afero.ReadDir(fsys, "/data")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "products.dat", entries[0].Name())
	assert.Equal(t, snapshotPerm, entries[0].Mode().Perm())
}

func TestFileBackend_FailedWriteLeavesNoTempFile(t *testing.T) {
	ctx := context.Background()
	fsys := newMemFs(t)
	require.NoError(t, afero.WriteFile(fsys, dataPath, []byte("old"), 0o644))

	b := NewFileBackend(afero.NewReadOnlyFs(fsys), dataPath)
	require.Error(t, b.Write(ctx, []byte("new")))

	got, err := afero.ReadFile(fsys, dataPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), got)

	entries, err := afero.ReadDir(fsys, "/data")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileBackend_WriteKeepsExistingMode(t *testing.T) {
	ctx := context.Background()
	fsys := newMemFs(t)
	require.NoError(t, afero.WriteFile(fsys, dataPath, []byte("old"), 0o600))
	require.NoError(t, fsys.Chmod(dataPath, 0o600))

	b := NewFileBackend(fsys, dataPath)
	require.NoError(t, b.Write(ctx, []byte("new")))

	fi, err := fsys.Stat(dataPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	got, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestFileBackend_Ping(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, NewFileBackend(newMemFs(t), dataPath).Ping(ctx))
	assert.Error(t, NewFileBackend(newMemFs(t), "/missing/products.dat").Ping(ctx))
}

func TestFileBackend_Name(t *testing.T) {
	assert.Equal(t, "/data/products.dat", NewFileBackend(afero.NewMemMapFs(), "/data/../data/products.dat").Name())
}
