package dirlist

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_EntriesAndFlags(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/srv/sub", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/srv/b.txt", []byte("b"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/srv/.env", []byte("x"), 0o600))
	require.NoError(t, afero.WriteFile(fsys, "/srv/locked", []byte("x"), 0o044))
	require.NoError(t, fsys.Chmod("/srv/locked", 0o044))

	entries, err := List(fsys, "/srv")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	byPath := map[string]Entry{}
	for _, e := range entries {
		byPath[e.Path] = e
	}

	sub := byPath["/srv/sub"]
	assert.True(t, sub.IsDir)
	assert.False(t, sub.Hidden)

	file := byPath["/srv/b.txt"]
	assert.False(t, file.IsDir)
	assert.True(t, file.Readable)
	assert.True(t, file.Writable)

	assert.True(t, byPath["/srv/.env"].Hidden)

	locked := byPath["/srv/locked"]
	assert.False(t, locked.Readable)
	assert.False(t, locked.Writable)
}

func TestList_SortedByName(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for _, name := range []string{"/d/c", "/d/a", "/d/b"} {
		require.NoError(t, afero.WriteFile(fsys, name, nil, 0o644))
	}

	entries, err := List(fsys, "/d")
	require.NoError(t, err)

	var got []string
	for _, e := range entries {
		got = append(got, e.Path)
	}
	assert.Equal(t, []string{"/d/a", "/d/b", "/d/c"}, got)
}

func TestList_EmptyDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/empty", 0o755))

	entries, err := List(fsys, "/empty")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestList_NotADirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/file", []byte("x"), 0o644))

	for _, path := range []string{"/file", "/missing"} {
		_, err := List(fsys, path)
		assert.ErrorIs(t, err, ErrNotDirectory, path)
	}
}

func TestEntry_String(t *testing.T) {
	tests := []struct {
		entry Entry
		want  string
	}{
		{Entry{Path: "/srv/sub", IsDir: true, Readable: true, Writable: true}, "/srv/sub <DIR> rw-"},
		{Entry{Path: "/srv/.env", Readable: true, Hidden: true}, "/srv/.env <FILE> r-h"},
		{Entry{Path: "/srv/locked"}, "/srv/locked <FILE> ---"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.entry.String())
	}
}
