package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

const snapshotPerm fs.FileMode = 0o644

type FileBackend struct {
	fs   afero.Fs
	path string
}

func NewFileBackend(fsys afero.Fs, path string) *FileBackend {
	return &FileBackend{fs: fsys, path: filepath.Clean(path)}
}

func (b *FileBackend) Name() string { return b.path }

func (b *FileBackend) Ping(ctx context.Context) error {
	_, err := b.fs.Stat(filepath.Dir(b.path))
	return err
}

func (b *FileBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write stages data in a sibling temp file and renames it over the target so
// a failed save never leaves a half-written snapshot behind. An existing
// snapshot keeps its permissions; a new one gets snapshotPerm.
func (b *FileBackend) Write(ctx context.Context, data []byte) (err error) {
	dir, base := filepath.Split(b.path)
	if dir == "" {
		dir = "."
	}

	perm := snapshotPerm
	if fi, statErr := b.fs.Stat(b.path); statErr == nil {
		perm = fi.Mode().Perm()
	}

	tmp, err := afero.TempFile(b.fs, dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = b.fs.Remove(tmpName)
		}
	}()

	if err = writeAndClose(tmp, data); err != nil {
		return err
	}
	if err = b.fs.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = b.fs.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}

// writeAndClose closes f exactly once, whatever happens before.
func writeAndClose(f afero.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return nil
}
