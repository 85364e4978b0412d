// Package dirlist prints the entries of one directory with their type and
// access flags.
package dirlist

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var ErrNotDirectory = errors.New("path does not exist or is not a directory")

type Entry struct {
	Path     string
	IsDir    bool
	Readable bool
	Writable bool
	Hidden   bool
}

func (e Entry) String() string {
	kind := "<FILE>"
	if e.IsDir {
		kind = "<DIR>"
	}
	return fmt.Sprintf("%s %s %s%s%s", e.Path, kind,
		flag(e.Readable, "r"), flag(e.Writable, "w"), flag(e.Hidden, "h"))
}

func flag(set bool, c string) string {
	if set {
		return c
	}
	return "-"
}

// List returns the entries of dir sorted by name. Read and write flags come
// from the owner permission bits.
func List(fsys afero.Fs, dir string) ([]Entry, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	isDir, err := afero.IsDir(fsys, abs)
	if err != nil || !isDir {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	infos, err := afero.ReadDir(fsys, abs)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		perm := fi.Mode().Perm()
		entries = append(entries, Entry{
			Path:     filepath.Join(abs, fi.Name()),
			IsDir:    fi.IsDir(),
			Readable: perm&0o400 != 0,
			Writable: perm&0o200 != 0,
			Hidden:   strings.HasPrefix(fi.Name(), "."),
		})
	}
	return entries, nil
}
