package catalog

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Backend.Read when nothing has been saved yet.
var ErrNotExist = errors.New("snapshot does not exist")

// Backend persists one opaque snapshot. Write must replace the previous
// snapshot as a whole or leave it untouched.
type Backend interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Ping(ctx context.Context) error
}
