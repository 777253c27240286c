package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

// Store is the opaque key/value blob storage the verification documents are
// written to. No business logic lives behind this interface; callers own the
// key format.
type Store interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
}
