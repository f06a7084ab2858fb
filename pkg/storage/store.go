// Package storage abstracts the key based object stores a registry can
// be published to. Implementations are assumed to be simple: S3 (or any
// S3-compatible store such as R2), GCS, or a local file system.
package storage

import (
	"context"
	"io"

	"github.com/kamiwaza-ai/garden-registry/pkg/errors"
)

var (
	// ErrNotFound indicates the object does not exist
	ErrNotFound = errors.New("object not found")

	// ErrExists indicates an exclusive put hit an existing object
	ErrExists = errors.New("object exists already")

	// ErrStore indicates a failure of the underlying object store
	ErrStore = errors.New("object store failure")
)

// Store is a minimal object store client scoped to one catalog root.
//
// Individual operations are expected to be atomic at the object level:
// a partially written object must never be visible as a successful
// read. No atomicity across objects is assumed.
type Store interface {
	String() string
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Put writes an object. With exclusive set, implementations that
	// support conditional writes fail with ErrExists when the key is
	// already present; others fall back to a plain write.
	Put(ctx context.Context, key string, rdr io.Reader, exclusive bool) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// ReadAll fetches an object fully into memory
func ReadAll(ctx context.Context, store Store, key string) ([]byte, error) {
	rdr, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	return io.ReadAll(rdr)
}
