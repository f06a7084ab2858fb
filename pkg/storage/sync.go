package storage

import (
	"bytes"
	"context"
)

// SyncOption tunes a mirror sync
type SyncOption func(*syncSettings)

type syncSettings struct {
	delete   bool
	excluded map[string]struct{}
}

// WithDelete removes destination objects absent from the source,
// turning the sync into a true mirror
func WithDelete() SyncOption {
	return func(s *syncSettings) {
		s.delete = true
	}
}

// WithExclude leaves the given keys alone on both sides. The publish
// workflow uses this to keep the lock marker out of catalog mirrors.
func WithExclude(keys ...string) SyncOption {
	return func(s *syncSettings) {
		for _, k := range keys {
			s.excluded[k] = struct{}{}
		}
	}
}

// Sync mirrors every object of src into dst.
//
// Objects are copied one at a time; there is no atomicity across
// objects, which is why publishers verify after syncing.
func Sync(ctx context.Context, src, dst Store, opts ...SyncOption) error {
	settings := syncSettings{excluded: make(map[string]struct{})}
	for _, apply := range opts {
		apply(&settings)
	}

	keys, err := src.Keys(ctx)
	if err != nil {
		return ErrStore.WrapMessage("listing %s: %v", src, err)
	}
	copied := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, skip := settings.excluded[key]; skip {
			continue
		}
		if err := copyObject(ctx, src, dst, key); err != nil {
			return err
		}
		copied[key] = struct{}{}
	}

	if !settings.delete {
		return nil
	}
	dstKeys, err := dst.Keys(ctx)
	if err != nil {
		return ErrStore.WrapMessage("listing %s: %v", dst, err)
	}
	for _, key := range dstKeys {
		if _, skip := settings.excluded[key]; skip {
			continue
		}
		if _, kept := copied[key]; kept {
			continue
		}
		if err := dst.Delete(ctx, key); err != nil {
			return ErrStore.WrapMessage("deleting %s from %s: %v", key, dst, err)
		}
	}
	return nil
}

func copyObject(ctx context.Context, src, dst Store, key string) error {
	rdr, err := src.Get(ctx, key)
	if err != nil {
		return ErrStore.WrapMessage("reading %s from %s: %v", key, src, err)
	}
	defer rdr.Close()
	if err := dst.Put(ctx, key, rdr, false); err != nil {
		return ErrStore.WrapMessage("writing %s to %s: %v", key, dst, err)
	}
	return nil
}

// SameObject compares one object byte-for-byte across two stores.
// A key missing on both sides counts as equal.
func SameObject(ctx context.Context, a, b Store, key string) (bool, error) {
	hasA, err := a.Has(ctx, key)
	if err != nil {
		return false, err
	}
	hasB, err := b.Has(ctx, key)
	if err != nil {
		return false, err
	}
	if hasA != hasB {
		return false, nil
	}
	if !hasA {
		return true, nil
	}
	dataA, err := ReadAll(ctx, a, key)
	if err != nil {
		return false, err
	}
	dataB, err := ReadAll(ctx, b, key)
	if err != nil {
		return false, err
	}
	return bytes.Equal(dataA, dataB), nil
}
