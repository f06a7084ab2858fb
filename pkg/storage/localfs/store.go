// Package localfs implements storage.Store on top of a file system.
// Backed by afero, so tests run against an in-memory fs.
package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/kamiwaza-ai/garden-registry/pkg/storage"
)

// New creates a file system backed store rooted at the given directory
func New(fs afero.Fs, root string) storage.Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if root != "" {
		fs = afero.NewBasePathFs(fs, root)
	}
	return &localFS{fs: fs, root: root}
}

type localFS struct {
	fs   afero.Fs
	root string
}

func (l *localFS) String() string {
	if l.root == "" {
		return "localfs"
	}
	return "localfs@" + l.root
}

func (l *localFS) Has(ctx context.Context, key string) (bool, error) {
	fi, err := l.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !fi.IsDir(), nil
}

func (l *localFS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	has, err := l.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, storage.ErrNotFound.WrapMessage("%q", key)
	}
	return l.fs.Open(key)
}

func (l *localFS) Put(ctx context.Context, key string, rdr io.Reader, exclusive bool) error {
	if dir := filepath.Dir(key); dir != "" && dir != "." {
		if err := l.fs.MkdirAll(dir, 0700); err != nil {
			return storage.ErrStore.WrapMessage("ensuring directories for %q: %v", key, err)
		}
	}
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if exclusive {
		flag = os.O_CREATE | os.O_WRONLY | os.O_EXCL
	}
	target, err := l.fs.OpenFile(key, flag, 0600)
	if err != nil {
		if exclusive && os.IsExist(err) {
			return storage.ErrExists.WrapMessage("%q", key)
		}
		return storage.ErrStore.WrapMessage("creating %q: %v", key, err)
	}
	if _, err := io.Copy(target, rdr); err != nil {
		_ = target.Close()
		return storage.ErrStore.WrapMessage("writing %q: %v", key, err)
	}
	return target.Close()
}

func (l *localFS) Delete(ctx context.Context, key string) error {
	if err := l.fs.Remove(key); err != nil && !os.IsNotExist(err) {
		return storage.ErrStore.WrapMessage("removing %q: %v", key, err)
	}
	return nil
}

func (l *localFS) Keys(ctx context.Context) ([]string, error) {
	const root = "."
	var keys []string
	err := afero.Walk(l.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if path == root || info.IsDir() {
			return nil
		}
		keys = append(keys, filepath.ToSlash(path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
