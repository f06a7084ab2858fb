// Copyright © 2024 Kamiwaza
package core

import (
	"path"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/kamiwaza-ai/garden-registry/pkg/model"
	"github.com/kamiwaza-ai/garden-registry/pkg/storage"
)

const defaultBackupRoot = "build/registry-backups"

// ConfirmFunc is called before a live removal mutates the remote
// catalog. Returning false aborts the workflow.
type ConfirmFunc func(removed []model.Entry) bool

// Registry binds one remote catalog root to a local registry build,
// with everything the publish workflows need.
//
// The remote store is expected to be scoped to the catalog root for
// the selected format (e.g. bucket prefix "garden/v2/").
type Registry struct {
	remote     storage.Store
	localRoot  string
	format     model.FormatVersion
	force      map[string]bool
	lockKey    string
	backupRoot string
	owner      string
	hostname   string
	pid        int
	fs         afero.Fs
	l          *zap.Logger
	confirm    ConfirmFunc
	clock      func() time.Time
}

// New builds a Registry for a remote store and a local registry root
func New(remote storage.Store, localRoot string, opts ...Option) *Registry {
	r := &Registry{
		remote:     remote,
		localRoot:  localRoot,
		format:     model.FormatV2,
		force:      map[string]bool{},
		lockKey:    model.DefaultLockKey,
		backupRoot: defaultBackupRoot,
		owner:      "manual",
		fs:         afero.NewOsFs(),
		l:          zap.NewNop(),
		confirm:    func([]model.Entry) bool { return false },
		clock:      time.Now,
	}
	for _, apply := range opts {
		apply(r)
	}
	return r
}

// localDir is the directory holding the catalogs for this format
// inside the local registry build
func (r *Registry) localDir() string {
	return path.Join(r.localRoot, "garden", r.format.GardenDir())
}

// Option is a functor to build a Registry with some options
type Option func(*Registry)

// Format selects the catalog format rule set (defaults to v2)
func Format(f model.FormatVersion) Option {
	return func(r *Registry) {
		r.format = f
	}
}

// ForceNames marks entry names whose version and constraint checks are
// bypassed: existing entries for those names are always fully replaced
func ForceNames(names ...string) Option {
	return func(r *Registry) {
		for _, n := range names {
			if n != "" {
				r.force[n] = true
			}
		}
	}
}

// LockKey overrides the lock marker key under the catalog root
func LockKey(key string) Option {
	return func(r *Registry) {
		if key != "" {
			r.lockKey = key
		}
	}
}

// BackupDir sets the local directory accumulating timestamped backups
func BackupDir(dir string) Option {
	return func(r *Registry) {
		if dir != "" {
			r.backupRoot = dir
		}
	}
}

// Owner identifies the lock holder (CI job ID, user name, ...)
func Owner(owner, hostname string, pid int) Option {
	return func(r *Registry) {
		if owner != "" {
			r.owner = owner
		}
		r.hostname = hostname
		r.pid = pid
	}
}

// Logger sets the zap logger (defaults to a nop logger)
func Logger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.l = l
		}
	}
}

// LocalFS overrides the file system used for scratch space, backups
// and the local registry (defaults to the OS file system)
func LocalFS(fs afero.Fs) Option {
	return func(r *Registry) {
		if fs != nil {
			r.fs = fs
		}
	}
}

// Confirm installs the callback guarding live removals
func Confirm(f ConfirmFunc) Option {
	return func(r *Registry) {
		if f != nil {
			r.confirm = f
		}
	}
}

// Clock overrides the time source for backup timestamps and lock
// descriptors
func Clock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.clock = now
		}
	}
}
