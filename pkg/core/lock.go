// Copyright © 2024 Kamiwaza
package core

import (
	"bytes"
	"context"

	"go.uber.org/zap"

	"github.com/kamiwaza-ai/garden-registry/pkg/core/status"
	"github.com/kamiwaza-ai/garden-registry/pkg/errors"
	"github.com/kamiwaza-ai/garden-registry/pkg/model"
	"github.com/kamiwaza-ai/garden-registry/pkg/storage"
)

// acquireLock places the advisory lock marker on the remote store.
//
// The check before the exclusive put exists only to produce a useful
// diagnostic: the exclusive put is what actually guards the critical
// section on stores supporting conditional writes. There is no wait,
// no retry and no stealing. Held is held.
func (r *Registry) acquireLock(ctx context.Context) error {
	if held, err := r.lockHolder(ctx); err != nil {
		return err
	} else if held != nil {
		return status.ErrLockHeld.WrapMessage("owner=%s host=%s age=%s pid=%d",
			held.Owner, held.Hostname, held.Age(), held.PID)
	}

	desc := model.LockDescriptor{
		Owner:      r.owner,
		Hostname:   r.hostname,
		AcquiredAt: r.clock().UTC(),
		PID:        r.pid,
	}
	data, err := model.MarshalLock(desc)
	if err != nil {
		return err
	}
	if err := r.remote.Put(ctx, r.lockKey, bytes.NewReader(data), true); err != nil {
		if errors.Is(err, storage.ErrExists) {
			// lost the race between the check and the exclusive put
			return status.ErrLockHeld.Wrap(err)
		}
		return err
	}
	r.l.Info("lock acquired",
		zap.String("key", r.lockKey),
		zap.String("owner", desc.Owner),
	)
	return nil
}

// releaseLock removes the lock marker. Called on every exit path of a
// locked workflow, success or failure.
func (r *Registry) releaseLock(ctx context.Context) error {
	if err := r.remote.Delete(ctx, r.lockKey); err != nil {
		r.l.Error("lock release failed, manual cleanup needed",
			zap.String("key", r.lockKey),
			zap.Error(err),
		)
		return err
	}
	r.l.Info("lock released", zap.String("key", r.lockKey))
	return nil
}

// lockHolder fetches the current lock descriptor, or nil when the
// registry is unlocked. An undecodable marker still counts as held.
func (r *Registry) lockHolder(ctx context.Context) (*model.LockDescriptor, error) {
	data, err := storage.ReadAll(ctx, r.remote, r.lockKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	desc, err := model.UnmarshalLock(data)
	if err != nil {
		return &model.LockDescriptor{Owner: "unknown"}, nil
	}
	return &desc, nil
}

// LockInfo reports the current lock holder, or nil when unlocked
func LockInfo(ctx context.Context, r *Registry) (*model.LockDescriptor, error) {
	return r.lockHolder(ctx)
}

// ReleaseLock force-removes a stale lock marker. Operator tooling for
// the case where a publisher crashed inside its critical section.
func ReleaseLock(ctx context.Context, r *Registry) error {
	held, err := r.lockHolder(ctx)
	if err != nil {
		return err
	}
	if held == nil {
		return status.ErrNoMatch.WrapMessage("no lock at %s", r.lockKey)
	}
	return r.releaseLock(ctx)
}
