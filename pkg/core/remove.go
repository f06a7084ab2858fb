// Copyright © 2024 Kamiwaza
package core

import (
	"context"
	"path"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/kamiwaza-ai/garden-registry/pkg/core/status"
	"github.com/kamiwaza-ai/garden-registry/pkg/errors"
	"github.com/kamiwaza-ai/garden-registry/pkg/model"
	"github.com/kamiwaza-ai/garden-registry/pkg/storage"
	"github.com/kamiwaza-ai/garden-registry/pkg/storage/localfs"
)

// RemovalPreview reports the effect of removing one name, per catalog
// kind, before and after the mutation
type RemovalPreview struct {
	Kind      model.Kind
	Before    int
	Removed   []model.Entry
	Remaining []model.Entry
}

// RemoveResult reports what a removal (or its dry run) did
type RemoveResult struct {
	DryRun    bool
	Name      string
	Previews  []RemovalPreview
	BackupDir string
	Uploaded  bool
}

// Matched counts the entries removed across all catalogs
func (r RemoveResult) Matched() int {
	n := 0
	for _, p := range r.Previews {
		n += len(p.Removed)
	}
	return n
}

// PlanRemove previews the removal of all entries named name, without
// taking the lock or mutating anything. ErrNoMatch is returned when
// neither catalog holds the name.
func PlanRemove(ctx context.Context, r *Registry, name string) (RemoveResult, error) {
	res := RemoveResult{DryRun: true, Name: name}

	for _, kind := range model.Kinds() {
		entries, err := r.fetchRemoteCatalog(ctx, kind)
		if err != nil {
			return res, err
		}
		res.Previews = append(res.Previews, previewRemoval(kind, entries, name))
	}
	if res.Matched() == 0 {
		return res, status.ErrNoMatch.WrapMessage("no entries named %q", name)
	}
	return res, nil
}

// Remove runs the locked removal workflow: lock, backup, find the
// entries, confirm through the registry's callback, upload the reduced
// catalogs, verify, release. Unconfirmed removals abort cleanly.
func Remove(ctx context.Context, r *Registry, name string) (RemoveResult, error) {
	res := RemoveResult{Name: name}

	if err := r.acquireLock(ctx); err != nil {
		return res, err
	}

	scratch, err := afero.TempDir(r.fs, "", "registry-remove-")
	if err != nil {
		_ = r.releaseLock(ctx)
		return res, err
	}

	uploaded := false
	backupDir := r.backupPath()
	backup := localfs.New(r.fs, backupDir)
	remoteDir := path.Join(scratch, "remote")
	err = func() error {
		remoteCopy := localfs.New(r.fs, remoteDir)
		if err := storage.Sync(ctx, r.remote, remoteCopy, storage.WithExclude(r.lockKey)); err != nil {
			return errors.Newf("downloading remote registry").Wrap(err)
		}
		if err := r.fs.MkdirAll(backupDir, 0755); err != nil {
			return errors.Newf("creating backup").Wrap(err)
		}
		if err := storage.Sync(ctx, remoteCopy, backup); err != nil {
			return errors.Newf("creating backup").Wrap(err)
		}
		res.BackupDir = backupDir
		r.l.Info("backup created", zap.String("dir", backupDir))

		var removed []model.Entry
		for _, kind := range model.Kinds() {
			entries, err := model.ReadCatalog(r.fs, path.Join(remoteDir, kind.File()))
			if err != nil {
				return err
			}
			preview := previewRemoval(kind, entries, name)
			res.Previews = append(res.Previews, preview)
			removed = append(removed, preview.Removed...)
		}
		if len(removed) == 0 {
			return status.ErrNoMatch.WrapMessage("no entries named %q", name)
		}

		if !r.confirm(removed) {
			return status.ErrAborted.WrapMessage("removal of %q not confirmed", name)
		}

		outputDir := path.Join(scratch, "modified")
		for _, preview := range res.Previews {
			if err := model.WriteCatalog(r.fs, path.Join(outputDir, preview.Kind.File()), preview.Remaining); err != nil {
				return err
			}
		}
		imagesDir := r.format.ImagesDir()
		if err := storage.Sync(ctx,
			localfs.New(r.fs, path.Join(remoteDir, imagesDir)),
			localfs.New(r.fs, path.Join(outputDir, imagesDir))); err != nil {
			return err
		}

		output := localfs.New(r.fs, outputDir)
		uploaded = true
		if err := storage.Sync(ctx, output, r.remote,
			storage.WithDelete(), storage.WithExclude(r.lockKey)); err != nil {
			return errors.Newf("uploading modified registry").Wrap(err)
		}

		for _, kind := range model.Kinds() {
			same, err := storage.SameObject(ctx, output, r.remote, kind.File())
			if err != nil {
				return err
			}
			if !same {
				return status.ErrVerifyMismatch.WrapMessage("%s differs after upload", kind.File())
			}
		}
		return nil
	}()

	if err != nil && uploaded {
		r.l.Warn("removal failed after upload, restoring backup", zap.Error(err))
		if restoreErr := storage.Sync(ctx, backup, r.remote,
			storage.WithDelete(), storage.WithExclude(r.lockKey)); restoreErr != nil {
			r.l.Error("backup restore failed", zap.Error(restoreErr))
		}
	}

	if releaseErr := r.releaseLock(ctx); releaseErr != nil && err == nil {
		err = releaseErr
	}
	_ = r.fs.RemoveAll(scratch)

	if err != nil {
		return res, err
	}
	res.Uploaded = true
	r.l.Info("entries removed",
		zap.String("name", name),
		zap.Int("count", res.Matched()),
	)
	return res, nil
}

// previewRemoval partitions a catalog by entry name
func previewRemoval(kind model.Kind, entries []model.Entry, name string) RemovalPreview {
	preview := RemovalPreview{Kind: kind, Before: len(entries)}
	for _, e := range entries {
		if e.Name == name {
			preview.Removed = append(preview.Removed, e)
		} else {
			preview.Remaining = append(preview.Remaining, e)
		}
	}
	return preview
}
