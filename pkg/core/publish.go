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

const backupTimestampFormat = "20060102-150405"

// PublishResult reports what a publish (or a dry run plan) did, per
// catalog kind
type PublishResult struct {
	DryRun    bool
	Merges    map[model.Kind]MergeResult
	BackupDir string
	Uploaded  bool
}

// Plan simulates a publish: the remote catalogs are fetched and merged
// against the local batch, but no lock is taken, no backup is created
// and nothing is mutated. Conflicts surface exactly as a live publish
// would report them.
func Plan(ctx context.Context, r *Registry) (PublishResult, error) {
	res := PublishResult{DryRun: true, Merges: map[model.Kind]MergeResult{}}

	local, err := r.loadLocalCatalogs()
	if err != nil {
		return res, err
	}

	for _, kind := range model.Kinds() {
		remote, err := r.fetchRemoteCatalog(ctx, kind)
		if err != nil {
			return res, err
		}
		res.Merges[kind] = Merge(local[kind], remote, r.format, r.force)
	}
	if !plannedOK(res.Merges) {
		return res, status.ErrConflict.WrapMessage("%d conflict(s)", countErrors(res.Merges))
	}
	return res, nil
}

// Publish runs the full locked workflow: validate, lock, backup,
// merge, upload, verify, release. On any failure after the upload
// started, the backup is pushed back before the lock is released.
func Publish(ctx context.Context, r *Registry) (PublishResult, error) {
	res := PublishResult{Merges: map[model.Kind]MergeResult{}}

	local, err := r.loadLocalCatalogs()
	if err != nil {
		return res, err
	}

	if err := r.acquireLock(ctx); err != nil {
		return res, err
	}

	scratch, err := afero.TempDir(r.fs, "", "registry-upsert-")
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
		// backup is taken unconditionally, even for an empty remote
		if err := r.fs.MkdirAll(backupDir, 0755); err != nil {
			return errors.Newf("creating backup").Wrap(err)
		}
		if err := storage.Sync(ctx, remoteCopy, backup); err != nil {
			return errors.Newf("creating backup").Wrap(err)
		}
		res.BackupDir = backupDir
		r.l.Info("backup created", zap.String("dir", backupDir))

		for _, kind := range model.Kinds() {
			remote, err := model.ReadCatalog(r.fs, path.Join(remoteDir, kind.File()))
			if err != nil {
				return err
			}
			res.Merges[kind] = Merge(local[kind], remote, r.format, r.force)
		}
		if !plannedOK(res.Merges) {
			return status.ErrConflict.WrapMessage("%d conflict(s)", countErrors(res.Merges))
		}

		outputDir := path.Join(scratch, "merged")
		if err := r.assembleOutput(ctx, outputDir, remoteDir, res.Merges); err != nil {
			return err
		}

		output := localfs.New(r.fs, outputDir)
		uploaded = true
		if err := storage.Sync(ctx, output, r.remote,
			storage.WithDelete(), storage.WithExclude(r.lockKey)); err != nil {
			return errors.Newf("uploading merged registry").Wrap(err)
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
		r.l.Warn("publish failed after upload, restoring backup", zap.Error(err))
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
	r.l.Info("registry published", zap.String("remote", r.remote.String()))
	return res, nil
}

// loadLocalCatalogs reads and validates the local batch. At least one
// catalog file must be present under the local registry build.
func (r *Registry) loadLocalCatalogs() (map[model.Kind][]model.Entry, error) {
	dir := r.localDir()
	catalogs := make(map[model.Kind][]model.Entry, 2)
	found := false
	var errs []error

	for _, kind := range model.Kinds() {
		filePath := path.Join(dir, kind.File())
		if ok, err := afero.Exists(r.fs, filePath); err != nil {
			return nil, err
		} else if !ok {
			continue
		}
		found = true
		entries, err := model.ReadCatalog(r.fs, filePath)
		if err != nil {
			return nil, err
		}
		errs = append(errs, model.ValidateCatalog(entries, kind, r.format)...)
		catalogs[kind] = entries
	}

	if !found {
		return nil, model.ErrValidation.WrapMessage("no catalog files found in %s", dir)
	}
	if len(errs) > 0 {
		agg := model.ErrValidation.WrapMessage("local registry is invalid (%d error(s))", len(errs))
		for _, e := range errs {
			r.l.Error("validation", zap.Error(e))
		}
		return nil, agg.Wrap(errs[0])
	}
	return catalogs, nil
}

// fetchRemoteCatalog reads one catalog straight off the remote store.
// A missing object is an empty catalog (first publish).
func (r *Registry) fetchRemoteCatalog(ctx context.Context, kind model.Kind) ([]model.Entry, error) {
	data, err := storage.ReadAll(ctx, r.remote, kind.File())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.DecodeCatalog(data)
}

// assembleOutput lays out the full tree to be mirrored to the remote:
// the merged catalogs plus the preview image assets. Local images are
// copied first, then remote images over them, so already published
// assets are never clobbered by a stale local copy.
func (r *Registry) assembleOutput(ctx context.Context, outputDir, remoteDir string, merges map[model.Kind]MergeResult) error {
	for _, kind := range model.Kinds() {
		if err := model.WriteCatalog(r.fs, path.Join(outputDir, kind.File()), merges[kind].Entries); err != nil {
			return err
		}
	}

	imagesDir := r.format.ImagesDir()
	outImages := localfs.New(r.fs, path.Join(outputDir, imagesDir))
	localImages := localfs.New(r.fs, path.Join(r.localDir(), imagesDir))
	if err := storage.Sync(ctx, localImages, outImages); err != nil {
		return err
	}
	remoteImages := localfs.New(r.fs, path.Join(remoteDir, imagesDir))
	return storage.Sync(ctx, remoteImages, outImages)
}

// backupPath is the timestamped directory for this run's backup
func (r *Registry) backupPath() string {
	return path.Join(r.backupRoot, r.format.GardenDir(), r.clock().Format(backupTimestampFormat))
}

func plannedOK(merges map[model.Kind]MergeResult) bool {
	for _, m := range merges {
		if !m.Success {
			return false
		}
	}
	return true
}

func countErrors(merges map[model.Kind]MergeResult) int {
	n := 0
	for _, m := range merges {
		n += len(m.Errors)
	}
	return n
}
