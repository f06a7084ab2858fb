// Copyright © 2024 Kamiwaza

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/kamiwaza-ai/garden-registry/pkg/core"
	"github.com/kamiwaza-ai/garden-registry/pkg/dlogger"
	"github.com/kamiwaza-ai/garden-registry/pkg/model"
	"github.com/kamiwaza-ai/garden-registry/pkg/storage"
	"github.com/kamiwaza-ai/garden-registry/pkg/storage/gcs"
	"github.com/kamiwaza-ai/garden-registry/pkg/storage/localfs"
	"github.com/kamiwaza-ai/garden-registry/pkg/storage/sthree"
)

const defaultLocalRegistry = "build/kamiwaza-extension-registry"

// catalogRoot is the object key prefix holding the catalogs for a format
func catalogRoot(format model.FormatVersion) string {
	return "garden/" + format.GardenDir() + "/"
}

// paramsToRemoteStore builds the remote store the registry publishes
// to, scoped to the catalog root for the selected format.
//
// The --destination flag overrides the stage bucket: s3:// and gs://
// URLs select the matching backend, anything else is treated as a
// local directory (useful for tests and air-gapped mirrors).
func paramsToRemoteStore(ctx context.Context, format model.FormatVersion) (storage.Store, error) {
	root := catalogRoot(format)

	if dest := gardenFlags.registry.Destination; dest != "" {
		switch {
		case strings.HasPrefix(dest, "s3://"):
			bucket, prefix := splitBucketURL(strings.TrimPrefix(dest, "s3://"))
			return sthree.New(
				sthree.Bucket(bucket),
				sthree.Prefix(prefix+root),
				sthree.Endpoint(endpointURL()),
				sthree.Region(gardenFlags.registry.Region),
			), nil
		case strings.HasPrefix(dest, "gs://"):
			bucket, prefix := splitBucketURL(strings.TrimPrefix(dest, "gs://"))
			credential := ""
			if config != nil {
				credential = config.Credential
			}
			return gcs.New(ctx, bucket, gcs.Prefix(prefix+root), gcs.Credential(credential))
		default:
			return localfs.New(afero.NewOsFs(), filepath.Join(dest, filepath.FromSlash(root))), nil
		}
	}

	bucket, err := bucketForStage(gardenFlags.registry.Stage)
	if err != nil {
		return nil, err
	}
	return sthree.New(
		sthree.Bucket(bucket),
		sthree.Prefix(root),
		sthree.Endpoint(endpointURL()),
		sthree.Region(gardenFlags.registry.Region),
	), nil
}

func splitBucketURL(trimmed string) (bucket, prefix string) {
	parts := strings.SplitN(strings.Trim(trimmed, "/"), "/", 2)
	bucket = parts[0]
	if len(parts) == 2 && parts[1] != "" {
		prefix = parts[1] + "/"
	}
	return bucket, prefix
}

// lockOwner identifies this run in the lock descriptor, preferring CI
// job identifiers over a bare "manual"
func lockOwner() string {
	if owner := os.Getenv("CI_JOB_ID"); owner != "" {
		return owner
	}
	if owner := os.Getenv("GITHUB_RUN_ID"); owner != "" {
		return owner
	}
	return "manual"
}

// paramsToRegistry assembles the core registry from flags and config
func paramsToRegistry(ctx context.Context, extra ...core.Option) (*core.Registry, *zap.Logger, error) {
	format, err := model.ParseFormat(gardenFlags.registry.RepoVersion)
	if err != nil {
		return nil, nil, err
	}
	logger, err := dlogger.GetLogger(gardenFlags.root.logLevel)
	if err != nil {
		return nil, nil, err
	}
	remote, err := paramsToRemoteStore(ctx, format)
	if err != nil {
		return nil, nil, err
	}

	localRoot := gardenFlags.registry.LocalRegistry
	if localRoot == "" {
		localRoot = defaultLocalRegistry
	}
	hostname, _ := os.Hostname()

	opts := []core.Option{
		core.Format(format),
		core.Logger(logger),
		core.Owner(lockOwner(), hostname, os.Getpid()),
		core.ForceNames(gardenFlags.registry.ForceNames...),
		core.LockKey(gardenFlags.registry.LockName),
		core.BackupDir(gardenFlags.registry.BackupDir),
	}
	opts = append(opts, extra...)
	return core.New(remote, localRoot, opts...), logger, nil
}
