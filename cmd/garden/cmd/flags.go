// Copyright © 2024 Kamiwaza

package cmd

import (
	"github.com/spf13/cobra"
)

type flagsT struct {
	registry struct {
		Stage         string
		RepoVersion   string
		LocalRegistry string
		Destination   string
		Bucket        string
		Endpoint      string
		Region        string
		LockName      string
		BackupDir     string
		Name          string
		ForceNames    []string
		DryRun        bool
		SkipConfirm   bool
	}
	root struct {
		logLevel string
	}
}

var gardenFlags = flagsT{}

func addStageFlag(cmd *cobra.Command) string {
	stage := "stage"
	cmd.Flags().StringVar(&gardenFlags.registry.Stage, stage, "",
		"Target stage (dev/stage/prod)")
	return stage
}

func addRepoVersionFlag(cmd *cobra.Command) string {
	repoVersion := "repo-version"
	cmd.Flags().StringVar(&gardenFlags.registry.RepoVersion, repoVersion, "v2",
		"Registry format version (v1/v2)")
	return repoVersion
}

func addLocalRegistryFlag(cmd *cobra.Command) string {
	localRegistry := "local-registry"
	cmd.Flags().StringVar(&gardenFlags.registry.LocalRegistry, localRegistry, "",
		"Path to the local registry build")
	return localRegistry
}

func addDestinationFlag(cmd *cobra.Command) string {
	destination := "destination"
	cmd.Flags().StringVar(&gardenFlags.registry.Destination, destination, "",
		"Registry destination overriding the stage bucket: s3://bucket, gs://bucket or a local directory")
	return destination
}

func addBucketFlag(cmd *cobra.Command) string {
	bucket := "bucket"
	cmd.Flags().StringVar(&gardenFlags.registry.Bucket, bucket, "",
		"Bucket name, overriding the one configured for the stage")
	return bucket
}

func addEndpointFlag(cmd *cobra.Command) string {
	endpoint := "endpoint"
	cmd.Flags().StringVar(&gardenFlags.registry.Endpoint, endpoint, "",
		"S3-compatible endpoint URL (e.g. a Cloudflare R2 endpoint)")
	return endpoint
}

func addRegionFlag(cmd *cobra.Command) string {
	region := "region"
	cmd.Flags().StringVar(&gardenFlags.registry.Region, region, "",
		"Bucket region")
	return region
}

func addLockNameFlag(cmd *cobra.Command) string {
	lockName := "lock-name"
	cmd.Flags().StringVar(&gardenFlags.registry.LockName, lockName, "",
		"Lock marker object name under the catalog root")
	return lockName
}

func addBackupDirFlag(cmd *cobra.Command) string {
	backupDir := "backup-dir"
	cmd.Flags().StringVar(&gardenFlags.registry.BackupDir, backupDir, "",
		"Local directory accumulating timestamped backups")
	return backupDir
}

func addNameFlag(cmd *cobra.Command) string {
	name := "name"
	cmd.Flags().StringVar(&gardenFlags.registry.Name, name, "",
		"Registry entry name, as shown in apps.json or tools.json")
	return name
}

func addForceNameFlag(cmd *cobra.Command) string {
	forceName := "force-name"
	cmd.Flags().StringSliceVar(&gardenFlags.registry.ForceNames, forceName, nil,
		"Bypass version checks for this entry name (repeatable)")
	return forceName
}

func addDryRunFlag(cmd *cobra.Command) string {
	dryRun := "dry-run"
	cmd.Flags().BoolVar(&gardenFlags.registry.DryRun, dryRun, false,
		"Show what would happen without making changes")
	return dryRun
}

func addSkipConfirmFlag(cmd *cobra.Command) string {
	yes := "yes"
	cmd.Flags().BoolVar(&gardenFlags.registry.SkipConfirm, yes, false,
		"Skip the interactive confirmation prompt")
	return yes
}

func addLogLevel(cmd *cobra.Command) string {
	loglevel := "loglevel"
	cmd.Flags().StringVar(&gardenFlags.root.logLevel, loglevel, "info",
		"The logging level")
	return loglevel
}
