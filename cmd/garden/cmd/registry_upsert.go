// Copyright © 2024 Kamiwaza

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamiwaza-ai/garden-registry/pkg/core"
)

// upsertCmd merges the local registry build into the published registry
var upsertCmd = &cobra.Command{
	Use:   "upsert",
	Short: "Merge the local registry into the published one",
	Long: `Merge the local registry build into the published registry.

Every local entry is checked against the published catalog with
version-aware rules: same constraints only upgrade, wider constraints
replace, narrower or partially overlapping constraints fail. One failing
entry fails the whole batch and nothing is published.

With --dry-run the merge is simulated against the live catalogs without
taking the lock or changing anything.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		r, _, err := paramsToRegistry(ctx)
		if err != nil {
			wrapFatalln("configure registry", err)
			return
		}

		if gardenFlags.registry.DryRun {
			res, err := core.Plan(ctx, r)
			printMergeSummary(res.Merges)
			if err != nil {
				wrapFatalln("[dry-run] merge would fail", err)
				return
			}
			infoLogger.Println("[dry-run] merge would succeed, no changes made")
			return
		}

		res, err := core.Publish(ctx, r)
		printMergeSummary(res.Merges)
		if err != nil {
			wrapFatalln("publish registry", err)
			return
		}
		if res.BackupDir != "" {
			infoLogger.Println("backup created at:", res.BackupDir)
		}
		infoLogger.Println(fmt.Sprintf("registry published for stage %q", gardenFlags.registry.Stage))
	},
}

func init() {
	addStageFlag(upsertCmd)
	addRepoVersionFlag(upsertCmd)
	addLocalRegistryFlag(upsertCmd)
	addDestinationFlag(upsertCmd)
	addBucketFlag(upsertCmd)
	addEndpointFlag(upsertCmd)
	addRegionFlag(upsertCmd)
	addLockNameFlag(upsertCmd)
	addBackupDirFlag(upsertCmd)
	addForceNameFlag(upsertCmd)
	addDryRunFlag(upsertCmd)
	addLogLevel(upsertCmd)

	registryCmd.AddCommand(upsertCmd)
}
