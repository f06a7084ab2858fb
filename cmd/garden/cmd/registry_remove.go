// Copyright © 2024 Kamiwaza

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamiwaza-ai/garden-registry/pkg/core"
	"github.com/kamiwaza-ai/garden-registry/pkg/model"
)

// removeCmd deletes all published entries carrying one name
var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a published entry by name",
	Long: `Remove every entry carrying the given name from the published
catalogs, across apps.json and tools.json.

The removal shows what is about to be deleted and asks for an explicit
confirmation before mutating anything. With --dry-run the preview is
shown without taking the lock.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		name := gardenFlags.registry.Name

		confirm := func(removed []model.Entry) bool {
			fmt.Printf("\nAbout to remove %d entry(ies) for %q:\n", len(removed), name)
			for _, e := range removed {
				fmt.Printf("  - %s v%s\n", e.Name, e.Version)
			}
			if gardenFlags.registry.SkipConfirm {
				return true
			}
			return promptConfirmRemoval()
		}
		r, _, err := paramsToRegistry(ctx, core.Confirm(confirm))
		if err != nil {
			wrapFatalln("configure registry", err)
			return
		}

		if gardenFlags.registry.DryRun {
			res, err := core.PlanRemove(ctx, r, name)
			if err != nil {
				wrapFatalln("[dry-run] remove", err)
				return
			}
			printRemovalPreview(res)
			infoLogger.Println(fmt.Sprintf("[dry-run] would remove %d entry(ies), no changes made", res.Matched()))
			return
		}

		res, err := core.Remove(ctx, r, name)
		if err != nil {
			wrapFatalln("remove entries", err)
			return
		}
		printRemovalPreview(res)
		infoLogger.Println(fmt.Sprintf("removed %d entry(ies) for %q", res.Matched(), name))
	},
}

// promptConfirmRemoval requires the operator to type 'yes'
func promptConfirmRemoval() bool {
	fmt.Print("\nType 'yes' to confirm removal: ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		fmt.Println()
		return false
	}
	return strings.EqualFold(strings.TrimSpace(scanner.Text()), "yes")
}

func init() {
	requiredFlags := []string{addNameFlag(removeCmd)}
	addStageFlag(removeCmd)
	addRepoVersionFlag(removeCmd)
	addDestinationFlag(removeCmd)
	addBucketFlag(removeCmd)
	addEndpointFlag(removeCmd)
	addRegionFlag(removeCmd)
	addLockNameFlag(removeCmd)
	addBackupDirFlag(removeCmd)
	addDryRunFlag(removeCmd)
	addSkipConfirmFlag(removeCmd)
	addLogLevel(removeCmd)
	for _, flag := range requiredFlags {
		if err := removeCmd.MarkFlagRequired(flag); err != nil {
			wrapFatalln("mark required flag", err)
			return
		}
	}

	registryCmd.AddCommand(removeCmd)
}
