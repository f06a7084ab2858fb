// Copyright © 2024 Kamiwaza

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamiwaza-ai/garden-registry/pkg/core"
)

// lockCmd groups lock inspection and cleanup commands
var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Commands to inspect and clear the publish lock",
	Long: `Commands to inspect and clear the advisory publish lock.

A publisher that crashed inside its critical section leaves the lock
marker behind. The lock never expires on its own: an operator inspects
it with 'lock status' and clears it with 'lock release'.`,
}

var lockStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current lock holder",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		r, _, err := paramsToRegistry(ctx)
		if err != nil {
			wrapFatalln("configure registry", err)
			return
		}

		held, err := core.LockInfo(ctx, r)
		if err != nil {
			wrapFatalln("inspect lock", err)
			return
		}
		if held == nil {
			infoLogger.Println("registry is unlocked")
			return
		}
		fmt.Printf("registry is locked:\n")
		fmt.Printf("  owner:       %s\n", held.Owner)
		fmt.Printf("  hostname:    %s\n", held.Hostname)
		fmt.Printf("  acquired_at: %s\n", held.AcquiredAt)
		fmt.Printf("  age:         %s\n", held.Age())
		fmt.Printf("  pid:         %d\n", held.PID)
	},
}

var lockReleaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Force-release a stale lock",
	Long: `Force-release the publish lock.

Only use this after confirming that no publisher is running: releasing a
live lock lets two publishers race on the same catalogs.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		r, _, err := paramsToRegistry(ctx)
		if err != nil {
			wrapFatalln("configure registry", err)
			return
		}

		if err := core.ReleaseLock(ctx, r); err != nil {
			wrapFatalln("release lock", err)
			return
		}
		infoLogger.Println("lock released")
	},
}

func init() {
	for _, cmd := range []*cobra.Command{lockStatusCmd, lockReleaseCmd} {
		addStageFlag(cmd)
		addRepoVersionFlag(cmd)
		addDestinationFlag(cmd)
		addBucketFlag(cmd)
		addEndpointFlag(cmd)
		addRegionFlag(cmd)
		addLockNameFlag(cmd)
		addLogLevel(cmd)
		lockCmd.AddCommand(cmd)
	}

	registryCmd.AddCommand(lockCmd)
}
