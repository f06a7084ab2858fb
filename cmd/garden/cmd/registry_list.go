// Copyright © 2024 Kamiwaza

package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kamiwaza-ai/garden-registry/pkg/core"
	"github.com/kamiwaza-ai/garden-registry/pkg/model"
)

// listCmd shows what is currently published
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List published entries",
	Long:  "List the entries currently published in the remote registry catalogs.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		r, _, err := paramsToRegistry(ctx)
		if err != nil {
			wrapFatalln("configure registry", err)
			return
		}

		catalogs, err := core.List(ctx, r)
		if err != nil {
			wrapFatalln("list registry", err)
			return
		}

		for _, kind := range model.Kinds() {
			entries := catalogs[kind]
			if len(entries) == 0 {
				fmt.Printf("\n%s: (none)\n", kind)
				continue
			}
			sorted := append([]model.Entry(nil), entries...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

			fmt.Printf("\n%s (%d):\n", kind, len(sorted))
			fmt.Printf("  %-35s %-12s %s\n", "Name", "Version", "Kamiwaza")
			for _, e := range sorted {
				name := e.Name
				if len(name) > 34 {
					name = name[:31] + "..."
				}
				fmt.Printf("  %-35s %-12s %s\n", name, e.Version, e.KamiwazaVersion)
			}
		}
	},
}

func init() {
	addStageFlag(listCmd)
	addRepoVersionFlag(listCmd)
	addDestinationFlag(listCmd)
	addBucketFlag(listCmd)
	addEndpointFlag(listCmd)
	addRegionFlag(listCmd)
	addLogLevel(listCmd)

	registryCmd.AddCommand(listCmd)
}
