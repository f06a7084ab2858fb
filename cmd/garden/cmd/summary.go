// Copyright © 2024 Kamiwaza

package cmd

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/kamiwaza-ai/garden-registry/pkg/core"
	"github.com/kamiwaza-ai/garden-registry/pkg/model"
)

var (
	greenInsert = color.New(color.FgGreen).SprintfFunc()
	yellowSwap  = color.New(color.FgYellow).SprintfFunc()
	redFail     = color.New(color.FgRed).SprintfFunc()
)

// printMergeSummary renders the per-catalog decisions of a publish run
func printMergeSummary(merges map[model.Kind]core.MergeResult) {
	fmt.Println("\n=== Merge Summary ===")

	for _, kind := range model.Kinds() {
		result := merges[kind]
		if len(result.Actions) == 0 {
			fmt.Printf("\n%s: (none)\n", kind)
			continue
		}

		inserts, replaces, fails := result.Counts()
		fmt.Printf("\n%s:\n", kind)
		fmt.Printf("  INSERT:  %d\n", inserts)
		fmt.Printf("  REPLACE: %d\n", replaces)
		fmt.Printf("  FAIL:    %d\n", fails)

		for _, a := range result.Actions {
			switch a.Action {
			case core.ActionInsert:
				kv := ""
				if a.Entry.KamiwazaVersion != "" {
					kv = fmt.Sprintf(" (kamiwaza: %s)", a.Entry.KamiwazaVersion)
				}
				fmt.Println(greenInsert("    + %s v%s%s", a.Name, a.Entry.Version, kv))
			case core.ActionReplace:
				oldVersion := "?"
				if len(a.Replaced) > 0 {
					oldVersion = a.Replaced[0].Version
				}
				fmt.Println(yellowSwap("    ~ %s: %s -> %s", a.Name, oldVersion, a.Entry.Version))
			case core.ActionFail:
				fmt.Println(redFail("    x %s: %s", a.Name, a.Reason))
			}
		}
	}

	var errs []string
	for _, kind := range model.Kinds() {
		errs = append(errs, merges[kind].Errors...)
	}
	if len(errs) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range errs {
			fmt.Println(redFail("  - %s", e))
		}
	}
	fmt.Println()
}

// printRemovalPreview renders what a removal is about to delete
func printRemovalPreview(res core.RemoveResult) {
	fmt.Printf("\nFound %d entry(ies) matching %q:\n", res.Matched(), res.Name)
	for _, preview := range res.Previews {
		if len(preview.Removed) == 0 {
			continue
		}
		fmt.Printf("\n  %s:\n", preview.Kind.File())
		fmt.Printf("    Before: %d entries\n", preview.Before)
		fmt.Printf("    Removing: %d entry(ies)\n", len(preview.Removed))
		fmt.Printf("    After: %d entries\n", len(preview.Remaining))
		for _, e := range preview.Removed {
			kv := ""
			if e.KamiwazaVersion != "" {
				kv = fmt.Sprintf(", kamiwaza_version: %s", e.KamiwazaVersion)
			}
			fmt.Println(redFail("    - %s v%s%s", e.Name, e.Version, kv))
		}
	}
}
