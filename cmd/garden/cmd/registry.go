// Copyright © 2024 Kamiwaza

package cmd

import (
	"github.com/spf13/cobra"
)

// registryCmd represents the registry related commands
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Commands to manage the published registry",
	Long: `Commands to manage the published extension registry.

All mutations run under an advisory lock and take a timestamped backup of
the remote state before touching it. A failed upload or verification
restores that backup.`,
}

func init() {
	rootCmd.AddCommand(registryCmd)
}
