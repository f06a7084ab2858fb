// Copyright © 2024 Kamiwaza

package cmd

import (
	"os"
	"os/user"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/spf13/cobra"
)

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage the CLI config",
	Long: `Commands to manage the garden CLI config.

Configuration is the common set of flags that do not change across runs:
stage buckets, endpoint, local registry path.`,
}

var configGen = &cobra.Command{
	Use:   "create",
	Short: "Create a config",
	Long:  "Create a config to use for garden. Config file will be placed in $HOME/.garden/garden.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		usr, err := user.Current()
		if usr == nil || err != nil {
			wrapFatalln("could not get home directory for user", err)
			return
		}
		cfg := CLIConfig{
			Stage:         gardenFlags.registry.Stage,
			Bucket:        gardenFlags.registry.Bucket,
			Endpoint:      gardenFlags.registry.Endpoint,
			Region:        gardenFlags.registry.Region,
			LocalRegistry: gardenFlags.registry.LocalRegistry,
			LockName:      gardenFlags.registry.LockName,
			BackupDir:     gardenFlags.registry.BackupDir,
		}
		o, e := yaml.Marshal(cfg)
		if e != nil {
			wrapFatalln("serialize config to yaml", e)
			return
		}
		_ = os.Mkdir(filepath.Join(usr.HomeDir, ".garden"), 0777)
		err = os.WriteFile(filepath.Join(usr.HomeDir, ".garden", "garden.yaml"), o, 0666)
		if err != nil {
			wrapFatalln("write config file", err)
			return
		}
		infoLogger.Println("config written to", filepath.Join(usr.HomeDir, ".garden", "garden.yaml"))
	},
}

func init() {
	addStageFlag(configGen)
	addBucketFlag(configGen)
	addEndpointFlag(configGen)
	addRegionFlag(configGen)
	addLocalRegistryFlag(configGen)
	addLockNameFlag(configGen)
	addBackupDirFlag(configGen)

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGen)
}
