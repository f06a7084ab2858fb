// Copyright © 2024 Kamiwaza

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "garden",
	Short: "Garden manages the Kamiwaza extension registry",
	Long: `Garden publishes, inspects and prunes the Kamiwaza extension registry.

The registry is a set of catalog files (apps.json, tools.json) plus preview
image assets, served from an object store bucket. Garden merges a locally
built registry into the published one with version-aware conflict checks,
guarded by an advisory lock, a timestamped backup and a post-upload
verification with automatic rollback.
`,
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("stage", "dev")
	viper.SetDefault("local_registry", "build/kamiwaza-extension-registry")
	if os.Getenv("GARDEN_CONFIG") != "" {
		viper.SetConfigFile(os.Getenv("GARDEN_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.garden")
		viper.AddConfigPath("/etc/garden")
		viper.SetConfigName("garden")
	}

	viper.SetEnvPrefix("kamiwaza_registry")
	viper.AutomaticEnv() // read in environment variables that match
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
	config.setRegistryParams(&gardenFlags)
	if config.Credential != "" {
		_ = os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", config.Credential)
	}
}
