// Copyright © 2024 Kamiwaza

package cmd

import (
	"fmt"

	"github.com/spf13/viper"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// bug in viper? Need to keep names of fields the same as the serialized names..
	Stage         string `json:"stage" yaml:"stage"`                   // Default target stage
	Bucket        string `json:"bucket" yaml:"bucket"`                 // Bucket when no per-stage bucket is set
	Endpoint      string `json:"endpoint" yaml:"endpoint"`             // S3-compatible endpoint URL
	AccountID     string `json:"account_id" yaml:"account_id"`         // Cloudflare R2 account ID
	Region        string `json:"region" yaml:"region"`                 // Bucket region
	Credential    string `json:"credential" yaml:"credential"`         // Credentials to use for GCS
	LocalRegistry string `json:"local_registry" yaml:"local_registry"` // Path to the local registry build
	LockName      string `json:"lock_name" yaml:"lock_name"`           // Lock marker object name
	BackupDir     string `json:"backup_dir" yaml:"backup_dir"`         // Local backup directory
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *CLIConfig) setRegistryParams(flags *flagsT) {
	if flags.registry.Stage == "" {
		flags.registry.Stage = c.Stage
	}
	if flags.registry.LocalRegistry == "" {
		flags.registry.LocalRegistry = c.LocalRegistry
	}
	if flags.registry.Endpoint == "" {
		flags.registry.Endpoint = c.Endpoint
	}
	if flags.registry.Region == "" {
		flags.registry.Region = c.Region
	}
	if flags.registry.LockName == "" {
		flags.registry.LockName = c.LockName
	}
	if flags.registry.BackupDir == "" {
		flags.registry.BackupDir = c.BackupDir
	}
}

// bucketForStage resolves the target bucket: the --bucket flag first,
// then the per-stage setting (e.g. bucket_dev, or the env variable
// KAMIWAZA_REGISTRY_BUCKET_DEV), then the stage-less fallback.
func bucketForStage(stage string) (string, error) {
	if gardenFlags.registry.Bucket != "" {
		return gardenFlags.registry.Bucket, nil
	}
	if bucket := viper.GetString("bucket_" + stage); bucket != "" {
		return bucket, nil
	}
	if config != nil && config.Bucket != "" {
		return config.Bucket, nil
	}
	if bucket := viper.GetString("bucket"); bucket != "" {
		return bucket, nil
	}
	return "", fmt.Errorf("no bucket configured for stage %q: set bucket_%s or bucket", stage, stage)
}

// endpointURL resolves the S3-compatible endpoint. An R2 account ID
// alone is enough: the endpoint is derived from it.
func endpointURL() string {
	if gardenFlags.registry.Endpoint != "" {
		return gardenFlags.registry.Endpoint
	}
	accountID := viper.GetString("account_id")
	if accountID == "" && config != nil {
		accountID = config.AccountID
	}
	if accountID != "" {
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	}
	return ""
}
