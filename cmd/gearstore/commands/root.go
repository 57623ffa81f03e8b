package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/gearstore/cmd/gearstore/internal/config"
)

var (
	// Global flags
	verbose      bool
	rootOverride string

	// Global configuration (loaded at init time)
	globalConfig *config.Config

	// testConfigOverride replaces the loaded configuration in tests.
	testConfigOverride *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gearstore",
	Short: "Manage on-device gear records and the telemetry queue",
	Long: `gearstore - inspect and manage on-device gear storage.

Records are JSON documents stored one file per key under the storage
root. The reserved key "telemetry" holds a size-bounded FIFO event
queue; oldest events are evicted when the queue outgrows its budget.

Storage root resolution order:
  1. --root flag
  2. storage.root in the config file
  3. OS config directory (e.g. ~/.config/gearstore/data on Linux)

Examples:
  # Store and read back a record
  gearstore set device-profile profile.json
  gearstore get device-profile --jq '.fw.version'

  # Inspect the telemetry queue
  gearstore queue stats
  gearstore queue peek --jq '.[-3:]'

  # Ship queued events to the configured S3 bucket, then clear
  gearstore queue drain`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&rootOverride, "root", "", "storage root directory (overrides config)")
}

// configLoadErr stores the error from config.Load() for deferred
// reporting: commands that never touch the config should not fail on a
// broken config file.
var configLoadErr error

func initConfig() {
	cfg, err := config.Load()
	if err != nil {
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

// GetConfig returns the global configuration.
func GetConfig() (*config.Config, error) {
	if testConfigOverride != nil {
		return testConfigOverride, nil
	}
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose reports whether --verbose was set.
func IsVerbose() bool {
	return verbose
}
