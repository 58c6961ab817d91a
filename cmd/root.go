// Package cmd implements CLI commands using the cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hydroflow.dev/engine/internal/config"
	"hydroflow.dev/engine/internal/log"
)

var (
	// Global flags
	configFile string

	// globalConfig is loaded once in rootCmd's PersistentPreRunE and read
	// by every subcommand; config.Load fails when configFile cannot be
	// read, and the command then stops with that error, so a subcommand
	// that runs always sees it non-nil.
	globalConfig *config.GlobalConfig
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hydroflow",
	Short: "hydroflow - a dynamic urban hydrology/hydraulic simulation engine",
	Long: `hydroflow simulates runoff generation and flow routing through a
conveyance network (conduits, channels, storage, pumps, regulators)
over a user-defined simulation period, modeled after EPA SWMM's
engine lifecycle.

Commands:
  run      execute a complete simulation from a run configuration
  step     step a simulation interactively, one routing step at a time
  validate validate a run configuration file without executing it`,
	Version:           "0.1.0",
	PersistentPreRunE: loadGlobalConfig,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./engine.yml",
		"engine config file path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(validateCmd)
}

func loadGlobalConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Init(cfg.Log.ToLoggerConfig())
	globalConfig = cfg
	return nil
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
