// Package cmd implements CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hydroflow.dev/engine/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a run configuration file",
	Long: `Validate a run configuration file (JSON or YAML) without executing it.

File format is auto-detected from extension (.json, .yaml, .yml).

Examples:
  hydroflow validate -f run.json
  hydroflow validate -f run.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		runValidateCommand()
	},
}

var validateConfigFile string

func init() {
	validateCmd.Flags().StringVarP(&validateConfigFile, "file", "f", "",
		"run configuration file to validate (required)")
	validateCmd.MarkFlagRequired("file")
}

func runValidateCommand() {
	data, err := os.ReadFile(validateConfigFile)
	if err != nil {
		exitWithError(fmt.Sprintf("failed to read file %s", validateConfigFile), err)
	}

	runConfig, err := config.ParseRunConfigAuto(data, validateConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("VALID: run %q — input %s, %d hot-start save(s), save_results=%v\n",
		runConfig.ID,
		runConfig.InputPath,
		len(runConfig.Hotstart.Saves),
		runConfig.SaveResults,
	)
}
