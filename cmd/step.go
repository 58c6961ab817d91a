// Package cmd implements CLI commands.
package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hydroflow.dev/engine/internal/config"
	"hydroflow.dev/engine/internal/errs"
	"hydroflow.dev/engine/pkg/swmm"
)

var stepConfigFile string

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Step a simulation interactively, one routing step at a time",
	Long: `Step opens and starts a run, then pauses after every routing step
to print the elapsed simulation time and wait for Enter before
continuing. Intended for inspecting a run's behavior live rather than
for scripted execution — use "run" for that.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStepCommand(cmd)
	},
}

func init() {
	stepCmd.Flags().StringVarP(&stepConfigFile, "file", "f", "", "run configuration file (required)")
	stepCmd.MarkFlagRequired("file")
}

func runStepCommand(cmd *cobra.Command) error {
	data, err := os.ReadFile(stepConfigFile)
	if err != nil {
		return fmt.Errorf("read run config: %w", err)
	}
	rc, err := config.ParseRunConfigAuto(data, stepConfigFile)
	if err != nil {
		return fmt.Errorf("parse run config: %w", err)
	}

	e := swmm.New()
	defer e.Close()

	if ec := e.Open(rc.InputPath, rc.ReportPath, rc.OutputPath); ec != errs.OK {
		return fmt.Errorf("open %q: %s", rc.ID, errs.Message(ec))
	}
	if ec := e.Start(rc.SaveResults); ec != errs.OK {
		return fmt.Errorf("start %q: %s", rc.ID, errs.Message(ec))
	}

	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	var elapsed float64
	for {
		if ec := e.Step(&elapsed); ec != errs.OK {
			return fmt.Errorf("step %q: %s", rc.ID, errs.Message(ec))
		}
		if elapsed == 0 {
			fmt.Fprintln(out, "horizon reached")
			break
		}
		fmt.Fprintf(out, "elapsed=%.6f days progress=%.1f%% [Enter to continue]", elapsed, e.Progress()*100)
		if _, err := in.ReadString('\n'); err != nil {
			fmt.Fprintln(out)
			break
		}
	}

	if ec := e.End(); ec != errs.OK {
		return fmt.Errorf("end %q: %s", rc.ID, errs.Message(ec))
	}
	if ec := e.Report(); ec != errs.OK {
		return fmt.Errorf("report %q: %s", rc.ID, errs.Message(ec))
	}
	fmt.Fprintf(out, "run %q complete\n", rc.ID)
	return nil
}
