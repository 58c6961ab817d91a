// Package cmd implements CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hydroflow.dev/engine/internal/config"
	"hydroflow.dev/engine/internal/errs"
	"hydroflow.dev/engine/internal/metrics"
	"hydroflow.dev/engine/internal/run"
	"hydroflow.dev/engine/pkg/swmm"
)

var runConfigFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a complete simulation run",
	Long: `Run loads a run configuration file, then drives the engine through
Open, Start, the routing step loop, End, and Report in one call.

Examples:
  hydroflow run -f run.json
  hydroflow run -f run.yaml --progress`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRunCommand(cmd)
	},
}

var showProgress bool

func init() {
	runCmd.Flags().StringVarP(&runConfigFile, "file", "f", "", "run configuration file (required)")
	runCmd.Flags().BoolVar(&showProgress, "progress", false, "print progress to stderr as the run advances")
	runCmd.MarkFlagRequired("file")
}

func runRunCommand(cmd *cobra.Command) error {
	data, err := os.ReadFile(runConfigFile)
	if err != nil {
		return fmt.Errorf("read run config: %w", err)
	}
	rc, err := config.ParseRunConfigAuto(data, runConfigFile)
	if err != nil {
		return fmt.Errorf("parse run config: %w", err)
	}

	opts := run.Options{
		InputPath:        rc.InputPath,
		ReportPath:       rc.ReportPath,
		OutputPath:       rc.OutputPath,
		SaveResults:      rc.SaveResults,
		HotstartLoadPath: rc.Hotstart.LoadPath,
	}
	for _, s := range rc.Hotstart.Saves {
		opts.HotstartSaves = append(opts.HotstartSaves, toHotstartSave(s))
	}
	if rv, err := toReportVars(rc.ReportVars); err != nil {
		return fmt.Errorf("resolve report_vars: %w", err)
	} else if rv != nil {
		opts.ReportVars = rv
	}

	if globalConfig != nil && globalConfig.Metrics.Enabled {
		srv := metrics.NewServer(globalConfig.Metrics.Listen, globalConfig.Metrics.Path)
		if err := srv.Start(cmd.Context()); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		defer srv.Stop(cmd.Context())
	}

	cb := func(p float64) {
		metrics.StepsTotal.WithLabelValues(rc.ID).Inc()
		metrics.SimulationProgress.WithLabelValues(rc.ID).Set(p)
		if showProgress {
			fmt.Fprintf(cmd.OutOrStderr(), "\rprogress: %5.1f%%", p*100)
		}
	}

	metrics.RunState.WithLabelValues(rc.ID).Set(2)
	engine, ec := run.RunWithCallback(opts, cb)
	if showProgress {
		fmt.Fprintln(cmd.OutOrStderr())
	}
	defer engine.Close()

	if ec != errs.OK {
		metrics.RunState.WithLabelValues(rc.ID).Set(3)
		return fmt.Errorf("run %q failed: %s", rc.ID, errs.Message(ec))
	}
	metrics.RunState.WithLabelValues(rc.ID).Set(3)

	fmt.Fprintf(cmd.OutOrStdout(), "run %q complete\n", rc.ID)
	return nil
}

func toHotstartSave(s config.HotstartSaveSpec) swmm.HotstartSave {
	return swmm.HotstartSave{AtMS: s.AtSeconds * 1000, Path: s.Path}
}

func toReportVars(rv config.ReportVarConfig) (*run.ReportVars, error) {
	if len(rv.Subcatch) == 0 && len(rv.Node) == 0 && len(rv.Link) == 0 && len(rv.Sys) == 0 {
		return nil, nil
	}
	subcatch, err := swmm.ResolveCodes(rv.Subcatch)
	if err != nil {
		return nil, err
	}
	node, err := swmm.ResolveCodes(rv.Node)
	if err != nil {
		return nil, err
	}
	link, err := swmm.ResolveCodes(rv.Link)
	if err != nil {
		return nil, err
	}
	sys, err := swmm.ResolveCodes(rv.Sys)
	if err != nil {
		return nil, err
	}
	return &run.ReportVars{Subcatch: subcatch, Node: node, Link: link, Sys: sys}, nil
}
