// Package config handles configuration structures.
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RunConfig represents one simulation run: the input/report/output paths
// the lifecycle controller's Open/Start take (spec.md §4.1), plus the
// optional hot-start and reporting overrides a CLI invocation can set
// without touching the input file.
type RunConfig struct {
	ID          string          `json:"id" yaml:"id"`
	InputPath   string          `json:"input_path" yaml:"input_path"`
	ReportPath  string          `json:"report_path" yaml:"report_path"`
	OutputPath  string          `json:"output_path" yaml:"output_path"`
	SaveResults bool            `json:"save_results" yaml:"save_results"`
	Hotstart    HotstartConfig  `json:"hotstart" yaml:"hotstart"`
	ReportVars  ReportVarConfig `json:"report_vars" yaml:"report_vars"`
}

// HotstartConfig configures the optional hot-start load/save behavior of a
// run, mirroring internal/lifecycle.Engine.ConfigureHotstart's two modes
// (spec.md §4.5): load an initial condition, and/or save periodic
// snapshots during the run.
type HotstartConfig struct {
	LoadPath string             `json:"load_path" yaml:"load_path"`
	Saves    []HotstartSaveSpec `json:"saves" yaml:"saves"`
}

// HotstartSaveSpec schedules one periodic hot-start save at AtSeconds of
// routing time elapsed.
type HotstartSaveSpec struct {
	AtSeconds float64 `json:"at_seconds" yaml:"at_seconds"`
	Path      string  `json:"path" yaml:"path"`
}

// ReportVarConfig names, by property code identifier (see pkg/swmm's
// code-name table), the attributes a run wants written to the results
// file per object class. An empty slice keeps the engine's built-in
// defaults for that class.
type ReportVarConfig struct {
	Subcatch []string `json:"subcatch" yaml:"subcatch"`
	Node     []string `json:"node" yaml:"node"`
	Link     []string `json:"link" yaml:"link"`
	Sys      []string `json:"sys" yaml:"sys"`
}

// Validate validates run configuration and applies field-level defaults.
func (rc *RunConfig) Validate() error {
	if rc.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	if rc.InputPath == "" {
		return fmt.Errorf("input_path is required")
	}
	if rc.SaveResults && rc.OutputPath == "" {
		return fmt.Errorf("output_path is required when save_results is true")
	}

	for i, save := range rc.Hotstart.Saves {
		if save.Path == "" {
			return fmt.Errorf("hotstart.saves[%d]: path is required", i)
		}
		if save.AtSeconds < 0 {
			return fmt.Errorf("hotstart.saves[%d]: at_seconds must be >= 0", i)
		}
	}

	return nil
}

// ParseRunConfig parses run configuration from JSON.
func ParseRunConfig(data []byte) (*RunConfig, error) {
	var rc RunConfig
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse run config: %w", err)
	}
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	return &rc, nil
}

// ParseRunConfigAuto detects format (JSON/YAML) based on file extension and
// parses the run configuration accordingly.
func ParseRunConfigAuto(data []byte, filename string) (*RunConfig, error) {
	var rc RunConfig

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML run config: %w", err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, &rc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON run config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &rc); err != nil {
			if err2 := yaml.Unmarshal(data, &rc); err2 != nil {
				return nil, fmt.Errorf("failed to parse run config (tried JSON and YAML): JSON: %v; YAML: %v", err, err2)
			}
		}
	}

	if err := rc.Validate(); err != nil {
		return nil, err
	}

	return &rc, nil
}
