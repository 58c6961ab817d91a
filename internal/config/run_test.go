package config

import (
	"encoding/json"
	"testing"
)

func TestParseValidRunConfig(t *testing.T) {
	configJSON := `{
		"id": "baseline-run-1",
		"input_path": "model.inp",
		"report_path": "model.rpt",
		"output_path": "model.out",
		"save_results": true,
		"hotstart": {
			"load_path": "warmup.hsf",
			"saves": [
				{"at_seconds": 1800, "path": "mid.hsf"}
			]
		},
		"report_vars": {
			"node": ["NodeDepth", "NodeVolume"],
			"link": ["LinkFlow"]
		}
	}`

	rc, err := ParseRunConfig([]byte(configJSON))
	if err != nil {
		t.Fatalf("Failed to parse run config: %v", err)
	}

	if rc.ID != "baseline-run-1" {
		t.Errorf("Expected ID baseline-run-1, got %s", rc.ID)
	}
	if rc.InputPath != "model.inp" {
		t.Errorf("Expected input_path model.inp, got %s", rc.InputPath)
	}
	if !rc.SaveResults {
		t.Error("Expected SaveResults true")
	}
	if rc.Hotstart.LoadPath != "warmup.hsf" {
		t.Errorf("Expected hotstart load_path warmup.hsf, got %s", rc.Hotstart.LoadPath)
	}
	if len(rc.Hotstart.Saves) != 1 || rc.Hotstart.Saves[0].AtSeconds != 1800 {
		t.Errorf("Expected one save at 1800s, got %+v", rc.Hotstart.Saves)
	}
	if len(rc.ReportVars.Node) != 2 {
		t.Errorf("Expected 2 node report vars, got %d", len(rc.ReportVars.Node))
	}
}

func TestParseMissingRunID(t *testing.T) {
	configJSON := `{"input_path": "model.inp"}`

	_, err := ParseRunConfig([]byte(configJSON))
	if err == nil {
		t.Error("Expected error for missing run ID, got nil")
	}
}

func TestParseMissingInputPath(t *testing.T) {
	configJSON := `{"id": "run-1"}`

	_, err := ParseRunConfig([]byte(configJSON))
	if err == nil {
		t.Error("Expected error for missing input_path, got nil")
	}
}

func TestParseSaveResultsRequiresOutputPath(t *testing.T) {
	configJSON := `{
		"id": "run-1",
		"input_path": "model.inp",
		"save_results": true
	}`

	_, err := ParseRunConfig([]byte(configJSON))
	if err == nil {
		t.Error("Expected error: save_results without output_path, got nil")
	}
}

func TestParseHotstartSaveMissingPath(t *testing.T) {
	configJSON := `{
		"id": "run-1",
		"input_path": "model.inp",
		"hotstart": {"saves": [{"at_seconds": 60}]}
	}`

	_, err := ParseRunConfig([]byte(configJSON))
	if err == nil {
		t.Error("Expected error for hot-start save missing path, got nil")
	}
}

func TestParseRunConfigAutoYAML(t *testing.T) {
	configYAML := `
id: run-yaml
input_path: model.inp
save_results: false
`
	rc, err := ParseRunConfigAuto([]byte(configYAML), "run.yaml")
	if err != nil {
		t.Fatalf("Failed to parse YAML run config: %v", err)
	}
	if rc.ID != "run-yaml" {
		t.Errorf("Expected ID run-yaml, got %s", rc.ID)
	}
}

func TestRunConfigMarshalUnmarshal(t *testing.T) {
	rc := &RunConfig{
		ID:         "run-1",
		InputPath:  "model.inp",
		ReportPath: "model.rpt",
		Hotstart: HotstartConfig{
			LoadPath: "warmup.hsf",
			Saves:    []HotstartSaveSpec{{AtSeconds: 900, Path: "mid.hsf"}},
		},
	}

	data, err := json.Marshal(rc)
	if err != nil {
		t.Fatalf("Failed to marshal run config: %v", err)
	}

	var rc2 RunConfig
	if err := json.Unmarshal(data, &rc2); err != nil {
		t.Fatalf("Failed to unmarshal run config: %v", err)
	}

	if rc2.ID != rc.ID {
		t.Errorf("Expected ID %s, got %s", rc.ID, rc2.ID)
	}
	if rc2.Hotstart.LoadPath != rc.Hotstart.LoadPath {
		t.Errorf("Expected hotstart load_path %s, got %s", rc.Hotstart.LoadPath, rc2.Hotstart.LoadPath)
	}
}
