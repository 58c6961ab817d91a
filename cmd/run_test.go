package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydroflow.dev/engine/internal/config"
)

const oneNodeNetworkJSON = `{
	"start_datetime": "2004-01-01 00:00:00",
	"end_datetime":   "2004-01-01 01:00:00",
	"report_step_s":  600,
	"route_step_s":   10,
	"wet_step_s":     300,
	"nodes": [{"id": "N1", "type": "junction", "invert": 0, "max_depth": 10, "init_depth": 0}],
	"links": [{"id": "L1", "type": "conduit", "from_node": 0, "to_node": 0}]
}`

func TestToHotstartSaveConvertsSecondsToMilliseconds(t *testing.T) {
	got := toHotstartSave(config.HotstartSaveSpec{AtSeconds: 1800, Path: "mid.hsf"})
	assert.Equal(t, 1800000.0, got.AtMS)
	assert.Equal(t, "mid.hsf", got.Path)
}

func TestToReportVarsEmptyConfigReturnsNil(t *testing.T) {
	rv, err := toReportVars(config.ReportVarConfig{})
	require.NoError(t, err)
	assert.Nil(t, rv)
}

func TestToReportVarsResolvesNames(t *testing.T) {
	rv, err := toReportVars(config.ReportVarConfig{Node: []string{"NodeDepth"}})
	require.NoError(t, err)
	require.NotNil(t, rv)
	assert.Len(t, rv.Node, 1)
}

func TestToReportVarsRejectsUnknownName(t *testing.T) {
	_, err := toReportVars(config.ReportVarConfig{Node: []string{"NotReal"}})
	assert.Error(t, err)
}

func TestRunRunCommandExecutesEndToEnd(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "network.json")
	require.NoError(t, os.WriteFile(inputPath, []byte(oneNodeNetworkJSON), 0o644))

	runConfigPath := filepath.Join(dir, "run.json")
	runConfigJSON := `{"id": "demo", "input_path": "` + inputPath + `", "save_results": false}`
	require.NoError(t, os.WriteFile(runConfigPath, []byte(runConfigJSON), 0o644))

	runConfigFile = runConfigPath
	showProgress = false

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := runRunCommand(cmd)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `run "demo" complete`)
}
