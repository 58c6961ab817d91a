package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// helper to write a tmp YAML file and return its path.
func writeTmpConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write tmp config: %v", err)
	}
	return p
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeTmpConfig(t, `
engine:
  node:
    id: "node-1"
    hostname: "test-host"
  log:
    level: "debug"
    appender: "stdout"
  metrics:
    enabled: true
    listen: "0.0.0.0:9090"
    path: "/metrics"
  solver:
    num_threads: 4
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Node.ID != "node-1" {
		t.Errorf("Node.ID = %q, want node-1", cfg.Node.ID)
	}
	if cfg.Node.Hostname != "test-host" {
		t.Errorf("Node.Hostname = %q, want test-host", cfg.Node.Hostname)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if cfg.Solver.NumThreads != 4 {
		t.Errorf("Solver.NumThreads = %d, want 4", cfg.Solver.NumThreads)
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	_, err := Load(writeTmpConfig(t, `
engine:
  log:
    level: "invalid"
`))
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
	if !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("error = %v, want 'invalid log level'", err)
	}
}

func TestLoadInvalidLogAppender(t *testing.T) {
	_, err := Load(writeTmpConfig(t, `
engine:
  log:
    level: "info"
    appender: "kafka"
`))
	if err == nil {
		t.Fatal("expected error for invalid log appender")
	}
}

func TestLoadFileAppenderRequiresFileSettings(t *testing.T) {
	_, err := Load(writeTmpConfig(t, `
engine:
  log:
    level: "info"
    appender: "file"
`))
	if err == nil {
		t.Fatal("expected error: file appender without log.file settings")
	}
}

func TestAutoDetectHostname(t *testing.T) {
	cfg, err := Load(writeTmpConfig(t, `
engine:
  log:
    level: "info"
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	expected, _ := os.Hostname()
	if cfg.Node.Hostname != expected {
		t.Errorf("Node.Hostname = %q, want %q", cfg.Node.Hostname, expected)
	}
	if cfg.Node.ID != expected {
		t.Errorf("Node.ID = %q, want hostname fallback %q", cfg.Node.ID, expected)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeTmpConfig(t, `
engine:
  node:
    id: "n1"
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Log.Appender != "stdout" {
		t.Errorf("Log.Appender = %q, want stdout", cfg.Log.Appender)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want false by default")
	}
	if cfg.Metrics.Listen != ":9091" {
		t.Errorf("Metrics.Listen = %q, want :9091", cfg.Metrics.Listen)
	}
	if cfg.Solver.NumThreads != 1 {
		t.Errorf("Solver.NumThreads = %d, want 1", cfg.Solver.NumThreads)
	}
	if cfg.Solver.MinRouteStepS != 0.5 {
		t.Errorf("Solver.MinRouteStepS = %v, want 0.5", cfg.Solver.MinRouteStepS)
	}
	if cfg.DataDir != "./engine-data" {
		t.Errorf("DataDir = %q, want ./engine-data", cfg.DataDir)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ENGINE_LOG_LEVEL", "debug")

	cfg, err := Load(writeTmpConfig(t, `
engine:
  log:
    level: "info"
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug (from env)", cfg.Log.Level)
	}
}

func TestLoadRejectsNegativeThreadCount(t *testing.T) {
	_, err := Load(writeTmpConfig(t, `
engine:
  solver:
    num_threads: -1
`))
	if err == nil {
		t.Fatal("expected error for negative num_threads")
	}
	if !strings.Contains(err.Error(), "num_threads") {
		t.Errorf("error = %v, want mention of num_threads", err)
	}
}

func TestToLoggerConfig(t *testing.T) {
	cfg, err := Load(writeTmpConfig(t, `
engine:
  log:
    level: "warn"
    pattern: "%msg"
    time: "2006"
    appender: "stdout"
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	lc := cfg.Log.ToLoggerConfig()
	if lc.Level != "warn" || lc.Pattern != "%msg" || lc.Time != "2006" || lc.Appender != "stdout" {
		t.Errorf("ToLoggerConfig() = %+v, unexpected", lc)
	}
}
