// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"hydroflow.dev/engine/internal/log"
)

// GlobalConfig represents the top-level global static configuration.
// Maps to the `engine:` root key in YAML.
type GlobalConfig struct {
	Node    NodeConfig    `mapstructure:"node"`
	Solver  SolverConfig  `mapstructure:"solver"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
	DataDir string        `mapstructure:"data_dir"` // default dir for hot-start files and results
}

// ─── Node Identity ───

// NodeConfig identifies the process running the engine, surfaced in logs
// and metrics labels.
type NodeConfig struct {
	ID       string `mapstructure:"id"`
	Hostname string `mapstructure:"hostname"` // empty = os.Hostname()
}

// ─── Solver defaults ───

// SolverConfig holds process-wide routing-step settings. They are loaded
// and validated here only; no run applies them (internal/lifecycle.Engine
// reads the parsed project's own step-size fields once Open runs, per
// spec.md §3).
type SolverConfig struct {
	NumThreads             int     `mapstructure:"num_threads"` // must not be negative
	MinRouteStepS          float64 `mapstructure:"min_route_step_s"`
	LengtheningStepS       float64 `mapstructure:"lengthening_step_s"`
	ReportControlsEnabled  bool    `mapstructure:"report_controls_enabled"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics server settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ─── Log ───

// LogConfig mirrors internal/log.LoggerConfig's shape for YAML/env
// unmarshalling; Load converts it on the way out via ToLoggerConfig.
type LogConfig struct {
	Level    string               `mapstructure:"level"`
	Pattern  string               `mapstructure:"pattern"`
	Time     string               `mapstructure:"time"`
	Appender string               `mapstructure:"appender"`
	File     *log.FileAppenderOpt `mapstructure:"file,omitempty"`
}

// ToLoggerConfig converts the unmarshalled YAML shape to what
// internal/log.Init expects.
func (c LogConfig) ToLoggerConfig() *log.LoggerConfig {
	return &log.LoggerConfig{
		Level:    c.Level,
		Pattern:  c.Pattern,
		Time:     c.Time,
		Appender: c.Appender,
		File:     c.File,
	}
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `engine: ...`.
type configRoot struct {
	Engine GlobalConfig `mapstructure:"engine"`
}

// Load loads configuration from file. The YAML file uses `engine:` as root
// key; env vars use ENGINE_ prefix (e.g., ENGINE_LOG_LEVEL).
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Engine

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.log.level", "info")
	v.SetDefault("engine.log.pattern", "%time [%level] %field%msg\n")
	v.SetDefault("engine.log.time", "2006-01-02 15:04:05.000")
	v.SetDefault("engine.log.appender", "stdout")

	v.SetDefault("engine.metrics.enabled", false)
	v.SetDefault("engine.metrics.listen", ":9091")
	v.SetDefault("engine.metrics.path", "/metrics")

	v.SetDefault("engine.solver.num_threads", 1)
	v.SetDefault("engine.solver.min_route_step_s", 0.5)
	v.SetDefault("engine.solver.lengthening_step_s", 0)

	v.SetDefault("engine.data_dir", "./engine-data")
}

// ValidateAndApplyDefaults validates configuration and applies runtime
// defaults that can't be expressed as static viper defaults (hostname
// auto-detection).
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "trace": true}
	if !validLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be trace/debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.Appender != "stdout" && cfg.Log.Appender != "file" {
		return fmt.Errorf("invalid log appender: %s (must be stdout/file)", cfg.Log.Appender)
	}
	if cfg.Log.Appender == "file" && cfg.Log.File == nil {
		return fmt.Errorf("log.appender=file requires log.file settings")
	}

	if cfg.Node.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("failed to get hostname: %w", err)
		}
		cfg.Node.Hostname = hostname
	}
	if cfg.Node.ID == "" {
		cfg.Node.ID = cfg.Node.Hostname
	}

	if cfg.Solver.NumThreads < 0 {
		return fmt.Errorf("solver.num_threads must be >= 0")
	}

	return nil
}
