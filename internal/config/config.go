// Package config loads apcore's YAML configuration, following the same
// "zero value means default" backfill pattern as the teacher's
// internal/config/config.go Load.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is apcore's on-disk configuration. Path confinement is not
// represented here: unlike the teacher's workspace.path_safety_mode, it is
// not configurable — every file path is always required to resolve inside
// the project directory.
type Config struct {
	Engine struct {
		Force             bool   `yaml:"force"`
		CreateFailureCase bool   `yaml:"create_failure_case"`
		FailureReportPath string `yaml:"failure_report_path"`
	} `yaml:"engine"`

	Logging struct {
		Path        string `yaml:"path"`
		Development bool   `yaml:"development"`
	} `yaml:"logging"`

	Report struct {
		JSON  bool `yaml:"json"`
		Color bool `yaml:"color"`
	} `yaml:"report"`
}

// Default returns the configuration used when no YAML file is supplied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a YAML configuration file, backfilling any
// zero-valued field with its default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Engine.FailureReportPath != "" {
		abs, err := filepath.Abs(cfg.Engine.FailureReportPath)
		if err != nil {
			return nil, fmt.Errorf("resolve failure_report_path: %w", err)
		}
		cfg.Engine.FailureReportPath = abs
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Engine.FailureReportPath == "" {
		cfg.Engine.FailureReportPath = "afailed.ap"
	}
	if !cfg.Report.JSON && !cfg.Report.Color {
		cfg.Report.Color = true
	}
}
