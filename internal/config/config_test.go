package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Engine.FailureReportPath != "afailed.ap" {
		t.Errorf("FailureReportPath = %q, want afailed.ap", cfg.Engine.FailureReportPath)
	}
	if !cfg.Report.Color {
		t.Error("expected color reporting to default on when nothing is configured")
	}
}

func TestLoadBackfillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apcore.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  force: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Engine.Force {
		t.Error("expected force to be loaded from the file")
	}
	if cfg.Engine.FailureReportPath != "afailed.ap" {
		t.Errorf("FailureReportPath = %q, want afailed.ap", cfg.Engine.FailureReportPath)
	}
}

func TestLoadRespectsExplicitReportMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apcore.yaml")
	if err := os.WriteFile(path, []byte("report:\n  json: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Report.Color {
		t.Error("explicit json report mode should not also default color on")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
