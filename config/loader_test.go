package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
timetable:
  operator: "Trenord"
routing:
  endpoint: "https://example.org/directions"
`)
	t.Setenv("ROUTING_API_KEY", "k123")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 || cfg.Timetable.Operator != "Trenord" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	// Unset knobs fall back to defaults.
	if cfg.Sampling.StepMinutes != 30 || cfg.Sampling.MaxOccurrences != 53 {
		t.Fatalf("defaults not applied: %+v", cfg.Sampling)
	}
	if cfg.Paths.TimetablePath != "maps/full_info_trips.json" {
		t.Fatalf("default paths not applied: %+v", cfg.Paths)
	}
	if cfg.Secrets.RoutingAPIKey != "k123" {
		t.Fatal("secret not read from environment")
	}
}

func TestLoadRejectsMissingOperator(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
routing:
  endpoint: "https://example.org/directions"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing operator")
	}
}

func TestLoadRejectsBadEndpoint(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
timetable:
  operator: "Trenord"
routing:
  endpoint: "not a url"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for bad endpoint")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
