package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesTemplates(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, name := range []string{"config.toml", "credentials.toml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("template %s not created: %v", name, err)
		}
	}

	if cfg.Screening.DaysAhead != 14 {
		t.Errorf("default DaysAhead = %d, want 14", cfg.Screening.DaysAhead)
	}
	if !cfg.Screening.StrictFiltering {
		t.Error("default StrictFiltering = false, want true")
	}
	if cfg.Cache.ResultFile == "" || cfg.Cache.IgnoreFile == "" || cfg.Database.Path == "" {
		t.Errorf("default paths not applied: %+v", cfg)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[screening]
min_yield = 2.5
days_ahead = 7
strict_filtering = false

[cache]
result_file = "/tmp/results.csv"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Screening.MinYield != 2.5 || cfg.Screening.DaysAhead != 7 {
		t.Errorf("screening config = %+v", cfg.Screening)
	}
	if cfg.Screening.StrictFiltering {
		t.Error("StrictFiltering = true, want false from file")
	}
	if cfg.Cache.ResultFile != "/tmp/results.csv" {
		t.Errorf("ResultFile = %q", cfg.Cache.ResultFile)
	}
	// Unset path still gets a default.
	if cfg.Cache.IgnoreFile == "" {
		t.Error("IgnoreFile default not applied")
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("POLYGON_API_KEY", "env-key")
	t.Setenv("BROKER_USERNAME", "env-user")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Credentials.Polygon.APIKey != "env-key" {
		t.Errorf("Polygon.APIKey = %q, want env override", cfg.Credentials.Polygon.APIKey)
	}
	if cfg.Credentials.Broker.Username != "env-user" {
		t.Errorf("Broker.Username = %q, want env override", cfg.Credentials.Broker.Username)
	}
}

func TestFilterConfigNormalizes(t *testing.T) {
	sc := ScreeningConfig{MinYield: -1, DaysAhead: 90}
	fc := sc.FilterConfig()
	if fc.DaysAhead != 30 {
		t.Errorf("DaysAhead = %d, want clamped to 30", fc.DaysAhead)
	}
	if fc.MinYield != 0 {
		t.Errorf("MinYield = %v, want clamped to 0", fc.MinYield)
	}
}
