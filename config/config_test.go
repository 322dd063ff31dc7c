package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// go test -v --run TestLoadFromFile
func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
glassnode:
  api_key: from-file
  batch_size: 10
  batch_pause: 2s
output:
  dir: /tmp/out
log:
  level: debug
`)
	if err := os.WriteFile(path, yaml, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Glassnode.APIKey != "from-file" {
		t.Errorf("api key: got %q", cfg.Glassnode.APIKey)
	}
	if cfg.Glassnode.BatchSize != 10 || cfg.Glassnode.BatchPause != 2*time.Second {
		t.Errorf("batch settings: got %d / %s", cfg.Glassnode.BatchSize, cfg.Glassnode.BatchPause)
	}
	if cfg.Output.Dir != "/tmp/out" {
		t.Errorf("output dir: got %q", cfg.Output.Dir)
	}
	// defaults still apply to keys the file leaves out
	if cfg.Glassnode.BaseURL != "https://api.glassnode.com" {
		t.Errorf("base url default: got %q", cfg.Glassnode.BaseURL)
	}
	if cfg.Combine.StartDate != "2008-12-31" {
		t.Errorf("start date default: got %q", cfg.Combine.StartDate)
	}
	if cfg.Log.Environment != "dev" {
		t.Errorf("log environment should follow environment, got %q", cfg.Log.Environment)
	}
}

// go test -v --run TestLoadEnvOverride
func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("glassnode:\n  api_key: from-file\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GLASSNODE_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Glassnode.APIKey != "from-env" {
		t.Fatalf("expected env override, got %q", cfg.Glassnode.APIKey)
	}
}

// go test -v --run TestLoadMissingExplicitFile
func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

// go test -v --run TestCombineStartTime
func TestCombineStartTime(t *testing.T) {
	start, err := CombineConfig{StartDate: "2008-12-31"}.StartTime()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2008, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %s", start)
	}

	if _, err := (CombineConfig{StartDate: "31/12/2008"}).StartTime(); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

// go test -v --run TestPostgresDSN
func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "pw",
		DBName:   "gncollector",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}

	want := "host=localhost port=5432 user=postgres password=pw dbname=gncollector sslmode=disable TimeZone=UTC"
	if got := cfg.DSN("dev"); got != want {
		t.Errorf("DSN:\n got %q\nwant %q", got, want)
	}

	wantAdmin := "host=localhost port=5432 user=postgres password=pw dbname=postgres sslmode=disable TimeZone=UTC"
	if got := cfg.AdminDSN("dev"); got != wantAdmin {
		t.Errorf("AdminDSN:\n got %q\nwant %q", got, wantAdmin)
	}
}
