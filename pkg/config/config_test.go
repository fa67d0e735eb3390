package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Calendar != DefaultCalendar {
		t.Errorf("Expected calendar %s, got %s", DefaultCalendar, cfg.Calendar)
	}
	if cfg.DataFile != filepath.Join(filepath.Dir(path), "tasks.jsonl") {
		t.Errorf("unexpected data file %s", cfg.DataFile)
	}
	if cfg.Sync {
		t.Error("Expected sync to be off by default")
	}
	if !cfg.OverdueWarning {
		t.Error("Expected overdue warning on by default")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv(EnvConfigPath, path)
	content := `data_file = "/tmp/duke/tasks.jsonl"
calendar = ""
sync = true
log_level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataFile != "/tmp/duke/tasks.jsonl" || !cfg.Sync || cfg.LogLevel != "debug" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Calendar != DefaultCalendar {
		t.Errorf("Expected empty calendar to fall back to %s, got %q", DefaultCalendar, cfg.Calendar)
	}
	if !cfg.OverdueWarning {
		t.Error("Expected unset overdue_warning to keep its default")
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv(EnvConfigPath, path)
	if err := os.WriteFile(path, []byte("sync = [not toml"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid TOML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv(EnvConfigPath, path)

	want := &Config{DataFile: "/data/tasks.jsonl", Calendar: "Work", Sync: true, LogLevel: "warn"}
	if err := Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}
