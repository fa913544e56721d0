package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	def := GetDefault()
	if cfg.IndexPath != def.IndexPath {
		t.Errorf("IndexPath = %q, want default %q", cfg.IndexPath, def.IndexPath)
	}
	if !cfg.Scan.ScanSubfolders {
		t.Error("default config should scan subfolders")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefault()
	cfg.IndexPath = "/tmp/custom.db"
	cfg.Scan.MinFileSize = "10MB"
	cfg.Scan.IncludeDirs = true
	cfg.Output.SortBy = "name"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.IndexPath != "/tmp/custom.db" {
		t.Errorf("IndexPath = %q, want /tmp/custom.db", loaded.IndexPath)
	}
	if !loaded.Scan.IncludeDirs {
		t.Error("IncludeDirs lost in round trip")
	}
	if loaded.Output.SortBy != "name" {
		t.Errorf("SortBy = %q, want name", loaded.Output.SortBy)
	}
	if got := loaded.MinSizeBytes(); got != 10*1024*1024 {
		t.Errorf("MinSizeBytes = %d, want 10 MiB", got)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad size", "index_path: /tmp/x.db\nscan:\n  min_file_size: banana\n"},
		{"bad sort", "index_path: /tmp/x.db\noutput:\n  sort_by: bogus\n"},
		{"bad group sort", "index_path: /tmp/x.db\noutput:\n  group_sort: bogus\n"},
		{"negative flush", "index_path: /tmp/x.db\nscan:\n  flush_every: -1\n"},
		{"empty index path", "index_path: \"\"\n"},
		{"not yaml", "{{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	got := ExpandTilde("~/data/index.db")
	want := filepath.Join(home, "data", "index.db")
	if got != want {
		t.Errorf("ExpandTilde = %q, want %q", got, want)
	}

	if got := ExpandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed: %q", got)
	}
	if got := ExpandTilde("~other/x"); !strings.HasPrefix(got, "~other") {
		t.Errorf("~other should not expand, got %q", got)
	}
}

func TestEnsureConfigExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := EnsureConfigExists()
	if err != nil {
		t.Fatalf("EnsureConfigExists: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IndexPath != GetDefault().IndexPath {
		t.Errorf("IndexPath = %q, want default", cfg.IndexPath)
	}

	// A second call must not touch the existing file.
	cfg.Output.SortBy = "name"
	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureConfigExists(); err != nil {
		t.Fatalf("second EnsureConfigExists: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Output.SortBy != "name" {
		t.Error("EnsureConfigExists overwrote an existing config")
	}
}

func TestValidateDefaults(t *testing.T) {
	if err := GetDefault().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}
