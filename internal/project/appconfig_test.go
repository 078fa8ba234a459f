package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/cablerouter/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultMapSize = 50
	cfg.DefaultAlgorithm = model.AlgorithmJPS
	cfg.LogLevel = "debug"
	cfg.RecentJobs = []string{"/tmp/harness1.json", "/tmp/harness2.json"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultMapSize != 50 {
		t.Errorf("expected DefaultMapSize=50, got %d", loaded.DefaultMapSize)
	}
	if loaded.DefaultAlgorithm != model.AlgorithmJPS {
		t.Errorf("expected DefaultAlgorithm=jps, got %s", loaded.DefaultAlgorithm)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", loaded.LogLevel)
	}
	if len(loaded.RecentJobs) != 2 {
		t.Errorf("expected 2 recent jobs, got %d", len(loaded.RecentJobs))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.DefaultMapSize != defaults.DefaultMapSize {
		t.Errorf("expected default map size %d, got %d", defaults.DefaultMapSize, cfg.DefaultMapSize)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel=info, got %s", cfg.LogLevel)
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAppConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dir", "config.json")

	cfg := model.DefaultAppConfig()
	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	data := []byte(`{"default_map_size":64,"recent_jobs":null}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.DefaultMapSize != 64 {
		t.Errorf("expected DefaultMapSize=64, got %d", cfg.DefaultMapSize)
	}
	if cfg.RecentJobs == nil {
		t.Error("RecentJobs should not be nil after loading")
	}
	defaults := model.DefaultAppConfig()
	if cfg.DefaultCableDiameter != defaults.DefaultCableDiameter {
		t.Errorf("expected default cable diameter %.1f, got %.1f", defaults.DefaultCableDiameter, cfg.DefaultCableDiameter)
	}
}

func TestDefaultPathsShareConfigDir(t *testing.T) {
	dir := DefaultConfigDir()
	if filepath.Base(dir) != ".cablerouter" {
		t.Errorf("expected config dir .cablerouter, got %s", filepath.Base(dir))
	}
	for _, p := range []string{DefaultConfigPath(), DefaultCatalogPath(), DefaultProfilesPath()} {
		if filepath.Dir(p) != dir {
			t.Errorf("%s is not inside %s", p, dir)
		}
	}
}
