package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/cablerouter/internal/model"
)

func TestSaveAndLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")

	cat := model.Catalog{Cables: []model.CableSpec{
		model.NewCableSpec("Servo 5mm", 5, 30, "black"),
		model.NewCableSpec("Fiber 3mm", 3, 30, "orange"),
	}}

	if err := SaveCatalog(path, cat); err != nil {
		t.Fatalf("SaveCatalog failed: %v", err)
	}

	loaded, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(loaded.Cables) != 2 {
		t.Fatalf("expected 2 cables, got %d", len(loaded.Cables))
	}
	if loaded.Cables[0].Name != "Servo 5mm" || loaded.Cables[0].Diameter != 5 {
		t.Errorf("unexpected first cable: %+v", loaded.Cables[0])
	}
	if loaded.Cables[1].ID != cat.Cables[1].ID {
		t.Errorf("ID not preserved: got %s, want %s", loaded.Cables[1].ID, cat.Cables[1].ID)
	}
}

func TestLoadCatalogCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "catalog.json")

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(cat.Cables) != len(model.DefaultCatalog().Cables) {
		t.Errorf("expected %d default cables, got %d", len(model.DefaultCatalog().Cables), len(cat.Cables))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default catalog should have been saved: %v", err)
	}
}

func TestLoadCatalogInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("{{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "import.json")

	shared := model.NewCableSpec("Shared", 6, 36, "grey")
	existing := model.Catalog{Cables: []model.CableSpec{shared}}
	imported := model.Catalog{Cables: []model.CableSpec{shared, model.NewCableSpec("New", 10, 60, "red")}}

	data, err := json.Marshal(imported)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	merged, err := ImportCatalog(path, existing)
	if err != nil {
		t.Fatalf("ImportCatalog failed: %v", err)
	}
	if len(merged.Cables) != 2 {
		t.Fatalf("expected 2 cables after merge, got %d", len(merged.Cables))
	}
	if merged.FindByName("New") == nil {
		t.Error("imported cable missing after merge")
	}
}

func TestImportCatalogMissingFile(t *testing.T) {
	existing := model.DefaultCatalog()
	merged, err := ImportCatalog(filepath.Join(t.TempDir(), "nope.json"), existing)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(merged.Cables) != len(existing.Cables) {
		t.Error("existing catalog should be returned unchanged on error")
	}
}
