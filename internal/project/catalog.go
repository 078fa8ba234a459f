package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/cablerouter/internal/model"
)

// DefaultCatalogPath returns the default file path for the cable catalog.
// This is located at ~/.cablerouter/catalog.json.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultConfigDir(), "catalog.json")
}

// SaveCatalog writes the cable catalog to the specified JSON file.
func SaveCatalog(path string, cat model.Catalog) error {
	return writeJSON(path, cat)
}

// LoadCatalog reads the cable catalog from the specified JSON file.
// If the file does not exist, it returns the default catalog and saves it.
func LoadCatalog(path string) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cat := model.DefaultCatalog()
			if saveErr := SaveCatalog(path, cat); saveErr != nil {
				return cat, saveErr
			}
			return cat, nil
		}
		return model.Catalog{}, err
	}

	var cat model.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return model.Catalog{}, err
	}
	if cat.Cables == nil {
		cat.Cables = []model.CableSpec{}
	}
	return cat, nil
}

// ImportCatalog merges the catalog in path into existing. Entries whose ID
// is already present are skipped.
func ImportCatalog(path string, existing model.Catalog) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Catalog
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	ids := make(map[string]bool, len(existing.Cables))
	for _, c := range existing.Cables {
		ids[c.ID] = true
	}
	for _, c := range imported.Cables {
		if !ids[c.ID] {
			existing.Cables = append(existing.Cables, c)
			ids[c.ID] = true
		}
	}
	return existing, nil
}
