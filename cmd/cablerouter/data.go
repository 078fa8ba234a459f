package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/piwi3910/cablerouter/internal/model"
	"github.com/piwi3910/cablerouter/internal/project"
)

// dataFiles locates the JSON files kept alongside the app config.
type dataFiles struct {
	config   string
	profiles string
	catalog  string
}

func filesFor(cfg Config) dataFiles {
	files := dataFiles{
		config:   cfg.ConfigPath,
		profiles: project.DefaultProfilesPath(),
		catalog:  project.DefaultCatalogPath(),
	}
	if cfg.ConfigPath != project.DefaultConfigPath() {
		dir := filepath.Dir(cfg.ConfigPath)
		files.profiles = filepath.Join(dir, "profiles.json")
		files.catalog = filepath.Join(dir, "catalog.json")
	}
	if cfg.CatalogPath != "" {
		files.catalog = cfg.CatalogPath
	}
	return files
}

// manageData runs the restore, import, export and backup requests in cfg,
// in that order. It reports whether any was requested.
func manageData(cfg Config, files dataFiles, logger *slog.Logger) (bool, error) {
	did := false
	if cfg.Restore != "" {
		did = true
		if err := restoreBackup(cfg.Restore, files); err != nil {
			return did, err
		}
		logger.Info("backup restored", slog.String("path", cfg.Restore))
	}
	if cfg.ImportProfile != "" {
		did = true
		name, err := importProfile(cfg.ImportProfile, files.profiles)
		if err != nil {
			return did, err
		}
		logger.Info("profile imported", slog.String("profile", name))
	}
	if cfg.ImportCatalog != "" {
		did = true
		added, err := importCatalog(cfg.ImportCatalog, files.catalog)
		if err != nil {
			return did, err
		}
		logger.Info("catalog imported", slog.String("path", cfg.ImportCatalog), slog.Int("added", added))
	}
	if cfg.ExportProfile != "" {
		did = true
		if err := exportProfile(cfg.Profile, cfg.ExportProfile, files.profiles); err != nil {
			return did, err
		}
		logger.Info("profile exported", slog.String("profile", cfg.Profile), slog.String("path", cfg.ExportProfile))
	}
	if cfg.Backup != "" {
		did = true
		if err := writeBackup(cfg.Backup, files); err != nil {
			return did, err
		}
		logger.Info("backup written", slog.String("path", cfg.Backup))
	}
	return did, nil
}

func restoreBackup(path string, files dataFiles) error {
	backup, err := project.ImportAllData(path)
	if err != nil {
		return err
	}
	if err := project.SaveAppConfig(files.config, backup.Config); err != nil {
		return fmt.Errorf("failed to restore config: %w", err)
	}
	if err := project.SaveCatalog(files.catalog, backup.Catalog); err != nil {
		return fmt.Errorf("failed to restore catalog: %w", err)
	}
	if err := project.SaveCustomProfiles(files.profiles, backup.Profiles); err != nil {
		return fmt.Errorf("failed to restore profiles: %w", err)
	}
	return nil
}

func writeBackup(path string, files dataFiles) error {
	app, err := project.LoadAppConfig(files.config)
	if err != nil {
		return err
	}
	catalog, err := project.LoadCatalog(files.catalog)
	if err != nil {
		return err
	}
	custom, err := project.LoadCustomProfiles(files.profiles)
	if err != nil {
		return err
	}
	return project.ExportAllData(path, app, catalog, custom)
}

// importProfile adds the shared profile in path to the custom profiles,
// replacing a custom profile of the same name.
func importProfile(path, profilesPath string) (string, error) {
	p, err := project.ImportProfile(path)
	if err != nil {
		return "", fmt.Errorf("failed to import profile %s: %w", path, err)
	}
	if _, builtIn := model.FindProfile(p.Name); builtIn {
		return "", fmt.Errorf("profile %q would shadow a built-in profile", p.Name)
	}
	custom, err := project.LoadCustomProfiles(profilesPath)
	if err != nil {
		return "", err
	}
	replaced := false
	for i := range custom {
		if custom[i].Name == p.Name {
			custom[i] = p
			replaced = true
		}
	}
	if !replaced {
		custom = append(custom, p)
	}
	return p.Name, project.SaveCustomProfiles(profilesPath, custom)
}

func exportProfile(name, path, profilesPath string) error {
	if name == "" {
		return fmt.Errorf("-export-profile needs -profile")
	}
	custom, err := project.LoadCustomProfiles(profilesPath)
	if err != nil {
		return err
	}
	p, err := project.ResolveProfile(name, custom)
	if err != nil {
		return err
	}
	return project.ExportProfile(path, p)
}

// importCatalog merges the catalog in path into the catalog file and
// returns the number of cable types added.
func importCatalog(path, catalogPath string) (int, error) {
	existing, err := project.LoadCatalog(catalogPath)
	if err != nil {
		return 0, err
	}
	before := len(existing.Cables)
	merged, err := project.ImportCatalog(path, existing)
	if err != nil {
		return 0, fmt.Errorf("failed to import catalog %s: %w", path, err)
	}
	if err := project.SaveCatalog(catalogPath, merged); err != nil {
		return 0, err
	}
	return len(merged.Cables) - before, nil
}

// lookupCableType finds a catalog entry by name, then by ID.
func lookupCableType(catalogPath, key string) (model.CableSpec, error) {
	catalog, err := project.LoadCatalog(catalogPath)
	if err != nil {
		return model.CableSpec{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	spec := catalog.FindByName(key)
	if spec == nil {
		spec = catalog.FindByID(key)
	}
	if spec == nil {
		return model.CableSpec{}, fmt.Errorf("unknown cable type %q (catalog has: %s)", key, strings.Join(catalog.Names(), ", "))
	}
	return *spec, nil
}
