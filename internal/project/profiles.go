package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/cablerouter/internal/model"
)

// DefaultProfilesPath returns the default file path for custom optimizer
// profiles, ~/.cablerouter/profiles.json.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.OptimizerProfile) error {
	return writeJSON(path, profiles)
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.OptimizerProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.OptimizerProfile{}, nil
		}
		return nil, err
	}

	var profiles []model.OptimizerProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}

	// Loaded profiles are never built-in
	for i := range profiles {
		profiles[i].IsBuiltIn = false
	}
	return profiles, nil
}

// ExportProfile exports a single profile to a JSON file (for sharing).
func ExportProfile(path string, profile model.OptimizerProfile) error {
	profile.IsBuiltIn = false
	return writeJSON(path, profile)
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (model.OptimizerProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.OptimizerProfile{}, err
	}

	var profile model.OptimizerProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.OptimizerProfile{}, err
	}

	profile.IsBuiltIn = false
	if profile.Name == "" {
		return model.OptimizerProfile{}, errors.New("imported profile has no name")
	}
	return profile, nil
}

// ResolveProfile finds a profile by name, checking built-ins first and
// then the custom list.
func ResolveProfile(name string, custom []model.OptimizerProfile) (model.OptimizerProfile, error) {
	if p, ok := model.FindProfile(name); ok {
		return p, nil
	}
	for _, p := range custom {
		if p.Name == name {
			return p, nil
		}
	}
	return model.OptimizerProfile{}, fmt.Errorf("unknown optimizer profile %q", name)
}
