package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default router settings applied to new jobs
	DefaultMapSize          int       `json:"default_map_size"`
	DefaultAlgorithm        Algorithm `json:"default_algorithm"`
	DefaultCableDiameter    float64   `json:"default_cable_diameter"`
	DefaultSampleStep       float64   `json:"default_sample_step"`
	DefaultSmooth           bool      `json:"default_smooth"`
	DefaultFallbackAStar    bool      `json:"default_fallback_astar"`
	DefaultRefine           bool      `json:"default_refine"`
	DefaultOptimizerProfile string    `json:"default_optimizer_profile"`

	// Application preferences
	RecentJobs []string `json:"recent_jobs"`
	OutputDir  string   `json:"output_dir"` // empty = next to the input file
	LogLevel   string   `json:"log_level"`  // "debug", "info", "warn", "error"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultMapSize:          defaults.MapSize,
		DefaultAlgorithm:        defaults.Algorithm,
		DefaultCableDiameter:    defaults.CableDiameter,
		DefaultSampleStep:       defaults.SampleStep,
		DefaultSmooth:           defaults.Smooth,
		DefaultFallbackAStar:    defaults.FallbackAStar,
		DefaultRefine:           defaults.Refine,
		DefaultOptimizerProfile: defaults.Profile,
		RecentJobs:              []string{},
		LogLevel:                "info",
	}
}

// ApplyToSettings copies the default values from AppConfig into a RouterSettings struct.
// The optimizer profile named in the config, if known, overrides the refinement values.
func (c AppConfig) ApplyToSettings(s *RouterSettings) {
	s.MapSize = c.DefaultMapSize
	s.Algorithm = c.DefaultAlgorithm
	s.CableDiameter = c.DefaultCableDiameter
	s.SampleStep = c.DefaultSampleStep
	s.Smooth = c.DefaultSmooth
	s.FallbackAStar = c.DefaultFallbackAStar
	s.Refine = c.DefaultRefine
	if p, ok := FindProfile(c.DefaultOptimizerProfile); ok {
		p.ApplyToSettings(s)
	}
}

// AddRecentJob moves path to the front of the recent list, keeping at most limit entries.
func (c *AppConfig) AddRecentJob(path string, limit int) {
	jobs := []string{path}
	for _, p := range c.RecentJobs {
		if p != path {
			jobs = append(jobs, p)
		}
	}
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	c.RecentJobs = jobs
}
