package model

// OptimizerProfile is a named set of ACOR refinement parameters.
type OptimizerProfile struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	IsBuiltIn      bool    `json:"is_built_in"`
	ArchiveSize    int     `json:"archive_size"`
	Candidates     int     `json:"candidates"`
	Q              float64 `json:"q"`
	Zeta           float64 `json:"zeta"`
	MaxEvaluations int     `json:"max_evaluations"`
	BoundScale     float64 `json:"bound_scale"`
}

// Built-in optimizer profiles
var OptimizerProfiles = []OptimizerProfile{
	{
		Name:           "Fast",
		Description:    "Small archive and budget for quick previews",
		IsBuiltIn:      true,
		ArchiveSize:    15,
		Candidates:     10,
		Q:              0.5,
		Zeta:           0.85,
		MaxEvaluations: 400,
		BoundScale:     1.5,
	},
	{
		Name:           "Balanced",
		Description:    "Default refinement parameters",
		IsBuiltIn:      true,
		ArchiveSize:    45,
		Candidates:     30,
		Q:              0.7,
		Zeta:           0.8,
		MaxEvaluations: 2000,
		BoundScale:     2.0,
	},
	{
		Name:           "Thorough",
		Description:    "Large budget for crowded assemblies",
		IsBuiltIn:      true,
		ArchiveSize:    60,
		Candidates:     40,
		Q:              0.3,
		Zeta:           0.9,
		MaxEvaluations: 8000,
		BoundScale:     3.0,
	},
}

// FindProfile returns the built-in profile with the given name.
func FindProfile(name string) (OptimizerProfile, bool) {
	for _, p := range OptimizerProfiles {
		if p.Name == name {
			return p, true
		}
	}
	return OptimizerProfile{}, false
}

// GetProfile returns an optimizer profile by name, or Balanced if not found.
func GetProfile(name string) OptimizerProfile {
	if p, ok := FindProfile(name); ok {
		return p
	}
	return OptimizerProfiles[1]
}

// GetProfileNames returns a list of all built-in profile names.
func GetProfileNames() []string {
	var names []string
	for _, p := range OptimizerProfiles {
		names = append(names, p.Name)
	}
	return names
}

// ApplyToSettings copies this profile's refinement parameters into the given settings.
func (p OptimizerProfile) ApplyToSettings(s *RouterSettings) {
	s.ArchiveSize = p.ArchiveSize
	s.Candidates = p.Candidates
	s.Q = p.Q
	s.Zeta = p.Zeta
	s.MaxEvaluations = p.MaxEvaluations
	s.BoundScale = p.BoundScale
	s.Profile = p.Name
}

// NewCustomProfile starts a user profile from the Balanced defaults.
func NewCustomProfile(name string) OptimizerProfile {
	p := GetProfile("Balanced")
	p.Name = name
	p.Description = ""
	p.IsBuiltIn = false
	return p
}
