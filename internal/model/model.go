package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Role identifies where a terminal sits along a cable.
type Role int

const (
	RoleStart  Role = iota // First terminal of the cable
	RoleMiddle             // Pass-through waypoint
	RoleEnd                // Last terminal of the cable
)

func (r Role) String() string {
	switch r {
	case RoleStart:
		return "Start"
	case RoleEnd:
		return "End"
	default:
		return "Middle"
	}
}

// Terminal is a fixed point the cable must pass through. Direction is the
// integer grid step along which the connector exits; it is used to carve
// the terminal free of surrounding obstacles. A zero direction means the
// terminal cell alone is cleared.
type Terminal struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Position  r3.Vec `json:"position"`
	Direction [3]int `json:"direction"`
}

func NewTerminal(name string, role Role, pos r3.Vec, dir [3]int) Terminal {
	return Terminal{
		ID:        uuid.New().String()[:8],
		Name:      name,
		Role:      role,
		Position:  pos,
		Direction: dir,
	}
}

// Cable is an ordered list of terminals plus the cable's physical size.
type Cable struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Diameter  float64    `json:"diameter"` // mm
	Terminals []Terminal `json:"terminals"`
}

func NewCable(label string, diameter float64, terminals ...Terminal) Cable {
	return Cable{
		ID:        uuid.New().String()[:8],
		Label:     label,
		Diameter:  diameter,
		Terminals: terminals,
	}
}

// Validate checks that the cable can be routed: at least two terminals,
// a positive diameter and finite coordinates everywhere.
func (c Cable) Validate() error {
	if len(c.Terminals) < 2 {
		return fmt.Errorf("cable %q needs at least 2 terminals, has %d", c.Label, len(c.Terminals))
	}
	if !(c.Diameter > 0) || math.IsInf(c.Diameter, 0) {
		return fmt.Errorf("cable %q has invalid diameter %v", c.Label, c.Diameter)
	}
	for _, t := range c.Terminals {
		if !IsFinite(t.Position) {
			return fmt.Errorf("cable %q terminal %q has non-finite position", c.Label, t.Name)
		}
	}
	return nil
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v r3.Vec) bool {
	for _, f := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Algorithm selects the grid search used to route each cable segment.
type Algorithm string

const (
	AlgorithmJPS   Algorithm = "jps"   // Jump point search on grid cells
	AlgorithmTheta Algorithm = "theta" // Jump point search with any-angle parents
	AlgorithmAStar Algorithm = "astar" // Plain 26-connected A*
)

// Algorithms lists every supported search in display order.
var Algorithms = []Algorithm{AlgorithmJPS, AlgorithmTheta, AlgorithmAStar}

// RouterSettings holds grid, search and refinement configuration.
type RouterSettings struct {
	// Grid
	MapSize int `json:"map_size"` // Cells per axis

	// Search
	Algorithm      Algorithm `json:"algorithm"`
	PruneDiagonals bool      `json:"prune_diagonals"` // Only stop diagonal jumps at forced neighbours
	Smooth         bool      `json:"smooth"`          // String-pull each routed segment
	FallbackAStar  bool      `json:"fallback_astar"`  // Retry with A* when a jump search misses

	// Cable geometry sampling for collision cost
	CableDiameter float64 `json:"cable_diameter"` // mm, used when a cable has none
	SampleStep    float64 `json:"sample_step"`    // mm between axis samples
	RingSamples   int     `json:"ring_samples"`   // Points around the tube per axis sample

	// Refinement (ACOR)
	Refine         bool    `json:"refine"`
	ArchiveSize    int     `json:"archive_size"`    // k
	Candidates     int     `json:"candidates"`      // m
	Q              float64 `json:"q"`               // Locality of rank weighting
	Zeta           float64 `json:"zeta"`            // Deviation scaling
	MaxEvaluations int     `json:"max_evaluations"` // Objective evaluation budget
	BoundScale     float64 `json:"bound_scale"`     // Offsets bounded by ±BoundScale*diameter
	Seed           uint64  `json:"seed"`

	// Name of the optimizer profile the refinement values came from
	Profile string `json:"profile"`
}

func DefaultSettings() RouterSettings {
	return RouterSettings{
		MapSize:        30,
		Algorithm:      AlgorithmTheta,
		PruneDiagonals: false,
		Smooth:         true,
		FallbackAStar:  true,
		CableDiameter:  8.0,
		SampleStep:     2.0,
		RingSamples:    8,
		Refine:         true,
		ArchiveSize:    45,
		Candidates:     30,
		Q:              0.7,
		Zeta:           0.8,
		MaxEvaluations: 2000,
		BoundScale:     2.0,
		Seed:           42,
		Profile:        "Balanced",
	}
}

// ErrInvalidSettings is wrapped by every RouterSettings validation failure.
var ErrInvalidSettings = errors.New("invalid router settings")

// Validate rejects settings the router cannot work with.
func (s RouterSettings) Validate() error {
	switch {
	case s.MapSize <= 0:
		return fmt.Errorf("%w: map size must be positive, got %d", ErrInvalidSettings, s.MapSize)
	case !s.Algorithm.Valid():
		return fmt.Errorf("%w: unknown algorithm %q", ErrInvalidSettings, s.Algorithm)
	case !(s.CableDiameter > 0):
		return fmt.Errorf("%w: cable diameter must be positive", ErrInvalidSettings)
	case !(s.SampleStep > 0):
		return fmt.Errorf("%w: sample step must be positive", ErrInvalidSettings)
	case s.RingSamples < 0:
		return fmt.Errorf("%w: ring samples cannot be negative", ErrInvalidSettings)
	}
	if !s.Refine {
		return nil
	}
	switch {
	case s.ArchiveSize <= 0 || s.Candidates <= 0:
		return fmt.Errorf("%w: archive size and candidates must be positive", ErrInvalidSettings)
	case !(s.Q > 0) || !(s.Zeta > 0):
		return fmt.Errorf("%w: q and zeta must be positive", ErrInvalidSettings)
	case s.MaxEvaluations <= 0:
		return fmt.Errorf("%w: evaluation budget must be positive", ErrInvalidSettings)
	case !(s.BoundScale > 0):
		return fmt.Errorf("%w: bound scale must be positive", ErrInvalidSettings)
	}
	return nil
}

// Valid reports whether a is one of the supported algorithms.
func (a Algorithm) Valid() bool {
	for _, known := range Algorithms {
		if a == known {
			return true
		}
	}
	return false
}

// Job ties everything together for save/load.
type Job struct {
	Name     string         `json:"name"`
	Bounds   Box            `json:"bounds"`
	Cables   []Cable        `json:"cables"`
	Settings RouterSettings `json:"settings"`

	// GridFingerprint identifies the obstacle grid the job was routed on.
	// Zero when unknown.
	GridFingerprint uint64 `json:"grid_fingerprint,omitempty"`
}

func NewJob() Job {
	return Job{
		Name:     "Untitled",
		Cables:   []Cable{},
		Settings: DefaultSettings(),
	}
}
