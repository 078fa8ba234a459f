package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuiltInProfilesMarkedCorrectly(t *testing.T) {
	for _, p := range OptimizerProfiles {
		if !p.IsBuiltIn {
			t.Errorf("built-in profile %s should have IsBuiltIn=true", p.Name)
		}
	}
}

func TestBalancedProfileMatchesDefaults(t *testing.T) {
	s := DefaultSettings()
	p := GetProfile("Balanced")
	assert.Equal(t, s.ArchiveSize, p.ArchiveSize)
	assert.Equal(t, s.Candidates, p.Candidates)
	assert.Equal(t, s.MaxEvaluations, p.MaxEvaluations)
	assert.InDelta(t, s.Q, p.Q, 1e-12)
	assert.InDelta(t, s.Zeta, p.Zeta, 1e-12)
}

func TestGetProfileFallsBackToBalanced(t *testing.T) {
	assert.Equal(t, "Balanced", GetProfile("nope").Name)
	assert.Equal(t, []string{"Fast", "Balanced", "Thorough"}, GetProfileNames())
}

func TestNewCustomProfile(t *testing.T) {
	p := NewCustomProfile("Mine")
	assert.Equal(t, "Mine", p.Name)
	assert.False(t, p.IsBuiltIn)

	s := DefaultSettings()
	p.MaxEvaluations = 50
	p.ApplyToSettings(&s)
	assert.Equal(t, 50, s.MaxEvaluations)
	assert.Equal(t, "Mine", s.Profile)
}
