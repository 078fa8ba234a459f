package collision

import (
	"errors"
	"math"
	"testing"

	"github.com/piwi3910/cablerouter/internal/grid"
	"github.com/piwi3910/cablerouter/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func unitGrid(t *testing.T, n int) *grid.VoxelGrid {
	t.Helper()
	g, err := grid.New(model.BoxFromCorners(r3.Vec{}, r3.Vec{X: float64(n), Y: float64(n), Z: float64(n)}), n)
	require.NoError(t, err)
	return g
}

var straightLine = []r3.Vec{{X: 0.5, Y: 5.5, Z: 5.5}, {X: 9.5, Y: 5.5, Z: 5.5}}

func TestSamplesAlongAxis(t *testing.T) {
	s := &Sampler{Grid: unitGrid(t, 10), Diameter: 0, Step: 1}
	samples, err := s.Samples(straightLine)
	require.NoError(t, err)
	require.Len(t, samples, 10)
	for i, smp := range samples {
		assert.True(t, smp.Axis)
		assert.InDelta(t, 0.5+float64(i), smp.Position.X, 1e-12)
		assert.Equal(t, 0, smp.Segment)
	}
}

func TestRingSamplesLieOnCircle(t *testing.T) {
	s := &Sampler{Grid: unitGrid(t, 10), Diameter: 2, Step: 3, Ring: 6}
	pts := []r3.Vec{{X: 1, Y: 1, Z: 1}, {X: 7, Y: 5, Z: 3}}
	samples, err := s.Samples(pts)
	require.NoError(t, err)

	dir := r3.Unit(r3.Sub(pts[1], pts[0]))
	var center r3.Vec
	for _, smp := range samples {
		if smp.Axis {
			center = smp.Position
			continue
		}
		off := r3.Sub(smp.Position, center)
		assert.InDelta(t, 1.0, r3.Norm(off), 1e-9)
		assert.InDelta(t, 0.0, r3.Dot(off, dir), 1e-9)
	}
}

func TestCostCountsObstacleSamples(t *testing.T) {
	g := unitGrid(t, 10)
	require.NoError(t, g.SetObstacle(grid.Index{I: 5, J: 5, K: 5}, true))

	s := &Sampler{Grid: g, Diameter: 2, Step: 1, Ring: 4}
	cost, err := s.Cost(straightLine)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cost)

	require.NoError(t, g.SetObstacle(grid.Index{I: 5, J: 6, K: 5}, true))
	cost, err = s.Cost(straightLine)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cost)
}

func TestCostIgnoresSamplesOutsideGrid(t *testing.T) {
	g := unitGrid(t, 4)
	s := &Sampler{Grid: g, Diameter: 0, Step: 0.5}
	cost, err := s.Cost([]r3.Vec{{X: -5, Y: 1, Z: 1}, {X: 9, Y: 1, Z: 1}})
	require.NoError(t, err)
	assert.Zero(t, cost)
}

func TestSamplesRejectBadPolylines(t *testing.T) {
	s := &Sampler{Grid: unitGrid(t, 4), Step: 1}
	_, err := s.Samples([]r3.Vec{{X: 1}})
	assert.True(t, errors.Is(err, ErrTooFewPoints))

	_, err = s.Cost([]r3.Vec{{X: 1}, {X: math.NaN()}})
	assert.True(t, errors.Is(err, ErrNonFinite))
}

func TestSamplesHandleRepeatedPoints(t *testing.T) {
	s := &Sampler{Grid: unitGrid(t, 4), Diameter: 1, Step: 1, Ring: 4}
	samples, err := s.Samples([]r3.Vec{{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}})
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.True(t, samples[0].Axis)
}

func TestReportDeduplicatesPerCell(t *testing.T) {
	g := unitGrid(t, 10)
	obstacle := grid.Index{I: 5, J: 5, K: 5}
	require.NoError(t, g.SetObstacle(obstacle, true))

	s := &Sampler{Grid: g, Step: 0.25}
	cost, err := s.Cost(straightLine)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cost)

	hits, err := s.Report(straightLine)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, obstacle, hits[0].Cell)
	assert.Equal(t, 0, hits[0].Segment)

	warnings := FormatWarnings("W1", hits)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `"W1"`)
	assert.Contains(t, warnings[0], "(5,5,5)")
}

func TestNewSamplerFallsBackToSettingsDiameter(t *testing.T) {
	settings := model.DefaultSettings()
	s := NewSampler(unitGrid(t, 4), 0, settings)
	assert.Equal(t, settings.CableDiameter, s.Diameter)
	assert.Equal(t, settings.SampleStep, s.Step)
	assert.Equal(t, settings.RingSamples, s.Ring)

	s = NewSampler(unitGrid(t, 4), 3.5, settings)
	assert.Equal(t, 3.5, s.Diameter)
}
