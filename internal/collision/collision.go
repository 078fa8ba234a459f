// Package collision scores a cable polyline against a voxel grid by
// sampling points on the tube the cable sweeps and counting how many land
// in obstacle cells.
package collision

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/cablerouter/internal/grid"
	"github.com/piwi3910/cablerouter/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrTooFewPoints is returned for polylines with fewer than two points.
	ErrTooFewPoints = errors.New("polyline needs at least two points")
	// ErrNonFinite is returned when a polyline point holds NaN or Inf.
	ErrNonFinite = errors.New("polyline point is not finite")
)

// Sampler places samples along the tube a cable of Diameter sweeps: one
// axis sample every Step along each segment, and Ring samples on the
// circle of radius Diameter/2 perpendicular to the segment around each
// axis sample.
type Sampler struct {
	Grid     *grid.VoxelGrid
	Diameter float64
	Step     float64
	Ring     int
}

// NewSampler builds a sampler from router settings.
func NewSampler(g *grid.VoxelGrid, diameter float64, settings model.RouterSettings) *Sampler {
	if !(diameter > 0) {
		diameter = settings.CableDiameter
	}
	return &Sampler{
		Grid:     g,
		Diameter: diameter,
		Step:     settings.SampleStep,
		Ring:     settings.RingSamples,
	}
}

// Sample is one probe position on the tube.
type Sample struct {
	Segment  int // Index of the polyline segment the sample belongs to
	Position r3.Vec
	Axis     bool // On the cable axis rather than the ring
}

// Hit is a sample that landed in an obstacle cell.
type Hit struct {
	Segment  int
	Position r3.Vec
	Cell     grid.Index
}

// Samples returns every probe point for the polyline in walk order.
func (s *Sampler) Samples(points []r3.Vec) ([]Sample, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}
	for i, p := range points {
		if !model.IsFinite(p) {
			return nil, fmt.Errorf("%w: point %d", ErrNonFinite, i)
		}
	}

	step := s.Step
	if !(step > 0) {
		step = s.Grid.CellSize()
	}
	radius := s.Diameter / 2

	var out []Sample
	for seg := 0; seg+1 < len(points); seg++ {
		a, b := points[seg], points[seg+1]
		span := r3.Sub(b, a)
		length := r3.Norm(span)
		if length == 0 {
			continue
		}
		dir := r3.Scale(1/length, span)
		u, v := perpendicular(dir)
		for t := 0.0; t < length; t += step {
			out = s.appendTube(out, seg, r3.Add(a, r3.Scale(t, dir)), u, v, radius)
		}
	}

	// Close the tube at the final point.
	last := len(points) - 1
	span := r3.Sub(points[last], points[last-1])
	if r3.Norm(span) == 0 {
		return append(out, Sample{Segment: last - 1, Position: points[last], Axis: true}), nil
	}
	u, v := perpendicular(r3.Unit(span))
	return s.appendTube(out, last-1, points[last], u, v, radius), nil
}

func (s *Sampler) appendTube(out []Sample, seg int, center, u, v r3.Vec, radius float64) []Sample {
	out = append(out, Sample{Segment: seg, Position: center, Axis: true})
	if radius <= 0 {
		return out
	}
	for n := 0; n < s.Ring; n++ {
		theta := 2 * math.Pi * float64(n) / float64(s.Ring)
		offset := r3.Add(r3.Scale(math.Cos(theta)*radius, u), r3.Scale(math.Sin(theta)*radius, v))
		out = append(out, Sample{Segment: seg, Position: r3.Add(center, offset)})
	}
	return out
}

// perpendicular returns two unit vectors orthogonal to dir and to each other.
func perpendicular(dir r3.Vec) (r3.Vec, r3.Vec) {
	helper := r3.Vec{X: 1}
	if math.Abs(dir.X) >= 0.9 {
		helper = r3.Vec{Y: 1}
	}
	u := r3.Unit(r3.Cross(dir, helper))
	return u, r3.Cross(dir, u)
}

// Cost counts samples inside obstacle cells. Samples outside the grid do
// not count.
func (s *Sampler) Cost(points []r3.Vec) (float64, error) {
	samples, err := s.Samples(points)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, smp := range samples {
		if _, ok := s.obstacleAt(smp.Position); ok {
			count++
		}
	}
	return float64(count), nil
}

// Report lists obstacle hits, at most one per segment and cell.
func (s *Sampler) Report(points []r3.Vec) ([]Hit, error) {
	samples, err := s.Samples(points)
	if err != nil {
		return nil, err
	}
	var hits []Hit
	for _, smp := range samples {
		if idx, ok := s.obstacleAt(smp.Position); ok {
			hits = append(hits, Hit{Segment: smp.Segment, Position: smp.Position, Cell: idx})
		}
	}
	return deduplicateHits(hits), nil
}

func (s *Sampler) obstacleAt(p r3.Vec) (grid.Index, bool) {
	idx, ok := s.Grid.IndexOf(p)
	if !ok || !s.Grid.IsObstacle(idx) {
		return grid.Index{}, false
	}
	return idx, true
}

// deduplicateHits keeps the first hit per (segment, cell) pair.
func deduplicateHits(hits []Hit) []Hit {
	type key struct {
		segment int
		cell    grid.Index
	}
	seen := make(map[key]bool)
	var result []Hit

	for _, h := range hits {
		k := key{h.Segment, h.Cell}
		if !seen[k] {
			seen[k] = true
			result = append(result, h)
		}
	}
	return result
}

// FormatWarnings produces human-readable warning messages from hits.
func FormatWarnings(label string, hits []Hit) []string {
	var warnings []string
	for _, h := range hits {
		warnings = append(warnings, fmt.Sprintf(
			"Cable %q segment %d: passes through obstacle cell %v at (%.1f, %.1f, %.1f)",
			label, h.Segment+1, h.Cell, h.Position.X, h.Position.Y, h.Position.Z,
		))
	}
	return warnings
}
