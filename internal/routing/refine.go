package routing

import (
	"fmt"
	"log/slog"

	"github.com/piwi3910/cablerouter/internal/collision"
	"github.com/piwi3910/cablerouter/internal/engine"
	"github.com/piwi3910/cablerouter/internal/pathfind"
	"gonum.org/v1/gonum/spatial/r3"
)

// Refinement is the outcome of nudging a polyline's interior points.
type Refinement struct {
	Points      []r3.Vec
	InitialCost float64
	Cost        float64
	Evaluations int
	Generations int
	Converged   bool
}

// Refine runs ACOR over offsets of the interior points of a polyline,
// bounded by ±BoundScale×diameter per axis and minimizing the collision
// cost. The endpoints never move and displaced points stay inside the
// grid. The unmodified polyline seeds the archive, so the result never
// costs more than the input.
func (r *Router) Refine(points []r3.Vec, diameter float64) (Refinement, error) {
	if len(points) < 2 {
		return Refinement{}, fmt.Errorf("failed to refine: %w", pathfind.ErrTooFewWaypoints)
	}
	sampler := collision.NewSampler(r.Grid, diameter, r.Settings)
	initial, err := sampler.Cost(points)
	if err != nil {
		return Refinement{}, err
	}

	ref := Refinement{
		Points:      append([]r3.Vec(nil), points...),
		InitialCost: initial,
		Cost:        initial,
		Converged:   initial == 0,
	}
	interior := len(points) - 2
	if interior == 0 || initial == 0 {
		return ref, nil
	}

	bound := r.Settings.BoundScale * sampler.Diameter
	cfg := engine.ACORConfig{
		ArchiveSize:    r.Settings.ArchiveSize,
		Candidates:     r.Settings.Candidates,
		Q:              r.Settings.Q,
		Zeta:           r.Settings.Zeta,
		MaxEvaluations: r.Settings.MaxEvaluations,
		Lower:          -bound,
		Upper:          bound,
		Seed:           r.Settings.Seed,
	}
	objective := func(x []float64) (float64, error) {
		return sampler.Cost(r.applyOffsets(points, x))
	}
	opt, err := engine.NewACOR(3*interior, cfg, objective)
	if err != nil {
		return Refinement{}, err
	}
	if err := opt.SetInitial(make([]float64, 3*interior)); err != nil {
		return Refinement{}, err
	}

	res := opt.Optimize()
	ref.Points = r.applyOffsets(points, res.Best.X)
	ref.Cost = res.Best.Fitness
	ref.Evaluations = res.Evaluations
	ref.Generations = res.Generations
	ref.Converged = res.Converged

	r.logger.Debug("refinement finished",
		slog.Int("interior", interior),
		slog.Float64("initial_cost", initial),
		slog.Float64("cost", ref.Cost),
		slog.Int("evaluations", ref.Evaluations),
		slog.Int("generations", ref.Generations),
	)
	return ref, nil
}

// applyOffsets decodes an optimizer vector: interior point i moves by
// x[3i], x[3i+1], x[3i+2] and is clamped into the grid bounds.
func (r *Router) applyOffsets(points []r3.Vec, x []float64) []r3.Vec {
	out := append([]r3.Vec(nil), points...)
	bounds := r.Grid.Bounds()
	for i := 1; i < len(points)-1; i++ {
		o := x[3*(i-1) : 3*(i-1)+3]
		out[i] = bounds.Clamp(r3.Add(points[i], r3.Vec{X: o[0], Y: o[1], Z: o[2]}))
	}
	return out
}
