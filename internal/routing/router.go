// Package routing turns cables into routed polylines: it places terminals
// on the voxel grid, searches each terminal-to-terminal segment, smooths
// the result and optionally refines the waypoints against the collision
// cost.
package routing

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/piwi3910/cablerouter/internal/collision"
	"github.com/piwi3910/cablerouter/internal/grid"
	"github.com/piwi3910/cablerouter/internal/model"
	"github.com/piwi3910/cablerouter/internal/pathfind"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoPath is returned when a segment has no path between its terminals.
var ErrNoPath = errors.New("no path between terminals")

// Router routes cables through one grid. Terminal clearing carves the
// grid, so cables routed later see the terminals of earlier ones as free.
type Router struct {
	Grid     *grid.VoxelGrid
	Settings model.RouterSettings
	logger   *slog.Logger
}

// New returns a router after validating its settings.
func New(g *grid.VoxelGrid, settings model.RouterSettings) (*Router, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: grid is required", model.ErrInvalidSettings)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Router{
		Grid:     g,
		Settings: settings,
		logger:   slog.Default().With(slog.String("component", "routing")),
	}, nil
}

// WithLogger replaces the router's logger.
func (r *Router) WithLogger(logger *slog.Logger) *Router {
	r.logger = logger.With(slog.String("component", "routing"))
	return r
}

// Segment is the routed path between two consecutive terminals.
type Segment struct {
	From, To  string
	Algorithm model.Algorithm // Search that produced the path
	Fallback  bool            // A* was used after the configured search missed
	Raw       []grid.Index    // Search output
	Cells     []grid.Index    // Smoothed path, or Raw when smoothing is off
	Expanded  int
}

// RouteResult is everything known about one routed cable.
type RouteResult struct {
	Cable         model.Cable
	Segments      []Segment
	Raw           []grid.Index // Concatenated search output
	Waypoints     []r3.Vec     // Cell centers of the smoothed route
	Refined       []r3.Vec     // Waypoints after refinement; equals Waypoints when off
	Length        float64
	RefinedLength float64
	Cost          float64 // Collision cost of Waypoints
	RefinedCost   float64 // Collision cost of Refined
	Evaluations   int
	Collisions    []collision.Hit
	Warnings      []string
	Algorithm     model.Algorithm
	FallbackUsed  bool
}

// Route places the cable's terminals and routes every consecutive pair.
func (r *Router) Route(cable model.Cable) (RouteResult, error) {
	if err := cable.Validate(); err != nil {
		return RouteResult{}, err
	}
	cells, err := r.placeTerminals(cable)
	if err != nil {
		return RouteResult{}, err
	}

	result := RouteResult{Cable: cable, Algorithm: r.Settings.Algorithm}
	var route []grid.Index
	for i := 0; i+1 < len(cells); i++ {
		from, to := cable.Terminals[i], cable.Terminals[i+1]
		seg, err := r.routeSegment(cells[i], cells[i+1])
		if err != nil {
			return RouteResult{}, fmt.Errorf("cable %q from %q to %q: %w", cable.Label, from.Name, to.Name, err)
		}
		seg.From, seg.To = from.Name, to.Name
		result.FallbackUsed = result.FallbackUsed || seg.Fallback
		result.Segments = append(result.Segments, seg)

		// Consecutive segments share their terminal cell.
		skip := 0
		if i > 0 {
			skip = 1
		}
		result.Raw = append(result.Raw, seg.Raw[skip:]...)
		route = append(route, seg.Cells[skip:]...)
	}

	result.Waypoints = pathfind.Centers(r.Grid, route)
	result.Length = polylineLength(result.Waypoints)

	sampler := collision.NewSampler(r.Grid, cable.Diameter, r.Settings)
	if len(result.Waypoints) >= 2 {
		if result.Cost, err = sampler.Cost(result.Waypoints); err != nil {
			return RouteResult{}, err
		}
	}
	result.Refined, result.RefinedCost = result.Waypoints, result.Cost

	if r.Settings.Refine && len(result.Waypoints) > 2 && result.Cost > 0 {
		ref, err := r.Refine(result.Waypoints, cable.Diameter)
		if err != nil {
			return RouteResult{}, fmt.Errorf("failed to refine cable %q: %w", cable.Label, err)
		}
		result.Refined, result.RefinedCost, result.Evaluations = ref.Points, ref.Cost, ref.Evaluations
	}
	result.RefinedLength = polylineLength(result.Refined)

	if len(result.Refined) >= 2 {
		if result.Collisions, err = sampler.Report(result.Refined); err != nil {
			return RouteResult{}, err
		}
		result.Warnings = collision.FormatWarnings(cable.Label, result.Collisions)
	}

	r.logger.Info("cable routed",
		slog.String("cable", cable.Label),
		slog.Int("segments", len(result.Segments)),
		slog.Int("waypoints", len(result.Refined)),
		slog.Float64("length", result.RefinedLength),
		slog.Float64("cost", result.Cost),
		slog.Float64("refined_cost", result.RefinedCost),
		slog.Bool("fallback", result.FallbackUsed),
	)
	return result, nil
}

// RouteAll routes cables in order, continuing past failures. The returned
// error joins every per-cable failure.
func (r *Router) RouteAll(cables []model.Cable) ([]RouteResult, error) {
	var results []RouteResult
	var errs []error
	for _, c := range cables {
		res, err := r.Route(c)
		if err != nil {
			r.logger.Warn("cable not routed", slog.String("cable", c.Label), slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// placeTerminals maps every terminal to its cell and clears it, plus the
// obstacle run along the terminal's exit direction.
func (r *Router) placeTerminals(cable model.Cable) ([]grid.Index, error) {
	cells := make([]grid.Index, len(cable.Terminals))
	for i, t := range cable.Terminals {
		idx, ok := r.Grid.IndexOf(t.Position)
		if !ok {
			return nil, fmt.Errorf("cable %q terminal %q at (%.2f, %.2f, %.2f): %w",
				cable.Label, t.Name, t.Position.X, t.Position.Y, t.Position.Z, grid.ErrOutOfBounds)
		}
		cleared, err := r.Grid.ClearTerminal(idx, t.Direction)
		if err != nil {
			return nil, err
		}
		if cleared > 0 {
			r.logger.Debug("terminal cleared",
				slog.String("cable", cable.Label),
				slog.String("terminal", t.Name),
				slog.Int("cells", cleared),
			)
		}
		cells[i] = idx
	}
	return cells, nil
}

// routeSegment searches one terminal pair, falling back to A* when
// enabled, and smooths the result.
func (r *Router) routeSegment(from, to grid.Index) (Segment, error) {
	if err := r.Grid.SetStart(from); err != nil {
		return Segment{}, err
	}
	if err := r.Grid.SetGoal(to); err != nil {
		return Segment{}, err
	}

	alg := r.Settings.Algorithm
	res, err := searcherFor(r.Grid, alg, r.Settings.PruneDiagonals).Search()
	if err != nil {
		return Segment{}, err
	}
	seg := Segment{Algorithm: alg, Expanded: res.Expanded}

	if !res.Found && r.Settings.FallbackAStar && alg != model.AlgorithmAStar {
		r.logger.Warn("jump search missed, retrying with A*",
			slog.String("algorithm", string(alg)),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
		if res, err = pathfind.NewAStar(r.Grid).Search(); err != nil {
			return Segment{}, err
		}
		seg.Algorithm, seg.Fallback = model.AlgorithmAStar, true
		seg.Expanded += res.Expanded
	}
	if !res.Found {
		return Segment{}, ErrNoPath
	}

	seg.Raw = res.Path
	seg.Cells = res.Path
	if r.Settings.Smooth && len(res.Path) >= 2 {
		if seg.Cells, err = pathfind.Smooth(r.Grid, res.Path); err != nil {
			return Segment{}, err
		}
	}
	r.logger.Debug("segment routed",
		slog.String("algorithm", string(seg.Algorithm)),
		slog.Int("raw", len(seg.Raw)),
		slog.Int("waypoints", len(seg.Cells)),
		slog.Int("expanded", seg.Expanded),
	)
	return seg, nil
}

// searcherFor builds the search named by alg.
func searcherFor(g *grid.VoxelGrid, alg model.Algorithm, prune bool) pathfind.Searcher {
	opts := pathfind.Options{PruneDiagonals: prune}
	switch alg {
	case model.AlgorithmJPS:
		return pathfind.NewJPS(g, opts)
	case model.AlgorithmAStar:
		return pathfind.NewAStar(g)
	default:
		return pathfind.NewTheta(g, opts)
	}
}

func polylineLength(points []r3.Vec) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += r3.Norm(r3.Sub(points[i], points[i-1]))
	}
	return total
}
