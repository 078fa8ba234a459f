package routing

import (
	"time"

	"github.com/piwi3910/cablerouter/internal/grid"
	"github.com/piwi3910/cablerouter/internal/model"
	"github.com/piwi3910/cablerouter/internal/pathfind"
)

// Comparison holds the outcome of one algorithm on a fixed start and goal.
type Comparison struct {
	Algorithm      model.Algorithm
	Found          bool
	Length         float64 // Raw path length
	SmoothedLength float64
	Waypoints      int // Cells after smoothing
	Expanded       int
	Pushed         int
	Elapsed        time.Duration
}

// CompareAlgorithms runs every supported search between start and goal on
// g and returns the results in Algorithms order. This enables side-by-side
// comparison of path quality and search effort.
func CompareAlgorithms(g *grid.VoxelGrid, start, goal grid.Index, settings model.RouterSettings) ([]Comparison, error) {
	if err := g.SetStart(start); err != nil {
		return nil, err
	}
	if err := g.SetGoal(goal); err != nil {
		return nil, err
	}

	results := make([]Comparison, 0, len(model.Algorithms))
	for _, alg := range model.Algorithms {
		began := time.Now()
		res, err := searcherFor(g, alg, settings.PruneDiagonals).Search()
		if err != nil {
			return nil, err
		}
		c := Comparison{
			Algorithm: alg,
			Found:     res.Found,
			Expanded:  res.Expanded,
			Pushed:    res.Pushed,
			Elapsed:   time.Since(began),
		}
		if res.Found {
			c.Length = pathfind.Length(g, res.Path)
			c.SmoothedLength = c.Length
			c.Waypoints = len(res.Path)
			if len(res.Path) >= 2 {
				smoothed, err := pathfind.Smooth(g, res.Path)
				if err != nil {
					return nil, err
				}
				c.SmoothedLength = pathfind.Length(g, smoothed)
				c.Waypoints = len(smoothed)
			}
		}
		results = append(results, c)
	}
	return results, nil
}

// Best returns the found comparison with the shortest smoothed length.
func Best(comparisons []Comparison) (Comparison, bool) {
	var best Comparison
	ok := false
	for _, c := range comparisons {
		if c.Found && (!ok || c.SmoothedLength < best.SmoothedLength) {
			best, ok = c, true
		}
	}
	return best, ok
}
