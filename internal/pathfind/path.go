package pathfind

import (
	"fmt"

	"github.com/piwi3910/cablerouter/internal/grid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Smooth string-pulls a path: starting from the goal, each kept waypoint
// links to the farthest earlier waypoint it can still see. The first and
// last cells are always kept and consecutive output cells are mutually
// visible.
func Smooth(g *grid.VoxelGrid, path []grid.Index) ([]grid.Index, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewWaypoints, len(path))
	}
	out := []grid.Index{path[len(path)-1]}
	anchor := len(path) - 1
	for anchor > 0 {
		next := anchor - 1
		for next > 0 && Visible(g, path[anchor], path[next-1]) {
			next--
		}
		out = append(out, path[next])
		anchor = next
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Length sums the center-to-center distances along a path.
func Length(g *grid.VoxelGrid, path []grid.Index) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += g.Distance(path[i-1], path[i])
	}
	return total
}

// Centers maps each cell of a path to its world-space center.
func Centers(g *grid.VoxelGrid, path []grid.Index) []r3.Vec {
	pts := make([]r3.Vec, len(path))
	for i, idx := range path {
		pts[i] = g.Center(idx)
	}
	return pts
}

// Clear reports whether every consecutive pair on the path can see each
// other and no waypoint is an obstacle.
func Clear(g *grid.VoxelGrid, path []grid.Index) bool {
	for i, idx := range path {
		if !g.Free(idx) {
			return false
		}
		if i > 0 && !Visible(g, path[i-1], idx) {
			return false
		}
	}
	return true
}
