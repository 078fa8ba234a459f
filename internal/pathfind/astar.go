package pathfind

import "github.com/piwi3910/cablerouter/internal/grid"

// AStar is a plain 26-connected A* search. It is complete on any grid and
// serves as the fallback when a jump search misses a path.
type AStar struct {
	searchState
}

// NewAStar returns an A* search over g.
func NewAStar(g *grid.VoxelGrid) *AStar {
	return &AStar{searchState: searchState{grid: g}}
}

// Search finds a shortest 26-connected path from start to goal.
func (a *AStar) Search() (Result, error) {
	if err := a.prepare(); err != nil {
		return Result{}, err
	}
	return a.run(func(id grid.NodeID) {
		cur := a.grid.At(id).Index
		for _, d := range expansionOrder {
			next := cur.Add(d.Step())
			if !a.grid.Free(next) {
				continue
			}
			nid := a.grid.ID(next)
			if a.closed[nid] {
				continue
			}
			if a.update(id, nid) {
				a.push(nid)
			}
		}
	}), nil
}
