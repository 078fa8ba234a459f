// Package pathfind implements grid searches over a grid.VoxelGrid: 3D jump
// point search, its any-angle Theta variant, a plain A* reference search,
// Bresenham line of sight and string-pull path smoothing.
package pathfind

import (
	"errors"
	"fmt"

	"github.com/piwi3910/cablerouter/internal/grid"
)

var (
	// ErrNoEndpoints is returned when the grid has no start or no goal set.
	ErrNoEndpoints = errors.New("start and goal must be set before searching")
	// ErrBlockedEndpoint is returned when the start or goal cell is an obstacle.
	ErrBlockedEndpoint = errors.New("start or goal cell is an obstacle")
	// ErrTooFewWaypoints is returned when smoothing a path of fewer than two cells.
	ErrTooFewWaypoints = errors.New("path needs at least two waypoints")
)

// Result describes one finished search.
type Result struct {
	Found    bool
	Path     []grid.Index // start to goal inclusive; nil when not found
	Cost     float64      // G of the goal node
	Expanded int          // nodes popped and closed
	Pushed   int          // entries pushed onto OPEN
}

// Searcher is implemented by every grid search in this package.
type Searcher interface {
	Search() (Result, error)
}

// searchState is the per-search bookkeeping shared by every algorithm. The
// grid carries G, F and Parent; OPEN and CLOSED live here so a grid can be
// searched again after ResetAll.
type searchState struct {
	grid    *grid.VoxelGrid
	start   grid.NodeID
	goal    grid.NodeID
	goalIdx grid.Index

	open   openList
	closed []bool

	expanded int
	pushed   int
}

// prepare resets the grid and the bookkeeping for a fresh run.
func (s *searchState) prepare() error {
	startIdx, ok := s.grid.Start()
	if !ok {
		return ErrNoEndpoints
	}
	goalIdx, ok := s.grid.Goal()
	if !ok {
		return ErrNoEndpoints
	}
	if s.grid.IsObstacle(startIdx) || s.grid.IsObstacle(goalIdx) {
		return fmt.Errorf("%w: start %v goal %v", ErrBlockedEndpoint, startIdx, goalIdx)
	}

	s.grid.ResetAll()
	s.start = s.grid.ID(startIdx)
	s.goal = s.grid.ID(goalIdx)
	s.goalIdx = goalIdx

	if len(s.closed) != s.grid.Len() {
		s.closed = make([]bool, s.grid.Len())
	} else {
		clear(s.closed)
	}
	s.open.clear()
	s.expanded, s.pushed = 0, 0
	return nil
}

// heuristic is the straight-line distance from a cell to the goal.
func (s *searchState) heuristic(idx grid.Index) float64 {
	return s.grid.Distance(idx, s.goalIdx)
}

func (s *searchState) push(id grid.NodeID) {
	s.open.push(id, s.grid.At(id).F)
	s.pushed++
}

// seedStart puts the start node on OPEN with F set to the heuristic.
func (s *searchState) seedStart() {
	n := s.grid.At(s.start)
	n.G = 0
	n.F = s.heuristic(n.Index)
	s.push(s.start)
}

// update records parent as the predecessor of id when that lowers id's
// cost, or when id has none yet. It reports whether id changed. The start
// node never receives a parent.
func (s *searchState) update(parent, id grid.NodeID) bool {
	if id == s.start {
		return false
	}
	p := s.grid.At(parent)
	n := s.grid.At(id)
	g := p.G + s.grid.Distance(p.Index, n.Index)
	if n.HasParent() && g >= n.G {
		return false
	}
	n.G = g
	n.F = g + s.heuristic(n.Index)
	n.Parent = parent
	return true
}

// run drives the common pop loop. expand is called once per closed node.
func (s *searchState) run(expand func(grid.NodeID)) Result {
	if s.start == s.goal {
		return Result{Found: true, Path: []grid.Index{s.goalIdx}}
	}
	s.seedStart()
	for s.open.len() > 0 {
		id := s.open.pop()
		if id == s.goal {
			return s.result(true)
		}
		if s.closed[id] {
			continue
		}
		s.closed[id] = true
		s.expanded++
		expand(id)
	}
	return s.result(false)
}

func (s *searchState) result(found bool) Result {
	r := Result{Found: found, Expanded: s.expanded, Pushed: s.pushed}
	if found {
		r.Path = Reconstruct(s.grid, s.goal)
		r.Cost = s.grid.At(s.goal).G
	}
	return r
}

// Reconstruct follows parent links from id back to the root and returns
// the cells in root-to-id order.
func Reconstruct(g *grid.VoxelGrid, id grid.NodeID) []grid.Index {
	var rev []grid.Index
	for steps := 0; id != grid.NoParent && steps <= g.Len(); steps++ {
		n := g.At(id)
		rev = append(rev, n.Index)
		id = n.Parent
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}
