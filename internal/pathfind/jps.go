package pathfind

import "github.com/piwi3910/cablerouter/internal/grid"

// Options tunes a jump point search.
type Options struct {
	// AnyAngle lets a node take its expander's parent as its own parent
	// whenever the two can see each other (Theta behaviour).
	AnyAngle bool
	// PruneDiagonals stops diagonal walks only at cells where one of the
	// component axes has a forced neighbour. Off, every diagonal step is a
	// jump point.
	PruneDiagonals bool
}

// JumpPointSearch runs 3D jump point search between the grid's start and
// goal cells. A JumpPointSearch can be reused: each Search starts from a
// fully reset grid.
type JumpPointSearch struct {
	searchState
	opts Options
}

// NewJPS returns a jump point search over g.
func NewJPS(g *grid.VoxelGrid, opts Options) *JumpPointSearch {
	return &JumpPointSearch{searchState: searchState{grid: g}, opts: opts}
}

// NewTheta returns a jump point search with any-angle parent updates.
func NewTheta(g *grid.VoxelGrid, opts Options) *JumpPointSearch {
	opts.AnyAngle = true
	return NewJPS(g, opts)
}

// Search finds a path from start to goal. A start equal to the goal
// succeeds with a one-cell path.
func (s *JumpPointSearch) Search() (Result, error) {
	if err := s.prepare(); err != nil {
		return Result{}, err
	}
	return s.run(func(id grid.NodeID) {
		for _, d := range expansionOrder {
			s.jump(id, d)
		}
	}), nil
}

// jump walks from origin along d until it leaves the grid, hits an
// obstacle or a closed cell, or reaches a jump point. Each cell passed on
// the way is closed. Diagonal walks relax every cell they pass and probe
// its sub-directions before moving on.
func (s *JumpPointSearch) jump(origin grid.NodeID, d Direction) {
	cur := s.grid.At(origin).Index
	diagonal := d.Family() != Orthogonal
	for {
		next := cur.Add(d.Step())
		if !s.grid.Free(next) {
			return
		}
		id := s.grid.ID(next)
		if s.closed[id] {
			return
		}
		if id == s.goal || s.forced(next, d) {
			s.relax(origin, id)
			return
		}
		if diagonal {
			s.update(origin, id)
			for _, sub := range d.subJumps() {
				s.jump(id, sub)
			}
		}
		s.closed[id] = true
		cur = next
	}
}

// relax offers from as the predecessor of a jump point and queues it when
// its cost improves. With AnyAngle, from's own parent is preferred when it
// can see the jump point directly.
func (s *JumpPointSearch) relax(from, id grid.NodeID) {
	parent := from
	if s.opts.AnyAngle {
		if p := s.grid.At(from).Parent; p != grid.NoParent &&
			Visible(s.grid, s.grid.At(p).Index, s.grid.At(id).Index) {
			parent = p
		}
	}
	if s.update(parent, id) {
		s.push(id)
	}
}

// forced reports whether a walk along d must stop at cell at.
func (s *JumpPointSearch) forced(at grid.Index, d Direction) bool {
	if d.Family() == Orthogonal {
		return s.forcedAlong(at, d)
	}
	if !s.opts.PruneDiagonals {
		return true
	}
	for _, c := range d.components() {
		if s.forcedAlong(at, c) {
			return true
		}
	}
	return false
}

// forcedAlong applies the perpendicular probe table for an orthogonal
// direction: at has a forced neighbour when a probed cell is blocked and
// the cell one step further along d from it is free.
func (s *JumpPointSearch) forcedAlong(at grid.Index, d Direction) bool {
	for _, off := range collisionOffsets[d.axis()] {
		probe := at.Add(off)
		beyond := probe.Add(d.Step())
		if !s.grid.InBounds(probe) || !s.grid.InBounds(beyond) {
			continue
		}
		if s.grid.IsObstacle(probe) && !s.grid.IsObstacle(beyond) {
			return true
		}
	}
	return false
}
