package pathfind

import "github.com/piwi3910/cablerouter/internal/grid"

// Family classifies a direction by how many axes it moves along.
type Family int

const (
	Orthogonal   Family = iota + 1 // one axis
	FaceDiagonal                   // two axes
	CubeDiagonal                   // three axes
)

func (f Family) String() string {
	switch f {
	case Orthogonal:
		return "orthogonal"
	case FaceDiagonal:
		return "face-diagonal"
	case CubeDiagonal:
		return "cube-diagonal"
	default:
		return "none"
	}
}

// Direction is a unit step towards one of the 26 neighbours of a cell.
type Direction struct {
	DI, DJ, DK int
}

// Step returns the direction as a grid offset.
func (d Direction) Step() grid.Index {
	return grid.Index{I: d.DI, J: d.DJ, K: d.DK}
}

// Family counts the non-zero components.
func (d Direction) Family() Family {
	n := 0
	for _, c := range [3]int{d.DI, d.DJ, d.DK} {
		if c != 0 {
			n++
		}
	}
	return Family(n)
}

// axis returns 0, 1 or 2 for an orthogonal direction along I, J or K.
func (d Direction) axis() int {
	switch {
	case d.DI != 0:
		return 0
	case d.DJ != 0:
		return 1
	default:
		return 2
	}
}

// components splits a diagonal into its orthogonal parts, in I, J, K order.
func (d Direction) components() []Direction {
	out := make([]Direction, 0, 3)
	if d.DI != 0 {
		out = append(out, Direction{DI: d.DI})
	}
	if d.DJ != 0 {
		out = append(out, Direction{DJ: d.DJ})
	}
	if d.DK != 0 {
		out = append(out, Direction{DK: d.DK})
	}
	return out
}

// faces projects a cube diagonal onto the IJ, IK and JK planes.
func (d Direction) faces() []Direction {
	return []Direction{
		{DI: d.DI, DJ: d.DJ},
		{DI: d.DI, DK: d.DK},
		{DJ: d.DJ, DK: d.DK},
	}
}

// subJumps lists the directions probed from every intermediate cell of a
// diagonal walk: the orthogonal components first, then for cube diagonals
// the three face projections.
func (d Direction) subJumps() []Direction {
	subs := d.components()
	if d.Family() == CubeDiagonal {
		subs = append(subs, d.faces()...)
	}
	return subs
}

// expansionOrder is the order a popped node is expanded in: cube
// diagonals, then face diagonals, then orthogonal steps. It decides which
// node becomes a parent when costs tie.
var expansionOrder = []Direction{
	{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {-1, 1, 1},
	{1, -1, -1}, {-1, 1, -1}, {-1, -1, 1}, {-1, -1, -1},

	{1, 1, 0}, {1, 0, 1}, {0, 1, 1},
	{1, -1, 0}, {1, 0, -1}, {0, 1, -1},
	{-1, 1, 0}, {-1, 0, 1}, {0, -1, 1},
	{-1, -1, 0}, {-1, 0, -1}, {0, -1, -1},

	{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
}

// collisionOffsets holds, per travel axis, the four perpendicular cells
// probed by the forced-neighbour test. Offsets are single-axis only.
var collisionOffsets = [3][4]grid.Index{
	{{J: 1}, {J: -1}, {K: 1}, {K: -1}},
	{{I: 1}, {I: -1}, {K: 1}, {K: -1}},
	{{I: 1}, {I: -1}, {J: 1}, {J: -1}},
}
