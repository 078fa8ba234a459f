package pathfind

import "github.com/piwi3910/cablerouter/internal/grid"

// Visible reports whether no obstacle lies strictly between two cells on
// the 3D Bresenham line joining them. The endpoints themselves are not
// tested. The walk always starts from the lexicographically smaller
// endpoint, so Visible(g, a, b) == Visible(g, b, a).
func Visible(g *grid.VoxelGrid, a, b grid.Index) bool {
	clear := true
	walkLine(a, b, func(c grid.Index) bool {
		if g.IsObstacle(c) {
			clear = false
			return false
		}
		return true
	})
	return clear
}

// Line returns the cells strictly between a and b visited by the walk
// Visible performs, ordered from the smaller endpoint.
func Line(a, b grid.Index) []grid.Index {
	var cells []grid.Index
	walkLine(a, b, func(c grid.Index) bool {
		cells = append(cells, c)
		return true
	})
	return cells
}

// walkLine calls visit for every intermediate cell until visit returns false.
// The dominant axis is the one with the largest absolute delta; ties go to
// I, then J, then K.
func walkLine(a, b grid.Index, visit func(grid.Index) bool) {
	if b.Less(a) {
		a, b = b, a
	}
	p := [3]int{a.I, a.J, a.K}
	q := [3]int{b.I, b.J, b.K}

	var delta, step [3]int
	for axis := range p {
		delta[axis] = abs(q[axis] - p[axis])
		step[axis] = 1
		if q[axis] < p[axis] {
			step[axis] = -1
		}
	}

	major := 0
	for axis := 1; axis < 3; axis++ {
		if delta[axis] > delta[major] {
			major = axis
		}
	}
	minor1, minor2 := (major+1)%3, (major+2)%3
	if minor1 > minor2 {
		minor1, minor2 = minor2, minor1
	}

	err1 := 2*delta[minor1] - delta[major]
	err2 := 2*delta[minor2] - delta[major]
	for p[major] != q[major] {
		p[major] += step[major]
		if err1 >= 0 {
			p[minor1] += step[minor1]
			err1 -= 2 * delta[major]
		}
		if err2 >= 0 {
			p[minor2] += step[minor2]
			err2 -= 2 * delta[major]
		}
		err1 += 2 * delta[minor1]
		err2 += 2 * delta[minor2]

		if p == q {
			return
		}
		if !visit(grid.Index{I: p[0], J: p[1], K: p[2]}) {
			return
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
