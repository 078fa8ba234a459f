package grid

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Voxelize marks the cell under every in-range point as an obstacle.
// Points outside the grid are skipped and counted.
func (g *VoxelGrid) Voxelize(points []r3.Vec) (marked, skipped int) {
	for _, p := range points {
		idx, ok := g.IndexOf(p)
		if !ok {
			skipped++
			continue
		}
		n := &g.nodes[g.ID(idx)]
		if !n.Obstacle {
			n.Obstacle = true
			marked++
		}
	}
	return marked, skipped
}

// ClearTerminal frees the terminal cell, then walks along dir freeing
// obstacle cells until it meets a cell that was already free or leaves
// the grid. It returns the number of cells it freed. A zero dir clears
// the terminal cell only.
func (g *VoxelGrid) ClearTerminal(idx Index, dir [3]int) (int, error) {
	n, err := g.Node(idx)
	if err != nil {
		return 0, err
	}
	cleared := 0
	if n.Obstacle {
		n.Obstacle = false
		cleared++
	}
	step := Index{I: sign(dir[0]), J: sign(dir[1]), K: sign(dir[2])}
	if step == (Index{}) {
		return cleared, nil
	}
	for cur := idx.Add(step); g.InBounds(cur); cur = cur.Add(step) {
		next := &g.nodes[g.ID(cur)]
		if !next.Obstacle {
			break
		}
		next.Obstacle = false
		cleared++
	}
	return cleared, nil
}

// MarkBox flags every cell whose center lies inside the given region.
// It is the rasterization used for box-shaped obstacles.
func (g *VoxelGrid) MarkBox(min, max r3.Vec) int {
	marked := 0
	for i := range g.nodes {
		n := &g.nodes[i]
		c := g.Center(n.Index)
		if c.X < min.X || c.X > max.X || c.Y < min.Y || c.Y > max.Y || c.Z < min.Z || c.Z > max.Z {
			continue
		}
		if !n.Obstacle {
			n.Obstacle = true
			marked++
		}
	}
	return marked
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
