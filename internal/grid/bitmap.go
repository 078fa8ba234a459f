package grid

// bitmap is a fixed-size bit set over node ids.
type bitmap []uint64

func newBitmap(bits int) bitmap {
	return make(bitmap, (bits+63)/64)
}

func (b bitmap) set(x int) {
	b[x>>6] |= 1 << (uint(x) & 63)
}

func (b bitmap) contains(x int) bool {
	return b[x>>6]&(1<<(uint(x)&63)) != 0
}

// Occupancy packs the obstacle flags of every node, in iteration order.
func (g *VoxelGrid) occupancy() bitmap {
	bits := newBitmap(len(g.nodes))
	for i := range g.nodes {
		if g.nodes[i].Obstacle {
			bits.set(i)
		}
	}
	return bits
}

// Occupancy returns the obstacle flags as a flat slice in iteration order.
func (g *VoxelGrid) Occupancy() []bool {
	out := make([]bool, len(g.nodes))
	for i := range g.nodes {
		out[i] = g.nodes[i].Obstacle
	}
	return out
}
