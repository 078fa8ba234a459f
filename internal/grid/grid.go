package grid

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/piwi3910/cablerouter/internal/model"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrOutOfBounds is returned for indices or points outside the grid.
	ErrOutOfBounds = errors.New("index out of grid bounds")
	// ErrBadBounds is returned when a grid cannot be built over the given region.
	ErrBadBounds = errors.New("invalid grid bounds")
)

// cubicTolerance is the relative extent mismatch accepted for a cubic region.
const cubicTolerance = 1e-9

// VoxelGrid is a MapSize³ occupancy lattice over a cubic region. It owns
// every PathNode; parent links are NodeIDs into the same storage.
type VoxelGrid struct {
	bounds   model.Box
	size     int
	cellSize float64
	nodes    []PathNode
	start    NodeID
	goal     NodeID
}

// New builds an obstacle-free grid with mapSize cells per axis. The region
// must be finite, non-empty and cubic because one cell size is shared by
// all three axes.
func New(bounds model.Box, mapSize int) (*VoxelGrid, error) {
	if mapSize <= 0 {
		return nil, fmt.Errorf("%w: map size must be positive, got %d", ErrBadBounds, mapSize)
	}
	if !model.IsFinite(bounds.Min) || !model.IsFinite(bounds.Max) {
		return nil, fmt.Errorf("%w: corners must be finite", ErrBadBounds)
	}
	size := bounds.Size()
	if !(size.X > 0 && size.Y > 0 && size.Z > 0) {
		return nil, fmt.Errorf("%w: region has no volume", ErrBadBounds)
	}
	if !bounds.IsCubic(cubicTolerance) {
		return nil, fmt.Errorf("%w: region %.3f x %.3f x %.3f is not cubic", ErrBadBounds, size.X, size.Y, size.Z)
	}
	if mapSize > 1290 {
		// 1290³ is the largest cube addressable by an int32 NodeID.
		return nil, fmt.Errorf("%w: map size %d is too large", ErrBadBounds, mapSize)
	}

	g := &VoxelGrid{
		bounds:   bounds,
		size:     mapSize,
		cellSize: size.X / float64(mapSize),
		nodes:    make([]PathNode, mapSize*mapSize*mapSize),
		start:    NoParent,
		goal:     NoParent,
	}
	for id := range g.nodes {
		g.nodes[id] = PathNode{Index: g.IndexOfID(NodeID(id)), Parent: NoParent}
	}
	return g, nil
}

// Size returns the number of cells per axis.
func (g *VoxelGrid) Size() int { return g.size }

// Len returns the total number of cells.
func (g *VoxelGrid) Len() int { return len(g.nodes) }

// Bounds returns the region covered by the grid.
func (g *VoxelGrid) Bounds() model.Box { return g.bounds }

// CellSize returns the edge length of one cell.
func (g *VoxelGrid) CellSize() float64 { return g.cellSize }

// InBounds reports whether idx addresses a cell of this grid.
func (g *VoxelGrid) InBounds(idx Index) bool {
	return idx.I >= 0 && idx.I < g.size &&
		idx.J >= 0 && idx.J < g.size &&
		idx.K >= 0 && idx.K < g.size
}

// ID returns the flat storage position of an in-bounds index. The layout
// nests I outermost and K innermost, matching iteration order.
func (g *VoxelGrid) ID(idx Index) NodeID {
	return NodeID((idx.I*g.size+idx.J)*g.size + idx.K)
}

// IndexOfID is the inverse of ID.
func (g *VoxelGrid) IndexOfID(id NodeID) Index {
	n := int(id)
	return Index{I: n / (g.size * g.size), J: (n / g.size) % g.size, K: n % g.size}
}

// Node returns the node at idx, or ErrOutOfBounds.
func (g *VoxelGrid) Node(idx Index) (*PathNode, error) {
	if !g.InBounds(idx) {
		return nil, fmt.Errorf("%w: %v not in [0,%d)", ErrOutOfBounds, idx, g.size)
	}
	return &g.nodes[g.ID(idx)], nil
}

// At returns the node stored at id. Callers obtain ids from ID on
// in-bounds indices.
func (g *VoxelGrid) At(id NodeID) *PathNode {
	return &g.nodes[id]
}

// IndexOf maps a continuous point to the cell containing it using
// floor((p - min) / cellSize). Points outside the grid are rejected, never
// clamped.
func (g *VoxelGrid) IndexOf(p r3.Vec) (Index, bool) {
	if !model.IsFinite(p) {
		return Index{}, false
	}
	rel := r3.Sub(p, g.bounds.Min)
	fi := math.Floor(rel.X / g.cellSize)
	fj := math.Floor(rel.Y / g.cellSize)
	fk := math.Floor(rel.Z / g.cellSize)
	limit := float64(g.size)
	if fi < 0 || fj < 0 || fk < 0 || fi >= limit || fj >= limit || fk >= limit {
		return Index{}, false
	}
	return Index{I: int(fi), J: int(fj), K: int(fk)}, true
}

// Center returns the geometric center of a cell.
func (g *VoxelGrid) Center(idx Index) r3.Vec {
	return r3.Vec{
		X: g.bounds.Min.X + (float64(idx.I)+0.5)*g.cellSize,
		Y: g.bounds.Min.Y + (float64(idx.J)+0.5)*g.cellSize,
		Z: g.bounds.Min.Z + (float64(idx.K)+0.5)*g.cellSize,
	}
}

// Distance returns the Euclidean distance between two cell centers.
func (g *VoxelGrid) Distance(a, b Index) float64 {
	return r3.Norm(r3.Sub(g.Center(a), g.Center(b)))
}

// Free reports whether idx is inside the grid and not an obstacle.
func (g *VoxelGrid) Free(idx Index) bool {
	return g.InBounds(idx) && !g.nodes[g.ID(idx)].Obstacle
}

// IsObstacle reports whether idx is an in-bounds obstacle cell.
func (g *VoxelGrid) IsObstacle(idx Index) bool {
	return g.InBounds(idx) && g.nodes[g.ID(idx)].Obstacle
}

// SetObstacle flags or clears the obstacle bit of a cell.
func (g *VoxelGrid) SetObstacle(idx Index, obstacle bool) error {
	n, err := g.Node(idx)
	if err != nil {
		return err
	}
	n.Obstacle = obstacle
	return nil
}

// SetStart makes idx the single start cell, clearing the previous one.
func (g *VoxelGrid) SetStart(idx Index) error {
	n, err := g.Node(idx)
	if err != nil {
		return err
	}
	if g.start != NoParent {
		g.nodes[g.start].Start = false
	}
	n.Start = true
	g.start = g.ID(idx)
	return nil
}

// SetGoal makes idx the single goal cell, clearing the previous one.
func (g *VoxelGrid) SetGoal(idx Index) error {
	n, err := g.Node(idx)
	if err != nil {
		return err
	}
	if g.goal != NoParent {
		g.nodes[g.goal].Goal = false
	}
	n.Goal = true
	g.goal = g.ID(idx)
	return nil
}

// Start returns the start cell, if one is set.
func (g *VoxelGrid) Start() (Index, bool) {
	if g.start == NoParent {
		return Index{}, false
	}
	return g.nodes[g.start].Index, true
}

// Goal returns the goal cell, if one is set.
func (g *VoxelGrid) Goal() (Index, bool) {
	if g.goal == NoParent {
		return Index{}, false
	}
	return g.nodes[g.goal].Index, true
}

// ResetAll clears G, F and Parent on every node. It must run before a new
// search reuses the grid.
func (g *VoxelGrid) ResetAll() {
	for i := range g.nodes {
		g.nodes[i].reset()
	}
}

// All yields every node in storage order: I outermost, K innermost. The
// sequence can be ranged over any number of times.
func (g *VoxelGrid) All() iter.Seq[*PathNode] {
	return func(yield func(*PathNode) bool) {
		for i := range g.nodes {
			if !yield(&g.nodes[i]) {
				return
			}
		}
	}
}

// Obstacles lists obstacle cells in iteration order.
func (g *VoxelGrid) Obstacles() []Index {
	var out []Index
	for n := range g.All() {
		if n.Obstacle {
			out = append(out, n.Index)
		}
	}
	return out
}

// ObstacleCount returns the number of obstacle cells.
func (g *VoxelGrid) ObstacleCount() int {
	count := 0
	for n := range g.All() {
		if n.Obstacle {
			count++
		}
	}
	return count
}
