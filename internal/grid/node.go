// Package grid provides the cubic voxel occupancy lattice cable routes are
// searched on, together with the per-cell search state.
package grid

import "fmt"

// Index addresses one grid cell by its integer coordinates.
type Index struct {
	I, J, K int
}

// Add returns the cell offset from a by d.
func (a Index) Add(d Index) Index {
	return Index{a.I + d.I, a.J + d.J, a.K + d.K}
}

// Less orders indices lexicographically by I, then J, then K.
func (a Index) Less(b Index) bool {
	if a.I != b.I {
		return a.I < b.I
	}
	if a.J != b.J {
		return a.J < b.J
	}
	return a.K < b.K
}

func (a Index) String() string {
	return fmt.Sprintf("(%d,%d,%d)", a.I, a.J, a.K)
}

// NodeID is a position in the grid's flat node storage.
type NodeID int32

// NoParent marks a node that has not been reached by a search.
const NoParent NodeID = -1

// PathNode is the search state of one cell. Nodes are identified by their
// Index alone: searches key sets and maps by Index or NodeID, never by the
// mutable cost fields.
type PathNode struct {
	Index    Index
	G        float64 // accumulated path cost
	F        float64 // G plus heuristic
	Parent   NodeID
	Obstacle bool
	Start    bool
	Goal     bool
}

// Key returns the identity of the node.
func (n *PathNode) Key() Index {
	return n.Index
}

// HasParent reports whether a search has linked this node into its tree.
func (n *PathNode) HasParent() bool {
	return n.Parent != NoParent
}

// reset clears search state, leaving occupancy and role flags intact.
func (n *PathNode) reset() {
	n.G = 0
	n.F = 0
	n.Parent = NoParent
}
