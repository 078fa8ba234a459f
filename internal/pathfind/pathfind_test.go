package pathfind

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/piwi3910/cablerouter/internal/grid"
	"github.com/piwi3910/cablerouter/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func unitGrid(t *testing.T, n int) *grid.VoxelGrid {
	t.Helper()
	g, err := grid.New(model.BoxFromCorners(r3.Vec{}, r3.Vec{X: float64(n), Y: float64(n), Z: float64(n)}), n)
	require.NoError(t, err)
	return g
}

func setEnds(t *testing.T, g *grid.VoxelGrid, start, goal grid.Index) {
	t.Helper()
	require.NoError(t, g.SetStart(start))
	require.NoError(t, g.SetGoal(goal))
}

func block(t *testing.T, g *grid.VoxelGrid, cells ...grid.Index) {
	t.Helper()
	for _, c := range cells {
		require.NoError(t, g.SetObstacle(c, true))
	}
}

// searchers returns a fresh instance of every search over g, keyed by name.
func searchers(g *grid.VoxelGrid) map[string]Searcher {
	return map[string]Searcher{
		"jps":          NewJPS(g, Options{}),
		"theta":        NewTheta(g, Options{}),
		"jps-pruned":   NewJPS(g, Options{PruneDiagonals: true}),
		"theta-pruned": NewTheta(g, Options{PruneDiagonals: true}),
		"astar":        NewAStar(g),
	}
}

// ─── Direction Tests ────────────────────────────────────────

func TestExpansionOrderCoversAllNeighbours(t *testing.T) {
	require.Len(t, expansionOrder, 26)
	seen := map[Direction]bool{}
	for i, d := range expansionOrder {
		assert.False(t, seen[d], "duplicate direction %v", d)
		seen[d] = true
		switch {
		case i < 8:
			assert.Equal(t, CubeDiagonal, d.Family())
		case i < 20:
			assert.Equal(t, FaceDiagonal, d.Family())
		default:
			assert.Equal(t, Orthogonal, d.Family())
		}
	}
}

func TestSubJumps(t *testing.T) {
	cube := Direction{1, -1, 1}
	assert.Equal(t, []Direction{
		{DI: 1}, {DJ: -1}, {DK: 1},
		{DI: 1, DJ: -1}, {DI: 1, DK: 1}, {DJ: -1, DK: 1},
	}, cube.subJumps())

	face := Direction{0, 1, -1}
	assert.Equal(t, []Direction{{DJ: 1}, {DK: -1}}, face.subJumps())
}

func TestCollisionOffsetsArePerpendicular(t *testing.T) {
	for axis, offsets := range collisionOffsets {
		for _, off := range offsets {
			comps := [3]int{off.I, off.J, off.K}
			assert.Zero(t, comps[axis], "axis %d offset %v", axis, off)
		}
	}
}

// ─── Line of Sight Tests ────────────────────────────────────

func TestLineExcludesEndpoints(t *testing.T) {
	a := grid.Index{}
	b := grid.Index{I: 4}
	assert.Equal(t, []grid.Index{{I: 1}, {I: 2}, {I: 3}}, Line(a, b))
	assert.Empty(t, Line(a, grid.Index{I: 1, J: 1, K: 1}))
	assert.Empty(t, Line(a, a))
}

func TestLineTieBreakPrefersIThenJ(t *testing.T) {
	// I and J tie as dominant axis: I drives the walk.
	assert.Equal(t,
		[]grid.Index{{I: 1, J: 1, K: 0}, {I: 2, J: 2, K: 1}, {I: 3, J: 3, K: 1}},
		Line(grid.Index{}, grid.Index{I: 4, J: 4, K: 1}))
	// J and K tie: J drives the walk.
	assert.Equal(t,
		[]grid.Index{{I: 0, J: 1, K: 1}, {I: 1, J: 2, K: 2}, {I: 1, J: 3, K: 3}},
		Line(grid.Index{}, grid.Index{I: 1, J: 4, K: 4}))
}

func TestVisibleIgnoresEndpointObstacles(t *testing.T) {
	g := unitGrid(t, 6)
	a := grid.Index{J: 2}
	b := grid.Index{I: 5, J: 2}
	block(t, g, a, b)
	assert.True(t, Visible(g, a, b))

	block(t, g, grid.Index{I: 3, J: 2})
	assert.False(t, Visible(g, a, b))
	assert.False(t, Visible(g, b, a))
}

func TestLineIsSymmetricAndContiguous(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	randIdx := func() grid.Index {
		return grid.Index{I: rng.IntN(12), J: rng.IntN(12), K: rng.IntN(12)}
	}
	for n := 0; n < 300; n++ {
		a, b := randIdx(), randIdx()
		fwd := Line(a, b)
		assert.Equal(t, fwd, Line(b, a), "%v -> %v", a, b)

		if a == b {
			continue
		}
		dmax := max(abs(a.I-b.I), abs(a.J-b.J), abs(a.K-b.K))
		assert.Len(t, fwd, dmax-1, "%v -> %v", a, b)

		// Every step moves at most one cell along each axis.
		from := a
		if b.Less(a) {
			from = b
		}
		for _, c := range fwd {
			assert.LessOrEqual(t, max(abs(c.I-from.I), abs(c.J-from.J), abs(c.K-from.K)), 1)
			from = c
		}
	}
}

func TestVisibleSymmetricWithObstacles(t *testing.T) {
	g := unitGrid(t, 10)
	rng := rand.New(rand.NewPCG(3, 5))
	for n := range g.All() {
		if rng.Float64() < 0.2 {
			n.Obstacle = true
		}
	}
	randIdx := func() grid.Index {
		return grid.Index{I: rng.IntN(10), J: rng.IntN(10), K: rng.IntN(10)}
	}
	for n := 0; n < 500; n++ {
		a, b := randIdx(), randIdx()
		assert.Equal(t, Visible(g, a, b), Visible(g, b, a), "%v <-> %v", a, b)
	}
}

// ─── Open List Tests ────────────────────────────────────────

func TestOpenListBreaksTiesByInsertion(t *testing.T) {
	var o openList
	o.push(5, 2.0)
	o.push(3, 1.0)
	o.push(9, 1.0)
	o.push(1, 1.0)
	o.push(7, 0.5)

	var got []grid.NodeID
	for o.len() > 0 {
		got = append(got, o.pop())
	}
	assert.Equal(t, []grid.NodeID{7, 3, 9, 1, 5}, got)
}

// ─── Search Tests ───────────────────────────────────────────

func TestSearchRequiresEndpoints(t *testing.T) {
	g := unitGrid(t, 4)
	for name, s := range searchers(g) {
		_, err := s.Search()
		assert.True(t, errors.Is(err, ErrNoEndpoints), name)
	}
}

func TestSearchRejectsBlockedEndpoint(t *testing.T) {
	g := unitGrid(t, 4)
	setEnds(t, g, grid.Index{}, grid.Index{I: 3, J: 3, K: 3})
	block(t, g, grid.Index{I: 3, J: 3, K: 3})
	for name, s := range searchers(g) {
		_, err := s.Search()
		assert.True(t, errors.Is(err, ErrBlockedEndpoint), name)
	}
}

func TestSearchStartEqualsGoal(t *testing.T) {
	g := unitGrid(t, 4)
	idx := grid.Index{I: 1, J: 2, K: 3}
	setEnds(t, g, idx, idx)
	for name, s := range searchers(g) {
		res, err := s.Search()
		require.NoError(t, err, name)
		assert.True(t, res.Found, name)
		assert.Equal(t, []grid.Index{idx}, res.Path, name)
	}
}

func TestSearchEmptyGridDiagonal(t *testing.T) {
	g := unitGrid(t, 8)
	start, goal := grid.Index{}, grid.Index{I: 7, J: 7, K: 7}
	setEnds(t, g, start, goal)

	for name, s := range searchers(g) {
		res, err := s.Search()
		require.NoError(t, err, name)
		require.True(t, res.Found, name)
		assert.Equal(t, start, res.Path[0], name)
		assert.Equal(t, goal, res.Path[len(res.Path)-1], name)
		assert.InDelta(t, 7*math.Sqrt(3), Length(g, res.Path), 1e-9, name)
		assert.InDelta(t, res.Cost, Length(g, res.Path), 1e-9, name)
	}
}

func TestThetaShortensAroundObstacle(t *testing.T) {
	g := unitGrid(t, 8)
	block(t, g, grid.Index{J: 7, K: 7})
	setEnds(t, g, grid.Index{}, grid.Index{I: 7, J: 3})

	for _, prune := range []bool{false, true} {
		jps, err := NewJPS(g, Options{PruneDiagonals: prune}).Search()
		require.NoError(t, err)
		require.True(t, jps.Found)
		assert.InDelta(t, 4+3*math.Sqrt2, Length(g, jps.Path), 1e-9)

		theta, err := NewTheta(g, Options{PruneDiagonals: prune}).Search()
		require.NoError(t, err)
		require.True(t, theta.Found)
		assert.InDelta(t, math.Sqrt(58), Length(g, theta.Path), 1e-9)
		assert.Less(t, Length(g, theta.Path), Length(g, jps.Path))
	}
}

// wallGrid builds a 10³ grid split by a wall at I=5 with a single gap.
func wallGrid(t *testing.T, gap grid.Index) *grid.VoxelGrid {
	t.Helper()
	g := unitGrid(t, 10)
	for j := 0; j < 10; j++ {
		for k := 0; k < 10; k++ {
			c := grid.Index{I: 5, J: j, K: k}
			if c != gap {
				block(t, g, c)
			}
		}
	}
	setEnds(t, g, grid.Index{}, grid.Index{I: 9, J: 9, K: 9})
	return g
}

func TestSearchThroughWallGap(t *testing.T) {
	gap := grid.Index{I: 5, J: 6, K: 3}
	g := wallGrid(t, gap)

	ref, err := NewAStar(g).Search()
	require.NoError(t, err)
	require.True(t, ref.Found)
	assert.Contains(t, ref.Path, gap)

	for name, s := range searchers(g) {
		res, err := s.Search()
		require.NoError(t, err, name)
		require.True(t, res.Found, name)
		assert.True(t, Clear(g, res.Path), name)
		assert.InDelta(t, res.Cost, Length(g, res.Path), 1e-9, name)
		if name == "jps" || name == "jps-pruned" {
			assert.GreaterOrEqual(t, res.Cost, ref.Cost-1e-9, name)
		}
	}
}

func TestSearchFailsWhenWallSealed(t *testing.T) {
	gap := grid.Index{I: 5, J: 6, K: 3}
	g := wallGrid(t, gap)
	block(t, g, gap)

	for name, s := range searchers(g) {
		res, err := s.Search()
		require.NoError(t, err, name)
		assert.False(t, res.Found, name)
		assert.Nil(t, res.Path, name)
		assert.Positive(t, res.Expanded, name)
	}
}

func TestSearchIsRepeatable(t *testing.T) {
	gap := grid.Index{I: 5, J: 2, K: 8}
	g := wallGrid(t, gap)
	s := NewTheta(g, Options{})

	first, err := s.Search()
	require.NoError(t, err)
	second, err := s.Search()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	start, _ := g.Start()
	n, err := g.Node(start)
	require.NoError(t, err)
	assert.False(t, n.HasParent())
}

func TestSearchClearsStaleNodeState(t *testing.T) {
	gap := grid.Index{I: 5, J: 2, K: 8}
	for _, name := range []string{"jps", "theta", "astar"} {
		t.Run(name, func(t *testing.T) {
			g := wallGrid(t, gap)
			s := searchers(g)[name]
			for n := range g.All() {
				n.G, n.F, n.Parent = 99, 99, 0
			}

			res, err := s.Search()
			require.NoError(t, err)
			require.True(t, res.Found)

			start, _ := g.Start()
			for n := range g.All() {
				if n.Index == start || n.HasParent() {
					continue
				}
				assert.Zero(t, n.G, "node %v", n.Index)
				assert.Zero(t, n.F, "node %v", n.Index)
			}
		})
	}
}

func TestAStarFindsWheneverJumpSearchDoes(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 40; trial++ {
		g := unitGrid(t, 8)
		for n := range g.All() {
			if rng.Float64() < 0.3 {
				n.Obstacle = true
			}
		}
		start, goal := grid.Index{}, grid.Index{I: 7, J: 7, K: 7}
		require.NoError(t, g.SetObstacle(start, false))
		require.NoError(t, g.SetObstacle(goal, false))
		setEnds(t, g, start, goal)

		jps, err := NewJPS(g, Options{}).Search()
		require.NoError(t, err)
		ref, err := NewAStar(g).Search()
		require.NoError(t, err)

		if jps.Found {
			require.True(t, ref.Found, "trial %d", trial)
			assert.LessOrEqual(t, ref.Cost, jps.Cost+1e-9, "trial %d", trial)
			assert.True(t, Clear(g, jps.Path), "trial %d", trial)
		}
	}
}

// ─── Smoothing Tests ────────────────────────────────────────

func TestSmoothRejectsShortPaths(t *testing.T) {
	g := unitGrid(t, 4)
	_, err := Smooth(g, []grid.Index{{}})
	assert.True(t, errors.Is(err, ErrTooFewWaypoints))
	_, err = Smooth(g, nil)
	assert.True(t, errors.Is(err, ErrTooFewWaypoints))
}

func TestSmoothStraightensStaircase(t *testing.T) {
	g := unitGrid(t, 6)
	path := []grid.Index{{}, {I: 1}, {I: 1, J: 1}, {I: 2, J: 1}, {I: 2, J: 2}, {I: 3, J: 2}}
	out, err := Smooth(g, path)
	require.NoError(t, err)
	assert.Equal(t, []grid.Index{{}, {I: 3, J: 2}}, out)
}

func TestSmoothKeepsEndsAndVisibility(t *testing.T) {
	gap := grid.Index{I: 5, J: 6, K: 3}
	g := wallGrid(t, gap)
	res, err := NewAStar(g).Search()
	require.NoError(t, err)
	require.True(t, res.Found)

	out, err := Smooth(g, res.Path)
	require.NoError(t, err)
	assert.Equal(t, res.Path[0], out[0])
	assert.Equal(t, res.Path[len(res.Path)-1], out[len(out)-1])
	assert.True(t, Clear(g, out))
	assert.LessOrEqual(t, Length(g, out), Length(g, res.Path)+1e-9)
	assert.LessOrEqual(t, len(out), len(res.Path))
}
