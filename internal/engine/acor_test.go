package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paraboloid(target float64) Objective {
	return func(x []float64) (float64, error) {
		sum := 0.0
		for _, v := range x {
			d := v - target
			sum += d * d
		}
		return sum, nil
	}
}

func smallConfig() ACORConfig {
	return ACORConfig{
		ArchiveSize:    10,
		Candidates:     10,
		Q:              0.1,
		Zeta:           0.85,
		MaxEvaluations: 3000,
		Lower:          -1,
		Upper:          1,
		Seed:           7,
	}
}

func TestACORConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultACORConfig().Validate())

	tests := []struct {
		name   string
		modify func(*ACORConfig)
		want   error
	}{
		{"zero archive", func(c *ACORConfig) { c.ArchiveSize = 0 }, ErrBadConfig},
		{"zero candidates", func(c *ACORConfig) { c.Candidates = 0 }, ErrBadConfig},
		{"zero q", func(c *ACORConfig) { c.Q = 0 }, ErrBadConfig},
		{"nan zeta", func(c *ACORConfig) { c.Zeta = math.NaN() }, ErrBadConfig},
		{"no budget", func(c *ACORConfig) { c.MaxEvaluations = 0 }, ErrBadConfig},
		{"inverted bounds", func(c *ACORConfig) { c.Lower, c.Upper = 1, -1 }, ErrBadConfig},
		{"infinite bound", func(c *ACORConfig) { c.Upper = math.Inf(1) }, ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultACORConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

func TestNewACORRejectsBadInput(t *testing.T) {
	_, err := NewACOR(0, smallConfig(), paraboloid(0))
	assert.True(t, errors.Is(err, ErrBadConfig))

	_, err = NewACOR(2, smallConfig(), nil)
	assert.True(t, errors.Is(err, ErrBadConfig))
}

func TestSetInitialChecksVector(t *testing.T) {
	opt, err := NewACOR(3, smallConfig(), paraboloid(0))
	require.NoError(t, err)

	assert.True(t, errors.Is(opt.SetInitial([]float64{0, 0}), ErrDimensionMismatch))
	assert.True(t, errors.Is(opt.SetInitial([]float64{0, math.NaN(), 0}), ErrNonFinite))
	assert.NoError(t, opt.SetInitial([]float64{0, 0, 5}))
}

func TestRankWeightDecreasesWithRank(t *testing.T) {
	k, q := 10, 0.5
	want0 := 1 / (q * float64(k) * math.Sqrt(2*math.Pi))
	assert.InDelta(t, want0, RankWeight(0, k, q), 1e-12)
	for r := 1; r < k; r++ {
		assert.Less(t, RankWeight(r, k, q), RankWeight(r-1, k, q))
	}
}

func TestOptimizeZeroObjectiveStopsImmediately(t *testing.T) {
	cfg := smallConfig()
	opt, err := NewACOR(4, cfg, func([]float64) (float64, error) { return 0, nil })
	require.NoError(t, err)

	res := opt.Optimize()
	assert.True(t, res.Converged)
	assert.Equal(t, 0, res.Generations)
	assert.Equal(t, cfg.ArchiveSize, res.Evaluations)
	assert.Less(t, res.Evaluations, cfg.MaxEvaluations)
	assert.Equal(t, []float64{0}, res.History)
}

func TestOptimizeParaboloidConverges(t *testing.T) {
	for _, dim := range []int{2, 3} {
		opt, err := NewACOR(dim, smallConfig(), paraboloid(0.3))
		require.NoError(t, err)

		res := opt.Optimize()
		assert.Less(t, res.Best.Fitness, 1e-3, "dim %d", dim)
		for _, v := range res.Best.X {
			assert.InDelta(t, 0.3, v, 0.05, "dim %d", dim)
		}
		// Stops on the budget, or earlier once the optimum is hit exactly.
		assert.True(t, res.Converged || res.Evaluations >= smallConfig().MaxEvaluations,
			"dim %d: %d evaluations, fitness %v", dim, res.Evaluations, res.Best.Fitness)
		if res.Converged {
			assert.Zero(t, res.Best.Fitness)
		}
	}
}

func TestArchiveStaysSortedAndSized(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxEvaluations = 500
	opt, err := NewACOR(3, cfg, func(x []float64) (float64, error) {
		return math.Abs(x[0]) + math.Abs(x[1]-0.5) + math.Abs(x[2]+0.25), nil
	})
	require.NoError(t, err)

	res := opt.Optimize()
	archive := opt.Archive()
	require.Len(t, archive, cfg.ArchiveSize)
	for i := 1; i < len(archive); i++ {
		assert.LessOrEqual(t, archive[i-1].Fitness, archive[i].Fitness)
		assert.Less(t, archive[i].Weight, archive[i-1].Weight)
	}
	for _, s := range archive {
		for _, v := range s.X {
			assert.GreaterOrEqual(t, v, cfg.Lower)
			assert.LessOrEqual(t, v, cfg.Upper)
		}
	}
	for i := 1; i < len(res.History); i++ {
		assert.LessOrEqual(t, res.History[i], res.History[i-1])
	}
	assert.Equal(t, archive[0].Fitness, res.Best.Fitness)
}

func TestSingleMemberArchiveResamplesGuide(t *testing.T) {
	cfg := smallConfig()
	cfg.ArchiveSize = 1
	cfg.MaxEvaluations = 50
	opt, err := NewACOR(2, cfg, paraboloid(0.3))
	require.NoError(t, err)
	require.NoError(t, opt.SetInitial([]float64{0.9, -0.4}))

	res := opt.Optimize()
	assert.Equal(t, []float64{0.9, -0.4}, res.Best.X)
	require.Len(t, opt.Archive(), 1)
	for _, f := range res.History {
		assert.InDelta(t, res.History[0], f, 1e-15)
	}
}

func TestInitialSolutionIsNeverLost(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxEvaluations = 200
	opt, err := NewACOR(3, cfg, paraboloid(0))
	require.NoError(t, err)
	require.NoError(t, opt.SetInitial([]float64{0, 0, 0}))

	res := opt.Optimize()
	assert.True(t, res.Converged)
	assert.Equal(t, 0.0, res.Best.Fitness)
}

func TestObjectiveFailuresGetSentinel(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxEvaluations = 100
	opt, err := NewACOR(2, cfg, func(x []float64) (float64, error) {
		if x[0] > 0 {
			return 0, errors.New("shape missing")
		}
		if x[1] > 0 {
			return math.NaN(), nil
		}
		return 1 - x[0], nil
	})
	require.NoError(t, err)
	require.NoError(t, opt.SetInitial([]float64{-0.5, -0.5}))

	res := opt.Optimize()
	assert.Less(t, res.Best.Fitness, FailedFitness)
	for _, s := range opt.Archive() {
		assert.False(t, math.IsNaN(s.Fitness))
	}
}

func TestOptimizeIsDeterministicPerSeed(t *testing.T) {
	run := func(seed uint64) ACORResult {
		cfg := smallConfig()
		cfg.MaxEvaluations = 300
		cfg.Seed = seed
		opt, err := NewACOR(3, cfg, paraboloid(0.1))
		require.NoError(t, err)
		return opt.Optimize()
	}
	assert.Equal(t, run(11), run(11))
	assert.NotEqual(t, run(11).Best.X, run(12).Best.X)
}
