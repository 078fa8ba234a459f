package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrBadConfig is returned for optimizer parameters that cannot run.
	ErrBadConfig = errors.New("invalid optimizer configuration")
	// ErrDimensionMismatch is returned when a vector has the wrong length.
	ErrDimensionMismatch = errors.New("vector length does not match dimension")
	// ErrNonFinite is returned when a bound or seed vector holds NaN or Inf.
	ErrNonFinite = errors.New("non-finite value")
)

// FailedFitness is assigned to candidates whose objective could not be
// evaluated, so the archive drifts away from them instead of failing.
const FailedFitness = 10000.0

// Objective scores a candidate vector. Lower is better; 0 means the
// candidate fully satisfies the problem and stops the search.
type Objective func(x []float64) (float64, error)

// ACORConfig holds parameters for the continuous ant colony optimizer.
type ACORConfig struct {
	ArchiveSize    int     // k: solutions kept between generations
	Candidates     int     // m: solutions sampled per generation
	Q              float64 // Locality of the rank weighting
	Zeta           float64 // Deviation scaling
	MaxEvaluations int     // Objective evaluation budget
	Lower, Upper   float64 // Bounds applied to every dimension
	Seed           uint64
}

// DefaultACORConfig returns the balanced parameters over [-1, 1].
func DefaultACORConfig() ACORConfig {
	return ACORConfig{
		ArchiveSize:    45,
		Candidates:     30,
		Q:              0.7,
		Zeta:           0.8,
		MaxEvaluations: 2000,
		Lower:          -1,
		Upper:          1,
		Seed:           42,
	}
}

// Validate rejects parameters the optimizer cannot run with.
func (c ACORConfig) Validate() error {
	switch {
	case c.ArchiveSize <= 0:
		return fmt.Errorf("%w: archive size must be positive, got %d", ErrBadConfig, c.ArchiveSize)
	case c.Candidates <= 0:
		return fmt.Errorf("%w: candidate count must be positive, got %d", ErrBadConfig, c.Candidates)
	case !(c.Q > 0) || !(c.Zeta > 0):
		return fmt.Errorf("%w: q and zeta must be positive", ErrBadConfig)
	case c.MaxEvaluations <= 0:
		return fmt.Errorf("%w: evaluation budget must be positive", ErrBadConfig)
	case math.IsNaN(c.Lower) || math.IsInf(c.Lower, 0) || math.IsNaN(c.Upper) || math.IsInf(c.Upper, 0):
		return fmt.Errorf("%w: bounds [%v, %v]", ErrNonFinite, c.Lower, c.Upper)
	case c.Lower >= c.Upper:
		return fmt.Errorf("%w: lower bound %v not below upper bound %v", ErrBadConfig, c.Lower, c.Upper)
	}
	return nil
}

// Solution is one archive member.
type Solution struct {
	X       []float64
	Fitness float64
	Weight  float64
}

// ACORResult summarises a finished optimization.
type ACORResult struct {
	Best        Solution
	Evaluations int
	Generations int
	History     []float64 // Best fitness after initialization and after each generation
	Converged   bool      // Best fitness reached exactly 0
}

// ACOR is an archive-based continuous ant colony optimizer. Each
// generation draws guiding solutions by rank weight, samples Gaussian
// candidates around them, and keeps the best ArchiveSize solutions.
type ACOR struct {
	config    ACORConfig
	dim       int
	objective Objective
	src       rand.Source
	initial   []float64

	archive     []Solution
	evaluations int
}

// NewACOR creates an optimizer over dim-dimensional vectors.
func NewACOR(dim int, config ACORConfig, objective Objective) (*ACOR, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrBadConfig, dim)
	}
	if objective == nil {
		return nil, fmt.Errorf("%w: objective is required", ErrBadConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ACOR{
		config:    config,
		dim:       dim,
		objective: objective,
		src:       rand.NewPCG(config.Seed, config.Seed^0x9e3779b97f4a7c15),
	}, nil
}

// SetInitial places x in the starting archive in place of one random
// sample. Components outside the bounds are clipped.
func (a *ACOR) SetInitial(x []float64) error {
	if len(x) != a.dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x), a.dim)
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: initial vector", ErrNonFinite)
		}
	}
	a.initial = a.clip(append([]float64(nil), x...))
	return nil
}

// Optimize runs until the evaluation budget is spent or the best fitness
// is exactly 0, and returns the best solution found.
func (a *ACOR) Optimize() ACORResult {
	a.initArchive()
	result := ACORResult{History: []float64{a.archive[0].Fitness}}

	for a.evaluations < a.config.MaxEvaluations && a.archive[0].Fitness != 0 {
		a.generation()
		result.Generations++
		result.History = append(result.History, a.archive[0].Fitness)
	}

	best := a.archive[0]
	result.Best = Solution{X: append([]float64(nil), best.X...), Fitness: best.Fitness, Weight: best.Weight}
	result.Evaluations = a.evaluations
	result.Converged = best.Fitness == 0
	return result
}

// Archive returns a copy of the current archive, best first.
func (a *ACOR) Archive() []Solution {
	out := make([]Solution, len(a.archive))
	for i, s := range a.archive {
		out[i] = Solution{X: append([]float64(nil), s.X...), Fitness: s.Fitness, Weight: s.Weight}
	}
	return out
}

// Evaluations returns the number of objective calls made so far.
func (a *ACOR) Evaluations() int { return a.evaluations }

func (a *ACOR) initArchive() {
	k := a.config.ArchiveSize
	a.evaluations = 0
	a.archive = make([]Solution, 0, k+a.config.Candidates)

	uniform := distuv.Uniform{Min: a.config.Lower, Max: a.config.Upper, Src: a.src}
	for i := 0; i < k; i++ {
		var x []float64
		if i == k-1 && a.initial != nil {
			x = append([]float64(nil), a.initial...)
		} else {
			x = make([]float64, a.dim)
			for j := range x {
				x[j] = uniform.Rand()
			}
		}
		a.archive = append(a.archive, Solution{X: x, Fitness: a.evaluate(x)})
	}
	a.rank()
}

// generation samples Candidates new solutions, merges them into the
// archive and truncates back to ArchiveSize.
func (a *ACOR) generation() {
	k := a.config.ArchiveSize
	weights := make([]float64, k)
	for i, s := range a.archive {
		weights[i] = s.Weight
	}
	guide := distuv.NewCategorical(weights, a.src)

	fresh := make([]Solution, 0, a.config.Candidates)
	for n := 0; n < a.config.Candidates; n++ {
		g := int(guide.Rand())
		normal := distuv.Normal{Sigma: a.deviation(g), Src: a.src}

		x := make([]float64, a.dim)
		for j := range x {
			normal.Mu = a.archive[g].X[j]
			x[j] = normal.Rand()
		}
		x = a.clip(x)
		fresh = append(fresh, Solution{X: x, Fitness: a.evaluate(x)})
	}

	a.archive = append(a.archive, fresh...)
	a.rank()
}

// deviation is zeta times the mean L1 distance from the guiding solution
// to every archive member. A single-member archive has zero deviation.
func (a *ACOR) deviation(g int) float64 {
	k := len(a.archive)
	if k < 2 {
		return 0
	}
	sum := 0.0
	for _, s := range a.archive {
		sum += floats.Distance(s.X, a.archive[g].X, 1)
	}
	return a.config.Zeta * sum / float64(k-1)
}

// rank sorts ascending by fitness, truncates to ArchiveSize and
// recomputes the Gaussian rank weights.
func (a *ACOR) rank() {
	sort.SliceStable(a.archive, func(i, j int) bool {
		return a.archive[i].Fitness < a.archive[j].Fitness
	})
	if len(a.archive) > a.config.ArchiveSize {
		a.archive = a.archive[:a.config.ArchiveSize]
	}
	for i := range a.archive {
		a.archive[i].Weight = RankWeight(i, a.config.ArchiveSize, a.config.Q)
	}
}

func (a *ACOR) evaluate(x []float64) float64 {
	a.evaluations++
	f, err := a.objective(x)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return FailedFitness
	}
	return f
}

func (a *ACOR) clip(x []float64) []float64 {
	for j, v := range x {
		x[j] = math.Min(math.Max(v, a.config.Lower), a.config.Upper)
	}
	return x
}

// RankWeight is the unnormalized Gaussian weight of the archive member at
// zero-based rank r in an archive of size k.
func RankWeight(r, k int, q float64) float64 {
	qk := q * float64(k)
	return math.Exp(-float64(r*r)/(2*qk*qk)) / (qk * math.Sqrt(2*math.Pi))
}
