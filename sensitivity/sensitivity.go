// Package sensitivity analyzes how a model's solution responds to its
// parameters: perturbation impact, parameter sweeps, and gradient
// estimation. Every evaluation rebuilds the mesh and re-discretises the
// model against the modified parameter table.
package sensitivity

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/fieldsim-xyz/go-fieldsim/discretise"
	"github.com/fieldsim-xyz/go-fieldsim/mesh"
	"github.com/fieldsim-xyz/go-fieldsim/model"
	"github.com/fieldsim-xyz/go-fieldsim/params"
	"github.com/fieldsim-xyz/go-fieldsim/solver"
)

// Scorer evaluates a finished solution and returns a score.
type Scorer func(sol *solver.Solution) float64

// FinalValueScorer scores a run by the final value of one state entry.
func FinalValueScorer(label string) Scorer {
	return func(sol *solver.Solution) float64 {
		values := sol.GetVariable(label)
		if len(values) == 0 {
			return math.NaN()
		}
		return values[len(values)-1]
	}
}

// FinalMeanScorer scores a run by the mean of the final state vector.
func FinalMeanScorer() Scorer {
	return func(sol *solver.Solution) float64 {
		final := sol.Final()
		if len(final) == 0 {
			return math.NaN()
		}
		sum := 0.0
		for _, v := range final {
			sum += v
		}
		return sum / float64(len(final))
	}
}

// Result holds the outcome of a perturbation analysis.
type Result struct {
	Baseline float64            // Score with the original parameter table
	Scores   map[string]float64 // Score with each parameter perturbed
	Impact   map[string]float64 // Change from baseline
	Ranking  []RankedParam      // Parameters sorted by absolute impact
}

// RankedParam pairs a parameter name with its impact on the score.
type RankedParam struct {
	Name   string
	Impact float64
}

// Analyzer evaluates a model's score under modified parameter tables.
type Analyzer struct {
	model   *model.Model
	values  *params.Values
	domains []string
	npts    int
	tspan   [2]float64
	opts    *solver.Options
	scorer  Scorer
}

// NewAnalyzer creates an analyzer for a model and its parameter table.
// Spatial domains are collected from the model's state variables.
func NewAnalyzer(m *model.Model, values *params.Values, scorer Scorer) *Analyzer {
	seen := map[string]bool{}
	var domains []string
	for _, v := range m.Variables() {
		for _, d := range v.Domain() {
			if !seen[d] {
				seen[d] = true
				domains = append(domains, d)
			}
		}
	}

	npts := m.Defaults.MeshPoints
	if npts <= 0 {
		npts = 20
	}
	return &Analyzer{
		model:   m,
		values:  values,
		domains: domains,
		npts:    npts,
		tspan:   [2]float64{0, 1},
		opts:    solver.DefaultOptions(),
		scorer:  scorer,
	}
}

// WithTimeSpan sets the simulation time span.
func (a *Analyzer) WithTimeSpan(t0, tf float64) *Analyzer {
	a.tspan = [2]float64{t0, tf}
	return a
}

// WithMeshPoints sets the number of cells per domain.
func (a *Analyzer) WithMeshPoints(npts int) *Analyzer {
	a.npts = npts
	return a
}

// WithOptions sets the solver options.
func (a *Analyzer) WithOptions(opts *solver.Options) *Analyzer {
	a.opts = opts
	return a
}

// simulate solves the model against one parameter table and scores it.
func (a *Analyzer) simulate(values *params.Values) (float64, error) {
	grid, err := mesh.NewUniform(values, a.npts, a.domains...)
	if err != nil {
		return 0, fmt.Errorf("build mesh: %w", err)
	}
	sys, err := discretise.NewFiniteVolume(grid, values).Discretise(a.model)
	if err != nil {
		return 0, fmt.Errorf("discretise: %w", err)
	}
	sol, err := solver.Default(a.model.Defaults.Form).Solve(sys.Problem(a.tspan), a.opts)
	if err != nil {
		return 0, fmt.Errorf("solve: %w", err)
	}
	return a.scorer(sol), nil
}

// Analyze measures the impact of scaling each named parameter by
// (1 + perturbation) on the score.
func (a *Analyzer) Analyze(names []string, perturbation float64) (*Result, error) {
	result := &Result{
		Scores: make(map[string]float64),
		Impact: make(map[string]float64),
	}

	baseline, err := a.simulate(a.values)
	if err != nil {
		return nil, err
	}
	result.Baseline = baseline

	for _, name := range names {
		base, err := a.values.Get(name)
		if err != nil {
			return nil, err
		}
		test := a.values.Clone()
		test.Set(name, base*(1+perturbation))

		score, err := a.simulate(test)
		if err != nil {
			return nil, fmt.Errorf("perturb '%s': %w", name, err)
		}
		result.Scores[name] = score
		result.Impact[name] = score - baseline
	}

	result.Ranking = rankByImpact(result.Impact)
	return result, nil
}

// AnalyzeParallel is Analyze with one goroutine per parameter.
func (a *Analyzer) AnalyzeParallel(names []string, perturbation float64) (*Result, error) {
	result := &Result{
		Scores: make(map[string]float64),
		Impact: make(map[string]float64),
	}

	baseline, err := a.simulate(a.values)
	if err != nil {
		return nil, err
	}
	result.Baseline = baseline

	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			base, err := a.values.Get(name)
			if err == nil {
				test := a.values.Clone()
				test.Set(name, base*(1+perturbation))
				var score float64
				if score, err = a.simulate(test); err == nil {
					mu.Lock()
					result.Scores[name] = score
					result.Impact[name] = score - baseline
					mu.Unlock()
					return
				}
			}
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("perturb '%s': %w", name, err)
			}
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	result.Ranking = rankByImpact(result.Impact)
	return result, nil
}

func rankByImpact(impact map[string]float64) []RankedParam {
	ranking := make([]RankedParam, 0, len(impact))
	for name, imp := range impact {
		ranking = append(ranking, RankedParam{Name: name, Impact: imp})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if math.Abs(ranking[i].Impact) != math.Abs(ranking[j].Impact) {
			return math.Abs(ranking[i].Impact) > math.Abs(ranking[j].Impact)
		}
		return ranking[i].Name < ranking[j].Name
	})
	return ranking
}

// SweepResult holds scores across a range of values for one parameter.
type SweepResult struct {
	Parameter string
	Values    []float64
	Scores    []float64
	Best      struct {
		Value float64
		Score float64
	}
	Worst struct {
		Value float64
		Score float64
	}
}

// Sweep evaluates the score at each value of one parameter.
func (a *Analyzer) Sweep(name string, values []float64) (*SweepResult, error) {
	result := &SweepResult{
		Parameter: name,
		Values:    values,
		Scores:    make([]float64, len(values)),
	}

	bestScore := math.Inf(-1)
	worstScore := math.Inf(1)
	for i, val := range values {
		test := a.values.Clone()
		test.Set(name, val)

		score, err := a.simulate(test)
		if err != nil {
			return nil, fmt.Errorf("sweep '%s'=%g: %w", name, val, err)
		}
		result.Scores[i] = score

		if score > bestScore {
			bestScore = score
			result.Best.Value = val
			result.Best.Score = score
		}
		if score < worstScore {
			worstScore = score
			result.Worst.Value = val
			result.Worst.Score = score
		}
	}
	return result, nil
}

// SweepRange sweeps evenly spaced values between min and max inclusive.
func (a *Analyzer) SweepRange(name string, min, max float64, steps int) (*SweepResult, error) {
	if steps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", steps)
	}
	values := make([]float64, steps)
	for i := range values {
		values[i] = min + (max-min)*float64(i)/float64(steps-1)
	}
	return a.Sweep(name, values)
}

// Gradient estimates d(score)/d(parameter) by central difference. A zero
// step picks 1% of the current value.
func (a *Analyzer) Gradient(name string, h float64) (float64, error) {
	base, err := a.values.Get(name)
	if err != nil {
		return 0, err
	}
	if h == 0 {
		h = 0.01 * base
		if h == 0 {
			h = 0.01
		}
	}

	plus := a.values.Clone()
	plus.Set(name, base+h)
	fplus, err := a.simulate(plus)
	if err != nil {
		return 0, err
	}

	minus := a.values.Clone()
	minus.Set(name, base-h)
	fminus, err := a.simulate(minus)
	if err != nil {
		return 0, err
	}

	return (fplus - fminus) / (2 * h), nil
}
