package sensitivity

import (
	"math"
	"testing"

	"github.com/fieldsim-xyz/go-fieldsim/model"
	"github.com/fieldsim-xyz/go-fieldsim/params"
	"github.com/fieldsim-xyz/go-fieldsim/solver"
	"github.com/fieldsim-xyz/go-fieldsim/symbol"
)

// decayModel builds dc/dt = div(D grad c) - k*c with zero-flux boundaries
// and a uniform initial profile. From a uniform start the diffusion term
// vanishes, so the mean decays like exp(-k*t).
func decayModel(t *testing.T) *model.Model {
	t.Helper()
	c := symbol.NewVariable("c", "electrolyte")
	flux := symbol.Mul(symbol.NewParameter("D"), symbol.Grad(c))

	m := model.New("decay")
	if err := m.SetRHS(map[symbol.Symbol]any{
		c: symbol.Sub(symbol.Diverg(flux), symbol.Mul(symbol.NewParameter("k"), c)),
	}); err != nil {
		t.Fatalf("SetRHS: %v", err)
	}
	if err := m.SetInitialConditions(map[symbol.Symbol]any{c: 1.0}); err != nil {
		t.Fatalf("SetInitialConditions: %v", err)
	}
	if err := m.SetBoundaryConditions(map[symbol.Symbol]map[string]any{
		flux: {"left": 0.0, "right": 0.0},
	}); err != nil {
		t.Fatalf("SetBoundaryConditions: %v", err)
	}
	return m
}

func decayValues() *params.Values {
	return params.NewValues(map[string]float64{
		"D": 1,
		"k": 0.5,
	})
}

func newDecayAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	return NewAnalyzer(decayModel(t), decayValues(), FinalMeanScorer()).
		WithMeshPoints(4).
		WithTimeSpan(0, 1)
}

func TestAnalyzeRanksReactionFirst(t *testing.T) {
	a := newDecayAnalyzer(t)

	result, err := a.Analyze([]string{"D", "k"}, 0.5)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	want := math.Exp(-0.5)
	if math.Abs(result.Baseline-want) > 1e-3 {
		t.Errorf("baseline = %v, want about %v", result.Baseline, want)
	}

	// Diffusion has no effect on a uniform profile; the sink dominates.
	if result.Ranking[0].Name != "k" {
		t.Errorf("top ranked parameter = %q, want k", result.Ranking[0].Name)
	}
	if result.Impact["k"] >= 0 {
		t.Errorf("stronger sink should lower the score, impact = %v", result.Impact["k"])
	}
	if math.Abs(result.Impact["D"]) > 1e-6 {
		t.Errorf("diffusivity impact = %v, want about 0", result.Impact["D"])
	}
}

func TestAnalyzeParallelMatchesSequential(t *testing.T) {
	a := newDecayAnalyzer(t)

	seq, err := a.Analyze([]string{"D", "k"}, 0.5)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	par, err := a.AnalyzeParallel([]string{"D", "k"}, 0.5)
	if err != nil {
		t.Fatalf("AnalyzeParallel failed: %v", err)
	}

	for _, name := range []string{"D", "k"} {
		if math.Abs(seq.Scores[name]-par.Scores[name]) > 1e-12 {
			t.Errorf("scores differ for %s: %v vs %v", name, seq.Scores[name], par.Scores[name])
		}
	}
}

func TestAnalyzeUnknownParameter(t *testing.T) {
	a := newDecayAnalyzer(t)
	if _, err := a.Analyze([]string{"missing"}, 0.1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestSweepRangeFindsMonotoneTrend(t *testing.T) {
	a := newDecayAnalyzer(t)

	result, err := a.SweepRange("k", 0.1, 1.0, 5)
	if err != nil {
		t.Fatalf("SweepRange failed: %v", err)
	}
	if len(result.Scores) != 5 {
		t.Fatalf("expected 5 scores, got %d", len(result.Scores))
	}
	for i := 1; i < len(result.Scores); i++ {
		if result.Scores[i] >= result.Scores[i-1] {
			t.Errorf("score should fall with k: scores = %v", result.Scores)
			break
		}
	}
	if result.Best.Value != 0.1 {
		t.Errorf("best value = %v, want 0.1", result.Best.Value)
	}
	if result.Worst.Value != 1.0 {
		t.Errorf("worst value = %v, want 1.0", result.Worst.Value)
	}
}

func TestSweepRangeRejectsSingleStep(t *testing.T) {
	a := newDecayAnalyzer(t)
	if _, err := a.SweepRange("k", 0, 1, 1); err == nil {
		t.Error("expected error for a single-step sweep")
	}
}

func TestGradientMatchesAnalyticDerivative(t *testing.T) {
	a := newDecayAnalyzer(t).WithOptions(solver.AccurateOptions())

	// d/dk exp(-k) at k=0.5 is -exp(-0.5).
	grad, err := a.Gradient("k", 0.01)
	if err != nil {
		t.Fatalf("Gradient failed: %v", err)
	}
	want := -math.Exp(-0.5)
	if math.Abs(grad-want) > 5e-3 {
		t.Errorf("gradient = %v, want about %v", grad, want)
	}
}
