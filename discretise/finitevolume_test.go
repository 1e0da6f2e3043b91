package discretise

import (
	"errors"
	"math"
	"testing"

	"github.com/fieldsim-xyz/go-fieldsim/mesh"
	"github.com/fieldsim-xyz/go-fieldsim/model"
	"github.com/fieldsim-xyz/go-fieldsim/params"
	"github.com/fieldsim-xyz/go-fieldsim/solver"
	"github.com/fieldsim-xyz/go-fieldsim/symbol"
)

func testValues() *params.Values {
	return params.NewValues(map[string]float64{
		"D": 1,
		"k": 0.5,
	})
}

func testMesh(t *testing.T, npts int) *mesh.Mesh {
	t.Helper()
	m, err := mesh.NewUniform(testValues(), npts, "electrolyte")
	if err != nil {
		t.Fatalf("NewUniform: %v", err)
	}
	return m
}

// diffusionModel builds dc/dt = div(D grad c) with zero-flux boundaries.
func diffusionModel(t *testing.T) *model.Model {
	t.Helper()
	c := symbol.NewVariable("c", "electrolyte")
	eqn := symbol.Diverg(symbol.Mul(symbol.NewParameter("D"), symbol.Grad(c)))
	flux := symbol.Mul(symbol.NewParameter("D"), symbol.Grad(c))

	m := model.New("diffusion")
	if err := m.SetRHS(map[symbol.Symbol]any{c: eqn}); err != nil {
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

func TestDiscretiseDiffusion(t *testing.T) {
	m := diffusionModel(t)
	fv := NewFiniteVolume(testMesh(t, 8), testValues())

	sys, err := fv.Discretise(m)
	if err != nil {
		t.Fatalf("Discretise returned error: %v", err)
	}

	if len(sys.Y0) != 8 {
		t.Fatalf("Expected 8 state entries, got %d", len(sys.Y0))
	}
	for i, v := range sys.Y0 {
		if v != 1.0 {
			t.Errorf("Y0[%d] = %f, expected broadcast initial value 1", i, v)
		}
	}
	if sys.StateLabels()[0] != "c[0]" || sys.StateLabels()[7] != "c[7]" {
		t.Errorf("Unexpected labels: %v", sys.StateLabels())
	}

	// Uniform state with zero-flux boundaries is steady.
	du := sys.F(0, sys.Y0)
	for i, v := range du {
		if math.Abs(v) > 1e-12 {
			t.Errorf("du[%d] = %g, expected 0 for uniform state", i, v)
		}
	}
}

func TestDiscretiseDiffusionRelaxes(t *testing.T) {
	m := diffusionModel(t)
	fv := NewFiniteVolume(testMesh(t, 8), testValues())
	sys, err := fv.Discretise(m)
	if err != nil {
		t.Fatalf("Discretise returned error: %v", err)
	}

	// Perturb one cell; diffusion with zero-flux walls conserves the
	// total and flattens the profile.
	y0 := append([]float64(nil), sys.Y0...)
	y0[3] += 1
	prob := sys.Problem([2]float64{0, 10})
	prob.Y0 = y0

	sol, err := solver.Solve(prob, solver.Tsit5(), nil)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	final := sol.Final()
	mean := 0.0
	for _, v := range final {
		mean += v
	}
	mean /= float64(len(final))
	if math.Abs(mean-(1+1.0/8.0)) > 1e-6 {
		t.Errorf("Total not conserved: mean %f", mean)
	}
	for i, v := range final {
		if math.Abs(v-mean) > 1e-3 {
			t.Errorf("Profile not flat at cell %d: %f vs mean %f", i, v, mean)
		}
	}
}

func TestDiscretiseUniformVariable(t *testing.T) {
	// A variable with no domain occupies a single state slot.
	c := symbol.NewVariable("c")
	eqn := symbol.Mul(symbol.Neg(symbol.NewParameter("k")), c)

	m := model.New("decay")
	if err := m.SetRHS(map[symbol.Symbol]any{c: eqn}); err != nil {
		t.Fatalf("SetRHS: %v", err)
	}
	if err := m.SetInitialConditions(map[symbol.Symbol]any{c: 1.0}); err != nil {
		t.Fatalf("SetInitialConditions: %v", err)
	}

	fv := NewFiniteVolume(testMesh(t, 4), testValues())
	sys, err := fv.Discretise(m)
	if err != nil {
		t.Fatalf("Discretise returned error: %v", err)
	}
	if len(sys.Y0) != 1 || sys.StateLabels()[0] != "c" {
		t.Fatalf("Expected one state entry labelled 'c', got %v", sys.StateLabels())
	}

	sol, err := solver.Solve(sys.Problem([2]float64{0, 1}), solver.Tsit5(), nil)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	exact := math.Exp(-0.5)
	if math.Abs(sol.Final()[0]-exact) > 1e-4 {
		t.Errorf("Expected ~%f, got %f", exact, sol.Final()[0])
	}
}

func TestDiscretiseAlgebraicPairing(t *testing.T) {
	c := symbol.NewVariable("c")
	phi := symbol.NewVariable("phi")

	m := model.New("dae")
	if err := m.SetRHS(map[symbol.Symbol]any{
		c: symbol.Mul(symbol.NewScalar(-1), c),
	}); err != nil {
		t.Fatalf("SetRHS: %v", err)
	}
	if err := m.SetInitialConditions(map[symbol.Symbol]any{c: 1.0, phi: 2.0}); err != nil {
		t.Fatalf("SetInitialConditions: %v", err)
	}
	// 0 = phi - 2c
	m.SetAlgebraic([]symbol.Symbol{
		symbol.Sub(phi, symbol.Mul(symbol.NewScalar(2), c)),
	})

	fv := NewFiniteVolume(testMesh(t, 4), testValues())
	sys, err := fv.Discretise(m)
	if err != nil {
		t.Fatalf("Discretise returned error: %v", err)
	}

	if len(sys.Y0) != 2 {
		t.Fatalf("Expected 2 state entries, got %d", len(sys.Y0))
	}
	if !sys.Algebraic[1] || sys.Algebraic[0] {
		t.Errorf("Expected algebraic mask [false true], got %v", sys.Algebraic)
	}
	if sys.Y0[1] != 2.0 {
		t.Errorf("Algebraic initial condition not packed: %v", sys.Y0)
	}

	sol, err := solver.ImplicitEuler(sys.Problem([2]float64{0, 1}),
		&solver.Options{Dt: 0.001, Maxiters: 10000, Abstol: 1e-8})
	if err != nil {
		t.Fatalf("ImplicitEuler returned error: %v", err)
	}
	final := sol.Final()
	if math.Abs(final[1]-2*final[0]) > 1e-4 {
		t.Errorf("Constraint violated: phi=%f, 2c=%f", final[1], 2*final[0])
	}
}

func TestDiscretiseWritesBackConcatenated(t *testing.T) {
	m := diffusionModel(t)
	fv := NewFiniteVolume(testMesh(t, 4), testValues())
	if _, err := fv.Discretise(m); err != nil {
		t.Fatalf("Discretise returned error: %v", err)
	}

	if m.ConcatenatedRHS() == nil {
		t.Error("Expected concatenated rhs to be written back")
	}
	if m.ConcatenatedInitialConditions() == nil {
		t.Error("Expected concatenated initial conditions to be written back")
	}
	if _, ok := m.ConcatenatedRHS().(*symbol.Concatenation); !ok {
		t.Errorf("Expected a concatenation node, got %T", m.ConcatenatedRHS())
	}
}

func TestDiscretiseRefusesIllPosedModel(t *testing.T) {
	c := symbol.NewVariable("c", "electrolyte")
	m := model.New("bad")
	if err := m.SetRHS(map[symbol.Symbol]any{c: symbol.NewScalar(0)}); err != nil {
		t.Fatalf("SetRHS: %v", err)
	}
	// No initial condition.

	fv := NewFiniteVolume(testMesh(t, 4), testValues())
	_, err := fv.Discretise(m)
	if !errors.Is(err, model.ErrMissingInitialCondition) {
		t.Errorf("Expected ErrMissingInitialCondition, got: %v", err)
	}
}

func TestDiscretiseMissingParameter(t *testing.T) {
	c := symbol.NewVariable("c")
	m := model.New("m")
	if err := m.SetRHS(map[symbol.Symbol]any{
		c: symbol.Mul(symbol.NewParameter("unknown"), c),
	}); err != nil {
		t.Fatalf("SetRHS: %v", err)
	}
	if err := m.SetInitialConditions(map[symbol.Symbol]any{c: 1.0}); err != nil {
		t.Fatalf("SetInitialConditions: %v", err)
	}

	fv := NewFiniteVolume(testMesh(t, 4), testValues())
	if _, err := fv.Discretise(m); err == nil {
		t.Error("Expected an error for an unknown parameter")
	}
}

func TestDiscretiseAlgebraicMismatch(t *testing.T) {
	c := symbol.NewVariable("c")
	m := model.New("m")
	if err := m.SetRHS(map[symbol.Symbol]any{c: symbol.NewScalar(0)}); err != nil {
		t.Fatalf("SetRHS: %v", err)
	}
	if err := m.SetInitialConditions(map[symbol.Symbol]any{c: 1.0}); err != nil {
		t.Fatalf("SetInitialConditions: %v", err)
	}
	// Constraint that introduces no new variable.
	m.SetAlgebraic([]symbol.Symbol{symbol.Sub(c, symbol.NewScalar(1))})

	fv := NewFiniteVolume(testMesh(t, 4), testValues())
	if _, err := fv.Discretise(m); err == nil {
		t.Error("Expected an error pairing algebraic equations with variables")
	}
}
