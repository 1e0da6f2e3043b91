package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/fieldsim-xyz/go-fieldsim/model"
)

// decayProblem is dy/dt = -y with y(0)=1; exact solution exp(-t).
func decayProblem() *Problem {
	return &Problem{
		F: func(_ float64, y []float64) []float64 {
			return []float64{-y[0]}
		},
		Y0:     []float64{1},
		Tspan:  [2]float64{0, 1},
		Labels: []string{"y"},
	}
}

func TestSolveExponentialDecay(t *testing.T) {
	tests := []struct {
		name   string
		method *Method
		tol    float64
	}{
		{"Tsit5", Tsit5(), 1e-4},
		{"RK45", RK45(), 1e-4},
		{"Heun", Heun(), 1e-2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol, err := Solve(decayProblem(), tt.method, DefaultOptions())
			if err != nil {
				t.Fatalf("Solve returned error: %v", err)
			}
			final := sol.Final()[0]
			exact := math.Exp(-1)
			if math.Abs(final-exact) > tt.tol {
				t.Errorf("Expected ~%f, got %f", exact, final)
			}
		})
	}
}

func TestSolveFixedStepEuler(t *testing.T) {
	opts := &Options{Dt: 0.001, Maxiters: 10000, Adaptive: false}
	sol, err := Solve(decayProblem(), Euler(), opts)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if math.Abs(sol.Final()[0]-math.Exp(-1)) > 1e-2 {
		t.Errorf("Expected ~%f, got %f", math.Exp(-1), sol.Final()[0])
	}
}

func TestSolveReachesFinalTime(t *testing.T) {
	sol, err := Solve(decayProblem(), Tsit5(), nil)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if math.Abs(sol.T[len(sol.T)-1]-1) > 1e-12 {
		t.Errorf("Expected final time 1, got %f", sol.T[len(sol.T)-1])
	}
	if sol.Steps() < 1 {
		t.Error("Expected at least one accepted step")
	}
}

func TestSolveRejectsAlgebraic(t *testing.T) {
	prob := decayProblem()
	prob.Algebraic = []bool{true}
	if _, err := Solve(prob, Tsit5(), nil); !errors.Is(err, ErrAlgebraicConstraints) {
		t.Errorf("Expected ErrAlgebraicConstraints, got: %v", err)
	}
}

func TestImplicitEulerDecay(t *testing.T) {
	opts := &Options{Dt: 0.001, Maxiters: 10000, Abstol: 1e-8}
	sol, err := ImplicitEuler(decayProblem(), opts)
	if err != nil {
		t.Fatalf("ImplicitEuler returned error: %v", err)
	}
	if math.Abs(sol.Final()[0]-math.Exp(-1)) > 1e-2 {
		t.Errorf("Expected ~%f, got %f", math.Exp(-1), sol.Final()[0])
	}
}

func TestImplicitEulerAlgebraicConstraint(t *testing.T) {
	// dy0/dt = -y0, and y1 constrained by 0 = y1 - 2*y0.
	prob := &Problem{
		F: func(_ float64, y []float64) []float64 {
			return []float64{-y[0], y[1] - 2*y[0]}
		},
		Y0:        []float64{1, 2},
		Tspan:     [2]float64{0, 1},
		Labels:    []string{"y0", "y1"},
		Algebraic: []bool{false, true},
	}

	opts := &Options{Dt: 0.001, Maxiters: 10000, Abstol: 1e-8}
	sol, err := ImplicitEuler(prob, opts)
	if err != nil {
		t.Fatalf("ImplicitEuler returned error: %v", err)
	}

	final := sol.Final()
	if math.Abs(final[1]-2*final[0]) > 1e-4 {
		t.Errorf("Constraint violated at final state: y1=%f, 2*y0=%f", final[1], 2*final[0])
	}
}

func TestSolutionGetVariable(t *testing.T) {
	sol := &Solution{
		T:      []float64{0, 1},
		Y:      [][]float64{{1, 10}, {2, 20}},
		Labels: []string{"a", "b"},
	}

	b := sol.GetVariable("b")
	if len(b) != 2 || b[0] != 10 || b[1] != 20 {
		t.Errorf("Expected [10 20], got %v", b)
	}
	if sol.GetVariable("missing") != nil {
		t.Error("Expected nil for an unknown label")
	}
}

func TestDefaultIntegratorSelection(t *testing.T) {
	tests := []struct {
		name string
		form model.SolverForm
		want string
	}{
		{"ode form", model.FormODE, "Tsit5"},
		{"dae form", model.FormDAE, "ImplicitEuler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Default(tt.form)
			if in.Name != tt.want {
				t.Errorf("Expected integrator %s, got %s", tt.want, in.Name)
			}
		})
	}
}

func TestDefaultIntegratorSolves(t *testing.T) {
	sol, err := Default(model.FormODE).Solve(decayProblem(), nil)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if math.Abs(sol.Final()[0]-math.Exp(-1)) > 1e-3 {
		t.Errorf("Expected ~%f, got %f", math.Exp(-1), sol.Final()[0])
	}
}
