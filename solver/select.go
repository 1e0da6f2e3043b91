package solver

import (
	"github.com/fieldsim-xyz/go-fieldsim/model"
)

// Integrator pairs a named integration strategy with its driver. The
// closed set of integrators is produced by Default; concrete models pick
// a form, not an implementation.
type Integrator struct {
	Name string
	run  func(prob *Problem, opts *Options) (*Solution, error)
}

// Solve runs the integrator on the problem.
func (in Integrator) Solve(prob *Problem, opts *Options) (*Solution, error) {
	return in.run(prob, opts)
}

// Default returns the default integrator for a model form: adaptive Tsit5
// for plain ODE models, backward Euler for models carrying algebraic
// constraints.
func Default(form model.SolverForm) Integrator {
	switch form {
	case model.FormDAE:
		return Integrator{Name: "ImplicitEuler", run: ImplicitEuler}
	default:
		return Integrator{
			Name: "Tsit5",
			run: func(prob *Problem, opts *Options) (*Solution, error) {
				return Solve(prob, Tsit5(), opts)
			},
		}
	}
}
