// Package solver implements time integrators for the dense systems
// produced by the discretiser: adaptive explicit Runge-Kutta methods for
// plain ODE models, and a fixed-step implicit method for models carrying
// algebraic constraints.
package solver

import (
	"errors"
	"math"
)

// VecFunc computes the time derivative of each differential entry of the
// state vector y, and the constraint residual of each algebraic entry.
type VecFunc func(t float64, y []float64) []float64

// Problem is an initial value problem over a packed state vector.
type Problem struct {
	F         VecFunc
	Y0        []float64  // initial state
	Tspan     [2]float64 // time span [t0, tf]
	Labels    []string   // one label per state entry
	Algebraic []bool     // true marks entries whose F value is a residual, not a derivative
}

// HasAlgebraic reports whether any state entry is an algebraic constraint.
func (p *Problem) HasAlgebraic() bool {
	for _, a := range p.Algebraic {
		if a {
			return true
		}
	}
	return false
}

// Method is an explicit Runge-Kutta method given by its Butcher tableau.
type Method struct {
	Name  string
	Order int
	C     []float64   // Runge-Kutta nodes
	A     [][]float64 // Runge-Kutta matrix
	B     []float64   // solution weights
	Bhat  []float64   // error estimate weights
}

// Options contains integrator configuration parameters.
type Options struct {
	Dt       float64 // initial time step
	Dtmin    float64 // minimum time step
	Dtmax    float64 // maximum time step
	Abstol   float64 // absolute error tolerance
	Reltol   float64 // relative error tolerance
	Maxiters int     // maximum number of steps
	Adaptive bool    // use adaptive step size control
}

// DefaultOptions returns balanced settings suitable for most problems.
func DefaultOptions() *Options {
	return &Options{
		Dt:       0.01,
		Dtmin:    1e-6,
		Dtmax:    0.1,
		Abstol:   1e-6,
		Reltol:   1e-3,
		Maxiters: 100000,
		Adaptive: true,
	}
}

// AccurateOptions returns settings for high-precision runs.
func AccurateOptions() *Options {
	return &Options{
		Dt:       0.001,
		Dtmin:    1e-8,
		Dtmax:    0.1,
		Abstol:   1e-9,
		Reltol:   1e-6,
		Maxiters: 1000000,
		Adaptive: true,
	}
}

// StiffOptions returns settings for stiff systems and the implicit method.
func StiffOptions() *Options {
	return &Options{
		Dt:       0.001,
		Dtmin:    1e-10,
		Dtmax:    0.01,
		Abstol:   1e-8,
		Reltol:   1e-5,
		Maxiters: 500000,
		Adaptive: true,
	}
}

// Solution is the trajectory computed by an integrator.
type Solution struct {
	T      []float64   // time points
	Y      [][]float64 // state at each time point
	Labels []string    // one label per state entry
}

// GetVariable extracts the time series for one labelled state entry.
func (s *Solution) GetVariable(label string) []float64 {
	idx := -1
	for i, l := range s.Labels {
		if l == label {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(s.Y))
	for i, y := range s.Y {
		out[i] = y[idx]
	}
	return out
}

// Final returns the final state, or nil for an empty trajectory.
func (s *Solution) Final() []float64 {
	if len(s.Y) == 0 {
		return nil
	}
	return s.Y[len(s.Y)-1]
}

// Steps returns the number of accepted steps.
func (s *Solution) Steps() int {
	if len(s.T) == 0 {
		return 0
	}
	return len(s.T) - 1
}

// ErrAlgebraicConstraints is returned when an explicit method is given a
// problem with algebraic entries; those need the implicit solver.
var ErrAlgebraicConstraints = errors.New("solver: explicit method cannot handle algebraic constraints")

// Solve integrates the problem with the given explicit Runge-Kutta method.
func Solve(prob *Problem, method *Method, opts *Options) (*Solution, error) {
	if method == nil {
		method = Tsit5()
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if prob.HasAlgebraic() {
		return nil, ErrAlgebraicConstraints
	}

	t0 := prob.Tspan[0]
	tf := prob.Tspan[1]
	f := prob.F
	n := len(prob.Y0)

	tOut := []float64{t0}
	yOut := [][]float64{append([]float64(nil), prob.Y0...)}
	tcur := t0
	ycur := append([]float64(nil), prob.Y0...)
	dtcur := opts.Dt
	nsteps := 0

	numStages := len(method.C)

	for tcur < tf && nsteps < opts.Maxiters {
		// Don't overshoot the final time
		if tcur+dtcur > tf {
			dtcur = tf - tcur
		}

		// Compute Runge-Kutta stages
		k := make([][]float64, numStages)
		k[0] = f(tcur, ycur)

		for stage := 1; stage < numStages; stage++ {
			tstage := tcur + method.C[stage]*dtcur
			ystage := append([]float64(nil), ycur...)
			for j := 0; j < stage; j++ {
				aj := 0.0
				if len(method.A) > stage && len(method.A[stage]) > j {
					aj = method.A[stage][j]
				}
				if aj != 0 {
					scale := dtcur * aj
					for i := 0; i < n; i++ {
						ystage[i] += scale * k[j][i]
					}
				}
			}
			k[stage] = f(tstage, ystage)
		}

		// Candidate solution at the next step
		ynext := append([]float64(nil), ycur...)
		for j := 0; j < len(method.B); j++ {
			if method.B[j] != 0 {
				scale := dtcur * method.B[j]
				for i := 0; i < n; i++ {
					ynext[i] += scale * k[j][i]
				}
			}
		}

		// Error estimate for adaptive stepping
		err := 0.0
		if opts.Adaptive {
			for i := 0; i < n; i++ {
				errest := 0.0
				for j := 0; j < len(method.Bhat); j++ {
					errest += dtcur * method.Bhat[j] * k[j][i]
				}
				scale := opts.Abstol + opts.Reltol*math.Max(math.Abs(ycur[i]), math.Abs(ynext[i]))
				if scale == 0 {
					scale = opts.Abstol
				}
				val := math.Abs(errest) / scale
				if val > err {
					err = val
				}
			}
		}

		// Accept or reject the step
		if !opts.Adaptive || err <= 1.0 || dtcur <= opts.Dtmin {
			tcur += dtcur
			ycur = ynext
			tOut = append(tOut, tcur)
			yOut = append(yOut, append([]float64(nil), ycur...))
			nsteps++

			if opts.Adaptive && err > 0 {
				factor := 0.9 * math.Pow(1.0/err, 1.0/float64(method.Order+1))
				factor = math.Min(factor, 5.0)
				dtcur = math.Min(opts.Dtmax, math.Max(opts.Dtmin, dtcur*factor))
			}
		} else {
			factor := 0.9 * math.Pow(1.0/err, 1.0/float64(method.Order+1))
			factor = math.Max(factor, 0.1)
			dtcur = math.Max(opts.Dtmin, dtcur*factor)
		}
	}

	return &Solution{T: tOut, Y: yOut, Labels: prob.Labels}, nil
}
