package solver

import (
	"fmt"
	"math"
)

// ImplicitEuler solves using the backward Euler method.
// This is an A-stable implicit method suitable for stiff systems.
// It uses fixed-point iteration to solve the implicit equation.
//
// Algebraic entries are handled by damped fixed-point iteration on their
// residuals alongside the differential update, which converges for the
// semi-explicit index-1 systems the discretiser produces.
func ImplicitEuler(prob *Problem, opts *Options) (*Solution, error) {
	if opts == nil {
		opts = StiffOptions()
	}

	dt := opts.Dt
	maxiters := opts.Maxiters
	abstol := opts.Abstol
	dtmin := opts.Dtmin
	if dtmin <= 0 {
		dtmin = 1e-12
	}

	t0 := prob.Tspan[0]
	tf := prob.Tspan[1]
	f := prob.F
	n := len(prob.Y0)
	alg := prob.Algebraic

	algebraicAt := func(i int) bool {
		return len(alg) > i && alg[i]
	}

	tOut := []float64{t0}
	yOut := [][]float64{append([]float64(nil), prob.Y0...)}
	tcur := t0
	ycur := append([]float64(nil), prob.Y0...)
	nsteps := 0

	// Fixed-point iteration parameters
	maxFixedPoint := 50
	fixedPointTol := abstol * 10

	// step takes one backward Euler step of size dtcur, solving the
	// implicit equation by fixed-point iteration: differential entries
	// take y_{n+1} = y_n + dt * f(t_{n+1}, y_{n+1}), algebraic entries
	// relax toward zero residual. Reports whether the iteration converged.
	step := func(dtcur float64) ([]float64, bool) {
		tnext := tcur + dtcur

		// Explicit Euler guess for the differential entries.
		ynext := append([]float64(nil), ycur...)
		du := f(tcur, ycur)
		for i := 0; i < n; i++ {
			if !algebraicAt(i) {
				ynext[i] += dtcur * du[i]
			}
		}

		for iter := 0; iter < maxFixedPoint; iter++ {
			r := f(tnext, ynext)
			ynew := make([]float64, n)
			for i := 0; i < n; i++ {
				if algebraicAt(i) {
					ynew[i] = ynext[i] - r[i]
				} else {
					ynew[i] = ycur[i] + dtcur*r[i]
				}
			}

			maxDiff := 0.0
			for i := 0; i < n; i++ {
				diff := math.Abs(ynew[i] - ynext[i])
				if diff > maxDiff {
					maxDiff = diff
				}
			}

			ynext = ynew

			if math.IsNaN(maxDiff) || math.IsInf(maxDiff, 0) {
				return nil, false
			}
			if maxDiff < fixedPointTol {
				return ynext, true
			}
		}
		return nil, false
	}

	for tcur < tf && nsteps < maxiters {
		dtcur := dt
		if tcur+dtcur > tf {
			dtcur = tf - tcur
		}

		// The fixed-point iteration only contracts when the step is small
		// against the system's fastest mode; halve until it converges.
		ynext, ok := step(dtcur)
		for !ok && dtcur > dtmin {
			dtcur /= 2
			ynext, ok = step(dtcur)
		}
		if !ok {
			return nil, fmt.Errorf("solver: implicit iteration failed to converge at t=%g with dt=%g", tcur, dtcur)
		}

		tcur += dtcur
		ycur = ynext
		tOut = append(tOut, tcur)
		yOut = append(yOut, append([]float64(nil), ycur...))
		nsteps++
	}

	return &Solution{T: tOut, Y: yOut, Labels: prob.Labels}, nil
}
