package model

import (
	"fmt"

	"github.com/fieldsim-xyz/go-fieldsim/symbol"
)

// CheckWellPosedness confirms the composed model is solvable in
// principle, before any discretisation:
//
//  1. every rhs variable has an initial condition;
//  2. every rhs variable whose equation contains spatial derivatives
//     appears, by identity, somewhere inside a boundary-condition key.
//
// Boundary conditions are often stated on a derived quantity such as a
// flux rather than on the state variable itself, so the second pass
// searches the full pre-order traversal of each key instead of doing a
// direct lookup.
//
// The check is a pure read; it can be re-run after the model is amended.
// The first violation aborts the check.
func (m *Model) CheckWellPosedness() error {
	for _, v := range m.rhsOrder {
		if _, ok := m.initialConditions[v]; !ok {
			return fmt.Errorf("%w '%s'", ErrMissingInitialCondition, v)
		}
	}

	for _, v := range m.rhsOrder {
		eqn := m.rhs[v]
		if !symbol.HasSpatialDerivatives(eqn) {
			continue
		}
		found := false
		for key := range m.boundaryConditions {
			if symbol.ContainsID(key, v.ID()) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w '%s' with equation '%s'", ErrMissingBoundaryCondition, v, eqn)
		}
	}
	return nil
}
