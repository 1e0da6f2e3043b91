package model

import (
	"fmt"

	"github.com/fieldsim-xyz/go-fieldsim/symbol"
)

// Update merges the given submodels' registries into m, in order. Every
// state variable may be owned by exactly one submodel: if any submodel's
// rhs shares a variable identity with the host or with an earlier
// submodel in the same call, the whole call fails and the host is left
// unchanged.
//
// The algebraic and initial_conditions_ydot registries are not merged;
// a host that needs them populates them directly.
func (m *Model) Update(submodels ...*Model) error {
	seen := make(map[string]bool, len(m.rhs))
	for v := range m.rhs {
		seen[v.ID()] = true
	}
	for _, sub := range submodels {
		for _, v := range sub.rhsOrder {
			if seen[v.ID()] {
				return fmt.Errorf("%w: '%s'", ErrDuplicateVariable, v)
			}
			seen[v.ID()] = true
		}
	}

	for _, sub := range submodels {
		for _, v := range sub.rhsOrder {
			m.rhs[v] = sub.rhs[v]
			m.rhsOrder = append(m.rhsOrder, v)
		}
		for v, eqn := range sub.initialConditions {
			m.initialConditions[v] = eqn
		}
		for key, sides := range sub.boundaryConditions {
			// Copy the inner map so the host never aliases submodel state.
			out := make(map[string]symbol.Symbol, len(sides))
			for side, value := range sides {
				out[side] = value
			}
			m.boundaryConditions[key] = out
		}
		for name, s := range sub.variables {
			m.variables[name] = s
		}
	}
	return nil
}
