// Package model implements the model container at the heart of the
// framework: the equation registries a submodel populates, the composition
// of many submodels into one model, and the well-posedness check that runs
// before any discretisation or solve is attempted.
package model

import (
	"fmt"
	"sort"

	"github.com/fieldsim-xyz/go-fieldsim/symbol"
)

// Equations maps a state variable to the expression for its time
// derivative, its initial value, or its initial time-derivative value,
// depending on which registry it sits in. Keys compare by identity: the
// same variable node, not a structurally equal one.
type Equations map[symbol.Symbol]symbol.Symbol

// BoundaryConditions maps a key expression (the state variable itself, or
// a derived quantity such as a flux that contains it) to the condition
// value on each boundary side.
type BoundaryConditions map[symbol.Symbol]map[string]symbol.Symbol

// SolverForm tags which default solver family suits a model.
type SolverForm int

const (
	// FormODE marks a model with time-derivative equations only.
	FormODE SolverForm = iota

	// FormDAE marks a model that also carries algebraic constraints and
	// needs a differential-algebraic solver.
	FormDAE
)

// Defaults records the collaborators a model was authored against. The
// registry only stores the choices; selection logic lives with the
// concrete model.
type Defaults struct {
	ParameterPath string     // default parameter table
	MeshPoints    int        // default cells per domain
	Form          SolverForm // default solver family
}

// Model holds the equation registries for one submodel or one composed
// model. Registries are populated through the setters, merged with Update,
// and validated with CheckWellPosedness; they are not safe for concurrent
// mutation.
type Model struct {
	Name     string
	Defaults Defaults

	rhs                   Equations
	rhsOrder              []symbol.Symbol
	algebraic             []symbol.Symbol
	initialConditions     Equations
	initialConditionsYdot Equations
	boundaryConditions    BoundaryConditions
	variables             map[string]symbol.Symbol

	concatenatedRHS               symbol.Symbol
	concatenatedInitialConditions symbol.Symbol
}

// New creates an empty model.
func New(name string) *Model {
	return &Model{
		Name:                  name,
		rhs:                   make(Equations),
		initialConditions:     make(Equations),
		initialConditionsYdot: make(Equations),
		boundaryConditions:    make(BoundaryConditions),
		variables:             make(map[string]symbol.Symbol),
	}
}

// normalize lifts bare numbers to scalars and checks that every variable
// and its equation agree on domain. It builds a fresh map, so a failed
// call leaves the registry untouched and the caller's map is never
// aliased.
func normalize(eqs map[symbol.Symbol]any, name string) (Equations, error) {
	out := make(Equations, len(eqs))
	for v, raw := range eqs {
		eqn, err := symbol.Lift(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(eqn.Domain()) > 0 && !symbol.DomainsEqual(v.Domain(), eqn.Domain()) {
			return nil, fmt.Errorf("%w in %s for variable '%s'", ErrDomainMismatch, name, v)
		}
		out[v] = eqn
	}
	return out, nil
}

// sortedVariables fixes a deterministic ordering for a registry's keys:
// by name, then domain, then identity.
func sortedVariables(eqs Equations) []symbol.Symbol {
	vars := make([]symbol.Symbol, 0, len(eqs))
	for v := range eqs {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool {
		if vars[i].Name() != vars[j].Name() {
			return vars[i].Name() < vars[j].Name()
		}
		di := fmt.Sprint(vars[i].Domain())
		dj := fmt.Sprint(vars[j].Domain())
		if di != dj {
			return di < dj
		}
		return vars[i].ID() < vars[j].ID()
	})
	return vars
}

// SetRHS replaces the time-derivative registry. Bare numbers are lifted to
// scalars; a domain mismatch between a variable and its equation fails the
// whole call and leaves the registry unchanged.
func (m *Model) SetRHS(eqs map[symbol.Symbol]any) error {
	normalized, err := normalize(eqs, "rhs")
	if err != nil {
		return err
	}
	m.rhs = normalized
	m.rhsOrder = sortedVariables(normalized)
	return nil
}

// RHS returns the live time-derivative registry. Callers must not mutate
// it; all mutation goes through SetRHS and Update.
func (m *Model) RHS() Equations { return m.rhs }

// Variables returns the rhs state variables in the model's deterministic
// order: set order for a single submodel, composition order after Update.
func (m *Model) Variables() []symbol.Symbol {
	return append([]symbol.Symbol(nil), m.rhsOrder...)
}

// SetInitialConditions replaces the initial-condition registry, with the
// same lifting and domain rules as SetRHS.
func (m *Model) SetInitialConditions(eqs map[symbol.Symbol]any) error {
	normalized, err := normalize(eqs, "initial_conditions")
	if err != nil {
		return err
	}
	m.initialConditions = normalized
	return nil
}

// InitialConditions returns the live initial-condition registry.
func (m *Model) InitialConditions() Equations { return m.initialConditions }

// SetInitialConditionsYdot replaces the registry of initial values for the
// time derivatives, used by differential-algebraic solvers.
func (m *Model) SetInitialConditionsYdot(eqs map[symbol.Symbol]any) error {
	normalized, err := normalize(eqs, "initial_conditions_ydot")
	if err != nil {
		return err
	}
	m.initialConditionsYdot = normalized
	return nil
}

// InitialConditionsYdot returns the live ydot initial-condition registry.
func (m *Model) InitialConditionsYdot() Equations { return m.initialConditionsYdot }

// SetBoundaryConditions replaces the boundary-condition registry. Bare
// numbers are lifted to scalars. Boundary values are evaluated at a side,
// so no domain check applies here; the asymmetry with SetRHS is
// deliberate.
func (m *Model) SetBoundaryConditions(bcs map[symbol.Symbol]map[string]any) error {
	out := make(BoundaryConditions, len(bcs))
	for key, sides := range bcs {
		normalized := make(map[string]symbol.Symbol, len(sides))
		for side, raw := range sides {
			value, err := symbol.Lift(raw)
			if err != nil {
				return fmt.Errorf("boundary_conditions: %w", err)
			}
			normalized[side] = value
		}
		out[key] = normalized
	}
	m.boundaryConditions = out
	return nil
}

// BoundaryConditions returns the live boundary-condition registry.
func (m *Model) BoundaryConditions() BoundaryConditions { return m.boundaryConditions }

// SetAlgebraic replaces the ordered list of expressions constrained to
// equal zero. Stored verbatim.
func (m *Model) SetAlgebraic(exprs []symbol.Symbol) {
	m.algebraic = append([]symbol.Symbol(nil), exprs...)
}

// Algebraic returns the live algebraic-equation list.
func (m *Model) Algebraic() []symbol.Symbol { return m.algebraic }

// SetVariables replaces the descriptive output-variable map. Stored
// verbatim.
func (m *Model) SetVariables(vars map[string]symbol.Symbol) {
	out := make(map[string]symbol.Symbol, len(vars))
	for name, s := range vars {
		out[name] = s
	}
	m.variables = out
}

// OutputVariables returns the live descriptive-variable map.
func (m *Model) OutputVariables() map[string]symbol.Symbol { return m.variables }

// At returns the rhs equation for the given state variable, the shorthand
// lookup used during submodel assembly.
func (m *Model) At(v symbol.Symbol) (symbol.Symbol, error) {
	eqn, ok := m.rhs[v]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrVariableNotFound, v)
	}
	return eqn, nil
}

// SetConcatenatedRHS stores the stacked state-vector expression produced
// by a discretiser.
func (m *Model) SetConcatenatedRHS(s symbol.Symbol) { m.concatenatedRHS = s }

// ConcatenatedRHS returns the stacked state-vector expression, or nil if
// the model has not been discretised.
func (m *Model) ConcatenatedRHS() symbol.Symbol { return m.concatenatedRHS }

// SetConcatenatedInitialConditions stores the stacked initial-value
// expression produced by a discretiser.
func (m *Model) SetConcatenatedInitialConditions(s symbol.Symbol) {
	m.concatenatedInitialConditions = s
}

// ConcatenatedInitialConditions returns the stacked initial-value
// expression, or nil if the model has not been discretised.
func (m *Model) ConcatenatedInitialConditions() symbol.Symbol {
	return m.concatenatedInitialConditions
}
