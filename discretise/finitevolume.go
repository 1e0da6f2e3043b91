// Package discretise lowers a validated model onto a finite-volume mesh:
// it packs the state variables into one dense vector, compiles the
// symbolic equations into vector derivative functions, and writes the
// concatenated expressions back onto the model for downstream use.
package discretise

import (
	"fmt"
	"sort"

	"github.com/fieldsim-xyz/go-fieldsim/mesh"
	"github.com/fieldsim-xyz/go-fieldsim/model"
	"github.com/fieldsim-xyz/go-fieldsim/params"
	"github.com/fieldsim-xyz/go-fieldsim/solver"
	"github.com/fieldsim-xyz/go-fieldsim/symbol"
)

// FiniteVolume discretises models on a one-dimensional cell mesh.
// Variables live on cell centres; gradients live on cell faces, with the
// boundary faces closed by the model's boundary conditions, read as the
// prescribed gradient on each side.
type FiniteVolume struct {
	mesh   *mesh.Mesh
	values *params.Values
}

// NewFiniteVolume creates a discretiser over the given mesh and
// parameter table.
func NewFiniteVolume(msh *mesh.Mesh, values *params.Values) *FiniteVolume {
	return &FiniteVolume{mesh: msh, values: values}
}

// System is a discretised model: a packed initial state, a derivative
// function over it, and the mask of algebraic entries.
type System struct {
	Y0        []float64
	Algebraic []bool
	F         solver.VecFunc

	labels []string
}

// StateLabels returns one label per packed state entry.
func (s *System) StateLabels() []string { return s.labels }

// Problem wraps the system as an initial value problem over tspan.
func (s *System) Problem(tspan [2]float64) *solver.Problem {
	return &solver.Problem{
		F:         s.F,
		Y0:        s.Y0,
		Tspan:     tspan,
		Labels:    s.labels,
		Algebraic: s.Algebraic,
	}
}

// varSlice locates one variable's cells inside the packed state vector.
type varSlice struct {
	start     int
	n         int
	domain    string // "" for a spatially uniform variable
	algebraic bool
}

// compiler carries everything needed to lower expressions.
type compiler struct {
	fv     *FiniteVolume
	m      *model.Model
	slices map[string]varSlice // by variable ID
}

// Discretise validates the model, fixes the state packing, compiles every
// equation, and writes the concatenated expressions back onto the model.
func (fv *FiniteVolume) Discretise(m *model.Model) (*System, error) {
	if err := m.CheckWellPosedness(); err != nil {
		return nil, fmt.Errorf("discretise: %w", err)
	}

	diffVars := m.Variables()
	algVars, err := algebraicVariables(m)
	if err != nil {
		return nil, err
	}

	c := &compiler{fv: fv, m: m, slices: make(map[string]varSlice)}

	var labels []string
	var algMask []bool
	total := 0
	place := func(v symbol.Symbol, algebraic bool) error {
		n := 1
		domain := ""
		if d := v.Domain(); len(d) > 0 {
			if len(d) > 1 {
				return fmt.Errorf("discretise: variable '%s' spans %d domains; finite volume handles one", v, len(d))
			}
			domain = d[0]
			sub, err := fv.mesh.Submesh(domain)
			if err != nil {
				return fmt.Errorf("discretise: %w", err)
			}
			n = sub.Cells()
		}
		c.slices[v.ID()] = varSlice{start: total, n: n, domain: domain, algebraic: algebraic}
		if n == 1 {
			labels = append(labels, v.Name())
		} else {
			for i := 0; i < n; i++ {
				labels = append(labels, fmt.Sprintf("%s[%d]", v.Name(), i))
			}
		}
		for i := 0; i < n; i++ {
			algMask = append(algMask, algebraic)
		}
		total += n
		return nil
	}
	for _, v := range diffVars {
		if err := place(v, false); err != nil {
			return nil, err
		}
	}
	for _, v := range algVars {
		if err := place(v, true); err != nil {
			return nil, err
		}
	}

	y0, err := c.packInitialConditions(diffVars, algVars, total)
	if err != nil {
		return nil, err
	}

	evals := make([]*operand, 0, len(diffVars)+len(algVars))
	targets := make([]varSlice, 0, len(diffVars)+len(algVars))
	for _, v := range diffVars {
		eqn := m.RHS()[v]
		op, err := c.compile(eqn)
		if err != nil {
			return nil, fmt.Errorf("discretise: equation for '%s': %w", v, err)
		}
		sl := c.slices[v.ID()]
		if err := checkTarget(op, sl); err != nil {
			return nil, fmt.Errorf("discretise: equation for '%s': %w", v, err)
		}
		evals = append(evals, op)
		targets = append(targets, sl)
	}
	for i, v := range algVars {
		op, err := c.compile(m.Algebraic()[i])
		if err != nil {
			return nil, fmt.Errorf("discretise: algebraic equation %d: %w", i, err)
		}
		sl := c.slices[v.ID()]
		if err := checkTarget(op, sl); err != nil {
			return nil, fmt.Errorf("discretise: algebraic equation %d: %w", i, err)
		}
		evals = append(evals, op)
		targets = append(targets, sl)
	}

	f := func(t float64, y []float64) []float64 {
		out := make([]float64, total)
		for i, op := range evals {
			sl := targets[i]
			switch op.kind {
			case kindConst:
				v := op.eval(t, y)[0]
				for j := 0; j < sl.n; j++ {
					out[sl.start+j] = v
				}
			default:
				copy(out[sl.start:sl.start+sl.n], op.eval(t, y))
			}
		}
		return out
	}

	writeBackConcatenated(m, diffVars)

	return &System{
		Y0:        y0,
		Algebraic: algMask,
		F:         f,
		labels:    labels,
	}, nil
}

// algebraicVariables pairs, in deterministic order, each algebraic
// equation with the state variable it introduces: the variables appearing
// in algebraic equations with no rhs entry of their own.
func algebraicVariables(m *model.Model) ([]symbol.Symbol, error) {
	inRHS := make(map[string]bool, len(m.RHS()))
	for v := range m.RHS() {
		inRHS[v.ID()] = true
	}

	seen := make(map[string]bool)
	var vars []symbol.Symbol
	for _, eqn := range m.Algebraic() {
		for _, n := range symbol.PreOrder(eqn) {
			v, ok := n.(*symbol.Variable)
			if !ok || inRHS[v.ID()] || seen[v.ID()] {
				continue
			}
			seen[v.ID()] = true
			vars = append(vars, v)
		}
	}
	sort.Slice(vars, func(i, j int) bool {
		if vars[i].Name() != vars[j].Name() {
			return vars[i].Name() < vars[j].Name()
		}
		return vars[i].ID() < vars[j].ID()
	})

	if len(vars) != len(m.Algebraic()) {
		return nil, fmt.Errorf("discretise: %d algebraic equations introduce %d new variables; need exactly one each",
			len(m.Algebraic()), len(vars))
	}
	return vars, nil
}

// packInitialConditions evaluates each variable's initial condition and
// broadcasts it over the variable's cells. Algebraic variables without an
// explicit initial condition start at zero.
func (c *compiler) packInitialConditions(diffVars, algVars []symbol.Symbol, total int) ([]float64, error) {
	y0 := make([]float64, total)
	fill := func(v symbol.Symbol, required bool) error {
		ic, ok := c.m.InitialConditions()[v]
		if !ok {
			if required {
				return fmt.Errorf("discretise: no initial condition for '%s'", v)
			}
			return nil
		}
		value, err := c.constEval(ic)
		if err != nil {
			return fmt.Errorf("discretise: initial condition for '%s': %w", v, err)
		}
		sl := c.slices[v.ID()]
		for i := 0; i < sl.n; i++ {
			y0[sl.start+i] = value
		}
		return nil
	}
	for _, v := range diffVars {
		if err := fill(v, true); err != nil {
			return nil, err
		}
	}
	for _, v := range algVars {
		if err := fill(v, false); err != nil {
			return nil, err
		}
	}
	return y0, nil
}

// writeBackConcatenated stores the stacked rhs and initial-condition
// expressions on the model, in the packing order.
func writeBackConcatenated(m *model.Model, diffVars []symbol.Symbol) {
	rhs := make([]symbol.Symbol, 0, len(diffVars))
	ics := make([]symbol.Symbol, 0, len(diffVars))
	for _, v := range diffVars {
		rhs = append(rhs, m.RHS()[v])
		if ic, ok := m.InitialConditions()[v]; ok {
			ics = append(ics, ic)
		}
	}
	m.SetConcatenatedRHS(symbol.NewConcatenation(rhs...))
	m.SetConcatenatedInitialConditions(symbol.NewConcatenation(ics...))
}

// checkTarget verifies a compiled equation produces values compatible
// with its variable's cells.
func checkTarget(op *operand, sl varSlice) error {
	switch op.kind {
	case kindConst:
		return nil
	case kindCell:
		if op.n != sl.n {
			return fmt.Errorf("produces %d cell values for %d cells", op.n, sl.n)
		}
		return nil
	default:
		return fmt.Errorf("evaluates to face values; expected cell values")
	}
}
