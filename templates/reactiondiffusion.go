package templates

import (
	"fmt"

	"github.com/fieldsim-xyz/go-fieldsim/model"
	"github.com/fieldsim-xyz/go-fieldsim/params"
	"github.com/fieldsim-xyz/go-fieldsim/symbol"
)

// ReactionDiffusionTemplate builds a coupled model from two submodels: a
// diffusing species with a first-order sink, and a lumped thermal state.
// The capacitance variant adds a surface-potential constraint and switches
// the default solver family to the differential-algebraic one.
type ReactionDiffusionTemplate struct{}

func (t *ReactionDiffusionTemplate) Name() string {
	return "reaction-diffusion"
}

func (t *ReactionDiffusionTemplate) Description() string {
	return "Diffusion with a first-order reaction sink and a lumped thermal state"
}

func (t *ReactionDiffusionTemplate) Parameters() []Parameter {
	return []Parameter{
		{
			Name:        "domain",
			Description: "Spatial domain the species lives on",
			Type:        "string",
			Default:     "electrolyte",
			Required:    false,
		},
		{
			Name:        "mesh_points",
			Description: "Default number of mesh cells",
			Type:        "int",
			Default:     20,
			Required:    false,
		},
		{
			Name:        "capacitance",
			Description: "Add the double-layer surface potential constraint",
			Type:        "bool",
			Default:     false,
			Required:    false,
		},
	}
}

func (t *ReactionDiffusionTemplate) Generate(ps map[string]any) (*model.Model, error) {
	domain := getStringParam(ps, "domain", "electrolyte")
	meshPoints := getIntParam(ps, "mesh_points", 20)
	capacitance := getBoolParam(ps, "capacitance", false)

	c := symbol.NewVariable("c", domain)
	diffusivity := symbol.NewParameter("D")
	rate := symbol.NewParameter("k")
	flux := symbol.Mul(diffusivity, symbol.Grad(c))

	species := model.New("species")
	if err := species.SetRHS(map[symbol.Symbol]any{
		c: symbol.Sub(symbol.Diverg(flux), symbol.Mul(rate, c)),
	}); err != nil {
		return nil, fmt.Errorf("species rhs: %w", err)
	}
	if err := species.SetInitialConditions(map[symbol.Symbol]any{
		c: symbol.NewParameter("c_init"),
	}); err != nil {
		return nil, fmt.Errorf("species initial conditions: %w", err)
	}
	if err := species.SetBoundaryConditions(map[symbol.Symbol]map[string]any{
		flux: {"left": 0.0, "right": 0.0},
	}); err != nil {
		return nil, fmt.Errorf("species boundary conditions: %w", err)
	}

	temp := symbol.NewVariable("T")
	thermal := model.New("thermal")
	if err := thermal.SetRHS(map[symbol.Symbol]any{
		temp: symbol.Neg(symbol.Mul(rate, temp)),
	}); err != nil {
		return nil, fmt.Errorf("thermal rhs: %w", err)
	}
	if err := thermal.SetInitialConditions(map[symbol.Symbol]any{
		temp: symbol.NewParameter("T_init"),
	}); err != nil {
		return nil, fmt.Errorf("thermal initial conditions: %w", err)
	}

	m := model.New("reaction-diffusion")
	m.Defaults = model.Defaults{
		ParameterPath: params.DefaultPath,
		MeshPoints:    meshPoints,
		Form:          model.FormODE,
	}
	if err := m.Update(species, thermal); err != nil {
		return nil, fmt.Errorf("compose submodels: %w", err)
	}

	vars := map[string]symbol.Symbol{
		"Concentration": c,
		"Temperature":   temp,
		"Flux":          flux,
	}

	if capacitance {
		// Surface potential tracks the double-layer charge: phi = C_dl * c.
		phi := symbol.NewVariable("phi", domain)
		m.SetAlgebraic([]symbol.Symbol{
			symbol.Sub(phi, symbol.Mul(symbol.NewParameter("C_dl"), c)),
		})
		m.Defaults.Form = model.FormDAE
		vars["Surface potential"] = phi
	}

	m.SetVariables(vars)
	return m, nil
}
