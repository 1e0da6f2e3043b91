package templates

import (
	"fmt"

	"github.com/fieldsim-xyz/go-fieldsim/model"
	"github.com/fieldsim-xyz/go-fieldsim/params"
	"github.com/fieldsim-xyz/go-fieldsim/symbol"
)

// DiffusionTemplate builds a single-species diffusion model on one domain.
type DiffusionTemplate struct{}

func (t *DiffusionTemplate) Name() string {
	return "diffusion"
}

func (t *DiffusionTemplate) Description() string {
	return "Fickian diffusion of one species with zero-flux boundaries"
}

func (t *DiffusionTemplate) Parameters() []Parameter {
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
	}
}

func (t *DiffusionTemplate) Generate(ps map[string]any) (*model.Model, error) {
	domain := getStringParam(ps, "domain", "electrolyte")
	meshPoints := getIntParam(ps, "mesh_points", 20)

	c := symbol.NewVariable("c", domain)
	diffusivity := symbol.NewParameter("D")
	flux := symbol.Mul(diffusivity, symbol.Grad(c))

	m := model.New("diffusion")
	m.Defaults = model.Defaults{
		ParameterPath: params.DefaultPath,
		MeshPoints:    meshPoints,
		Form:          model.FormODE,
	}

	if err := m.SetRHS(map[symbol.Symbol]any{c: symbol.Diverg(flux)}); err != nil {
		return nil, fmt.Errorf("diffusion rhs: %w", err)
	}
	if err := m.SetInitialConditions(map[symbol.Symbol]any{
		c: symbol.NewParameter("c_init"),
	}); err != nil {
		return nil, fmt.Errorf("diffusion initial conditions: %w", err)
	}
	if err := m.SetBoundaryConditions(map[symbol.Symbol]map[string]any{
		flux: {"left": 0.0, "right": 0.0},
	}); err != nil {
		return nil, fmt.Errorf("diffusion boundary conditions: %w", err)
	}
	m.SetVariables(map[string]symbol.Symbol{
		"Concentration": c,
		"Flux":          flux,
	})
	return m, nil
}
