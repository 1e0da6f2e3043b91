// Package templates provides parameterized reference models.
package templates

import (
	"fmt"

	"github.com/fieldsim-xyz/go-fieldsim/model"
)

// Template defines a parameterized model builder.
type Template interface {
	Name() string
	Description() string
	Parameters() []Parameter
	Generate(params map[string]any) (*model.Model, error)
}

// Parameter defines a template parameter.
type Parameter struct {
	Name        string
	Description string
	Type        string // "int", "float", "bool"
	Default     any
	Required    bool
}

// Registry holds all available templates.
var Registry = map[string]Template{
	"diffusion":          &DiffusionTemplate{},
	"reaction-diffusion": &ReactionDiffusionTemplate{},
}

// Get returns a template by name.
func Get(name string) (Template, error) {
	t, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown template: %s", name)
	}
	return t, nil
}

// List returns all available template names.
func List() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	return names
}

// Helper functions
func getIntParam(params map[string]any, name string, defaultVal int) int {
	if val, ok := params[name]; ok {
		switch v := val.(type) {
		case int:
			return v
		case float64:
			return int(v)
		}
	}
	return defaultVal
}

func getBoolParam(params map[string]any, name string, defaultVal bool) bool {
	if val, ok := params[name]; ok {
		if v, ok := val.(bool); ok {
			return v
		}
	}
	return defaultVal
}

func getStringParam(params map[string]any, name string, defaultVal string) string {
	if val, ok := params[name]; ok {
		if v, ok := val.(string); ok {
			return v
		}
	}
	return defaultVal
}
