package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/fieldsim-xyz/go-fieldsim/templates"
)

func validate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	capacitance := fs.Bool("capacitance", false, "Build the capacitance variant where the template supports it")
	domain := fs.String("domain", "electrolyte", "Spatial domain name")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fieldsim validate <template> [options]

Build a template model and check it is well posed: every state variable
has an initial condition, and every spatially varying equation has
boundary conditions.

Templates:
`)
		names := templates.List()
		sort.Strings(names)
		for _, name := range names {
			tmpl, _ := templates.Get(name)
			fmt.Fprintf(os.Stderr, "  %-20s %s\n", name, tmpl.Description())
		}
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("template name required")
	}

	tmpl, err := templates.Get(fs.Arg(0))
	if err != nil {
		return err
	}

	m, err := tmpl.Generate(map[string]any{
		"capacitance": *capacitance,
		"domain":      *domain,
	})
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}

	if err := m.CheckWellPosedness(); err != nil {
		return fmt.Errorf("model '%s' is not well posed: %w", m.Name, err)
	}

	fmt.Printf("Model '%s' is well posed\n", m.Name)
	fmt.Printf("  State variables:      %d\n", len(m.Variables()))
	fmt.Printf("  Algebraic constraints: %d\n", len(m.Algebraic()))
	return nil
}
