package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fieldsim-xyz/go-fieldsim/discretise"
	"github.com/fieldsim-xyz/go-fieldsim/mesh"
	"github.com/fieldsim-xyz/go-fieldsim/params"
	"github.com/fieldsim-xyz/go-fieldsim/plotter"
	"github.com/fieldsim-xyz/go-fieldsim/runstore"
	"github.com/fieldsim-xyz/go-fieldsim/solver"
	"github.com/fieldsim-xyz/go-fieldsim/templates"
	"github.com/fieldsim-xyz/go-fieldsim/tracelog"
)

func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	timeEnd := fs.Float64("time", 1.0, "End time for simulation")
	timeStart := fs.Float64("start", 0.0, "Start time for simulation")
	paramFile := fs.String("params", "", "Parameter table CSV (defaults to the template's table)")
	paramFlags := fs.String("set", "", "Override parameters (format: D=0.5,k=0.3)")
	points := fs.Int("points", 0, "Mesh cells per domain (defaults to the template's choice)")
	capacitance := fs.Bool("capacitance", false, "Build the capacitance variant where the template supports it")
	domain := fs.String("domain", "electrolyte", "Spatial domain name")
	trace := fs.String("trace", "", "Write the full trace to this CSV file")
	plot := fs.String("plot", "", "Write an SVG plot of the trace to this file")
	store := fs.String("store", "", "Archive the run in this SQLite database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fieldsim simulate <template> [options]

Build a template model, discretise it on a uniform mesh and integrate it.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Basic run
  fieldsim simulate diffusion --time 1

  # Override parameters
  fieldsim simulate diffusion --set "D=0.5,c_init=2" --trace trace.csv

  # Differential-algebraic variant, archived
  fieldsim simulate reaction-diffusion --capacitance --store runs.db
`)
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

	path := *paramFile
	if path == "" {
		path = m.Defaults.ParameterPath
	}
	values, err := params.Load(path)
	if err != nil {
		return fmt.Errorf("load parameters: %w", err)
	}
	if *paramFlags != "" {
		overrides, err := parseKeyValue(*paramFlags)
		if err != nil {
			return fmt.Errorf("parse parameter overrides: %w", err)
		}
		for k, v := range overrides {
			values.Set(k, v)
		}
	}

	npts := *points
	if npts <= 0 {
		npts = m.Defaults.MeshPoints
	}
	grid, err := mesh.NewUniform(values, npts, *domain)
	if err != nil {
		return fmt.Errorf("build mesh: %w", err)
	}

	sys, err := discretise.NewFiniteVolume(grid, values).Discretise(m)
	if err != nil {
		return fmt.Errorf("discretise: %w", err)
	}

	prob := sys.Problem([2]float64{*timeStart, *timeEnd})
	integ := solver.Default(m.Defaults.Form)

	start := time.Now()
	sol, err := integ.Solve(prob, solver.DefaultOptions())
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	elapsed := time.Since(start).Seconds()

	if *trace != "" {
		if err := tracelog.WriteCSVFile(*trace, sol); err != nil {
			return fmt.Errorf("write trace: %w", err)
		}
	}

	if *plot != "" {
		if err := plotter.WriteSVGFile(sol, nil, *plot, m.Name); err != nil {
			return fmt.Errorf("write plot: %w", err)
		}
	}

	if *store != "" {
		db, err := runstore.New(*store)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer db.Close()

		run := runstore.NewRun(m.Name, integ.Name, sol)
		if err := db.SaveRun(run); err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "  Archived as: %s\n", run.ID)
	}

	// Summary goes to stderr so it doesn't interfere with piping.
	fmt.Fprintf(os.Stderr, "Simulation complete\n")
	fmt.Fprintf(os.Stderr, "  Model: %s (%s)\n", m.Name, integ.Name)
	fmt.Fprintf(os.Stderr, "  Time: %.3g to %.3g\n", *timeStart, *timeEnd)
	fmt.Fprintf(os.Stderr, "  Steps: %d\n", sol.Steps())
	fmt.Fprintf(os.Stderr, "  Compute time: %.3fs\n", elapsed)
	if *trace != "" {
		fmt.Fprintf(os.Stderr, "  Trace: %s\n", *trace)
	}

	return nil
}

// parseKeyValue parses "key1=val1,key2=val2" format
func parseKeyValue(s string) (map[string]float64, error) {
	result := make(map[string]float64)

	if s == "" {
		return result, nil
	}

	pairs := strings.Split(s, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid format: %s (expected key=value)", pair)
		}

		key := strings.TrimSpace(parts[0])
		var value float64
		if _, err := fmt.Sscanf(parts[1], "%f", &value); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %s", key, parts[1])
		}

		result[key] = value
	}

	return result, nil
}
