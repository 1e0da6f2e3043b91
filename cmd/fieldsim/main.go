package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "validate":
		if err := validate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "simulate":
		if err := simulate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "sweep":
		if err := sweep(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "runs":
		if err := runs(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("fieldsim version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fieldsim - field model assembly and simulation tool

Usage:
  fieldsim <command> [options]

Commands:
  validate   Check a template model for well-posedness
  simulate   Discretise and solve a template model
  sweep      Re-solve a model across a range of one parameter
  runs       List archived simulation runs
  help       Show this help message
  version    Show version information

Examples:
  # Check a model is solvable before running it
  fieldsim validate reaction-diffusion --capacitance

  # Run a simulation and keep a CSV trace
  fieldsim simulate diffusion --time 1 --trace trace.csv

  # Archive the run and inspect it later
  fieldsim simulate diffusion --store runs.db
  fieldsim runs --store runs.db

For command-specific help, run:
  fieldsim <command> --help`)
}
