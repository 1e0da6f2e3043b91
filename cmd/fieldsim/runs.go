package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fieldsim-xyz/go-fieldsim/runstore"
)

func runs(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	store := fs.String("store", "runs.db", "SQLite database holding archived runs")
	modelName := fs.String("model", "", "Only show runs of this model")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fieldsim runs [options]

List archived simulation runs, newest first.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := runstore.New(*store)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer db.Close()

	archived, err := db.ListRuns(*modelName)
	if err != nil {
		return err
	}
	if len(archived) == 0 {
		fmt.Println("No archived runs")
		return nil
	}

	for _, run := range archived {
		fmt.Printf("%s  %s  %-20s %-14s steps=%-5d t_end=%g\n",
			run.ID, run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Model, run.Integrator, run.Steps, run.FinalTime)
	}
	return nil
}
