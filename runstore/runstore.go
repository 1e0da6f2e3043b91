// Package runstore archives simulation runs in a SQLite database: which
// model ran, with which integrator, and where its state ended up.
package runstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fieldsim-xyz/go-fieldsim/solver"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("runstore: run not found")

// Run is one archived simulation.
type Run struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Integrator string             `json:"integrator"`
	StartedAt  time.Time          `json:"started_at"`
	Steps      int                `json:"steps"`
	FinalTime  float64            `json:"final_time"`
	FinalState map[string]float64 `json:"final_state"`
}

// NewRun builds a run record from a finished solution.
func NewRun(modelName, integrator string, sol *solver.Solution) Run {
	run := Run{
		ID:         uuid.NewString(),
		Model:      modelName,
		Integrator: integrator,
		StartedAt:  time.Now().UTC(),
		Steps:      sol.Steps(),
		FinalState: make(map[string]float64, len(sol.Labels)),
	}
	if len(sol.T) > 0 {
		run.FinalTime = sol.T[len(sol.T)-1]
	}
	final := sol.Final()
	for i, label := range sol.Labels {
		run.FinalState[label] = final[i]
	}
	return run
}

// Store handles SQLite database operations for run archiving.
type Store struct {
	db *sql.DB
}

// New creates a store backed by the database at path, migrating the
// schema if needed.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

// migrate creates the schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		integrator TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		steps INTEGER NOT NULL,
		final_time REAL NOT NULL,
		final_state TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run record.
func (s *Store) SaveRun(run Run) error {
	state, err := json.Marshal(run.FinalState)
	if err != nil {
		return fmt.Errorf("encode final state: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO runs (id, model, integrator, started_at, steps, final_time, final_state)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Model, run.Integrator, run.StartedAt.Format(time.RFC3339Nano),
		run.Steps, run.FinalTime, string(state),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun fetches one run by ID.
func (s *Store) GetRun(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT id, model, integrator, started_at, steps, final_time, final_state
		 FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns runs for one model, newest first. An empty model name
// lists everything.
func (s *Store) ListRuns(modelName string) ([]Run, error) {
	query := `SELECT id, model, integrator, started_at, steps, final_time, final_state
		 FROM runs`
	args := []any{}
	if modelName != "" {
		query += ` WHERE model = ?`
		args = append(args, modelName)
	}
	query += ` ORDER BY started_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var startedAt, state string
	err := row.Scan(&run.ID, &run.Model, &run.Integrator, &startedAt,
		&run.Steps, &run.FinalTime, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if err := json.Unmarshal([]byte(state), &run.FinalState); err != nil {
		return Run{}, fmt.Errorf("decode final state: %w", err)
	}
	return run, nil
}
