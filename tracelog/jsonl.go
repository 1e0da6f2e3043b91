package tracelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fieldsim-xyz/go-fieldsim/solver"
)

// step is one JSONL record: the state at one time point.
type step struct {
	T float64            `json:"t"`
	Y map[string]float64 `json:"y"`
}

// WriteJSONL writes a trajectory as JSON Lines, one labelled record per
// accepted step.
func WriteJSONL(w io.Writer, sol *solver.Solution) error {
	enc := json.NewEncoder(w)
	for i, t := range sol.T {
		rec := step{T: t, Y: make(map[string]float64, len(sol.Labels))}
		for j, label := range sol.Labels {
			rec.Y[label] = sol.Y[i][j]
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("writing step %d: %w", i, err)
		}
	}
	return nil
}

// ReadJSONL reads a trajectory written by WriteJSONL. The label order of
// the returned solution follows the first record.
func ReadJSONL(r io.Reader) (*solver.Solution, error) {
	sol := &solver.Solution{}
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" {
			continue
		}

		var rec step
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		if sol.Labels == nil {
			sol.Labels = sortedLabels(rec.Y)
		}
		y := make([]float64, len(sol.Labels))
		for j, label := range sol.Labels {
			v, ok := rec.Y[label]
			if !ok {
				return nil, fmt.Errorf("line %d: missing value for '%s'", lineNum, label)
			}
			y[j] = v
		}
		sol.T = append(sol.T, rec.T)
		sol.Y = append(sol.Y, y)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}

	return sol, nil
}

func sortedLabels(y map[string]float64) []string {
	labels := make([]string, 0, len(y))
	for label := range y {
		labels = append(labels, label)
	}
	// Deterministic order for round-trips.
	sort.Strings(labels)
	return labels
}
