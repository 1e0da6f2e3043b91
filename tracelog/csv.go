// Package tracelog persists solution trajectories to CSV and JSONL so
// runs can be inspected, plotted, or compared outside the process that
// computed them.
package tracelog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fieldsim-xyz/go-fieldsim/solver"
)

// WriteCSV writes a trajectory as CSV with header `t,<labels...>` and one
// row per accepted step.
func WriteCSV(w io.Writer, sol *solver.Solution) error {
	writer := csv.NewWriter(w)

	header := append([]string{"t"}, sol.Labels...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	record := make([]string, len(header))
	for i, t := range sol.T {
		record[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j, v := range sol.Y[i] {
			record[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing step %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes a trajectory to a CSV file.
func WriteCSVFile(path string, sol *solver.Solution) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating trace file: %w", err)
	}
	defer f.Close()

	return WriteCSV(f, sol)
}

// ReadCSV reads a trajectory written by WriteCSV.
func ReadCSV(r io.Reader) (*solver.Solution, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < 2 || header[0] != "t" {
		return nil, fmt.Errorf("malformed trace header: %v", header)
	}

	sol := &solver.Solution{Labels: header[1:]}
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading step %d: %w", row, err)
		}
		row++

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("step %d: bad time value: %w", row, err)
		}
		y := make([]float64, len(record)-1)
		for j, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("step %d: bad value for '%s': %w", row, sol.Labels[j], err)
			}
			y[j] = v
		}
		sol.T = append(sol.T, t)
		sol.Y = append(sol.Y, y)
	}

	return sol, nil
}
