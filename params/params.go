// Package params loads named parameter tables from CSV files. A table is
// opaque to the model core; the mesh and the discretiser resolve named
// parameters against it.
package params

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultPath is the parameter table a model refers to when it was not
// given one explicitly.
const DefaultPath = "params/testdata/default.csv"

// Values is a parameter table: named float64 values.
type Values struct {
	entries map[string]float64
}

// NewValues creates a table from an in-memory map.
func NewValues(entries map[string]float64) *Values {
	out := make(map[string]float64, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	return &Values{entries: out}
}

// Load reads a parameter table from a two-column CSV file.
func Load(path string) (*Values, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening parameter table: %w", err)
	}
	defer f.Close()

	return LoadReader(f)
}

// LoadReader reads a parameter table from a CSV stream. Each record is
// `name,value`; blank lines and lines starting with '#' are skipped.
func LoadReader(r io.Reader) (*Values, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	entries := make(map[string]float64)
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading parameter record: %w", err)
		}
		line++

		name := strings.TrimSpace(record[0])
		if name == "" {
			return nil, fmt.Errorf("parameter record %d: empty name", line)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", name, err)
		}
		entries[name] = value
	}

	return &Values{entries: entries}, nil
}

// Get returns the named parameter.
func (v *Values) Get(name string) (float64, error) {
	value, ok := v.entries[name]
	if !ok {
		return 0, fmt.Errorf("parameter '%s' not found", name)
	}
	return value, nil
}

// GetDefault returns the named parameter, or fallback if it is absent.
func (v *Values) GetDefault(name string, fallback float64) float64 {
	if value, ok := v.entries[name]; ok {
		return value
	}
	return fallback
}

// Clone returns an independent copy of the table.
func (v *Values) Clone() *Values {
	return NewValues(v.entries)
}

// Set inserts or overrides a parameter.
func (v *Values) Set(name string, value float64) {
	v.entries[name] = value
}

// Has reports whether the table defines the named parameter.
func (v *Values) Has(name string) bool {
	_, ok := v.entries[name]
	return ok
}

// Len returns the number of parameters in the table.
func (v *Values) Len() int { return len(v.entries) }
