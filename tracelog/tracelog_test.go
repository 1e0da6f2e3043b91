package tracelog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fieldsim-xyz/go-fieldsim/solver"
)

func sampleSolution() *solver.Solution {
	return &solver.Solution{
		T:      []float64{0, 0.5, 1},
		Y:      [][]float64{{1, 10}, {0.5, 12}, {0.25, 14}},
		Labels: []string{"c", "T"},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleSolution()); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "t,c,T" {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d lines", len(lines))
	}

	sol, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if len(sol.T) != 3 || sol.T[1] != 0.5 {
		t.Errorf("Time points lost in round-trip: %v", sol.T)
	}
	c := sol.GetVariable("c")
	if len(c) != 3 || c[2] != 0.25 {
		t.Errorf("Variable series lost in round-trip: %v", c)
	}
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.csv")
	if err := WriteCSVFile(path, sampleSolution()); err != nil {
		t.Fatalf("WriteCSVFile returned error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer f.Close()

	sol, err := ReadCSV(f)
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if len(sol.T) != 3 {
		t.Errorf("Expected 3 steps, got %d", len(sol.T))
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad header", "x,c\n0,1\n"},
		{"bad time", "t,c\nno,1\n"},
		{"bad value", "t,c\n0,no\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, sampleSolution()); err != nil {
		t.Fatalf("WriteJSONL returned error: %v", err)
	}

	sol, err := ReadJSONL(&buf)
	if err != nil {
		t.Fatalf("ReadJSONL returned error: %v", err)
	}
	if len(sol.T) != 3 {
		t.Fatalf("Expected 3 steps, got %d", len(sol.T))
	}
	// JSONL reader orders labels alphabetically.
	c := sol.GetVariable("c")
	if len(c) != 3 || c[0] != 1 || c[2] != 0.25 {
		t.Errorf("Variable series lost in round-trip: %v", c)
	}
	T := sol.GetVariable("T")
	if len(T) != 3 || T[2] != 14 {
		t.Errorf("Variable series lost in round-trip: %v", T)
	}
}

func TestReadJSONLSkipsBlankLines(t *testing.T) {
	input := `{"t":0,"y":{"c":1}}

{"t":1,"y":{"c":0.5}}
`
	sol, err := ReadJSONL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSONL returned error: %v", err)
	}
	if len(sol.T) != 2 {
		t.Errorf("Expected 2 steps, got %d", len(sol.T))
	}
}

func TestReadJSONLMissingLabel(t *testing.T) {
	input := `{"t":0,"y":{"c":1,"T":2}}
{"t":1,"y":{"c":0.5}}
`
	if _, err := ReadJSONL(strings.NewReader(input)); err == nil {
		t.Error("Expected an error for a record missing a label")
	}
}
