package params

import (
	"strings"
	"testing"
)

func TestLoadReader(t *testing.T) {
	input := `# comment line
D,1.5
k, 0.25
electrolyte_max,1
`
	v, err := LoadReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadReader returned error: %v", err)
	}
	if v.Len() != 3 {
		t.Errorf("Expected 3 parameters, got %d", v.Len())
	}

	d, err := v.Get("D")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if d != 1.5 {
		t.Errorf("Expected D=1.5, got %f", d)
	}
	if k := v.GetDefault("k", 0); k != 0.25 {
		t.Errorf("Expected k=0.25, got %f", k)
	}
}

func TestLoadReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad value", "D,not-a-number\n"},
		{"empty name", " ,1.0\n"},
		{"wrong field count", "D,1.0,extra\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadReader(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	v := NewValues(map[string]float64{"D": 1})
	if _, err := v.Get("missing"); err == nil {
		t.Error("Expected an error for a missing parameter")
	}
	if got := v.GetDefault("missing", 7.5); got != 7.5 {
		t.Errorf("Expected fallback 7.5, got %f", got)
	}
}

func TestSetAndClone(t *testing.T) {
	v := NewValues(map[string]float64{"D": 1})

	clone := v.Clone()
	clone.Set("D", 2)
	clone.Set("k", 0.5)

	if d, _ := v.Get("D"); d != 1 {
		t.Errorf("Clone should not share state, original D=%f", d)
	}
	if v.Has("k") {
		t.Error("Set on a clone leaked into the original")
	}
	if d, _ := clone.Get("D"); d != 2 {
		t.Errorf("Expected overridden D=2, got %f", d)
	}
}

func TestLoadDefaultTable(t *testing.T) {
	v, err := Load("testdata/default.csv")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	for _, name := range []string{"D", "k", "c_init", "electrolyte_min", "electrolyte_max"} {
		if !v.Has(name) {
			t.Errorf("Default table missing parameter '%s'", name)
		}
	}
}
