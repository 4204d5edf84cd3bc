package formula

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/address"
)

// mapSource is a fixed-size sheet backed by a map of reference tokens.
type mapSource struct {
	rows, cols int
	cells      map[address.Address]string
}

func newMapSource(t *testing.T, rows, cols int, cells map[string]string) *mapSource {
	t.Helper()
	src := &mapSource{rows: rows, cols: cols, cells: make(map[address.Address]string)}
	for token, text := range cells {
		a, err := address.Resolve(token)
		if err != nil {
			t.Fatalf("bad fixture token %q: %v", token, err)
		}
		src.cells[a] = text
	}
	return src
}

func (s *mapSource) Size() (int, int) { return s.rows, s.cols }

func (s *mapSource) Cell(a address.Address) (string, *ParsedFormula) {
	text := s.cells[a]
	f, err := Parse(text)
	if err != nil {
		return text, nil
	}
	return text, f
}

func mustParse(t *testing.T, text string) *ParsedFormula {
	t.Helper()
	f, err := Parse(text)
	if err != nil || f == nil {
		t.Fatalf("Parse(%q) = (%v, %v)", text, f, err)
	}
	return f
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		cells    map[string]string
		formula  string
		expected string
	}{
		{"sum with empty", map[string]string{"A1": "1", "A2": "2", "A3": ""}, "=SUM(A1:A3)", "3"},
		{"product", map[string]string{"A1": "2", "A2": "3"}, "=PRODUCT(A1:A2)", "6"},
		{"product skips text", map[string]string{"A1": "2", "A2": "abc", "A3": "4"}, "=PRODUCT(A1:A3)", "8"},
		{"sum of nothing", map[string]string{}, "=SUM(B1:D1)", "0"},
		{"product of nothing", map[string]string{}, "=PRODUCT(B1:D1)", "1"},
		{"decimals", map[string]string{"A1": "1.5", "B1": " 2.25 ", "C1": "-1"}, "=SUM(A1:C1)", "2.75"},
		{"non-finite ignored", map[string]string{"A1": "NaN", "A2": "Inf", "A3": "5"}, "=SUM(A1:A3)", "5"},
		{"nested formula", map[string]string{"A1": "2", "A2": "3", "B1": "=SUM(A1:A2)", "B2": "4"}, "=PRODUCT(B1:B2)", "20"},
		{"malformed nested formula is text", map[string]string{"A1": "=SUM(A1)", "A2": "7"}, "=SUM(A1:A2)", "7"},
	}

	for _, tt := range tests {
		src := newMapSource(t, 10, 5, tt.cells)
		result, err := Evaluate(mustParse(t, tt.formula), src)
		if err != nil {
			t.Errorf("%s: Evaluate returned error: %v", tt.name, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("%s: Evaluate(%s) = %q, expected %q", tt.name, tt.formula, result, tt.expected)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name     string
		cells    map[string]string
		formula  string
		expected error
	}{
		{"difference", map[string]string{"A1": "2"}, "=DIFFERENCE(A1:A2)", ErrUnsupportedOperation},
		{"quotient", map[string]string{"A1": "2"}, "=QUOTIENT(A1:A2)", ErrUnsupportedOperation},
		{"self reference", map[string]string{"A1": "=SUM(A1:A1)"}, "=SUM(A1:A1)", ErrCircularReference},
		{"two cell cycle", map[string]string{"A1": "=SUM(B1:B1)", "B1": "=SUM(A1:A1)"}, "=SUM(A1:A1)", ErrCircularReference},
		{"nested unsupported", map[string]string{"A1": "=QUOTIENT(B1:B2)"}, "=SUM(A1:A2)", ErrUnsupportedOperation},
		{"out of bounds", map[string]string{}, "=SUM(A1:A20)", address.ErrOutOfBounds},
	}

	for _, tt := range tests {
		src := newMapSource(t, 10, 5, tt.cells)
		_, err := Evaluate(mustParse(t, tt.formula), src)
		if !errors.Is(err, tt.expected) {
			t.Errorf("%s: Evaluate(%s) error = %v, expected %v", tt.name, tt.formula, err, tt.expected)
		}
	}
}

func TestEvaluateAtDetectsOrigin(t *testing.T) {
	src := newMapSource(t, 5, 5, map[string]string{"A1": "1", "A2": "=SUM(A1:A3)"})
	f := mustParse(t, "=SUM(A1:A3)")

	_, err := EvaluateAt(address.Address{Row: 1, Col: 0}, f, src)
	if !errors.Is(err, ErrCircularReference) {
		t.Errorf("EvaluateAt error = %v, expected ErrCircularReference", err)
	}
}

func TestEvaluateSharedDependency(t *testing.T) {
	// A diamond is not a cycle: C1 and C2 both read A1.
	src := newMapSource(t, 5, 5, map[string]string{
		"A1": "2",
		"C1": "=SUM(A1:A1)",
		"C2": "=SUM(A1:A1)",
	})
	result, err := Evaluate(mustParse(t, "=SUM(C1:C2)"), src)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if result != "4" {
		t.Errorf("Evaluate = %q, expected %q", result, "4")
	}
}

// countingSource records how often each cell is read.
type countingSource struct {
	*mapSource
	reads int
}

func (s *countingSource) Cell(a address.Address) (string, *ParsedFormula) {
	s.reads++
	return s.mapSource.Cell(a)
}

func TestEvaluateDeepChain(t *testing.T) {
	// A1 is 1 and every later row sums all rows above it, so row n holds 2^(n-2).
	const n = 40
	cells := map[string]string{"A1": "1"}
	for row := 2; row <= n; row++ {
		cells[fmt.Sprintf("A%d", row)] = fmt.Sprintf("=SUM(A1:A%d)", row-1)
	}
	src := &countingSource{mapSource: newMapSource(t, n, 1, cells)}

	last := address.Address{Row: n - 1, Col: 0}
	_, f := src.mapSource.Cell(last)
	result, err := EvaluateAt(last, f, src)
	if err != nil {
		t.Fatalf("EvaluateAt returned error: %v", err)
	}
	if result != "274877906944" {
		t.Errorf("EvaluateAt = %q, expected %q", result, "274877906944")
	}
	if src.reads > n*n {
		t.Errorf("Expected at most %d cell reads, got %d", n*n, src.reads)
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		input    error
		expected string
	}{
		{nil, ""},
		{ErrCircularReference, "#CYCLE!"},
		{address.ErrOutOfBounds, "#REF!"},
		{address.ErrInvalidReference, "#REF!"},
		{ErrUnknownOperation, "#NAME?"},
		{ErrUnsupportedOperation, "#N/A"},
		{ErrInvalidRange, "#VALUE!"},
		{errors.New("boom"), "#ERROR!"},
	}

	for _, tt := range tests {
		if got := Code(tt.input); got != tt.expected {
			t.Errorf("Code(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
