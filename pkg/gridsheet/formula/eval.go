package formula

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/address"
)

// Source is the read-only view of a grid the evaluator needs.
type Source interface {
	// Size returns the grid dimensions.
	Size() (rows, cols int)
	// Cell returns the raw text of an in-bounds cell and its cached formula,
	// if any.
	Cell(a address.Address) (text string, f *ParsedFormula)
}

// evaluator tracks the addresses currently being evaluated so that a formula
// reaching itself fails instead of recursing forever. Results of formula
// cells already computed in this evaluation are kept in done.
type evaluator struct {
	src      Source
	visiting map[address.Address]struct{}
	done     map[address.Address]string
}

func newEvaluator(src Source, visiting map[address.Address]struct{}) *evaluator {
	return &evaluator{src: src, visiting: visiting, done: make(map[address.Address]string)}
}

// Evaluate computes f against src.
func Evaluate(f *ParsedFormula, src Source) (string, error) {
	e := newEvaluator(src, make(map[address.Address]struct{}))
	return e.eval(f)
}

// EvaluateAt computes f as the formula held by origin, so any path leading
// back to origin is reported as a circular reference.
func EvaluateAt(origin address.Address, f *ParsedFormula, src Source) (string, error) {
	e := newEvaluator(src, map[address.Address]struct{}{origin: {}})
	return e.eval(f)
}

func (e *evaluator) eval(f *ParsedFormula) (string, error) {
	var acc float64
	var fold func(acc, v float64) float64

	switch f.Kind {
	case Sum:
		acc = 0
		fold = func(acc, v float64) float64 { return acc + v }
	case Product:
		acc = 1
		fold = func(acc, v float64) float64 { return acc * v }
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOperation, f.Kind)
	}

	rows, cols := e.src.Size()
	for _, a := range f.Range {
		if err := address.Check(a, rows, cols); err != nil {
			return "", err
		}
		text, err := e.value(a)
		if err != nil {
			return "", err
		}
		if v, ok := parseNumber(text); ok {
			acc = fold(acc, v)
		}
	}

	return strconv.FormatFloat(acc, 'f', -1, 64), nil
}

// value returns the displayable value of a: its raw text, or the result of
// its own formula.
func (e *evaluator) value(a address.Address) (string, error) {
	if v, ok := e.done[a]; ok {
		return v, nil
	}
	text, f := e.src.Cell(a)
	if f == nil {
		return text, nil
	}
	if _, busy := e.visiting[a]; busy {
		return "", fmt.Errorf("%w: %s", ErrCircularReference, a)
	}

	e.visiting[a] = struct{}{}
	defer delete(e.visiting, a)
	v, err := e.eval(f)
	if err != nil {
		return "", err
	}
	e.done[a] = v
	return v, nil
}

// parseNumber reports the numeric value of text. Empty, non-numeric and
// non-finite text is not a number and leaves the accumulator untouched.
func parseNumber(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Code maps an error to a short spreadsheet-style code for display.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCircularReference):
		return "#CYCLE!"
	case errors.Is(err, address.ErrInvalidReference), errors.Is(err, address.ErrOutOfBounds):
		return "#REF!"
	case errors.Is(err, ErrUnknownOperation):
		return "#NAME?"
	case errors.Is(err, ErrUnsupportedOperation):
		return "#N/A"
	case errors.Is(err, ErrInvalidRange):
		return "#VALUE!"
	}
	return "#ERROR!"
}
