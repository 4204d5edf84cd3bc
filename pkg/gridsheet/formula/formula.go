// Package formula parses and evaluates whole-range aggregate formulas such
// as "=SUM(A1:A3)".
package formula

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/address"
)

// ErrUnknownOperation indicates an operation name outside the supported set.
var ErrUnknownOperation = errors.New("unknown operation")

// ErrInvalidRange indicates a malformed or non axis-aligned range.
var ErrInvalidRange = errors.New("invalid range")

// ErrUnsupportedOperation indicates an operation that parses but cannot be
// evaluated yet.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// ErrCircularReference indicates a formula that depends on itself.
var ErrCircularReference = errors.New("circular reference")

// Kind is an aggregate operation.
type Kind int

const (
	// Sum adds every operand.
	Sum Kind = iota
	// Product multiplies every operand.
	Product
	// Difference is reserved; it parses but does not evaluate.
	Difference
	// Quotient is reserved; it parses but does not evaluate.
	Quotient
)

var kindNames = map[string]Kind{
	"SUM":        Sum,
	"PRODUCT":    Product,
	"DIFFERENCE": Difference,
	"QUOTIENT":   Quotient,
}

func (k Kind) String() string {
	switch k {
	case Sum:
		return "SUM"
	case Product:
		return "PRODUCT"
	case Difference:
		return "DIFFERENCE"
	case Quotient:
		return "QUOTIENT"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Range is an inclusive, axis-aligned run of addresses in increasing order.
type Range []address.Address

// ParsedFormula is the cached parse result stored on a cell.
type ParsedFormula struct {
	Kind  Kind
	Range Range
}

func (f *ParsedFormula) String() string {
	if len(f.Range) == 0 {
		return "=" + f.Kind.String() + "()"
	}
	return fmt.Sprintf("=%s(%s:%s)", f.Kind, f.Range[0], f.Range[len(f.Range)-1])
}

// Parse parses text as a formula. Text that does not start with '=' is not a
// formula and yields (nil, nil).
func Parse(text string) (*ParsedFormula, error) {
	body, ok := strings.CutPrefix(text, "=")
	if !ok {
		return nil, nil
	}

	name, args, hasArgs := strings.Cut(body, "(")
	kind, known := kindNames[name]
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	if !hasArgs {
		return nil, fmt.Errorf("%w: %s has no argument list", ErrInvalidRange, name)
	}

	interior, closed := strings.CutSuffix(args, ")")
	if !closed {
		return nil, fmt.Errorf("%w: missing closing parenthesis", ErrInvalidRange)
	}
	if strings.Count(interior, ":") != 1 {
		return nil, fmt.Errorf("%w: %q is not a start:end pair", ErrInvalidRange, interior)
	}
	startToken, endToken, _ := strings.Cut(interior, ":")

	start, err := address.Resolve(strings.TrimSpace(startToken))
	if err != nil {
		return nil, err
	}
	end, err := address.Resolve(strings.TrimSpace(endToken))
	if err != nil {
		return nil, err
	}

	r, err := NewRange(start, end)
	if err != nil {
		return nil, err
	}
	return &ParsedFormula{Kind: kind, Range: r}, nil
}

// NewRange builds the inclusive range between start and end. The pair must
// share a row or a column; the result is ordered by increasing index whatever
// the order of the pair.
func NewRange(start, end address.Address) (Range, error) {
	switch {
	case start.Row == end.Row:
		lo, hi := minMax(start.Col, end.Col)
		r := make(Range, 0, hi-lo+1)
		for col := lo; col <= hi; col++ {
			r = append(r, address.Address{Row: start.Row, Col: col})
		}
		return r, nil
	case start.Col == end.Col:
		lo, hi := minMax(start.Row, end.Row)
		r := make(Range, 0, hi-lo+1)
		for row := lo; row <= hi; row++ {
			r = append(r, address.Address{Row: row, Col: start.Col})
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s:%s is not axis-aligned", ErrInvalidRange, start, end)
}

func minMax(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
