// Package grid implements the fixed-size rectangular cell matrix.
package grid

import (
	"errors"
	"fmt"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/address"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/formula"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/models"
)

// ErrorMarker is displayed in place of a formula that fails to evaluate.
const ErrorMarker = "#ERROR!"

// ErrInvalidSize indicates a grid with fewer than one row or column.
var ErrInvalidSize = errors.New("grid needs at least one row and one column")

// Cell holds raw user text and, when the text is a well-formed formula, its
// parsed form. Formula is non-nil only if Text starts with '='.
type Cell struct {
	Text    string
	Formula *formula.ParsedFormula
	// ParseErr records why a text starting with '=' is not a formula.
	ParseErr error
}

// Grid is a rows x cols matrix of cells addressed by zero-based (row, col).
type Grid struct {
	rows  int
	cols  int
	cells [][]Cell
}

var _ formula.Source = (*Grid)(nil)

// New creates a grid of empty cells.
func New(rows, cols int) (*Grid, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, rows, cols)
	}

	cells := make([][]Cell, rows)
	for r := range cells {
		cells[r] = make([]Cell, cols)
	}
	return &Grid{rows: rows, cols: cols, cells: cells}, nil
}

// Size returns the grid dimensions.
func (g *Grid) Size() (rows, cols int) {
	return g.rows, g.cols
}

// Get returns a copy of the cell at (row, col).
func (g *Grid) Get(row, col int) (Cell, error) {
	if err := address.Check(address.Address{Row: row, Col: col}, g.rows, g.cols); err != nil {
		return Cell{}, err
	}
	return g.cells[row][col], nil
}

// Cell implements formula.Source. Out-of-bounds addresses read as empty.
func (g *Grid) Cell(a address.Address) (string, *formula.ParsedFormula) {
	if !a.Within(g.rows, g.cols) {
		return "", nil
	}
	c := &g.cells[a.Row][a.Col]
	return c.Text, c.Formula
}

// SetText replaces the raw text of a cell and re-derives its formula.
func (g *Grid) SetText(row, col int, text string) error {
	if err := address.Check(address.Address{Row: row, Col: col}, g.rows, g.cols); err != nil {
		return err
	}

	f, err := formula.Parse(text)
	g.cells[row][col] = Cell{Text: text, Formula: f, ParseErr: err}
	return nil
}

// Evaluate returns the displayable value of a cell together with any
// evaluation error.
func (g *Grid) Evaluate(row, col int) (string, error) {
	a := address.Address{Row: row, Col: col}
	if err := address.Check(a, g.rows, g.cols); err != nil {
		return "", err
	}

	c := &g.cells[row][col]
	if c.Formula == nil {
		return c.Text, nil
	}
	return formula.EvaluateAt(a, c.Formula, g)
}

// DisplayValue returns what a renderer shows for a cell: the formula result,
// ErrorMarker if evaluation fails, or the raw text. Out-of-bounds reads are
// empty.
func (g *Grid) DisplayValue(row, col int) string {
	if !(address.Address{Row: row, Col: col}).Within(g.rows, g.cols) {
		return ""
	}
	v, err := g.Evaluate(row, col)
	if err != nil {
		return ErrorMarker
	}
	return v
}

// BulkLoad sets every in-bounds entry and silently drops the rest. It
// returns the number of cells applied.
func (g *Grid) BulkLoad(entries models.Cells) int {
	n := 0
	for a, text := range entries {
		if !a.Within(g.rows, g.cols) {
			continue
		}
		_ = g.SetText(a.Row, a.Col, text)
		n++
	}
	return n
}

// BulkExport returns every cell with non-empty text.
func (g *Grid) BulkExport() models.Cells {
	out := make(models.Cells)
	for r, row := range g.cells {
		for c, cell := range row {
			if cell.Text != "" {
				out[address.Address{Row: r, Col: c}] = cell.Text
			}
		}
	}
	return out
}

// RequiredSize returns the smallest dimensions holding every non-empty
// entry, or (0, 0) when there is none.
func RequiredSize(entries models.Cells) (rows, cols int) {
	for a, text := range entries {
		if text == "" || a.Row < 0 || a.Col < 0 {
			continue
		}
		if a.Row+1 > rows {
			rows = a.Row + 1
		}
		if a.Col+1 > cols {
			cols = a.Col + 1
		}
	}
	return rows, cols
}
