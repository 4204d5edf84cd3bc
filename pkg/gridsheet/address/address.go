// Package address resolves cell reference tokens such as "B12" into
// zero-based grid coordinates.
package address

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidReference indicates a token that is not a single-letter column
// followed by a positive 1-based row number.
var ErrInvalidReference = errors.New("invalid cell reference")

// ErrOutOfBounds indicates a coordinate outside the grid dimensions.
var ErrOutOfBounds = errors.New("cell out of bounds")

// maxColumn is the last column a reference token can name ('Z').
const maxColumn = 25

// Address is a zero-based (Row, Col) pair.
type Address struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Within reports whether a lies inside a rows x cols grid.
func (a Address) Within(rows, cols int) bool {
	return a.Row >= 0 && a.Row < rows && a.Col >= 0 && a.Col < cols
}

// String renders a as a reference token ("B12"). Columns past Z use
// spreadsheet-style labels, which Resolve does not accept.
func (a Address) String() string {
	return ColumnLabel(a.Col) + strconv.Itoa(a.Row+1)
}

// Resolve parses a reference token. The first character is a column letter
// (case-insensitive, A..Z), the remainder is a 1-based row number. Resolve
// performs no bounds check against any particular grid; see Check.
func Resolve(token string) (Address, error) {
	if len(token) < 2 {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidReference, token)
	}

	c := token[0]
	switch {
	case c >= 'a' && c <= 'z':
		c -= 'a' - 'A'
	case c >= 'A' && c <= 'Z':
	default:
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidReference, token)
	}
	col := int(c - 'A')

	digits := token[1:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Address{}, fmt.Errorf("%w: %q", ErrInvalidReference, token)
		}
	}
	row, err := strconv.Atoi(digits)
	if err != nil || row < 1 {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidReference, token)
	}

	return Address{Row: row - 1, Col: col}, nil
}

// Check returns ErrOutOfBounds when a does not fit a rows x cols grid.
func Check(a Address, rows, cols int) error {
	if !a.Within(rows, cols) {
		return fmt.Errorf("%w: %s (grid is %dx%d)", ErrOutOfBounds, a, rows, cols)
	}
	return nil
}

// ColumnLabel returns the header label for a zero-based column index.
// Columns past Z get workbook-style labels ("AA"); Resolve never produces
// them, so they only appear for grids built wider than 26 columns through
// the library API.
func ColumnLabel(col int) string {
	if col < 0 {
		return "?"
	}
	if col <= maxColumn {
		return string(rune('A' + col))
	}
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return "?"
	}
	return name
}
