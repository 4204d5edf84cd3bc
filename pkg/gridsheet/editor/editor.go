// Package editor implements cursor navigation over a grid and in-place
// editing of the active cell.
//
// The editor is a two-state machine. In Browsing mode directional moves
// change the active cell, clamped at the grid edges. Open switches to
// Editing mode with a copy of the active cell's text; inserts, deletes and
// cursor moves operate on that copy, measured in grapheme clusters, until
// Commit writes it back to the grid.
package editor

import (
	"errors"
	"fmt"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/address"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/grid"
)

// WrapMargin is subtracted from the cell width to get the soft-wrap limit.
const WrapMargin = 2

// ErrWrongMode indicates an operation that is not valid in the current mode.
var ErrWrongMode = errors.New("operation not valid in current mode")

// Mode is the editor state.
type Mode int

const (
	// Browsing moves the active cell.
	Browsing Mode = iota
	// Editing changes the active cell's text.
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "EDIT"
	}
	return "BROWSE"
}

// Direction is a navigation step.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// session is the live text of the cell being edited.
type session struct {
	clusters []string
	cursor   int
}

// Editor drives navigation and editing for one grid.
type Editor struct {
	grid      *grid.Grid
	cellWidth int
	active    address.Address
	mode      Mode
	edit      *session
}

// New returns an editor in Browsing mode at (0, 0). cellWidth is the display
// width of one cell, used for soft wrapping.
func New(g *grid.Grid, cellWidth int) *Editor {
	return &Editor{grid: g, cellWidth: cellWidth}
}

// Grid returns the grid being edited.
func (e *Editor) Grid() *grid.Grid { return e.grid }

// SetGrid replaces the grid, discards any edit and returns to (0, 0).
func (e *Editor) SetGrid(g *grid.Grid) {
	e.grid = g
	e.active = address.Address{}
	e.mode = Browsing
	e.edit = nil
}

// Mode returns the current state.
func (e *Editor) Mode() Mode { return e.mode }

// Active returns the active cell.
func (e *Editor) Active() address.Address { return e.active }

// ActiveText returns the live edit text, or "" while browsing.
func (e *Editor) ActiveText() string {
	if e.edit == nil {
		return ""
	}
	return joinGraphemes(e.edit.clusters)
}

// CursorOffset returns the edit cursor in grapheme clusters, or 0 while
// browsing.
func (e *Editor) CursorOffset() int {
	if e.edit == nil {
		return 0
	}
	return e.edit.cursor
}

// Move steps the active cell one cell in d. Moving past an edge leaves the
// active cell unchanged. It reports whether the active cell changed.
func (e *Editor) Move(d Direction) bool {
	if e.mode != Browsing {
		return false
	}

	rows, cols := e.grid.Size()
	next := e.active
	switch d {
	case Up:
		next.Row--
	case Down:
		next.Row++
	case Left:
		next.Col--
	case Right:
		next.Col++
	default:
		return false
	}
	if !next.Within(rows, cols) {
		return false
	}
	e.active = next
	return true
}

// MoveTo makes a the active cell.
func (e *Editor) MoveTo(a address.Address) error {
	if e.mode != Browsing {
		return fmt.Errorf("%w: cannot jump while editing", ErrWrongMode)
	}
	rows, cols := e.grid.Size()
	if err := address.Check(a, rows, cols); err != nil {
		return err
	}
	e.active = a
	return nil
}

// Clear empties the active cell.
func (e *Editor) Clear() error {
	if e.mode != Browsing {
		return fmt.Errorf("%w: cannot clear while editing", ErrWrongMode)
	}
	return e.grid.SetText(e.active.Row, e.active.Col, "")
}

// Open enters Editing mode with the active cell's text and the cursor at its
// end. Line breaks in the copy are normalised to "\n".
func (e *Editor) Open() error {
	if e.mode != Browsing {
		return fmt.Errorf("%w: already editing", ErrWrongMode)
	}
	cell, err := e.grid.Get(e.active.Row, e.active.Col)
	if err != nil {
		return err
	}
	clusters := splitGraphemes(normalizeLineBreaks(cell.Text))
	e.edit = &session{clusters: clusters, cursor: len(clusters)}
	e.mode = Editing
	return nil
}

// Insert splices text into the edit buffer at the cursor, one grapheme
// cluster at a time, advancing the cursor past each. Line breaks are stored
// as "\n". A cluster that extends the one before the cursor, such as a
// combining mark, merges into it.
func (e *Editor) Insert(text string) bool {
	if e.edit == nil || text == "" {
		return false
	}
	text = normalizeLineBreaks(text)
	for _, c := range splitGraphemes(text) {
		e.insertCluster(c)
	}
	return true
}

func (e *Editor) insertCluster(c string) {
	s := e.edit
	if !isLineBreak(c) && !s.extends(c) && e.shouldWrap() {
		s.insert("\n")
	}
	s.insert(c)
	s.resplit()
}

// shouldWrap reports whether the line the cursor is on is the last line of
// the buffer and is already wider than the wrap limit.
func (e *Editor) shouldWrap() bool {
	s := e.edit
	start := 0
	for i, c := range s.clusters {
		if !isLineBreak(c) {
			continue
		}
		if i >= s.cursor {
			return false
		}
		start = i + 1
	}
	return displayWidth(s.clusters[start:]) > e.cellWidth-WrapMargin
}

func (s *session) insert(c string) {
	s.clusters = append(s.clusters, "")
	copy(s.clusters[s.cursor+1:], s.clusters[s.cursor:])
	s.clusters[s.cursor] = c
	s.cursor++
}

// extends reports whether c joins the cluster before the cursor.
func (s *session) extends(c string) bool {
	if s.cursor == 0 {
		return false
	}
	return len(splitGraphemes(s.clusters[s.cursor-1]+c)) == 1
}

// resplit recomputes cluster boundaries after an insert. A cursor that ends
// up inside a merged cluster moves to its end.
func (s *session) resplit() {
	offset := len(joinGraphemes(s.clusters[:s.cursor]))
	s.clusters = splitGraphemes(joinGraphemes(s.clusters))
	pos, cursor := 0, 0
	for _, c := range s.clusters {
		if pos >= offset {
			break
		}
		pos += len(c)
		cursor++
	}
	s.cursor = cursor
}

// Backspace removes the cluster before the cursor. At offset 0 it does
// nothing.
func (e *Editor) Backspace() bool {
	s := e.edit
	if s == nil || s.cursor == 0 {
		return false
	}
	s.clusters = append(s.clusters[:s.cursor-1], s.clusters[s.cursor:]...)
	s.cursor--
	return true
}

// CursorLeft moves the edit cursor back one cluster.
func (e *Editor) CursorLeft() bool {
	if e.edit == nil || e.edit.cursor == 0 {
		return false
	}
	e.edit.cursor--
	return true
}

// CursorRight moves the edit cursor forward one cluster.
func (e *Editor) CursorRight() bool {
	if e.edit == nil || e.edit.cursor >= len(e.edit.clusters) {
		return false
	}
	e.edit.cursor++
	return true
}

// Commit writes the edit buffer into the active cell and returns to
// Browsing mode.
func (e *Editor) Commit() error {
	if e.edit == nil {
		return fmt.Errorf("%w: not editing", ErrWrongMode)
	}
	text := joinGraphemes(e.edit.clusters)
	if err := e.grid.SetText(e.active.Row, e.active.Col, text); err != nil {
		return err
	}
	e.edit = nil
	e.mode = Browsing
	return nil
}

// Cancel discards the edit buffer and returns to Browsing mode without
// touching the grid.
func (e *Editor) Cancel() {
	e.edit = nil
	e.mode = Browsing
}
