// Package tui is the terminal front end: a sheet picker, the grid view and
// a ':' command line, built on bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/address"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/editor"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/models"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/store"
)

type screen int

const (
	screenPicker screen = iota
	screenGrid
)

// Model is the bubbletea model of the editor.
type Model struct {
	ctx  context.Context
	gw   store.Gateway
	opts gridsheet.Options
	doc  *gridsheet.Document

	screen screen
	width  int
	height int

	// sheet picker
	sheets    []models.SheetInfo
	picked    int
	naming    bool
	nameInput textinput.Model

	// command line
	commanding bool
	cmdInput   textinput.Model

	// viewport origin in cells
	rowOffset int
	colOffset int

	message  string
	isError  bool
	quitting bool
}

// New returns a model working against a connected gateway. With pick set
// the sheet picker is shown first; otherwise opts.Sheet is opened. When opts
// fixes the grid size the document is created immediately, otherwise on the
// first window size message.
func New(ctx context.Context, gw store.Gateway, opts gridsheet.Options, pick bool) (*Model, error) {
	nameInput := textinput.New()
	nameInput.Placeholder = "sheet name"
	nameInput.CharLimit = 31

	cmdInput := textinput.New()
	cmdInput.Prompt = ":"

	m := &Model{
		ctx:       ctx,
		gw:        gw,
		opts:      opts,
		nameInput: nameInput,
		cmdInput:  cmdInput,
		screen:    screenGrid,
	}
	if pick {
		m.screen = screenPicker
		m.refreshSheets()
	}
	if opts.FixedSize() {
		if err := m.createDocument(opts.Rows, opts.Cols); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Document returns the open document, or nil before the first resize.
func (m *Model) Document() *gridsheet.Document { return m.doc }

func (m *Model) createDocument(rows, cols int) error {
	doc, err := gridsheet.NewDocument(m.gw, m.opts, rows, cols)
	if err != nil {
		return err
	}
	m.doc = doc
	if m.screen == screenGrid {
		m.openSheet(m.opts.Sheet)
	}
	return nil
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.doc == nil {
			rows, cols := m.opts.FitSize(msg.Width, msg.Height)
			if err := m.createDocument(rows, cols); err != nil {
				m.fail(err)
			}
		}
		m.scrollToActive()
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.screen == screenPicker:
		return m.updatePicker(msg)
	case m.doc == nil:
		if key.Matches(msg, keys.Quit) {
			return m.quit()
		}
		return m, nil
	case m.commanding:
		return m.updateCommand(msg)
	case m.doc.Editor().Mode() == editor.Editing:
		return m.updateEdit(msg)
	}
	return m.updateGrid(msg)
}

// --- sheet picker ---

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.naming {
		switch msg.Type {
		case tea.KeyEnter:
			name := strings.TrimSpace(m.nameInput.Value())
			m.naming = false
			m.nameInput.Reset()
			m.nameInput.Blur()
			m.createSheet(name)
			return m, nil
		case tea.KeyEsc:
			m.naming = false
			m.nameInput.Reset()
			m.nameInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit), msg.String() == "q":
		return m.quit()
	case key.Matches(msg, keys.Up):
		if len(m.sheets) > 0 {
			m.picked = (m.picked - 1 + len(m.sheets)) % len(m.sheets)
		}
	case key.Matches(msg, keys.Down):
		if len(m.sheets) > 0 {
			m.picked = (m.picked + 1) % len(m.sheets)
		}
	case key.Matches(msg, keys.NewSheet):
		m.naming = true
		return m, m.nameInput.Focus()
	case msg.Type == tea.KeyEnter:
		if m.picked < len(m.sheets) && m.doc != nil {
			if m.openSheet(m.sheets[m.picked].Name) {
				m.screen = screenGrid
			}
		}
	}
	return m, nil
}

func (m *Model) refreshSheets() {
	sheets, err := m.gw.ListSheets(m.ctx)
	if err != nil {
		m.fail(err)
		return
	}
	m.sheets = sheets
	if m.picked >= len(sheets) {
		m.picked = max(len(sheets)-1, 0)
	}
}

func (m *Model) createSheet(name string) {
	var err error
	if m.doc != nil {
		err = m.doc.CreateSheet(m.ctx, name)
	} else {
		err = m.gw.CreateSheet(m.ctx, name)
	}
	if err != nil {
		m.fail(err)
		return
	}
	m.refreshSheets()
	for i, s := range m.sheets {
		if s.Name == name {
			m.picked = i
		}
	}
	m.info(fmt.Sprintf("created sheet %q", name))
}

// --- grid browsing ---

func (m *Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.doc.Editor()
	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.Up):
		ed.Move(editor.Up)
	case key.Matches(msg, keys.Down):
		ed.Move(editor.Down)
	case key.Matches(msg, keys.Left):
		ed.Move(editor.Left)
	case key.Matches(msg, keys.Right):
		ed.Move(editor.Right)
	case key.Matches(msg, keys.Edit):
		if err := ed.Open(); err != nil {
			m.fail(err)
		}
	case key.Matches(msg, keys.Clear):
		if err := ed.Clear(); err != nil {
			m.fail(err)
		}
	case key.Matches(msg, keys.Save):
		m.save()
	case key.Matches(msg, keys.Command):
		m.commanding = true
		m.cmdInput.Reset()
		return m, m.cmdInput.Focus()
	}
	m.scrollToActive()
	return m, nil
}

// --- editing ---

func (m *Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.doc.Editor()
	switch {
	case key.Matches(msg, keys.Newline):
		ed.Insert("\n")
	case key.Matches(msg, keys.Commit):
		if err := ed.Commit(); err != nil {
			m.fail(err)
		}
	case key.Matches(msg, keys.Cancel):
		ed.Cancel()
	case key.Matches(msg, keys.Delete):
		ed.Backspace()
	case msg.Type == tea.KeyLeft:
		ed.CursorLeft()
	case msg.Type == tea.KeyRight:
		ed.CursorRight()
	case msg.Type == tea.KeySpace:
		ed.Insert(" ")
	case msg.Type == tea.KeyRunes && !msg.Alt:
		ed.Insert(string(msg.Runes))
	}
	return m, nil
}

// --- command line ---

func (m *Model) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		line := m.cmdInput.Value()
		m.commanding = false
		m.cmdInput.Blur()
		return m.execute(line)
	case tea.KeyEsc:
		m.commanding = false
		m.cmdInput.Blur()
		return m, nil
	case tea.KeyBackspace:
		if m.cmdInput.Value() == "" {
			m.commanding = false
			m.cmdInput.Blur()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.cmdInput, cmd = m.cmdInput.Update(msg)
	return m, cmd
}

// execute runs one ':' command.
func (m *Model) execute(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, nil
	}
	arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch fields[0] {
	case "w":
		m.save()
	case "q":
		return m.quit()
	case "wq", "x":
		if m.save() {
			return m.quit()
		}
	case "e", "open":
		if arg == "" {
			m.fail(fmt.Errorf("usage: :e NAME"))
			break
		}
		m.openSheet(arg)
	case "new":
		if arg == "" {
			m.fail(fmt.Errorf("usage: :new NAME"))
			break
		}
		m.createSheet(arg)
	case "goto", "g":
		a, err := address.Resolve(arg)
		if err == nil {
			err = m.doc.Editor().MoveTo(a)
		}
		if err != nil {
			m.fail(err)
			break
		}
		m.scrollToActive()
	case "sheets":
		m.refreshSheets()
		m.screen = screenPicker
	default:
		m.fail(fmt.Errorf("unknown command %q", fields[0]))
	}
	return m, nil
}

// --- actions ---

func (m *Model) save() bool {
	if err := m.doc.Save(m.ctx); err != nil {
		m.fail(err)
		return false
	}
	m.info(fmt.Sprintf("saved sheet %q", m.doc.Sheet()))
	return true
}

func (m *Model) openSheet(name string) bool {
	if err := m.doc.Load(m.ctx, name); err != nil {
		m.fail(err)
		return false
	}
	m.rowOffset, m.colOffset = 0, 0
	m.info(fmt.Sprintf("opened sheet %q", name))
	return true
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) info(s string) {
	m.message = s
	m.isError = false
}

func (m *Model) fail(err error) {
	m.message = err.Error()
	m.isError = true
}

// visibleCells returns how many rows and columns of cells fit on screen.
func (m *Model) visibleCells() (rows, cols int) {
	rows = (m.height - gridsheet.HeaderLines - gridsheet.StatusLines) / m.opts.CellHeight
	cols = (m.width - gridsheet.RowGutter) / m.opts.CellWidth
	return max(rows, 1), max(cols, 1)
}

// scrollToActive moves the viewport so the active cell is visible.
func (m *Model) scrollToActive() {
	if m.doc == nil {
		return
	}
	active := m.doc.Editor().Active()
	visRows, visCols := m.visibleCells()

	if active.Row < m.rowOffset {
		m.rowOffset = active.Row
	}
	if active.Row >= m.rowOffset+visRows {
		m.rowOffset = active.Row - visRows + 1
	}
	if active.Col < m.colOffset {
		m.colOffset = active.Col
	}
	if active.Col >= m.colOffset+visCols {
		m.colOffset = active.Col - visCols + 1
	}
}
