package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/address"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/editor"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/store"
)

func testOptions(rows, cols int) gridsheet.Options {
	opts := gridsheet.DefaultOptions()
	opts.Rows, opts.Cols = rows, cols
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

func newTestModel(t *testing.T, opts gridsheet.Options, pick bool) (*Model, *store.MemoryGateway) {
	t.Helper()
	gw := store.NewMemoryGateway()
	if err := gw.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	m, err := New(context.Background(), gw, opts, pick)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m, gw
}

func press(m *Model, keys ...tea.KeyType) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(tea.KeyMsg{Type: k})
	}
	return cmd
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func command(m *Model, line string) tea.Cmd {
	typeText(m, ":")
	typeText(m, line)
	return press(m, tea.KeyEnter)
}

func TestEditAndCommit(t *testing.T) {
	m, _ := newTestModel(t, testOptions(4, 3), false)

	press(m, tea.KeyDown, tea.KeyEnter)
	typeText(m, "2")
	press(m, tea.KeyTab, tea.KeyDown, tea.KeyEnter)
	typeText(m, "3")
	press(m, tea.KeyTab, tea.KeyUp, tea.KeyUp, tea.KeyEnter)
	typeText(m, "=SUM(A2:A3)")
	if got := m.Document().Editor().Mode(); got != editor.Editing {
		t.Fatalf("Expected editing mode, got %s", got)
	}
	press(m, tea.KeyEsc)

	g := m.Document().Grid()
	if got := g.DisplayValue(0, 0); got != "5" {
		t.Errorf("Expected A1 to show 5, got %q", got)
	}
	if got := m.Document().Editor().Mode(); got != editor.Browsing {
		t.Errorf("Expected browsing mode after commit, got %s", got)
	}
}

func TestEditBrowsingKeysAreText(t *testing.T) {
	m, _ := newTestModel(t, testOptions(2, 2), false)

	press(m, tea.KeyEnter)
	typeText(m, "hjkl")
	press(m, tea.KeySpace)
	typeText(m, "x")
	press(m, tea.KeyLeft, tea.KeyBackspace, tea.KeyTab)

	cell, _ := m.Document().Grid().Get(0, 0)
	if cell.Text != "hjklx" {
		t.Errorf("Expected %q, got %q", "hjklx", cell.Text)
	}
}

func TestEditNewline(t *testing.T) {
	m, _ := newTestModel(t, testOptions(2, 2), false)

	press(m, tea.KeyEnter)
	typeText(m, "a")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	typeText(m, "b")
	press(m, tea.KeyTab)

	cell, _ := m.Document().Grid().Get(0, 0)
	if cell.Text != "a\nb" {
		t.Errorf("Expected %q, got %q", "a\nb", cell.Text)
	}
}

func TestEditIgnoresAltRunes(t *testing.T) {
	m, _ := newTestModel(t, testOptions(2, 2), false)

	press(m, tea.KeyEnter)
	typeText(m, "a")
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true})
	if got := m.Document().Editor().ActiveText(); got != "a" {
		t.Errorf("Expected alt+x to insert nothing, got %q", got)
	}
}

func TestCancelDiscardsEdit(t *testing.T) {
	m, _ := newTestModel(t, testOptions(2, 2), false)

	press(m, tea.KeyEnter)
	typeText(m, "draft")
	cmd := press(m, tea.KeyCtrlC)
	if cmd != nil {
		t.Errorf("ctrl+c while editing should not quit")
	}

	cell, _ := m.Document().Grid().Get(0, 0)
	if cell.Text != "" {
		t.Errorf("Expected empty cell, got %q", cell.Text)
	}
	if got := m.Document().Editor().Mode(); got != editor.Browsing {
		t.Errorf("Expected browsing mode, got %s", got)
	}
}

func TestClearCell(t *testing.T) {
	m, _ := newTestModel(t, testOptions(2, 2), false)
	m.Document().Grid().SetText(0, 0, "gone")

	press(m, tea.KeyDelete)

	cell, _ := m.Document().Grid().Get(0, 0)
	if cell.Text != "" {
		t.Errorf("Expected cleared cell, got %q", cell.Text)
	}
}

func TestSaveCommand(t *testing.T) {
	m, gw := newTestModel(t, testOptions(3, 3), false)

	press(m, tea.KeyRight, tea.KeyEnter)
	typeText(m, "hello")
	press(m, tea.KeyTab)
	command(m, "w")

	if m.isError {
		t.Fatalf("save reported an error: %s", m.message)
	}
	cells, err := gw.Load(context.Background(), "1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cells[address.Address{Row: 0, Col: 1}]; got != "hello" {
		t.Errorf("Expected saved B1 %q, got %q", "hello", got)
	}
}

func TestSaveShortcut(t *testing.T) {
	m, gw := newTestModel(t, testOptions(2, 2), false)
	m.Document().Grid().SetText(1, 1, "x")

	press(m, tea.KeyCtrlS)

	cells, _ := gw.Load(context.Background(), "1")
	if len(cells) != 1 {
		t.Errorf("Expected 1 saved cell, got %d", len(cells))
	}
}

func TestGotoCommand(t *testing.T) {
	tests := []struct {
		line     string
		expected address.Address
		isError  bool
	}{
		{"goto C2", address.Address{Row: 1, Col: 2}, false},
		{"g A3", address.Address{Row: 2, Col: 0}, false},
		{"goto Z9", address.Address{}, true},
		{"goto 12", address.Address{}, true},
	}

	for _, tt := range tests {
		m, _ := newTestModel(t, testOptions(3, 3), false)
		command(m, tt.line)
		if got := m.Document().Editor().Active(); got != tt.expected {
			t.Errorf(":%s: Expected active %s, got %s", tt.line, tt.expected, got)
		}
		if m.isError != tt.isError {
			t.Errorf(":%s: Expected isError %v, got %v (%s)", tt.line, tt.isError, m.isError, m.message)
		}
	}
}

func TestOpenCommand(t *testing.T) {
	m, gw := newTestModel(t, testOptions(2, 2), false)
	if err := gw.Save(context.Background(), "other", map[address.Address]string{{Row: 1, Col: 0}: "42"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	command(m, "e other")

	if m.Document().Sheet() != "other" {
		t.Fatalf("Expected sheet %q, got %q", "other", m.Document().Sheet())
	}
	if got := m.Document().Grid().DisplayValue(1, 0); got != "42" {
		t.Errorf("Expected A2 42, got %q", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	m, _ := newTestModel(t, testOptions(2, 2), false)

	if cmd := command(m, "frobnicate"); cmd != nil {
		t.Errorf("unknown command returned a tea.Cmd")
	}
	if !m.isError || !strings.Contains(m.message, "frobnicate") {
		t.Errorf("Expected an error naming the command, got %q", m.message)
	}
}

func TestQuitCommands(t *testing.T) {
	tests := []string{"q", "wq"}

	for _, line := range tests {
		m, _ := newTestModel(t, testOptions(2, 2), false)
		cmd := command(m, line)
		if cmd == nil {
			t.Fatalf(":%s: Expected a quit command", line)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf(":%s: Expected tea.QuitMsg", line)
		}
		if m.View() != "" {
			t.Errorf(":%s: Expected empty view after quit", line)
		}
	}
}

func TestEscapeLeavesCommandLine(t *testing.T) {
	m, _ := newTestModel(t, testOptions(2, 2), false)

	typeText(m, ":")
	typeText(m, "q")
	if cmd := press(m, tea.KeyEsc); cmd != nil {
		t.Errorf("Esc on the command line returned a tea.Cmd")
	}
	if m.commanding {
		t.Errorf("Expected command line closed")
	}
}

func TestPickerWrapsAndOpens(t *testing.T) {
	gw := store.NewMemoryGateway()
	ctx := context.Background()
	gw.Connect(ctx)
	for _, name := range []string{"alpha", "beta"} {
		if err := gw.CreateSheet(ctx, name); err != nil {
			t.Fatalf("CreateSheet(%s) failed: %v", name, err)
		}
	}
	m, err := New(ctx, gw, testOptions(2, 2), true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	press(m, tea.KeyUp)
	if m.picked != 1 {
		t.Errorf("Expected up from the first sheet to wrap to 1, got %d", m.picked)
	}
	press(m, tea.KeyDown)
	if m.picked != 0 {
		t.Errorf("Expected down from the last sheet to wrap to 0, got %d", m.picked)
	}
	if !strings.Contains(m.View(), "alpha") {
		t.Errorf("picker view does not list sheets:\n%s", m.View())
	}

	press(m, tea.KeyDown, tea.KeyEnter)
	if m.screen != screenGrid {
		t.Fatalf("Expected grid screen after enter")
	}
	if m.Document().Sheet() != "beta" {
		t.Errorf("Expected sheet beta, got %q", m.Document().Sheet())
	}
}

func TestPickerCreatesSheet(t *testing.T) {
	m, gw := newTestModel(t, testOptions(2, 2), true)

	typeText(m, "n")
	typeText(m, "budget")
	press(m, tea.KeyEnter)

	sheets, err := gw.ListSheets(context.Background())
	if err != nil {
		t.Fatalf("ListSheets failed: %v", err)
	}
	if len(sheets) != 1 || sheets[0].Name != "budget" {
		t.Errorf("Expected catalog [budget], got %v", sheets)
	}
	if m.naming {
		t.Errorf("Expected name prompt closed")
	}
}

func TestSheetsCommandShowsPicker(t *testing.T) {
	m, _ := newTestModel(t, testOptions(2, 2), false)

	command(m, "sheets")
	if m.screen != screenPicker {
		t.Errorf("Expected picker screen")
	}
}

func TestWindowSizeCreatesDocument(t *testing.T) {
	m, _ := newTestModel(t, testOptions(0, 0), false)
	if m.Document() != nil {
		t.Fatalf("Expected no document before the first resize")
	}

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	if m.Document() == nil {
		t.Fatalf("Expected a document after resize")
	}
	rows, cols := m.Document().Grid().Size()
	if rows != 7 || cols != 6 {
		t.Errorf("Expected 7x6 grid, got %dx%d", rows, cols)
	}
	if m.Document().Sheet() != "1" {
		t.Errorf("Expected default sheet 1, got %q", m.Document().Sheet())
	}
}

func TestScrollFollowsActive(t *testing.T) {
	m, _ := newTestModel(t, testOptions(10, 2), false)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 9})

	press(m, tea.KeyDown, tea.KeyDown, tea.KeyDown)
	if m.rowOffset != 2 {
		t.Errorf("Expected row offset 2, got %d", m.rowOffset)
	}
	press(m, tea.KeyUp, tea.KeyUp, tea.KeyUp)
	if m.rowOffset != 0 {
		t.Errorf("Expected row offset 0, got %d", m.rowOffset)
	}
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t, testOptions(3, 2), false)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	g := m.Document().Grid()
	g.SetText(0, 1, "7")
	g.SetText(1, 1, "=PRODUCT(B1:B1)")
	g.SetText(2, 0, "=SUM(A3:A3)")

	view := m.View()
	for _, want := range []string{" A ", " B ", "7", "#ERROR!", "BROWSE", "A1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	command(m, "goto A3")
	if !strings.Contains(m.View(), "#CYCLE!") {
		t.Errorf("status line missing the error code:\n%s", m.View())
	}
}

func TestCellLinesCarriageReturns(t *testing.T) {
	tests := []string{"ab\r\ncd", "ab\rcd", "ab\ncd"}

	for _, text := range tests {
		m, _ := newTestModel(t, testOptions(1, 1), false)
		g := m.Document().Grid()
		g.SetText(0, 0, text)

		lines := cellLines(g, address.Address{}, 6, 2)
		if lines[0] != "ab    " || lines[1] != "cd    " {
			t.Errorf("cellLines(%q) = %q, expected [\"ab    \" \"cd    \"]", text, lines)
		}
	}
}

func TestEditLines(t *testing.T) {
	tests := []struct {
		text   string
		cursor int
		height int
		first  string
	}{
		{"abc", 0, 2, "abc"},
		{"ab\ncd", 5, 1, "cd"},
		{"ab\ncd", 1, 1, "ab"},
		{"", 0, 1, ""},
	}

	for _, tt := range tests {
		lines := editLines(tt.text, tt.cursor, 6, tt.height)
		if len(lines) != tt.height {
			t.Fatalf("editLines(%q) returned %d lines, expected %d", tt.text, len(lines), tt.height)
		}
		if !strings.HasPrefix(lines[0], tt.first) {
			t.Errorf("editLines(%q, %d) first line = %q, expected prefix %q", tt.text, tt.cursor, lines[0], tt.first)
		}
	}
}
