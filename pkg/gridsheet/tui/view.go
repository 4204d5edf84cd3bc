package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/ukaji3/gridsheet-go/pkg/gridsheet"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/address"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/editor"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/formula"
	"github.com/ukaji3/gridsheet-go/pkg/gridsheet/grid"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true)
	gutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	activeStyle = lipgloss.NewStyle().Reverse(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	pickerStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.screen == screenPicker {
		return m.viewPicker()
	}
	if m.doc == nil {
		return dimStyle.Render("loading…")
	}

	var sb strings.Builder
	sb.WriteString(m.viewGrid())
	sb.WriteString(m.viewStatus())
	sb.WriteByte('\n')
	sb.WriteString(m.viewMessage())
	return sb.String()
}

func (m *Model) viewPicker() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Sheets"))
	sb.WriteString("\n\n")
	if len(m.sheets) == 0 {
		sb.WriteString(dimStyle.Render("no sheets yet"))
		sb.WriteByte('\n')
	}
	for i, s := range m.sheets {
		line := "  " + s.Name
		if i == m.picked {
			line = activeStyle.Render(line+" ") + " <"
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if m.naming {
		sb.WriteByte('\n')
		sb.WriteString(m.nameInput.View())
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	sb.WriteString(dimStyle.Render("↑/↓ select • enter open • n new • q quit"))

	out := pickerStyle.Render(sb.String())
	if m.message != "" {
		out += "\n" + m.viewMessage()
	}
	return out
}

// viewGrid renders column labels, the row gutter and every visible cell.
// A cell takes CellWidth columns and CellHeight lines including its right
// and bottom border.
func (m *Model) viewGrid() string {
	g := m.doc.Grid()
	ed := m.doc.Editor()
	rows, cols := g.Size()
	visRows, visCols := m.visibleCells()
	lastRow := min(m.rowOffset+visRows, rows)
	lastCol := min(m.colOffset+visCols, cols)

	cw, ch := m.opts.CellWidth, m.opts.CellHeight
	inner := cw - 1

	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", gridsheet.RowGutter))
	for c := m.colOffset; c < lastCol; c++ {
		sb.WriteString(headerStyle.Render(center(address.ColumnLabel(c), cw)))
	}
	sb.WriteByte('\n')

	for r := m.rowOffset; r < lastRow; r++ {
		blocks := make([][]string, 0, lastCol-m.colOffset)
		for c := m.colOffset; c < lastCol; c++ {
			a := address.Address{Row: r, Col: c}
			var lines []string
			if a == ed.Active() && ed.Mode() == editor.Editing {
				lines = editLines(ed.ActiveText(), ed.CursorOffset(), inner, ch-1)
			} else {
				lines = cellLines(g, a, inner, ch-1)
				if a == ed.Active() {
					for i := range lines {
						lines[i] = activeStyle.Render(lines[i])
					}
				}
			}
			blocks = append(blocks, lines)
		}

		for line := 0; line < ch-1; line++ {
			if line == 0 {
				sb.WriteString(gutterStyle.Render(fmt.Sprintf("%*d ", gridsheet.RowGutter-1, r+1)))
			} else {
				sb.WriteString(strings.Repeat(" ", gridsheet.RowGutter))
			}
			for _, block := range blocks {
				sb.WriteString(block[line])
				sb.WriteString(borderStyle.Render("│"))
			}
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Repeat(" ", gridsheet.RowGutter))
		for range blocks {
			sb.WriteString(borderStyle.Render(strings.Repeat("─", inner) + "┼"))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// cellLines returns the displayed value of a, cut into height lines of
// exactly width columns.
func cellLines(g *grid.Grid, a address.Address, width, height int) []string {
	text := g.DisplayValue(a.Row, a.Col)
	src := strings.Split(lineBreaks.Replace(text), "\n")
	lines := make([]string, height)
	for i := range lines {
		s := ""
		if i < len(src) {
			s = src[i]
		}
		lines[i] = runewidth.FillRight(runewidth.Truncate(s, width, ""), width)
	}
	return lines
}

// editLines renders the live edit text with a cursor at the cluster offset
// cursor. When the text has more lines than fit, the lines ending at the
// cursor line are shown.
func editLines(text string, cursor, width, height int) []string {
	type line struct {
		clusters []string
		cursor   int
	}
	all := []line{{cursor: -1}}
	cursorLine := 0
	idx := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		c := gr.Str()
		cur := &all[len(all)-1]
		if idx == cursor {
			cur.cursor = len(cur.clusters)
			cursorLine = len(all) - 1
		}
		idx++
		if c == "\n" || c == "\r\n" {
			all = append(all, line{cursor: -1})
			continue
		}
		cur.clusters = append(cur.clusters, c)
	}
	if idx <= cursor {
		last := &all[len(all)-1]
		last.cursor = len(last.clusters)
		cursorLine = len(all) - 1
	}

	first := 0
	if cursorLine >= height {
		first = cursorLine - height + 1
	}

	out := make([]string, height)
	for i := range out {
		n := first + i
		if n >= len(all) {
			out[i] = strings.Repeat(" ", width)
			continue
		}
		out[i] = renderEditLine(all[n].clusters, all[n].cursor, width)
	}
	return out
}

func renderEditLine(clusters []string, cursor, width int) string {
	var sb strings.Builder
	used := 0
	for i, c := range clusters {
		w := runewidth.StringWidth(c)
		if w == 0 {
			w = uniseg.StringWidth(c)
		}
		if used+w > width {
			break
		}
		if i == cursor {
			sb.WriteString(cursorStyle.Render(c))
		} else {
			sb.WriteString(c)
		}
		used += w
	}
	if cursor == len(clusters) && used < width {
		sb.WriteString(cursorStyle.Render(" "))
		used++
	}
	sb.WriteString(strings.Repeat(" ", width-used))
	return sb.String()
}

// viewStatus shows mode, sheet, active address and the raw content of the
// active cell, with the evaluation error code for failing formulas.
func (m *Model) viewStatus() string {
	ed := m.doc.Editor()
	active := ed.Active()

	raw := ""
	if cell, err := m.doc.Grid().Get(active.Row, active.Col); err == nil {
		raw = cell.Text
		if _, err := m.doc.Grid().Evaluate(active.Row, active.Col); err != nil {
			raw += "  " + formula.Code(err)
		} else if cell.ParseErr != nil {
			raw += "  " + formula.Code(cell.ParseErr)
		}
	}
	raw = strings.ReplaceAll(lineBreaks.Replace(raw), "\n", "⏎")

	status := fmt.Sprintf(" %s │ %s │ %s │ %s", ed.Mode(), m.doc.Sheet(), active, raw)
	if m.width > 0 {
		status = runewidth.FillRight(runewidth.Truncate(status, m.width, "…"), m.width)
	}
	return statusStyle.Render(status)
}

func (m *Model) viewMessage() string {
	if m.commanding {
		return m.cmdInput.View()
	}
	if m.isError {
		return errorStyle.Render(m.message)
	}
	return dimStyle.Render(m.message)
}

func center(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return runewidth.Truncate(s, width, "")
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}
