// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. Width is the fixed width, or the minimum
// width when Weight is set. Lower Priority columns are hidden first on
// narrow terminals.
type Column struct {
	Title    string
	Width    int
	Align    lipgloss.Position
	Weight   float64
	Priority int
}

const cellSeparator = " │ "

// Table renders one page of rows with a movable cursor. Paging itself is
// done by the views; the table only shows the page footer they set.
type Table struct {
	columns []Column
	rows    [][]string
	pal     Palette
	focused bool

	cursor int
	top    int
	height int

	page, pages, total int
}

// NewTable creates an empty table showing up to ten rows.
func NewTable(columns []Column) *Table {
	return &Table{columns: columns, height: 10, pal: DefaultPalette()}
}

// SetRows replaces the rows, keeping the cursor on an existing row.
func (t *Table) SetRows(rows [][]string) {
	t.rows = rows
	t.cursor = min(t.cursor, max(len(rows)-1, 0))
	t.scroll()
}

// SetPagination sets the "page of pages" footer. pages 0 hides it.
func (t *Table) SetPagination(page, pages, total int) {
	t.page, t.pages, t.total = page, pages, total
}

// SetVisibleRows sets how many rows fit on screen.
func (t *Table) SetVisibleRows(n int) {
	t.height = max(n, 1)
	t.scroll()
}

// SetPalette sets the styles the table renders with.
func (t *Table) SetPalette(p Palette) { t.pal = p }

// Focus toggles the cursor highlight.
func (t *Table) Focus(focused bool) { t.focused = focused }

// Selected is the cursor's row index.
func (t *Table) Selected() int { return t.cursor }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.rows) == 0 }

// MoveUp moves the cursor one row up.
func (t *Table) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.scroll()
	}
}

// MoveDown moves the cursor one row down.
func (t *Table) MoveDown() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
		t.scroll()
	}
}

// scroll keeps the cursor inside the visible window.
func (t *Table) scroll() {
	if t.cursor < t.top {
		t.top = t.cursor
	}
	if t.cursor >= t.top+t.height {
		t.top = t.cursor - t.height + 1
	}
}

// RenderResponsive renders the table fitted to width. Weighted columns share
// the spare room and low priority columns are hidden when it runs out. A
// width of 0 renders every column at its fixed width.
func (t *Table) RenderResponsive(width int) string {
	widths := t.columnWidths(width)

	titles := make([]string, len(t.columns))
	for i, c := range t.columns {
		titles[i] = c.Title
	}
	header := t.line(titles, widths)
	rule := t.pal.Border.Render(strings.Repeat("─", lipgloss.Width(header)))

	out := []string{t.pal.Header.Render(header), rule}
	for i := t.top; i < min(t.top+t.height, len(t.rows)); i++ {
		style := t.pal.Row
		if i == t.cursor && t.focused {
			style = t.pal.Selected
		} else if (i-t.top)%2 == 1 {
			style = t.pal.RowAlt
		}
		out = append(out, style.Render(t.line(t.rows[i], widths)))
	}

	if t.pages > 0 {
		out = append(out, rule, t.pal.Border.Render(
			fmt.Sprintf("Página %d/%d · %d registros", t.page, t.pages, t.total)))
	}
	return strings.Join(out, "\n")
}

func (t *Table) columnWidths(width int) []int {
	widths := make([]int, len(t.columns))
	if width <= 0 {
		for i, c := range t.columns {
			widths[i] = c.Width
		}
		return widths
	}

	specs := make([]ColumnSpec, len(t.columns))
	for i, c := range t.columns {
		specs[i] = ColumnSpec{Fixed: c.Width, Priority: c.Priority}
		if c.Weight > 0 {
			specs[i] = ColumnSpec{MinWidth: c.Width, Weight: c.Weight, Priority: c.Priority}
		}
	}
	return CalculateColumnWidths(specs, width, lipgloss.Width(cellSeparator))
}

// line lays cells out in the visible columns. Missing cells render blank.
func (t *Table) line(cells []string, widths []int) string {
	parts := make([]string, 0, len(t.columns))
	for i, c := range t.columns {
		if widths[i] <= 0 {
			continue
		}
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		parts = append(parts, fitCell(cell, widths[i], c.Align))
	}
	return " " + strings.Join(parts, cellSeparator) + " "
}

// fitCell truncates or pads s to exactly width cells.
func fitCell(s string, width int, align lipgloss.Position) string {
	if lipgloss.Width(s) > width {
		r := []rune(s)
		s = string(r[:min(width-1, len(r))]) + "…"
	}
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", gap) + s
	case lipgloss.Center:
		return strings.Repeat(" ", gap/2) + s + strings.Repeat(" ", gap-gap/2)
	}
	return s + strings.Repeat(" ", gap)
}
