package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LayoutBreakpoint is a terminal width class.
type LayoutBreakpoint int

const (
	// BreakpointNarrow is for terminals under 60 columns, e.g. a handheld
	// scanner session.
	BreakpointNarrow LayoutBreakpoint = 60
	// BreakpointMedium covers 60 to 99 columns.
	BreakpointMedium LayoutBreakpoint = 100
	// BreakpointWide is anything from 100 columns up.
	BreakpointWide LayoutBreakpoint = 140
)

// GetBreakpoint classifies a terminal width.
func GetBreakpoint(width int) LayoutBreakpoint {
	for _, bp := range []LayoutBreakpoint{BreakpointNarrow, BreakpointMedium} {
		if width < int(bp) {
			return bp
		}
	}
	return BreakpointWide
}

// Panel renders content in a rounded box of the given outer width with the
// title set into the top border.
func (t *Theme) Panel(title, content string, width int) string {
	border := lipgloss.RoundedBorder()
	inner := max(width-2, 1)

	body := lipgloss.NewStyle().
		Border(border, false, true, true, true).
		BorderForeground(t.SecondaryColor).
		Width(inner).
		Padding(0, 1).
		Render(content)

	edge := lipgloss.NewStyle().Foreground(t.SecondaryColor)
	label := ""
	if title != "" {
		label = t.Accent.Bold(true).Render(" " + title + " ")
	}
	fill := inner - 1 - lipgloss.Width(label)
	if fill < 1 {
		label, fill = "", inner
	}
	top := edge.Render(border.TopLeft+border.Top) + label +
		edge.Render(strings.Repeat(border.Top, max(fill, 0))+border.TopRight)
	if label == "" {
		top = edge.Render(border.TopLeft + strings.Repeat(border.Top, inner) + border.TopRight)
	}

	return top + "\n" + body
}

// SideBySide places left and right next to each other, the right block
// starting at the middle of totalWidth. When they cannot share a row the
// right block goes below the left one.
func SideBySide(left, right string, totalWidth, gap int) string {
	lw := lipgloss.Width(left)
	if lw+lipgloss.Width(right)+gap > totalWidth {
		return left + "\n\n" + right
	}

	column := max(totalWidth/2, lw+1)
	lines := strings.Split(left, "\n")
	for i, l := range lines {
		lines[i] = PadRight(l, column)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(lines, "\n"), right)
}

// ProgressBar renders a bracketed gauge width columns wide. It turns to the
// warning colour above 90% and to the error colour above 100%.
func (t *Theme) ProgressBar(value, total float64, width int) string {
	if total <= 0 {
		total = 1
	}
	ratio := value / total
	cells := max(width-2, 4)
	filled := int(min(max(ratio, 0), 1) * float64(cells))

	bar := "[" + strings.Repeat("█", filled) + strings.Repeat("░", cells-filled) + "]"

	style := t.Success
	if ratio > 1 {
		style = t.Error
	} else if ratio > 0.9 {
		style = t.Warning
	}
	return style.Render(bar)
}

// Truncate cuts s to maxWidth display columns, ending in "…" when there is
// room for it.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	if maxWidth <= 3 {
		return string(runes[:min(maxWidth, len(runes))])
	}
	return string(runes[:min(maxWidth-1, len(runes))]) + "…"
}

// PadRight pads s with spaces up to width display columns.
func PadRight(s string, width int) string {
	return s + strings.Repeat(" ", max(width-lipgloss.Width(s), 0))
}

// ContentWidth clamps the terminal width to [minWidth, maxWidth]; a zero
// maxWidth means no upper bound.
func ContentWidth(termWidth, minWidth, maxWidth int) int {
	w := max(termWidth, minWidth)
	if maxWidth > 0 {
		w = min(w, maxWidth)
	}
	return w
}

// ContentHeight is the height left for modules once chromeLines of header,
// alert bar and footer are taken. It never drops below 5.
func ContentHeight(termHeight, chromeLines int) int {
	return max(termHeight-chromeLines, 5)
}
