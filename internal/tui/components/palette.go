package components

import "github.com/charmbracelet/lipgloss"

// Palette is the set of styles components and views render with. The tui
// package builds it from the active theme.
type Palette struct {
	Title    lipgloss.Style
	Section  lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Header   lipgloss.Style
	Row      lipgloss.Style
	RowAlt   lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
}

// DefaultPalette is a plain cyan palette used when no theme is supplied.
func DefaultPalette() Palette {
	primary := lipgloss.Color("#4FC3F7")
	secondary := lipgloss.Color("#0288D1")
	accent := lipgloss.Color("#B3E5FC")
	return Palette{
		Title:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		Section:  lipgloss.NewStyle().Foreground(primary).Bold(true),
		Label:    lipgloss.NewStyle().Foreground(secondary),
		Value:    lipgloss.NewStyle().Foreground(primary),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#37617A")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("#66BB6A")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB300")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5252")),
		Help:     lipgloss.NewStyle().Foreground(secondary),
		Header:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Row:      lipgloss.NewStyle().Foreground(primary),
		RowAlt:   lipgloss.NewStyle().Foreground(secondary),
		Selected: lipgloss.NewStyle().Background(primary).Foreground(lipgloss.Color("#0B1724")),
		Border:   lipgloss.NewStyle().Foreground(secondary),
	}
}
