// Package tui provides the Vectra terminal user interface.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vectrastorage/vectra/internal/config"
	"github.com/vectrastorage/vectra/internal/tui/components"
)

// scheme is the set of colours a theme is built from.
type scheme struct {
	primary    lipgloss.Color
	secondary  lipgloss.Color
	accent     lipgloss.Color
	background lipgloss.Color
	foreground lipgloss.Color
	muted      lipgloss.Color
	err        lipgloss.Color
	warning    lipgloss.Color
	success    lipgloss.Color
}

var schemes = map[config.ColorScheme]scheme{
	// cyan on navy, the yard office default
	config.ColorSchemeHarbor: {
		primary: "#4FC3F7", secondary: "#0288D1", accent: "#B3E5FC",
		background: "#0B1724", foreground: "#E1F5FE", muted: "#37617A",
		err: "#FF5252", warning: "#FFB300", success: "#66BB6A",
	},
	config.ColorSchemeAmber: {
		primary: "#FFAA00", secondary: "#AA7700", accent: "#FFCC66",
		background: "#000000", foreground: "#FFAA00", muted: "#664400",
		err: "#FF4444", warning: "#FFFF00", success: "#FFAA00",
	},
	// for printed screenshots and low colour terminals
	config.ColorSchemeMono: {
		primary: "#FFFFFF", secondary: "#AAAAAA", accent: "#FFFFFF",
		background: "#000000", foreground: "#FFFFFF", muted: "#666666",
		err: "#FF4444", warning: "#FFAA00", success: "#FFFFFF",
	},
}

// Theme holds the styles of the application chrome and dashboard.
type Theme struct {
	PrimaryColor   lipgloss.Color
	SecondaryColor lipgloss.Color
	AccentColor    lipgloss.Color

	Base      lipgloss.Style
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Accent    lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Box      lipgloss.Style
	Selected lipgloss.Style

	// Alert bar
	Alert         lipgloss.Style
	AlertWarn     lipgloss.Style
	AlertCrit     lipgloss.Style
	StatusDivider lipgloss.Style
}

// NewTheme returns the theme for a configured colour scheme. Unknown schemes
// fall back to harbor.
func NewTheme(name config.ColorScheme) *Theme {
	s, ok := schemes[name]
	if !ok {
		s = schemes[config.ColorSchemeHarbor]
	}
	return s.theme()
}

func (s scheme) theme() *Theme {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Theme{
		PrimaryColor:   s.primary,
		SecondaryColor: s.secondary,
		AccentColor:    s.accent,

		Base:      fg(s.foreground),
		Primary:   fg(s.primary),
		Secondary: fg(s.secondary),
		Accent:    fg(s.accent),
		Error:     fg(s.err),
		Warning:   fg(s.warning),
		Success:   fg(s.success),
		Muted:     fg(s.muted),

		Header:   fg(s.primary).Bold(true).Padding(0, 1),
		Footer:   fg(s.secondary).Padding(0, 1),
		Title:    fg(s.accent).Bold(true).Padding(0, 1),
		Subtitle: fg(s.primary).Padding(0, 1),
		Label:    fg(s.secondary),
		Value:    fg(s.primary),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(s.secondary).
			Padding(0, 1),
		Selected: fg(s.background).Background(s.primary).Bold(true),

		Alert:         fg(s.primary).Bold(true),
		AlertWarn:     fg(s.warning).Bold(true),
		AlertCrit:     fg(s.err).Bold(true).Blink(true),
		StatusDivider: fg(s.muted).SetString(" │ "),
	}
}

const (
	lineSingle = "─"
	lineDouble = "═"
)

// DrawHorizontalLine draws a single rule across width columns.
func (t *Theme) DrawHorizontalLine(width int) string {
	return t.Secondary.Render(strings.Repeat(lineSingle, max(width, 0)))
}

// DrawDoubleLine draws a double rule across width columns.
func (t *Theme) DrawDoubleLine(width int) string {
	return t.Primary.Render(strings.Repeat(lineDouble, max(width, 0)))
}

// Palette returns the styles handed to views and components.
func (t *Theme) Palette() components.Palette {
	return components.Palette{
		Title:    t.Title.UnsetPadding(),
		Section:  t.Primary.Bold(true),
		Label:    t.Label,
		Value:    t.Value,
		Muted:    t.Muted,
		Success:  t.Success,
		Warning:  t.Warning,
		Error:    t.Error,
		Help:     t.Label,
		Header:   lipgloss.NewStyle().Bold(true).Foreground(t.AccentColor),
		Row:      lipgloss.NewStyle().Foreground(t.PrimaryColor),
		RowAlt:   lipgloss.NewStyle().Foreground(t.SecondaryColor),
		Selected: t.Selected,
		Border:   lipgloss.NewStyle().Foreground(t.SecondaryColor),
	}
}
