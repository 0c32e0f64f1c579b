// Package movements provides the entry, exit and measurement history views.
package movements

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/tui/components"
	"github.com/vectrastorage/vectra/internal/util"
)

// Source is what the view reads from.
type Source interface {
	Events() []*models.Event
	Measurements() []*models.Measurement
}

// Mode selects which history the view lists.
type Mode int

const (
	ModeEvents Mode = iota
	ModeMeasurements
)

// View lists container movements or measurements, newest first.
type View struct {
	source       Source
	palette      components.Palette
	mode         Mode
	events       *components.Table
	measurements *components.Table
	page         models.Pagination
}

// NewView creates a new movements view.
func NewView(source Source) *View {
	events := components.NewTable([]components.Column{
		{Title: "Data", Width: 16, Priority: 9},
		{Title: "Tipo", Width: 8, Priority: 10},
		{Title: "Contêiner", Width: 12, Priority: 8},
		{Title: "Cliente", Width: 14, Weight: 1.5, Priority: 5},
		{Title: "Itens", Width: 18, Weight: 2.0, Priority: 6},
		{Title: "Qtd", Width: 5, Align: lipgloss.Right, Priority: 7},
		{Title: "Por", Width: 10, Priority: 3},
	})
	events.SetVisibleRows(20)
	events.Focus(true)

	measurements := components.NewTable([]components.Column{
		{Title: "Data", Width: 10, Priority: 9},
		{Title: "Contêiner", Width: 12, Priority: 8},
		{Title: "SKU", Width: 10, Priority: 10},
		{Title: "Dimensões (cm)", Width: 16, Priority: 6},
		{Title: "Peso (kg)", Width: 9, Align: lipgloss.Right, Priority: 5},
		{Title: "Volume (m³)", Width: 11, Align: lipgloss.Right, Priority: 7},
		{Title: "Por", Width: 10, Priority: 3},
	})
	measurements.SetVisibleRows(20)
	measurements.Focus(true)

	return &View{
		source:       source,
		palette:      components.DefaultPalette(),
		events:       events,
		measurements: measurements,
		page:         models.Pagination{Page: 1, PageSize: 20},
	}
}

// SetPalette sets the render styles.
func (v *View) SetPalette(p components.Palette) {
	v.palette = p
	v.events.SetPalette(p)
	v.measurements.SetPalette(p)
}

// Load reads the current page of the active history.
func (v *View) Load() {
	if v.source == nil {
		return
	}

	if v.mode == ModeMeasurements {
		all := v.source.Measurements()
		v.page = v.page.Clamp(len(all))
		page := models.Page(all, v.page)
		rows := make([][]string, len(page))
		for i, m := range page {
			rows[i] = []string{
				util.FormatDate(m.Date),
				m.ContainerCode,
				m.SKU,
				m.Dimensions(),
				util.FormatNumber(m.Weight, 1),
				util.FormatNumber(m.Volume, 3),
				m.MeasuredBy,
			}
		}
		v.measurements.SetRows(rows)
		v.measurements.SetPagination(v.page.Page, v.page.TotalPages(len(all)), len(all))
		return
	}

	all := v.source.Events()
	v.page = v.page.Clamp(len(all))
	page := models.Page(all, v.page)
	rows := make([][]string, len(page))
	for i, e := range page {
		rows[i] = []string{
			util.FormatDateTime(e.Date),
			e.Type.Label(),
			e.ContainerCode,
			e.ClientName,
			summarize(e.Items),
			fmt.Sprintf("%d", e.TotalQuantity()),
			e.CreatedBy,
		}
	}
	v.events.SetRows(rows)
	v.events.SetPagination(v.page.Page, v.page.TotalPages(len(all)), len(all))
}

// summarize lists the SKUs of an event, e.g. "ELEC001 x20, ELEC002 x50".
func summarize(items []models.EventItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s x%d", item.SKU, item.Quantity)
	}
	return strings.Join(parts, ", ")
}

// Toggle switches between events and measurements.
func (v *View) Toggle() {
	if v.mode == ModeEvents {
		v.mode = ModeMeasurements
	} else {
		v.mode = ModeEvents
	}
	v.page.Page = 1
}

// Mode returns the active history.
func (v *View) Mode() Mode {
	return v.mode
}

func (v *View) table() *components.Table {
	if v.mode == ModeMeasurements {
		return v.measurements
	}
	return v.events
}

// NextPage moves to the next page.
func (v *View) NextPage() {
	v.page.Page++
}

// PrevPage moves to the previous page.
func (v *View) PrevPage() {
	if v.page.Page > 1 {
		v.page.Page--
	}
}

// MoveUp moves the selection up.
func (v *View) MoveUp() {
	v.table().MoveUp()
}

// MoveDown moves the selection down.
func (v *View) MoveDown() {
	v.table().MoveDown()
}

// Render renders the active history.
func (v *View) Render(width, height int) string {
	p := v.palette
	var b strings.Builder

	title, empty := "═══ MOVIMENTAÇÕES ═══", "Nenhuma movimentação registrada."
	if v.mode == ModeMeasurements {
		title, empty = "═══ MEDIÇÕES ═══", "Nenhuma medição registrada."
	}
	b.WriteString(p.Title.Render(title))
	b.WriteString("\n\n")

	if t := v.table(); t.Empty() {
		b.WriteString(p.Label.Render(empty))
		b.WriteString("\n")
	} else {
		b.WriteString(t.RenderResponsive(width))
	}

	b.WriteString("\n")
	if width < 60 {
		b.WriteString(p.Help.Render("e:Mov  m:Medir  Tab:Alternar"))
	} else {
		b.WriteString(p.Help.Render("↑↓:Selecionar  e:Entrada/Saída  m:Medição  Tab:Movimentações/Medições  PgUp/Dn:Página"))
	}
	return b.String()
}
