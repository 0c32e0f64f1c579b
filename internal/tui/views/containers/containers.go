// Package containers provides the container list and detail views.
package containers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/tui/components"
	"github.com/vectrastorage/vectra/internal/util"
)

// Source is what the views read from.
type Source interface {
	Containers() []*models.Container
	SearchSKU(query string) []models.ItemLocation
}

// statusCycle is the order the status filter steps through; "" is all.
var statusCycle = []models.ContainerStatus{
	"",
	models.ContainerStatusActive,
	models.ContainerStatusPartial,
	models.ContainerStatusInactive,
}

// ListView displays the containers in the yard.
type ListView struct {
	source     Source
	palette    components.Palette
	table      *components.Table
	containers []*models.Container
	page       models.Pagination
	status     models.ContainerStatus
	search     string
	hits       []models.ItemLocation

	items *components.Table
}

// NewListView creates a new container list view.
func NewListView(source Source) *ListView {
	columns := []components.Column{
		{Title: "Código", Width: 12, Priority: 10},
		{Title: "Cliente", Width: 16, Weight: 2.0, Priority: 9},
		{Title: "Tipo", Width: 14, Priority: 5},
		{Title: "Status", Width: 8, Priority: 8},
		{Title: "Ocupação", Width: 8, Align: lipgloss.Right, Priority: 7},
		{Title: "Itens", Width: 5, Align: lipgloss.Right, Priority: 4},
		{Title: "Peso (kg)", Width: 10, Align: lipgloss.Right, Priority: 3},
		{Title: "Desde", Width: 10, Priority: 6},
	}

	table := components.NewTable(columns)
	table.SetVisibleRows(20)
	table.Focus(true)

	items := components.NewTable([]components.Column{
		{Title: "SKU", Width: 10, Priority: 10},
		{Title: "Descrição", Width: 16, Weight: 2.0, Priority: 9},
		{Title: "Qtd", Width: 5, Align: lipgloss.Right, Priority: 8},
		{Title: "Atual", Width: 5, Align: lipgloss.Right, Priority: 7},
		{Title: "Volume (m³)", Width: 11, Align: lipgloss.Right, Priority: 5},
		{Title: "Peso (kg)", Width: 9, Align: lipgloss.Right, Priority: 4},
		{Title: "Local", Width: 8, Priority: 6},
	})
	items.SetVisibleRows(12)
	items.Focus(true)

	return &ListView{
		source:  source,
		palette: components.DefaultPalette(),
		table:   table,
		items:   items,
		page:    models.Pagination{Page: 1, PageSize: 20},
	}
}

// SetPalette sets the render styles.
func (v *ListView) SetPalette(p components.Palette) {
	v.palette = p
	v.table.SetPalette(p)
	v.items.SetPalette(p)
}

// Load reads the containers, applying the status filter and SKU search.
func (v *ListView) Load() {
	if v.source == nil {
		return
	}

	v.hits = nil
	if v.search != "" {
		v.hits = v.source.SearchSKU(v.search)
	}

	var matched []*models.Container
	for _, c := range v.source.Containers() {
		if v.status != "" && c.Status != v.status {
			continue
		}
		if v.search != "" && !v.holdsHit(c.ID) {
			continue
		}
		matched = append(matched, c)
	}

	v.page = v.page.Clamp(len(matched))
	v.containers = models.Page(matched, v.page)

	rows := make([][]string, len(v.containers))
	for i, c := range v.containers {
		rows[i] = []string{
			c.Code,
			c.ClientName,
			c.Type,
			c.Status.Label(),
			util.FormatPercent(c.Occupation),
			fmt.Sprintf("%d", len(c.Items)),
			util.FormatNumber(c.TotalWeight, 0),
			util.FormatDate(c.Since),
		}
	}

	v.table.SetRows(rows)
	v.table.SetPagination(v.page.Page, v.page.TotalPages(len(matched)), len(matched))
}

func (v *ListView) holdsHit(containerID string) bool {
	for _, h := range v.hits {
		if h.ContainerID == containerID {
			return true
		}
	}
	return false
}

// SetSearch filters the list to containers holding a matching SKU.
func (v *ListView) SetSearch(term string) {
	v.search = strings.TrimSpace(term)
	v.page.Page = 1
}

// Search returns the active SKU search.
func (v *ListView) Search() string {
	return v.search
}

// CycleStatus steps the status filter: all, active, partial, inactive.
func (v *ListView) CycleStatus() {
	for i, s := range statusCycle {
		if s == v.status {
			v.status = statusCycle[(i+1)%len(statusCycle)]
			break
		}
	}
	v.page.Page = 1
}

// StatusFilter returns the active status filter, "" for all.
func (v *ListView) StatusFilter() models.ContainerStatus {
	return v.status
}

// NextPage moves to the next page.
func (v *ListView) NextPage() {
	v.page.Page++
}

// PrevPage moves to the previous page.
func (v *ListView) PrevPage() {
	if v.page.Page > 1 {
		v.page.Page--
	}
}

// MoveUp moves the selection up.
func (v *ListView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *ListView) MoveDown() {
	v.table.MoveDown()
}

// SelectedContainer returns the currently selected container.
func (v *ListView) SelectedContainer() *models.Container {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.containers) {
		return v.containers[idx]
	}
	return nil
}

// Render renders the container list for the given terminal size.
func (v *ListView) Render(width, height int) string {
	p := v.palette
	var b strings.Builder

	b.WriteString(p.Title.Render("═══ CONTÊINERES ═══"))
	b.WriteString("\n\n")

	if v.status != "" || v.search != "" {
		var filters []string
		if v.status != "" {
			filters = append(filters, "Status: "+v.status.Label())
		}
		if v.search != "" {
			filters = append(filters, fmt.Sprintf("SKU: %q (%d itens)", v.search, len(v.hits)))
		}
		b.WriteString(p.Label.Render(strings.Join(filters, "  ")))
		b.WriteString("\n\n")
	}

	if v.table.Empty() {
		b.WriteString(p.Label.Render("Nenhum contêiner encontrado."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.table.RenderResponsive(width))
	}

	b.WriteString("\n")
	if width < 60 {
		b.WriteString(p.Help.Render("↑↓:Nav  Enter:Detalhes  /:SKU"))
	} else {
		b.WriteString(p.Help.Render("↑↓:Selecionar  Enter:Detalhes  a:Novo  /:Buscar SKU  f:Status  PgUp/Dn:Página"))
	}

	return b.String()
}

// LoadItems fills the item table of the detail view for c.
func (v *ListView) LoadItems(c *models.Container) {
	if c == nil {
		v.items.SetRows(nil)
		return
	}
	rows := make([][]string, len(c.Items))
	for i, item := range c.Items {
		location := item.Location
		if location == "" {
			location = "-"
		}
		rows[i] = []string{
			item.SKU,
			item.DisplayDescription(),
			fmt.Sprintf("%d", item.Quantity),
			fmt.Sprintf("%d", item.CurrentQuantity),
			util.FormatNumber(item.TotalVolume, 3),
			util.FormatNumber(item.TotalWeight, 1),
			location,
		}
	}
	v.items.SetRows(rows)
}

// ItemUp moves the detail item selection up.
func (v *ListView) ItemUp() {
	v.items.MoveUp()
}

// ItemDown moves the detail item selection down.
func (v *ListView) ItemDown() {
	v.items.MoveDown()
}

// SelectedItem returns the selected item of c in the detail view.
func (v *ListView) SelectedItem(c *models.Container) *models.PackingItem {
	idx := v.items.Selected()
	if c == nil || idx < 0 || idx >= len(c.Items) {
		return nil
	}
	return c.Items[idx]
}

// RenderDetail renders a container with its items.
func (v *ListView) RenderDetail(c *models.Container, width int) string {
	p := v.palette

	labelWidth := 18
	if width < 60 {
		labelWidth = 12
	}
	label := p.Label.Width(labelWidth)

	if c == nil {
		return label.Render("Nenhum contêiner selecionado")
	}

	field := func(name, value string) string {
		return label.Render(name+":") + " " + p.Value.Render(value) + "\n"
	}

	var b strings.Builder

	b.WriteString(p.Title.Render("═══ CONTÊINER " + c.Code + " ═══"))
	b.WriteString("\n\n")

	b.WriteString(p.Section.Render("IDENTIFICAÇÃO"))
	b.WriteString("\n")
	b.WriteString(field("Cliente", c.ClientName))
	b.WriteString(field("Tipo", c.Type))
	if c.BillOfLading != "" {
		b.WriteString(field("BL", c.BillOfLading))
	}
	b.WriteString(field("Status", c.Status.Label()))
	b.WriteString(field("Desde", util.FormatDate(c.Since)))
	b.WriteString(field("Mensalidade", util.FormatBRL(c.MonthlyPrice)))
	b.WriteString("\n")

	b.WriteString(p.Section.Render("CARGA"))
	b.WriteString("\n")
	occStyle := p.Value
	switch {
	case c.Occupation >= 100:
		occStyle = p.Error
	case c.Occupation >= 90:
		occStyle = p.Warning
	}
	b.WriteString(label.Render("Ocupação:") + " " + occStyle.Render(util.FormatPercent(c.Occupation)) + "\n")
	b.WriteString(field("Volume", fmt.Sprintf("%s / %s m³", util.FormatNumber(c.UsedVolume, 2), util.FormatNumber(c.TotalVolume, 1))))
	b.WriteString(field("Livre", util.FormatNumber(c.FreeVolume(), 2)+" m³"))
	b.WriteString(field("Peso", util.FormatNumber(c.TotalWeight, 1)+" kg"))
	b.WriteString("\n")

	b.WriteString(p.Section.Render(fmt.Sprintf("ITENS (%d)", len(c.Items))))
	b.WriteString("\n")
	if len(c.Items) == 0 {
		b.WriteString(p.Muted.Render("Sem itens. Use i para importar um packing list."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.items.RenderResponsive(width))
	}

	b.WriteString("\n")
	b.WriteString(p.Help.Render("Esc:Voltar  ↑↓:Item  i:Importar  l:Etiqueta  t:Etiquetas PDF  d:Remover"))

	return b.String()
}
