// Package audit provides the audit trail view.
package audit

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/tui/components"
	"github.com/vectrastorage/vectra/internal/util"
)

// Source is what the view reads from.
type Source interface {
	AuditLog(filter models.AuditFilter) []*models.AuditLog
}

var entityCycle = []models.EntityType{
	"",
	models.EntityContainer,
	models.EntityItem,
	models.EntityEvent,
	models.EntityMeasurement,
	models.EntityInvoice,
	models.EntityClient,
	models.EntityLabel,
	models.EntitySettings,
}

var entityLabels = map[models.EntityType]string{
	models.EntityContainer:   "Contêiner",
	models.EntityItem:        "Item",
	models.EntityEvent:       "Movimentação",
	models.EntityMeasurement: "Medição",
	models.EntityInvoice:     "Fatura",
	models.EntityClient:      "Cliente",
	models.EntityLabel:       "Etiqueta",
	models.EntitySettings:    "Configurações",
}

// EntityLabel returns the Portuguese name of an entity type.
func EntityLabel(e models.EntityType) string {
	if l, ok := entityLabels[e]; ok {
		return l
	}
	return string(e)
}

// View lists audit entries, newest first.
type View struct {
	source  Source
	palette components.Palette
	table   *components.Table
	entries []*models.AuditLog
	page    models.Pagination
	filter  models.AuditFilter
}

// NewView creates a new audit view.
func NewView(source Source) *View {
	table := components.NewTable([]components.Column{
		{Title: "Data/hora", Width: 16, Priority: 9},
		{Title: "Usuário", Width: 10, Priority: 6},
		{Title: "Ação", Width: 20, Weight: 1.5, Priority: 10},
		{Title: "Entidade", Width: 12, Priority: 5},
		{Title: "Nome", Width: 16, Weight: 2.0, Priority: 8},
	})
	table.SetVisibleRows(20)
	table.Focus(true)

	return &View{
		source:  source,
		palette: components.DefaultPalette(),
		table:   table,
		page:    models.Pagination{Page: 1, PageSize: 20},
	}
}

// SetPalette sets the render styles.
func (v *View) SetPalette(p components.Palette) {
	v.palette = p
	v.table.SetPalette(p)
}

// Load reads the filtered audit trail.
func (v *View) Load() {
	if v.source == nil {
		return
	}

	all := v.source.AuditLog(v.filter)
	v.page = v.page.Clamp(len(all))
	v.entries = models.Page(all, v.page)

	rows := make([][]string, len(v.entries))
	for i, e := range v.entries {
		rows[i] = []string{
			util.FormatDateTime(e.Timestamp),
			e.User,
			e.Action,
			EntityLabel(e.EntityType),
			e.EntityName,
		}
	}
	v.table.SetRows(rows)
	v.table.SetPagination(v.page.Page, v.page.TotalPages(len(all)), len(all))
}

// SetSearch matches entries by action or entity name.
func (v *View) SetSearch(term string) {
	v.filter.Search = strings.TrimSpace(term)
	v.page.Page = 1
}

// Search returns the active search term.
func (v *View) Search() string {
	return v.filter.Search
}

// CycleEntity steps the entity type filter through every type and back to all.
func (v *View) CycleEntity() {
	for i, e := range entityCycle {
		if e == v.filter.EntityType {
			v.filter.EntityType = entityCycle[(i+1)%len(entityCycle)]
			break
		}
	}
	v.page.Page = 1
}

// Filter returns the active filter.
func (v *View) Filter() models.AuditFilter {
	return v.filter
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
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *View) MoveDown() {
	v.table.MoveDown()
}

// SelectedEntry returns the currently selected entry.
func (v *View) SelectedEntry() *models.AuditLog {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.entries) {
		return v.entries[idx]
	}
	return nil
}

// Render renders the audit trail.
func (v *View) Render(width, height int) string {
	p := v.palette
	var b strings.Builder

	b.WriteString(p.Title.Render("═══ AUDITORIA ═══"))
	b.WriteString("\n\n")

	if v.filter.EntityType != "" || v.filter.Search != "" {
		var filters []string
		if v.filter.EntityType != "" {
			filters = append(filters, "Entidade: "+EntityLabel(v.filter.EntityType))
		}
		if v.filter.Search != "" {
			filters = append(filters, "Busca: \""+v.filter.Search+"\"")
		}
		b.WriteString(p.Label.Render(strings.Join(filters, "  ")))
		b.WriteString("\n\n")
	}

	if v.table.Empty() {
		b.WriteString(p.Label.Render("Nenhum registro de auditoria."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.table.RenderResponsive(width))
	}

	if e := v.SelectedEntry(); e != nil && len(e.Details) > 0 {
		b.WriteString("\n")
		b.WriteString(p.Muted.Render(details(e.Details)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if width < 60 {
		b.WriteString(p.Help.Render("/:Buscar  f:Entidade"))
	} else {
		b.WriteString(p.Help.Render("↑↓:Selecionar  /:Buscar  f:Entidade  PgUp/Dn:Página"))
	}
	return b.String()
}

// details renders an entry's details as "key=value" pairs in key order.
func details(d map[string]any) string {
	parts := make([]string, 0, len(d))
	for _, k := range slices.Sorted(maps.Keys(d)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, d[k]))
	}
	return strings.Join(parts, "  ")
}
