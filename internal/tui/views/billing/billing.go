// Package billing provides the invoice list and invoice document views.
package billing

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/tui/components"
	"github.com/vectrastorage/vectra/internal/util"
)

// Source is what the view reads from.
type Source interface {
	Invoices() []*models.Invoice
	Now() time.Time
}

var statusCycle = []models.InvoiceStatus{
	"",
	models.InvoiceStatusPending,
	models.InvoiceStatusOverdue,
	models.InvoiceStatusPaid,
}

// View lists invoices, newest first.
type View struct {
	source   Source
	palette  components.Palette
	table    *components.Table
	invoices []*models.Invoice
	page     models.Pagination
	status   models.InvoiceStatus

	open, late int
}

// NewView creates a new billing view.
func NewView(source Source) *View {
	table := components.NewTable([]components.Column{
		{Title: "Número", Width: 12, Priority: 10},
		{Title: "Cliente", Width: 16, Weight: 2.0, Priority: 9},
		{Title: "Período", Width: 8, Priority: 6},
		{Title: "Total", Width: 14, Align: lipgloss.Right, Priority: 8},
		{Title: "Vencimento", Width: 10, Priority: 5},
		{Title: "Status", Width: 8, Priority: 7},
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

// Load reads the invoices, applying the status filter. A pending invoice
// past its due date is listed as overdue even before the sweep marks it.
func (v *View) Load() {
	if v.source == nil {
		return
	}
	now := v.source.Now()

	v.open, v.late = 0, 0
	var matched []*models.Invoice
	for _, inv := range v.source.Invoices() {
		status := effectiveStatus(inv, now)
		switch status {
		case models.InvoiceStatusPending:
			v.open++
		case models.InvoiceStatusOverdue:
			v.late++
		}
		if v.status != "" && status != v.status {
			continue
		}
		matched = append(matched, inv)
	}

	v.page = v.page.Clamp(len(matched))
	v.invoices = models.Page(matched, v.page)

	rows := make([][]string, len(v.invoices))
	for i, inv := range v.invoices {
		rows[i] = []string{
			inv.ID,
			inv.ClientName,
			inv.Period,
			util.FormatBRL(inv.TotalAmount),
			util.FormatDate(inv.DueDate),
			effectiveStatus(inv, now).Label(),
		}
	}
	v.table.SetRows(rows)
	v.table.SetPagination(v.page.Page, v.page.TotalPages(len(matched)), len(matched))
}

func effectiveStatus(inv *models.Invoice, now time.Time) models.InvoiceStatus {
	if inv.IsOverdueAt(now) {
		return models.InvoiceStatusOverdue
	}
	return inv.Status
}

// CycleStatus steps the status filter: all, pending, overdue, paid.
func (v *View) CycleStatus() {
	for i, s := range statusCycle {
		if s == v.status {
			v.status = statusCycle[(i+1)%len(statusCycle)]
			break
		}
	}
	v.page.Page = 1
}

// StatusFilter returns the active status filter, "" for all.
func (v *View) StatusFilter() models.InvoiceStatus {
	return v.status
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

// SelectedInvoice returns the currently selected invoice.
func (v *View) SelectedInvoice() *models.Invoice {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.invoices) {
		return v.invoices[idx]
	}
	return nil
}

// Render renders the invoice list.
func (v *View) Render(width, height int) string {
	p := v.palette
	var b strings.Builder

	b.WriteString(p.Title.Render("═══ FATURAMENTO ═══"))
	b.WriteString("\n\n")

	summary := p.Label.Render("Pendentes: ") + p.Value.Render(strconv.Itoa(v.open))
	lateStyle := p.Value
	if v.late > 0 {
		lateStyle = p.Error
	}
	summary += "   " + p.Label.Render("Vencidas: ") + lateStyle.Render(strconv.Itoa(v.late))
	if v.status != "" {
		summary += "   " + p.Label.Render("Filtro: "+v.status.Label())
	}
	b.WriteString(summary)
	b.WriteString("\n\n")

	if v.table.Empty() {
		b.WriteString(p.Label.Render("Nenhuma fatura encontrada."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.table.RenderResponsive(width))
	}

	b.WriteString("\n")
	if width < 60 {
		b.WriteString(p.Help.Render("Enter:Ver  g:Gerar  p:Pago"))
	} else {
		b.WriteString(p.Help.Render("↑↓:Selecionar  Enter:Documento  g:Gerar faturas  p:Marcar paga  o:Vencidas  f:Status  s:Salvar"))
	}
	return b.String()
}

// RenderDetail renders an invoice document as produced by the service.
func (v *View) RenderDetail(inv *models.Invoice, doc string, width int) string {
	p := v.palette
	if inv == nil {
		return p.Label.Render("Nenhuma fatura selecionada")
	}

	var b strings.Builder
	b.WriteString(p.Title.Render("═══ FATURA " + inv.ID + " ═══"))
	b.WriteString("\n\n")

	status := effectiveStatus(inv, v.now())
	statusStyle := p.Value
	switch status {
	case models.InvoiceStatusPaid:
		statusStyle = p.Success
	case models.InvoiceStatusOverdue:
		statusStyle = p.Error
	}
	b.WriteString(p.Label.Render("Status: "))
	b.WriteString(statusStyle.Render(status.Label()))
	if inv.PaidDate != nil {
		b.WriteString(p.Label.Render("  Pago em: "))
		b.WriteString(p.Value.Render(util.FormatDate(*inv.PaidDate)))
	}
	b.WriteString("\n\n")

	body := p.Value
	if width > 0 {
		body = body.MaxWidth(width)
	}
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		b.WriteString(body.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(p.Help.Render("Esc:Voltar  p:Marcar paga  s:Salvar documento"))
	return b.String()
}

func (v *View) now() time.Time {
	if v.source == nil {
		return time.Now()
	}
	return v.source.Now()
}
