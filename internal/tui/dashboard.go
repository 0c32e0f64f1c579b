package tui

import (
	"fmt"
	"strings"

	"github.com/vectrastorage/vectra/internal/util"
)

// renderDashboard renders the yard overview.
func (a *App) renderDashboard() string {
	ov := a.overview
	st := ov.Stats
	width := a.contentWidth()
	now := a.svc.Now()

	var b strings.Builder
	b.WriteString(a.theme.Title.Render("═══ PAINEL DE OPERAÇÕES ═══"))
	b.WriteString("\n\n")

	panelWidth := width/2 - 1
	if GetBreakpoint(width) == BreakpointNarrow {
		panelWidth = width
	}
	barWidth := max(panelWidth-24, 8)

	line := func(label, value string) string {
		return a.theme.Label.Render(PadRight(label, 18)) + a.theme.Value.Render(value) + "\n"
	}

	var occ strings.Builder
	occ.WriteString(line("Ativos:", fmt.Sprintf("%d de %d", st.ActiveContainers, st.TotalContainers)))
	occ.WriteString(line("SKUs:", fmt.Sprintf("%d", st.TotalSKUs)))
	occ.WriteString(line("Volume usado:", util.FormatNumber(st.TotalVolume, 2)+" m³"))
	occ.WriteString(line("Peso total:", util.FormatNumber(st.TotalWeight, 0)+" kg"))
	occ.WriteString(a.theme.Label.Render(PadRight("Ocupação média:", 18)) +
		a.theme.ProgressBar(st.AverageOccupation, 100, barWidth) + " " +
		a.theme.Value.Render(util.FormatPercent(st.AverageOccupation)))

	var fin strings.Builder
	fin.WriteString(line("Receita mensal:", util.FormatBRL(st.MonthlyRevenue)))
	fin.WriteString(line("Clientes:", fmt.Sprintf("%d", st.Clients)))
	fin.WriteString(line("A receber:", fmt.Sprintf("%s (%d)", util.FormatBRL(st.PendingAmount), st.PendingInvoices)))
	overdue := fmt.Sprintf("%s (%d)", util.FormatBRL(st.OverdueAmount), st.OverdueInvoices)
	if st.OverdueInvoices > 0 {
		fin.WriteString(a.theme.Label.Render(PadRight("Vencido:", 18)) + a.theme.Error.Render(overdue))
	} else {
		fin.WriteString(line("Vencido:", overdue))
	}

	b.WriteString(SideBySide(
		a.theme.Panel("OCUPAÇÃO", occ.String(), panelWidth),
		a.theme.Panel("FINANCEIRO", strings.TrimRight(fin.String(), "\n"), panelWidth),
		width, 2,
	))
	b.WriteString("\n\n")

	reminder := fmt.Sprintf("Próxima medição %s, em %d dias", util.FormatDate(ov.NextMeasurement), ov.DaysToMeasure)
	if ov.DaysToMeasure == 0 {
		reminder = "Medição mensal hoje"
	}
	b.WriteString(a.theme.Warning.Render(reminder))
	b.WriteString("\n\n")

	var events strings.Builder
	if len(ov.RecentEvents) == 0 {
		events.WriteString(a.theme.Muted.Render("Nenhuma movimentação"))
	}
	for i, e := range ov.RecentEvents {
		if i > 0 {
			events.WriteString("\n")
		}
		events.WriteString(Truncate(fmt.Sprintf("%-8s %-11s %4d  %s",
			e.Type.Label(), e.ContainerCode, e.TotalQuantity(), util.RelativeTimeString(e.Date, now)), panelWidth-4))
	}

	var audit strings.Builder
	if len(ov.RecentAudit) == 0 {
		audit.WriteString(a.theme.Muted.Render("Nenhum registro"))
	}
	for i, e := range ov.RecentAudit {
		if i > 0 {
			audit.WriteString("\n")
		}
		audit.WriteString(Truncate(fmt.Sprintf("%s %s (%s)", e.Action, e.EntityName, e.User), panelWidth-4))
	}

	b.WriteString(SideBySide(
		a.theme.Panel("ÚLTIMAS MOVIMENTAÇÕES", events.String(), panelWidth),
		a.theme.Panel("AUDITORIA RECENTE", audit.String(), panelWidth),
		width, 2,
	))
	b.WriteString("\n\n")

	b.WriteString(a.theme.Muted.Render("x:Exportar relatório  c:Novo cliente  r:Atualizar"))
	return b.String()
}

// renderHelp renders the help screen.
func (a *App) renderHelp() string {
	var b strings.Builder

	b.WriteString(a.theme.Title.Render("═══ AJUDA ═══"))
	b.WriteString("\n\n")

	section := func(title string, items [][2]string) {
		b.WriteString(a.theme.Subtitle.Render(title))
		b.WriteString("\n\n")
		for _, item := range items {
			b.WriteString(a.theme.Primary.Render(fmt.Sprintf("    %-10s  %s", item[0], item[1])))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	section("NAVEGAÇÃO", [][2]string{
		{"F1", "Ajuda"},
		{"F2", "Painel"},
		{"F3", "Contêineres"},
		{"F4", "Movimentações e medições"},
		{"F5", "Faturamento"},
		{"F6", "Auditoria"},
		{"F10", "Sair"},
	})

	section("CONTROLES", [][2]string{
		{"↑/↓", "Navegar"},
		{"Enter", "Abrir"},
		{"Esc", "Voltar/Cancelar"},
		{"/", "Buscar"},
		{"f", "Filtrar"},
		{"Tab", "Próximo campo"},
		{"Ctrl+S", "Salvar formulário"},
		{"PgUp/Dn", "Página"},
	})

	section("OPERAÇÕES", [][2]string{
		{"a", "Novo contêiner"},
		{"i", "Importar packing list (CSV)"},
		{"e / m", "Entrada/saída e medição"},
		{"l / t", "Imprimir etiqueta / folha PDF"},
		{"g / p", "Gerar faturas / marcar paga"},
	})

	b.WriteString(a.theme.Muted.Render("Esc para voltar"))
	return b.String()
}
