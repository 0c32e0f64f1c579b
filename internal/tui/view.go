package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MaxContentWidth caps how wide modules render on large terminals.
const MaxContentWidth = 140

// chromeLines is the height of header, alert bar and footer.
const chromeLines = 6

// View implements tea.Model.
func (a *App) View() string {
	switch {
	case !a.ready:
		return "Inicializando..."
	case a.quitting:
		return a.theme.Title.Render("Vectra encerrando...")
	}

	body := ContentHeight(a.height, chromeLines)
	main := a.renderContent(body)
	if a.showConfirm {
		main = a.renderConfirmDialog(body)
	}
	return strings.Join([]string{a.renderHeader(), a.renderAlertBar(), main, a.renderFooter()}, "\n")
}

// renderHeader puts the product name on the left and the yard summary on
// the right, over a double rule.
func (a *App) renderHeader() string {
	active := a.overview.Stats.ActiveContainers
	left, right := "VECTRA ARMAZENAGEM v"+Version, fmt.Sprintf("%s | %d contêineres ativos", a.config.Company.Name, active)
	if GetBreakpoint(a.width) == BreakpointNarrow {
		left, right = "VECTRA", fmt.Sprintf("%d ativos", active)
	}
	left, right = a.theme.Header.Render(left), a.theme.Header.Render(right)

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right + "\n" + a.theme.DrawDoubleLine(a.width)
}

func (a *App) renderFooter() string {
	help := a.keys.StatusBarHelp()
	if GetBreakpoint(a.width) == BreakpointNarrow {
		help = "[F1]Ajuda [F3]Cont [F10]Sair"
	}
	return a.theme.DrawHorizontalLine(a.width) + "\n" + a.theme.Footer.Render(help)
}

func (a *App) renderConfirmDialog(height int) string {
	dialog := a.theme.Box.Render(strings.Join([]string{
		a.theme.Title.Render("CONFIRMAR SAÍDA"),
		a.theme.Base.Render("Deseja realmente sair?"),
		a.theme.Label.Render("[S]im  [N]ão"),
	}, "\n\n"))
	return lipgloss.Place(a.width, height, lipgloss.Center, lipgloss.Center, dialog)
}

// contentWidth is the width modules render into.
func (a *App) contentWidth() int {
	return ContentWidth(a.width, 0, MaxContentWidth)
}

// renderContent centres the active module, or the open form, in the body.
func (a *App) renderContent(height int) string {
	column := lipgloss.NewStyle().Width(a.contentWidth()).Render(a.moduleContent(height))
	return lipgloss.Place(a.width, height, lipgloss.Center, lipgloss.Top, column)
}

func (a *App) moduleContent(height int) string {
	width := a.contentWidth()
	if a.form != nil {
		return a.form.RenderResponsive(width)
	}

	switch a.currentModule {
	case ModuleDashboard:
		return a.renderDashboard()
	case ModuleContainers:
		if a.showDetail {
			return a.containersView.RenderDetail(a.detail, width)
		}
		return a.searchBar() + a.containersView.Render(width, height)
	case ModuleMovements:
		return a.movementsView.Render(width, height)
	case ModuleBilling:
		if a.showDetail {
			return a.billingView.RenderDetail(a.billingView.SelectedInvoice(), a.invoiceDoc, width)
		}
		return a.billingView.Render(width, height)
	case ModuleAudit:
		return a.searchBar() + a.auditView.Render(width, height)
	case ModuleHelp:
		return a.renderHelp()
	}
	return ""
}

// searchBar echoes the search being typed above the list.
func (a *App) searchBar() string {
	if !a.searchMode {
		return ""
	}
	return a.theme.Label.Render("BUSCA: ") + a.theme.Accent.Render(a.searchInput+"_") + "\n\n"
}
