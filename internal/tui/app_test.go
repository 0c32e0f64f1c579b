package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vectrastorage/vectra/internal/models"
)

func TestApp_FreshYardStartsOnDashboard(t *testing.T) {
	app := newTestApp(t)

	switch {
	case app.currentModule != ModuleDashboard:
		t.Errorf("start module = %s, want dashboard", app.currentModule)
	case !app.ready || app.quitting:
		t.Errorf("ready=%v quitting=%v, want ready and running", app.ready, app.quitting)
	case app.showDetail || app.form != nil || app.searchMode:
		t.Error("no overlay should be open on start")
	case len(app.alerts) != 0:
		t.Errorf("an empty yard raised alerts: %v", app.alerts)
	}

	screen := app.View()
	for _, want := range []string{"PAINEL DE OPERAÇÕES", "OCUPAÇÃO", "FINANCEIRO", "Nenhuma movimentação"} {
		if !strings.Contains(screen, want) {
			t.Errorf("dashboard is missing %q", want)
		}
	}
}

func TestApp_LifecycleScreens(t *testing.T) {
	for name, tc := range map[string]struct {
		prepare func(*App)
		want    string
	}{
		"before the first window size": {func(a *App) { a.ready = false }, "Inicializando"},
		"after quitting":               {func(a *App) { a.quitting = true }, "encerrando"},
		"quit prompt":                  {func(a *App) { a.showConfirm = true }, "CONFIRMAR SAÍDA"},
	} {
		t.Run(name, func(t *testing.T) {
			app := newTestApp(t)
			tc.prepare(app)
			if screen := app.View(); !strings.Contains(screen, tc.want) {
				t.Errorf("screen lacks %q:\n%s", tc.want, screen)
			}
		})
	}
}

// Each function key lands on its module and that module draws its title.
func TestApp_FunctionKeysSwitchModules(t *testing.T) {
	cases := []struct {
		key   tea.KeyType
		to    Module
		title string
	}{
		{tea.KeyF1, ModuleHelp, "AJUDA"},
		{tea.KeyF2, ModuleDashboard, "PAINEL DE OPERAÇÕES"},
		{tea.KeyF3, ModuleContainers, "CONTÊINERES"},
		{tea.KeyF4, ModuleMovements, "MOVIMENTAÇÕES"},
		{tea.KeyF5, ModuleBilling, "FATURAMENTO"},
		{tea.KeyF6, ModuleAudit, "AUDITORIA"},
	}

	for _, c := range cases {
		t.Run(c.title, func(t *testing.T) {
			app := newTestApp(t)
			app.showDetail = c.to != ModuleHelp
			app.Update(specialKeyMsg(c.key))

			if app.currentModule != c.to {
				t.Fatalf("module = %s, want %s", app.currentModule, c.to)
			}
			if app.showDetail {
				t.Error("switching modules must close the open detail")
			}
			if !strings.Contains(app.View(), c.title) {
				t.Errorf("%s screen lacks its title %q", c.to, c.title)
			}
		})
	}
}

func TestApp_QuestionMarkOpensHelpAndEscReturns(t *testing.T) {
	app := newTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF4))
	app.Update(keyMsg("?"))

	if app.currentModule != ModuleHelp {
		t.Fatalf("module = %s, want help", app.currentModule)
	}
	app.Update(specialKeyMsg(tea.KeyEscape))
	if app.currentModule != ModuleMovements {
		t.Errorf("esc from help went to %s, want movements", app.currentModule)
	}
}

func TestApp_QuitConfirmation(t *testing.T) {
	tests := []struct {
		name        string
		keys        []tea.KeyMsg
		wantConfirm bool
		wantQuit    bool
	}{
		{"q shows", []tea.KeyMsg{keyMsg("q")}, true, false},
		{"F10 shows", []tea.KeyMsg{specialKeyMsg(tea.KeyF10)}, true, false},
		{"n cancels", []tea.KeyMsg{keyMsg("q"), keyMsg("n")}, false, false},
		{"esc cancels", []tea.KeyMsg{keyMsg("q"), specialKeyMsg(tea.KeyEscape)}, false, false},
		{"other keys ignored", []tea.KeyMsg{keyMsg("q"), keyMsg("x")}, true, false},
		{"y confirms", []tea.KeyMsg{keyMsg("q"), keyMsg("y")}, true, true},
		{"s confirms", []tea.KeyMsg{keyMsg("q"), keyMsg("s")}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			var cmd tea.Cmd
			for _, k := range tt.keys {
				_, cmd = app.Update(k)
			}

			if app.showConfirm != tt.wantConfirm {
				t.Errorf("showConfirm = %v, want %v", app.showConfirm, tt.wantConfirm)
			}
			if app.quitting != tt.wantQuit {
				t.Errorf("quitting = %v, want %v", app.quitting, tt.wantQuit)
			}
			if tt.wantQuit && cmd == nil {
				t.Error("expected tea.Quit command")
			}
		})
	}
}

func TestApp_WindowResize(t *testing.T) {
	app := newTestApp(t)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	if app.width != 80 || app.height != 24 {
		t.Errorf("size = %dx%d, want 80x24", app.width, app.height)
	}
	if !app.ready {
		t.Error("expected app ready after window size")
	}
}

func TestApp_ContainersList(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF3))

	output := app.View()
	for _, code := range []string{"CMAU3754293", "TEMU8834521", "MSKU9912345"} {
		if !strings.Contains(output, code) {
			t.Errorf("expected %s in container list", code)
		}
	}

	first := app.containersView.SelectedContainer()
	app.Update(keyMsg("j"))
	if app.containersView.SelectedContainer() == first {
		t.Error("expected j to move the selection")
	}
	app.Update(keyMsg("k"))
	if app.containersView.SelectedContainer() != first {
		t.Error("expected k to move the selection back")
	}
}

func TestApp_ContainerDetail(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF3))
	app.Update(specialKeyMsg(tea.KeyEnter))

	if !app.showDetail || app.detail == nil {
		t.Fatal("expected detail view after Enter")
	}
	if !strings.Contains(app.View(), "CONTÊINER "+app.detail.Code) {
		t.Error("expected detail title")
	}

	app.Update(specialKeyMsg(tea.KeyEscape))
	if app.showDetail || app.detail != nil {
		t.Error("expected Esc to close the detail")
	}
}

func TestApp_ContainerSearchMode(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF3))

	app.Update(keyMsg("/"))
	if !app.searchMode {
		t.Fatal("expected search mode after /")
	}
	typeText(app, "ELEC0022")
	app.Update(specialKeyMsg(tea.KeyBackspace))
	if app.searchInput != "ELEC002" {
		t.Fatalf("searchInput = %q, want ELEC002", app.searchInput)
	}
	if !strings.Contains(app.View(), "BUSCA: ") {
		t.Error("expected search bar while typing")
	}

	app.Update(specialKeyMsg(tea.KeyEnter))
	if app.searchMode {
		t.Error("expected search mode off after Enter")
	}
	if app.containersView.Search() != "ELEC002" {
		t.Errorf("Search() = %q, want ELEC002", app.containersView.Search())
	}
	if !strings.Contains(app.View(), "TEMU8834521") {
		t.Error("expected the container holding ELEC002")
	}
	if strings.Contains(app.View(), "CMAU3754293") {
		t.Error("expected containers without ELEC002 to be filtered out")
	}

	app.Update(keyMsg("/"))
	app.Update(specialKeyMsg(tea.KeyEscape))
	if app.containersView.Search() != "" {
		t.Error("expected Esc to clear the search")
	}
}

func TestApp_ContainerStatusFilter(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF3))
	app.Update(keyMsg("f"))

	if app.containersView.StatusFilter() != models.ContainerStatusActive {
		t.Errorf("StatusFilter() = %q, want active", app.containersView.StatusFilter())
	}
	if strings.Contains(app.View(), "TEMU8834521") {
		t.Error("expected partial container to be filtered out")
	}
}

func TestApp_AddContainerForm(t *testing.T) {
	app := newTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF3))
	app.Update(keyMsg("a"))

	if app.form == nil || app.formKind != formContainer {
		t.Fatal("expected container form")
	}
	if !strings.Contains(app.View(), "NOVO CONTÊINER") {
		t.Error("expected form title in view")
	}

	typeText(app, "abcu1234567")
	app.Update(specialKeyMsg(tea.KeyTab))
	typeText(app, "ACME")
	app.Update(specialKeyMsg(tea.KeyTab))
	app.Update(specialKeyMsg(tea.KeyTab))
	app.Update(specialKeyMsg(tea.KeyTab))
	typeText(app, "1.500,50")
	run(app, specialKeyMsg(tea.KeyCtrlS))

	if app.form != nil {
		t.Fatal("expected form to close after a successful save")
	}
	c, err := app.svc.ContainerByCode("ABCU1234567")
	if err != nil {
		t.Fatalf("ContainerByCode() error = %v", err)
	}
	if c.ClientName != "ACME" || c.Type != "Dry Box 40'" || c.TotalVolume != 67.7 {
		t.Errorf("container = %+v", c)
	}
	if got := c.MonthlyPrice.String(); got != "1500.5" {
		t.Errorf("MonthlyPrice = %s, want 1500.5", got)
	}
	if !strings.Contains(app.alerts[0].Message, "cadastrado") {
		t.Errorf("alert = %q, want confirmation", app.alerts[0].Message)
	}
}

func TestApp_FormRequiresFields(t *testing.T) {
	app := newTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF3))
	app.Update(keyMsg("a"))
	run(app, specialKeyMsg(tea.KeyCtrlS))

	if app.form == nil {
		t.Fatal("expected form to stay open")
	}
	if app.formPending {
		t.Error("expected no submission with empty required fields")
	}
	if !strings.Contains(app.View(), "Preencha os campos obrigatórios") {
		t.Error("expected validation message")
	}
}

func TestApp_FormMode_Cancel(t *testing.T) {
	app := newTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF3))
	app.Update(keyMsg("a"))
	if app.form == nil {
		t.Fatal("expected form to be shown")
	}

	// q is text inside a form
	app.Update(keyMsg("q"))
	if app.showConfirm {
		t.Error("expected q to be typed, not quit")
	}

	app.Update(specialKeyMsg(tea.KeyEscape))
	if app.form != nil {
		t.Error("expected form to be hidden after cancel")
	}
}

func TestApp_DetailFormsArePrefilled(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF3))
	app.Update(specialKeyMsg(tea.KeyEnter))
	if app.detail == nil || len(app.detail.Items) == 0 {
		t.Fatal("expected the first container to have items")
	}

	app.Update(keyMsg("m"))
	if app.formKind != formMeasurement {
		t.Fatalf("formKind = %v, want measurement", app.formKind)
	}
	if got := app.form.Value(fieldContainer); got != app.detail.Code {
		t.Errorf("container field = %q, want %q", got, app.detail.Code)
	}
	if got := app.form.Value(fieldSKU); got != app.detail.Items[0].SKU {
		t.Errorf("SKU field = %q, want %q", got, app.detail.Items[0].SKU)
	}
}

func TestApp_PrintLabelWithoutPrinter(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF3))
	app.Update(specialKeyMsg(tea.KeyEnter))

	run(app, keyMsg("l"))

	if len(app.svc.Labels()) != 1 {
		t.Fatalf("got %d labels, want 1", len(app.svc.Labels()))
	}
	if !strings.Contains(app.alerts[0].Message, "ZPL salvo em") {
		t.Errorf("alert = %q, want ZPL fallback", app.alerts[0].Message)
	}
}

func TestApp_RemoveItem(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF3))
	app.Update(specialKeyMsg(tea.KeyEnter))
	before := len(app.detail.Items)

	run(app, keyMsg("d"))

	if !app.showDetail || app.detail == nil {
		t.Fatal("expected detail to stay open")
	}
	if len(app.detail.Items) != before-1 {
		t.Errorf("items = %d, want %d", len(app.detail.Items), before-1)
	}
}

func TestApp_RegisterEntry(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF4))
	before := len(app.svc.Events())

	app.Update(keyMsg("e"))
	if app.formKind != formEvent {
		t.Fatalf("formKind = %v, want event", app.formKind)
	}
	app.Update(specialKeyMsg(tea.KeyTab))
	typeText(app, "TEMU8834521")
	app.Update(specialKeyMsg(tea.KeyTab))
	typeText(app, "ELEC001")
	app.Update(specialKeyMsg(tea.KeyTab))
	typeText(app, "10")
	run(app, specialKeyMsg(tea.KeyCtrlS))

	if app.form != nil {
		t.Fatalf("expected form to close, error: %s", app.form.RenderResponsive(120))
	}
	if got := len(app.svc.Events()); got != before+1 {
		t.Errorf("events = %d, want %d", got, before+1)
	}
	if !strings.Contains(app.alerts[0].Message, "Entrada registrada") {
		t.Errorf("alert = %q", app.alerts[0].Message)
	}
}

func TestApp_RegisterEntry_InvalidQuantity(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF4))
	app.Update(keyMsg("e"))
	app.Update(specialKeyMsg(tea.KeyTab))
	typeText(app, "TEMU8834521")
	app.Update(specialKeyMsg(tea.KeyTab))
	typeText(app, "ELEC001")
	app.Update(specialKeyMsg(tea.KeyTab))
	typeText(app, "abc")
	run(app, specialKeyMsg(tea.KeyCtrlS))

	if app.form == nil {
		t.Fatal("expected form to reopen on error")
	}
	if app.formPending {
		t.Error("expected pending flag cleared")
	}
	if !strings.Contains(app.View(), "quantidade inválida") {
		t.Error("expected error in form")
	}
}

func TestApp_MovementsToggle(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF4))
	app.Update(specialKeyMsg(tea.KeyTab))

	if !strings.Contains(app.View(), "MEDIÇÕES") {
		t.Error("expected measurements after Tab")
	}
}

func TestApp_GenerateInvoices(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF5))
	before := len(app.svc.Invoices())

	run(app, keyMsg("g"))

	if got := len(app.svc.Invoices()); got <= before {
		t.Errorf("invoices = %d, want more than %d", got, before)
	}
	if !strings.Contains(app.alerts[0].Message, "gerada") {
		t.Errorf("alert = %q", app.alerts[0].Message)
	}
}

func TestApp_MarkInvoicePaid(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF5))
	run(app, keyMsg("g"))
	app.Update(keyMsg("f"))

	inv := app.billingView.SelectedInvoice()
	if inv == nil || inv.Status != models.InvoiceStatusPending {
		t.Fatalf("expected a pending invoice selected, got %v", inv)
	}

	run(app, keyMsg("p"))

	got, err := app.svc.Invoice(inv.ID)
	if err != nil {
		t.Fatalf("Invoice() error = %v", err)
	}
	if got.Status != models.InvoiceStatusPaid || got.PaidDate == nil {
		t.Errorf("invoice = %+v, want paid", got)
	}
}

func TestApp_InvoiceDocument(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF5))
	run(app, keyMsg("g"))
	app.Update(specialKeyMsg(tea.KeyEnter))

	if !app.showDetail || app.invoiceDoc == "" {
		t.Fatal("expected invoice document after Enter")
	}
	inv := app.billingView.SelectedInvoice()
	if !strings.Contains(app.View(), "FATURA "+inv.ID) {
		t.Error("expected invoice title")
	}
}

func TestApp_AuditFilterAndSearch(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF6))

	app.Update(keyMsg("f"))
	if app.auditView.Filter().EntityType != models.EntityContainer {
		t.Errorf("EntityType = %q, want container", app.auditView.Filter().EntityType)
	}

	app.Update(keyMsg("/"))
	typeText(app, "CMAU")
	app.Update(specialKeyMsg(tea.KeyEnter))
	if app.auditView.Search() != "CMAU" {
		t.Errorf("Search() = %q, want CMAU", app.auditView.Search())
	}
	if !strings.Contains(app.View(), "CMAU3754293") {
		t.Error("expected the container's audit entry")
	}
}

func TestApp_DashboardSeeded(t *testing.T) {
	app := newSeededTestApp(t)
	output := app.renderDashboard()

	for _, want := range []string{"ÚLTIMAS MOVIMENTAÇÕES", "AUDITORIA RECENTE", "Próxima medição 25/11/2024, em 5 dias"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in dashboard", want)
		}
	}
	if strings.Contains(output, "Nenhuma movimentação") {
		t.Error("expected recent movements on seeded dashboard")
	}
}

func TestApp_DashboardNarrow(t *testing.T) {
	app := newTestApp(t)
	app.width = 50
	output := app.renderDashboard()

	if !strings.Contains(output, "OCUPAÇÃO") || !strings.Contains(output, "FINANCEIRO") {
		t.Error("expected stacked panels on narrow terminal")
	}
}

func TestApp_ExportReport(t *testing.T) {
	app := newSeededTestApp(t)
	app.Update(keyMsg("x"))
	if app.formKind != formExport {
		t.Fatalf("formKind = %v, want export", app.formKind)
	}

	run(app, specialKeyMsg(tea.KeyCtrlS))

	if app.form != nil {
		t.Fatal("expected form to close")
	}
	if !strings.Contains(app.alerts[0].Message, "Relatório de Ocupação salvo em") {
		t.Errorf("alert = %q", app.alerts[0].Message)
	}
}

func TestApp_ResponsiveHeader(t *testing.T) {
	app := newTestApp(t)

	app.width = 50
	if output := app.renderHeader(); strings.Contains(output, "ARMAZENAGEM") {
		t.Error("expected compact header on narrow terminal")
	}

	app.width = 120
	if output := app.renderHeader(); !strings.Contains(output, "VECTRA ARMAZENAGEM") {
		t.Error("expected full header on wide terminal")
	}
}

func TestApp_ResponsiveFooter(t *testing.T) {
	app := newTestApp(t)
	output := app.renderFooter()

	if !strings.Contains(output, "Ajuda") || !strings.Contains(output, "Sair") {
		t.Error("expected help and quit in footer")
	}
}

func TestApp_AlertManagement(t *testing.T) {
	app := newTestApp(t)

	app.AddAlert(AlertInfo, "Test info")
	app.AddAlert(AlertWarning, "Test warning")
	app.AddAlert(AlertCritical, "Test critical")

	if len(app.alerts) != 3 {
		t.Errorf("expected 3 alerts, got %d", len(app.alerts))
	}
	if app.alerts[0].Message != "Test critical" {
		t.Errorf("expected newest alert first, got %q", app.alerts[0].Message)
	}
	if !strings.Contains(app.View(), "CRÍTICO: Test critical") {
		t.Error("expected critical alert in view output")
	}

	app.ClearAlerts()
	if len(app.alerts) != 0 {
		t.Errorf("expected 0 alerts after clear, got %d", len(app.alerts))
	}
}

func TestApp_AlertLimit(t *testing.T) {
	app := newTestApp(t)
	for i := range 15 {
		app.AddAlert(AlertInfo, fmt.Sprintf("Alert %d", i))
	}

	if len(app.alerts) != 10 {
		t.Errorf("expected max 10 alerts, got %d", len(app.alerts))
	}
}

func TestApp_AlertBar_NoAlerts(t *testing.T) {
	app := newTestApp(t)
	output := app.renderAlertBar()

	if !strings.Contains(output, "Nenhum aviso") {
		t.Error("expected 'Nenhum aviso' with no alerts")
	}
	if !strings.Contains(output, "20/11/2024 10:00") {
		t.Error("expected service time in alert bar")
	}
}

func TestApp_AlertBarRotation(t *testing.T) {
	app := newTestApp(t)
	app.AddAlert(AlertInfo, "First")
	app.AddAlert(AlertInfo, "Second")

	if app.alertIndex != 0 {
		t.Errorf("expected alertIndex 0, got %d", app.alertIndex)
	}
	for range alertRotateTicks {
		app.Update(tickMsg(time.Now()))
	}
	if app.alertIndex != 1 {
		t.Errorf("expected alert to rotate after %d ticks, got index %d", alertRotateTicks, app.alertIndex)
	}
}

func TestApp_TickMessage(t *testing.T) {
	app := newTestApp(t)
	if _, cmd := app.Update(tickMsg(time.Now())); cmd == nil {
		t.Error("expected tick to return a new command")
	}
}

func TestApp_ActionError(t *testing.T) {
	app := newTestApp(t)
	app.Update(actionMsg{err: errors.New("falha de teste")})

	if len(app.alerts) != 1 || app.alerts[0].Level != AlertWarning {
		t.Fatalf("alerts = %v, want one warning", app.alerts)
	}
}
