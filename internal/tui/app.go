package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vectrastorage/vectra/internal/config"
	"github.com/vectrastorage/vectra/internal/labels"
	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/services/warehouse"
	"github.com/vectrastorage/vectra/internal/store"
	"github.com/vectrastorage/vectra/internal/tui/components"
	auditviews "github.com/vectrastorage/vectra/internal/tui/views/audit"
	billviews "github.com/vectrastorage/vectra/internal/tui/views/billing"
	ctrviews "github.com/vectrastorage/vectra/internal/tui/views/containers"
	movviews "github.com/vectrastorage/vectra/internal/tui/views/movements"
	"github.com/vectrastorage/vectra/internal/util"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Module represents a view module in the application.
type Module string

const (
	ModuleDashboard  Module = "dashboard"
	ModuleContainers Module = "containers"
	ModuleMovements  Module = "movements"
	ModuleBilling    Module = "billing"
	ModuleAudit      Module = "audit"
	ModuleHelp       Module = "help"
)

// App is the main Bubble Tea application model.
type App struct {
	svc    *warehouse.Service
	config *config.Config

	// Views
	containersView *ctrviews.ListView
	movementsView  *movviews.View
	billingView    *billviews.View
	auditView      *auditviews.View
	overview       warehouse.Overview

	// UI state
	theme       *Theme
	keys        KeyMap
	width       int
	height      int
	ready       bool
	quitting    bool
	showConfirm bool

	// Current view
	currentModule  Module
	previousModule Module
	showDetail     bool
	detail         *models.Container
	invoiceDoc     string
	form           *components.Form
	formKind       formKind
	formPending    bool
	searchMode     bool
	searchInput    string

	// Alerts
	alerts     []Alert
	alertIndex int
	ticks      int
}

// tickMsg is sent periodically to update the UI.
type tickMsg time.Time

// actionMsg reports the outcome of a background service call.
type actionMsg struct {
	info string
	err  error
}

// formResultMsg reports the outcome of a submitted form.
type formResultMsg struct {
	info string
	err  error
}

// New creates a new App instance.
func New(svc *warehouse.Service, cfg *config.Config) *App {
	theme := NewTheme(cfg.Display.ColorScheme)
	palette := theme.Palette()

	containersView := ctrviews.NewListView(svc)
	containersView.SetPalette(palette)
	movementsView := movviews.NewView(svc)
	movementsView.SetPalette(palette)
	billingView := billviews.NewView(svc)
	billingView.SetPalette(palette)
	auditView := auditviews.NewView(svc)
	auditView.SetPalette(palette)

	a := &App{
		svc:            svc,
		config:         cfg,
		containersView: containersView,
		movementsView:  movementsView,
		billingView:    billingView,
		auditView:      auditView,
		theme:          theme,
		keys:           DefaultKeyMap(),
		currentModule:  ModuleDashboard,
	}
	a.reload()
	a.checkOverdue()
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(),
	)
}

// tickCmd returns a command that sends tick messages.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// reload refreshes the dashboard and every view from the service.
func (a *App) reload() {
	a.overview = a.svc.Overview()
	a.containersView.Load()
	a.movementsView.Load()
	a.billingView.Load()
	a.auditView.Load()

	if a.detail != nil {
		c, err := a.svc.Container(a.detail.ID)
		if err != nil {
			a.detail = nil
			a.showDetail = false
		} else {
			a.detail = c
			a.containersView.LoadItems(c)
		}
	}
}

// checkOverdue raises an alert when invoices are past due.
func (a *App) checkOverdue() {
	if n := a.overview.Stats.OverdueInvoices; n > 0 {
		a.AddAlert(AlertWarning, fmt.Sprintf("%d fatura(s) vencida(s): %s",
			n, util.FormatBRL(a.overview.Stats.OverdueAmount)))
	}
	if d := a.overview.DaysToMeasure; d >= 0 && d <= 3 {
		a.AddAlert(AlertInfo, fmt.Sprintf("Medição mensal em %d dia(s)", d))
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case tickMsg:
		a.rotateAlerts()
		return a, tickCmd()

	case actionMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, msg.err.Error())
		} else if msg.info != "" {
			a.AddAlert(AlertInfo, msg.info)
		}
		a.reload()
		return a, nil

	case formResultMsg:
		a.formPending = false
		if msg.err != nil {
			if a.form != nil {
				a.form.Reopen(msg.err.Error())
			} else {
				a.AddAlert(AlertWarning, msg.err.Error())
			}
			return a, nil
		}
		a.closeForm()
		if msg.info != "" {
			a.AddAlert(AlertInfo, msg.info)
		}
		a.reload()
		return a, nil
	}

	return a, nil
}

// handleKeyPress processes key press events.
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showConfirm {
		return a.handleConfirmKeys(msg)
	}

	// Forms and search take every key
	if a.form != nil {
		return a.handleFormKeys(msg)
	}
	if a.searchMode {
		return a.handleSearchKeys(msg)
	}

	if a.keys.IsQuit(msg) {
		a.showConfirm = true
		return a, nil
	}

	if a.keys.Help.Matches(msg) {
		a.showHelp()
		return a, nil
	}

	if module, ok := a.keys.ModuleFor(msg); ok {
		a.currentModule = module
		a.showDetail = false
		a.detail = nil
		a.reload()
		return a, nil
	}

	if a.keys.Back.Matches(msg) {
		if a.showDetail {
			a.showDetail = false
			a.detail = nil
			return a, nil
		}
		if a.currentModule == ModuleHelp && a.previousModule != "" {
			a.currentModule = a.previousModule
			a.previousModule = ""
		}
		return a, nil
	}

	switch a.currentModule {
	case ModuleDashboard:
		return a.handleDashboardKeys(msg)
	case ModuleContainers:
		return a.handleContainerKeys(msg)
	case ModuleMovements:
		return a.handleMovementKeys(msg)
	case ModuleBilling:
		return a.handleBillingKeys(msg)
	case ModuleAudit:
		return a.handleAuditKeys(msg)
	}
	return a, nil
}

func (a *App) showHelp() {
	if a.currentModule != ModuleHelp {
		a.previousModule = a.currentModule
	}
	a.currentModule = ModuleHelp
}

// handleDashboardKeys handles key presses on the dashboard.
func (a *App) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "x":
		a.openForm(formExport)
	case "c":
		a.openForm(formClient)
	case "r":
		a.reload()
	}
	return a, nil
}

// handleContainerKeys handles key presses in the containers module.
func (a *App) handleContainerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := a.containersView

	if a.showDetail {
		c := a.detail
		switch {
		case a.keys.Up.Matches(msg):
			v.ItemUp()
		case a.keys.Down.Matches(msg):
			v.ItemDown()
		case msg.String() == "i":
			a.openForm(formImport)
		case msg.String() == "e":
			a.openForm(formEvent)
		case msg.String() == "m":
			a.openForm(formMeasurement)
		case msg.String() == "l":
			if item := v.SelectedItem(c); item != nil {
				return a, a.printLabel(c, item)
			}
		case msg.String() == "t":
			return a, a.saveLabelSheet()
		case msg.String() == "d":
			if item := v.SelectedItem(c); item != nil {
				return a, a.removeItem(c, item)
			}
		}
		return a, nil
	}

	switch {
	case a.keys.Up.Matches(msg):
		v.MoveUp()
	case a.keys.Down.Matches(msg):
		v.MoveDown()
	case a.keys.Select.Matches(msg):
		if c := v.SelectedContainer(); c != nil {
			a.detail = c
			v.LoadItems(c)
			a.showDetail = true
		}
	case a.keys.PageUp.Matches(msg):
		v.PrevPage()
		v.Load()
	case a.keys.PageDown.Matches(msg):
		v.NextPage()
		v.Load()
	case a.keys.Filter.Matches(msg):
		v.CycleStatus()
		v.Load()
	case a.keys.Search.Matches(msg):
		a.searchMode = true
		a.searchInput = ""
	case msg.String() == "a":
		a.openForm(formContainer)
	case msg.String() == "i":
		a.openForm(formImport)
	}
	return a, nil
}

// handleMovementKeys handles key presses in the movements module.
func (a *App) handleMovementKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := a.movementsView
	switch {
	case a.keys.Up.Matches(msg):
		v.MoveUp()
	case a.keys.Down.Matches(msg):
		v.MoveDown()
	case a.keys.PageUp.Matches(msg):
		v.PrevPage()
		v.Load()
	case a.keys.PageDown.Matches(msg):
		v.NextPage()
		v.Load()
	case a.keys.Toggle.Matches(msg):
		v.Toggle()
		v.Load()
	case msg.String() == "e":
		a.openForm(formEvent)
	case msg.String() == "m":
		a.openForm(formMeasurement)
	}
	return a, nil
}

// handleBillingKeys handles key presses in the billing module.
func (a *App) handleBillingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := a.billingView
	inv := v.SelectedInvoice()

	switch {
	case !a.showDetail && a.keys.Up.Matches(msg):
		v.MoveUp()
	case !a.showDetail && a.keys.Down.Matches(msg):
		v.MoveDown()
	case !a.showDetail && a.keys.PageUp.Matches(msg):
		v.PrevPage()
		v.Load()
	case !a.showDetail && a.keys.PageDown.Matches(msg):
		v.NextPage()
		v.Load()
	case !a.showDetail && a.keys.Filter.Matches(msg):
		v.CycleStatus()
		v.Load()
	case !a.showDetail && a.keys.Select.Matches(msg):
		if inv == nil {
			return a, nil
		}
		doc, err := a.svc.InvoiceDocument(inv.ID)
		if err != nil {
			a.AddAlert(AlertWarning, err.Error())
			return a, nil
		}
		a.invoiceDoc = doc
		a.showDetail = true
	case !a.showDetail && msg.String() == "g":
		return a, a.generateInvoices()
	case !a.showDetail && msg.String() == "o":
		return a, a.sweepOverdue()
	case msg.String() == "p":
		if inv != nil {
			return a, a.markPaid(inv)
		}
	case msg.String() == "s":
		if inv != nil {
			return a, a.saveInvoiceDocument(inv)
		}
	}
	return a, nil
}

// handleAuditKeys handles key presses in the audit module.
func (a *App) handleAuditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := a.auditView
	switch {
	case a.keys.Up.Matches(msg):
		v.MoveUp()
	case a.keys.Down.Matches(msg):
		v.MoveDown()
	case a.keys.PageUp.Matches(msg):
		v.PrevPage()
		v.Load()
	case a.keys.PageDown.Matches(msg):
		v.NextPage()
		v.Load()
	case a.keys.Filter.Matches(msg):
		v.CycleEntity()
		v.Load()
	case a.keys.Search.Matches(msg):
		a.searchMode = true
		a.searchInput = ""
	}
	return a, nil
}

// handleConfirmKeys answers the quit prompt. Any other key leaves it open.
func (a *App) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "s", "y", "enter":
		a.quitting = true
		return a, tea.Quit
	case "n", "esc":
		a.showConfirm = false
	}
	return a, nil
}

// handleSearchKeys edits the search term. Enter applies it, Esc clears it.
func (a *App) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.searchInput = ""
		fallthrough
	case tea.KeyEnter:
		a.searchMode = false
		a.applySearch(a.searchInput)
	case tea.KeyBackspace:
		r := []rune(a.searchInput)
		a.searchInput = string(r[:max(len(r)-1, 0)])
	case tea.KeySpace:
		a.searchInput += " "
	case tea.KeyRunes:
		a.searchInput += string(msg.Runes)
	}
	return a, nil
}

func (a *App) applySearch(term string) {
	switch a.currentModule {
	case ModuleContainers:
		a.containersView.SetSearch(term)
		a.containersView.Load()
	case ModuleAudit:
		a.auditView.SetSearch(term)
		a.auditView.Load()
	}
}

// ============================================================================
// Background actions
// ============================================================================

func (a *App) printLabel(c *models.Container, item *models.PackingItem) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		label, err := a.svc.GenerateLabel(ctx, store.LabelInput{
			Type:        models.LabelTypeStorage,
			ContainerID: c.ID,
			ItemID:      item.ID,
		})
		if err != nil {
			return actionMsg{err: err}
		}
		res, err := a.svc.PrintLabel(ctx, label.ID)
		if err == nil {
			return actionMsg{info: fmt.Sprintf("Etiqueta %s enviada para %s", item.SKU, res.Printer)}
		}
		if !errors.Is(err, labels.ErrNoPrinter) {
			return actionMsg{err: err}
		}
		path, saveErr := a.svc.SaveLabelZPL([]string{label.ID})
		if saveErr != nil {
			return actionMsg{err: saveErr}
		}
		return actionMsg{info: "Sem impressora; ZPL salvo em " + path}
	}
}

func (a *App) saveLabelSheet() tea.Cmd {
	return func() tea.Msg {
		path, err := a.svc.SaveLabelSheet(nil)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{info: "Folha de etiquetas salva em " + path}
	}
}

func (a *App) removeItem(c *models.Container, item *models.PackingItem) tea.Cmd {
	return func() tea.Msg {
		if err := a.svc.RemoveItem(context.Background(), c.ID, item.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{info: fmt.Sprintf("Item %s removido de %s", item.SKU, c.Code)}
	}
}

func (a *App) generateInvoices() tea.Cmd {
	return func() tea.Msg {
		run, err := a.svc.GenerateInvoices(context.Background())
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{info: fmt.Sprintf("%d fatura(s) gerada(s), %d cliente(s) sem contêineres ativos",
			len(run.Invoices), len(run.Skipped))}
	}
}

func (a *App) sweepOverdue() tea.Cmd {
	return func() tea.Msg {
		n, err := a.svc.SweepOverdue(context.Background())
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{info: fmt.Sprintf("%d fatura(s) marcada(s) como vencida(s)", n)}
	}
}

func (a *App) markPaid(inv *models.Invoice) tea.Cmd {
	return func() tea.Msg {
		if _, err := a.svc.MarkInvoicePaid(context.Background(), inv.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{info: "Fatura " + inv.ID + " paga"}
	}
}

func (a *App) saveInvoiceDocument(inv *models.Invoice) tea.Cmd {
	return func() tea.Msg {
		path, err := a.svc.SaveInvoiceDocument(inv.ID)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{info: "Fatura salva em " + path}
	}
}

// Run starts the TUI application.
func Run(ctx context.Context, svc *warehouse.Service, cfg *config.Config) error {
	app := New(svc, cfg)

	p := tea.NewProgram(app, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err := p.Run()
	return err
}
