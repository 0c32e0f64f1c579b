package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/vectrastorage/vectra/internal/export"
	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/packinglist"
	"github.com/vectrastorage/vectra/internal/services/warehouse"
	"github.com/vectrastorage/vectra/internal/store"
	"github.com/vectrastorage/vectra/internal/tui/components"
)

// formKind identifies which operation a form submits to.
type formKind int

const (
	formNone formKind = iota
	formContainer
	formClient
	formImport
	formEvent
	formMeasurement
	formExport
)

// Field labels shared between building and reading forms.
const (
	fieldCode      = "Código"
	fieldClient    = "Cliente"
	fieldType      = "Tipo"
	fieldBL        = "BL"
	fieldPrice     = "Mensalidade"
	fieldName      = "Nome"
	fieldTaxID     = "CNPJ"
	fieldEmail     = "E-mail"
	fieldPhone     = "Telefone"
	fieldAddress   = "Endereço"
	fieldFile      = "Arquivo"
	fieldContainer = "Contêiner"
	fieldMode      = "Modo"
	fieldMovement  = "Movimento"
	fieldSKU       = "SKU"
	fieldQuantity  = "Quantidade"
	fieldNotes     = "Observações"
	fieldLength    = "Compr. (cm)"
	fieldWidth     = "Larg. (cm)"
	fieldHeight    = "Alt. (cm)"
	fieldWeight    = "Peso (kg)"
	fieldReport    = "Relatório"
)

const (
	modeTolerant = "Tolerante"
	modeStrict   = "Estrito"
	movementIn   = "Entrada"
	movementOut  = "Saída"
	noClient     = "(nenhum)"
)

// openForm builds the form for kind, prefilled from the current selection.
func (a *App) openForm(kind formKind) {
	f := a.buildForm(kind)
	if f == nil {
		return
	}
	a.form = f
	a.formKind = kind
}

func (a *App) closeForm() {
	a.form = nil
	a.formPending = false
	a.formKind = formNone
}

func (a *App) buildForm(kind formKind) *components.Form {
	palette := a.theme.Palette()
	code, sku := a.selection()

	switch kind {
	case formContainer:
		return components.NewForm("NOVO CONTÊINER").SetPalette(palette).
			AddField(components.NewInput(fieldCode).SetRequired(true).SetMaxLength(11).SetPlaceholder("CMAU3754293")).
			AddField(a.clientField(true)).
			AddField(components.NewSelect(fieldType, containerTypeNames()).SetSelected(1)).
			AddField(components.NewInput(fieldBL).SetWidth(24)).
			AddField(components.NewInput(fieldPrice).SetPlaceholder("3200,00"))

	case formClient:
		return components.NewForm("NOVO CLIENTE").SetPalette(palette).
			AddField(components.NewInput(fieldName).SetRequired(true).SetWidth(30)).
			AddField(components.NewInput(fieldTaxID).SetPlaceholder("12.345.678/0001-90")).
			AddField(components.NewInput(fieldEmail).SetWidth(30)).
			AddField(components.NewInput(fieldPhone)).
			AddField(components.NewInput(fieldAddress).SetWidth(40))

	case formImport:
		return components.NewForm("IMPORTAR PACKING LIST").SetPalette(palette).
			AddField(components.NewInput(fieldFile).SetRequired(true).SetWidth(40).SetMaxLength(255).SetPlaceholder("packing_list.csv")).
			AddField(components.NewInput(fieldContainer).SetRequired(true).SetMaxLength(11).SetValue(code)).
			AddField(a.clientField(false)).
			AddField(components.NewSelect(fieldType, containerTypeNames()).SetSelected(1)).
			AddField(components.NewSelect(fieldMode, []string{modeTolerant, modeStrict}))

	case formEvent:
		return components.NewForm("REGISTRAR MOVIMENTAÇÃO").SetPalette(palette).
			AddField(components.NewSelect(fieldMovement, []string{movementIn, movementOut})).
			AddField(components.NewInput(fieldContainer).SetRequired(true).SetMaxLength(11).SetValue(code)).
			AddField(components.NewInput(fieldSKU).SetRequired(true).SetValue(sku)).
			AddField(components.NewInput(fieldQuantity).SetRequired(true).SetMaxLength(6)).
			AddField(components.NewInput(fieldNotes).SetWidth(40))

	case formMeasurement:
		return components.NewForm("REGISTRAR MEDIÇÃO").SetPalette(palette).
			AddField(components.NewInput(fieldContainer).SetRequired(true).SetMaxLength(11).SetValue(code)).
			AddField(components.NewInput(fieldSKU).SetRequired(true).SetValue(sku)).
			AddField(components.NewInput(fieldLength).SetRequired(true).SetMaxLength(8)).
			AddField(components.NewInput(fieldWidth).SetRequired(true).SetMaxLength(8)).
			AddField(components.NewInput(fieldHeight).SetRequired(true).SetMaxLength(8)).
			AddField(components.NewInput(fieldWeight).SetMaxLength(8)).
			AddField(components.NewInput(fieldNotes).SetWidth(40))

	case formExport:
		return components.NewForm("EXPORTAR RELATÓRIO").SetPalette(palette).
			AddField(components.NewSelect(fieldReport, reportTitles())).
			AddField(components.NewInput(fieldFile).SetWidth(40).SetMaxLength(255).SetPlaceholder("(pasta de exportação)"))
	}
	return nil
}

// selection returns the container code and item SKU the operator is on.
func (a *App) selection() (code, sku string) {
	if a.currentModule != ModuleContainers {
		return "", ""
	}
	if a.showDetail && a.detail != nil {
		if item := a.containersView.SelectedItem(a.detail); item != nil {
			sku = item.SKU
		}
		return a.detail.Code, sku
	}
	if c := a.containersView.SelectedContainer(); c != nil {
		return c.Code, ""
	}
	return "", ""
}

// clientField offers the registered clients, or free text when there are
// none.
func (a *App) clientField(required bool) components.FormField {
	clients := a.svc.Clients()
	if len(clients) == 0 {
		return components.NewInput(fieldClient).SetRequired(required).SetWidth(30)
	}
	var names []string
	if !required {
		names = append(names, noClient)
	}
	for _, c := range clients {
		names = append(names, c.Name)
	}
	return components.NewSelect(fieldClient, names)
}

func containerTypeNames() []string {
	names := make([]string, len(models.ContainerTypes))
	for i, t := range models.ContainerTypes {
		names[i] = t.Type
	}
	return names
}

func reportTitles() []string {
	reports := export.Reports()
	titles := make([]string, len(reports))
	for i, r := range reports {
		titles[i] = r.Title()
	}
	return titles
}

// handleFormKeys handles key presses while a form is open.
func (a *App) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.formPending {
		return a, nil
	}
	if msg.Type == tea.KeySpace {
		a.form.HandleKey(" ")
	} else {
		a.form.HandleKey(msg.String())
	}

	if a.form.IsCancelled() {
		a.closeForm()
		return a, nil
	}
	if a.form.IsSubmitted() {
		a.formPending = true
		return a, a.submitForm(a.formKind, a.form)
	}
	return a, nil
}

// submitForm runs the operation behind a submitted form.
func (a *App) submitForm(kind formKind, f *components.Form) tea.Cmd {
	return func() tea.Msg {
		info, err := a.runForm(context.Background(), kind, f)
		return formResultMsg{info: info, err: err}
	}
}

func (a *App) runForm(ctx context.Context, kind formKind, f *components.Form) (string, error) {
	switch kind {
	case formContainer:
		clientID, clientName := a.resolveClient(f.Value(fieldClient))
		typ := f.Value(fieldType)
		volume := models.DefaultContainerVolume
		if capacity, ok := models.CapacityFor(typ); ok {
			volume = capacity.VolumeM3
		}
		price, err := parseMoney(f.Value(fieldPrice))
		if err != nil {
			return "", err
		}
		c, err := a.svc.AddContainer(ctx, store.ContainerInput{
			Code:         strings.ToUpper(f.Value(fieldCode)),
			ClientID:     clientID,
			ClientName:   clientName,
			Type:         typ,
			BillOfLading: f.Value(fieldBL),
			TotalVolume:  volume,
			MonthlyPrice: price,
		})
		if err != nil {
			return "", err
		}
		return "Contêiner " + c.Code + " cadastrado", nil

	case formClient:
		c, err := a.svc.AddClient(ctx, store.ClientInput{
			Name:    f.Value(fieldName),
			TaxID:   f.Value(fieldTaxID),
			Email:   f.Value(fieldEmail),
			Phone:   f.Value(fieldPhone),
			Address: f.Value(fieldAddress),
		})
		if err != nil {
			return "", err
		}
		return "Cliente " + c.Name + " cadastrado", nil

	case formImport:
		return a.importPackingList(ctx, f)

	case formEvent:
		c, err := a.svc.ContainerByCode(f.Value(fieldContainer))
		if err != nil {
			return "", err
		}
		qty, err := strconv.Atoi(f.Value(fieldQuantity))
		if err != nil || qty <= 0 {
			return "", models.NewValidation("quantity", "quantidade inválida: %s", f.Value(fieldQuantity))
		}
		typ := models.EventTypeEntry
		if f.Value(fieldMovement) == movementOut {
			typ = models.EventTypeExit
		}
		e, err := a.svc.AddEvent(ctx, store.EventInput{
			Type:        typ,
			ContainerID: c.ID,
			Items:       []store.EventItemInput{{SKU: f.Value(fieldSKU), Quantity: qty}},
			Notes:       f.Value(fieldNotes),
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s registrada: %s x%d em %s", e.Type.Label(), f.Value(fieldSKU), qty, c.Code), nil

	case formMeasurement:
		c, err := a.svc.ContainerByCode(f.Value(fieldContainer))
		if err != nil {
			return "", err
		}
		m, err := a.svc.AddMeasurement(ctx, store.MeasurementInput{
			ContainerID: c.ID,
			SKU:         f.Value(fieldSKU),
			Length:      packinglist.ParseNumber(f.Value(fieldLength)),
			Width:       packinglist.ParseNumber(f.Value(fieldWidth)),
			Height:      packinglist.ParseNumber(f.Value(fieldHeight)),
			Weight:      packinglist.ParseNumber(f.Value(fieldWeight)),
			Notes:       f.Value(fieldNotes),
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Medição de %s registrada: %s cm", m.SKU, m.Dimensions()), nil

	case formExport:
		report := export.Reports()[0]
		for _, r := range export.Reports() {
			if r.Title() == f.Value(fieldReport) {
				report = r
			}
		}
		path, err := a.svc.Export(report, f.Value(fieldFile))
		if err != nil {
			return "", err
		}
		return report.Title() + " salvo em " + path, nil
	}
	return "", errors.New("formulário desconhecido")
}

func (a *App) importPackingList(ctx context.Context, f *components.Form) (string, error) {
	path := f.Value(fieldFile)
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("abrindo %s: %w", path, err)
	}
	defer file.Close()

	clientID, clientName := a.resolveClient(f.Value(fieldClient))
	res, err := a.svc.ImportPackingList(ctx, warehouse.ImportInput{
		FileName:      filepath.Base(path),
		Reader:        file,
		ContainerCode: strings.ToUpper(f.Value(fieldContainer)),
		ClientID:      clientID,
		ClientName:    clientName,
		ContainerType: f.Value(fieldType),
		Strict:        f.Value(fieldMode) == modeStrict,
	})
	if err != nil {
		return "", err
	}

	info := fmt.Sprintf("%d item(ns) importado(s) em %s", len(res.Parse.Items), res.Container.Code)
	if n := len(res.Parse.Warnings); n > 0 {
		info += fmt.Sprintf(" (%d aviso(s))", n)
	}
	return info, nil
}

// resolveClient maps a client field value to a registered client id, or
// passes it through as a free text name.
func (a *App) resolveClient(value string) (id, name string) {
	if value == "" || value == noClient {
		return "", ""
	}
	for _, c := range a.svc.Clients() {
		if c.Name == value {
			return c.ID, c.Name
		}
	}
	return "", value
}

// parseMoney reads an amount typed as "3200,50", "3.200,50" or "3200.50".
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, models.NewValidation("monthlyPrice", "valor inválido: %s", s)
	}
	return d, nil
}
