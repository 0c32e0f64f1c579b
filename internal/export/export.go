// Package export renders warehouse reports as semicolon separated CSV with
// Brazilian number and date formatting.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/store"
	"github.com/vectrastorage/vectra/internal/util"
)

// Report names an export.
type Report string

const (
	ReportOccupation Report = "occupation"
	ReportRevenue    Report = "revenue"
	ReportMovements  Report = "movements"
	ReportInventory  Report = "inventory"
	ReportAudit      Report = "audit"
)

// Reports lists every report in menu order.
func Reports() []Report {
	return []Report{ReportOccupation, ReportRevenue, ReportMovements, ReportInventory, ReportAudit}
}

// ParseReport validates a report name.
func ParseReport(s string) (Report, error) {
	for _, r := range Reports() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown report %q (want occupation, revenue, movements, inventory or audit)", s)
}

// Title returns the Portuguese report title.
func (r Report) Title() string {
	switch r {
	case ReportOccupation:
		return "Relatório de Ocupação"
	case ReportRevenue:
		return "Relatório de Receita"
	case ReportMovements:
		return "Relatório de Movimentações"
	case ReportInventory:
		return "Relatório de Inventário"
	case ReportAudit:
		return "Auditoria"
	default:
		return string(r)
	}
}

// FileName returns the download name for a report generated on date:
// "{report}_{yyyy-mm-dd}.csv", with the audit trail as "auditoria_...".
func FileName(r Report, date time.Time) string {
	prefix := string(r)
	if r == ReportAudit {
		prefix = "auditoria"
	}
	return prefix + "_" + date.Format(util.FileDateFormat) + ".csv"
}

// Table is a rendered report.
type Table struct {
	Header []string
	Rows   [][]string
}

// Build renders report r from a store snapshot.
func Build(r Report, snap *store.Snapshot) (*Table, error) {
	switch r {
	case ReportOccupation:
		return occupation(snap.Containers), nil
	case ReportRevenue:
		return revenue(snap.Invoices), nil
	case ReportMovements:
		return movements(snap.Events), nil
	case ReportInventory:
		return inventory(snap.Containers), nil
	case ReportAudit:
		return audit(snap.AuditLogs), nil
	default:
		return nil, fmt.Errorf("unknown report %q", r)
	}
}

// Write renders report r as CSV to w.
func Write(w io.Writer, r Report, snap *store.Snapshot) error {
	t, err := Build(r, snap)
	if err != nil {
		return err
	}
	return t.WriteCSV(w)
}

// WriteCSV writes the header and rows separated by ';'.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	return nil
}

func occupation(containers []*models.Container) *Table {
	t := &Table{Header: []string{"Container", "Cliente", "Tipo", "Vol. Total", "Vol. Usado", "Ocupacao", "SKUs", "Peso (t)"}}
	for _, c := range containers {
		t.Rows = append(t.Rows, []string{
			c.Code,
			c.ClientName,
			c.Type,
			util.FormatNumber(c.TotalVolume, 1) + " m³",
			util.FormatNumber(c.UsedVolume, 1) + " m³",
			util.FormatPercent(c.Occupation),
			strconv.Itoa(len(c.Items)),
			util.FormatNumber(c.TotalWeight/1000, 1) + " t",
		})
	}
	return t
}

func revenue(invoices []*models.Invoice) *Table {
	t := &Table{Header: []string{"Fatura", "Cliente", "Periodo", "Armazenagem", "Manuseio", "Total", "Status"}}
	for _, inv := range invoices {
		t.Rows = append(t.Rows, []string{
			inv.ID,
			inv.ClientName,
			inv.Period,
			util.FormatBRL(inv.StorageAmount),
			util.FormatBRL(inv.HandlingAmount),
			util.FormatBRL(inv.TotalAmount),
			inv.Status.Label(),
		})
	}
	return t
}

func movements(events []*models.Event) *Table {
	t := &Table{Header: []string{"Data", "Tipo", "Container", "Itens", "Usuario", "Obs"}}
	for _, e := range events {
		notes := e.Notes
		if notes == "" {
			notes = "-"
		}
		t.Rows = append(t.Rows, []string{
			util.FormatDate(e.Date),
			e.Type.Label(),
			e.ContainerCode,
			strconv.Itoa(len(e.Items)),
			e.CreatedBy,
			notes,
		})
	}
	return t
}

func inventory(containers []*models.Container) *Table {
	t := &Table{Header: []string{"Container", "Cliente", "SKU", "Descricao", "Qtd Orig.", "Qtd Atual", "Peso", "Volume", "Local"}}
	for _, c := range containers {
		for _, item := range c.Items {
			location := item.Location
			if location == "" {
				location = "-"
			}
			t.Rows = append(t.Rows, []string{
				c.Code,
				c.ClientName,
				item.SKU,
				item.Description,
				strconv.Itoa(item.Quantity),
				strconv.Itoa(item.CurrentQuantity),
				util.FormatNumber(item.TotalWeight, 1) + " kg",
				util.FormatNumber(item.TotalVolume, 2) + " m³",
				location,
			})
		}
	}
	return t
}

func audit(logs []*models.AuditLog) *Table {
	t := &Table{Header: []string{"Data/Hora", "Acao", "Tipo", "Entidade", "Usuario"}}
	for _, l := range logs {
		t.Rows = append(t.Rows, []string{
			util.FormatDateTime(l.Timestamp),
			l.Action,
			string(l.EntityType),
			l.EntityName,
			l.User,
		})
	}
	return t
}
