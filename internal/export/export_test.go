package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/store"
)

func testSnapshot() *store.Snapshot {
	item := &models.PackingItem{
		SKU:             "IT9528",
		Description:     "IMPULSE SERIES CROSSFIT RACK; FULL CAGE",
		Quantity:        2,
		CurrentQuantity: 1,
		UnitWeight:      285,
		Length:          220,
		Width:           180,
		Height:          250,
	}
	item.Recalculate()

	c := &models.Container{
		Code:        "CMAU3754293",
		ClientName:  "IMPULSE FITNESS BRASIL",
		Type:        "Dry Box 40' HC",
		Status:      models.ContainerStatusActive,
		TotalVolume: 76.3,
		Items:       []*models.PackingItem{item},
	}
	c.Recalculate()

	ts := time.Date(2024, 11, 20, 14, 5, 0, 0, time.UTC)
	return &store.Snapshot{
		Containers: []*models.Container{c},
		Invoices: []*models.Invoice{{
			ID:             "FAT-2024-001",
			ClientName:     "IMPULSE FITNESS BRASIL",
			Period:         "Nov/2024",
			StorageAmount:  decimal.NewFromInt(3200),
			HandlingAmount: decimal.RequireFromString("85.5"),
			TotalAmount:    decimal.RequireFromString("3285.5"),
			Status:         models.InvoiceStatusPending,
		}},
		Events: []*models.Event{{
			Type:          models.EventTypeExit,
			ContainerCode: "CMAU3754293",
			Date:          ts,
			Items:         []models.EventItem{{SKU: "IT9528", Quantity: 1}},
			CreatedBy:     "Admin",
		}},
		AuditLogs: []*models.AuditLog{{
			Action:     models.ActionCreateContainer,
			EntityType: models.EntityContainer,
			EntityName: "CMAU3754293",
			User:       "Admin",
			Timestamp:  ts,
		}},
	}
}

func render(t *testing.T, r Report) []string {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, r, testSnapshot()); err != nil {
		t.Fatalf("Write(%s) error = %v", r, err)
	}
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestWrite(t *testing.T) {
	tests := []struct {
		report Report
		want   []string
	}{
		{ReportOccupation, []string{
			"Container;Cliente;Tipo;Vol. Total;Vol. Usado;Ocupacao;SKUs;Peso (t)",
			"CMAU3754293;IMPULSE FITNESS BRASIL;Dry Box 40' HC;76,3 m³;19,8 m³;26,0%;1;0,6 t",
		}},
		{ReportRevenue, []string{
			"Fatura;Cliente;Periodo;Armazenagem;Manuseio;Total;Status",
			"FAT-2024-001;IMPULSE FITNESS BRASIL;Nov/2024;R$ 3.200,00;R$ 85,50;R$ 3.285,50;Pendente",
		}},
		{ReportMovements, []string{
			"Data;Tipo;Container;Itens;Usuario;Obs",
			"20/11/2024;Saída;CMAU3754293;1;Admin;-",
		}},
		{ReportInventory, []string{
			"Container;Cliente;SKU;Descricao;Qtd Orig.;Qtd Atual;Peso;Volume;Local",
			`CMAU3754293;IMPULSE FITNESS BRASIL;IT9528;"IMPULSE SERIES CROSSFIT RACK; FULL CAGE";2;1;570,0 kg;19,80 m³;-`,
		}},
		{ReportAudit, []string{
			"Data/Hora;Acao;Tipo;Entidade;Usuario",
			"20/11/2024 14:05;Criou contêiner;container;CMAU3754293;Admin",
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.report), func(t *testing.T) {
			got := render(t, tt.report)
			if len(got) != len(tt.want) {
				t.Fatalf("lines = %d, want %d:\n%s", len(got), len(tt.want), strings.Join(got, "\n"))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q\nwant      %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWrite_EmptySnapshot(t *testing.T) {
	for _, r := range Reports() {
		var buf bytes.Buffer
		if err := Write(&buf, r, &store.Snapshot{}); err != nil {
			t.Fatalf("Write(%s) error = %v", r, err)
		}
		if lines := strings.Count(buf.String(), "\n"); lines != 1 {
			t.Errorf("Write(%s) lines = %d, want header only", r, lines)
		}
	}
}

func TestParseReport(t *testing.T) {
	for _, r := range Reports() {
		got, err := ParseReport(string(r))
		if err != nil || got != r {
			t.Errorf("ParseReport(%q) = %q, %v", r, got, err)
		}
	}
	if _, err := ParseReport("payroll"); err == nil {
		t.Error("ParseReport(payroll) expected error")
	}
	if _, err := Build(Report("payroll"), &store.Snapshot{}); err == nil {
		t.Error("Build(payroll) expected error")
	}
}

func TestFileName(t *testing.T) {
	date := time.Date(2024, 11, 20, 23, 59, 0, 0, time.UTC)
	tests := []struct {
		report Report
		want   string
	}{
		{ReportOccupation, "occupation_2024-11-20.csv"},
		{ReportRevenue, "revenue_2024-11-20.csv"},
		{ReportAudit, "auditoria_2024-11-20.csv"},
	}
	for _, tt := range tests {
		if got := FileName(tt.report, date); got != tt.want {
			t.Errorf("FileName(%s) = %q, want %q", tt.report, got, tt.want)
		}
	}
}
