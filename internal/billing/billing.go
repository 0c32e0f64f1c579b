// Package billing prices container storage and renders invoice documents.
package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vectrastorage/vectra/internal/config"
	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/store"
	"github.com/vectrastorage/vectra/internal/util"
)

// DefaultDueDays is the payment term of a generated invoice.
const DefaultDueDays = 10

// Quote is the monthly charge for one container at the current tariff.
type Quote struct {
	ContainerID    string
	ContainerCode  string
	ClientID       string
	ClientName     string
	UsedVolume     float64 // m3
	TotalWeight    float64 // kg
	Storage        decimal.Decimal
	Handling       decimal.Decimal
	MinimumApplied bool
}

// Total returns storage plus handling.
func (q Quote) Total() decimal.Decimal {
	return q.Storage.Add(q.Handling)
}

// QuoteContainer prices a container: storage is the used volume times the
// per-m3 rate, raised to the minimum monthly fee; handling is the stored
// weight times the per-kg rate. Amounts are rounded to cents.
func QuoteContainer(c *models.Container, p config.PricingConfig) Quote {
	storage := decimal.NewFromFloat(c.UsedVolume).Mul(decimal.NewFromFloat(p.StoragePerM3)).Round(2)
	minimum := decimal.NewFromFloat(p.MinMonthlyFee).Round(2)

	q := Quote{
		ContainerID:   c.ID,
		ContainerCode: c.Code,
		ClientID:      c.ClientID,
		ClientName:    c.ClientName,
		UsedVolume:    c.UsedVolume,
		TotalWeight:   c.TotalWeight,
		Storage:       storage,
		Handling:      decimal.NewFromFloat(c.TotalWeight).Mul(decimal.NewFromFloat(p.HandlingPerKg)).Round(2),
	}
	if storage.LessThan(minimum) {
		q.Storage = minimum
		q.MinimumApplied = true
	}
	return q
}

// QuoteClient prices every active container of one client. Clients are
// matched by id, or by name for containers without a client id.
func QuoteClient(clientID, clientName string, containers []*models.Container, p config.PricingConfig) []Quote {
	var quotes []Quote
	for _, c := range containers {
		if !c.IsActive() {
			continue
		}
		if (clientID != "" && c.ClientID == clientID) || (c.ClientID == "" && strings.EqualFold(c.ClientName, clientName)) {
			quotes = append(quotes, QuoteContainer(c, p))
		}
	}
	return quotes
}

// Draft turns quotes into an invoice request for period (e.g. "Nov/2024")
// due DefaultDueDays after issue.
func Draft(clientID, clientName string, quotes []Quote, issued time.Time) store.InvoiceInput {
	in := store.InvoiceInput{
		ClientID:         clientID,
		ClientName:       clientName,
		Period:           util.BillingPeriod(issued),
		StorageAmount:    decimal.Zero,
		HandlingAmount:   decimal.Zero,
		AdditionalAmount: decimal.Zero,
		DueDate:          util.StartOfDay(issued).AddDate(0, 0, DefaultDueDays),
	}
	for _, q := range quotes {
		in.Containers = append(in.Containers, q.ContainerCode)
		in.StorageAmount = in.StorageAmount.Add(q.Storage)
		in.HandlingAmount = in.HandlingAmount.Add(q.Handling)
	}
	return in
}

// StatusText is the upper-case status printed on invoice documents.
func StatusText(s models.InvoiceStatus) string {
	switch s {
	case models.InvoiceStatusPaid:
		return "PAGO"
	case models.InvoiceStatusPending:
		return "PENDENTE"
	default:
		return "VENCIDO"
	}
}

// InvoiceText renders the plain-text invoice document.
func InvoiceText(inv *models.Invoice, company config.CompanyConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - FATURA\n", strings.ToUpper(company.Name))
	b.WriteString(strings.Repeat("=", 40) + "\n")
	if company.CNPJ != "" {
		fmt.Fprintf(&b, "CNPJ: %s\n", company.CNPJ)
	}
	fmt.Fprintf(&b, "Numero: %s\n", inv.ID)
	fmt.Fprintf(&b, "Cliente: %s\n", inv.ClientName)
	fmt.Fprintf(&b, "Periodo: %s\n", inv.Period)
	fmt.Fprintf(&b, "Vencimento: %s\n", util.FormatDate(inv.DueDate))
	if len(inv.Containers) > 0 {
		fmt.Fprintf(&b, "Containers: %s\n", strings.Join(inv.Containers, ", "))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Armazenagem: %s\n", util.FormatBRL(inv.StorageAmount))
	fmt.Fprintf(&b, "Manuseio: %s\n", util.FormatBRL(inv.HandlingAmount))
	fmt.Fprintf(&b, "Adicionais: %s\n", util.FormatBRL(inv.AdditionalAmount))
	b.WriteString("\n")
	fmt.Fprintf(&b, "TOTAL: %s\n", util.FormatBRL(inv.TotalAmount))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Status: %s\n", StatusText(inv.Status))
	if inv.PaidDate != nil {
		fmt.Fprintf(&b, "Pago em: %s\n", util.FormatDate(*inv.PaidDate))
	}
	if inv.Notes != "" {
		fmt.Fprintf(&b, "Obs: %s\n", inv.Notes)
	}
	return b.String()
}

// InvoiceFileName is the suggested file name for an invoice document.
func InvoiceFileName(inv *models.Invoice) string {
	return "fatura_" + inv.ID + ".txt"
}
