package store

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vectrastorage/vectra/internal/models"
)

// ============================================================================
// INVOICES
// ============================================================================

// AddInvoice issues an invoice numbered FAT-{year}-{seq}, where seq counts the
// invoices of the current year. The total is the sum of the three amounts;
// a TotalOverride that disagrees is rejected with InconsistentTotalError.
func (s *Store) AddInvoice(input InvoiceInput) (*models.Invoice, error) {
	if err := validateAmounts(input.StorageAmount, input.HandlingAmount, input.AdditionalAmount); err != nil {
		return nil, err
	}
	total := models.InvoiceTotal(input.StorageAmount, input.HandlingAmount, input.AdditionalAmount)
	if err := checkOverride(total, input.TotalOverride); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = models.InvoiceStatusPending
	}
	if !status.Valid() {
		return nil, models.NewValidation("status", "status inválido: %s", status)
	}
	clientID, clientName, err := s.resolveClient(input.ClientID, input.ClientName)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	inv := &models.Invoice{
		ID:               s.invoiceNumbers.Next(now.Year()),
		ClientID:         clientID,
		ClientName:       clientName,
		Period:           input.Period,
		Containers:       slices.Clone(input.Containers),
		StorageAmount:    input.StorageAmount,
		HandlingAmount:   input.HandlingAmount,
		AdditionalAmount: input.AdditionalAmount,
		TotalAmount:      total,
		Status:           status,
		DueDate:          input.DueDate,
		Notes:            input.Notes,
		CreatedAt:        now,
	}
	if status == models.InvoiceStatusPaid {
		inv.PaidDate = &now
	}
	s.invoices = slices.Insert(s.invoices, 0, inv)

	s.recordAs(SystemUser, models.ActionCreateInvoice, models.EntityInvoice, inv.ID, inv.ID, map[string]any{
		"client": inv.ClientName,
		"total":  inv.TotalAmount.StringFixed(2),
	})
	return inv.Clone(), nil
}

// UpdateInvoice applies patch to an invoice. Changed amounts re-derive the
// total. Moving to paid stamps the paid date unless the patch carries one.
func (s *Store) UpdateInvoice(id string, patch InvoicePatch) (*models.Invoice, error) {
	inv := s.invoice(id)
	if inv == nil {
		return nil, models.NewNotFound(models.EntityInvoice, id)
	}

	next := inv.Clone()
	setIf(&next.Period, patch.Period)
	if patch.Containers != nil {
		next.Containers = slices.Clone(patch.Containers)
	}
	setIf(&next.StorageAmount, patch.StorageAmount)
	setIf(&next.HandlingAmount, patch.HandlingAmount)
	setIf(&next.AdditionalAmount, patch.AdditionalAmount)
	setIf(&next.Status, patch.Status)
	setIf(&next.DueDate, patch.DueDate)
	setIf(&next.Notes, patch.Notes)
	if patch.PaidDate != nil {
		paid := *patch.PaidDate
		next.PaidDate = &paid
	}

	if err := validateAmounts(next.StorageAmount, next.HandlingAmount, next.AdditionalAmount); err != nil {
		return nil, err
	}
	next.TotalAmount = next.ComponentsTotal()
	if err := checkOverride(next.TotalAmount, patch.TotalOverride); err != nil {
		return nil, err
	}
	if !next.Status.Valid() {
		return nil, models.NewValidation("status", "status inválido: %s", next.Status)
	}
	if next.Status == models.InvoiceStatusPaid && next.PaidDate == nil {
		now := s.clock.Now()
		next.PaidDate = &now
	}

	*inv = *next
	s.record(models.ActionUpdateInvoice, models.EntityInvoice, inv.ID, inv.ID, map[string]any{
		"status": string(inv.Status),
		"total":  inv.TotalAmount.StringFixed(2),
	})
	return inv.Clone(), nil
}

// MarkOverdue moves pending invoices whose due date has passed to overdue and
// returns how many changed.
func (s *Store) MarkOverdue(now time.Time) int {
	n := 0
	for _, inv := range s.invoices {
		if inv.IsOverdueAt(now) {
			inv.Status = models.InvoiceStatusOverdue
			n++
			s.recordAs(SystemUser, models.ActionUpdateInvoice, models.EntityInvoice, inv.ID, inv.ID, map[string]any{
				"status": string(inv.Status),
			})
		}
	}
	return n
}

// Invoice returns an invoice by id.
func (s *Store) Invoice(id string) (*models.Invoice, error) {
	inv := s.invoice(id)
	if inv == nil {
		return nil, models.NewNotFound(models.EntityInvoice, id)
	}
	return inv.Clone(), nil
}

// Invoices returns all invoices, newest first.
func (s *Store) Invoices() []*models.Invoice {
	return cloneAll(s.invoices, (*models.Invoice).Clone)
}

// InvoicesByClient returns the invoices of one client, newest first.
func (s *Store) InvoicesByClient(clientID string) []*models.Invoice {
	var out []*models.Invoice
	for _, inv := range s.invoices {
		if inv.ClientID == clientID {
			out = append(out, inv.Clone())
		}
	}
	return out
}

func (s *Store) invoice(id string) *models.Invoice {
	for _, inv := range s.invoices {
		if inv.ID == id {
			return inv
		}
	}
	return nil
}

func validateAmounts(amounts ...decimal.Decimal) error {
	for _, a := range amounts {
		if a.IsNegative() {
			return models.NewValidation("amount", "valores da fatura não podem ser negativos")
		}
	}
	return nil
}

func checkOverride(total decimal.Decimal, override *decimal.Decimal) error {
	if override != nil && !override.Equal(total) {
		return &models.InconsistentTotalError{Expected: total, Got: *override}
	}
	return nil
}
