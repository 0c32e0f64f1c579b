package store

import (
	"github.com/shopspring/decimal"

	"github.com/vectrastorage/vectra/internal/models"
)

// Stats folds the current collections into the dashboard summary.
// It does not modify the store.
func (s *Store) Stats() models.Stats {
	st := models.Stats{
		TotalContainers: len(s.containers),
		Clients:         len(s.clients),
		MonthlyRevenue:  decimal.Zero,
		PendingAmount:   decimal.Zero,
		OverdueAmount:   decimal.Zero,
	}

	var occupationSum float64
	for _, c := range s.containers {
		if c.IsActive() {
			st.ActiveContainers++
			occupationSum += c.Occupation
		}
		st.TotalSKUs += len(c.Items)
		st.TotalVolume += c.UsedVolume
		st.TotalWeight += c.TotalWeight
		st.MonthlyRevenue = st.MonthlyRevenue.Add(c.MonthlyPrice)
	}
	if st.ActiveContainers > 0 {
		st.AverageOccupation = occupationSum / float64(st.ActiveContainers)
	}

	for _, inv := range s.invoices {
		switch inv.Status {
		case models.InvoiceStatusPending:
			st.PendingInvoices++
			st.PendingAmount = st.PendingAmount.Add(inv.TotalAmount)
		case models.InvoiceStatusOverdue:
			st.OverdueInvoices++
			st.OverdueAmount = st.OverdueAmount.Add(inv.TotalAmount)
		}
	}

	return st
}
