package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

// Valid reports whether s is a known status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Label returns the Portuguese display name.
func (s InvoiceStatus) Label() string {
	switch s {
	case InvoiceStatusPaid:
		return "Pago"
	case InvoiceStatusPending:
		return "Pendente"
	case InvoiceStatusOverdue:
		return "Vencido"
	default:
		return string(s)
	}
}

// Invoice is a monthly storage bill for a client.
//
// TotalAmount is always StorageAmount + HandlingAmount + AdditionalAmount.
type Invoice struct {
	ID               string // "FAT-2024-001"
	ClientID         string
	ClientName       string
	Period           string // "Nov/2024"
	Containers       []string
	StorageAmount    decimal.Decimal
	HandlingAmount   decimal.Decimal
	AdditionalAmount decimal.Decimal
	TotalAmount      decimal.Decimal
	Status           InvoiceStatus
	DueDate          time.Time
	PaidDate         *time.Time
	Notes            string
	CreatedAt        time.Time
}

// InvoiceTotal sums the three invoice components.
func InvoiceTotal(storage, handling, additional decimal.Decimal) decimal.Decimal {
	return storage.Add(handling).Add(additional)
}

// ComponentsTotal returns the sum of the invoice components.
func (i *Invoice) ComponentsTotal() decimal.Decimal {
	return InvoiceTotal(i.StorageAmount, i.HandlingAmount, i.AdditionalAmount)
}

// IsOverdueAt reports whether a pending invoice is past its due date.
func (i *Invoice) IsOverdueAt(now time.Time) bool {
	return i.Status == InvoiceStatusPending && now.After(i.DueDate)
}

// Clone returns a deep copy.
func (i *Invoice) Clone() *Invoice {
	cp := *i
	cp.Containers = append([]string(nil), i.Containers...)
	if i.PaidDate != nil {
		paid := *i.PaidDate
		cp.PaidDate = &paid
	}
	return &cp
}
