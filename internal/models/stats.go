package models

import "github.com/shopspring/decimal"

// Stats holds the dashboard summary numbers.
type Stats struct {
	ActiveContainers  int
	TotalContainers   int
	TotalSKUs         int
	TotalVolume       float64 // used m3 across all containers
	TotalWeight       float64 // kg
	AverageOccupation float64 // percent over active containers
	MonthlyRevenue    decimal.Decimal
	PendingAmount     decimal.Decimal
	PendingInvoices   int
	OverdueAmount     decimal.Decimal
	OverdueInvoices   int
	Clients           int
}
