package warehouse

import (
	"io"
	"time"

	"github.com/vectrastorage/vectra/internal/billing"
	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/packinglist"
)

// ImportInput contains a packing list file and the container it belongs to.
type ImportInput struct {
	FileName      string
	Reader        io.Reader
	ContainerCode string
	ClientID      string
	ClientName    string
	ContainerType string
	BillOfLading  string
	Strict        bool // reject rows that tolerant parsing only warns about
}

// ImportResult is the outcome of an import. Parse is always set; Container
// is set only when the items were stored.
type ImportResult struct {
	Parse     *packinglist.Result
	Container *models.Container
}

// PrintResult is the outcome of a label print. ZPL is always set so the
// operator can copy it when the printer is unreachable.
type PrintResult struct {
	Label   *models.Label
	ZPL     string
	Printer string // host:port, empty when none is configured
	Printed bool
}

// InvoiceRun summarises a batch invoice generation.
type InvoiceRun struct {
	Invoices []*models.Invoice
	Quotes   []billing.Quote
	Skipped  []string // clients without active containers
}

// Overview is the data behind the dashboard.
type Overview struct {
	Stats           models.Stats
	RecentEvents    []*models.Event
	RecentAudit     []*models.AuditLog
	NextMeasurement time.Time
	DaysToMeasure   int
}
