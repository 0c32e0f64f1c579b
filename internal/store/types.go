package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vectrastorage/vectra/internal/config"
	"github.com/vectrastorage/vectra/internal/models"
)

// Snapshot is a deep copy of every collection held by a Store.
// Ordered collections keep the store's order (events, measurements, invoices
// and audit entries newest first).
type Snapshot struct {
	Settings     config.Settings
	Clients      []*models.Client
	Containers   []*models.Container
	Events       []*models.Event
	Measurements []*models.Measurement
	Invoices     []*models.Invoice
	Labels       []*models.Label
	AuditLogs    []*models.AuditLog
}

// ClientInput contains data for registering a client.
type ClientInput struct {
	Name    string
	TaxID   string
	Email   string
	Phone   string
	Address string
}

// ClientPatch lists client fields to change; nil fields are left alone.
type ClientPatch struct {
	Name    *string
	TaxID   *string
	Email   *string
	Phone   *string
	Address *string
}

// ContainerInput contains data for registering a container.
type ContainerInput struct {
	Code         string
	Status       models.ContainerStatus // default active
	ClientID     string                 // optional; must exist when set
	ClientName   string                 // used when ClientID is empty
	Type         string
	BillOfLading string
	TotalVolume  float64
	MonthlyPrice decimal.Decimal
	Since        time.Time // default now
}

// ContainerPatch lists container fields to change; nil fields are left alone.
type ContainerPatch struct {
	Code         *string
	Status       *models.ContainerStatus
	ClientID     *string
	ClientName   *string
	Type         *string
	BillOfLading *string
	TotalVolume  *float64
	MonthlyPrice *decimal.Decimal
	Since        *time.Time
}

// ItemInput contains one packing list line to add to a container.
type ItemInput struct {
	SKU           string
	Description   string
	DescriptionPt string
	Quantity      int
	UnitWeight    float64
	Length        float64
	Width         float64
	Height        float64
	NCM           string
	Origin        string
	Brand         string
	Model         string
	UnitPrice     decimal.Decimal
	Location      string
}

// ItemPatch lists item fields to change; nil fields are left alone.
type ItemPatch struct {
	Description     *string
	DescriptionPt   *string
	Quantity        *int
	CurrentQuantity *int
	UnitWeight      *float64
	Length          *float64
	Width           *float64
	Height          *float64
	NCM             *string
	Origin          *string
	Brand           *string
	Model           *string
	UnitPrice       *decimal.Decimal
	Location        *string
}

// EventInput contains data for recording a container movement.
type EventInput struct {
	Type        models.EventType
	ContainerID string
	Date        time.Time // default now
	Items       []EventItemInput
	Notes       string
	CreatedBy   string // default operator
}

// EventItemInput references an item of the event's container, by id or,
// when PackingItemID is empty, by SKU.
type EventItemInput struct {
	PackingItemID string
	SKU           string
	Quantity      int
}

// MeasurementInput contains data for recording a manual measurement.
// The item is resolved by ItemID, else by SKU inside the container.
type MeasurementInput struct {
	ContainerID string
	ItemID      string
	SKU         string
	Date        time.Time // default now
	Length      float64
	Width       float64
	Height      float64
	Weight      float64
	Notes       string
	MeasuredBy  string // default operator
}

// InvoiceInput contains data for issuing an invoice.
type InvoiceInput struct {
	ClientID         string
	ClientName       string
	Period           string
	Containers       []string
	StorageAmount    decimal.Decimal
	HandlingAmount   decimal.Decimal
	AdditionalAmount decimal.Decimal
	// TotalOverride is an optional caller-computed total. The derived total
	// is authoritative; a disagreeing override is rejected.
	TotalOverride *decimal.Decimal
	Status        models.InvoiceStatus // default pending
	DueDate       time.Time
	Notes         string
}

// InvoicePatch lists invoice fields to change; nil fields are left alone.
type InvoicePatch struct {
	Period           *string
	Containers       []string // replaced when non-nil
	StorageAmount    *decimal.Decimal
	HandlingAmount   *decimal.Decimal
	AdditionalAmount *decimal.Decimal
	TotalOverride    *decimal.Decimal
	Status           *models.InvoiceStatus
	DueDate          *time.Time
	PaidDate         *time.Time
	Notes            *string
}

// LabelInput contains data for generating an item label.
type LabelInput struct {
	Type        models.LabelType // default storage
	ContainerID string
	ItemID      string
	Quantity    int // default the item's current quantity
}

// UploadInput is a parsed packing list destined for a container.
type UploadInput struct {
	ContainerCode string
	ClientID      string
	ClientName    string
	ContainerType string
	BillOfLading  string
	FileName      string
	Items         []ItemInput
}
