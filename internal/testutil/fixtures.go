package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vectrastorage/vectra/internal/config"
	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/store"
)

// FixtureTime is the reference instant used by fixtures.
var FixtureTime = time.Date(2024, 11, 20, 10, 30, 0, 0, time.UTC)

// FixtureClient creates a test client with sensible defaults.
func FixtureClient(overrides ...func(*models.Client)) *models.Client {
	c := &models.Client{
		ID:        uuid.New().String(),
		Name:      "IMPULSE FITNESS BRASIL",
		TaxID:     "12.345.678/0001-90",
		Email:     "compras@impulse.com.br",
		Phone:     "(13) 3222-0000",
		Address:   "Av. Ana Costa, 100 - Santos/SP",
		CreatedAt: FixtureTime,
		UpdatedAt: FixtureTime,
	}
	for _, override := range overrides {
		override(c)
	}
	return c
}

// FixtureItem creates a packing item: two 220x180x250 cm racks of 285 kg.
// Derived totals are computed after the overrides run.
func FixtureItem(overrides ...func(*models.PackingItem)) *models.PackingItem {
	item := &models.PackingItem{
		ID:              uuid.New().String(),
		SKU:             "IT9528",
		Description:     "IMPULSE SERIES CROSSFIT RACK",
		DescriptionPt:   "RACK CROSSFIT SERIE IMPULSE",
		Quantity:        2,
		CurrentQuantity: 2,
		UnitWeight:      285,
		Length:          220,
		Width:           180,
		Height:          250,
		NCM:             "9506.91.00",
		Origin:          "CN",
		Brand:           "IMPULSE",
		Model:           "IT9528",
		UnitPrice:       decimal.NewFromInt(5700),
		Location:        "A1-01",
		CreatedAt:       FixtureTime,
		UpdatedAt:       FixtureTime,
	}
	for _, override := range overrides {
		override(item)
	}
	item.Recalculate()
	return item
}

// FixtureContainer creates an active 40' HC container holding one
// FixtureItem. Totals are recomputed after the overrides run.
func FixtureContainer(overrides ...func(*models.Container)) *models.Container {
	id := uuid.New().String()
	c := &models.Container{
		ID:           id,
		Code:         "CMAU3754293",
		Status:       models.ContainerStatusActive,
		ClientName:   "IMPULSE FITNESS BRASIL",
		Type:         "Dry Box 40' HC",
		BillOfLading: "MEDU1234567",
		TotalVolume:  76.3,
		Since:        FixtureTime.AddDate(0, -2, 0),
		MonthlyPrice: decimal.NewFromInt(3200),
		CreatedAt:    FixtureTime,
		UpdatedAt:    FixtureTime,
	}
	c.Items = []*models.PackingItem{FixtureItem(func(i *models.PackingItem) { i.ContainerID = id })}

	for _, override := range overrides {
		override(c)
	}
	for _, item := range c.Items {
		item.ContainerID = c.ID
	}
	c.Recalculate()
	return c
}

// FixtureEvent creates an exit event of one unit from c's first item.
func FixtureEvent(c *models.Container, overrides ...func(*models.Event)) *models.Event {
	e := &models.Event{
		ID:            uuid.New().String(),
		Type:          models.EventTypeExit,
		ContainerID:   c.ID,
		ContainerCode: c.Code,
		ClientName:    c.ClientName,
		Date:          FixtureTime,
		Notes:         "Retirada parcial",
		CreatedBy:     "Admin",
		CreatedAt:     FixtureTime,
	}
	if len(c.Items) > 0 {
		item := c.Items[0]
		e.Items = []models.EventItem{{
			PackingItemID: item.ID,
			SKU:           item.SKU,
			Description:   item.DisplayDescription(),
			Quantity:      1,
		}}
	}
	for _, override := range overrides {
		override(e)
	}
	return e
}

// FixtureMeasurement creates a measurement of c's first item.
func FixtureMeasurement(c *models.Container, overrides ...func(*models.Measurement)) *models.Measurement {
	m := &models.Measurement{
		ID:            uuid.New().String(),
		ContainerID:   c.ID,
		ContainerCode: c.Code,
		Date:          FixtureTime,
		Length:        221,
		Width:         180,
		Height:        250,
		Weight:        286.5,
		MeasuredBy:    "Admin",
		CreatedAt:     FixtureTime,
	}
	if len(c.Items) > 0 {
		m.ItemID = c.Items[0].ID
		m.SKU = c.Items[0].SKU
	}
	for _, override := range overrides {
		override(m)
	}
	m.Volume = models.UnitVolumeM3(m.Length, m.Width, m.Height)
	return m
}

// FixtureInvoice creates a pending invoice. The total is recomputed from the
// components after the overrides run.
func FixtureInvoice(overrides ...func(*models.Invoice)) *models.Invoice {
	inv := &models.Invoice{
		ID:               "FAT-2024-001",
		ClientName:       "IMPULSE FITNESS BRASIL",
		Period:           "Nov/2024",
		Containers:       []string{"CMAU3754293"},
		StorageAmount:    decimal.NewFromInt(3200),
		HandlingAmount:   decimal.RequireFromString("85.50"),
		AdditionalAmount: decimal.Zero,
		Status:           models.InvoiceStatusPending,
		DueDate:          FixtureTime.AddDate(0, 0, 10),
		CreatedAt:        FixtureTime,
	}
	for _, override := range overrides {
		override(inv)
	}
	inv.TotalAmount = inv.ComponentsTotal()
	return inv
}

// FixtureLabel creates an unprinted storage label for c's first item.
func FixtureLabel(c *models.Container, overrides ...func(*models.Label)) *models.Label {
	l := &models.Label{
		ID:            uuid.New().String(),
		Type:          models.LabelTypeStorage,
		ContainerID:   c.ID,
		ContainerCode: c.Code,
		ClientName:    c.ClientName,
		Location:      models.DefaultLabelLocation,
		CreatedAt:     FixtureTime,
	}
	if len(c.Items) > 0 {
		item := c.Items[0]
		l.ItemID = item.ID
		l.SKU = item.SKU
		l.Description = item.DisplayDescription()
		l.Barcode = models.Barcode(item.SKU)
		l.Weight = item.UnitWeight
		l.Dimensions = "220x180x250cm"
		l.Quantity = item.CurrentQuantity
	}
	for _, override := range overrides {
		override(l)
	}
	return l
}

// FixtureAuditLog creates an audit entry for a new container.
func FixtureAuditLog(overrides ...func(*models.AuditLog)) *models.AuditLog {
	a := &models.AuditLog{
		ID:         uuid.New().String(),
		Action:     models.ActionCreateContainer,
		EntityType: models.EntityContainer,
		EntityID:   uuid.New().String(),
		EntityName: "CMAU3754293",
		User:       "Admin",
		Details:    map[string]any{"type": "Dry Box 40' HC"},
		Timestamp:  FixtureTime,
	}
	for _, override := range overrides {
		override(a)
	}
	return a
}

// FixtureSnapshot assembles a small consistent snapshot: one client owning one
// container, with an event, a measurement, an invoice, a label and two audit
// entries (newest first).
func FixtureSnapshot() *store.Snapshot {
	client := FixtureClient()
	c := FixtureContainer(func(c *models.Container) {
		c.ClientID = client.ID
		c.ClientName = client.Name
	})

	older := FixtureAuditLog(func(a *models.AuditLog) {
		a.EntityID = c.ID
		a.Timestamp = FixtureTime.Add(-time.Hour)
	})
	newer := FixtureAuditLog(func(a *models.AuditLog) {
		a.Action = models.ActionRegisterExit
		a.EntityType = models.EntityEvent
		a.Details = nil
	})

	return &store.Snapshot{
		Settings:     config.DefaultSettings(),
		Clients:      []*models.Client{client},
		Containers:   []*models.Container{c},
		Events:       []*models.Event{FixtureEvent(c)},
		Measurements: []*models.Measurement{FixtureMeasurement(c)},
		Invoices: []*models.Invoice{FixtureInvoice(func(inv *models.Invoice) {
			inv.ClientID = client.ID
		})},
		Labels:    []*models.Label{FixtureLabel(c)},
		AuditLogs: []*models.AuditLog{newer, older},
	}
}
