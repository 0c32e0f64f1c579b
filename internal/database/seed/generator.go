package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/store"
	"github.com/vectrastorage/vectra/internal/util"
)

// Target is the set of warehouse operations the generator drives.
type Target interface {
	AddClient(ctx context.Context, input store.ClientInput) (*models.Client, error)
	AddContainer(ctx context.Context, input store.ContainerInput) (*models.Container, error)
	AddItems(ctx context.Context, containerID string, items []store.ItemInput) ([]*models.PackingItem, error)
	AddEvent(ctx context.Context, input store.EventInput) (*models.Event, error)
	AddMeasurement(ctx context.Context, input store.MeasurementInput) (*models.Measurement, error)
	AddInvoice(ctx context.Context, input store.InvoiceInput) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, id string, patch store.InvoicePatch) (*models.Invoice, error)
}

// Config configures the seed data generator.
type Config struct {
	// Reference is "today" for the demo; every date is relative to it.
	Reference time.Time
	// ExtraContainers adds random containers after the fixed demo set.
	ExtraContainers int
	RandomSeed      int64
}

// DefaultConfig returns a default seed configuration.
func DefaultConfig(now time.Time) Config {
	return Config{
		Reference:       now,
		ExtraContainers: 2,
		RandomSeed:      2024,
	}
}

// Result counts what Generate created.
type Result struct {
	Clients      int
	Containers   int
	Items        int
	Events       int
	Measurements int
	Invoices     int
}

// Generator generates demo data through a Target.
type Generator struct {
	target Target
	cfg    Config
	rng    *rand.Rand

	clients map[string]*models.Client
	result  Result
}

// NewGenerator creates a new seed data generator.
func NewGenerator(target Target, cfg Config) *Generator {
	return &Generator{
		target:  target,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(cfg.RandomSeed)),
		clients: make(map[string]*models.Client),
	}
}

// Generate creates the demo clients, containers, movements, measurements
// and invoices.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	slog.Info("starting seed data generation",
		"reference", util.FormatDate(g.cfg.Reference),
		"extra_containers", g.cfg.ExtraContainers,
	)

	if err := g.generateClients(ctx); err != nil {
		return nil, fmt.Errorf("generating clients: %w", err)
	}
	containers, err := g.generateContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("generating containers: %w", err)
	}
	if err := g.generateMovements(ctx, containers); err != nil {
		return nil, fmt.Errorf("generating movements: %w", err)
	}
	if err := g.generateInvoices(ctx); err != nil {
		return nil, fmt.Errorf("generating invoices: %w", err)
	}
	for i := 0; i < g.cfg.ExtraContainers; i++ {
		if err := g.generateRandomContainer(ctx); err != nil {
			return nil, fmt.Errorf("generating extra container: %w", err)
		}
	}

	slog.Info("seed data generation complete",
		"clients", g.result.Clients,
		"containers", g.result.Containers,
		"items", g.result.Items,
		"invoices", g.result.Invoices,
	)
	return &g.result, nil
}

func (g *Generator) daysAgo(n int) time.Time {
	return g.cfg.Reference.AddDate(0, 0, -n)
}

func (g *Generator) generateClients(ctx context.Context) error {
	for _, spec := range Clients {
		c, err := g.target.AddClient(ctx, store.ClientInput{
			Name:    spec.Name,
			TaxID:   spec.TaxID,
			Email:   spec.Email,
			Phone:   spec.Phone,
			Address: spec.Address,
		})
		if err != nil {
			return fmt.Errorf("adding client %s: %w", spec.Name, err)
		}
		g.clients[spec.Name] = c
		g.result.Clients++
	}
	return nil
}

// stock is a demo line: a catalogue product, how many arrived, where it is.
type stock struct {
	sku      string
	quantity int
	location string
}

type containerSpec struct {
	code     string
	client   string
	typ      string
	bl       string
	status   models.ContainerStatus
	sinceAgo int
	price    int64
	items    []stock
}

var demoContainers = []containerSpec{
	{
		code: "CMAU3754293", client: "IMPULSE FITNESS BRASIL", typ: "Dry Box 40' HC", bl: "06BRZ2411035",
		status: models.ContainerStatusActive, sinceAgo: 36, price: 3200,
		items: []stock{{"IT9528", 2, "A1-01"}, {"IF2011", 3, "A1-02"}, {"IT7022", 4, "A2-01"}},
	},
	{
		code: "TEMU8834521", client: "TECH IMPORTS LTDA", typ: "Dry Box 40' HC", bl: "07BRZ2411098",
		status: models.ContainerStatusPartial, sinceAgo: 19, price: 2800,
		items: []stock{{"ELEC001", 50, "B1-01"}, {"ELEC002", 200, "B1-02"}},
	},
	{
		code: "MSKU9912345", client: "GLOBAL TRADE CO", typ: "Dry Box 20'", bl: "08BRZ2411155",
		status: models.ContainerStatusActive, sinceAgo: 61, price: 1800,
	},
}

func (g *Generator) generateContainers(ctx context.Context) (map[string]*models.Container, error) {
	out := make(map[string]*models.Container, len(demoContainers))
	for _, spec := range demoContainers {
		c, err := g.addContainer(ctx, spec)
		if err != nil {
			return nil, err
		}
		out[spec.code] = c
	}
	return out, nil
}

func (g *Generator) addContainer(ctx context.Context, spec containerSpec) (*models.Container, error) {
	volume := models.DefaultContainerVolume
	if capacity, ok := models.CapacityFor(spec.typ); ok {
		volume = capacity.VolumeM3
	}
	c, err := g.target.AddContainer(ctx, store.ContainerInput{
		Code:         spec.code,
		Status:       spec.status,
		ClientID:     g.clients[spec.client].ID,
		Type:         spec.typ,
		BillOfLading: spec.bl,
		TotalVolume:  volume,
		MonthlyPrice: decimal.NewFromInt(spec.price),
		Since:        g.daysAgo(spec.sinceAgo),
	})
	if err != nil {
		return nil, fmt.Errorf("adding container %s: %w", spec.code, err)
	}
	g.result.Containers++

	if len(spec.items) == 0 {
		return c, nil
	}
	inputs := make([]store.ItemInput, 0, len(spec.items))
	for _, s := range spec.items {
		p, ok := product(s.sku)
		if !ok {
			return nil, fmt.Errorf("unknown product %s", s.sku)
		}
		inputs = append(inputs, itemInput(p, s.quantity, s.location))
	}
	items, err := g.target.AddItems(ctx, c.ID, inputs)
	if err != nil {
		return nil, fmt.Errorf("adding items to %s: %w", spec.code, err)
	}
	g.result.Items += len(items)
	c.Items = items
	return c, nil
}

func (g *Generator) generateMovements(ctx context.Context, containers map[string]*models.Container) error {
	temu := containers["TEMU8834521"]
	exits := []struct {
		sku      string
		quantity int
		ago      int
		notes    string
	}{
		{"ELEC001", 20, 6, "Saida para cliente SP"},
		{"ELEC002", 50, 3, "Saida para e-commerce"},
	}
	for _, e := range exits {
		_, err := g.target.AddEvent(ctx, store.EventInput{
			Type:        models.EventTypeExit,
			ContainerID: temu.ID,
			Date:        g.daysAgo(e.ago),
			Items:       []store.EventItemInput{{SKU: e.sku, Quantity: e.quantity}},
			Notes:       e.notes,
			CreatedBy:   "Operador",
		})
		if err != nil {
			return fmt.Errorf("recording exit of %s: %w", e.sku, err)
		}
		g.result.Events++
	}

	cmau := containers["CMAU3754293"]
	for _, sku := range []string{"IT9528", "IF2011"} {
		p, _ := product(sku)
		_, err := g.target.AddMeasurement(ctx, store.MeasurementInput{
			ContainerID: cmau.ID,
			SKU:         sku,
			Date:        g.daysAgo(1),
			Length:      p.Length,
			Width:       p.Width,
			Height:      p.Height,
			Weight:      p.Weight,
			Notes:       "Medicao mensal",
		})
		if err != nil {
			return fmt.Errorf("recording measurement of %s: %w", sku, err)
		}
		g.result.Measurements++
	}
	return nil
}

func (g *Generator) generateInvoices(ctx context.Context) error {
	lastMonth := g.cfg.Reference.AddDate(0, -1, 0)
	invoices := []struct {
		client     string
		container  string
		period     time.Time
		storage    int64
		handling   int64
		additional int64
		status     models.InvoiceStatus
		due        time.Time
		paidAgo    int
	}{
		{"IMPULSE FITNESS BRASIL", "CMAU3754293", lastMonth, 2800, 350, 50, models.InvoiceStatusPaid, g.daysAgo(10), 12},
		{"TECH IMPORTS LTDA", "TEMU8834521", lastMonth, 2500, 200, 100, models.InvoiceStatusPaid, g.daysAgo(10), 11},
		{"IMPULSE FITNESS BRASIL", "CMAU3754293", g.cfg.Reference, 2800, 350, 50, models.InvoiceStatusPending, g.daysAgo(-20), 0},
		{"GLOBAL TRADE CO", "MSKU9912345", g.cfg.Reference, 1600, 150, 50, models.InvoiceStatusOverdue, g.daysAgo(5), 0},
	}

	for _, in := range invoices {
		client := g.clients[in.client]
		inv, err := g.target.AddInvoice(ctx, store.InvoiceInput{
			ClientID:         client.ID,
			Period:           util.BillingPeriod(in.period),
			Containers:       []string{in.container},
			StorageAmount:    decimal.NewFromInt(in.storage),
			HandlingAmount:   decimal.NewFromInt(in.handling),
			AdditionalAmount: decimal.NewFromInt(in.additional),
			Status:           in.status,
			DueDate:          util.StartOfDay(in.due),
		})
		if err != nil {
			return fmt.Errorf("adding invoice for %s: %w", in.client, err)
		}
		if in.status == models.InvoiceStatusPaid {
			paid := g.daysAgo(in.paidAgo)
			if _, err := g.target.UpdateInvoice(ctx, inv.ID, store.InvoicePatch{PaidDate: &paid}); err != nil {
				return fmt.Errorf("dating payment of %s: %w", inv.ID, err)
			}
		}
		g.result.Invoices++
	}
	return nil
}

// generateRandomContainer stores one to three catalogue products for a
// random demo client.
func (g *Generator) generateRandomContainer(ctx context.Context) error {
	spec := Clients[g.rng.Intn(len(Clients))]
	typ := models.ContainerTypes[g.rng.Intn(len(models.ContainerTypes))]
	code := fmt.Sprintf("%s%07d", OwnerPrefixes[g.rng.Intn(len(OwnerPrefixes))], g.rng.Intn(10_000_000))

	var items []stock
	for _, i := range g.rng.Perm(len(Products))[:1+g.rng.Intn(3)] {
		items = append(items, stock{
			sku:      Products[i].SKU,
			quantity: 1 + g.rng.Intn(20),
			location: fmt.Sprintf("%s-%02d", Aisles[g.rng.Intn(len(Aisles))], 1+g.rng.Intn(20)),
		})
	}

	_, err := g.addContainer(ctx, containerSpec{
		code:     code,
		client:   spec.Name,
		typ:      typ.Type,
		bl:       fmt.Sprintf("%02dBRZ%07d", 1+g.rng.Intn(12), g.rng.Intn(10_000_000)),
		status:   models.ContainerStatusActive,
		sinceAgo: 1 + g.rng.Intn(90),
		price:    int64(1500 + 100*g.rng.Intn(20)),
		items:    items,
	})
	return err
}

func product(sku string) (Product, bool) {
	for _, p := range Products {
		if p.SKU == sku {
			return p, true
		}
	}
	return Product{}, false
}

func itemInput(p Product, quantity int, location string) store.ItemInput {
	return store.ItemInput{
		SKU:           p.SKU,
		Description:   p.Description,
		DescriptionPt: p.Description,
		Quantity:      quantity,
		UnitWeight:    p.Weight,
		Length:        p.Length,
		Width:         p.Width,
		Height:        p.Height,
		NCM:           p.NCM,
		Origin:        "CHINA",
		Brand:         p.Brand,
		Model:         p.SKU,
		UnitPrice:     p.Price,
		Location:      location,
	}
}
