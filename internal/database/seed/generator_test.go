package seed

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vectrastorage/vectra/internal/config"
	"github.com/vectrastorage/vectra/internal/database"
	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/services/warehouse"
	"github.com/vectrastorage/vectra/internal/util"
)

var reference = time.Date(2024, 11, 26, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) *warehouse.Service {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewMigratedInMemory(ctx)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc, err := warehouse.NewService(ctx, db.DB, config.Default(),
		warehouse.WithClock(util.NewFixedClock(reference)),
	)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestGenerate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	res, err := NewGenerator(svc, DefaultConfig(reference)).Generate(ctx)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := Result{Clients: 3, Containers: 5, Events: 2, Measurements: 2, Invoices: 4}
	got := *res
	got.Items = 0
	if got != want {
		t.Errorf("result = %+v, want %+v", got, want)
	}
	if res.Items < 7 {
		t.Errorf("items = %d, want at least 7", res.Items)
	}

	temu, err := svc.ContainerByCode("TEMU8834521")
	if err != nil {
		t.Fatal(err)
	}
	remaining := map[string]int{}
	for _, item := range temu.Items {
		remaining[item.SKU] = item.CurrentQuantity
	}
	if remaining["ELEC001"] != 30 || remaining["ELEC002"] != 150 {
		t.Errorf("remaining stock = %v", remaining)
	}

	cmau, err := svc.ContainerByCode("CMAU3754293")
	if err != nil {
		t.Fatal(err)
	}
	if cmau.ClientName != "IMPULSE FITNESS BRASIL" || len(cmau.Items) != 3 {
		t.Errorf("CMAU3754293 = %+v", cmau)
	}

	st := svc.Stats()
	if st.OverdueInvoices != 1 || !st.OverdueAmount.Equal(decimal.NewFromInt(1800)) {
		t.Errorf("overdue = %d / %s", st.OverdueInvoices, st.OverdueAmount)
	}
	if st.PendingInvoices != 1 || !st.PendingAmount.Equal(decimal.NewFromInt(3200)) {
		t.Errorf("pending = %d / %s", st.PendingInvoices, st.PendingAmount)
	}

	for _, inv := range svc.Invoices() {
		if inv.Status == models.InvoiceStatusPaid && (inv.PaidDate == nil || !inv.PaidDate.Before(reference)) {
			t.Errorf("invoice %s paid date = %v", inv.ID, inv.PaidDate)
		}
	}

	empty, err := svc.Empty(ctx)
	if err != nil || empty {
		t.Errorf("Empty() = %v, %v after seeding", empty, err)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	codes := func() []string {
		svc := newService(t)
		cfg := DefaultConfig(reference)
		cfg.ExtraContainers = 4
		if _, err := NewGenerator(svc, cfg).Generate(context.Background()); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		var out []string
		for _, c := range svc.Containers() {
			out = append(out, c.Code)
		}
		return out
	}

	first, second := codes(), codes()
	if len(first) != 7 || len(second) != 7 {
		t.Fatalf("containers = %d and %d, want 7", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("container %d: %s != %s", i, first[i], second[i])
		}
	}
}

func TestCatalogueIsConsistent(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Products {
		if seen[p.SKU] {
			t.Errorf("duplicate SKU %s", p.SKU)
		}
		seen[p.SKU] = true
		if p.Weight <= 0 || p.Length <= 0 || p.Width <= 0 || p.Height <= 0 {
			t.Errorf("product %s has non-positive measures", p.SKU)
		}
	}
	for _, spec := range demoContainers {
		for _, s := range spec.items {
			if _, ok := product(s.sku); !ok {
				t.Errorf("container %s references unknown SKU %s", spec.code, s.sku)
			}
		}
	}
}
