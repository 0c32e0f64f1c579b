package warehouse

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vectrastorage/vectra/internal/config"
	"github.com/vectrastorage/vectra/internal/database"
	"github.com/vectrastorage/vectra/internal/export"
	"github.com/vectrastorage/vectra/internal/labels"
	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/store"
	"github.com/vectrastorage/vectra/internal/util"
)

var testNow = time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	svc   *Service
	db    *database.DB
	cfg   *config.Config
	clock *util.FixedClock
	dir   string
}

func setupService(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewMigratedInMemory(ctx)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:    db,
		cfg:   config.Default(),
		clock: util.NewFixedClock(testNow),
		dir:   t.TempDir(),
	}
	env.svc, err = NewService(ctx, db.DB, env.cfg,
		WithClock(env.clock),
		WithIDSource(util.NewSequenceIDs("id")),
		WithConfigPath(filepath.Join(env.dir, "vectra.toml")),
		WithExportDir(env.dir),
		WithLabelsDir(env.dir),
	)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return env
}

// seedRack registers a client with one container holding two racks
// (19.8 m3, 570 kg).
func seedRack(t *testing.T, svc *Service) (*models.Client, *models.Container) {
	t.Helper()
	ctx := context.Background()

	client, err := svc.AddClient(ctx, store.ClientInput{Name: "IMPULSE FITNESS BRASIL", Address: "Av. Ana Costa, 100"})
	if err != nil {
		t.Fatalf("AddClient() error = %v", err)
	}
	c, err := svc.AddContainer(ctx, store.ContainerInput{
		Code:         "CMAU3754293",
		ClientID:     client.ID,
		Type:         "Dry Box 40' HC",
		TotalVolume:  76.3,
		MonthlyPrice: decimal.NewFromInt(3200),
	})
	if err != nil {
		t.Fatalf("AddContainer() error = %v", err)
	}
	_, err = svc.AddItems(ctx, c.ID, []store.ItemInput{{
		SKU:           "IT9528",
		DescriptionPt: "RACK CROSSFIT",
		Quantity:      2,
		UnitWeight:    285,
		Length:        220,
		Width:         180,
		Height:        250,
		Location:      "A1-01",
	}})
	if err != nil {
		t.Fatalf("AddItems() error = %v", err)
	}
	c, err = svc.Container(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	return client, c
}

func TestService_PersistsMutations(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	_, c := seedRack(t, env.svc)

	if _, err := env.svc.AddEvent(ctx, store.EventInput{
		Type:        models.EventTypeExit,
		ContainerID: c.ID,
		Items:       []store.EventItemInput{{SKU: "IT9528", Quantity: 1}},
	}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	reloaded, err := NewService(ctx, env.db.DB, env.cfg, WithClock(env.clock))
	if err != nil {
		t.Fatalf("NewService() reload error = %v", err)
	}

	containers := reloaded.Containers()
	if len(containers) != 1 || len(containers[0].Items) != 1 {
		t.Fatalf("reloaded containers = %+v", containers)
	}
	if got := containers[0].Items[0].CurrentQuantity; got != 1 {
		t.Errorf("CurrentQuantity = %d, want 1", got)
	}
	if len(reloaded.Events()) != 1 || len(reloaded.Clients()) != 1 {
		t.Errorf("events = %d, clients = %d", len(reloaded.Events()), len(reloaded.Clients()))
	}
	if got, want := len(reloaded.AuditLog(models.AuditFilter{})), len(env.svc.AuditLog(models.AuditFilter{})); got != want {
		t.Errorf("audit entries = %d, want %d", got, want)
	}

	empty, err := reloaded.Empty(ctx)
	if err != nil || empty {
		t.Errorf("Empty() = %v, %v", empty, err)
	}
}

func TestService_FailedSaveRollsBack(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	seedRack(t, env.svc)
	auditBefore := len(env.svc.AuditLog(models.AuditFilter{}))

	if err := env.db.Close(); err != nil {
		t.Fatal(err)
	}

	_, err := env.svc.AddClient(ctx, store.ClientInput{Name: "TECH IMPORTS LTDA"})
	if err == nil {
		t.Fatal("AddClient() on closed database should fail")
	}
	if got := len(env.svc.Clients()); got != 1 {
		t.Errorf("clients = %d, want 1 after rollback", got)
	}
	if got := len(env.svc.AuditLog(models.AuditFilter{})); got != auditBefore {
		t.Errorf("audit entries = %d, want %d", got, auditBefore)
	}
}

func TestService_ValidationLeavesStoreUntouched(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	_, err := env.svc.AddContainer(ctx, store.ContainerInput{Code: "  "})
	if !models.IsValidation(err) {
		t.Fatalf("AddContainer() error = %v, want validation", err)
	}
	if err := env.svc.DeleteContainer(ctx, "missing"); !models.IsNotFound(err) {
		t.Errorf("DeleteContainer() error = %v, want not found", err)
	}
	if got := len(env.svc.AuditLog(models.AuditFilter{})); got != 0 {
		t.Errorf("audit entries = %d, want 0", got)
	}
}

func TestService_ImportPackingList(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		body       string
		strict     bool
		wantErr    bool
		wantItems  int
		wantWarned int
	}{
		{
			name:      "template",
			file:      "packing.csv",
			body:      "sku,quantity,unitWeight,length,width,height\nA1,2,10,10,10,10\nB2,1,5,20,20,20\n",
			wantItems: 2,
		},
		{
			name:       "tolerant bad quantity",
			file:       "packing.csv",
			body:       "sku,quantity\nA1,abc\n",
			wantItems:  1,
			wantWarned: 1,
		},
		{
			name:    "strict bad quantity",
			file:    "packing.csv",
			body:    "sku,quantity\nA1,abc\n",
			strict:  true,
			wantErr: true,
		},
		{
			name:    "missing sku",
			file:    "packing.txt",
			body:    "sku,quantity\n,2\n",
			wantErr: true,
		},
		{
			name:    "excel",
			file:    "packing.xlsx",
			body:    "binary",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupService(t)

			res, err := env.svc.ImportPackingList(context.Background(), ImportInput{
				FileName:      tt.file,
				Reader:        strings.NewReader(tt.body),
				ContainerCode: "TEMU8834521",
				ClientName:    "TECH IMPORTS LTDA",
				ContainerType: "Dry Box 20'",
				Strict:        tt.strict,
			})
			if res == nil || res.Parse == nil {
				t.Fatal("ImportPackingList() returned no parse result")
			}

			if tt.wantErr {
				var importErr *models.ImportError
				if !errors.As(err, &importErr) {
					t.Fatalf("error = %v, want ImportError", err)
				}
				if res.Container != nil || len(env.svc.Containers()) != 0 {
					t.Error("rejected file should store nothing")
				}
				return
			}

			if err != nil {
				t.Fatalf("ImportPackingList() error = %v", err)
			}
			if res.Container == nil || len(res.Container.Items) != tt.wantItems {
				t.Fatalf("container = %+v", res.Container)
			}
			if res.Container.TotalVolume != 33.2 {
				t.Errorf("TotalVolume = %v, want 33.2", res.Container.TotalVolume)
			}
			if len(res.Parse.Warnings) != tt.wantWarned {
				t.Errorf("warnings = %v", res.Parse.Warnings)
			}
			if _, err := env.svc.ContainerByCode("temu8834521"); err != nil {
				t.Errorf("ContainerByCode() error = %v", err)
			}
		})
	}
}

func TestService_PrintLabelWithoutPrinter(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	_, c := seedRack(t, env.svc)

	l, err := env.svc.GenerateLabel(ctx, store.LabelInput{ContainerID: c.ID, ItemID: c.Items[0].ID})
	if err != nil {
		t.Fatalf("GenerateLabel() error = %v", err)
	}

	res, err := env.svc.PrintLabel(ctx, l.ID)
	if !errors.Is(err, labels.ErrNoPrinter) {
		t.Fatalf("PrintLabel() error = %v, want ErrNoPrinter", err)
	}
	if res == nil || !strings.HasPrefix(res.ZPL, "^XA") || !strings.Contains(res.ZPL, "IT9528") {
		t.Fatalf("result = %+v", res)
	}
	if res.Printed || res.Label.Printed() {
		t.Error("label should not be marked printed")
	}

	zpl, err := env.svc.LabelZPL(l.ID)
	if err != nil || zpl != res.ZPL {
		t.Errorf("LabelZPL() = %q, %v", zpl, err)
	}
}

func TestService_PrintLabelToNetworkPrinter(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	_, c := seedRack(t, env.svc)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			received <- ""
			return
		}
		defer conn.Close()
		body, _ := io.ReadAll(conn)
		received <- string(body)
	}()

	settings := env.svc.Settings()
	settings.Labels.PrinterAddress = ln.Addr().String()
	if err := env.svc.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	l, err := env.svc.GenerateLabel(ctx, store.LabelInput{
		Type:        models.LabelTypeShipping,
		ContainerID: c.ID,
		ItemID:      c.Items[0].ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := env.svc.PrintLabel(ctx, l.ID)
	if err != nil {
		t.Fatalf("PrintLabel() error = %v", err)
	}
	if !res.Printed || !res.Label.Printed() || res.Label.PrintedBy != "Admin" {
		t.Errorf("result = %+v", res)
	}

	select {
	case body := <-received:
		if body != res.ZPL || !strings.Contains(body, "EXPEDICAO") || !strings.Contains(body, "Av. Ana Costa") {
			t.Errorf("printer received %q", body)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("printer received nothing")
	}
}

func TestService_LabelFiles(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	_, c := seedRack(t, env.svc)

	if _, err := env.svc.SaveLabelSheet(nil); !models.IsValidation(err) {
		t.Errorf("SaveLabelSheet() with no labels error = %v", err)
	}
	if _, err := env.svc.GenerateLabel(ctx, store.LabelInput{ContainerID: c.ID, ItemID: c.Items[0].ID}); err != nil {
		t.Fatal(err)
	}

	pdfPath, err := env.svc.SaveLabelSheet(nil)
	if err != nil {
		t.Fatalf("SaveLabelSheet() error = %v", err)
	}
	if filepath.Base(pdfPath) != "etiquetas_2024-11-20.pdf" {
		t.Errorf("sheet path = %s", pdfPath)
	}
	body, err := os.ReadFile(pdfPath)
	if err != nil || !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Errorf("sheet is not a PDF: %v", err)
	}

	zplPath, err := env.svc.SaveLabelZPL(nil)
	if err != nil {
		t.Fatalf("SaveLabelZPL() error = %v", err)
	}
	body, err = os.ReadFile(zplPath)
	if err != nil || !strings.Contains(string(body), "IT9528") {
		t.Errorf("zpl file = %q, %v", body, err)
	}

	if _, err := env.svc.SaveLabelZPL([]string{"missing"}); !models.IsNotFound(err) {
		t.Errorf("SaveLabelZPL(missing) error = %v", err)
	}
}

func TestService_GenerateInvoices(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	client, _ := seedRack(t, env.svc)
	if _, err := env.svc.AddClient(ctx, store.ClientInput{Name: "GLOBAL TRADE CO"}); err != nil {
		t.Fatal(err)
	}

	quotes, err := env.svc.QuoteClient(client.ID)
	if err != nil || len(quotes) != 1 {
		t.Fatalf("QuoteClient() = %+v, %v", quotes, err)
	}

	run, err := env.svc.GenerateInvoices(ctx)
	if err != nil {
		t.Fatalf("GenerateInvoices() error = %v", err)
	}
	if len(run.Invoices) != 1 || len(run.Skipped) != 1 || run.Skipped[0] != "GLOBAL TRADE CO" {
		t.Fatalf("run = %+v", run)
	}

	inv := run.Invoices[0]
	if inv.ID != "FAT-2024-001" || inv.Period != "Nov/2024" {
		t.Errorf("invoice = %+v", inv)
	}
	if !inv.TotalAmount.Equal(decimal.RequireFromString("1768.50")) {
		t.Errorf("TotalAmount = %s, want 1768.50", inv.TotalAmount)
	}
	if !inv.TotalAmount.Equal(quotes[0].Total()) {
		t.Errorf("TotalAmount = %s, quote = %s", inv.TotalAmount, quotes[0].Total())
	}
	if want := time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC); !inv.DueDate.Equal(want) {
		t.Errorf("DueDate = %v, want %v", inv.DueDate, want)
	}

	if _, err := env.svc.GenerateInvoice(ctx, run.Invoices[0].ClientID); err != nil {
		t.Errorf("GenerateInvoice() error = %v", err)
	}
	if got := len(env.svc.InvoicesByClient(client.ID)); got != 2 {
		t.Errorf("invoices for client = %d, want 2", got)
	}

	doc, err := env.svc.InvoiceDocument("FAT-2024-001")
	if err != nil || !strings.Contains(doc, "TOTAL: R$") {
		t.Errorf("InvoiceDocument() = %q, %v", doc, err)
	}
	path, err := env.svc.SaveInvoiceDocument("FAT-2024-001")
	if err != nil || filepath.Base(path) != "fatura_FAT-2024-001.txt" {
		t.Errorf("SaveInvoiceDocument() = %s, %v", path, err)
	}
}

func TestService_GenerateInvoiceWithoutContainers(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	client, err := env.svc.AddClient(ctx, store.ClientInput{Name: "GLOBAL TRADE CO"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.GenerateInvoice(ctx, client.ID); !models.IsValidation(err) {
		t.Errorf("GenerateInvoice() error = %v, want validation", err)
	}
	if _, err := env.svc.GenerateInvoice(ctx, "missing"); !models.IsNotFound(err) {
		t.Errorf("GenerateInvoice(missing) error = %v, want not found", err)
	}
	if got := len(env.svc.Invoices()); got != 0 {
		t.Errorf("invoices = %d, want 0", got)
	}
}

func TestService_SweepOverdueAndPay(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	due, err := env.svc.AddInvoice(ctx, store.InvoiceInput{
		ClientName:       "TECH IMPORTS LTDA",
		StorageAmount:    decimal.NewFromInt(2800),
		HandlingAmount:   decimal.Zero,
		AdditionalAmount: decimal.Zero,
		DueDate:          testNow.AddDate(0, 0, -1),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.AddInvoice(ctx, store.InvoiceInput{
		ClientName:       "TECH IMPORTS LTDA",
		StorageAmount:    decimal.NewFromInt(2800),
		HandlingAmount:   decimal.Zero,
		AdditionalAmount: decimal.Zero,
		DueDate:          testNow.AddDate(0, 0, 10),
	}); err != nil {
		t.Fatal(err)
	}

	n, err := env.svc.SweepOverdue(ctx)
	if err != nil || n != 1 {
		t.Fatalf("SweepOverdue() = %d, %v; want 1", n, err)
	}
	inv, _ := env.svc.Invoice(due.ID)
	if inv.Status != models.InvoiceStatusOverdue {
		t.Errorf("Status = %s, want overdue", inv.Status)
	}

	paid, err := env.svc.MarkInvoicePaid(ctx, due.ID)
	if err != nil {
		t.Fatal(err)
	}
	if paid.Status != models.InvoiceStatusPaid || paid.PaidDate == nil || !paid.PaidDate.Equal(testNow) {
		t.Errorf("paid invoice = %+v", paid)
	}
	if st := env.svc.Stats(); st.PendingInvoices != 1 || st.OverdueInvoices != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestService_Export(t *testing.T) {
	env := setupService(t)
	seedRack(t, env.svc)

	path, err := env.svc.Export(export.ReportOccupation, "")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if want := filepath.Join(env.dir, export.FileName(export.ReportOccupation, testNow)); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "CMAU3754293") {
		t.Errorf("report = %q", body)
	}

	custom := filepath.Join(env.dir, "custom.csv")
	if path, err := env.svc.Export(export.ReportAudit, custom); err != nil || path != custom {
		t.Errorf("Export(custom) = %s, %v", path, err)
	}
}

func TestService_UpdateSettings(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	settings := env.svc.Settings()
	settings.Company.Name = "Porto Seco Santos"
	settings.Pricing.StoragePerM3 = 90
	if err := env.svc.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	cfg, _, err := config.Load(filepath.Join(env.dir, "vectra.toml"), false)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if cfg.Company.Name != "Porto Seco Santos" || cfg.Pricing.StoragePerM3 != 90 {
		t.Errorf("saved config = %+v", cfg.Settings())
	}
	logs := env.svc.AuditLog(models.AuditFilter{EntityType: models.EntitySettings})
	if len(logs) != 1 {
		t.Errorf("settings audit entries = %d, want 1", len(logs))
	}

	settings.Notifications.MeasurementDay = 31
	if err := env.svc.UpdateSettings(ctx, settings); !models.IsValidation(err) {
		t.Errorf("UpdateSettings(invalid) error = %v, want validation", err)
	}
	if got := env.svc.Settings().Notifications.MeasurementDay; got != 25 {
		t.Errorf("MeasurementDay = %d, want 25", got)
	}
}

func TestService_Overview(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	_, c := seedRack(t, env.svc)

	for i := 0; i < 7; i++ {
		if _, err := env.svc.AddEvent(ctx, store.EventInput{
			Type:        models.EventTypeEntry,
			ContainerID: c.ID,
			Items:       []store.EventItemInput{{SKU: "IT9528", Quantity: 1}},
		}); err != nil {
			t.Fatal(err)
		}
	}

	ov := env.svc.Overview()
	if len(ov.RecentEvents) != recentLimit || len(ov.RecentAudit) != recentLimit {
		t.Errorf("recent events = %d, audit = %d", len(ov.RecentEvents), len(ov.RecentAudit))
	}
	if want := time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC); !ov.NextMeasurement.Equal(want) {
		t.Errorf("NextMeasurement = %v, want %v", ov.NextMeasurement, want)
	}
	if ov.DaysToMeasure != 5 {
		t.Errorf("DaysToMeasure = %d, want 5", ov.DaysToMeasure)
	}
	if ov.Stats.ActiveContainers != 1 || ov.Stats.Clients != 1 {
		t.Errorf("stats = %+v", ov.Stats)
	}

	if found := env.svc.SearchSKU("it95"); len(found) != 1 || found[0].ContainerCode != "CMAU3754293" {
		t.Errorf("SearchSKU() = %+v", found)
	}
}
