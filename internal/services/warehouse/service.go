// Package warehouse provides the application service over the warehouse
// store. It serialises access to the store and writes every successful
// mutation through to SQLite.
package warehouse

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vectrastorage/vectra/internal/billing"
	"github.com/vectrastorage/vectra/internal/config"
	"github.com/vectrastorage/vectra/internal/export"
	"github.com/vectrastorage/vectra/internal/labels"
	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/packinglist"
	"github.com/vectrastorage/vectra/internal/repository"
	"github.com/vectrastorage/vectra/internal/store"
	"github.com/vectrastorage/vectra/internal/util"
)

// recentLimit bounds the dashboard's event and audit lists.
const recentLimit = 5

// Service provides warehouse operations backed by the database.
type Service struct {
	mu    sync.RWMutex
	store *store.Store

	repo    *repository.SnapshotRepository
	cfg     *config.Config
	cfgPath string

	clock     util.Clock
	ids       util.IDSource
	exportDir string
	labelsDir string
}

// Option configures a Service.
type Option func(*Service)

// WithConfigPath sets the file settings are saved to. Without it settings
// changes live only as long as the process.
func WithConfigPath(path string) Option {
	return func(s *Service) { s.cfgPath = path }
}

// WithClock sets the time source.
func WithClock(c util.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithIDSource sets the identifier source.
func WithIDSource(ids util.IDSource) Option {
	return func(s *Service) { s.ids = ids }
}

// WithExportDir sets where reports and invoice documents are written.
func WithExportDir(dir string) Option {
	return func(s *Service) { s.exportDir = dir }
}

// WithLabelsDir sets where label sheets and ZPL files are written.
func WithLabelsDir(dir string) Option {
	return func(s *Service) { s.labelsDir = dir }
}

// NewService loads the stored warehouse and settings from cfg.
func NewService(ctx context.Context, db *sql.DB, cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{
		repo:  repository.NewSnapshotRepository(db),
		cfg:   cfg,
		clock: util.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading warehouse: %w", err)
	}
	snap.Settings = cfg.Settings()

	st, err := store.Restore(snap, s.storeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("restoring warehouse: %w", err)
	}
	s.store = st

	slog.Info("warehouse loaded",
		"clients", len(snap.Clients),
		"containers", len(snap.Containers),
		"invoices", len(snap.Invoices),
		"audit", len(snap.AuditLogs),
	)
	return s, nil
}

func (s *Service) storeOptions() []store.Option {
	opts := []store.Option{
		store.WithClock(s.clock),
		store.WithOperator(s.cfg.Display.Operator),
	}
	if s.ids != nil {
		opts = append(opts, store.WithIDSource(s.ids))
	}
	return opts
}

// mutate runs fn against the store and saves the result. When fn or the
// save fails the store is put back to its state before fn.
func (s *Service) mutate(ctx context.Context, fn func(*store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutateLocked(ctx, fn)
}

func (s *Service) mutateLocked(ctx context.Context, fn func(*store.Store) error) error {
	before := s.store.Snapshot()
	if err := fn(s.store); err != nil {
		if rerr := s.rollback(before); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}

	if err := s.repo.Save(ctx, s.store.Snapshot()); err != nil {
		saveErr := fmt.Errorf("saving warehouse: %w", err)
		if rerr := s.rollback(before); rerr != nil {
			return errors.Join(saveErr, rerr)
		}
		slog.Error("warehouse change rolled back", "error", err)
		return saveErr
	}
	return nil
}

func (s *Service) rollback(snap *store.Snapshot) error {
	restored, err := store.Restore(snap, s.storeOptions()...)
	if err != nil {
		return fmt.Errorf("rolling back warehouse: %w", err)
	}
	s.store = restored
	return nil
}

func apply[T any](ctx context.Context, s *Service, fn func(*store.Store) (T, error)) (T, error) {
	var out T
	err := s.mutate(ctx, func(st *store.Store) error {
		var err error
		out, err = fn(st)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func read[T any](s *Service, fn func(*store.Store) T) T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.store)
}

// Snapshot returns a deep copy of the whole warehouse.
func (s *Service) Snapshot() *store.Snapshot {
	return read(s, (*store.Store).Snapshot)
}

// Operator returns the name recorded in audit entries.
func (s *Service) Operator() string {
	return read(s, (*store.Store).Operator)
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// Empty reports whether the database holds no clients, containers or
// invoices.
func (s *Service) Empty(ctx context.Context) (bool, error) {
	return s.repo.Empty(ctx)
}

// ============================================================================
// SETTINGS
// ============================================================================

// Settings returns the current settings.
func (s *Service) Settings() config.Settings {
	return read(s, (*store.Store).Settings)
}

// UpdateSettings validates and applies settings, then writes them to the
// config file.
func (s *Service) UpdateSettings(ctx context.Context, settings config.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutateLocked(ctx, func(st *store.Store) error {
		return st.UpdateSettings(settings)
	})
	if err != nil {
		return err
	}

	s.cfg.ApplySettings(settings)
	if s.cfgPath == "" {
		return nil
	}
	if err := config.Save(s.cfg, s.cfgPath); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	slog.Info("settings saved", "path", s.cfgPath)
	return nil
}

// ============================================================================
// CLIENTS
// ============================================================================

// AddClient registers a client.
func (s *Service) AddClient(ctx context.Context, input store.ClientInput) (*models.Client, error) {
	return apply(ctx, s, func(st *store.Store) (*models.Client, error) {
		return st.AddClient(input)
	})
}

// UpdateClient changes a client.
func (s *Service) UpdateClient(ctx context.Context, id string, patch store.ClientPatch) (*models.Client, error) {
	return apply(ctx, s, func(st *store.Store) (*models.Client, error) {
		return st.UpdateClient(id, patch)
	})
}

// Client returns a client by id.
func (s *Service) Client(id string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Client(id)
}

// Clients returns every client.
func (s *Service) Clients() []*models.Client {
	return read(s, (*store.Store).Clients)
}

// ============================================================================
// CONTAINERS
// ============================================================================

// AddContainer registers a container.
func (s *Service) AddContainer(ctx context.Context, input store.ContainerInput) (*models.Container, error) {
	return apply(ctx, s, func(st *store.Store) (*models.Container, error) {
		return st.AddContainer(input)
	})
}

// UpdateContainer changes a container.
func (s *Service) UpdateContainer(ctx context.Context, id string, patch store.ContainerPatch) (*models.Container, error) {
	return apply(ctx, s, func(st *store.Store) (*models.Container, error) {
		return st.UpdateContainer(id, patch)
	})
}

// DeleteContainer removes a container and its items.
func (s *Service) DeleteContainer(ctx context.Context, id string) error {
	return s.mutate(ctx, func(st *store.Store) error {
		return st.DeleteContainer(id)
	})
}

// Container returns a container by id.
func (s *Service) Container(id string) (*models.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Container(id)
}

// ContainerByCode returns a container by code, ignoring case.
func (s *Service) ContainerByCode(code string) (*models.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ContainerByCode(code)
}

// Containers returns every container.
func (s *Service) Containers() []*models.Container {
	return read(s, (*store.Store).Containers)
}

// ============================================================================
// ITEMS
// ============================================================================

// AddItems appends items to a container.
func (s *Service) AddItems(ctx context.Context, containerID string, items []store.ItemInput) ([]*models.PackingItem, error) {
	return apply(ctx, s, func(st *store.Store) ([]*models.PackingItem, error) {
		return st.AddItemsToContainer(containerID, items)
	})
}

// UpdateItem changes one item of a container.
func (s *Service) UpdateItem(ctx context.Context, containerID, itemID string, patch store.ItemPatch) (*models.PackingItem, error) {
	return apply(ctx, s, func(st *store.Store) (*models.PackingItem, error) {
		return st.UpdateItem(containerID, itemID, patch)
	})
}

// RemoveItem removes one item of a container.
func (s *Service) RemoveItem(ctx context.Context, containerID, itemID string) error {
	return s.mutate(ctx, func(st *store.Store) error {
		return st.RemoveItem(containerID, itemID)
	})
}

// SearchSKU finds items by partial SKU across every container.
func (s *Service) SearchSKU(query string) []models.ItemLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ItemsBySKU(query)
}

// ImportPackingList parses a packing list file and adds its items to the
// container with the given code, creating it when needed. Nothing is
// stored when the file has row errors; the result still carries them.
func (s *Service) ImportPackingList(ctx context.Context, in ImportInput) (*ImportResult, error) {
	mode := packinglist.Tolerant
	if in.Strict {
		mode = packinglist.Strict
	}
	res := packinglist.Parser{Mode: mode}.ParseFile(in.FileName, in.Reader)
	out := &ImportResult{Parse: res}
	if err := res.Err(); err != nil {
		slog.Warn("packing list rejected",
			"file", in.FileName,
			"errors", len(res.Errors),
			"mode", mode.String(),
		)
		return out, err
	}

	upload := store.UploadInput{
		ContainerCode: in.ContainerCode,
		ClientID:      in.ClientID,
		ClientName:    in.ClientName,
		ContainerType: in.ContainerType,
		BillOfLading:  in.BillOfLading,
		FileName:      in.FileName,
		Items:         itemInputs(res.Items),
	}
	c, err := apply(ctx, s, func(st *store.Store) (*models.Container, error) {
		return st.ProcessPackingListUpload(upload)
	})
	if err != nil {
		return out, err
	}
	out.Container = c

	slog.Info("packing list imported",
		"file", in.FileName,
		"container", c.Code,
		"items", len(res.Items),
		"warnings", len(res.Warnings),
	)
	return out, nil
}

func itemInputs(items []*models.PackingItem) []store.ItemInput {
	out := make([]store.ItemInput, len(items))
	for i, item := range items {
		out[i] = store.ItemInput{
			SKU:           item.SKU,
			Description:   item.Description,
			DescriptionPt: item.DescriptionPt,
			Quantity:      item.Quantity,
			UnitWeight:    item.UnitWeight,
			Length:        item.Length,
			Width:         item.Width,
			Height:        item.Height,
			NCM:           item.NCM,
			Origin:        item.Origin,
			Brand:         item.Brand,
			Model:         item.Model,
			UnitPrice:     item.UnitPrice,
			Location:      item.Location,
		}
	}
	return out
}

// ============================================================================
// MOVEMENTS
// ============================================================================

// AddEvent records an entry or exit and adjusts item quantities.
func (s *Service) AddEvent(ctx context.Context, input store.EventInput) (*models.Event, error) {
	return apply(ctx, s, func(st *store.Store) (*models.Event, error) {
		return st.AddEvent(input)
	})
}

// Events returns every movement, newest first.
func (s *Service) Events() []*models.Event {
	return read(s, (*store.Store).Events)
}

// EventsByContainer returns the movements of one container, newest first.
func (s *Service) EventsByContainer(containerID string) []*models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.EventsByContainer(containerID)
}

// AddMeasurement records a manual measurement.
func (s *Service) AddMeasurement(ctx context.Context, input store.MeasurementInput) (*models.Measurement, error) {
	return apply(ctx, s, func(st *store.Store) (*models.Measurement, error) {
		return st.AddMeasurement(input)
	})
}

// Measurements returns every measurement, newest first.
func (s *Service) Measurements() []*models.Measurement {
	return read(s, (*store.Store).Measurements)
}

// MeasurementsByContainer returns the measurements of one container.
func (s *Service) MeasurementsByContainer(containerID string) []*models.Measurement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.MeasurementsByContainer(containerID)
}

// ============================================================================
// INVOICES
// ============================================================================

// AddInvoice issues an invoice.
func (s *Service) AddInvoice(ctx context.Context, input store.InvoiceInput) (*models.Invoice, error) {
	return apply(ctx, s, func(st *store.Store) (*models.Invoice, error) {
		return st.AddInvoice(input)
	})
}

// UpdateInvoice changes an invoice.
func (s *Service) UpdateInvoice(ctx context.Context, id string, patch store.InvoicePatch) (*models.Invoice, error) {
	return apply(ctx, s, func(st *store.Store) (*models.Invoice, error) {
		return st.UpdateInvoice(id, patch)
	})
}

// MarkInvoicePaid sets an invoice to paid as of now.
func (s *Service) MarkInvoicePaid(ctx context.Context, id string) (*models.Invoice, error) {
	paid := models.InvoiceStatusPaid
	return s.UpdateInvoice(ctx, id, store.InvoicePatch{Status: &paid})
}

// Invoice returns an invoice by number.
func (s *Service) Invoice(id string) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Invoice(id)
}

// Invoices returns every invoice, newest first.
func (s *Service) Invoices() []*models.Invoice {
	return read(s, (*store.Store).Invoices)
}

// InvoicesByClient returns the invoices of one client.
func (s *Service) InvoicesByClient(clientID string) []*models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.InvoicesByClient(clientID)
}

// QuoteClient prices the active containers of a client at the current tariff.
func (s *Service) QuoteClient(clientID string) ([]billing.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.store.Client(clientID)
	if err != nil {
		return nil, err
	}
	return billing.QuoteClient(c.ID, c.Name, s.store.Containers(), s.store.Settings().Pricing), nil
}

// GenerateInvoice issues this month's invoice for a client from its quote.
func (s *Service) GenerateInvoice(ctx context.Context, clientID string) (*models.Invoice, error) {
	return apply(ctx, s, func(st *store.Store) (*models.Invoice, error) {
		c, err := st.Client(clientID)
		if err != nil {
			return nil, err
		}
		quotes := billing.QuoteClient(c.ID, c.Name, st.Containers(), st.Settings().Pricing)
		if len(quotes) == 0 {
			return nil, models.NewValidation("client", "cliente %s sem contêineres ativos", c.Name)
		}
		return st.AddInvoice(billing.Draft(c.ID, c.Name, quotes, s.clock.Now()))
	})
}

// GenerateInvoices issues one invoice per client with active containers and
// saves them together.
func (s *Service) GenerateInvoices(ctx context.Context) (*InvoiceRun, error) {
	run := &InvoiceRun{}
	err := s.mutate(ctx, func(st *store.Store) error {
		containers := st.Containers()
		pricing := st.Settings().Pricing
		now := s.clock.Now()
		for _, c := range st.Clients() {
			quotes := billing.QuoteClient(c.ID, c.Name, containers, pricing)
			if len(quotes) == 0 {
				run.Skipped = append(run.Skipped, c.Name)
				continue
			}
			inv, err := st.AddInvoice(billing.Draft(c.ID, c.Name, quotes, now))
			if err != nil {
				return fmt.Errorf("invoicing %s: %w", c.Name, err)
			}
			run.Invoices = append(run.Invoices, inv)
			run.Quotes = append(run.Quotes, quotes...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("invoices generated", "count", len(run.Invoices), "skipped", len(run.Skipped))
	return run, nil
}

// SweepOverdue marks pending invoices past their due date as overdue and
// returns how many changed.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	n, err := apply(ctx, s, func(st *store.Store) (int, error) {
		return st.MarkOverdue(s.clock.Now()), nil
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("invoices marked overdue", "count", n)
	}
	return n, nil
}

// InvoiceDocument renders the plain-text document of an invoice.
func (s *Service) InvoiceDocument(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, err := s.store.Invoice(id)
	if err != nil {
		return "", err
	}
	return billing.InvoiceText(inv, s.store.Settings().Company), nil
}

// SaveInvoiceDocument writes the invoice document to the export directory
// and returns its path.
func (s *Service) SaveInvoiceDocument(id string) (string, error) {
	text, err := s.InvoiceDocument(id)
	if err != nil {
		return "", err
	}
	inv, err := s.Invoice(id)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.exportDir, billing.InvoiceFileName(inv))
	if err := os.WriteFile(path, []byte(text), 0640); err != nil {
		return "", fmt.Errorf("writing invoice %s: %w", id, err)
	}
	return path, nil
}

// ============================================================================
// LABELS
// ============================================================================

// GenerateLabel records a label for one item.
func (s *Service) GenerateLabel(ctx context.Context, input store.LabelInput) (*models.Label, error) {
	return apply(ctx, s, func(st *store.Store) (*models.Label, error) {
		return st.GenerateLabel(input)
	})
}

// Labels returns every label, newest first.
func (s *Service) Labels() []*models.Label {
	return read(s, (*store.Store).Labels)
}

// LabelZPL renders a recorded label in its layout.
func (s *Service) LabelZPL(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, err := s.store.Label(id)
	if err != nil {
		return "", err
	}
	return s.renderZPL(l), nil
}

func (s *Service) renderZPL(l *models.Label) string {
	settings := s.store.Settings()
	d := labels.FromLabel(l)
	switch l.Type {
	case models.LabelTypeReturn:
		return labels.ReturnZPL(d, settings.Company.Address)
	case models.LabelTypeShipping:
		dest := labels.Destination{Name: l.ClientName}
		if c, err := s.store.Container(l.ContainerID); err == nil && c.ClientID != "" {
			if client, err := s.store.Client(c.ClientID); err == nil {
				dest.Address = client.Address
			}
		}
		return labels.ShippingZPL(d, dest, "")
	default:
		return labels.StorageZPL(d, settings.Labels)
	}
}

// PrintLabel sends a label to the configured printer and stamps it printed.
// When no printer is configured it returns labels.ErrNoPrinter together
// with the ZPL.
func (s *Service) PrintLabel(ctx context.Context, id string) (*PrintResult, error) {
	s.mu.RLock()
	l, err := s.store.Label(id)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	zpl := s.renderZPL(l)
	lc := s.store.Settings().Labels
	s.mu.RUnlock()

	printer := labels.NewPrinter(lc.PrinterAddress, lc.PrintTimeout())
	out := &PrintResult{Label: l, ZPL: zpl, Printer: printer.Address()}
	if err := printer.Print(ctx, zpl); err != nil {
		if !errors.Is(err, labels.ErrNoPrinter) {
			slog.Warn("label print failed", "label", id, "printer", printer.Address(), "error", err)
		}
		return out, fmt.Errorf("printing label %s: %w", l.SKU, err)
	}

	printed, err := apply(ctx, s, func(st *store.Store) (*models.Label, error) {
		return st.MarkLabelPrinted(id, "")
	})
	if err != nil {
		return out, err
	}
	out.Label = printed
	out.Printed = true
	return out, nil
}

// SaveLabelSheet renders labels onto an A4 PDF sheet in the labels
// directory. With no ids every unprinted label is used.
func (s *Service) SaveLabelSheet(ids []string) (string, error) {
	data, err := s.labelData(ids)
	if err != nil {
		return "", err
	}
	pdf, err := labels.SheetPDF(data, labels.DefaultSheetLayout())
	if err != nil {
		return "", fmt.Errorf("rendering label sheet: %w", err)
	}
	return s.writeLabelFile("etiquetas_"+s.clock.Now().Format(util.FileDateFormat)+".pdf", pdf)
}

// SaveLabelZPL writes the storage layout of labels back to back into a ZPL
// file in the labels directory. With no ids every unprinted label is used.
func (s *Service) SaveLabelZPL(ids []string) (string, error) {
	data, err := s.labelData(ids)
	if err != nil {
		return "", err
	}
	zpl := labels.BatchZPL(data, s.Settings().Labels)
	return s.writeLabelFile("etiquetas_"+s.clock.Now().Format(util.FileDateFormat)+".zpl", []byte(zpl))
}

func (s *Service) labelData(ids []string) ([]labels.Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data []labels.Data
	if len(ids) == 0 {
		for _, l := range s.store.Labels() {
			if !l.Printed() {
				data = append(data, labels.FromLabel(l))
			}
		}
	} else {
		for _, id := range ids {
			l, err := s.store.Label(id)
			if err != nil {
				return nil, err
			}
			data = append(data, labels.FromLabel(l))
		}
	}
	if len(data) == 0 {
		return nil, models.NewValidation("labels", "nenhuma etiqueta para imprimir")
	}
	return data, nil
}

func (s *Service) writeLabelFile(name string, body []byte) (string, error) {
	path := filepath.Join(s.labelsDir, name)
	if err := os.WriteFile(path, body, 0640); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	slog.Info("label file written", "path", path, "bytes", len(body))
	return path, nil
}

// ============================================================================
// REPORTS
// ============================================================================

// Export writes report r as CSV to path, or to the export directory under
// the report's dated file name when path is empty. Returns the path written.
func (s *Service) Export(r export.Report, path string) (string, error) {
	snap := s.Snapshot()
	if path == "" {
		path = filepath.Join(s.exportDir, export.FileName(r, s.clock.Now()))
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, r, snap); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0640); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	slog.Info("report exported", "report", string(r), "path", path)
	return path, nil
}

// AuditLog returns audit entries matching filter, newest first.
func (s *Service) AuditLog(filter models.AuditFilter) []*models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.AuditLog(filter)
}

// Stats returns the dashboard summary numbers.
func (s *Service) Stats() models.Stats {
	return read(s, (*store.Store).Stats)
}

// Overview gathers the dashboard: stats, the latest movements and audit
// entries, and the next monthly measurement date.
func (s *Service) Overview() Overview {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.clock.Now()
	next := util.NextMeasurementDate(now, s.store.Settings().Notifications.MeasurementDay)

	events := s.store.Events()
	if len(events) > recentLimit {
		events = events[:recentLimit]
	}
	audit := s.store.AuditLog(models.AuditFilter{})
	if len(audit) > recentLimit {
		audit = audit[:recentLimit]
	}

	return Overview{
		Stats:           s.store.Stats(),
		RecentEvents:    events,
		RecentAudit:     audit,
		NextMeasurement: next,
		DaysToMeasure:   util.DaysSince(util.StartOfDay(now), next),
	}
}
