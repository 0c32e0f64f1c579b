// Package store holds the warehouse aggregate: every client, container,
// movement, measurement, invoice, label and audit entry, together with the
// mutation operations that keep derived fields consistent.
//
// A Store has a single owner and no internal locking. Reads return copies.
package store

import (
	"fmt"
	"slices"

	"github.com/vectrastorage/vectra/internal/config"
	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/util"
)

const (
	// DefaultOperator is recorded in audit entries when no operator is set.
	DefaultOperator = "Admin"

	// SystemUser is recorded for entries produced automatically.
	SystemUser = "Sistema"
)

// Store is the in-memory warehouse aggregate.
type Store struct {
	settings config.Settings

	clients      []*models.Client
	containers   []*models.Container
	events       []*models.Event       // newest first
	measurements []*models.Measurement // newest first
	invoices     []*models.Invoice     // newest first
	labels       []*models.Label       // newest first
	audit        []*models.AuditLog    // newest first

	clock          util.Clock
	ids            util.IDSource
	invoiceNumbers *util.InvoiceNumberGenerator
	operator       string
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source.
func WithClock(c util.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDSource sets the identifier source.
func WithIDSource(ids util.IDSource) Option {
	return func(s *Store) { s.ids = ids }
}

// WithOperator sets the user name recorded in audit entries.
func WithOperator(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.operator = name
		}
	}
}

// New creates an empty store. The settings must be valid.
func New(settings config.Settings, opts ...Option) (*Store, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	s := &Store{
		settings:       settings,
		clock:          util.SystemClock{},
		ids:            util.NewIDGenerator(),
		invoiceNumbers: util.NewInvoiceNumberGenerator(),
		operator:       DefaultOperator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Restore rebuilds a store from a snapshot. The snapshot is copied, so the
// caller keeps ownership of it.
func Restore(snap *Snapshot, opts ...Option) (*Store, error) {
	s, err := New(snap.Settings, opts...)
	if err != nil {
		return nil, err
	}

	s.clients = cloneAll(snap.Clients, (*models.Client).Clone)
	s.containers = cloneAll(snap.Containers, (*models.Container).Clone)
	s.events = cloneAll(snap.Events, (*models.Event).Clone)
	s.measurements = cloneAll(snap.Measurements, (*models.Measurement).Clone)
	s.invoices = cloneAll(snap.Invoices, (*models.Invoice).Clone)
	s.labels = cloneAll(snap.Labels, (*models.Label).Clone)
	s.audit = cloneAll(snap.AuditLogs, (*models.AuditLog).Clone)

	for _, inv := range s.invoices {
		s.invoiceNumbers.Observe(inv.ID)
	}

	return s, nil
}

// Snapshot returns a deep copy of the whole aggregate.
func (s *Store) Snapshot() *Snapshot {
	return &Snapshot{
		Settings:     s.settings,
		Clients:      cloneAll(s.clients, (*models.Client).Clone),
		Containers:   cloneAll(s.containers, (*models.Container).Clone),
		Events:       cloneAll(s.events, (*models.Event).Clone),
		Measurements: cloneAll(s.measurements, (*models.Measurement).Clone),
		Invoices:     cloneAll(s.invoices, (*models.Invoice).Clone),
		Labels:       cloneAll(s.labels, (*models.Label).Clone),
		AuditLogs:    cloneAll(s.audit, (*models.AuditLog).Clone),
	}
}

// Operator returns the user name recorded in audit entries.
func (s *Store) Operator() string {
	return s.operator
}

// ============================================================================
// SETTINGS
// ============================================================================

// Settings returns the current settings.
func (s *Store) Settings() config.Settings {
	return s.settings
}

// UpdateSettings validates and replaces the settings.
func (s *Store) UpdateSettings(settings config.Settings) error {
	if err := settings.Validate(); err != nil {
		return &models.ValidationError{Field: "settings", Message: err.Error()}
	}
	s.settings = settings
	s.record(models.ActionUpdateSettings, models.EntitySettings, "", settings.Company.Name, nil)
	return nil
}

// ============================================================================
// AUDIT
// ============================================================================

// AddAuditLog prepends an entry, assigning its id and timestamp. An empty
// user is replaced by the store operator.
func (s *Store) AddAuditLog(entry models.AuditLog) *models.AuditLog {
	log := entry.Clone()
	log.ID = s.ids.NewID()
	log.Timestamp = s.clock.Now()
	if log.User == "" {
		log.User = s.operator
	}
	s.audit = slices.Insert(s.audit, 0, log)
	return log.Clone()
}

// AuditLog returns the entries matching filter, newest first.
func (s *Store) AuditLog(filter models.AuditFilter) []*models.AuditLog {
	var out []*models.AuditLog
	for _, log := range s.audit {
		if filter.Matches(log) {
			out = append(out, log.Clone())
		}
	}
	return out
}

func (s *Store) record(action string, entity models.EntityType, id, name string, details map[string]any) {
	s.AddAuditLog(models.AuditLog{
		Action:     action,
		EntityType: entity,
		EntityID:   id,
		EntityName: name,
		Details:    details,
	})
}

func (s *Store) recordAs(user, action string, entity models.EntityType, id, name string, details map[string]any) {
	s.AddAuditLog(models.AuditLog{
		Action:     action,
		EntityType: entity,
		EntityID:   id,
		EntityName: name,
		User:       user,
		Details:    details,
	})
}

func cloneAll[T any](in []*T, clone func(*T) *T) []*T {
	out := make([]*T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}
