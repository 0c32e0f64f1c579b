package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/store"
)

// SnapshotRepository saves and loads a whole store snapshot. Settings are
// not part of it; they live in the TOML config file.
type SnapshotRepository struct {
	db *sql.DB

	Clients    *ClientRepository
	Containers *ContainerRepository
	Events     *EventRepository
	Invoices   *InvoiceRepository
	Labels     *LabelRepository
	Audit      *AuditRepository
}

// NewSnapshotRepository creates the repositories for every table group.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{
		db:         db,
		Clients:    NewClientRepository(db),
		Containers: NewContainerRepository(db),
		Events:     NewEventRepository(db),
		Invoices:   NewInvoiceRepository(db),
		Labels:     NewLabelRepository(db),
		Audit:      NewAuditRepository(db),
	}
}

// Save writes snap in a single transaction. Every table except the audit
// trail is replaced; audit entries are appended when new.
func (r *SnapshotRepository) Save(ctx context.Context, snap *store.Snapshot) error {
	start := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.Clients.ReplaceAll(ctx, tx, snap.Clients); err != nil {
		return err
	}
	if err := r.Containers.ReplaceAll(ctx, tx, snap.Containers); err != nil {
		return err
	}
	if err := r.Events.ReplaceEvents(ctx, tx, snap.Events); err != nil {
		return err
	}
	if err := r.Events.ReplaceMeasurements(ctx, tx, snap.Measurements); err != nil {
		return err
	}
	if err := r.Invoices.ReplaceAll(ctx, tx, snap.Invoices); err != nil {
		return err
	}
	if err := r.Labels.ReplaceAll(ctx, tx, snap.Labels); err != nil {
		return err
	}
	added, err := r.Audit.Append(ctx, tx, snap.AuditLogs)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}

	slog.Debug("snapshot saved",
		"containers", len(snap.Containers),
		"events", len(snap.Events),
		"invoices", len(snap.Invoices),
		"audit_added", added,
		"duration", time.Since(start),
	)
	return nil
}

// Load reads every table into a snapshot with zero Settings.
func (r *SnapshotRepository) Load(ctx context.Context) (*store.Snapshot, error) {
	snap := &store.Snapshot{}
	var err error

	if snap.Clients, err = r.Clients.List(ctx); err != nil {
		return nil, fmt.Errorf("loading clients: %w", err)
	}
	if snap.Containers, err = r.Containers.List(ctx); err != nil {
		return nil, fmt.Errorf("loading containers: %w", err)
	}
	if snap.Events, err = r.Events.ListEvents(ctx); err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	if snap.Measurements, err = r.Events.ListMeasurements(ctx); err != nil {
		return nil, fmt.Errorf("loading measurements: %w", err)
	}
	if snap.Invoices, err = r.Invoices.List(ctx, ""); err != nil {
		return nil, fmt.Errorf("loading invoices: %w", err)
	}
	if snap.Labels, err = r.Labels.List(ctx, false); err != nil {
		return nil, fmt.Errorf("loading labels: %w", err)
	}
	if snap.AuditLogs, err = r.Audit.List(ctx, models.AuditFilter{}); err != nil {
		return nil, fmt.Errorf("loading audit log: %w", err)
	}
	return snap, nil
}

// Empty reports whether nothing but possibly audit entries is stored.
func (r *SnapshotRepository) Empty(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM clients)
		     + (SELECT COUNT(*) FROM containers)
		     + (SELECT COUNT(*) FROM invoices)`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking for stored data: %w", err)
	}
	return n == 0, nil
}
