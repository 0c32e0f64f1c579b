package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vectrastorage/vectra/internal/models"
)

// EventRepository handles movement events and measurements. Both lists are
// kept newest first; position 0 is the most recent record.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ============================================================================
// EVENTS
// ============================================================================

const eventColumns = `id, type, container_id, container_code, client_name, date, notes, created_by, created_at`

// CreateEvent inserts an event and its lines.
func (r *EventRepository) CreateEvent(ctx context.Context, tx *sql.Tx, position int, e *models.Event) error {
	query := `
		INSERT INTO events (position, ` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	ex := getExecer(r.db, tx)
	_, err := ex.ExecContext(ctx, query,
		position,
		e.ID,
		string(e.Type),
		e.ContainerID,
		e.ContainerCode,
		e.ClientName,
		formatTime(e.Date),
		e.Notes,
		e.CreatedBy,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting event %s: %w", e.ID, err)
	}

	for i, item := range e.Items {
		_, err := ex.ExecContext(ctx, `
			INSERT INTO event_items (event_id, position, packing_item_id, sku, description, quantity)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, i, item.PackingItemID, item.SKU, item.Description, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("inserting line %d of event %s: %w", i, e.ID, err)
		}
	}
	return nil
}

// ReplaceEvents swaps every stored event for the given newest-first list.
func (r *EventRepository) ReplaceEvents(ctx context.Context, tx *sql.Tx, events []*models.Event) error {
	if err := deleteAll(ctx, getExecer(r.db, tx), "event_items", "events"); err != nil {
		return err
	}
	for i, e := range events {
		if err := r.CreateEvent(ctx, tx, i, e); err != nil {
			return err
		}
	}
	return nil
}

// ListEvents retrieves every event with its lines, newest first.
func (r *EventRepository) ListEvents(ctx context.Context) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}

	var (
		events []*models.Event
		byID   = make(map[string]*models.Event)
	)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		events = append(events, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	lines, err := r.db.QueryContext(ctx, `
		SELECT event_id, packing_item_id, sku, description, quantity
		FROM event_items
		ORDER BY event_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying event lines: %w", err)
	}
	defer lines.Close()

	for lines.Next() {
		var (
			eventID string
			item    models.EventItem
		)
		if err := lines.Scan(&eventID, &item.PackingItemID, &item.SKU, &item.Description, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scanning event line: %w", err)
		}
		if e, ok := byID[eventID]; ok {
			e.Items = append(e.Items, item)
		}
	}
	return events, lines.Err()
}

func scanEvent(row scanner) (*models.Event, error) {
	var (
		e                  models.Event
		typ, date, created string
	)
	err := row.Scan(&e.ID, &typ, &e.ContainerID, &e.ContainerCode, &e.ClientName, &date, &e.Notes, &e.CreatedBy, &created)
	if err != nil {
		return nil, fmt.Errorf("scanning event: %w", err)
	}
	e.Type = models.EventType(typ)
	if e.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &e, nil
}

// ============================================================================
// MEASUREMENTS
// ============================================================================

const measurementColumns = `id, container_id, container_code, item_id, sku, date,
	length, width, height, weight, volume, notes, measured_by, created_at`

// CreateMeasurement inserts a measurement.
func (r *EventRepository) CreateMeasurement(ctx context.Context, tx *sql.Tx, position int, m *models.Measurement) error {
	query := `
		INSERT INTO measurements (position, ` + measurementColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := getExecer(r.db, tx).ExecContext(ctx, query,
		position,
		m.ID,
		m.ContainerID,
		m.ContainerCode,
		m.ItemID,
		m.SKU,
		formatTime(m.Date),
		m.Length,
		m.Width,
		m.Height,
		m.Weight,
		m.Volume,
		m.Notes,
		m.MeasuredBy,
		formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting measurement %s: %w", m.ID, err)
	}
	return nil
}

// ReplaceMeasurements swaps every stored measurement for the given list.
func (r *EventRepository) ReplaceMeasurements(ctx context.Context, tx *sql.Tx, measurements []*models.Measurement) error {
	if err := deleteAll(ctx, getExecer(r.db, tx), "measurements"); err != nil {
		return err
	}
	for i, m := range measurements {
		if err := r.CreateMeasurement(ctx, tx, i, m); err != nil {
			return err
		}
	}
	return nil
}

// ListMeasurements retrieves every measurement, newest first.
func (r *EventRepository) ListMeasurements(ctx context.Context) ([]*models.Measurement, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+measurementColumns+` FROM measurements ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying measurements: %w", err)
	}
	defer rows.Close()

	var measurements []*models.Measurement
	for rows.Next() {
		var (
			m             models.Measurement
			date, created string
		)
		err := rows.Scan(
			&m.ID, &m.ContainerID, &m.ContainerCode, &m.ItemID, &m.SKU, &date,
			&m.Length, &m.Width, &m.Height, &m.Weight, &m.Volume, &m.Notes, &m.MeasuredBy, &created,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning measurement: %w", err)
		}
		if m.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		if m.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		measurements = append(measurements, &m)
	}
	return measurements, rows.Err()
}
