package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vectrastorage/vectra/internal/models"
)

// LabelRepository handles generated label records.
type LabelRepository struct {
	db *sql.DB
}

// NewLabelRepository creates a new label repository.
func NewLabelRepository(db *sql.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

const labelColumns = `id, type, container_id, item_id, sku, description, container_code,
	client_name, location, barcode, weight, dimensions, quantity, created_at,
	printed_at, printed_by`

// Create inserts a label record.
func (r *LabelRepository) Create(ctx context.Context, tx *sql.Tx, position int, l *models.Label) error {
	query := `
		INSERT INTO labels (position, ` + labelColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := getExecer(r.db, tx).ExecContext(ctx, query,
		position,
		l.ID,
		string(l.Type),
		l.ContainerID,
		l.ItemID,
		l.SKU,
		l.Description,
		l.ContainerCode,
		l.ClientName,
		l.Location,
		l.Barcode,
		l.Weight,
		l.Dimensions,
		l.Quantity,
		formatTime(l.CreatedAt),
		nullableTime(l.PrintedAt),
		l.PrintedBy,
	)
	if err != nil {
		return fmt.Errorf("inserting label %s: %w", l.ID, err)
	}
	return nil
}

// ReplaceAll swaps every stored label for the given newest-first list.
func (r *LabelRepository) ReplaceAll(ctx context.Context, tx *sql.Tx, labels []*models.Label) error {
	if err := deleteAll(ctx, getExecer(r.db, tx), "labels"); err != nil {
		return err
	}
	for i, l := range labels {
		if err := r.Create(ctx, tx, i, l); err != nil {
			return err
		}
	}
	return nil
}

// List retrieves labels newest first. With unprintedOnly set, labels that
// already went to a printer are skipped.
func (r *LabelRepository) List(ctx context.Context, unprintedOnly bool) ([]*models.Label, error) {
	query := `SELECT ` + labelColumns + ` FROM labels`
	if unprintedOnly {
		query += ` WHERE printed_at IS NULL`
	}
	query += ` ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying labels: %w", err)
	}
	defer rows.Close()

	var labels []*models.Label
	for rows.Next() {
		var (
			l            models.Label
			typ, created string
			printed      sql.NullString
		)
		err := rows.Scan(
			&l.ID, &typ, &l.ContainerID, &l.ItemID, &l.SKU, &l.Description, &l.ContainerCode,
			&l.ClientName, &l.Location, &l.Barcode, &l.Weight, &l.Dimensions, &l.Quantity,
			&created, &printed, &l.PrintedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning label: %w", err)
		}
		l.Type = models.LabelType(typ)
		if l.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if l.PrintedAt, err = parseNullableTime(printed); err != nil {
			return nil, err
		}
		labels = append(labels, &l)
	}
	return labels, rows.Err()
}
