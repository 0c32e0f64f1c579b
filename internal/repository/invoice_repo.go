package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vectrastorage/vectra/internal/models"
)

// InvoiceRepository handles invoice data access.
type InvoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository creates a new invoice repository.
func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, client_id, client_name, period, containers,
	storage_amount, handling_amount, additional_amount, total_amount,
	status, due_date, paid_date, notes, created_at`

// Create inserts an invoice. The container codes are stored as a JSON array.
func (r *InvoiceRepository) Create(ctx context.Context, tx *sql.Tx, position int, inv *models.Invoice) error {
	containers := inv.Containers
	if containers == nil {
		containers = []string{}
	}
	codes, err := json.Marshal(containers)
	if err != nil {
		return fmt.Errorf("encoding containers of %s: %w", inv.ID, err)
	}

	query := `
		INSERT INTO invoices (position, ` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = getExecer(r.db, tx).ExecContext(ctx, query,
		position,
		inv.ID,
		inv.ClientID,
		inv.ClientName,
		inv.Period,
		string(codes),
		inv.StorageAmount.String(),
		inv.HandlingAmount.String(),
		inv.AdditionalAmount.String(),
		inv.TotalAmount.String(),
		string(inv.Status),
		formatTime(inv.DueDate),
		nullableTime(inv.PaidDate),
		inv.Notes,
		formatTime(inv.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting invoice %s: %w", inv.ID, err)
	}
	return nil
}

// ReplaceAll swaps every stored invoice for the given newest-first list.
func (r *InvoiceRepository) ReplaceAll(ctx context.Context, tx *sql.Tx, invoices []*models.Invoice) error {
	if err := deleteAll(ctx, getExecer(r.db, tx), "invoices"); err != nil {
		return err
	}
	for i, inv := range invoices {
		if err := r.Create(ctx, tx, i, inv); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves an invoice by its number.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`

	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound(models.EntityInvoice, id)
	}
	return inv, err
}

// List retrieves invoices newest first. A non-empty status filters them.
func (r *InvoiceRepository) List(ctx context.Context, status models.InvoiceStatus) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanInvoice(row scanner) (*models.Invoice, error) {
	var (
		inv                                  models.Invoice
		codes, status, due, created          string
		storage, handling, additional, total string
		paid                                 sql.NullString
	)
	err := row.Scan(
		&inv.ID, &inv.ClientID, &inv.ClientName, &inv.Period, &codes,
		&storage, &handling, &additional, &total,
		&status, &due, &paid, &inv.Notes, &created,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}

	if err := json.Unmarshal([]byte(codes), &inv.Containers); err != nil {
		return nil, fmt.Errorf("decoding containers of %s: %w", inv.ID, err)
	}
	inv.Status = models.InvoiceStatus(status)

	if inv.StorageAmount, err = parseDecimal(storage); err != nil {
		return nil, err
	}
	if inv.HandlingAmount, err = parseDecimal(handling); err != nil {
		return nil, err
	}
	if inv.AdditionalAmount, err = parseDecimal(additional); err != nil {
		return nil, err
	}
	if inv.TotalAmount, err = parseDecimal(total); err != nil {
		return nil, err
	}
	if inv.DueDate, err = parseTime(due); err != nil {
		return nil, err
	}
	if inv.PaidDate, err = parseNullableTime(paid); err != nil {
		return nil, err
	}
	if inv.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &inv, nil
}
