package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vectrastorage/vectra/internal/models"
)

// ClientRepository handles client data access.
type ClientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new client repository.
func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `id, name, tax_id, email, phone, address, created_at, updated_at`

// Create inserts a client at the given list position.
func (r *ClientRepository) Create(ctx context.Context, tx *sql.Tx, position int, c *models.Client) error {
	query := `
		INSERT INTO clients (position, ` + clientColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := getExecer(r.db, tx).ExecContext(ctx, query,
		position,
		c.ID,
		c.Name,
		c.TaxID,
		c.Email,
		c.Phone,
		c.Address,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting client %s: %w", c.ID, err)
	}
	return nil
}

// ReplaceAll swaps the stored clients for the given list.
func (r *ClientRepository) ReplaceAll(ctx context.Context, tx *sql.Tx, clients []*models.Client) error {
	if err := deleteAll(ctx, getExecer(r.db, tx), "clients"); err != nil {
		return err
	}
	for i, c := range clients {
		if err := r.Create(ctx, tx, i, c); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a client by ID.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`

	c, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound(models.EntityClient, id)
	}
	return c, err
}

// List retrieves every client in list order.
func (r *ClientRepository) List(ctx context.Context) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func scanClient(row scanner) (*models.Client, error) {
	var (
		c                models.Client
		created, updated string
	)
	err := row.Scan(&c.ID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.Address, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("scanning client: %w", err)
	}
	if c.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &c, nil
}
