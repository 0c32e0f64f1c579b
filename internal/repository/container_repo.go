package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vectrastorage/vectra/internal/models"
)

// ContainerRepository persists containers together with their packing items.
type ContainerRepository struct {
	db *sql.DB
}

// NewContainerRepository creates a new container repository.
func NewContainerRepository(db *sql.DB) *ContainerRepository {
	return &ContainerRepository{db: db}
}

// ============================================================================
// CONTAINERS
// ============================================================================

const containerColumns = `id, code, status, client_id, client_name, type, bill_of_lading,
	occupation, total_volume, used_volume, total_weight, since, monthly_price,
	created_at, updated_at`

// Create inserts a container and its items. Position orders the list.
func (r *ContainerRepository) Create(ctx context.Context, tx *sql.Tx, position int, c *models.Container) error {
	query := `
		INSERT INTO containers (position, ` + containerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	ex := getExecer(r.db, tx)
	_, err := ex.ExecContext(ctx, query,
		position,
		c.ID,
		c.Code,
		string(c.Status),
		c.ClientID,
		c.ClientName,
		c.Type,
		c.BillOfLading,
		c.Occupation,
		c.TotalVolume,
		c.UsedVolume,
		c.TotalWeight,
		formatTime(c.Since),
		c.MonthlyPrice.String(),
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting container %s: %w", c.Code, err)
	}

	for i, item := range c.Items {
		if err := r.createItem(ctx, ex, c.ID, i, item); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceAll swaps every stored container and item for the given list.
func (r *ContainerRepository) ReplaceAll(ctx context.Context, tx *sql.Tx, containers []*models.Container) error {
	if err := deleteAll(ctx, getExecer(r.db, tx), "packing_items", "containers"); err != nil {
		return err
	}
	for i, c := range containers {
		if err := r.Create(ctx, tx, i, c); err != nil {
			return err
		}
	}
	return nil
}

// GetByCode retrieves the first container with the given code, ignoring case.
func (r *ContainerRepository) GetByCode(ctx context.Context, code string) (*models.Container, error) {
	query := `SELECT ` + containerColumns + ` FROM containers
		WHERE code = ? COLLATE NOCASE ORDER BY position LIMIT 1`

	c, err := scanContainer(r.db.QueryRowContext(ctx, query, strings.TrimSpace(code)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound(models.EntityContainer, code)
	}
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, "WHERE container_id = ?", c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items[c.ID]
	return c, nil
}

// List retrieves every container with its items, in list order.
func (r *ContainerRepository) List(ctx context.Context) ([]*models.Container, error) {
	containers, err := r.listContainers(ctx)
	if err != nil {
		return nil, err
	}
	items, err := r.listItems(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, c := range containers {
		c.Items = items[c.ID]
		if c.Items == nil {
			c.Items = []*models.PackingItem{}
		}
	}
	return containers, nil
}

// Count returns the number of stored containers.
func (r *ContainerRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM containers").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting containers: %w", err)
	}
	return n, nil
}

func (r *ContainerRepository) listContainers(ctx context.Context) ([]*models.Container, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+containerColumns+` FROM containers ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying containers: %w", err)
	}
	defer rows.Close()

	var containers []*models.Container
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, err
		}
		containers = append(containers, c)
	}
	return containers, rows.Err()
}

func scanContainer(row scanner) (*models.Container, error) {
	var (
		c                       models.Container
		status, price           string
		since, created, updated string
	)
	err := row.Scan(
		&c.ID, &c.Code, &status, &c.ClientID, &c.ClientName, &c.Type, &c.BillOfLading,
		&c.Occupation, &c.TotalVolume, &c.UsedVolume, &c.TotalWeight, &since, &price,
		&created, &updated,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning container: %w", err)
	}

	c.Status = models.ContainerStatus(status)
	if c.MonthlyPrice, err = parseDecimal(price); err != nil {
		return nil, err
	}
	if c.Since, err = parseTime(since); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &c, nil
}

// ============================================================================
// PACKING ITEMS
// ============================================================================

const itemColumns = `id, container_id, sku, description, description_pt, quantity,
	current_quantity, unit_weight, total_weight, length, width, height,
	unit_volume, total_volume, ncm, origin, brand, model, unit_price,
	total_price, location, created_at, updated_at`

func (r *ContainerRepository) createItem(ctx context.Context, ex execer, containerID string, position int, item *models.PackingItem) error {
	query := `
		INSERT INTO packing_items (position, ` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := ex.ExecContext(ctx, query,
		position,
		item.ID,
		containerID,
		item.SKU,
		item.Description,
		item.DescriptionPt,
		item.Quantity,
		item.CurrentQuantity,
		item.UnitWeight,
		item.TotalWeight,
		item.Length,
		item.Width,
		item.Height,
		item.UnitVolume,
		item.TotalVolume,
		item.NCM,
		item.Origin,
		item.Brand,
		item.Model,
		item.UnitPrice.String(),
		item.TotalPrice.String(),
		item.Location,
		formatTime(item.CreatedAt),
		formatTime(item.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting item %s: %w", item.SKU, err)
	}
	return nil
}

// listItems returns items grouped by container id, each group in list order.
func (r *ContainerRepository) listItems(ctx context.Context, where string, args ...any) (map[string][]*models.PackingItem, error) {
	query := `SELECT ` + itemColumns + ` FROM packing_items ` + where + ` ORDER BY container_id, position`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]*models.PackingItem)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		grouped[item.ContainerID] = append(grouped[item.ContainerID], item)
	}
	return grouped, rows.Err()
}

func scanItem(row scanner) (*models.PackingItem, error) {
	var (
		item             models.PackingItem
		unitPrice, total string
		created, updated string
	)
	err := row.Scan(
		&item.ID, &item.ContainerID, &item.SKU, &item.Description, &item.DescriptionPt,
		&item.Quantity, &item.CurrentQuantity, &item.UnitWeight, &item.TotalWeight,
		&item.Length, &item.Width, &item.Height, &item.UnitVolume, &item.TotalVolume,
		&item.NCM, &item.Origin, &item.Brand, &item.Model, &unitPrice, &total,
		&item.Location, &created, &updated,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}

	if item.UnitPrice, err = parseDecimal(unitPrice); err != nil {
		return nil, err
	}
	if item.TotalPrice, err = parseDecimal(total); err != nil {
		return nil, err
	}
	if item.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &item, nil
}
