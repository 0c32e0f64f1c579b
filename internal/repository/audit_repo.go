package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vectrastorage/vectra/internal/models"
)

// AuditRepository stores the append-only audit trail. Entries are never
// updated or deleted; the insertion order is the chronological order.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append stores the entries of a newest-first list that are not stored yet.
// Only the entries in front of the newest stored one are written, so a save
// costs what was logged since the last save. Returns how many were new.
func (r *AuditRepository) Append(ctx context.Context, tx *sql.Tx, logs []*models.AuditLog) (int, error) {
	query := `
		INSERT OR IGNORE INTO audit_logs (
			id, action, entity_type, entity_id, entity_name, user_name, details, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	ex := getExecer(r.db, tx)
	fresh, err := r.unsaved(ctx, ex, logs)
	if err != nil {
		return 0, err
	}

	added := 0
	for i := fresh - 1; i >= 0; i-- {
		a := logs[i]
		details := []byte("{}")
		if len(a.Details) > 0 {
			var err error
			if details, err = json.Marshal(a.Details); err != nil {
				return added, fmt.Errorf("encoding details of %s: %w", a.ID, err)
			}
		}

		res, err := ex.ExecContext(ctx, query,
			a.ID,
			a.Action,
			string(a.EntityType),
			a.EntityID,
			a.EntityName,
			a.User,
			string(details),
			formatTime(a.Timestamp),
		)
		if err != nil {
			return added, fmt.Errorf("inserting audit entry %s: %w", a.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			added++
		}
	}
	return added, nil
}

// unsaved returns how many leading entries of logs come after the newest
// stored entry. When that entry is not in logs every entry is a candidate and
// INSERT OR IGNORE skips the stored ones.
func (r *AuditRepository) unsaved(ctx context.Context, ex execer, logs []*models.AuditLog) (int, error) {
	var newest string
	err := ex.QueryRowContext(ctx, "SELECT id FROM audit_logs ORDER BY rowid DESC LIMIT 1").Scan(&newest)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return len(logs), nil
	case err != nil:
		return 0, fmt.Errorf("finding newest audit entry: %w", err)
	}

	if i := slices.IndexFunc(logs, func(a *models.AuditLog) bool { return a.ID == newest }); i >= 0 {
		return i, nil
	}
	return len(logs), nil
}

// List retrieves entries newest first, narrowed by the filter.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditLog, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.EntityType != "" {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, string(filter.EntityType))
	}
	if filter.Search != "" {
		conditions = append(conditions, "(action LIKE ? OR entity_name LIKE ?)")
		like := "%" + filter.Search + "%"
		args = append(args, like, like)
	}

	query := `SELECT id, action, entity_type, entity_id, entity_name, user_name, details, timestamp FROM audit_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY rowid DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var (
			a               models.AuditLog
			entity, details string
			ts              string
		)
		if err := rows.Scan(&a.ID, &a.Action, &entity, &a.EntityID, &a.EntityName, &a.User, &details, &ts); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		a.EntityType = models.EntityType(entity)
		if details != "" && details != "{}" {
			if err := json.Unmarshal([]byte(details), &a.Details); err != nil {
				return nil, fmt.Errorf("decoding details of %s: %w", a.ID, err)
			}
		}
		t, err := parseTime(ts)
		if err != nil {
			return nil, err
		}
		a.Timestamp = t
		logs = append(logs, &a)
	}
	return logs, rows.Err()
}

// Count returns the number of stored entries.
func (r *AuditRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting audit entries: %w", err)
	}
	return n, nil
}
