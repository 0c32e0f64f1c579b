// Package testutil holds database and fixture helpers shared by tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/vectrastorage/vectra/internal/database"
)

// TestDB is a migrated in-memory yard database. The embedded *sql.DB is what
// repositories take.
type TestDB struct {
	*sql.DB
	yard *database.DB
}

// NewTestDB opens a private in-memory database with every migration applied
// by the same migrator the application uses. It is closed when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	yard, err := database.NewMigratedInMemory(context.Background())
	if err != nil {
		t.Fatalf("opening migrated test database: %v", err)
	}
	t.Cleanup(func() {
		if err := yard.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})
	return &TestDB{DB: yard.DB, yard: yard}
}

// Yard returns the wrapped database for code that needs transactions or
// health checks.
func (tdb *TestDB) Yard() *database.DB { return tdb.yard }

// AssertRowCount fails the test unless table holds want rows.
func (tdb *TestDB) AssertRowCount(t *testing.T, table string, want int) {
	t.Helper()

	var got int
	if err := tdb.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&got); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	if got != want {
		t.Errorf("%s has %d rows, want %d", table, got, want)
	}
}

// ExecSQL runs setup statements, failing the test on error.
func (tdb *TestDB) ExecSQL(t *testing.T, query string, args ...any) {
	t.Helper()

	if _, err := tdb.Exec(query, args...); err != nil {
		t.Fatalf("%v\n%s", err, strings.TrimSpace(query))
	}
}

// Tables lists the user tables in the schema, for migration tests.
func (tdb *TestDB) Tables(t *testing.T) []string {
	t.Helper()

	rows, err := tdb.Query(`SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		t.Fatalf("listing tables: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scanning table name: %v", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatal(fmt.Errorf("listing tables: %w", err))
	}
	return names
}
