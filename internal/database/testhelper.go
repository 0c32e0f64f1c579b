package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vectrastorage/vectra/internal/config"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// NewInMemory opens a private in-memory database with foreign keys on and
// no backups. Migrations are not applied; see NewMigratedInMemory.
func NewInMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", memoryPath)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	db := &DB{DB: sqlDB, path: memoryPath, cfg: config.DatabaseConfig{}}
	if err := db.applyPragmas([]string{"PRAGMA foreign_keys=ON"}); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// NewMigratedInMemory opens an in-memory database with the full schema.
func NewMigratedInMemory(ctx context.Context) (*DB, error) {
	db, err := NewInMemory()
	if err != nil {
		return nil, err
	}
	m, err := NewMigrator(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if _, err := m.MigrateUp(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
