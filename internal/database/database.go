// Package database manages the Vectra SQLite file: safe pragmas and WAL,
// schema migrations, scheduled VACUUM INTO backups and startup recovery.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vectrastorage/vectra/internal/config"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned by operations on a closed database.
var ErrClosed = errors.New("database is closed")

// backupPrefix and backupTimeFormat name backup files:
// vectra-20241120-103000.db
const (
	backupPrefix     = "vectra-"
	backupTimeFormat = "20060102-150405"
)

// DB is a single-connection SQLite handle with backup scheduling.
type DB struct {
	*sql.DB
	path      string
	cfg       config.DatabaseConfig
	backupDir string

	mu     sync.RWMutex
	closed bool

	stopBackups chan struct{}
	backupsDone sync.WaitGroup
}

// Open opens (creating if needed) the database at path, applies the safety
// pragmas and starts the backup scheduler when cfg asks for one. An
// integrity failure is logged, not returned; callers run AttemptRecovery
// before Open when they want to act on it.
func Open(path string, cfg config.DatabaseConfig, backupDir string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_txlock=immediate", path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer; keeping the connection also keeps the WAL open.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	db := &DB{DB: sqlDB, path: path, cfg: cfg, backupDir: backupDir}

	if err := db.applyPragmas(filePragmas); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.CheckIntegrity(context.Background()); err != nil {
		slog.Warn("database integrity check failed", "path", path, "error", err)
	}

	if cfg.BackupIntervalHours > 0 && backupDir != "" {
		db.startBackups(time.Duration(cfg.BackupIntervalHours) * time.Hour)
	}
	return db, nil
}

var filePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
	"PRAGMA cache_size=-8000",
}

func (db *DB) applyPragmas(pragmas []string) error {
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("applying %q: %w", p, err)
		}
	}
	return nil
}

// CheckIntegrity runs PRAGMA integrity_check and fails unless SQLite
// answers a single "ok".
func (db *DB) CheckIntegrity(ctx context.Context) error {
	return integrityCheck(ctx, db.DB)
}

func integrityCheck(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}) error {
	rows, err := q.QueryContext(ctx, "PRAGMA integrity_check")
	if err != nil {
		return fmt.Errorf("running integrity check: %w", err)
	}
	defer rows.Close()

	var problems []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return fmt.Errorf("scanning integrity result: %w", err)
		}
		problems = append(problems, line)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading integrity result: %w", err)
	}
	if len(problems) == 1 && problems[0] == "ok" {
		return nil
	}
	return fmt.Errorf("integrity check failed: %s", strings.Join(problems, "; "))
}

// Checkpoint folds the WAL back into the main file.
func (db *DB) Checkpoint(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpointing WAL: %w", err)
	}
	return nil
}

// Backup writes a consistent copy of the database into the backup directory
// and prunes backups older than the retention period.
func (db *DB) Backup(ctx context.Context) (string, error) {
	if db.backupDir == "" {
		return "", errors.New("backup directory not configured")
	}
	if db.IsClosed() {
		return "", ErrClosed
	}

	target := filepath.Join(db.backupDir, backupPrefix+time.Now().Format(backupTimeFormat)+".db")
	if err := db.Checkpoint(ctx); err != nil {
		slog.Warn("checkpoint before backup failed", "error", err)
	}
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", target); err != nil {
		return "", fmt.Errorf("writing backup %s: %w", target, err)
	}
	slog.Info("database backup written", "path", target)

	if db.cfg.BackupRetentionDays > 0 {
		removed, err := PruneBackups(db.backupDir, time.Now().AddDate(0, 0, -db.cfg.BackupRetentionDays))
		if err != nil {
			slog.Warn("pruning backups", "error", err)
		} else if removed > 0 {
			slog.Debug("pruned old backups", "removed", removed)
		}
	}
	return target, nil
}

// BackupFile is one backup found on disk.
type BackupFile struct {
	Path    string
	ModTime time.Time
}

// ListBackups returns the *.db files in dir, newest first.
func ListBackups(dir string) ([]BackupFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []BackupFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupFile{Path: filepath.Join(dir, e.Name()), ModTime: info.ModTime()})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

// PruneBackups deletes backups last modified before cutoff and reports how
// many were removed.
func PruneBackups(dir string, cutoff time.Time) (int, error) {
	backups, err := ListBackups(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, b := range backups {
		if !b.ModTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(b.Path); err != nil {
			slog.Warn("removing old backup", "path", b.Path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (db *DB) startBackups(every time.Duration) {
	db.stopBackups = make(chan struct{})
	db.backupsDone.Add(1)

	go func() {
		defer db.backupsDone.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if _, err := db.Backup(ctx); err != nil {
					slog.Error("scheduled backup failed", "error", err)
				}
				cancel()
			case <-db.stopBackups:
				return
			}
		}
	}()
}

// Close stops the backup scheduler, checkpoints the WAL and closes the file.
// Closing twice is a no-op.
func (db *DB) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	db.mu.Unlock()

	if db.stopBackups != nil {
		close(db.stopBackups)
		db.backupsDone.Wait()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if db.path != memoryPath {
		if err := db.Checkpoint(ctx); err != nil {
			slog.Warn("final checkpoint failed", "error", err)
		}
	}

	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	slog.Debug("database closed", "path", db.path)
	return nil
}

// IsClosed reports whether Close has been called.
func (db *DB) IsClosed() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.closed
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// WithTransaction runs fn inside a transaction, committing when fn returns
// nil and rolling back otherwise (including on panic).
func (db *DB) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	if db.IsClosed() {
		return ErrClosed
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// HealthCheck verifies the connection answers a trivial query.
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.IsClosed() {
		return ErrClosed
	}
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

// Info describes the database file for the status line and -version output.
type Info struct {
	Path          string
	SizeBytes     int64
	WALSizeBytes  int64
	SchemaVersion int
	JournalMode   string
}

// Info reports file sizes, the applied migration version and journal mode.
func (db *DB) Info(ctx context.Context) (*Info, error) {
	info := &Info{Path: db.path}
	if st, err := os.Stat(db.path); err == nil {
		info.SizeBytes = st.Size()
	}
	if st, err := os.Stat(db.path + "-wal"); err == nil {
		info.WALSizeBytes = st.Size()
	}
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&info.JournalMode); err != nil {
		return nil, fmt.Errorf("reading journal mode: %w", err)
	}
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&info.SchemaVersion)
	if err != nil && !strings.Contains(err.Error(), "no such table") {
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	return info, nil
}
