package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vectrastorage/vectra/internal/config"
)

func openTempDB(t *testing.T) (*DB, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vectra.db")
	db, err := Open(path, config.DatabaseConfig{BackupRetentionDays: 30}, filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, dir
}

func TestMigrator_UpDownStatus(t *testing.T) {
	ctx := context.Background()
	db, err := NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	defer db.Close()

	m, err := NewMigrator(db)
	if err != nil {
		t.Fatalf("NewMigrator() error = %v", err)
	}
	if m.LatestVersion() < 2 {
		t.Fatalf("LatestVersion() = %d, want at least 2", m.LatestVersion())
	}

	res, err := m.MigrateUp(ctx)
	if err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if res.FromVersion != 0 || res.ToVersion != m.LatestVersion() {
		t.Errorf("MigrateUp() = %d -> %d, want 0 -> %d", res.FromVersion, res.ToVersion, m.LatestVersion())
	}

	again, err := m.MigrateUp(ctx)
	if err != nil {
		t.Fatalf("second MigrateUp() error = %v", err)
	}
	if len(again.Applied) != 0 {
		t.Errorf("second MigrateUp() applied %d migrations, want 0", len(again.Applied))
	}

	status, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	for _, s := range status {
		if !s.Applied {
			t.Errorf("migration %03d not marked applied", s.Version)
		}
	}

	for _, table := range []string{"clients", "containers", "packing_items", "events", "event_items", "measurements", "invoices", "labels", "audit_logs"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}

	down, err := m.MigrateDown(ctx)
	if err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if down.ToVersion != m.LatestVersion()-1 {
		t.Errorf("MigrateDown() ToVersion = %d, want %d", down.ToVersion, m.LatestVersion()-1)
	}
	current, _ := m.CurrentVersion(ctx)
	if current != down.ToVersion {
		t.Errorf("CurrentVersion() = %d, want %d", current, down.ToVersion)
	}
}

func TestMigrator_DownToZero(t *testing.T) {
	ctx := context.Background()
	db, err := NewMigratedInMemory(ctx)
	if err != nil {
		t.Fatalf("NewMigratedInMemory() error = %v", err)
	}
	defer db.Close()

	m, _ := NewMigrator(db)
	for v := m.LatestVersion(); v > 0; v-- {
		if _, err := m.MigrateDown(ctx); err != nil {
			t.Fatalf("MigrateDown() at %d error = %v", v, err)
		}
	}
	if _, err := db.Exec("SELECT 1 FROM containers"); err == nil {
		t.Error("containers table still exists after full rollback")
	}
	if _, err := m.MigrateDown(ctx); err == nil {
		t.Error("MigrateDown() at version 0 expected error")
	}
}

func TestParseMigration(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantUp   string
		wantDown string
	}{
		{"no markers", "CREATE TABLE a (x);", "CREATE TABLE a (x);", ""},
		{"up only", "-- +migrate Up\nCREATE TABLE a (x);", "CREATE TABLE a (x);", ""},
		{"up then down", "-- +migrate Up\nCREATE TABLE a (x);\n-- +migrate Down\nDROP TABLE a;", "CREATE TABLE a (x);", "DROP TABLE a;"},
		{"down then up", "-- +migrate Down\nDROP TABLE a;\n-- +migrate Up\nCREATE TABLE a (x);", "CREATE TABLE a (x);", "DROP TABLE a;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, down := parseMigration(tt.content)
			if up != tt.wantUp || down != tt.wantDown {
				t.Errorf("parseMigration() = %q, %q; want %q, %q", up, down, tt.wantUp, tt.wantDown)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	script := `-- leading comment; with a semicolon
CREATE TABLE a (x TEXT DEFAULT 'a;b');
  -- indented comment
INSERT INTO a VALUES ("q;");

`
	got := splitStatements(script)
	want := []string{
		"CREATE TABLE a (x TEXT DEFAULT 'a;b')",
		`INSERT INTO a VALUES ("q;")`,
	}
	if len(got) != len(want) {
		t.Fatalf("splitStatements() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("statement %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWithTransaction_Rollback(t *testing.T) {
	ctx := context.Background()
	db, err := NewMigratedInMemory(ctx)
	if err != nil {
		t.Fatalf("NewMigratedInMemory() error = %v", err)
	}
	defer db.Close()

	boom := errors.New("boom")
	err = db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO clients (id, position, name, created_at, updated_at) VALUES ('c1', 0, 'X', '', '')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTransaction() error = %v, want boom", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM clients").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("clients = %d after rollback, want 0", n)
	}
}

func TestClosedDB(t *testing.T) {
	db, err := NewInMemory()
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if !db.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
	if err := db.HealthCheck(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("HealthCheck() error = %v, want ErrClosed", err)
	}
	err = db.WithTransaction(context.Background(), func(*sql.Tx) error { return nil })
	if !errors.Is(err, ErrClosed) {
		t.Errorf("WithTransaction() error = %v, want ErrClosed", err)
	}
}

func TestOpen_FileDatabase(t *testing.T) {
	ctx := context.Background()
	db, _ := openTempDB(t)

	if err := db.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if err := db.CheckIntegrity(ctx); err != nil {
		t.Errorf("CheckIntegrity() error = %v", err)
	}

	m, err := NewMigrator(db)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.MigrateUp(ctx); err != nil {
		t.Fatal(err)
	}

	info, err := db.Info(ctx)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if !strings.EqualFold(info.JournalMode, "wal") {
		t.Errorf("JournalMode = %q, want wal", info.JournalMode)
	}
	if info.SchemaVersion != m.LatestVersion() {
		t.Errorf("SchemaVersion = %d, want %d", info.SchemaVersion, m.LatestVersion())
	}
	if info.Path != db.Path() {
		t.Errorf("Path = %q, want %q", info.Path, db.Path())
	}
}

func TestBackup(t *testing.T) {
	ctx := context.Background()
	db, dir := openTempDB(t)
	if err := os.MkdirAll(filepath.Join(dir, "backups"), 0750); err != nil {
		t.Fatal(err)
	}

	path, err := db.Backup(ctx)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), backupPrefix) {
		t.Errorf("backup name = %q, want prefix %q", filepath.Base(path), backupPrefix)
	}
	if err := checkFile(ctx, path); err != nil {
		t.Errorf("backup integrity: %v", err)
	}

	backups, err := ListBackups(filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 || backups[0].Path != path {
		t.Errorf("ListBackups() = %+v, want [%s]", backups, path)
	}
}

func TestBackup_NoDirectory(t *testing.T) {
	db, err := NewInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.Backup(context.Background()); err == nil {
		t.Error("Backup() without directory expected error")
	}
}

func TestListAndPruneBackups(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	files := map[string]time.Time{
		"vectra-old.db":    now.Add(-40 * 24 * time.Hour),
		"vectra-recent.db": now.Add(-2 * time.Hour),
		"vectra-newest.db": now,
		"notes.txt":        now.Add(-90 * 24 * time.Hour),
	}
	for name, mod := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x"), 0640); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(p, mod, mod); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := ListBackups(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, b := range backups {
		names = append(names, filepath.Base(b.Path))
	}
	if got := strings.Join(names, ","); got != "vectra-newest.db,vectra-recent.db,vectra-old.db" {
		t.Errorf("ListBackups() order = %s", got)
	}

	removed, err := PruneBackups(dir, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("PruneBackups() removed = %d, want 1", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Errorf("non-backup file removed: %v", err)
	}
}

func TestAttemptRecovery_MissingFile(t *testing.T) {
	report, err := AttemptRecovery(context.Background(), filepath.Join(t.TempDir(), "none.db"), "")
	if err != nil {
		t.Fatalf("AttemptRecovery() error = %v", err)
	}
	if report.Outcome != RecoveryNotNeeded {
		t.Errorf("Outcome = %s, want not_needed", report.Outcome)
	}
}

func TestAttemptRecovery_Healthy(t *testing.T) {
	db, _ := openTempDB(t)
	path := db.Path()
	db.Close()

	report, err := AttemptRecovery(context.Background(), path, "")
	if err != nil {
		t.Fatalf("AttemptRecovery() error = %v", err)
	}
	if report.Outcome != RecoveryNotNeeded || len(report.Phases) != 1 {
		t.Errorf("report = %+v, want one passing integrity phase", report)
	}
}

func TestAttemptRecovery_RestoresBackup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	if err := os.MkdirAll(backupDir, 0750); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "vectra.db")
	db, err := Open(path, config.DatabaseConfig{}, backupDir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE marker (v TEXT)"); err != nil {
		t.Fatal(err)
	}
	backup, err := db.Backup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	garbage := []byte(strings.Repeat("not a database ", 512))
	if err := os.WriteFile(path, garbage, 0640); err != nil {
		t.Fatal(err)
	}

	report, err := AttemptRecovery(ctx, path, backupDir)
	if err != nil {
		t.Fatalf("AttemptRecovery() error = %v (phases %+v)", err, report.Phases)
	}
	if report.Outcome != RecoveryRestored {
		t.Fatalf("Outcome = %s, want restored", report.Outcome)
	}
	if report.BackupUsed != backup {
		t.Errorf("BackupUsed = %q, want %q", report.BackupUsed, backup)
	}
	if report.Quarantine == "" {
		t.Error("Quarantine not set")
	} else if _, err := os.Stat(report.Quarantine); err != nil {
		t.Errorf("quarantined file missing: %v", err)
	}
	if err := checkFile(ctx, path); err != nil {
		t.Errorf("restored file integrity: %v", err)
	}
}

func TestAttemptRecovery_NoBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectra.db")
	if err := os.WriteFile(path, []byte(strings.Repeat("junk", 1024)), 0640); err != nil {
		t.Fatal(err)
	}

	report, err := AttemptRecovery(context.Background(), path, "")
	if !errors.Is(err, ErrUnrecoverable) {
		t.Fatalf("AttemptRecovery() error = %v, want ErrUnrecoverable", err)
	}
	if report.Outcome != RecoveryFailed {
		t.Errorf("Outcome = %s, want failed", report.Outcome)
	}
}
