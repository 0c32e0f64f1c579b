package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration is one numbered schema change read from migrations/NNN_name.sql.
type Migration struct {
	Version     int
	Description string
	UpSQL       string
	DownSQL     string
	Applied     bool
	AppliedAt   time.Time
}

// MigrationResult summarises a MigrateUp or MigrateDown call.
type MigrationResult struct {
	Applied     []Migration
	FromVersion int
	ToVersion   int
}

// Migrator applies the embedded migrations to a database.
type Migrator struct {
	db         *DB
	migrations []Migration
}

var migrationName = regexp.MustCompile(`^(\d{3})_(.+)\.sql$`)

// NewMigrator loads the embedded migrations and makes sure the bookkeeping
// table exists.
func NewMigrator(db *DB) (*Migrator, error) {
	migrations, err := loadMigrations(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	)`)
	if err != nil {
		return nil, fmt.Errorf("creating schema_migrations: %w", err)
	}

	return &Migrator{db: db, migrations: migrations}, nil
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var out []Migration
	seen := make(map[int]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationName.FindStringSubmatch(e.Name())
		if m == nil {
			slog.Warn("ignoring migration with unexpected name", "name", e.Name())
			continue
		}
		version, _ := strconv.Atoi(m[1])
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", prev, e.Name(), version)
		}
		seen[version] = e.Name()

		body, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		up, down := parseMigration(string(body))
		out = append(out, Migration{
			Version:     version,
			Description: strings.ReplaceAll(m[2], "_", " "),
			UpSQL:       up,
			DownSQL:     down,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// parseMigration splits a file into its Up and Down sections. A file
// without markers is all Up.
func parseMigration(content string) (up, down string) {
	upAt := strings.Index(content, upMarker)
	downAt := strings.Index(content, downMarker)

	switch {
	case upAt < 0:
		return strings.TrimSpace(content), ""
	case downAt < 0:
		return strings.TrimSpace(content[upAt+len(upMarker):]), ""
	case upAt < downAt:
		return strings.TrimSpace(content[upAt+len(upMarker) : downAt]),
			strings.TrimSpace(content[downAt+len(downMarker):])
	default:
		return strings.TrimSpace(content[upAt+len(upMarker):]),
			strings.TrimSpace(content[downAt+len(downMarker) : upAt])
	}
}

// Migrations returns the known migrations in version order.
func (m *Migrator) Migrations() []Migration {
	return append([]Migration(nil), m.migrations...)
}

// LatestVersion is the highest embedded migration version.
func (m *Migrator) LatestVersion() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

// CurrentVersion returns the highest applied version, 0 for a fresh file.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	var v int
	if err := m.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// MigrateUp applies every pending migration, each in its own transaction.
func (m *Migrator) MigrateUp(ctx context.Context) (*MigrationResult, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	res := &MigrationResult{FromVersion: current, ToVersion: current}

	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		slog.Info("applying migration", "version", mig.Version, "description", mig.Description)
		if err := m.apply(ctx, mig.Version, mig.UpSQL, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
				mig.Version, mig.Description)
			return err
		}); err != nil {
			return res, fmt.Errorf("migration %03d (%s): %w", mig.Version, mig.Description, err)
		}
		mig.Applied = true
		mig.AppliedAt = time.Now()
		res.Applied = append(res.Applied, mig)
		res.ToVersion = mig.Version
	}

	if len(res.Applied) > 0 {
		slog.Info("schema migrated", "from", res.FromVersion, "to", res.ToVersion)
	}
	return res, nil
}

// MigrateDown reverts the most recently applied migration.
func (m *Migrator) MigrateDown(ctx context.Context) (*MigrationResult, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	res := &MigrationResult{FromVersion: current, ToVersion: current}
	if current == 0 {
		return res, errors.New("no migrations to roll back")
	}

	idx := sort.Search(len(m.migrations), func(i int) bool { return m.migrations[i].Version >= current })
	if idx == len(m.migrations) || m.migrations[idx].Version != current {
		return res, fmt.Errorf("applied migration %03d is not embedded in this binary", current)
	}
	mig := m.migrations[idx]
	if mig.DownSQL == "" {
		return res, fmt.Errorf("migration %03d has no Down section", current)
	}

	slog.Info("rolling back migration", "version", mig.Version, "description", mig.Description)
	if err := m.apply(ctx, mig.Version, mig.DownSQL, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", mig.Version)
		return err
	}); err != nil {
		return res, fmt.Errorf("rollback %03d: %w", mig.Version, err)
	}

	res.Applied = append(res.Applied, mig)
	res.ToVersion = 0
	if idx > 0 {
		res.ToVersion = m.migrations[idx-1].Version
	}
	return res, nil
}

func (m *Migrator) apply(ctx context.Context, version int, script string, record func(*sql.Tx) error) error {
	return m.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range splitStatements(script) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%w\nSQL: %s", err, stmt)
			}
		}
		if err := record(tx); err != nil {
			return fmt.Errorf("recording version %d: %w", version, err)
		}
		return nil
	})
}

// Status lists every embedded migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var (
			version int
			at      string
		)
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		t, _ := time.Parse(time.RFC3339, at)
		applied[version] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := m.Migrations()
	for i := range out {
		if t, ok := applied[out[i].Version]; ok {
			out[i].Applied = true
			out[i].AppliedAt = t
		}
	}
	return out, nil
}

// splitStatements cuts a script at semicolons outside quotes. Lines starting
// with "--" are dropped first so comments may contain semicolons.
func splitStatements(script string) []string {
	var body strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}

	var (
		stmts []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}
	for _, r := range body.String() {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ';':
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return stmts
}
