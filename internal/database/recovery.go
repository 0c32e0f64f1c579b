package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// RecoveryOutcome says how AttemptRecovery left the database file.
type RecoveryOutcome int

const (
	// RecoveryNotNeeded means the file was missing or already healthy.
	RecoveryNotNeeded RecoveryOutcome = iota
	// RecoveryRepaired means a WAL checkpoint made the file healthy again.
	RecoveryRepaired
	// RecoveryRestored means the file was replaced by a backup.
	RecoveryRestored
	// RecoveryFailed means no phase produced a healthy file.
	RecoveryFailed
)

func (o RecoveryOutcome) String() string {
	switch o {
	case RecoveryNotNeeded:
		return "not_needed"
	case RecoveryRepaired:
		return "repaired"
	case RecoveryRestored:
		return "restored"
	case RecoveryFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrUnrecoverable is returned when neither the WAL nor a backup helped.
var ErrUnrecoverable = errors.New("database is corrupt and no valid backup was found")

// RecoveryPhase records one attempted step.
type RecoveryPhase struct {
	Name     string
	OK       bool
	Detail   string
	Duration time.Duration
}

// RecoveryReport describes what AttemptRecovery did.
type RecoveryReport struct {
	Path       string
	Outcome    RecoveryOutcome
	BackupUsed string
	Quarantine string // where the damaged file was moved, if anywhere
	Phases     []RecoveryPhase
}

func (r *RecoveryReport) run(name string, fn func() (string, error)) bool {
	start := time.Now()
	detail, err := fn()
	p := RecoveryPhase{Name: name, OK: err == nil, Detail: detail, Duration: time.Since(start)}
	if err != nil {
		p.Detail = err.Error()
	}
	r.Phases = append(r.Phases, p)
	return p.OK
}

// AttemptRecovery checks the database at path before it is opened. A healthy
// or missing file is left alone. A damaged one gets a WAL checkpoint and, if
// that is not enough, is swapped for the newest backup in backupDir that
// passes its own integrity check. The damaged file is kept next to the
// original with a ".corrupt-<time>" suffix.
func AttemptRecovery(ctx context.Context, path, backupDir string) (*RecoveryReport, error) {
	report := &RecoveryReport{Path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		report.Outcome = RecoveryNotNeeded
		return report, nil
	}

	if report.run("integrity", func() (string, error) { return "ok", checkFile(ctx, path) }) {
		report.Outcome = RecoveryNotNeeded
		return report, nil
	}
	slog.Warn("database failed integrity check", "path", path)

	if _, err := os.Stat(path + "-wal"); err == nil {
		repaired := report.run("wal_checkpoint", func() (string, error) {
			return "checkpointed", checkpointFile(ctx, path)
		}) && report.run("integrity_after_wal", func() (string, error) {
			return "ok", checkFile(ctx, path)
		})
		if repaired {
			report.Outcome = RecoveryRepaired
			slog.Info("database repaired from WAL", "path", path)
			return report, nil
		}
	}

	if backupDir != "" {
		var used string
		if report.run("restore_backup", func() (string, error) {
			var err error
			used, err = report.restoreNewest(ctx, path, backupDir)
			return used, err
		}) {
			report.Outcome = RecoveryRestored
			report.BackupUsed = used
			slog.Warn("database restored from backup", "path", path, "backup", used)
			return report, nil
		}
	}

	report.Outcome = RecoveryFailed
	slog.Error("database recovery failed", "path", path, "phases", len(report.Phases))
	return report, ErrUnrecoverable
}

func checkFile(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return integrityCheck(ctx, db)
}

func checkpointFile(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(RESTART)"); err != nil {
		return fmt.Errorf("checkpointing WAL: %w", err)
	}
	return nil
}

func (r *RecoveryReport) restoreNewest(ctx context.Context, path, backupDir string) (string, error) {
	backups, err := ListBackups(backupDir)
	if err != nil {
		return "", err
	}

	for _, b := range backups {
		if err := checkFile(ctx, b.Path); err != nil {
			slog.Debug("skipping damaged backup", "path", b.Path, "error", err)
			continue
		}

		quarantine := path + ".corrupt-" + time.Now().Format(backupTimeFormat)
		if err := os.Rename(path, quarantine); err != nil {
			slog.Warn("could not set damaged database aside", "path", path, "error", err)
		} else {
			r.Quarantine = quarantine
		}
		for _, sidecar := range []string{path + "-wal", path + "-shm"} {
			if err := os.Remove(sidecar); err != nil && !errors.Is(err, os.ErrNotExist) {
				slog.Warn("removing stale sidecar", "path", sidecar, "error", err)
			}
		}

		if err := copyFile(b.Path, path); err != nil {
			return "", fmt.Errorf("restoring %s: %w", b.Path, err)
		}
		return b.Path, nil
	}
	return "", fmt.Errorf("none of %d backups passed the integrity check", len(backups))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
