package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vectrastorage/vectra/internal/config"
	"github.com/vectrastorage/vectra/internal/database"
	"github.com/vectrastorage/vectra/internal/database/seed"
	"github.com/vectrastorage/vectra/internal/services/warehouse"
	"github.com/vectrastorage/vectra/internal/util"
)

var testNow = time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC)

// newTestService creates a warehouse service over a migrated in-memory
// database with a clock stopped at testNow. With seeded set the demo data
// is loaded.
func newTestService(t *testing.T, seeded bool) (*warehouse.Service, *config.Config) {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewMigratedInMemory(ctx)
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	cfg := config.Default()
	svc, err := warehouse.NewService(ctx, db.DB, cfg,
		warehouse.WithClock(util.NewFixedClock(testNow)),
		warehouse.WithIDSource(util.NewSequenceIDs("id")),
		warehouse.WithConfigPath(filepath.Join(dir, "vectra.toml")),
		warehouse.WithExportDir(dir),
		warehouse.WithLabelsDir(dir),
	)
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}

	if seeded {
		if _, err := seed.NewGenerator(svc, seed.DefaultConfig(testNow)).Generate(ctx); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}
	return svc, cfg
}

// newTestApp creates an App over an empty warehouse. The window is set to
// 120x40 and marked ready.
func newTestApp(t *testing.T) *App {
	t.Helper()
	return readyApp(newTestService(t, false))
}

// newSeededTestApp is newTestApp over the demo data.
func newSeededTestApp(t *testing.T) *App {
	t.Helper()
	return readyApp(newTestService(t, true))
}

func readyApp(svc *warehouse.Service, cfg *config.Config) *App {
	app := New(svc, cfg)
	app.width = 120
	app.height = 40
	app.ready = true
	return app
}

// run delivers msg and then the message of any command it returns, the way
// the Bubble Tea runtime would. Ticks are not followed.
func run(app *App, msg tea.Msg) {
	_, cmd := app.Update(msg)
	for cmd != nil {
		next := cmd()
		switch next.(type) {
		case actionMsg, formResultMsg:
			_, cmd = app.Update(next)
		default:
			return
		}
	}
}

// typeText sends each rune of s as a key press.
func typeText(app *App, s string) {
	for _, r := range s {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// keyMsg creates a tea.KeyMsg for a regular character key.
func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// specialKeyMsg creates a tea.KeyMsg for a special key type.
func specialKeyMsg(keyType tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: keyType}
}
