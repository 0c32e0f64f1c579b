// Vectra: container yard storage management.
//
// Tracks imported containers and their packing lists, stock movements and
// monthly measurements, prints location labels and bills clients for the
// space they occupy.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/vectrastorage/vectra/internal/config"
	"github.com/vectrastorage/vectra/internal/database"
	"github.com/vectrastorage/vectra/internal/database/seed"
	"github.com/vectrastorage/vectra/internal/export"
	"github.com/vectrastorage/vectra/internal/packinglist"
	"github.com/vectrastorage/vectra/internal/services/warehouse"
	"github.com/vectrastorage/vectra/internal/tui"
)

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// options holds the parsed command line.
type options struct {
	configPath  string
	migrateOnly bool
	seedData    bool
	debugMode   bool
	template    bool

	importFile    string
	containerCode string
	client        string
	containerType string
	billOfLading  string
	strict        bool

	exportReport string
	exportOut    string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&opts.migrateOnly, "migrate-only", false, "Run migrations and exit")
	flag.BoolVar(&opts.seedData, "seed", false, "Load demo containers into an empty database")
	flag.BoolVar(&opts.debugMode, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.template, "template", false, "Print a packing list CSV template and exit")
	flag.StringVar(&opts.importFile, "import", "", "Import a packing list CSV and exit")
	flag.StringVar(&opts.containerCode, "container", "", "Container code for -import")
	flag.StringVar(&opts.client, "client", "", "Client id or name for -import")
	flag.StringVar(&opts.containerType, "type", "", "Container type for -import")
	flag.StringVar(&opts.billOfLading, "bl", "", "Bill of lading for -import")
	flag.BoolVar(&opts.strict, "strict", false, "Reject rows with invalid quantities on -import")
	flag.StringVar(&opts.exportReport, "export", "", "Export a report (occupation, revenue, movements, inventory, audit) and exit")
	flag.StringVar(&opts.exportOut, "out", "", "Output file for -export")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Vectra version %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	if opts.template {
		fmt.Print(packinglist.Template())
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		// Force exit after timeout
		time.AfterFunc(10*time.Second, func() {
			slog.Error("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	if err := run(ctx, opts); err != nil {
		slog.Error("application error", "error", err)
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, cfgPath, err := config.Load(opts.configPath, true)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	closeLog, err := setupLogging(cfg, opts.debugMode)
	if err != nil {
		return err
	}
	defer closeLog()

	slog.Info("Vectra starting",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cfgPath,
	)

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		slog.Info("closing database")
		if err := db.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	migrator, err := database.NewMigrator(db)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	result, err := migrator.MigrateUp(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	if len(result.Applied) > 0 {
		slog.Info("applied migrations",
			"count", len(result.Applied),
			"from_version", result.FromVersion,
			"to_version", result.ToVersion,
		)
	}

	if opts.migrateOnly {
		slog.Info("migrations complete, exiting")
		return nil
	}

	exportDir, err := config.ExportDir(cfg)
	if err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	labelsDir, err := config.LabelsDir(cfg)
	if err != nil {
		return fmt.Errorf("creating labels directory: %w", err)
	}

	svc, err := warehouse.NewService(ctx, db.DB, cfg,
		warehouse.WithConfigPath(cfgPath),
		warehouse.WithExportDir(exportDir),
		warehouse.WithLabelsDir(labelsDir),
	)
	if err != nil {
		return fmt.Errorf("starting warehouse service: %w", err)
	}

	switch {
	case opts.seedData:
		return seedDemo(ctx, svc)
	case opts.importFile != "":
		return importFile(ctx, svc, opts)
	case opts.exportReport != "":
		return exportReport(svc, opts)
	}

	tui.Version = Version
	tui.BuildTime = BuildTime

	slog.Info("starting TUI",
		"company", cfg.Company.Name,
		"containers", len(svc.Containers()),
	)

	if err := tui.Run(ctx, svc, cfg); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	slog.Info("Vectra shutdown complete")
	return nil
}

// setupLogging installs the default logger: JSON to the configured file, or
// text on stderr when no file is set.
func setupLogging(cfg *config.Config, debugMode bool) (func(), error) {
	logLevel := cfg.Logging.Level.Slog()
	if debugMode {
		logLevel = slog.LevelDebug
	}

	logPath, err := config.EnsureLogDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if logPath == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
		return func() {}, nil
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, opts)))
	return func() { f.Close() }, nil
}

// openDatabase recovers the database file if needed and opens it.
func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	dbPath, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("ensuring data directory: %w", err)
	}

	backupDir, err := config.BackupDir(cfg)
	if err != nil {
		slog.Warn("failed to create backup directory", "error", err)
		backupDir = ""
	}

	report, err := database.AttemptRecovery(ctx, dbPath, backupDir)
	if err != nil {
		slog.Error("database recovery failed",
			"path", dbPath,
			"phases", len(report.Phases),
			"quarantine", report.Quarantine,
		)
		return nil, fmt.Errorf("database recovery failed: %w", err)
	}

	switch report.Outcome {
	case database.RecoveryRestored:
		slog.Warn("database restored from backup",
			"backup", report.BackupUsed,
			"quarantine", report.Quarantine,
		)
	case database.RecoveryRepaired:
		slog.Warn("database repaired by WAL checkpoint")
	case database.RecoveryNotNeeded:
		slog.Debug("database integrity verified")
	}

	db, err := database.Open(dbPath, cfg.Database, backupDir)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func seedDemo(ctx context.Context, svc *warehouse.Service) error {
	if n := len(svc.Containers()); n > 0 {
		slog.Warn("database already contains containers, skipping seed generation", "count", n)
		return nil
	}

	res, err := seed.NewGenerator(svc, seed.DefaultConfig(svc.Now())).Generate(ctx)
	if err != nil {
		return fmt.Errorf("generating seed data: %w", err)
	}

	slog.Info("seed data generation complete",
		"clients", res.Clients,
		"containers", res.Containers,
		"items", res.Items,
	)
	fmt.Printf("%d clientes, %d contêineres e %d itens carregados\n", res.Clients, res.Containers, res.Items)
	return nil
}

func importFile(ctx context.Context, svc *warehouse.Service, opts options) error {
	if opts.containerCode == "" {
		return fmt.Errorf("-import requires -container")
	}

	f, err := os.Open(opts.importFile)
	if err != nil {
		return fmt.Errorf("opening packing list: %w", err)
	}
	defer f.Close()

	clientID, clientName := "", opts.client
	for _, c := range svc.Clients() {
		if c.ID == opts.client || strings.EqualFold(c.Name, opts.client) {
			clientID, clientName = c.ID, c.Name
			break
		}
	}

	res, err := svc.ImportPackingList(ctx, warehouse.ImportInput{
		FileName:      filepath.Base(opts.importFile),
		Reader:        f,
		ContainerCode: strings.ToUpper(opts.containerCode),
		ClientID:      clientID,
		ClientName:    clientName,
		ContainerType: opts.containerType,
		BillOfLading:  opts.billOfLading,
		Strict:        opts.strict,
	})
	if res != nil {
		for _, w := range res.Parse.Warnings {
			fmt.Fprintln(os.Stderr, "aviso:", w)
		}
		for _, msg := range res.Parse.Messages() {
			fmt.Fprintln(os.Stderr, "erro:", msg)
		}
	}
	if err != nil {
		return fmt.Errorf("importing %s: %w", opts.importFile, err)
	}

	fmt.Printf("%d item(ns) importado(s) em %s\n", len(res.Parse.Items), res.Container.Code)
	return nil
}

func exportReport(svc *warehouse.Service, opts options) error {
	report, err := export.ParseReport(opts.exportReport)
	if err != nil {
		return err
	}
	path, err := svc.Export(report, opts.exportOut)
	if err != nil {
		return fmt.Errorf("exporting %s: %w", report, err)
	}
	fmt.Printf("%s salvo em %s\n", report.Title(), path)
	return nil
}
