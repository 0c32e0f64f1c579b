package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}

	if cfg.Pricing.StoragePerM3 != 85 {
		t.Errorf("StoragePerM3 = %v, want 85", cfg.Pricing.StoragePerM3)
	}
	if cfg.Pricing.HandlingPerKg != 0.15 {
		t.Errorf("HandlingPerKg = %v, want 0.15", cfg.Pricing.HandlingPerKg)
	}
	if cfg.Pricing.MinMonthlyFee != 1500 {
		t.Errorf("MinMonthlyFee = %v, want 1500", cfg.Pricing.MinMonthlyFee)
	}
	if cfg.Labels.PrinterType != PrinterSelbeti || cfg.Labels.DPI != 203 {
		t.Errorf("Labels = %+v", cfg.Labels)
	}
	if cfg.Notifications.MeasurementDay != 25 {
		t.Errorf("MeasurementDay = %v, want 25", cfg.Notifications.MeasurementDay)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"Valid defaults", func(s *Settings) {}, ""},
		{"Missing company name", func(s *Settings) { s.Company.Name = " " }, "name is required"},
		{"Bad email", func(s *Settings) { s.Company.Email = "not-an-email" }, "invalid email"},
		{"Negative storage price", func(s *Settings) { s.Pricing.StoragePerM3 = -1 }, "storage_per_m3"},
		{"Unknown printer", func(s *Settings) { s.Labels.PrinterType = "LASER" }, "invalid printer_type"},
		{"Zero paper size", func(s *Settings) { s.Labels.PaperWidthMM = 0 }, "paper_width_mm"},
		{"Zero dpi", func(s *Settings) { s.Labels.DPI = 0 }, "dpi"},
		{"Bad printer address", func(s *Settings) { s.Labels.PrinterAddress = "10.0.0.5:9100:1" }, "printer_address"},
		{"Printer host only", func(s *Settings) { s.Labels.PrinterAddress = "10.0.0.5" }, ""},
		{"Measurement day too high", func(s *Settings) { s.Notifications.MeasurementDay = 31 }, "measurement_day"},
		{"Measurement day zero", func(s *Settings) { s.Notifications.MeasurementDay = 0 }, "measurement_day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_SettingsRoundTrip(t *testing.T) {
	cfg := Default()
	s := cfg.Settings()
	s.Pricing.StoragePerM3 = 90
	s.Company.Name = "Porto Seco"

	if cfg.Pricing.StoragePerM3 != 85 {
		t.Fatal("Settings() returned a view instead of a copy")
	}

	cfg.ApplySettings(s)
	if cfg.Pricing.StoragePerM3 != 90 || cfg.Company.Name != "Porto Seco" {
		t.Errorf("ApplySettings did not apply: %+v", cfg.Settings())
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", DefaultConfigFileName)

	cfg := Default()
	cfg.Company.Name = "Terminal Sul"
	cfg.Labels.PrinterAddress = "192.168.0.50"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, loadedFrom, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loadedFrom != path {
		t.Errorf("Load() path = %v, want %v", loadedFrom, path)
	}
	if loaded.Company.Name != "Terminal Sul" {
		t.Errorf("Company.Name = %v", loaded.Company.Name)
	}
	if loaded.Labels.PrinterAddress != "192.168.0.50" {
		t.Errorf("PrinterAddress = %v", loaded.Labels.PrinterAddress)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	content := "[pricing]\nstorage_per_m3 = 100.0\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Pricing.StoragePerM3 != 100 {
		t.Errorf("StoragePerM3 = %v, want 100", cfg.Pricing.StoragePerM3)
	}
	if cfg.Pricing.MinMonthlyFee != 1500 {
		t.Errorf("MinMonthlyFee = %v, want default 1500", cfg.Pricing.MinMonthlyFee)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"Invalid TOML", "[pricing\n", "parsing TOML"},
		{"Unknown key", "[pricing]\nfoo = 1\n", "unknown keys"},
		{"Invalid value", "[notifications]\nmeasurement_day = 40\n", "validating config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultConfigFileName)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			_, _, err := Load(path, false)
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Load() error = %v, want *LoadError", err)
			}
			if le.Path != path || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_CreatesDefault(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())

	cfg, path, err := Load("", true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := filepath.Join(xdg, XDGSubdir, DefaultConfigFileName)
	if path != want {
		t.Errorf("Load() path = %v, want %v", path, want)
	}
	if !fileExists(want) {
		t.Error("default config was not written")
	}
	if cfg.Company.Name != "Vectra Storage" {
		t.Errorf("Company.Name = %v", cfg.Company.Name)
	}
}

func TestLoad_NoFileNoDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	if _, _, err := Load("", false); err == nil {
		t.Error("Load() error = nil, want no configuration file found")
	}
}

func TestEnsureDataDir(t *testing.T) {
	t.Run("Absolute path", func(t *testing.T) {
		cfg := Default()
		cfg.Database.Path = filepath.Join(t.TempDir(), "data", "vectra.db")
		got, err := EnsureDataDir(cfg)
		if err != nil {
			t.Fatalf("EnsureDataDir() error = %v", err)
		}
		if got != cfg.Database.Path {
			t.Errorf("EnsureDataDir() = %v", got)
		}
		if _, err := os.Stat(filepath.Dir(got)); err != nil {
			t.Errorf("data directory not created: %v", err)
		}
	})

	t.Run("Relative path uses XDG data home", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_DATA_HOME", xdg)
		cfg := Default()
		got, err := EnsureDataDir(cfg)
		if err != nil {
			t.Fatalf("EnsureDataDir() error = %v", err)
		}
		if want := filepath.Join(xdg, XDGSubdir, "vectra.db"); got != want {
			t.Errorf("EnsureDataDir() = %v, want %v", got, want)
		}
	})
}

func TestBackupDir(t *testing.T) {
	cfg := Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "vectra.db")

	dir, err := BackupDir(cfg)
	if err != nil {
		t.Fatalf("BackupDir() error = %v", err)
	}
	if want := filepath.Join(filepath.Dir(cfg.Database.Path), "backups"); dir != want {
		t.Errorf("BackupDir() = %v, want %v", dir, want)
	}
}

func TestLogLevel_Slog(t *testing.T) {
	for level, want := range map[LogLevel]slog.Level{
		"":            slog.LevelInfo,
		LogLevelDebug: slog.LevelDebug,
		LogLevelInfo:  slog.LevelInfo,
		LogLevelWarn:  slog.LevelWarn,
		LogLevelError: slog.LevelError,
		"verbose":     slog.LevelInfo,
	} {
		if got := level.Slog(); got != want {
			t.Errorf("LogLevel(%q).Slog() = %v, want %v", level, got, want)
		}
	}
}

func TestDisplayAndLogging_Validate(t *testing.T) {
	cfg := Default()
	cfg.Display.ColorScheme = "neon"
	cfg.Logging.Level = "trace"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() accepted an unknown scheme and level")
	}
	for _, want := range []string{"invalid color_scheme: neon", "invalid log level: trace"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %v, missing %q", err, want)
		}
	}

	cfg.Display.ColorScheme, cfg.Logging.Level = "", ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty scheme and level should fall back to defaults: %v", err)
	}
}
