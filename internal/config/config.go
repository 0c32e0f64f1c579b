// Package config provides configuration management for Vectra.
// Configurations are loaded from TOML files with XDG-compliant paths.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"slices"
	"strings"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Company       CompanyConfig       `toml:"company"`
	Pricing       PricingConfig       `toml:"pricing"`
	Labels        LabelsConfig        `toml:"labels"`
	Notifications NotificationsConfig `toml:"notifications"`
	Display       DisplayConfig       `toml:"display"`
	Logging       LoggingConfig       `toml:"logging"`
	Database      DatabaseConfig      `toml:"database"`
}

// Settings is the operator-editable part of the configuration that the
// warehouse store reads: company identity, pricing, labels and notifications.
type Settings struct {
	Company       CompanyConfig
	Pricing       PricingConfig
	Labels        LabelsConfig
	Notifications NotificationsConfig
}

// CompanyConfig identifies the storage operator on invoices and labels.
type CompanyConfig struct {
	Name    string `toml:"name"`
	CNPJ    string `toml:"cnpj"`
	Address string `toml:"address"`
	Phone   string `toml:"phone"`
	Email   string `toml:"email"`
}

// PricingConfig holds the storage tariff in BRL.
type PricingConfig struct {
	StoragePerM3  float64 `toml:"storage_per_m3"`
	HandlingPerKg float64 `toml:"handling_per_kg"`
	MinMonthlyFee float64 `toml:"min_monthly_fee"`
}

// PrinterType identifies the thermal printer family.
type PrinterType string

const (
	PrinterSelbeti PrinterType = "SELBETI"
	PrinterZebra   PrinterType = "ZEBRA"
	PrinterGeneric PrinterType = "GENERIC"
)

// LabelsConfig controls label layout and the label printer.
type LabelsConfig struct {
	PrinterType         PrinterType `toml:"printer_type"`
	PaperWidthMM        float64     `toml:"paper_width_mm"`
	PaperHeightMM       float64     `toml:"paper_height_mm"`
	DPI                 int         `toml:"dpi"`
	PrinterAddress      string      `toml:"printer_address"` // host or host:port, empty = no printer
	PrintTimeoutSeconds int         `toml:"print_timeout_seconds"`
}

// PrintTimeout returns the printer timeout as a duration.
func (l LabelsConfig) PrintTimeout() time.Duration {
	return time.Duration(l.PrintTimeoutSeconds) * time.Second
}

// NotificationsConfig controls operator reminders.
type NotificationsConfig struct {
	EmailOnEntry   bool `toml:"email_on_entry"`
	EmailOnExit    bool `toml:"email_on_exit"`
	EmailOnInvoice bool `toml:"email_on_invoice"`
	MeasurementDay int  `toml:"measurement_day"` // day of month, 1-28
}

// DisplayConfig controls TUI appearance.
type DisplayConfig struct {
	ColorScheme ColorScheme `toml:"color_scheme"`
	Operator    string      `toml:"operator"` // name recorded in audit entries
}

// ColorScheme defines the terminal color palette.
type ColorScheme string

const (
	ColorSchemeHarbor ColorScheme = "harbor"
	ColorSchemeAmber  ColorScheme = "amber"
	ColorSchemeMono   ColorScheme = "mono"
)

var colorSchemes = []ColorScheme{ColorSchemeHarbor, ColorSchemeAmber, ColorSchemeMono}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level LogLevel `toml:"level"`
	File  string   `toml:"file"`
}

// LogLevel defines logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}

// Slog converts the level for slog.HandlerOptions. Empty means info.
func (l LogLevel) Slog() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// DatabaseConfig controls SQLite database settings.
type DatabaseConfig struct {
	Path                string `toml:"path"`
	BackupIntervalHours int    `toml:"backup_interval_hours"`
	BackupRetentionDays int    `toml:"backup_retention_days"`
}

// Settings returns a copy of the operator-editable sections.
func (c *Config) Settings() Settings {
	return Settings{
		Company:       c.Company,
		Pricing:       c.Pricing,
		Labels:        c.Labels,
		Notifications: c.Notifications,
	}
}

// ApplySettings replaces the operator-editable sections.
func (c *Config) ApplySettings(s Settings) {
	c.Company = s.Company
	c.Pricing = s.Pricing
	c.Labels = s.Labels
	c.Notifications = s.Notifications
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Settings().Validate(); err != nil {
		errs = append(errs, err)
	}

	if err := c.Display.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks the operator-editable sections.
func (s Settings) Validate() error {
	var errs []error

	if err := s.Company.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("company: %w", err))
	}

	if err := s.Pricing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pricing: %w", err))
	}

	if err := s.Labels.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("labels: %w", err))
	}

	if err := s.Notifications.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("notifications: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the company configuration is valid.
func (c *CompanyConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}

	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			errs = append(errs, fmt.Errorf("invalid email: %s", c.Email))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the pricing configuration is valid.
func (p *PricingConfig) Validate() error {
	var errs []error

	if p.StoragePerM3 < 0 {
		errs = append(errs, errors.New("storage_per_m3 must be non-negative"))
	}

	if p.HandlingPerKg < 0 {
		errs = append(errs, errors.New("handling_per_kg must be non-negative"))
	}

	if p.MinMonthlyFee < 0 {
		errs = append(errs, errors.New("min_monthly_fee must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the labels configuration is valid.
func (l *LabelsConfig) Validate() error {
	var errs []error

	switch l.PrinterType {
	case PrinterSelbeti, PrinterZebra, PrinterGeneric:
	default:
		errs = append(errs, fmt.Errorf("invalid printer_type: %s", l.PrinterType))
	}

	if l.PaperWidthMM <= 0 || l.PaperHeightMM <= 0 {
		errs = append(errs, errors.New("paper_width_mm and paper_height_mm must be positive"))
	}

	if l.DPI <= 0 {
		errs = append(errs, errors.New("dpi must be positive"))
	}

	if l.PrinterAddress != "" && strings.Contains(l.PrinterAddress, ":") {
		if _, _, err := net.SplitHostPort(l.PrinterAddress); err != nil {
			errs = append(errs, fmt.Errorf("invalid printer_address: %w", err))
		}
	}

	if l.PrintTimeoutSeconds < 0 {
		errs = append(errs, errors.New("print_timeout_seconds must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the notifications configuration is valid.
func (n *NotificationsConfig) Validate() error {
	if n.MeasurementDay < 1 || n.MeasurementDay > 28 {
		return fmt.Errorf("measurement_day must be between 1 and 28, got %d", n.MeasurementDay)
	}
	return nil
}

// Validate accepts an empty scheme, which renders as harbor.
func (d *DisplayConfig) Validate() error {
	if d.ColorScheme != "" && !slices.Contains(colorSchemes, d.ColorScheme) {
		return fmt.Errorf("invalid color_scheme: %s", d.ColorScheme)
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	if l.Level != "" && !slices.Contains(logLevels, l.Level) {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}
	return nil
}

// Validate checks that the database configuration is valid.
func (d *DatabaseConfig) Validate() error {
	var errs []error

	if d.Path == "" {
		errs = append(errs, errors.New("path is required"))
	}

	if d.BackupIntervalHours < 0 {
		errs = append(errs, errors.New("backup_interval_hours must be non-negative"))
	}

	if d.BackupRetentionDays < 0 {
		errs = append(errs, errors.New("backup_retention_days must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// DefaultSettings returns the operator-editable defaults.
func DefaultSettings() Settings {
	return Settings{
		Company: CompanyConfig{
			Name:    "Vectra Storage",
			CNPJ:    "00.000.000/0001-00",
			Address: "Rua do Porto, 123 - Santos/SP",
			Phone:   "+55 13 3333-3333",
			Email:   "contato@vectra.com.br",
		},
		Pricing: PricingConfig{
			StoragePerM3:  85,
			HandlingPerKg: 0.15,
			MinMonthlyFee: 1500,
		},
		Labels: LabelsConfig{
			PrinterType:         PrinterSelbeti,
			PaperWidthMM:        100,
			PaperHeightMM:       50,
			DPI:                 203,
			PrintTimeoutSeconds: 5,
		},
		Notifications: NotificationsConfig{
			EmailOnEntry:   true,
			EmailOnExit:    true,
			EmailOnInvoice: true,
			MeasurementDay: 25,
		},
	}
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	cfg := &Config{
		Display: DisplayConfig{
			ColorScheme: ColorSchemeHarbor,
			Operator:    "Admin",
		},
		Logging: LoggingConfig{
			Level: LogLevelInfo,
			File:  "logs/vectra.log",
		},
		Database: DatabaseConfig{
			Path:                "vectra.db",
			BackupIntervalHours: 24,
			BackupRetentionDays: 30,
		},
	}
	cfg.ApplySettings(DefaultSettings())
	return cfg
}
