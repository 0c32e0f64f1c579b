package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultConfigFileName is the configuration file looked up in each
	// search directory.
	DefaultConfigFileName = "vectra.toml"

	// XDGSubdir is the application directory under the XDG config and data
	// homes.
	XDGSubdir = "vectra"
)

const fileHeader = `# Vectra Storage Manager configuration
#
# Company, pricing, labels and notifications are also editable from the
# dashboard; changes made there are written back to this file.

`

// LoadError reports which configuration file could not be used.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return "config " + e.Path + ": " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// Load returns the configuration and the file it came from. An explicit path
// must exist. Otherwise the XDG config file wins over ./vectra.toml, and when
// neither exists the defaults are written to the first writable of the two
// if createDefault is set. The returned path is empty when nothing could be
// written.
func Load(explicitPath string, createDefault bool) (*Config, string, error) {
	candidates := []string{explicitPath}
	if explicitPath == "" {
		candidates = searchPaths()
	}

	if i := slices.IndexFunc(candidates, fileExists); i >= 0 || explicitPath != "" {
		path := explicitPath
		if i >= 0 {
			path = candidates[i]
		}
		cfg, err := decodeFile(path)
		if err != nil {
			return nil, "", &LoadError{Path: path, Err: err}
		}
		return cfg, path, nil
	}

	if !createDefault {
		return nil, "", errors.New("no configuration file found in " + strings.Join(candidates, ", "))
	}
	cfg := Default()
	for _, path := range candidates {
		if Save(cfg, path) == nil {
			return cfg, path, nil
		}
	}
	return cfg, "", nil
}

func searchPaths() []string {
	local := filepath.Join(".", DefaultConfigFileName)
	if home := xdgHome("XDG_CONFIG_HOME", ".config"); home != "" {
		return []string{filepath.Join(home, XDGSubdir, DefaultConfigFileName), local}
	}
	return []string{local}
}

// decodeFile overlays the file on the defaults, so missing sections keep
// their default values. Keys the Config does not know are an error.
func decodeFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	cfg := Default()
	md, err := toml.Decode(string(raw), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	if extra := md.Undecoded(); len(extra) > 0 {
		names := make([]string, 0, len(extra))
		for _, k := range extra {
			names = append(names, k.String())
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(names, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path through a temporary file in the same directory, so
// readers never see a half-written file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".vectra-*.toml")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	var encErr error
	if _, encErr = tmp.WriteString(fileHeader); encErr == nil {
		encErr = toml.NewEncoder(tmp).Encode(cfg)
	}
	if err := errors.Join(encErr, tmp.Close()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// xdgHome returns $env, or fallback under the home directory, or "" when
// neither is known.
func xdgHome(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, filepath.FromSlash(fallback))
}

func dataHome() string {
	if home := xdgHome("XDG_DATA_HOME", ".local/share"); home != "" {
		return filepath.Join(home, XDGSubdir)
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureDataDir returns the database file path, creating its directory.
// Relative paths are placed in the XDG data directory when it can be
// created, else they stay relative to the working directory.
func EnsureDataDir(cfg *Config) (string, error) {
	dbPath := cfg.Database.Path
	if filepath.IsAbs(dbPath) {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return "", fmt.Errorf("creating database directory: %w", err)
		}
		return dbPath, nil
	}

	data := dataHome()
	if data == "" || os.MkdirAll(data, 0750) != nil {
		return dbPath, nil
	}
	return filepath.Join(data, dbPath), nil
}

// EnsureLogDir returns the log file path, creating its directory, or "" when
// logging goes to stderr.
func EnsureLogDir(cfg *Config) (string, error) {
	if cfg.Logging.File == "" {
		return "", nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0750); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}
	return cfg.Logging.File, nil
}

// BackupDir is where database backups are kept.
func BackupDir(cfg *Config) (string, error) { return yardDir(cfg, "backups") }

// ExportDir is where reports are written by default.
func ExportDir(cfg *Config) (string, error) { return yardDir(cfg, "exports") }

// LabelsDir is where ZPL files and label sheets are saved.
func LabelsDir(cfg *Config) (string, error) { return yardDir(cfg, "labels") }

// yardDir creates and returns the named directory next to the database.
func yardDir(cfg *Config, name string) (string, error) {
	base := dataHome()
	if filepath.IsAbs(cfg.Database.Path) {
		base = filepath.Dir(cfg.Database.Path)
	}
	dir := filepath.Join(base, name)

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("creating %s directory: %w", name, err)
	}
	return dir, nil
}
