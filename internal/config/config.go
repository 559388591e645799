// Package config provides the YAML-based application configuration with
// first-run creation, normalization of missing values and atomic saves.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"sportkal/internal/model"
)

// Config is the top-level application configuration.
type Config struct {
	// Source is the TSV source document, either a filesystem path or an
	// HTTP(S) URL.
	Source string `yaml:"source" json:"source"`

	// CacheDir is where fetched source bodies are cached for fallback.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// StateDB is the SQLite file backing durable state persistence.
	StateDB string `yaml:"state_db" json:"state_db"`

	// OutputDir is where exported calendar files are written.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// CalendarName is the default calendar display name for exports.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`

	// TitleFormat is the default summary composition, "sport_event" or
	// "event_only".
	TitleFormat string `yaml:"title_format" json:"title_format"`

	// RefreshCron is a cron-style schedule for re-fetching the source
	// document in serve mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source:       "",
		CacheDir:     "./var/source-cache",
		Listen:       "127.0.0.1:8080",
		StateDB:      "./var/sportkal.db",
		OutputDir:    "output",
		CalendarName: "Sportkalender Selection",
		TitleFormat:  string(model.TitleFormatSportEvent),
		RefreshCron:  "*/30 * * * *",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.CacheDir == "" {
		c.CacheDir = "./var/source-cache"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.StateDB == "" {
		c.StateDB = "./var/sportkal.db"
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.CalendarName == "" {
		c.CalendarName = "Sportkalender Selection"
	}
	// Unknown title formats fall back to the default composition.
	c.TitleFormat = string(model.ParseTitleFormat(c.TitleFormat))
	if c.RefreshCron == "" {
		c.RefreshCron = "*/30 * * * *"
	}
}

// Load loads configuration from the given YAML path. If the file does
// not exist, a default config is written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically via a temp file + rename,
// ensuring the parent directory exists and final permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".sportkal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
