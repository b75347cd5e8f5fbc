// Package config holds the calculator's startup configuration.
//
// The configuration is resolved once at startup (defaults, then an
// optional YAML file, then RECKON_* environment overrides) and passed
// explicitly into the evaluator, engine, and persistence constructors.
// Core logic never reads the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"
)

// History backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config is the complete calculator configuration.
type Config struct {
	// BaseDir is the root for the default log and history directories.
	BaseDir string `yaml:"base_dir"`

	// LogDir is where the operational log file is written.
	LogDir string `yaml:"log_dir"`

	// HistoryDir is where the persisted history lives.
	HistoryDir string `yaml:"history_dir"`

	// MaxHistorySize bounds the committed history (FIFO eviction).
	MaxHistorySize int `yaml:"max_history_size"`

	// AutoSave makes record/undo/redo trigger an immediate save.
	AutoSave bool `yaml:"auto_save"`

	// Precision is the number of fractional digits kept in every result.
	Precision int `yaml:"precision"`

	// MaxInputValue is the absolute bound on any operand, as a decimal
	// string (e.g. "1e100").
	MaxInputValue string `yaml:"max_input_value"`

	// Encoding is the IANA name of the text encoding used for the
	// history file (CSV backend only).
	Encoding string `yaml:"encoding"`

	// HistoryBackend selects the persistence backend: csv or sqlite.
	HistoryBackend string `yaml:"history_backend"`
}

// Default returns the configuration used when nothing is overridden.
// Directories default under ~/.reckon (or the current directory when the
// home directory cannot be determined).
func Default() Config {
	base := ".reckon"
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".reckon")
	}
	return Config{
		BaseDir:        base,
		MaxHistorySize: 1000,
		AutoSave:       true,
		Precision:      10,
		MaxInputValue:  "1e100",
		Encoding:       "utf-8",
		HistoryBackend: BackendCSV,
	}
}

// Load resolves the effective configuration: defaults, then the YAML file
// at path (if path is non-empty), then environment overrides. The result
// is validated; a validation failure means startup must abort before any
// engine is constructed.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.fillDirs()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from RECKON_* environment variables.
func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("RECKON_BASE_DIR"); ok {
		c.BaseDir = v
	}
	if v, ok := os.LookupEnv("RECKON_LOG_DIR"); ok {
		c.LogDir = v
	}
	if v, ok := os.LookupEnv("RECKON_HISTORY_DIR"); ok {
		c.HistoryDir = v
	}
	if v, ok := os.LookupEnv("RECKON_MAX_HISTORY_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RECKON_MAX_HISTORY_SIZE: %w", err)
		}
		c.MaxHistorySize = n
	}
	if v, ok := os.LookupEnv("RECKON_AUTO_SAVE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RECKON_AUTO_SAVE: %w", err)
		}
		c.AutoSave = b
	}
	if v, ok := os.LookupEnv("RECKON_PRECISION"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RECKON_PRECISION: %w", err)
		}
		c.Precision = n
	}
	if v, ok := os.LookupEnv("RECKON_MAX_INPUT_VALUE"); ok {
		c.MaxInputValue = v
	}
	if v, ok := os.LookupEnv("RECKON_ENCODING"); ok {
		c.Encoding = v
	}
	if v, ok := os.LookupEnv("RECKON_HISTORY_BACKEND"); ok {
		c.HistoryBackend = v
	}
	return nil
}

// fillDirs derives LogDir and HistoryDir from BaseDir when unset.
func (c *Config) fillDirs() {
	if c.LogDir == "" {
		c.LogDir = filepath.Join(c.BaseDir, "logs")
	}
	if c.HistoryDir == "" {
		c.HistoryDir = filepath.Join(c.BaseDir, "history")
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.MaxHistorySize < 1 {
		return fmt.Errorf("max_history_size must be positive, got %d", c.MaxHistorySize)
	}
	if c.Precision < 0 {
		return fmt.Errorf("precision must be non-negative, got %d", c.Precision)
	}
	if _, err := c.MaxInput(); err != nil {
		return err
	}
	if _, err := htmlindex.Get(c.Encoding); err != nil {
		return fmt.Errorf("unknown text encoding %q", c.Encoding)
	}
	switch c.HistoryBackend {
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("unknown history backend %q (must be %s or %s)",
			c.HistoryBackend, BackendCSV, BackendSQLite)
	}
	return nil
}

// EnsureDirs creates the log and history directories.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.LogDir, c.HistoryDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// MaxInput parses MaxInputValue into a decimal.
func (c Config) MaxInput() (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(c.MaxInputValue)
	if err != nil {
		return nil, fmt.Errorf("max_input_value %q: %w", c.MaxInputValue, err)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("max_input_value must be positive, got %s", c.MaxInputValue)
	}
	return d, nil
}

// HistoryFile is the CSV history file path.
func (c Config) HistoryFile() string {
	return filepath.Join(c.HistoryDir, "history.csv")
}

// HistoryDB is the SQLite history database path.
func (c Config) HistoryDB() string {
	return filepath.Join(c.HistoryDir, "history.db")
}

// LogFile is the operational log path.
func (c Config) LogFile() string {
	return filepath.Join(c.LogDir, "reckon.log")
}
