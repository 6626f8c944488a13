package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/LeJamon/goLPLockd/internal/storage/compression"
	"github.com/LeJamon/goLPLockd/internal/storage/database"
	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb"
	"github.com/LeJamon/goLPLockd/internal/storage/state"
)

// DatabaseConfig represents the [database] section
// Configures the key/value store the ledger entries live in
type DatabaseConfig struct {
	Backend    string `toml:"backend" mapstructure:"backend"`
	Path       string `toml:"path" mapstructure:"path"`
	CacheSize  int    `toml:"cache_size" mapstructure:"cache_size"`
	Compressor string `toml:"compressor" mapstructure:"compressor"`
}

// JournalConfig represents the [journal] section
// The journal is the relational audit trail of processed transactions
type JournalConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Driver  string `toml:"driver" mapstructure:"driver"`

	// Path is the sqlite database file
	Path string `toml:"path" mapstructure:"path"`

	// DSN is a full postgres connection string. When empty the discrete
	// fields below are used.
	DSN      string `toml:"dsn" mapstructure:"dsn"`
	Host     string `toml:"host" mapstructure:"host"`
	Port     int    `toml:"port" mapstructure:"port"`
	Name     string `toml:"name" mapstructure:"name"`
	User     string `toml:"user" mapstructure:"user"`
	Password string `toml:"password" mapstructure:"password"`
	SSLMode  string `toml:"sslmode" mapstructure:"sslmode"`

	MaxOpenConns int           `toml:"max_open_conns" mapstructure:"max_open_conns"`
	Timeout      time.Duration `toml:"timeout" mapstructure:"timeout"`
}

// Validate performs validation on the database configuration
func (d *DatabaseConfig) Validate() error {
	if !database.IsBackend(d.Backend) {
		return fmt.Errorf("invalid database backend: %s (valid options: %s)", d.Backend, strings.Join(database.Backends, ", "))
	}
	if !compression.IsAvailable(d.Compressor) {
		return fmt.Errorf("invalid compressor: %s (valid options: %s)", d.Compressor, strings.Join(compression.Available(), ", "))
	}
	if d.Backend != database.BackendMemory && d.Path == "" {
		return fmt.Errorf("database path is required for the %s backend", d.Backend)
	}
	if d.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", d.CacheSize)
	}
	return nil
}

// StoreConfig returns the ledger store tunables.
func (d *DatabaseConfig) StoreConfig() state.Config {
	return state.Config{CacheSize: d.CacheSize, Compressor: d.Compressor}
}

// Validate performs validation on the journal configuration
func (j *JournalConfig) Validate() error {
	if !j.Enabled {
		return nil
	}
	cfg, err := j.Relational()
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// Relational builds the relational database configuration of the journal.
func (j *JournalConfig) Relational() (*relationaldb.Config, error) {
	switch j.Driver {
	case relationaldb.DriverSQLite, "sqlite3":
		if j.Path == "" {
			return nil, fmt.Errorf("journal path is required for sqlite")
		}
		cfg := relationaldb.SQLiteConfig(j.Path)
		if j.Timeout > 0 {
			cfg.DefaultTimeout = j.Timeout
		}
		return cfg, nil
	case relationaldb.DriverPostgres, "postgresql", "pg":
		cfg := relationaldb.NewConfig()
		cfg.ConnectionString = j.DSN
		if j.Host != "" {
			cfg.Host = j.Host
		}
		if j.Port != 0 {
			cfg.Port = j.Port
		}
		if j.Name != "" {
			cfg.Database = j.Name
		}
		if j.User != "" {
			cfg.Username = j.User
		}
		cfg.Password = j.Password
		if j.SSLMode != "" {
			cfg.SSLMode = j.SSLMode
		}
		if j.MaxOpenConns > 0 {
			cfg.MaxOpenConns = j.MaxOpenConns
			cfg.MaxIdleConns = min(cfg.MaxIdleConns, j.MaxOpenConns)
		}
		if j.Timeout > 0 {
			cfg.DefaultTimeout = j.Timeout
		}
		return cfg, nil
	default:
		return nil, fmt.Errorf("invalid journal driver: %s (valid options: sqlite, postgres)", j.Driver)
	}
}
