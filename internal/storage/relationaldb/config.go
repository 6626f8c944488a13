package relationaldb

import (
	"fmt"
	"net/url"
	"time"
)

// Driver names, as registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config contains journal database settings
type Config struct {
	// Database connection settings
	Driver           string `json:"driver" mapstructure:"driver"`
	ConnectionString string `json:"connection_string" mapstructure:"connection_string"`
	Host             string `json:"host" mapstructure:"host"`
	Port             int    `json:"port" mapstructure:"port"`
	Database         string `json:"database" mapstructure:"database"`
	Username         string `json:"username" mapstructure:"username"`
	Password         string `json:"password" mapstructure:"password"`
	SSLMode          string `json:"ssl_mode" mapstructure:"ssl_mode"`

	// Connection pool settings
	MaxOpenConns    int           `json:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`

	DefaultTimeout time.Duration `json:"default_timeout" mapstructure:"default_timeout"`

	// Retry settings for Open
	MaxRetries int           `json:"max_retries" mapstructure:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay" mapstructure:"retry_delay"`

	EnableWALMode bool `json:"enable_wal_mode" mapstructure:"enable_wal_mode"`
}

// NewConfig creates a new Config with sensible defaults
func NewConfig() *Config {
	return &Config{
		Driver:          DriverPostgres,
		Host:            "localhost",
		Port:            5432,
		Database:        "lplockd",
		Username:        "lplockd",
		SSLMode:         "prefer",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		DefaultTimeout:  10 * time.Second,
		MaxRetries:      3,
		RetryDelay:      200 * time.Millisecond,
	}
}

// SQLiteConfig creates a SQLite configuration. ":memory:" opens a private
// in-memory database.
func SQLiteConfig(path string) *Config {
	c := NewConfig()
	c.Driver = DriverSQLite
	c.Database = path
	c.MaxOpenConns = 1
	c.MaxIdleConns = 1
	c.EnableWALMode = path != ":memory:"
	return c
}

// Validate checks the configuration for common errors
func (c *Config) Validate() error {
	switch c.Driver {
	case "postgres", "postgresql":
		c.Driver = DriverPostgres
	case "sqlite", "sqlite3":
		c.Driver = DriverSQLite
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDriver, c.Driver)
	}

	if c.ConnectionString == "" {
		if c.Driver == DriverPostgres {
			if c.Host == "" {
				return ErrMissingHost
			}
			if c.Port <= 0 || c.Port > 65535 {
				return ErrInvalidPort
			}
			if c.Username == "" {
				return ErrMissingUsername
			}
			switch c.SSLMode {
			case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
			default:
				return fmt.Errorf("invalid SSL mode: %s", c.SSLMode)
			}
		}
		if c.Database == "" {
			return ErrMissingDatabase
		}
	}

	if c.MaxOpenConns < 0 {
		return ErrInvalidMaxOpenConns
	}
	if c.MaxIdleConns > c.MaxOpenConns && c.MaxOpenConns > 0 {
		return ErrMaxIdleExceedsMaxOpen
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRetries < 0 || c.RetryDelay < 0 {
		return ErrInvalidRetry
	}
	return nil
}

// BuildConnectionString builds a connection string from the config
func (c *Config) BuildConnectionString() (string, error) {
	if c.ConnectionString != "" {
		return c.ConnectionString, nil
	}

	switch c.Driver {
	case DriverPostgres:
		u := url.URL{
			Scheme: "postgres",
			Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:   "/" + c.Database,
		}
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
		params := url.Values{}
		params.Set("sslmode", c.SSLMode)
		params.Set("application_name", "lplockd")
		u.RawQuery = params.Encode()
		return u.String(), nil
	case DriverSQLite:
		if c.Database == ":memory:" {
			return c.Database, nil
		}
		params := url.Values{}
		params.Add("_pragma", "busy_timeout(5000)")
		if c.EnableWALMode {
			params.Add("_pragma", "journal_mode(WAL)")
		}
		return "file:" + c.Database + "?" + params.Encode(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidDriver, c.Driver)
	}
}

// String returns a string representation of the config (with password redacted)
func (c *Config) String() string {
	clone := *c
	if clone.Password != "" {
		clone.Password = "***"
	}
	connStr, _ := clone.BuildConnectionString()
	return fmt.Sprintf("Config{Driver: %s, Database: %s, Connection: %s}", clone.Driver, clone.Database, connStr)
}
