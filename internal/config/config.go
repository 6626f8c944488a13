package config

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DefaultConfigPath is the configuration file looked up when none is given.
const DefaultConfigPath = "lplockd.toml"

// Config represents the complete lplockd configuration
type Config struct {
	// 1. Programs
	Program ProgramConfig `toml:"program" mapstructure:"program"`

	// 2. Lock limits
	Lock LockConfig `toml:"lock" mapstructure:"lock"`

	// 3. Pool defaults
	Pool PoolConfig `toml:"pool" mapstructure:"pool"`

	// 4. Storage
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Journal  JournalConfig  `toml:"journal" mapstructure:"journal"`

	// 5. Notifications
	Events EventsConfig `toml:"events" mapstructure:"events"`

	// 6. Diagnostics
	Log     LogConfig     `toml:"log" mapstructure:"log"`
	Metrics MetricsConfig `toml:"metrics" mapstructure:"metrics"`

	// Owner is the base58 public key lock commands act for when --owner
	// is not given.
	Owner string `toml:"owner" mapstructure:"owner"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ProgramConfig represents the [program] section
type ProgramConfig struct {
	// ID is the lock program id escrow vaults are derived under
	ID string `toml:"id" mapstructure:"id"`

	// AMMID is the pool program id
	AMMID string `toml:"amm_id" mapstructure:"amm_id"`
}

// LockConfig represents the [lock] section
type LockConfig struct {
	// MinAmount is the exclusive lower bound on a lock amount
	MinAmount uint64 `toml:"min_amount" mapstructure:"min_amount"`

	// MaxDuration is the exclusive upper bound on a timed lock, in seconds
	MaxDuration uint64 `toml:"max_duration" mapstructure:"max_duration"`
}

// PoolConfig represents the [pool] section. Rates are parts per million.
type PoolConfig struct {
	TradeFeeRate    uint64 `toml:"trade_fee_rate" mapstructure:"trade_fee_rate"`
	ProtocolFeeRate uint64 `toml:"protocol_fee_rate" mapstructure:"protocol_fee_rate"`
	FundFeeRate     uint64 `toml:"fund_fee_rate" mapstructure:"fund_fee_rate"`
}

// MetricsConfig represents the [metrics] section
type MetricsConfig struct {
	// Textfile, when set, receives the metrics in text exposition format
	// after every command, for the node exporter textfile collector.
	Textfile string `toml:"textfile" mapstructure:"textfile"`
}

// GetConfigPath returns the path the configuration was read from, empty
// when only defaults and environment were used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// ProgramID parses the lock program id.
func (c *Config) ProgramID() (solana.PublicKey, error) {
	return parseKey("program.id", c.Program.ID)
}

// AMMProgramID parses the pool program id.
func (c *Config) AMMProgramID() (solana.PublicKey, error) {
	return parseKey("program.amm_id", c.Program.AMMID)
}

// OwnerKey parses the default owner. It is zero when no owner is configured.
func (c *Config) OwnerKey() (solana.PublicKey, error) {
	if c.Owner == "" {
		return solana.PublicKey{}, nil
	}
	return parseKey("owner", c.Owner)
}

func parseKey(field, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return key, nil
}
