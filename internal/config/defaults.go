package config

import (
	"github.com/spf13/viper"

	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/node"
	"github.com/LeJamon/goLPLockd/internal/storage/compression"
)

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	// 1. Programs
	v.SetDefault("program.id", node.DefaultProgramID.String())
	v.SetDefault("program.amm_id", node.DefaultAMMProgramID.String())

	// 2. Lock limits
	v.SetDefault("lock.min_amount", tx.DefaultMinLockAmount)
	v.SetDefault("lock.max_duration", tx.DefaultMaxLockDuration)

	// 3. Pool defaults
	v.SetDefault("pool.trade_fee_rate", node.DefaultTradeFeeRate)
	v.SetDefault("pool.protocol_fee_rate", node.DefaultProtocolFeeRate)
	v.SetDefault("pool.fund_fee_rate", node.DefaultFundFeeRate)

	// 4. Storage
	v.SetDefault("database.backend", "pebble")
	v.SetDefault("database.path", "data/state")
	v.SetDefault("database.cache_size", 4096)
	v.SetDefault("database.compressor", compression.Default)

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.path", "data/journal.db")
	v.SetDefault("journal.dsn", "")
	v.SetDefault("journal.host", "localhost")
	v.SetDefault("journal.port", 5432)
	v.SetDefault("journal.name", "lplockd")
	v.SetDefault("journal.user", "lplockd")
	v.SetDefault("journal.password", "")
	v.SetDefault("journal.sslmode", "prefer")
	v.SetDefault("journal.max_open_conns", 10)
	v.SetDefault("journal.timeout", "10s")

	// 5. Notifications
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.url", "nats://127.0.0.1:4222")
	v.SetDefault("events.stream", "LPLOCK")
	v.SetDefault("events.subject_root", "lplock.events")
	v.SetDefault("events.publish_timeout", "5s")

	// 6. Diagnostics
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("metrics.textfile", "")

	v.SetDefault("owner", "")
}
