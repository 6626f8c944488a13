package config

import (
	"fmt"

	"github.com/LeJamon/goLPLockd/internal/core/curve"
)

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := validateProgram(config); err != nil {
		return fmt.Errorf("program config validation failed: %w", err)
	}
	if err := config.Lock.Validate(); err != nil {
		return fmt.Errorf("lock config validation failed: %w", err)
	}
	if err := config.Pool.Validate(); err != nil {
		return fmt.Errorf("pool config validation failed: %w", err)
	}
	if err := config.Database.Validate(); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}
	if err := config.Journal.Validate(); err != nil {
		return fmt.Errorf("journal validation failed: %w", err)
	}
	if err := config.Events.Validate(); err != nil {
		return fmt.Errorf("events validation failed: %w", err)
	}
	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("log validation failed: %w", err)
	}
	if _, err := config.OwnerKey(); err != nil {
		return err
	}
	return nil
}

func validateProgram(config *Config) error {
	id, err := config.ProgramID()
	if err != nil {
		return err
	}
	amm, err := config.AMMProgramID()
	if err != nil {
		return err
	}
	if id.Equals(amm) {
		return fmt.Errorf("program.id and program.amm_id must differ")
	}
	return nil
}

// Validate performs validation on the lock limits
func (l *LockConfig) Validate() error {
	if l.MinAmount == 0 {
		return fmt.Errorf("min_amount must be positive")
	}
	if l.MaxDuration <= 1 {
		return fmt.Errorf("max_duration must exceed one second, got %d", l.MaxDuration)
	}
	return nil
}

// Validate performs validation on the pool fee rates
func (p *PoolConfig) Validate() error {
	if p.TradeFeeRate >= curve.FeeRateDenominator {
		return fmt.Errorf("trade_fee_rate must be below %d, got %d", curve.FeeRateDenominator, p.TradeFeeRate)
	}
	if p.ProtocolFeeRate+p.FundFeeRate > curve.FeeRateDenominator {
		return fmt.Errorf("protocol_fee_rate + fund_fee_rate must not exceed %d", curve.FeeRateDenominator)
	}
	return nil
}
