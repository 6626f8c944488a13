package sqldb

func (d dialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			tx_id VARCHAR(64) PRIMARY KEY,
			tx_type VARCHAR(32) NOT NULL,
			account VARCHAR(44) NOT NULL,
			result VARCHAR(32) NOT NULL,
			applied BOOLEAN NOT NULL,
			sequence BIGINT NOT NULL,
			close_time BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS lock_events (
			id ` + d.serial() + `,
			tx_id VARCHAR(64) NOT NULL,
			kind VARCHAR(32) NOT NULL,
			owner VARCHAR(44) NOT NULL,
			lp_mint VARCHAR(44) NOT NULL,
			lock_index BIGINT NOT NULL,
			amount BIGINT NOT NULL,
			permanent BOOLEAN NOT NULL,
			fee_0 BIGINT NOT NULL,
			fee_1 BIGINT NOT NULL,
			timestamp BIGINT NOT NULL,
			UNIQUE (tx_id, kind)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account, sequence)`,
		`CREATE INDEX IF NOT EXISTS idx_lock_events_lock ON lock_events(owner, lp_mint, lock_index)`,
		`CREATE INDEX IF NOT EXISTS idx_lock_events_lp_mint ON lock_events(lp_mint)`,
	}
}
