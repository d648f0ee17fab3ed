package sqlite

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id       TEXT PRIMARY KEY,
		user_id  TEXT NOT NULL,
		name     TEXT NOT NULL,
		type     TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT '',
		balance  TEXT NOT NULL DEFAULT '0.00'
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id      TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name    TEXT NOT NULL,
		kind    TEXT NOT NULL,
		UNIQUE (user_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS imports (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		account_id      TEXT NOT NULL REFERENCES accounts(id),
		file_name       TEXT NOT NULL DEFAULT '',
		period_start    TEXT,
		period_end      TEXT,
		opening_balance TEXT,
		closing_balance TEXT,
		imported_count  INTEGER NOT NULL DEFAULT 0,
		duplicate_count INTEGER NOT NULL DEFAULT 0,
		failed_count    INTEGER NOT NULL DEFAULT 0,
		status          TEXT NOT NULL,
		claimed_at      TEXT,
		created_at      TEXT NOT NULL,
		completed_at    TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id                    TEXT PRIMARY KEY,
		user_id               TEXT NOT NULL,
		account_id            TEXT NOT NULL REFERENCES accounts(id),
		import_id             TEXT REFERENCES imports(id),
		transaction_date      TEXT NOT NULL,
		posted_date           TEXT,
		amount                TEXT NOT NULL,
		type                  TEXT NOT NULL,
		description           TEXT NOT NULL,
		merchant_original     TEXT NOT NULL DEFAULT '',
		merchant_normalized   TEXT NOT NULL DEFAULT '',
		category_id           TEXT REFERENCES categories(id),
		categorization_method TEXT NOT NULL DEFAULT '',
		confidence            TEXT NOT NULL DEFAULT '',
		external_id           TEXT NOT NULL DEFAULT '',
		source                TEXT NOT NULL,
		is_reviewed           INTEGER NOT NULL DEFAULT 0,
		created_at            TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_dup_key ON transactions (account_id, transaction_date, amount)`,
	`CREATE TABLE IF NOT EXISTS rules (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		category_id   TEXT NOT NULL REFERENCES categories(id),
		kind          TEXT NOT NULL,
		value         TEXT NOT NULL,
		min_amount    TEXT,
		max_amount    TEXT,
		priority      INTEGER NOT NULL DEFAULT 0,
		times_applied INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS merchant_mappings (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL DEFAULT '',
		original_name   TEXT NOT NULL,
		normalized_name TEXT NOT NULL
	)`,
}
