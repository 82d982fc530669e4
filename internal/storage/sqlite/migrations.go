package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Periods are stored as "YYYY-MM" strings; booked_at and paid_at as RFC 3339.
const schema = `
CREATE TABLE IF NOT EXISTS tenants (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT NOT NULL,
    start_date TEXT,
    departure_date TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bank_transactions (
    id TEXT PRIMARY KEY,
    external_id TEXT NOT NULL UNIQUE,
    account_id TEXT NOT NULL,
    booked_at TEXT NOT NULL,
    amount REAL NOT NULL,
    currency TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    counterparty TEXT,
    raw_json TEXT NOT NULL DEFAULT '{}',
    reconciled_at TEXT,
    receipt_id TEXT,
    reviewed_at TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rent_ledger (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    period TEXT NOT NULL,
    amount_due REAL NOT NULL,
    amount_paid REAL NOT NULL DEFAULT 0,
    paid_at TEXT,
    created_at INTEGER NOT NULL,
    UNIQUE (tenant_id, period),
    FOREIGN KEY (tenant_id) REFERENCES tenants(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payment_receipts (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    period TEXT NOT NULL,
    amount REAL NOT NULL,
    method TEXT NOT NULL,
    paid_at TEXT NOT NULL,
    transaction_id TEXT,
    partial INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (tenant_id) REFERENCES tenants(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_bank_transactions_booked_at ON bank_transactions(booked_at);
CREATE INDEX IF NOT EXISTS idx_bank_transactions_reconciled ON bank_transactions(reconciled_at);
CREATE INDEX IF NOT EXISTS idx_rent_ledger_period ON rent_ledger(period);
CREATE INDEX IF NOT EXISTS idx_payment_receipts_tenant_period ON payment_receipts(tenant_id, period);
CREATE INDEX IF NOT EXISTS idx_payment_receipts_transaction ON payment_receipts(transaction_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
