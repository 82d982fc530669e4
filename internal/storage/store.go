// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/kollektivet/rentmatch/internal/models"
)

// Store defines the repository contracts the reconciliation engine depends
// on. This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the engine.
type Store interface {
	// UpsertTransaction inserts a transaction or, when a row with the same
	// ExternalID exists, refreshes its feed-sourced fields. The reconciliation
	// marker is never touched by an upsert. The tx.ID field is populated.
	UpsertTransaction(ctx context.Context, tx *models.BankTransaction) error

	// GetTransaction retrieves a transaction by ID. Returns (nil, nil) when
	// no such transaction exists.
	GetTransaction(ctx context.Context, txID string) (*models.BankTransaction, error)

	// ListUnreconciled returns transactions carrying neither a reconciliation
	// nor a review marker, most recently booked first, up to limit. These are
	// the transactions the sync loop has not yet processed.
	ListUnreconciled(ctx context.Context, limit int) ([]*models.BankTransaction, error)

	// ListIncomingInRange returns positive-amount transactions booked within
	// [from, to] inclusive, oldest first.
	ListIncomingInRange(ctx context.Context, from, to time.Time) ([]*models.BankTransaction, error)

	// MarkReconciled sets the reconciliation marker and receipt link on a
	// transaction. Returns false when the transaction was already marked,
	// which keeps a retried sync from consuming a payment twice.
	MarkReconciled(ctx context.Context, txID, receiptID string) (bool, error)

	// MarkReviewed sets the review marker on a transaction whose terminal
	// outcome produced no receipt, so its alert fires at most once. Returns
	// false when the transaction was already marked. Reviewed transactions
	// remain candidates for aggregated settlement.
	MarkReviewed(ctx context.Context, txID string) (bool, error)

	// CreateTenant persists a new tenant and populates its ID.
	CreateTenant(ctx context.Context, tenant *models.Tenant) error

	// GetTenant retrieves a tenant by ID. Returns (nil, nil) when not found.
	GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error)

	// ListTenants returns all tenants ordered by name.
	ListTenants(ctx context.Context) ([]*models.Tenant, error)

	// CreateLedgerEntry persists a new ledger entry and populates its ID.
	CreateLedgerEntry(ctx context.Context, entry *models.RentLedgerEntry) error

	// GetLedgerEntry retrieves the entry for one tenant and period.
	// Returns (nil, nil) when the period has no entry for the tenant.
	GetLedgerEntry(ctx context.Context, tenantID string, period models.Period) (*models.RentLedgerEntry, error)

	// ListLedgerByPeriod returns all entries for a period, ordered by tenant.
	ListLedgerByPeriod(ctx context.Context, period models.Period) ([]*models.RentLedgerEntry, error)

	// ListUnsettledLedger returns entries whose period has not been closed.
	ListUnsettledLedger(ctx context.Context, period models.Period) ([]*models.RentLedgerEntry, error)

	// RecordPayment writes the derived payment snapshot on a ledger entry.
	// The write only succeeds once per entry; a second call is a no-op
	// returning false.
	RecordPayment(ctx context.Context, ledgerID string, newTotal float64, paidAt time.Time) (bool, error)

	// CreateReceipt persists a new receipt and populates its ID.
	CreateReceipt(ctx context.Context, receipt *models.PaymentReceipt) error

	// ListReceipts returns all receipts for one tenant and period,
	// oldest first.
	ListReceipts(ctx context.Context, tenantID string, period models.Period) ([]*models.PaymentReceipt, error)

	// Close releases any resources held by the store.
	Close() error
}
