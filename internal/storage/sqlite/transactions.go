package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kollektivet/rentmatch/internal/models"
)

// UpsertTransaction inserts a transaction or refreshes the feed-sourced
// fields of an existing row with the same external ID. The reconciliation
// marker is deliberately left alone: a re-synced feed row must not reopen a
// consumed payment.
func (s *SQLiteStore) UpsertTransaction(ctx context.Context, tx *models.BankTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt == 0 {
		tx.CreatedAt = time.Now().Unix()
	}
	raw := tx.Raw
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bank_transactions
		   (id, external_id, account_id, booked_at, amount, currency, description, counterparty, raw_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(external_id) DO UPDATE SET
		   account_id = excluded.account_id,
		   booked_at = excluded.booked_at,
		   amount = excluded.amount,
		   currency = excluded.currency,
		   description = excluded.description,
		   counterparty = excluded.counterparty,
		   raw_json = excluded.raw_json`,
		tx.ID, tx.ExternalID, tx.AccountID, tx.BookedAt.UTC().Format(time.RFC3339),
		tx.Amount, tx.Currency, tx.Description, nullString(tx.Counterparty),
		string(raw), tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}

	// On a conflicting insert the generated ID was discarded; read back the
	// row's real ID so callers can link to it.
	err = s.db.QueryRowContext(ctx,
		"SELECT id FROM bank_transactions WHERE external_id = ?", tx.ExternalID,
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("failed to read back transaction id: %w", err)
	}
	return nil
}

const txColumns = `id, external_id, account_id, booked_at, amount, currency,
	description, counterparty, raw_json, reconciled_at, receipt_id, reviewed_at, created_at`

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, txID string) (*models.BankTransaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+txColumns+" FROM bank_transactions WHERE id = ?", txID)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// ListUnreconciled returns transactions the sync loop has not processed yet:
// neither reconciled nor reviewed, most recently booked first.
func (s *SQLiteStore) ListUnreconciled(ctx context.Context, limit int) ([]*models.BankTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+txColumns+` FROM bank_transactions
		 WHERE reconciled_at IS NULL AND reviewed_at IS NULL
		 ORDER BY booked_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unreconciled transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListIncomingInRange returns positive-amount transactions booked within
// [from, to] inclusive, oldest first.
func (s *SQLiteStore) ListIncomingInRange(ctx context.Context, from, to time.Time) ([]*models.BankTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+txColumns+` FROM bank_transactions
		 WHERE amount > 0 AND booked_at >= ? AND booked_at <= ?
		 ORDER BY booked_at ASC`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// MarkReconciled sets the reconciliation marker on a transaction. The guarded
// UPDATE makes the marker write-once: a retried sync observes false and moves on.
func (s *SQLiteStore) MarkReconciled(ctx context.Context, txID, receiptID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bank_transactions SET reconciled_at = ?, receipt_id = ?
		 WHERE id = ? AND reconciled_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339), receiptID, txID)
	if err != nil {
		return false, fmt.Errorf("failed to mark transaction reconciled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// MarkReviewed sets the review marker on a transaction whose terminal outcome
// needs no receipt, keeping its alert from re-firing on later sync cycles.
func (s *SQLiteStore) MarkReviewed(ctx context.Context, txID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bank_transactions SET reviewed_at = ?
		 WHERE id = ? AND reviewed_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339), txID)
	if err != nil {
		return false, fmt.Errorf("failed to mark transaction reviewed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(sc scanner) (*models.BankTransaction, error) {
	tx := &models.BankTransaction{}
	var bookedAt, rawJSON string
	var counterparty, reconciledAt, receiptID, reviewedAt sql.NullString

	err := sc.Scan(&tx.ID, &tx.ExternalID, &tx.AccountID, &bookedAt, &tx.Amount,
		&tx.Currency, &tx.Description, &counterparty, &rawJSON,
		&reconciledAt, &receiptID, &reviewedAt, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}

	tx.BookedAt, err = time.Parse(time.RFC3339, bookedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booked_at: %w", err)
	}
	tx.Raw = json.RawMessage(rawJSON)
	if counterparty.Valid {
		tx.Counterparty = counterparty.String
	}
	if reconciledAt.Valid {
		t, err := time.Parse(time.RFC3339, reconciledAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse reconciled_at: %w", err)
		}
		tx.ReconciledAt = &t
	}
	if receiptID.Valid {
		tx.ReceiptID = receiptID.String
	}
	if reviewedAt.Valid {
		t, err := time.Parse(time.RFC3339, reviewedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse reviewed_at: %w", err)
		}
		tx.ReviewedAt = &t
	}
	return tx, nil
}

func collectTransactions(rows *sql.Rows) ([]*models.BankTransaction, error) {
	var txs []*models.BankTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
