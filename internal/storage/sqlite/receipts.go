package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kollektivet/rentmatch/internal/models"
)

// CreateReceipt persists a new payment receipt to the database.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, receipt *models.PaymentReceipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment_receipts
		   (id, tenant_id, period, amount, method, paid_at, transaction_id, partial, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.TenantID, receipt.Period.String(), receipt.Amount,
		string(receipt.Method), receipt.PaidAt.UTC().Format(time.RFC3339),
		nullString(receipt.TransactionID), boolToInt(receipt.Partial), receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

// ListReceipts returns all receipts for one tenant and period, oldest first.
func (s *SQLiteStore) ListReceipts(ctx context.Context, tenantID string, period models.Period) ([]*models.PaymentReceipt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, period, amount, method, paid_at, transaction_id, partial, created_at
		 FROM payment_receipts WHERE tenant_id = ? AND period = ?
		 ORDER BY paid_at ASC`,
		tenantID, period.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*models.PaymentReceipt
	for rows.Next() {
		receipt := &models.PaymentReceipt{}
		var period, method, paidAt string
		var transactionID *string
		var partial int

		if err := rows.Scan(&receipt.ID, &receipt.TenantID, &period, &receipt.Amount,
			&method, &paidAt, &transactionID, &partial, &receipt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}

		if receipt.Period, err = models.ParsePeriod(period); err != nil {
			return nil, err
		}
		receipt.Method = models.MatchMethod(method)
		if receipt.PaidAt, err = time.Parse(time.RFC3339, paidAt); err != nil {
			return nil, fmt.Errorf("failed to parse paid_at: %w", err)
		}
		if transactionID != nil {
			receipt.TransactionID = *transactionID
		}
		receipt.Partial = partial != 0

		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}
	return receipts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
