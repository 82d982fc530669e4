package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kollektivet/rentmatch/internal/models"
)

// CreateLedgerEntry persists a new ledger entry to the database.
func (s *SQLiteStore) CreateLedgerEntry(ctx context.Context, entry *models.RentLedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rent_ledger (id, tenant_id, period, amount_due, amount_paid, paid_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.TenantID, entry.Period.String(), entry.AmountDue,
		entry.AmountPaid, nullTimestamp(entry.PaidAt), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

const ledgerColumns = "id, tenant_id, period, amount_due, amount_paid, paid_at, created_at"

// GetLedgerEntry retrieves the entry for one tenant and period.
func (s *SQLiteStore) GetLedgerEntry(ctx context.Context, tenantID string, period models.Period) (*models.RentLedgerEntry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+ledgerColumns+" FROM rent_ledger WHERE tenant_id = ? AND period = ?",
		tenantID, period.String())

	entry, err := scanLedgerEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return entry, nil
}

// ListLedgerByPeriod returns all entries for a period, ordered by tenant.
func (s *SQLiteStore) ListLedgerByPeriod(ctx context.Context, period models.Period) ([]*models.RentLedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+ledgerColumns+" FROM rent_ledger WHERE period = ? ORDER BY tenant_id",
		period.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()
	return collectLedgerEntries(rows)
}

// ListUnsettledLedger returns entries for a period that have not been closed.
func (s *SQLiteStore) ListUnsettledLedger(ctx context.Context, period models.Period) ([]*models.RentLedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+ledgerColumns+` FROM rent_ledger
		 WHERE period = ? AND paid_at IS NULL ORDER BY tenant_id`,
		period.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled ledger entries: %w", err)
	}
	defer rows.Close()
	return collectLedgerEntries(rows)
}

// RecordPayment writes the derived payment snapshot on a ledger entry. The
// paid_at IS NULL guard makes the close write-once, so parallel settlement
// attempts for the same period cannot both record it.
func (s *SQLiteStore) RecordPayment(ctx context.Context, ledgerID string, newTotal float64, paidAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE rent_ledger SET amount_paid = ?, paid_at = ?
		 WHERE id = ? AND paid_at IS NULL`,
		newTotal, paidAt.UTC().Format(time.RFC3339), ledgerID)
	if err != nil {
		return false, fmt.Errorf("failed to record payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func scanLedgerEntry(sc scanner) (*models.RentLedgerEntry, error) {
	entry := &models.RentLedgerEntry{}
	var period string
	var paidAt sql.NullString

	err := sc.Scan(&entry.ID, &entry.TenantID, &period, &entry.AmountDue,
		&entry.AmountPaid, &paidAt, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	if entry.Period, err = models.ParsePeriod(period); err != nil {
		return nil, err
	}
	if paidAt.Valid {
		t, err := time.Parse(time.RFC3339, paidAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse paid_at: %w", err)
		}
		entry.PaidAt = &t
	}
	return entry, nil
}

func collectLedgerEntries(rows *sql.Rows) ([]*models.RentLedgerEntry, error) {
	var entries []*models.RentLedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}

func nullTimestamp(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
