package models

import "time"

// RentLedgerEntry pairs one tenant and billing period with the rent owed.
// AmountPaid and PaidAt form a derived snapshot: they are written exactly
// once, when the sum of receipts reaches AmountDue. Until then AmountPaid
// stays at its initial value and receipts carry the running total.
type RentLedgerEntry struct {
	// ID is the unique identifier for the ledger entry (UUID format).
	ID string

	// TenantID is the tenant who owes this rent.
	TenantID string

	// Period is the billing month the entry covers.
	Period Period

	// AmountDue is the rent owed for the period, produced by the rent
	// calculation service upstream.
	AmountDue float64

	// AmountPaid is the cached total, written at full settlement only.
	AmountPaid float64

	// PaidAt is when the period closed; set at most once.
	PaidAt *time.Time

	// CreatedAt is the Unix timestamp when the entry was created.
	CreatedAt int64
}

// Settled reports whether the period has been closed.
func (e *RentLedgerEntry) Settled() bool {
	return e.PaidAt != nil
}
