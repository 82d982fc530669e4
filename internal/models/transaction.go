package models

import (
	"encoding/json"
	"strings"
	"time"
)

// BankTransaction represents one normalized event from the bank feed.
// It is immutable once ingested, except for the reconciliation marker
// (ReconciledAt + ReceiptID) which the sync loop sets at most once after
// a successful settlement.
type BankTransaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// ExternalID is the source system's transaction ID, unique across the
	// feed. Used for deduplication on ingest.
	ExternalID string

	// AccountID is the bank account the transaction was booked on.
	AccountID string

	// BookedAt is when the bank posted the transaction.
	BookedAt time.Time

	// Amount is the signed transaction amount; incoming payments are positive.
	Amount float64

	// Currency is the ISO 4217 code (e.g. "SEK").
	Currency string

	// Description is the free-text payment message from the feed.
	// Swish payments carry sender phone and any reference token here.
	Description string

	// Counterparty is the sender name when the feed provides one.
	Counterparty string

	// Raw is the feed's full payload, preserved opaque for audit.
	Raw json.RawMessage

	// ReconciledAt is set once the transaction has been consumed by a
	// settlement. Nil means the transaction is still available for matching.
	ReconciledAt *time.Time

	// ReceiptID links to the PaymentReceipt produced by the settlement.
	ReceiptID string

	// ReviewedAt is set once a terminal non-settling outcome (deposit,
	// below threshold, no match) has been handled, so the sync loop does
	// not reprocess the transaction and re-fire its alert. Reviewed
	// transactions stay available to the partial-payment aggregator.
	ReviewedAt *time.Time

	// CreatedAt is the Unix timestamp when the row was ingested.
	CreatedAt int64
}

// IncomingP2P reports whether the transaction is an inbound peer-to-peer
// payment. The feed tags Swish payments in the raw payload's merchant field:
// "Swish Mottagen" (received) vs "Swish Skickad" (sent). Outgoing
// reimbursements and bill payments must never enter rent matching.
func (t *BankTransaction) IncomingP2P() bool {
	if t.Amount <= 0 {
		return false
	}
	var payload struct {
		Merchant string `json:"merchant"`
	}
	if err := json.Unmarshal(t.Raw, &payload); err != nil {
		return false
	}
	return strings.Contains(strings.ToUpper(payload.Merchant), "SWISH")
}

// Reconciled reports whether the transaction has already been consumed.
func (t *BankTransaction) Reconciled() bool {
	return t.ReconciledAt != nil
}

// Reviewed reports whether a terminal outcome was already handled.
func (t *BankTransaction) Reviewed() bool {
	return t.ReviewedAt != nil
}
