package models

import "time"

// MatchMethod records which strategy tied a payment to a tenant.
type MatchMethod string

const (
	// MethodReference means the payment message embedded a reference code.
	MethodReference MatchMethod = "reference"

	// MethodPhone means the sender phone number matched the tenant's.
	MethodPhone MatchMethod = "phone"

	// MethodAmountName means amount-within-tolerance plus fuzzy name match.
	MethodAmountName MatchMethod = "amount+name"

	// MethodManual means a human classified the payment.
	MethodManual MatchMethod = "manual"
)

// PaymentReceipt records one matched payment toward a tenant's rent for a
// period. Receipts are additive and immutable once created; summing them per
// (tenant, period) yields the authoritative amount paid so far.
type PaymentReceipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string

	// TenantID is the tenant the payment was credited to.
	TenantID string

	// Period is the billing month the payment counts toward.
	Period Period

	// Amount is the credited amount (always positive).
	Amount float64

	// Method is the matching strategy that identified the tenant.
	Method MatchMethod

	// PaidAt is the transaction's booked timestamp.
	PaidAt time.Time

	// TransactionID links back to the originating BankTransaction, when the
	// receipt came from the bank feed. Empty for manual receipts.
	TransactionID string

	// Partial is true when the amount was less than the outstanding balance
	// at the time the receipt was recorded.
	Partial bool

	// CreatedAt is the Unix timestamp when the receipt was recorded.
	CreatedAt int64
}
