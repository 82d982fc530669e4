// Package models defines the core domain records for rentmatch.
//
// # Models
//
//   - BankTransaction: one normalized bank-side event, immutable except for
//     its reconciliation marker
//   - Tenant: a household member (read-only here, owned by the roster)
//   - RentLedgerEntry: amount due vs. cumulative amount paid per (tenant, period)
//   - PaymentReceipt: one matched payment, additive and immutable
//   - Period: a YYYY-MM billing month
//
// # Two-table payment state
//
// Receipts are the append-only log of how rent was paid; the ledger's
// AmountPaid/PaidAt columns are a derived snapshot written once, at the
// transition to fully paid. The sum of receipts for a (tenant, period) is
// the source of truth for "paid so far", never the ledger cache.
//
// # Design principles
//
// 1. ID strings instead of pointers for relationships (no circular refs)
// 2. Storage owns ID and timestamp generation; models stay plain data
// 3. Matching helpers that depend only on a single transaction live on
// BankTransaction; anything needing tenant pools or ledgers lives in
// the match package
package models
