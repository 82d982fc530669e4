// Package match implements tiered identity matching of bank transactions to
// tenants. Strategies are pure computation over already-loaded records; no
// strategy touches storage or the network.
package match

import (
	"github.com/kollektivet/rentmatch/internal/models"
)

// Candidate is the result of a successful match: the tenant a transaction
// most likely belongs to and the strategy that found it.
type Candidate struct {
	Tenant *models.Tenant
	Method models.MatchMethod
}

// Strategy inspects one transaction against the tenant pool and the current
// period's ledger entries, returning a candidate or nil.
type Strategy func(tx *models.BankTransaction, tenants []*models.Tenant, ledgers []*models.RentLedgerEntry) *Candidate

// Matcher runs an ordered list of strategies; the first hit wins. Priority
// ordering prevents false positives: a reference code is nearly unforgeable
// by coincidence, while amount+name matching alone is common across many
// transactions and must stay the last resort.
type Matcher struct {
	strategies []Strategy
}

// New builds a matcher with the standard strategy order:
// reference code, phone, amount+fuzzy-name. amountTolerance bounds how far a
// transaction amount may deviate from a ledger's amount due in tier 3.
func New(amountTolerance float64) *Matcher {
	return &Matcher{
		strategies: []Strategy{
			referenceStrategy,
			phoneStrategy,
			amountNameStrategy(amountTolerance),
		},
	}
}

// Match returns the best-matching tenant for the transaction, or nil when no
// strategy hits. A nil result is the manual-review fallback, not an error.
func (m *Matcher) Match(tx *models.BankTransaction, tenants []*models.Tenant, ledgers []*models.RentLedgerEntry) *Candidate {
	for _, strategy := range m.strategies {
		if c := strategy(tx, tenants, ledgers); c != nil {
			return c
		}
	}
	return nil
}

func referenceStrategy(tx *models.BankTransaction, tenants []*models.Tenant, _ []*models.RentLedgerEntry) *Candidate {
	for _, tenant := range tenants {
		if HasReferenceCode(tx, tenant) {
			return &Candidate{Tenant: tenant, Method: models.MethodReference}
		}
	}
	return nil
}

func phoneStrategy(tx *models.BankTransaction, tenants []*models.Tenant, _ []*models.RentLedgerEntry) *Candidate {
	for _, tenant := range tenants {
		if PhoneMatches(tx, tenant) {
			return &Candidate{Tenant: tenant, Method: models.MethodPhone}
		}
	}
	return nil
}

// amountNameStrategy requires both conditions to hold against the same
// tenant: the amount must be within tolerance of that tenant's amount due for
// the period, and the counterparty name must fuzzy-match that tenant.
// Cross-tenant partial satisfaction never produces a match.
func amountNameStrategy(tolerance float64) Strategy {
	return func(tx *models.BankTransaction, tenants []*models.Tenant, ledgers []*models.RentLedgerEntry) *Candidate {
		byID := make(map[string]*models.Tenant, len(tenants))
		for _, t := range tenants {
			byID[t.ID] = t
		}
		for _, ledger := range ledgers {
			tenant := byID[ledger.TenantID]
			if tenant == nil {
				continue
			}
			if !amountWithinTolerance(tx.Amount, ledger.AmountDue, tolerance) {
				continue
			}
			if NameMatches(tx.Counterparty, tenant.Name) {
				return &Candidate{Tenant: tenant, Method: models.MethodAmountName}
			}
		}
		return nil
	}
}

func amountWithinTolerance(amount, expected, tolerance float64) bool {
	diff := abs(abs(amount) - abs(expected))
	return diff <= tolerance
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
