package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/kollektivet/rentmatch/internal/match"
	"github.com/kollektivet/rentmatch/internal/models"
	"github.com/kollektivet/rentmatch/internal/storage"
)

// Aggregator searches a tenant's unmatched transactions for a small
// combination that closes an outstanding rent balance. Handles rent paid in
// pieces across several days:
//
//	Nov 18: 3,000 kr (partial)
//	Nov 24: 4,045 kr (completing)
//	Total:  7,045 kr = full rent
type Aggregator struct {
	store storage.Store
	cfg   Config
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(store storage.Store, cfg Config) *Aggregator {
	return &Aggregator{store: store, cfg: cfg}
}

// FindGroup returns the single best 2- or 3-transaction combination whose
// sum approximates the tenant's rent for the period, or nil when none
// exists. Only one group is ever returned so a transaction can never be
// counted into two overlapping combinations.
func (a *Aggregator) FindGroup(ctx context.Context, tenant *models.Tenant, period models.Period) ([]*models.BankTransaction, error) {
	ledger, err := a.store.GetLedgerEntry(ctx, tenant.ID, period)
	if err != nil {
		return nil, fmt.Errorf("load ledger entry: %w", err)
	}
	if ledger == nil {
		return nil, nil
	}

	pool, err := a.candidatePool(ctx, tenant, period)
	if err != nil {
		return nil, err
	}
	if len(pool) < 2 {
		return nil, nil
	}

	tolerance := a.cfg.groupTolerance(ledger.AmountDue)
	var groups [][]*models.BankTransaction

	// All 2-combinations first.
	consumed := make(map[string]bool)
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			group := []*models.BankTransaction{pool[i], pool[j]}
			if !a.withinTimeWindow(group) {
				continue
			}
			if math.Abs(sumAmounts(group)-ledger.AmountDue) <= tolerance {
				groups = append(groups, group)
				consumed[pool[i].ID] = true
				consumed[pool[j].ID] = true
			}
		}
	}

	// 3-combinations over whatever no 2-combination claimed.
	var remaining []*models.BankTransaction
	for _, tx := range pool {
		if !consumed[tx.ID] {
			remaining = append(remaining, tx)
		}
	}
	for i := 0; i < len(remaining); i++ {
		for j := i + 1; j < len(remaining); j++ {
			for k := j + 1; k < len(remaining); k++ {
				group := []*models.BankTransaction{remaining[i], remaining[j], remaining[k]}
				if !a.withinTimeWindow(group) {
					continue
				}
				if math.Abs(sumAmounts(group)-ledger.AmountDue) <= tolerance {
					groups = append(groups, group)
				}
			}
		}
	}

	if len(groups) == 0 {
		return nil, nil
	}

	// The final payment completing a balance is most likely the precise
	// top-up, so exact sums win, then the group whose latest transaction is
	// most recent, then the most recent earliest transaction.
	sort.SliceStable(groups, func(i, j int) bool {
		gi, gj := groups[i], groups[j]
		exactI := math.Abs(sumAmounts(gi)-ledger.AmountDue) < 1
		exactJ := math.Abs(sumAmounts(gj)-ledger.AmountDue) < 1
		if exactI != exactJ {
			return exactI
		}
		latestI, earliestI := dateBounds(gi)
		latestJ, earliestJ := dateBounds(gj)
		if !latestI.Equal(latestJ) {
			return latestI.After(latestJ)
		}
		return earliestI.After(earliestJ)
	})

	best := groups[0]
	slog.Debug("partial payment group found", "tenant", tenant.Name,
		"period", period.String(), "size", len(best), "sum", sumAmounts(best))
	return best, nil
}

// candidatePool loads the tenant's inbound p2p transactions inside the
// rent-paying window (day 15 through month end; rent is due the 27th but
// late payments stay candidates), excluding anything already consumed or
// already linked to a receipt for the period.
func (a *Aggregator) candidatePool(ctx context.Context, tenant *models.Tenant, period models.Period) ([]*models.BankTransaction, error) {
	from := period.DayInMonth(a.cfg.WindowStartDay)
	to := period.Start().AddDate(0, 1, 0).Add(-time.Second)

	txs, err := a.store.ListIncomingInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list window transactions: %w", err)
	}

	receipts, err := a.store.ListReceipts(ctx, tenant.ID, period)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	receipted := make(map[string]bool, len(receipts))
	for _, r := range receipts {
		if r.TransactionID != "" {
			receipted[r.TransactionID] = true
		}
	}

	var pool []*models.BankTransaction
	for _, tx := range txs {
		if tx.Reconciled() || receipted[tx.ID] {
			continue
		}
		if !tx.IncomingP2P() {
			continue
		}
		if !match.PhoneMatches(tx, tenant) {
			continue
		}
		pool = append(pool, tx)
	}
	return pool, nil
}

// withinTimeWindow rejects combinations whose members span more days than
// MaxGroupSpreadDays: sums across unrelated billing cycles are coincidence.
func (a *Aggregator) withinTimeWindow(group []*models.BankTransaction) bool {
	latest, earliest := dateBounds(group)
	spread := latest.Truncate(24*time.Hour).Sub(earliest.Truncate(24*time.Hour)).Hours() / 24
	return spread <= float64(a.cfg.MaxGroupSpreadDays)
}

func dateBounds(group []*models.BankTransaction) (latest, earliest time.Time) {
	latest, earliest = group[0].BookedAt, group[0].BookedAt
	for _, tx := range group[1:] {
		if tx.BookedAt.After(latest) {
			latest = tx.BookedAt
		}
		if tx.BookedAt.Before(earliest) {
			earliest = tx.BookedAt
		}
	}
	return latest, earliest
}

func sumAmounts(group []*models.BankTransaction) float64 {
	var total float64
	for _, tx := range group {
		total += math.Abs(tx.Amount)
	}
	return total
}

// SettleOutstanding runs the aggregator for a tenant whose period still
// shows an open balance and commits each member of the winning combination
// through the settlement path as an individual partial receipt. Committed
// transactions are marked reconciled here, since the engine drives these
// commits itself. Returns the receipts created, possibly none.
func (e *Engine) SettleOutstanding(ctx context.Context, tenant *models.Tenant, period models.Period) ([]*models.PaymentReceipt, error) {
	ledger, err := e.store.GetLedgerEntry(ctx, tenant.ID, period)
	if err != nil {
		return nil, fmt.Errorf("load ledger entry: %w", err)
	}
	if ledger == nil || ledger.Settled() {
		return nil, nil
	}

	existing, err := e.store.ListReceipts(ctx, tenant.ID, period)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	if sumReceipts(existing) >= ledger.AmountDue {
		return nil, nil
	}

	group, err := NewAggregator(e.store, e.cfg).FindGroup(ctx, tenant, period)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, nil
	}

	var receipts []*models.PaymentReceipt
	for _, tx := range group {
		receipt, _, err := e.settle(ctx, tenant, ledger, tx, models.MethodPhone)
		if err != nil {
			return receipts, err
		}
		if _, err := e.store.MarkReconciled(ctx, tx.ID, receipt.ID); err != nil {
			return receipts, fmt.Errorf("mark transaction reconciled: %w", err)
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}
