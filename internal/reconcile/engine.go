// Package reconcile turns matched bank transactions into ledger settlements:
// the settlement engine, the classification gates in front of it, and the
// multi-day partial-payment aggregator.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/kollektivet/rentmatch/internal/alert"
	"github.com/kollektivet/rentmatch/internal/match"
	"github.com/kollektivet/rentmatch/internal/models"
	"github.com/kollektivet/rentmatch/internal/pubsub"
	"github.com/kollektivet/rentmatch/internal/storage"
)

// topicRentUpdated is published after every successful settlement so
// dashboards can refresh.
const topicRentUpdated = "rent_data_updated"

// Outcome classifies what happened to one transaction. Only OutcomeSettled
// produces a receipt; all others are valid terminal states, not errors.
type Outcome string

const (
	// OutcomeSettled means a receipt was created and the ledger advanced.
	OutcomeSettled Outcome = "settled"

	// OutcomeSkipped means the transaction is not an inbound p2p payment.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeNoMatch means no strategy attributed the payment; it stays
	// unreconciled for human review.
	OutcomeNoMatch Outcome = "no_match"

	// OutcomeDeposit means the payment was classified as a move-in deposit.
	OutcomeDeposit Outcome = "deposit"

	// OutcomeBelowThreshold means the payment was rejected by the 50% gate.
	OutcomeBelowThreshold Outcome = "below_threshold"

	// OutcomeNoLedger means the matched tenant has no ledger entry for the
	// transaction's period.
	OutcomeNoLedger Outcome = "no_ledger"
)

// Result reports one engine invocation.
type Result struct {
	Outcome   Outcome
	Tenant    *models.Tenant
	Method    models.MatchMethod
	Receipt   *models.PaymentReceipt
	FullyPaid bool
}

// Engine applies matched payments to the rent ledger. It never marks
// transactions reconciled itself when driven through ApplyTransaction; the
// sync loop owns the exactly-once marker at the ingestion boundary.
type Engine struct {
	store   storage.Store
	matcher *match.Matcher
	alerts  *alert.Policy
	pub     pubsub.Publisher
	cfg     Config
}

// NewEngine wires the settlement engine. alerts may be nil (log-only policy)
// and pub may be nil (no change notifications).
func NewEngine(store storage.Store, alerts *alert.Policy, pub pubsub.Publisher, cfg Config) *Engine {
	if alerts == nil {
		alerts = alert.NewPolicy(nil)
	}
	if pub == nil {
		pub = pubsub.Nop{}
	}
	return &Engine{
		store:   store,
		matcher: match.New(cfg.AmountTolerance),
		alerts:  alerts,
		pub:     pub,
		cfg:     cfg,
	}
}

// ApplyTransaction runs the full matching and settlement flow for one
// transaction. Persistence failures propagate; every non-error path returns
// a Result whose Outcome explains the terminal state.
func (e *Engine) ApplyTransaction(ctx context.Context, txID string) (*Result, error) {
	tx, err := e.store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %s not found", txID)
	}

	if !tx.IncomingP2P() {
		return &Result{Outcome: OutcomeSkipped}, nil
	}

	// Period matching uses the transaction date, not the wall clock, so a
	// re-sync of historical rows credits the right month.
	period := models.PeriodOf(tx.BookedAt)

	tenants, err := e.store.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	ledgers, err := e.store.ListLedgerByPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("list ledger for %s: %w", period, err)
	}

	cand := e.matcher.Match(tx, tenants, ledgers)
	if cand == nil {
		slog.Debug("no tenant matched", "tx", tx.ID, "amount", tx.Amount)
		return &Result{Outcome: OutcomeNoMatch}, nil
	}

	amount := math.Abs(tx.Amount)

	if e.isDeposit(tx, cand.Tenant) {
		e.alerts.DepositDetected(ctx, cand.Tenant, amount)
		slog.Info("deposit detected", "tenant", cand.Tenant.Name, "amount", amount)
		return &Result{Outcome: OutcomeDeposit, Tenant: cand.Tenant, Method: cand.Method}, nil
	}

	ledger, err := e.store.GetLedgerEntry(ctx, cand.Tenant.ID, period)
	if err != nil {
		return nil, fmt.Errorf("load ledger entry: %w", err)
	}
	if ledger == nil {
		slog.Warn("matched tenant has no ledger entry", "tenant", cand.Tenant.Name, "period", period)
		return &Result{Outcome: OutcomeNoLedger, Tenant: cand.Tenant, Method: cand.Method}, nil
	}

	// The 50% gate: small stray payments need a human eye. A reference code
	// is explicit self-identification and is trusted at any amount; that is
	// how legitimate partial payments announce themselves.
	if amount < ledger.AmountDue*e.cfg.ThresholdFraction && cand.Method != models.MethodReference {
		e.alerts.BelowThreshold(ctx, cand.Tenant, amount, ledger.AmountDue, e.cfg.ThresholdFraction)
		slog.Info("payment below threshold", "tenant", cand.Tenant.Name,
			"amount", amount, "due", ledger.AmountDue)
		return &Result{Outcome: OutcomeBelowThreshold, Tenant: cand.Tenant, Method: cand.Method}, nil
	}

	receipt, fullyPaid, err := e.settle(ctx, cand.Tenant, ledger, tx, cand.Method)
	if err != nil {
		return nil, err
	}
	return &Result{
		Outcome:   OutcomeSettled,
		Tenant:    cand.Tenant,
		Method:    cand.Method,
		Receipt:   receipt,
		FullyPaid: fullyPaid,
	}, nil
}

// settle creates the receipt and, when the balance closes, writes the ledger
// snapshot. This is the only code path that mutates payment state.
func (e *Engine) settle(ctx context.Context, tenant *models.Tenant, ledger *models.RentLedgerEntry,
	tx *models.BankTransaction, method models.MatchMethod) (*models.PaymentReceipt, bool, error) {

	existing, err := e.store.ListReceipts(ctx, tenant.ID, ledger.Period)
	if err != nil {
		return nil, false, fmt.Errorf("list receipts: %w", err)
	}
	totalPaid := sumReceipts(existing)
	remaining := ledger.AmountDue - totalPaid
	amount := math.Abs(tx.Amount)

	receipt := &models.PaymentReceipt{
		TenantID:      tenant.ID,
		Period:        ledger.Period,
		Amount:        amount,
		Method:        method,
		PaidAt:        tx.BookedAt,
		TransactionID: tx.ID,
		Partial:       amount < remaining,
	}
	if err := e.store.CreateReceipt(ctx, receipt); err != nil {
		return nil, false, fmt.Errorf("create receipt: %w", err)
	}

	newTotal := totalPaid + amount
	fullyPaid := newTotal >= ledger.AmountDue
	if fullyPaid {
		if _, err := e.store.RecordPayment(ctx, ledger.ID, newTotal, receipt.PaidAt); err != nil {
			return nil, false, fmt.Errorf("record ledger payment: %w", err)
		}
		e.alerts.FullyPaid(ctx, tenant, newTotal, method)
		slog.Info("rent fully paid", "tenant", tenant.Name, "period", ledger.Period.String(),
			"total", newTotal, "method", method)
	} else if receipt.Partial && e.nearDeadline(receipt.PaidAt, ledger.Period) {
		e.alerts.PartialAtRisk(ctx, tenant, newTotal, ledger.AmountDue)
	}

	e.pub.Publish(topicRentUpdated)
	return receipt, fullyPaid, nil
}

// isDeposit classifies new-tenant deposits: the amount sits in a known
// deposit range and the tenant moved in within the configured window of the
// transaction date.
func (e *Engine) isDeposit(tx *models.BankTransaction, tenant *models.Tenant) bool {
	if tenant.StartDate == nil {
		return false
	}
	if !e.cfg.isDepositAmount(math.Abs(tx.Amount)) {
		return false
	}
	days := tx.BookedAt.Sub(*tenant.StartDate).Hours() / 24
	return math.Abs(days) <= float64(e.cfg.NewTenantWindowDays)
}

// nearDeadline reports whether a payment date falls inside the lookahead
// window before the period's due day (or past it).
func (e *Engine) nearDeadline(paidAt time.Time, period models.Period) bool {
	due := period.DayInMonth(e.cfg.RentDueDay)
	windowStart := due.AddDate(0, 0, -e.cfg.DeadlineLookaheadDays)
	return !paidAt.Before(windowStart)
}

func sumReceipts(receipts []*models.PaymentReceipt) float64 {
	var total float64
	for _, r := range receipts {
		total += r.Amount
	}
	return total
}
