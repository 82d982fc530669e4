// Package alert decides when reconciliation outcomes warrant notifying the
// household administrator. Every alert is advisory: delivery failures are
// logged and swallowed, and no alert ever blocks or fails a settlement.
package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kollektivet/rentmatch/internal/models"
)

// Notifier delivers one free-text administrator alert. The SMS gateway lives
// outside this module; any transport satisfying this interface can be wired
// in.
type Notifier interface {
	Send(ctx context.Context, body string) error
}

// LogNotifier is the default Notifier: it writes alerts to the structured
// log instead of an outbound channel.
type LogNotifier struct{}

// Send logs the alert body.
func (LogNotifier) Send(_ context.Context, body string) error {
	slog.Info("admin alert", "body", body)
	return nil
}

// Policy maps settlement outcomes to administrator notifications.
type Policy struct {
	notifier Notifier
}

// NewPolicy wraps a notifier; nil falls back to LogNotifier.
func NewPolicy(n Notifier) *Policy {
	if n == nil {
		n = LogNotifier{}
	}
	return &Policy{notifier: n}
}

// DepositDetected fires when a payment is classified as a deposit rather
// than rent.
func (p *Policy) DepositDetected(ctx context.Context, tenant *models.Tenant, amount float64) {
	p.send(ctx, fmt.Sprintf("💰 Deposition: %s betalade %.0f kr", tenant.Name, amount))
}

// BelowThreshold fires when a matched payment was rejected for being under
// the minimum fraction of the period's rent. The fraction is the configured
// gate so the message matches whatever the deployment enforces.
func (p *Policy) BelowThreshold(ctx context.Context, tenant *models.Tenant, amount, amountDue, fraction float64) {
	p.send(ctx, fmt.Sprintf("⚠️ Liten betalning från %s: %.0f kr (under %.0f%% av %.0f kr)",
		tenant.Name, amount, fraction*100, amountDue))
}

// FullyPaid fires when a settlement closes a ledger period.
func (p *Policy) FullyPaid(ctx context.Context, tenant *models.Tenant, total float64, method models.MatchMethod) {
	p.send(ctx, fmt.Sprintf("✅ Hyra betald: %s %.0f kr (%s)", tenant.Name, total, method))
}

// PartialAtRisk fires when a partial payment lands close to the rent
// deadline and the balance is still open.
func (p *Policy) PartialAtRisk(ctx context.Context, tenant *models.Tenant, paid, amountDue float64) {
	p.send(ctx, fmt.Sprintf("⏳ Delbetalning från %s: %.0f av %.0f kr, förfaller den 27:e",
		tenant.Name, paid, amountDue))
}

func (p *Policy) send(ctx context.Context, body string) {
	if err := p.notifier.Send(ctx, body); err != nil {
		slog.Warn("admin alert delivery failed", "body", body, "error", err)
	}
}
