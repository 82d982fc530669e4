package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kollektivet/rentmatch/internal/alert"
	"github.com/kollektivet/rentmatch/internal/metrics"
	"github.com/kollektivet/rentmatch/internal/models"
	"github.com/kollektivet/rentmatch/internal/pubsub"
	"github.com/kollektivet/rentmatch/internal/reconcile"
	"github.com/kollektivet/rentmatch/internal/storage"
	"github.com/kollektivet/rentmatch/internal/storage/sqlite"
	"github.com/kollektivet/rentmatch/pkg/logging"
)

const unreconciledBatchSize = 50

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/rentmatch.db")
	metricsAddr := getEnv("METRICS_ADDR", ":9464")
	interval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "5m"))
	if err != nil {
		slog.Error("Invalid SYNC_INTERVAL", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	engine := reconcile.NewEngine(store, alert.NewPolicy(nil), pubsub.NewBroker(), reconcile.DefaultConfig())

	// Metrics and health endpoints.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	go func() {
		slog.Info("Metrics server starting", "address", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			slog.Error("Metrics server failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Reconciler starting", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runSync(ctx, store, engine)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Reconciler shutting down")
			return
		case <-ticker.C:
			runSync(ctx, store, engine)
		}
	}
}

// runSync performs one reconciliation cycle: apply the engine to every
// unreconciled transaction, mark the settled ones consumed, then let the
// aggregator hunt for multi-day partial payment groups on still-open
// ledgers. Persistence errors are logged and leave the transaction in place
// for the next cycle.
func runSync(ctx context.Context, store storage.Store, engine *reconcile.Engine) {
	start := time.Now()

	txs, err := store.ListUnreconciled(ctx, unreconciledBatchSize)
	if err != nil {
		slog.Error("Failed to list unreconciled transactions", "error", err)
		return
	}

	for _, tx := range txs {
		result, err := engine.ApplyTransaction(ctx, tx.ID)
		if err != nil {
			slog.Error("Settlement failed", "tx", tx.ID, "error", err)
			continue
		}
		recordOutcome(result)

		if result.Receipt != nil {
			marked, err := store.MarkReconciled(ctx, tx.ID, result.Receipt.ID)
			if err != nil {
				slog.Error("Failed to mark transaction reconciled", "tx", tx.ID, "error", err)
				continue
			}
			if !marked {
				slog.Warn("Transaction was already reconciled", "tx", tx.ID)
			}
			continue
		}

		// Terminal outcome without a receipt: record the review so the alert
		// fired once and the transaction leaves the processing queue. It
		// stays available to the aggregator below.
		if _, err := store.MarkReviewed(ctx, tx.ID); err != nil {
			slog.Error("Failed to mark transaction reviewed", "tx", tx.ID, "error", err)
		}
	}

	// Aggregation pass over the current period's open balances.
	period := models.PeriodOf(time.Now())
	open, err := store.ListUnsettledLedger(ctx, period)
	if err != nil {
		slog.Error("Failed to list unsettled ledger entries", "error", err)
		return
	}
	for _, entry := range open {
		tenant, err := store.GetTenant(ctx, entry.TenantID)
		if err != nil || tenant == nil {
			slog.Error("Failed to load tenant for open ledger", "tenant", entry.TenantID, "error", err)
			continue
		}
		receipts, err := engine.SettleOutstanding(ctx, tenant, period)
		if err != nil {
			slog.Error("Aggregated settlement failed", "tenant", tenant.Name, "error", err)
			continue
		}
		if len(receipts) > 0 {
			metrics.AggregatedGroups.Inc()
			slog.Info("Aggregated partial payments settled",
				"tenant", tenant.Name, "receipts", len(receipts))
		}
	}

	slog.Debug("Sync cycle complete", "transactions", len(txs),
		"duration_ms", time.Since(start).Milliseconds())
}

func recordOutcome(result *reconcile.Result) {
	switch result.Outcome {
	case reconcile.OutcomeSettled:
		metrics.PaymentsMatched.WithLabelValues(string(result.Method)).Inc()
		if result.FullyPaid {
			metrics.LedgersSettled.Inc()
		}
	case reconcile.OutcomeNoMatch:
		metrics.PaymentsUnmatched.Inc()
	case reconcile.OutcomeDeposit:
		metrics.DepositsDetected.Inc()
	case reconcile.OutcomeBelowThreshold:
		metrics.BelowThreshold.Inc()
	}
}
