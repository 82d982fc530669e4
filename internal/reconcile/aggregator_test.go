package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/kollektivet/rentmatch/internal/models"
)

const sannaPhone = "from: +46702894437 1806326367017854"

func TestFindGroup_TwoPaymentCombination(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tenant := seedTenant(t, store, "Sanna Juni Benemar", "+46702894437", nil)
	seedLedger(t, store, tenant.ID, november, 7045)
	seedSwish(t, store, "lf_agg_1", date(2025, 11, 18), 3000, sannaPhone)
	seedSwish(t, store, "lf_agg_2", date(2025, 11, 24), 4045, sannaPhone)

	group, err := NewAggregator(store, DefaultConfig()).FindGroup(ctx, tenant, november)
	if err != nil {
		t.Fatalf("FindGroup failed: %v", err)
	}
	if len(group) != 2 {
		t.Fatalf("group size = %d, want 2", len(group))
	}
	if sum := sumAmounts(group); sum != 7045 {
		t.Errorf("group sum = %v, want 7045", sum)
	}
}

func TestFindGroup_WindowBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		firstDay  int
		secondDay int
		wantGroup bool
	}{
		{"day 14 excluded from window", 14, 20, false},
		{"day 15 included in window", 15, 20, true},
		{"last day of month included", 17, 30, true},
		{"spread over 14 days rejected", 15, 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newTestStore(t)
			tenant := seedTenant(t, store, "Sanna Juni Benemar", "+46702894437", nil)
			seedLedger(t, store, tenant.ID, november, 7045)
			seedSwish(t, store, "lf_b1", date(2025, 11, tt.firstDay), 3000, sannaPhone)
			seedSwish(t, store, "lf_b2", date(2025, 11, tt.secondDay), 4045, sannaPhone)

			group, err := NewAggregator(store, DefaultConfig()).FindGroup(ctx, tenant, november)
			if err != nil {
				t.Fatalf("FindGroup failed: %v", err)
			}
			if got := group != nil; got != tt.wantGroup {
				t.Errorf("found group = %v, want %v", got, tt.wantGroup)
			}
		})
	}
}

func TestFindGroup_PrefersLatestCombination(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tenant := seedTenant(t, store, "Sanna Juni Benemar", "+46702894437", nil)
	seedLedger(t, store, tenant.ID, november, 7045)

	// Two equally-summing pairs; the later-dated one must win because the
	// final top-up is more likely the deliberate completion.
	seedSwish(t, store, "lf_old_1", date(2025, 11, 16), 3000, sannaPhone)
	seedSwish(t, store, "lf_old_2", date(2025, 11, 17), 4045, sannaPhone)
	lateA := seedSwish(t, store, "lf_new_1", date(2025, 11, 23), 3000, sannaPhone)
	lateB := seedSwish(t, store, "lf_new_2", date(2025, 11, 24), 4045, sannaPhone)

	group, err := NewAggregator(store, DefaultConfig()).FindGroup(ctx, tenant, november)
	if err != nil {
		t.Fatalf("FindGroup failed: %v", err)
	}
	if len(group) != 2 {
		t.Fatalf("group size = %d, want 2", len(group))
	}
	ids := map[string]bool{group[0].ID: true, group[1].ID: true}
	if !ids[lateA.ID] || !ids[lateB.ID] {
		t.Errorf("selected group %v, want the later pair (%s, %s)",
			[]string{group[0].ExternalID, group[1].ExternalID}, lateA.ExternalID, lateB.ExternalID)
	}
}

func TestFindGroup_PrefersExactOverApproximate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tenant := seedTenant(t, store, "Sanna Juni Benemar", "+46702894437", nil)
	seedLedger(t, store, tenant.ID, november, 7045)

	// Exact pair early in the window, approximate pair (within the 100 kr
	// tolerance) later. Exactness outranks recency.
	exactA := seedSwish(t, store, "lf_ex_1", date(2025, 11, 15), 3000, sannaPhone)
	exactB := seedSwish(t, store, "lf_ex_2", date(2025, 11, 16), 4045, sannaPhone)
	seedSwish(t, store, "lf_ap_1", date(2025, 11, 20), 2999, sannaPhone)
	seedSwish(t, store, "lf_ap_2", date(2025, 11, 21), 3990, sannaPhone)

	group, err := NewAggregator(store, DefaultConfig()).FindGroup(ctx, tenant, november)
	if err != nil {
		t.Fatalf("FindGroup failed: %v", err)
	}
	if len(group) != 2 {
		t.Fatalf("group size = %d, want 2", len(group))
	}
	ids := map[string]bool{group[0].ID: true, group[1].ID: true}
	if !ids[exactA.ID] || !ids[exactB.ID] {
		t.Errorf("selected approximate pair over exact one")
	}
}

func TestFindGroup_ThreePaymentCombination(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tenant := seedTenant(t, store, "Sanna Juni Benemar", "+46702894437", nil)
	seedLedger(t, store, tenant.ID, november, 7045)
	seedSwish(t, store, "lf_t1", date(2025, 11, 16), 2000, sannaPhone)
	seedSwish(t, store, "lf_t2", date(2025, 11, 20), 2000, sannaPhone)
	seedSwish(t, store, "lf_t3", date(2025, 11, 24), 3045, sannaPhone)

	group, err := NewAggregator(store, DefaultConfig()).FindGroup(ctx, tenant, november)
	if err != nil {
		t.Fatalf("FindGroup failed: %v", err)
	}
	if len(group) != 3 {
		t.Fatalf("group size = %d, want 3", len(group))
	}
	if sum := sumAmounts(group); sum != 7045 {
		t.Errorf("group sum = %v, want 7045", sum)
	}
}

func TestFindGroup_ExcludesOtherTenantsAndReconciled(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tenant := seedTenant(t, store, "Sanna Juni Benemar", "+46702894437", nil)
	seedLedger(t, store, tenant.ID, november, 7045)

	// Adam's payments phone-match a different tenant.
	seedSwish(t, store, "lf_adam", date(2025, 11, 18), 3000, "from: +46760177088 123")
	a := seedSwish(t, store, "lf_s1", date(2025, 11, 18), 3000, sannaPhone)
	seedSwish(t, store, "lf_s2", date(2025, 11, 24), 4045, sannaPhone)

	// Consume one of Sanna's payments; the pair is then incomplete.
	if _, err := store.MarkReconciled(ctx, a.ID, "receipt-x"); err != nil {
		t.Fatalf("MarkReconciled failed: %v", err)
	}

	group, err := NewAggregator(store, DefaultConfig()).FindGroup(ctx, tenant, november)
	if err != nil {
		t.Fatalf("FindGroup failed: %v", err)
	}
	if group != nil {
		t.Errorf("expected no group after consuming a member, got %d transactions", len(group))
	}
}

func TestSettleOutstanding_MultiDayPartialPayments(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	engine, _ := newTestEngine(t, store)

	tenant := seedTenant(t, store, "Sanna Juni Benemar", "+46702894437", nil)
	seedLedger(t, store, tenant.ID, november, 7045)
	tx1 := seedSwish(t, store, "lf_sp_1", date(2025, 11, 18), 3000, sannaPhone)
	tx2 := seedSwish(t, store, "lf_sp_2", date(2025, 11, 24), 4045, sannaPhone)

	receipts, err := engine.SettleOutstanding(ctx, tenant, november)
	if err != nil {
		t.Fatalf("SettleOutstanding failed: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("created %d receipts, want 2", len(receipts))
	}
	if !receipts[0].Partial {
		t.Error("first receipt of the group must be partial")
	}
	if receipts[1].Partial {
		t.Error("completing receipt must not be partial")
	}

	ledger, _ := store.GetLedgerEntry(ctx, tenant.ID, november)
	if ledger.AmountPaid != 7045 {
		t.Errorf("ledger amount paid = %v, want 7045", ledger.AmountPaid)
	}
	if ledger.PaidAt == nil {
		t.Fatal("ledger paid-at not set")
	}

	// Both transactions are consumed.
	for _, tx := range []*models.BankTransaction{tx1, tx2} {
		got, err := store.GetTransaction(ctx, tx.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if !got.Reconciled() {
			t.Errorf("transaction %s not marked reconciled", got.ExternalID)
		}
	}

	// A second invocation finds nothing left to do.
	again, err := engine.SettleOutstanding(ctx, tenant, november)
	if err != nil {
		t.Fatalf("second SettleOutstanding failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second run created %d receipts, want 0", len(again))
	}
}

func TestSettleOutstanding_NoGroupLeavesLedgerOpen(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	engine, _ := newTestEngine(t, store)

	tenant := seedTenant(t, store, "Sanna Juni Benemar", "+46702894437", nil)
	seedLedger(t, store, tenant.ID, november, 7045)
	seedSwish(t, store, "lf_lone", date(2025, 11, 18), 3000, sannaPhone)

	receipts, err := engine.SettleOutstanding(ctx, tenant, november)
	if err != nil {
		t.Fatalf("SettleOutstanding failed: %v", err)
	}
	if len(receipts) != 0 {
		t.Errorf("created %d receipts from a lone partial, want 0", len(receipts))
	}

	ledger, _ := store.GetLedgerEntry(ctx, tenant.ID, november)
	if ledger.PaidAt != nil {
		t.Error("ledger must stay open without a completing combination")
	}
}

func TestNearDeadline(t *testing.T) {
	engine := NewEngine(newTestStore(t), nil, nil, DefaultConfig())

	tests := []struct {
		day  int
		want bool
	}{
		{20, false},
		{23, false},
		{24, true}, // lookahead window opens 3 days before the 27th
		{27, true},
		{29, true}, // past due still risky
	}
	for _, tt := range tests {
		paidAt := time.Date(2025, time.November, tt.day, 10, 0, 0, 0, time.UTC)
		if got := engine.nearDeadline(paidAt, november); got != tt.want {
			t.Errorf("nearDeadline(day %d) = %v, want %v", tt.day, got, tt.want)
		}
	}
}
