package reconcile

// AmountRange is an inclusive amount interval.
type AmountRange struct {
	Min, Max float64
}

// Contains reports whether amount falls inside the range.
func (r AmountRange) Contains(amount float64) bool {
	return amount >= r.Min && amount <= r.Max
}

// Config collects the hand-tuned matching and tolerance constants. The
// defaults fit a Swedish shared household paying rent in SEK; a deployment
// with a different currency scale overrides them rather than editing code.
type Config struct {
	// AmountTolerance bounds the amount-vs-due difference for tier 3
	// (amount + fuzzy name) matching.
	AmountTolerance float64

	// ThresholdFraction is the minimum fraction of the period's rent a
	// matched payment must reach to settle automatically. Reference-code
	// matches bypass the gate.
	ThresholdFraction float64

	// DepositRanges are the amounts recognized as move-in deposits:
	// first-month rent, second-month rent, and their sum.
	DepositRanges []AmountRange

	// NewTenantWindowDays bounds how far a transaction may sit from the
	// tenant's move-in date and still count as a deposit (± days).
	NewTenantWindowDays int

	// RentDueDay is the day of month rent is due.
	RentDueDay int

	// DeadlineLookaheadDays is how close to the due day a partial payment
	// must land to trigger a follow-up risk alert.
	DeadlineLookaheadDays int

	// WindowStartDay is the first day of month considered part of the
	// rent-paying window for aggregation.
	WindowStartDay int

	// MaxGroupSpreadDays is the widest date spread allowed inside one
	// partial-payment combination.
	MaxGroupSpreadDays int

	// GroupToleranceFloor and GroupTolerancePct define the aggregation
	// tolerance: max(floor, amountDue * pct).
	GroupToleranceFloor float64
	GroupTolerancePct   float64
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{
		AmountTolerance:   1.0,
		ThresholdFraction: 0.5,
		DepositRanges: []AmountRange{
			{Min: 6000, Max: 6200}, // first month
			{Min: 2000, Max: 2200}, // second month
			{Min: 8200, Max: 8600}, // both together
		},
		NewTenantWindowDays:   30,
		RentDueDay:            27,
		DeadlineLookaheadDays: 3,
		WindowStartDay:        15,
		MaxGroupSpreadDays:    14,
		GroupToleranceFloor:   100,
		GroupTolerancePct:     0.01,
	}
}

// groupTolerance returns the aggregation tolerance for a given rent.
func (c Config) groupTolerance(amountDue float64) float64 {
	if pct := amountDue * c.GroupTolerancePct; pct > c.GroupToleranceFloor {
		return pct
	}
	return c.GroupToleranceFloor
}

// isDepositAmount reports whether the amount falls in any deposit range.
func (c Config) isDepositAmount(amount float64) bool {
	for _, r := range c.DepositRanges {
		if r.Contains(amount) {
			return true
		}
	}
	return false
}
