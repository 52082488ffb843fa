package delivery

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Measurement is a driving distance between two addresses.
type Measurement struct {
	DistanceKm      float64
	DurationMinutes float64
}

// ProviderError is a typed failure from the distance provider. "No route
// found" is an expected outcome carried in Code, not a crash.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("distance provider: %s: %s", e.Code, e.Message)
}

// Provider measures driving distance between two free-text addresses.
// Implementations wrap a routing vendor; callers enforce timeouts via ctx.
type Provider interface {
	Measure(ctx context.Context, origin, destination string) (Measurement, error)
}

// DistanceResolver prices deliveries by measured driving distance against a
// restaurant's distance bands.
type DistanceResolver struct {
	store    RuleStore
	provider Provider
}

func NewDistanceResolver(store RuleStore, provider Provider) *DistanceResolver {
	return &DistanceResolver{store: store, provider: provider}
}

// Resolve measures the driving distance between the two addresses. Provider
// failures come back as *ProviderError.
func (r *DistanceResolver) Resolve(ctx context.Context, origin, destination string) (Measurement, error) {
	return r.provider.Measure(ctx, origin, destination)
}

// FeeForDistance returns the fee of the band covering distanceKm. Bands are
// half-open [FromKm, ToKm): a distance exactly equal to ToKm belongs to the
// next band. Returns ErrNoRule when no band covers the distance — callers
// must surface that explicitly, never as a silent zero fee.
func (r *DistanceResolver) FeeForDistance(ctx context.Context, restaurantID uuid.UUID, distanceKm float64) (decimal.Decimal, Rule, error) {
	rules, err := r.store.ListDistanceRules(ctx, restaurantID)
	if err != nil {
		return decimal.Zero, Rule{}, fmt.Errorf("list distance rules: %w", err)
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].FromKm < rules[j].FromKm })
	if err := checkBands(rules); err != nil {
		return decimal.Zero, Rule{}, err
	}

	for _, rule := range rules {
		if distanceKm >= rule.FromKm && distanceKm < rule.ToKm {
			return rule.Fee, rule, nil
		}
	}
	return decimal.Zero, Rule{}, ErrNoRule
}

// checkBands rejects overlapping bands. Overlaps are prevented at write
// time; one showing up here means the rule set cannot be priced safely, so
// processing aborts instead of picking a band arbitrarily.
func checkBands(rules []Rule) error {
	for i := 1; i < len(rules); i++ {
		prev, cur := rules[i-1], rules[i]
		if cur.FromKm < prev.ToKm {
			return fmt.Errorf("%w: bands [%g,%g) and [%g,%g) overlap",
				ErrRuleConflict, prev.FromKm, prev.ToKm, cur.FromKm, cur.ToKm)
		}
	}
	return nil
}
