package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func distanceRule(fromKm, toKm float64, fee string) Rule {
	f, _ := decimal.NewFromString(fee)
	return Rule{
		ID:     uuid.New(),
		FromKm: fromKm,
		ToKm:   toKm,
		Fee:    f,
	}
}

// countingProvider records calls and returns a fixed measurement or error.
type countingProvider struct {
	calls       int
	measurement Measurement
	err         error
}

func (p *countingProvider) Measure(ctx context.Context, origin, destination string) (Measurement, error) {
	p.calls++
	if p.err != nil {
		return Measurement{}, p.err
	}
	return p.measurement, nil
}

func TestFeeForDistance_HalfOpenBands(t *testing.T) {
	store := &fakeRuleStore{distanceRules: []Rule{
		distanceRule(0, 3, "5.00"),
		distanceRule(3, 5, "8.00"),
		distanceRule(5, 8, "12.00"),
	}}
	resolver := NewDistanceResolver(store, &countingProvider{})

	tests := []struct {
		name     string
		distance float64
		wantFee  string
	}{
		{name: "zero distance hits first band", distance: 0, wantFee: "5.00"},
		{name: "inside first band", distance: 2.99, wantFee: "5.00"},
		{name: "lower bound is inclusive", distance: 3.0, wantFee: "8.00"},
		{name: "upper bound belongs to next band", distance: 5.0, wantFee: "12.00"},
		{name: "just below upper bound", distance: 7.999, wantFee: "12.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, _, err := resolver.FeeForDistance(context.Background(), uuid.New(), tt.distance)
			if err != nil {
				t.Fatalf("FeeForDistance(%g): %v", tt.distance, err)
			}
			if !fee.Equal(decimal.RequireFromString(tt.wantFee)) {
				t.Errorf("FeeForDistance(%g) = %s, want %s", tt.distance, fee, tt.wantFee)
			}
		})
	}
}

func TestFeeForDistance_NoCoveringBand(t *testing.T) {
	store := &fakeRuleStore{distanceRules: []Rule{
		distanceRule(0, 3, "5.00"),
		distanceRule(3, 5, "8.00"),
	}}
	resolver := NewDistanceResolver(store, &countingProvider{})

	_, _, err := resolver.FeeForDistance(context.Background(), uuid.New(), 5.0)
	if !errors.Is(err, ErrNoRule) {
		t.Errorf("uncovered distance err = %v, want ErrNoRule", err)
	}
}

func TestFeeForDistance_EmptyRuleSet(t *testing.T) {
	resolver := NewDistanceResolver(&fakeRuleStore{}, &countingProvider{})

	_, _, err := resolver.FeeForDistance(context.Background(), uuid.New(), 1.0)
	if !errors.Is(err, ErrNoRule) {
		t.Errorf("empty rule set err = %v, want ErrNoRule", err)
	}
}

func TestFeeForDistance_OverlappingBandsAbort(t *testing.T) {
	store := &fakeRuleStore{distanceRules: []Rule{
		distanceRule(0, 4, "5.00"),
		distanceRule(3, 6, "8.00"),
	}}
	resolver := NewDistanceResolver(store, &countingProvider{})

	_, _, err := resolver.FeeForDistance(context.Background(), uuid.New(), 1.0)
	if !errors.Is(err, ErrRuleConflict) {
		t.Errorf("overlapping bands err = %v, want ErrRuleConflict", err)
	}
}

func TestResolve_ProviderError(t *testing.T) {
	provider := &countingProvider{err: &ProviderError{Code: "ZERO_RESULTS", Message: "no route between addresses"}}
	resolver := NewDistanceResolver(&fakeRuleStore{}, provider)

	_, err := resolver.Resolve(context.Background(), "Rua A, 1", "Rua B, 2")
	var pErr *ProviderError
	if !errors.As(err, &pErr) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if pErr.Code != "ZERO_RESULTS" {
		t.Errorf("provider code = %q, want ZERO_RESULTS", pErr.Code)
	}
}
