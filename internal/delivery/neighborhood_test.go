package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sabordacasa/pos-api/internal/textmatch"
)

// fakeRuleStore implements RuleStore from fixed slices.
type fakeRuleStore struct {
	neighborhoodRules []Rule
	distanceRules     []Rule
	neighborhoodErr   error
	distanceErr       error
}

func (f *fakeRuleStore) ListNeighborhoodRules(ctx context.Context, restaurantID uuid.UUID) ([]Rule, error) {
	return f.neighborhoodRules, f.neighborhoodErr
}

func (f *fakeRuleStore) ListDistanceRules(ctx context.Context, restaurantID uuid.UUID) ([]Rule, error) {
	return f.distanceRules, f.distanceErr
}

func neighborhoodRule(name string, fee string, aliases ...string) Rule {
	f, _ := decimal.NewFromString(fee)
	return Rule{
		ID:           uuid.New(),
		Neighborhood: name,
		Aliases:      aliases,
		Fee:          f,
	}
}

func newTestResolver(store RuleStore) *NeighborhoodResolver {
	return NewNeighborhoodResolver(store, textmatch.NewScorer(textmatch.DefaultScorerConfig()))
}

func TestFindFeeForNeighborhood_ExactBeatsAliasAndSubstring(t *testing.T) {
	store := &fakeRuleStore{neighborhoodRules: []Rule{
		neighborhoodRule("Centro Sul", "12.00"),          // substring candidate
		neighborhoodRule("Região Central", "9.00", "centro"), // alias candidate
		neighborhoodRule("Centro", "5.00"),               // exact candidate
	}}
	resolver := newTestResolver(store)

	fee, err := resolver.FindFeeForNeighborhood(context.Background(), uuid.New(), "Centro")
	if err != nil {
		t.Fatalf("FindFeeForNeighborhood: %v", err)
	}
	if !fee.Equal(decimal.NewFromInt(5)) {
		t.Errorf("fee = %s, want 5.00 (exact match must win)", fee)
	}
}

func TestFindFeeForNeighborhood_AliasBeatsSubstring(t *testing.T) {
	store := &fakeRuleStore{neighborhoodRules: []Rule{
		neighborhoodRule("Centro Sul", "12.00"),
		neighborhoodRule("Região Central", "9.00", "Centro"),
	}}
	resolver := newTestResolver(store)

	fee, err := resolver.FindFeeForNeighborhood(context.Background(), uuid.New(), "centro")
	if err != nil {
		t.Fatalf("FindFeeForNeighborhood: %v", err)
	}
	if !fee.Equal(decimal.NewFromInt(9)) {
		t.Errorf("fee = %s, want 9.00 (alias must beat substring)", fee)
	}
}

func TestFindFeeForNeighborhood_Substring(t *testing.T) {
	store := &fakeRuleStore{neighborhoodRules: []Rule{
		neighborhoodRule("Vila Madalena", "8.50"),
	}}
	resolver := newTestResolver(store)

	fee, err := resolver.FindFeeForNeighborhood(context.Background(), uuid.New(), "vila mad")
	if err != nil {
		t.Fatalf("FindFeeForNeighborhood: %v", err)
	}
	if !fee.Equal(decimal.RequireFromString("8.50")) {
		t.Errorf("fee = %s, want 8.50", fee)
	}
}

func TestFindFeeForNeighborhood_DiacriticInsensitive(t *testing.T) {
	store := &fakeRuleStore{neighborhoodRules: []Rule{
		neighborhoodRule("São José", "7.00"),
	}}
	resolver := newTestResolver(store)

	fee, err := resolver.FindFeeForNeighborhood(context.Background(), uuid.New(), "sao jose")
	if err != nil {
		t.Fatalf("FindFeeForNeighborhood: %v", err)
	}
	if !fee.Equal(decimal.NewFromInt(7)) {
		t.Errorf("fee = %s, want 7.00", fee)
	}
}

func TestFindFeeForNeighborhood_Miss(t *testing.T) {
	store := &fakeRuleStore{neighborhoodRules: []Rule{
		neighborhoodRule("Centro", "5.00"),
	}}
	resolver := newTestResolver(store)

	_, err := resolver.FindFeeForNeighborhood(context.Background(), uuid.New(), "Tatuapé")
	if !errors.Is(err, ErrNoRule) {
		t.Errorf("err = %v, want ErrNoRule", err)
	}

	_, err = resolver.FindFeeForNeighborhood(context.Background(), uuid.New(), "   ")
	if !errors.Is(err, ErrNoRule) {
		t.Errorf("blank query err = %v, want ErrNoRule", err)
	}
}

func TestSearchByNeighborhood_RankingAndTieBreak(t *testing.T) {
	store := &fakeRuleStore{neighborhoodRules: []Rule{
		neighborhoodRule("Centro Oeste", "10.00"),
		neighborhoodRule("Centro", "5.00"),
		neighborhoodRule("Centro Leste", "10.00"),
		neighborhoodRule("Tatuapé", "12.00"), // unrelated, filtered by min similarity
	}}
	resolver := newTestResolver(store)

	matches, err := resolver.SearchByNeighborhood(context.Background(), uuid.New(), "centro", 10)
	if err != nil {
		t.Fatalf("SearchByNeighborhood: %v", err)
	}

	if len(matches) != 3 {
		t.Fatalf("len(matches) = %d, want 3", len(matches))
	}
	if matches[0].Neighborhood != "Centro" {
		t.Errorf("matches[0] = %q, want exact label Centro first", matches[0].Neighborhood)
	}
	// Centro Leste and Centro Oeste score identically; ties break alphabetically.
	if matches[1].Neighborhood != "Centro Leste" || matches[2].Neighborhood != "Centro Oeste" {
		t.Errorf("tie-break order = %q, %q, want Centro Leste then Centro Oeste",
			matches[1].Neighborhood, matches[2].Neighborhood)
	}

	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted by score descending at %d", i)
		}
	}
}

func TestSearchByNeighborhood_LimitClamp(t *testing.T) {
	store := &fakeRuleStore{neighborhoodRules: []Rule{
		neighborhoodRule("Centro", "5.00"),
		neighborhoodRule("Centro Leste", "10.00"),
		neighborhoodRule("Centro Oeste", "10.00"),
	}}
	resolver := newTestResolver(store)

	matches, err := resolver.SearchByNeighborhood(context.Background(), uuid.New(), "centro", 0)
	if err != nil {
		t.Fatalf("SearchByNeighborhood: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("limit 0 clamps to 1, got %d matches", len(matches))
	}
}

func TestSearchByNeighborhood_BlankQuery(t *testing.T) {
	store := &fakeRuleStore{neighborhoodRules: []Rule{
		neighborhoodRule("Centro", "5.00"),
	}}
	resolver := newTestResolver(store)

	matches, err := resolver.SearchByNeighborhood(context.Background(), uuid.New(), "  ", 10)
	if err != nil {
		t.Fatalf("SearchByNeighborhood: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("blank query returned %d matches, want 0", len(matches))
	}
}
