package delivery

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sabordacasa/pos-api/internal/textmatch"
)

const (
	defaultMinSimilarity = 0.3
	maxSearchLimit       = 50
)

// NeighborhoodResolver matches free-text neighborhood names against a
// restaurant's neighborhood rules.
type NeighborhoodResolver struct {
	store         RuleStore
	scorer        *textmatch.Scorer
	minSimilarity float64
}

// NewNeighborhoodResolver creates a resolver with the default search
// similarity floor.
func NewNeighborhoodResolver(store RuleStore, scorer *textmatch.Scorer) *NeighborhoodResolver {
	return &NeighborhoodResolver{
		store:         store,
		scorer:        scorer,
		minSimilarity: defaultMinSimilarity,
	}
}

// FindFeeForNeighborhood resolves a customer-supplied neighborhood to a fee
// through an exact → alias → substring cascade. Fuzzy scoring is
// deliberately not used here: automatic fee assignment favors precision
// over recall. Returns ErrNoRule when nothing matches.
func (r *NeighborhoodResolver) FindFeeForNeighborhood(ctx context.Context, restaurantID uuid.UUID, name string) (decimal.Decimal, error) {
	query := textmatch.Normalize(name)
	if query == "" {
		return decimal.Zero, ErrNoRule
	}

	rules, err := r.store.ListNeighborhoodRules(ctx, restaurantID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list neighborhood rules: %w", err)
	}

	// Tier 1: exact match on the normalized neighborhood.
	for _, rule := range rules {
		if rule.normalizedName() == query {
			return rule.Fee, nil
		}
	}

	// Tier 2: the query equals one of the rule's aliases.
	for _, rule := range rules {
		for _, alias := range rule.Aliases {
			if textmatch.Normalize(alias) == query {
				return rule.Fee, nil
			}
		}
	}

	// Tier 3: substring containment either way.
	for _, rule := range rules {
		label := rule.normalizedName()
		if label == "" {
			continue
		}
		if strings.Contains(label, query) || strings.Contains(query, label) {
			return rule.Fee, nil
		}
	}

	return decimal.Zero, ErrNoRule
}

// SearchByNeighborhood scores every neighborhood rule of the restaurant
// against the query and returns the best matches, score descending with an
// alphabetical tie-break so repeated searches rank identically. The limit
// is clamped to [1, 50]. A blank query or unknown restaurant yields an
// empty result, not an error.
func (r *NeighborhoodResolver) SearchByNeighborhood(ctx context.Context, restaurantID uuid.UUID, query string, limit int) ([]Match, error) {
	q := textmatch.Normalize(query)
	if q == "" {
		return nil, nil
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	rules, err := r.store.ListNeighborhoodRules(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list neighborhood rules: %w", err)
	}

	var matches []Match
	for _, rule := range rules {
		if rule.Neighborhood == "" {
			continue
		}
		score := r.scorer.Similarity(q, rule.Neighborhood)
		if score < r.minSimilarity {
			continue
		}
		matches = append(matches, Match{
			RuleID:       rule.ID,
			Neighborhood: rule.Neighborhood,
			Fee:          rule.Fee,
			Score:        score,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Neighborhood < matches[j].Neighborhood
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
