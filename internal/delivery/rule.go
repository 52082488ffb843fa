package delivery

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sabordacasa/pos-api/internal/textmatch"
)

// Errors returned by the delivery resolvers.
var (
	// ErrNoRule means no rule matched; callers decide whether that is a
	// fallback trigger or "delivery unavailable".
	ErrNoRule = errors.New("no delivery rule matches")

	// ErrRuleConflict means the restaurant's rule set violates its own
	// invariants (overlapping distance bands) and cannot be priced safely.
	ErrRuleConflict = errors.New("conflicting delivery rules")
)

// Rule is a delivery pricing rule. A rule is exactly one of two kinds:
// neighborhood (Neighborhood non-empty) or distance band (half-open
// [FromKm, ToKm)). The store loads the two kinds through separate queries,
// so a row can never arrive as both.
type Rule struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID

	Neighborhood           string
	NormalizedNeighborhood string
	Aliases                []string

	FromKm float64
	ToKm   float64

	Fee decimal.Decimal
}

// IsNeighborhood reports whether this is a neighborhood-type rule.
func (r Rule) IsNeighborhood() bool { return r.Neighborhood != "" }

// normalizedName returns the stored normalized label, normalizing on the
// fly for rules written before the column existed.
func (r Rule) normalizedName() string {
	if r.NormalizedNeighborhood != "" {
		return r.NormalizedNeighborhood
	}
	return textmatch.Normalize(r.Neighborhood)
}

// RuleStore loads a restaurant's delivery rules. Reads only; rule
// management is the admin app's concern.
type RuleStore interface {
	ListNeighborhoodRules(ctx context.Context, restaurantID uuid.UUID) ([]Rule, error)
	// ListDistanceRules returns distance-type rules ordered by FromKm ascending.
	ListDistanceRules(ctx context.Context, restaurantID uuid.UUID) ([]Rule, error)
}

// Match is a scored neighborhood rule produced by SearchByNeighborhood.
// Transient: never persisted.
type Match struct {
	RuleID       uuid.UUID
	Neighborhood string
	Fee          decimal.Decimal
	Score        float64
}
