package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sabordacasa/pos-api/internal/delivery"
)

const listNeighborhoodRules = `
SELECT id, restaurant_id, neighborhood, normalized_neighborhood, aliases, fee
FROM delivery_rules
WHERE restaurant_id = $1 AND kind = 'NEIGHBORHOOD' AND active = TRUE
ORDER BY neighborhood
`

// ListNeighborhoodRules returns the active neighborhood rules for a
// restaurant.
func (s *Store) ListNeighborhoodRules(ctx context.Context, restaurantID uuid.UUID) ([]delivery.Rule, error) {
	rows, err := s.db.Query(ctx, listNeighborhoodRules, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list neighborhood rules: %w", err)
	}
	defer rows.Close()

	var rules []delivery.Rule
	for rows.Next() {
		var r delivery.Rule
		var fee pgtype.Numeric
		if err := rows.Scan(&r.ID, &r.RestaurantID, &r.Neighborhood, &r.NormalizedNeighborhood, &r.Aliases, &fee); err != nil {
			return nil, fmt.Errorf("scan neighborhood rule: %w", err)
		}
		r.Fee = numericToDecimal(fee)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

const listDistanceRules = `
SELECT id, restaurant_id, from_km, to_km, fee
FROM delivery_rules
WHERE restaurant_id = $1 AND kind = 'DISTANCE' AND active = TRUE
ORDER BY from_km
`

// ListDistanceRules returns the active distance-band rules for a restaurant,
// ordered by the band lower bound.
func (s *Store) ListDistanceRules(ctx context.Context, restaurantID uuid.UUID) ([]delivery.Rule, error) {
	rows, err := s.db.Query(ctx, listDistanceRules, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list distance rules: %w", err)
	}
	defer rows.Close()

	var rules []delivery.Rule
	for rows.Next() {
		var r delivery.Rule
		var fee pgtype.Numeric
		if err := rows.Scan(&r.ID, &r.RestaurantID, &r.FromKm, &r.ToKm, &fee); err != nil {
			return nil, fmt.Errorf("scan distance rule: %w", err)
		}
		r.Fee = numericToDecimal(fee)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
