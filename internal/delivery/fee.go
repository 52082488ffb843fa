package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Result is the outcome of a delivery fee calculation.
type Result struct {
	Fee         decimal.Decimal
	DistanceKm  float64
	RuleApplied string

	// Covered is false when no rule produced a fee. An uncovered result
	// means "delivery unavailable", never "free delivery"; callers that
	// want a fee anyway must set one manually.
	Covered bool
}

// Calculator composes the two pricing strategies: neighborhood rules take
// priority, measured distance is the fallback. Neighborhoods are checked
// first because they are exact and free, while the distance path costs an
// external routing call per order.
type Calculator struct {
	neighborhoods *NeighborhoodResolver
	distances     *DistanceResolver
	logger        *zap.Logger
}

func NewCalculator(neighborhoods *NeighborhoodResolver, distances *DistanceResolver, logger *zap.Logger) *Calculator {
	return &Calculator{
		neighborhoods: neighborhoods,
		distances:     distances,
		logger:        logger,
	}
}

// CalculateDeliveryFee prices a delivery to customerAddress. When
// customerNeighborhood is non-blank and a neighborhood rule matches, the
// distance provider is never called. A provider failure is returned as an
// error (wrapping *ProviderError); no fee is guessed.
func (c *Calculator) CalculateDeliveryFee(ctx context.Context, restaurantID uuid.UUID, restaurantAddress, customerAddress, customerNeighborhood string) (Result, error) {
	if strings.TrimSpace(customerNeighborhood) != "" {
		fee, err := c.neighborhoods.FindFeeForNeighborhood(ctx, restaurantID, customerNeighborhood)
		switch {
		case err == nil:
			return Result{
				Fee:         fee,
				DistanceKm:  0,
				RuleApplied: "Bairro: " + customerNeighborhood,
				Covered:     true,
			}, nil
		case errors.Is(err, ErrNoRule):
			// fall through to the distance path
		default:
			// A lookup failure is treated as a miss so the order can still
			// be priced, but it is logged distinctly: falling back hides
			// data problems behind a much more expensive routing call.
			c.logger.Warn("neighborhood fee lookup failed, falling back to distance",
				zap.String("restaurant_id", restaurantID.String()),
				zap.String("neighborhood", customerNeighborhood),
				zap.Error(err))
		}
	}

	measurement, err := c.distances.Resolve(ctx, restaurantAddress, customerAddress)
	if err != nil {
		return Result{}, fmt.Errorf("measure distance: %w", err)
	}

	fee, rule, err := c.distances.FeeForDistance(ctx, restaurantID, measurement.DistanceKm)
	if errors.Is(err, ErrNoRule) {
		return Result{
			Fee:         decimal.Zero,
			DistanceKm:  measurement.DistanceKm,
			RuleApplied: "none",
			Covered:     false,
		}, nil
	}
	if err != nil {
		return Result{}, err
	}

	return Result{
		Fee:         fee,
		DistanceKm:  measurement.DistanceKm,
		RuleApplied: fmt.Sprintf("%g-%g km", rule.FromKm, rule.ToKm),
		Covered:     true,
	}, nil
}
