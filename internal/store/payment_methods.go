package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sabordacasa/pos-api/internal/payment"
)

const listActivePaymentMethods = `
SELECT id, name, active
FROM payment_methods
WHERE restaurant_id = $1 AND active = TRUE
ORDER BY name
`

// ListActivePaymentMethods returns the restaurant's active payment methods.
func (s *Store) ListActivePaymentMethods(ctx context.Context, restaurantID uuid.UUID) ([]payment.Method, error) {
	rows, err := s.db.Query(ctx, listActivePaymentMethods, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []payment.Method
	for rows.Next() {
		var m payment.Method
		if err := rows.Scan(&m.ID, &m.Name, &m.Active); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}
