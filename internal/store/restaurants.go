package store

import (
	"context"

	"github.com/google/uuid"
)

const getRestaurant = `
SELECT id, name, address, phone, created_at
FROM restaurants
WHERE id = $1
`

// GetRestaurant loads one restaurant. Returns pgx.ErrNoRows when missing.
func (s *Store) GetRestaurant(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	var r Restaurant
	err := s.db.QueryRow(ctx, getRestaurant, id).
		Scan(&r.ID, &r.Name, &r.Address, &r.Phone, &r.CreatedAt)
	return r, err
}

const nextOrderNumber = `
UPDATE restaurants
SET order_seq = order_seq + 1
WHERE id = $1
RETURNING order_seq
`

// NextOrderNumber advances and returns the restaurant's order sequence. The
// row lock taken by UPDATE makes concurrent callers serialize, so two orders
// never share a number.
func (s *Store) NextOrderNumber(ctx context.Context, restaurantID uuid.UUID) (int32, error) {
	var seq int32
	err := s.db.QueryRow(ctx, nextOrderNumber, restaurantID).Scan(&seq)
	return seq, err
}
