package store

import (
	"context"

	"github.com/google/uuid"
)

const getUserByEmail = `
SELECT id, restaurant_id, name, email, password_hash, role, active, created_at
FROM users
WHERE email = $1 AND active = TRUE
`

// GetUserByEmail loads an active user by email. Returns pgx.ErrNoRows when
// missing.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, getUserByEmail, email).
		Scan(&u.ID, &u.RestaurantID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	return u, err
}

const getUserByID = `
SELECT id, restaurant_id, name, email, password_hash, role, active, created_at
FROM users
WHERE id = $1 AND active = TRUE
`

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, getUserByID, id).
		Scan(&u.ID, &u.RestaurantID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	return u, err
}
