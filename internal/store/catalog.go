package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const getProductsByIDs = `
SELECT id, restaurant_id, category_id, name, price, kitchen_routed, active
FROM products
WHERE restaurant_id = $1 AND id = ANY($2) AND active = TRUE
`

// GetProductsByIDs loads the given active products in one round trip. Missing
// ids are simply absent from the result.
func (s *Store) GetProductsByIDs(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	rows, err := s.db.Query(ctx, getProductsByIDs, restaurantID, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()

	products := make(map[uuid.UUID]Product, len(ids))
	for rows.Next() {
		var p Product
		var price pgtype.Numeric
		if err := rows.Scan(&p.ID, &p.RestaurantID, &p.CategoryID, &p.Name, &price, &p.KitchenRouted, &p.Active); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Price = numericToDecimal(price)
		products[p.ID] = p
	}
	return products, rows.Err()
}

const listProductAddons = `
SELECT a.id, a.restaurant_id, a.category_id, a.name, a.price, a.active
FROM addons a
JOIN product_addons pa ON pa.addon_id = a.id
WHERE pa.product_id = $1 AND a.active = TRUE
ORDER BY a.name
`

// ListProductAddons returns the addons explicitly bound to a product.
func (s *Store) ListProductAddons(ctx context.Context, productID uuid.UUID) ([]Addon, error) {
	rows, err := s.db.Query(ctx, listProductAddons, productID)
	if err != nil {
		return nil, fmt.Errorf("list product addons: %w", err)
	}
	defer rows.Close()
	return scanAddons(rows)
}

const listActiveAddonsByCategory = `
SELECT id, restaurant_id, category_id, name, price, active
FROM addons
WHERE restaurant_id = $1 AND category_id = $2 AND active = TRUE
ORDER BY name
`

// ListActiveAddonsByCategory returns the category-level addons, used as the
// eligibility fallback for products without explicit bindings.
func (s *Store) ListActiveAddonsByCategory(ctx context.Context, restaurantID, categoryID uuid.UUID) ([]Addon, error) {
	rows, err := s.db.Query(ctx, listActiveAddonsByCategory, restaurantID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list addons by category: %w", err)
	}
	defer rows.Close()
	return scanAddons(rows)
}

func scanAddons(rows pgx.Rows) ([]Addon, error) {
	var addons []Addon
	for rows.Next() {
		var a Addon
		var price pgtype.Numeric
		if err := rows.Scan(&a.ID, &a.RestaurantID, &a.CategoryID, &a.Name, &price, &a.Active); err != nil {
			return nil, fmt.Errorf("scan addon: %w", err)
		}
		a.Price = numericToDecimal(price)
		addons = append(addons, a)
	}
	return addons, rows.Err()
}
