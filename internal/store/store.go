// Package store holds the hand-written pgx queries for the POS schema.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DBTX is the subset of pgx methods the store needs. Satisfied by
// *pgxpool.Pool and pgx.Tx, so the same queries run pooled or inside a
// transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store runs queries against a DBTX.
type Store struct {
	db DBTX
}

func New(db DBTX) *Store {
	return &Store{db: db}
}

// Restaurant is one restaurant tenant.
type Restaurant struct {
	ID        uuid.UUID
	Name      string
	Address   string
	Phone     pgtype.Text
	CreatedAt time.Time
}

// User is a staff account.
type User struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Active       bool
	CreatedAt    time.Time
}

// Product is a sellable catalog entry.
type Product struct {
	ID            uuid.UUID
	RestaurantID  uuid.UUID
	CategoryID    uuid.UUID
	Name          string
	Price         decimal.Decimal
	KitchenRouted bool
	Active        bool
}

// Addon is an extra that can be attached to an order item. CategoryID links
// addons offered to every product of a category when no explicit binding
// exists.
type Addon struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	CategoryID   pgtype.UUID
	Name         string
	Price        decimal.Decimal
	Active       bool
}

// Order is a persisted order header.
type Order struct {
	ID                  uuid.UUID
	RestaurantID        uuid.UUID
	OrderNumber         string
	OrderType           string
	Status              string
	TableNumber         pgtype.Text
	CustomerName        pgtype.Text
	Notes               pgtype.Text
	PaymentMethodID     uuid.UUID
	Subtotal            decimal.Decimal
	DeliveryFee         decimal.Decimal
	DeliveryAddress     pgtype.Text
	DeliveryRuleApplied pgtype.Text
	Total               decimal.Decimal
	CreatedBy           uuid.UUID
	CreatedAt           time.Time
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	Quantity      int32
	UnitPrice     decimal.Decimal
	Notes         pgtype.Text
	LineTotal     decimal.Decimal
	KitchenRouted bool
}

// OrderItemAddon is one addon attached to an order item.
type OrderItemAddon struct {
	ID          uuid.UUID
	OrderItemID uuid.UUID
	AddonID     uuid.UUID
	Quantity    int32
	UnitPrice   decimal.Decimal
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
