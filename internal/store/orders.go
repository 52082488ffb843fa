package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// CreateOrderParams are the columns written when inserting an order header.
type CreateOrderParams struct {
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
}

const createOrder = `
INSERT INTO orders (
	restaurant_id, order_number, order_type, status,
	table_number, customer_name, notes, payment_method_id,
	subtotal, delivery_fee, delivery_address, delivery_rule_applied,
	total, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id, restaurant_id, order_number, order_type, status,
	table_number, customer_name, notes, payment_method_id,
	subtotal, delivery_fee, delivery_address, delivery_rule_applied,
	total, created_by, created_at
`

func (s *Store) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	var o Order
	var subtotal, deliveryFee, total pgtype.Numeric
	err := s.db.QueryRow(ctx, createOrder,
		arg.RestaurantID, arg.OrderNumber, arg.OrderType, arg.Status,
		arg.TableNumber, arg.CustomerName, arg.Notes, arg.PaymentMethodID,
		decimalToNumeric(arg.Subtotal), decimalToNumeric(arg.DeliveryFee),
		arg.DeliveryAddress, arg.DeliveryRuleApplied,
		decimalToNumeric(arg.Total), arg.CreatedBy,
	).Scan(
		&o.ID, &o.RestaurantID, &o.OrderNumber, &o.OrderType, &o.Status,
		&o.TableNumber, &o.CustomerName, &o.Notes, &o.PaymentMethodID,
		&subtotal, &deliveryFee, &o.DeliveryAddress, &o.DeliveryRuleApplied,
		&total, &o.CreatedBy, &o.CreatedAt,
	)
	if err != nil {
		return Order{}, err
	}
	o.Subtotal = numericToDecimal(subtotal)
	o.DeliveryFee = numericToDecimal(deliveryFee)
	o.Total = numericToDecimal(total)
	return o, nil
}

// CreateOrderItemParams are the columns written when inserting an order line.
type CreateOrderItemParams struct {
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	Quantity      int32
	UnitPrice     decimal.Decimal
	Notes         pgtype.Text
	LineTotal     decimal.Decimal
	KitchenRouted bool
}

const createOrderItem = `
INSERT INTO order_items (
	order_id, product_id, quantity, unit_price, notes, line_total, kitchen_routed
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_id, product_id, quantity, unit_price, notes, line_total, kitchen_routed
`

func (s *Store) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	var it OrderItem
	var unitPrice, lineTotal pgtype.Numeric
	err := s.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.ProductID, arg.Quantity,
		decimalToNumeric(arg.UnitPrice), arg.Notes,
		decimalToNumeric(arg.LineTotal), arg.KitchenRouted,
	).Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
		&unitPrice, &it.Notes, &lineTotal, &it.KitchenRouted,
	)
	if err != nil {
		return OrderItem{}, err
	}
	it.UnitPrice = numericToDecimal(unitPrice)
	it.LineTotal = numericToDecimal(lineTotal)
	return it, nil
}

// CreateOrderItemAddonParams are the columns written when attaching an addon
// to an order line.
type CreateOrderItemAddonParams struct {
	OrderItemID uuid.UUID
	AddonID     uuid.UUID
	Quantity    int32
	UnitPrice   decimal.Decimal
}

const createOrderItemAddon = `
INSERT INTO order_item_addons (order_item_id, addon_id, quantity, unit_price)
VALUES ($1, $2, $3, $4)
RETURNING id, order_item_id, addon_id, quantity, unit_price
`

func (s *Store) CreateOrderItemAddon(ctx context.Context, arg CreateOrderItemAddonParams) (OrderItemAddon, error) {
	var oia OrderItemAddon
	var unitPrice pgtype.Numeric
	err := s.db.QueryRow(ctx, createOrderItemAddon,
		arg.OrderItemID, arg.AddonID, arg.Quantity, decimalToNumeric(arg.UnitPrice),
	).Scan(&oia.ID, &oia.OrderItemID, &oia.AddonID, &oia.Quantity, &unitPrice)
	if err != nil {
		return OrderItemAddon{}, err
	}
	oia.UnitPrice = numericToDecimal(unitPrice)
	return oia, nil
}
