// Package service holds the order assembly logic: catalog validation,
// addon eligibility, pricing, payment resolution and atomic persistence.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/sabordacasa/pos-api/internal/enum"
	"github.com/sabordacasa/pos-api/internal/orderparse"
	"github.com/sabordacasa/pos-api/internal/payment"
	"github.com/sabordacasa/pos-api/internal/store"
)

// Errors returned by the order service.
var (
	ErrEmptyItems            = errors.New("items are required")
	ErrInvalidOrderType      = errors.New("invalid order_type")
	ErrInvalidProductID      = errors.New("invalid product_id")
	ErrInvalidAddonID        = errors.New("invalid addon_id")
	ErrProductNotFound       = errors.New("product not found in restaurant")
	ErrInvalidAddonSelection = errors.New("addon not available for product")
	ErrPaymentMethodRequired = errors.New("payment_method is required")
	ErrPaymentMethodNotFound = errors.New("payment method not recognized")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders. Satisfied by
// *store.Store.
type OrderStore interface {
	GetProductsByIDs(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]store.Product, error)
	ListProductAddons(ctx context.Context, productID uuid.UUID) ([]store.Addon, error)
	ListActiveAddonsByCategory(ctx context.Context, restaurantID, categoryID uuid.UUID) ([]store.Addon, error)
	ListActivePaymentMethods(ctx context.Context, restaurantID uuid.UUID) ([]payment.Method, error)
	CreateOrder(ctx context.Context, arg store.CreateOrderParams) (store.Order, error)
	CreateOrderItem(ctx context.Context, arg store.CreateOrderItemParams) (store.OrderItem, error)
	CreateOrderItemAddon(ctx context.Context, arg store.CreateOrderItemAddonParams) (store.OrderItemAddon, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx). This allows
// the service to create store instances bound to transactions.
type NewOrderStore func(db store.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order. The order
// number is issued by the caller before the transaction starts.
type CreateOrderRequest struct {
	RestaurantID        uuid.UUID
	CreatedBy           uuid.UUID
	OrderNumber         string
	OrderType           string
	CustomerName        string
	TableNumber         string
	Notes               string
	PaymentMethod       string // free text, resolved against configured methods
	DeliveryAddress     string
	DeliveryFee         decimal.Decimal
	DeliveryRuleApplied string
	Items               []orderparse.Item
}

// CreateOrderResult is the full created order with items.
type CreateOrderResult struct {
	Order         store.Order
	PaymentMethod payment.Method
	Items         []OrderItemResult
	KitchenRouted bool
}

// OrderItemResult is an item with its addons.
type OrderItemResult struct {
	Item   store.OrderItem
	Addons []store.OrderItemAddon
}

// OrderService assembles and persists orders.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	resolver *payment.Resolver
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{
		pool:     pool,
		newStore: newStore,
		resolver: payment.NewResolver(payment.DefaultResolverConfig()),
	}
}

// addonInfo holds data about an addon to insert.
type addonInfo struct {
	addonID   uuid.UUID
	quantity  int32
	unitPrice decimal.Decimal
}

// processedItem holds a prepared order item and its addons.
type processedItem struct {
	params store.CreateOrderItemParams
	addons []addonInfo
}

// CreateOrder validates the request, resolves the payment method, prices
// each line and persists the order atomically.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if !isValidOrderType(req.OrderType) {
		return nil, ErrInvalidOrderType
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, ErrPaymentMethodRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	st := s.newStore(tx)

	method, err := s.resolvePayment(ctx, st, req.RestaurantID, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	productIDs, err := collectProductIDs(req.Items)
	if err != nil {
		return nil, err
	}
	products, err := st.GetProductsByIDs(ctx, req.RestaurantID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	subtotal := decimal.Zero
	kitchenRouted := false
	eligibleCache := make(map[uuid.UUID]map[uuid.UUID]store.Addon)
	var items []processedItem

	for i, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidProductID)
		}
		product, ok := products[productID]
		if !ok {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrProductNotFound)
		}

		eligible, err := s.eligibleAddons(ctx, st, product, eligibleCache)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}

		addonsTotal := decimal.Zero
		var itemAddons []addonInfo
		for j, sel := range item.Addons {
			addonID, err := uuid.Parse(sel.AddonID)
			if err != nil {
				return nil, fmt.Errorf("item[%d].addons[%d]: %w", i, j, ErrInvalidAddonID)
			}
			addon, ok := eligible[addonID]
			if !ok {
				return nil, fmt.Errorf("item[%d].addons[%d]: %w", i, j, ErrInvalidAddonSelection)
			}
			qty := int32(sel.Quantity)
			addonsTotal = addonsTotal.Add(addon.Price.Mul(decimal.NewFromInt32(qty)))
			itemAddons = append(itemAddons, addonInfo{
				addonID:   addonID,
				quantity:  qty,
				unitPrice: addon.Price,
			})
		}

		qty := int32(item.Quantity)
		// line_total = unit_price * qty + addons total. Addons price per
		// line, not per unit.
		lineTotal := product.Price.Mul(decimal.NewFromInt32(qty)).Add(addonsTotal)
		subtotal = subtotal.Add(lineTotal)
		if product.KitchenRouted {
			kitchenRouted = true
		}

		items = append(items, processedItem{
			params: store.CreateOrderItemParams{
				ProductID:     productID,
				Quantity:      qty,
				UnitPrice:     product.Price,
				Notes:         textOrNull(item.Notes),
				LineTotal:     lineTotal,
				KitchenRouted: product.KitchenRouted,
			},
			addons: itemAddons,
		})
	}

	deliveryFee := decimal.Zero
	deliveryAddress := pgtype.Text{}
	ruleApplied := pgtype.Text{}
	if req.OrderType == enum.OrderTypeDelivery {
		deliveryFee = req.DeliveryFee
		deliveryAddress = textOrNull(req.DeliveryAddress)
		ruleApplied = textOrNull(req.DeliveryRuleApplied)
	}

	status := enum.OrderStatusFinalized
	if kitchenRouted {
		status = enum.OrderStatusNew
	}

	order, err := st.CreateOrder(ctx, store.CreateOrderParams{
		RestaurantID:        req.RestaurantID,
		OrderNumber:         req.OrderNumber,
		OrderType:           req.OrderType,
		Status:              status,
		TableNumber:         textOrNull(req.TableNumber),
		CustomerName:        textOrNull(req.CustomerName),
		Notes:               textOrNull(req.Notes),
		PaymentMethodID:     method.ID,
		Subtotal:            subtotal,
		DeliveryFee:         deliveryFee,
		DeliveryAddress:     deliveryAddress,
		DeliveryRuleApplied: ruleApplied,
		Total:               subtotal.Add(deliveryFee),
		CreatedBy:           req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var itemResults []OrderItemResult
	for _, pi := range items {
		pi.params.OrderID = order.ID
		item, err := st.CreateOrderItem(ctx, pi.params)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}

		var addonResults []store.OrderItemAddon
		for _, a := range pi.addons {
			oia, err := st.CreateOrderItemAddon(ctx, store.CreateOrderItemAddonParams{
				OrderItemID: item.ID,
				AddonID:     a.addonID,
				Quantity:    a.quantity,
				UnitPrice:   a.unitPrice,
			})
			if err != nil {
				return nil, fmt.Errorf("create order item addon: %w", err)
			}
			addonResults = append(addonResults, oia)
		}
		itemResults = append(itemResults, OrderItemResult{Item: item, Addons: addonResults})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{
		Order:         order,
		PaymentMethod: *method,
		Items:         itemResults,
		KitchenRouted: kitchenRouted,
	}, nil
}

// resolvePayment matches the free-text payment description against the
// restaurant's active methods. A miss lists the valid names in the error so
// the counter operator sees what was expected.
func (s *OrderService) resolvePayment(ctx context.Context, st OrderStore, restaurantID uuid.UUID, query string) (*payment.Method, error) {
	methods, err := st.ListActivePaymentMethods(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	method := s.resolver.PickBest(query, methods)
	if method == nil {
		return nil, fmt.Errorf("%w: %q (valid: %s)",
			ErrPaymentMethodNotFound, query, strings.Join(payment.Names(methods), ", "))
	}
	return method, nil
}

// eligibleAddons returns the addons a product may carry: its explicit
// bindings when any exist, otherwise every active addon of its category.
func (s *OrderService) eligibleAddons(ctx context.Context, st OrderStore, product store.Product, cache map[uuid.UUID]map[uuid.UUID]store.Addon) (map[uuid.UUID]store.Addon, error) {
	if eligible, ok := cache[product.ID]; ok {
		return eligible, nil
	}

	addons, err := st.ListProductAddons(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("list product addons: %w", err)
	}
	if len(addons) == 0 {
		addons, err = st.ListActiveAddonsByCategory(ctx, product.RestaurantID, product.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("list category addons: %w", err)
		}
	}

	eligible := make(map[uuid.UUID]store.Addon, len(addons))
	for _, a := range addons {
		eligible[a.ID] = a
	}
	cache[product.ID] = eligible
	return eligible, nil
}

func collectProductIDs(items []orderparse.Item) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for i, item := range items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidProductID)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func isValidOrderType(s string) bool {
	switch s {
	case enum.OrderTypeCounter, enum.OrderTypePickup,
		enum.OrderTypeDelivery, enum.OrderTypeTab:
		return true
	}
	return false
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
