package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/sabordacasa/pos-api/internal/delivery"
	"github.com/sabordacasa/pos-api/internal/enum"
	"github.com/sabordacasa/pos-api/internal/middleware"
	"github.com/sabordacasa/pos-api/internal/orderparse"
	"github.com/sabordacasa/pos-api/internal/service"
	"github.com/sabordacasa/pos-api/internal/ws"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderNumberIssuer hands out the next order sequence for a restaurant.
// Satisfied by *store.Store.
type OrderNumberIssuer interface {
	NextOrderNumber(ctx context.Context, restaurantID uuid.UUID) (int32, error)
}

// Broadcaster pushes events to connected kitchen displays.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToRestaurant(restaurantID uuid.UUID, event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc         OrderServicer
	numbers     OrderNumberIssuer
	calc        FeeCalculator
	restaurants RestaurantStore
	hub         Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, numbers OrderNumberIssuer, calc FeeCalculator, restaurants RestaurantStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, numbers: numbers, calc: calc, restaurants: restaurants, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Post("/preview", h.Preview)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType string `json:"order_type"`

	// Items in compact notation: "p1:2:sem cebola:a1|1,a2|2;p2::null"
	Items string `json:"items"`

	CustomerName  string `json:"customer_name"`
	TableNumber   string `json:"table_number"`
	Notes         string `json:"notes"`
	PaymentMethod string `json:"payment_method"`

	DeliveryAddress      string `json:"delivery_address"`
	DeliveryNeighborhood string `json:"delivery_neighborhood"`

	// DeliveryFee overrides the computed fee when set (manager adjustment).
	DeliveryFee string `json:"delivery_fee"`
}

type orderResponse struct {
	ID                  uuid.UUID           `json:"id"`
	RestaurantID        uuid.UUID           `json:"restaurant_id"`
	OrderNumber         string              `json:"order_number"`
	OrderType           string              `json:"order_type"`
	Status              string              `json:"status"`
	TableNumber         *string             `json:"table_number"`
	CustomerName        *string             `json:"customer_name"`
	Notes               *string             `json:"notes"`
	PaymentMethod       string              `json:"payment_method"`
	Subtotal            string              `json:"subtotal"`
	DeliveryFee         string              `json:"delivery_fee"`
	DeliveryAddress     *string             `json:"delivery_address"`
	DeliveryRuleApplied *string             `json:"delivery_rule_applied"`
	Total               string              `json:"total"`
	CreatedBy           uuid.UUID           `json:"created_by"`
	CreatedAt           time.Time           `json:"created_at"`
	Items               []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ID            uuid.UUID                `json:"id"`
	ProductID     uuid.UUID                `json:"product_id"`
	Quantity      int32                    `json:"quantity"`
	UnitPrice     string                   `json:"unit_price"`
	Notes         *string                  `json:"notes"`
	LineTotal     string                   `json:"line_total"`
	KitchenRouted bool                     `json:"kitchen_routed"`
	Addons        []orderItemAddonResponse `json:"addons"`
}

type orderItemAddonResponse struct {
	ID        uuid.UUID `json:"id"`
	AddonID   uuid.UUID `json:"addon_id"`
	Quantity  int32     `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
}

type previewItemResponse struct {
	ProductID string                    `json:"product_id"`
	Quantity  int                       `json:"quantity"`
	Notes     string                    `json:"notes"`
	Addons    []previewAddonResponse    `json:"addons"`
}

type previewAddonResponse struct {
	AddonID  string `json:"addon_id"`
	Quantity int    `json:"quantity"`
}

// --- Handlers ---

// Create handles POST /restaurants/{rid}/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.OrderType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_type is required"})
		return
	}

	items := orderparse.ParseItems(req.Items)
	if len(items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}

	deliveryFee := decimal.Zero
	ruleApplied := ""
	if req.OrderType == enum.OrderTypeDelivery {
		deliveryFee, ruleApplied, err = h.resolveDeliveryFee(w, r, restaurantID, req)
		if err != nil {
			// response already written
			return
		}
	}

	seq, err := h.numbers.NextOrderNumber(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: next order number: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	orderNumber := formatOrderNumber(seq)

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		RestaurantID:        restaurantID,
		CreatedBy:           claims.UserID,
		OrderNumber:         orderNumber,
		OrderType:           req.OrderType,
		CustomerName:        req.CustomerName,
		TableNumber:         req.TableNumber,
		Notes:               req.Notes,
		PaymentMethod:       req.PaymentMethod,
		DeliveryAddress:     req.DeliveryAddress,
		DeliveryFee:         deliveryFee,
		DeliveryRuleApplied: ruleApplied,
		Items:               items,
	})
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if result.KitchenRouted {
		h.notifyKitchen(restaurantID, result)
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(result))
}

// Preview handles POST /restaurants/{rid}/orders/preview. It decodes the
// compact item notation without touching the catalog, so the counter UI can
// show what was typed before committing.
func (h *OrderHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items string `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items := orderparse.ParseItems(req.Items)
	resp := make([]previewItemResponse, len(items))
	for i, item := range items {
		addons := make([]previewAddonResponse, len(item.Addons))
		for j, a := range item.Addons {
			addons[j] = previewAddonResponse{AddonID: a.AddonID, Quantity: a.Quantity}
		}
		resp[i] = previewItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
			Addons:    addons,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": resp})
}

// --- Helpers ---

// resolveDeliveryFee determines the fee for a DELIVERY order: a manual
// override wins, otherwise the calculator prices the address. Writes the
// error response itself and returns a non-nil error when the order cannot
// proceed.
func (h *OrderHandler) resolveDeliveryFee(w http.ResponseWriter, r *http.Request, restaurantID uuid.UUID, req createOrderRequest) (decimal.Decimal, string, error) {
	if req.DeliveryAddress == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delivery_address is required for DELIVERY orders"})
		return decimal.Zero, "", errHandled
	}

	if req.DeliveryFee != "" {
		fee, err := decimal.NewFromString(req.DeliveryFee)
		if err != nil || fee.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid delivery_fee"})
			return decimal.Zero, "", errHandled
		}
		return fee, "manual", nil
	}

	restaurant, err := h.restaurants.GetRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: get restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return decimal.Zero, "", errHandled
	}

	result, err := h.calc.CalculateDeliveryFee(r.Context(), restaurantID, restaurant.Address, req.DeliveryAddress, req.DeliveryNeighborhood)
	if err != nil {
		var pErr *delivery.ProviderError
		if errors.As(err, &pErr) {
			writeJSON(w, http.StatusBadGateway, map[string]string{
				"error": "fee not calculated",
				"code":  pErr.Code,
			})
			return decimal.Zero, "", errHandled
		}
		log.Printf("ERROR: calculate delivery fee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return decimal.Zero, "", errHandled
	}

	if !result.Covered {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": "delivery unavailable for this address",
		})
		return decimal.Zero, "", errHandled
	}

	return result.Fee, result.RuleApplied, nil
}

var errHandled = errors.New("response already written")

func (h *OrderHandler) notifyKitchen(restaurantID uuid.UUID, result *service.CreateOrderResult) {
	payload, err := json.Marshal(toOrderResponse(result))
	if err != nil {
		log.Printf("ERROR: marshal kitchen event: %v", err)
		return
	}
	h.hub.BroadcastToRestaurant(restaurantID, ws.Event{
		Type:    ws.EventOrderCreated,
		Payload: payload,
	})
}

func formatOrderNumber(seq int32) string {
	return fmt.Sprintf("PED-%04d", seq)
}

func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrInvalidProductID) ||
		errors.Is(err, service.ErrInvalidAddonID) ||
		errors.Is(err, service.ErrProductNotFound) ||
		errors.Is(err, service.ErrInvalidAddonSelection) ||
		errors.Is(err, service.ErrPaymentMethodRequired) ||
		errors.Is(err, service.ErrPaymentMethodNotFound)
}

func toOrderResponse(result *service.CreateOrderResult) orderResponse {
	o := result.Order
	items := make([]orderItemResponse, len(result.Items))
	for i, ir := range result.Items {
		addons := make([]orderItemAddonResponse, len(ir.Addons))
		for j, a := range ir.Addons {
			addons[j] = orderItemAddonResponse{
				ID:        a.ID,
				AddonID:   a.AddonID,
				Quantity:  a.Quantity,
				UnitPrice: a.UnitPrice.StringFixed(2),
			}
		}
		items[i] = orderItemResponse{
			ID:            ir.Item.ID,
			ProductID:     ir.Item.ProductID,
			Quantity:      ir.Item.Quantity,
			UnitPrice:     ir.Item.UnitPrice.StringFixed(2),
			Notes:         textPtr(ir.Item.Notes),
			LineTotal:     ir.Item.LineTotal.StringFixed(2),
			KitchenRouted: ir.Item.KitchenRouted,
			Addons:        addons,
		}
	}

	return orderResponse{
		ID:                  o.ID,
		RestaurantID:        o.RestaurantID,
		OrderNumber:         o.OrderNumber,
		OrderType:           o.OrderType,
		Status:              o.Status,
		TableNumber:         textPtr(o.TableNumber),
		CustomerName:        textPtr(o.CustomerName),
		Notes:               textPtr(o.Notes),
		PaymentMethod:       result.PaymentMethod.Name,
		Subtotal:            o.Subtotal.StringFixed(2),
		DeliveryFee:         o.DeliveryFee.StringFixed(2),
		DeliveryAddress:     textPtr(o.DeliveryAddress),
		DeliveryRuleApplied: textPtr(o.DeliveryRuleApplied),
		Total:               o.Total.StringFixed(2),
		CreatedBy:           o.CreatedBy,
		CreatedAt:           o.CreatedAt,
		Items:               items,
	}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}
