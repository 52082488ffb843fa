package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sabordacasa/pos-api/internal/payment"
)

// PaymentStore defines the database methods needed by payment handlers.
// Satisfied by *store.Store.
type PaymentStore interface {
	ListActivePaymentMethods(ctx context.Context, restaurantID uuid.UUID) ([]payment.Method, error)
}

// PaymentHandler handles payment method endpoints.
type PaymentHandler struct {
	store    PaymentStore
	resolver *payment.Resolver
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(store PaymentStore) *PaymentHandler {
	return &PaymentHandler{
		store:    store,
		resolver: payment.NewResolver(payment.DefaultResolverConfig()),
	}
}

// RegisterRoutes registers payment endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/payment-methods
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/resolve", h.Resolve)
}

// --- Response types ---

type paymentMethodResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// --- Handlers ---

// List handles GET /restaurants/{rid}/payment-methods.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	methods, err := h.store.ListActivePaymentMethods(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list payment methods: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]paymentMethodResponse, len(methods))
	for i, m := range methods {
		resp[i] = paymentMethodResponse{ID: m.ID, Name: m.Name}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"payment_methods": resp})
}

// Resolve handles GET /restaurants/{rid}/payment-methods/resolve?q=...
// It previews what the order flow would pick for a free-text description.
func (h *PaymentHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}

	methods, err := h.store.ListActivePaymentMethods(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list payment methods: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	method := h.resolver.PickBest(query, methods)
	if method == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error": "no matching payment method",
			"valid": payment.Names(methods),
		})
		return
	}

	writeJSON(w, http.StatusOK, paymentMethodResponse{ID: method.ID, Name: method.Name})
}
