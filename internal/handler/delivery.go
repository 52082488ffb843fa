package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sabordacasa/pos-api/internal/delivery"
	"github.com/sabordacasa/pos-api/internal/store"
)

// FeeCalculator defines the delivery pricing methods needed by handlers.
// Satisfied by *delivery.Calculator.
type FeeCalculator interface {
	CalculateDeliveryFee(ctx context.Context, restaurantID uuid.UUID, restaurantAddress, customerAddress, customerNeighborhood string) (delivery.Result, error)
}

// NeighborhoodSearcher defines the fuzzy search method needed by handlers.
// Satisfied by *delivery.NeighborhoodResolver.
type NeighborhoodSearcher interface {
	SearchByNeighborhood(ctx context.Context, restaurantID uuid.UUID, query string, limit int) ([]delivery.Match, error)
}

// RestaurantStore provides the restaurant origin address for distance quotes.
// Satisfied by *store.Store.
type RestaurantStore interface {
	GetRestaurant(ctx context.Context, id uuid.UUID) (store.Restaurant, error)
}

// DeliveryHandler handles delivery quoting endpoints.
type DeliveryHandler struct {
	calc        FeeCalculator
	search      NeighborhoodSearcher
	restaurants RestaurantStore
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(calc FeeCalculator, search NeighborhoodSearcher, restaurants RestaurantStore) *DeliveryHandler {
	return &DeliveryHandler{calc: calc, search: search, restaurants: restaurants}
}

// RegisterRoutes registers delivery endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/delivery
func (h *DeliveryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/quote", h.Quote)
	r.Get("/neighborhoods", h.SearchNeighborhoods)
}

// --- Request / Response types ---

type quoteRequest struct {
	Address      string `json:"address"`
	Neighborhood string `json:"neighborhood"`
}

type quoteResponse struct {
	Fee         string  `json:"fee"`
	DistanceKm  float64 `json:"distance_km"`
	RuleApplied string  `json:"rule_applied"`
	Covered     bool    `json:"covered"`
}

type neighborhoodMatchResponse struct {
	RuleID       uuid.UUID `json:"rule_id"`
	Neighborhood string    `json:"neighborhood"`
	Fee          string    `json:"fee"`
	Score        float64   `json:"score"`
}

// --- Handlers ---

// Quote handles POST /restaurants/{rid}/delivery/quote.
func (h *DeliveryHandler) Quote(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Address == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address is required"})
		return
	}

	restaurant, err := h.restaurants.GetRestaurant(r.Context(), restaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	result, err := h.calc.CalculateDeliveryFee(r.Context(), restaurantID, restaurant.Address, req.Address, req.Neighborhood)
	if err != nil {
		var pErr *delivery.ProviderError
		if errors.As(err, &pErr) {
			writeJSON(w, http.StatusBadGateway, map[string]string{
				"error": "fee not calculated",
				"code":  pErr.Code,
			})
			return
		}
		log.Printf("ERROR: delivery quote: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		Fee:         result.Fee.StringFixed(2),
		DistanceKm:  result.DistanceKm,
		RuleApplied: result.RuleApplied,
		Covered:     result.Covered,
	})
}

// SearchNeighborhoods handles GET /restaurants/{rid}/delivery/neighborhoods?q=...&limit=...
func (h *DeliveryHandler) SearchNeighborhoods(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	query := r.URL.Query().Get("q")

	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}

	matches, err := h.search.SearchByNeighborhood(r.Context(), restaurantID, query, limit)
	if err != nil {
		log.Printf("ERROR: search neighborhoods: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]neighborhoodMatchResponse, len(matches))
	for i, m := range matches {
		resp[i] = neighborhoodMatchResponse{
			RuleID:       m.RuleID,
			Neighborhood: m.Neighborhood,
			Fee:          m.Fee.StringFixed(2),
			Score:        m.Score,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"matches": resp})
}
