package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sabordacasa/pos-api/internal/handler"
	"github.com/sabordacasa/pos-api/internal/middleware"
	"github.com/sabordacasa/pos-api/internal/payment"
)

type mockPaymentStore struct {
	methods []payment.Method
	err     error
}

func (m *mockPaymentStore) ListActivePaymentMethods(ctx context.Context, restaurantID uuid.UUID) ([]payment.Method, error) {
	return m.methods, m.err
}

func setupPaymentRouter(store *mockPaymentStore) *chi.Mux {
	h := handler.NewPaymentHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/restaurants/{rid}/payment-methods", h.RegisterRoutes)
	return r
}

func TestListPaymentMethodsHandler(t *testing.T) {
	restaurantID := uuid.New()
	store := &mockPaymentStore{methods: []payment.Method{
		{ID: uuid.New(), Name: "Dinheiro", Active: true},
		{ID: uuid.New(), Name: "Pix", Active: true},
	}}
	router := setupPaymentRouter(store)

	rr := doAuthRequest(t, router, "GET", "/restaurants/"+restaurantID.String()+"/payment-methods/", nil, testClaims(restaurantID))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	methods, ok := resp["payment_methods"].([]interface{})
	if !ok || len(methods) != 2 {
		t.Fatalf("payment_methods = %v", resp["payment_methods"])
	}
}

func TestResolvePaymentMethodHandler(t *testing.T) {
	restaurantID := uuid.New()
	store := &mockPaymentStore{methods: []payment.Method{
		{ID: uuid.New(), Name: "Dinheiro", Active: true},
		{ID: uuid.New(), Name: "Cartão de Débito", Active: true},
	}}
	router := setupPaymentRouter(store)

	rr := doAuthRequest(t, router, "GET", "/restaurants/"+restaurantID.String()+"/payment-methods/resolve?q=cartao", nil, testClaims(restaurantID))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["name"] != "Cartão de Débito" {
		t.Errorf("name = %v, want Cartão de Débito", resp["name"])
	}
}

func TestResolvePaymentMethodHandler_NoMatch(t *testing.T) {
	restaurantID := uuid.New()
	store := &mockPaymentStore{methods: []payment.Method{
		{ID: uuid.New(), Name: "Dinheiro", Active: true},
	}}
	router := setupPaymentRouter(store)

	rr := doAuthRequest(t, router, "GET", "/restaurants/"+restaurantID.String()+"/payment-methods/resolve?q=bitcoin", nil, testClaims(restaurantID))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	resp := decodeBody(t, rr)
	valid, ok := resp["valid"].([]interface{})
	if !ok || len(valid) != 1 || valid[0] != "Dinheiro" {
		t.Errorf("valid = %v, want [Dinheiro]", resp["valid"])
	}
}

func TestResolvePaymentMethodHandler_MissingQuery(t *testing.T) {
	restaurantID := uuid.New()
	router := setupPaymentRouter(&mockPaymentStore{})

	rr := doAuthRequest(t, router, "GET", "/restaurants/"+restaurantID.String()+"/payment-methods/resolve", nil, testClaims(restaurantID))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
