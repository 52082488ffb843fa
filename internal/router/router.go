package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sabordacasa/pos-api/internal/config"
	"github.com/sabordacasa/pos-api/internal/delivery"
	"github.com/sabordacasa/pos-api/internal/enum"
	"github.com/sabordacasa/pos-api/internal/handler"
	mw "github.com/sabordacasa/pos-api/internal/middleware"
	"github.com/sabordacasa/pos-api/internal/service"
	"github.com/sabordacasa/pos-api/internal/store"
	"github.com/sabordacasa/pos-api/internal/textmatch"
	"github.com/sabordacasa/pos-api/internal/ws"
)

// New creates a Chi router with all application routes wired up. The distance
// provider is injected so tests can run without the real routing API.
func New(cfg *config.Config, pool *pgxpool.Pool, hub *ws.Hub, provider delivery.Provider, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // counter UI dev server
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	queries := store.New(pool)

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/restaurants/{rid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Delivery pricing stack
	scorer := textmatch.NewScorer(textmatch.DefaultScorerConfig())
	neighborhoods := delivery.NewNeighborhoodResolver(queries, scorer)
	distances := delivery.NewDistanceResolver(queries, provider)
	calculator := delivery.NewCalculator(neighborhoods, distances, logger)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Restaurant-scoped routes
		r.Route("/restaurants/{rid}", func(r chi.Router) {
			r.Use(mw.RequireRestaurant)

			// Delivery quoting
			deliveryHandler := handler.NewDeliveryHandler(calculator, neighborhoods, queries)
			r.Route("/delivery", deliveryHandler.RegisterRoutes)

			// Payment methods
			paymentHandler := handler.NewPaymentHandler(queries)
			r.Route("/payment-methods", paymentHandler.RegisterRoutes)

			// Orders. Kitchen staff consume the feed, they don't ring up
			// orders.
			newOrderStore := func(db store.DBTX) service.OrderStore {
				return store.New(db)
			}
			orderService := service.NewOrderService(pool, newOrderStore)
			orderHandler := handler.NewOrderHandler(orderService, queries, calculator, queries, hub)
			r.Route("/orders", func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleOwner, enum.UserRoleManager, enum.UserRoleCashier))
				orderHandler.RegisterRoutes(r)
			})
		})
	})

	logger.Info("router initialized")
	return r
}
