package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mxfunds/nav-analytics-backend/internal/api/handlers"
	custommiddleware "github.com/mxfunds/nav-analytics-backend/internal/api/middleware"
	"github.com/mxfunds/nav-analytics-backend/internal/config"
	"github.com/mxfunds/nav-analytics-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	reconService *service.ReconciliationService,
	perfService *service.PerformanceService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/reconciliation", func(r chi.Router) {
			reconHandler := handlers.NewReconciliationHandler(reconService, cfg.FilingsDir)
			r.Get("/{ticker}/report", reconHandler.Report)
			r.Post("/{ticker}/import", reconHandler.Import)
		})

		perfHandler := handlers.NewPerformanceHandler(perfService)
		r.Route("/performance", func(r chi.Router) {
			r.Get("/compare", perfHandler.Compare)
			r.Get("/{ticker}", perfHandler.Metrics)
			r.Get("/{ticker}/accuracy", perfHandler.Accuracy)
		})
		r.Get("/tickers", perfHandler.Tickers)
	})

	return r
}
