package server

import (
	"log/slog"
	"net/http"

	"payments-dashboard/internal/config"
	"payments-dashboard/internal/handlers"
	"payments-dashboard/internal/services"
)

type Server struct {
	dashboard   *services.Dashboard
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

func NewServer(dashboard *services.Dashboard, pagination config.PaginationConfig, logger *slog.Logger) *Server {
	s := &Server{
		dashboard:   dashboard,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(dashboard, pagination, logger),
		sseHandlers: handlers.NewSSEHandlers(dashboard, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.HandleFunc("POST /admin/reload", s.apiHandlers.HandleReload)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/overview", s.apiHandlers.HandleOverview)
	s.mux.HandleFunc("GET /api/status-distribution", s.apiHandlers.HandleStatusDistribution)
	s.mux.HandleFunc("GET /api/monthly-revenue", s.apiHandlers.HandleMonthlyRevenue)
	s.mux.HandleFunc("GET /api/monthly-outcomes", s.apiHandlers.HandleMonthlyOutcomes)
	s.mux.HandleFunc("GET /api/categories/summary", s.apiHandlers.HandleCategorySummary)
	s.mux.HandleFunc("GET /api/categories/{category}/monthly", s.apiHandlers.HandleCategoryMonthly)
	s.mux.HandleFunc("GET /api/countries", s.apiHandlers.HandleCountries)
	s.mux.HandleFunc("GET /api/decline-reasons", s.apiHandlers.HandleDeclineReasons)
	s.mux.HandleFunc("GET /api/customers", s.apiHandlers.HandleCustomer)
	s.mux.HandleFunc("GET /api/transactions", s.apiHandlers.HandleTransactions)
	s.mux.HandleFunc("GET /api/refunds", s.apiHandlers.HandleRefunds)
	s.mux.HandleFunc("GET /api/disputes", s.apiHandlers.HandleDisputes)
	s.mux.HandleFunc("GET /api/cohorts", s.apiHandlers.HandleCohorts)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/overview", s.sseHandlers.HandleOverview)
	s.mux.HandleFunc("GET /sse/refunds", s.sseHandlers.HandleRefunds)
	s.mux.HandleFunc("GET /sse/disputes", s.sseHandlers.HandleDisputes)
	s.mux.HandleFunc("GET /sse/cohorts", s.sseHandlers.HandleCohorts)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
