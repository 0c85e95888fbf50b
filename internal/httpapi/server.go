// Package httpapi exposes the engine over a JSON HTTP API.
package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anagh/homeledger/internal/service"
)

// Server bundles the services behind the HTTP handlers.
type Server struct {
	households  *service.HouseholdService
	budgets     *service.BudgetService
	settlements *service.SettlementService
}

// New creates a Server over the given services.
func New(households *service.HouseholdService, budgets *service.BudgetService, settlements *service.SettlementService) *Server {
	return &Server{
		households:  households,
		budgets:     budgets,
		settlements: settlements,
	}
}

// Routes returns the API mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/members", s.handleAddMember)
	mux.HandleFunc("GET /api/members", s.handleListMembers)
	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/split-rules", s.handleAddSplitRule)
	mux.HandleFunc("POST /api/budget-rules", s.handleAddBudgetRule)
	mux.HandleFunc("GET /api/budget-rules/{id}/status", s.handleBudgetStatus)
	mux.HandleFunc("GET /api/reconciliation", s.handleReconciliation)
	mux.HandleFunc("POST /api/settlements", s.handleCreateSettlement)
	mux.HandleFunc("DELETE /api/settlements/{month}", s.handleRemoveSettlement)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
