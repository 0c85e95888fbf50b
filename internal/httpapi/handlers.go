package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anagh/homeledger/internal/models"
)

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HouseholdID string `json:"household_id"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.HouseholdID == "" || req.DisplayName == "" {
		writeError(w, badRequest("household_id and display_name are required"))
		return
	}
	role := models.Role(req.Role)
	if role != models.RoleOwner && role != models.RoleMember {
		writeError(w, badRequest("role must be owner or member"))
		return
	}

	member := &models.Member{
		HouseholdID: req.HouseholdID,
		DisplayName: req.DisplayName,
		Role:        role,
	}
	if err := s.households.AddMember(r.Context(), member); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	householdID := r.URL.Query().Get("household_id")
	if householdID == "" {
		writeError(w, badRequest("household_id is required"))
		return
	}
	members, err := s.households.Members(r.Context(), householdID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HouseholdID   string          `json:"household_id"`
		Date          string          `json:"date"`
		Merchant      string          `json:"merchant"`
		Amount        decimal.Decimal `json:"amount"`
		PaidByUserID  string          `json:"paid_by_user_id"`
		Category      string          `json:"category"`
		ExpenseTypeID string          `json:"expense_type_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, badRequest("date must be YYYY-MM-DD"))
		return
	}

	tx := &models.Transaction{
		HouseholdID:   req.HouseholdID,
		Date:          date,
		Merchant:      req.Merchant,
		Amount:        req.Amount,
		PaidByUserID:  req.PaidByUserID,
		Category:      models.Category(req.Category),
		ExpenseTypeID: req.ExpenseTypeID,
	}
	if err := s.households.AddTransaction(r.Context(), tx); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	householdID := r.URL.Query().Get("household_id")
	if householdID == "" {
		writeError(w, badRequest("household_id is required"))
		return
	}
	month, err := models.ParseMonthKey(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, badRequest("month must be YYYY-MM"))
		return
	}

	txs, err := s.households.Transactions(r.Context(), householdID, month)
	if err != nil {
		writeError(w, err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleAddSplitRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HouseholdID    string          `json:"household_id"`
		Member1Percent decimal.Decimal `json:"member1_percent"`
		Member2Percent decimal.Decimal `json:"member2_percent"`
		IsDefault      bool            `json:"is_default"`
		ExpenseTypeIDs []string        `json:"expense_type_ids"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rule := &models.SplitRule{
		HouseholdID:    req.HouseholdID,
		Member1Percent: req.Member1Percent,
		Member2Percent: req.Member2Percent,
		IsDefault:      req.IsDefault,
		ExpenseTypeIDs: req.ExpenseTypeIDs,
	}
	if err := s.households.AddSplitRule(r.Context(), rule); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleAddBudgetRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HouseholdID    string          `json:"household_id"`
		GiverUserID    string          `json:"giver_user_id"`
		ReceiverUserID string          `json:"receiver_user_id"`
		MonthlyAmount  decimal.Decimal `json:"monthly_amount"`
		ExpenseTypeIDs []string        `json:"expense_type_ids"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rule := &models.BudgetRule{
		HouseholdID:    req.HouseholdID,
		GiverUserID:    req.GiverUserID,
		ReceiverUserID: req.ReceiverUserID,
		MonthlyAmount:  req.MonthlyAmount,
		ExpenseTypeIDs: req.ExpenseTypeIDs,
		IsActive:       true,
	}
	if err := s.budgets.AddRule(r.Context(), rule); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	month, err := models.ParseMonthKey(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, badRequest("month must be YYYY-MM"))
		return
	}
	status, err := s.budgets.Status(r.Context(), r.PathValue("id"), month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleReconciliation(w http.ResponseWriter, r *http.Request) {
	householdID := r.URL.Query().Get("household_id")
	if householdID == "" {
		writeError(w, badRequest("household_id is required"))
		return
	}
	month, err := models.ParseMonthKey(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, badRequest("month must be YYYY-MM"))
		return
	}

	result, err := s.households.Reconcile(r.Context(), householdID, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HouseholdID string `json:"household_id"`
		Month       string `json:"month"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	month, err := models.ParseMonthKey(req.Month)
	if err != nil {
		writeError(w, badRequest("month must be YYYY-MM"))
		return
	}

	members, err := s.households.Members(r.Context(), req.HouseholdID)
	if err != nil {
		writeError(w, err)
		return
	}
	settlement, err := s.settlements.CreateSettlement(r.Context(), req.HouseholdID, members, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settlement)
}

func (s *Server) handleRemoveSettlement(w http.ResponseWriter, r *http.Request) {
	householdID := r.URL.Query().Get("household_id")
	if householdID == "" {
		writeError(w, badRequest("household_id is required"))
		return
	}
	month, err := models.ParseMonthKey(r.PathValue("month"))
	if err != nil {
		writeError(w, badRequest("month must be YYYY-MM"))
		return
	}

	if err := s.settlements.RemoveSettlement(r.Context(), householdID, month); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiError carries an HTTP status with a message.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(message string) error {
	return &apiError{status: http.StatusBadRequest, message: message}
}

func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &apiError{status: http.StatusBadRequest, message: "invalid request body: " + err.Error()}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var apiErr *apiError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.status
	case errors.Is(err, models.ErrAlreadySettled), errors.Is(err, models.ErrNotSettled):
		status = http.StatusConflict
	case errors.Is(err, models.ErrNoTransactions), errors.Is(err, models.ErrUnsupportedHouseholdSize):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
