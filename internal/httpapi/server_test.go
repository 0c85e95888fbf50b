package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/anagh/homeledger/internal/service"
	"github.com/anagh/homeledger/internal/storage/sqlite"
)

// setupTestServer creates a test server backed by a temp-file SQLite
// database.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "homeledger-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	server := New(
		service.NewHouseholdService(store),
		service.NewBudgetService(store),
		service.NewSettlementService(store),
	)
	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body map[string]any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
}

func TestSettlementFlowOverHTTP(t *testing.T) {
	ts := setupTestServer(t)

	var alice, bob struct {
		ID string `json:"ID"`
	}
	resp := postJSON(t, ts.URL+"/api/members", map[string]any{
		"household_id": "hh-1", "display_name": "Alice", "role": "owner",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add member status = %d", resp.StatusCode)
	}
	decodeBody(t, resp, &alice)

	resp = postJSON(t, ts.URL+"/api/members", map[string]any{
		"household_id": "hh-1", "display_name": "Bob", "role": "member",
	})
	decodeBody(t, resp, &bob)

	// A third member is refused.
	resp = postJSON(t, ts.URL+"/api/members", map[string]any{
		"household_id": "hh-1", "display_name": "Carol", "role": "member",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("third member status = %d, want 422", resp.StatusCode)
	}

	resp = postJSON(t, ts.URL+"/api/transactions", map[string]any{
		"household_id":    "hh-1",
		"date":            "2026-01-10",
		"merchant":        "Corner Grocer",
		"amount":          "100",
		"paid_by_user_id": alice.ID,
		"category":        "SHARED",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add transaction status = %d", resp.StatusCode)
	}

	var recon struct {
		SettlementMessage string `json:"SettlementMessage"`
	}
	getResp, err := http.Get(ts.URL + "/api/reconciliation?household_id=hh-1&month=2026-01")
	if err != nil {
		t.Fatalf("GET reconciliation failed: %v", err)
	}
	decodeBody(t, getResp, &recon)
	if recon.SettlementMessage != "Bob owes Alice $50.00" {
		t.Errorf("message = %q", recon.SettlementMessage)
	}

	resp = postJSON(t, ts.URL+"/api/settlements", map[string]any{
		"household_id": "hh-1", "month": "2026-01",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("settle status = %d", resp.StatusCode)
	}

	// Duplicate settle conflicts.
	resp = postJSON(t, ts.URL+"/api/settlements", map[string]any{
		"household_id": "hh-1", "month": "2026-01",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate settle status = %d, want 409", resp.StatusCode)
	}

	// Settled month refuses new transactions.
	resp = postJSON(t, ts.URL+"/api/transactions", map[string]any{
		"household_id":    "hh-1",
		"date":            "2026-01-20",
		"merchant":        "Late Merchant",
		"amount":          "10",
		"paid_by_user_id": alice.ID,
		"category":        "SHARED",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("locked month status = %d, want 409", resp.StatusCode)
	}

	// Unsettle reopens the month.
	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/api/settlements/2026-01?household_id=hh-1", ts.URL), nil)
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("unsettle status = %d, want 204", delResp.StatusCode)
	}

	delResp, err = http.DefaultClient.Do(req.Clone(req.Context()))
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusConflict {
		t.Errorf("double unsettle status = %d, want 409", delResp.StatusCode)
	}
}

func TestBudgetStatusOverHTTP(t *testing.T) {
	ts := setupTestServer(t)

	resp := postJSON(t, ts.URL+"/api/members", map[string]any{
		"household_id": "hh-2", "display_name": "Alice", "role": "owner",
	})
	var alice, bob struct {
		ID string `json:"ID"`
	}
	decodeBody(t, resp, &alice)
	resp = postJSON(t, ts.URL+"/api/members", map[string]any{
		"household_id": "hh-2", "display_name": "Bob", "role": "member",
	})
	decodeBody(t, resp, &bob)

	resp = postJSON(t, ts.URL+"/api/budget-rules", map[string]any{
		"household_id":     "hh-2",
		"giver_user_id":    alice.ID,
		"receiver_user_id": bob.ID,
		"monthly_amount":   "500",
		"expense_type_ids": []string{"et-allowance"},
	})
	var rule struct {
		ID string `json:"ID"`
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add budget rule status = %d", resp.StatusCode)
	}
	decodeBody(t, resp, &rule)

	resp = postJSON(t, ts.URL+"/api/transactions", map[string]any{
		"household_id":    "hh-2",
		"date":            "2026-01-05",
		"merchant":        "Bookshop",
		"amount":          "200",
		"paid_by_user_id": bob.ID,
		"category":        "SHARED",
		"expense_type_id": "et-allowance",
	})
	resp.Body.Close()

	getResp, err := http.Get(fmt.Sprintf("%s/api/budget-rules/%s/status?month=2026-01", ts.URL, rule.ID))
	if err != nil {
		t.Fatalf("GET status failed: %v", err)
	}
	var status struct {
		SpentAmount string `json:"SpentAmount"`
		NetBalance  string `json:"NetBalance"`
	}
	decodeBody(t, getResp, &status)
	if status.SpentAmount != "200" {
		t.Errorf("spent = %q, want 200", status.SpentAmount)
	}
	if status.NetBalance != "300" {
		t.Errorf("net = %q, want 300", status.NetBalance)
	}
}
