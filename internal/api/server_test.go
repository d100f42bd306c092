package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bank-statement-ledger/internal/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	service, err := pipeline.New(nil)
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}
	return NewServer(service)
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestProcessStatement(t *testing.T) {
	s := newTestServer(t)

	statement := strings.Join([]string{
		"15/03/2024 Donation received with thanks 5,000.00 CR",
		"16/03/2024 ATM withdrawal 2,000.00 DR",
	}, "\n")

	rec := doRequest(t, s, http.MethodPost, "/v1/statements", map[string]string{
		"text": statement,
		"bank": "generic",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Bank         string `json:"bank"`
		Transactions []struct {
			Category string `json:"category"`
		} `json:"transactions"`
		TrialBalance struct {
			Balanced bool `json:"balanced"`
		} `json:"trial_balance"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Bank != "generic" {
		t.Errorf("bank = %q, want generic", result.Bank)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("response has %d transactions, want 2", len(result.Transactions))
	}
	if result.Transactions[0].Category != "donation_income" {
		t.Errorf("first category = %q, want donation_income", result.Transactions[0].Category)
	}
	if !result.TrialBalance.Balanced {
		t.Error("trial balance not balanced")
	}
}

func TestProcessStatement_EmptyText(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/v1/statements", map[string]string{"text": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestProcessStatement_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/statements", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestProcessStatement_NoTransactions(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/v1/statements", map[string]string{
		"text": "nothing resembling a transaction",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if body.Code != "no_transactions" {
		t.Errorf("error code = %q, want no_transactions", body.Code)
	}
}

func TestListCategories(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/v1/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Categories) == 0 {
		t.Fatal("no categories in response")
	}
	if body.Categories[0].Name != "donation_income" {
		t.Errorf("first category = %q, want donation_income", body.Categories[0].Name)
	}
}

func TestAddCategory(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/v1/categories", map[string]interface{}{
		"name":         "rent_expense",
		"keywords":     []string{"rent", "landlord"},
		"account_name": "Rent Expense",
		"type":         "expense",
		"priority":     2,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodGet, "/v1/categories", nil)
	if !strings.Contains(rec.Body.String(), "rent_expense") {
		t.Error("added category not listed")
	}
}

func TestAddCategory_Invalid(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/v1/categories", map[string]interface{}{
		"name": "",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodDelete, "/v1/statements", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
