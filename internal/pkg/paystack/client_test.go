package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		SecretKey:  "sk_test_unit",
		APIBaseURL: srv.URL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestCreateCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/customer" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_unit" {
			t.Fatalf("unexpected authorization header: %q", got)
		}

		var req CustomerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Email != "parent@example.com" {
			t.Fatalf("unexpected email: %q", req.Email)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Customer created","data":{"id":101,"email":"parent@example.com","customer_code":"CUS_abc123"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	cust, err := c.CreateCustomer(context.Background(), CustomerRequest{
		Email:     "parent@example.com",
		FirstName: "Ada",
		LastName:  "Obi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cust.CustomerCode != "CUS_abc123" {
		t.Fatalf("unexpected customer code: %q", cust.CustomerCode)
	}
}

func TestCreateCustomer_MissingEmail(t *testing.T) {
	c := &Client{SecretKey: "sk_test_unit"}
	if _, err := c.CreateCustomer(context.Background(), CustomerRequest{}); err == nil {
		t.Fatalf("expected error for missing email")
	}
}

func TestCreateDedicatedAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dedicated_account" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["customer"] != "CUS_abc123" {
			t.Fatalf("unexpected customer: %q", body["customer"])
		}
		if body["preferred_bank"] != "wema-bank" {
			t.Fatalf("unexpected preferred bank: %q", body["preferred_bank"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"NUBAN successfully created","data":{"account_number":"9930012345","account_name":"SCHOOLPAY/ADA OBI","bank":{"name":"Wema Bank","slug":"wema-bank","id":20},"active":true,"assigned":true}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	acct, err := c.CreateDedicatedAccount(context.Background(), "CUS_abc123", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acct.AccountNumber != "9930012345" {
		t.Fatalf("unexpected account number: %q", acct.AccountNumber)
	}
	if acct.Bank.Slug != "wema-bank" {
		t.Fatalf("unexpected bank slug: %q", acct.Bank.Slug)
	}
}

func TestClient_RateLimitedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"status":false,"message":"Too many requests"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.CreateDedicatedAccount(context.Background(), "CUS_abc123", "wema-bank")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsRateLimited(err) {
		t.Fatalf("expected rate-limited error, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: %d", apiErr.StatusCode)
	}
}

func TestClient_FeatureUnavailableError(t *testing.T) {
	responses := []string{
		`{"status":false,"message":"Dedicated NUBAN is not available for your business"}`,
		`{"status":false,"message":"This feature is not enabled for your account"}`,
	}
	for _, resp := range responses {
		body := resp
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(body))
		}))

		c := newTestClient(srv)
		_, err := c.CreateDedicatedAccount(context.Background(), "CUS_abc123", "wema-bank")
		srv.Close()

		if !errors.Is(err, ErrFeatureUnavailable) {
			t.Fatalf("expected ErrFeatureUnavailable for %q, got %v", body, err)
		}
		if IsRateLimited(err) {
			t.Fatalf("feature-unavailable must not classify as rate limited")
		}
	}
}

func TestClient_GenericAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":false,"message":"Invalid bank slug"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.CreateDedicatedAccount(context.Background(), "CUS_abc123", "nonsense-bank")
	if errors.Is(err, ErrFeatureUnavailable) {
		t.Fatalf("generic failure must not classify as feature unavailable")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
}
