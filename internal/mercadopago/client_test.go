package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace-api/internal/domain"
)

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization header = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":                 42,
			"status":             "approved",
			"external_reference": "subscription_a_b",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", nil)
	p, err := c.GetPayment(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID.String() != "42" || p.Status != "approved" {
		t.Fatalf("unexpected payment %+v", p)
	}
}

func TestGetPaymentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", nil)
	_, err := c.GetPayment(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetPaymentServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", nil)
	_, err := c.GetPayment(context.Background(), "42")
	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestCreatePaymentSendsAmountInCurrencyUnits(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payments" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 987, "status": "pending"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", nil)
	p, err := c.CreatePayment(context.Background(), CreatePaymentInput{
		AmountCents:       7990,
		Description:       "Premium plan subscription",
		PaymentMethodID:   "pix",
		PayerEmail:        "seller@example.com",
		ExternalReference: "subscription_a_b",
		NotificationURL:   "https://api.example.com/api/payments/webhook",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID.String() != "987" {
		t.Fatalf("unexpected id %s", p.ID)
	}
	if captured["transaction_amount"] != 79.9 {
		t.Fatalf("transaction_amount = %v, want 79.9", captured["transaction_amount"])
	}
	if captured["external_reference"] != "subscription_a_b" {
		t.Fatalf("external_reference = %v", captured["external_reference"])
	}
	if captured["notification_url"] != "https://api.example.com/api/payments/webhook" {
		t.Fatalf("notification_url = %v", captured["notification_url"])
	}
}

func TestProviderUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", "tok", nil)
	_, err := c.GetPayment(context.Background(), "42")
	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
