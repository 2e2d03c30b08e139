package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"marketplace-api/internal/domain"
)

// Payment is the provider-side payment snapshot. Status is treated as ground
// truth over any webhook payload, since the provider may re-deliver stale
// notifications.
type Payment struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	StatusDetail      string      `json:"status_detail"`
	ExternalReference string      `json:"external_reference"`
	TransactionAmount float64     `json:"transaction_amount"`
	PaymentMethodID   string      `json:"payment_method_id"`
	PaymentTypeID     string      `json:"payment_type_id"`
	DateCreated       *time.Time  `json:"date_created,omitempty"`
	DateApproved      *time.Time  `json:"date_approved,omitempty"`
}

type CreatePaymentInput struct {
	AmountCents       int64
	Description       string
	PaymentMethodID   string
	PayerEmail        string
	ExternalReference string
	NotificationURL   string
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *log.Logger
}

func New(baseURL, token string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
}

// GetPayment fetches the current payment state from the provider.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, "get payment")
}

// CreatePayment registers a new charge with the provider. Amounts are sent in
// currency units, not cents.
func (c *Client) CreatePayment(ctx context.Context, in CreatePaymentInput) (*Payment, error) {
	body := map[string]interface{}{
		"transaction_amount": float64(in.AmountCents) / 100,
		"description":        in.Description,
		"payment_method_id":  in.PaymentMethodID,
		"payer":              map[string]string{"email": in.PayerEmail},
		"external_reference": in.ExternalReference,
	}
	if in.NotificationURL != "" {
		body["notification_url"] = in.NotificationURL
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "create payment")
}

func (c *Client) do(req *http.Request, op string) (*Payment, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Printf("mercadopago: %s status=%d body=%s", op, resp.StatusCode, raw)
		return nil, &domain.UpstreamError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var p Payment
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, &domain.UpstreamError{Op: op, Err: err}
	}
	return &p, nil
}
