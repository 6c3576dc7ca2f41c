package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mentorhub/payments-backend/internal/core/ports/providers"
)

const defaultTimeout = 15 * time.Second

// Client talks to the external card processor's REST API. Requests are
// form-encoded and authenticated with a bearer API key; every mutating call
// carries an Idempotency-Key header so retries never double-charge.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a processor client for the given API base URL and key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

var _ providers.PaymentProcessor = (*Client)(nil)

type intentPayload struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

type refundPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateChargeIntent registers a charge with the processor and returns the
// intent the client confirms out of band.
func (c *Client) CreateChargeIntent(ctx context.Context, params providers.ChargeIntentParams) (*providers.ChargeIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.AmountCents, 10))
	form.Set("currency", strings.ToLower(params.CurrencyCode))
	form.Set("metadata[order_id]", params.OrderID)
	for k, v := range params.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	var payload intentPayload
	if err := c.post(ctx, "/v1/payment_intents", params.IdempotencyKey, form, &payload); err != nil {
		return nil, err
	}

	return &providers.ChargeIntent{
		IntentID:     payload.ID,
		ClientSecret: payload.ClientSecret,
		Status:       payload.Status,
	}, nil
}

// CreateRefund asks the processor to refund a captured charge. A zero
// AmountCents refunds the full remaining amount.
func (c *Client) CreateRefund(ctx context.Context, params providers.RefundParams) (*providers.RefundResult, error) {
	form := url.Values{}
	form.Set("payment_intent", params.IntentID)
	if params.AmountCents > 0 {
		form.Set("amount", strconv.FormatInt(params.AmountCents, 10))
	}
	if params.Reason != "" {
		form.Set("reason", params.Reason)
	}

	var payload refundPayload
	if err := c.post(ctx, "/v1/refunds", params.IdempotencyKey, form, &payload); err != nil {
		return nil, err
	}

	return &providers.RefundResult{RefundID: payload.ID, Status: payload.Status}, nil
}

func (c *Client) post(ctx context.Context, path, idempotencyKey string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build processor request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures are safe to retry thanks to the idempotency key.
		return &providers.ProcessorError{Code: "network_error", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &providers.ProcessorError{Code: "read_error", Message: err.Error(), Retryable: true}
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode processor response: %w", err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var payload errorPayload
	procErr := &providers.ProcessorError{
		Code:      "api_error",
		Message:   fmt.Sprintf("processor returned status %d", status),
		Retryable: status == http.StatusTooManyRequests || status >= 500,
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Code != "" {
		procErr.Code = payload.Error.Code
		procErr.Message = payload.Error.Message
	}
	return procErr
}
