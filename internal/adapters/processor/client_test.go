package processor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/payments-backend/internal/core/ports/providers"
)

func TestClient_CreateChargeIntent(t *testing.T) {
	var gotIdempotencyKey, gotAuth, gotAmount string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")
		gotAmount = r.PostFormValue("amount")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret","status":"requires_confirmation"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_key")
	intent, err := client.CreateChargeIntent(context.Background(), providers.ChargeIntentParams{
		OrderID:        "order_1",
		AmountCents:    10000,
		CurrencyCode:   "USD",
		IdempotencyKey: "create_intent:order_1",
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.IntentID)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)
	assert.Equal(t, "requires_confirmation", intent.Status)
	assert.Equal(t, "create_intent:order_1", gotIdempotencyKey)
	assert.Equal(t, "Bearer sk_test_key", gotAuth)
	assert.Equal(t, "10000", gotAmount)
}

func TestClient_CreateRefund_FullOmitsAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "pi_123", r.PostFormValue("payment_intent"))
		assert.Empty(t, r.PostFormValue("amount"))
		_, _ = w.Write([]byte(`{"id":"re_1","status":"succeeded"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_key")
	result, err := client.CreateRefund(context.Background(), providers.RefundParams{
		IntentID:       "pi_123",
		Reason:         "requested_by_customer",
		IdempotencyKey: "refund:order_1",
	})

	require.NoError(t, err)
	assert.Equal(t, "re_1", result.RefundID)
	assert.Equal(t, "succeeded", result.Status)
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantCode      string
		wantRetryable bool
	}{
		{
			name:          "card declined is not retryable",
			status:        http.StatusPaymentRequired,
			body:          `{"error":{"code":"card_declined","message":"Your card was declined."}}`,
			wantCode:      "card_declined",
			wantRetryable: false,
		},
		{
			name:          "rate limited is retryable",
			status:        http.StatusTooManyRequests,
			body:          `{"error":{"code":"rate_limited","message":"Too many requests"}}`,
			wantCode:      "rate_limited",
			wantRetryable: true,
		},
		{
			name:          "server error without body is retryable",
			status:        http.StatusInternalServerError,
			body:          `oops`,
			wantCode:      "api_error",
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, "sk_test_key")
			_, err := client.CreateChargeIntent(context.Background(), providers.ChargeIntentParams{
				OrderID:      "order_1",
				AmountCents:  500,
				CurrencyCode: "USD",
			})

			var procErr *providers.ProcessorError
			require.ErrorAs(t, err, &procErr)
			assert.Equal(t, tt.wantCode, procErr.Code)
			assert.Equal(t, tt.wantRetryable, procErr.Retryable)
		})
	}
}
