package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmtech/farm-market-api/internal/config"
)

func testClient(baseURL string) *Client {
	return NewClient(config.GatewayConfig{
		KeyID:   "key_test",
		Secret:  "secret_test",
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	})
}

func TestClient_CreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "secret_test", pass)

		var body struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(18000), body.Amount)
		assert.Equal(t, "inr", body.Currency)
		assert.Equal(t, "FM-TEST1", body.Receipt)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"order_123"}`))
	}))
	defer srv.Close()

	id, err := testClient(srv.URL).CreateIntent(context.Background(), 18000, "inr", "FM-TEST1")
	require.NoError(t, err)
	assert.Equal(t, "order_123", id)
}

func TestClient_CreateIntent_RetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"order_retry"}`))
	}))
	defer srv.Close()

	id, err := testClient(srv.URL).CreateIntent(context.Background(), 5000, "inr", "FM-RETRY")
	require.NoError(t, err)
	assert.Equal(t, "order_retry", id)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CreateIntent_Unavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CreateIntent(context.Background(), 5000, "inr", "FM-DOWN")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load(), "5xx is retried once, then given up")
}

func TestClient_CreateIntent_NoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CreateIntent(context.Background(), 5000, "inr", "FM-AUTH")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_VerifySignature(t *testing.T) {
	c := testClient("http://unused")

	sig := Sign("secret_test", "order_123", "pay_456")
	assert.True(t, c.VerifySignature("order_123", "pay_456", sig))

	assert.False(t, c.VerifySignature("order_123", "pay_456", "forged"))
	assert.False(t, c.VerifySignature("order_123", "pay_999", sig), "signature bound to payment id")
	assert.False(t, c.VerifySignature("order_999", "pay_456", sig), "signature bound to intent id")
	assert.False(t, c.VerifySignature("order_123", "pay_456", Sign("wrong", "order_123", "pay_456")))
}
