package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/farmtech/farm-market-api/internal/config"
)

// ErrUnavailable marks gateway failures that are safe to retry from the
// client side: checkout performs no local writes before the intent exists.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Client talks to the external payment gateway. Creating an intent is the
// only network call; signature verification is local recomputation.
type Client struct {
	baseURL    string
	keyID      string
	secret     string
	httpClient *http.Client
}

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		keyID:      cfg.KeyID,
		secret:     cfg.Secret,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type intentRequest struct {
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type intentResponse struct {
	ID string `json:"id"`
}

// CreateIntent opens a payment intent for the given amount in minor units and
// returns the gateway's intent id. Transport failures and gateway 5xx are
// retried once; the call has no local side effects so a retry is always safe.
func (c *Client) CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	body, err := json.Marshal(intentRequest{Amount: amountMinor, Currency: currency, Receipt: receipt})
	if err != nil {
		return "", fmt.Errorf("marshal intent: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		id, retryable, err := c.postIntent(ctx, body)
		if err == nil {
			return id, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *Client) postIntent(ctx context.Context, body []byte) (id string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", false, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	var out intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, fmt.Errorf("decode gateway response: %w", err)
	}
	if out.ID == "" {
		return "", false, errors.New("gateway response missing intent id")
	}
	return out.ID, false, nil
}

// VerifySignature recomputes the HMAC over intent id and payment id and
// compares it to the signature the client returned.
func (c *Client) VerifySignature(intentID, paymentID, signature string) bool {
	expected := Sign(c.secret, intentID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the hex HMAC-SHA256 of "intentID|paymentID" under secret.
// This is the signature scheme the gateway uses for payment proofs.
func Sign(secret, intentID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(intentID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
