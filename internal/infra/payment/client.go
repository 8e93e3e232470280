// Package payment talks to the external checkout provider. The provider is a
// generic hosted-checkout API: open a session, poll its status, receive
// signed webhook events. Domain meaning travels in session metadata.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nazca360/internal/infra"
	"nazca360/internal/pkg/config"
	"nazca360/internal/pkg/errs"
)

var (
	ErrSessionInvalid = errs.New("checkout session invalid")
	ErrBadSignature   = errs.New("webhook signature mismatch")
	ErrMalformedEvent = errs.New("malformed webhook event")
)

// EventCheckoutCompleted is the provider event that confirms payment.
const EventCheckoutCompleted = "checkout.session.completed"

type CheckoutRequest struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata"`
}

type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type CheckoutStatus struct {
	SessionID     string `json:"session_id"`
	PaymentStatus string `json:"payment_status"` // paid | pending | failed | expired
}

type WebhookEvent struct {
	EventType string `json:"event_type"`
	SessionID string `json:"session_id"`
}

type Client struct {
	apiKey        string
	webhookSecret []byte
	baseURL       string
	httpClient    *http.Client
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		apiKey:        cfg.APIKey,
		webhookSecret: []byte(cfg.WebhookSecret),
		baseURL:       cfg.BaseURL,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode checkout request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(err, "failed to build checkout request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, infra.WrapRepoErr("checkout provider unreachable", err, infra.KindUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, infra.WrapRepoErr(
			fmt.Sprintf("checkout provider returned %d", resp.StatusCode), nil, infra.KindUpstream)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, infra.WrapRepoErr("failed to decode checkout session", err, infra.KindUpstream)
	}
	return &session, nil
}

func (c *Client) GetCheckoutStatus(ctx context.Context, sessionID string) (*CheckoutStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build status request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, infra.WrapRepoErr("checkout provider unreachable", err, infra.KindUpstream)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return nil, ErrSessionInvalid
	case resp.StatusCode != http.StatusOK:
		return nil, infra.WrapRepoErr(
			fmt.Sprintf("checkout provider returned %d", resp.StatusCode), nil, infra.KindUpstream)
	}

	var status CheckoutStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, infra.WrapRepoErr("failed to decode checkout status", err, infra.KindUpstream)
	}
	return &status, nil
}

// VerifyWebhook checks the provider's HMAC-SHA256 signature over the raw
// body before the event is trusted, then decodes it.
func (c *Client) VerifyWebhook(body []byte, signature string) (*WebhookEvent, error) {
	mac := hmac.New(sha256.New, c.webhookSecret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrBadSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, errs.Mark(err, ErrMalformedEvent)
	}
	if event.EventType == "" || event.SessionID == "" {
		return nil, ErrMalformedEvent
	}
	return &event, nil
}
