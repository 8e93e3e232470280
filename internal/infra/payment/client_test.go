//go:build unit

package payment_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"nazca360/internal/infra"
	"nazca360/internal/infra/payment"
	"nazca360/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *payment.Client {
	return payment.NewClient(config.PaymentConfig{
		APIKey:        "sk_test_key",
		WebhookSecret: "whsec_test",
		BaseURL:       baseURL,
	})
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhook(t *testing.T) {
	client := newTestClient("http://unused")
	body := []byte(`{"event_type":"checkout.session.completed","session_id":"cs_123"}`)

	t.Run("valid signature yields the event", func(t *testing.T) {
		event, err := client.VerifyWebhook(body, sign("whsec_test", body))
		require.NoError(t, err)
		assert.Equal(t, payment.EventCheckoutCompleted, event.EventType)
		assert.Equal(t, "cs_123", event.SessionID)
	})

	t.Run("別の秘密鍵で署名されたら拒否", func(t *testing.T) {
		_, err := client.VerifyWebhook(body, sign("whsec_other", body))
		assert.ErrorIs(t, err, payment.ErrBadSignature)
	})

	t.Run("tampered body fails the check", func(t *testing.T) {
		sig := sign("whsec_test", body)
		tampered := []byte(`{"event_type":"checkout.session.completed","session_id":"cs_999"}`)
		_, err := client.VerifyWebhook(tampered, sig)
		assert.ErrorIs(t, err, payment.ErrBadSignature)
	})

	t.Run("empty signature fails the check", func(t *testing.T) {
		_, err := client.VerifyWebhook(body, "")
		assert.ErrorIs(t, err, payment.ErrBadSignature)
	})

	t.Run("signed garbage is malformed", func(t *testing.T) {
		garbage := []byte(`not json`)
		_, err := client.VerifyWebhook(garbage, sign("whsec_test", garbage))
		assert.ErrorIs(t, err, payment.ErrMalformedEvent)
	})

	t.Run("signed event without a session is malformed", func(t *testing.T) {
		partial := []byte(`{"event_type":"checkout.session.completed"}`)
		_, err := client.VerifyWebhook(partial, sign("whsec_test", partial))
		assert.ErrorIs(t, err, payment.ErrMalformedEvent)
	})
}

func TestCreateCheckoutSession(t *testing.T) {
	ctx := t.Context()

	t.Run("posts the request with bearer auth", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"session_id":"cs_new","url":"https://pay.example.com/cs_new"}`))
		}))
		defer srv.Close()

		session, err := newTestClient(srv.URL).CreateCheckoutSession(ctx, payment.CheckoutRequest{
			AmountCents: 1500,
			Currency:    "usd",
		})
		require.NoError(t, err)
		assert.Equal(t, "cs_new", session.SessionID)
		assert.Equal(t, "Bearer sk_test_key", gotAuth)
	})

	t.Run("provider 5xx is an upstream failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).CreateCheckoutSession(ctx, payment.CheckoutRequest{})
		assert.True(t, infra.IsKind(err, infra.KindUpstream))
	})

	t.Run("unreachable provider is an upstream failure", func(t *testing.T) {
		_, err := newTestClient("http://127.0.0.1:1").CreateCheckoutSession(ctx, payment.CheckoutRequest{})
		assert.True(t, infra.IsKind(err, infra.KindUpstream))
	})
}

func TestGetCheckoutStatus(t *testing.T) {
	ctx := t.Context()

	t.Run("returns the provider's payment status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/checkout/sessions/cs_123", r.URL.Path)
			w.Write([]byte(`{"session_id":"cs_123","payment_status":"paid"}`))
		}))
		defer srv.Close()

		status, err := newTestClient(srv.URL).GetCheckoutStatus(ctx, "cs_123")
		require.NoError(t, err)
		assert.Equal(t, "paid", status.PaymentStatus)
	})

	t.Run("404はセッション無効として扱う", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).GetCheckoutStatus(ctx, "cs_gone")
		assert.ErrorIs(t, err, payment.ErrSessionInvalid)
	})

	t.Run("410 gone means the same", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusGone)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).GetCheckoutStatus(ctx, "cs_gone")
		assert.ErrorIs(t, err, payment.ErrSessionInvalid)
	})
}
