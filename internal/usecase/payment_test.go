//go:build unit

package usecase_test

import (
	"testing"
	"time"

	"nazca360/internal/domain/payment"
	infrapayment "nazca360/internal/infra/payment"
	"nazca360/internal/pkg/clock"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase"
	"nazca360/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	repo      *fakePaymentRepo
	provider  *fakeProvider
	confirmer *fakeConfirmer
	activator *fakeActivator
	beginner  *fakeBeginner
	clock     *clock.FakeClock
	uc        usecase.PaymentUseCase
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		repo:      newFakePaymentRepo(),
		provider:  newFakeProvider(),
		confirmer: &fakeConfirmer{},
		activator: &fakeActivator{},
		beginner:  &fakeBeginner{},
		clock:     clock.NewFakeClock(time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.uc = usecase.NewPaymentUseCase(f.repo, f.confirmer, f.activator, f.provider, f.beginner, f.clock)
	return f
}

func (f *paymentFixture) seedReservationTxn(sessionID string) {
	f.repo.seed(&readmodel.PaymentTransactionRM{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		SessionID:   sessionID,
		AmountCents: 1500,
		Currency:    "usd",
		Purpose:     string(payment.PurposeReservation),
		Metadata:    map[string]string{},
		Status:      string(payment.StatusInitiated),
	})
}

func (f *paymentFixture) seedSubscriptionTxn(sessionID, planType string) {
	f.repo.seed(&readmodel.PaymentTransactionRM{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		SessionID:   sessionID,
		AmountCents: 2999,
		Currency:    "usd",
		Purpose:     string(payment.PurposeSubscription),
		Metadata:    map[string]string{payment.MetaPlanType: planType},
		Status:      string(payment.StatusInitiated),
	})
}

func TestPollAndReconcile(t *testing.T) {
	ctx := t.Context()

	t.Run("paid reservation session confirms the booking", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedReservationTxn("cs_res_1")
		f.provider.status["cs_res_1"] = "paid"

		txn, err := f.uc.PollAndReconcile(ctx, "cs_res_1")
		require.NoError(t, err)

		assert.Equal(t, string(payment.StatusPaid), txn.Status)
		assert.Equal(t, []string{"cs_res_1"}, f.confirmer.confirmed)
		assert.Equal(t, 1, f.beginner.committedCount())
	})

	t.Run("paid subscription session activates the paid window", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedSubscriptionTxn("cs_sub_1", "premium")
		f.provider.status["cs_sub_1"] = "paid"

		txn, err := f.uc.PollAndReconcile(ctx, "cs_sub_1")
		require.NoError(t, err)

		assert.Equal(t, string(payment.StatusPaid), txn.Status)
		require.Len(t, f.activator.activations, 1)
		got := f.activator.activations[0]
		assert.Equal(t, "cs_sub_1", got.sessionID)
		assert.Equal(t, f.clock.Now(), got.start)
		assert.Equal(t, f.clock.Now().Add(365*24*time.Hour), got.end)
	})

	t.Run("二回目のポーリングはローカル状態で完結する", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedReservationTxn("cs_res_2")
		f.provider.status["cs_res_2"] = "paid"

		_, err := f.uc.PollAndReconcile(ctx, "cs_res_2")
		require.NoError(t, err)
		_, err = f.uc.PollAndReconcile(ctx, "cs_res_2")
		require.NoError(t, err)

		// The second poll sees the terminal state and never calls out.
		assert.Equal(t, 1, f.provider.statusCalls)
		assert.Len(t, f.confirmer.confirmed, 1)
	})

	t.Run("failed reservation payment releases the held slot", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedReservationTxn("cs_res_3")
		f.provider.status["cs_res_3"] = "failed"

		txn, err := f.uc.PollAndReconcile(ctx, "cs_res_3")
		require.NoError(t, err)

		assert.Equal(t, string(payment.StatusFailed), txn.Status)
		assert.Equal(t, []string{"cs_res_3"}, f.confirmer.cancelled)
		assert.Empty(t, f.confirmer.confirmed)
	})

	t.Run("expired session is treated like a failure", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedReservationTxn("cs_res_4")
		f.provider.status["cs_res_4"] = "expired"

		txn, err := f.uc.PollAndReconcile(ctx, "cs_res_4")
		require.NoError(t, err)
		assert.Equal(t, string(payment.StatusFailed), txn.Status)
		assert.Equal(t, []string{"cs_res_4"}, f.confirmer.cancelled)
	})

	t.Run("pending session stays initiated", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedReservationTxn("cs_res_5")
		f.provider.status["cs_res_5"] = "pending"

		txn, err := f.uc.PollAndReconcile(ctx, "cs_res_5")
		require.NoError(t, err)
		assert.Equal(t, string(payment.StatusInitiated), txn.Status)
		assert.Empty(t, f.confirmer.confirmed)
	})

	t.Run("unknown session maps to invalid session error", func(t *testing.T) {
		f := newPaymentFixture(t)

		_, err := f.uc.PollAndReconcile(ctx, "cs_unknown")
		assert.ErrorIs(t, err, errs.ErrPaymentSessionInvalid)
	})

	t.Run("session the provider no longer knows maps to invalid session", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedReservationTxn("cs_res_6")
		// No provider entry: GetCheckoutStatus returns ErrSessionInvalid.

		_, err := f.uc.PollAndReconcile(ctx, "cs_res_6")
		assert.ErrorIs(t, err, errs.ErrPaymentSessionInvalid)
	})
}

func TestHandleWebhook(t *testing.T) {
	ctx := t.Context()
	body := []byte(`{"event_type":"checkout.session.completed","session_id":"cs_hook_1"}`)

	t.Run("completed event settles the transaction", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedReservationTxn("cs_hook_1")
		f.provider.event = &infrapayment.WebhookEvent{
			EventType: infrapayment.EventCheckoutCompleted,
			SessionID: "cs_hook_1",
		}

		require.NoError(t, f.uc.HandleWebhook(ctx, body, "sig"))

		txn, err := f.repo.FindBySession(ctx, "cs_hook_1")
		require.NoError(t, err)
		assert.Equal(t, string(payment.StatusPaid), txn.Status)
		assert.Equal(t, []string{"cs_hook_1"}, f.confirmer.confirmed)
	})

	t.Run("webhook after poll does not double-confirm", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedReservationTxn("cs_hook_2")
		f.provider.status["cs_hook_2"] = "paid"
		f.provider.event = &infrapayment.WebhookEvent{
			EventType: infrapayment.EventCheckoutCompleted,
			SessionID: "cs_hook_2",
		}

		_, err := f.uc.PollAndReconcile(ctx, "cs_hook_2")
		require.NoError(t, err)
		require.NoError(t, f.uc.HandleWebhook(ctx, body, "sig"))

		assert.Len(t, f.confirmer.confirmed, 1)
	})

	t.Run("署名検証に失敗したら未認可", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.provider.webhookErr = infrapayment.ErrBadSignature

		err := f.uc.HandleWebhook(ctx, body, "bad-sig")
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("unknown event types are acknowledged and dropped", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedReservationTxn("cs_hook_3")
		f.provider.event = &infrapayment.WebhookEvent{
			EventType: "checkout.session.expired",
			SessionID: "cs_hook_3",
		}

		require.NoError(t, f.uc.HandleWebhook(ctx, body, "sig"))
		assert.Empty(t, f.confirmer.confirmed)
	})

	t.Run("completed event for unknown session is rejected", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.provider.event = &infrapayment.WebhookEvent{
			EventType: infrapayment.EventCheckoutCompleted,
			SessionID: "cs_missing",
		}

		err := f.uc.HandleWebhook(ctx, body, "sig")
		assert.ErrorIs(t, err, errs.ErrPaymentSessionInvalid)
	})
}
