//go:build unit

package usecase_test

import (
	"context"
	"testing"
	"time"

	"nazca360/internal/domain/payment"
	"nazca360/internal/domain/subscription"
	"nazca360/internal/domain/user"
	"nazca360/internal/infra"
	"nazca360/internal/pkg/clock"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase"
	"nazca360/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriptionRepo struct {
	latest map[uuid.UUID]*readmodel.SubscriptionRM
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{latest: make(map[uuid.UUID]*readmodel.SubscriptionRM)}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, s *subscription.Subscription) error {
	return nil
}

func (r *fakeSubscriptionRepo) FindLatestPaidByUser(_ context.Context, userID uuid.UUID) (*readmodel.SubscriptionRM, error) {
	sub, ok := r.latest[userID]
	if !ok {
		return nil, infra.WrapRepoErr("subscription not found", nil, infra.KindNotFound)
	}
	return sub, nil
}

type subscriptionFixture struct {
	repo     *fakeSubscriptionRepo
	payments *fakePaymentRepo
	users    *fakeUserRepo
	provider *fakeProvider
	clock    *clock.FakeClock
	uc       usecase.SubscriptionUseCase
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()
	f := &subscriptionFixture{
		repo:     newFakeSubscriptionRepo(),
		payments: newFakePaymentRepo(),
		users:    newFakeUserRepo(),
		provider: newFakeProvider(),
		clock:    clock.NewFakeClock(time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)),
	}
	paymentUC := usecase.NewPaymentUseCase(
		f.payments, &fakeConfirmer{}, &fakeActivator{}, f.provider, &fakeBeginner{}, f.clock)
	f.uc = usecase.NewSubscriptionUseCase(
		f.repo, f.payments, f.users, paymentUC, f.provider,
		"http://localhost:8080", f.clock)
	return f
}

func (f *subscriptionFixture) seedPaid(userID uuid.UUID, end time.Time) {
	start := end.Add(-365 * 24 * time.Hour)
	f.repo.latest[userID] = &readmodel.SubscriptionRM{
		ID:        uuid.New(),
		UserID:    userID,
		PlanType:  subscription.PlanPremium,
		Status:    string(payment.StatusPaid),
		StartDate: &start,
		EndDate:   &end,
	}
}

func TestSubscriptionCreateCheckout(t *testing.T) {
	ctx := t.Context()

	t.Run("premium plan opens a checkout at the plan price", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		u := testUser(t, "maria@example.com")
		f.users.add(u)

		checkout, err := f.uc.CreateCheckout(ctx, u.ID(), subscription.PlanPremium)
		require.NoError(t, err)
		assert.NotEmpty(t, checkout.SessionID)

		require.Len(t, f.provider.sessions, 1)
		assert.Equal(t, int64(2999), f.provider.sessions[0].AmountCents)
		assert.Equal(t, subscription.PlanPremium, f.provider.sessions[0].Metadata[payment.MetaPlanType])

		txn, err := f.payments.FindBySession(ctx, checkout.SessionID)
		require.NoError(t, err)
		assert.Equal(t, string(payment.PurposeSubscription), txn.Purpose)
	})

	t.Run("未知のプランは拒否", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		u := testUser(t, "maria@example.com")
		f.users.add(u)

		_, err := f.uc.CreateCheckout(ctx, u.ID(), "platinum")
		assert.ErrorIs(t, err, subscription.ErrUnknownPlan)
	})

	t.Run("basic is free and has no checkout", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		u := testUser(t, "maria@example.com")
		f.users.add(u)

		_, err := f.uc.CreateCheckout(ctx, u.ID(), subscription.PlanBasic)
		assert.ErrorIs(t, err, subscription.ErrUnknownPlan)
	})
}

func TestSubscriptionCurrent(t *testing.T) {
	ctx := t.Context()

	t.Run("paid window still running", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		userID := uuid.New()
		f.seedPaid(userID, f.clock.Now().Add(30*24*time.Hour))

		sub, active, err := f.uc.Current(ctx, userID)
		require.NoError(t, err)
		assert.True(t, active)
		assert.Equal(t, subscription.PlanPremium, sub.PlanType)
	})

	t.Run("期限切れのサブスクリプションは無効", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		userID := uuid.New()
		f.seedPaid(userID, f.clock.Now().Add(-time.Hour))

		_, active, err := f.uc.Current(ctx, userID)
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("no subscription at all", func(t *testing.T) {
		f := newSubscriptionFixture(t)

		sub, active, err := f.uc.Current(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, sub)
		assert.False(t, active)
	})
}

func TestEntitled(t *testing.T) {
	ctx := t.Context()

	t.Run("admins stream everything", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		entitled, err := f.uc.Entitled(ctx, uuid.New(), user.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, entitled)
	})

	t.Run("active subscriber is entitled", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		userID := uuid.New()
		f.seedPaid(userID, f.clock.Now().Add(24*time.Hour))

		entitled, err := f.uc.Entitled(ctx, userID, user.RoleUser)
		require.NoError(t, err)
		assert.True(t, entitled)
	})

	t.Run("lapsed subscriber is not", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		userID := uuid.New()
		f.seedPaid(userID, f.clock.Now().Add(-24*time.Hour))

		entitled, err := f.uc.Entitled(ctx, userID, user.RoleUser)
		require.NoError(t, err)
		assert.False(t, entitled)
	})
}

func TestSubscriptionStatus(t *testing.T) {
	ctx := t.Context()

	t.Run("owner polls an unsettled session", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		u := testUser(t, "maria@example.com")
		f.users.add(u)

		checkout, err := f.uc.CreateCheckout(ctx, u.ID(), subscription.PlanPremium)
		require.NoError(t, err)
		f.provider.status[checkout.SessionID] = "pending"

		st, err := f.uc.Status(ctx, checkout.SessionID, u.ID())
		require.NoError(t, err)
		assert.Equal(t, string(payment.StatusInitiated), st.PaymentStatus)
		assert.False(t, st.Active)
	})

	t.Run("someone else's session is off limits", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		u := testUser(t, "maria@example.com")
		f.users.add(u)

		checkout, err := f.uc.CreateCheckout(ctx, u.ID(), subscription.PlanPremium)
		require.NoError(t, err)
		f.provider.status[checkout.SessionID] = "pending"

		_, err = f.uc.Status(ctx, checkout.SessionID, uuid.New())
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})
}
