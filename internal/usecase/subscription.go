package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nazca360/internal/domain/payment"
	"nazca360/internal/domain/subscription"
	"nazca360/internal/domain/user"
	"nazca360/internal/infra"
	infrapayment "nazca360/internal/infra/payment"
	"nazca360/internal/pkg/clock"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase/readmodel"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, s *subscription.Subscription) error
	FindLatestPaidByUser(ctx context.Context, userID uuid.UUID) (*readmodel.SubscriptionRM, error)
}

type SubscriptionCheckout struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// SubscriptionStatusRM is the poll response for the frontend's post-checkout
// redirect page.
type SubscriptionStatusRM struct {
	SessionID     string `json:"session_id"`
	PaymentStatus string `json:"payment_status"`
	Active        bool   `json:"active"`
}

type SubscriptionUseCase interface {
	CreateCheckout(ctx context.Context, userID uuid.UUID, planType string) (*SubscriptionCheckout, error)
	Status(ctx context.Context, sessionID string, userID uuid.UUID) (*SubscriptionStatusRM, error)
	Current(ctx context.Context, userID uuid.UUID) (*readmodel.SubscriptionRM, bool, error)
	Entitled(ctx context.Context, userID uuid.UUID, role user.Role) (bool, error)
}

type subscriptionUseCaseImpl struct {
	subscriptionRepo SubscriptionRepository
	paymentRepo      PaymentRepository
	userRepo         UserRepository
	paymentUC        PaymentUseCase
	provider         CheckoutProvider
	baseURL          string
	clock            clock.Clock
}

func NewSubscriptionUseCase(
	subscriptionRepo SubscriptionRepository,
	paymentRepo PaymentRepository,
	userRepo UserRepository,
	paymentUC PaymentUseCase,
	provider CheckoutProvider,
	baseURL string,
	clock clock.Clock,
) SubscriptionUseCase {
	return &subscriptionUseCaseImpl{
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		userRepo:         userRepo,
		paymentUC:        paymentUC,
		provider:         provider,
		baseURL:          baseURL,
		clock:            clock,
	}
}

// CreateCheckout opens a checkout session for the plan and records the
// subscription in its initiated state.
func (s *subscriptionUseCaseImpl) CreateCheckout(ctx context.Context, userID uuid.UUID, planType string) (*SubscriptionCheckout, error) {
	plan, err := subscription.PlanByType(planType)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrUnauthorized
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	session, err := s.provider.CreateCheckoutSession(ctx, infrapayment.CheckoutRequest{
		AmountCents: plan.AmountCents,
		Currency:    plan.Currency,
		SuccessURL:  s.baseURL + "/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   s.baseURL + "/subscription",
		Metadata: map[string]string{
			payment.MetaPlanType:  plan.Type,
			payment.MetaUserEmail: u.Email().Value(),
		},
	})
	if err != nil {
		if infra.IsKind(err, infra.KindUpstream) {
			return nil, errs.ErrUpstreamUnavailable
		}
		return nil, err
	}

	sub := subscription.New(userID, plan.Type, session.SessionID)
	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	txn := payment.NewTransaction(userID, session.SessionID, plan.AmountCents, plan.Currency,
		payment.PurposeSubscription, map[string]string{
			payment.MetaPlanType:  plan.Type,
			payment.MetaUserEmail: u.Email().Value(),
		})
	if err := s.paymentRepo.Create(ctx, nil, txn); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return &SubscriptionCheckout{
		SessionID:   session.SessionID,
		CheckoutURL: session.URL,
	}, nil
}

// Status reconciles the session then reports whether the caller now holds an
// active subscription. Only the session owner may poll it.
func (s *subscriptionUseCaseImpl) Status(ctx context.Context, sessionID string, userID uuid.UUID) (*SubscriptionStatusRM, error) {
	txn, err := s.paymentUC.PollAndReconcile(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, errs.ErrForbidden
	}

	active := false
	if txn.Status == string(payment.StatusPaid) {
		_, active, err = s.Current(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	return &SubscriptionStatusRM{
		SessionID:     txn.SessionID,
		PaymentStatus: txn.Status,
		Active:        active,
	}, nil
}

// Current returns the user's latest paid subscription and whether it is
// still inside its paid window.
func (s *subscriptionUseCaseImpl) Current(ctx context.Context, userID uuid.UUID) (*readmodel.SubscriptionRM, bool, error) {
	sub, err := s.subscriptionRepo.FindLatestPaidByUser(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, false, nil
		}
		return nil, false, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return sub, subscriptionActive(sub, s.clock.Now()), nil
}

// Entitled reports whether the user may play premium content. Admins always
// qualify; everyone else needs an unexpired paid subscription.
func (s *subscriptionUseCaseImpl) Entitled(ctx context.Context, userID uuid.UUID, role user.Role) (bool, error) {
	if role == user.RoleAdmin {
		return true, nil
	}
	_, active, err := s.Current(ctx, userID)
	return active, err
}

func subscriptionActive(sub *readmodel.SubscriptionRM, now time.Time) bool {
	if sub == nil || sub.Status != string(payment.StatusPaid) || sub.EndDate == nil {
		return false
	}
	return sub.EndDate.After(now)
}
