package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"nazca360/internal/domain/payment"
	"nazca360/internal/domain/subscription"
	"nazca360/internal/infra"
	"nazca360/internal/infra/db"
	infrapayment "nazca360/internal/infra/payment"
	"nazca360/internal/pkg/clock"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase/readmodel"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx db.DBTX, t *payment.Transaction) error
	FindBySession(ctx context.Context, sessionID string) (*readmodel.PaymentTransactionRM, error)
	MarkPaid(ctx context.Context, tx db.DBTX, sessionID string) (bool, error)
	MarkFailed(ctx context.Context, sessionID string) error
}

type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, req infrapayment.CheckoutRequest) (*infrapayment.CheckoutSession, error)
	GetCheckoutStatus(ctx context.Context, sessionID string) (*infrapayment.CheckoutStatus, error)
	VerifyWebhook(body []byte, signature string) (*infrapayment.WebhookEvent, error)
}

// ReservationConfirmer and SubscriptionActivator are the two session-keyed
// transitions reconciliation can trigger.
type ReservationConfirmer interface {
	ConfirmBySession(ctx context.Context, tx db.DBTX, sessionID string) error
	CancelBySession(ctx context.Context, sessionID string) error
}

type SubscriptionActivator interface {
	ActivateBySession(ctx context.Context, tx db.DBTX, sessionID string, start, end time.Time) error
}

// PaymentUseCase reconciles checkout sessions with local state. Both the
// status poll and the provider webhook land here, and both may race: the
// paid transition happens at most once, so side effects never double-fire.
type PaymentUseCase interface {
	PollAndReconcile(ctx context.Context, sessionID string) (*readmodel.PaymentTransactionRM, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type paymentUseCaseImpl struct {
	paymentRepo      PaymentRepository
	reservationRepo  ReservationConfirmer
	subscriptionRepo SubscriptionActivator
	provider         CheckoutProvider
	beginner         db.Beginner
	clock            clock.Clock
}

func NewPaymentUseCase(
	paymentRepo PaymentRepository,
	reservationRepo ReservationConfirmer,
	subscriptionRepo SubscriptionActivator,
	provider CheckoutProvider,
	beginner db.Beginner,
	clock clock.Clock,
) PaymentUseCase {
	return &paymentUseCaseImpl{
		paymentRepo:      paymentRepo,
		reservationRepo:  reservationRepo,
		subscriptionRepo: subscriptionRepo,
		provider:         provider,
		beginner:         beginner,
		clock:            clock,
	}
}

// PollAndReconcile asks the provider for the session's state, applies any
// resulting transition, and returns the transaction as stored afterwards.
func (p *paymentUseCaseImpl) PollAndReconcile(ctx context.Context, sessionID string) (*readmodel.PaymentTransactionRM, error) {
	txn, err := p.paymentRepo.FindBySession(ctx, sessionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrPaymentSessionInvalid
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	// Terminal states are served locally without hitting the provider.
	if txn.Status == string(payment.StatusPaid) || txn.Status == string(payment.StatusFailed) {
		return txn, nil
	}

	status, err := p.provider.GetCheckoutStatus(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, infrapayment.ErrSessionInvalid):
			return nil, errs.ErrPaymentSessionInvalid
		case infra.IsKind(err, infra.KindUpstream):
			return nil, errs.ErrUpstreamUnavailable
		}
		return nil, err
	}

	switch status.PaymentStatus {
	case "paid":
		if err := p.settlePaid(ctx, txn); err != nil {
			return nil, err
		}
	case "failed", "expired":
		if err := p.settleFailed(ctx, txn); err != nil {
			return nil, err
		}
	}

	return p.paymentRepo.FindBySession(ctx, sessionID)
}

// HandleWebhook verifies the provider's signature and applies the completed
// event. Unknown event types are acknowledged and dropped.
func (p *paymentUseCaseImpl) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	event, err := p.provider.VerifyWebhook(body, signature)
	if err != nil {
		return errs.Mark(err, errs.ErrUnauthorized)
	}
	if event.EventType != infrapayment.EventCheckoutCompleted {
		slog.Debug("ignoring webhook event", "event_type", event.EventType)
		return nil
	}

	txn, err := p.paymentRepo.FindBySession(ctx, event.SessionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrPaymentSessionInvalid
		}
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return p.settlePaid(ctx, txn)
}

// settlePaid performs the initiated -> paid transition and its side effect
// in one transaction. MarkPaid is conditional, so when poll and webhook race
// only the first writer runs the side effect.
func (p *paymentUseCaseImpl) settlePaid(ctx context.Context, txn *readmodel.PaymentTransactionRM) error {
	tx, err := p.beginner.Begin(ctx)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	transitioned, err := p.paymentRepo.MarkPaid(ctx, tx, txn.SessionID)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !transitioned {
		return nil
	}

	switch payment.Purpose(txn.Purpose) {
	case payment.PurposeSubscription:
		planType := txn.Metadata[payment.MetaPlanType]
		plan, planErr := subscription.PlanByType(planType)
		if planErr != nil {
			return errs.Wrap(planErr, "paid session references unknown plan")
		}
		start := p.clock.Now()
		end := start.Add(plan.Duration)
		if err := p.subscriptionRepo.ActivateBySession(ctx, tx, txn.SessionID, start, end); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	case payment.PurposeReservation:
		if err := p.reservationRepo.ConfirmBySession(ctx, tx, txn.SessionID); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	default:
		return errs.Newf("unknown payment purpose: %q", txn.Purpose)
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

func (p *paymentUseCaseImpl) settleFailed(ctx context.Context, txn *readmodel.PaymentTransactionRM) error {
	if err := p.paymentRepo.MarkFailed(ctx, txn.SessionID); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if payment.Purpose(txn.Purpose) == payment.PurposeReservation {
		if err := p.reservationRepo.CancelBySession(ctx, txn.SessionID); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}
	return nil
}
