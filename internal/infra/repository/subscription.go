package repository

import (
	"context"
	"time"

	"nazca360/internal/domain/subscription"
	"nazca360/internal/infra"
	"nazca360/internal/infra/db"
	"nazca360/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SubscriptionRepository struct {
	db db.DBTX
}

func NewSubscriptionRepository(db db.DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, plan_type, session_id, status, start_date, end_date, auto_renew, created_at`

func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO subscriptions (id, user_id, plan_type, session_id, status, auto_renew)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID(), s.UserID(), s.PlanType(), s.SessionID(), s.Status().String(), s.AutoRenew(),
	)
	if err != nil {
		return wrap("failed to create subscription", err)
	}
	return nil
}

// ActivateBySession marks the subscription paid and stamps its validity
// window. Conditional on not-yet-paid so duplicate reconciliation cannot
// shift an already granted window.
func (r *SubscriptionRepository) ActivateBySession(ctx context.Context, tx db.DBTX, sessionID string, start, end time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE subscriptions SET status = 'paid', start_date = $2, end_date = $3
		WHERE session_id = $1 AND status <> 'paid'`, sessionID, start, end)
	if err != nil {
		return wrap("failed to activate subscription", err)
	}
	return nil
}

// FindLatestPaidByUser returns the user's most recently created paid
// subscription, the record that decides entitlement.
func (r *SubscriptionRepository) FindLatestPaidByUser(ctx context.Context, userID uuid.UUID) (*readmodel.SubscriptionRM, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE user_id = $1 AND status = 'paid'
		ORDER BY created_at DESC LIMIT 1`, userID)

	rm, err := scanSubscription(row)
	if err != nil {
		return nil, err
	}
	return rm, nil
}

func (r *SubscriptionRepository) ListAll(ctx context.Context) ([]*readmodel.SubscriptionRM, error) {
	rows, err := r.db.Query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrap("failed to list subscriptions", err)
	}
	defer rows.Close()

	var result []*readmodel.SubscriptionRM
	for rows.Next() {
		rm, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("failed to iterate subscriptions", err)
	}
	return result, nil
}

// CountActivePremiumUsers counts distinct users holding a live entitlement.
func (r *SubscriptionRepository) CountActivePremiumUsers(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `
		SELECT count(DISTINCT user_id) FROM subscriptions
		WHERE status = 'paid' AND end_date > $1`, now).Scan(&n)
	if err != nil {
		return 0, wrap("failed to count premium users", err)
	}
	return n, nil
}

func scanSubscription(row rowScanner) (*readmodel.SubscriptionRM, error) {
	var rm readmodel.SubscriptionRM
	err := row.Scan(&rm.ID, &rm.UserID, &rm.PlanType, &rm.SessionID, &rm.Status,
		&rm.StartDate, &rm.EndDate, &rm.AutoRenew, &rm.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("subscription not found", err, infra.KindNotFound)
		}
		return nil, wrap("failed to scan subscription", err)
	}
	return &rm, nil
}
