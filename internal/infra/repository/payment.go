package repository

import (
	"context"
	"encoding/json"

	"nazca360/internal/domain/payment"
	"nazca360/internal/infra"
	"nazca360/internal/infra/db"
	"nazca360/internal/usecase/readmodel"

	"github.com/jackc/pgx/v5"
)

type PaymentRepository struct {
	db db.DBTX
}

func NewPaymentRepository(db db.DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a transaction, optionally inside the caller's tx.
func (r *PaymentRepository) Create(ctx context.Context, tx db.DBTX, t *payment.Transaction) error {
	if tx == nil {
		tx = r.db
	}
	meta, err := json.Marshal(t.Metadata)
	if err != nil {
		return infra.WrapRepoErr("failed to encode transaction metadata", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO payment_transactions (id, user_id, session_id, amount_cents, currency, purpose, metadata, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.UserID, t.SessionID, t.AmountCents, t.Currency, string(t.Purpose), meta, string(t.Status),
	)
	if err != nil {
		return wrap("failed to create payment transaction", err)
	}
	return nil
}

func (r *PaymentRepository) FindBySession(ctx context.Context, sessionID string) (*readmodel.PaymentTransactionRM, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, session_id, amount_cents, currency, purpose, metadata, status, created_at
		FROM payment_transactions WHERE session_id = $1`, sessionID)

	var (
		rm   readmodel.PaymentTransactionRM
		meta []byte
	)
	err := row.Scan(&rm.ID, &rm.UserID, &rm.SessionID, &rm.AmountCents, &rm.Currency, &rm.Purpose, &meta, &rm.Status, &rm.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("payment transaction not found", err, infra.KindNotFound)
		}
		return nil, wrap("failed to find payment transaction", err)
	}

	if err := json.Unmarshal(meta, &rm.Metadata); err != nil {
		return nil, infra.WrapRepoErr("failed to decode transaction metadata", err)
	}
	return &rm, nil
}

// MarkPaid transitions a transaction to paid. The WHERE guard makes the
// transition single-shot: the poll path and the webhook path may both call
// this, but only whichever lands first observes transitioned=true and runs
// the domain side effect.
func (r *PaymentRepository) MarkPaid(ctx context.Context, tx db.DBTX, sessionID string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE payment_transactions SET status = 'paid'
		WHERE session_id = $1 AND status <> 'paid'`, sessionID)
	if err != nil {
		return false, wrap("failed to mark transaction paid", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE payment_transactions SET status = 'failed'
		WHERE session_id = $1 AND status = 'initiated'`, sessionID)
	if err != nil {
		return wrap("failed to mark transaction failed", err)
	}
	return nil
}

// PaidRevenueCents sums completed transactions for the admin metrics view.
func (r *PaymentRepository) PaidRevenueCents(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(sum(amount_cents), 0) FROM payment_transactions WHERE status = 'paid'`).Scan(&total)
	if err != nil {
		return 0, wrap("failed to sum revenue", err)
	}
	return total, nil
}
