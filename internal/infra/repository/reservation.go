package repository

import (
	"context"
	"time"

	"nazca360/internal/domain/reservation"
	"nazca360/internal/infra"
	"nazca360/internal/infra/db"
	"nazca360/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReservationRepository struct {
	db db.DBTX
}

func NewReservationRepository(db db.DBTX) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, user_id, user_name, user_email, reservation_date, time_slot, cabin_id, status, session_id, qr_code, created_at`

// Create inserts a pending reservation. The partial unique index on
// (reservation_date, time_slot, cabin_id) WHERE status <> 'cancelled'
// rejects a second holder of the triple; the violation surfaces as
// KindDuplicateKey for the usecase to translate into a slot conflict.
func (r *ReservationRepository) Create(ctx context.Context, tx db.DBTX, res *reservation.Reservation) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO reservations (id, user_id, user_name, user_email, reservation_date, time_slot, cabin_id, status, session_id, qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		res.ID(), res.UserID(), res.UserName(), res.UserEmail(),
		res.Date(), res.Slot(), res.Cabin(), res.Status().String(),
		res.SessionID(), res.QRCode(),
	)
	if err != nil {
		return wrap("failed to create reservation", err)
	}
	return nil
}

// OccupiedSlots is the availability resolver's single ledger read: every
// (slot, cabin) held by a non-cancelled reservation on the given date.
func (r *ReservationRepository) OccupiedSlots(ctx context.Context, date string) ([]readmodel.SlotOccupancy, error) {
	rows, err := r.db.Query(ctx, `
		SELECT time_slot, cabin_id FROM reservations
		WHERE reservation_date = $1 AND status <> 'cancelled'`, date)
	if err != nil {
		return nil, wrap("failed to query occupied slots", err)
	}
	defer rows.Close()

	var result []readmodel.SlotOccupancy
	for rows.Next() {
		var occ readmodel.SlotOccupancy
		if err := rows.Scan(&occ.Slot, &occ.Cabin); err != nil {
			return nil, wrap("failed to scan occupied slot", err)
		}
		result = append(result, occ)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("failed to iterate occupied slots", err)
	}
	return result, nil
}

func (r *ReservationRepository) FindBySession(ctx context.Context, sessionID string) (*readmodel.ReservationRM, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, wrap("failed to find reservation by session", err)
	}
	list, err := collectReservations(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, infra.WrapRepoErr("reservation not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return list[0], nil
}

// ConfirmBySession flips the pending reservation tied to a checkout session
// to confirmed. Conditional on current status, so replays are no-ops.
func (r *ReservationRepository) ConfirmBySession(ctx context.Context, tx db.DBTX, sessionID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE reservations SET status = 'confirmed'
		WHERE session_id = $1 AND status = 'pending'`, sessionID)
	if err != nil {
		return wrap("failed to confirm reservation", err)
	}
	return nil
}

// CancelBySession releases the slot held by a checkout session whose payment
// did not complete.
func (r *ReservationRepository) CancelBySession(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE reservations SET status = 'cancelled'
		WHERE session_id = $1 AND status = 'pending'`, sessionID)
	if err != nil {
		return wrap("failed to cancel reservation by session", err)
	}
	return nil
}

// Cancel releases the slot. Scoped to the owning user; returns false when no
// such reservation belongs to them.
func (r *ReservationRepository) Cancel(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE reservations SET status = 'cancelled'
		WHERE id = $1 AND user_id = $2 AND status <> 'cancelled'`, id, userID)
	if err != nil {
		return false, wrap("failed to cancel reservation", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*readmodel.ReservationRM, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, wrap("failed to list reservations", err)
	}
	return collectReservations(rows)
}

func (r *ReservationRepository) ListAll(ctx context.Context) ([]*readmodel.ReservationRM, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrap("failed to list reservations", err)
	}
	return collectReservations(rows)
}

func (r *ReservationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM reservations`).Scan(&n); err != nil {
		return 0, wrap("failed to count reservations", err)
	}
	return n, nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}

func collectReservations(rows pgxRows) ([]*readmodel.ReservationRM, error) {
	defer rows.Close()

	var result []*readmodel.ReservationRM
	for rows.Next() {
		var (
			rm        readmodel.ReservationRM
			createdAt time.Time
		)
		if err := rows.Scan(&rm.ID, &rm.UserID, &rm.UserName, &rm.UserEmail,
			&rm.Date, &rm.Slot, &rm.Cabin, &rm.Status, &rm.SessionID, &rm.QRCode, &createdAt); err != nil {
			return nil, wrap("failed to scan reservation", err)
		}
		rm.CreatedAt = createdAt
		result = append(result, &rm)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("failed to iterate reservations", err)
	}
	return result, nil
}
