//go:build unit

package usecase_test

import (
	"context"
	"sync"
	"time"

	"nazca360/internal/domain/payment"
	"nazca360/internal/domain/reservation"
	"nazca360/internal/infra"
	"nazca360/internal/infra/db"
	infrapayment "nazca360/internal/infra/payment"
	"nazca360/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx satisfies db.Tx without a database. The query methods are never
// reached because the fake repositories keep their state in memory.
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return nil
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeBeginner struct {
	mu  sync.Mutex
	txs []*fakeTx
}

func (b *fakeBeginner) Begin(_ context.Context) (db.Tx, error) {
	tx := &fakeTx{}
	b.mu.Lock()
	b.txs = append(b.txs, tx)
	b.mu.Unlock()
	return tx, nil
}

func (b *fakeBeginner) committedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, tx := range b.txs {
		if tx.committed {
			n++
		}
	}
	return n
}

type fakePaymentRepo struct {
	mu   sync.Mutex
	byID map[string]*readmodel.PaymentTransactionRM
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{byID: make(map[string]*readmodel.PaymentTransactionRM)}
}

func (r *fakePaymentRepo) Create(_ context.Context, _ db.DBTX, t *payment.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[t.SessionID] = &readmodel.PaymentTransactionRM{
		ID:          t.ID,
		UserID:      t.UserID,
		SessionID:   t.SessionID,
		AmountCents: t.AmountCents,
		Currency:    t.Currency,
		Purpose:     string(t.Purpose),
		Metadata:    t.Metadata,
		Status:      string(t.Status),
		CreatedAt:   time.Now(),
	}
	return nil
}

func (r *fakePaymentRepo) FindBySession(_ context.Context, sessionID string) (*readmodel.PaymentTransactionRM, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[sessionID]
	if !ok {
		return nil, infra.WrapRepoErr("payment transaction not found", nil, infra.KindNotFound)
	}
	cp := *t
	return &cp, nil
}

func (r *fakePaymentRepo) MarkPaid(_ context.Context, _ db.DBTX, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[sessionID]
	if !ok || t.Status != string(payment.StatusInitiated) {
		return false, nil
	}
	t.Status = string(payment.StatusPaid)
	return true, nil
}

func (r *fakePaymentRepo) MarkFailed(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byID[sessionID]; ok {
		t.Status = string(payment.StatusFailed)
	}
	return nil
}

func (r *fakePaymentRepo) seed(t *readmodel.PaymentTransactionRM) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[t.SessionID] = t
}

type fakeProvider struct {
	mu          sync.Mutex
	status      map[string]string
	statusCalls int
	sessions    []infrapayment.CheckoutRequest
	createErr   error
	webhookErr  error
	event       *infrapayment.WebhookEvent
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{status: make(map[string]string)}
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, req infrapayment.CheckoutRequest) (*infrapayment.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.sessions = append(p.sessions, req)
	id := uuid.NewString()
	return &infrapayment.CheckoutSession{SessionID: "cs_" + id, URL: "https://checkout.example.com/" + id}, nil
}

func (p *fakeProvider) GetCheckoutStatus(_ context.Context, sessionID string) (*infrapayment.CheckoutStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusCalls++
	st, ok := p.status[sessionID]
	if !ok {
		return nil, infrapayment.ErrSessionInvalid
	}
	return &infrapayment.CheckoutStatus{SessionID: sessionID, PaymentStatus: st}, nil
}

func (p *fakeProvider) VerifyWebhook(_ []byte, _ string) (*infrapayment.WebhookEvent, error) {
	if p.webhookErr != nil {
		return nil, p.webhookErr
	}
	return p.event, nil
}

type fakeConfirmer struct {
	mu        sync.Mutex
	confirmed []string
	cancelled []string
}

func (c *fakeConfirmer) ConfirmBySession(_ context.Context, _ db.DBTX, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmed = append(c.confirmed, sessionID)
	return nil
}

func (c *fakeConfirmer) CancelBySession(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled = append(c.cancelled, sessionID)
	return nil
}

type activation struct {
	sessionID  string
	start, end time.Time
}

type fakeActivator struct {
	mu          sync.Mutex
	activations []activation
}

func (a *fakeActivator) ActivateBySession(_ context.Context, _ db.DBTX, sessionID string, start, end time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.activations = append(a.activations, activation{sessionID: sessionID, start: start, end: end})
	return nil
}

type fakeReservationRepo struct {
	mu        sync.Mutex
	occupied  []readmodel.SlotOccupancy
	bySession map[string]*readmodel.ReservationRM
	createErr error
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{bySession: make(map[string]*readmodel.ReservationRM)}
}

func (r *fakeReservationRepo) Create(_ context.Context, _ db.DBTX, res *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, o := range r.occupied {
		if o.Slot == res.Slot() && o.Cabin == res.Cabin() {
			return infra.WrapRepoErr("slot already held", nil, infra.KindDuplicateKey)
		}
	}
	r.occupied = append(r.occupied, readmodel.SlotOccupancy{Slot: res.Slot(), Cabin: res.Cabin()})
	r.bySession[res.SessionID()] = &readmodel.ReservationRM{
		ID:        res.ID(),
		UserID:    res.UserID(),
		UserName:  res.UserName(),
		UserEmail: res.UserEmail(),
		Date:      res.Date(),
		Slot:      res.Slot(),
		Cabin:     res.Cabin(),
		Status:    res.Status().String(),
		SessionID: res.SessionID(),
		QRCode:    res.QRCode(),
	}
	return nil
}

func (r *fakeReservationRepo) OccupiedSlots(_ context.Context, _ string) ([]readmodel.SlotOccupancy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]readmodel.SlotOccupancy(nil), r.occupied...), nil
}

func (r *fakeReservationRepo) FindBySession(_ context.Context, sessionID string) (*readmodel.ReservationRM, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.bySession[sessionID]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	cp := *res
	return &cp, nil
}

func (r *fakeReservationRepo) Cancel(_ context.Context, id, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.bySession {
		if res.ID == id && res.UserID == userID && res.Status != reservation.StatusCancelled.String() {
			res.Status = reservation.StatusCancelled.String()
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReservationRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*readmodel.ReservationRM, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*readmodel.ReservationRM
	for _, res := range r.bySession {
		if res.UserID == userID {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}
