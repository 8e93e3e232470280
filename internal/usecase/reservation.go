package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"nazca360/internal/domain/payment"
	"nazca360/internal/domain/reservation"
	"nazca360/internal/infra"
	"nazca360/internal/infra/db"
	infrapayment "nazca360/internal/infra/payment"
	"nazca360/internal/pkg/config"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase/readmodel"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx db.DBTX, res *reservation.Reservation) error
	OccupiedSlots(ctx context.Context, date string) ([]readmodel.SlotOccupancy, error)
	FindBySession(ctx context.Context, sessionID string) (*readmodel.ReservationRM, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*readmodel.ReservationRM, error)
}

type ReservationCheckout struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type ReservationUseCase interface {
	Availability(ctx context.Context, date string) ([]readmodel.SlotAvailabilityRM, error)
	AvailabilityForCabin(ctx context.Context, date string, cabin int) ([]string, error)
	CreateCheckout(ctx context.Context, userID uuid.UUID, date, slot string, cabin int) (*ReservationCheckout, error)
	Status(ctx context.Context, sessionID string, userID uuid.UUID) (*readmodel.ReservationRM, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*readmodel.ReservationRM, error)
}

type reservationUseCaseImpl struct {
	reservationRepo ReservationRepository
	paymentRepo     PaymentRepository
	userRepo        UserRepository
	paymentUC       PaymentUseCase
	provider        CheckoutProvider
	catalog         reservation.Catalog
	booking         config.BookingConfig
	baseURL         string
	beginner        db.Beginner
}

func NewReservationUseCase(
	reservationRepo ReservationRepository,
	paymentRepo PaymentRepository,
	userRepo UserRepository,
	paymentUC PaymentUseCase,
	provider CheckoutProvider,
	catalog reservation.Catalog,
	booking config.BookingConfig,
	baseURL string,
	beginner db.Beginner,
) ReservationUseCase {
	return &reservationUseCaseImpl{
		reservationRepo: reservationRepo,
		paymentRepo:     paymentRepo,
		userRepo:        userRepo,
		paymentUC:       paymentUC,
		provider:        provider,
		catalog:         catalog,
		booking:         booking,
		baseURL:         baseURL,
		beginner:        beginner,
	}
}

// Availability partitions the day's slot/cabin grid against a single
// occupancy query. Pending and confirmed reservations both hold their slot.
func (r *reservationUseCaseImpl) Availability(ctx context.Context, date string) ([]readmodel.SlotAvailabilityRM, error) {
	normalized, err := reservation.ParseDate(date)
	if err != nil {
		return nil, errs.ErrInvalidDate
	}

	occupied, err := r.reservationRepo.OccupiedSlots(ctx, normalized)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	taken := make(map[string]map[int]bool, len(occupied))
	for _, o := range occupied {
		if taken[o.Slot] == nil {
			taken[o.Slot] = make(map[int]bool)
		}
		taken[o.Slot][o.Cabin] = true
	}

	slots := r.catalog.Slots()
	result := make([]readmodel.SlotAvailabilityRM, 0, len(slots))
	for _, slot := range slots {
		free := make([]int, 0, r.catalog.CabinCount())
		for _, cabin := range r.catalog.Cabins() {
			if !taken[slot][cabin] {
				free = append(free, cabin)
			}
		}
		result = append(result, readmodel.SlotAvailabilityRM{
			Slot:       slot,
			FreeCount:  len(free),
			FreeCabins: free,
		})
	}
	return result, nil
}

// AvailabilityForCabin lists the free slot labels of one cabin.
func (r *reservationUseCaseImpl) AvailabilityForCabin(ctx context.Context, date string, cabin int) ([]string, error) {
	if !r.catalog.ValidCabin(cabin) {
		return nil, errs.ErrInvalidCabin
	}
	normalized, err := reservation.ParseDate(date)
	if err != nil {
		return nil, errs.ErrInvalidDate
	}

	occupied, err := r.reservationRepo.OccupiedSlots(ctx, normalized)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	taken := make(map[string]bool)
	for _, o := range occupied {
		if o.Cabin == cabin {
			taken[o.Slot] = true
		}
	}

	free := make([]string, 0, len(r.catalog.Slots()))
	for _, slot := range r.catalog.Slots() {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	return free, nil
}

// CreateCheckout opens a checkout session for the slot and records a pending
// reservation holding it. The unique index on active (date, slot, cabin)
// rows closes the check-then-insert race: the second writer gets a conflict.
func (r *reservationUseCaseImpl) CreateCheckout(ctx context.Context, userID uuid.UUID, date, slot string, cabin int) (*ReservationCheckout, error) {
	u, err := r.userRepo.FindByID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrUnauthorized
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	session, err := r.provider.CreateCheckoutSession(ctx, infrapayment.CheckoutRequest{
		AmountCents: r.booking.PriceCents,
		Currency:    r.booking.CurrencyCode,
		SuccessURL:  r.baseURL + "/booking/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   r.baseURL + "/booking",
		Metadata: map[string]string{
			payment.MetaUserEmail: u.Email().Value(),
			payment.MetaDate:      date,
			payment.MetaSlot:      slot,
			payment.MetaCabin:     fmt.Sprintf("%d", cabin),
		},
	})
	if err != nil {
		if infra.IsKind(err, infra.KindUpstream) {
			return nil, errs.ErrUpstreamUnavailable
		}
		return nil, err
	}

	res, err := reservation.New(r.catalog, userID, u.Name(), u.Email().Value(), date, slot, cabin, session.SessionID)
	if err != nil {
		return nil, err
	}

	txn := payment.NewTransaction(userID, session.SessionID, r.booking.PriceCents, r.booking.CurrencyCode,
		payment.PurposeReservation, map[string]string{
			payment.MetaUserEmail: u.Email().Value(),
			payment.MetaDate:      res.Date(),
			payment.MetaSlot:      res.Slot(),
			payment.MetaCabin:     fmt.Sprintf("%d", res.Cabin()),
		})

	if err := r.persistCheckout(ctx, res, txn); err != nil {
		return nil, err
	}

	return &ReservationCheckout{
		SessionID:   session.SessionID,
		CheckoutURL: session.URL,
	}, nil
}

func (r *reservationUseCaseImpl) persistCheckout(ctx context.Context, res *reservation.Reservation, txn *payment.Transaction) error {
	tx, err := r.beginner.Begin(ctx)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := r.reservationRepo.Create(ctx, tx, res); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return errs.ErrSlotConflict
		}
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := r.paymentRepo.Create(ctx, tx, txn); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := tx.Commit(ctx); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

// Status reconciles the checkout session and returns the reservation as it
// stands afterwards. Only the booking owner may poll.
func (r *reservationUseCaseImpl) Status(ctx context.Context, sessionID string, userID uuid.UUID) (*readmodel.ReservationRM, error) {
	if _, err := r.paymentUC.PollAndReconcile(ctx, sessionID); err != nil {
		return nil, err
	}

	res, err := r.reservationRepo.FindBySession(ctx, sessionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrPaymentSessionInvalid
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if res.UserID != userID {
		return nil, errs.ErrForbidden
	}
	return res, nil
}

func (r *reservationUseCaseImpl) Cancel(ctx context.Context, id, userID uuid.UUID) error {
	cancelled, err := r.reservationRepo.Cancel(ctx, id, userID)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !cancelled {
		return errs.ErrNotFound
	}
	return nil
}

func (r *reservationUseCaseImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]*readmodel.ReservationRM, error) {
	list, err := r.reservationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return list, nil
}
