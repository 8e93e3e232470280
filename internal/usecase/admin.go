package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nazca360/internal/domain/video"
	"nazca360/internal/pkg/clock"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase/readmodel"
)

type AdminUserRepository interface {
	ListAll(ctx context.Context) ([]*readmodel.AuthorizedUserRM, error)
	Count(ctx context.Context) (int64, error)
}

type AdminReservationRepository interface {
	ListAll(ctx context.Context) ([]*readmodel.ReservationRM, error)
	Count(ctx context.Context) (int64, error)
}

type AdminSubscriptionRepository interface {
	ListAll(ctx context.Context) ([]*readmodel.SubscriptionRM, error)
	CountActivePremiumUsers(ctx context.Context, now time.Time) (int64, error)
}

type AdminPaymentRepository interface {
	PaidRevenueCents(ctx context.Context) (int64, error)
}

type AdminVideoRepository interface {
	Create(ctx context.Context, v *video.Video) error
	Update(ctx context.Context, v *video.Video) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// MetricsRM is the admin dashboard headline view.
type MetricsRM struct {
	TotalUsers        int64 `json:"total_users"`
	PremiumUsers      int64 `json:"premium_users"`
	TotalReservations int64 `json:"total_reservations"`
	TotalVideos       int64 `json:"total_videos"`
	TotalRevenueCents int64 `json:"total_revenue_cents"`
}

type AdminUseCase interface {
	ListUsers(ctx context.Context) ([]*readmodel.AuthorizedUserRM, error)
	ListReservations(ctx context.Context) ([]*readmodel.ReservationRM, error)
	ListSubscriptions(ctx context.Context) ([]*readmodel.SubscriptionRM, error)
	Metrics(ctx context.Context) (*MetricsRM, error)
	CreateVideo(ctx context.Context, v *video.Video) error
	UpdateVideo(ctx context.Context, v *video.Video) error
	DeleteVideo(ctx context.Context, id uuid.UUID) error
}

type adminUseCaseImpl struct {
	users         AdminUserRepository
	reservations  AdminReservationRepository
	subscriptions AdminSubscriptionRepository
	payments      AdminPaymentRepository
	videos        AdminVideoRepository
	clock         clock.Clock
}

func NewAdminUseCase(
	users AdminUserRepository,
	reservations AdminReservationRepository,
	subscriptions AdminSubscriptionRepository,
	payments AdminPaymentRepository,
	videos AdminVideoRepository,
	clk clock.Clock,
) AdminUseCase {
	return &adminUseCaseImpl{
		users:         users,
		reservations:  reservations,
		subscriptions: subscriptions,
		payments:      payments,
		videos:        videos,
		clock:         clk,
	}
}

func (a *adminUseCaseImpl) ListUsers(ctx context.Context) ([]*readmodel.AuthorizedUserRM, error) {
	list, err := a.users.ListAll(ctx)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return list, nil
}

func (a *adminUseCaseImpl) ListReservations(ctx context.Context) ([]*readmodel.ReservationRM, error) {
	list, err := a.reservations.ListAll(ctx)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return list, nil
}

func (a *adminUseCaseImpl) ListSubscriptions(ctx context.Context) ([]*readmodel.SubscriptionRM, error) {
	list, err := a.subscriptions.ListAll(ctx)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return list, nil
}

func (a *adminUseCaseImpl) Metrics(ctx context.Context) (*MetricsRM, error) {
	m := &MetricsRM{}
	var err error

	if m.TotalUsers, err = a.users.Count(ctx); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if m.PremiumUsers, err = a.subscriptions.CountActivePremiumUsers(ctx, a.clock.Now()); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if m.TotalReservations, err = a.reservations.Count(ctx); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if m.TotalVideos, err = a.videos.Count(ctx); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if m.TotalRevenueCents, err = a.payments.PaidRevenueCents(ctx); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return m, nil
}

func (a *adminUseCaseImpl) CreateVideo(ctx context.Context, v *video.Video) error {
	if err := a.videos.Create(ctx, v); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

func (a *adminUseCaseImpl) UpdateVideo(ctx context.Context, v *video.Video) error {
	updated, err := a.videos.Update(ctx, v)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !updated {
		return errs.ErrNotFound
	}
	return nil
}

func (a *adminUseCaseImpl) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	deleted, err := a.videos.Delete(ctx, id)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !deleted {
		return errs.ErrNotFound
	}
	return nil
}
