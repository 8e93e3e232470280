package components

import (
	"context"
	"log/slog"
	"time"

	"nazca360/internal/domain/reservation"
	"nazca360/internal/infra/db"
	"nazca360/internal/infra/storage"
	"nazca360/internal/pkg/clock"
	"nazca360/internal/pkg/config"
	"nazca360/internal/usecase"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		NewCatalog,
		usecase.NewTokenValidator,
		usecase.NewAuthUseCase,
		usecase.NewPaymentUseCase,
		NewReservationUseCase,
		NewSubscriptionUseCase,
		NewUploadUseCase,
		NewVideoUseCase,
		usecase.NewAdminUseCase,
	),
	fx.Invoke(startUploadJanitor),
)

func NewCatalog(cfg config.Config) (reservation.Catalog, error) {
	return reservation.NewCatalog(
		cfg.Booking.OpenHour,
		cfg.Booking.CloseHour,
		cfg.Booking.SlotMinutes,
		cfg.Booking.CabinCount,
	)
}

func NewReservationUseCase(
	reservationRepo usecase.ReservationRepository,
	paymentRepo usecase.PaymentRepository,
	userRepo usecase.UserRepository,
	paymentUC usecase.PaymentUseCase,
	provider usecase.CheckoutProvider,
	catalog reservation.Catalog,
	cfg config.Config,
	beginner db.Beginner,
) usecase.ReservationUseCase {
	return usecase.NewReservationUseCase(
		reservationRepo, paymentRepo, userRepo, paymentUC, provider,
		catalog, cfg.Booking, cfg.Server.BaseURL, beginner,
	)
}

func NewSubscriptionUseCase(
	subscriptionRepo usecase.SubscriptionRepository,
	paymentRepo usecase.PaymentRepository,
	userRepo usecase.UserRepository,
	paymentUC usecase.PaymentUseCase,
	provider usecase.CheckoutProvider,
	cfg config.Config,
	clk clock.Clock,
) usecase.SubscriptionUseCase {
	return usecase.NewSubscriptionUseCase(
		subscriptionRepo, paymentRepo, userRepo, paymentUC, provider,
		cfg.Server.BaseURL, clk,
	)
}

func NewUploadUseCase(local *storage.LocalStore, s3 *storage.S3Store, cfg config.Config, clk clock.Clock) (usecase.UploadUseCase, error) {
	return usecase.NewUploadUseCase(local, s3, cfg.Upload, clk)
}

func NewVideoUseCase(videoRepo usecase.VideoRepository, local *storage.LocalStore, subs usecase.SubscriptionUseCase) usecase.VideoUseCase {
	return usecase.NewVideoUseCase(videoRepo, local, subs)
}

// startUploadJanitor evicts stale upload sessions on a fixed cadence.
func startUploadJanitor(lc fx.Lifecycle, uploads usecase.UploadUseCase, cfg config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(cfg.Upload.SessionTTL / 4)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if n := uploads.EvictExpired(ctx); n > 0 {
							slog.Info("evicted expired upload sessions", "count", n)
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}
