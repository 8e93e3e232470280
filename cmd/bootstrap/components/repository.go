package components

import (
	"nazca360/internal/infra/mailer"
	"nazca360/internal/infra/oauth"
	"nazca360/internal/infra/payment"
	"nazca360/internal/infra/repository"
	"nazca360/internal/infra/sessionstore"
	"nazca360/internal/usecase"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repository.NewUserRepository,
			fx.As(new(usecase.UserRepository)),
			fx.As(new(usecase.AdminUserRepository)),
		),
		fx.Annotate(
			repository.NewReservationRepository,
			fx.As(new(usecase.ReservationRepository)),
			fx.As(new(usecase.ReservationConfirmer)),
			fx.As(new(usecase.AdminReservationRepository)),
		),
		fx.Annotate(
			repository.NewSubscriptionRepository,
			fx.As(new(usecase.SubscriptionRepository)),
			fx.As(new(usecase.SubscriptionActivator)),
			fx.As(new(usecase.AdminSubscriptionRepository)),
		),
		fx.Annotate(
			repository.NewPaymentRepository,
			fx.As(new(usecase.PaymentRepository)),
			fx.As(new(usecase.AdminPaymentRepository)),
		),
		fx.Annotate(
			repository.NewVideoRepository,
			fx.As(new(usecase.VideoRepository)),
			fx.As(new(usecase.AdminVideoRepository)),
		),
		fx.Annotate(
			func(s *sessionstore.Store) *sessionstore.Store { return s },
			fx.As(new(usecase.SessionStore)),
		),
		fx.Annotate(
			func(m *mailer.Mailer) *mailer.Mailer { return m },
			fx.As(new(usecase.Mailer)),
		),
		fx.Annotate(
			func(g *oauth.GoogleClient) *oauth.GoogleClient { return g },
			fx.As(new(usecase.GoogleProvider)),
		),
		fx.Annotate(
			func(c *payment.Client) *payment.Client { return c },
			fx.As(new(usecase.CheckoutProvider)),
		),
	),
)
