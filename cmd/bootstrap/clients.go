package bootstrap

import (
	"context"

	"nazca360/internal/infra/mailer"
	"nazca360/internal/infra/oauth"
	"nazca360/internal/infra/payment"
	"nazca360/internal/infra/storage"
	"nazca360/internal/pkg/config"

	"go.uber.org/fx"
)

// ClientsModule wires the external collaborators: checkout provider, SMTP,
// Google OAuth and the blob stores.
var ClientsModule = fx.Module("clients",
	fx.Provide(
		NewPaymentClient,
		NewMailer,
		NewGoogleClient,
		NewLocalStore,
		NewS3Store,
	),
)

func NewPaymentClient(cfg config.Config) *payment.Client {
	return payment.NewClient(cfg.Payment)
}

func NewMailer(cfg config.Config) *mailer.Mailer {
	return mailer.New(cfg.SMTP, cfg.Server.BaseURL)
}

func NewGoogleClient(cfg config.Config) *oauth.GoogleClient {
	return oauth.NewGoogleClient(cfg.OAuth)
}

func NewLocalStore(cfg config.Config) (*storage.LocalStore, error) {
	return storage.NewLocalStore(cfg.Upload.FinalDir)
}

// NewS3Store returns nil when no bucket is configured; uploads then stay on
// the local chunked path.
func NewS3Store(cfg config.Config) (*storage.S3Store, error) {
	if cfg.Storage.S3Bucket == "" {
		return nil, nil
	}
	return storage.NewS3Store(context.Background(), cfg.Storage)
}
