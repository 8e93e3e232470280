package components

import (
	"nazca360/internal/handler"
	"nazca360/internal/handler/api"
	"nazca360/internal/handler/middleware"
	"nazca360/internal/pkg/config"
	"nazca360/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewReservationHandler,
		api.NewSubscriptionHandler,
		api.NewVideoHandler,
		NewStreamHandler,
		api.NewUploadHandler,
		api.NewWebhookHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(NewRouter),
)

func NewStreamHandler(videoUseCase usecase.VideoUseCase, cfg config.Config) *api.StreamHandler {
	return api.NewStreamHandler(videoUseCase, cfg.Stream)
}

func NewHandlers(
	auth *api.AuthHandler,
	reservation *api.ReservationHandler,
	subscription *api.SubscriptionHandler,
	video *api.VideoHandler,
	stream *api.StreamHandler,
	upload *api.UploadHandler,
	webhook *api.WebhookHandler,
	admin *api.AdminHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:         auth,
		Reservation:  reservation,
		Subscription: subscription,
		Video:        video,
		Stream:       stream,
		Upload:       upload,
		Webhook:      webhook,
		Admin:        admin,
	}
}

func NewRouter(engine *gin.Engine, cfg config.Config, h handler.Handlers, authMiddleware *middleware.AuthMiddleware) {
	handler.NewRouter(engine, cfg, h, authMiddleware)
}
