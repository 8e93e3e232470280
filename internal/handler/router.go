package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"nazca360/internal/handler/api"
	"nazca360/internal/handler/middleware"
	"nazca360/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

type Handlers struct {
	Auth         *api.AuthHandler
	Reservation  *api.ReservationHandler
	Subscription *api.SubscriptionHandler
	Video        *api.VideoHandler
	Stream       *api.StreamHandler
	Upload       *api.UploadHandler
	Webhook      *api.WebhookHandler
	Admin        *api.AdminHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/register", Handler: h.Auth.Register},
				{Method: http.MethodPost, Path: "/verify-email", Handler: h.Auth.VerifyEmail},
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
				{Method: http.MethodGet, Path: "/google", Handler: h.Auth.GoogleAuthURL},
				{Method: http.MethodPost, Path: "/google/callback", Handler: h.Auth.GoogleCallback},
				{Method: http.MethodPost, Path: "/forgot-password", Handler: h.Auth.ForgotPassword},
				{Method: http.MethodPost, Path: "/reset-password", Handler: h.Auth.ResetPassword},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		reservations := apiGroup.Group("/reservations")
		{
			// Availability is public so the booking page works before login.
			addRoutes(reservations, []route{
				{Method: http.MethodGet, Path: "/availability", Handler: h.Reservation.Availability},
				{Method: http.MethodGet, Path: "/availability/:cabin", Handler: h.Reservation.AvailabilityForCabin},
			})

			authed := reservations.Group("")
			authed.Use(authMiddleware.RequireAuth())
			addRoutes(authed, []route{
				{Method: http.MethodPost, Path: "/checkout", Handler: h.Reservation.CreateCheckout},
				{Method: http.MethodGet, Path: "/status", Handler: h.Reservation.Status},
				{Method: http.MethodGet, Path: "", Handler: h.Reservation.List},
				{Method: http.MethodDelete, Path: "/:id", Handler: h.Reservation.Cancel},
			})
		}

		subscriptions := apiGroup.Group("/subscriptions")
		subscriptions.Use(authMiddleware.RequireAuth())
		{
			addRoutes(subscriptions, []route{
				{Method: http.MethodPost, Path: "/checkout", Handler: h.Subscription.CreateCheckout},
				{Method: http.MethodGet, Path: "/status", Handler: h.Subscription.Status},
				{Method: http.MethodGet, Path: "/me", Handler: h.Subscription.Current},
			})
		}

		videos := apiGroup.Group("/videos")
		videos.Use(authMiddleware.RequireAuth())
		{
			addRoutes(videos, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Video.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Video.Get},
				{Method: http.MethodGet, Path: "/:id/stream", Handler: h.Stream.Stream},
			})
		}

		// The provider authenticates with its signature, not a session.
		apiGroup.POST("/payments/webhook", h.Webhook.HandleCheckoutEvent)

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/users", Handler: h.Admin.ListUsers},
				{Method: http.MethodGet, Path: "/reservations", Handler: h.Admin.ListReservations},
				{Method: http.MethodGet, Path: "/subscriptions", Handler: h.Admin.ListSubscriptions},
				{Method: http.MethodGet, Path: "/metrics", Handler: h.Admin.Metrics},
				{Method: http.MethodPost, Path: "/videos", Handler: h.Admin.CreateVideo},
				{Method: http.MethodPut, Path: "/videos/:id", Handler: h.Admin.UpdateVideo},
				{Method: http.MethodDelete, Path: "/videos/:id", Handler: h.Admin.DeleteVideo},
				{Method: http.MethodPost, Path: "/uploads", Handler: h.Upload.Init},
				{Method: http.MethodPut, Path: "/uploads/:id/chunks/:index", Handler: h.Upload.ReceiveChunk},
				{Method: http.MethodPost, Path: "/uploads/:id/complete", Handler: h.Upload.Complete},
				{Method: http.MethodGet, Path: "/uploads/:id", Handler: h.Upload.Status},
				{Method: http.MethodDelete, Path: "/uploads/:id", Handler: h.Upload.Abort},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, r.Handler)
		case http.MethodPost:
			g.POST(r.Path, r.Handler)
		case http.MethodPut:
			g.PUT(r.Path, r.Handler)
		case http.MethodPatch:
			g.PATCH(r.Path, r.Handler)
		case http.MethodDelete:
			g.DELETE(r.Path, r.Handler)
		default:
			g.Any(r.Path, r.Handler)
		}
	}
}
