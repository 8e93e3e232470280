package api

import (
	"errors"
	"net/http"

	reqdto "nazca360/internal/handler/dto/request"
	"nazca360/internal/handler/middleware"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase"

	"github.com/gin-gonic/gin"

	"nazca360/internal/domain/subscription"
)

type SubscriptionHandler struct {
	subscriptionUseCase usecase.SubscriptionUseCase
}

func NewSubscriptionHandler(subscriptionUseCase usecase.SubscriptionUseCase) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionUseCase: subscriptionUseCase,
	}
}

// @Summary Start a subscription checkout
// @Tags subscriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body reqdto.CreateSubscriptionCheckoutRequest true "Plan to buy"
// @Success 200 {object} usecase.SubscriptionCheckout
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /subscriptions/checkout [post]
func (h *SubscriptionHandler) CreateCheckout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req reqdto.CreateSubscriptionCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	checkout, err := h.subscriptionUseCase.CreateCheckout(c.Request.Context(), userID, req.PlanType)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrUnknownPlan):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown plan type",
			})
		case errors.Is(err, errs.ErrUpstreamUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Payment provider is unavailable",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.JSON(http.StatusOK, checkout)
}

// @Summary Subscription checkout status
// @Description Reconciles the payment and reports whether the plan is active
// @Tags subscriptions
// @Security BearerAuth
// @Produce json
// @Param session_id query string true "Checkout session ID"
// @Success 200 {object} usecase.SubscriptionStatusRM
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /subscriptions/status [get]
func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "session_id is required",
		})
		return
	}

	status, err := h.subscriptionUseCase.Status(c.Request.Context(), sessionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrPaymentSessionInvalid):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown checkout session",
			})
		case errors.Is(err, errs.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Not your checkout session",
			})
		case errors.Is(err, errs.ErrUpstreamUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Payment provider is unavailable",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.JSON(http.StatusOK, status)
}

// @Summary Current subscription
// @Description Latest paid subscription of the caller, with active flag
// @Tags subscriptions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /subscriptions/me [get]
func (h *SubscriptionHandler) Current(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	sub, active, err := h.subscriptionUseCase.Current(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subscription": sub,
		"active":       active,
	})
}
