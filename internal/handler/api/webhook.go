package api

import (
	"errors"
	"io"
	"net/http"

	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase"

	"github.com/gin-gonic/gin"
)

// One webhook request body is at most a few KB; anything larger is noise.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	paymentUseCase usecase.PaymentUseCase
}

func NewWebhookHandler(paymentUseCase usecase.PaymentUseCase) *WebhookHandler {
	return &WebhookHandler{
		paymentUseCase: paymentUseCase,
	}
}

// @Summary Checkout provider webhook
// @Description Receives signed checkout events from the payment provider
// @Tags payments
// @Accept json
// @Success 200 "Acknowledged"
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /payments/webhook [post]
func (h *WebhookHandler) HandleCheckoutEvent(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unreadable request body",
		})
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	if signature == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Missing signature",
		})
		return
	}

	if err := h.paymentUseCase.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		switch {
		case errors.Is(err, errs.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid signature",
			})
		case errors.Is(err, errs.ErrPaymentSessionInvalid):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown checkout session",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.Status(http.StatusOK)
}
