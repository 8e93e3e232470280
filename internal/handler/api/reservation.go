package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "nazca360/internal/handler/dto/request"
	"nazca360/internal/handler/middleware"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	reservationUseCase usecase.ReservationUseCase
}

func NewReservationHandler(reservationUseCase usecase.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{
		reservationUseCase: reservationUseCase,
	}
}

// @Summary Slot availability for a day
// @Description Free cabins for every slot of the requested date
// @Tags reservations
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {array} readmodel.SlotAvailabilityRM
// @Failure 400 {object} map[string]string
// @Router /reservations/availability [get]
func (h *ReservationHandler) Availability(c *gin.Context) {
	date := c.Query("date")

	slots, err := h.reservationUseCase.Availability(c.Request.Context(), date)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid date, expected YYYY-MM-DD",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, slots)
}

// @Summary Free slots of one cabin
// @Tags reservations
// @Produce json
// @Param cabin path int true "Cabin ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {array} string
// @Failure 400 {object} map[string]string
// @Router /reservations/availability/{cabin} [get]
func (h *ReservationHandler) AvailabilityForCabin(c *gin.Context) {
	cabin, err := strconv.Atoi(c.Param("cabin"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cabin ID",
		})
		return
	}

	slots, err := h.reservationUseCase.AvailabilityForCabin(c.Request.Context(), c.Query("date"), cabin)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidCabin):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown cabin",
			})
		case errors.Is(err, errs.ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid date, expected YYYY-MM-DD",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.JSON(http.StatusOK, slots)
}

// @Summary Start a reservation checkout
// @Description Holds the slot and returns the checkout URL for payment
// @Tags reservations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body reqdto.CreateReservationCheckoutRequest true "Slot to book"
// @Success 200 {object} usecase.ReservationCheckout
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /reservations/checkout [post]
func (h *ReservationHandler) CreateCheckout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req reqdto.CreateReservationCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	checkout, err := h.reservationUseCase.CreateCheckout(c.Request.Context(), userID, req.Date, req.Slot, req.Cabin)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrSlotConflict):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Slot already booked",
			})
		case errors.Is(err, errs.ErrInvalidDate), errors.Is(err, errs.ErrInvalidSlot), errors.Is(err, errs.ErrInvalidCabin):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid reservation parameters",
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

// @Summary Reservation checkout status
// @Description Reconciles the payment and returns the reservation
// @Tags reservations
// @Security BearerAuth
// @Produce json
// @Param session_id query string true "Checkout session ID"
// @Success 200 {object} readmodel.ReservationRM
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /reservations/status [get]
func (h *ReservationHandler) Status(c *gin.Context) {
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

	res, err := h.reservationUseCase.Status(c.Request.Context(), sessionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrPaymentSessionInvalid):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown checkout session",
			})
		case errors.Is(err, errs.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Not your reservation",
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
	c.JSON(http.StatusOK, res)
}

// @Summary List own reservations
// @Tags reservations
// @Security BearerAuth
// @Produce json
// @Success 200 {array} readmodel.ReservationRM
// @Router /reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	list, err := h.reservationUseCase.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Cancel a reservation
// @Tags reservations
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID",
		})
		return
	}

	if err := h.reservationUseCase.Cancel(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.Status(http.StatusNoContent)
}
