package api

import (
	"errors"
	"net/http"

	reqdto "nazca360/internal/handler/dto/request"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminUseCase usecase.AdminUseCase
}

func NewAdminHandler(adminUseCase usecase.AdminUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
	}
}

// @Summary List all users
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} readmodel.AuthorizedUserRM
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	list, err := h.adminUseCase.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary List all reservations
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} readmodel.ReservationRM
// @Router /admin/reservations [get]
func (h *AdminHandler) ListReservations(c *gin.Context) {
	list, err := h.adminUseCase.ListReservations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary List all subscriptions
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} readmodel.SubscriptionRM
// @Router /admin/subscriptions [get]
func (h *AdminHandler) ListSubscriptions(c *gin.Context) {
	list, err := h.adminUseCase.ListSubscriptions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Dashboard metrics
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} usecase.MetricsRM
// @Router /admin/metrics [get]
func (h *AdminHandler) Metrics(c *gin.Context) {
	metrics, err := h.adminUseCase.Metrics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// @Summary Create a video
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body reqdto.VideoRequest true "Video metadata"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /admin/videos [post]
func (h *AdminHandler) CreateVideo(c *gin.Context) {
	var req reqdto.VideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	v := req.ToDomain(uuid.New())
	if err := h.adminUseCase.CreateVideo(c.Request.Context(), v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": v.ID.String()})
}

// @Summary Update a video
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Param id path string true "Video ID"
// @Param request body reqdto.VideoRequest true "Video metadata"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /admin/videos/{id} [put]
func (h *AdminHandler) UpdateVideo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid video ID",
		})
		return
	}

	var req reqdto.VideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.adminUseCase.UpdateVideo(c.Request.Context(), req.ToDomain(id)); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Video not found",
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

// @Summary Delete a video
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /admin/videos/{id} [delete]
func (h *AdminHandler) DeleteVideo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid video ID",
		})
		return
	}

	if err := h.adminUseCase.DeleteVideo(c.Request.Context(), id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Video not found",
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
