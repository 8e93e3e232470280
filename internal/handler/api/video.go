package api

import (
	"errors"
	"net/http"

	"nazca360/internal/handler/middleware"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VideoHandler struct {
	videoUseCase usecase.VideoUseCase
}

func NewVideoHandler(videoUseCase usecase.VideoUseCase) *VideoHandler {
	return &VideoHandler{
		videoUseCase: videoUseCase,
	}
}

// @Summary List videos
// @Description Catalog of 360 videos, optionally filtered by category. Premium titles are hidden without an active subscription.
// @Tags videos
// @Security BearerAuth
// @Produce json
// @Param category query string false "Category (nasca, palpa, museum)"
// @Success 200 {array} readmodel.VideoRM
// @Router /videos [get]
func (h *VideoHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}
	role, _ := middleware.GetUserRole(c)

	list, err := h.videoUseCase.List(c.Request.Context(), userID, role, c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get a video
// @Tags videos
// @Security BearerAuth
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} readmodel.VideoRM
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /videos/{id} [get]
func (h *VideoHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid video ID",
		})
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}
	role, _ := middleware.GetUserRole(c)

	video, err := h.videoUseCase.Get(c.Request.Context(), id, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Subscription required",
			})
		case errors.Is(err, errs.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Video not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.JSON(http.StatusOK, video)
}
