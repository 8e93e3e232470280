package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "nazca360/internal/handler/dto/request"
	"nazca360/internal/handler/middleware"
	"nazca360/internal/infra/storage"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UploadHandler struct {
	uploadUseCase usecase.UploadUseCase
}

func NewUploadHandler(uploadUseCase usecase.UploadUseCase) *UploadHandler {
	return &UploadHandler{
		uploadUseCase: uploadUseCase,
	}
}

// uploader resolves the caller; upload sessions are private to whoever
// opened them, even among admins.
func uploader(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return uuid.Nil, false
	}
	return userID, true
}

// @Summary Open an upload session
// @Description Registers a chunked upload; returns presigned part URLs when S3 is configured
// @Tags uploads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body reqdto.InitUploadRequest true "Upload parameters"
// @Success 201 {object} usecase.UploadInitResult
// @Failure 400 {object} map[string]string
// @Router /admin/uploads [post]
func (h *UploadHandler) Init(c *gin.Context) {
	userID, ok := uploader(c)
	if !ok {
		return
	}
	var req reqdto.InitUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.uploadUseCase.Init(c.Request.Context(), userID, req.Filename, req.TotalChunks)
	if err != nil {
		if errors.Is(err, errs.ErrUpstreamUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Storage backend is unavailable",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid upload parameters",
		})
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary Upload one chunk
// @Description Accepts the chunk body as multipart form field "chunk"
// @Tags uploads
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Upload session ID"
// @Param index path int true "Zero-based chunk index"
// @Param chunk formData file true "Chunk data"
// @Success 200 {object} usecase.UploadStatusRM
// @Failure 404 {object} map[string]string
// @Router /admin/uploads/{id}/chunks/{index} [put]
func (h *UploadHandler) ReceiveChunk(c *gin.Context) {
	userID, ok := uploader(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid chunk index",
		})
		return
	}

	file, _, err := c.Request.FormFile("chunk")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing chunk field",
		})
		return
	}
	defer file.Close()

	status, err := h.uploadUseCase.ReceiveChunk(c.Request.Context(), userID, c.Param("id"), index, file)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUploadSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Upload session not found",
			})
		case errors.Is(err, errs.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Upload session belongs to another user",
			})
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Failed to store chunk",
			})
		}
		return
	}
	c.JSON(http.StatusOK, status)
}

// @Summary Complete an upload
// @Description Assembles chunks (or finalizes the S3 multipart upload) and returns the storage key
// @Tags uploads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Upload session ID"
// @Param request body reqdto.CompleteUploadRequest false "Part ETags for S3 uploads"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/uploads/{id}/complete [post]
func (h *UploadHandler) Complete(c *gin.Context) {
	userID, ok := uploader(c)
	if !ok {
		return
	}
	var req reqdto.CompleteUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	parts := make([]storage.CompletedPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		parts = append(parts, storage.CompletedPart{
			PartNumber: p.PartNumber,
			ETag:       p.ETag,
		})
	}

	key, err := h.uploadUseCase.Complete(c.Request.Context(), userID, c.Param("id"), parts)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUploadSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Upload session not found",
			})
		case errors.Is(err, errs.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Upload session belongs to another user",
			})
		case errors.Is(err, errs.ErrIncompleteUpload):
			resp := gin.H{"error": "Upload incomplete"}
			// The session survives a failed completion, so the caller learns
			// exactly which chunk indices are still outstanding.
			if status, serr := h.uploadUseCase.Status(c.Request.Context(), userID, c.Param("id")); serr == nil {
				resp["missing_chunks"] = status.MissingChunks
			}
			c.JSON(http.StatusConflict, resp)
		case errors.Is(err, errs.ErrUpstreamUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Storage backend is unavailable",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"storage_key": key})
}

// @Summary Upload session progress
// @Tags uploads
// @Security BearerAuth
// @Produce json
// @Param id path string true "Upload session ID"
// @Success 200 {object} usecase.UploadStatusRM
// @Failure 404 {object} map[string]string
// @Router /admin/uploads/{id} [get]
func (h *UploadHandler) Status(c *gin.Context) {
	userID, ok := uploader(c)
	if !ok {
		return
	}
	status, err := h.uploadUseCase.Status(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUploadSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Upload session not found",
			})
		case errors.Is(err, errs.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Upload session belongs to another user",
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

// @Summary Abort an upload
// @Tags uploads
// @Security BearerAuth
// @Param id path string true "Upload session ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /admin/uploads/{id} [delete]
func (h *UploadHandler) Abort(c *gin.Context) {
	userID, ok := uploader(c)
	if !ok {
		return
	}
	if err := h.uploadUseCase.Abort(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, errs.ErrUploadSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Upload session not found",
			})
		case errors.Is(err, errs.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Upload session belongs to another user",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
