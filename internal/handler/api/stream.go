package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"nazca360/internal/handler/middleware"
	"nazca360/internal/pkg/config"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StreamHandler struct {
	videoUseCase usecase.VideoUseCase
	cfg          config.StreamConfig
}

func NewStreamHandler(videoUseCase usecase.VideoUseCase, cfg config.StreamConfig) *StreamHandler {
	return &StreamHandler{
		videoUseCase: videoUseCase,
		cfg:          cfg,
	}
}

// @Summary Stream video content
// @Description Serves the video with HTTP Range support; premium titles need an active subscription
// @Tags videos
// @Security BearerAuth
// @Produce video/mp4
// @Param id path string true "Video ID"
// @Param Range header string false "Byte range, e.g. bytes=0-1048575"
// @Success 200 "Full content"
// @Success 206 "Partial content"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /videos/{id}/stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}
	role, _ := middleware.GetUserRole(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid video ID",
		})
		return
	}

	f, size, err := h.videoUseCase.OpenStream(c.Request.Context(), id, userID, role)
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
	defer f.Close()

	h.writeStream(c, f, size)
}

// writeStream serves either the full file or one bounded window of it.
// The window is capped so a single request cannot demand the whole file;
// players follow up with further Range requests for the rest.
func (h *StreamHandler) writeStream(c *gin.Context, f io.ReadSeeker, size int64) {
	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Type", "video/mp4")
	c.Header("Cache-Control", "no-cache, no-store")
	c.Header("Content-Disposition", "inline")

	start, end, ok := parseRange(c.GetHeader("Range"), size)
	if !ok {
		// No usable Range header: serve the file from the top.
		c.Header("Content-Length", strconv.FormatInt(size, 10))
		c.Status(http.StatusOK)
		h.copyWindow(c, f, size)
		return
	}

	if end-start+1 > h.cfg.MaxChunkBytes {
		end = start + h.cfg.MaxChunkBytes - 1
	}
	if end >= size {
		end = size - 1
	}

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	length := end - start + 1
	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	c.Header("Content-Length", strconv.FormatInt(length, 10))
	c.Status(http.StatusPartialContent)
	h.copyWindow(c, f, length)
}

func (h *StreamHandler) copyWindow(c *gin.Context, f io.Reader, length int64) {
	buf := make([]byte, h.cfg.ReadBufferBytes)
	if _, err := io.CopyBuffer(c.Writer, io.LimitReader(f, length), buf); err != nil {
		// The client dropped mid-stream; nothing useful to send back.
		return
	}
}

// parseRange understands single ranges of the form "bytes=start-end",
// "bytes=start-" and "bytes=-suffix". Anything else falls back to a full
// response rather than an error, matching what media players tolerate best.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	if header == "" || size == 0 {
		return 0, 0, false
	}
	spec, found := strings.CutPrefix(header, "bytes=")
	if !found || strings.Contains(spec, ",") {
		return 0, 0, false
	}

	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	if startStr == "" {
		// Suffix form: the final N bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		if n > size {
			n = size
		}
		return size - n, size - 1, true
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, false
	}

	if endStr == "" {
		return start, size - 1, true
	}
	end, err = strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < start {
		return 0, 0, false
	}
	if end >= size {
		end = size - 1
	}
	return start, end, true
}
