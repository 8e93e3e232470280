//go:build unit

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nazca360/internal/handler/api"
	"nazca360/internal/infra/storage"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUploadUseCase owns a single session "u1" on behalf of one user and
// refuses every other caller.
type fakeUploadUseCase struct {
	owner   uuid.UUID
	missing []int
}

func (f *fakeUploadUseCase) Init(_ context.Context, _ uuid.UUID, _ string, _ int) (*usecase.UploadInitResult, error) {
	return &usecase.UploadInitResult{UploadID: "u1", StoredFilename: "u1.mp4", StorageMode: "local"}, nil
}

func (f *fakeUploadUseCase) ReceiveChunk(_ context.Context, userID uuid.UUID, id string, _ int, _ io.Reader) (*usecase.UploadStatusRM, error) {
	if userID != f.owner {
		return nil, errs.ErrForbidden
	}
	return &usecase.UploadStatusRM{UploadID: id, TotalChunks: 3, ReceivedCount: 1}, nil
}

func (f *fakeUploadUseCase) Complete(_ context.Context, userID uuid.UUID, _ string, _ []storage.CompletedPart) (string, error) {
	if userID != f.owner {
		return "", errs.ErrForbidden
	}
	if len(f.missing) > 0 {
		return "", errs.Mark(errs.Newf("missing chunks: %v", f.missing), errs.ErrIncompleteUpload)
	}
	return "u1.mp4", nil
}

func (f *fakeUploadUseCase) Status(_ context.Context, userID uuid.UUID, id string) (*usecase.UploadStatusRM, error) {
	if userID != f.owner {
		return nil, errs.ErrForbidden
	}
	return &usecase.UploadStatusRM{
		UploadID:      id,
		TotalChunks:   3,
		ReceivedCount: 3 - len(f.missing),
		MissingChunks: f.missing,
	}, nil
}

func (f *fakeUploadUseCase) Abort(_ context.Context, userID uuid.UUID, _ string) error {
	if userID != f.owner {
		return errs.ErrForbidden
	}
	return nil
}

func (f *fakeUploadUseCase) EvictExpired(context.Context) int { return 0 }

func uploadRouter(uc usecase.UploadUseCase, actor uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := api.NewUploadHandler(uc)

	router := gin.New()
	identify := func(c *gin.Context) {
		if actor != uuid.Nil {
			c.Set("user_id", actor)
		}
	}
	router.POST("/uploads", identify, handler.Init)
	router.PUT("/uploads/:id/chunks/:index", identify, handler.ReceiveChunk)
	router.POST("/uploads/:id/complete", identify, handler.Complete)
	router.GET("/uploads/:id", identify, handler.Status)
	router.DELETE("/uploads/:id", identify, handler.Abort)
	return router
}

func chunkRequest(t *testing.T, path, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("chunk", "chunk.bin")
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandler(t *testing.T) {
	owner := uuid.New()

	t.Run("init returns the session id and stored filename", func(t *testing.T) {
		router := uploadRouter(&fakeUploadUseCase{owner: owner}, owner)
		req := httptest.NewRequest(http.MethodPost, "/uploads",
			strings.NewReader(`{"filename":"flight.mp4","total_chunks":3}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "u1", body["upload_id"])
		assert.Equal(t, "u1.mp4", body["stored_filename"])
	})

	t.Run("完了失敗時は欠落チャンク番号を返す", func(t *testing.T) {
		router := uploadRouter(&fakeUploadUseCase{owner: owner, missing: []int{1}}, owner)
		req := httptest.NewRequest(http.MethodPost, "/uploads/u1/complete", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusConflict, w.Code)
		var body struct {
			Error         string `json:"error"`
			MissingChunks []int  `json:"missing_chunks"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Upload incomplete", body.Error)
		assert.Equal(t, []int{1}, body.MissingChunks)
	})

	t.Run("foreign caller cannot write into the session", func(t *testing.T) {
		router := uploadRouter(&fakeUploadUseCase{owner: owner}, uuid.New())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, chunkRequest(t, "/uploads/u1/chunks/0", "HEAD"))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("foreign caller cannot complete or abort", func(t *testing.T) {
		router := uploadRouter(&fakeUploadUseCase{owner: owner}, uuid.New())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/uploads/u1/complete", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/uploads/u1", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing identity is unauthorized", func(t *testing.T) {
		router := uploadRouter(&fakeUploadUseCase{owner: owner}, uuid.Nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/u1", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
