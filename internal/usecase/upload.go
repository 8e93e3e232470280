package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"nazca360/internal/infra/storage"
	"nazca360/internal/pkg/clock"
	"nazca360/internal/pkg/config"
	"nazca360/internal/pkg/errs"
)

// uploadSession tracks one in-flight chunked upload. Chunks may arrive in
// any order and concurrently; the mutex guards the received set.
type uploadSession struct {
	mu          sync.Mutex
	id          string
	ownerID     uuid.UUID
	storedName  string
	totalChunks int
	received    map[int]bool
	createdAt   time.Time

	// S3 multipart fields, set only for direct-to-bucket uploads.
	s3Key      string
	s3UploadID string
}

type UploadInitResult struct {
	UploadID       string   `json:"upload_id"`
	StoredFilename string   `json:"stored_filename"`
	PartURLs       []string `json:"part_urls,omitempty"`
	StorageMode    string   `json:"storage_mode"`
}

type UploadStatusRM struct {
	UploadID      string `json:"upload_id"`
	TotalChunks   int    `json:"total_chunks"`
	ReceivedCount int    `json:"received_count"`
	MissingChunks []int  `json:"missing_chunks,omitempty"`
}

// UploadUseCase operations other than Init take the caller's identity and
// refuse to touch a session opened by someone else.
type UploadUseCase interface {
	Init(ctx context.Context, userID uuid.UUID, filename string, totalChunks int) (*UploadInitResult, error)
	ReceiveChunk(ctx context.Context, userID uuid.UUID, uploadID string, index int, data io.Reader) (*UploadStatusRM, error)
	Complete(ctx context.Context, userID uuid.UUID, uploadID string, parts []storage.CompletedPart) (string, error)
	Status(ctx context.Context, userID uuid.UUID, uploadID string) (*UploadStatusRM, error)
	Abort(ctx context.Context, userID uuid.UUID, uploadID string) error
	EvictExpired(ctx context.Context) int
}

type uploadUseCaseImpl struct {
	mu       sync.RWMutex
	sessions map[string]*uploadSession

	local *storage.LocalStore
	s3    *storage.S3Store
	cfg   config.UploadConfig
	clock clock.Clock
}

func NewUploadUseCase(local *storage.LocalStore, s3 *storage.S3Store, cfg config.UploadConfig, clk clock.Clock) (UploadUseCase, error) {
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, errs.Wrap(err, "failed to create chunk directory")
	}
	uc := &uploadUseCaseImpl{
		sessions: make(map[string]*uploadSession),
		local:    local,
		s3:       s3,
		cfg:      cfg,
		clock:    clk,
	}
	return uc, nil
}

// Init opens an upload session and allocates the filename the finished
// object will be stored under. With a bucket configured the parts go
// straight to S3 through presigned URLs; otherwise chunks are posted to the
// server and assembled on disk.
func (u *uploadUseCaseImpl) Init(ctx context.Context, userID uuid.UUID, filename string, totalChunks int) (*UploadInitResult, error) {
	if totalChunks < 1 {
		return nil, errs.Newf("total chunks must be positive, got %d", totalChunks)
	}
	if filepath.Base(filename) != filename || filename == "." || filename == "" {
		return nil, errs.Newf("invalid filename: %q", filename)
	}

	id := uuid.NewString()
	session := &uploadSession{
		id:          id,
		ownerID:     userID,
		storedName:  id + filepath.Ext(filename),
		totalChunks: totalChunks,
		received:    make(map[int]bool, totalChunks),
		createdAt:   u.clock.Now(),
	}
	result := &UploadInitResult{
		UploadID:       session.id,
		StoredFilename: session.storedName,
		StorageMode:    "local",
	}

	if u.s3 != nil && u.s3.Enabled() {
		key := "videos/" + session.storedName
		uploadID, err := u.s3.CreateMultipartUpload(ctx, key, "video/mp4")
		if err != nil {
			return nil, errs.Mark(err, errs.ErrUpstreamUnavailable)
		}
		session.s3Key = key
		session.s3UploadID = uploadID

		urls := make([]string, 0, totalChunks)
		for part := 1; part <= totalChunks; part++ {
			url, err := u.s3.PresignUploadPart(ctx, key, uploadID, int32(part))
			if err != nil {
				return nil, errs.Mark(err, errs.ErrUpstreamUnavailable)
			}
			urls = append(urls, url)
		}
		result.PartURLs = urls
		result.StorageMode = "s3"
	}

	u.mu.Lock()
	u.sessions[session.id] = session
	u.mu.Unlock()
	return result, nil
}

// ReceiveChunk stores one chunk of a local-mode upload. Re-sent chunks
// overwrite their previous copy.
func (u *uploadUseCaseImpl) ReceiveChunk(ctx context.Context, userID uuid.UUID, uploadID string, index int, data io.Reader) (*UploadStatusRM, error) {
	session, err := u.lookup(userID, uploadID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= session.totalChunks {
		return nil, errs.Newf("chunk index %d out of range [0,%d)", index, session.totalChunks)
	}

	path := u.chunkPath(uploadID, index)
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create chunk file")
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, errs.Wrap(err, "failed to write chunk")
	}
	if err := f.Close(); err != nil {
		return nil, errs.Wrap(err, "failed to flush chunk")
	}

	session.mu.Lock()
	session.received[index] = true
	session.mu.Unlock()

	return u.statusOf(session), nil
}

// Complete assembles the chunks in index order, or finalizes the S3
// multipart upload, and returns the storage key of the finished object.
// Missing chunks fail the call and the session stays open for retries.
func (u *uploadUseCaseImpl) Complete(ctx context.Context, userID uuid.UUID, uploadID string, parts []storage.CompletedPart) (string, error) {
	session, err := u.lookup(userID, uploadID)
	if err != nil {
		return "", err
	}

	if session.s3UploadID != "" {
		if len(parts) != session.totalChunks {
			return "", errs.Mark(
				errs.Newf("expected %d parts, got %d", session.totalChunks, len(parts)),
				errs.ErrIncompleteUpload)
		}
		if err := u.s3.CompleteMultipartUpload(ctx, session.s3Key, session.s3UploadID, parts); err != nil {
			return "", errs.Mark(err, errs.ErrUpstreamUnavailable)
		}
		u.drop(uploadID)
		return session.s3Key, nil
	}

	missing := u.missingChunks(session)
	if len(missing) > 0 {
		return "", errs.Mark(
			errs.Newf("missing chunks: %v", missing),
			errs.ErrIncompleteUpload)
	}

	key, err := u.assemble(session)
	if err != nil {
		return "", err
	}
	u.drop(uploadID)
	return key, nil
}

func (u *uploadUseCaseImpl) Status(ctx context.Context, userID uuid.UUID, uploadID string) (*UploadStatusRM, error) {
	session, err := u.lookup(userID, uploadID)
	if err != nil {
		return nil, err
	}
	return u.statusOf(session), nil
}

func (u *uploadUseCaseImpl) Abort(ctx context.Context, userID uuid.UUID, uploadID string) error {
	session, err := u.lookup(userID, uploadID)
	if err != nil {
		return err
	}
	if session.s3UploadID != "" {
		if abortErr := u.s3.AbortMultipartUpload(ctx, session.s3Key, session.s3UploadID); abortErr != nil {
			slog.Warn("failed to abort multipart upload", "upload_id", uploadID, "error", abortErr)
		}
	}
	u.cleanup(session)
	u.drop(uploadID)
	return nil
}

// EvictExpired removes sessions older than the configured TTL, including
// their chunk files. Called from the janitor goroutine.
func (u *uploadUseCaseImpl) EvictExpired(ctx context.Context) int {
	cutoff := u.clock.Now().Add(-u.cfg.SessionTTL)

	u.mu.Lock()
	var expired []*uploadSession
	for id, session := range u.sessions {
		if session.createdAt.Before(cutoff) {
			expired = append(expired, session)
			delete(u.sessions, id)
		}
	}
	u.mu.Unlock()

	for _, session := range expired {
		if session.s3UploadID != "" {
			if err := u.s3.AbortMultipartUpload(ctx, session.s3Key, session.s3UploadID); err != nil {
				slog.Warn("failed to abort expired multipart upload", "upload_id", session.id, "error", err)
			}
		}
		u.cleanup(session)
	}
	return len(expired)
}

func (u *uploadUseCaseImpl) assemble(session *uploadSession) (string, error) {
	assembledPath := filepath.Join(u.cfg.TempDir, session.id+".assembled")
	out, err := os.Create(assembledPath)
	if err != nil {
		return "", errs.Wrap(err, "failed to create assembly file")
	}

	for i := 0; i < session.totalChunks; i++ {
		chunk, err := os.Open(u.chunkPath(session.id, i))
		if err != nil {
			out.Close()
			os.Remove(assembledPath)
			return "", errs.Wrap(err, "failed to open chunk for assembly")
		}
		_, err = io.Copy(out, chunk)
		chunk.Close()
		if err != nil {
			out.Close()
			os.Remove(assembledPath)
			return "", errs.Wrap(err, "failed to append chunk")
		}
	}
	if err := out.Close(); err != nil {
		return "", errs.Wrap(err, "failed to flush assembled file")
	}

	key := session.storedName
	if err := u.local.Put(key, assembledPath); err != nil {
		os.Remove(assembledPath)
		return "", err
	}
	u.cleanup(session)
	return key, nil
}

func (u *uploadUseCaseImpl) lookup(userID uuid.UUID, uploadID string) (*uploadSession, error) {
	u.mu.RLock()
	session, ok := u.sessions[uploadID]
	u.mu.RUnlock()
	if !ok {
		return nil, errs.ErrUploadSessionNotFound
	}
	if session.ownerID != userID {
		return nil, errs.ErrForbidden
	}
	return session, nil
}

func (u *uploadUseCaseImpl) drop(uploadID string) {
	u.mu.Lock()
	delete(u.sessions, uploadID)
	u.mu.Unlock()
}

func (u *uploadUseCaseImpl) cleanup(session *uploadSession) {
	for i := 0; i < session.totalChunks; i++ {
		os.Remove(u.chunkPath(session.id, i))
	}
}

func (u *uploadUseCaseImpl) statusOf(session *uploadSession) *UploadStatusRM {
	missing := u.missingChunks(session)
	return &UploadStatusRM{
		UploadID:      session.id,
		TotalChunks:   session.totalChunks,
		ReceivedCount: session.totalChunks - len(missing),
		MissingChunks: missing,
	}
}

func (u *uploadUseCaseImpl) missingChunks(session *uploadSession) []int {
	session.mu.Lock()
	defer session.mu.Unlock()
	var missing []int
	for i := 0; i < session.totalChunks; i++ {
		if !session.received[i] {
			missing = append(missing, i)
		}
	}
	sort.Ints(missing)
	return missing
}

func (u *uploadUseCaseImpl) chunkPath(uploadID string, index int) string {
	return filepath.Join(u.cfg.TempDir, fmt.Sprintf("%s.part%d", uploadID, index))
}
