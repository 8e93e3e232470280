package usecase

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"nazca360/internal/domain/user"
	"nazca360/internal/infra"
	"nazca360/internal/infra/storage"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase/readmodel"
)

type VideoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*readmodel.VideoRM, error)
	List(ctx context.Context, category string) ([]*readmodel.VideoRM, error)
}

type BlobStore interface {
	Open(key string) (io.ReadSeekCloser, int64, error)
	Delete(key string) error
}

type VideoUseCase interface {
	List(ctx context.Context, userID uuid.UUID, role user.Role, category string) ([]*readmodel.VideoRM, error)
	Get(ctx context.Context, id, userID uuid.UUID, role user.Role) (*readmodel.VideoRM, error)
	// OpenStream returns a seekable handle for range streaming, gated on the
	// caller's entitlement when the video is premium.
	OpenStream(ctx context.Context, id, userID uuid.UUID, role user.Role) (io.ReadSeekCloser, int64, error)
}

type videoUseCaseImpl struct {
	videoRepo VideoRepository
	blobs     BlobStore
	subs      SubscriptionUseCase
}

func NewVideoUseCase(videoRepo VideoRepository, blobs BlobStore, subs SubscriptionUseCase) VideoUseCase {
	return &videoUseCaseImpl{
		videoRepo: videoRepo,
		blobs:     blobs,
		subs:      subs,
	}
}

// List returns the catalog. Premium entries are hidden from viewers without
// an active subscription; entitlement gates discovery, not just playback.
func (v *videoUseCaseImpl) List(ctx context.Context, userID uuid.UUID, role user.Role, category string) ([]*readmodel.VideoRM, error) {
	list, err := v.videoRepo.List(ctx, category)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	entitled, err := v.subs.Entitled(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	if entitled {
		return list, nil
	}
	visible := make([]*readmodel.VideoRM, 0, len(list))
	for _, vid := range list {
		if !vid.IsPremium {
			visible = append(visible, vid)
		}
	}
	return visible, nil
}

func (v *videoUseCaseImpl) Get(ctx context.Context, id, userID uuid.UUID, role user.Role) (*readmodel.VideoRM, error) {
	vid, err := v.videoRepo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if vid.IsPremium {
		entitled, err := v.subs.Entitled(ctx, userID, role)
		if err != nil {
			return nil, err
		}
		if !entitled {
			return nil, errs.ErrForbidden
		}
	}
	return vid, nil
}

func (v *videoUseCaseImpl) OpenStream(ctx context.Context, id, userID uuid.UUID, role user.Role) (io.ReadSeekCloser, int64, error) {
	vid, err := v.Get(ctx, id, userID, role)
	if err != nil {
		return nil, 0, err
	}

	f, size, err := v.blobs.Open(vid.StorageKey)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, 0, errs.ErrNotFound
		}
		return nil, 0, err
	}
	return f, size, nil
}

var _ BlobStore = (*storage.LocalStore)(nil)
