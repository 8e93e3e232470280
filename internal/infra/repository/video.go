package repository

import (
	"context"

	"nazca360/internal/domain/video"
	"nazca360/internal/infra"
	"nazca360/internal/infra/db"
	"nazca360/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type VideoRepository struct {
	db db.DBTX
}

func NewVideoRepository(db db.DBTX) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoColumns = `id, title, description, duration, storage_key, category, tags, thumbnail_url, is_premium, created_at`

func (r *VideoRepository) Create(ctx context.Context, v *video.Video) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO videos (id, title, description, duration, storage_key, category, tags, thumbnail_url, is_premium)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		v.ID, v.Title, v.Description, v.Duration, v.StorageKey, v.Category, v.Tags, v.ThumbnailURL, v.IsPremium,
	)
	if err != nil {
		return wrap("failed to create video", err)
	}
	return nil
}

func (r *VideoRepository) Update(ctx context.Context, v *video.Video) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE videos SET title = $2, description = $3, duration = $4, storage_key = $5,
			category = $6, tags = $7, thumbnail_url = $8, is_premium = $9
		WHERE id = $1`,
		v.ID, v.Title, v.Description, v.Duration, v.StorageKey, v.Category, v.Tags, v.ThumbnailURL, v.IsPremium,
	)
	if err != nil {
		return false, wrap("failed to update video", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *VideoRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return false, wrap("failed to delete video", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id uuid.UUID) (*readmodel.VideoRM, error) {
	row := r.db.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
	rm, err := scanVideo(row)
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// List returns the catalog, optionally filtered by category.
func (r *VideoRepository) List(ctx context.Context, category string) ([]*readmodel.VideoRM, error) {
	query := `SELECT ` + videoColumns + ` FROM videos`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("failed to list videos", err)
	}
	defer rows.Close()

	var result []*readmodel.VideoRM
	for rows.Next() {
		rm, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("failed to iterate videos", err)
	}
	return result, nil
}

func (r *VideoRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM videos`).Scan(&n); err != nil {
		return 0, wrap("failed to count videos", err)
	}
	return n, nil
}

func scanVideo(row rowScanner) (*readmodel.VideoRM, error) {
	var rm readmodel.VideoRM
	err := row.Scan(&rm.ID, &rm.Title, &rm.Description, &rm.Duration, &rm.StorageKey,
		&rm.Category, &rm.Tags, &rm.ThumbnailURL, &rm.IsPremium, &rm.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("video not found", err, infra.KindNotFound)
		}
		return nil, wrap("failed to scan video", err)
	}
	return &rm, nil
}
