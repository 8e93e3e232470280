package request

import (
	"github.com/google/uuid"

	"nazca360/internal/domain/video"
)

type VideoRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	Duration     string   `json:"duration"`
	StorageKey   string   `json:"storage_key" binding:"required"`
	Category     string   `json:"category" binding:"required,oneof=nasca palpa museum"`
	Tags         []string `json:"tags"`
	ThumbnailURL string   `json:"thumbnail_url"`
	IsPremium    bool     `json:"is_premium"`
}

func (r *VideoRequest) ToDomain(id uuid.UUID) *video.Video {
	return &video.Video{
		ID:           id,
		Title:        r.Title,
		Description:  r.Description,
		Duration:     r.Duration,
		StorageKey:   r.StorageKey,
		Category:     r.Category,
		Tags:         r.Tags,
		ThumbnailURL: r.ThumbnailURL,
		IsPremium:    r.IsPremium,
	}
}
