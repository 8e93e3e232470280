package readmodel

import (
	"time"

	"github.com/google/uuid"
)

type VideoRM struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Duration     string    `json:"duration"`
	StorageKey   string    `json:"storage_key"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags"`
	ThumbnailURL string    `json:"thumbnail_url"`
	IsPremium    bool      `json:"is_premium"`
	CreatedAt    time.Time `json:"created_at"`
}
