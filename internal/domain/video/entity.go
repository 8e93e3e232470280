package video

import (
	"time"

	"github.com/google/uuid"
)

// Category values for the 360 catalog.
const (
	CategoryNasca  = "nasca"
	CategoryPalpa  = "palpa"
	CategoryMuseum = "museum"
)

type Video struct {
	ID           uuid.UUID
	Title        string
	Description  string
	Duration     string // display form, e.g. "5:30"
	StorageKey   string // blob identifier served by the streaming endpoint
	Category     string
	Tags         []string
	ThumbnailURL string
	IsPremium    bool
	CreatedAt    time.Time
}
