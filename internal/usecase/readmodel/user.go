package readmodel

import (
	"time"

	"github.com/google/uuid"
)

// AuthorizedUserRM carries what handlers need about an authenticated user.
type AuthorizedUserRM struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	Provider  string    `json:"oauth_provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
