package readmodel

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionRM struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	PlanType  string     `json:"plan_type"`
	SessionID string     `json:"session_id,omitempty"`
	Status    string     `json:"payment_status"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	AutoRenew bool       `json:"auto_renew"`
	CreatedAt time.Time  `json:"created_at"`
}
