package readmodel

import (
	"time"

	"github.com/google/uuid"
)

type PaymentTransactionRM struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	SessionID   string            `json:"session_id"`
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Purpose     string            `json:"purpose"`
	Metadata    map[string]string `json:"metadata"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}
