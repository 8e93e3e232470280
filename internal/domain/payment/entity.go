package payment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusInitiated Status = "initiated"
	StatusPaid      Status = "paid"
	StatusFailed    Status = "failed"
)

// Purpose records what a checkout session pays for. The provider is a
// generic checkout, so the purpose and its parameters travel in metadata and
// are recovered during reconciliation.
type Purpose string

const (
	PurposeSubscription Purpose = "subscription"
	PurposeReservation  Purpose = "reservation"
)

// Metadata keys used across initiation and reconciliation.
const (
	MetaPlanType  = "plan_type"
	MetaUserEmail = "user_email"
	MetaDate      = "reservation_date"
	MetaSlot      = "time_slot"
	MetaCabin     = "cabin_id"
)

type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	SessionID   string
	AmountCents int64
	Currency    string
	Purpose     Purpose
	Metadata    map[string]string
	Status      Status
	CreatedAt   time.Time
}

func NewTransaction(userID uuid.UUID, sessionID string, amountCents int64, currency string, purpose Purpose, metadata map[string]string) *Transaction {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		SessionID:   sessionID,
		AmountCents: amountCents,
		Currency:    currency,
		Purpose:     purpose,
		Metadata:    metadata,
		Status:      StatusInitiated,
	}
}
