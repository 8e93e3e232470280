package readmodel

import (
	"time"

	"github.com/google/uuid"
)

type ReservationRM struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Date      string    `json:"reservation_date"`
	Slot      string    `json:"time_slot"`
	Cabin     int       `json:"cabin_id"`
	Status    string    `json:"status"`
	SessionID string    `json:"session_id,omitempty"`
	QRCode    string    `json:"qr_code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SlotOccupancy is one row of the single availability query: a cabin held at
// a slot on the queried date.
type SlotOccupancy struct {
	Slot  string
	Cabin int
}

// SlotAvailabilityRM is the all-cabins availability view for one slot.
type SlotAvailabilityRM struct {
	Slot       string `json:"slot_label"`
	FreeCount  int    `json:"free_cabin_count"`
	FreeCabins []int  `json:"free_cabin_ids"`
}
