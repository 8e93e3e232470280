package reservation

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Reservation struct {
	id        uuid.UUID
	userID    uuid.UUID
	userName  string
	userEmail string
	date      string // calendar day, DateLayout
	slot      string // catalog label, e.g. "09:00-09:20"
	cabin     int
	status    Status
	sessionID string // external checkout session, set when checkout opens
	qrCode    string
	createdAt time.Time
}

// New creates a pending reservation tied to a checkout session. The booking
// uniqueness invariant for (date, slot, cabin) is enforced at the storage
// layer; this constructor only validates shape.
func New(catalog Catalog, userID uuid.UUID, userName, userEmail, date, slot string, cabin int, sessionID string) (*Reservation, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	if !catalog.ValidSlot(slot) {
		return nil, ErrInvalidSlotLabel
	}
	if !catalog.ValidCabin(cabin) {
		return nil, ErrInvalidCabin
	}

	return &Reservation{
		id:        uuid.New(),
		userID:    userID,
		userName:  userName,
		userEmail: userEmail,
		date:      day,
		slot:      slot,
		cabin:     cabin,
		status:    StatusPending,
		sessionID: sessionID,
		qrCode:    newQRCode(),
	}, nil
}

func Reconstruct(
	id, userID uuid.UUID,
	userName, userEmail, date, slot string,
	cabin int,
	status Status,
	sessionID, qrCode string,
	createdAt time.Time,
) *Reservation {
	return &Reservation{
		id:        id,
		userID:    userID,
		userName:  userName,
		userEmail: userEmail,
		date:      date,
		slot:      slot,
		cabin:     cabin,
		status:    status,
		sessionID: sessionID,
		qrCode:    qrCode,
		createdAt: createdAt,
	}
}

func newQRCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "QR-" + strings.ToUpper(uuid.NewString()[:8])
	}
	return "QR-" + strings.ToUpper(hex.EncodeToString(b))
}

func (r *Reservation) ID() uuid.UUID        { return r.id }
func (r *Reservation) UserID() uuid.UUID    { return r.userID }
func (r *Reservation) UserName() string     { return r.userName }
func (r *Reservation) UserEmail() string    { return r.userEmail }
func (r *Reservation) Date() string         { return r.date }
func (r *Reservation) Slot() string         { return r.slot }
func (r *Reservation) Cabin() int           { return r.cabin }
func (r *Reservation) Status() Status       { return r.status }
func (r *Reservation) SessionID() string    { return r.sessionID }
func (r *Reservation) QRCode() string       { return r.qrCode }
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }
