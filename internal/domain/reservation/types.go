package reservation

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Holding reports whether a reservation in this status occupies its
// (date, slot, cabin) triple. Cancelled reservations release the slot.
func (s Status) Holding() bool {
	return s == StatusPending || s == StatusConfirmed
}
