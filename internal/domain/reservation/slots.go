package reservation

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrInvalidSlotLabel = errors.New("invalid slot label")
	ErrInvalidCabin     = errors.New("invalid cabin")
	ErrInvalidDate      = errors.New("invalid date")
)

// DateLayout is the calendar-day format used everywhere a reservation date
// travels. Dates are plain calendar days; no timezone conversion is applied.
const DateLayout = "2006-01-02"

var slotLabelRegex = regexp.MustCompile(`^\d{2}:\d{2}-\d{2}:\d{2}$`)

// Catalog is the fixed set of bookable time windows for one operating day.
// It is identical across all days and all cabins; only occupancy differs.
type Catalog struct {
	openHour    int
	closeHour   int
	slotMinutes int
	cabinCount  int
}

func NewCatalog(openHour, closeHour, slotMinutes, cabinCount int) (Catalog, error) {
	if openHour < 0 || closeHour > 24 || openHour >= closeHour {
		return Catalog{}, errors.New("invalid operating window")
	}
	if slotMinutes <= 0 || slotMinutes > 60 {
		return Catalog{}, errors.New("invalid slot granularity")
	}
	if cabinCount <= 0 {
		return Catalog{}, errors.New("invalid cabin count")
	}
	return Catalog{
		openHour:    openHour,
		closeHour:   closeHour,
		slotMinutes: slotMinutes,
		cabinCount:  cabinCount,
	}, nil
}

// DefaultCatalog covers 09:00-18:00 in 20-minute windows over three cabins,
// giving 27 slots per day.
func DefaultCatalog() Catalog {
	c, err := NewCatalog(9, 18, 20, 3)
	if err != nil {
		panic(err)
	}
	return c
}

// Slots returns the ordered slot labels for an operating day. Pure and
// deterministic: every call yields the same sequence.
func (c Catalog) Slots() []string {
	open := c.openHour * 60
	close := c.closeHour * 60

	var labels []string
	for start := open; start+c.slotMinutes <= close; start += c.slotMinutes {
		end := start + c.slotMinutes
		labels = append(labels, fmt.Sprintf("%02d:%02d-%02d:%02d", start/60, start%60, end/60, end%60))
	}
	return labels
}

// ValidSlot reports whether label names one of the catalog's windows.
func (c Catalog) ValidSlot(label string) bool {
	if !slotLabelRegex.MatchString(label) {
		return false
	}
	for _, s := range c.Slots() {
		if s == label {
			return true
		}
	}
	return false
}

// Cabins returns the identifiers of the schedulable cabins, 1-based.
func (c Catalog) Cabins() []int {
	ids := make([]int, c.cabinCount)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

func (c Catalog) ValidCabin(id int) bool {
	return id >= 1 && id <= c.cabinCount
}

func (c Catalog) CabinCount() int {
	return c.cabinCount
}

// ParseDate validates a calendar-day string.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(DateLayout), nil
}
