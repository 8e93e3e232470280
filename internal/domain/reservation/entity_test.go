//go:build unit

package reservation_test

import (
	"testing"

	"nazca360/internal/domain/reservation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservation(t *testing.T) {
	catalog := reservation.DefaultCatalog()
	userID := uuid.New()

	t.Run("valid booking starts pending with a QR code", func(t *testing.T) {
		res, err := reservation.New(catalog, userID, "Maria Quispe", "maria@example.com",
			"2026-07-20", "10:00-10:20", 2, "cs_test_123")
		require.NoError(t, err)

		assert.Equal(t, reservation.StatusPending, res.Status())
		assert.Equal(t, "2026-07-20", res.Date())
		assert.Equal(t, "10:00-10:20", res.Slot())
		assert.Equal(t, 2, res.Cabin())
		assert.NotEmpty(t, res.QRCode())
	})

	t.Run("QRコードは予約ごとに一意", func(t *testing.T) {
		a, err := reservation.New(catalog, userID, "A", "a@example.com", "2026-07-20", "10:00-10:20", 1, "cs_a")
		require.NoError(t, err)
		b, err := reservation.New(catalog, userID, "B", "b@example.com", "2026-07-20", "10:00-10:20", 2, "cs_b")
		require.NoError(t, err)
		assert.NotEqual(t, a.QRCode(), b.QRCode())
	})

	t.Run("rejects unknown slot label", func(t *testing.T) {
		_, err := reservation.New(catalog, userID, "A", "a@example.com", "2026-07-20", "18:00-18:20", 1, "cs")
		assert.ErrorIs(t, err, reservation.ErrInvalidSlotLabel)
	})

	t.Run("rejects out-of-range cabin", func(t *testing.T) {
		_, err := reservation.New(catalog, userID, "A", "a@example.com", "2026-07-20", "10:00-10:20", 4, "cs")
		assert.ErrorIs(t, err, reservation.ErrInvalidCabin)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		_, err := reservation.New(catalog, userID, "A", "a@example.com", "20-07-2026", "10:00-10:20", 1, "cs")
		assert.ErrorIs(t, err, reservation.ErrInvalidDate)
	})
}

func TestStatusHolding(t *testing.T) {
	assert.True(t, reservation.StatusPending.Holding())
	assert.True(t, reservation.StatusConfirmed.Holding())
	assert.False(t, reservation.StatusCancelled.Holding())
}
