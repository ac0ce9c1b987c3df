package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motmatch/mot-marketplace/internal/domain/booking"
	"github.com/motmatch/mot-marketplace/internal/models"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    booking.Status
		check   func(booking.Status) error
		allowed bool
	}{
		{"confirm pending", booking.StatusPending, booking.CanConfirm, true},
		{"confirm confirmed", booking.StatusConfirmed, booking.CanConfirm, false},
		{"confirm cancelled", booking.StatusCancelled, booking.CanConfirm, false},

		{"complete confirmed", booking.StatusConfirmed, booking.CanComplete, true},
		{"complete pending", booking.StatusPending, booking.CanComplete, false},

		{"cancel pending", booking.StatusPending, booking.CanCancel, true},
		{"cancel confirmed", booking.StatusConfirmed, booking.CanCancel, true},
		{"cancel completed", booking.StatusCompleted, booking.CanCancel, false},
		{"cancel no_show", booking.StatusNoShow, booking.CanCancel, false},

		{"no-show confirmed", booking.StatusConfirmed, booking.CanMarkNoShow, true},
		{"no-show pending", booking.StatusPending, booking.CanMarkNoShow, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.check(tc.from)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLive(t *testing.T) {
	assert.True(t, booking.Live(booking.StatusPending))
	assert.True(t, booking.Live(booking.StatusConfirmed))
	assert.False(t, booking.Live(booking.StatusCompleted))
	assert.False(t, booking.Live(booking.StatusCancelled))
	assert.False(t, booking.Live(booking.StatusNoShow))
}

func TestDomainActions(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("confirm stamps timestamp", func(t *testing.T) {
		b := &models.Booking{Status: string(booking.StatusPending)}

		require.NoError(t, booking.Confirm(b, now))

		assert.Equal(t, string(booking.StatusConfirmed), b.Status)
		require.NotNil(t, b.ConfirmedAt)
		assert.Equal(t, now, *b.ConfirmedAt)
	})

	t.Run("complete requires confirmed", func(t *testing.T) {
		b := &models.Booking{Status: string(booking.StatusPending)}

		err := booking.Complete(b, now)

		assert.Error(t, err)
		assert.Equal(t, string(booking.StatusPending), b.Status)
	})

	t.Run("cancel from confirmed", func(t *testing.T) {
		b := &models.Booking{Status: string(booking.StatusConfirmed)}

		require.NoError(t, booking.Cancel(b, now))

		assert.Equal(t, string(booking.StatusCancelled), b.Status)
		require.NotNil(t, b.CancelledAt)
	})

	t.Run("no-show stamps timestamp", func(t *testing.T) {
		b := &models.Booking{Status: string(booking.StatusConfirmed)}

		require.NoError(t, booking.MarkNoShow(b, now))

		assert.Equal(t, string(booking.StatusNoShow), b.Status)
		require.NotNil(t, b.NoShowAt)
		assert.Equal(t, now, *b.NoShowAt)
	})

	t.Run("cancel is not repeatable", func(t *testing.T) {
		b := &models.Booking{Status: string(booking.StatusCancelled)}

		assert.Error(t, booking.Cancel(b, now))
	})
}
