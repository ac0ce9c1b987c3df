package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motmatch/mot-marketplace/internal/notify"
)

func TestRender(t *testing.T) {
	t.Run("fills booking data into the template", func(t *testing.T) {
		title, body := notify.Render(notify.KindBookingCreated, map[string]any{
			"reference":    "ref-123",
			"garage":       "Speedy MOTs",
			"registration": "AB12CDE",
			"start":        "2026-09-01 10:00",
		})

		assert.Equal(t, "Booking received", title)
		assert.Contains(t, body, "ref-123")
		assert.Contains(t, body, "Speedy MOTs")
		assert.Contains(t, body, "AB12CDE")
	})

	t.Run("kinds without data render statically", func(t *testing.T) {
		title, body := notify.Render(notify.KindSubscriptionPastDue, nil)

		assert.Equal(t, "Payment failed", title)
		assert.NotEmpty(t, body)
	})

	t.Run("unknown kind falls back to the kind string", func(t *testing.T) {
		title, body := notify.Render("some_future_kind", nil)

		assert.Equal(t, "some_future_kind", title)
		assert.Equal(t, "some_future_kind", body)
	})
}
