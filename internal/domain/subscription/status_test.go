package subscription_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motmatch/mot-marketplace/internal/domain/subscription"
	"github.com/motmatch/mot-marketplace/internal/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{models.SubscriptionPending, models.SubscriptionActive, true},
		{models.SubscriptionPending, models.SubscriptionPastDue, false},
		{models.SubscriptionActive, models.SubscriptionPastDue, true},
		{models.SubscriptionPastDue, models.SubscriptionActive, true},
		{models.SubscriptionPastDue, models.SubscriptionSuspended, true},
		{models.SubscriptionSuspended, models.SubscriptionActive, true},
		{models.SubscriptionCancelled, models.SubscriptionActive, false},
		{models.SubscriptionActive, models.SubscriptionCancelled, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, subscription.CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestVisible(t *testing.T) {
	assert.True(t, subscription.Visible(models.SubscriptionActive))
	assert.True(t, subscription.Visible(models.SubscriptionPastDue),
		"grace window keeps the garage listed")
	assert.False(t, subscription.Visible(models.SubscriptionPending))
	assert.False(t, subscription.Visible(models.SubscriptionSuspended))
	assert.False(t, subscription.Visible(models.SubscriptionCancelled))
}

func TestMarkPastDue(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	t.Run("active goes past due", func(t *testing.T) {
		sub := &models.Subscription{Status: models.SubscriptionActive}

		require.NoError(t, subscription.MarkPastDue(sub, now))

		assert.Equal(t, models.SubscriptionPastDue, sub.Status)
		require.NotNil(t, sub.PastDueSince)
		assert.Equal(t, now, *sub.PastDueSince)
	})

	t.Run("repeated failures keep the original clock", func(t *testing.T) {
		first := now.Add(-48 * time.Hour)
		sub := &models.Subscription{
			Status:       models.SubscriptionPastDue,
			PastDueSince: &first,
		}

		require.NoError(t, subscription.MarkPastDue(sub, now))

		assert.Equal(t, first, *sub.PastDueSince)
	})

	t.Run("pending cannot go past due", func(t *testing.T) {
		sub := &models.Subscription{Status: models.SubscriptionPending}

		assert.Error(t, subscription.MarkPastDue(sub, now))
	})
}

func TestActivateClearsPastDue(t *testing.T) {
	since := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := since.AddDate(0, 1, 0)

	sub := &models.Subscription{
		Status:       models.SubscriptionPastDue,
		PastDueSince: &since,
	}

	require.NoError(t, subscription.Activate(sub, &periodEnd))

	assert.Equal(t, models.SubscriptionActive, sub.Status)
	assert.Nil(t, sub.PastDueSince)
	assert.Equal(t, &periodEnd, sub.CurrentPeriodEnd)
}

func TestGraceExpired(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	t.Run("inside the window", func(t *testing.T) {
		since := now.Add(-subscription.GracePeriod + time.Hour)
		sub := &models.Subscription{
			Status:       models.SubscriptionPastDue,
			PastDueSince: &since,
		}

		assert.False(t, subscription.GraceExpired(sub, now))
	})

	t.Run("window run out", func(t *testing.T) {
		since := now.Add(-subscription.GracePeriod)
		sub := &models.Subscription{
			Status:       models.SubscriptionPastDue,
			PastDueSince: &since,
		}

		assert.True(t, subscription.GraceExpired(sub, now))
	})

	t.Run("only past due subscriptions expire", func(t *testing.T) {
		since := now.Add(-30 * 24 * time.Hour)
		sub := &models.Subscription{
			Status:       models.SubscriptionActive,
			PastDueSince: &since,
		}

		assert.False(t, subscription.GraceExpired(sub, now))
	})
}
