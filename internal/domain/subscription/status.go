package subscription

import (
	"time"

	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/models"
)

// ===============================
// Subscription Status
// ===============================

// Allowed transitions. Webhooks and the daily reconciliation job are the only
// writers; anything outside this table is a bug or a replayed stale event.
var transitions = map[string][]string{
	models.SubscriptionPending:   {models.SubscriptionActive, models.SubscriptionCancelled},
	models.SubscriptionActive:    {models.SubscriptionPastDue, models.SubscriptionCancelled},
	models.SubscriptionPastDue:   {models.SubscriptionActive, models.SubscriptionSuspended, models.SubscriptionCancelled},
	models.SubscriptionSuspended: {models.SubscriptionActive, models.SubscriptionCancelled},
	models.SubscriptionCancelled: {},
}

func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Visible reports whether the garage should appear in driver-facing search.
// PAST_DUE keeps visibility during the grace window.
func Visible(status string) bool {
	return status == models.SubscriptionActive || status == models.SubscriptionPastDue
}

// ===============================
// Domain Actions
// ===============================

func Activate(s *models.Subscription, periodEnd *time.Time) error {
	if !CanTransition(s.Status, models.SubscriptionActive) {
		return httperr.ErrBusiness("invalid_state")
	}

	s.Status = models.SubscriptionActive
	s.PastDueSince = nil
	s.CurrentPeriodEnd = periodEnd
	return nil
}

func MarkPastDue(s *models.Subscription, now time.Time) error {
	if s.Status == models.SubscriptionPastDue {
		return nil // repeated failed charges keep the original clock
	}
	if !CanTransition(s.Status, models.SubscriptionPastDue) {
		return httperr.ErrBusiness("invalid_state")
	}

	s.Status = models.SubscriptionPastDue
	s.PastDueSince = &now
	return nil
}

func Suspend(s *models.Subscription) error {
	if !CanTransition(s.Status, models.SubscriptionSuspended) {
		return httperr.ErrBusiness("invalid_state")
	}

	s.Status = models.SubscriptionSuspended
	return nil
}

func Cancel(s *models.Subscription, now time.Time) error {
	if !CanTransition(s.Status, models.SubscriptionCancelled) {
		return httperr.ErrBusiness("invalid_state")
	}

	s.Status = models.SubscriptionCancelled
	s.CancelledAt = &now
	return nil
}

// GracePeriod is how long a PAST_DUE subscription keeps the garage visible
// before the daily job suspends it.
const GracePeriod = 7 * 24 * time.Hour

func GraceExpired(s *models.Subscription, now time.Time) bool {
	return s.Status == models.SubscriptionPastDue &&
		s.PastDueSince != nil &&
		now.Sub(*s.PastDueSince) >= GracePeriod
}
