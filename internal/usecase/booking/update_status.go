package booking

import (
	"context"
	"time"

	"github.com/motmatch/mot-marketplace/internal/audit"
	domain "github.com/motmatch/mot-marketplace/internal/domain/booking"
	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/notify"
	"github.com/motmatch/mot-marketplace/internal/timezone"
)

// UpdateBookingStatus covers the garage-side transitions: confirm, complete
// and no-show. Cancellation has its own use case because it frees the slot.
type UpdateBookingStatus struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier *notify.Dispatcher
}

func NewUpdateBookingStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Dispatcher,
) *UpdateBookingStatus {
	return &UpdateBookingStatus{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
	}
}

func (uc *UpdateBookingStatus) Confirm(
	ctx context.Context,
	garageID uint,
	actorID uint,
	bookingID uint,
) (*models.Booking, error) {
	return uc.apply(ctx, garageID, actorID, bookingID, "booking_confirmed",
		func(b *models.Booking, now time.Time) error {
			return domain.Confirm(b, now)
		},
		notify.KindBookingConfirmed,
	)
}

func (uc *UpdateBookingStatus) Complete(
	ctx context.Context,
	garageID uint,
	actorID uint,
	bookingID uint,
) (*models.Booking, error) {
	return uc.apply(ctx, garageID, actorID, bookingID, "booking_completed",
		func(b *models.Booking, now time.Time) error {
			return domain.Complete(b, now)
		},
		"",
	)
}

func (uc *UpdateBookingStatus) MarkNoShow(
	ctx context.Context,
	garageID uint,
	actorID uint,
	bookingID uint,
) (*models.Booking, error) {
	return uc.apply(ctx, garageID, actorID, bookingID, "booking_no_show",
		func(b *models.Booking, now time.Time) error {
			return domain.MarkNoShow(b, now)
		},
		"",
	)
}

func (uc *UpdateBookingStatus) apply(
	ctx context.Context,
	garageID uint,
	actorID uint,
	bookingID uint,
	action string,
	transition func(*models.Booking, time.Time) error,
	notifyKind string,
) (*models.Booking, error) {

	garage, err := uc.repo.GetGarageByID(ctx, garageID)
	if err != nil {
		return nil, err
	}

	b, err := uc.repo.GetBookingForGarage(ctx, bookingID, garageID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	now := timezone.NowIn(garage.Timezone)
	if err := transition(b, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		GarageID: garageID,
		UserID:   &actorID,
		Action:   action,
		Entity:   "booking",
		EntityID: &b.ID,
	})

	if notifyKind != "" {
		uc.notifier.Dispatch(notify.Event{
			UserID: b.DriverID,
			Kind:   notifyKind,
			Data: map[string]any{
				"reference": b.Reference,
				"garage":    garage.Name,
			},
		})
	}

	return b, nil
}
