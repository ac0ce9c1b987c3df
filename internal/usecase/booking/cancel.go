package booking

import (
	"context"

	"github.com/motmatch/mot-marketplace/internal/audit"
	domain "github.com/motmatch/mot-marketplace/internal/domain/booking"
	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/notify"
	"github.com/motmatch/mot-marketplace/internal/timezone"
)

// CancelBooking handles both actors: a driver cancelling their own booking and
// garage staff cancelling on the garage's behalf. Cancelling frees the slot.
type CancelBooking struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier *notify.Dispatcher
}

func NewCancelBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Dispatcher,
) *CancelBooking {
	return &CancelBooking{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
	}
}

func (uc *CancelBooking) ExecuteForDriver(
	ctx context.Context,
	driverID uint,
	bookingID uint,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingForDriver(ctx, bookingID, driverID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	return uc.cancel(ctx, b, driverID)
}

func (uc *CancelBooking) ExecuteForGarage(
	ctx context.Context,
	garageID uint,
	actorID uint,
	bookingID uint,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingForGarage(ctx, bookingID, garageID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	return uc.cancel(ctx, b, actorID)
}

func (uc *CancelBooking) cancel(
	ctx context.Context,
	b *models.Booking,
	actorID uint,
) (*models.Booking, error) {

	garage, err := uc.repo.GetGarageByID(ctx, b.GarageID)
	if err != nil {
		return nil, err
	}

	now := timezone.NowIn(garage.Timezone)
	if err := domain.Cancel(b, now); err != nil {
		return nil, err
	}

	if err := uc.repo.CancelBooking(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		GarageID: b.GarageID,
		UserID:   &actorID,
		Action:   "booking_cancelled",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	uc.notifier.Dispatch(notify.Event{
		UserID: b.DriverID,
		Kind:   notify.KindBookingCancelled,
		Data: map[string]any{
			"reference": b.Reference,
			"garage":    garage.Name,
		},
	})

	return b, nil
}
