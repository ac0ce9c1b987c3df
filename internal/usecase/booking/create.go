package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/motmatch/mot-marketplace/internal/audit"
	domain "github.com/motmatch/mot-marketplace/internal/domain/booking"
	"github.com/motmatch/mot-marketplace/internal/domain/schedule"
	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/notify"
	"github.com/motmatch/mot-marketplace/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	GarageID  uint
	DriverID  uint
	VehicleID uint

	ServiceIDs []uint

	Date  string
	Time  string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier *notify.Dispatcher
}

func NewCreateBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Dispatcher,
) *CreateBooking {
	return &CreateBooking{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	// --------------------------------------------------
	// Garage must be approved and visible to drivers
	// --------------------------------------------------
	garage, err := uc.repo.GetGarageByID(ctx, in.GarageID)
	if err != nil {
		return nil, httperr.ErrBusiness("garage_not_found")
	}
	if garage.Status != models.GarageStatusApproved {
		return nil, httperr.ErrBusiness("garage_not_available")
	}

	visible, err := uc.repo.HasVisibleSubscription(ctx, in.GarageID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, httperr.ErrBusiness("garage_not_available")
	}

	// --------------------------------------------------
	// Date / time in the garage timezone
	// --------------------------------------------------
	loc := timezone.Location(garage.Timezone)
	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		loc,
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	// --------------------------------------------------
	// Minimum advance window
	// --------------------------------------------------
	minAdvance := garage.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = 60
	}

	now := timezone.NowIn(garage.Timezone)
	if start.Before(now.Add(time.Duration(minAdvance) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	// --------------------------------------------------
	// Vehicle must belong to the driver
	// --------------------------------------------------
	vehicle, err := uc.repo.GetVehicleForDriver(ctx, in.VehicleID, in.DriverID)
	if err != nil {
		return nil, httperr.ErrBusiness("vehicle_not_found")
	}

	// --------------------------------------------------
	// Services
	// --------------------------------------------------
	if len(in.ServiceIDs) == 0 {
		return nil, httperr.ErrBusiness("no_services_selected")
	}

	var services []models.GarageService
	for _, id := range in.ServiceIDs {
		svc, err := uc.repo.GetService(ctx, in.GarageID, id)
		if err != nil || !svc.Active {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		services = append(services, *svc)
	}

	// --------------------------------------------------
	// The requested time must be a template slot
	// --------------------------------------------------
	pattern, _ := uc.repo.GetPatternForWeekday(
		ctx,
		in.GarageID,
		int(start.Weekday()),
	)
	exc, _ := uc.repo.GetException(ctx, in.GarageID, in.Date)

	daySlots := schedule.ExpandDay(pattern, exc, start, loc)
	var end time.Time
	found := false
	for _, s := range daySlots {
		if s.Start.Equal(start) {
			end = s.End
			found = true
			break
		}
	}
	if !found {
		return nil, httperr.ErrBusiness("outside_schedule")
	}

	// --------------------------------------------------
	// Claim the slot (race-protected)
	// --------------------------------------------------
	booking, err := uc.repo.BookSlot(ctx, domain.BookSlotInput{
		Reference: uuid.NewString(),
		GarageID:  in.GarageID,
		DriverID:  in.DriverID,
		VehicleID: in.VehicleID,
		SlotStart: start,
		SlotEnd:   end,
		Services:  services,
		Notes:     in.Notes,
	})
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Audit + notifications
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		GarageID: in.GarageID,
		UserID:   &in.DriverID,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: &booking.ID,
	})

	uc.notifier.Dispatch(notify.Event{
		UserID: in.DriverID,
		Kind:   notify.KindBookingCreated,
		Data: map[string]any{
			"reference":    booking.Reference,
			"garage":       garage.Name,
			"registration": vehicle.Registration,
			"start":        start.Format("2006-01-02 15:04"),
		},
	})

	return booking, nil
}
