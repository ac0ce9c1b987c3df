package booking

import (
	"context"
	"time"

	domain "github.com/motmatch/mot-marketplace/internal/domain/booking"
	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/timezone"
)

type ListDriverBookings struct {
	repo domain.Repository
}

func NewListDriverBookings(repo domain.Repository) *ListDriverBookings {
	return &ListDriverBookings{repo: repo}
}

func (uc *ListDriverBookings) Execute(
	ctx context.Context,
	driverID uint,
) ([]models.Booking, error) {
	return uc.repo.ListBookingsForDriver(ctx, driverID)
}

type ListGarageBookings struct {
	repo domain.Repository
}

func NewListGarageBookings(repo domain.Repository) *ListGarageBookings {
	return &ListGarageBookings{repo: repo}
}

// ExecuteByDate lists the garage's bookings for one calendar day in its own
// timezone, ordered by slot start.
func (uc *ListGarageBookings) ExecuteByDate(
	ctx context.Context,
	garageID uint,
	date string,
) ([]models.Booking, error) {

	garage, err := uc.repo.GetGarageByID(ctx, garageID)
	if err != nil {
		return nil, httperr.ErrBusiness("garage_not_found")
	}

	loc := timezone.Location(garage.Timezone)
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	return uc.repo.ListBookingsForGarage(ctx, garageID, day, day.AddDate(0, 0, 1))
}

func (uc *ListGarageBookings) ExecuteByRange(
	ctx context.Context,
	garageID uint,
	from time.Time,
	to time.Time,
) ([]models.Booking, error) {
	return uc.repo.ListBookingsForGarage(ctx, garageID, from, to)
}
