package booking

import (
	"context"
	"time"

	"github.com/motmatch/mot-marketplace/internal/models"
)

// BookSlotInput carries everything the transactional claim needs. The slot is
// addressed by (garage, start) rather than id so a not-yet-materialized
// template slot can be inserted and claimed in the same transaction.
type BookSlotInput struct {
	Reference string

	GarageID  uint
	DriverID  uint
	VehicleID uint

	SlotStart time.Time
	SlotEnd   time.Time

	Services []models.GarageService
	Notes    string
}

type Repository interface {
	// -------- Garage --------
	GetGarageByID(
		ctx context.Context,
		id uint,
	) (*models.Garage, error)

	GetGarageBySlug(
		ctx context.Context,
		slug string,
	) (*models.Garage, error)

	HasVisibleSubscription(
		ctx context.Context,
		garageID uint,
	) (bool, error)

	// -------- Service --------
	GetService(
		ctx context.Context,
		garageID uint,
		serviceID uint,
	) (*models.GarageService, error)

	// -------- Vehicle --------
	GetVehicleForDriver(
		ctx context.Context,
		vehicleID uint,
		driverID uint,
	) (*models.Vehicle, error)

	// -------- Schedule --------
	GetPatternForWeekday(
		ctx context.Context,
		garageID uint,
		weekday int,
	) (*models.SchedulePattern, error)

	GetException(
		ctx context.Context,
		garageID uint,
		date string,
	) (*models.ScheduleException, error)

	// -------- Slot claim (race-protected) --------
	BookSlot(
		ctx context.Context,
		in BookSlotInput,
	) (*models.Booking, error)

	// CancelBooking persists the cancelled booking and frees its slot in
	// the same transaction.
	CancelBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	ListOpenSlots(
		ctx context.Context,
		garageID uint,
		from time.Time,
		to time.Time,
	) ([]models.Slot, error)

	ListSlots(
		ctx context.Context,
		garageID uint,
		from time.Time,
		to time.Time,
	) ([]models.Slot, error)

	// -------- Booking (state change) --------
	GetBookingForDriver(
		ctx context.Context,
		bookingID uint,
		driverID uint,
	) (*models.Booking, error)

	GetBookingForGarage(
		ctx context.Context,
		bookingID uint,
		garageID uint,
	) (*models.Booking, error)

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	// -------- Listing --------
	ListBookingsForDriver(
		ctx context.Context,
		driverID uint,
	) ([]models.Booking, error)

	ListBookingsForGarage(
		ctx context.Context,
		garageID uint,
		start time.Time,
		end time.Time,
	) ([]models.Booking, error)
}
