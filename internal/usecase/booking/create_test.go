package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/motmatch/mot-marketplace/internal/audit"
	domain "github.com/motmatch/mot-marketplace/internal/domain/booking"
	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/notify"
	usecase "github.com/motmatch/mot-marketplace/internal/usecase/booking"
)

// ======================================================
// Fake repository
// ======================================================

type fakeRepo struct {
	garage  *models.Garage
	visible bool
	vehicle *models.Vehicle
	service *models.GarageService
	pattern *models.SchedulePattern

	bookSlotErr   error
	lastBookInput domain.BookSlotInput
}

func (f *fakeRepo) GetGarageByID(_ context.Context, id uint) (*models.Garage, error) {
	if f.garage == nil || f.garage.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.garage, nil
}

func (f *fakeRepo) GetGarageBySlug(_ context.Context, slug string) (*models.Garage, error) {
	if f.garage == nil || f.garage.Slug != slug {
		return nil, gorm.ErrRecordNotFound
	}
	return f.garage, nil
}

func (f *fakeRepo) HasVisibleSubscription(_ context.Context, _ uint) (bool, error) {
	return f.visible, nil
}

func (f *fakeRepo) GetService(_ context.Context, _ uint, id uint) (*models.GarageService, error) {
	if f.service == nil || f.service.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.service, nil
}

func (f *fakeRepo) GetVehicleForDriver(_ context.Context, vehicleID, driverID uint) (*models.Vehicle, error) {
	if f.vehicle == nil || f.vehicle.ID != vehicleID || f.vehicle.DriverID != driverID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.vehicle, nil
}

func (f *fakeRepo) GetPatternForWeekday(_ context.Context, _ uint, _ int) (*models.SchedulePattern, error) {
	if f.pattern == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.pattern, nil
}

func (f *fakeRepo) GetException(_ context.Context, _ uint, _ string) (*models.ScheduleException, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) BookSlot(_ context.Context, in domain.BookSlotInput) (*models.Booking, error) {
	f.lastBookInput = in
	if f.bookSlotErr != nil {
		return nil, f.bookSlotErr
	}

	return &models.Booking{
		ID:        1,
		Reference: in.Reference,
		GarageID:  in.GarageID,
		DriverID:  in.DriverID,
		VehicleID: in.VehicleID,
		Status:    string(domain.StatusPending),
	}, nil
}

func (f *fakeRepo) CancelBooking(_ context.Context, _ *models.Booking) error { return nil }

func (f *fakeRepo) ListOpenSlots(_ context.Context, _ uint, _, _ time.Time) ([]models.Slot, error) {
	return nil, nil
}

func (f *fakeRepo) ListSlots(_ context.Context, _ uint, _, _ time.Time) ([]models.Slot, error) {
	return nil, nil
}

func (f *fakeRepo) GetBookingForDriver(_ context.Context, _, _ uint) (*models.Booking, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetBookingForGarage(_ context.Context, _, _ uint) (*models.Booking, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateBooking(_ context.Context, _ *models.Booking) error { return nil }

func (f *fakeRepo) ListBookingsForDriver(_ context.Context, _ uint) ([]models.Booking, error) {
	return nil, nil
}

func (f *fakeRepo) ListBookingsForGarage(_ context.Context, _ uint, _, _ time.Time) ([]models.Booking, error) {
	return nil, nil
}

var _ domain.Repository = (*fakeRepo)(nil)

// ======================================================
// Helpers
// ======================================================

// testDispatchers builds real dispatchers over a connection that is never
// dialed. Their workers log delivery failures; the use case path under test
// does not depend on them succeeding.
func testDispatchers(t *testing.T) (*audit.Dispatcher, *notify.Dispatcher) {
	t.Helper()

	db, err := gorm.Open(
		postgres.Open("host=localhost port=1 user=test dbname=test sslmode=disable"),
		&gorm.Config{
			DisableAutomaticPing: true,
			Logger:               gormlogger.Discard,
		},
	)
	require.NoError(t, err)

	return audit.NewDispatcher(audit.New(db)), notify.NewDispatcher(db, noopMailer{})
}

type noopMailer struct{}

func (noopMailer) Send(_, _, _ string) error { return nil }

func happyRepo() *fakeRepo {
	return &fakeRepo{
		garage: &models.Garage{
			ID:                1,
			Slug:              "speedy-mots",
			Status:            models.GarageStatusApproved,
			Timezone:          "Europe/London",
			MinAdvanceMinutes: 60,
		},
		visible: true,
		vehicle: &models.Vehicle{ID: 5, DriverID: 9, Registration: "AB12CDE"},
		service: &models.GarageService{ID: 3, GarageID: 1, Name: "MOT Test", Active: true},
		pattern: &models.SchedulePattern{
			Active:          true,
			OpenTime:        "09:00",
			CloseTime:       "17:00",
			SlotDurationMin: 60,
		},
	}
}

func baseInput() usecase.CreateBookingInput {
	return usecase.CreateBookingInput{
		GarageID:   1,
		DriverID:   9,
		VehicleID:  5,
		ServiceIDs: []uint{3},
		Date:       "2030-01-07", // a Monday, far enough ahead of any clock
		Time:       "10:00",
	}
}

func assertBusinessCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, code), "expected %s, got %v", code, err)
}

// ======================================================
// Tests
// ======================================================

func TestCreateBooking(t *testing.T) {
	auditDisp, notifier := testDispatchers(t)
	ctx := context.Background()

	t.Run("books an open template slot", func(t *testing.T) {
		repo := happyRepo()
		uc := usecase.NewCreateBooking(repo, auditDisp, notifier)

		booking, err := uc.Execute(ctx, baseInput())

		require.NoError(t, err)
		assert.NotEmpty(t, booking.Reference)
		assert.Equal(t, string(domain.StatusPending), booking.Status)

		loc, _ := time.LoadLocation("Europe/London")
		assert.Equal(t, time.Date(2030, 1, 7, 10, 0, 0, 0, loc), repo.lastBookInput.SlotStart.In(loc))
		assert.Equal(t, time.Date(2030, 1, 7, 11, 0, 0, 0, loc), repo.lastBookInput.SlotEnd.In(loc))
		require.Len(t, repo.lastBookInput.Services, 1)
	})

	t.Run("rejects unapproved garage", func(t *testing.T) {
		repo := happyRepo()
		repo.garage.Status = models.GarageStatusPending
		uc := usecase.NewCreateBooking(repo, auditDisp, notifier)

		_, err := uc.Execute(ctx, baseInput())

		assertBusinessCode(t, err, "garage_not_available")
	})

	t.Run("rejects garage without live subscription", func(t *testing.T) {
		repo := happyRepo()
		repo.visible = false
		uc := usecase.NewCreateBooking(repo, auditDisp, notifier)

		_, err := uc.Execute(ctx, baseInput())

		assertBusinessCode(t, err, "garage_not_available")
	})

	t.Run("rejects a start inside the advance window", func(t *testing.T) {
		repo := happyRepo()
		uc := usecase.NewCreateBooking(repo, auditDisp, notifier)

		loc, _ := time.LoadLocation("Europe/London")
		soon := time.Now().In(loc).Add(30 * time.Minute)

		in := baseInput()
		in.Date = soon.Format("2006-01-02")
		in.Time = soon.Format("15:04")

		_, err := uc.Execute(ctx, in)

		assertBusinessCode(t, err, "too_soon")
	})

	t.Run("rejects someone else's vehicle", func(t *testing.T) {
		repo := happyRepo()
		repo.vehicle.DriverID = 77
		uc := usecase.NewCreateBooking(repo, auditDisp, notifier)

		_, err := uc.Execute(ctx, baseInput())

		assertBusinessCode(t, err, "vehicle_not_found")
	})

	t.Run("rejects inactive service", func(t *testing.T) {
		repo := happyRepo()
		repo.service.Active = false
		uc := usecase.NewCreateBooking(repo, auditDisp, notifier)

		_, err := uc.Execute(ctx, baseInput())

		assertBusinessCode(t, err, "service_not_found")
	})

	t.Run("rejects empty service selection", func(t *testing.T) {
		repo := happyRepo()
		uc := usecase.NewCreateBooking(repo, auditDisp, notifier)

		in := baseInput()
		in.ServiceIDs = nil

		_, err := uc.Execute(ctx, in)

		assertBusinessCode(t, err, "no_services_selected")
	})

	t.Run("rejects a time that is not a template slot", func(t *testing.T) {
		repo := happyRepo()
		uc := usecase.NewCreateBooking(repo, auditDisp, notifier)

		in := baseInput()
		in.Time = "10:30" // slots run on the hour

		_, err := uc.Execute(ctx, in)

		assertBusinessCode(t, err, "outside_schedule")
	})

	t.Run("propagates a lost slot race", func(t *testing.T) {
		repo := happyRepo()
		repo.bookSlotErr = httperr.ErrBusiness("slot_taken")
		uc := usecase.NewCreateBooking(repo, auditDisp, notifier)

		_, err := uc.Execute(ctx, baseInput())

		assertBusinessCode(t, err, "slot_taken")
	})
}
