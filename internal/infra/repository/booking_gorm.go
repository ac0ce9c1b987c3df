package repository

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/motmatch/mot-marketplace/internal/domain/booking"
	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Garage
// --------------------------------------------------

func (r *BookingGormRepository) GetGarageByID(
	ctx context.Context,
	id uint,
) (*models.Garage, error) {

	var garage models.Garage
	if err := r.db.WithContext(ctx).First(&garage, id).Error; err != nil {
		return nil, err
	}
	return &garage, nil
}

func (r *BookingGormRepository) GetGarageBySlug(
	ctx context.Context,
	slug string,
) (*models.Garage, error) {

	var garage models.Garage
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&garage).Error; err != nil {
		return nil, err
	}
	return &garage, nil
}

func (r *BookingGormRepository) HasVisibleSubscription(
	ctx context.Context,
	garageID uint,
) (bool, error) {

	// Mirrors subscription.Visible: ACTIVE plus the PAST_DUE grace window.
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where(
			"garage_id = ? AND status IN ?",
			garageID,
			[]string{models.SubscriptionActive, models.SubscriptionPastDue},
		).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	garageID uint,
	serviceID uint,
) (*models.GarageService, error) {

	var svc models.GarageService
	if err := r.db.WithContext(ctx).
		Where("id = ? AND garage_id = ?", serviceID, garageID).
		First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// --------------------------------------------------
// Vehicle
// --------------------------------------------------

func (r *BookingGormRepository) GetVehicleForDriver(
	ctx context.Context,
	vehicleID uint,
	driverID uint,
) (*models.Vehicle, error) {

	var v models.Vehicle
	if err := r.db.WithContext(ctx).
		Where("id = ? AND driver_id = ?", vehicleID, driverID).
		First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// --------------------------------------------------
// Schedule
// --------------------------------------------------

func (r *BookingGormRepository) GetPatternForWeekday(
	ctx context.Context,
	garageID uint,
	weekday int,
) (*models.SchedulePattern, error) {

	var p models.SchedulePattern
	if err := r.db.WithContext(ctx).
		Where("garage_id = ? AND weekday = ?", garageID, weekday).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BookingGormRepository) GetException(
	ctx context.Context,
	garageID uint,
	date string,
) (*models.ScheduleException, error) {

	var e models.ScheduleException
	if err := r.db.WithContext(ctx).
		Where("garage_id = ? AND date = ?", garageID, date).
		First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// --------------------------------------------------
// Slot claim
// --------------------------------------------------

const (
	bookSlotMaxAttempts = 3
	bookSlotBackoffBase = 50 * time.Millisecond
)

// BookSlot claims the slot at (garage, start) and creates the booking with its
// lines in one serializable transaction. The slot row is inserted on first
// touch; the unique index on (garage_id, start_time) makes two concurrent
// first touches collide, and serializable isolation catches the
// read-then-claim race on an existing row. Both failure modes are retried
// with exponential backoff, anything else surfaces immediately.
func (r *BookingGormRepository) BookSlot(
	ctx context.Context,
	in domain.BookSlotInput,
) (*models.Booking, error) {

	var booked *models.Booking
	var err error

	for attempt := 0; attempt < bookSlotMaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := bookSlotBackoffBase << (attempt - 1)
			jitter := time.Duration(rand.Int63n(int64(backoff)))
			select {
			case <-time.After(backoff + jitter):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		booked, err = r.tryBookSlot(ctx, in)
		if err == nil || !isRetryableTxError(err) {
			return booked, err
		}
	}

	// All attempts lost the race: someone else holds the slot.
	return nil, httperr.ErrBusiness("slot_taken")
}

func (r *BookingGormRepository) tryBookSlot(
	ctx context.Context,
	in domain.BookSlotInput,
) (*models.Booking, error) {

	var booking models.Booking

	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var slot models.Slot
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("garage_id = ? AND start_time = ?", in.GarageID, in.SlotStart).
			First(&slot).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First touch: materialize the template slot inside the claim.
			slot = models.Slot{
				GarageID:  in.GarageID,
				StartTime: in.SlotStart,
				EndTime:   in.SlotEnd,
				Status:    models.SlotStatusAvailable,
			}
			if err := tx.Create(&slot).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		if slot.Status != models.SlotStatusAvailable {
			return httperr.ErrBusiness("slot_taken")
		}

		slot.Status = models.SlotStatusBooked
		if err := tx.Save(&slot).Error; err != nil {
			return err
		}

		booking = models.Booking{
			Reference: in.Reference,
			GarageID:  in.GarageID,
			DriverID:  in.DriverID,
			VehicleID: in.VehicleID,
			SlotID:    slot.ID,
			Status:    string(domain.InitialStatus()),
			Notes:     in.Notes,
		}

		for _, svc := range in.Services {
			booking.Lines = append(booking.Lines, models.BookingLine{
				GarageServiceID: svc.ID,
				Name:            svc.Name,
				Amount:          svc.Price,
			})
			booking.Total = booking.Total.Add(svc.Price)
		}

		return tx.Create(&booking).Error

	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if txErr != nil {
		return nil, txErr
	}
	return &booking, nil
}

// isRetryableTxError matches Postgres serialization failures (40001),
// deadlocks (40P01) and unique-index races (23505).
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case "40001", "40P01", "23505":
		return true
	}
	return false
}

// CancelBooking saves the cancelled booking and releases its slot in one
// transaction: a failed release must never leave a cancelled booking holding
// a booked slot.
func (r *BookingGormRepository) CancelBooking(
	ctx context.Context,
	b *models.Booking,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(b).Error; err != nil {
			return err
		}

		return tx.Model(&models.Slot{}).
			Where("id = ? AND status = ?", b.SlotID, models.SlotStatusBooked).
			Update("status", models.SlotStatusAvailable).Error
	})
}

func (r *BookingGormRepository) ListOpenSlots(
	ctx context.Context,
	garageID uint,
	from time.Time,
	to time.Time,
) ([]models.Slot, error) {

	var slots []models.Slot
	if err := r.db.WithContext(ctx).
		Where(
			"garage_id = ? AND status = ? AND start_time >= ? AND start_time < ?",
			garageID, models.SlotStatusAvailable, from, to,
		).
		Order("start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *BookingGormRepository) ListSlots(
	ctx context.Context,
	garageID uint,
	from time.Time,
	to time.Time,
) ([]models.Slot, error) {

	var slots []models.Slot
	if err := r.db.WithContext(ctx).
		Where(
			"garage_id = ? AND start_time >= ? AND start_time < ?",
			garageID, from, to,
		).
		Order("start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}

	return slots, nil
}

// --------------------------------------------------
// Booking (state change)
// --------------------------------------------------

func (r *BookingGormRepository) GetBookingForDriver(
	ctx context.Context,
	bookingID uint,
	driverID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Slot").
		Where("id = ? AND driver_id = ?", bookingID, driverID).
		First(&b).Error; err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *BookingGormRepository) GetBookingForGarage(
	ctx context.Context,
	bookingID uint,
	garageID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Slot").
		Where("id = ? AND garage_id = ?", bookingID, garageID).
		First(&b).Error; err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *BookingGormRepository) ListBookingsForDriver(
	ctx context.Context,
	driverID uint,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Garage").
		Preload("Vehicle").
		Preload("Slot").
		Preload("Lines").
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingGormRepository) ListBookingsForGarage(
	ctx context.Context,
	garageID uint,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Vehicle").
		Preload("Slot").
		Preload("Lines").
		Joins("JOIN slots ON slots.id = bookings.slot_id").
		Where(
			"bookings.garage_id = ? AND slots.start_time >= ? AND slots.start_time < ?",
			garageID, start, end,
		).
		Order("slots.start_time ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}

	return bookings, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
