package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	domain "github.com/motmatch/mot-marketplace/internal/domain/booking"
	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/models"
)

func TestIsRetryableTxError(t *testing.T) {
	t.Run("serialization failure", func(t *testing.T) {
		assert.True(t, isRetryableTxError(&pgconn.PgError{Code: "40001"}))
	})

	t.Run("deadlock", func(t *testing.T) {
		assert.True(t, isRetryableTxError(&pgconn.PgError{Code: "40P01"}))
	})

	t.Run("unique violation from a concurrent first touch", func(t *testing.T) {
		assert.True(t, isRetryableTxError(&pgconn.PgError{Code: "23505"}))
	})

	t.Run("wrapped errors are unwrapped", func(t *testing.T) {
		err := fmt.Errorf("claim slot: %w", &pgconn.PgError{Code: "40001"})
		assert.True(t, isRetryableTxError(err))
	})

	t.Run("other pg errors are not retried", func(t *testing.T) {
		assert.False(t, isRetryableTxError(&pgconn.PgError{Code: "23503"}))
		assert.False(t, isRetryableTxError(&pgconn.PgError{Code: "42P01"}))
	})

	t.Run("business errors are not retried", func(t *testing.T) {
		assert.False(t, isRetryableTxError(httperr.ErrBusiness("slot_taken")))
	})

	t.Run("plain errors are not retried", func(t *testing.T) {
		assert.False(t, isRetryableTxError(errors.New("connection reset")))
	})
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // one shared in-memory database, not one per connection

	require.NoError(t, db.AutoMigrate(&models.Slot{}, &models.Booking{}))
	return db
}

func seedBookedSlot(t *testing.T, db *gorm.DB, start time.Time, slotStatus string) (*models.Slot, *models.Booking) {
	t.Helper()

	slot := &models.Slot{
		GarageID:  1,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    slotStatus,
	}
	require.NoError(t, db.Create(slot).Error)

	b := &models.Booking{
		Reference: fmt.Sprintf("bk-%d", slot.ID),
		GarageID:  1,
		DriverID:  2,
		VehicleID: 3,
		SlotID:    slot.ID,
		Status:    string(domain.StatusConfirmed),
	}
	require.NoError(t, db.Create(b).Error)

	return slot, b
}

func TestCancelBooking(t *testing.T) {
	db := testDB(t)
	repo := NewBookingGormRepository(db)
	ctx := context.Background()

	now := time.Date(2030, 1, 6, 10, 0, 0, 0, time.UTC)

	t.Run("saves the booking and frees the slot together", func(t *testing.T) {
		slot, b := seedBookedSlot(t, db, now.AddDate(0, 0, 1), models.SlotStatusBooked)

		require.NoError(t, domain.Cancel(b, now))
		require.NoError(t, repo.CancelBooking(ctx, b))

		var savedBooking models.Booking
		require.NoError(t, db.First(&savedBooking, b.ID).Error)
		assert.Equal(t, string(domain.StatusCancelled), savedBooking.Status)
		require.NotNil(t, savedBooking.CancelledAt)

		var savedSlot models.Slot
		require.NoError(t, db.First(&savedSlot, slot.ID).Error)
		assert.Equal(t, models.SlotStatusAvailable, savedSlot.Status)
	})

	t.Run("never resurrects a blocked slot", func(t *testing.T) {
		slot, b := seedBookedSlot(t, db, now.AddDate(0, 0, 2), models.SlotStatusBlocked)

		require.NoError(t, domain.Cancel(b, now))
		require.NoError(t, repo.CancelBooking(ctx, b))

		var savedSlot models.Slot
		require.NoError(t, db.First(&savedSlot, slot.ID).Error)
		assert.Equal(t, models.SlotStatusBlocked, savedSlot.Status)
	})
}
