package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	domain "github.com/motmatch/mot-marketplace/internal/domain/booking"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/notify"
	"github.com/motmatch/mot-marketplace/internal/timezone"
)

// ReminderJob notifies drivers the day before their MOT. Runs once a day at
// 08:00 over tomorrow's window, so every booking is reminded exactly once.
type ReminderJob struct {
	db       *gorm.DB
	notifier *notify.Dispatcher
	cron     *cron.Cron
}

func NewReminderJob(db *gorm.DB, notifier *notify.Dispatcher) *ReminderJob {
	return &ReminderJob{
		db:       db,
		notifier: notifier,
		cron:     cron.New(),
	}
}

func (j *ReminderJob) Start() error {
	_, err := j.cron.AddFunc("0 8 * * *", func() {
		if err := j.run(context.Background()); err != nil {
			log.Printf("booking reminders failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	log.Println("booking reminder job started (daily 08:00)")
	return nil
}

func (j *ReminderJob) Stop() {
	j.cron.Stop()
}

func (j *ReminderJob) run(ctx context.Context) error {
	now := timezone.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, 1)
	to := from.AddDate(0, 0, 1)

	var bookings []models.Booking
	if err := j.db.WithContext(ctx).
		Preload("Garage").
		Preload("Slot").
		Joins("JOIN slots ON slots.id = bookings.slot_id").
		Where(
			"bookings.status IN ? AND slots.start_time >= ? AND slots.start_time < ?",
			[]string{string(domain.StatusPending), string(domain.StatusConfirmed)},
			from, to,
		).
		Find(&bookings).Error; err != nil {
		return err
	}

	for _, b := range bookings {
		loc := timezone.Location(b.Garage.Timezone)
		j.notifier.Dispatch(notify.Event{
			UserID: b.DriverID,
			Kind:   notify.KindBookingReminder,
			Data: map[string]any{
				"garage": b.Garage.Name,
				"start":  b.Slot.StartTime.In(loc).Format("15:04"),
			},
		})
	}

	return nil
}
