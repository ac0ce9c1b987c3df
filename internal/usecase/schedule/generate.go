package schedule

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/motmatch/mot-marketplace/internal/domain/schedule"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/timezone"
)

// GenerateSlots materializes template slots for every approved garage up to a
// rolling horizon. Inserts ignore conflicts on (garage_id, start_time), so
// the job is idempotent and never touches slots that bookings already claimed.
type GenerateSlots struct {
	db *gorm.DB
}

func NewGenerateSlots(db *gorm.DB) *GenerateSlots {
	return &GenerateSlots{db: db}
}

const DefaultHorizonDays = 28

func (uc *GenerateSlots) Execute(ctx context.Context, horizonDays int) error {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	var garages []models.Garage
	if err := uc.db.WithContext(ctx).
		Where("status = ?", models.GarageStatusApproved).
		Find(&garages).Error; err != nil {
		return err
	}

	for i := range garages {
		if err := uc.generateForGarage(ctx, &garages[i], horizonDays); err != nil {
			log.Printf("slot generation for garage %d: %v", garages[i].ID, err)
		}
	}

	return nil
}

func (uc *GenerateSlots) generateForGarage(
	ctx context.Context,
	garage *models.Garage,
	horizonDays int,
) error {

	loc := timezone.Location(garage.Timezone)
	now := time.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, horizonDays)

	var patterns []models.SchedulePattern
	if err := uc.db.WithContext(ctx).
		Where("garage_id = ? AND active = ?", garage.ID, true).
		Find(&patterns).Error; err != nil {
		return err
	}
	if len(patterns) == 0 {
		return nil
	}

	var exceptions []models.ScheduleException
	if err := uc.db.WithContext(ctx).
		Where(
			"garage_id = ? AND date >= ? AND date < ?",
			garage.ID, from.Format("2006-01-02"), to.Format("2006-01-02"),
		).
		Find(&exceptions).Error; err != nil {
		return err
	}

	intervals := domain.ExpandRange(patterns, exceptions, from, to, loc)
	if len(intervals) == 0 {
		return nil
	}

	slots := make([]models.Slot, 0, len(intervals))
	for _, iv := range intervals {
		slots = append(slots, models.Slot{
			GarageID:  garage.ID,
			StartTime: iv.Start,
			EndTime:   iv.End,
			Status:    models.SlotStatusAvailable,
		})
	}

	return uc.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&slots, 200).Error
}
