package booking

import (
	"context"
	"time"

	domain "github.com/motmatch/mot-marketplace/internal/domain/booking"
	"github.com/motmatch/mot-marketplace/internal/domain/schedule"
	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/timezone"
)

type GetAvailability struct {
	repo domain.Repository
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo}
}

// Execute lists the open slots for one garage day: the schedule expansion
// minus template slots already materialized as booked or blocked.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	slug string,
	date time.Time,
) ([]schedule.Interval, error) {

	garage, err := uc.repo.GetGarageBySlug(ctx, slug)
	if err != nil {
		return nil, httperr.ErrBusiness("garage_not_found")
	}

	visible, err := uc.repo.HasVisibleSubscription(ctx, garage.ID)
	if err != nil {
		return nil, err
	}
	if garage.Status != models.GarageStatusApproved || !visible {
		return nil, httperr.ErrBusiness("garage_not_available")
	}

	loc := timezone.Location(garage.Timezone)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)

	pattern, _ := uc.repo.GetPatternForWeekday(ctx, garage.ID, int(day.Weekday()))
	exc, _ := uc.repo.GetException(ctx, garage.ID, day.Format("2006-01-02"))

	template := schedule.ExpandDay(pattern, exc, day, loc)
	if len(template) == 0 {
		return []schedule.Interval{}, nil
	}

	materialized, err := uc.repo.ListSlots(ctx, garage.ID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	unavailable := make(map[time.Time]bool, len(materialized))
	for _, s := range materialized {
		if s.Status != models.SlotStatusAvailable {
			unavailable[s.StartTime.In(loc)] = true
		}
	}

	now := timezone.NowIn(garage.Timezone)
	out := make([]schedule.Interval, 0, len(template))
	for _, s := range template {
		if s.Start.Before(now) || unavailable[s.Start] {
			continue
		}
		out = append(out, s)
	}

	return out, nil
}
