package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motmatch/mot-marketplace/internal/domain/schedule"
	"github.com/motmatch/mot-marketplace/internal/models"
)

func london(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	return loc
}

// 2026-01-05 is a Monday.
func monday(loc *time.Location) time.Time {
	return time.Date(2026, 1, 5, 0, 0, 0, 0, loc)
}

func TestExpandDay(t *testing.T) {
	loc := london(t)
	day := monday(loc)

	t.Run("full day without break", func(t *testing.T) {
		pattern := &models.SchedulePattern{
			Active:          true,
			OpenTime:        "09:00",
			CloseTime:       "12:00",
			SlotDurationMin: 60,
		}

		slots := schedule.ExpandDay(pattern, nil, day, loc)

		require.Len(t, slots, 3)
		assert.Equal(t, time.Date(2026, 1, 5, 9, 0, 0, 0, loc), slots[0].Start)
		assert.Equal(t, time.Date(2026, 1, 5, 10, 0, 0, 0, loc), slots[0].End)
		assert.Equal(t, time.Date(2026, 1, 5, 11, 0, 0, 0, loc), slots[2].Start)
	})

	t.Run("break removes overlapping slots", func(t *testing.T) {
		pattern := &models.SchedulePattern{
			Active:          true,
			OpenTime:        "09:00",
			CloseTime:       "17:00",
			BreakFrom:       "12:00",
			BreakTo:         "13:00",
			SlotDurationMin: 60,
		}

		slots := schedule.ExpandDay(pattern, nil, day, loc)

		require.Len(t, slots, 7)
		for _, s := range slots {
			assert.NotEqual(t, 12, s.Start.Hour(), "lunch slot should be removed")
		}
	})

	t.Run("45 minute slots do not spill past close", func(t *testing.T) {
		pattern := &models.SchedulePattern{
			Active:          true,
			OpenTime:        "09:00",
			CloseTime:       "11:00",
			SlotDurationMin: 45,
		}

		slots := schedule.ExpandDay(pattern, nil, day, loc)

		// 09:00-09:45 and 09:45-10:30; 10:30-11:15 would run past close.
		require.Len(t, slots, 2)
		assert.Equal(t, time.Date(2026, 1, 5, 10, 30, 0, 0, loc), slots[1].End)
	})

	t.Run("closed exception wins", func(t *testing.T) {
		pattern := &models.SchedulePattern{
			Active:    true,
			OpenTime:  "09:00",
			CloseTime: "17:00",
		}
		exc := &models.ScheduleException{Closed: true}

		slots := schedule.ExpandDay(pattern, exc, day, loc)

		assert.Empty(t, slots)
	})

	t.Run("exception overrides hours and discards break", func(t *testing.T) {
		pattern := &models.SchedulePattern{
			Active:          true,
			OpenTime:        "09:00",
			CloseTime:       "17:00",
			BreakFrom:       "12:00",
			BreakTo:         "13:00",
			SlotDurationMin: 60,
		}
		exc := &models.ScheduleException{
			OpenTime:  "10:00",
			CloseTime: "14:00",
		}

		slots := schedule.ExpandDay(pattern, exc, day, loc)

		require.Len(t, slots, 4)
		assert.Equal(t, time.Date(2026, 1, 5, 10, 0, 0, 0, loc), slots[0].Start)
		assert.Equal(t, time.Date(2026, 1, 5, 12, 0, 0, 0, loc), slots[2].Start)
	})

	t.Run("exception opens an otherwise closed day", func(t *testing.T) {
		exc := &models.ScheduleException{
			OpenTime:  "10:00",
			CloseTime: "12:00",
		}

		slots := schedule.ExpandDay(nil, exc, day, loc)

		require.Len(t, slots, 2)
	})

	t.Run("inactive pattern yields nothing", func(t *testing.T) {
		pattern := &models.SchedulePattern{
			Active:    false,
			OpenTime:  "09:00",
			CloseTime: "17:00",
		}

		assert.Empty(t, schedule.ExpandDay(pattern, nil, day, loc))
	})

	t.Run("no pattern yields nothing", func(t *testing.T) {
		assert.Empty(t, schedule.ExpandDay(nil, nil, day, loc))
	})
}

func TestExpandRange(t *testing.T) {
	loc := london(t)
	from := monday(loc)
	to := from.AddDate(0, 0, 7)

	patterns := []models.SchedulePattern{
		{Weekday: 1, Active: true, OpenTime: "09:00", CloseTime: "11:00", SlotDurationMin: 60},
		{Weekday: 3, Active: true, OpenTime: "09:00", CloseTime: "10:00", SlotDurationMin: 60},
	}
	exceptions := []models.ScheduleException{
		{Date: "2026-01-07", Closed: true}, // the Wednesday
	}

	slots := schedule.ExpandRange(patterns, exceptions, from, to, loc)

	// Monday contributes two slots, Wednesday is closed by exception.
	require.Len(t, slots, 2)
	for _, s := range slots {
		assert.Equal(t, time.Monday, s.Start.Weekday())
	}
}

func TestContains(t *testing.T) {
	loc := london(t)
	day := monday(loc)

	slots := []schedule.Interval{
		{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)},
		{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)},
	}

	assert.True(t, schedule.Contains(slots, day.Add(9*time.Hour), day.Add(10*time.Hour)))
	assert.False(t, schedule.Contains(slots, day.Add(9*time.Hour), day.Add(11*time.Hour)),
		"a booking must claim exactly one template slot")
	assert.False(t, schedule.Contains(slots, day.Add(11*time.Hour), day.Add(12*time.Hour)))
}
