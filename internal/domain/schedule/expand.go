package schedule

import (
	"time"

	"github.com/motmatch/mot-marketplace/internal/models"
)

type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

const defaultSlotMinutes = 60

func parseHM(hm string, date time.Time, loc *time.Location) time.Time {
	t, _ := time.Parse("15:04", hm)
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		loc,
	)
}

// ExpandDay turns the weekly pattern for one calendar date into concrete slot
// intervals, applying a date exception if present. An exception either closes
// the day outright or overrides the open/close window (break discarded).
func ExpandDay(
	pattern *models.SchedulePattern,
	exc *models.ScheduleException,
	date time.Time,
	loc *time.Location,
) []Interval {

	if exc != nil && exc.Closed {
		return nil
	}

	var open, close_ string
	slotMinutes := defaultSlotMinutes
	breakFrom, breakTo := "", ""

	if pattern != nil && pattern.Active {
		open, close_ = pattern.OpenTime, pattern.CloseTime
		breakFrom, breakTo = pattern.BreakFrom, pattern.BreakTo
		if pattern.SlotDurationMin > 0 {
			slotMinutes = pattern.SlotDurationMin
		}
	}

	if exc != nil && exc.OpenTime != "" && exc.CloseTime != "" {
		open, close_ = exc.OpenTime, exc.CloseTime
		breakFrom, breakTo = "", ""
	}

	if open == "" || close_ == "" {
		return nil
	}

	dayStart := parseHM(open, date, loc)
	dayEnd := parseHM(close_, date, loc)

	hasBreak := breakFrom != "" && breakTo != ""
	var breakStart, breakEnd time.Time
	if hasBreak {
		breakStart = parseHM(breakFrom, date, loc)
		breakEnd = parseHM(breakTo, date, loc)
	}

	step := time.Duration(slotMinutes) * time.Minute
	var out []Interval

	for cur := dayStart; cur.Add(step).Before(dayEnd) || cur.Add(step).Equal(dayEnd); cur = cur.Add(step) {
		slotStart := cur
		slotEnd := cur.Add(step)

		if hasBreak && slotStart.Before(breakEnd) && slotEnd.After(breakStart) {
			continue
		}

		out = append(out, Interval{Start: slotStart, End: slotEnd})
	}

	return out
}

// ExpandRange expands [from, to) day by day. Patterns are keyed by weekday,
// exceptions by YYYY-MM-DD in the garage's location.
func ExpandRange(
	patterns []models.SchedulePattern,
	exceptions []models.ScheduleException,
	from time.Time,
	to time.Time,
	loc *time.Location,
) []Interval {

	byWeekday := make(map[int]*models.SchedulePattern, len(patterns))
	for i := range patterns {
		byWeekday[patterns[i].Weekday] = &patterns[i]
	}

	byDate := make(map[string]*models.ScheduleException, len(exceptions))
	for i := range exceptions {
		byDate[exceptions[i].Date] = &exceptions[i]
	}

	var out []Interval

	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	for day.Before(to) {
		pattern := byWeekday[int(day.Weekday())]
		exc := byDate[day.Format("2006-01-02")]

		out = append(out, ExpandDay(pattern, exc, day, loc)...)
		day = day.AddDate(0, 0, 1)
	}

	return out
}

// Contains reports whether [start, end) is exactly one of the expanded slots.
// Bookings always claim a whole template slot, never a sub-interval.
func Contains(slots []Interval, start, end time.Time) bool {
	for _, s := range slots {
		if s.Start.Equal(start) && s.End.Equal(end) {
			return true
		}
	}
	return false
}
