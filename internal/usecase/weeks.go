package usecase

import (
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
)

// WeekStart rolls t back to the most recent anchor weekday, at midnight in loc.
func WeekStart(t time.Time, anchor time.Weekday, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	back := (int(local.Weekday()) + 7 - int(anchor)) % 7
	day := local.AddDate(0, 0, -back)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
}

// WeekStarts lists every week start from the week holding earliest to the
// week holding latest, inclusive.
func WeekStarts(earliest, latest time.Time, anchor time.Weekday, loc *time.Location) []time.Time {
	first := WeekStart(earliest, anchor, loc)
	last := WeekStart(latest, anchor, loc)

	var out []time.Time
	for week := first; !week.After(last); week = week.AddDate(0, 0, 7) {
		out = append(out, week)
	}
	return out
}

// fixtureDateRange folds the earliest and latest fixture date, seeded by
// the first record that has one. ok is false when no record is dated.
func fixtureDateRange(records []fixture.Record) (earliest, latest time.Time, ok bool) {
	for _, record := range records {
		if !record.HasDate() {
			continue
		}
		if !ok {
			earliest, latest, ok = record.Date, record.Date, true
			continue
		}
		if record.Date.Before(earliest) {
			earliest = record.Date
		}
		if record.Date.After(latest) {
			latest = record.Date
		}
	}
	return earliest, latest, ok
}
