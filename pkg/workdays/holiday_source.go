package workdays

import (
	"context"
	"time"
)

// HolidaySource provides public holidays from an external calendar.
type HolidaySource interface {
	Name() string
	// Holidays returns one Holiday override per day off between from and to inclusive.
	Holidays(ctx context.Context, from, to time.Time) ([]Override, error)
}

// allDayHolidays expands an all-day event with an exclusive end into one override per date
// that falls within [from, to].
func allDayHolidays(label string, start, end, from, to time.Time) []Override {
	if !end.After(start) {
		end = start.AddDate(0, 0, 1)
	}
	var result []Override
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if d.Before(from) || d.After(to) {
			continue
		}
		result = append(result, Override{Date: d, Kind: Holiday, Label: label})
	}
	return result
}
