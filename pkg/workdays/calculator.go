package workdays

import (
	"context"
	"fmt"
	"time"

	"github.com/primetver/pplan/internal/utils"
)

// Calendar is the store of date overrides.
type Calendar interface {
	// GetOverride returns nil without an error when the date has no override.
	GetOverride(ctx context.Context, date time.Time) (*Override, error)
	GetOverrides(ctx context.Context, from, to time.Time) ([]Override, error)
}

type Calculator struct {
	calendar Calendar
	settings Settings
}

func NewCalculator(calendar Calendar, settings Settings) *Calculator {
	return &Calculator{
		calendar: calendar,
		settings: settings,
	}
}

func (c *Calculator) Settings() Settings {
	return c.settings
}

// Compute classifies every date of the inclusive range and sums the result.
func (c *Calculator) Compute(ctx context.Context, from, to time.Time) (WorkingTime, error) {
	overrides, err := c.loadOverrides(ctx, from, to)
	if err != nil {
		return WorkingTime{}, err
	}
	return c.sum(overrides, utils.DateOf(from), utils.DateOf(to)), nil
}

func (c *Calculator) WorkdayCount(ctx context.Context, from, to time.Time) (int, error) {
	wt, err := c.Compute(ctx, from, to)
	return wt.Workdays, err
}

func (c *Calculator) NonWorkdayCount(ctx context.Context, from, to time.Time) (int, error) {
	wt, err := c.Compute(ctx, from, to)
	return wt.NonWorkdays, err
}

func (c *Calculator) WorkHours(ctx context.Context, from, to time.Time) (int, error) {
	wt, err := c.Compute(ctx, from, to)
	return wt.Hours, err
}

// Classify returns the contribution of a single date.
func (c *Calculator) Classify(ctx context.Context, date time.Time) (WorkingTime, error) {
	date = utils.DateOf(date)
	override, err := c.calendar.GetOverride(ctx, date)
	if err != nil {
		return WorkingTime{}, fmt.Errorf("failed to get override for %s: %w", date.Format(time.DateOnly), err)
	}
	return c.classify(date, override), nil
}

// Days is the number of calendar days in the inclusive range.
func Days(from, to time.Time) (int, error) {
	from, to = utils.DateOf(from), utils.DateOf(to)
	if to.Before(from) {
		return 0, ErrInvalidRange
	}
	return int(to.Sub(from).Hours()/24) + 1, nil
}

func (c *Calculator) classify(date time.Time, override *Override) WorkingTime {
	if override != nil {
		switch override.Kind {
		case Holiday:
			return WorkingTime{NonWorkdays: 1}
		case Shortened:
			return WorkingTime{Workdays: 1, Hours: c.settings.StandardHours - 1}
		case ForcedWorkday:
			return WorkingTime{Workdays: 1, Hours: c.settings.StandardHours}
		}
	}
	if c.settings.IsWeekend(date) {
		return WorkingTime{NonWorkdays: 1}
	}
	return WorkingTime{Workdays: 1, Hours: c.settings.StandardHours}
}

// overrideIndex maps dates of a loaded range to their overrides.
type overrideIndex map[time.Time]*Override

func (c *Calculator) loadOverrides(ctx context.Context, from, to time.Time) (overrideIndex, error) {
	from, to = utils.DateOf(from), utils.DateOf(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%s..%s: %w", from.Format(time.DateOnly), to.Format(time.DateOnly), ErrInvalidRange)
	}
	overrides, err := c.calendar.GetOverrides(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get overrides: %w", err)
	}
	index := make(overrideIndex, len(overrides))
	for i := range overrides {
		index[utils.DateOf(overrides[i].Date)] = &overrides[i]
	}
	return index, nil
}

// sum expects from and to to be normalized dates within the loaded index range.
func (c *Calculator) sum(overrides overrideIndex, from, to time.Time) WorkingTime {
	var total WorkingTime
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		total = total.Add(c.classify(d, overrides[d]))
	}
	return total
}
