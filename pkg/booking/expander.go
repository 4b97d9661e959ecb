package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/primetver/pplan/internal/utils"
)

// WorkdayCounter counts the workdays of an inclusive date range.
type WorkdayCounter interface {
	WorkdayCount(ctx context.Context, from, to time.Time) (int, error)
}

type Expander struct {
	workdays WorkdayCounter
}

func NewExpander(workdays WorkdayCounter) *Expander {
	return &Expander{workdays: workdays}
}

// Expand produces one record per calendar month touched by the assignment.
func (e *Expander) Expand(ctx context.Context, a Assignment) ([]MonthlyRecord, error) {
	start, finish := utils.DateOf(a.StartDate), utils.DateOf(a.FinishDate)
	if finish.Before(start) {
		return nil, ErrInvalidRange
	}

	var records []MonthlyRecord
	for month := utils.MonthOf(start); !month.After(finish); month = month.AddDate(0, 1, 0) {
		monthEnd := utils.MonthEnd(month)
		clippedStart := start
		if clippedStart.Before(month) {
			clippedStart = month
		}
		clippedFinish := finish
		if clippedFinish.After(monthEnd) {
			clippedFinish = monthEnd
		}

		days, err := e.workdays.WorkdayCount(ctx, clippedStart, clippedFinish)
		if err != nil {
			return nil, fmt.Errorf("failed to count workdays of %s: %w", month.Format("2006-01"), err)
		}
		monthWorkdays, err := e.workdays.WorkdayCount(ctx, month, monthEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to count workdays of %s: %w", month.Format("2006-01"), err)
		}

		load := 0.0
		if monthWorkdays > 0 {
			load = float64(days) / float64(monthWorkdays) * a.LoadPercent
		}
		records = append(records, MonthlyRecord{
			AssignmentId:  a.Id,
			Month:         month,
			DaysEngaged:   days,
			EffectiveLoad: load,
			Volume:        Volume(days, a.LoadPercent),
		})
	}
	return records, nil
}
