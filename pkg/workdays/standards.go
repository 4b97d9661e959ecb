package workdays

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/primetver/pplan/internal/utils"
)

// StandardsRow is one line of the yearly working time standards.
type StandardsRow struct {
	Name string
	From time.Time
	To   time.Time
	WorkingTime
}

// StandardsReport returns the working time of every month, every quarter and the whole year.
func (c *Calculator) StandardsReport(ctx context.Context, year int) ([]StandardsRow, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	overrides, err := c.loadOverrides(ctx, yearStart, yearEnd)
	if err != nil {
		return nil, err
	}

	rows := make([]StandardsRow, 0, 17)
	for month := yearStart; month.Year() == year; month = month.AddDate(0, 1, 0) {
		end := utils.MonthEnd(month)
		rows = append(rows, StandardsRow{
			Name:        month.Month().String(),
			From:        month,
			To:          end,
			WorkingTime: c.sum(overrides, month, end),
		})
	}
	for quarter := 0; quarter < 4; quarter++ {
		from := yearStart.AddDate(0, quarter*3, 0)
		to := from.AddDate(0, 3, -1)
		var wt WorkingTime
		for _, monthRow := range rows[quarter*3 : quarter*3+3] {
			wt = wt.Add(monthRow.WorkingTime)
		}
		rows = append(rows, StandardsRow{
			Name:        fmt.Sprintf("Q%d", quarter+1),
			From:        from,
			To:          to,
			WorkingTime: wt,
		})
	}
	var total WorkingTime
	for _, monthRow := range rows[:12] {
		total = total.Add(monthRow.WorkingTime)
	}
	rows = append(rows, StandardsRow{
		Name:        strconv.Itoa(year),
		From:        yearStart,
		To:          yearEnd,
		WorkingTime: total,
	})
	return rows, nil
}

// MonthNorms returns the expected work hours of each given month keyed by the first day of the month.
func (c *Calculator) MonthNorms(ctx context.Context, months []time.Time) (map[time.Time]float64, error) {
	norms := make(map[time.Time]float64, len(months))
	if len(months) == 0 {
		return norms, nil
	}
	first, last := utils.MonthOf(months[0]), utils.MonthOf(months[0])
	for _, m := range months {
		m = utils.MonthOf(m)
		if m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}
	overrides, err := c.loadOverrides(ctx, first, utils.MonthEnd(last))
	if err != nil {
		return nil, err
	}
	for _, m := range months {
		m = utils.MonthOf(m)
		norms[m] = float64(c.sum(overrides, m, utils.MonthEnd(m)).Hours)
	}
	return norms, nil
}
