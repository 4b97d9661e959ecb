package report

import (
	"cmp"
	"errors"
	"strings"
	"time"

	"github.com/primetver/pplan/internal/utils"
)

var (
	ErrInvalidQuery = errors.New("invalid report query")
)

// Key identifies an employee, a project or a budget in a report. The zero Key is the unassigned group
// collecting facts whose identity could not be resolved.
type Key struct {
	Id   int
	Name string
}

var Unassigned = Key{}

func (k Key) IsUnassigned() bool {
	return k == Unassigned
}

// compareKeys orders keys by name then id, the unassigned group last.
func compareKeys(a, b Key) int {
	switch {
	case a.IsUnassigned() && b.IsUnassigned():
		return 0
	case a.IsUnassigned():
		return 1
	case b.IsUnassigned():
		return -1
	}
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return cmp.Compare(a.Id, b.Id)
}

type Dimension int

const (
	GroupByEmployee Dimension = iota
	GroupByProject
	GroupByBudget
)

type Axis int

const (
	AxisMonth Axis = iota
	AxisProject
)

// Period is a report column: a month on the month axis, a project on the project axis.
type Period struct {
	Month   time.Time
	Project Key
}

func MonthPeriods(months []time.Time) []Period {
	periods := make([]Period, 0, len(months))
	for _, m := range months {
		periods = append(periods, Period{Month: utils.MonthOf(m)})
	}
	return periods
}

func ProjectPeriods(projects []Key) []Period {
	periods := make([]Period, 0, len(projects))
	for _, p := range projects {
		periods = append(periods, Period{Project: p})
	}
	return periods
}

// Fact is a measured month of work with every dimension it can be grouped by.
type Fact struct {
	Employee Key
	Project  Key
	Budget   Key
	Month    time.Time
	Measures Measures
}

type Query struct {
	GroupBy Dimension
	Axis    Axis
	Periods []Period
	// Totals adds the row summing every group per period.
	Totals bool
	// Norms are the expected hours per month. When set, the load of each month cell is recomputed
	// from its hours.
	Norms map[time.Time]float64
}

type Report struct {
	Periods []Period
	Rows    []Row[Key, Period]
	Totals  []Measures
}

// Build aggregates facts into rows grouped by one dimension and laid out over the query periods.
func Build(facts []Fact, query Query) (Report, error) {
	if query.Norms != nil && query.Axis != AxisMonth {
		return Report{}, errors.Join(ErrInvalidQuery, errors.New("norms apply to the month axis only"))
	}
	records := make([]Record[Key, Period], 0, len(facts))
	for _, f := range facts {
		record := Record[Key, Period]{Measures: f.Measures}
		switch query.GroupBy {
		case GroupByEmployee:
			record.Key = f.Employee
		case GroupByProject:
			record.Key = f.Project
		case GroupByBudget:
			record.Key = f.Budget
		default:
			return Report{}, errors.Join(ErrInvalidQuery, errors.New("unknown group"))
		}
		switch query.Axis {
		case AxisMonth:
			record.Period = Period{Month: utils.MonthOf(f.Month)}
		case AxisProject:
			record.Period = Period{Project: f.Project}
		default:
			return Report{}, errors.Join(ErrInvalidQuery, errors.New("unknown axis"))
		}
		records = append(records, record)
	}

	result := Report{
		Periods: query.Periods,
		Rows:    Aggregate(records, query.Periods, compareKeys),
	}
	if query.Totals {
		result.Totals = Totals(records, query.Periods)
	}
	if query.Norms != nil {
		normTotal, complete := 0.0, true
		for _, p := range query.Periods {
			norm, ok := query.Norms[p.Month]
			normTotal += norm
			complete = complete && ok
		}
		for i := range result.Rows {
			row := &result.Rows[i]
			applyNorms(row.Values, query.Periods, query.Norms)
			row.Total.Load = NormLoad(row.Total.Hours, normTotal, complete)
		}
		applyNorms(result.Totals, query.Periods, query.Norms)
	}
	return result, nil
}

func applyNorms(values []Measures, periods []Period, norms map[time.Time]float64) {
	for i := range values {
		norm, ok := norms[periods[i].Month]
		values[i].Load = NormLoad(values[i].Hours, norm, ok)
	}
}
