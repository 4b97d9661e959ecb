package report

import (
	"slices"

	"github.com/shopspring/decimal"
)

// LoadUnavailable marks a load percent that could not be computed because the period has no norm.
const LoadUnavailable = -1.0

// Measures are the summable values of a report cell.
type Measures struct {
	Days   int
	Load   float64
	Volume float64
	Hours  float64
	Cost   decimal.Decimal
}

func (m Measures) Add(other Measures) Measures {
	cost := m.Cost
	if !other.Cost.IsZero() {
		cost = cost.Add(other.Cost)
	}
	return Measures{
		Days:   m.Days + other.Days,
		Load:   m.Load + other.Load,
		Volume: m.Volume + other.Volume,
		Hours:  m.Hours + other.Hours,
		Cost:   cost,
	}
}

func (m Measures) IsZero() bool {
	return m.Days == 0 && m.Load == 0 && m.Volume == 0 && m.Hours == 0 && m.Cost.IsZero()
}

// Record is one measured fact tagged with its group key and period.
type Record[K, P comparable] struct {
	Key      K
	Period   P
	Measures Measures
}

// Row holds the measures of one key aligned with the requested periods.
type Row[K, P comparable] struct {
	Key    K
	Values []Measures
	Total  Measures
}

type cell[K, P comparable] struct {
	key    K
	period P
}

// Aggregate sums records per key and period and lays each key out over periods.
// Periods without data hold zero measures, records of periods not listed are ignored.
// Rows are ordered by compare; an empty input gives no rows.
func Aggregate[K, P comparable](records []Record[K, P], periods []P, compare func(a, b K) int) []Row[K, P] {
	sums := make(map[cell[K, P]]Measures, len(records))
	var keys []K
	seen := make(map[K]struct{})
	for _, r := range records {
		c := cell[K, P]{r.Key, r.Period}
		sums[c] = sums[c].Add(r.Measures)
		if _, ok := seen[r.Key]; !ok {
			seen[r.Key] = struct{}{}
			keys = append(keys, r.Key)
		}
	}
	if compare != nil {
		slices.SortStableFunc(keys, compare)
	}

	rows := make([]Row[K, P], 0, len(keys))
	for _, key := range keys {
		row := Row[K, P]{Key: key, Values: make([]Measures, len(periods))}
		for i, period := range periods {
			row.Values[i] = sums[cell[K, P]{key, period}]
			row.Total = row.Total.Add(row.Values[i])
		}
		rows = append(rows, row)
	}
	return rows
}

// Totals sums records per period regardless of their key, zero-filling periods without data.
func Totals[K, P comparable](records []Record[K, P], periods []P) []Measures {
	sums := make(map[P]Measures, len(periods))
	for _, r := range records {
		sums[r.Period] = sums[r.Period].Add(r.Measures)
	}
	totals := make([]Measures, len(periods))
	for i, period := range periods {
		totals[i] = sums[period]
	}
	return totals
}

// NormLoad returns hours as a percent of the norm. A cell with hours but no positive norm
// gets LoadUnavailable; a cell without hours stays at zero.
func NormLoad(hours float64, norm float64, ok bool) float64 {
	if hours == 0 {
		return 0
	}
	if !ok || norm <= 0 {
		return LoadUnavailable
	}
	return hours / norm * 100
}
