package workdays

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestCalculator_Compute(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		overrides []Override
		from      time.Time
		to        time.Time
		expected  WorkingTime
	}{
		{
			name:     "regular week",
			from:     date(2024, 1, 1),
			to:       date(2024, 1, 5),
			expected: WorkingTime{Workdays: 5, NonWorkdays: 0, Hours: 40},
		},
		{
			name:     "week with weekend",
			from:     date(2024, 1, 1),
			to:       date(2024, 1, 7),
			expected: WorkingTime{Workdays: 5, NonWorkdays: 2, Hours: 40},
		},
		{
			name:      "holiday on monday",
			overrides: []Override{{Date: date(2024, 1, 1), Kind: Holiday, Label: "New Year"}},
			from:      date(2024, 1, 1),
			to:        date(2024, 1, 5),
			expected:  WorkingTime{Workdays: 4, NonWorkdays: 1, Hours: 32},
		},
		{
			name:      "shortened friday",
			overrides: []Override{{Date: date(2024, 1, 5), Kind: Shortened}},
			from:      date(2024, 1, 1),
			to:        date(2024, 1, 5),
			expected:  WorkingTime{Workdays: 5, NonWorkdays: 0, Hours: 39},
		},
		{
			name:      "forced workday on saturday",
			overrides: []Override{{Date: date(2024, 1, 6), Kind: ForcedWorkday}},
			from:      date(2024, 1, 1),
			to:        date(2024, 1, 7),
			expected:  WorkingTime{Workdays: 6, NonWorkdays: 1, Hours: 48},
		},
		{
			name:     "single day",
			from:     date(2024, 1, 6),
			to:       date(2024, 1, 6),
			expected: WorkingTime{Workdays: 0, NonWorkdays: 1, Hours: 0},
		},
		{
			name:     "leap february",
			from:     date(2024, 2, 1),
			to:       date(2024, 2, 29),
			expected: WorkingTime{Workdays: 21, NonWorkdays: 8, Hours: 168},
		},
		{
			name:     "time of day is ignored",
			from:     time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC),
			to:       time.Date(2024, 1, 5, 1, 0, 0, 0, time.UTC),
			expected: WorkingTime{Workdays: 5, NonWorkdays: 0, Hours: 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			calculator := NewCalculator(NewRepositoryStub(tt.overrides...), DefaultSettings())

			// when
			result, err := calculator.Compute(ctx, tt.from, tt.to)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCalculator_Helpers(t *testing.T) {
	ctx := context.Background()
	calculator := NewCalculator(NewRepositoryStub(Override{Date: date(2024, 1, 1), Kind: Holiday}), DefaultSettings())
	from, to := date(2024, 1, 1), date(2024, 1, 7)

	workdays, err := calculator.WorkdayCount(ctx, from, to)
	require.NoError(t, err)
	nonWorkdays, err := calculator.NonWorkdayCount(ctx, from, to)
	require.NoError(t, err)
	hours, err := calculator.WorkHours(ctx, from, to)
	require.NoError(t, err)

	assert.Equal(t, 4, workdays)
	assert.Equal(t, 3, nonWorkdays)
	assert.Equal(t, 32, hours)
}

func TestCalculator_InvalidRange(t *testing.T) {
	calculator := NewCalculator(NewRepositoryStub(), DefaultSettings())

	_, err := calculator.Compute(context.Background(), date(2024, 1, 5), date(2024, 1, 1))

	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCalculator_StoreFailure(t *testing.T) {
	repo := NewRepositoryStub()
	repo.Err = errors.New("connection refused")
	calculator := NewCalculator(repo, DefaultSettings())

	_, err := calculator.Compute(context.Background(), date(2024, 1, 1), date(2024, 1, 5))

	assert.ErrorContains(t, err, "connection refused")
}

func TestCalculator_EveryDayIsCountedOnce(t *testing.T) {
	ctx := context.Background()
	calculator := NewCalculator(NewRepositoryStub(
		Override{Date: date(2024, 1, 1), Kind: Holiday},
		Override{Date: date(2024, 2, 22), Kind: Shortened},
		Override{Date: date(2024, 4, 27), Kind: ForcedWorkday},
		Override{Date: date(2024, 5, 9), Kind: Holiday},
	), DefaultSettings())

	ranges := [][2]time.Time{
		{date(2024, 1, 1), date(2024, 1, 1)},
		{date(2024, 1, 1), date(2024, 12, 31)},
		{date(2023, 12, 25), date(2024, 1, 14)},
		{date(2024, 4, 20), date(2024, 5, 20)},
		{date(2024, 2, 28), date(2024, 3, 1)},
	}
	for _, rng := range ranges {
		wt, err := calculator.Compute(ctx, rng[0], rng[1])
		require.NoError(t, err)
		days, err := Days(rng[0], rng[1])
		require.NoError(t, err)

		assert.Equal(t, days, wt.Workdays+wt.NonWorkdays, "range %v", rng)
		assert.Equal(t, days, wt.Days(), "range %v", rng)
	}
}

func TestCalculator_Classify(t *testing.T) {
	ctx := context.Background()
	calculator := NewCalculator(NewRepositoryStub(Override{Date: date(2024, 3, 7), Kind: Shortened}), DefaultSettings())

	shortened, err := calculator.Classify(ctx, date(2024, 3, 7))
	require.NoError(t, err)
	sunday, err := calculator.Classify(ctx, date(2024, 3, 10))
	require.NoError(t, err)

	assert.Equal(t, WorkingTime{Workdays: 1, Hours: 7}, shortened)
	assert.Equal(t, WorkingTime{NonWorkdays: 1}, sunday)
}

func TestCalculator_CustomWeekend(t *testing.T) {
	settings, err := NewSettings(7, []string{"Friday", "saturday"})
	require.NoError(t, err)
	calculator := NewCalculator(NewRepositoryStub(), settings)

	// Mon 2024-01-01 .. Sun 2024-01-07
	result, err := calculator.Compute(context.Background(), date(2024, 1, 1), date(2024, 1, 7))

	require.NoError(t, err)
	assert.Equal(t, WorkingTime{Workdays: 5, NonWorkdays: 2, Hours: 35}, result)
}

func TestNewSettings_UnknownWeekday(t *testing.T) {
	_, err := NewSettings(8, []string{"caturday"})

	assert.ErrorContains(t, err, "caturday")
}

func TestDays(t *testing.T) {
	days, err := Days(date(2024, 1, 1), date(2024, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, 366, days)

	_, err = Days(date(2024, 1, 2), date(2024, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)
}
