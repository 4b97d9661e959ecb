package workdays

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidRange = errors.New("range end is before its start")
var ErrOverrideNotFound = errors.New("calendar override not found")
var ErrInvalidDayKind = errors.New("invalid day kind")

// DayKind is the kind of exception a calendar override makes to the regular week.
type DayKind string

const (
	Holiday       DayKind = "HL"
	Shortened     DayKind = "SH"
	ForcedWorkday DayKind = "WK"
)

func (k DayKind) Valid() bool {
	switch k {
	case Holiday, Shortened, ForcedWorkday:
		return true
	}
	return false
}

func (k DayKind) String() string {
	switch k {
	case Holiday:
		return "Holiday"
	case Shortened:
		return "Shortened"
	case ForcedWorkday:
		return "Workday"
	}
	return string(k)
}

// Override replaces the default classification of a single date.
type Override struct {
	Date    time.Time
	Kind    DayKind
	Label   string
	Comment string
}

type Settings struct {
	StandardHours int
	Weekend       []time.Weekday
}

func DefaultSettings() Settings {
	return Settings{
		StandardHours: 8,
		Weekend:       []time.Weekday{time.Saturday, time.Sunday},
	}
}

// NewSettings builds settings from configuration values, weekend days given by English weekday names.
func NewSettings(standardHours int, weekend []string) (Settings, error) {
	settings := Settings{StandardHours: standardHours}
	for _, name := range weekend {
		day, err := parseWeekday(name)
		if err != nil {
			return Settings{}, err
		}
		settings.Weekend = append(settings.Weekend, day)
	}
	return settings, nil
}

func (s Settings) IsWeekend(date time.Time) bool {
	for _, day := range s.Weekend {
		if date.Weekday() == day {
			return true
		}
	}
	return false
}

func parseWeekday(name string) (time.Weekday, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.ToLower(day.String()) == name {
			return day, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// WorkingTime is the reduction of a date range to its working days, days off and hours.
type WorkingTime struct {
	Workdays    int
	NonWorkdays int
	Hours       int
}

func (w WorkingTime) Add(other WorkingTime) WorkingTime {
	return WorkingTime{
		Workdays:    w.Workdays + other.Workdays,
		NonWorkdays: w.NonWorkdays + other.NonWorkdays,
		Hours:       w.Hours + other.Hours,
	}
}

// Days is the number of calendar days covered.
func (w WorkingTime) Days() int {
	return w.Workdays + w.NonWorkdays
}
