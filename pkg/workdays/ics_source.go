package workdays

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	log "github.com/sirupsen/logrus"
)

const icsDateLayout = "20060102"

// ICSSource reads holidays from the all-day events of an iCalendar document.
type ICSSource struct {
	cal *ics.Calendar
}

func NewICSSource(r io.Reader) (*ICSSource, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}
	return &ICSSource{cal: cal}, nil
}

func (s *ICSSource) Name() string {
	return "ics"
}

func (s *ICSSource) Holidays(ctx context.Context, from, to time.Time) ([]Override, error) {
	var result []Override
	for _, evt := range s.cal.Events() {
		start, ok := icsDate(evt, ics.ComponentPropertyDtStart)
		if !ok {
			continue
		}
		end, ok := icsDate(evt, ics.ComponentPropertyDtEnd)
		if !ok {
			end = start.AddDate(0, 0, 1)
		}
		label := ""
		if summary := evt.GetProperty(ics.ComponentPropertySummary); summary != nil {
			label = strings.TrimSpace(summary.Value)
		}
		result = append(result, allDayHolidays(label, start, end, from, to)...)
	}
	return result, nil
}

// icsDate reads a date-only property; timed events are not holidays.
func icsDate(evt *ics.VEvent, property ics.ComponentProperty) (time.Time, bool) {
	prop := evt.GetProperty(property)
	if prop == nil || len(prop.Value) != len(icsDateLayout) {
		return time.Time{}, false
	}
	date, err := time.ParseInLocation(icsDateLayout, prop.Value, time.UTC)
	if err != nil {
		log.Warnf("Skipping calendar event with invalid %s %q", property, prop.Value)
		return time.Time{}, false
	}
	return date, true
}
