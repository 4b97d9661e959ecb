package workdays

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleSource reads holidays from a public Google calendar, e.g. a national holiday calendar.
type GoogleSource struct {
	service    *gcal.Service
	calendarId string
}

func NewGoogleSource(ctx context.Context, calendarId string, opts ...option.ClientOption) (*GoogleSource, error) {
	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		err := fmt.Errorf("unable to create Google Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return &GoogleSource{service: service, calendarId: calendarId}, nil
}

func (s *GoogleSource) Name() string {
	return "google:" + s.calendarId
}

func (s *GoogleSource) Holidays(ctx context.Context, from, to time.Time) ([]Override, error) {
	var result []Override
	call := s.service.Events.List(s.calendarId).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.AddDate(0, 0, 1).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	err := call.Pages(ctx, func(events *gcal.Events) error {
		for _, item := range events.Items {
			if item.Start == nil || item.Start.Date == "" {
				continue
			}
			start, err := time.ParseInLocation(time.DateOnly, item.Start.Date, time.UTC)
			if err != nil {
				log.Warnf("Skipping Google event %s with invalid start date %q", item.Id, item.Start.Date)
				continue
			}
			end := start.AddDate(0, 0, 1)
			if item.End != nil && item.End.Date != "" {
				if parsed, err := time.ParseInLocation(time.DateOnly, item.End.Date, time.UTC); err == nil {
					end = parsed
				}
			}
			result = append(result, allDayHolidays(item.Summary, start, end, from, to)...)
		}
		return nil
	})
	if err != nil {
		err := fmt.Errorf("unable to list Google Calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	return result, nil
}
