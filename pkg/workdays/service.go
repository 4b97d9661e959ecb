package workdays

import (
	"context"
	"fmt"
	"time"

	"github.com/primetver/pplan/internal/event_bus"
	"github.com/primetver/pplan/internal/utils"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	repo       Repository
	calculator *Calculator
	eventBus   *event_bus.EventBus
}

func NewService(repo Repository, calculator *Calculator, eventBus *event_bus.EventBus) *Service {
	return &Service{
		repo:       repo,
		calculator: calculator,
		eventBus:   eventBus,
	}
}

func (s *Service) Calculator() *Calculator {
	return s.calculator
}

func (s *Service) GetOverride(ctx context.Context, date time.Time) (*Override, error) {
	return s.repo.GetOverride(ctx, utils.DateOf(date))
}

func (s *Service) ListOverrides(ctx context.Context, from, to time.Time) ([]Override, error) {
	from, to = utils.DateOf(from), utils.DateOf(to)
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	return s.repo.GetOverrides(ctx, from, to)
}

// SetOverride creates the override of a date or replaces the existing one.
func (s *Service) SetOverride(ctx context.Context, override Override) (Override, error) {
	if !override.Kind.Valid() {
		return Override{}, fmt.Errorf("%q: %w", override.Kind, ErrInvalidDayKind)
	}
	override.Date = utils.DateOf(override.Date)
	stored, err := s.repo.StoreOverride(ctx, override)
	if err != nil {
		return Override{}, fmt.Errorf("failed to store override: %w", err)
	}
	log.Debugf("Calendar override set: %s %s", stored.Date.Format(time.DateOnly), stored.Kind)

	if err := s.publishChanged(ctx, stored.Date); err != nil {
		return stored, err
	}
	return stored, nil
}

func (s *Service) DeleteOverride(ctx context.Context, date time.Time) error {
	date = utils.DateOf(date)
	if err := s.repo.DeleteOverride(ctx, date); err != nil {
		return err
	}
	log.Debugf("Calendar override removed: %s", date.Format(time.DateOnly))
	return s.publishChanged(ctx, date)
}

// ImportHolidays stores the holidays of the source within the range as overrides. Dates that
// already have an override are left untouched. It returns the number of overrides created.
func (s *Service) ImportHolidays(ctx context.Context, source HolidaySource, from, to time.Time) (int, error) {
	from, to = utils.DateOf(from), utils.DateOf(to)
	if to.Before(from) {
		return 0, ErrInvalidRange
	}
	holidays, err := source.Holidays(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to read holidays: %w", err)
	}

	var created []time.Time
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		for _, holiday := range holidays {
			holiday.Date = utils.DateOf(holiday.Date)
			if holiday.Date.Before(from) || holiday.Date.After(to) {
				continue
			}
			ok, err := repo.StoreOverrideIfAbsent(ctx, holiday)
			if err != nil {
				return err
			}
			if ok {
				created = append(created, holiday.Date)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import holidays: %w", err)
	}
	log.Infof("Imported %d of %d holidays from %s", len(created), len(holidays), source.Name())

	for _, date := range created {
		if err := s.publishChanged(ctx, date); err != nil {
			return len(created), err
		}
	}
	return len(created), nil
}

func (s *Service) publishChanged(ctx context.Context, date time.Time) error {
	if s.eventBus == nil {
		return nil
	}
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.CalendarOverrideChangedType, event_bus.CalendarOverrideChanged{Date: date}))
	if err != nil {
		return fmt.Errorf("calendar changed on %s but dependent records were not updated: %w", date.Format(time.DateOnly), err)
	}
	return nil
}
