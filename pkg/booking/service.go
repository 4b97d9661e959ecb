package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/primetver/pplan/internal/event_bus"
	"github.com/primetver/pplan/internal/utils"
	log "github.com/sirupsen/logrus"
)

type SaveOptions struct {
	// SkipDerivation stores the assignment without regenerating its monthly records.
	SkipDerivation bool
}

type Service interface {
	Save(ctx context.Context, a Assignment, opts SaveOptions) (Assignment, error)
	Get(ctx context.Context, id int) (Assignment, error)
	List(ctx context.Context, filter Filter) ([]Assignment, error)
	Delete(ctx context.Context, id int) error
	MonthlyRecords(ctx context.Context, id int) ([]MonthlyRecord, error)
	// Import stores the assignments in one transaction without deriving their monthly records.
	Import(ctx context.Context, assignments []Assignment) ([]Assignment, error)
	Regenerate(ctx context.Context, id int) error
	// RegenerateAll rebuilds the monthly records of every assignment and returns how many were rebuilt.
	RegenerateAll(ctx context.Context) (int, error)
	// RegenerateMonth rebuilds the monthly records of assignments overlapping the month of the date.
	// Every such record depends on the workday total of that month.
	RegenerateMonth(ctx context.Context, date time.Time) (int, error)
	MemberSummary(ctx context.Context, employeeId, projectId int, status Status) (Summary, error)
	Bookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
}

type ServiceImpl struct {
	repo     Repository
	expander *Expander
}

func NewService(repo Repository, expander *Expander, eventBus *event_bus.EventBus) *ServiceImpl {
	service := &ServiceImpl{repo: repo, expander: expander}
	if eventBus != nil {
		event_bus.SubscribeTyped[event_bus.CalendarOverrideChanged](
			eventBus,
			event_bus.CalendarOverrideChangedType,
			func(e event_bus.EventT[event_bus.CalendarOverrideChanged]) error {
				log.Debugf("received calendar override change for %s", e.Data.Date.Format(time.DateOnly))
				count, err := service.RegenerateMonth(e.Context(), e.Data.Date)
				if err != nil {
					log.Errorf("failed to regenerate monthly records: %v", err)
					return err
				}
				log.Debugf("regenerated monthly records of %d assignments", count)
				return nil
			},
		)
	}
	return service
}

func (s *ServiceImpl) Save(ctx context.Context, a Assignment, opts SaveOptions) (Assignment, error) {
	a = normalize(a)
	if err := a.Validate(); err != nil {
		return Assignment{}, err
	}

	var stored Assignment
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		var err error
		stored, err = repo.StoreAssignment(ctx, a)
		if err != nil {
			return err
		}
		if opts.SkipDerivation {
			return nil
		}
		return s.derive(ctx, repo, stored)
	})
	if err != nil {
		return Assignment{}, fmt.Errorf("failed to save assignment: %w", err)
	}
	log.Debugf("Assignment %d saved (derivation skipped: %t)", stored.Id, opts.SkipDerivation)
	return stored, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Assignment, error) {
	return s.repo.GetAssignment(ctx, id)
}

func (s *ServiceImpl) List(ctx context.Context, filter Filter) ([]Assignment, error) {
	return s.repo.ListAssignments(ctx, filter)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	return s.repo.DeleteAssignment(ctx, id)
}

func (s *ServiceImpl) MonthlyRecords(ctx context.Context, id int) ([]MonthlyRecord, error) {
	if _, err := s.repo.GetAssignment(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetMonthlyRecords(ctx, id)
}

func (s *ServiceImpl) Import(ctx context.Context, assignments []Assignment) ([]Assignment, error) {
	for i := range assignments {
		assignments[i] = normalize(assignments[i])
		if err := assignments[i].Validate(); err != nil {
			return nil, fmt.Errorf("assignment #%d: %w", i+1, err)
		}
	}

	stored := make([]Assignment, 0, len(assignments))
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		for _, a := range assignments {
			saved, err := repo.StoreAssignment(ctx, a)
			if err != nil {
				return err
			}
			stored = append(stored, saved)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import assignments: %w", err)
	}
	log.Infof("Imported %d assignments", len(stored))
	return stored, nil
}

func (s *ServiceImpl) Regenerate(ctx context.Context, id int) error {
	return s.repo.WithTransaction(ctx, func(repo Repository) error {
		a, err := repo.GetAssignment(ctx, id)
		if err != nil {
			return err
		}
		return s.derive(ctx, repo, a)
	})
}

func (s *ServiceImpl) RegenerateAll(ctx context.Context) (int, error) {
	return s.regenerate(ctx, Filter{})
}

func (s *ServiceImpl) RegenerateMonth(ctx context.Context, date time.Time) (int, error) {
	return s.regenerate(ctx, Filter{From: utils.MonthOf(date), To: utils.MonthEnd(date)})
}

func (s *ServiceImpl) regenerate(ctx context.Context, filter Filter) (int, error) {
	count := 0
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		assignments, err := repo.ListAssignments(ctx, filter)
		if err != nil {
			return err
		}
		for _, a := range assignments {
			if err := s.derive(ctx, repo, a); err != nil {
				return fmt.Errorf("assignment %d: %w", a.Id, err)
			}
		}
		count = len(assignments)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to regenerate monthly records: %w", err)
	}
	return count, nil
}

func (s *ServiceImpl) derive(ctx context.Context, repo Repository, a Assignment) error {
	records, err := s.expander.Expand(ctx, a)
	if err != nil {
		return fmt.Errorf("failed to expand assignment: %w", err)
	}
	return repo.ReplaceMonthlyRecords(ctx, a.Id, records)
}

// MemberSummary sums the assignments of an employee in a project with the given status. The percent is
// the volume related to the workdays between the earliest start and the latest finish.
func (s *ServiceImpl) MemberSummary(ctx context.Context, employeeId, projectId int, status Status) (Summary, error) {
	assignments, err := s.repo.ListAssignments(ctx, Filter{EmployeeId: employeeId, ProjectId: projectId, Status: status})
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{EmployeeId: employeeId, ProjectId: projectId}
	if len(assignments) == 0 {
		return summary, nil
	}

	summary.StartDate, summary.FinishDate = assignments[0].StartDate, assignments[0].FinishDate
	for _, a := range assignments {
		if a.StartDate.Before(summary.StartDate) {
			summary.StartDate = a.StartDate
		}
		if a.FinishDate.After(summary.FinishDate) {
			summary.FinishDate = a.FinishDate
		}
		days, err := s.expander.workdays.WorkdayCount(ctx, a.StartDate, a.FinishDate)
		if err != nil {
			return Summary{}, err
		}
		summary.Volume += Volume(days, a.LoadPercent)
	}
	summary.Workdays, err = s.expander.workdays.WorkdayCount(ctx, summary.StartDate, summary.FinishDate)
	if err != nil {
		return Summary{}, err
	}
	if summary.Workdays > 0 {
		summary.Percent = summary.Volume / float64(summary.Workdays) * 100
	}
	return summary, nil
}

func (s *ServiceImpl) Bookings(ctx context.Context, filter BookingFilter) ([]Booking, error) {
	filter.From, filter.To = utils.MonthOf(filter.From), utils.MonthOf(filter.To)
	if filter.To.Before(filter.From) {
		return nil, ErrInvalidRange
	}
	return s.repo.ListBookings(ctx, filter)
}

func normalize(a Assignment) Assignment {
	a.StartDate = utils.DateOf(a.StartDate)
	a.FinishDate = utils.DateOf(a.FinishDate)
	if a.Status == "" {
		a.Status = Planned
	}
	return a
}
