package report

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/primetver/pplan/internal/utils"
	"github.com/primetver/pplan/pkg/booking"
	"github.com/primetver/pplan/pkg/jira"
	"github.com/primetver/pplan/pkg/staff"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	defaultColumns = 18
	// monthsBack is how many months before the current one the default report window starts.
	monthsBack = 6
)

type BookingSource interface {
	Bookings(ctx context.Context, filter booking.BookingFilter) ([]booking.Booking, error)
}

type NormSource interface {
	MonthNorms(ctx context.Context, months []time.Time) (map[time.Time]float64, error)
}

type Options struct {
	// Statuses of the assignments taken into account, planned ones when empty.
	Statuses []booking.Status
	// Year selects the months from its January, the window around the current month otherwise.
	Year int
}

type EmployeeReport struct {
	Employee staff.Employee
	Report
}

type Service struct {
	bookings  BookingSource
	directory staff.Directory
	jira      jira.Client
	norms     NormSource
	columns   int
	clock     utils.Clock
}

func NewService(
	bookings BookingSource,
	directory staff.Directory,
	jiraClient jira.Client,
	norms NormSource,
	columns int,
	clock utils.Clock,
) *Service {
	if columns <= 0 {
		columns = defaultColumns
	}
	return &Service{
		bookings:  bookings,
		directory: directory,
		jira:      jiraClient,
		norms:     norms,
		columns:   columns,
		clock:     clock,
	}
}

// Months returns the report columns: from January of year when given, otherwise starting
// monthsBack months before the current month.
func (s *Service) Months(year int) []time.Time {
	from := utils.MonthOf(s.clock.Now()).AddDate(0, -monthsBack, 0)
	if year > 0 {
		from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	months := make([]time.Time, 0, s.columns)
	for i := 0; i < s.columns; i++ {
		months = append(months, from.AddDate(0, i, 0))
	}
	return months
}

// Monthly reports the load and volume of every employee per month.
func (s *Service) Monthly(ctx context.Context, opts Options) (Report, error) {
	months := s.Months(opts.Year)
	facts, _, err := s.bookingFacts(ctx, booking.BookingFilter{
		From:     months[0],
		To:       months[len(months)-1],
		Statuses: statusesOrDefault(opts.Statuses),
	})
	if err != nil {
		return Report{}, err
	}
	return Build(facts, Query{GroupBy: GroupByEmployee, Axis: AxisMonth, Periods: MonthPeriods(months)})
}

// Projects reports the load of every employee per project in one month, with the salary cost when withCost is set.
func (s *Service) Projects(ctx context.Context, month time.Time, statuses []booking.Status, withCost bool) (Report, error) {
	month = utils.MonthOf(month)
	facts, employees, err := s.bookingFacts(ctx, booking.BookingFilter{
		From:     month,
		To:       month,
		Statuses: statusesOrDefault(statuses),
	})
	if err != nil {
		return Report{}, err
	}
	if withCost {
		salaries, err := s.directory.SalariesAt(ctx, month)
		if err != nil {
			return Report{}, fmt.Errorf("failed to get salaries: %w", err)
		}
		for i := range facts {
			facts[i].Measures.Cost = cost(facts[i], employees, salaries)
		}
	}

	var projects []Key
	for _, f := range facts {
		if !slices.Contains(projects, f.Project) {
			projects = append(projects, f.Project)
		}
	}
	slices.SortFunc(projects, compareKeys)

	return Build(facts, Query{GroupBy: GroupByEmployee, Axis: AxisProject, Periods: ProjectPeriods(projects)})
}

// cost is the share of the monthly salary matching the load: load × salary × business_k / 100.
func cost(f Fact, employees map[int]staff.Employee, salaries map[int]decimal.Decimal) decimal.Decimal {
	employee, ok := employees[f.Employee.Id]
	salary, hasSalary := salaries[f.Employee.Id]
	if f.Employee.IsUnassigned() || !ok || !hasSalary {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f.Measures.Load).
		Mul(salary).
		Mul(decimal.NewFromFloat(employee.BusinessK)).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

// Employee reports the load of one employee per project and month with the monthly totals.
func (s *Service) Employee(ctx context.Context, employeeId int, opts Options) (EmployeeReport, error) {
	employees, err := s.directory.EmployeesByIds(ctx, []int{employeeId})
	if err != nil {
		return EmployeeReport{}, err
	}
	employee, ok := employees[employeeId]
	if !ok {
		return EmployeeReport{}, staff.ErrEmployeeNotFound
	}

	months := s.Months(opts.Year)
	facts, _, err := s.bookingFacts(ctx, booking.BookingFilter{
		From:       months[0],
		To:         months[len(months)-1],
		EmployeeId: employeeId,
		Statuses:   statusesOrDefault(opts.Statuses),
	})
	if err != nil {
		return EmployeeReport{}, err
	}
	report, err := Build(facts, Query{GroupBy: GroupByProject, Axis: AxisMonth, Periods: MonthPeriods(months), Totals: true})
	if err != nil {
		return EmployeeReport{}, err
	}
	return EmployeeReport{Employee: employee, Report: report}, nil
}

// Worklog reports the hours author logged in Jira per budget and month, with the load against
// the monthly norm of working hours.
func (s *Service) Worklog(ctx context.Context, author string, year int) (Report, error) {
	months := s.Months(year)
	worklogs, err := s.jira.Worklogs(ctx, author, months[0], utils.MonthEnd(months[len(months)-1]))
	if err != nil {
		return Report{}, fmt.Errorf("failed to get worklogs of %s: %w", author, err)
	}
	log.Debugf("Building worklog report of %s from %d worklogs", author, len(worklogs))

	budgets := make(map[string]Key)
	facts := make([]Fact, 0, len(worklogs))
	for _, w := range worklogs {
		budget, ok := budgets[w.IssueId]
		if !ok {
			name, err := s.jira.BudgetName(ctx, w.IssueId)
			if err != nil {
				return Report{}, fmt.Errorf("failed to resolve budget of issue %s: %w", w.IssueId, err)
			}
			budget = Key{Name: name}
			budgets[w.IssueId] = budget
		}
		facts = append(facts, Fact{
			Budget:   budget,
			Month:    utils.MonthOf(w.Started),
			Measures: Measures{Hours: w.Hours()},
		})
	}

	norms, err := s.norms.MonthNorms(ctx, months)
	if err != nil {
		return Report{}, fmt.Errorf("failed to get month norms: %w", err)
	}
	return Build(facts, Query{
		GroupBy: GroupByBudget,
		Axis:    AxisMonth,
		Periods: MonthPeriods(months),
		Totals:  true,
		Norms:   norms,
	})
}

// bookingFacts loads the monthly records matching filter and labels them with employee and project names.
// Records of employees or projects missing from the directory fall into the unassigned group.
func (s *Service) bookingFacts(ctx context.Context, filter booking.BookingFilter) ([]Fact, map[int]staff.Employee, error) {
	bookings, err := s.bookings.Bookings(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	var employeeIds, projectIds []int
	for _, b := range bookings {
		if !slices.Contains(employeeIds, b.EmployeeId) {
			employeeIds = append(employeeIds, b.EmployeeId)
		}
		if !slices.Contains(projectIds, b.ProjectId) {
			projectIds = append(projectIds, b.ProjectId)
		}
	}
	employees, err := s.directory.EmployeesByIds(ctx, employeeIds)
	if err != nil {
		return nil, nil, err
	}
	projects, err := s.directory.ProjectsByIds(ctx, projectIds)
	if err != nil {
		return nil, nil, err
	}

	facts := make([]Fact, 0, len(bookings))
	for _, b := range bookings {
		fact := Fact{
			Month: b.Month,
			Measures: Measures{
				Days:   b.DaysEngaged,
				Load:   b.EffectiveLoad,
				Volume: b.Volume,
			},
		}
		if e, ok := employees[b.EmployeeId]; ok {
			fact.Employee = Key{Id: e.Id, Name: e.FullName()}
		} else {
			log.Warnf("Employee %d of assignment %d not found, reported as unassigned", b.EmployeeId, b.AssignmentId)
		}
		if p, ok := projects[b.ProjectId]; ok {
			fact.Project = Key{Id: p.Id, Name: p.ShortName}
		} else {
			log.Warnf("Project %d of assignment %d not found, reported as unassigned", b.ProjectId, b.AssignmentId)
		}
		facts = append(facts, fact)
	}
	return facts, employees, nil
}

func statusesOrDefault(statuses []booking.Status) []booking.Status {
	if len(statuses) == 0 {
		return []booking.Status{booking.Planned}
	}
	return statuses
}
