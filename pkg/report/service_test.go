package report

import (
	"context"
	"testing"
	"time"

	"github.com/primetver/pplan/internal/utils"
	"github.com/primetver/pplan/pkg/booking"
	"github.com/primetver/pplan/pkg/jira"
	"github.com/primetver/pplan/pkg/staff"
	"github.com/primetver/pplan/pkg/workdays"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()
var clock = &utils.MockClock{FixedNow: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}

var (
	staffService *staff.Service
	jiraStub     *jira.ClientStub
	service      *Service
)

type fixture struct {
	ivanov, petrov staff.Employee
	erp, crm       staff.Project
}

func setup(t *testing.T) (fixture, func()) {
	staffService = staff.NewService(staff.NewRepositoryStub())
	calculator := workdays.NewCalculator(workdays.NewRepositoryStub(), workdays.DefaultSettings())
	bookingService := booking.NewService(booking.NewRepositoryStub(), booking.NewExpander(calculator), nil)
	jiraStub = jira.NewClientStub()
	service = NewService(bookingService, staffService, jiraStub, calculator, 18, clock)

	var f fixture
	var err error
	f.ivanov, err = staffService.CreateEmployee(ctx, staff.Employee{LastName: "Ivanov", FirstName: "Ivan", HireDate: date(2020, 1, 1), BusinessK: 0.5})
	require.NoError(t, err)
	f.petrov, err = staffService.CreateEmployee(ctx, staff.Employee{LastName: "Petrov", FirstName: "Petr", HireDate: date(2020, 1, 1), BusinessK: 1})
	require.NoError(t, err)
	f.erp, err = staffService.CreateProject(ctx, staff.Project{ShortName: "ERP", StartDate: date(2020, 1, 1)})
	require.NoError(t, err)
	f.crm, err = staffService.CreateProject(ctx, staff.Project{ShortName: "CRM", StartDate: date(2020, 1, 1)})
	require.NoError(t, err)
	_, err = staffService.SetSalary(ctx, staff.Salary{EmployeeId: f.ivanov.Id, Amount: decimal.NewFromInt(100000), StartDate: date(2023, 1, 1)})
	require.NoError(t, err)

	for _, a := range []booking.Assignment{
		{EmployeeId: f.ivanov.Id, ProjectId: f.erp.Id, StartDate: date(2024, 1, 15), FinishDate: date(2024, 2, 15), LoadPercent: 50},
		{EmployeeId: f.petrov.Id, ProjectId: f.crm.Id, StartDate: date(2024, 1, 1), FinishDate: date(2024, 1, 31), LoadPercent: 100},
		{EmployeeId: f.ivanov.Id, ProjectId: f.crm.Id, StartDate: date(2024, 1, 1), FinishDate: date(2024, 1, 31), LoadPercent: 20, Status: booking.Draft},
		{EmployeeId: 99, ProjectId: f.erp.Id, StartDate: date(2024, 1, 1), FinishDate: date(2024, 1, 31), LoadPercent: 10},
	} {
		_, err := bookingService.Save(ctx, a, booking.SaveOptions{})
		require.NoError(t, err)
	}

	return f, func() {
		t.Log("Teardown after test")
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestService_Months(t *testing.T) {
	_, teardown := setup(t)
	defer teardown()

	t.Run("should start six months before the current month", func(t *testing.T) {
		months := service.Months(0)

		require.Len(t, months, 18)
		assert.Equal(t, date(2023, 12, 1), months[0])
		assert.Equal(t, date(2025, 5, 1), months[17])
	})

	t.Run("should start from January of the given year", func(t *testing.T) {
		months := service.Months(2024)

		assert.Equal(t, date(2024, 1, 1), months[0])
		assert.Equal(t, date(2025, 6, 1), months[17])
	})
}

func TestService_Monthly(t *testing.T) {
	t.Run("should report planned bookings by employee", func(t *testing.T) {
		// given
		f, teardown := setup(t)
		defer teardown()

		// when
		report, err := service.Monthly(ctx, Options{Year: 2024})

		// then
		require.NoError(t, err)
		require.Len(t, report.Rows, 3)
		ivanov := report.Rows[0]
		assert.Equal(t, Key{Id: f.ivanov.Id, Name: "Ivanov Ivan"}, ivanov.Key)
		require.Len(t, ivanov.Values, 18)
		assert.Equal(t, 13, ivanov.Values[0].Days)
		assert.InDelta(t, 6.5, ivanov.Values[0].Volume, 1e-9)
		assert.InDelta(t, 5.5, ivanov.Values[1].Volume, 1e-9)
		assert.True(t, ivanov.Values[2].IsZero())
		assert.Equal(t, "Petrov Petr", report.Rows[1].Key.Name)
		assert.Equal(t, 100.0, report.Rows[1].Values[0].Load)
		assert.True(t, report.Rows[2].Key.IsUnassigned())
		assert.InDelta(t, 2.3, report.Rows[2].Values[0].Volume, 1e-9)
	})

	t.Run("should report drafts when asked", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		report, err := service.Monthly(ctx, Options{Year: 2024, Statuses: []booking.Status{booking.Draft}})

		require.NoError(t, err)
		require.Len(t, report.Rows, 1)
		assert.InDelta(t, 4.6, report.Rows[0].Values[0].Volume, 1e-9)
	})

	t.Run("should use the default window", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		report, err := service.Monthly(ctx, Options{})

		require.NoError(t, err)
		assert.Equal(t, date(2023, 12, 1), report.Periods[0].Month)
		assert.InDelta(t, 6.5, report.Rows[0].Values[1].Volume, 1e-9)
	})
}

func TestService_Projects(t *testing.T) {
	// given
	f, teardown := setup(t)
	defer teardown()

	// when
	report, err := service.Projects(ctx, date(2024, 1, 20), nil, true)

	// then
	require.NoError(t, err)
	require.Len(t, report.Periods, 2)
	assert.Equal(t, "CRM", report.Periods[0].Project.Name)
	assert.Equal(t, "ERP", report.Periods[1].Project.Name)
	require.Len(t, report.Rows, 3)

	ivanov := report.Rows[0]
	assert.Equal(t, f.ivanov.Id, ivanov.Key.Id)
	assert.True(t, ivanov.Values[0].IsZero())
	assert.InDelta(t, 13.0/23*50, ivanov.Values[1].Load, 1e-9)
	assert.Equal(t, "14130.43", ivanov.Values[1].Cost.StringFixed(2))
	assert.Equal(t, "14130.43", ivanov.Total.Cost.StringFixed(2))

	petrov := report.Rows[1]
	assert.Equal(t, 100.0, petrov.Values[0].Load)
	assert.True(t, petrov.Values[0].Cost.IsZero())

	unassigned := report.Rows[2]
	assert.True(t, unassigned.Key.IsUnassigned())
	assert.Equal(t, 10.0, unassigned.Values[1].Load)
}

func TestService_Employee(t *testing.T) {
	t.Run("should report projects of the employee with totals", func(t *testing.T) {
		f, teardown := setup(t)
		defer teardown()

		report, err := service.Employee(ctx, f.ivanov.Id, Options{Year: 2024, Statuses: []booking.Status{booking.Planned, booking.Draft}})

		require.NoError(t, err)
		assert.Equal(t, f.ivanov, report.Employee)
		require.Len(t, report.Rows, 2)
		assert.Equal(t, "CRM", report.Rows[0].Key.Name)
		assert.Equal(t, "ERP", report.Rows[1].Key.Name)
		require.Len(t, report.Totals, 18)
		assert.InDelta(t, 11.1, report.Totals[0].Volume, 1e-9)
		assert.InDelta(t, 5.5, report.Totals[1].Volume, 1e-9)
	})

	t.Run("should fail for an unknown employee", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		_, err := service.Employee(ctx, 999, Options{})

		assert.ErrorIs(t, err, staff.ErrEmployeeNotFound)
	})
}

func TestService_Worklog(t *testing.T) {
	t.Run("should report hours by budget against the month norms", func(t *testing.T) {
		// given
		_, teardown := setup(t)
		defer teardown()
		jiraStub.SetBudget("10", "ERP")
		jiraStub.AddWorklog(jira.Worklog{Id: "1", IssueId: "10", Author: "ivanov", Started: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), Seconds: 92 * 3600})
		jiraStub.AddWorklog(jira.Worklog{Id: "2", IssueId: "11", Author: "ivanov", Started: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), Seconds: 60480})
		jiraStub.AddWorklog(jira.Worklog{Id: "3", IssueId: "10", Author: "petrov", Started: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), Seconds: 3600})

		// when
		report, err := service.Worklog(ctx, "ivanov", 2024)

		// then
		require.NoError(t, err)
		require.Len(t, report.Rows, 2)
		erp := report.Rows[0]
		assert.Equal(t, "ERP", erp.Key.Name)
		assert.Equal(t, 92.0, erp.Values[0].Hours)
		assert.InDelta(t, 50, erp.Values[0].Load, 1e-9)
		assert.Equal(t, 0.0, erp.Values[1].Load)

		unassigned := report.Rows[1]
		assert.True(t, unassigned.Key.IsUnassigned())
		assert.InDelta(t, 16.8, unassigned.Values[1].Hours, 1e-9)
		assert.InDelta(t, 10, unassigned.Values[1].Load, 1e-9)

		assert.InDelta(t, 50, report.Totals[0].Load, 1e-9)
		assert.InDelta(t, 10, report.Totals[1].Load, 1e-9)
	})

	t.Run("should fail when jira is not configured", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()
		jiraStub.Err = jira.ErrNotConfigured

		_, err := service.Worklog(ctx, "ivanov", 2024)

		assert.ErrorIs(t, err, jira.ErrNotConfigured)
	})
}
