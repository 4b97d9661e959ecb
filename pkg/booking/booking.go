package booking

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRange = errors.New("assignment finish date is before its start date")
var ErrInvalidLoad = errors.New("assignment load must be between 0 and 100 percent")
var ErrInvalidStatus = errors.New("invalid assignment status")
var ErrAssignmentNotFound = errors.New("assignment not found")

// Status tells whether an assignment is a draft, a plan or a record of actual participation.
type Status string

const (
	Draft   Status = "DR"
	Planned Status = "PL"
	Actual  Status = "FA"
)

func (s Status) Valid() bool {
	return s == Draft || s == Planned || s == Actual
}

// Assignment is the participation of an employee in a project over a date range at a given load.
type Assignment struct {
	Id          int
	EmployeeId  int
	ProjectId   int
	StartDate   time.Time
	FinishDate  time.Time
	LoadPercent float64
	Status      Status
}

func (a Assignment) Validate() error {
	if a.FinishDate.Before(a.StartDate) {
		return fmt.Errorf("%s..%s: %w", a.StartDate.Format(time.DateOnly), a.FinishDate.Format(time.DateOnly), ErrInvalidRange)
	}
	if a.LoadPercent < 0 || a.LoadPercent > 100 {
		return fmt.Errorf("%v: %w", a.LoadPercent, ErrInvalidLoad)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("%q: %w", a.Status, ErrInvalidStatus)
	}
	return nil
}

// Contains tells whether date lies within the assignment range.
func (a Assignment) Contains(date time.Time) bool {
	return !date.Before(a.StartDate) && !date.After(a.FinishDate)
}

// MonthlyRecord is the part of an assignment falling into one calendar month. Records are derived
// from the assignment and the calendar and are never edited directly.
type MonthlyRecord struct {
	AssignmentId int
	// Month is the first day of the month.
	Month         time.Time
	DaysEngaged   int
	EffectiveLoad float64
	// Volume is measured in person-days.
	Volume float64
}

// Booking is a monthly record tagged with the dimensions of its assignment.
type Booking struct {
	MonthlyRecord
	EmployeeId int
	ProjectId  int
	Status     Status
}

type Filter struct {
	EmployeeId int
	ProjectId  int
	Status     Status
	// From and To select assignments overlapping the range; zero values leave the range open.
	From time.Time
	To   time.Time
}

type BookingFilter struct {
	From       time.Time
	To         time.Time
	EmployeeId int
	Statuses   []Status
}

// Summary is the participation of an employee in a project over all its assignments of one status.
type Summary struct {
	EmployeeId int
	ProjectId  int
	StartDate  time.Time
	FinishDate time.Time
	Workdays   int
	Volume     float64
	Percent    float64
}

func Volume(workdays int, loadPercent float64) float64 {
	return float64(workdays) * loadPercent / 100
}
