package staff

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrEmployeeNotFound = errors.New("employee not found")
var ErrProjectNotFound = errors.New("project not found")
var ErrInvalidEmployee = errors.New("invalid employee")
var ErrInvalidProject = errors.New("invalid project")
var ErrInvalidSalary = errors.New("invalid salary")

type Employee struct {
	Id        int
	Uid       uuid.UUID
	LastName  string
	FirstName string
	SurName   string
	HireDate  time.Time
	// FireDate is nil while the employee works for the company.
	FireDate  *time.Time
	BusinessK float64
}

func (e Employee) FullName() string {
	return strings.TrimRight(fmt.Sprintf("%s %s %s", e.LastName, e.FirstName, e.SurName), " ")
}

// EmployedAt tells whether date lies within the employment period.
func (e Employee) EmployedAt(date time.Time) bool {
	if date.Before(e.HireDate) {
		return false
	}
	return e.FireDate == nil || date.Before(*e.FireDate)
}

func (e Employee) Validate() error {
	if strings.TrimSpace(e.LastName) == "" || strings.TrimSpace(e.FirstName) == "" {
		return fmt.Errorf("%w: last and first name are required", ErrInvalidEmployee)
	}
	if e.FireDate != nil && e.FireDate.Before(e.HireDate) {
		return fmt.Errorf("%w: fire date %s is before hire date %s", ErrInvalidEmployee,
			e.FireDate.Format(time.DateOnly), e.HireDate.Format(time.DateOnly))
	}
	if e.BusinessK < 0 || e.BusinessK > 1 {
		return fmt.Errorf("%w: business coefficient %v is out of [0, 1]", ErrInvalidEmployee, e.BusinessK)
	}
	return nil
}

type ProjectState string

const (
	ProjectInitial ProjectState = "IN"
	ProjectOpened  ProjectState = "OP"
	ProjectClosing ProjectState = "CL"
	ProjectClosed  ProjectState = "CD"
)

type Project struct {
	Id        int
	ShortName string
	FullName  string
	StartDate time.Time
	// FinishDate is nil while the project is running.
	FinishDate *time.Time
	State      ProjectState
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.ShortName) == "" {
		return fmt.Errorf("%w: short name is required", ErrInvalidProject)
	}
	if p.FinishDate != nil && p.FinishDate.Before(p.StartDate) {
		return fmt.Errorf("%w: finish date is before start date", ErrInvalidProject)
	}
	switch p.State {
	case ProjectInitial, ProjectOpened, ProjectClosing, ProjectClosed:
	default:
		return fmt.Errorf("%w: unknown state %q", ErrInvalidProject, p.State)
	}
	return nil
}

// Salary is the monthly salary of an employee effective from StartDate.
type Salary struct {
	Id         int
	EmployeeId int
	Amount     decimal.Decimal
	StartDate  time.Time
}

// ValidateFor checks the salary against the employment period of its employee.
func (s Salary) ValidateFor(e Employee) error {
	if !s.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidSalary)
	}
	if s.StartDate.Before(e.HireDate) {
		return fmt.Errorf("%w: salary change %s is before hire date %s", ErrInvalidSalary,
			s.StartDate.Format(time.DateOnly), e.HireDate.Format(time.DateOnly))
	}
	if e.FireDate != nil && !s.StartDate.Before(*e.FireDate) {
		return fmt.Errorf("%w: salary change %s is not before fire date %s", ErrInvalidSalary,
			s.StartDate.Format(time.DateOnly), e.FireDate.Format(time.DateOnly))
	}
	return nil
}
