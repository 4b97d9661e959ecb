package staff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/primetver/pplan/internal/utils"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Directory resolves the identities that reports group and label by.
type Directory interface {
	EmployeesByIds(ctx context.Context, ids []int) (map[int]Employee, error)
	ProjectsByIds(ctx context.Context, ids []int) (map[int]Project, error)
	SalariesAt(ctx context.Context, date time.Time) (map[int]decimal.Decimal, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateEmployee(ctx context.Context, employee Employee) (Employee, error) {
	normalizeEmployee(&employee)
	if err := employee.Validate(); err != nil {
		return Employee{}, err
	}
	employee.Uid = uuid.New()
	created, err := s.repo.CreateEmployee(ctx, employee)
	if err != nil {
		return Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	log.Debugf("Employee created: %d %s", created.Id, created.FullName())
	return created, nil
}

func (s *Service) UpdateEmployee(ctx context.Context, employee Employee) (Employee, error) {
	normalizeEmployee(&employee)
	if err := employee.Validate(); err != nil {
		return Employee{}, err
	}
	return s.repo.UpdateEmployee(ctx, employee)
}

func (s *Service) GetEmployee(ctx context.Context, id int) (Employee, error) {
	return s.repo.GetEmployee(ctx, id)
}

func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	return s.repo.ListEmployees(ctx)
}

func (s *Service) CreateProject(ctx context.Context, project Project) (Project, error) {
	normalizeProject(&project)
	if err := project.Validate(); err != nil {
		return Project{}, err
	}
	created, err := s.repo.CreateProject(ctx, project)
	if err != nil {
		return Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	log.Debugf("Project created: %d %s", created.Id, created.ShortName)
	return created, nil
}

func (s *Service) UpdateProject(ctx context.Context, project Project) (Project, error) {
	normalizeProject(&project)
	if err := project.Validate(); err != nil {
		return Project{}, err
	}
	return s.repo.UpdateProject(ctx, project)
}

func (s *Service) GetProject(ctx context.Context, id int) (Project, error) {
	return s.repo.GetProject(ctx, id)
}

func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	return s.repo.ListProjects(ctx)
}

// SetSalary records a salary change; a change on the same date replaces the previous amount.
func (s *Service) SetSalary(ctx context.Context, salary Salary) (Salary, error) {
	employee, err := s.repo.GetEmployee(ctx, salary.EmployeeId)
	if err != nil {
		return Salary{}, err
	}
	salary.StartDate = utils.DateOf(salary.StartDate)
	if err := salary.ValidateFor(employee); err != nil {
		return Salary{}, err
	}
	return s.repo.StoreSalary(ctx, salary)
}

func (s *Service) ListSalaries(ctx context.Context, employeeId int) ([]Salary, error) {
	if _, err := s.repo.GetEmployee(ctx, employeeId); err != nil {
		return nil, err
	}
	return s.repo.ListSalaries(ctx, employeeId)
}

func (s *Service) EmployeesByIds(ctx context.Context, ids []int) (map[int]Employee, error) {
	result := make(map[int]Employee, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	employees, err := s.repo.GetEmployeesByIds(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get employees: %w", err)
	}
	for _, e := range employees {
		result[e.Id] = e
	}
	return result, nil
}

func (s *Service) ProjectsByIds(ctx context.Context, ids []int) (map[int]Project, error) {
	result := make(map[int]Project, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	projects, err := s.repo.GetProjectsByIds(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}
	for _, p := range projects {
		result[p.Id] = p
	}
	return result, nil
}

func (s *Service) SalariesAt(ctx context.Context, date time.Time) (map[int]decimal.Decimal, error) {
	return s.repo.GetSalariesAt(ctx, utils.DateOf(date))
}

func normalizeEmployee(e *Employee) {
	e.HireDate = utils.DateOf(e.HireDate)
	if e.FireDate != nil {
		d := utils.DateOf(*e.FireDate)
		e.FireDate = &d
	}
}

func normalizeProject(p *Project) {
	p.StartDate = utils.DateOf(p.StartDate)
	if p.FinishDate != nil {
		d := utils.DateOf(*p.FinishDate)
		p.FinishDate = &d
	}
	if p.State == "" {
		p.State = ProjectInitial
	}
}
