package staff

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type RepositoryStub struct {
	mu        sync.RWMutex
	employees map[int]Employee
	projects  map[int]Project
	salaries  []Salary
	nextId    int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		employees: make(map[int]Employee),
		projects:  make(map[int]Project),
		nextId:    1,
	}
}

func (r *RepositoryStub) CreateEmployee(ctx context.Context, employee Employee) (Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	employee.Id = r.nextId
	r.nextId++
	r.employees[employee.Id] = employee
	return employee, nil
}

func (r *RepositoryStub) UpdateEmployee(ctx context.Context, employee Employee) (Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.employees[employee.Id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	employee.Uid = existing.Uid
	r.employees[employee.Id] = employee
	return employee, nil
}

func (r *RepositoryStub) GetEmployee(ctx context.Context, id int) (Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	employee, ok := r.employees[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return employee, nil
}

func (r *RepositoryStub) ListEmployees(ctx context.Context) ([]Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Employee, 0, len(r.employees))
	for _, e := range r.employees {
		result = append(result, e)
	}
	sortEmployees(result)
	return result, nil
}

func (r *RepositoryStub) GetEmployeesByIds(ctx context.Context, ids []int) ([]Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Employee, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.employees[id]; ok {
			result = append(result, e)
		}
	}
	sortEmployees(result)
	return result, nil
}

func sortEmployees(employees []Employee) {
	sort.Slice(employees, func(i, j int) bool {
		if employees[i].LastName != employees[j].LastName {
			return employees[i].LastName < employees[j].LastName
		}
		if employees[i].FirstName != employees[j].FirstName {
			return employees[i].FirstName < employees[j].FirstName
		}
		return employees[i].Id < employees[j].Id
	})
}

func (r *RepositoryStub) CreateProject(ctx context.Context, project Project) (Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	project.Id = r.nextId
	r.nextId++
	r.projects[project.Id] = project
	return project, nil
}

func (r *RepositoryStub) UpdateProject(ctx context.Context, project Project) (Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[project.Id]; !ok {
		return Project{}, ErrProjectNotFound
	}
	r.projects[project.Id] = project
	return project, nil
}

func (r *RepositoryStub) GetProject(ctx context.Context, id int) (Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	project, ok := r.projects[id]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	return project, nil
}

func (r *RepositoryStub) ListProjects(ctx context.Context) ([]Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Project, 0, len(r.projects))
	for _, p := range r.projects {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate)
		}
		return result[i].ShortName < result[j].ShortName
	})
	return result, nil
}

func (r *RepositoryStub) GetProjectsByIds(ctx context.Context, ids []int) ([]Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Project, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.projects[id]; ok {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ShortName < result[j].ShortName })
	return result, nil
}

func (r *RepositoryStub) StoreSalary(ctx context.Context, salary Salary) (Salary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.salaries {
		if s.EmployeeId == salary.EmployeeId && s.StartDate.Equal(salary.StartDate) {
			salary.Id = s.Id
			r.salaries[i] = salary
			return salary, nil
		}
	}
	salary.Id = r.nextId
	r.nextId++
	r.salaries = append(r.salaries, salary)
	return salary, nil
}

func (r *RepositoryStub) ListSalaries(ctx context.Context, employeeId int) ([]Salary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Salary, 0)
	for _, s := range r.salaries {
		if s.EmployeeId == employeeId {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return result, nil
}

func (r *RepositoryStub) GetSalariesAt(ctx context.Context, date time.Time) (map[int]decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	latest := make(map[int]Salary)
	for _, s := range r.salaries {
		if s.StartDate.After(date) {
			continue
		}
		if current, ok := latest[s.EmployeeId]; !ok || s.StartDate.After(current.StartDate) {
			latest[s.EmployeeId] = s
		}
	}
	result := make(map[int]decimal.Decimal, len(latest))
	for id, s := range latest {
		result[id] = s.Amount
	}
	return result, nil
}

func (r *RepositoryStub) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees = make(map[int]Employee)
	r.projects = make(map[int]Project)
	r.salaries = nil
	r.nextId = 1
}
