package staff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	CreateEmployee(ctx context.Context, employee Employee) (Employee, error)
	UpdateEmployee(ctx context.Context, employee Employee) (Employee, error)
	GetEmployee(ctx context.Context, id int) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	GetEmployeesByIds(ctx context.Context, ids []int) ([]Employee, error)

	CreateProject(ctx context.Context, project Project) (Project, error)
	UpdateProject(ctx context.Context, project Project) (Project, error)
	GetProject(ctx context.Context, id int) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	GetProjectsByIds(ctx context.Context, ids []int) ([]Project, error)

	StoreSalary(ctx context.Context, salary Salary) (Salary, error)
	ListSalaries(ctx context.Context, employeeId int) ([]Salary, error)
	// GetSalariesAt returns the salary of every employee effective on the date, keyed by employee id.
	GetSalariesAt(ctx context.Context, date time.Time) (map[int]decimal.Decimal, error)
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

const employeeColumns = `id, uid, last_name, first_name, sur_name, hire_date, fire_date, business_k`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.Id, &e.Uid, &e.LastName, &e.FirstName, &e.SurName, &e.HireDate, &e.FireDate, &e.BusinessK)
	return e, err
}

func (r *repositoryImpl) CreateEmployee(ctx context.Context, employee Employee) (Employee, error) {
	query := `INSERT INTO employee (uid, last_name, first_name, sur_name, hire_date, fire_date, business_k)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + employeeColumns

	stored, err := scanEmployee(r.db.QueryRow(ctx, query, employee.Uid, employee.LastName, employee.FirstName,
		employee.SurName, employee.HireDate, employee.FireDate, employee.BusinessK))
	if err != nil {
		err := fmt.Errorf("could not create employee: %w", err)
		log.Error(err)
		return Employee{}, err
	}
	return stored, nil
}

func (r *repositoryImpl) UpdateEmployee(ctx context.Context, employee Employee) (Employee, error) {
	query := `UPDATE employee
			  SET last_name = $2, first_name = $3, sur_name = $4, hire_date = $5, fire_date = $6, business_k = $7
			  WHERE id = $1
			  RETURNING ` + employeeColumns

	stored, err := scanEmployee(r.db.QueryRow(ctx, query, employee.Id, employee.LastName, employee.FirstName,
		employee.SurName, employee.HireDate, employee.FireDate, employee.BusinessK))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		err := fmt.Errorf("could not update employee: %w", err)
		log.Error(err)
		return Employee{}, err
	}
	return stored, nil
}

func (r *repositoryImpl) GetEmployee(ctx context.Context, id int) (Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employee WHERE id = $1`

	employee, err := scanEmployee(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		err := fmt.Errorf("could not get employee: %w", err)
		log.Error(err)
		return Employee{}, err
	}
	return employee, nil
}

func (r *repositoryImpl) ListEmployees(ctx context.Context) ([]Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employee ORDER BY last_name, first_name, id`
	return r.queryEmployees(ctx, query)
}

func (r *repositoryImpl) GetEmployeesByIds(ctx context.Context, ids []int) ([]Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employee WHERE id = ANY($1) ORDER BY last_name, first_name, id`
	return r.queryEmployees(ctx, query, ids)
}

func (r *repositoryImpl) queryEmployees(ctx context.Context, query string, args ...any) ([]Employee, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query employees: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	employees := make([]Employee, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			err := fmt.Errorf("could not scan employee: %w", err)
			log.Error(err)
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

const projectColumns = `id, short_name, full_name, start_date, finish_date, state`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	var state string
	err := row.Scan(&p.Id, &p.ShortName, &p.FullName, &p.StartDate, &p.FinishDate, &state)
	p.State = ProjectState(state)
	return p, err
}

func (r *repositoryImpl) CreateProject(ctx context.Context, project Project) (Project, error) {
	query := `INSERT INTO project (short_name, full_name, start_date, finish_date, state)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + projectColumns

	stored, err := scanProject(r.db.QueryRow(ctx, query, project.ShortName, project.FullName,
		project.StartDate, project.FinishDate, string(project.State)))
	if err != nil {
		err := fmt.Errorf("could not create project: %w", err)
		log.Error(err)
		return Project{}, err
	}
	return stored, nil
}

func (r *repositoryImpl) UpdateProject(ctx context.Context, project Project) (Project, error) {
	query := `UPDATE project
			  SET short_name = $2, full_name = $3, start_date = $4, finish_date = $5, state = $6
			  WHERE id = $1
			  RETURNING ` + projectColumns

	stored, err := scanProject(r.db.QueryRow(ctx, query, project.Id, project.ShortName, project.FullName,
		project.StartDate, project.FinishDate, string(project.State)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrProjectNotFound
		}
		err := fmt.Errorf("could not update project: %w", err)
		log.Error(err)
		return Project{}, err
	}
	return stored, nil
}

func (r *repositoryImpl) GetProject(ctx context.Context, id int) (Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project WHERE id = $1`

	project, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrProjectNotFound
		}
		err := fmt.Errorf("could not get project: %w", err)
		log.Error(err)
		return Project{}, err
	}
	return project, nil
}

func (r *repositoryImpl) ListProjects(ctx context.Context) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project ORDER BY start_date, short_name`
	return r.queryProjects(ctx, query)
}

func (r *repositoryImpl) GetProjectsByIds(ctx context.Context, ids []int) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project WHERE id = ANY($1) ORDER BY short_name`
	return r.queryProjects(ctx, query, ids)
}

func (r *repositoryImpl) queryProjects(ctx context.Context, query string, args ...any) ([]Project, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query projects: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			err := fmt.Errorf("could not scan project: %w", err)
			log.Error(err)
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// Amounts cross the driver as text so that decimal precision is kept as stored.
func (r *repositoryImpl) StoreSalary(ctx context.Context, salary Salary) (Salary, error) {
	query := `INSERT INTO salary (employee_id, amount, start_date)
			  VALUES ($1, $2::numeric, $3)
			  ON CONFLICT (employee_id, start_date) DO UPDATE SET amount = EXCLUDED.amount
			  RETURNING id, employee_id, amount::text, start_date`

	stored, err := scanSalary(r.db.QueryRow(ctx, query, salary.EmployeeId, salary.Amount.String(), salary.StartDate))
	if err != nil {
		err := fmt.Errorf("could not store salary: %w", err)
		log.Error(err)
		return Salary{}, err
	}
	return stored, nil
}

func (r *repositoryImpl) ListSalaries(ctx context.Context, employeeId int) ([]Salary, error) {
	query := `SELECT id, employee_id, amount::text, start_date
			  FROM salary WHERE employee_id = $1
			  ORDER BY start_date DESC`

	rows, err := r.db.Query(ctx, query, employeeId)
	if err != nil {
		err := fmt.Errorf("could not query salaries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	salaries := make([]Salary, 0)
	for rows.Next() {
		salary, err := scanSalary(rows)
		if err != nil {
			err := fmt.Errorf("could not scan salary: %w", err)
			log.Error(err)
			return nil, err
		}
		salaries = append(salaries, salary)
	}
	return salaries, rows.Err()
}

func (r *repositoryImpl) GetSalariesAt(ctx context.Context, date time.Time) (map[int]decimal.Decimal, error) {
	query := `SELECT DISTINCT ON (employee_id) employee_id, amount::text
			  FROM salary
			  WHERE start_date <= $1
			  ORDER BY employee_id, start_date DESC`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		err := fmt.Errorf("could not query salaries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	salaries := make(map[int]decimal.Decimal)
	for rows.Next() {
		var employeeId int
		var amount string
		if err := rows.Scan(&employeeId, &amount); err != nil {
			err := fmt.Errorf("could not scan salary: %w", err)
			log.Error(err)
			return nil, err
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid salary amount %q: %w", amount, err)
		}
		salaries[employeeId] = value
	}
	return salaries, rows.Err()
}

func scanSalary(row pgx.Row) (Salary, error) {
	var s Salary
	var amount string
	if err := row.Scan(&s.Id, &s.EmployeeId, &amount, &s.StartDate); err != nil {
		return Salary{}, err
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return Salary{}, fmt.Errorf("invalid salary amount %q: %w", amount, err)
	}
	s.Amount = value
	return s, nil
}
