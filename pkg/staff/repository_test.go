package staff

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/primetver/pplan/internal/test_utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) Repository {
	t.Cleanup(func() {
		require.NoError(t, test_utils.TruncateAll(context.Background(), db))
	})
	return NewRepository(db)
}

func TestRepositoryImpl_Employee(t *testing.T) {
	// given
	repo := setupTestRepository(t)
	svc := NewService(repo)

	// when
	created, err := svc.CreateEmployee(ctx, Employee{
		LastName: "Ivanov", FirstName: "Ivan", SurName: "Ivanovich", HireDate: date(2020, 5, 18), BusinessK: 0.75,
	})
	require.NoError(t, err)
	created.FireDate = datePtr(2024, 1, 31)
	updated, err := repo.UpdateEmployee(ctx, created)
	require.NoError(t, err)

	// then
	found, err := repo.GetEmployee(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, updated, found)
	assert.Equal(t, created.Uid, found.Uid)
	require.NotNil(t, found.FireDate)
	assert.Equal(t, date(2024, 1, 31), *found.FireDate)

	_, err = repo.GetEmployee(ctx, created.Id+100)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestRepositoryImpl_GetEmployeesByIds(t *testing.T) {
	repo := setupTestRepository(t)
	svc := NewService(repo)
	b, err := svc.CreateEmployee(ctx, Employee{LastName: "B", FirstName: "B", HireDate: date(2020, 1, 1)})
	require.NoError(t, err)
	a, err := svc.CreateEmployee(ctx, Employee{LastName: "A", FirstName: "A", HireDate: date(2020, 1, 1)})
	require.NoError(t, err)

	employees, err := repo.GetEmployeesByIds(ctx, []int{b.Id, a.Id, 9999})

	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, a.Id, employees[0].Id)
	assert.Equal(t, b.Id, employees[1].Id)
}

func TestRepositoryImpl_Project(t *testing.T) {
	repo := setupTestRepository(t)

	created, err := repo.CreateProject(ctx, Project{ShortName: "ERP", FullName: "ERP rollout", StartDate: date(2024, 1, 1), State: ProjectOpened})
	require.NoError(t, err)
	projects, err := repo.GetProjectsByIds(ctx, []int{created.Id})
	require.NoError(t, err)

	assert.Equal(t, []Project{created}, projects)
	assert.Nil(t, created.FinishDate)
	_, err = repo.UpdateProject(ctx, Project{Id: created.Id + 1, ShortName: "X", StartDate: date(2024, 1, 1), State: ProjectOpened})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestRepositoryImpl_Salaries(t *testing.T) {
	// given
	repo := setupTestRepository(t)
	svc := NewService(repo)
	employee, err := svc.CreateEmployee(ctx, Employee{LastName: "A", FirstName: "A", HireDate: date(2020, 1, 1)})
	require.NoError(t, err)
	amount, _ := decimal.NewFromString("1234.56")

	// when
	_, err = repo.StoreSalary(ctx, Salary{EmployeeId: employee.Id, Amount: decimal.NewFromInt(1000), StartDate: date(2020, 1, 1)})
	require.NoError(t, err)
	_, err = repo.StoreSalary(ctx, Salary{EmployeeId: employee.Id, Amount: amount, StartDate: date(2022, 1, 1)})
	require.NoError(t, err)

	// then
	at2021, err := repo.GetSalariesAt(ctx, date(2021, 6, 1))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(at2021[employee.Id]))
	at2023, err := repo.GetSalariesAt(ctx, date(2023, 1, 1))
	require.NoError(t, err)
	assert.True(t, amount.Equal(at2023[employee.Id]))
	salaries, err := repo.ListSalaries(ctx, employee.Id)
	require.NoError(t, err)
	require.Len(t, salaries, 2)
	assert.Equal(t, date(2022, 1, 1), salaries[0].StartDate)
}
