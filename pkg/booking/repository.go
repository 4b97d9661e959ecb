package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreAssignment(ctx context.Context, a Assignment) (Assignment, error)
	GetAssignment(ctx context.Context, id int) (Assignment, error)
	ListAssignments(ctx context.Context, filter Filter) ([]Assignment, error)
	DeleteAssignment(ctx context.Context, id int) error
	// ReplaceMonthlyRecords removes all records of the assignment and stores the given ones.
	ReplaceMonthlyRecords(ctx context.Context, assignmentId int, records []MonthlyRecord) error
	GetMonthlyRecords(ctx context.Context, assignmentId int) ([]MonthlyRecord, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
}

type repositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&repositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const assignmentColumns = `id, employee_id, project_id, start_date, finish_date, load_percent, status`

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	var status string
	err := row.Scan(&a.Id, &a.EmployeeId, &a.ProjectId, &a.StartDate, &a.FinishDate, &a.LoadPercent, &status)
	a.Status = Status(status)
	return a, err
}

func (r *repositoryImpl) StoreAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	var row pgx.Row
	if a.Id == 0 {
		query := `INSERT INTO assignment (employee_id, project_id, start_date, finish_date, load_percent, status)
				  VALUES ($1, $2, $3, $4, $5, $6)
				  RETURNING ` + assignmentColumns
		row = r.getQueryer().QueryRow(ctx, query, a.EmployeeId, a.ProjectId, a.StartDate, a.FinishDate, a.LoadPercent, string(a.Status))
	} else {
		query := `UPDATE assignment
				  SET employee_id = $2, project_id = $3, start_date = $4, finish_date = $5, load_percent = $6, status = $7
				  WHERE id = $1
				  RETURNING ` + assignmentColumns
		row = r.getQueryer().QueryRow(ctx, query, a.Id, a.EmployeeId, a.ProjectId, a.StartDate, a.FinishDate, a.LoadPercent, string(a.Status))
	}

	stored, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, ErrAssignmentNotFound
		}
		err := fmt.Errorf("could not store assignment: %w", err)
		log.Error(err)
		return Assignment{}, err
	}
	return stored, nil
}

func (r *repositoryImpl) GetAssignment(ctx context.Context, id int) (Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignment WHERE id = $1`

	a, err := scanAssignment(r.getQueryer().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, ErrAssignmentNotFound
		}
		err := fmt.Errorf("could not get assignment: %w", err)
		log.Error(err)
		return Assignment{}, err
	}
	return a, nil
}

func (r *repositoryImpl) ListAssignments(ctx context.Context, filter Filter) ([]Assignment, error) {
	var conditions []string
	var args []any
	add := func(condition string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}
	if filter.EmployeeId != 0 {
		add("employee_id = $%d", filter.EmployeeId)
	}
	if filter.ProjectId != 0 {
		add("project_id = $%d", filter.ProjectId)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if !filter.From.IsZero() {
		add("finish_date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("start_date <= $%d", filter.To)
	}
	query := `SELECT ` + assignmentColumns + ` FROM assignment`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY start_date, id`

	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query assignments: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	assignments := make([]Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			err := fmt.Errorf("could not scan assignment: %w", err)
			log.Error(err)
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *repositoryImpl) DeleteAssignment(ctx context.Context, id int) error {
	tag, err := r.getQueryer().Exec(ctx, `DELETE FROM assignment WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete assignment: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (r *repositoryImpl) ReplaceMonthlyRecords(ctx context.Context, assignmentId int, records []MonthlyRecord) error {
	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM month_booking WHERE assignment_id = $1`, assignmentId); err != nil {
		err := fmt.Errorf("could not delete monthly records: %w", err)
		log.Error(err)
		return err
	}
	if len(records) == 0 {
		return nil
	}

	_, err := r.getQueryer().CopyFrom(ctx,
		pgx.Identifier{"month_booking"},
		[]string{"assignment_id", "month", "days", "load", "volume"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			rec := records[i]
			return []any{assignmentId, rec.Month, rec.DaysEngaged, rec.EffectiveLoad, rec.Volume}, nil
		}),
	)
	if err != nil {
		err := fmt.Errorf("could not store monthly records: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *repositoryImpl) GetMonthlyRecords(ctx context.Context, assignmentId int) ([]MonthlyRecord, error) {
	query := `SELECT assignment_id, month, days, load, volume
			  FROM month_booking
			  WHERE assignment_id = $1
			  ORDER BY month`

	rows, err := r.getQueryer().Query(ctx, query, assignmentId)
	if err != nil {
		err := fmt.Errorf("could not query monthly records: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	records := make([]MonthlyRecord, 0)
	for rows.Next() {
		var rec MonthlyRecord
		if err := rows.Scan(&rec.AssignmentId, &rec.Month, &rec.DaysEngaged, &rec.EffectiveLoad, &rec.Volume); err != nil {
			err := fmt.Errorf("could not scan monthly record: %w", err)
			log.Error(err)
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *repositoryImpl) ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error) {
	query := `SELECT mb.assignment_id, mb.month, mb.days, mb.load, mb.volume, a.employee_id, a.project_id, a.status
			  FROM month_booking mb
			  JOIN assignment a ON a.id = mb.assignment_id
			  WHERE mb.month >= $1 AND mb.month <= $2`
	args := []any{filter.From, filter.To}
	if filter.EmployeeId != 0 {
		args = append(args, filter.EmployeeId)
		query += fmt.Sprintf(` AND a.employee_id = $%d`, len(args))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		query += fmt.Sprintf(` AND a.status = ANY($%d)`, len(args))
	}
	query += ` ORDER BY mb.month, a.employee_id, a.project_id`

	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query bookings: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	bookings := make([]Booking, 0)
	for rows.Next() {
		var b Booking
		var status string
		if err := rows.Scan(&b.AssignmentId, &b.Month, &b.DaysEngaged, &b.EffectiveLoad, &b.Volume,
			&b.EmployeeId, &b.ProjectId, &status); err != nil {
			err := fmt.Errorf("could not scan booking: %w", err)
			log.Error(err)
			return nil, err
		}
		b.Status = Status(status)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
