package workdays

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Calendar
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreOverride(ctx context.Context, override Override) (Override, error)
	// StoreOverrideIfAbsent returns false when the date already has an override.
	StoreOverrideIfAbsent(ctx context.Context, override Override) (bool, error)
	DeleteOverride(ctx context.Context, date time.Time) error
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

func (r *repositoryImpl) GetOverride(ctx context.Context, date time.Time) (*Override, error) {
	query := `SELECT date, kind, label, comment FROM calendar_override WHERE date = $1`

	var o Override
	var kind string
	err := r.getQueryer().QueryRow(ctx, query, date).Scan(&o.Date, &kind, &o.Label, &o.Comment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		err := fmt.Errorf("could not query calendar override: %w", err)
		log.Error(err)
		return nil, err
	}
	o.Kind = DayKind(kind)
	return &o, nil
}

func (r *repositoryImpl) GetOverrides(ctx context.Context, from, to time.Time) ([]Override, error) {
	query := `SELECT date, kind, label, comment
			  FROM calendar_override
			  WHERE date >= $1 AND date <= $2
			  ORDER BY date`

	rows, err := r.getQueryer().Query(ctx, query, from, to)
	if err != nil {
		err := fmt.Errorf("could not query calendar overrides: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	overrides := make([]Override, 0, 16)
	for rows.Next() {
		var o Override
		var kind string
		if err := rows.Scan(&o.Date, &kind, &o.Label, &o.Comment); err != nil {
			err := fmt.Errorf("could not scan calendar override: %w", err)
			log.Error(err)
			return nil, err
		}
		o.Kind = DayKind(kind)
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating calendar overrides: %w", err)
		log.Error(err)
		return nil, err
	}
	return overrides, nil
}

func (r *repositoryImpl) StoreOverride(ctx context.Context, override Override) (Override, error) {
	query := `INSERT INTO calendar_override (date, kind, label, comment)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (date) DO UPDATE
			  SET kind = EXCLUDED.kind, label = EXCLUDED.label, comment = EXCLUDED.comment
			  RETURNING date, kind, label, comment`

	var stored Override
	var kind string
	err := r.getQueryer().QueryRow(ctx, query, override.Date, string(override.Kind), override.Label, override.Comment).
		Scan(&stored.Date, &kind, &stored.Label, &stored.Comment)
	if err != nil {
		err := fmt.Errorf("could not store calendar override: %w", err)
		log.Error(err)
		return Override{}, err
	}
	stored.Kind = DayKind(kind)
	return stored, nil
}

func (r *repositoryImpl) StoreOverrideIfAbsent(ctx context.Context, override Override) (bool, error) {
	query := `INSERT INTO calendar_override (date, kind, label, comment)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (date) DO NOTHING`

	tag, err := r.getQueryer().Exec(ctx, query, override.Date, string(override.Kind), override.Label, override.Comment)
	if err != nil {
		err := fmt.Errorf("could not store calendar override: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repositoryImpl) DeleteOverride(ctx context.Context, date time.Time) error {
	query := `DELETE FROM calendar_override WHERE date = $1`

	tag, err := r.getQueryer().Exec(ctx, query, date)
	if err != nil {
		err := fmt.Errorf("could not delete calendar override: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOverrideNotFound
	}
	return nil
}
