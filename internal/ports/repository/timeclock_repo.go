package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"timeclock.service/internal/core/clock"
	"timeclock.service/internal/core/model"
)

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TimeClockRepository is the PostgreSQL implementation.
type TimeClockRepository struct {
	db dbtx
}

// NewTimeClockRepository create new instance
func NewTimeClockRepository(db *sql.DB) Repository {
	return &TimeClockRepository{db: db}
}

func (r *TimeClockRepository) WithTx(tx *sql.Tx) Repository {
	return &TimeClockRepository{db: tx}
}

const selectColumns = `SELECT id, shop_id, user_id, date_at,
       to_char(time_at, 'HH24:MI:SS'), date_time, formated_date_time,
       to_char(shift_start, 'HH24:MI:SS'), to_char(shift_end, 'HH24:MI:SS'),
       buffer_minutes, type, comment, created_from, updated_from,
       sync_status, sync_retry_count, email_status, email_retry_count,
       created_at, updated_at
  FROM time_clock_events`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*model.TimeClockEvent, error) {
	e := &model.TimeClockEvent{}
	err := row.Scan(
		&e.ID, &e.ShopID, &e.UserID, &e.DateAt,
		&e.TimeAt, &e.DateTime, &e.FormatedDateTime,
		&e.ShiftStart, &e.ShiftEnd,
		&e.BufferMinutes, &e.Type, &e.Comment, &e.CreatedFrom, &e.UpdatedFrom,
		&e.SyncStatus, &e.SyncRetryCount, &e.EmailStatus, &e.EmailRetryCount,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func annotate(ctx context.Context, key model.DayKey) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("app.shop_id", key.ShopID),
		attribute.Int64("app.user_id", key.UserID),
		attribute.String("app.date_at", key.DateAt.Format(clock.DateLayout)),
	)
}

// LockDay takes a transaction scoped advisory lock; it must run inside WithTx.
func (r *TimeClockRepository) LockDay(ctx context.Context, key model.DayKey) error {
	lockKey := fmt.Sprintf("time_clock:%d:%d:%s", key.ShopID, key.UserID, key.DateAt.Format(clock.DateLayout))
	_, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey)
	return err
}

// ListDay returns every event of the employee/day ordered by formated_date_time.
func (r *TimeClockRepository) ListDay(ctx context.Context, key model.DayKey) ([]model.TimeClockEvent, error) {
	annotate(ctx, key)

	query := selectColumns + `
 WHERE shop_id = $1 AND user_id = $2 AND date_at = $3
 ORDER BY formated_date_time ASC`

	rows, err := r.db.QueryContext(ctx, query, key.ShopID, key.UserID, key.DateAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.TimeClockEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetByID fetches a complete row.
func (r *TimeClockRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TimeClockEvent, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// Create inserts the event and fills in the timestamps set by the database.
func (r *TimeClockRepository) Create(ctx context.Context, e *model.TimeClockEvent) error {
	annotate(ctx, e.Key())

	query := `INSERT INTO time_clock_events
	          (id, shop_id, user_id, date_at, time_at, date_time, formated_date_time,
	           shift_start, shift_end, buffer_minutes, type, comment, created_from,
	           sync_status, sync_retry_count, email_status, email_retry_count)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 0, $15, 0)
	          RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		e.ID, e.ShopID, e.UserID, e.DateAt, e.TimeAt, e.DateTime, e.FormatedDateTime,
		e.ShiftStart, e.ShiftEnd, e.BufferMinutes, e.Type, e.Comment, e.CreatedFrom,
		e.SyncStatus, e.EmailStatus,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
}

// Update persists the editable fields of an event.
func (r *TimeClockRepository) Update(ctx context.Context, e *model.TimeClockEvent) error {
	annotate(ctx, e.Key())

	query := `UPDATE time_clock_events
	             SET time_at = $1,
	                 date_time = $2,
	                 formated_date_time = $3,
	                 type = $4,
	                 comment = $5,
	                 updated_from = $6,
	                 sync_status = $7,
	                 updated_at = now()
	           WHERE id = $8
	       RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		e.TimeAt, e.DateTime, e.FormatedDateTime, e.Type, e.Comment, e.UpdatedFrom, e.SyncStatus, e.ID,
	).Scan(&e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// UpdateSyncStatus updates the legacy forwarding status and retry count.
func (r *TimeClockRepository) UpdateSyncStatus(ctx context.Context, id uuid.UUID, status model.SyncStatus, retryCount int) error {
	query := `UPDATE time_clock_events SET sync_status = $1, sync_retry_count = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, retryCount, id)
	return err
}

// UpdateEmailStatus updates the shift summary email status and retry count.
func (r *TimeClockRepository) UpdateEmailStatus(ctx context.Context, id uuid.UUID, status model.EmailStatus, retryCount int) error {
	query := `UPDATE time_clock_events SET email_status = $1, email_retry_count = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, retryCount, id)
	return err
}
