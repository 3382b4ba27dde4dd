package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"timeclock.service/internal/core/model"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("time clock event not found")

// Repository contract
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// LockDay serializes writers of one employee/day until the transaction ends.
	LockDay(ctx context.Context, key model.DayKey) error
	ListDay(ctx context.Context, key model.DayKey) ([]model.TimeClockEvent, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.TimeClockEvent, error)
	Create(ctx context.Context, e *model.TimeClockEvent) error
	Update(ctx context.Context, e *model.TimeClockEvent) error
	UpdateSyncStatus(ctx context.Context, id uuid.UUID, status model.SyncStatus, retryCount int) error
	UpdateEmailStatus(ctx context.Context, id uuid.UUID, status model.EmailStatus, retryCount int) error
}
