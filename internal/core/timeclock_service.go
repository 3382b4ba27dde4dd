package core

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"timeclock.service/internal/core/apperror"
	"timeclock.service/internal/core/clock"
	"timeclock.service/internal/core/model"
	"timeclock.service/internal/core/timeline"
	"timeclock.service/internal/ports/messaging"
	"timeclock.service/internal/ports/repository"
	"timeclock.service/pkg/metrics"
)

type TimeClockService struct {
	db        *sql.DB
	repo      repository.Repository
	publisher messaging.EventPublisher
	newID     func() uuid.UUID
}

// NewTimeClockService wires the database pool, the repository and the
// queue producer used to announce accepted writes.
func NewTimeClockService(db *sql.DB, repo repository.Repository, p messaging.EventPublisher) *TimeClockService {
	return &TimeClockService{
		db:        db,
		repo:      repo,
		publisher: p,
		newID:     uuid.New,
	}
}

// Create validates a new event against the employee's day and persists it.
// The day is locked for the duration of the transaction so concurrent writers
// validate against each other's results.
func (s *TimeClockService) Create(ctx context.Context, in model.CreateEventInput) (*model.TimeClockEvent, error) {
	defer observe("create", time.Now())

	key := model.DayKey{ShopID: in.ShopID, UserID: in.UserID, DateAt: in.DateAt}

	var created *model.TimeClockEvent
	var tl *timeline.Timeline
	err := s.inDay(ctx, key, func(repo repository.Repository, events []model.TimeClockEvent) error {
		start, end, buffer := resolveShift(events, in)
		w := clock.NewWindow(start, end, buffer)

		tl = timeline.New(events, uuid.Nil)
		dateTime, formatted := tl.Place(in.DateAt, in.TimeAt, w)
		c := timeline.Candidate{Type: in.Type, TimeAt: in.TimeAt, At: formatted}
		if err := timeline.Validate(c, tl, w); err != nil {
			return err
		}

		e := &model.TimeClockEvent{
			ID:               s.newID(),
			ShopID:           in.ShopID,
			UserID:           in.UserID,
			DateAt:           in.DateAt,
			TimeAt:           in.TimeAt,
			DateTime:         dateTime,
			FormatedDateTime: formatted,
			ShiftStart:       start,
			ShiftEnd:         end,
			BufferMinutes:    buffer,
			Type:             in.Type,
			Comment:          in.Comment,
			CreatedFrom:      in.CreatedFrom,
			SyncStatus:       model.SyncPending,
			EmailStatus:      model.EmailSkipped,
		}
		if e.Type == model.DayOut {
			e.EmailStatus = model.EmailPending
		}

		if err := repo.Create(ctx, e); err != nil {
			return persistenceError(err)
		}
		created = e
		return nil
	})
	if err != nil {
		return nil, s.reject(ctx, err)
	}

	metrics.EventsRecorded.WithLabelValues(string(created.Type), messaging.OperationCreate).Inc()
	log.Ctx(ctx).Info().
		Str("event_id", created.ID.String()).
		Str("type", string(created.Type)).
		Time("formated_date_time", created.FormatedDateTime).
		Msg("time clock event recorded")

	s.announce(ctx, created, messaging.OperationCreate)
	if created.Type == model.DayOut {
		s.announceShiftClosed(ctx, created, tl)
	}
	return created, nil
}

// Update edits time, type or metadata of an existing event. The edited event
// may not move past its neighbours and must pass the same pipeline as a new
// event with itself excluded from the comparison.
func (s *TimeClockService) Update(ctx context.Context, id uuid.UUID, in model.UpdateEventInput) (*model.TimeClockEvent, error) {
	defer observe("update", time.Now())

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.reject(ctx, lookupError(err))
	}

	var updated *model.TimeClockEvent
	err = s.inDay(ctx, existing.Key(), func(repo repository.Repository, events []model.TimeClockEvent) error {
		current := find(events, id)
		if current == nil {
			return apperror.ErrNotFound
		}

		e := *current
		if in.TimeAt != nil {
			e.TimeAt = *in.TimeAt
		}
		if in.Type != nil {
			e.Type = *in.Type
		}
		if in.Comment != nil {
			e.Comment = in.Comment
		}
		if in.UpdatedFrom != nil {
			e.UpdatedFrom = in.UpdatedFrom
		}

		w := e.Window()
		tl := timeline.New(events, id)
		e.DateTime, e.FormatedDateTime = tl.Place(e.DateAt, e.TimeAt, w)

		c := timeline.Candidate{Type: e.Type, TimeAt: e.TimeAt, At: e.FormatedDateTime}
		if err := keepsPosition(c, current, tl); err != nil {
			return err
		}
		if err := timeline.Validate(c, tl, w); err != nil {
			return err
		}

		e.SyncStatus = model.SyncPending
		if err := repo.Update(ctx, &e); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperror.ErrNotFound
			}
			return persistenceError(err)
		}
		updated = &e
		return nil
	})
	if err != nil {
		return nil, s.reject(ctx, err)
	}

	metrics.EventsRecorded.WithLabelValues(string(updated.Type), messaging.OperationUpdate).Inc()
	log.Ctx(ctx).Info().
		Str("event_id", updated.ID.String()).
		Str("type", string(updated.Type)).
		Time("formated_date_time", updated.FormatedDateTime).
		Msg("time clock event updated")

	s.announce(ctx, updated, messaging.OperationUpdate)
	return updated, nil
}

// Get returns a single event.
func (s *TimeClockService) Get(ctx context.Context, id uuid.UUID) (*model.TimeClockEvent, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.reject(ctx, lookupError(err))
	}
	return e, nil
}

// ListDay returns the employee's day ordered by formated_date_time.
func (s *TimeClockService) ListDay(ctx context.Context, key model.DayKey) ([]model.TimeClockEvent, error) {
	events, err := s.repo.ListDay(ctx, key)
	if err != nil {
		return nil, s.reject(ctx, persistenceError(err))
	}
	return timeline.New(events, uuid.Nil).Events(), nil
}

// UpdateSyncStatus is a pass-through used by the sync worker.
func (s *TimeClockService) UpdateSyncStatus(ctx context.Context, id uuid.UUID, status model.SyncStatus, retryCount int) error {
	return s.repo.UpdateSyncStatus(ctx, id, status, retryCount)
}

// UpdateEmailStatus is a pass-through used by the email worker.
func (s *TimeClockService) UpdateEmailStatus(ctx context.Context, id uuid.UUID, status model.EmailStatus, retryCount int) error {
	return s.repo.UpdateEmailStatus(ctx, id, status, retryCount)
}

// inDay runs fn inside a transaction holding the day lock, handing it a
// transactional repository and the day's events read under that lock.
func (s *TimeClockService) inDay(ctx context.Context, key model.DayKey, fn func(repository.Repository, []model.TimeClockEvent) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceError(err)
	}
	defer func() { _ = tx.Rollback() }()

	repo := s.repo.WithTx(tx)
	if err := repo.LockDay(ctx, key); err != nil {
		return persistenceError(err)
	}
	events, err := repo.ListDay(ctx, key)
	if err != nil {
		return persistenceError(err)
	}

	if err := fn(repo, events); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return persistenceError(err)
	}
	return nil
}

// reject logs and counts a failed write and maps it to an AppError.
func (s *TimeClockService) reject(ctx context.Context, err error) error {
	appErr := apperror.From(err)
	metrics.EventsRejected.WithLabelValues(appErr.Code).Inc()
	if appErr.HTTPStatus >= 500 {
		log.Ctx(ctx).Error().Err(appErr.Err).Msg("time clock persistence failure")
	} else {
		log.Ctx(ctx).Debug().Str("code", appErr.Code).Msg(appErr.Message)
	}
	return appErr
}

func (s *TimeClockService) announce(ctx context.Context, e *model.TimeClockEvent, operation string) {
	event := messaging.EventRecorded{
		EventID:          e.ID.String(),
		ShopID:           e.ShopID,
		UserID:           e.UserID,
		Type:             string(e.Type),
		DateAt:           e.DateAt.Format(clock.DateLayout),
		TimeAt:           e.TimeAt.String(),
		FormatedDateTime: e.FormatedDateTime,
		Operation:        operation,
	}
	if err := s.publisher.PublishEventRecorded(ctx, event); err != nil {
		metrics.PublishErrors.WithLabelValues("sync").Inc()
		log.Ctx(ctx).Error().Err(err).Str("event_id", event.EventID).Msg("failed to publish event recorded")
	}
}

func (s *TimeClockService) announceShiftClosed(ctx context.Context, out *model.TimeClockEvent, tl *timeline.Timeline) {
	summary, ok := summarizeShift(out, tl)
	if !ok {
		return
	}
	if err := s.publisher.PublishShiftClosed(ctx, summary); err != nil {
		metrics.PublishErrors.WithLabelValues("email").Inc()
		log.Ctx(ctx).Error().Err(err).Str("event_id", summary.EventID).Msg("failed to publish shift closed")
	}
}

// summarizeShift pairs a day_out with the day_in it closes and totals the
// closed breaks between them.
func summarizeShift(out *model.TimeClockEvent, tl *timeline.Timeline) (messaging.ShiftClosed, bool) {
	in := tl.Previous(out.FormatedDateTime)
	for in != nil && in.Type != model.DayIn {
		in = tl.Previous(in.FormatedDateTime)
	}
	if in == nil {
		return messaging.ShiftClosed{}, false
	}

	var breaks time.Duration
	for _, r := range tl.BreakRanges() {
		if r.Open || r.From.Before(in.FormatedDateTime) || r.To.After(out.FormatedDateTime) {
			continue
		}
		breaks += r.To.Sub(r.From)
	}
	worked := out.FormatedDateTime.Sub(in.FormatedDateTime) - breaks

	return messaging.ShiftClosed{
		EventID:        out.ID.String(),
		ShopID:         out.ShopID,
		UserID:         out.UserID,
		DateAt:         out.DateAt.Format(clock.DateLayout),
		ShiftStartedAt: in.FormatedDateTime,
		ShiftEndedAt:   out.FormatedDateTime,
		BreakMinutes:   int(breaks.Minutes()),
		HoursWorked:    worked.Hours(),
	}, true
}

// resolveShift returns the shift of the day: the earliest stored event that
// carries one wins, otherwise the shift supplied with the request.
func resolveShift(events []model.TimeClockEvent, in model.CreateEventInput) (start, end *clock.TimeOfDay, bufferMinutes int) {
	for i := range events {
		if events[i].ShiftStart != nil && events[i].ShiftEnd != nil {
			return events[i].ShiftStart, events[i].ShiftEnd, events[i].BufferMinutes
		}
	}
	if in.ShiftStart == nil || in.ShiftEnd == nil {
		return nil, nil, in.BufferMinutes
	}
	return in.ShiftStart, in.ShiftEnd, in.BufferMinutes
}

// keepsPosition rejects edits that would move an event past the events that
// surrounded it before the edit.
func keepsPosition(c timeline.Candidate, original *model.TimeClockEvent, tl *timeline.Timeline) error {
	if prev := tl.Previous(original.FormatedDateTime); prev != nil && !c.At.After(prev.FormatedDateTime) {
		return apperror.Validation(apperror.CodeInvalidSequence,
			"Time %s must be after previous event at %s", c.TimeAt, prev.TimeAt)
	}
	if next := tl.Next(original.FormatedDateTime); next != nil && !c.At.Before(next.FormatedDateTime) {
		return apperror.Validation(apperror.CodeInvalidSequence,
			"Time %s must be before next event at %s", c.TimeAt, next.TimeAt)
	}
	return nil
}

func find(events []model.TimeClockEvent, id uuid.UUID) *model.TimeClockEvent {
	for i := range events {
		if events[i].ID == id {
			return &events[i]
		}
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.ErrNotFound
	}
	return persistenceError(err)
}

func persistenceError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(err)
}

func observe(operation string, start time.Time) {
	metrics.WriteDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
