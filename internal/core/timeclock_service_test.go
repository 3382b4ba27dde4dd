package core

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock.service/internal/core/apperror"
	"timeclock.service/internal/core/clock"
	"timeclock.service/internal/core/model"
	"timeclock.service/internal/ports/messaging"
	"timeclock.service/internal/ports/repository"
)

var testDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

// memRepo is an in-memory Repository; transactions are delegated to sqlmock.
type memRepo struct {
	events    []model.TimeClockEvent
	lockErr   error
	createErr error
	locked    []model.DayKey
}

func (r *memRepo) WithTx(*sql.Tx) repository.Repository { return r }

func (r *memRepo) LockDay(_ context.Context, key model.DayKey) error {
	r.locked = append(r.locked, key)
	return r.lockErr
}

func (r *memRepo) ListDay(_ context.Context, key model.DayKey) ([]model.TimeClockEvent, error) {
	var out []model.TimeClockEvent
	for _, e := range r.events {
		if e.Key() == key {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FormatedDateTime.Before(out[j].FormatedDateTime) })
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*model.TimeClockEvent, error) {
	for _, e := range r.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) Create(_ context.Context, e *model.TimeClockEvent) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *memRepo) Update(_ context.Context, e *model.TimeClockEvent) error {
	for i := range r.events {
		if r.events[i].ID == e.ID {
			r.events[i] = *e
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memRepo) UpdateSyncStatus(context.Context, uuid.UUID, model.SyncStatus, int) error {
	return nil
}

func (r *memRepo) UpdateEmailStatus(context.Context, uuid.UUID, model.EmailStatus, int) error {
	return nil
}

type fakePublisher struct {
	recorded []messaging.EventRecorded
	closed   []messaging.ShiftClosed
	err      error
}

func (p *fakePublisher) PublishEventRecorded(_ context.Context, e messaging.EventRecorded) error {
	p.recorded = append(p.recorded, e)
	return p.err
}

func (p *fakePublisher) PublishShiftClosed(_ context.Context, e messaging.ShiftClosed) error {
	p.closed = append(p.closed, e)
	return p.err
}

func newService(t *testing.T, repo *memRepo) (*TimeClockService, sqlmock.Sqlmock, *fakePublisher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	pub := &fakePublisher{}
	return NewTimeClockService(db, repo, pub), mock, pub
}

func tod(t *testing.T, s string) clock.TimeOfDay {
	t.Helper()
	v, err := clock.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func input(t *testing.T, typ model.EventType, at string) model.CreateEventInput {
	return model.CreateEventInput{ShopID: 1, UserID: 42, DateAt: testDate, TimeAt: tod(t, at), Type: typ}
}

func withShift(t *testing.T, in model.CreateEventInput, start, end string, bufferMinutes int) model.CreateEventInput {
	s, e := tod(t, start), tod(t, end)
	in.ShiftStart, in.ShiftEnd, in.BufferMinutes = &s, &e, bufferMinutes
	return in
}

func mustCreate(t *testing.T, svc *TimeClockService, mock sqlmock.Sqlmock, in model.CreateEventInput) *model.TimeClockEvent {
	t.Helper()
	mock.ExpectBegin()
	mock.ExpectCommit()
	e, err := svc.Create(context.Background(), in)
	require.NoError(t, err, "%s at %s", in.Type, in.TimeAt)
	return e
}

func TestCreate_FirstEventStampsShift(t *testing.T) {
	repo := &memRepo{}
	svc, mock, pub := newService(t, repo)

	e := mustCreate(t, svc, mock, withShift(t, input(t, model.DayIn, "08:00"), "08:00", "17:00", 60))

	assert.Equal(t, model.DayIn, e.Type)
	assert.Equal(t, testDate.Add(8*time.Hour), e.FormatedDateTime)
	require.NotNil(t, e.ShiftStart)
	assert.Equal(t, "08:00:00", e.ShiftStart.String())
	assert.Equal(t, 60, e.BufferMinutes)
	assert.Equal(t, model.SyncPending, e.SyncStatus)
	assert.Equal(t, model.EmailSkipped, e.EmailStatus)
	assert.Len(t, repo.events, 1)
	assert.Equal(t, []model.DayKey{e.Key()}, repo.locked)

	require.Len(t, pub.recorded, 1)
	assert.Equal(t, messaging.OperationCreate, pub.recorded[0].Operation)
	assert.Equal(t, "08:00:00", pub.recorded[0].TimeAt)
	assert.Empty(t, pub.closed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_LaterEventsInheritShiftAndCrossMidnight(t *testing.T) {
	repo := &memRepo{}
	svc, mock, pub := newService(t, repo)

	mustCreate(t, svc, mock, withShift(t, input(t, model.DayIn, "22:00"), "22:00", "06:00", 60))
	mustCreate(t, svc, mock, input(t, model.BreakStart, "01:00"))
	mustCreate(t, svc, mock, input(t, model.BreakEnd, "01:30"))
	// a different shift on later requests is ignored
	out := mustCreate(t, svc, mock, withShift(t, input(t, model.DayOut, "06:30"), "08:00", "17:00", 0))

	assert.Equal(t, testDate.Add(30*time.Hour+30*time.Minute), out.FormatedDateTime)
	assert.Equal(t, testDate.Add(6*time.Hour+30*time.Minute), out.DateTime)
	assert.Equal(t, "22:00:00", out.ShiftStart.String())
	assert.Equal(t, 60, out.BufferMinutes)
	assert.Equal(t, model.EmailPending, out.EmailStatus)

	require.Len(t, pub.closed, 1)
	summary := pub.closed[0]
	assert.Equal(t, out.ID.String(), summary.EventID)
	assert.Equal(t, 30, summary.BreakMinutes)
	assert.InDelta(t, 8.0, summary.HoursWorked, 0.001)
	assert.Len(t, pub.recorded, 4)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ValidationFailureRollsBack(t *testing.T) {
	repo := &memRepo{}
	svc, mock, pub := newService(t, repo)
	mustCreate(t, svc, mock, withShift(t, input(t, model.DayIn, "08:00"), "08:00", "17:00", 60))

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Create(context.Background(), input(t, model.DayIn, "09:00"))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInvalidSequence, appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	assert.Len(t, repo.events, 1)
	assert.Len(t, pub.recorded, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_OutsideBuffer(t *testing.T) {
	svc, mock, _ := newService(t, &memRepo{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Create(context.Background(), withShift(t, input(t, model.DayIn, "04:59"), "08:00", "23:00", 180))
	assert.ErrorIs(t, err, apperror.New(apperror.CodeOutsideBuffer, "", 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_PersistenceFailureIsGeneric(t *testing.T) {
	repo := &memRepo{createErr: errors.New("connection reset by peer")}
	svc, mock, pub := newService(t, repo)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Create(context.Background(), input(t, model.DayIn, "08:00"))

	appErr := apperror.From(err)
	assert.Equal(t, apperror.CodeInternalError, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	assert.Equal(t, "Something went wrong, please try again", appErr.Message)
	assert.False(t, apperror.IsValidation(err))
	assert.Empty(t, pub.recorded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_LockFailure(t *testing.T) {
	svc, mock, _ := newService(t, &memRepo{lockErr: errors.New("lock timeout")})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Create(context.Background(), input(t, model.DayIn, "08:00"))
	assert.Equal(t, apperror.CodeInternalError, apperror.From(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_PublishFailureDoesNotFailWrite(t *testing.T) {
	repo := &memRepo{}
	svc, mock, pub := newService(t, repo)
	pub.err = errors.New("queue unavailable")

	e := mustCreate(t, svc, mock, input(t, model.DayIn, "08:00"))
	assert.NotNil(t, e)
	assert.Len(t, repo.events, 1)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, mock, _ := newService(t, &memRepo{})

	_, err := svc.Update(context.Background(), uuid.New(), model.UpdateEventInput{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, apperror.From(err).HTTPStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func dayWithBreak(t *testing.T, svc *TimeClockService, mock sqlmock.Sqlmock) []*model.TimeClockEvent {
	return []*model.TimeClockEvent{
		mustCreate(t, svc, mock, withShift(t, input(t, model.DayIn, "08:00"), "08:00", "17:00", 60)),
		mustCreate(t, svc, mock, input(t, model.BreakStart, "12:00")),
		mustCreate(t, svc, mock, input(t, model.BreakEnd, "12:30")),
		mustCreate(t, svc, mock, input(t, model.DayOut, "17:00")),
	}
}

func TestUpdate_CannotPassNeighbours(t *testing.T) {
	svc, mock, _ := newService(t, &memRepo{})
	day := dayWithBreak(t, svc, mock)

	early := tod(t, "07:00")
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Update(context.Background(), day[1].ID, model.UpdateEventInput{TimeAt: &early})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be after previous event at 08:00:00")

	late := tod(t, "17:30")
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.Update(context.Background(), day[2].ID, model.UpdateEventInput{TimeAt: &late})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be before next event at 17:00:00")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_RoundTripRestoresTimeline(t *testing.T) {
	repo := &memRepo{}
	svc, mock, pub := newService(t, repo)
	day := dayWithBreak(t, svc, mock)
	original := day[2].FormatedDateTime

	moved, restored := tod(t, "12:45"), tod(t, "12:30")
	note := "forgot to clock back in"

	mock.ExpectBegin()
	mock.ExpectCommit()
	e, err := svc.Update(context.Background(), day[2].ID, model.UpdateEventInput{TimeAt: &moved, Comment: &note})
	require.NoError(t, err)
	assert.Equal(t, testDate.Add(12*time.Hour+45*time.Minute), e.FormatedDateTime)
	assert.Equal(t, note, *e.Comment)

	mock.ExpectBegin()
	mock.ExpectCommit()
	e, err = svc.Update(context.Background(), day[2].ID, model.UpdateEventInput{TimeAt: &restored})
	require.NoError(t, err)
	assert.Equal(t, original, e.FormatedDateTime)
	assert.Equal(t, model.BreakEnd, e.Type)

	events, err := svc.ListDay(context.Background(), day[0].Key())
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, day[2].ID, events[2].ID)

	last := pub.recorded[len(pub.recorded)-1]
	assert.Equal(t, messaging.OperationUpdate, last.Operation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_TypeChangeRevalidated(t *testing.T) {
	svc, mock, _ := newService(t, &memRepo{})
	day := dayWithBreak(t, svc, mock)

	typ := model.DayOut
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.Update(context.Background(), day[2].ID, model.UpdateEventInput{Type: &typ})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidSequence, apperror.From(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NoShiftNightCrossesMidnight(t *testing.T) {
	svc, mock, pub := newService(t, &memRepo{})

	mustCreate(t, svc, mock, input(t, model.DayIn, "22:00"))
	bs := mustCreate(t, svc, mock, input(t, model.BreakStart, "00:15"))
	mustCreate(t, svc, mock, input(t, model.BreakEnd, "00:45"))
	out := mustCreate(t, svc, mock, input(t, model.DayOut, "03:00"))

	assert.Nil(t, bs.ShiftStart)
	assert.Equal(t, testDate.AddDate(0, 0, 1).Add(15*time.Minute), bs.FormatedDateTime)
	assert.Equal(t, testDate.Add(15*time.Minute), bs.DateTime)
	assert.Equal(t, testDate.AddDate(0, 0, 1).Add(3*time.Hour), out.FormatedDateTime)

	require.Len(t, pub.closed, 1)
	assert.Equal(t, 30, pub.closed[0].BreakMinutes)
	assert.InDelta(t, 4.5, pub.closed[0].HoursWorked, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_PastCheckOutWithLaterOpenBreak(t *testing.T) {
	svc, mock, _ := newService(t, &memRepo{})

	mustCreate(t, svc, mock, input(t, model.DayIn, "08:00"))
	out := mustCreate(t, svc, mock, input(t, model.DayOut, "12:00"))
	mustCreate(t, svc, mock, input(t, model.DayIn, "13:00"))
	mustCreate(t, svc, mock, input(t, model.BreakStart, "14:00"))

	note := "left for the dentist"
	mock.ExpectBegin()
	mock.ExpectCommit()
	e, err := svc.Update(context.Background(), out.ID, model.UpdateEventInput{Comment: &note})
	require.NoError(t, err)
	assert.Equal(t, note, *e.Comment)
	assert.Equal(t, out.FormatedDateTime, e.FormatedDateTime)

	moved := tod(t, "11:30")
	mock.ExpectBegin()
	mock.ExpectCommit()
	e, err = svc.Update(context.Background(), out.ID, model.UpdateEventInput{TimeAt: &moved})
	require.NoError(t, err)
	assert.Equal(t, testDate.Add(11*time.Hour+30*time.Minute), e.FormatedDateTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	repo := &memRepo{}
	svc, mock, _ := newService(t, repo)
	e := mustCreate(t, svc, mock, input(t, model.DayIn, "08:00"))

	got, err := svc.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
