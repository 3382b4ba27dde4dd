package model

import (
	"time"

	"github.com/google/uuid"

	"timeclock.service/internal/core/clock"
)

// EventType is the closed set of attendance event kinds.
type EventType string

const (
	DayIn      EventType = "day_in"
	DayOut     EventType = "day_out"
	BreakStart EventType = "break_start"
	BreakEnd   EventType = "break_end"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case DayIn, DayOut, BreakStart, BreakEnd:
		return true
	}
	return false
}

// SyncStatus tracks forwarding of an event to the legacy attendance system.
type SyncStatus string

const (
	SyncPending    SyncStatus = "PENDING"
	SyncProcessing SyncStatus = "PROCESSING"
	SyncCompleted  SyncStatus = "COMPLETED"
	SyncFailed     SyncStatus = "FAILED"
)

// EmailStatus tracks the shift summary email sent on day_out.
type EmailStatus string

const (
	EmailPending    EmailStatus = "PENDING"
	EmailProcessing EmailStatus = "PROCESSING"
	EmailCompleted  EmailStatus = "COMPLETED"
	EmailFailed     EmailStatus = "FAILED"
	EmailSkipped    EmailStatus = "SKIPPED"
)

// DayKey scopes every timeline query.
type DayKey struct {
	ShopID int64
	UserID int64
	DateAt time.Time
}

type TimeClockEvent struct {
	ID               uuid.UUID        `json:"id"`
	ShopID           int64            `json:"shop_id"`
	UserID           int64            `json:"user_id"`
	DateAt           time.Time        `json:"date_at"`
	TimeAt           clock.TimeOfDay  `json:"time_at"`
	DateTime         time.Time        `json:"date_time"`
	FormatedDateTime time.Time        `json:"formated_date_time"`
	ShiftStart       *clock.TimeOfDay `json:"shift_start,omitempty"`
	ShiftEnd         *clock.TimeOfDay `json:"shift_end,omitempty"`
	BufferMinutes    int              `json:"buffer_minutes"`
	Type             EventType        `json:"type"`
	Comment          *string          `json:"comment,omitempty"`
	CreatedFrom      *string          `json:"created_from,omitempty"`
	UpdatedFrom      *string          `json:"updated_from,omitempty"`
	SyncStatus       SyncStatus       `json:"-"`
	SyncRetryCount   int              `json:"-"`
	EmailStatus      EmailStatus      `json:"-"`
	EmailRetryCount  int              `json:"-"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Key returns the employee/day group the event belongs to.
func (e *TimeClockEvent) Key() DayKey {
	return DayKey{ShopID: e.ShopID, UserID: e.UserID, DateAt: e.DateAt}
}

// Window returns the buffered shift window recorded on the event, or nil.
func (e *TimeClockEvent) Window() *clock.Window {
	return clock.NewWindow(e.ShiftStart, e.ShiftEnd, e.BufferMinutes)
}

// CreateEventInput is the normalized payload for recording a new event.
type CreateEventInput struct {
	ShopID     int64
	UserID     int64
	DateAt     time.Time
	TimeAt     clock.TimeOfDay
	Type       EventType
	ShiftStart *clock.TimeOfDay
	ShiftEnd   *clock.TimeOfDay

	// BufferMinutes is already converted from the hours supplied by callers.
	BufferMinutes int
	Comment       *string
	CreatedFrom   *string
}

// UpdateEventInput carries the mutable fields of an edit; nil means unchanged.
type UpdateEventInput struct {
	TimeAt      *clock.TimeOfDay
	Type        *EventType
	Comment     *string
	UpdatedFrom *string
}
