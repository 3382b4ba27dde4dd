// Package timeline validates attendance events against a snapshot of the
// employee's events for one nominal date.
package timeline

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"timeclock.service/internal/core/clock"
	"timeclock.service/internal/core/model"
)

// Without a shift window, an early-morning time follows the previous evening's
// events when nothing earlier that morning has been recorded.
const (
	morningCutoffHour = 6
	afternoonHour     = 12
)

// Range is a half-open interval of formatted timestamps.
type Range struct {
	From time.Time
	To   time.Time
	// Open is set for a shift that has no day_out yet; To is then end of day.
	Open bool
}

// Contains reports whether t lies strictly inside the range.
func (r Range) Contains(t time.Time) bool {
	return t.After(r.From) && t.Before(r.To)
}

// Timeline is an immutable, ordered snapshot of one employee/day group.
type Timeline struct {
	events []model.TimeClockEvent
}

// New sorts events by formatted timestamp. Events whose id equals exclude are
// left out, which is how an edited row avoids colliding with itself.
func New(events []model.TimeClockEvent, exclude uuid.UUID) *Timeline {
	out := make([]model.TimeClockEvent, 0, len(events))
	for _, e := range events {
		if exclude != uuid.Nil && e.ID == exclude {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FormatedDateTime.Before(out[j].FormatedDateTime)
	})
	return &Timeline{events: out}
}

// Events returns the events in authoritative order.
func (tl *Timeline) Events() []model.TimeClockEvent {
	return append([]model.TimeClockEvent(nil), tl.events...)
}

// ByWallClock returns the events ordered by raw time_at, as older reports expect.
func (tl *Timeline) ByWallClock() []model.TimeClockEvent {
	out := tl.Events()
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimeAt < out[j].TimeAt })
	return out
}

func (tl *Timeline) Len() int { return len(tl.events) }

// Place normalizes t on date against the snapshot. With a window the result
// is clock.Normalize; without one, an early-morning time with no earlier event
// that morning moves to the next day when the day's latest event is in the
// afternoon or already past midnight.
func (tl *Timeline) Place(date time.Time, t clock.TimeOfDay, w *clock.Window) (dateTime, formatted time.Time) {
	dateTime, formatted = clock.Normalize(date, t, w)
	if w != nil || t.Hour() >= morningCutoffHour || len(tl.events) == 0 {
		return dateTime, formatted
	}
	if tl.Previous(formatted) != nil {
		return dateTime, formatted
	}
	latest := tl.events[len(tl.events)-1].FormatedDateTime.UTC()
	nextDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	if !latest.Before(nextDay) || latest.Hour() >= afternoonHour {
		return dateTime, formatted.AddDate(0, 0, 1)
	}
	return dateTime, formatted
}

// Previous returns the nearest event strictly before at. Placed timestamps are
// midnight-adjusted, so an early-morning candidate finds same-morning events
// first and otherwise the latest event of the previous evening.
func (tl *Timeline) Previous(at time.Time) *model.TimeClockEvent {
	for i := len(tl.events) - 1; i >= 0; i-- {
		if tl.events[i].FormatedDateTime.Before(at) {
			return &tl.events[i]
		}
	}
	return nil
}

// Next returns the nearest event strictly after at.
func (tl *Timeline) Next(at time.Time) *model.TimeClockEvent {
	for i := range tl.events {
		if tl.events[i].FormatedDateTime.After(at) {
			return &tl.events[i]
		}
	}
	return nil
}

func (tl *Timeline) count(t model.EventType) int {
	n := 0
	for _, e := range tl.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// HasActiveDayIn reports an unmatched day_in.
func (tl *Timeline) HasActiveDayIn() bool {
	return tl.count(model.DayIn) > tl.count(model.DayOut)
}

// LastOpenBreak scans newest first for a break_start with no break_end after it.
func (tl *Timeline) LastOpenBreak() *model.TimeClockEvent {
	closed := false
	for i := len(tl.events) - 1; i >= 0; i-- {
		switch tl.events[i].Type {
		case model.BreakEnd:
			closed = true
		case model.BreakStart:
			if !closed {
				return &tl.events[i]
			}
			return nil
		}
	}
	return nil
}

// OpenBreakBefore returns the break_start preceding at that has no break_end
// between it and at. Used when a break_end is moved inside an older break.
func (tl *Timeline) OpenBreakBefore(at time.Time) *model.TimeClockEvent {
	for i := len(tl.events) - 1; i >= 0; i-- {
		e := &tl.events[i]
		if !e.FormatedDateTime.Before(at) {
			continue
		}
		switch e.Type {
		case model.BreakEnd:
			return nil
		case model.BreakStart:
			return e
		}
	}
	return nil
}

// LastBreakEnd returns the most recent break_end.
func (tl *Timeline) LastBreakEnd() *model.TimeClockEvent {
	for i := len(tl.events) - 1; i >= 0; i-- {
		if tl.events[i].Type == model.BreakEnd {
			return &tl.events[i]
		}
	}
	return nil
}

// HasDuplicateTime reports an existing event at the identical wall-clock time.
func (tl *Timeline) HasDuplicateTime(t clock.TimeOfDay) bool {
	for _, e := range tl.events {
		if e.TimeAt == t {
			return true
		}
	}
	return false
}

// BlockedRanges pairs every day_in with the following day_out. A trailing
// unmatched day_in yields an Open range running to the end of the next day.
func (tl *Timeline) BlockedRanges() []Range {
	return tl.pair(model.DayIn, model.DayOut)
}

// BreakRanges pairs every break_start with the following break_end.
func (tl *Timeline) BreakRanges() []Range {
	return tl.pair(model.BreakStart, model.BreakEnd)
}

func (tl *Timeline) pair(opener, closer model.EventType) []Range {
	var (
		ranges []Range
		start  *time.Time
	)
	for i := range tl.events {
		e := tl.events[i]
		switch e.Type {
		case opener:
			if start == nil {
				s := e.FormatedDateTime
				start = &s
			}
		case closer:
			if start != nil {
				ranges = append(ranges, Range{From: *start, To: e.FormatedDateTime})
				start = nil
			}
		}
	}
	if start != nil {
		d := start.UTC()
		end := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 2)
		ranges = append(ranges, Range{From: *start, To: end, Open: true})
	}
	return ranges
}
