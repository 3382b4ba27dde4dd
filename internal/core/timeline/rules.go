package timeline

import (
	"time"

	"timeclock.service/internal/core/apperror"
	"timeclock.service/internal/core/clock"
	"timeclock.service/internal/core/model"
)

// Candidate is the event being created or moved.
type Candidate struct {
	Type   model.EventType
	TimeAt clock.TimeOfDay
	// At is the normalized timestamp of the candidate.
	At time.Time
}

type rule func(c Candidate, tl *Timeline) error

// rules lists the sequence preconditions of every event type, in order.
var rules = map[model.EventType][]rule{
	model.DayIn: {
		notInsideClosedShift,
		noActiveDayIn,
		previousIs(model.DayOut),
		nextIs(model.BreakStart, model.DayOut),
	},
	model.DayOut: {
		hasActiveDayIn,
		afterLastBreakEnd,
		noOpenBreak,
		requirePreviousIs(model.DayIn, model.BreakEnd),
		nextIs(model.DayIn),
	},
	model.BreakStart: {
		breakStartPredecessor,
		nextIs(model.BreakEnd, model.DayOut),
	},
	model.BreakEnd: {
		closesOpenBreak,
		nextIs(model.BreakStart, model.DayOut),
	},
}

func sequenceErr(format string, args ...any) error {
	return apperror.Validation(apperror.CodeInvalidSequence, format, args...)
}

func label(t model.EventType) string {
	switch t {
	case model.DayIn:
		return "check-in"
	case model.DayOut:
		return "check-out"
	case model.BreakStart:
		return "break start"
	case model.BreakEnd:
		return "break end"
	}
	return string(t)
}

func at(e *model.TimeClockEvent) string { return e.TimeAt.String() }

func oneOf(t model.EventType, allowed []model.EventType) bool {
	for _, a := range allowed {
		if t == a {
			return true
		}
	}
	return false
}

// previousIs passes when there is no previous event or it has an allowed type.
func previousIs(allowed ...model.EventType) rule {
	return func(c Candidate, tl *Timeline) error {
		prev := tl.Previous(c.At)
		if prev == nil || oneOf(prev.Type, allowed) {
			return nil
		}
		return sequenceErr("A %s cannot follow the %s at %s", label(c.Type), label(prev.Type), at(prev))
	}
}

// requirePreviousIs is previousIs without the empty-timeline allowance.
func requirePreviousIs(allowed ...model.EventType) rule {
	return func(c Candidate, tl *Timeline) error {
		prev := tl.Previous(c.At)
		if prev == nil {
			return sequenceErr("A %s at %s must come after a check-in", label(c.Type), c.TimeAt)
		}
		return previousIs(allowed...)(c, tl)
	}
}

// nextIs passes when there is no later event or it has an allowed type.
func nextIs(allowed ...model.EventType) rule {
	return func(c Candidate, tl *Timeline) error {
		next := tl.Next(c.At)
		if next == nil || oneOf(next.Type, allowed) {
			return nil
		}
		return sequenceErr("A %s at %s must be before the %s at %s", label(c.Type), c.TimeAt, label(next.Type), at(next))
	}
}

func notInsideClosedShift(c Candidate, tl *Timeline) error {
	for _, r := range tl.BlockedRanges() {
		if !r.Open && r.Contains(c.At) {
			return sequenceErr("Time %s falls within existing shift %s - %s", c.TimeAt, clock.Of(r.From), clock.Of(r.To))
		}
	}
	return nil
}

func noActiveDayIn(c Candidate, tl *Timeline) error {
	if !tl.HasActiveDayIn() {
		return nil
	}
	for _, r := range tl.BlockedRanges() {
		if r.Open {
			return sequenceErr("Already checked in at %s", clock.Of(r.From))
		}
	}
	return sequenceErr("Already checked in")
}

func hasActiveDayIn(c Candidate, tl *Timeline) error {
	if tl.HasActiveDayIn() {
		return nil
	}
	return sequenceErr("No active check-in found for check-out at %s", c.TimeAt)
}

func afterLastBreakEnd(c Candidate, tl *Timeline) error {
	last := tl.LastBreakEnd()
	if last == nil || c.At.After(last.FormatedDateTime) {
		return nil
	}
	// A break end belonging to a later shift does not constrain this one.
	for _, r := range tl.BlockedRanges() {
		if r.From.After(c.At) && !r.From.After(last.FormatedDateTime) {
			return nil
		}
	}
	return sequenceErr("Check-out must be after last break end (%s)", at(last))
}

// noOpenBreak only looks at breaks before the candidate; an open break of a
// later shift does not block re-validating an earlier check-out.
func noOpenBreak(c Candidate, tl *Timeline) error {
	if open := tl.OpenBreakBefore(c.At); open != nil {
		return sequenceErr("Cannot check out while the break started at %s is open", at(open))
	}
	return nil
}

func breakStartPredecessor(c Candidate, tl *Timeline) error {
	prev := tl.Previous(c.At)
	if prev == nil {
		return sequenceErr("No check-in found before break start at %s", c.TimeAt)
	}
	switch prev.Type {
	case model.BreakStart:
		return sequenceErr("Previous break started at %s is still open", at(prev))
	case model.DayOut:
		return sequenceErr("Shift already ended at %s", at(prev))
	}
	if !c.At.After(prev.FormatedDateTime) {
		return sequenceErr("Break start must be after %s at %s", label(prev.Type), at(prev))
	}
	return nil
}

// counterpart finds the break_start a break_end closes. The nearest
// unclosed break before the candidate wins; otherwise the last open break of
// the day is reported so the caller gets a precise message.
func counterpart(c Candidate, tl *Timeline) *model.TimeClockEvent {
	if open := tl.OpenBreakBefore(c.At); open != nil {
		return open
	}
	return tl.LastOpenBreak()
}

func closesOpenBreak(c Candidate, tl *Timeline) error {
	open := counterpart(c, tl)
	if open == nil {
		return sequenceErr("No active break found for break end at %s", c.TimeAt)
	}
	if !c.At.After(open.FormatedDateTime) {
		return sequenceErr("Break end must be after break start (%s)", at(open))
	}
	return nil
}
