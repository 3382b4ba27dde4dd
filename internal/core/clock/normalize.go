package clock

import "time"

// Legacy thresholds for placing an event after midnight when the window alone
// cannot decide (time outside the window, or a window spanning the whole dial).
const (
	earlyMorningHour = 5
	lateShiftEndHour = 20
)

// Normalize turns the nominal date and wall-clock time into the literal
// date-time and the authoritative, midnight-adjusted timestamp. It never fails;
// admissibility is decided elsewhere.
func Normalize(date time.Time, t TimeOfDay, w *Window) (dateTime, formatted time.Time) {
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dateTime = date.Add(t.Duration())
	if NextDay(t, w) {
		return dateTime, dateTime.AddDate(0, 0, 1)
	}
	return dateTime, dateTime
}

// NextDay reports whether t belongs to the calendar day after the nominal date.
func NextDay(t TimeOfDay, w *Window) bool {
	if w == nil {
		return false
	}
	if offset, ok := w.DayOffset(t); ok {
		return offset == 1
	}
	if w.CrossesMidnight() && t <= w.End {
		return true
	}
	return t.Hour() < earlyMorningHour && w.End.Hour() >= lateShiftEndHour
}
