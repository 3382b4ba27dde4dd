package clock

import "time"

// Window is a shift with its admissible buffer, seen as one circular interval
// on the 24h dial. The interval starts at Start-Buffer on the nominal date and
// runs to End+Buffer, which lands on the following date when the shift or its
// buffer crosses midnight.
type Window struct {
	Start         TimeOfDay
	End           TimeOfDay
	BufferMinutes int
}

// NewWindow returns nil when either shift boundary is unknown.
func NewWindow(start, end *TimeOfDay, bufferMinutes int) *Window {
	if start == nil || end == nil {
		return nil
	}
	if bufferMinutes < 0 {
		bufferMinutes = 0
	}
	return &Window{Start: *start, End: *end, BufferMinutes: bufferMinutes}
}

// CrossesMidnight reports whether the shift itself ends on the next day.
func (w *Window) CrossesMidnight() bool {
	return w.End < w.Start
}

func (w *Window) buffer() int { return w.BufferMinutes * 60 }

// bounds returns the window in seconds relative to midnight of the nominal date.
func (w *Window) bounds() (lo, hi int) {
	lo = int(w.Start) - w.buffer()
	hi = int(w.End) + w.buffer()
	if w.CrossesMidnight() {
		hi += day
	}
	return lo, hi
}

// full reports whether the buffered window covers the whole dial.
func (w *Window) full() bool {
	lo, hi := w.bounds()
	return hi-lo >= day
}

// DayOffset reports whether t falls on the nominal date (0) or the following
// one (1) inside the window. ok is false when t is outside the window or the
// window covers the whole dial, in which case the offset is ambiguous.
func (w *Window) DayOffset(t TimeOfDay) (offset int, ok bool) {
	if w == nil || w.full() {
		return 0, false
	}
	lo, hi := w.bounds()
	for _, k := range []int{0, 1} {
		s := int(t) + k*day
		if s >= lo && s <= hi {
			return k, true
		}
	}
	return 0, false
}

// Admits reports whether t lies inside the buffered window. Both boundaries
// are inclusive. A nil window (no shift configured yet) admits everything.
func (w *Window) Admits(t TimeOfDay) bool {
	if w == nil || w.full() {
		return true
	}
	_, ok := w.DayOffset(t)
	return ok
}

// AllowedStart is the earliest admissible wall-clock time.
func (w *Window) AllowedStart() TimeOfDay {
	return w.Start.Add(-time.Duration(w.BufferMinutes) * time.Minute)
}

// AllowedEnd is the latest admissible wall-clock time.
func (w *Window) AllowedEnd() TimeOfDay {
	return w.End.Add(time.Duration(w.BufferMinutes) * time.Minute)
}
