package timeline

import (
	"timeclock.service/internal/core/apperror"
	"timeclock.service/internal/core/clock"
	"timeclock.service/internal/core/model"
)

// checkOverlap rejects candidates colliding with another event or landing
// inside a closed break. A break_end skips the break it is closing.
func checkOverlap(c Candidate, tl *Timeline) error {
	var own *model.TimeClockEvent
	if c.Type == model.BreakEnd {
		own = counterpart(c, tl)
	}
	isOwn := func(e *model.TimeClockEvent) bool {
		return own != nil && e.FormatedDateTime.Equal(own.FormatedDateTime)
	}

	for i := range tl.events {
		e := &tl.events[i]
		if isOwn(e) {
			continue
		}
		if e.FormatedDateTime.Equal(c.At) {
			return apperror.Validation(apperror.CodeOverlap,
				"Time %s collides with the %s at %s", c.TimeAt, label(e.Type), at(e))
		}
	}

	for _, r := range tl.BreakRanges() {
		if r.Open || (own != nil && r.From.Equal(own.FormatedDateTime)) {
			continue
		}
		if r.From.Equal(c.At) || r.Contains(c.At) {
			return apperror.Validation(apperror.CodeOverlap,
				"Time %s overlaps the break %s - %s", c.TimeAt, clock.Of(r.From), clock.Of(r.To))
		}
	}
	return nil
}
