package timeline

import (
	"timeclock.service/internal/core/apperror"
	"timeclock.service/internal/core/clock"
)

// Validate runs the shared pipeline for a candidate against a snapshot:
// duplicate time, the type's sequence rules, the buffer window and overlap.
// It returns nil when the candidate is admissible.
func Validate(c Candidate, tl *Timeline, w *clock.Window) error {
	typeRules, ok := rules[c.Type]
	if !ok {
		return apperror.Validation(apperror.CodeInvalidInput, "Unknown event type %q", c.Type)
	}

	if tl.HasDuplicateTime(c.TimeAt) {
		return apperror.Validation(apperror.CodeDuplicateTimestamp, "An event already exists at %s", c.TimeAt)
	}

	for _, r := range typeRules {
		if err := r(c, tl); err != nil {
			return err
		}
	}

	if !w.Admits(c.TimeAt) {
		return apperror.Validation(apperror.CodeOutsideBuffer,
			"Time %s is outside the allowed window %s - %s", c.TimeAt, w.AllowedStart(), w.AllowedEnd())
	}

	return checkOverlap(c, tl)
}
