package engine

import (
	"time"

	"menuboard/internal/model"
)

// FindConflict returns the first schedule in candidates that blocks s from
// activating at instant now.
//
// A candidate blocks s when its [start, end] interval overlaps s's
// interval (closed on both ends) and it is still occupying or entitled to
// that window: either currently Active, or Pending with a start time still
// in the future. Pending schedules that are already due are not counted:
// they are competing for activation in the same tick, and whichever is
// evaluated first wins while the rest conflict against its Active entry.
// Terminal schedules (Ended, Conflicted, Failed) never block anything.
func FindConflict(s model.MenuSchedule, now time.Time, candidates []model.MenuSchedule) (model.MenuSchedule, bool) {
	for _, other := range candidates {
		if other.ID == s.ID {
			continue
		}
		if !s.Overlaps(other) {
			continue
		}
		switch other.Status {
		case model.StatusActive:
			return other, true
		case model.StatusPending:
			if other.StartTime.After(now) {
				return other, true
			}
		}
	}
	return model.MenuSchedule{}, false
}
