package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"menuboard/internal/model"
	"menuboard/internal/store"
)

// Tick runs one evaluation pass over all schedules.
//
// Each schedule is handled independently: a failure executing one is
// recorded on that schedule and logged, and the pass continues with the
// rest. Only an unrecoverable store failure (a corrupted collection)
// aborts the pass and propagates to the caller.
func (e *Engine) Tick() error {
	schedules, err := e.store.MenuSchedules.List()
	if err != nil {
		return fmt.Errorf("list schedules: %w", err)
	}

	now := e.clock.Now()
	e.log.Debug("tick: evaluating schedules", "count", len(schedules), "now", now)

	// Occurrence windows claimed by schedules that executed during this
	// pass, keyed by ID. A recurring schedule re-arms with an advanced
	// start time the moment it executes; schedules evaluated later in the
	// same pass must still conflict against the window it just claimed,
	// not the re-armed one.
	claimed := make(map[uuid.UUID]model.MenuSchedule)

	for _, sched := range schedules {
		switch sched.Status {
		case model.StatusPending:
			if sched.StartTime.After(now) {
				continue // not due yet
			}
			if err := e.activate(sched, now, claimed); err != nil {
				if errors.Is(err, store.ErrCorrupted) {
					return err
				}
				e.log.Error("schedule activation failed",
					"schedule", sched.ID, "name", sched.Name, "error", err)
			}

		case model.StatusActive:
			if sched.EndTime.After(now) {
				continue
			}
			sched.Status = model.StatusEnded
			sched.ErrorMessage = ""
			sched.UpdatedAt = now
			if err := e.store.MenuSchedules.Update(sched.ID, sched); err != nil {
				if errors.Is(err, store.ErrCorrupted) {
					return err
				}
				e.log.Error("failed to end schedule", "schedule", sched.ID, "error", err)
				continue
			}
			e.log.Info("schedule ended", "schedule", sched.ID, "name", sched.Name)
		}
	}

	return nil
}

// activate checks a due schedule for conflicts and either blocks it or
// executes it. Execution errors are recorded on the schedule as Failed.
//
// The schedule list is re-read here rather than reusing the tick's
// snapshot: schedules executed earlier in the same tick are Active by now,
// and the conflict check must see them. Entries in claimed are overlaid
// with the window and Active status they held when they executed, so a
// mid-tick re-arm (or end) cannot hide the occurrence a rival overlaps.
func (e *Engine) activate(sched model.MenuSchedule, now time.Time, claimed map[uuid.UUID]model.MenuSchedule) error {
	all, err := e.store.MenuSchedules.List()
	if err != nil {
		return fmt.Errorf("list schedules for conflict check: %w", err)
	}
	for i, other := range all {
		if c, ok := claimed[other.ID]; ok {
			all[i].StartTime = c.StartTime
			all[i].EndTime = c.EndTime
			all[i].Status = model.StatusActive
		}
	}

	if conflict, ok := FindConflict(sched, now, all); ok {
		e.log.Warn("schedule conflicts, skipping execution",
			"schedule", sched.ID, "name", sched.Name,
			"conflicting_schedule", conflict.ID, "conflicting_name", conflict.Name)

		sched.Status = model.StatusConflicted
		sched.ErrorMessage = fmt.Sprintf("conflicts with schedule %q (%s)", conflict.Name, conflict.ID)
		sched.UpdatedAt = e.clock.Now()
		return e.store.MenuSchedules.Update(sched.ID, sched)
	}

	e.log.Info("executing due schedule", "schedule", sched.ID, "name", sched.Name)

	if err := e.execute(sched); err != nil {
		sched.Status = model.StatusFailed
		sched.ErrorMessage = err.Error()
		sched.UpdatedAt = e.clock.Now()
		if updateErr := e.store.MenuSchedules.Update(sched.ID, sched); updateErr != nil {
			return fmt.Errorf("recording failure %q: %w", err, updateErr)
		}
		return err
	}

	// sched still carries the tick-start window here; execute only
	// rewrites the stored copy.
	claimed[sched.ID] = sched
	return nil
}

// execute applies the schedule's preset to menu item availability and
// advances the schedule's lifecycle.
//
// The schedule is marked Active before the availability pass so a crash
// mid-pass is diagnosable from the persisted state. Availability is a full
// replace, not a merge: items selected by the preset become available,
// every other item becomes unavailable.
func (e *Engine) execute(sched model.MenuSchedule) error {
	sched.Status = model.StatusActive
	sched.UpdatedAt = e.clock.Now()
	if err := e.store.MenuSchedules.Update(sched.ID, sched); err != nil {
		return fmt.Errorf("marking schedule active: %w", err)
	}

	preset, err := e.store.MenuPresets.Get(sched.PresetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("preset %s not found for schedule %s", sched.PresetID, sched.ID)
		}
		return fmt.Errorf("loading preset %s: %w", sched.PresetID, err)
	}

	items, err := e.store.MenuItems.List()
	if err != nil {
		return fmt.Errorf("listing menu items: %w", err)
	}
	for _, item := range items {
		item.IsAvailable = preset.Contains(item.ID)
		if err := e.store.MenuItems.Update(item.ID, item); err != nil {
			return fmt.Errorf("updating item %s availability: %w", item.ID, err)
		}
	}

	// Re-evaluate timing after the availability pass.
	now := e.clock.Now()
	if !sched.EndTime.After(now) {
		sched.Status = model.StatusEnded
		sched.ErrorMessage = ""
		sched.UpdatedAt = now
		if err := e.store.MenuSchedules.Update(sched.ID, sched); err != nil {
			return fmt.Errorf("ending schedule: %w", err)
		}
		e.log.Info("schedule executed and ended", "schedule", sched.ID, "name", sched.Name)
		return nil
	}

	switch sched.Recurrence {
	case model.RecurrenceDaily, model.RecurrenceWeekly, model.RecurrenceMonthly:
		next, ok := nextOccurrence(sched)
		switch {
		case !ok:
			sched.Status = model.StatusEnded
			sched.ErrorMessage = "cannot compute next occurrence"
		case next.After(sched.EndTime):
			sched.Status = model.StatusEnded
			sched.ErrorMessage = "next occurrence is after schedule end time"
		default:
			// Re-arm for the next occurrence.
			sched.StartTime = next
			sched.Status = model.StatusPending
			sched.ErrorMessage = ""
		}
		sched.UpdatedAt = now
		if err := e.store.MenuSchedules.Update(sched.ID, sched); err != nil {
			return fmt.Errorf("re-arming schedule: %w", err)
		}

	case model.RecurrenceCustom:
		// Custom has no next-occurrence formula; the schedule stays Active
		// for its single window and is swept to Ended once end_time passes.
	}

	e.log.Info("schedule executed", "schedule", sched.ID, "name", sched.Name, "status", sched.Status)
	return nil
}
