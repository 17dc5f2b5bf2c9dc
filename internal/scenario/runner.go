package scenario

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"menuboard/internal/engine"
	"menuboard/internal/model"
	"menuboard/internal/store"
)

// TraceEvent records one schedule status transition observed after a tick.
// Tick numbering starts at 1. Entities appear under their scenario names so
// traces are stable across runs despite freshly generated IDs.
type TraceEvent struct {
	Tick     int    `json:"tick"`
	Schedule string `json:"schedule"`
	Status   string `json:"status"`
}

// Result holds the outcome of one scenario run.
type Result struct {
	Trace  []TraceEvent
	Errors []string
}

// Passed reports whether every assertion held.
func (r *Result) Passed() bool {
	return len(r.Errors) == 0
}

// Run executes the scenario against a fresh store in dataDir.
//
// The engine is driven by calling Tick directly under a manual clock, never
// through the background loop, so every run is deterministic. Per-schedule
// failures recorded by the engine are part of normal scenario behavior;
// only store-level failures abort the run.
func Run(sc *Scenario, dataDir string) (*Result, error) {
	st, err := store.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	itemIDs, err := seedItems(st, sc.Items)
	if err != nil {
		return nil, err
	}
	presetIDs, err := seedPresets(st, sc.Presets, itemIDs)
	if err != nil {
		return nil, err
	}
	scheduleNames, err := seedSchedules(st, sc.Schedules, presetIDs)
	if err != nil {
		return nil, err
	}

	clock := engine.NewManualClock(sc.Start)
	eng := engine.New(st,
		engine.WithClock(clock),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	result := &Result{}
	lastStatus := make(map[uuid.UUID]model.ScheduleStatus)
	for id := range scheduleNames {
		lastStatus[id] = model.StatusPending
	}

	tick := 0
	for _, step := range sc.Steps {
		if step.Advance != "" {
			d, err := time.ParseDuration(step.Advance)
			if err != nil {
				return nil, fmt.Errorf("invalid advance %q: %w", step.Advance, err)
			}
			clock.Advance(d)
		}

		ticks := step.Ticks
		if ticks == 0 {
			ticks = 1
		}
		for i := 0; i < ticks; i++ {
			tick++
			if err := eng.Tick(); err != nil {
				return nil, fmt.Errorf("tick %d: %w", tick, err)
			}
			if err := recordTransitions(st, scheduleNames, lastStatus, tick, result); err != nil {
				return nil, err
			}
		}
	}

	if err := evaluateAssertions(sc, st, result); err != nil {
		return nil, err
	}
	return result, nil
}

func seedItems(st *store.Store, defs []ItemDef) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(defs))
	for _, def := range defs {
		category, err := model.ParseCategory(def.Category)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", def.Name, err)
		}
		item := model.MenuItem{
			ID:          uuid.New(),
			Name:        def.Name,
			Category:    category,
			Allergens:   []string{},
			IsAvailable: def.Available,
		}
		if err := st.MenuItems.Insert(item); err != nil {
			return nil, fmt.Errorf("seed item %q: %w", def.Name, err)
		}
		ids[def.Name] = item.ID
	}
	return ids, nil
}

func seedPresets(st *store.Store, defs []PresetDef, itemIDs map[string]uuid.UUID) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(defs))
	for _, def := range defs {
		preset := model.MenuPreset{
			ID:          uuid.New(),
			Name:        def.Name,
			MenuItemIDs: make([]uuid.UUID, 0, len(def.Items)),
		}
		for _, itemName := range def.Items {
			itemID, ok := itemIDs[itemName]
			if !ok {
				return nil, fmt.Errorf("preset %q references undefined item %q", def.Name, itemName)
			}
			preset.MenuItemIDs = append(preset.MenuItemIDs, itemID)
		}
		if err := st.MenuPresets.Insert(preset); err != nil {
			return nil, fmt.Errorf("seed preset %q: %w", def.Name, err)
		}
		ids[def.Name] = preset.ID
	}
	return ids, nil
}

// seedSchedules inserts all schedules as Pending. A schedule naming an
// undefined preset gets a random preset ID, which the engine will report
// as a failure at activation; scenarios use this to exercise Failed.
func seedSchedules(st *store.Store, defs []ScheduleDef, presetIDs map[string]uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(defs))
	for _, def := range defs {
		recurrence, err := model.ParseRecurrence(def.Recurrence)
		if err != nil {
			return nil, fmt.Errorf("schedule %q: %w", def.Name, err)
		}
		presetID, ok := presetIDs[def.Preset]
		if !ok {
			presetID = uuid.New()
		}
		sched := model.MenuSchedule{
			ID:         uuid.New(),
			PresetID:   presetID,
			Name:       def.Name,
			StartTime:  def.Start.UTC(),
			EndTime:    def.End.UTC(),
			Recurrence: recurrence,
			Status:     model.StatusPending,
		}
		if err := st.MenuSchedules.Insert(sched); err != nil {
			return nil, fmt.Errorf("seed schedule %q: %w", def.Name, err)
		}
		names[sched.ID] = def.Name
	}
	return names, nil
}

// recordTransitions appends a trace event for every schedule whose status
// changed since the previous tick, ordered by schedule name.
func recordTransitions(st *store.Store, names map[uuid.UUID]string, lastStatus map[uuid.UUID]model.ScheduleStatus, tick int, result *Result) error {
	schedules, err := st.MenuSchedules.List()
	if err != nil {
		return fmt.Errorf("list schedules after tick %d: %w", tick, err)
	}

	var events []TraceEvent
	for _, sched := range schedules {
		if sched.Status == lastStatus[sched.ID] {
			continue
		}
		lastStatus[sched.ID] = sched.Status
		events = append(events, TraceEvent{
			Tick:     tick,
			Schedule: names[sched.ID],
			Status:   string(sched.Status),
		})
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Schedule < events[j].Schedule
	})
	result.Trace = append(result.Trace, events...)
	return nil
}
