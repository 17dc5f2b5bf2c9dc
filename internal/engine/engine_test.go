package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuboard/internal/model"
	"menuboard/internal/store"
)

func newTestEngine(t *testing.T, now time.Time) (*Engine, *store.Store, *ManualClock) {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	clock := NewManualClock(now)
	e := New(s, WithClock(clock), WithLogger(testLogger()))
	return e, s, clock
}

func addItem(t *testing.T, s *store.Store, name string, available bool) model.MenuItem {
	t.Helper()
	item := model.MenuItem{
		ID:          uuid.New(),
		Name:        name,
		Category:    model.CategoryMains,
		Allergens:   []string{},
		IsAvailable: available,
	}
	require.NoError(t, s.MenuItems.Insert(item))
	return item
}

func addPreset(t *testing.T, s *store.Store, name string, items ...model.MenuItem) model.MenuPreset {
	t.Helper()
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	preset := model.MenuPreset{ID: uuid.New(), Name: name, MenuItemIDs: ids}
	require.NoError(t, s.MenuPresets.Insert(preset))
	return preset
}

func addSchedule(t *testing.T, s *store.Store, name string, presetID uuid.UUID, start, end time.Time, rec model.Recurrence) model.MenuSchedule {
	t.Helper()
	sched := model.MenuSchedule{
		ID:         uuid.New(),
		PresetID:   presetID,
		Name:       name,
		StartTime:  start,
		EndTime:    end,
		Recurrence: rec,
		Status:     model.StatusPending,
	}
	require.NoError(t, s.MenuSchedules.Insert(sched))
	return sched
}

func availability(t *testing.T, s *store.Store, id uuid.UUID) bool {
	t.Helper()
	item, err := s.MenuItems.Get(id)
	require.NoError(t, err)
	return item.IsAvailable
}

func scheduleStatus(t *testing.T, s *store.Store, id uuid.UUID) model.MenuSchedule {
	t.Helper()
	sched, err := s.MenuSchedules.Get(id)
	require.NoError(t, err)
	return sched
}

func TestTick_EndToEnd(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")
	e, s, clock := newTestEngine(t, now)

	a := addItem(t, s, "A", false)
	b := addItem(t, s, "B", false)
	c := addItem(t, s, "C", false)
	preset := addPreset(t, s, "lunch", a, b)
	sched := addSchedule(t, s, "lunch window", preset.ID, now, now.Add(2*time.Hour), model.RecurrenceCustom)

	require.NoError(t, e.Tick())

	assert.True(t, availability(t, s, a.ID))
	assert.True(t, availability(t, s, b.ID))
	assert.False(t, availability(t, s, c.ID))
	assert.Equal(t, model.StatusActive, scheduleStatus(t, s, sched.ID).Status)

	// A tick after end_time sweeps the active schedule to Ended.
	clock.Advance(2 * time.Hour)
	require.NoError(t, e.Tick())
	got := scheduleStatus(t, s, sched.ID)
	assert.Equal(t, model.StatusEnded, got.Status)
	assert.Empty(t, got.ErrorMessage)
}

func TestTick_NotDueYet(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")
	e, s, _ := newTestEngine(t, now)

	a := addItem(t, s, "A", false)
	preset := addPreset(t, s, "dinner", a)
	sched := addSchedule(t, s, "dinner window", preset.ID, now.Add(time.Hour), now.Add(3*time.Hour), model.RecurrenceCustom)

	require.NoError(t, e.Tick())

	assert.False(t, availability(t, s, a.ID))
	assert.Equal(t, model.StatusPending, scheduleStatus(t, s, sched.ID).Status)
}

func TestTick_ConflictScenario(t *testing.T) {
	start := mustTime(t, "2025-03-10T12:00:00Z")
	e, s, clock := newTestEngine(t, start)

	a := addItem(t, s, "A", false)
	b := addItem(t, s, "B", false)
	p1 := addPreset(t, s, "P1", a)
	p2 := addPreset(t, s, "P2", b)

	// S1 covers [0h, 2h], S2 covers [1h, 3h]; the tick lands at 1.5h so
	// both are due.
	s1 := addSchedule(t, s, "S1", p1.ID, start, start.Add(2*time.Hour), model.RecurrenceCustom)
	s2 := addSchedule(t, s, "S2", p2.ID, start.Add(time.Hour), start.Add(3*time.Hour), model.RecurrenceCustom)
	clock.Set(start.Add(90 * time.Minute))

	require.NoError(t, e.Tick())

	got1 := scheduleStatus(t, s, s1.ID)
	got2 := scheduleStatus(t, s, s2.ID)
	assert.Equal(t, model.StatusActive, got1.Status)
	assert.Equal(t, model.StatusConflicted, got2.Status)
	assert.Contains(t, got2.ErrorMessage, "S1")
	assert.Contains(t, got2.ErrorMessage, s1.ID.String())

	// Menu items reflect only P1's effect.
	assert.True(t, availability(t, s, a.ID))
	assert.False(t, availability(t, s, b.ID))
}

func TestTick_RearmedScheduleStillBlocksOverlappingRival(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")
	e, s, _ := newTestEngine(t, now)

	a := addItem(t, s, "A", false)
	b := addItem(t, s, "B", false)
	p1 := addPreset(t, s, "P1", a)
	p2 := addPreset(t, s, "P2", b)

	// S1 executes first and immediately re-arms a day ahead, moving its
	// stored start time past S2's window. S2 must still conflict against
	// the occurrence S1 just claimed, not the re-armed interval.
	s1 := addSchedule(t, s, "S1", p1.ID, now, now.Add(30*24*time.Hour), model.RecurrenceDaily)
	s2 := addSchedule(t, s, "S2", p2.ID, now, now.Add(2*time.Hour), model.RecurrenceCustom)

	require.NoError(t, e.Tick())

	got1 := scheduleStatus(t, s, s1.ID)
	got2 := scheduleStatus(t, s, s2.ID)
	assert.Equal(t, model.StatusPending, got1.Status)
	assert.Equal(t, now.Add(24*time.Hour), got1.StartTime)
	assert.Equal(t, model.StatusConflicted, got2.Status)
	assert.Contains(t, got2.ErrorMessage, "S1")

	// Only P1's assignment is in effect.
	assert.True(t, availability(t, s, a.ID))
	assert.False(t, availability(t, s, b.ID))
}

func TestTick_DailyRecurrenceRearms(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")
	e, s, _ := newTestEngine(t, now)

	a := addItem(t, s, "A", false)
	preset := addPreset(t, s, "daily special", a)
	sched := addSchedule(t, s, "specials", preset.ID, now, now.Add(30*24*time.Hour), model.RecurrenceDaily)

	require.NoError(t, e.Tick())

	got := scheduleStatus(t, s, sched.ID)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, now.Add(24*time.Hour), got.StartTime)
	assert.Empty(t, got.ErrorMessage)
	assert.True(t, availability(t, s, a.ID))
}

func TestTick_RecurrenceExhausted(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")
	e, s, _ := newTestEngine(t, now)

	a := addItem(t, s, "A", false)
	preset := addPreset(t, s, "short run", a)
	// Daily recurrence, but the window closes before the next occurrence.
	sched := addSchedule(t, s, "one-shot daily", preset.ID, now, now.Add(10*time.Hour), model.RecurrenceDaily)

	require.NoError(t, e.Tick())

	got := scheduleStatus(t, s, sched.ID)
	assert.Equal(t, model.StatusEnded, got.Status)
	assert.Contains(t, got.ErrorMessage, "next occurrence")
}

func TestTick_EndTimeBoundary(t *testing.T) {
	// A schedule whose end_time equals the tick instant ends, never stays
	// Active.
	now := mustTime(t, "2025-03-10T12:00:00Z")
	e, s, clock := newTestEngine(t, now)

	a := addItem(t, s, "A", false)
	preset := addPreset(t, s, "boundary", a)
	sched := addSchedule(t, s, "boundary window", preset.ID, now, now.Add(time.Hour), model.RecurrenceCustom)

	require.NoError(t, e.Tick())
	require.Equal(t, model.StatusActive, scheduleStatus(t, s, sched.ID).Status)

	clock.Set(sched.EndTime)
	require.NoError(t, e.Tick())
	assert.Equal(t, model.StatusEnded, scheduleStatus(t, s, sched.ID).Status)
}

func TestTick_MissingPresetFailsSchedule(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")
	e, s, _ := newTestEngine(t, now)

	a := addItem(t, s, "A", false)
	missing := uuid.New()
	sched := addSchedule(t, s, "dangling", missing, now, now.Add(time.Hour), model.RecurrenceCustom)

	require.NoError(t, e.Tick())

	got := scheduleStatus(t, s, sched.ID)
	assert.Equal(t, model.StatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, missing.String())
	assert.False(t, availability(t, s, a.ID), "a failed schedule must not touch menu items")
}

func TestTick_FailureDoesNotAbortOthers(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")
	e, s, _ := newTestEngine(t, now)

	a := addItem(t, s, "A", false)
	preset := addPreset(t, s, "good", a)

	// Broken schedule sorts first in the collection and fails; the valid,
	// non-overlapping one must still execute in the same tick.
	broken := addSchedule(t, s, "broken", uuid.New(), now.Add(-3*time.Hour), now.Add(-2*time.Hour), model.RecurrenceCustom)
	good := addSchedule(t, s, "good window", preset.ID, now, now.Add(time.Hour), model.RecurrenceCustom)

	require.NoError(t, e.Tick())

	assert.Equal(t, model.StatusFailed, scheduleStatus(t, s, broken.ID).Status)
	assert.Equal(t, model.StatusActive, scheduleStatus(t, s, good.ID).Status)
	assert.True(t, availability(t, s, a.ID))
}

func TestTick_ExecutionIsIdempotent(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")
	e, s, _ := newTestEngine(t, now)

	a := addItem(t, s, "A", true)
	b := addItem(t, s, "B", false)
	c := addItem(t, s, "C", true)
	preset := addPreset(t, s, "subset", a, b)
	sched := addSchedule(t, s, "window", preset.ID, now, now.Add(2*time.Hour), model.RecurrenceCustom)

	snapshot := func() []bool {
		return []bool{
			availability(t, s, a.ID),
			availability(t, s, b.ID),
			availability(t, s, c.ID),
		}
	}

	require.NoError(t, e.execute(scheduleStatus(t, s, sched.ID)))
	first := snapshot()
	assert.Equal(t, []bool{true, true, false}, first)

	require.NoError(t, e.execute(scheduleStatus(t, s, sched.ID)))
	assert.Equal(t, first, snapshot())
}

func TestStart_SkipsImmediateTick(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	clock := NewManualClock(now)

	a := addItem(t, s, "A", false)
	preset := addPreset(t, s, "startup", a)
	sched := addSchedule(t, s, "due at boot", preset.ID, now.Add(-time.Hour), now.Add(time.Hour), model.RecurrenceCustom)

	e := New(s, WithClock(clock), WithInterval(200*time.Millisecond), WithLogger(testLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e.Start(ctx)
	defer e.Stop()

	// Well before the first interval boundary nothing may have run, even
	// though the schedule was already due at startup.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, model.StatusPending, scheduleStatus(t, s, sched.ID).Status)

	// After the boundary the schedule executes.
	assert.Eventually(t, func() bool {
		return scheduleStatus(t, s, sched.ID).Status == model.StatusActive
	}, 2*time.Second, 20*time.Millisecond)
}

func TestStart_IdempotentOnce(t *testing.T) {
	now := mustTime(t, "2025-03-10T12:00:00Z")
	e, _, _ := newTestEngine(t, now)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e.Start(ctx)
	e.Start(ctx) // second call must be a no-op
	e.Stop()
	e.Stop() // stopping twice must not panic or hang
}
