// Package model defines the entities persisted by the store: menu items,
// notices, admin users, menu presets, and menu schedules.
//
// Entities reference each other by ID only (preset -> item IDs,
// schedule -> preset ID); references are resolved at read time and never
// cached, so a dangling reference is detected by the consumer, not here.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of menu item categories.
type Category string

const (
	CategoryMains     Category = "Mains"
	CategorySides     Category = "Sides"
	CategoryDesserts  Category = "Desserts"
	CategoryBeverages Category = "Beverages"
)

// ParseCategory validates a caller-supplied category string.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryMains, CategorySides, CategoryDesserts, CategoryBeverages:
		return c, nil
	}
	return "", fmt.Errorf("invalid category %q", s)
}

// Recurrence is the repeat rule of a menu schedule.
//
// Custom has no next-occurrence formula: a Custom schedule always ends
// after a single execution.
type Recurrence string

const (
	RecurrenceDaily   Recurrence = "Daily"
	RecurrenceWeekly  Recurrence = "Weekly"
	RecurrenceMonthly Recurrence = "Monthly"
	RecurrenceCustom  Recurrence = "Custom"
)

// ParseRecurrence validates a caller-supplied recurrence string.
func ParseRecurrence(s string) (Recurrence, error) {
	switch r := Recurrence(s); r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceCustom:
		return r, nil
	}
	return "", fmt.Errorf("invalid recurrence %q", s)
}

// ScheduleStatus is the lifecycle state of a menu schedule.
//
// Pending -> Active -> Ended | Conflicted | Failed. Recurring schedules
// go Active -> Pending again with an advanced start time as long as the
// next occurrence still fits before the end time.
type ScheduleStatus string

const (
	StatusPending    ScheduleStatus = "Pending"
	StatusActive     ScheduleStatus = "Active"
	StatusEnded      ScheduleStatus = "Ended"
	StatusConflicted ScheduleStatus = "Conflicted"
	StatusFailed     ScheduleStatus = "Failed"
)

// MenuItem is one orderable item in the catalog. IsAvailable is flipped
// both by direct CRUD and by the schedule engine when a preset activates.
type MenuItem struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Allergens   []string  `json:"allergens"`
	IsAvailable bool      `json:"is_available"`
}

// Notice is an announcement shown alongside the menu. Pure CRUD.
type Notice struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminUser holds login credentials for the admin surface. PasswordHash
// is a bcrypt hash; the plaintext is never stored.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
}

// MenuPreset names a subset of menu items that should be the only ones
// available while a schedule referencing it is active.
type MenuPreset struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	MenuItemIDs []uuid.UUID `json:"menu_item_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Contains reports whether the preset selects the given item.
func (p MenuPreset) Contains(itemID uuid.UUID) bool {
	for _, id := range p.MenuItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// MenuSchedule is a time-bounded, optionally recurring activation of one
// preset. EndTime is always strictly after StartTime; this is enforced at
// the caller layer, the store does not re-check it.
type MenuSchedule struct {
	ID           uuid.UUID      `json:"id"`
	PresetID     uuid.UUID      `json:"preset_id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      time.Time      `json:"end_time"`
	Recurrence   Recurrence     `json:"recurrence"`
	Status       ScheduleStatus `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Overlaps reports whether the two schedules' [start, end] intervals
// overlap. The interval test is closed on both ends: schedules that merely
// touch at a boundary instant still conflict.
func (s MenuSchedule) Overlaps(other MenuSchedule) bool {
	return !s.StartTime.After(other.EndTime) && !s.EndTime.Before(other.StartTime)
}
