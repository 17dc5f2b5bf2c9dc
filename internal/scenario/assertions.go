package scenario

import (
	"fmt"
	"strings"

	"menuboard/internal/model"
	"menuboard/internal/store"
)

// evaluateAssertions checks every assertion against the final store state,
// appending a message to result.Errors for each failure. An assertion that
// cannot be evaluated at all (unknown type, unknown entity name) is a
// scenario authoring error and aborts the run.
func evaluateAssertions(sc *Scenario, st *store.Store, result *Result) error {
	schedules, err := st.MenuSchedules.List()
	if err != nil {
		return fmt.Errorf("list schedules for assertions: %w", err)
	}
	items, err := st.MenuItems.List()
	if err != nil {
		return fmt.Errorf("list items for assertions: %w", err)
	}

	schedByName := make(map[string]model.MenuSchedule, len(schedules))
	for _, s := range schedules {
		schedByName[s.Name] = s
	}
	itemByName := make(map[string]model.MenuItem, len(items))
	for _, i := range items {
		itemByName[i.Name] = i
	}

	for _, a := range sc.Assertions {
		switch a.Type {
		case "schedule_status":
			sched, ok := schedByName[a.Schedule]
			if !ok {
				return fmt.Errorf("assertion references unknown schedule %q", a.Schedule)
			}
			if string(sched.Status) != a.Status {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"schedule %q: expected status %s, got %s (error: %q)",
					a.Schedule, a.Status, sched.Status, sched.ErrorMessage))
			}

		case "item_available":
			item, ok := itemByName[a.Item]
			if !ok {
				return fmt.Errorf("assertion references unknown item %q", a.Item)
			}
			if a.Available == nil {
				return fmt.Errorf("item_available assertion for %q has no expected value", a.Item)
			}
			if item.IsAvailable != *a.Available {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"item %q: expected available=%t, got %t",
					a.Item, *a.Available, item.IsAvailable))
			}

		case "error_contains":
			sched, ok := schedByName[a.Schedule]
			if !ok {
				return fmt.Errorf("assertion references unknown schedule %q", a.Schedule)
			}
			if !strings.Contains(sched.ErrorMessage, a.Contains) {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"schedule %q: error message %q does not contain %q",
					a.Schedule, sched.ErrorMessage, a.Contains))
			}

		default:
			return fmt.Errorf("unknown assertion type %q", a.Type)
		}
	}
	return nil
}
