// Package store provides durable, concurrency-safe CRUD over the five
// entity collections. Each collection is mirrored to an independent JSON
// array snapshot file that is rewritten wholesale on every mutation.
//
// Whole-file rewrite bounds write cost to O(collection size) per mutation,
// which is acceptable here: these are small administrative collections,
// not high-volume transactional data. The files stay human-readable so an
// operator can inspect or hand-edit them and hit the reload endpoint.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"menuboard/internal/model"
)

// Snapshot file names, one per collection.
const (
	menuItemsFile     = "menu_items.json"
	noticesFile       = "notices.json"
	adminUsersFile    = "admin_users.json"
	menuPresetsFile   = "menu_presets.json"
	menuSchedulesFile = "menu_schedules.json"
)

// Store owns the five entity collections. Every caller, whether an HTTP
// handler or the schedule engine's tick loop, mutates through the same
// collection locks, so all mutation is serialized per collection
// regardless of who asks.
type Store struct {
	MenuItems     *Collection[model.MenuItem]
	Notices       *Collection[model.Notice]
	AdminUsers    *Collection[model.AdminUser]
	MenuPresets   *Collection[model.MenuPreset]
	MenuSchedules *Collection[model.MenuSchedule]
}

// Open creates the data directory if needed and loads all five snapshot
// files. Missing files are created empty; a file that exists but cannot
// be parsed fails Open, which is fatal to process startup.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}

	s := &Store{
		MenuItems: NewCollection("menu_items", filepath.Join(dir, menuItemsFile),
			func(e model.MenuItem) uuid.UUID { return e.ID }),
		Notices: NewCollection("notices", filepath.Join(dir, noticesFile),
			func(e model.Notice) uuid.UUID { return e.ID }),
		AdminUsers: NewCollection("admin_users", filepath.Join(dir, adminUsersFile),
			func(e model.AdminUser) uuid.UUID { return e.ID }),
		MenuPresets: NewCollection("menu_presets", filepath.Join(dir, menuPresetsFile),
			func(e model.MenuPreset) uuid.UUID { return e.ID }),
		MenuSchedules: NewCollection("menu_schedules", filepath.Join(dir, menuSchedulesFile),
			func(e model.MenuSchedule) uuid.UUID { return e.ID }),
	}

	for _, load := range []func() error{
		s.MenuItems.Load,
		s.Notices.Load,
		s.AdminUsers.Load,
		s.MenuPresets.Load,
		s.MenuSchedules.Load,
	} {
		if err := load(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindAdminUserByUsername looks up an admin user by exact username.
func (s *Store) FindAdminUserByUsername(username string) (model.AdminUser, bool, error) {
	return s.AdminUsers.Find(func(u model.AdminUser) bool {
		return u.Username == username
	})
}
