package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"menuboard/internal/model"
)

func TestOpen_CreatesEmptySnapshots(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	files := []string{
		menuItemsFile, noticesFile, adminUsersFile, menuPresetsFile, menuSchedulesFile,
	}
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			t.Fatalf("snapshot %s was not created: %v", f, err)
		}
		if string(data) != "[]\n" {
			t.Errorf("snapshot %s = %q, want empty array", f, data)
		}
	}

	items, err := s.MenuItems.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty collection, got %d items", len(items))
	}
}

func TestOpen_LoadsExistingSnapshot(t *testing.T) {
	dir := t.TempDir()
	id := uuid.New()
	seed := `[{"id":"` + id.String() + `","name":"Flat White","category":"Beverages","description":"","allergens":[],"is_available":true}]`
	if err := os.WriteFile(filepath.Join(dir, menuItemsFile), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	item, err := s.MenuItems.Get(id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if item.Name != "Flat White" || item.Category != model.CategoryBeverages {
		t.Errorf("loaded item = %+v", item)
	}
}

func TestOpen_MalformedSnapshotIsFatal(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, noticesFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(dir)
	if err == nil {
		t.Fatal("expected error for malformed snapshot, got nil")
	}
	if !IsMalformed(err) {
		t.Errorf("expected serialization-kind error, got %v", err)
	}
}

func TestOpen_Reopen_RoundTrips(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	item := model.MenuItem{
		ID:          uuid.New(),
		Name:        "Panna Cotta",
		Category:    model.CategoryDesserts,
		Description: "Vanilla bean",
		Allergens:   []string{"milk"},
		IsAvailable: true,
	}
	if err := s1.MenuItems.Insert(item); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	got, err := s2.MenuItems.Get(item.ID)
	if err != nil {
		t.Fatalf("Get() after reopen failed: %v", err)
	}
	if got.Name != item.Name || got.Description != item.Description ||
		got.Category != item.Category || got.IsAvailable != item.IsAvailable ||
		len(got.Allergens) != 1 || got.Allergens[0] != "milk" {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, item)
	}
}

func TestFindAdminUserByUsername(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	user := model.AdminUser{ID: uuid.New(), Username: "admin", PasswordHash: "x"}
	if err := s.AdminUsers.Insert(user); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	got, ok, err := s.FindAdminUserByUsername("admin")
	if err != nil || !ok {
		t.Fatalf("FindAdminUserByUsername() = %v, %v, %v", got, ok, err)
	}
	if got.ID != user.ID {
		t.Errorf("found wrong user: %+v", got)
	}

	_, ok, err = s.FindAdminUserByUsername("nobody")
	if err != nil {
		t.Fatalf("FindAdminUserByUsername() failed: %v", err)
	}
	if ok {
		t.Error("expected no match for unknown username")
	}
}
