package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Collection is one mutex-guarded entity collection mirrored to a single
// JSON array snapshot file.
//
// Concurrency model:
//   - Each collection has its own lock; operations on different collections
//     never block each other.
//   - Mutations hold the lock through both the in-memory change and the
//     snapshot rewrite, so the "update memory + rewrite file" sequences of
//     two mutations can never interleave (mutations are totally ordered per
//     collection).
//   - Reads return copies, never live references, so no caller can observe
//     the slice mid-mutation or retain a dangling view.
//
// If a mutation's file write fails the in-memory change is kept and the
// error is surfaced to the caller. There is no rollback; the next
// successful mutation rewrites the whole file and reconverges disk with
// memory.
//
// A panic that unwinds through a critical section marks the collection
// damaged. From then on every operation fails with ErrCorrupted. This is
// the moral equivalent of a poisoned mutex: partial writes to the slice
// may have happened, so integrity cannot be guaranteed anymore.
type Collection[T any] struct {
	name string
	path string
	idOf func(T) uuid.UUID

	mu       sync.Mutex
	entities []T
	damaged  bool
}

// NewCollection creates a collection backed by the snapshot file at path.
// idOf extracts the identity used by Get, Update, and Delete. The snapshot
// is not touched until Load is called.
func NewCollection[T any](name, path string, idOf func(T) uuid.UUID) *Collection[T] {
	return &Collection[T]{
		name: name,
		path: path,
		idOf: idOf,
	}
}

// Name returns the collection's name, used in errors and log lines.
func (c *Collection[T]) Name() string { return c.name }

// Path returns the snapshot file path.
func (c *Collection[T]) Path() string { return c.path }

// Load reads the snapshot file into memory. A missing file is not an
// error: it is created holding an empty array. A file that exists but
// cannot be read or parsed is fatal to whoever is starting this
// collection up.
func (c *Collection[T]) Load() error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	return c.loadLocked()
}

// Reload re-reads the snapshot file, replacing the in-memory state. Used
// by the reload endpoints after an operator edits a snapshot by hand.
func (c *Collection[T]) Reload() error {
	return c.Load()
}

func (c *Collection[T]) loadLocked() error {
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		c.entities = make([]T, 0)
		return c.flushLocked()
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return &SnapshotError{Collection: c.name, Path: c.path, Op: "read", Err: err}
	}

	entities := make([]T, 0)
	if err := json.Unmarshal(data, &entities); err != nil {
		return &SnapshotError{Collection: c.name, Path: c.path, Op: "decode", Err: err}
	}

	c.entities = entities
	return nil
}

// flushLocked rewrites the whole snapshot file from the in-memory state.
// Must be called with the lock held.
func (c *Collection[T]) flushLocked() error {
	data, err := json.MarshalIndent(c.entities, "", "  ")
	if err != nil {
		return &SnapshotError{Collection: c.name, Path: c.path, Op: "encode", Err: err}
	}
	if err := os.WriteFile(c.path, append(data, '\n'), 0o644); err != nil {
		return &SnapshotError{Collection: c.name, Path: c.path, Op: "write", Err: err}
	}
	return nil
}

// List returns a copy of the current in-memory collection. It never reads
// the disk.
func (c *Collection[T]) List() ([]T, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.release()

	out := make([]T, len(c.entities))
	copy(out, c.entities)
	return out, nil
}

// Get returns the entity with the given ID, or ErrNotFound.
func (c *Collection[T]) Get(id uuid.UUID) (T, error) {
	var zero T
	if err := c.acquire(); err != nil {
		return zero, err
	}
	defer c.release()

	for _, e := range c.entities {
		if c.idOf(e) == id {
			return e, nil
		}
	}
	return zero, fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
}

// Find returns the first entity satisfying pred. The predicate runs over a
// snapshot copy, so it may be arbitrarily slow without holding the lock.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool, error) {
	var zero T
	entities, err := c.List()
	if err != nil {
		return zero, false, err
	}
	for _, e := range entities {
		if pred(e) {
			return e, true, nil
		}
	}
	return zero, false, nil
}

// Insert appends the entity and rewrites the snapshot file.
func (c *Collection[T]) Insert(entity T) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	c.entities = append(c.entities, entity)
	return c.flushLocked()
}

// Update replaces the entity whose ID matches, then rewrites the snapshot
// file. Returns ErrNotFound if no entity has that ID.
func (c *Collection[T]) Update(id uuid.UUID, entity T) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	for i := range c.entities {
		if c.idOf(c.entities[i]) == id {
			c.entities[i] = entity
			return c.flushLocked()
		}
	}
	return fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
}

// Delete removes the entity whose ID matches, then rewrites the snapshot
// file. Returns ErrNotFound if no entity has that ID.
func (c *Collection[T]) Delete(id uuid.UUID) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	for i := range c.entities {
		if c.idOf(c.entities[i]) == id {
			c.entities = append(c.entities[:i], c.entities[i+1:]...)
			return c.flushLocked()
		}
	}
	return fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
}

// acquire takes the lock, refusing if the collection is damaged.
func (c *Collection[T]) acquire() error {
	c.mu.Lock()
	if c.damaged {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", c.name, ErrCorrupted)
	}
	return nil
}

// release unlocks, marking the collection damaged first if a panic is
// unwinding through the critical section.
func (c *Collection[T]) release() {
	if r := recover(); r != nil {
		c.damaged = true
		c.mu.Unlock()
		panic(r)
	}
	c.mu.Unlock()
}
