package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get, Update, and Delete when no entity in the
// collection has the requested ID.
var ErrNotFound = errors.New("entity not found")

// ErrCorrupted is returned by every operation on a collection after a panic
// unwound through its critical section. The in-memory state can no longer be
// trusted, so the condition is permanent for the process lifetime; callers
// must fail the request rather than retry.
var ErrCorrupted = errors.New("collection corrupted")

// SnapshotError describes a failed interaction with a collection's snapshot
// file. Op distinguishes I/O failures ("read", "write") from malformed data
// ("decode", "encode") so callers can report them separately without parsing
// message text.
type SnapshotError struct {
	Collection string
	Path       string
	Op         string
	Err        error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("%s snapshot %s %s: %v", e.Collection, e.Op, e.Path, e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }

// Malformed reports whether the error was caused by undecodable or
// unencodable data rather than by the filesystem.
func (e *SnapshotError) Malformed() bool {
	return e.Op == "decode" || e.Op == "encode"
}

// IsMalformed reports whether err wraps a serialization-kind SnapshotError.
func IsMalformed(err error) bool {
	var se *SnapshotError
	return errors.As(err, &se) && se.Malformed()
}
