// Package docstore persists keyed JSON documents, one record per file.
//
// Each record lives under a resolver-provided root. Writers hold an
// exclusive OS advisory lock while replacing a record's bytes; readers
// hold a shared one. Records that cannot be read or decoded are treated
// as absent rather than failing the caller.
//
// One reserved key (see [Options.QueueKey]) holds a size-bounded FIFO
// event queue. When the encoded queue document outgrows its byte budget
// the store evicts oldest events first, and when the disk itself runs
// out of space the store sheds persisted events until a write fits, so
// telemetry pressure cannot wedge a device.
//
// [Local] is the production implementation. [Memory] backs tests and
// [Badger] trades per-file interop for a transactional engine.
package docstore

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrUnavailable is returned when the storage root cannot be
	// resolved or prepared. Nothing can be read or written until that
	// changes.
	ErrUnavailable = errors.New("docstore: storage unavailable")

	// ErrExhausted is returned when a queue write failed and shedding
	// events all the way down to an empty queue still could not
	// complete it. It wraps the original write error.
	ErrExhausted = errors.New("docstore: storage exhausted")
)

// Document is a single stored record: an object keyed by field name.
// Values take the shapes encoding/json produces for untyped data
// (string, float64, bool, nil, []any, map[string]any).
type Document map[string]any

// Store is a keyed document store with one reserved queue key.
type Store interface {
	// Get retrieves the document for key. ok is false when the record
	// is absent or unreadable. The error reports unavailability, an
	// invalid key, or context cancellation, never a bad record.
	Get(ctx context.Context, key string) (doc Document, ok bool, err error)

	// Set stores the document under key, replacing any previous record.
	// Writes to the queue key are bounded: oldest events are evicted
	// before and, on disk exhaustion, after the write attempt.
	Set(ctx context.Context, key string, doc Document) error

	// Delete removes the record for key. Absent records are not an
	// error.
	Delete(ctx context.Context, key string) error

	// Ready blocks until the store is usable: any one-time migration
	// has finished and the backend is reachable.
	Ready(ctx context.Context) error

	// Stats returns a snapshot of operation counters.
	Stats() Stats

	// Close releases resources held by the store.
	Close() error
}

// PathResolver locates the storage root and carries records over from
// older layouts.
//
// Migrate runs at most once per store, before the first operation
// touches disk. Its outcome is advisory: the store logs a failure and
// proceeds, since a record left behind in a legacy directory merely
// reads as absent.
type PathResolver interface {
	// Root returns the directory records live in, creating it if
	// needed.
	Root() (string, error)

	// Migrate moves records from legacy locations into Root.
	Migrate() error
}

// validKey reports whether key can serve as a record file name
// component. Path separators and the directory dots are rejected so a
// key cannot address files outside the root.
func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, `/\`)
}
