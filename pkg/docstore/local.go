package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/haivivi/gearstore/pkg/lockedfile"
)

// Local stores each record as one file under the resolver's root.
//
// Writers take an exclusive advisory lock on the record file, write the
// new encoding at offset zero, and truncate to its length, so a shorter
// record never leaves stale bytes behind. Readers take a shared lock.
// Because the locks attach to the files, any number of processes can
// share a root safely.
//
// The first operation triggers the resolver's legacy migration exactly
// once; every operation, Delete included, waits for it so a record
// deleted here cannot be resurrected by a move that finishes later.
type Local struct {
	opts *Options
	ctr  counters

	migOnce sync.Once
	migDone chan struct{}

	// writeFile replaces a record's bytes under an exclusive lock.
	// Swapped in tests to simulate a full disk.
	writeFile func(path string, data []byte) error
}

// NewLocal creates a file-backed store. opts.Resolver is required;
// every other option has a default.
func NewLocal(opts *Options) (*Local, error) {
	if opts == nil || opts.Resolver == nil {
		return nil, errors.New("docstore: Options.Resolver is required")
	}
	l := &Local{opts: opts, migDone: make(chan struct{})}
	l.writeFile = l.lockedWrite
	return l, nil
}

func (l *Local) Get(ctx context.Context, key string) (Document, bool, error) {
	if err := l.awaitMigration(ctx); err != nil {
		return nil, false, err
	}
	if !validKey(key) {
		return nil, false, fmt.Errorf("docstore: invalid key %q", key)
	}
	path, err := l.recordPath(key)
	if err != nil {
		return nil, false, err
	}
	l.ctr.gets.Add(1)
	doc, ok := l.readDoc(path)
	if !ok {
		l.ctr.getMisses.Add(1)
		return nil, false, nil
	}
	return doc, true, nil
}

func (l *Local) Set(ctx context.Context, key string, doc Document) error {
	if err := l.awaitMigration(ctx); err != nil {
		return err
	}
	if !validKey(key) {
		return fmt.Errorf("docstore: invalid key %q", key)
	}
	path, err := l.recordPath(key)
	if err != nil {
		return err
	}
	data, err := l.opts.codec().Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: encode %q: %w", key, err)
	}
	queue := key == l.opts.queueKey()
	if queue && len(data) > l.opts.maxQueueBytes() {
		if data, err = boundQueue(l.opts, &l.ctr, doc); err != nil {
			return err
		}
	}
	if werr := l.writeFile(path, data); werr != nil {
		l.ctr.writeFailures.Add(1)
		if queue {
			return l.recoverQueue(path, werr)
		}
		return fmt.Errorf("docstore: write %q: %w", key, werr)
	}
	l.ctr.sets.Add(1)
	return nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	if err := l.awaitMigration(ctx); err != nil {
		return err
	}
	if !validKey(key) {
		return fmt.Errorf("docstore: invalid key %q", key)
	}
	path, err := l.recordPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("docstore: delete %q: %w", key, err)
	}
	l.ctr.deletes.Add(1)
	return nil
}

// Ready blocks until the one-time migration has finished, then checks
// that the storage root is reachable.
func (l *Local) Ready(ctx context.Context) error {
	if err := l.awaitMigration(ctx); err != nil {
		return err
	}
	_, err := l.rootDir()
	return err
}

// Stats returns a snapshot of operation counters.
func (l *Local) Stats() Stats { return l.ctr.snapshot() }

// Close is a no-op; Local holds no descriptors between operations.
func (l *Local) Close() error { return nil }

// awaitMigration starts the resolver's migration on first use and
// blocks until it finishes or ctx is done. The migration outcome is
// deliberately dropped: records it failed to move simply stay absent
// until a later process retries.
func (l *Local) awaitMigration(ctx context.Context) error {
	l.migOnce.Do(func() {
		go func() {
			defer close(l.migDone)
			if err := l.opts.Resolver.Migrate(); err != nil {
				l.opts.logger().Warn("docstore: legacy migration failed", "error", err)
			}
		}()
	})
	select {
	case <-l.migDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Local) rootDir() (string, error) {
	root, err := l.opts.Resolver.Root()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return root, nil
}

// recordPath resolves the file holding key's record.
func (l *Local) recordPath(key string) (string, error) {
	root, err := l.rootDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, l.opts.filePrefix()+key+l.opts.codec().Ext()), nil
}

// readDoc reads and decodes the record at path under a shared lock. Any
// failure to open, read, or decode means the record is treated as
// absent; a half-written or corrupt file must not take the caller down.
func (l *Local) readDoc(path string) (Document, bool) {
	var data []byte
	err := lockedfile.WithShared(path, func(f *lockedfile.File) error {
		var rerr error
		data, rerr = f.ReadAll()
		return rerr
	})
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.opts.logger().Debug("docstore: unreadable record treated as absent", "path", path, "error", err)
		}
		return nil, false
	}
	c := l.opts.codec()
	if c.EmptyObject(data) {
		return nil, false
	}
	doc, err := c.Unmarshal(data)
	if err != nil {
		l.opts.logger().Debug("docstore: undecodable record treated as absent", "path", path, "error", err)
		return nil, false
	}
	return doc, true
}

// lockedWrite replaces the record at path: exclusive lock, write at
// offset zero, truncate to the new length.
func (l *Local) lockedWrite(path string, data []byte) error {
	return lockedfile.WithExclusive(path, func(f *lockedfile.File) error {
		if _, err := f.WriteAt(data, 0); err != nil {
			return err
		}
		if err := f.Truncate(int64(len(data))); err != nil {
			return err
		}
		if l.opts.syncWrites() {
			return f.Sync()
		}
		return nil
	})
}

// recoverQueue handles a failed queue write, most commonly a full disk.
// The candidate that failed is abandoned. Recovery re-reads whatever
// the store last persisted and retries with progressively fewer events,
// oldest dropped first; the final attempt is an empty queue. If even
// that cannot be written, the original failure is reported wrapped in
// [ErrExhausted].
func (l *Local) recoverQueue(path string, origErr error) error {
	l.ctr.recoveries.Add(1)
	c := l.opts.codec()
	field := l.opts.queueField()
	maxBytes := l.opts.maxQueueBytes()

	persisted, _ := l.readDoc(path)
	events := Events(persisted, field)
	if events == nil {
		events = []any{}
	}
	for {
		data, err := c.Marshal(Document{field: events})
		if err == nil && len(data) <= maxBytes {
			if werr := l.writeFile(path, data); werr == nil {
				l.ctr.sets.Add(1)
				return nil
			}
		}
		if len(events) == 0 {
			return fmt.Errorf("%w: %w", ErrExhausted, origErr)
		}
		events = events[1:]
		l.ctr.recoveryDrops.Add(1)
	}
}

var _ Store = (*Local)(nil)
