// Package lockedfile opens files with OS advisory locks attached.
//
// A [File] couples the lock with positioned reads, writes, and truncation
// on a single descriptor, so the bytes a writer replaces are exactly the
// bytes its lock protects. Locks are advisory: they coordinate processes
// that use this package (or plain flock) and do not stop others from
// touching the file.
//
// Most callers want the scoped helpers [WithExclusive] and [WithShared],
// which release the lock and the descriptor on every return path.
package lockedfile

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Mode selects the kind of advisory lock held on a file.
type Mode int

const (
	// Shared admits any number of concurrent shared holders and excludes
	// exclusive ones. Used for reads.
	Shared Mode = iota

	// Exclusive excludes every other holder, shared or exclusive.
	// Used for writes.
	Exclusive
)

// File is an open file with an advisory lock tied to its descriptor.
type File struct {
	f *os.File
}

// Open opens path with the given flags and permission bits. The returned
// file holds no lock yet; call [File.Lock].
func Open(path string, flag int, perm os.FileMode) (*File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

// Name returns the path the file was opened with.
func (f *File) Name() string { return f.f.Name() }

// Lock blocks until the lock is acquired in the given mode.
func (f *File) Lock(m Mode) error {
	if err := lock(f.f, m); err != nil {
		return fmt.Errorf("lockedfile: lock %s: %w", f.f.Name(), err)
	}
	return nil
}

// Unlock releases the lock. The descriptor stays open.
func (f *File) Unlock() error {
	if err := unlock(f.f); err != nil {
		return fmt.Errorf("lockedfile: unlock %s: %w", f.f.Name(), err)
	}
	return nil
}

// WriteAt writes b at byte offset off.
func (f *File) WriteAt(b []byte, off int64) (int, error) {
	return f.f.WriteAt(b, off)
}

// ReadAll returns the entire file contents.
func (f *File) ReadAll() ([]byte, error) {
	if _, err := f.f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(f.f)
}

// Truncate changes the file size, discarding any bytes past size.
func (f *File) Truncate(size int64) error {
	return f.f.Truncate(size)
}

// Sync flushes the file to stable storage.
func (f *File) Sync() error {
	return f.f.Sync()
}

// Close closes the descriptor. The kernel drops any lock still held on it.
func (f *File) Close() error {
	return f.f.Close()
}

// WithExclusive opens path for read-write, creating it if absent, takes
// an exclusive lock, and runs fn. The lock and descriptor are released
// before returning; a release failure is logged and never overrides fn's
// result.
func WithExclusive(path string, fn func(*File) error) error {
	return with(path, os.O_CREATE|os.O_RDWR, 0o644, Exclusive, fn)
}

// WithShared opens path read-only, takes a shared lock, and runs fn.
// A missing file surfaces as the open error.
func WithShared(path string, fn func(*File) error) error {
	return with(path, os.O_RDONLY, 0, Shared, fn)
}

func with(path string, flag int, perm os.FileMode, m Mode, fn func(*File) error) error {
	f, err := Open(path, flag, perm)
	if err != nil {
		return err
	}
	if err := f.Lock(m); err != nil {
		f.Close()
		return err
	}
	err = fn(f)
	if uerr := f.Unlock(); uerr != nil {
		slog.Debug("lockedfile: unlock failed", "path", path, "error", uerr)
	}
	if cerr := f.Close(); cerr != nil {
		slog.Debug("lockedfile: close failed", "path", path, "error", cerr)
	}
	return err
}
