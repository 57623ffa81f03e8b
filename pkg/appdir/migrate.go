package appdir

import (
	"os"
	"path/filepath"
)

// Migrate moves record files from every legacy directory into the
// current root. Files already present at the destination stay as they
// are, and a file that fails to move is logged and left behind for a
// later run. Migrate returns an error only when the current root itself
// cannot be prepared.
func (r *Resolver) Migrate() error {
	root, err := r.Root()
	if err != nil {
		return err
	}
	for _, dir := range r.LegacyDirs() {
		if dir == root {
			continue
		}
		r.migrateDir(dir, root)
	}
	return nil
}

func (r *Resolver) migrateDir(dir, root string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return // no legacy directory, nothing to carry over
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		src := filepath.Join(dir, e.Name())
		dst := filepath.Join(root, e.Name())
		if _, err := os.Lstat(dst); err == nil {
			continue // the new layout already has this record
		}
		if err := moveFile(src, dst); err != nil {
			r.logger().Warn("appdir: migrate failed", "file", e.Name(), "error", err)
		}
	}
}

// moveFile renames src to dst, falling back to copy-and-delete when
// rename is not possible (typically across filesystems).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyFile(src, dst)
}

// copyFile copies src to dst, then removes src.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	return os.Remove(src)
}
