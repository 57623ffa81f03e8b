// Package appdir resolves per-application storage directories and moves
// records out of the legacy dot-directory layout.
//
// The current layout lives under [os.UserConfigDir]:
//
//	~/.config/<app>/data                       (Linux)
//	~/Library/Application Support/<app>/data   (macOS)
//	%AppData%/<app>/data                       (Windows)
//
// Earlier releases kept everything under ~/.<app>/data.
// [Resolver.Migrate] carries those records over once, file by file, and
// never lets a failed move take the application down.
package appdir

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/haivivi/gearstore/pkg/docstore"
)

// Resolver implements [docstore.PathResolver] for a named application.
type Resolver struct {
	// App is the application name used in directory paths.
	App string

	// Override, when set, is used as the storage root verbatim and
	// disables the OS config-directory lookup.
	Override string

	// Legacy lists directories to migrate records from. When nil it
	// defaults to the old dot-directory layout (~/.<app>/data). Set it
	// to an empty slice to disable migration.
	Legacy []string

	// Logger receives per-file migration diagnostics. Defaults to
	// [slog.Default].
	Logger *slog.Logger
}

// New returns a resolver for the named application.
func New(app string) *Resolver {
	return &Resolver{App: app}
}

// Fixed returns a resolver rooted at dir with migration disabled.
// Useful for tests and embedders that manage their own layout.
func Fixed(dir string) *Resolver {
	return &Resolver{Override: dir, Legacy: []string{}}
}

// Root returns the storage root, creating it if needed.
func (r *Resolver) Root() (string, error) {
	dir := r.Override
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("appdir: %w", err)
		}
		dir = filepath.Join(base, r.App, "data")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("appdir: %w", err)
	}
	return dir, nil
}

// LegacyDirs returns the directories Migrate sweeps for leftover
// records.
func (r *Resolver) LegacyDirs() []string {
	if r.Legacy != nil {
		return r.Legacy
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, "."+r.App, "data")}
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

var _ docstore.PathResolver = (*Resolver)(nil)
