package commands

import (
	"github.com/haivivi/gearstore/pkg/appdir"
	"github.com/haivivi/gearstore/pkg/docstore"
)

// appName is the directory name for both config and data.
const appName = "gearstore"

// newResolver picks the storage root: --root flag first, then the
// config file, then the OS config directory with legacy migration.
func newResolver() (docstore.PathResolver, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	switch {
	case rootOverride != "":
		return appdir.Fixed(rootOverride), nil
	case cfg.Storage.Root != "":
		return appdir.Fixed(cfg.Storage.Root), nil
	default:
		return appdir.New(appName), nil
	}
}

// openStore opens the record store all subcommands operate on.
func openStore() (*docstore.Local, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	resolver, err := newResolver()
	if err != nil {
		return nil, err
	}
	return docstore.NewLocal(&docstore.Options{
		Resolver:        resolver,
		FilePrefix:      cfg.Storage.FilePrefix,
		MaxQueueBytes:   cfg.Storage.MaxQueueBytes,
		TrimTargetBytes: cfg.Storage.TrimTargetBytes,
		SyncWrites:      cfg.Storage.SyncWrites,
	})
}
