package docstore

import (
	"context"
	"errors"
	"fmt"
	"log"

	badger "github.com/dgraph-io/badger/v4"
)

// Badger is a Store backed by BadgerDB v4.
//
// It keeps the record semantics of [Local], including the queue byte
// budget and corrupt-record-as-absent reads, but holds records in a
// single-process transactional engine instead of one file per key:
// there is no cross-process file interop and no advisory locking. A
// write that fails inside badger is reported as-is, because shrinking
// one value cannot free engine-level resources the way dropping events
// frees disk for [Local].
type Badger struct {
	db   *badger.DB
	opts *Options
	ctr  counters
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Options is the common store configuration (codec, queue budget).
	Options *Options

	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence. Useful for
	// tests that want a real engine.
	InMemory bool

	// Logger sets the badger logger. If nil, info and debug output are
	// suppressed.
	Logger badger.Logger
}

// NewBadger opens a BadgerDB-backed store.
func NewBadger(bopts BadgerOptions) (*Badger, error) {
	if !bopts.InMemory && bopts.Dir == "" {
		return nil, errors.New("docstore: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(bopts.Dir)
	if bopts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	if bopts.Logger != nil {
		dbOpts = dbOpts.WithLogger(bopts.Logger)
	} else {
		dbOpts = dbOpts.WithLogger(quietLogger{})
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db, opts: bopts.Options}, nil
}

func (b *Badger) Get(_ context.Context, key string) (Document, bool, error) {
	if !validKey(key) {
		return nil, false, fmt.Errorf("docstore: invalid key %q", key)
	}
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	b.ctr.gets.Add(1)

	c := b.opts.codec()
	if err != nil || c.EmptyObject(data) {
		b.ctr.getMisses.Add(1)
		return nil, false, nil
	}
	doc, derr := c.Unmarshal(data)
	if derr != nil {
		b.ctr.getMisses.Add(1)
		return nil, false, nil
	}
	return doc, true, nil
}

func (b *Badger) Set(_ context.Context, key string, doc Document) error {
	if !validKey(key) {
		return fmt.Errorf("docstore: invalid key %q", key)
	}
	data, err := b.opts.codec().Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: encode %q: %w", key, err)
	}
	if key == b.opts.queueKey() && len(data) > b.opts.maxQueueBytes() {
		if data, err = boundQueue(b.opts, &b.ctr, doc); err != nil {
			return err
		}
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		b.ctr.writeFailures.Add(1)
		return fmt.Errorf("docstore: write %q: %w", key, err)
	}
	b.ctr.sets.Add(1)
	return nil
}

func (b *Badger) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return fmt.Errorf("docstore: invalid key %q", key)
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("docstore: delete %q: %w", key, err)
	}
	b.ctr.deletes.Add(1)
	return nil
}

// Ready reports whether the database is open.
func (b *Badger) Ready(context.Context) error {
	if b.db.IsClosed() {
		return fmt.Errorf("%w: database closed", ErrUnavailable)
	}
	return nil
}

// Stats returns a snapshot of operation counters.
func (b *Badger) Stats() Stats { return b.ctr.snapshot() }

// Close closes the underlying database.
func (b *Badger) Close() error { return b.db.Close() }

// quietLogger suppresses badger's info and debug chatter.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...interface{})   { log.Printf("[badger] ERROR: "+f, v...) }
func (quietLogger) Warningf(f string, v ...interface{}) { log.Printf("[badger] WARN: "+f, v...) }
func (quietLogger) Infof(string, ...interface{})        {}
func (quietLogger) Debugf(string, ...interface{})       {}

var _ Store = (*Badger)(nil)
