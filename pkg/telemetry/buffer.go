// Package telemetry buffers device events in a bounded [docstore]
// queue and ships them to a delivery sink.
//
// Events append at the tail of the queue document; the store evicts
// from the head whenever the encoded queue outgrows its byte budget, so
// a device that cannot reach the network for days keeps its newest
// events and its disk.
package telemetry

import (
	"context"

	"github.com/haivivi/gearstore/pkg/docstore"
)

// Buffer is a telemetry queue persisted through a [docstore.Store].
//
// A Buffer assumes one appending process at a time. The store's file
// locks prevent torn records, not lost updates: two processes appending
// concurrently can each read the queue, append, and overwrite the
// other's event.
type Buffer struct {
	store docstore.Store
	key   string
	field string
}

// BufferOptions overrides the queue location. The zero value uses the
// store defaults.
type BufferOptions struct {
	// QueueKey is the record key holding the queue. Defaults to
	// [docstore.DefaultQueueKey].
	QueueKey string

	// QueueField is the document field holding the event array.
	// Defaults to [docstore.DefaultQueueField].
	QueueField string
}

// NewBuffer creates a buffer over store. Pass nil for default options.
//
// The key and field must match the store's queue configuration, or the
// byte bound will not apply to appends.
func NewBuffer(store docstore.Store, opts *BufferOptions) *Buffer {
	b := &Buffer{
		store: store,
		key:   docstore.DefaultQueueKey,
		field: docstore.DefaultQueueField,
	}
	if opts != nil {
		if opts.QueueKey != "" {
			b.key = opts.QueueKey
		}
		if opts.QueueField != "" {
			b.field = opts.QueueField
		}
	}
	return b
}

// Append adds an event at the tail of the queue.
func (b *Buffer) Append(ctx context.Context, event any) error {
	doc, _, err := b.store.Get(ctx, b.key)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	doc[b.field] = append(docstore.Events(doc, b.field), event)
	return b.store.Set(ctx, b.key, doc)
}

// Events returns the buffered events, oldest first.
func (b *Buffer) Events(ctx context.Context) ([]any, error) {
	doc, _, err := b.store.Get(ctx, b.key)
	if err != nil {
		return nil, err
	}
	return docstore.Events(doc, b.field), nil
}

// Len returns the number of buffered events.
func (b *Buffer) Len(ctx context.Context) (int, error) {
	events, err := b.Events(ctx)
	return len(events), err
}

// Clear removes the queue record entirely.
func (b *Buffer) Clear(ctx context.Context) error {
	return b.store.Delete(ctx, b.key)
}

// Drain removes and returns all buffered events, oldest first.
func (b *Buffer) Drain(ctx context.Context) ([]any, error) {
	doc, ok, err := b.store.Get(ctx, b.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	events := docstore.Events(doc, b.field)
	if err := b.store.Delete(ctx, b.key); err != nil {
		return nil, err
	}
	return events, nil
}

// DrainTo delivers all buffered events to sink, then clears the queue,
// returning the number delivered. A failed delivery leaves the queue
// intact, so events reach the sink at least once.
func (b *Buffer) DrainTo(ctx context.Context, sink Sink) (int, error) {
	doc, ok, err := b.store.Get(ctx, b.key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	events := docstore.Events(doc, b.field)
	if len(events) == 0 {
		return 0, nil
	}
	if err := sink.Deliver(ctx, events); err != nil {
		return 0, err
	}
	if err := b.store.Delete(ctx, b.key); err != nil {
		return len(events), err
	}
	return len(events), nil
}
