package docstore

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-memory Store for tests and ephemeral embedders. It is
// safe for concurrent use.
//
// Records are held in encoded form so the queue byte budget and the
// fail-soft decode semantics match [Local] exactly.
type Memory struct {
	opts *Options
	ctr  counters

	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an in-memory store. Pass nil for default options.
func NewMemory(opts *Options) *Memory {
	return &Memory{opts: opts, data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) (Document, bool, error) {
	if !validKey(key) {
		return nil, false, fmt.Errorf("docstore: invalid key %q", key)
	}
	m.mu.RLock()
	data, present := m.data[key]
	m.mu.RUnlock()
	m.ctr.gets.Add(1)

	c := m.opts.codec()
	if !present || c.EmptyObject(data) {
		m.ctr.getMisses.Add(1)
		return nil, false, nil
	}
	doc, err := c.Unmarshal(data)
	if err != nil {
		m.ctr.getMisses.Add(1)
		return nil, false, nil
	}
	return doc, true, nil
}

func (m *Memory) Set(_ context.Context, key string, doc Document) error {
	if !validKey(key) {
		return fmt.Errorf("docstore: invalid key %q", key)
	}
	data, err := m.opts.codec().Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: encode %q: %w", key, err)
	}
	if key == m.opts.queueKey() && len(data) > m.opts.maxQueueBytes() {
		if data, err = boundQueue(m.opts, &m.ctr, doc); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.data[key] = data
	m.mu.Unlock()
	m.ctr.sets.Add(1)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return fmt.Errorf("docstore: invalid key %q", key)
	}
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	m.ctr.deletes.Add(1)
	return nil
}

// Ready always succeeds; a Memory store has no root to prepare.
func (m *Memory) Ready(context.Context) error { return nil }

// Stats returns a snapshot of operation counters.
func (m *Memory) Stats() Stats { return m.ctr.snapshot() }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
