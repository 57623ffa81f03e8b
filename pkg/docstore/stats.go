package docstore

import "sync/atomic"

// Stats is a point-in-time snapshot of store operation counters.
type Stats struct {
	// Gets counts Get calls; GetMisses the subset that found no
	// readable record.
	Gets      uint64
	GetMisses uint64

	// Sets counts completed writes, including those salvaged by
	// recovery. Deletes counts Delete calls that reached the backend.
	Sets    uint64
	Deletes uint64

	// QueueTrims counts pre-write evictions of an oversized queue
	// document; EventsEvicted the events they dropped.
	QueueTrims    uint64
	EventsEvicted uint64

	// Recoveries counts disk-exhaustion recovery rounds, RecoveryDrops
	// the events shed during them, and WriteFailures the failed write
	// attempts that triggered either an error or a recovery.
	Recoveries    uint64
	RecoveryDrops uint64
	WriteFailures uint64
}

// counters accumulates operation counts. Increments are atomic so one
// instance can be shared across goroutines.
type counters struct {
	gets          atomic.Uint64
	getMisses     atomic.Uint64
	sets          atomic.Uint64
	deletes       atomic.Uint64
	queueTrims    atomic.Uint64
	eventsEvicted atomic.Uint64
	recoveries    atomic.Uint64
	recoveryDrops atomic.Uint64
	writeFailures atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Gets:          c.gets.Load(),
		GetMisses:     c.getMisses.Load(),
		Sets:          c.sets.Load(),
		Deletes:       c.deletes.Load(),
		QueueTrims:    c.queueTrims.Load(),
		EventsEvicted: c.eventsEvicted.Load(),
		Recoveries:    c.recoveries.Load(),
		RecoveryDrops: c.recoveryDrops.Load(),
		WriteFailures: c.writeFailures.Load(),
	}
}
