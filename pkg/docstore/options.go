package docstore

import "log/slog"

// Defaults for [Options].
const (
	// DefaultQueueKey is the reserved key whose document holds the
	// bounded telemetry event queue.
	DefaultQueueKey = "telemetry"

	// DefaultQueueField is the document field holding the event array.
	DefaultQueueField = "events"

	// DefaultMaxQueueBytes caps the encoded queue document at 512 KiB.
	DefaultMaxQueueBytes = 512 * 1024

	// DefaultTrimTargetBytes leaves headroom below the cap so steady
	// appends do not trim on every write.
	DefaultTrimTargetBytes = 475 * 1024

	// DefaultFilePrefix namespaces record files inside a shared
	// directory.
	DefaultFilePrefix = "gearstore-"
)

// Options configures a store. Every field has a default; only [Local]
// requires a Resolver.
type Options struct {
	// Resolver locates the storage root and performs the one-time
	// legacy migration. Required by [Local], ignored by [Memory] and
	// [Badger].
	Resolver PathResolver

	// Codec encodes records. Defaults to [JSON].
	Codec Codec

	// QueueKey is the reserved queue key. Defaults to
	// [DefaultQueueKey].
	QueueKey string

	// QueueField is the event-array field of the queue document.
	// Defaults to [DefaultQueueField].
	QueueField string

	// MaxQueueBytes caps the encoded queue document. Defaults to
	// [DefaultMaxQueueBytes].
	MaxQueueBytes int

	// TrimTargetBytes is the size an oversized queue document is
	// trimmed down to. Defaults to [DefaultTrimTargetBytes].
	TrimTargetBytes int

	// FilePrefix is prepended to record file names. Defaults to
	// [DefaultFilePrefix]. Only [Local] uses it.
	FilePrefix string

	// SyncWrites fsyncs after every record write. Off by default: the
	// queue tolerates losing its last write on power loss, and flash
	// wear matters more.
	SyncWrites bool

	// Logger receives diagnostics for swallowed failures (migration,
	// unreadable records). Defaults to [slog.Default].
	Logger *slog.Logger
}

func (o *Options) codec() Codec {
	if o != nil && o.Codec != nil {
		return o.Codec
	}
	return JSON{}
}

func (o *Options) queueKey() string {
	if o != nil && o.QueueKey != "" {
		return o.QueueKey
	}
	return DefaultQueueKey
}

func (o *Options) queueField() string {
	if o != nil && o.QueueField != "" {
		return o.QueueField
	}
	return DefaultQueueField
}

func (o *Options) maxQueueBytes() int {
	if o != nil && o.MaxQueueBytes > 0 {
		return o.MaxQueueBytes
	}
	return DefaultMaxQueueBytes
}

func (o *Options) trimTargetBytes() int {
	if o != nil && o.TrimTargetBytes > 0 {
		return o.TrimTargetBytes
	}
	return DefaultTrimTargetBytes
}

func (o *Options) filePrefix() string {
	if o != nil && o.FilePrefix != "" {
		return o.FilePrefix
	}
	return DefaultFilePrefix
}

func (o *Options) syncWrites() bool {
	return o != nil && o.SyncWrites
}

func (o *Options) logger() *slog.Logger {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
