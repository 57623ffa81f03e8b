package telemetry

import (
	"context"
	"errors"
)

// ErrPermanent marks delivery failures that will not succeed on retry,
// such as a missing bucket or rejected credentials. Callers should stop
// retrying and alert instead.
var ErrPermanent = errors.New("telemetry: permanent delivery failure")

// Sink receives batches of drained telemetry events.
type Sink interface {
	// Deliver ships a batch, oldest first. A nil return means the
	// batch is out of the caller's hands and may be dropped locally.
	Deliver(ctx context.Context, events []any) error
}

// SinkFunc adapts a function to the [Sink] interface.
type SinkFunc func(ctx context.Context, events []any) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, events []any) error {
	return f(ctx, events)
}
