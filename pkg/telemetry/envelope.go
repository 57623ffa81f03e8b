package telemetry

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Millis is a time.Time that serializes to Unix milliseconds in JSON,
// the timestamp format device events carry on the wire.
type Millis time.Time

// Now returns the current time as Millis.
func Now() Millis { return Millis(time.Now()) }

// Time returns the underlying time.Time value.
func (m Millis) Time() time.Time { return time.Time(m) }

// IsZero reports whether m is the zero time instant.
func (m Millis) IsZero() bool { return time.Time(m).IsZero() }

// String returns the time formatted as a string.
func (m Millis) String() string { return time.Time(m).String() }

// MarshalJSON implements json.Marshaler.
func (m Millis) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(m).UnixMilli())
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Millis) UnmarshalJSON(b []byte) error {
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	*m = Millis(time.UnixMilli(ms))
	return nil
}

// Envelope is the standard wrapper for telemetry events: a stable ID
// for dedup on the receiving side, a kind for routing, and the capture
// time.
type Envelope struct {
	ID   string         `json:"id"`
	Kind string         `json:"kind"`
	At   Millis         `json:"at"`
	Data map[string]any `json:"data,omitempty"`
}

// NewEnvelope stamps a payload with a fresh UUID and the current time.
func NewEnvelope(kind string, data map[string]any) Envelope {
	return Envelope{ID: uuid.NewString(), Kind: kind, At: Now(), Data: data}
}
