package telemetry

import (
	"encoding/json"
	"testing"
)

func TestEnvelopeJSON(t *testing.T) {
	env := NewEnvelope("battery", map[string]any{"pct": 71})
	if env.ID == "" {
		t.Fatal("missing ID")
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["kind"] != "battery" {
		t.Fatalf("kind = %v", decoded["kind"])
	}
	at, ok := decoded["at"].(float64)
	if !ok || at <= 0 {
		t.Fatalf("at should be unix millis, got %v", decoded["at"])
	}
	payload, _ := decoded["data"].(map[string]any)
	if payload["pct"] != float64(71) {
		t.Fatalf("data.pct = %v", payload["pct"])
	}
}

func TestEnvelopeIDsUnique(t *testing.T) {
	a := NewEnvelope("boot", nil)
	b := NewEnvelope("boot", nil)
	if a.ID == b.ID {
		t.Fatalf("two envelopes share ID %q", a.ID)
	}
}

func TestMillisRoundTrip(t *testing.T) {
	now := Now()
	data, err := json.Marshal(now)
	if err != nil {
		t.Fatal(err)
	}
	var back Millis
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Time().UnixMilli() != now.Time().UnixMilli() {
		t.Fatalf("got %v, want %v", back, now)
	}
	if back.IsZero() {
		t.Fatal("round-tripped time is zero")
	}
}

func TestMillisRejectsNonNumber(t *testing.T) {
	var m Millis
	if err := json.Unmarshal([]byte(`"2026-01-01"`), &m); err == nil {
		t.Fatal("expected error for a non-numeric timestamp")
	}
}
