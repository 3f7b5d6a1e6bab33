package amqp

import (
	"testing"
	"time"
)

func TestLedgerEventMessageRoundTrip(t *testing.T) {
	msg := NewLedgerEventMessage(EntityEntry, ActionCreated, 42)
	if msg.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	got, err := LedgerEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if got.Entity != EntityEntry || got.Action != ActionCreated || got.ID != 42 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.Timestamp.Truncate(time.Second).Equal(msg.Timestamp.Truncate(time.Second)) {
		t.Errorf("timestamp mismatch: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestLedgerEventMessageFromJSONInvalid(t *testing.T) {
	if _, err := LedgerEventMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}
