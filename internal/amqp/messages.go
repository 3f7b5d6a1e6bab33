package amqp

import (
	"encoding/json"
	"time"
)

// Entities and actions carried by ledger change events.
const (
	EntityEntry    = "entry"
	EntityCategory = "category"
	EntitySubject  = "subject"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LedgerEventMessage is a lightweight change notification. It carries only
// the entity, action and ID; the worker fetches current state from the API.
type LedgerEventMessage struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates a change event stamped with the current time.
func NewLedgerEventMessage(entity, action string, id int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
