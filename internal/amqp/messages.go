package amqp

import (
	"encoding/json"
	"time"
)

// Change actions published by the ledger.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionImported = "imported"
)

// ChangeMessage announces one ledger mutation. For imports the transaction
// id is zero and Count carries the size of the imported collection.
type ChangeMessage struct {
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change message for a single transaction.
func NewChangeMessage(action string, id int64) *ChangeMessage {
	return &ChangeMessage{
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// NewImportMessage creates a change message for a wholesale import.
func NewImportMessage(count int) *ChangeMessage {
	return &ChangeMessage{
		Action:    ActionImported,
		Count:     count,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
