package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotSyncMessage asks the worker to export one saved snapshot to the
// metrics history. It carries only the id and content signature; the worker
// fetches the document from the database.
type SnapshotSyncMessage struct {
	ID        int64     `json:"id"`
	Signature string    `json:"signature"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotSyncMessage creates a sync message for a stored snapshot.
func NewSnapshotSyncMessage(id int64, signature string) *SnapshotSyncMessage {
	return &SnapshotSyncMessage{
		ID:        id,
		Signature: signature,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotSyncMessageFromJSON creates a message from JSON bytes
func SnapshotSyncMessageFromJSON(data []byte) (*SnapshotSyncMessage, error) {
	var msg SnapshotSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
