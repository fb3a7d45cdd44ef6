package amqp

import (
	"encoding/json"
	"time"

	"sardinha/internal/core"
)

// Operation names the expense mutation a sync message replays.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ExpenseSyncMessage records one expense mutation performed against the
// offline mirror, to be replayed against the remote API. It carries the
// full expense payload: mirror-generated identifiers mean nothing to the
// remote side, so the profile is addressed by name.
type ExpenseSyncMessage struct {
	Op          Operation    `json:"op"`
	UserID      string       `json:"userId"`
	ProfileName string       `json:"profile"`
	Expense     core.Expense `json:"expense"`
	Timestamp   time.Time    `json:"timestamp"`
}

// NewExpenseSyncMessage stamps a sync message for one mirror mutation.
func NewExpenseSyncMessage(op Operation, userID, profileName string, e core.Expense) *ExpenseSyncMessage {
	return &ExpenseSyncMessage{
		Op:          op,
		UserID:      userID,
		ProfileName: profileName,
		Expense:     e,
		Timestamp:   time.Now(),
	}
}

func (m *ExpenseSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseSyncMessageFromJSON(data []byte) (*ExpenseSyncMessage, error) {
	var msg ExpenseSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
