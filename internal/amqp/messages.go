package amqp

import (
	"encoding/json"
	"time"
)

// RunCompletedMessage reports the outcome of one committed batch run. It is
// published only after the ledger writes are durable.
type RunCompletedMessage struct {
	RunDate    string    `json:"run_date"`
	UserID     string    `json:"user_id,omitempty"`
	Processed  int       `json:"processed"`
	ExpenseIDs []string  `json:"expense_ids"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRunCompletedMessage creates a message stamped with the current time
func NewRunCompletedMessage(runDate, userID string, expenseIDs []string) *RunCompletedMessage {
	if expenseIDs == nil {
		expenseIDs = []string{}
	}
	return &RunCompletedMessage{
		RunDate:    runDate,
		UserID:     userID,
		Processed:  len(expenseIDs),
		ExpenseIDs: expenseIDs,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RunCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RunCompletedMessageFromJSON creates a message from JSON bytes
func RunCompletedMessageFromJSON(data []byte) (*RunCompletedMessage, error) {
	var msg RunCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
