package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds carried on the ledger queue.
const (
	EventExpenseCreated = "expense_created"
	EventExpenseUpdated = "expense_updated"
	EventExpenseDeleted = "expense_deleted"
)

// LedgerEventMessage signals that the ledger changed. It carries only the
// expense id; consumers reload state from the database, so stale or
// duplicated deliveries are harmless.
type LedgerEventMessage struct {
	Kind      string    `json:"kind"`
	ExpenseID string    `json:"expense_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(kind, expenseID string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:      kind,
		ExpenseID: expenseID,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
