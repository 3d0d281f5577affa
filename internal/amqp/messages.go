package amqp

import (
	"encoding/json"
	"time"

	"kharcha/internal/core"
)

// ExpenseCreatedMessage announces a newly added expense to downstream consumers.
type ExpenseCreatedMessage struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	AmountCents  int64     `json:"amount_cents"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Date         string    `json:"date"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewExpenseCreatedMessage(e core.Expense, at time.Time) *ExpenseCreatedMessage {
	return &ExpenseCreatedMessage{
		ID:           e.ID,
		Title:        e.Title,
		AmountCents:  e.Amount.Cents,
		CategoryID:   e.Category.ID,
		CategoryName: e.Category.Name,
		Date:         e.Date.String(),
		Status:       e.Status.String(),
		Timestamp:    at.UTC(),
	}
}

func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseCreatedMessageFromJSON(data []byte) (*ExpenseCreatedMessage, error) {
	var msg ExpenseCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
