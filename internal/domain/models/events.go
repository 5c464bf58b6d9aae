package models

import "time"

// EventType tags the websocket updates pushed to operator dashboards.
type EventType string

const (
	EventTransactionCreated   EventType = "transaction_created"
	EventTransactionConfirmed EventType = "transaction_confirmed"
	EventTransactionCancelled EventType = "transaction_cancelled"
	EventBalanceChanged       EventType = "balance_changed"
	EventInsufficientFunds    EventType = "insufficient_funds"
	EventStalePending         EventType = "stale_pending"
)

// StatusUpdate is one real-time event on the operator stream.
type StatusUpdate struct {
	Type          EventType    `json:"type"`
	TransactionID int64        `json:"transaction_id,omitempty"`
	Transaction   *Transaction `json:"transaction,omitempty"`
	Currency      string       `json:"currency,omitempty"`
	Bank          string       `json:"bank,omitempty"`
	Balance       float64      `json:"balance,omitempty"`
	Message       string       `json:"message,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}
