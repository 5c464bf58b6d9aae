package models

import (
	"encoding/json"
	"time"
)

// TransactionStatus is the lifecycle state of an exchange transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Terminal reports whether no further transition may leave the status.
func (s TransactionStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// Transaction is one exchange request. The rate is snapshotted at creation
// and never recomputed, so later rate changes cannot move already-quoted
// amounts. Every field is accessed by name; the positional row access of
// the previous implementation is gone.
type Transaction struct {
	ID            int64             `json:"id" db:"id"`
	RequesterID   int64             `json:"requester_id" db:"requester_id"`
	RequesterName string            `json:"requester_name" db:"requester_name"`
	SourceAmount  float64           `json:"source_amount" db:"source_amount"`
	TargetAmount  float64           `json:"target_amount" db:"target_amount"`
	Rate          float64           `json:"rate" db:"rate"`

	// Requester-declared payout destination.
	PayoutBank          string `json:"payout_bank" db:"payout_bank"`
	PayoutAccountNumber string `json:"payout_account_number" db:"payout_account_number"`
	PayoutAccountName   string `json:"payout_account_name" db:"payout_account_name"`

	// SenderBank is the bank the requester transferred from, as extracted
	// from the receipt.
	SenderBank string `json:"sender_bank" db:"sender_bank"`

	// SourceBankTag is the official receiving account's bank credited at
	// submission; PayoutBankTag is the payout account's bank chosen at
	// confirmation.
	SourceBankTag *string `json:"source_bank_tag,omitempty" db:"source_bank_tag"`
	PayoutBankTag *string `json:"payout_bank_tag,omitempty" db:"payout_bank_tag"`

	Status            TransactionStatus `json:"status" db:"status"`
	ReceiptRef        *string           `json:"receipt_ref,omitempty" db:"receipt_ref"`
	CounterReceiptRef *string           `json:"counter_receipt_ref,omitempty" db:"counter_receipt_ref"`
	Extraction        json.RawMessage   `json:"extraction,omitempty" db:"extraction"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	ConfirmedAt       *time.Time        `json:"confirmed_at,omitempty" db:"confirmed_at"`
}

// DailySummary aggregates one day's transactions for operator reporting.
type DailySummary struct {
	Transactions   []*Transaction `json:"transactions"`
	ConfirmedCount int            `json:"confirmed_count"`
	PendingCount   int            `json:"pending_count"`
	CancelledCount int            `json:"cancelled_count"`
	TotalSource    float64        `json:"total_source"`
	TotalTarget    float64        `json:"total_target"`
}
