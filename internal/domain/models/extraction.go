package models

import "strings"

// ReceiptExtraction is the structured record returned by the document
// extraction collaborator for a receipt image. Every field is optional;
// the extractor promises nothing beyond this shape.
type ReceiptExtraction struct {
	Amount       *float64 `json:"amount"`
	SenderBank   *string  `json:"sender_bank"`
	ReceiverBank *string  `json:"receiver_bank"`
	SenderName   *string  `json:"sender_name"`
	ReceiverName *string  `json:"receiver_name"`
	Status       *string  `json:"status"`
	Reference    *string  `json:"reference"`
}

// Successful reports whether the extracted status looks like a completed
// transfer. A missing status is treated as successful; the downstream
// matcher is the real gate.
func (e *ReceiptExtraction) Successful() bool {
	if e.Status == nil || *e.Status == "" {
		return true
	}
	return strings.Contains(strings.ToLower(*e.Status), "success")
}

func (e *ReceiptExtraction) ReceiverNameValue() string {
	if e.ReceiverName == nil {
		return ""
	}
	return *e.ReceiverName
}

func (e *ReceiptExtraction) ReceiverBankValue() string {
	if e.ReceiverBank == nil {
		return ""
	}
	return *e.ReceiverBank
}

func (e *ReceiptExtraction) SenderBankValue() string {
	if e.SenderBank == nil {
		return ""
	}
	return *e.SenderBank
}
