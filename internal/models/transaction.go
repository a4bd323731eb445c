package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusApproved TransactionStatus = "APPROVED"
	StatusDeclined TransactionStatus = "DECLINED"
	StatusError    TransactionStatus = "ERROR"
)

// IsTerminal reports whether no further status transition is permitted.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusDeclined || s == StatusError
}

// ParseTransactionStatus maps a string onto a known status.
func ParseTransactionStatus(s string) (TransactionStatus, bool) {
	switch TransactionStatus(s) {
	case StatusPending, StatusApproved, StatusDeclined, StatusError:
		return TransactionStatus(s), true
	}
	return "", false
}

const (
	OperationPurchase = "PURCHASE"
	OperationRefund   = "REFUND"
)

// Transaction is the audit record for a single payment attempt. The
// identifying and request fields are fixed at creation; only the outcome
// fields change, exactly once, when the record reaches a terminal status.
type Transaction struct {
	TransactionID   string            `json:"transaction_id"`
	MerchantID      string            `json:"merchant_id"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	CardToken       string            `json:"card_token"`
	CardExpiry      string            `json:"card_expiry"`
	OperationType   string            `json:"operation_type"`
	Status          TransactionStatus `json:"status"`
	ResponseCode    string            `json:"response_code,omitempty"`
	IssuerResponse  string            `json:"issuer_response,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	ProcessedAt     *time.Time        `json:"processed_at,omitempty"`
}
