package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRequest struct {
	MerchantID    string          `json:"merchant_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Currency      string          `json:"currency" binding:"required,len=3"`
	CardToken     string          `json:"card_token" binding:"required"`
	CardExpiry    string          `json:"card_expiry" binding:"required"`
	OperationType string          `json:"operation_type" binding:"required,oneof=PURCHASE REFUND"`
}

type PaymentResponse struct {
	TransactionID string            `json:"transaction_id"`
	Status        TransactionStatus `json:"status"`
	ResponseCode  string            `json:"response_code,omitempty"`
	Message       string            `json:"message"`
	Timestamp     time.Time         `json:"timestamp"`
	MerchantID    string            `json:"merchant_id"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
}

// ErrorResponse is the HTTP error envelope returned for failed requests.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}
